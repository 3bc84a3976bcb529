// internal/domain/models/waste.go
package models

// WasteSchedule is a recurring collection run for one purok.
type WasteSchedule struct {
	ID             int    `json:"id"`
	Purok          string `json:"barangay_zone"`
	WasteType      string `json:"waste_type"`
	DayOfWeek      string `json:"day_of_week"`
	CollectionTime string `json:"collection_time"`
	Status         string `json:"status"`
}

// PickupRequest is a resident's request for a special collection.
type PickupRequest struct {
	ID           int    `json:"id"`
	ResidentName string `json:"resident_name"`
	Purok        string `json:"barangay_zone"`
	WasteType    string `json:"waste_type"`
	Status       string `json:"status"`
	Notes        string `json:"notes"`
	RequestedAt  Date   `json:"requested_at"`
	ScheduledFor Date   `json:"scheduled_date"`
}
