// internal/domain/models/health.go
package models

// Consultation is a visit to the barangay health station.
type Consultation struct {
	ID          int    `json:"id"`
	PatientName string `json:"patient_name"`
	// PatientType is "resident" or "non_resident".
	PatientType string `json:"patient_type"`
	Complaint   string `json:"chief_complaint"`
	Diagnosis   string `json:"diagnosis"`
	Status      string `json:"status"`
	AssignedTo  string `json:"assigned_to"`
	ConsultedAt Date   `json:"consulted_at"`
}

// Vaccination is one scheduled or given dose.
type Vaccination struct {
	ID             int    `json:"id"`
	PatientName    string `json:"patient_name"`
	Vaccine        string `json:"vaccine"`
	Dose           int    `json:"dose_number"`
	Status         string `json:"status"`
	ScheduledOn    Date   `json:"scheduled_date"`
	AdministeredBy string `json:"administered_by"`
}

type FirstAidRecord struct {
	ID          int    `json:"id"`
	PatientName string `json:"patient_name"`
	Injury      string `json:"injury"`
	Treatment   string `json:"treatment"`
	Referred    bool   `json:"referred"`
	AttendedBy  string `json:"attended_by"`
	OccurredAt  Date   `json:"incident_date"`
}

// AnimalBiteCase follows a bite through its post-exposure doses.
type AnimalBiteCase struct {
	ID          int    `json:"id"`
	PatientName string `json:"patient_name"`
	AnimalType  string `json:"animal_type"`
	// Category is the WHO exposure category: I, II or III.
	Category   string `json:"category"`
	Status     string `json:"status"`
	DosesGiven int    `json:"doses_given"`
	ReportedOn Date   `json:"date_of_bite"`
}

type FamilyPlanningRecord struct {
	ID         int    `json:"id"`
	ClientName string `json:"client_name"`
	Method     string `json:"method"`
	ClientType string `json:"client_type"`
	NextVisit  Date   `json:"next_visit"`
}

// MedicineRequest is a resident's request for free medicine.
type MedicineRequest struct {
	ID           int    `json:"id"`
	ResidentName string `json:"resident_name"`
	Medicine     string `json:"medicine"`
	Quantity     int    `json:"quantity"`
	Status       string `json:"status"`
	RequestedAt  Date   `json:"requested_at"`
}
