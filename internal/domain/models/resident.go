// internal/domain/models/resident.go
package models

import "strings"

// Residency statuses used by the residents screen tabs.
const (
	ResidencyResident    = "resident"
	ResidencyNonResident = "non_resident"
)

// Resident is one resident profile.
type Resident struct {
	ID              int    `json:"id"`
	FirstName       string `json:"first_name"`
	MiddleName      string `json:"middle_name"`
	LastName        string `json:"last_name"`
	Suffix          string `json:"suffix"`
	Sex             string `json:"sex"`
	BirthDate       Date   `json:"birth_date"`
	CivilStatus     string `json:"civil_status"`
	Purok           string `json:"purok"`
	Address         string `json:"address"`
	ContactNumber   string `json:"contact_number"`
	HouseholdID     *int   `json:"household_id"`
	ResidencyStatus string `json:"residency_status"`
	IsVoter         bool   `json:"is_voter"`
	IsSenior        bool   `json:"is_senior_citizen"`
	IsPWD           bool   `json:"is_pwd"`
}

// FullName renders "Last, First M. Suffix".
func (r Resident) FullName() string {
	var b strings.Builder
	b.WriteString(r.LastName)
	if r.FirstName != "" {
		if b.Len() > 0 {
			b.WriteString(", ")
		}
		b.WriteString(r.FirstName)
	}
	if m := strings.TrimSpace(r.MiddleName); m != "" {
		b.WriteString(" ")
		b.WriteString(string([]rune(m)[:1]))
		b.WriteString(".")
	}
	if r.Suffix != "" {
		b.WriteString(" ")
		b.WriteString(r.Suffix)
	}
	return b.String()
}

// Household groups the residents living in one dwelling.
type Household struct {
	ID          int            `json:"id"`
	HouseholdNo string         `json:"household_no"`
	HeadName    string         `json:"head_name"`
	Purok       string         `json:"purok"`
	Address     string         `json:"address"`
	MemberCount int            `json:"member_count"`
	IsIndigent  bool           `json:"is_indigent"`
	Members     []FamilyMember `json:"members"`
	CreatedAt   Date           `json:"created_at"`
}

// FamilyMember is a resident's place within a household.
type FamilyMember struct {
	ResidentID   int    `json:"resident_id"`
	Name         string `json:"name"`
	Relationship string `json:"relationship"`
}
