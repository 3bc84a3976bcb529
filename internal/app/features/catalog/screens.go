// internal/app/features/catalog/screens.go
package catalog

import (
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/dalemusser/barangayhub/internal/app/system/auth"
	"github.com/dalemusser/barangayhub/internal/app/system/listquery"
	"github.com/dalemusser/barangayhub/internal/app/system/screens"
	"github.com/dalemusser/barangayhub/internal/domain/models"
)

// Filter tab shared by every screen.
const All listquery.FilterKey = "all"

// Mine narrows health screens to records assigned to the viewer.
const Mine listquery.FilterKey = "mine"

var (
	recordsStaff = []string{auth.RoleAdmin, auth.RoleClerk, auth.RoleHealthWorker}
	healthStaff  = []string{auth.RoleAdmin, auth.RoleHealthWorker}
	wasteStaff   = []string{auth.RoleAdmin, auth.RoleWasteOfficer}
)

func entries() []Entry {
	return []Entry{
		residents(),
		households(),
		consultations(),
		vaccinations(),
		firstAid(),
		animalBites(),
		familyPlanning(),
		medicineRequests(),
		wasteSchedules(),
		pickupRequests(),
	}
}

func residents() Entry {
	return define(screenDef[models.Resident]{
		entry: Entry{
			Meta: screens.Meta{
				Name:  "residents",
				Title: "Residents",
				Tabs: []screens.Tab{
					{Key: All, Label: "All"},
					{Key: "resident", Label: "Residents"},
					{Key: "non_resident", Label: "Non-residents"},
					{Key: "senior", Label: "Senior citizens"},
				},
				DefaultFilter: All,
				NoMatches:     "No residents match your search.",
				NoRecords:     "No residents have been registered yet.",
			},
			Path:     "/residents/",
			Roles:    recordsStaff,
			Debounce: 400 * time.Millisecond,
			Sort:     listquery.Sort{By: "last_name", Order: listquery.Ascending},
		},
		filters: map[listquery.FilterKey]url.Values{
			"resident":     {"residency_status": {models.ResidencyResident}},
			"non_resident": {"residency_status": {models.ResidencyNonResident}},
			"senior":       {"is_senior_citizen": {"true"}},
		},
		fields: []screens.Field[models.Resident]{
			{Title: "Name", SortBy: "last_name", Value: models.Resident.FullName},
			{Title: "Sex", Value: func(r models.Resident) string { return r.Sex }},
			{Title: "Birth date", SortBy: "birth_date", Value: func(r models.Resident) string { return r.BirthDate.Day() }},
			{Title: "Purok", SortBy: "purok", Value: func(r models.Resident) string { return r.Purok }},
			{Title: "Voter", Value: func(r models.Resident) string { return yesNo(r.IsVoter) }},
		},
		id: func(r models.Resident) string { return strconv.Itoa(r.ID) },
	})
}

func households() Entry {
	return define(screenDef[models.Household]{
		entry: Entry{
			Meta: screens.Meta{
				Name:  "households",
				Title: "Households",
				Tabs: []screens.Tab{
					{Key: All, Label: "All"},
					{Key: "indigent", Label: "Indigent"},
				},
				DefaultFilter: All,
				NoMatches:     "No households match your search.",
				NoRecords:     "No households have been registered yet.",
			},
			Path:  "/households/",
			Roles: recordsStaff,
			Sort:  listquery.Sort{By: "household_no", Order: listquery.Ascending},
		},
		filters: map[listquery.FilterKey]url.Values{
			"indigent": {"tab": {"indigent"}},
		},
		fields: []screens.Field[models.Household]{
			{Title: "Household no.", SortBy: "household_no", Value: func(h models.Household) string { return h.HouseholdNo }},
			{Title: "Head", SortBy: "head_name", Value: func(h models.Household) string { return h.HeadName }},
			{Title: "Purok", SortBy: "purok", Value: func(h models.Household) string { return h.Purok }},
			{Title: "Members", SortBy: "member_count", Value: func(h models.Household) string { return strconv.Itoa(h.MemberCount) }},
		},
		id: func(h models.Household) string { return strconv.Itoa(h.ID) },
	})
}

func consultations() Entry {
	return define(screenDef[models.Consultation]{
		entry: Entry{
			Meta: screens.Meta{
				Name:  "consultations",
				Title: "Consultations",
				Tabs: []screens.Tab{
					{Key: All, Label: "All"},
					{Key: Mine, Label: "Mine"},
					{Key: "pending", Label: "Pending"},
					{Key: "completed", Label: "Completed"},
					{Key: "non_resident", Label: "Non-residents"},
				},
				DefaultFilter: All,
				NoMatches:     "No consultations match your search.",
				NoRecords:     "No consultations recorded yet.",
			},
			Path:         "/health/consultations/",
			Roles:        healthStaff,
			PollInterval: 30 * time.Second,
			Sort:         listquery.Sort{By: "consulted_at", Order: listquery.Descending},
		},
		filters: map[listquery.FilterKey]url.Values{
			"pending":      {"status": {"pending"}},
			"completed":    {"status": {"completed"}},
			"non_resident": {"patient_type": {"non_resident"}},
		},
		scope: assignedTo("assigned_to"),
		fields: []screens.Field[models.Consultation]{
			{Title: "Patient", SortBy: "patient_name", Value: func(c models.Consultation) string { return c.PatientName }},
			{Title: "Type", Value: func(c models.Consultation) string { return label(c.PatientType) }},
			{Title: "Complaint", Value: func(c models.Consultation) string { return c.Complaint }},
			{Title: "Status", SortBy: "status", Value: func(c models.Consultation) string { return label(c.Status) }},
			{Title: "Date", SortBy: "consulted_at", Value: func(c models.Consultation) string { return c.ConsultedAt.DayTime() }},
		},
		id: func(c models.Consultation) string { return strconv.Itoa(c.ID) },
	})
}

func vaccinations() Entry {
	return define(screenDef[models.Vaccination]{
		entry: Entry{
			Meta: screens.Meta{
				Name:  "vaccinations",
				Title: "Vaccinations",
				Tabs: []screens.Tab{
					{Key: All, Label: "All"},
					{Key: "scheduled", Label: "Scheduled"},
					{Key: "completed", Label: "Completed"},
					{Key: "missed", Label: "Missed"},
					{Key: "bcg", Label: "BCG"},
					{Key: "measles", Label: "Measles"},
				},
				DefaultFilter: All,
				NoMatches:     "No vaccinations match your search.",
				NoRecords:     "No vaccinations scheduled yet.",
			},
			Path:  "/health/vaccinations/",
			Roles: healthStaff,
			Sort:  listquery.Sort{By: "scheduled_date", Order: listquery.Ascending},
		},
		filters: map[listquery.FilterKey]url.Values{
			"scheduled": {"status": {"scheduled"}},
			"completed": {"status": {"completed"}},
			"missed":    {"status": {"missed"}},
			"bcg":       {"vaccine": {"BCG"}},
			"measles":   {"vaccine": {"Measles"}},
		},
		fields: []screens.Field[models.Vaccination]{
			{Title: "Patient", SortBy: "patient_name", Value: func(v models.Vaccination) string { return v.PatientName }},
			{Title: "Vaccine", SortBy: "vaccine", Value: func(v models.Vaccination) string { return v.Vaccine }},
			{Title: "Dose", Value: func(v models.Vaccination) string { return strconv.Itoa(v.Dose) }},
			{Title: "Status", Value: func(v models.Vaccination) string { return label(v.Status) }},
			{Title: "Scheduled", SortBy: "scheduled_date", Value: func(v models.Vaccination) string { return v.ScheduledOn.Day() }},
		},
		id: func(v models.Vaccination) string { return strconv.Itoa(v.ID) },
	})
}

func firstAid() Entry {
	return define(screenDef[models.FirstAidRecord]{
		entry: Entry{
			Meta: screens.Meta{
				Name:  "first-aid",
				Title: "First aid",
				Tabs: []screens.Tab{
					{Key: All, Label: "All"},
					{Key: Mine, Label: "Attended by me"},
					{Key: "referred", Label: "Referred"},
				},
				DefaultFilter: All,
				NoMatches:     "No first aid records match your search.",
				NoRecords:     "No first aid given yet.",
			},
			Path:  "/health/first-aid/",
			Roles: healthStaff,
			Sort:  listquery.Sort{By: "incident_date", Order: listquery.Descending},
		},
		filters: map[listquery.FilterKey]url.Values{
			"referred": {"referred": {"true"}},
		},
		scope: assignedTo("attended_by"),
		fields: []screens.Field[models.FirstAidRecord]{
			{Title: "Patient", SortBy: "patient_name", Value: func(f models.FirstAidRecord) string { return f.PatientName }},
			{Title: "Injury", Value: func(f models.FirstAidRecord) string { return f.Injury }},
			{Title: "Treatment", Value: func(f models.FirstAidRecord) string { return f.Treatment }},
			{Title: "Referred", Value: func(f models.FirstAidRecord) string { return yesNo(f.Referred) }},
			{Title: "Date", SortBy: "incident_date", Value: func(f models.FirstAidRecord) string { return f.OccurredAt.DayTime() }},
		},
		id: func(f models.FirstAidRecord) string { return strconv.Itoa(f.ID) },
	})
}

func animalBites() Entry {
	return define(screenDef[models.AnimalBiteCase]{
		entry: Entry{
			Meta: screens.Meta{
				Name:  "animal-bites",
				Title: "Animal bite cases",
				Tabs: []screens.Tab{
					{Key: All, Label: "All"},
					{Key: "ongoing", Label: "Ongoing"},
					{Key: "completed", Label: "Completed"},
					{Key: "category_iii", Label: "Category III"},
				},
				DefaultFilter: All,
				NoMatches:     "No bite cases match your search.",
				NoRecords:     "No animal bite cases reported yet.",
			},
			Path:  "/health/animal-bites/",
			Roles: healthStaff,
			Sort:  listquery.Sort{By: "date_of_bite", Order: listquery.Descending},
		},
		filters: map[listquery.FilterKey]url.Values{
			"ongoing":      {"status": {"ongoing"}},
			"completed":    {"status": {"completed"}},
			"category_iii": {"category": {"III"}},
		},
		fields: []screens.Field[models.AnimalBiteCase]{
			{Title: "Patient", SortBy: "patient_name", Value: func(a models.AnimalBiteCase) string { return a.PatientName }},
			{Title: "Animal", Value: func(a models.AnimalBiteCase) string { return a.AnimalType }},
			{Title: "Category", SortBy: "category", Value: func(a models.AnimalBiteCase) string { return a.Category }},
			{Title: "Doses", Value: func(a models.AnimalBiteCase) string { return strconv.Itoa(a.DosesGiven) }},
			{Title: "Status", Value: func(a models.AnimalBiteCase) string { return label(a.Status) }},
			{Title: "Bitten on", SortBy: "date_of_bite", Value: func(a models.AnimalBiteCase) string { return a.ReportedOn.Day() }},
		},
		id: func(a models.AnimalBiteCase) string { return strconv.Itoa(a.ID) },
	})
}

func familyPlanning() Entry {
	return define(screenDef[models.FamilyPlanningRecord]{
		entry: Entry{
			Meta: screens.Meta{
				Name:  "family-planning",
				Title: "Family planning",
				Tabs: []screens.Tab{
					{Key: All, Label: "All"},
					{Key: "pills", Label: "Pills"},
					{Key: "injectable", Label: "Injectable"},
					{Key: "implant", Label: "Implant"},
					{Key: "iud", Label: "IUD"},
				},
				DefaultFilter: All,
				NoMatches:     "No family planning clients match your search.",
				NoRecords:     "No family planning clients yet.",
			},
			Path:  "/health/family-planning/",
			Roles: healthStaff,
			Sort:  listquery.Sort{By: "next_visit", Order: listquery.Ascending},
		},
		filters: map[listquery.FilterKey]url.Values{
			"pills":      {"method": {"pills"}},
			"injectable": {"method": {"injectable"}},
			"implant":    {"method": {"implant"}},
			"iud":        {"method": {"iud"}},
		},
		fields: []screens.Field[models.FamilyPlanningRecord]{
			{Title: "Client", SortBy: "client_name", Value: func(f models.FamilyPlanningRecord) string { return f.ClientName }},
			{Title: "Method", Value: func(f models.FamilyPlanningRecord) string { return label(f.Method) }},
			{Title: "Client type", Value: func(f models.FamilyPlanningRecord) string { return label(f.ClientType) }},
			{Title: "Next visit", SortBy: "next_visit", Value: func(f models.FamilyPlanningRecord) string { return f.NextVisit.Day() }},
		},
		id: func(f models.FamilyPlanningRecord) string { return strconv.Itoa(f.ID) },
	})
}

func medicineRequests() Entry {
	return define(screenDef[models.MedicineRequest]{
		entry: Entry{
			Meta: screens.Meta{
				Name:  "medicine-requests",
				Title: "Medicine requests",
				Tabs: []screens.Tab{
					{Key: All, Label: "All"},
					{Key: "pending", Label: "Pending"},
					{Key: "approved", Label: "Approved"},
					{Key: "released", Label: "Released"},
				},
				DefaultFilter: All,
				NoMatches:     "No medicine requests match your search.",
				NoRecords:     "No medicine requests yet.",
			},
			Path:         "/health/medicine-requests/",
			Roles:        healthStaff,
			PollInterval: 30 * time.Second,
			Sort:         listquery.Sort{By: "requested_at", Order: listquery.Descending},
		},
		filters: map[listquery.FilterKey]url.Values{
			"pending":  {"status": {"pending"}},
			"approved": {"status": {"approved"}},
			"released": {"status": {"released"}},
		},
		fields: []screens.Field[models.MedicineRequest]{
			{Title: "Resident", SortBy: "resident_name", Value: func(m models.MedicineRequest) string { return m.ResidentName }},
			{Title: "Medicine", SortBy: "medicine", Value: func(m models.MedicineRequest) string { return m.Medicine }},
			{Title: "Qty", Value: func(m models.MedicineRequest) string { return strconv.Itoa(m.Quantity) }},
			{Title: "Status", Value: func(m models.MedicineRequest) string { return label(m.Status) }},
			{Title: "Requested", SortBy: "requested_at", Value: func(m models.MedicineRequest) string { return m.RequestedAt.DayTime() }},
		},
		id: func(m models.MedicineRequest) string { return strconv.Itoa(m.ID) },
	})
}

func wasteSchedules() Entry {
	return define(screenDef[models.WasteSchedule]{
		entry: Entry{
			Meta: screens.Meta{
				Name:  "waste-schedules",
				Title: "Collection schedules",
				Tabs: []screens.Tab{
					{Key: All, Label: "All zones"},
					{Key: "zone-1", Label: "Zone 1"},
					{Key: "zone-2", Label: "Zone 2"},
					{Key: "zone-3", Label: "Zone 3"},
					{Key: "zone-4", Label: "Zone 4"},
				},
				DefaultFilter: All,
				NoMatches:     "No schedules match your search.",
				NoRecords:     "No collection schedules set up yet.",
			},
			Path:     "/waste/schedules/",
			Roles:    wasteStaff,
			PageSize: 20,
		},
		filters: map[listquery.FilterKey]url.Values{
			"zone-1": {"barangay_zone": {"Zone 1"}},
			"zone-2": {"barangay_zone": {"Zone 2"}},
			"zone-3": {"barangay_zone": {"Zone 3"}},
			"zone-4": {"barangay_zone": {"Zone 4"}},
		},
		fields: []screens.Field[models.WasteSchedule]{
			{Title: "Zone", SortBy: "barangay_zone", Value: func(w models.WasteSchedule) string { return w.Purok }},
			{Title: "Waste type", SortBy: "waste_type", Value: func(w models.WasteSchedule) string { return label(w.WasteType) }},
			{Title: "Day", SortBy: "day_of_week", Value: func(w models.WasteSchedule) string { return w.DayOfWeek }},
			{Title: "Time", Value: func(w models.WasteSchedule) string { return w.CollectionTime }},
			{Title: "Status", Value: func(w models.WasteSchedule) string { return label(w.Status) }},
		},
		id: func(w models.WasteSchedule) string { return strconv.Itoa(w.ID) },
	})
}

func pickupRequests() Entry {
	return define(screenDef[models.PickupRequest]{
		entry: Entry{
			Meta: screens.Meta{
				Name:  "pickup-requests",
				Title: "Pickup requests",
				Tabs: []screens.Tab{
					{Key: All, Label: "All"},
					{Key: "pending", Label: "Pending"},
					{Key: "scheduled", Label: "Scheduled"},
					{Key: "collected", Label: "Collected"},
				},
				DefaultFilter: All,
				NoMatches:     "No pickup requests match your search.",
				NoRecords:     "No pickup requests yet.",
			},
			Path:         "/waste/pickup-requests/",
			Roles:        wasteStaff,
			Debounce:     800 * time.Millisecond,
			PollInterval: time.Minute,
			Sort:         listquery.Sort{By: "requested_at", Order: listquery.Descending},
		},
		filters: map[listquery.FilterKey]url.Values{
			"pending":   {"status": {"pending"}},
			"scheduled": {"status": {"scheduled"}},
			"collected": {"status": {"collected"}},
		},
		fields: []screens.Field[models.PickupRequest]{
			{Title: "Resident", SortBy: "resident_name", Value: func(p models.PickupRequest) string { return p.ResidentName }},
			{Title: "Zone", SortBy: "barangay_zone", Value: func(p models.PickupRequest) string { return p.Purok }},
			{Title: "Waste type", Value: func(p models.PickupRequest) string { return label(p.WasteType) }},
			{Title: "Status", Value: func(p models.PickupRequest) string { return label(p.Status) }},
			{Title: "Requested", SortBy: "requested_at", Value: func(p models.PickupRequest) string { return p.RequestedAt.Day() }},
			{Title: "Pickup", SortBy: "scheduled_date", Value: func(p models.PickupRequest) string { return p.ScheduledFor.Day() }},
		},
		id: func(p models.PickupRequest) string { return strconv.Itoa(p.ID) },
	})
}

// assignedTo scopes the Mine tab to records whose field names the viewer.
func assignedTo(field string) func(*auth.SessionUser) func(listquery.FilterKey, url.Values) {
	return func(user *auth.SessionUser) func(listquery.FilterKey, url.Values) {
		return func(f listquery.FilterKey, q url.Values) {
			if f == Mine && user != nil {
				q.Set(field, user.ID)
			}
		}
	}
}

func yesNo(b bool) string {
	if b {
		return "Yes"
	}
	return "No"
}

// label turns an API enum such as "non_resident" into "Non resident".
func label(s string) string {
	s = strings.ReplaceAll(strings.TrimSpace(s), "_", " ")
	if s == "" {
		return "—"
	}
	r := []rune(s)
	return strings.ToUpper(string(r[:1])) + string(r[1:])
}
