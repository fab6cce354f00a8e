package entities

// Snapshot is the full set of collections read in one refresh
type Snapshot struct {
	Patients            []Patient              `json:"patients"`
	Visits              []PatientVisit         `json:"visits"`
	Companies           []Company              `json:"companies"`
	Factors             []Factor               `json:"factors"`
	Treatments          []Treatment            `json:"treatments"`
	CellPhoneTreatments []CellPhoneTreatment   `json:"cellPhoneTreatments"`
	Distributions       []MedicineDistribution `json:"distributions"`
}

// Collection names used in load reports and metrics labels
const (
	CollectionPatients            = "patients"
	CollectionVisits              = "visits"
	CollectionCompanies           = "companies"
	CollectionFactors             = "factors"
	CollectionTreatments          = "treatments"
	CollectionCellPhoneTreatments = "cellphone_treatments"
	CollectionDistributions       = "distributions"
)

// Counts returns the number of records per collection
func (s Snapshot) Counts() map[string]int {
	return map[string]int{
		CollectionPatients:            len(s.Patients),
		CollectionVisits:              len(s.Visits),
		CollectionCompanies:           len(s.Companies),
		CollectionFactors:             len(s.Factors),
		CollectionTreatments:          len(s.Treatments),
		CollectionCellPhoneTreatments: len(s.CellPhoneTreatments),
		CollectionDistributions:       len(s.Distributions),
	}
}
