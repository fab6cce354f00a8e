// Package entities holds the console's internal representation of HemoCore
// records. JSON tags are the camelCase internal shape; the PascalCase wire
// shapes the backend expects on writes live in wire.go.
package entities

// Residence variants
const (
	InsideSudan  = "InsideSudan"
	OutsideSudan = "OutsideSudan"
)

// Vital status values
const (
	VitalAlive   = "Alive"
	VitalDied    = "Died"
	VitalUnknown = "Unknown"
)

// Severity values
const (
	SeverityMild     = "mild"
	SeverityModerate = "moderate"
	SeveritySevere   = "severe"
	SeverityUnknown  = "unknown"
)

// Family history values
const (
	FamilyFirstDegree  = "first_degree"
	FamilySecondDegree = "second_degree"
	FamilyThirdDegree  = "third_degree"
	FamilyNone         = "none"
)

// Test types carried by patient test dates
const (
	TestFactorLevel        = "FactorLevel"
	TestInhibitorScreening = "InhibitorScreening"
	TestViralScreening     = "ViralScreening"
	TestHBV                = "HBV"
	TestHCV                = "HCV"
	TestHIV                = "HIV"
	TestHBsAgScreening     = "HBsAgScreening"
	TestOther              = "Other"
)

// ChronicDiseaseVocabulary lists the selectable chronic diseases
var ChronicDiseaseVocabulary = []string{"DM", "HTN", "Asthma", "Cardiac disease", "Other"}

// SudanStates lists the states offered for residence and distributions
var SudanStates = []string{
	"Khartoum", "Al Jazirah", "White Nile", "Blue Nile", "Northern", "River Nile",
	"Red Sea", "Kassala", "Al Qadarif", "Sennar", "North Kordofan", "South Kordofan",
	"West Kordofan", "Central Darfur", "North Darfur", "South Darfur", "East Darfur",
	"West Darfur",
}

// InhibitorEntry is one dated inhibitor level reading
type InhibitorEntry struct {
	InhibitorLevel         float64 `json:"inhibitorLevel,omitempty"`
	InhibitorScreeningDate string  `json:"inhibitorScreeningDate,omitempty"`
}

// PatientTestDate records whether a screening test was taken and its outcome
type PatientTestDate struct {
	TestType string `json:"testType"`
	HasTaken bool   `json:"hasTaken"`
	TestDate string `json:"testDate,omitempty"`
	Result   string `json:"result,omitempty"` // positive or negative
}

// OtherMedicalTest is a free-form named test result
type OtherMedicalTest struct {
	TestName   string `json:"testName"`
	TestResult string `json:"testResult"`
	TestDate   string `json:"testDate"`
}

// Patient is the normalized patient record
type Patient struct {
	ID                 int    `json:"id"`
	FullName           string `json:"fullName"`
	NationalIDNumber   string `json:"nationalIdNumber"`
	DateOfBirth        string `json:"dateOfBirth"`
	Gender             string `json:"gender,omitempty"`
	HomeState          string `json:"homeState,omitempty"`
	HomeCityOrTown     string `json:"homeCityOrTown,omitempty"`
	HomeLocality       string `json:"homeLocality,omitempty"`
	ResidenceType      string `json:"residenceType"`
	State              string `json:"state,omitempty"`
	CityOrTown         string `json:"cityOrTown,omitempty"`
	Locality           string `json:"locality,omitempty"`
	Country            string `json:"country,omitempty"`
	MaritalStatus      string `json:"maritalStatus,omitempty"`
	Occupation         string `json:"occupation,omitempty"`
	ContactNumber      string `json:"contactNumber,omitempty"`
	ContactNumber1     string `json:"contactNumber1,omitempty"`
	ContactNumber2     string `json:"contactNumber2,omitempty"`
	VitalStatus        string `json:"vitalStatus"`
	HemophiliaCenterID string `json:"hemophiliaCenterId,omitempty"`

	Diagnosis         string  `json:"diagnosis,omitempty"`
	IncidenceDate     string  `json:"incidenceDate,omitempty"`
	Severity          string  `json:"severity"`
	FactorPercent     float64 `json:"factorPercent,omitempty"`
	FactorPercentDate string  `json:"factorPercentDate,omitempty"`
	FamilyHistory     string  `json:"familyHistory"`
	BloodGroup        string  `json:"bloodGroup,omitempty"`

	HasInhibitors          bool             `json:"HasInhibitors"`
	InhibitorLevel         float64          `json:"inhibitorLevel,omitempty"`
	InhibitorScreeningDate string           `json:"inhibitorScreeningDate,omitempty"`
	Inhibitors             []InhibitorEntry `json:"inhibitors,omitempty"`

	HasChronicDiseases  bool     `json:"HasChronicDiseases"`
	ChronicDiseases     []string `json:"chronicDiseases"`
	ChronicDiseaseOther string   `json:"chronicDiseaseOther,omitempty"`
	LongTermMedication  bool     `json:"longTermMedication"`

	TestDates         []PatientTestDate  `json:"testDates,omitempty"`
	OtherMedicalTests []OtherMedicalTest `json:"otherMedicalTests,omitempty"`
}

// PatientRequest is the caller's create/update shape
type PatientRequest struct {
	FullName           string `json:"fullName"`
	NationalIDNumber   string `json:"nationalIdNumber"`
	DateOfBirth        string `json:"dateOfBirth"`
	Gender             string `json:"gender"`
	ContactNumber1     string `json:"contactNumber1"`
	ContactNumber2     string `json:"contactNumber2,omitempty"`
	BloodGroup         string `json:"bloodGroup,omitempty"`
	MaritalStatus      string `json:"maritalStatus,omitempty"`
	Occupation         string `json:"occupation,omitempty"`
	HemophiliaCenterID string `json:"hemophiliaCenterId,omitempty"`
	VitalStatus        string `json:"vitalStatus,omitempty"`

	HomeState      string `json:"homeState,omitempty"`
	HomeCityOrTown string `json:"homeCityOrTown,omitempty"`
	HomeLocality   string `json:"homeLocality,omitempty"`
	ResidenceType  string `json:"residenceType,omitempty"`
	State          string `json:"state,omitempty"`
	CityOrTown     string `json:"cityOrTown,omitempty"`
	Locality       string `json:"locality,omitempty"`
	Country        string `json:"country,omitempty"`

	Diagnosis         string  `json:"diagnosis,omitempty"`
	IncidenceDate     string  `json:"incidenceDate,omitempty"`
	Severity          string  `json:"severity,omitempty"`
	HasFactorLevel    bool    `json:"hasFactorLevel,omitempty"`
	FactorPercent     float64 `json:"factorPercent,omitempty"`
	FactorPercentDate string  `json:"factorPercentDate,omitempty"`
	HasFamilyHistory  bool    `json:"hasFamilyHistory,omitempty"`
	FamilyHistory     string  `json:"familyHistory,omitempty"`

	HasInhibitors          bool             `json:"HasInhibitors"`
	InhibitorLevel         float64          `json:"inhibitorLevel,omitempty"`
	InhibitorScreeningDate string           `json:"inhibitorScreeningDate,omitempty"`
	Inhibitors             []InhibitorEntry `json:"inhibitors,omitempty"`

	HasChronicDiseases  bool     `json:"HasChronicDiseases"`
	ChronicDiseases     []string `json:"chronicDiseases,omitempty"`
	ChronicDiseaseOther string   `json:"chronicDiseaseOther,omitempty"`
	LongTermMedication  bool     `json:"longTermMedication,omitempty"`

	TestDates         []PatientTestDate  `json:"testDates,omitempty"`
	OtherMedicalTests []OtherMedicalTest `json:"otherMedicalTests,omitempty"`
}

// RequestFromPatient builds the editable request view of a stored patient.
// The measurement toggles are inferred from the stored values.
func RequestFromPatient(p Patient) PatientRequest {
	return PatientRequest{
		FullName:               p.FullName,
		NationalIDNumber:       p.NationalIDNumber,
		DateOfBirth:            p.DateOfBirth,
		Gender:                 p.Gender,
		ContactNumber1:         p.ContactNumber1,
		ContactNumber2:         p.ContactNumber2,
		BloodGroup:             p.BloodGroup,
		MaritalStatus:          p.MaritalStatus,
		Occupation:             p.Occupation,
		HemophiliaCenterID:     p.HemophiliaCenterID,
		VitalStatus:            p.VitalStatus,
		HomeState:              p.HomeState,
		HomeCityOrTown:         p.HomeCityOrTown,
		HomeLocality:           p.HomeLocality,
		ResidenceType:          p.ResidenceType,
		State:                  p.State,
		CityOrTown:             p.CityOrTown,
		Locality:               p.Locality,
		Country:                p.Country,
		Diagnosis:              p.Diagnosis,
		IncidenceDate:          p.IncidenceDate,
		Severity:               p.Severity,
		HasFactorLevel:         p.FactorPercent != 0 || p.FactorPercentDate != "",
		FactorPercent:          p.FactorPercent,
		FactorPercentDate:      p.FactorPercentDate,
		HasFamilyHistory:       p.FamilyHistory != "" && p.FamilyHistory != FamilyNone,
		FamilyHistory:          p.FamilyHistory,
		HasInhibitors:          p.HasInhibitors,
		InhibitorLevel:         p.InhibitorLevel,
		InhibitorScreeningDate: p.InhibitorScreeningDate,
		Inhibitors:             p.Inhibitors,
		HasChronicDiseases:     p.HasChronicDiseases,
		ChronicDiseases:        p.ChronicDiseases,
		ChronicDiseaseOther:    p.ChronicDiseaseOther,
		LongTermMedication:     p.LongTermMedication,
		TestDates:              p.TestDates,
		OtherMedicalTests:      p.OtherMedicalTests,
	}
}
