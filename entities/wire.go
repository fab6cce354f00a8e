package entities

// PatientWire is the PascalCase body the backend accepts on patient writes.
// Pointer fields without omitempty are sent as explicit nulls; pointer
// fields with omitempty are left out so a stored value is not overwritten.
type PatientWire struct {
	FullName           string  `json:"FullName"`
	NationalIDNumber   string  `json:"NationalIdNumber"`
	DateOfBirth        string  `json:"DateOfBirth"`
	Gender             string  `json:"Gender"`
	MaritalStatus      string  `json:"MaritalStatus"`
	Occupation         *string `json:"Occupation"`
	ContactNumber1     string  `json:"ContactNumber1"`
	ContactNumber2     *string `json:"ContactNumber2"`
	VitalStatus        string  `json:"VitalStatus"`
	HemophiliaCenterID string  `json:"HemophiliaCenterId"`
	Diagnosis          *string `json:"Diagnosis"`
	IncidenceDate      *string `json:"IncidenceDate"`
	Severity           *string `json:"Severity"`
	FamilyHistory      *string `json:"FamilyHistory"`
	BloodGroup         string  `json:"BloodGroup"`
	LongTermMedication bool    `json:"LongTermMedication"`

	ResidenceLocation string  `json:"ResidenceLocation"`
	HomeState         string  `json:"HomeState"`
	HomeCityOrTown    string  `json:"HomeCityOrTown"`
	HomeLocality      string  `json:"HomeLocality"`
	State             *string `json:"State"`
	CityOrTown        *string `json:"CityOrTown"`
	Locality          *string `json:"Locality"`
	Country           *string `json:"Country"`

	FactorPercent     *float64 `json:"FactorPercent,omitempty"`
	FactorPercentDate *string  `json:"FactorPercentDate,omitempty"`

	HasInhibitors          bool                 `json:"HasInhibitors"`
	InhibitorLevel         *float64             `json:"InhibitorLevel,omitempty"`
	InhibitorScreeningDate *string              `json:"InhibitorScreeningDate,omitempty"`
	Inhibitors             []InhibitorEntryWire `json:"Inhibitors,omitempty"`

	HasChronicDiseases  bool    `json:"HasChronicDiseases"`
	ChronicDiseases     *string `json:"ChronicDiseases"`
	ChronicDiseaseOther *string `json:"ChronicDiseaseOther"`

	TestDates         []TestDateWire         `json:"TestDates,omitempty"`
	OtherMedicalTests []OtherMedicalTestWire `json:"OtherMedicalTests,omitempty"`
}

type InhibitorEntryWire struct {
	InhibitorLevel         float64 `json:"InhibitorLevel"`
	InhibitorScreeningDate string  `json:"InhibitorScreeningDate"`
}

// TestDateWire carries the integer test-type code the backend stores
type TestDateWire struct {
	TestType int     `json:"TestType"`
	HasTaken bool    `json:"HasTaken"`
	TestDate *string `json:"TestDate"`
	Result   *string `json:"Result"`
}

type OtherMedicalTestWire struct {
	TestName   string `json:"TestName"`
	TestResult string `json:"TestResult"`
	TestDate   string `json:"TestDate"`
}

// VisitWire is the PascalCase body the backend accepts on visit writes
type VisitWire struct {
	PatientID        int    `json:"PatientId"`
	VisitDate        string `json:"VisitDate"`
	ServiceType      string `json:"ServiceType,omitempty"`
	DiagnosisType    string `json:"DiagnosisType,omitempty"`
	VisitType        string `json:"VisitType,omitempty"`
	VitalStatus      string `json:"VitalStatus,omitempty"`
	ContactRelation  string `json:"ContactRelation"`
	CenterState      string `json:"CenterState"`
	CenterName       string `json:"CenterName"`
	Complaint        string `json:"Complaint"`
	ComplaintOther   string `json:"ComplaintOther"`
	ComplaintDetails string `json:"ComplaintDetails"`
	Notes            string `json:"Notes"`
	EnteredBy        string `json:"EnteredBy"`
	ManagementPlan   string `json:"ManagementPlan"`

	Drugs             []VisitDrugWire        `json:"Drugs,omitempty"`
	Inhibitors        []InhibitorEntryWire   `json:"Inhibitors,omitempty"`
	OtherMedicalTests []OtherMedicalTestWire `json:"OtherMedicalTests,omitempty"`
}

type VisitDrugWire struct {
	DrugType      string  `json:"DrugType"`
	Concentration float64 `json:"Concentration"`
	Quantity      float64 `json:"Quantity"`
	LotNumber     string  `json:"LotNumber"`
	FactorID      int     `json:"FactorId"`
}
