package entities

// Visit types
const (
	VisitTelephone = "telephone_consultation"
	VisitCenter    = "center_visit"
)

// Service types, with the legacy diagnosis types they replace
const (
	ServiceNewVisit          = "new_visit"
	ServiceFollowup          = "followup"
	ServiceHospitalAdmission = "hospital_admission"

	LegacyNewPatient = "new_patient"
	LegacyAdmission  = "admission"
)

// ComplaintOther requires free text in ComplaintOther
const ComplaintOther = "Other"

// ComplaintVocabulary lists the presenting complaints a visit may record
var ComplaintVocabulary = []string{
	"Joint hemarthrosis",
	"Intracranial hemorrhage",
	"Iliopsoas hematoma",
	"Hematemesis",
	"Melena",
	"Gum bleeding",
	"Tooth extraction",
	"Tongue bleeding",
	"Epistaxis",
	"Hematuria",
	"Crush injury/RTA",
	"Hemorrhagic cyst",
	"Menorrhagia",
	"Subconjunctival bleeding",
	"Orbital hematoma",
	"Preoperative preparation/intervention",
	"Labour",
	"Circumcision",
	ComplaintOther,
}

// VisitDrug is a drug administered during a visit, snapshotted from the
// factor lot at administration time.
type VisitDrug struct {
	DrugType      string  `json:"drugType"`
	Concentration float64 `json:"concentration"`
	Quantity      float64 `json:"quantity"`
	LotNumber     string  `json:"lotNumber,omitempty"`
	FactorID      int     `json:"factorId,omitempty"`
}

// PatientVisit is the normalized visit record
type PatientVisit struct {
	ID               int    `json:"id"`
	PatientID        int    `json:"patientId"`
	VisitDate        string `json:"visitDate"`
	CenterState      string `json:"centerState,omitempty"`
	CenterName       string `json:"centerName,omitempty"`
	VisitType        string `json:"visitType,omitempty"`
	ServiceType      string `json:"serviceType,omitempty"`
	DiagnosisType    string `json:"diagnosisType,omitempty"`
	Complaint        string `json:"complaint,omitempty"`
	ComplaintOther   string `json:"complaintOther,omitempty"`
	ComplaintDetails string `json:"complaintDetails,omitempty"`
	Notes            string `json:"notes,omitempty"`
	EnteredBy        string `json:"enteredBy,omitempty"`
	CreatedAt        string `json:"createdAt,omitempty"`
	VitalStatus      string `json:"vitalStatus,omitempty"`
	ManagementPlan   string `json:"managementPlan,omitempty"`

	Drugs             []VisitDrug        `json:"drugs,omitempty"`
	Inhibitors        []InhibitorEntry   `json:"inhibitors,omitempty"`
	OtherMedicalTests []OtherMedicalTest `json:"otherMedicalTests,omitempty"`

	FactorLevelTestDates    []string `json:"factorLevelTestDates"`
	InhibitorScreeningDates []string `json:"inhibitorScreeningDates"`
	ViralScreeningDates     []string `json:"viralScreeningDates"`
	OtherTestDates          []string `json:"otherTestDates"`
}

// PatientVisitRequest is the caller's create/update shape for visits
type PatientVisitRequest struct {
	PatientID        int    `json:"patientId"`
	VisitDate        string `json:"visitDate"`
	VisitType        string `json:"visitType,omitempty"`
	ServiceType      string `json:"serviceType,omitempty"`
	DiagnosisType    string `json:"diagnosisType,omitempty"`
	ContactRelation  string `json:"contactRelation,omitempty"`
	CenterState      string `json:"centerState,omitempty"`
	CenterName       string `json:"centerName,omitempty"`
	Complaint        string `json:"complaint,omitempty"`
	ComplaintOther   string `json:"complaintOther,omitempty"`
	ComplaintDetails string `json:"complaintDetails,omitempty"`
	Notes            string `json:"notes,omitempty"`
	EnteredBy        string `json:"enteredBy,omitempty"`
	ManagementPlan   string `json:"managementPlan,omitempty"`
	VitalStatus      string `json:"vitalStatus,omitempty"`

	Drugs             []VisitDrug        `json:"drugs,omitempty"`
	Inhibitors        []InhibitorEntry   `json:"inhibitors,omitempty"`
	OtherMedicalTests []OtherMedicalTest `json:"otherMedicalTests,omitempty"`
}

// DrugFromFactor snapshots a factor lot into a visit drug line
func DrugFromFactor(f Factor, quantity float64) VisitDrug {
	return VisitDrug{
		DrugType:      f.DrugType,
		Concentration: f.Mg,
		Quantity:      quantity,
		LotNumber:     f.LotNo,
		FactorID:      f.ID,
	}
}
