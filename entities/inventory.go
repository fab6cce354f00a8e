package entities

// Distribution statuses
const (
	StatusPending   = "Pending"
	StatusDelivered = "Delivered"
)

// DrugTypeVocabulary lists the factor drug types a lot may carry
var DrugTypeVocabulary = []string{
	"Factor VIII",
	"Combined Factor VIII +VWF",
	"Factor IX",
	"Factor X",
	"Factor XIII",
	"Fibrinogen",
	"FEIBA",
	"Tranexamic acid",
	"Factor VIIa",
}

// Factor is a clotting-drug inventory lot
type Factor struct {
	ID           int     `json:"id"`
	Name         string  `json:"name"`
	LotNo        string  `json:"lotNo"`
	Quantity     float64 `json:"quantity"`
	ExpiryDate   string  `json:"expiryDate"`
	Mg           float64 `json:"mg"`
	DrugType     string  `json:"drugType"`
	SupplierName string  `json:"supplierName"`
	CompanyName  string  `json:"companyName"`
	Category     string  `json:"category,omitempty"`
}

// FactorRequest is the create/update shape for factors
type FactorRequest struct {
	Name         string  `json:"name"`
	LotNo        string  `json:"lotNo"`
	Quantity     float64 `json:"quantity"`
	ExpiryDate   string  `json:"expiryDate"`
	Mg           float64 `json:"mg"`
	DrugType     string  `json:"drugType"`
	SupplierName string  `json:"supplierName"`
	CompanyName  string  `json:"companyName"`
	Category     string  `json:"category,omitempty"`
}

// Company supplies factor lots
type Company struct {
	ID       int     `json:"id"`
	Name     string  `json:"name"`
	Country  string  `json:"country"`
	Quantity float64 `json:"quantity"`
}

// CompanyRequest is the create/update shape for companies
type CompanyRequest struct {
	Name     string  `json:"name"`
	Country  string  `json:"country"`
	Quantity float64 `json:"quantity"`
}

// Treatment is a factor dose recorded at a treatment center
type Treatment struct {
	ID                    int     `json:"id"`
	PatientID             int     `json:"patientId"`
	TreatmentCenter       string  `json:"treatmentCenter"`
	TreatmentType         string  `json:"treatmentType"`
	IndicationOfTreatment string  `json:"indicationOfTreatment"`
	Lot                   string  `json:"lot"`
	NoteDate              string  `json:"noteDate"`
	QuantityLot           float64 `json:"quantityLot"`
}

// TreatmentRequest is the create/update shape for treatments
type TreatmentRequest struct {
	PatientID             int     `json:"patientId"`
	TreatmentCenter       string  `json:"treatmentCenter"`
	TreatmentType         string  `json:"treatmentType"`
	IndicationOfTreatment string  `json:"indicationOfTreatment"`
	Lot                   string  `json:"lot"`
	NoteDate              string  `json:"noteDate"`
	QuantityLot           float64 `json:"quantityLot"`
}

// CellPhoneTreatment is a treatment arranged by phone
type CellPhoneTreatment struct {
	ID                    int     `json:"id"`
	PatientID             int     `json:"patientId"`
	CellTreatmentCenter   string  `json:"cellTreatmentCenter"`
	TreatmentType         string  `json:"treatmentType"`
	IndicationOfTreatment string  `json:"indicationOfTreatment"`
	Lot                   string  `json:"lot"`
	NoteDate              string  `json:"noteDate"`
	QuantityLot           float64 `json:"quantityLot"`
}

// CellPhoneTreatmentRequest is the create/update shape for phone treatments
type CellPhoneTreatmentRequest struct {
	PatientID             int     `json:"patientId"`
	CellTreatmentCenter   string  `json:"cellTreatmentCenter,omitempty"`
	TreatmentType         string  `json:"treatmentType,omitempty"`
	IndicationOfTreatment string  `json:"indicationOfTreatment,omitempty"`
	Lot                   string  `json:"lot,omitempty"`
	NoteDate              string  `json:"noteDate"`
	QuantityLot           float64 `json:"quantityLot"`
}

// MedicineDistribution allocates part of a factor lot to a state
type MedicineDistribution struct {
	ID                  int     `json:"id"`
	FactorID            int     `json:"factorId"`
	State               string  `json:"state"`
	Quantity            float64 `json:"quantity"`
	QuantityDistributed float64 `json:"quantityDistributed"`
	DistributionDate    string  `json:"distributionDate"`
	ExpiryDate          string  `json:"expiryDate"`
	Mg                  float64 `json:"mg"`
	CompanyName         string  `json:"companyName"`
	Category            string  `json:"category"`
	Status              string  `json:"status"`
	DeliveryDate        string  `json:"deliveryDate"`
}

// MedicineDistributionRequest is the create/update shape for distributions
type MedicineDistributionRequest struct {
	FactorID            int     `json:"factorId"`
	State               string  `json:"state"`
	Quantity            float64 `json:"quantity"`
	QuantityDistributed float64 `json:"quantityDistributed"`
	DistributionDate    string  `json:"distributionDate"`
	ExpiryDate          string  `json:"expiryDate"`
	Mg                  float64 `json:"mg"`
	CompanyName         string  `json:"companyName"`
	Category            string  `json:"category"`
	Status              string  `json:"status,omitempty"`
	DeliveryDate        string  `json:"deliveryDate,omitempty"`
}

// RequestFromDistribution returns the update shape of d
func RequestFromDistribution(d MedicineDistribution) MedicineDistributionRequest {
	return MedicineDistributionRequest{
		FactorID:            d.FactorID,
		State:               d.State,
		Quantity:            d.Quantity,
		QuantityDistributed: d.QuantityDistributed,
		DistributionDate:    d.DistributionDate,
		ExpiryDate:          d.ExpiryDate,
		Mg:                  d.Mg,
		CompanyName:         d.CompanyName,
		Category:            d.Category,
		Status:              d.Status,
		DeliveryDate:        d.DeliveryDate,
	}
}
