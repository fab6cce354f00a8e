package validation

import (
	"fmt"
	"strings"

	"github.com/hemocore/console/entities"
	"github.com/hemocore/console/normalize"
)

// FieldError is one missing or invalid request field
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// FieldErrors collects every problem found in a request body
type FieldErrors struct {
	Errors []FieldError `json:"errors"`
}

func (e *FieldErrors) Error() string {
	parts := make([]string, 0, len(e.Errors))
	for _, fe := range e.Errors {
		parts = append(parts, fe.Field+": "+fe.Message)
	}
	return "invalid request: " + strings.Join(parts, "; ")
}

// Fields returns the names of the offending fields in order
func (e *FieldErrors) Fields() []string {
	out := make([]string, 0, len(e.Errors))
	for _, fe := range e.Errors {
		out = append(out, fe.Field)
	}
	return out
}

func (e *FieldErrors) add(field, format string, args ...any) {
	e.Errors = append(e.Errors, FieldError{Field: field, Message: fmt.Sprintf(format, args...)})
}

func (e *FieldErrors) require(field, value string) {
	if strings.TrimSpace(value) == "" {
		e.add(field, "is required")
	}
}

func (e *FieldErrors) date(field, value string) {
	if value == "" {
		return
	}
	if _, ok := normalize.ParseDate(value); !ok {
		e.add(field, "is not a valid date")
	}
}

func (e *FieldErrors) oneOf(field, value string, allowed ...string) {
	if value == "" {
		return
	}
	for _, a := range allowed {
		if strings.EqualFold(value, a) {
			return
		}
	}
	e.add(field, "must be one of %s", strings.Join(allowed, ", "))
}

// err returns nil when no field failed
func (e *FieldErrors) err() error {
	if len(e.Errors) == 0 {
		return nil
	}
	return e
}

// ValidatePatientRequest checks the fields the patient form requires,
// including the residence fields of the selected variant
func ValidatePatientRequest(req entities.PatientRequest) error {
	errs := &FieldErrors{}

	errs.require("fullName", req.FullName)
	errs.require("nationalIdNumber", req.NationalIDNumber)
	errs.require("dateOfBirth", req.DateOfBirth)
	errs.require("gender", req.Gender)
	errs.require("homeState", req.HomeState)
	errs.require("homeCityOrTown", req.HomeCityOrTown)
	errs.require("homeLocality", req.HomeLocality)
	errs.require("residenceType", req.ResidenceType)
	errs.require("contactNumber1", req.ContactNumber1)
	errs.require("hemophiliaCenterId", req.HemophiliaCenterID)
	errs.require("severity", req.Severity)
	errs.require("bloodGroup", req.BloodGroup)
	errs.require("vitalStatus", req.VitalStatus)
	errs.require("maritalStatus", req.MaritalStatus)
	errs.require("occupation", req.Occupation)

	errs.oneOf("gender", req.Gender, "male", "female")
	errs.oneOf("severity", req.Severity,
		entities.SeverityMild, entities.SeverityModerate, entities.SeveritySevere, entities.SeverityUnknown)
	errs.oneOf("vitalStatus", req.VitalStatus, entities.VitalAlive, entities.VitalDied, entities.VitalUnknown)
	errs.oneOf("residenceType", req.ResidenceType, entities.InsideSudan, entities.OutsideSudan)

	switch req.ResidenceType {
	case entities.InsideSudan:
		errs.require("state", req.State)
		errs.require("cityOrTown", req.CityOrTown)
		errs.require("locality", req.Locality)
	case entities.OutsideSudan:
		errs.require("country", req.Country)
		errs.require("state", req.State)
	}

	if req.HasFamilyHistory {
		errs.require("familyHistory", req.FamilyHistory)
		errs.oneOf("familyHistory", req.FamilyHistory,
			entities.FamilyFirstDegree, entities.FamilySecondDegree, entities.FamilyThirdDegree, entities.FamilyNone)
	}

	errs.date("dateOfBirth", req.DateOfBirth)
	errs.date("incidenceDate", req.IncidenceDate)
	if req.HasFactorLevel {
		errs.date("factorPercentDate", req.FactorPercentDate)
		if req.FactorPercent < 0 || req.FactorPercent > 100 {
			errs.add("factorPercent", "must be between 0 and 100")
		}
	}
	if req.HasInhibitors {
		errs.date("inhibitorScreeningDate", req.InhibitorScreeningDate)
	}

	for _, d := range req.ChronicDiseases {
		errs.oneOf("chronicDiseases", d, entities.ChronicDiseaseVocabulary...)
	}

	return errs.err()
}

// ValidateVisitRequest checks the fields the visit form requires
func ValidateVisitRequest(req entities.PatientVisitRequest) error {
	errs := &FieldErrors{}

	if req.PatientID <= 0 {
		errs.add("patientId", "is required")
	}
	errs.require("visitDate", req.VisitDate)
	errs.date("visitDate", req.VisitDate)
	errs.require("visitType", req.VisitType)
	errs.oneOf("visitType", req.VisitType, entities.VisitTelephone, entities.VisitCenter)

	serviceType := normalize.MigrateServiceType(req.ServiceType, req.DiagnosisType)
	errs.require("serviceType", serviceType)
	errs.oneOf("serviceType", serviceType,
		entities.ServiceNewVisit, entities.ServiceFollowup, entities.ServiceHospitalAdmission)

	errs.require("centerState", req.CenterState)
	errs.require("centerName", req.CenterName)

	errs.oneOf("complaint", req.Complaint, entities.ComplaintVocabulary...)
	if req.Complaint == entities.ComplaintOther {
		errs.require("complaintOther", req.ComplaintOther)
	}

	for i, d := range req.Drugs {
		if d.Quantity <= 0 {
			errs.add(fmt.Sprintf("drugs[%d].quantity", i), "must be positive")
		}
	}

	return errs.err()
}

// ValidateFactorRequest checks an inventory lot
func ValidateFactorRequest(req entities.FactorRequest) error {
	errs := &FieldErrors{}

	errs.require("name", req.Name)
	errs.require("lotNo", req.LotNo)
	errs.require("expiryDate", req.ExpiryDate)
	errs.date("expiryDate", req.ExpiryDate)
	if req.Quantity < 0 {
		errs.add("quantity", "cannot be negative")
	}
	errs.oneOf("drugType", req.DrugType, entities.DrugTypeVocabulary...)

	return errs.err()
}

// ValidateCompanyRequest checks a supplier
func ValidateCompanyRequest(req entities.CompanyRequest) error {
	errs := &FieldErrors{}

	errs.require("name", req.Name)
	errs.require("country", req.Country)
	if req.Quantity < 0 {
		errs.add("quantity", "cannot be negative")
	}

	return errs.err()
}

// ValidateTreatmentRequest checks a treatment or phone treatment record
func ValidateTreatmentRequest(patientID int, noteDate string, quantity float64) error {
	errs := &FieldErrors{}

	if patientID <= 0 {
		errs.add("patientId", "is required")
	}
	errs.require("noteDate", noteDate)
	errs.date("noteDate", noteDate)
	if quantity < 0 {
		errs.add("quantityLot", "cannot be negative")
	}

	return errs.err()
}

// ValidateDistributionRequest checks an allocation of a lot to a state
func ValidateDistributionRequest(req entities.MedicineDistributionRequest) error {
	errs := &FieldErrors{}

	errs.require("state", req.State)
	if _, ok := stateIndex[strings.ToLower(strings.TrimSpace(req.State))]; req.State != "" && !ok {
		errs.add("state", "is not a known state")
	}
	if req.Quantity <= 0 {
		errs.add("quantity", "must be positive")
	}
	if req.QuantityDistributed < 0 || req.QuantityDistributed > req.Quantity {
		errs.add("quantityDistributed", "must be between 0 and quantity")
	}
	errs.date("distributionDate", req.DistributionDate)
	errs.date("expiryDate", req.ExpiryDate)
	errs.oneOf("status", req.Status, entities.StatusPending, entities.StatusDelivered)

	return errs.err()
}
