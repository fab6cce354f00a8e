package normalize

import (
	"strings"

	"github.com/hemocore/console/entities"
)

// DenormalizePatient shapes a patient request into the backend's wire body
func DenormalizePatient(req entities.PatientRequest) entities.PatientWire {
	chronic := nonEmpty(req.ChronicDiseases)

	w := entities.PatientWire{
		FullName:           req.FullName,
		NationalIDNumber:   req.NationalIDNumber,
		DateOfBirth:        req.DateOfBirth,
		Gender:             toWire(genderWire, req.Gender),
		MaritalStatus:      toWire(maritalWire, req.MaritalStatus),
		Occupation:         nullable(req.Occupation),
		ContactNumber1:     req.ContactNumber1,
		ContactNumber2:     nullable(req.ContactNumber2),
		VitalStatus:        orDefault(req.VitalStatus, entities.VitalAlive),
		HemophiliaCenterID: req.HemophiliaCenterID,
		Diagnosis:          nullable(req.Diagnosis),
		IncidenceDate:      nullable(req.IncidenceDate),
		Severity:           nullable(toWire(severityWire, req.Severity)),
		BloodGroup:         req.BloodGroup,
		LongTermMedication: req.LongTermMedication,

		ResidenceLocation: orDefault(req.ResidenceType, entities.InsideSudan),
		HomeState:         req.HomeState,
		HomeCityOrTown:    req.HomeCityOrTown,
		HomeLocality:      req.HomeLocality,

		HasInhibitors: req.HasInhibitors,
		Inhibitors:    inhibitorsWire(req.Inhibitors),

		HasChronicDiseases:  req.HasChronicDiseases || len(chronic) > 0,
		ChronicDiseaseOther: nullable(req.ChronicDiseaseOther),

		TestDates:         testDatesWire(req.TestDates),
		OtherMedicalTests: otherTestsWire(req.OtherMedicalTests),
	}

	if len(chronic) > 0 {
		w.ChronicDiseases = nullable(strings.Join(chronic, ", "))
	} else {
		w.HasChronicDiseases = false
	}

	if req.HasFamilyHistory {
		if v, ok := familyHistoryWire[req.FamilyHistory]; ok {
			w.FamilyHistory = &v
		}
	}

	if req.HasFactorLevel {
		w.FactorPercent = nonZero(req.FactorPercent)
		w.FactorPercentDate = nullable(req.FactorPercentDate)
	}

	if req.HasInhibitors {
		w.InhibitorLevel = nonZero(req.InhibitorLevel)
		w.InhibitorScreeningDate = nullable(req.InhibitorScreeningDate)
	}

	switch w.ResidenceLocation {
	case entities.OutsideSudan:
		w.Country = nullable(req.Country)
	default:
		w.State = nullable(req.State)
		w.CityOrTown = nullable(req.CityOrTown)
		w.Locality = nullable(req.Locality)
	}

	return w
}

// DenormalizeVisit shapes a visit request into the backend's wire body
func DenormalizeVisit(req entities.PatientVisitRequest) entities.VisitWire {
	w := entities.VisitWire{
		PatientID:        req.PatientID,
		VisitDate:        req.VisitDate,
		ServiceType:      MigrateServiceType(req.ServiceType, req.DiagnosisType),
		DiagnosisType:    req.DiagnosisType,
		VisitType:        req.VisitType,
		VitalStatus:      req.VitalStatus,
		ContactRelation:  req.ContactRelation,
		CenterState:      req.CenterState,
		CenterName:       req.CenterName,
		Complaint:        req.Complaint,
		ComplaintDetails: req.ComplaintDetails,
		Notes:            req.Notes,
		EnteredBy:        req.EnteredBy,
		ManagementPlan:   req.ManagementPlan,

		Inhibitors:        inhibitorsWire(req.Inhibitors),
		OtherMedicalTests: otherTestsWire(req.OtherMedicalTests),
	}

	if req.Complaint == entities.ComplaintOther {
		w.ComplaintOther = req.ComplaintOther
	}

	if len(req.Drugs) > 0 {
		w.Drugs = make([]entities.VisitDrugWire, 0, len(req.Drugs))
		for _, d := range req.Drugs {
			w.Drugs = append(w.Drugs, entities.VisitDrugWire{
				DrugType:      d.DrugType,
				Concentration: d.Concentration,
				Quantity:      d.Quantity,
				LotNumber:     d.LotNumber,
				FactorID:      d.FactorID,
			})
		}
	}

	return w
}

func inhibitorsWire(items []entities.InhibitorEntry) []entities.InhibitorEntryWire {
	if len(items) == 0 {
		return nil
	}
	out := make([]entities.InhibitorEntryWire, 0, len(items))
	for _, inh := range items {
		out = append(out, entities.InhibitorEntryWire{
			InhibitorLevel:         inh.InhibitorLevel,
			InhibitorScreeningDate: inh.InhibitorScreeningDate,
		})
	}
	return out
}

// testDatesWire drops tests that were not taken
func testDatesWire(items []entities.PatientTestDate) []entities.TestDateWire {
	var out []entities.TestDateWire
	for _, td := range items {
		if !td.HasTaken {
			continue
		}
		out = append(out, entities.TestDateWire{
			TestType: TestTypeCode(td.TestType),
			HasTaken: true,
			TestDate: nullable(td.TestDate),
			Result:   nullable(td.Result),
		})
	}
	return out
}

func otherTestsWire(items []entities.OtherMedicalTest) []entities.OtherMedicalTestWire {
	if len(items) == 0 {
		return nil
	}
	out := make([]entities.OtherMedicalTestWire, 0, len(items))
	for _, t := range items {
		out = append(out, entities.OtherMedicalTestWire{
			TestName:   t.TestName,
			TestResult: t.TestResult,
			TestDate:   t.TestDate,
		})
	}
	return out
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func nonZero(f float64) *float64 {
	if f == 0 {
		return nil
	}
	return &f
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}

func nonEmpty(items []string) []string {
	var out []string
	for _, s := range items {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
