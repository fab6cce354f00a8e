package normalize

import (
	"sort"
	"time"

	"github.com/hemocore/console/entities"
)

// NormalizeVisit maps a backend visit record of any casing onto the
// internal PatientVisit.
func NormalizeVisit(r Record) entities.PatientVisit {
	diagnosisType := r.String("diagnosisType")

	return entities.PatientVisit{
		ID:               r.Int("id"),
		PatientID:        r.Int("patientId"),
		VisitDate:        r.String("visitDate"),
		CenterState:      r.String("centerState"),
		CenterName:       r.String("centerName"),
		VisitType:        r.String("visitType"),
		ServiceType:      MigrateServiceType(r.String("serviceType"), diagnosisType),
		DiagnosisType:    diagnosisType,
		Complaint:        r.String("complaint"),
		ComplaintOther:   r.String("complaintOther"),
		ComplaintDetails: r.String("complaintDetails"),
		Notes:            r.String("notes"),
		EnteredBy:        r.String("enteredBy"),
		CreatedAt:        r.String("createdAt"),
		VitalStatus:      r.String("vitalStatus"),
		ManagementPlan:   r.String("managementPlan"),

		Drugs:             drugsOf(r.Records("drugs")),
		Inhibitors:        inhibitorsOf(r.Records("inhibitors")),
		OtherMedicalTests: otherTestsOf(r.Records("otherMedicalTests")),

		FactorLevelTestDates:    r.Strings("factorLevelTestDates"),
		InhibitorScreeningDates: r.Strings("inhibitorScreeningDates"),
		ViralScreeningDates:     r.Strings("viralScreeningDates"),
		OtherTestDates:          r.Strings("otherTestDates"),
	}
}

func drugsOf(items []Record) []entities.VisitDrug {
	if len(items) == 0 {
		return nil
	}
	out := make([]entities.VisitDrug, 0, len(items))
	for _, item := range items {
		out = append(out, entities.VisitDrug{
			DrugType:      item.String("drugType"),
			Concentration: item.Float("concentration"),
			Quantity:      item.Float("quantity"),
			LotNumber:     item.String("lotNumber"),
			FactorID:      item.Int("factorId"),
		})
	}
	return out
}

// SortVisitsNewestFirst orders visits by visit date, most recent first.
// Visits with unparseable dates sort last.
func SortVisitsNewestFirst(visits []entities.PatientVisit) {
	sort.SliceStable(visits, func(i, j int) bool {
		ti, okI := ParseDate(visits[i].VisitDate)
		tj, okJ := ParseDate(visits[j].VisitDate)
		if okI != okJ {
			return okI
		}
		return ti.After(tj)
	})
}

var dateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// ParseDate parses the date formats the backend emits
func ParseDate(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
