package aggregate

import (
	"strings"

	"github.com/hemocore/console/entities"
	"github.com/hemocore/console/normalize"
)

// ServiceTypeStats counts visits per reconciled service type
type ServiceTypeStats struct {
	Total             int `json:"total"`
	NewVisit          int `json:"newVisit"`
	Followup          int `json:"followup"`
	HospitalAdmission int `json:"hospitalAdmission"`
}

func ServiceTypes(visits []entities.PatientVisit) ServiceTypeStats {
	stats := ServiceTypeStats{Total: len(visits)}
	for _, v := range visits {
		switch normalize.MigrateServiceType(v.ServiceType, v.DiagnosisType) {
		case entities.ServiceNewVisit:
			stats.NewVisit++
		case entities.ServiceFollowup:
			stats.Followup++
		case entities.ServiceHospitalAdmission:
			stats.HospitalAdmission++
		}
	}
	return stats
}

// VisitFilter narrows a visit listing. An empty ServiceType or "all"
// matches every visit; Search matches the patient's name or national id
// or the center name, case-insensitively.
type VisitFilter struct {
	Search      string
	ServiceType string
}

// KnownServiceType reports whether s can be used as VisitFilter.ServiceType
func KnownServiceType(s string) bool {
	switch s {
	case "", "all", entities.ServiceNewVisit, entities.ServiceFollowup, entities.ServiceHospitalAdmission:
		return true
	}
	return false
}

func FilterVisits(visits []entities.PatientVisit, patients []entities.Patient, f VisitFilter) []entities.PatientVisit {
	byID := make(map[int]entities.Patient, len(patients))
	for _, p := range patients {
		byID[p.ID] = p
	}

	search := strings.ToLower(strings.TrimSpace(f.Search))
	out := make([]entities.PatientVisit, 0)
	for _, v := range visits {
		if f.ServiceType != "" && f.ServiceType != "all" &&
			normalize.MigrateServiceType(v.ServiceType, v.DiagnosisType) != f.ServiceType {
			continue
		}
		if search != "" && !visitMatches(v, byID[v.PatientID], search) {
			continue
		}
		out = append(out, v)
	}
	return out
}

func visitMatches(v entities.PatientVisit, p entities.Patient, search string) bool {
	for _, field := range []string{p.FullName, p.NationalIDNumber, v.CenterName} {
		if strings.Contains(strings.ToLower(field), search) {
			return true
		}
	}
	return false
}

// SearchPatients keeps the patients whose name or national id contains
// search, case-insensitively. A blank search keeps everyone.
func SearchPatients(patients []entities.Patient, search string) []entities.Patient {
	search = strings.ToLower(strings.TrimSpace(search))
	if search == "" {
		return patients
	}

	out := make([]entities.Patient, 0)
	for _, p := range patients {
		if strings.Contains(strings.ToLower(p.FullName), search) ||
			strings.Contains(strings.ToLower(p.NationalIDNumber), search) {
			out = append(out, p)
		}
	}
	return out
}
