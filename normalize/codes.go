package normalize

import (
	"strings"

	"github.com/hemocore/console/entities"
)

var testTypeCodes = map[string]int{
	entities.TestFactorLevel:        1,
	entities.TestInhibitorScreening: 2,
	entities.TestHBV:                3,
	entities.TestHCV:                3,
	entities.TestHIV:                3,
	entities.TestHBsAgScreening:     4,
	entities.TestOther:              5,
}

var testTypeNames = map[int]string{
	1: entities.TestFactorLevel,
	2: entities.TestInhibitorScreening,
	3: entities.TestViralScreening,
	4: entities.TestHBsAgScreening,
	5: entities.TestOther,
}

// TestTypeCode maps a test type onto the backend's integer code.
// HBV, HCV and HIV share the viral screening code; unknown types are Other.
func TestTypeCode(testType string) int {
	if code, ok := testTypeCodes[testType]; ok {
		return code
	}
	return 5
}

// TestTypeName maps a backend code onto a display test type. The legacy
// viral screening code displays as HBV.
func TestTypeName(code int) string {
	name, ok := testTypeNames[code]
	if !ok {
		return entities.TestOther
	}
	if name == entities.TestViralScreening {
		return entities.TestHBV
	}
	return name
}

// MigrateServiceType reconciles the visit service type with the legacy
// diagnosis type. An explicit service type wins; otherwise new_patient
// becomes new_visit, admission becomes hospital_admission and any other
// legacy value passes through unchanged.
func MigrateServiceType(serviceType, diagnosisType string) string {
	if serviceType != "" {
		return serviceType
	}
	switch diagnosisType {
	case entities.LegacyNewPatient:
		return entities.ServiceNewVisit
	case entities.LegacyAdmission:
		return entities.ServiceHospitalAdmission
	}
	return diagnosisType
}

var (
	genderWire = map[string]string{
		"male":   "Male",
		"female": "Female",
	}
	maritalWire = map[string]string{
		"single":   "Single",
		"married":  "Married",
		"divorced": "Divorced",
		"widowed":  "Widowed",
	}
	severityWire = map[string]string{
		entities.SeverityMild:     "Mild",
		entities.SeverityModerate: "Moderate",
		entities.SeveritySevere:   "Severe",
	}
	familyHistoryWire = map[string]string{
		entities.FamilyFirstDegree:  "FirstDegree",
		entities.FamilySecondDegree: "SecondDegree",
		entities.FamilyThirdDegree:  "ThirdDegree",
	}
	familyHistoryInternal = invert(familyHistoryWire)
)

func invert(m map[string]string) map[string]string {
	out := make(map[string]string, len(m))
	for k, v := range m {
		out[v] = k
	}
	return out
}

// capitalize upper-cases the first letter, the fallback for unmapped enums
func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// toWire looks value up in table, falling back to capitalize
func toWire(table map[string]string, value string) string {
	if v, ok := table[strings.ToLower(value)]; ok {
		return v
	}
	return capitalize(value)
}

// familyHistoryFromWire folds FirstDegree style values into first_degree
func familyHistoryFromWire(value string) string {
	if v, ok := familyHistoryInternal[value]; ok {
		return v
	}
	return strings.ToLower(value)
}
