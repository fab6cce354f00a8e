package normalize

import (
	"strings"

	"github.com/hemocore/console/entities"
)

// NormalizePatient maps a backend patient record of any casing onto the
// internal Patient.
func NormalizePatient(r Record) entities.Patient {
	chronic := r.Strings("chronicDiseases")

	p := entities.Patient{
		ID:                 r.Int("id"),
		FullName:           r.String("fullName"),
		NationalIDNumber:   r.String("nationalIdNumber"),
		DateOfBirth:        r.String("dateOfBirth"),
		Gender:             strings.ToLower(r.String("gender")),
		HomeState:          r.String("homeState"),
		HomeCityOrTown:     r.String("homeCityOrTown"),
		HomeLocality:       r.String("homeLocality"),
		State:              r.String("state", "residenceState", "residence_state"),
		CityOrTown:         r.String("cityOrTown", "residenceCityOrTown", "residence_city_or_town"),
		Locality:           r.String("locality", "residenceLocalArea", "residence_local_area"),
		Country:            r.String("country", "residenceCountry", "residence_country"),
		MaritalStatus:      strings.ToLower(r.String("maritalStatus")),
		Occupation:         r.String("occupation"),
		ContactNumber:      r.String("contactNumber1", "ContactNumber", "contactNumber", "contact_number"),
		ContactNumber1:     r.String("contactNumber1", "ContactNumber", "contactNumber", "contact_number"),
		ContactNumber2:     r.String("contactNumber2"),
		VitalStatus:        r.StringOr(entities.VitalAlive, "vitalStatus"),
		HemophiliaCenterID: r.String("hemophiliaCenterId"),

		Diagnosis:         r.String("diagnosis", "DiagnosisType"),
		IncidenceDate:     r.String("incidenceDate"),
		Severity:          strings.ToLower(r.StringOr(entities.SeverityUnknown, "severity")),
		FactorPercent:     r.Float("factorPercent"),
		FactorPercentDate: r.String("factorPercentDate"),
		FamilyHistory:     familyHistoryFromWire(r.StringOr(entities.FamilyNone, "familyHistory")),
		BloodGroup:        r.String("bloodGroup"),

		HasInhibitors:          r.Bool("hasInhibitors", "inhibitor"),
		InhibitorLevel:         r.Float("inhibitorLevel"),
		InhibitorScreeningDate: r.String("inhibitorScreeningDate"),
		Inhibitors:             inhibitorsOf(r.Records("inhibitors")),

		ChronicDiseases:     chronic,
		HasChronicDiseases:  r.Bool("hasChronicDiseases") || len(chronic) > 0,
		ChronicDiseaseOther: r.String("chronicDiseaseOther"),
		LongTermMedication:  r.Bool("longTermMedication"),

		TestDates:         testDatesOf(r.Records("testDates")),
		OtherMedicalTests: otherTestsOf(r.Records("otherMedicalTests")),
	}

	p.ResidenceType = residenceTypeOf(r, p.Country)
	applyResidence(&p)

	return p
}

// residenceTypeOf honours an explicit residence location and otherwise
// infers OutsideSudan from the presence of a country.
func residenceTypeOf(r Record, country string) string {
	if loc := r.String("residenceLocation", "residenceType", "residence_type"); loc != "" {
		return loc
	}
	if country != "" {
		return entities.OutsideSudan
	}
	return entities.InsideSudan
}

// applyResidence clears the fields that belong to the other residence variant
func applyResidence(p *entities.Patient) {
	switch p.ResidenceType {
	case entities.InsideSudan:
		p.Country = ""
	case entities.OutsideSudan:
		p.State = ""
		p.CityOrTown = ""
		p.Locality = ""
	}
}

func inhibitorsOf(items []Record) []entities.InhibitorEntry {
	if len(items) == 0 {
		return nil
	}
	out := make([]entities.InhibitorEntry, 0, len(items))
	for _, item := range items {
		out = append(out, entities.InhibitorEntry{
			InhibitorLevel:         item.Float("inhibitorLevel"),
			InhibitorScreeningDate: item.String("inhibitorScreeningDate"),
		})
	}
	return out
}

func testDatesOf(items []Record) []entities.PatientTestDate {
	if len(items) == 0 {
		return nil
	}
	out := make([]entities.PatientTestDate, 0, len(items))
	for _, item := range items {
		out = append(out, entities.PatientTestDate{
			TestType: testTypeOf(item),
			HasTaken: item.Bool("hasTaken"),
			TestDate: item.String("testDate"),
			Result:   strings.ToLower(item.String("result")),
		})
	}
	return out
}

// testTypeOf accepts either the integer code or a type name
func testTypeOf(item Record) string {
	v, ok := item.Field("testType")
	if !ok {
		return entities.TestOther
	}
	switch t := v.(type) {
	case float64:
		return TestTypeName(int(t))
	case int:
		return TestTypeName(t)
	case string:
		if code := asFloat(t); code != 0 {
			return TestTypeName(int(code))
		}
		if t == entities.TestViralScreening {
			return entities.TestHBV
		}
		return t
	}
	return entities.TestOther
}

func otherTestsOf(items []Record) []entities.OtherMedicalTest {
	if len(items) == 0 {
		return nil
	}
	out := make([]entities.OtherMedicalTest, 0, len(items))
	for _, item := range items {
		out = append(out, entities.OtherMedicalTest{
			TestName:   item.String("testName"),
			TestResult: item.String("testResult", "result", "Result"),
			TestDate:   item.String("testDate"),
		})
	}
	return out
}
