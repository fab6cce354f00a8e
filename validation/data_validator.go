// Package validation checks caller input and snapshot integrity for the console.
package validation

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/hemocore/console/entities"
	"github.com/hemocore/console/interfaces"
)

// Pre-compiled regex patterns, compiled once at package initialization
var (
	// Search input: letters of any script, digits and safe punctuation
	inputRegex = regexp.MustCompile(`^[\p{L}\p{M}\p{N}\s\-\.\+'/]+$`)

	// Dangerous patterns as strings (faster than regex for simple substring matching)
	dangerousPatterns = []string{
		"<script", "</script>", "javascript:", "vbscript:", "onload=", "onerror=",
		"onclick=", "onmouseover=", "onfocus=", "onblur=", "onchange=", "onsubmit=",
		"eval(", "expression(", "url(", "import ", "@import", "binding(", "behavior(",
		// SQL injection patterns
		"' or ", "\" or ", "union select", "drop table", "delete from", "insert into",
		"update set", "--", "/*", "*/", "xp_", "sp_", "exec(", "execute(",
		// Command injection patterns
		"; ", "| ", "& ", "`", "$(", "${",
		// Path traversal patterns
		"../", "..\\", "%2e%2e", "file://",
		// LDAP injection patterns
		"*)(", "*|(", "*)%",
		// NoSQL injection patterns
		"{$ne:", "{$gt:", "{$where:", "{$or:", "{$regex:", "{$expr:",
	}

	// Canonical state names keyed by their lower-case form
	stateIndex = func() map[string]string {
		m := make(map[string]string, len(entities.SudanStates))
		for _, s := range entities.SudanStates {
			m[strings.ToLower(s)] = s
		}
		return m
	}()
)

// Compile-time check to ensure DataValidatorImpl implements DataValidator
var _ interfaces.DataValidator = (*DataValidatorImpl)(nil)

// DataValidatorImpl implements the interfaces.DataValidator interface
type DataValidatorImpl struct{}

// NewDataValidator creates a new data validator
func NewDataValidator() interfaces.DataValidator {
	return &DataValidatorImpl{}
}

// ReportDataQuality lists duplicates and dangling references in a snapshot.
// ID lists are capped at 10 entries; counts are exact.
func (v *DataValidatorImpl) ReportDataQuality(s entities.Snapshot) *interfaces.DataQualityReport {
	report := &interfaces.DataQualityReport{
		DuplicatePatientIDs:   []int{},
		DuplicateFactorIDs:    []int{},
		OrphanTreatmentIDs:    []int{},
		OrphanVisitIDs:        []int{},
		OrphanDistributionIDs: []int{},
	}

	// Check 1: duplicate patient IDs
	patients := make(map[int]bool, len(s.Patients))
	for _, p := range s.Patients {
		if patients[p.ID] {
			report.DuplicatePatientIDs = append(report.DuplicatePatientIDs, p.ID)
		}
		patients[p.ID] = true

		if (p.ResidenceType == entities.InsideSudan && p.State == "") ||
			(p.ResidenceType == entities.OutsideSudan && p.Country == "") {
			report.PatientsWithoutResidence++
		}
	}

	// Check 2: duplicate factor IDs and lots without a company
	factors := make(map[int]bool, len(s.Factors))
	for _, f := range s.Factors {
		if factors[f.ID] {
			report.DuplicateFactorIDs = append(report.DuplicateFactorIDs, f.ID)
		}
		factors[f.ID] = true

		if strings.TrimSpace(f.CompanyName) == "" {
			report.FactorsWithoutCompany++
		}
	}

	// An empty collection usually means its load failed, so references
	// into it are not checked
	if len(s.Patients) > 0 {
		// Check 3: treatments referencing unknown patients
		for _, t := range s.Treatments {
			if !patients[t.PatientID] {
				report.OrphanTreatments++
				report.OrphanTreatmentIDs = appendCapped(report.OrphanTreatmentIDs, t.ID)
			}
		}
		for _, t := range s.CellPhoneTreatments {
			if !patients[t.PatientID] {
				report.OrphanTreatments++
				report.OrphanTreatmentIDs = appendCapped(report.OrphanTreatmentIDs, t.ID)
			}
		}

		// Check 4: visits referencing unknown patients
		for _, visit := range s.Visits {
			if !patients[visit.PatientID] {
				report.OrphanVisits++
				report.OrphanVisitIDs = appendCapped(report.OrphanVisitIDs, visit.ID)
			}
		}
	}

	// Check 5: distributions referencing unknown factor lots
	if len(s.Factors) > 0 {
		for _, d := range s.Distributions {
			if d.FactorID != 0 && !factors[d.FactorID] {
				report.OrphanDistributions++
				report.OrphanDistributionIDs = appendCapped(report.OrphanDistributionIDs, d.ID)
			}
		}
	}

	sort.Ints(report.DuplicatePatientIDs)
	sort.Ints(report.DuplicateFactorIDs)

	return report
}

func appendCapped(ids []int, id int) []int {
	if len(ids) < 10 {
		return append(ids, id)
	}
	return ids
}

// ValidateInput validates free-text search input
func (v *DataValidatorImpl) ValidateInput(input string) error {
	if strings.TrimSpace(input) == "" {
		return fmt.Errorf("input cannot be empty")
	}

	if len([]rune(input)) < 2 {
		return fmt.Errorf("input too short: minimum 2 characters")
	}

	if len(input) > 100 {
		return fmt.Errorf("input too long: maximum 100 characters")
	}

	// Word count validation to prevent DoS attacks with many short words
	words := strings.Fields(input)
	if len(words) > 6 {
		return fmt.Errorf("search query too complex: maximum 6 words allowed")
	}

	lowerInput := strings.ToLower(input)
	for _, pattern := range dangerousPatterns {
		if strings.Contains(lowerInput, pattern) {
			return fmt.Errorf("input contains potentially dangerous content")
		}
	}

	if !inputRegex.MatchString(input) {
		return fmt.Errorf("input contains invalid characters. Only letters, numbers, spaces, hyphens, apostrophes, periods, slashes and plus sign are allowed")
	}

	if v.hasExcessiveRepetition(input) {
		return fmt.Errorf("input contains excessive character repetition")
	}

	return nil
}

// ValidateID validates a record ID path parameter.
// No regex used - strconv.Atoi() validates numeric format for free
func (v *DataValidatorImpl) ValidateID(input string) (int, error) {
	trimmedInput := strings.TrimSpace(input)
	if trimmedInput == "" {
		return -1, fmt.Errorf("input cannot be empty")
	}

	// Reject if original input contained whitespace (spaces, tabs, etc.)
	if len(input) != len(trimmedInput) {
		return -1, fmt.Errorf("input contains invalid characters. Only numeric characters are allowed")
	}

	if len(trimmedInput) > 10 {
		return -1, fmt.Errorf("ID too long: maximum 10 digits")
	}

	for _, r := range trimmedInput {
		if r < '0' || r > '9' {
			return -1, fmt.Errorf("input contains invalid characters. Only numeric characters are allowed")
		}
	}

	id, err := strconv.Atoi(trimmedInput)
	if err != nil {
		return -1, fmt.Errorf("input contains invalid characters. Only numeric characters are allowed")
	}

	if id <= 0 {
		return -1, fmt.Errorf("ID must be positive")
	}

	return id, nil
}

// ValidateState returns the canonical spelling of a Sudanese state,
// matching case-insensitively
func (v *DataValidatorImpl) ValidateState(input string) (string, error) {
	trimmedInput := strings.TrimSpace(input)
	if trimmedInput == "" {
		return "", fmt.Errorf("state cannot be empty")
	}

	state, ok := stateIndex[strings.ToLower(trimmedInput)]
	if !ok {
		return "", fmt.Errorf("unknown state: %s", trimmedInput)
	}

	return state, nil
}

// hasExcessiveRepetition checks for the same character repeated more than
// 10 times consecutively
func (v *DataValidatorImpl) hasExcessiveRepetition(input string) bool {
	for i := 0; i < len(input)-10; i++ {
		allSame := true
		for j := 1; j <= 10; j++ {
			if input[i] != input[i+j] {
				allSame = false
				break
			}
		}
		if allSame {
			return true
		}
	}
	return false
}
