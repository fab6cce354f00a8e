package aggregate

import (
	"sort"
	"time"

	"github.com/hemocore/console/entities"
	"github.com/hemocore/console/normalize"
)

// DashboardStats are the headline counts of the console dashboard
type DashboardStats struct {
	TotalPatients          int `json:"totalPatients"`
	TotalCompanies         int `json:"totalCompanies"`
	TotalFactors           int `json:"totalFactors"`
	TotalTreatments        int `json:"totalTreatments"`
	TotalDistributions     int `json:"totalDistributions"`
	PendingDistributions   int `json:"pendingDistributions"`
	DeliveredDistributions int `json:"deliveredDistributions"`
}

func Dashboard(s entities.Snapshot) DashboardStats {
	stats := DashboardStats{
		TotalPatients:      len(s.Patients),
		TotalCompanies:     len(s.Companies),
		TotalFactors:       len(s.Factors),
		TotalTreatments:    len(s.Treatments),
		TotalDistributions: len(s.Distributions),
	}
	for _, d := range s.Distributions {
		if IsDelivered(d) {
			stats.DeliveredDistributions++
		} else {
			stats.PendingDistributions++
		}
	}
	return stats
}

// Overview is the dashboard: counts plus the stock and expiry alert lists
type Overview struct {
	Stats        DashboardStats    `json:"stats"`
	LowStock     []entities.Factor `json:"lowStock"`
	ExpiringSoon []entities.Factor `json:"expiringSoon"`
	Expired      []entities.Factor `json:"expired"`
}

func BuildOverview(s entities.Snapshot, now time.Time, th Thresholds) Overview {
	return Overview{
		Stats:        Dashboard(s),
		LowStock:     LowStock(s.Factors, th.LowStock),
		ExpiringSoon: FactorsInClass(s.Factors, ExpiringSoon, now, th.ExpiryWindow),
		Expired:      FactorsInClass(s.Factors, Expired, now, th.ExpiryWindow),
	}
}

// StateStatistics is the patient and treatment load of one residence state
type StateStatistics struct {
	State             string  `json:"state"`
	PatientCount      int     `json:"patientCount"`
	TreatmentCount    int     `json:"treatmentCount"`
	FactorConsumption float64 `json:"factorConsumption"`
}

// StateStats groups patients by residence state and joins their treatments.
// Treatments of unknown patients are ignored.
func StateStats(patients []entities.Patient, treatments []entities.Treatment) []StateStatistics {
	index := make(map[string]int)
	stateOf := make(map[int]string, len(patients))
	out := make([]StateStatistics, 0)

	for _, p := range patients {
		stateOf[p.ID] = p.State
		i, ok := index[p.State]
		if !ok {
			i = len(out)
			index[p.State] = i
			out = append(out, StateStatistics{State: p.State})
		}
		out[i].PatientCount++
	}

	for _, t := range treatments {
		state, ok := stateOf[t.PatientID]
		if !ok {
			continue
		}
		s := &out[index[state]]
		s.TreatmentCount++
		s.FactorConsumption += t.QuantityLot
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].PatientCount > out[j].PatientCount
	})
	return out
}

// CompanyStatistics is the factor stock held from one company
type CompanyStatistics struct {
	Company       string   `json:"company"`
	FactorCount   int      `json:"factorCount"`
	TotalQuantity float64  `json:"totalQuantity"`
	Categories    []string `json:"categories"`
}

func CompanyStats(factors []entities.Factor) []CompanyStatistics {
	index := make(map[string]int)
	out := make([]CompanyStatistics, 0)

	for _, f := range factors {
		i, ok := index[f.CompanyName]
		if !ok {
			i = len(out)
			index[f.CompanyName] = i
			out = append(out, CompanyStatistics{Company: f.CompanyName, Categories: []string{}})
		}
		s := &out[i]
		s.FactorCount++
		s.TotalQuantity += f.Quantity
		if !contains(s.Categories, f.Category) {
			s.Categories = append(s.Categories, f.Category)
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].TotalQuantity > out[j].TotalQuantity
	})
	return out
}

// MonthlyTreatment counts treatments noted in one calendar month
type MonthlyTreatment struct {
	Month string `json:"month"`
	Year  int    `json:"year"`
	Count int    `json:"count"`

	month time.Month
}

const maxMonths = 12

// MonthlyTreatments groups treatments by note month, newest year first and
// busiest month first within a year, keeping at most twelve months.
// Treatments with unparseable note dates are skipped.
func MonthlyTreatments(treatments []entities.Treatment) []MonthlyTreatment {
	type key struct {
		year  int
		month time.Month
	}
	index := make(map[key]int)
	out := make([]MonthlyTreatment, 0)

	for _, t := range treatments {
		at, ok := normalize.ParseDate(t.NoteDate)
		if !ok {
			continue
		}
		k := key{at.Year(), at.Month()}
		i, seen := index[k]
		if !seen {
			i = len(out)
			index[k] = i
			out = append(out, MonthlyTreatment{
				Month: at.Format("January 2006"),
				Year:  at.Year(),
				month: at.Month(),
			})
		}
		out[i].Count++
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Year != out[j].Year {
			return out[i].Year > out[j].Year
		}
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].month > out[j].month
	})

	if len(out) > maxMonths {
		out = out[:maxMonths]
	}
	return out
}

// TypeCount is a label with its number of occurrences
type TypeCount struct {
	Type  string `json:"type"`
	Count int    `json:"count"`
}

// TreatmentTypes counts treatments per treatment type in first-seen order
func TreatmentTypes(treatments []entities.Treatment) []TypeCount {
	labels := make([]string, 0, len(treatments))
	for _, t := range treatments {
		labels = append(labels, t.TreatmentType)
	}
	return countInOrder(labels)
}

// FactorCategories counts factor lots per category in first-seen order
func FactorCategories(factors []entities.Factor) []TypeCount {
	labels := make([]string, 0, len(factors))
	for _, f := range factors {
		labels = append(labels, f.Category)
	}
	return countInOrder(labels)
}

func countInOrder(labels []string) []TypeCount {
	index := make(map[string]int)
	out := make([]TypeCount, 0)
	for _, label := range labels {
		i, ok := index[label]
		if !ok {
			i = len(out)
			index[label] = i
			out = append(out, TypeCount{Type: label})
		}
		out[i].Count++
	}
	return out
}

func contains(items []string, s string) bool {
	for _, item := range items {
		if item == s {
			return true
		}
	}
	return false
}
