// Package aggregate computes the dashboard and report views from a
// snapshot. Every function is pure and takes the reference time as an
// argument.
package aggregate

import (
	"sort"
	"time"

	"github.com/hemocore/console/entities"
	"github.com/hemocore/console/normalize"
)

// ExpiryClass partitions lots by expiry date
type ExpiryClass string

const (
	Expired      ExpiryClass = "expired"
	ExpiringSoon ExpiryClass = "expiring_soon"
	Active       ExpiryClass = "active"
)

const (
	DefaultExpiryWindow      = 30 * 24 * time.Hour
	DefaultLowStockThreshold = 10
)

// Thresholds parameterizes the stock and expiry alerts
type Thresholds struct {
	LowStock     float64
	ExpiryWindow time.Duration
}

// DefaultThresholds returns a low stock threshold of 10 and a 30 day window
func DefaultThresholds() Thresholds {
	return Thresholds{LowStock: DefaultLowStockThreshold, ExpiryWindow: DefaultExpiryWindow}
}

// ClassifyExpiry places an expiry date in exactly one class. Dates that
// cannot be parsed are Active.
func ClassifyExpiry(expiry string, now time.Time, window time.Duration) ExpiryClass {
	at, ok := normalize.ParseDate(expiry)
	if !ok {
		return Active
	}
	if at.Before(now) {
		return Expired
	}
	if !at.After(now.Add(window)) {
		return ExpiringSoon
	}
	return Active
}

// LowStock returns the factors whose quantity is below threshold
func LowStock(factors []entities.Factor, threshold float64) []entities.Factor {
	out := make([]entities.Factor, 0)
	for _, f := range factors {
		if f.Quantity < threshold {
			out = append(out, f)
		}
	}
	return out
}

// FactorsInClass returns the factors of one expiry class, soonest expiry first
func FactorsInClass(factors []entities.Factor, class ExpiryClass, now time.Time, window time.Duration) []entities.Factor {
	out := make([]entities.Factor, 0)
	for _, f := range factors {
		if ClassifyExpiry(f.ExpiryDate, now, window) == class {
			out = append(out, f)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return expiresBefore(out[i].ExpiryDate, out[j].ExpiryDate)
	})
	return out
}

// DistributionsInClass is FactorsInClass for distributions
func DistributionsInClass(ds []entities.MedicineDistribution, class ExpiryClass, now time.Time, window time.Duration) []entities.MedicineDistribution {
	out := make([]entities.MedicineDistribution, 0)
	for _, d := range ds {
		if ClassifyExpiry(d.ExpiryDate, now, window) == class {
			out = append(out, d)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return expiresBefore(out[i].ExpiryDate, out[j].ExpiryDate)
	})
	return out
}

func expiresBefore(a, b string) bool {
	ta, okA := normalize.ParseDate(a)
	tb, okB := normalize.ParseDate(b)
	if okA != okB {
		return okA
	}
	return ta.Before(tb)
}

// ExpiryStatus counts factor lots per expiry class
type ExpiryStatus struct {
	Expired      int `json:"expired"`
	ExpiringSoon int `json:"expiringSoon"`
	Active       int `json:"active"`
}

func ExpirySummary(factors []entities.Factor, now time.Time, window time.Duration) ExpiryStatus {
	var s ExpiryStatus
	for _, f := range factors {
		switch ClassifyExpiry(f.ExpiryDate, now, window) {
		case Expired:
			s.Expired++
		case ExpiringSoon:
			s.ExpiringSoon++
		default:
			s.Active++
		}
	}
	return s
}
