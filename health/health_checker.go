// Package health reports the freshness and completeness of the console's snapshot.
package health

import (
	"math"
	"net/http"
	"sort"
	"time"

	"github.com/hemocore/console/entities"
	"github.com/hemocore/console/interfaces"
)

// HealthCheckerImpl implements the interfaces.HealthChecker interface
type HealthCheckerImpl struct {
	dataStore interfaces.DataStore
	interval  time.Duration
	now       func() time.Time
}

// NewHealthChecker creates a new health checker. Staleness thresholds are
// multiples of the refresh interval.
func NewHealthChecker(dataStore interfaces.DataStore, interval time.Duration) interfaces.HealthChecker {
	if interval <= 0 {
		interval = 15 * time.Minute
	}
	return &HealthCheckerImpl{
		dataStore: dataStore,
		interval:  interval,
		now:       time.Now,
	}
}

// HealthCheck returns the health status, the response data and the HTTP
// code for the /health endpoint
func (h *HealthCheckerImpl) HealthCheck() (status string, data map[string]any, httpStatus int) {
	snapshot := h.dataStore.GetSnapshot()
	report := h.dataStore.GetLoadReport()
	lastUpdate := h.dataStore.GetLastUpdated()
	isUpdating := h.dataStore.IsUpdating()

	dataAge := h.now().Sub(lastUpdate)
	counts := snapshot.Counts()

	switch {
	case lastUpdate.IsZero():
		status = "unhealthy"
		httpStatus = http.StatusServiceUnavailable

	case len(report.Failures) >= len(counts):
		status = "unhealthy"
		httpStatus = http.StatusServiceUnavailable

	case dataAge > 6*h.interval:
		status = "unhealthy"
		httpStatus = http.StatusServiceUnavailable

	case dataAge > 3*h.interval:
		status = "degraded"
		httpStatus = http.StatusServiceUnavailable

	case isUpdating && dataAge > 2*h.interval:
		status = "degraded"
		httpStatus = http.StatusServiceUnavailable

	case !report.Complete():
		status = "degraded"
		httpStatus = http.StatusOK

	default:
		status = "healthy"
		httpStatus = http.StatusOK
	}

	failed := make([]string, 0, len(report.Failures))
	for name := range report.Failures {
		failed = append(failed, name)
	}
	sort.Strings(failed)

	data = map[string]any{
		"last_update":        lastUpdate.Format(time.RFC3339),
		"data_age_minutes":   math.Round(dataAge.Minutes()*10) / 10,
		"next_update":        h.CalculateNextUpdate().Format(time.RFC3339),
		"is_updating":        isUpdating,
		"failed_collections": failed,
		"patients":           counts[entities.CollectionPatients],
		"factors":            counts[entities.CollectionFactors],
		"distributions":      counts[entities.CollectionDistributions],
		"records":            counts,
	}

	return status, data, httpStatus
}

// CalculateNextUpdate returns the next scheduled refresh time
func (h *HealthCheckerImpl) CalculateNextUpdate() time.Time {
	lastUpdate := h.dataStore.GetLastUpdated()
	if lastUpdate.IsZero() {
		return h.now()
	}

	next := lastUpdate.Add(h.interval)
	// A missed refresh is due now
	if now := h.now(); next.Before(now) {
		return now
	}
	return next
}
