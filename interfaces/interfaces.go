// Package interfaces defines the core abstractions shared by the console's
// packages so that the data store, loader, scheduler and health checks can
// be swapped in tests.
package interfaces

import (
	"context"
	"time"

	"github.com/hemocore/console/entities"
)

// LoadReport describes one snapshot refresh. A collection listed in
// Failures was replaced by an empty list.
type LoadReport struct {
	StartedAt time.Time         `json:"startedAt"`
	Duration  time.Duration     `json:"duration"`
	Failures  map[string]string `json:"failures,omitempty"`
}

// Complete reports whether every collection loaded
func (r LoadReport) Complete() bool {
	return len(r.Failures) == 0
}

// DataQualityReport lists referential problems found in a snapshot
type DataQualityReport struct {
	DuplicatePatientIDs      []int `json:"duplicatePatientIds"`
	DuplicateFactorIDs       []int `json:"duplicateFactorIds"`
	OrphanTreatments         int   `json:"orphanTreatments"`
	OrphanTreatmentIDs       []int `json:"orphanTreatmentIds"`
	OrphanVisits             int   `json:"orphanVisits"`
	OrphanVisitIDs           []int `json:"orphanVisitIds"`
	OrphanDistributions      int   `json:"orphanDistributions"`
	OrphanDistributionIDs    []int `json:"orphanDistributionIds"`
	FactorsWithoutCompany    int   `json:"factorsWithoutCompany"`
	PatientsWithoutResidence int   `json:"patientsWithoutResidence"`
}

// DataStore defines the contract for snapshot storage.
// It provides thread-safe access with atomic swaps for zero-downtime
// refreshes.
type DataStore interface {
	GetSnapshot() entities.Snapshot
	GetLoadReport() LoadReport
	GetDataQuality() *DataQualityReport
	GetLastUpdated() time.Time
	IsUpdating() bool
	GetServerStartTime() time.Time

	UpdateData(snapshot entities.Snapshot, report LoadReport, quality *DataQualityReport)
	BeginUpdate() bool
	EndUpdate()
}

// SnapshotLoader reads every collection from the API. It never fails as a
// whole; per-collection failures are recorded in the report.
type SnapshotLoader interface {
	Load(ctx context.Context) (entities.Snapshot, LoadReport)
}

// Scheduler manages periodic snapshot refreshes
type Scheduler interface {
	Start() error
	Stop()
	Refresh(ctx context.Context) (LoadReport, error)
}

// HealthChecker reports the freshness and completeness of the snapshot
type HealthChecker interface {
	HealthCheck() (status string, details map[string]any, httpStatus int)
	CalculateNextUpdate() time.Time
}

// DataValidator checks caller input and snapshot integrity
type DataValidator interface {
	ValidateInput(input string) error
	ValidateID(input string) (int, error)
	ValidateState(input string) (string, error)
	ReportDataQuality(snapshot entities.Snapshot) *DataQualityReport
}
