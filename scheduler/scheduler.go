// Package scheduler refreshes the console's snapshot on a fixed interval
// and monitors its freshness. Dependencies are injected so that the loader
// and the store can be replaced in tests.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-co-op/gocron"

	"github.com/hemocore/console/aggregate"
	"github.com/hemocore/console/entities"
	"github.com/hemocore/console/interfaces"
	"github.com/hemocore/console/logging"
	"github.com/hemocore/console/metrics"
)

// Compile-time check to ensure Scheduler implements Scheduler interface
var _ interfaces.Scheduler = (*Scheduler)(nil)

// ErrRefreshInProgress is returned by Refresh when another refresh holds the store
var ErrRefreshInProgress = errors.New("snapshot refresh already in progress")

// refreshTimeout bounds one background refresh
const refreshTimeout = 2 * time.Minute

// Scheduler handles snapshot refreshes and health monitoring
type Scheduler struct {
	dataStore  interfaces.DataStore
	loader     interfaces.SnapshotLoader
	validator  interfaces.DataValidator
	interval   time.Duration
	thresholds aggregate.Thresholds
	scheduler  *gocron.Scheduler
	stop       chan struct{}
	now        func() time.Time
}

// NewScheduler creates a new scheduler instance with injected dependencies.
// A non-positive interval falls back to 15 minutes.
func NewScheduler(dataStore interfaces.DataStore, loader interfaces.SnapshotLoader, validator interfaces.DataValidator,
	interval time.Duration, thresholds aggregate.Thresholds) *Scheduler {
	if interval <= 0 {
		interval = 15 * time.Minute
	}
	return &Scheduler{
		dataStore:  dataStore,
		loader:     loader,
		validator:  validator,
		interval:   interval,
		thresholds: thresholds,
		scheduler:  gocron.NewScheduler(time.Local),
		stop:       make(chan struct{}),
		now:        time.Now,
	}
}

// Interval returns the refresh period
func (s *Scheduler) Interval() time.Duration {
	return s.interval
}

// Start performs the initial load, then schedules refreshes and starts the
// freshness monitor. A failed initial load is logged; the next scheduled
// refresh retries it.
func (s *Scheduler) Start() error {
	if _, err := s.refresh(context.Background()); err != nil && !errors.Is(err, ErrRefreshInProgress) {
		logging.Error("Failed to perform initial snapshot load", "error", err)
	}

	_, err := s.scheduler.Every(s.interval).WaitForSchedule().Do(func() {
		if _, err := s.refresh(context.Background()); err != nil && !errors.Is(err, ErrRefreshInProgress) {
			logging.Error("Failed to refresh snapshot", "error", err)
		}
	})
	if err != nil {
		logging.Error("Failed to schedule refreshes", "error", err)
		return fmt.Errorf("failed to schedule refreshes: %w", err)
	}

	s.scheduler.StartAsync()

	s.startHealthMonitoring()

	return nil
}

// Stop stops the scheduler and the freshness monitor
func (s *Scheduler) Stop() {
	s.scheduler.Stop()
	select {
	case <-s.stop:
	default:
		close(s.stop)
	}
}

// Refresh reloads the snapshot now. It returns ErrRefreshInProgress when a
// refresh is already running.
func (s *Scheduler) Refresh(ctx context.Context) (interfaces.LoadReport, error) {
	return s.refresh(ctx)
}

func (s *Scheduler) refresh(ctx context.Context) (interfaces.LoadReport, error) {
	// Prevent concurrent updates
	if !s.dataStore.BeginUpdate() {
		logging.Info("Refresh already in progress, skipping...")
		return interfaces.LoadReport{}, ErrRefreshInProgress
	}
	defer s.dataStore.EndUpdate()

	ctx, cancel := context.WithTimeout(ctx, refreshTimeout)
	defer cancel()

	logging.Info("Starting snapshot refresh", "at", s.now().Format(time.RFC3339))

	snapshot, report := s.loader.Load(ctx)

	var quality *interfaces.DataQualityReport
	if s.validator != nil {
		quality = s.validator.ReportDataQuality(snapshot)
		logQuality(quality)
	}

	s.dataStore.UpdateData(snapshot, report, quality)
	s.recordGauges(snapshot)

	if !report.Complete() {
		logging.Warn("Snapshot refresh incomplete",
			"failed_collections", len(report.Failures),
			"failures", report.Failures,
		)
	}

	logging.Info("Snapshot refresh completed",
		"duration", report.Duration.String(),
		"patients", len(snapshot.Patients),
		"factors", len(snapshot.Factors),
		"distributions", len(snapshot.Distributions),
	)

	return report, nil
}

func (s *Scheduler) recordGauges(snapshot entities.Snapshot) {
	for collection, n := range snapshot.Counts() {
		metrics.SnapshotRecords.WithLabelValues(collection).Set(float64(n))
	}

	now := s.now()
	metrics.LowStockFactors.Set(float64(len(aggregate.LowStock(snapshot.Factors, s.thresholds.LowStock))))

	status := aggregate.ExpirySummary(snapshot.Factors, now, s.thresholds.ExpiryWindow)
	metrics.FactorsByExpiry.WithLabelValues(string(aggregate.Expired)).Set(float64(status.Expired))
	metrics.FactorsByExpiry.WithLabelValues(string(aggregate.ExpiringSoon)).Set(float64(status.ExpiringSoon))
	metrics.FactorsByExpiry.WithLabelValues(string(aggregate.Active)).Set(float64(status.Active))
}

func logQuality(report *interfaces.DataQualityReport) {
	if report == nil {
		return
	}

	if len(report.DuplicatePatientIDs) > 0 {
		logging.Warn("Duplicate patient IDs detected",
			"total", len(report.DuplicatePatientIDs),
			"id_list", report.DuplicatePatientIDs,
		)
	}

	if len(report.DuplicateFactorIDs) > 0 {
		logging.Warn("Duplicate factor IDs detected",
			"total", len(report.DuplicateFactorIDs),
			"id_list", report.DuplicateFactorIDs,
		)
	}

	if report.OrphanTreatments > 0 {
		logging.Warn("Treatments referencing unknown patients",
			"count", report.OrphanTreatments,
			"id_list", report.OrphanTreatmentIDs,
		)
	}

	if report.OrphanVisits > 0 {
		logging.Warn("Visits referencing unknown patients",
			"count", report.OrphanVisits,
			"id_list", report.OrphanVisitIDs,
		)
	}

	if report.OrphanDistributions > 0 {
		logging.Warn("Distributions referencing unknown factors",
			"count", report.OrphanDistributions,
			"id_list", report.OrphanDistributionIDs,
		)
	}
}

// startHealthMonitoring warns when the snapshot falls more than three
// intervals behind
func (s *Scheduler) startHealthMonitoring() {
	go func() {
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		for {
			select {
			case <-s.stop:
				return
			case <-ticker.C:
				lastUpdate := s.dataStore.GetLastUpdated()
				if s.now().Sub(lastUpdate) > 3*s.interval {
					logging.Warn("Snapshot is stale", "last_updated", lastUpdate, "interval", s.interval.String())
				}
			}
		}
	}()
}
