// Package data provides thread-safe snapshot storage for the console.
// The DataContainer swaps the whole snapshot atomically so that readers
// never observe a half-refreshed set of collections.
package data

import (
	"sync/atomic"
	"time"

	"github.com/hemocore/console/entities"
	"github.com/hemocore/console/interfaces"
	"github.com/hemocore/console/logging"
)

// Compile-time check to ensure DataContainer implements DataStore
var _ interfaces.DataStore = (*DataContainer)(nil)

// DataContainer holds the current snapshot with atomic values for
// zero-downtime updates
type DataContainer struct {
	snapshot        atomic.Value // entities.Snapshot
	report          atomic.Value // interfaces.LoadReport
	quality         atomic.Value // *interfaces.DataQualityReport
	lastUpdated     atomic.Value // time.Time
	updating        atomic.Bool
	serverStartTime atomic.Value // time.Time
}

// NewDataContainer creates a new DataContainer with an empty snapshot
func NewDataContainer() *DataContainer {
	dc := &DataContainer{}
	dc.snapshot.Store(emptySnapshot())
	dc.report.Store(interfaces.LoadReport{})
	dc.quality.Store(&interfaces.DataQualityReport{})
	dc.lastUpdated.Store(time.Time{})
	dc.serverStartTime.Store(time.Time{})
	return dc
}

func emptySnapshot() entities.Snapshot {
	return entities.Snapshot{
		Patients:            []entities.Patient{},
		Visits:              []entities.PatientVisit{},
		Companies:           []entities.Company{},
		Factors:             []entities.Factor{},
		Treatments:          []entities.Treatment{},
		CellPhoneTreatments: []entities.CellPhoneTreatment{},
		Distributions:       []entities.MedicineDistribution{},
	}
}

// GetSnapshot returns the current snapshot. Callers must treat its slices
// as read-only.
func (dc *DataContainer) GetSnapshot() entities.Snapshot {
	if v := dc.snapshot.Load(); v != nil {
		if snapshot, ok := v.(entities.Snapshot); ok {
			return snapshot
		}
	}

	logging.Warn("Snapshot is empty or invalid")
	return emptySnapshot()
}

// GetLoadReport returns the report of the last refresh
func (dc *DataContainer) GetLoadReport() interfaces.LoadReport {
	if v := dc.report.Load(); v != nil {
		if report, ok := v.(interfaces.LoadReport); ok {
			return report
		}
	}

	logging.Warn("Load report is empty or invalid")
	return interfaces.LoadReport{}
}

func (dc *DataContainer) GetDataQuality() *interfaces.DataQualityReport {
	if v := dc.quality.Load(); v != nil {
		if quality, ok := v.(*interfaces.DataQualityReport); ok && quality != nil {
			return quality
		}
	}
	return &interfaces.DataQualityReport{}
}

// GetLastUpdated returns the timestamp of the last data update
func (dc *DataContainer) GetLastUpdated() time.Time {
	if v := dc.lastUpdated.Load(); v != nil {
		if lastUpdated, ok := v.(time.Time); ok {
			return lastUpdated
		}
	}

	logging.Warn("Could not get the last updated value")
	return time.Time{}
}

// IsUpdating returns true if a data update is currently in progress
func (dc *DataContainer) IsUpdating() bool {
	return dc.updating.Load()
}

func (dc *DataContainer) SetServerStartTime(startTime time.Time) {
	dc.serverStartTime.Store(startTime)
}

func (dc *DataContainer) GetServerStartTime() time.Time {
	if v := dc.serverStartTime.Load(); v != nil {
		if startTime, ok := v.(time.Time); ok {
			return startTime
		}
	}

	logging.Warn("Could not get the server start time value")
	return time.Time{}
}

// UpdateData atomically replaces the snapshot and its reports
func (dc *DataContainer) UpdateData(snapshot entities.Snapshot, report interfaces.LoadReport, quality *interfaces.DataQualityReport) {
	if quality == nil {
		quality = &interfaces.DataQualityReport{}
	}
	dc.snapshot.Store(fillEmpty(snapshot))
	dc.report.Store(report)
	dc.quality.Store(quality)
	dc.lastUpdated.Store(time.Now())
}

// fillEmpty replaces nil collections so that JSON renders them as []
func fillEmpty(s entities.Snapshot) entities.Snapshot {
	if s.Patients == nil {
		s.Patients = []entities.Patient{}
	}
	if s.Visits == nil {
		s.Visits = []entities.PatientVisit{}
	}
	if s.Companies == nil {
		s.Companies = []entities.Company{}
	}
	if s.Factors == nil {
		s.Factors = []entities.Factor{}
	}
	if s.Treatments == nil {
		s.Treatments = []entities.Treatment{}
	}
	if s.CellPhoneTreatments == nil {
		s.CellPhoneTreatments = []entities.CellPhoneTreatment{}
	}
	if s.Distributions == nil {
		s.Distributions = []entities.MedicineDistribution{}
	}
	return s
}

// BeginUpdate marks the start of a data update operation
// Returns true if update can proceed, false if another update is in progress
func (dc *DataContainer) BeginUpdate() bool {
	return dc.updating.CompareAndSwap(false, true)
}

// EndUpdate marks the end of a data update operation
func (dc *DataContainer) EndUpdate() {
	dc.updating.Store(false)
}
