package handlers

import (
	"net/http"
	"runtime"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/hemocore/console/aggregate"
	"github.com/hemocore/console/interfaces"
	"github.com/hemocore/console/logging"
	"github.com/hemocore/console/services"
)

// HTTPHandler serves the console routes. Writes and single-record reads go
// to the HemoCore API through the services; views and exports are computed
// from the data store's snapshot.
type HTTPHandler struct {
	dataStore  interfaces.DataStore
	validator  interfaces.DataValidator
	services   *services.Services
	scheduler  interfaces.Scheduler
	health     interfaces.HealthChecker
	thresholds aggregate.Thresholds
	now        func() time.Time
}

// NewHTTPHandler creates a new HTTP handler with injected dependencies
func NewHTTPHandler(
	dataStore interfaces.DataStore,
	validator interfaces.DataValidator,
	svc *services.Services,
	sched interfaces.Scheduler,
	health interfaces.HealthChecker,
	thresholds aggregate.Thresholds,
) *HTTPHandler {
	return &HTTPHandler{
		dataStore:  dataStore,
		validator:  validator,
		services:   svc,
		scheduler:  sched,
		health:     health,
		thresholds: thresholds,
		now:        time.Now,
	}
}

// HealthResponse defines the structure for consistent JSON ordering
type HealthResponse struct {
	Status        string         `json:"status"`
	Uptime        string         `json:"uptime"`
	UptimeSeconds float64        `json:"uptime_seconds"`
	Data          map[string]any `json:"data"`
	System        map[string]any `json:"system"`
}

// parseID reads the {id} path parameter, answering 400 when it is invalid
func (h *HTTPHandler) parseID(w http.ResponseWriter, r *http.Request) (int, bool) {
	raw := chi.URLParam(r, "id")
	id, err := h.validator.ValidateID(raw)
	if err != nil {
		logging.Warn("Unusual user input", "id", raw, "error", err)
		RespondWithError(w, http.StatusBadRequest, "Invalid id: "+err.Error())
		return 0, false
	}
	return id, true
}

// HealthCheck reports snapshot freshness plus process statistics
func (h *HTTPHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	status, data, httpStatus := h.health.HealthCheck()

	var uptime time.Duration
	if start := h.dataStore.GetServerStartTime(); !start.IsZero() {
		uptime = h.now().Sub(start)
	}

	response := HealthResponse{
		Status:        status,
		Uptime:        formatUptimeHuman(uptime),
		UptimeSeconds: uptime.Seconds(),
		Data:          data,
		System: map[string]any{
			"goroutines": runtime.NumGoroutine(),
			"memory": map[string]any{
				"alloc_mb":       int(m.Alloc / 1024 / 1024),
				"total_alloc_mb": int(m.TotalAlloc / 1024 / 1024),
				"sys_mb":         int(m.Sys / 1024 / 1024),
				"num_gc":         m.NumGC,
			},
		},
	}

	RespondWithJSON(w, httpStatus, response)
}

// SnapshotResponse describes the snapshot currently served
type SnapshotResponse struct {
	LastUpdate string                        `json:"lastUpdate"`
	IsUpdating bool                          `json:"isUpdating"`
	Counts     map[string]int                `json:"counts"`
	Report     interfaces.LoadReport         `json:"report"`
	Quality    *interfaces.DataQualityReport `json:"quality"`
}

func (h *HTTPHandler) snapshotInfo() SnapshotResponse {
	var lastUpdate string
	if t := h.dataStore.GetLastUpdated(); !t.IsZero() {
		lastUpdate = t.Format(time.RFC3339)
	}
	return SnapshotResponse{
		LastUpdate: lastUpdate,
		IsUpdating: h.dataStore.IsUpdating(),
		Counts:     h.dataStore.GetSnapshot().Counts(),
		Report:     h.dataStore.GetLoadReport(),
		Quality:    h.dataStore.GetDataQuality(),
	}
}

// ServeSnapshot returns the record counts, the last load report and the
// data quality report
func (h *HTTPHandler) ServeSnapshot(w http.ResponseWriter, r *http.Request) {
	RespondWithJSON(w, http.StatusOK, h.snapshotInfo())
}

// RefreshSnapshot reloads the snapshot now. It answers 409 while another
// refresh is running.
func (h *HTTPHandler) RefreshSnapshot(w http.ResponseWriter, r *http.Request) {
	report, err := h.scheduler.Refresh(r.Context())
	if err != nil {
		respondWithServiceError(w, r, err)
		return
	}

	logging.Info("Manual snapshot refresh completed",
		"duration", report.Duration,
		"failed_collections", len(report.Failures),
	)
	RespondWithJSON(w, http.StatusOK, h.snapshotInfo())
}
