package handlers

import (
	"net/http"
	"time"

	"github.com/hemocore/console/aggregate"
	"github.com/hemocore/console/entities"
	"github.com/hemocore/console/interfaces"
)

// DashboardResponse is the overview plus the freshness of the data behind it
type DashboardResponse struct {
	aggregate.Overview
	ServiceTypes aggregate.ServiceTypeStats `json:"serviceTypes"`
	LastUpdate   string                     `json:"lastUpdate"`
	Report       interfaces.LoadReport      `json:"report"`
}

// ServeDashboard returns the headline counts and the stock and expiry alerts
func (h *HTTPHandler) ServeDashboard(w http.ResponseWriter, r *http.Request) {
	s := h.dataStore.GetSnapshot()

	var lastUpdate string
	if t := h.dataStore.GetLastUpdated(); !t.IsZero() {
		lastUpdate = t.Format(time.RFC3339)
	}

	RespondWithJSON(w, http.StatusOK, DashboardResponse{
		Overview:     aggregate.BuildOverview(s, h.now(), h.thresholds),
		ServiceTypes: aggregate.ServiceTypes(s.Visits),
		LastUpdate:   lastUpdate,
		Report:       h.dataStore.GetLoadReport(),
	})
}

// LowStockResponse lists the lots below the configured threshold
type LowStockResponse struct {
	Threshold float64           `json:"threshold"`
	Factors   []entities.Factor `json:"factors"`
}

func (h *HTTPHandler) ServeLowStock(w http.ResponseWriter, r *http.Request) {
	factors := h.dataStore.GetSnapshot().Factors
	RespondWithJSON(w, http.StatusOK, LowStockResponse{
		Threshold: h.thresholds.LowStock,
		Factors:   aggregate.LowStock(factors, h.thresholds.LowStock),
	})
}

// ExpiringResponse lists the lots and distributions inside the expiry window
// and the lots already expired
type ExpiringResponse struct {
	WindowDays    int                             `json:"windowDays"`
	ExpiringSoon  []entities.Factor               `json:"expiringSoon"`
	Expired       []entities.Factor               `json:"expired"`
	Distributions []entities.MedicineDistribution `json:"distributions"`
}

func (h *HTTPHandler) ServeExpiring(w http.ResponseWriter, r *http.Request) {
	s := h.dataStore.GetSnapshot()
	now := h.now()
	window := h.thresholds.ExpiryWindow

	RespondWithJSON(w, http.StatusOK, ExpiringResponse{
		WindowDays:    int(window.Hours() / 24),
		ExpiringSoon:  aggregate.FactorsInClass(s.Factors, aggregate.ExpiringSoon, now, window),
		Expired:       aggregate.FactorsInClass(s.Factors, aggregate.Expired, now, window),
		Distributions: aggregate.DistributionsInClass(s.Distributions, aggregate.ExpiringSoon, now, window),
	})
}

func (h *HTTPHandler) ServeStateReport(w http.ResponseWriter, r *http.Request) {
	s := h.dataStore.GetSnapshot()
	RespondWithJSON(w, http.StatusOK, aggregate.StateStats(s.Patients, s.Treatments))
}

func (h *HTTPHandler) ServeCompanyReport(w http.ResponseWriter, r *http.Request) {
	RespondWithJSON(w, http.StatusOK, aggregate.CompanyStats(h.dataStore.GetSnapshot().Factors))
}

func (h *HTTPHandler) ServeMonthlyTreatments(w http.ResponseWriter, r *http.Request) {
	RespondWithJSON(w, http.StatusOK, aggregate.MonthlyTreatments(h.dataStore.GetSnapshot().Treatments))
}

func (h *HTTPHandler) ServeTreatmentTypes(w http.ResponseWriter, r *http.Request) {
	RespondWithJSON(w, http.StatusOK, aggregate.TreatmentTypes(h.dataStore.GetSnapshot().Treatments))
}

func (h *HTTPHandler) ServeFactorCategories(w http.ResponseWriter, r *http.Request) {
	RespondWithJSON(w, http.StatusOK, aggregate.FactorCategories(h.dataStore.GetSnapshot().Factors))
}

func (h *HTTPHandler) ServeExpiryStatus(w http.ResponseWriter, r *http.Request) {
	factors := h.dataStore.GetSnapshot().Factors
	RespondWithJSON(w, http.StatusOK, aggregate.ExpirySummary(factors, h.now(), h.thresholds.ExpiryWindow))
}

func (h *HTTPHandler) ServeDistributionStates(w http.ResponseWriter, r *http.Request) {
	RespondWithJSON(w, http.StatusOK, aggregate.DistributionsByState(h.dataStore.GetSnapshot().Distributions))
}

func (h *HTTPHandler) ServeServiceTypes(w http.ResponseWriter, r *http.Request) {
	RespondWithJSON(w, http.StatusOK, aggregate.ServiceTypes(h.dataStore.GetSnapshot().Visits))
}
