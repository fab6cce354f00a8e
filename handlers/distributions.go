package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/hemocore/console/entities"
	"github.com/hemocore/console/logging"
	"github.com/hemocore/console/services"
	"github.com/hemocore/console/validation"
)

// DistributionRoutes serves /distributions with the delivery transitions,
// the per-state and pending listings and the reversal audit log
func (h *HTTPHandler) DistributionRoutes() http.Handler {
	r := chi.NewRouter()
	r.Get("/pending", h.ServePendingDistributions)
	r.Get("/audit", h.ServeDistributionAudit)
	r.Get("/state/{state}", h.ServeDistributionsByState)
	r.Put("/{id}/deliver", h.DeliverDistribution)
	r.Post("/{id}/revert", h.RevertDistribution)

	(&resource[entities.MedicineDistribution, entities.MedicineDistributionRequest]{
		h:        h,
		name:     "distribution",
		svc:      h.services.Distributions,
		validate: validation.ValidateDistributionRequest,
	}).routes(r)
	return r
}

func (h *HTTPHandler) ServePendingDistributions(w http.ResponseWriter, r *http.Request) {
	pending, err := h.services.Distributions.Pending(r.Context())
	if err != nil {
		respondWithServiceError(w, r, err)
		return
	}
	RespondWithJSON(w, http.StatusOK, pending)
}

// ServeDistributionsByState lists the distributions sent to one state. The
// state name is matched case-insensitively against the known states.
func (h *HTTPHandler) ServeDistributionsByState(w http.ResponseWriter, r *http.Request) {
	raw := chi.URLParam(r, "state")
	state, err := h.validator.ValidateState(raw)
	if err != nil {
		logging.Warn("Unusual user input", "state", raw, "error", err)
		RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	distributions, err := h.services.Distributions.GetByState(r.Context(), state)
	if err != nil {
		respondWithServiceError(w, r, err)
		return
	}
	RespondWithJSON(w, http.StatusOK, distributions)
}

// DeliverDistribution marks a pending distribution delivered
func (h *HTTPHandler) DeliverDistribution(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseID(w, r)
	if !ok {
		return
	}

	if err := h.services.Distributions.Deliver(r.Context(), id); err != nil {
		respondWithServiceError(w, r, err)
		return
	}
	RespondWithJSON(w, http.StatusOK, map[string]any{
		"id":     id,
		"status": entities.StatusDelivered,
	})
}

// RevertRequest is the body of POST /distributions/{id}/revert. The actor
// is always the user behind the caller's token.
type RevertRequest struct {
	Reason string `json:"reason"`
}

// RevertDistribution moves a delivered distribution back to Pending on
// behalf of the user resolved from the caller's token
func (h *HTTPHandler) RevertDistribution(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseID(w, r)
	if !ok {
		return
	}

	var req RevertRequest
	if err := decodeBody(r, &req); err != nil {
		RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	var actor string
	if h.services.Distributions.ReversalAllowed() {
		actor = h.actorOf(r)
	}

	event, err := h.services.Distributions.RevertDelivery(r.Context(), id, req.Reason, actor)
	if err != nil {
		respondWithServiceError(w, r, err)
		return
	}
	RespondWithJSON(w, http.StatusOK, event)
}

// actorOf names the operator of the request, or "" when the token cannot
// be resolved to a user
func (h *HTTPHandler) actorOf(r *http.Request) string {
	user, err := h.services.Auth.CurrentUser(r.Context())
	if err != nil {
		logging.Debug("Could not resolve revert actor", "error", err)
		return ""
	}
	if user.Name != "" {
		return user.Name
	}
	return user.Email
}

// AuditResponse lists the recorded delivery reversals
type AuditResponse struct {
	ReversalAllowed bool                  `json:"reversalAllowed"`
	Events          []services.AuditEvent `json:"events"`
}

func (h *HTTPHandler) ServeDistributionAudit(w http.ResponseWriter, r *http.Request) {
	RespondWithJSON(w, http.StatusOK, AuditResponse{
		ReversalAllowed: h.services.Distributions.ReversalAllowed(),
		Events:          h.services.Distributions.AuditEvents(),
	})
}
