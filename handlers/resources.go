package handlers

import (
	"context"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/hemocore/console/aggregate"
	"github.com/hemocore/console/entities"
	"github.com/hemocore/console/logging"
	"github.com/hemocore/console/validation"
)

// crudService is the shape shared by every resource service
type crudService[T, Req any] interface {
	List(ctx context.Context) ([]T, error)
	Get(ctx context.Context, id int) (T, error)
	Create(ctx context.Context, req Req) (T, error)
	Update(ctx context.Context, id int, req Req) error
	Delete(ctx context.Context, id int) error
}

// resource serves list, get, create, update and delete for one service.
// Request bodies are validated before they are sent upstream.
type resource[T, Req any] struct {
	h        *HTTPHandler
	name     string
	svc      crudService[T, Req]
	validate func(Req) error

	// filter narrows list results from query parameters; optional
	filter func(r *http.Request, items []T) ([]T, error)
}

func (res *resource[T, Req]) routes(r chi.Router) {
	r.Get("/", res.list)
	r.Post("/", res.create)
	r.Get("/{id}", res.get)
	r.Put("/{id}", res.update)
	r.Delete("/{id}", res.delete)
}

func (res *resource[T, Req]) list(w http.ResponseWriter, r *http.Request) {
	items, err := res.svc.List(r.Context())
	if err != nil {
		respondWithServiceError(w, r, err)
		return
	}

	if res.filter != nil {
		items, err = res.filter(r, items)
		if err != nil {
			logging.Warn("Unusual user input", "resource", res.name, "query", r.URL.RawQuery, "error", err)
			RespondWithError(w, http.StatusBadRequest, err.Error())
			return
		}
	}

	RespondWithJSON(w, http.StatusOK, items)
}

func (res *resource[T, Req]) get(w http.ResponseWriter, r *http.Request) {
	id, ok := res.h.parseID(w, r)
	if !ok {
		return
	}

	item, err := res.svc.Get(r.Context(), id)
	if err != nil {
		respondWithServiceError(w, r, err)
		return
	}
	RespondWithJSON(w, http.StatusOK, item)
}

func (res *resource[T, Req]) decode(w http.ResponseWriter, r *http.Request) (Req, bool) {
	var req Req
	if err := decodeBody(r, &req); err != nil {
		RespondWithError(w, http.StatusBadRequest, err.Error())
		return req, false
	}
	if res.validate != nil {
		if err := res.validate(req); err != nil {
			respondWithServiceError(w, r, err)
			return req, false
		}
	}
	return req, true
}

func (res *resource[T, Req]) create(w http.ResponseWriter, r *http.Request) {
	req, ok := res.decode(w, r)
	if !ok {
		return
	}

	item, err := res.svc.Create(r.Context(), req)
	if err != nil {
		respondWithServiceError(w, r, err)
		return
	}
	logging.Info("Record created", "resource", res.name)
	RespondWithJSON(w, http.StatusCreated, item)
}

func (res *resource[T, Req]) update(w http.ResponseWriter, r *http.Request) {
	id, ok := res.h.parseID(w, r)
	if !ok {
		return
	}
	req, ok := res.decode(w, r)
	if !ok {
		return
	}

	if err := res.svc.Update(r.Context(), id, req); err != nil {
		respondWithServiceError(w, r, err)
		return
	}
	logging.Info("Record updated", "resource", res.name, "id", id)
	RespondWithJSON(w, http.StatusOK, map[string]any{
		"id":      id,
		"message": fmt.Sprintf("%s %d updated", res.name, id),
	})
}

func (res *resource[T, Req]) delete(w http.ResponseWriter, r *http.Request) {
	id, ok := res.h.parseID(w, r)
	if !ok {
		return
	}

	if err := res.svc.Delete(r.Context(), id); err != nil {
		respondWithServiceError(w, r, err)
		return
	}
	logging.Info("Record deleted", "resource", res.name, "id", id)
	w.WriteHeader(http.StatusNoContent)
}

// PatientRoutes serves /patients and the visits of one patient. The list
// accepts ?search= (name or national id).
func (h *HTTPHandler) PatientRoutes() http.Handler {
	r := chi.NewRouter()
	res := &resource[entities.Patient, entities.PatientRequest]{
		h:        h,
		name:     "patient",
		svc:      h.services.Patients,
		validate: validation.ValidatePatientRequest,
		filter:   h.filterPatients,
	}
	res.routes(r)
	r.Get("/{id}/visits", h.ServePatientVisits)
	return r
}

func (h *HTTPHandler) filterPatients(r *http.Request, patients []entities.Patient) ([]entities.Patient, error) {
	search := r.URL.Query().Get("search")
	if search == "" {
		return patients, nil
	}
	if err := h.validator.ValidateInput(search); err != nil {
		return nil, err
	}
	return aggregate.SearchPatients(patients, search), nil
}

// ServePatientVisits lists the visits recorded for one patient
func (h *HTTPHandler) ServePatientVisits(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseID(w, r)
	if !ok {
		return
	}

	visits, err := h.services.Visits.ListForPatient(r.Context(), id)
	if err != nil {
		respondWithServiceError(w, r, err)
		return
	}
	RespondWithJSON(w, http.StatusOK, visits)
}

// VisitRoutes serves /visits. The list accepts ?search= (patient name,
// national id or center) and ?serviceType=.
func (h *HTTPHandler) VisitRoutes() http.Handler {
	r := chi.NewRouter()
	res := &resource[entities.PatientVisit, entities.PatientVisitRequest]{
		h:        h,
		name:     "visit",
		svc:      h.services.Visits,
		validate: validation.ValidateVisitRequest,
		filter:   h.filterVisits,
	}
	res.routes(r)
	return r
}

func (h *HTTPHandler) filterVisits(r *http.Request, visits []entities.PatientVisit) ([]entities.PatientVisit, error) {
	f := aggregate.VisitFilter{
		Search:      r.URL.Query().Get("search"),
		ServiceType: r.URL.Query().Get("serviceType"),
	}
	if f.Search == "" && f.ServiceType == "" {
		return visits, nil
	}

	if f.Search != "" {
		if err := h.validator.ValidateInput(f.Search); err != nil {
			return nil, err
		}
	}
	if !aggregate.KnownServiceType(f.ServiceType) {
		return nil, fmt.Errorf("unknown service type: %s", f.ServiceType)
	}

	return aggregate.FilterVisits(visits, h.dataStore.GetSnapshot().Patients, f), nil
}

// FactorRoutes serves /factors
func (h *HTTPHandler) FactorRoutes() http.Handler {
	r := chi.NewRouter()
	(&resource[entities.Factor, entities.FactorRequest]{
		h:        h,
		name:     "factor",
		svc:      h.services.Factors,
		validate: validation.ValidateFactorRequest,
	}).routes(r)
	return r
}

// CompanyRoutes serves /companies
func (h *HTTPHandler) CompanyRoutes() http.Handler {
	r := chi.NewRouter()
	(&resource[entities.Company, entities.CompanyRequest]{
		h:        h,
		name:     "company",
		svc:      h.services.Companies,
		validate: validation.ValidateCompanyRequest,
	}).routes(r)
	return r
}

// TreatmentRoutes serves /treatments
func (h *HTTPHandler) TreatmentRoutes() http.Handler {
	r := chi.NewRouter()
	(&resource[entities.Treatment, entities.TreatmentRequest]{
		h:    h,
		name: "treatment",
		svc:  h.services.Treatments,
		validate: func(req entities.TreatmentRequest) error {
			return validation.ValidateTreatmentRequest(req.PatientID, req.NoteDate, req.QuantityLot)
		},
	}).routes(r)
	return r
}

// CellPhoneTreatmentRoutes serves /cellphone-treatments
func (h *HTTPHandler) CellPhoneTreatmentRoutes() http.Handler {
	r := chi.NewRouter()
	(&resource[entities.CellPhoneTreatment, entities.CellPhoneTreatmentRequest]{
		h:    h,
		name: "cellphone treatment",
		svc:  h.services.CellPhoneTreatments,
		validate: func(req entities.CellPhoneTreatmentRequest) error {
			return validation.ValidateTreatmentRequest(req.PatientID, req.NoteDate, req.QuantityLot)
		},
	}).routes(r)
	return r
}
