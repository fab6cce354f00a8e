package handlers

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/hemocore/console/aggregate"
	"github.com/hemocore/console/apiclient"
	"github.com/hemocore/console/data"
	"github.com/hemocore/console/entities"
	"github.com/hemocore/console/health"
	"github.com/hemocore/console/interfaces"
	"github.com/hemocore/console/scheduler"
	"github.com/hemocore/console/services"
	"github.com/hemocore/console/session"
	"github.com/hemocore/console/validation"
)

var testNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

// fakeUpstream stands in for the HemoCore API and records what it receives
type fakeUpstream struct {
	mu       sync.Mutex
	requests []string
	bodies   map[string]string
	auth     map[string]string
}

func (f *fakeUpstream) record(r *http.Request) {
	body, _ := io.ReadAll(r.Body)
	f.mu.Lock()
	defer f.mu.Unlock()
	key := r.Method + " " + r.URL.Path
	f.requests = append(f.requests, key)
	f.bodies[key] = string(body)
	f.auth[key] = r.Header.Get("Authorization")
}

func (f *fakeUpstream) received(key string) (string, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	body, ok := f.bodies[key]
	return body, ok
}

func (f *fakeUpstream) authOf(key string) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.auth[key]
}

func newFakeUpstream(t *testing.T) (*fakeUpstream, string) {
	t.Helper()
	f := &fakeUpstream{bodies: map[string]string{}, auth: map[string]string{}}

	reply := func(code int, body string) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			f.record(r)
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(code)
			_, _ = io.WriteString(w, body)
		}
	}

	r := chi.NewRouter()
	r.Post("/auth/login", reply(http.StatusOK, `{"token": "user-token", "user": {"id": 7, "name": "Dr. Hiba"}}`))
	r.Post("/auth/logout", reply(http.StatusOK, `{}`))
	r.Get("/auth/me", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer user-token" {
			reply(http.StatusUnauthorized, "Invalid token")(w, r)
			return
		}
		reply(http.StatusOK, `{"id": 7, "name": "Dr. Hiba", "email": "hiba@example.org"}`)(w, r)
	})

	r.Get("/patients", reply(http.StatusOK, `[{"Id": 1, "FullName": "Amna Osman"}, {"id": 2, "full_name": "Yasir Ali"}]`))
	r.Get("/patients/1", reply(http.StatusOK, `{"id": 1, "fullName": "Amna Osman"}`))
	r.Get("/patients/99", reply(http.StatusNotFound, "Patient not found"))
	r.Post("/patients", reply(http.StatusBadRequest, `{"errors": {"NationalIdNumber": ["already registered"]}}`))

	r.Get("/patientVisits", reply(http.StatusOK, `[
		{"id": 1, "patientId": 1, "visitDate": "2026-02-01", "centerName": "Khartoum Center", "serviceType": "followup"},
		{"id": 2, "patientId": 2, "visitDate": "2026-02-03", "centerName": "Gezira Center", "diagnosisType": "new_patient"},
		{"id": 3, "patientId": 1, "visitDate": "2026-02-05", "centerName": "Khartoum Center", "serviceType": "hospital_admission"}
	]`))

	r.Post("/Factors", reply(http.StatusCreated, `{"id": 12, "name": "Octanate", "lotNo": "L-1"}`))
	r.Put("/Factors/12", reply(http.StatusNoContent, ""))
	r.Delete("/Factors/12", reply(http.StatusNoContent, ""))

	r.Get("/DrugDistributions", reply(http.StatusOK, `[{"id": 1, "state": "Kassala"}, {"id": 2, "state": "Sennar", "distributionDate": "2026-02-01"}]`))
	r.Get("/DrugDistributions/1", reply(http.StatusOK, `{"id": 1, "state": "Kassala", "quantity": 10}`))
	r.Get("/DrugDistributions/2", reply(http.StatusOK, `{"id": 2, "state": "Sennar", "quantity": 10, "distributionDate": "2026-02-01", "status": "Delivered"}`))
	r.Put("/DrugDistributions/1/deliver", reply(http.StatusOK, `{}`))
	r.Put("/DrugDistributions/2", reply(http.StatusNoContent, ""))
	r.Get("/DrugDistributions/state/{state}", func(w http.ResponseWriter, r *http.Request) {
		reply(http.StatusOK, `[{"id": 1, "state": "`+chi.URLParam(r, "state")+`"}]`)(w, r)
	})

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return f, srv.URL
}

// mockScheduler counts manual refreshes
type mockScheduler struct {
	mu      sync.Mutex
	calls   int
	refresh func() (interfaces.LoadReport, error)
}

func (m *mockScheduler) Start() error { return nil }
func (m *mockScheduler) Stop()        {}
func (m *mockScheduler) Refresh(ctx context.Context) (interfaces.LoadReport, error) {
	m.mu.Lock()
	m.calls++
	m.mu.Unlock()
	if m.refresh != nil {
		return m.refresh()
	}
	return interfaces.LoadReport{StartedAt: testNow}, nil
}

func testSnapshot() entities.Snapshot {
	return entities.Snapshot{
		Patients: []entities.Patient{
			{ID: 1, FullName: "Amna Osman", NationalIDNumber: "NID-001", State: "Khartoum"},
			{ID: 2, FullName: "Yasir Ali", NationalIDNumber: "NID-002", State: "Gezira"},
		},
		Factors: []entities.Factor{
			{ID: 1, Name: "Octanate", Quantity: 5, ExpiryDate: "2026-03-10", CompanyName: "Octapharma"},
			{ID: 2, Name: "Immunate", Quantity: 50, ExpiryDate: "2026-02-01", CompanyName: "Takeda"},
			{ID: 3, Name: "Advate", Quantity: 100, ExpiryDate: "2027-01-01", CompanyName: "Takeda"},
		},
		Treatments: []entities.Treatment{
			{ID: 1, PatientID: 1, NoteDate: "2026-02-10", QuantityLot: 1000},
		},
		Distributions: []entities.MedicineDistribution{
			{ID: 1, State: "Kassala", Quantity: 10, ExpiryDate: "2026-03-20"},
			{ID: 2, State: "Sennar", Quantity: 10, DistributionDate: "2026-02-01"},
		},
	}
}

type testEnv struct {
	router   chi.Router
	handler  *HTTPHandler
	store    *data.DataContainer
	sched    *mockScheduler
	upstream *fakeUpstream
}

func newTestEnv(t *testing.T, allowReversal bool) *testEnv {
	t.Helper()
	upstream, url := newFakeUpstream(t)

	svc := services.New(apiclient.New(url, nil), services.Options{
		AllowDeliveryReversal: allowReversal,
		Now:                   func() time.Time { return testNow },
	})

	store := data.NewDataContainer()
	store.SetServerStartTime(testNow.Add(-90 * time.Minute))
	store.UpdateData(testSnapshot(), interfaces.LoadReport{StartedAt: testNow}, &interfaces.DataQualityReport{})

	sched := &mockScheduler{}
	h := NewHTTPHandler(store, validation.NewDataValidator(), svc, sched,
		health.NewHealthChecker(store, 15*time.Minute), aggregate.DefaultThresholds())
	h.now = func() time.Time { return testNow }

	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer "); ok {
				r = r.WithContext(session.WithToken(r.Context(), token))
			}
			next.ServeHTTP(w, r)
		})
	})
	r.Post("/auth/login", h.Login)
	r.Post("/auth/logout", h.Logout)
	r.Get("/auth/me", h.CurrentUser)
	r.Mount("/patients", h.PatientRoutes())
	r.Mount("/visits", h.VisitRoutes())
	r.Mount("/factors", h.FactorRoutes())
	r.Mount("/distributions", h.DistributionRoutes())
	r.Get("/dashboard", h.ServeDashboard)
	r.Get("/alerts/low-stock", h.ServeLowStock)
	r.Get("/alerts/expiring", h.ServeExpiring)
	r.Get("/reports/states", h.ServeStateReport)
	r.Get("/reports/expiry-status", h.ServeExpiryStatus)
	r.Get("/snapshot", h.ServeSnapshot)
	r.Post("/snapshot/refresh", h.RefreshSnapshot)
	r.Get("/export/{dataset}", h.ServeExport)
	r.Get("/health", h.HealthCheck)

	return &testEnv{router: r, handler: h, store: store, sched: sched, upstream: upstream}
}

func (e *testEnv) do(t *testing.T, method, path, body string, headers ...string) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	rr := httptest.NewRecorder()
	e.router.ServeHTTP(rr, req)
	return rr
}

func decodeJSON[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	if err := json.Unmarshal(rr.Body.Bytes(), &out); err != nil {
		t.Fatalf("Failed to decode response %q: %v", rr.Body.String(), err)
	}
	return out
}

// ============================================================================
// AUTH
// ============================================================================

func TestAuthRoutes(t *testing.T) {
	env := newTestEnv(t, false)

	rr := env.do(t, http.MethodPost, "/auth/login", `{"username": "hiba", "password": "secret"}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("Expected login to succeed, got %d: %s", rr.Code, rr.Body.String())
	}
	if resp := decodeJSON[entities.AuthResponse](t, rr); resp.Token != "user-token" {
		t.Errorf("Expected token user-token, got %q", resp.Token)
	}

	rr = env.do(t, http.MethodPost, "/auth/login", `{"username": "hiba"}`)
	if rr.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 for missing password, got %d", rr.Code)
	}

	rr = env.do(t, http.MethodGet, "/auth/me", "")
	if rr.Code != http.StatusUnauthorized {
		t.Errorf("Expected 401 without a token, got %d", rr.Code)
	}

	rr = env.do(t, http.MethodGet, "/auth/me", "", "Authorization", "Bearer user-token")
	if rr.Code != http.StatusOK {
		t.Fatalf("Expected 200 for a valid token, got %d: %s", rr.Code, rr.Body.String())
	}
	if user := decodeJSON[entities.User](t, rr); user.Name != "Dr. Hiba" {
		t.Errorf("Expected Dr. Hiba, got %q", user.Name)
	}

	rr = env.do(t, http.MethodGet, "/auth/me", "", "Authorization", "Bearer stale")
	if rr.Code != http.StatusUnauthorized {
		t.Errorf("Expected upstream 401 to pass through, got %d", rr.Code)
	}
}

func TestLogoutRequiresCallerToken(t *testing.T) {
	env := newTestEnv(t, false)

	rr := env.do(t, http.MethodPost, "/auth/logout", "")
	if rr.Code != http.StatusUnauthorized {
		t.Errorf("Expected 401 without a token, got %d", rr.Code)
	}
	if _, ok := env.upstream.received("POST /auth/logout"); ok {
		t.Error("Logout without a caller token must not reach the API")
	}

	rr = env.do(t, http.MethodPost, "/auth/logout", "", "Authorization", "Bearer user-token")
	if rr.Code != http.StatusOK {
		t.Errorf("Expected 200, got %d", rr.Code)
	}
	if auth := env.upstream.authOf("POST /auth/logout"); auth != "Bearer user-token" {
		t.Errorf("Expected the caller token to be forwarded, got %q", auth)
	}
}

// ============================================================================
// RESOURCES
// ============================================================================

func TestPatientRoutes(t *testing.T) {
	env := newTestEnv(t, false)

	tests := []struct {
		name         string
		method       string
		path         string
		body         string
		expectedCode int
	}{
		{"list", http.MethodGet, "/patients", "", http.StatusOK},
		{"search", http.MethodGet, "/patients?search=yasir", "", http.StatusOK},
		{"search script", http.MethodGet, "/patients?search=%3Cscript%3E", "", http.StatusBadRequest},
		{"get", http.MethodGet, "/patients/1", "", http.StatusOK},
		{"unknown id", http.MethodGet, "/patients/99", "", http.StatusNotFound},
		{"non numeric id", http.MethodGet, "/patients/abc", "", http.StatusBadRequest},
		{"negative id", http.MethodGet, "/patients/-1", "", http.StatusBadRequest},
		{"empty body", http.MethodPost, "/patients", "", http.StatusBadRequest},
		{"missing fields", http.MethodPost, "/patients", `{"fullName": "Amna"}`, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := env.do(t, tt.method, tt.path, tt.body)
			if rr.Code != tt.expectedCode {
				t.Errorf("Expected status %d, got %d: %s", tt.expectedCode, rr.Code, rr.Body.String())
			}
		})
	}

	rr := env.do(t, http.MethodGet, "/patients", "")
	patients := decodeJSON[[]entities.Patient](t, rr)
	if len(patients) != 2 || patients[0].FullName != "Amna Osman" || patients[1].FullName != "Yasir Ali" {
		t.Errorf("Expected normalized patients, got %+v", patients)
	}

	rr = env.do(t, http.MethodGet, "/patients?search=YASIR", "")
	if patients = decodeJSON[[]entities.Patient](t, rr); len(patients) != 1 || patients[0].ID != 2 {
		t.Errorf("Expected only Yasir Ali, got %+v", patients)
	}

	rr = env.do(t, http.MethodPost, "/patients", `{"fullName": "Amna"}`)
	body := decodeJSON[ErrorResponse](t, rr)
	if len(body.Fields) == 0 || body.Fields[0] != "nationalIdNumber" {
		t.Errorf("Expected the missing fields to be listed, got %v", body.Fields)
	}
	if _, ok := env.upstream.received("POST /patients"); ok {
		t.Error("An invalid patient must not be sent upstream")
	}
}

func TestPatientVisits(t *testing.T) {
	env := newTestEnv(t, false)

	rr := env.do(t, http.MethodGet, "/patients/1/visits", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rr.Code)
	}

	visits := decodeJSON[[]entities.PatientVisit](t, rr)
	if len(visits) != 2 {
		t.Fatalf("Expected 2 visits for patient 1, got %d", len(visits))
	}
	for _, v := range visits {
		if v.PatientID != 1 {
			t.Errorf("Expected only patient 1 visits, got patient %d", v.PatientID)
		}
	}
}

func TestVisitListFilters(t *testing.T) {
	env := newTestEnv(t, false)

	tests := []struct {
		name          string
		query         string
		expectedCode  int
		expectedCount int
	}{
		{"no filter", "", http.StatusOK, 3},
		{"legacy new patient migrates", "?serviceType=new_visit", http.StatusOK, 1},
		{"all", "?serviceType=all", http.StatusOK, 3},
		{"search by patient name", "?search=amna", http.StatusOK, 2},
		{"search by national id", "?search=NID-002", http.StatusOK, 1},
		{"search by center", "?search=gezira", http.StatusOK, 1},
		{"combined", "?search=khartoum&serviceType=followup", http.StatusOK, 1},
		{"unknown service type", "?serviceType=surgery", http.StatusBadRequest, 0},
		{"dangerous search", "?search=%3Cscript%3E", http.StatusBadRequest, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := env.do(t, http.MethodGet, "/visits"+tt.query, "")
			if rr.Code != tt.expectedCode {
				t.Fatalf("Expected status %d, got %d: %s", tt.expectedCode, rr.Code, rr.Body.String())
			}
			if tt.expectedCode != http.StatusOK {
				return
			}
			if visits := decodeJSON[[]entities.PatientVisit](t, rr); len(visits) != tt.expectedCount {
				t.Errorf("Expected %d visits, got %d", tt.expectedCount, len(visits))
			}
		})
	}
}

func TestFactorWrites(t *testing.T) {
	env := newTestEnv(t, false)

	rr := env.do(t, http.MethodPost, "/factors", `{"name": "Octanate", "lotNo": "L-1", "quantity": 20, "expiryDate": "2027-01-01"}`)
	if rr.Code != http.StatusCreated {
		t.Fatalf("Expected 201, got %d: %s", rr.Code, rr.Body.String())
	}
	if created := decodeJSON[entities.Factor](t, rr); created.ID != 12 {
		t.Errorf("Expected created id 12, got %d", created.ID)
	}

	rr = env.do(t, http.MethodPut, "/factors/12", `{"name": "Octanate", "lotNo": "L-1", "quantity": 15, "expiryDate": "2027-01-01"}`)
	if rr.Code != http.StatusOK {
		t.Errorf("Expected 200 on update, got %d: %s", rr.Code, rr.Body.String())
	}
	if sent, _ := env.upstream.received("PUT /Factors/12"); !strings.Contains(sent, `"quantity":15`) {
		t.Errorf("Expected the update body upstream, got %s", sent)
	}

	rr = env.do(t, http.MethodPut, "/factors/12", `{"name": "Octanate", "quantity": -1}`)
	if rr.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 for an invalid lot, got %d", rr.Code)
	}

	rr = env.do(t, http.MethodDelete, "/factors/12", "")
	if rr.Code != http.StatusNoContent {
		t.Errorf("Expected 204 on delete, got %d", rr.Code)
	}
}

// ============================================================================
// DISTRIBUTIONS
// ============================================================================

func TestDeliverDistribution(t *testing.T) {
	env := newTestEnv(t, false)

	rr := env.do(t, http.MethodPut, "/distributions/1/deliver", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", rr.Code, rr.Body.String())
	}
	if sent, _ := env.upstream.received("PUT /DrugDistributions/1/deliver"); strings.TrimSpace(sent) != "{}" {
		t.Errorf("Expected an empty object body, got %q", sent)
	}

	rr = env.do(t, http.MethodPut, "/distributions/2/deliver", "")
	if rr.Code != http.StatusConflict {
		t.Errorf("Expected 409 for an already delivered distribution, got %d", rr.Code)
	}
}

func TestDistributionListings(t *testing.T) {
	env := newTestEnv(t, false)

	rr := env.do(t, http.MethodGet, "/distributions/pending", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rr.Code)
	}
	pending := decodeJSON[[]entities.MedicineDistribution](t, rr)
	if len(pending) != 1 || pending[0].ID != 1 {
		t.Errorf("Expected only distribution 1 pending, got %+v", pending)
	}

	rr = env.do(t, http.MethodGet, "/distributions/state/kassala", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rr.Code)
	}
	byState := decodeJSON[[]entities.MedicineDistribution](t, rr)
	if len(byState) != 1 || byState[0].State != "Kassala" {
		t.Errorf("Expected the canonical state name upstream, got %+v", byState)
	}

	rr = env.do(t, http.MethodGet, "/distributions/state/Atlantis", "")
	if rr.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 for an unknown state, got %d", rr.Code)
	}
}

func TestRevertDistributionDisabled(t *testing.T) {
	env := newTestEnv(t, false)

	rr := env.do(t, http.MethodPost, "/distributions/2/revert", `{"reason": "data_entry_error"}`)
	if rr.Code != http.StatusForbidden {
		t.Errorf("Expected 403 while reversal is disabled, got %d", rr.Code)
	}
	if _, ok := env.upstream.received("PUT /DrugDistributions/2"); ok {
		t.Error("A disabled reversal must not reach the API")
	}

	rr = env.do(t, http.MethodGet, "/distributions/audit", "")
	audit := decodeJSON[AuditResponse](t, rr)
	if audit.ReversalAllowed || len(audit.Events) != 0 {
		t.Errorf("Expected an empty, disabled audit log, got %+v", audit)
	}
}

func TestRevertDistribution(t *testing.T) {
	env := newTestEnv(t, true)

	tests := []struct {
		name         string
		path         string
		body         string
		token        string
		expectedCode int
	}{
		{"invalid reason", "/distributions/2/revert", `{"reason": "changed_my_mind"}`, "user-token", http.StatusBadRequest},
		{"missing body", "/distributions/2/revert", "", "user-token", http.StatusBadRequest},
		{"not delivered", "/distributions/1/revert", `{"reason": "data_entry_error"}`, "user-token", http.StatusConflict},
		{"anonymous", "/distributions/2/revert", `{"reason": "data_entry_error"}`, "", http.StatusUnauthorized},
		{"rejected token", "/distributions/2/revert", `{"reason": "data_entry_error"}`, "stale-token", http.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var headers []string
			if tt.token != "" {
				headers = []string{"Authorization", "Bearer " + tt.token}
			}
			rr := env.do(t, http.MethodPost, tt.path, tt.body, headers...)
			if rr.Code != tt.expectedCode {
				t.Errorf("Expected status %d, got %d: %s", tt.expectedCode, rr.Code, rr.Body.String())
			}
		})
	}
	if _, ok := env.upstream.received("PUT /DrugDistributions/2"); ok {
		t.Fatal("A reversal without a resolved actor must not reach the API")
	}

	// An actor in the body is ignored, the token decides who reverted
	rr := env.do(t, http.MethodPost, "/distributions/2/revert",
		`{"reason": "delivery_not_received", "actor": "Someone Else"}`,
		"Authorization", "Bearer user-token")
	if rr.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", rr.Code, rr.Body.String())
	}

	event := decodeJSON[services.AuditEvent](t, rr)
	if event.ID == "" || event.Actor != "Dr. Hiba" || event.Reason != services.ReasonDeliveryNotReceived {
		t.Errorf("Unexpected audit event: %+v", event)
	}
	if !event.Time.Equal(testNow) {
		t.Errorf("Expected event time %v, got %v", testNow, event.Time)
	}

	sent, _ := env.upstream.received("PUT /DrugDistributions/2")
	if !strings.Contains(sent, `"distributionDate":null`) || !strings.Contains(sent, `"status":"Pending"`) {
		t.Errorf("Expected cleared dates and Pending status upstream, got %s", sent)
	}

	rr = env.do(t, http.MethodGet, "/distributions/audit", "")
	audit := decodeJSON[AuditResponse](t, rr)
	if !audit.ReversalAllowed || len(audit.Events) != 1 || audit.Events[0].ID != event.ID {
		t.Errorf("Expected the reversal in the audit log, got %+v", audit)
	}
}

// ============================================================================
// SNAPSHOT VIEWS
// ============================================================================

func TestServeDashboard(t *testing.T) {
	env := newTestEnv(t, false)

	rr := env.do(t, http.MethodGet, "/dashboard", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rr.Code)
	}

	dashboard := decodeJSON[DashboardResponse](t, rr)
	stats := dashboard.Stats
	if stats.TotalPatients != 2 || stats.TotalFactors != 3 || stats.TotalDistributions != 2 {
		t.Errorf("Unexpected totals: %+v", stats)
	}
	if stats.PendingDistributions+stats.DeliveredDistributions != stats.TotalDistributions {
		t.Errorf("Pending plus delivered should equal total, got %+v", stats)
	}
	if len(dashboard.LowStock) != 1 || dashboard.LowStock[0].ID != 1 {
		t.Errorf("Expected factor 1 in low stock, got %+v", dashboard.LowStock)
	}
	if len(dashboard.ExpiringSoon) != 1 || len(dashboard.Expired) != 1 {
		t.Errorf("Expected one expiring and one expired lot, got %d and %d",
			len(dashboard.ExpiringSoon), len(dashboard.Expired))
	}
	if dashboard.LastUpdate == "" {
		t.Error("Expected lastUpdate to be set")
	}
}

func TestServeAlerts(t *testing.T) {
	env := newTestEnv(t, false)

	lowStock := decodeJSON[LowStockResponse](t, env.do(t, http.MethodGet, "/alerts/low-stock", ""))
	if lowStock.Threshold != aggregate.DefaultLowStockThreshold || len(lowStock.Factors) != 1 {
		t.Errorf("Unexpected low stock alert: %+v", lowStock)
	}

	expiring := decodeJSON[ExpiringResponse](t, env.do(t, http.MethodGet, "/alerts/expiring", ""))
	if expiring.WindowDays != 30 {
		t.Errorf("Expected a 30 day window, got %d", expiring.WindowDays)
	}
	if len(expiring.ExpiringSoon) != 1 || expiring.ExpiringSoon[0].ID != 1 {
		t.Errorf("Expected factor 1 expiring soon, got %+v", expiring.ExpiringSoon)
	}
	if len(expiring.Distributions) != 1 || expiring.Distributions[0].ID != 1 {
		t.Errorf("Expected distribution 1 expiring soon, got %+v", expiring.Distributions)
	}

	status := decodeJSON[aggregate.ExpiryStatus](t, env.do(t, http.MethodGet, "/reports/expiry-status", ""))
	if status.Expired != 1 || status.ExpiringSoon != 1 || status.Active != 1 {
		t.Errorf("Unexpected expiry status: %+v", status)
	}
}

func TestServeStateReport(t *testing.T) {
	env := newTestEnv(t, false)

	states := decodeJSON[[]aggregate.StateStatistics](t, env.do(t, http.MethodGet, "/reports/states", ""))
	if len(states) != 2 {
		t.Fatalf("Expected 2 states, got %d", len(states))
	}
	for _, s := range states {
		if s.State == "Khartoum" && s.TreatmentCount != 1 {
			t.Errorf("Expected 1 treatment in Khartoum, got %d", s.TreatmentCount)
		}
	}
}

func TestSnapshotRoutes(t *testing.T) {
	env := newTestEnv(t, false)

	info := decodeJSON[SnapshotResponse](t, env.do(t, http.MethodGet, "/snapshot", ""))
	if info.Counts[entities.CollectionFactors] != 3 || info.Quality == nil {
		t.Errorf("Unexpected snapshot info: %+v", info)
	}

	rr := env.do(t, http.MethodPost, "/snapshot/refresh", "")
	if rr.Code != http.StatusOK {
		t.Errorf("Expected 200 on refresh, got %d", rr.Code)
	}
	if env.sched.calls != 1 {
		t.Errorf("Expected one refresh, got %d", env.sched.calls)
	}

	env.sched.refresh = func() (interfaces.LoadReport, error) {
		return interfaces.LoadReport{}, scheduler.ErrRefreshInProgress
	}
	rr = env.do(t, http.MethodPost, "/snapshot/refresh", "")
	if rr.Code != http.StatusConflict {
		t.Errorf("Expected 409 while a refresh runs, got %d", rr.Code)
	}
}

// ============================================================================
// EXPORT AND HEALTH
// ============================================================================

func TestServeExport(t *testing.T) {
	env := newTestEnv(t, false)

	rr := env.do(t, http.MethodGet, "/export/factors", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", rr.Code, rr.Body.String())
	}
	if ct := rr.Header().Get("Content-Type"); ct != "text/csv; charset=utf-8" {
		t.Errorf("Expected CSV content type, got %s", ct)
	}
	if cd := rr.Header().Get("Content-Disposition"); cd != `attachment; filename="factors_2026-03-01.csv"` {
		t.Errorf("Unexpected Content-Disposition: %s", cd)
	}
	lines := strings.Split(strings.TrimSpace(rr.Body.String()), "\n")
	if len(lines) != 4 || !strings.HasPrefix(lines[0], "id,name,lotNo,quantity,expiryDate") {
		t.Errorf("Expected a header and 3 rows, got %q", lines)
	}

	rr = env.do(t, http.MethodGet, "/export/companies?format=xlsx", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("Expected 200 for xlsx, got %d", rr.Code)
	}
	if !strings.HasPrefix(rr.Body.String(), "PK") {
		t.Error("Expected a zip based xlsx workbook")
	}

	if rr = env.do(t, http.MethodGet, "/export/secrets", ""); rr.Code != http.StatusNotFound {
		t.Errorf("Expected 404 for an unknown dataset, got %d", rr.Code)
	}
	if rr = env.do(t, http.MethodGet, "/export/factors?format=pdf", ""); rr.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 for an unknown format, got %d", rr.Code)
	}
}

func TestHealthCheck(t *testing.T) {
	env := newTestEnv(t, false)

	rr := env.do(t, http.MethodGet, "/health", "")
	// The snapshot was stored with the wall clock, so it is fresh
	if rr.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", rr.Code, rr.Body.String())
	}

	resp := decodeJSON[HealthResponse](t, rr)
	if resp.Status != "healthy" {
		t.Errorf("Expected healthy, got %s", resp.Status)
	}
	if resp.Uptime != "1h 30m 0s" {
		t.Errorf("Expected uptime 1h 30m 0s, got %s", resp.Uptime)
	}
	if _, ok := resp.System["memory"]; !ok {
		t.Error("Expected memory statistics")
	}
	if resp.Data["patients"] != float64(2) {
		t.Errorf("Expected 2 patients, got %v", resp.Data["patients"])
	}
}
