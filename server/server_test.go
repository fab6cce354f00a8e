package server

import (
	"compress/gzip"
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/hemocore/console/aggregate"
	"github.com/hemocore/console/apiclient"
	"github.com/hemocore/console/config"
	"github.com/hemocore/console/data"
	"github.com/hemocore/console/entities"
	"github.com/hemocore/console/handlers"
	"github.com/hemocore/console/health"
	"github.com/hemocore/console/interfaces"
	"github.com/hemocore/console/logging"
	"github.com/hemocore/console/services"
	"github.com/hemocore/console/validation"
)

func init() {
	logging.Init(logging.Options{ConsoleOnly: true, Level: "error"})
}

// MockScheduler never touches the API
type MockScheduler struct{}

func (m *MockScheduler) Start() error { return nil }
func (m *MockScheduler) Stop()        {}
func (m *MockScheduler) Refresh(ctx context.Context) (interfaces.LoadReport, error) {
	return interfaces.LoadReport{StartedAt: time.Now()}, nil
}

func testConfig() *config.Config {
	return &config.Config{
		Port:           "0",
		Address:        "127.0.0.1",
		Env:            "test",
		MaxRequestBody: 1 << 20,
		MaxHeaderSize:  1 << 20,
	}
}

func newTestServer(t *testing.T) *Server {
	t.Helper()
	s, _ := newRecordingServer(t)
	return s
}

// newRecordingServer also returns the number of calls the upstream API saw
func newRecordingServer(t *testing.T) (*Server, *atomic.Int64) {
	t.Helper()

	calls := &atomic.Int64{}
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		if r.URL.Path == services.PathPatients {
			w.Header().Set("Content-Type", "application/json")
			_, _ = io.WriteString(w, `[{"id": 1, "fullName": "Amna Osman"}]`)
			return
		}
		if r.URL.Path == "/auth/me" && r.Header.Get("Authorization") == "Bearer caller-token" {
			_, _ = io.WriteString(w, `{"id": 3, "name": "Dr. Hiba"}`)
			return
		}
		w.WriteHeader(http.StatusUnauthorized)
	}))
	t.Cleanup(upstream.Close)

	store := data.NewDataContainer()
	store.SetServerStartTime(time.Now())
	store.UpdateData(entities.Snapshot{
		Patients: []entities.Patient{{ID: 1, FullName: "Amna Osman", State: "Khartoum"}},
		Factors:  []entities.Factor{{ID: 1, Name: "Octanate", Quantity: 4, ExpiryDate: "2030-01-01"}},
	}, interfaces.LoadReport{StartedAt: time.Now()}, nil)

	svc := services.New(apiclient.New(upstream.URL, nil), services.Options{})
	h := handlers.NewHTTPHandler(store, validation.NewDataValidator(), svc, &MockScheduler{},
		health.NewHealthChecker(store, 15*time.Minute), aggregate.DefaultThresholds())

	s := NewServer(testConfig(), h)
	t.Cleanup(s.limiter.Stop)
	return s, calls
}

func TestNewServer(t *testing.T) {
	s := newTestServer(t)

	if s.server.Addr != "127.0.0.1:0" {
		t.Errorf("Expected address 127.0.0.1:0, got %s", s.server.Addr)
	}
	if s.server.ReadTimeout != 15*time.Second || s.server.WriteTimeout != 15*time.Second {
		t.Errorf("Unexpected read/write timeouts: %v/%v", s.server.ReadTimeout, s.server.WriteTimeout)
	}
	if s.server.IdleTimeout != 60*time.Second {
		t.Errorf("Expected idle timeout 60s, got %v", s.server.IdleTimeout)
	}
	if s.router == nil || s.handler == nil || s.limiter == nil {
		t.Error("Server dependencies should be set")
	}
}

func TestSetupRoutes(t *testing.T) {
	s := newTestServer(t)

	tests := []struct {
		name         string
		method       string
		path         string
		header       string
		expectedCode int
		bodyPart     string
	}{
		{"health", http.MethodGet, "/health", "", http.StatusOK, `"status":"healthy"`},
		{"metrics", http.MethodGet, "/metrics", "", http.StatusOK, "http_request_total"},
		{"dashboard", http.MethodGet, "/dashboard", "Bearer caller-token", http.StatusOK, `"totalPatients":1`},
		{"low stock", http.MethodGet, "/alerts/low-stock", "Bearer caller-token", http.StatusOK, `"Octanate"`},
		{"expiring", http.MethodGet, "/alerts/expiring", "Bearer caller-token", http.StatusOK, `"windowDays":30`},
		{"state report", http.MethodGet, "/reports/states", "Bearer caller-token", http.StatusOK, `"Khartoum"`},
		{"company report", http.MethodGet, "/reports/companies", "Bearer caller-token", http.StatusOK, "["},
		{"monthly treatments", http.MethodGet, "/reports/monthly-treatments", "Bearer caller-token", http.StatusOK, "["},
		{"treatment types", http.MethodGet, "/reports/treatment-types", "Bearer caller-token", http.StatusOK, "["},
		{"factor categories", http.MethodGet, "/reports/factor-categories", "Bearer caller-token", http.StatusOK, "["},
		{"expiry status", http.MethodGet, "/reports/expiry-status", "Bearer caller-token", http.StatusOK, `"active":1`},
		{"distribution states", http.MethodGet, "/reports/distribution-states", "Bearer caller-token", http.StatusOK, "["},
		{"service types", http.MethodGet, "/reports/service-types", "Bearer caller-token", http.StatusOK, `"total":0`},
		{"snapshot", http.MethodGet, "/snapshot", "Bearer caller-token", http.StatusOK, `"counts"`},
		{"refresh", http.MethodPost, "/snapshot/refresh", "Bearer caller-token", http.StatusOK, `"counts"`},
		{"export", http.MethodGet, "/export/patients", "Bearer caller-token", http.StatusOK, "id,"},
		{"proxied list", http.MethodGet, "/patients", "Bearer caller-token", http.StatusOK, `"Amna Osman"`},
		{"audit", http.MethodGet, "/distributions/audit", "Bearer caller-token", http.StatusOK, `"reversalAllowed":false`},
		{"me without token", http.MethodGet, "/auth/me", "", http.StatusUnauthorized, `"code":401`},
		{"me with rejected token", http.MethodGet, "/auth/me", "Bearer stale-token", http.StatusUnauthorized, `"code":401`},
		{"me with token", http.MethodGet, "/auth/me", "Bearer caller-token", http.StatusOK, `"Dr. Hiba"`},
		{"unknown route", http.MethodGet, "/nope", "Bearer caller-token", http.StatusNotFound, `"code":404`},
		{"wrong method", http.MethodDelete, "/dashboard", "Bearer caller-token", http.StatusMethodNotAllowed, `"code":405`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.path, nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rr := httptest.NewRecorder()
			s.router.ServeHTTP(rr, req)

			if rr.Code != tt.expectedCode {
				t.Errorf("Expected status %d, got %d: %s", tt.expectedCode, rr.Code, rr.Body.String())
			}
			if !strings.Contains(rr.Body.String(), tt.bodyPart) {
				t.Errorf("Expected body to contain %q, got %s", tt.bodyPart, rr.Body.String())
			}
			if rr.Header().Get("X-RateLimit-Limit") == "" {
				t.Error("Expected rate limit headers on every route")
			}
		})
	}
}

func TestAnonymousRequestsAreRejected(t *testing.T) {
	s, upstreamCalls := newRecordingServer(t)

	tests := []struct {
		name   string
		method string
		path   string
		body   string
	}{
		{"create patient", http.MethodPost, "/patients", `{"fullName": "Amna Osman"}`},
		{"update factor", http.MethodPut, "/factors/1", `{"name": "Octanate", "quantity": 1}`},
		{"delete visit", http.MethodDelete, "/visits/1", ""},
		{"deliver", http.MethodPut, "/distributions/1/deliver", ""},
		{"revert", http.MethodPost, "/distributions/1/revert", `{"reason": "data_entry_error"}`},
		{"proxied list", http.MethodGet, "/patients", ""},
		{"dashboard", http.MethodGet, "/dashboard", ""},
		{"report", http.MethodGet, "/reports/states", ""},
		{"snapshot", http.MethodGet, "/snapshot", ""},
		{"refresh", http.MethodPost, "/snapshot/refresh", ""},
		{"export", http.MethodGet, "/export/patients", ""},
		{"audit", http.MethodGet, "/distributions/audit", ""},
		{"logout", http.MethodPost, "/auth/logout", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.path, strings.NewReader(tt.body))
			rr := httptest.NewRecorder()
			s.router.ServeHTTP(rr, req)

			if rr.Code != http.StatusUnauthorized {
				t.Errorf("Expected status 401, got %d: %s", rr.Code, rr.Body.String())
			}
			if strings.Contains(rr.Body.String(), "Amna Osman") || strings.Contains(rr.Body.String(), "Octanate") {
				t.Errorf("Expected no data in the response, got %s", rr.Body.String())
			}
		})
	}

	if n := upstreamCalls.Load(); n != 0 {
		t.Errorf("Expected no upstream calls for anonymous requests, got %d", n)
	}
}

func TestSetupMiddleware_Compression(t *testing.T) {
	s := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/reports/states", nil)
	req.Header.Set("Authorization", "Bearer caller-token")
	req.Header.Set("Accept-Encoding", "gzip")
	rr := httptest.NewRecorder()
	s.router.ServeHTTP(rr, req)

	if rr.Header().Get("Content-Encoding") != "gzip" {
		t.Fatalf("Expected a gzip response, got headers %v", rr.Header())
	}
	zr, err := gzip.NewReader(rr.Body)
	if err != nil {
		t.Fatalf("Failed to open gzip body: %v", err)
	}
	body, err := io.ReadAll(zr)
	if err != nil {
		t.Fatalf("Failed to read gzip body: %v", err)
	}
	if !strings.Contains(string(body), `"Khartoum"`) {
		t.Errorf("Expected the decompressed report, got %s", body)
	}

	// Clients that do not ask for gzip get plain JSON
	req = httptest.NewRequest(http.MethodGet, "/reports/states", nil)
	req.Header.Set("Authorization", "Bearer caller-token")
	rr = httptest.NewRecorder()
	s.router.ServeHTTP(rr, req)
	if rr.Header().Get("Content-Encoding") != "" {
		t.Errorf("Expected no content encoding, got %s", rr.Header().Get("Content-Encoding"))
	}
}

func TestSetupMiddleware_BlockDirectAccessInProd(t *testing.T) {
	s := newTestServer(t)
	cfg := testConfig()
	cfg.Env = "prod"
	prod := NewServer(cfg, s.handler)
	defer prod.limiter.Stop()

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.RemoteAddr = "198.51.100.4:5000"

	rr := httptest.NewRecorder()
	prod.router.ServeHTTP(rr, req)
	if rr.Code != http.StatusForbidden {
		t.Errorf("Expected direct access to be blocked in prod, got %d", rr.Code)
	}

	rr = httptest.NewRecorder()
	s.router.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Errorf("Expected direct access outside prod, got %d", rr.Code)
	}
}

func TestServerLifecycle(t *testing.T) {
	s := newTestServer(t)

	errCh := make(chan error, 1)
	go func() {
		errCh <- s.Start()
	}()

	time.Sleep(50 * time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.Shutdown(ctx); err != nil {
		t.Fatalf("Shutdown failed: %v", err)
	}

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			t.Errorf("Expected http.ErrServerClosed, got %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Server did not stop")
	}
}
