package health

import (
	"net/http"
	"testing"
	"time"

	"github.com/hemocore/console/entities"
	"github.com/hemocore/console/interfaces"
)

// MockHealthDataStore for testing
type MockHealthDataStore struct {
	snapshot    entities.Snapshot
	report      interfaces.LoadReport
	lastUpdated time.Time
	isUpdating  bool
}

func (m *MockHealthDataStore) GetSnapshot() entities.Snapshot { return m.snapshot }
func (m *MockHealthDataStore) GetLoadReport() interfaces.LoadReport { return m.report }
func (m *MockHealthDataStore) GetDataQuality() *interfaces.DataQualityReport { return &interfaces.DataQualityReport{} }
func (m *MockHealthDataStore) GetLastUpdated() time.Time { return m.lastUpdated }
func (m *MockHealthDataStore) IsUpdating() bool { return m.isUpdating }
func (m *MockHealthDataStore) GetServerStartTime() time.Time { return time.Time{} }
func (m *MockHealthDataStore) BeginUpdate() bool { return true }
func (m *MockHealthDataStore) EndUpdate() {}
func (m *MockHealthDataStore) UpdateData(entities.Snapshot, interfaces.LoadReport, *interfaces.DataQualityReport) {}

func loadedSnapshot() entities.Snapshot {
	return entities.Snapshot{
		Patients:      []entities.Patient{{ID: 1}, {ID: 2}},
		Factors:       []entities.Factor{{ID: 1}},
		Distributions: []entities.MedicineDistribution{{ID: 1}},
	}
}

func TestNewHealthChecker(t *testing.T) {
	healthChecker := NewHealthChecker(&MockHealthDataStore{}, 0)

	if healthChecker == nil {
		t.Fatal("NewHealthChecker returned nil")
	}

	impl, ok := healthChecker.(*HealthCheckerImpl)
	if !ok {
		t.Fatal("NewHealthChecker should return *HealthCheckerImpl")
	}

	if impl.interval != 15*time.Minute {
		t.Errorf("Expected default interval of 15m, got %v", impl.interval)
	}
}

func TestHealthCheck_Statuses(t *testing.T) {
	interval := 15 * time.Minute
	everyFailure := map[string]string{}
	for name := range (entities.Snapshot{}).Counts() {
		everyFailure[name] = "HTTP error! status: 502"
	}

	tests := []struct {
		name           string
		store          *MockHealthDataStore
		expectedStatus string
		expectedCode   int
	}{
		{
			name:           "fresh and complete",
			store:          &MockHealthDataStore{snapshot: loadedSnapshot(), lastUpdated: time.Now().Add(-5 * time.Minute)},
			expectedStatus: "healthy",
			expectedCode:   http.StatusOK,
		},
		{
			name:           "never loaded",
			store:          &MockHealthDataStore{},
			expectedStatus: "unhealthy",
			expectedCode:   http.StatusServiceUnavailable,
		},
		{
			name: "every collection failed",
			store: &MockHealthDataStore{
				lastUpdated: time.Now(),
				report:      interfaces.LoadReport{Failures: everyFailure},
			},
			expectedStatus: "unhealthy",
			expectedCode:   http.StatusServiceUnavailable,
		},
		{
			name: "one collection failed",
			store: &MockHealthDataStore{
				snapshot:    loadedSnapshot(),
				lastUpdated: time.Now(),
				report:      interfaces.LoadReport{Failures: map[string]string{entities.CollectionVisits: "timeout"}},
			},
			expectedStatus: "degraded",
			expectedCode:   http.StatusOK,
		},
		{
			name:           "stale",
			store:          &MockHealthDataStore{snapshot: loadedSnapshot(), lastUpdated: time.Now().Add(-4 * interval)},
			expectedStatus: "degraded",
			expectedCode:   http.StatusServiceUnavailable,
		},
		{
			name:           "very stale",
			store:          &MockHealthDataStore{snapshot: loadedSnapshot(), lastUpdated: time.Now().Add(-7 * interval)},
			expectedStatus: "unhealthy",
			expectedCode:   http.StatusServiceUnavailable,
		},
		{
			name: "long running update",
			store: &MockHealthDataStore{
				snapshot:    loadedSnapshot(),
				lastUpdated: time.Now().Add(-35 * time.Minute),
				isUpdating:  true,
			},
			expectedStatus: "degraded",
			expectedCode:   http.StatusServiceUnavailable,
		},
		{
			name: "short update",
			store: &MockHealthDataStore{
				snapshot:    loadedSnapshot(),
				lastUpdated: time.Now().Add(-10 * time.Minute),
				isUpdating:  true,
			},
			expectedStatus: "healthy",
			expectedCode:   http.StatusOK,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, data, code := NewHealthChecker(tt.store, interval).HealthCheck()

			if status != tt.expectedStatus {
				t.Errorf("Expected status '%s', got '%s'", tt.expectedStatus, status)
			}

			if code != tt.expectedCode {
				t.Errorf("Expected HTTP %d, got %d", tt.expectedCode, code)
			}

			if data == nil {
				t.Error("Data should not be nil")
			}
		})
	}
}

func TestHealthCheck_Data(t *testing.T) {
	store := &MockHealthDataStore{
		snapshot:    loadedSnapshot(),
		lastUpdated: time.Now().Add(-30 * time.Minute),
		isUpdating:  true,
		report: interfaces.LoadReport{Failures: map[string]string{
			entities.CollectionVisits:    "timeout",
			entities.CollectionCompanies: "HTTP error! status: 500",
		}},
	}

	_, data, _ := NewHealthChecker(store, time.Hour).HealthCheck()

	requiredFields := []string{"last_update", "data_age_minutes", "next_update", "is_updating", "failed_collections", "records"}
	for _, field := range requiredFields {
		if _, ok := data[field]; !ok {
			t.Errorf("Data should contain '%s'", field)
		}
	}

	if data["patients"] != 2 {
		t.Errorf("Expected 2 patients, got %v", data["patients"])
	}

	if data["is_updating"] != true {
		t.Errorf("Expected is_updating true, got %v", data["is_updating"])
	}

	age := data["data_age_minutes"].(float64)
	if age < 29.9 || age > 31 {
		t.Errorf("Expected data age of about 30 minutes, got %f", age)
	}

	failed := data["failed_collections"].([]string)
	if len(failed) != 2 || failed[0] != entities.CollectionCompanies || failed[1] != entities.CollectionVisits {
		t.Errorf("Expected sorted failed collections, got %v", failed)
	}
}

func TestCalculateNextUpdate(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name        string
		lastUpdated time.Time
		expected    time.Time
	}{
		{"never loaded", time.Time{}, now},
		{"recent", now.Add(-5 * time.Minute), now.Add(10 * time.Minute)},
		{"overdue", now.Add(-time.Hour), now},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			checker := &HealthCheckerImpl{
				dataStore: &MockHealthDataStore{lastUpdated: tt.lastUpdated},
				interval:  15 * time.Minute,
				now:       func() time.Time { return now },
			}

			if got := checker.CalculateNextUpdate(); !got.Equal(tt.expected) {
				t.Errorf("Expected next update at %v, got %v", tt.expected, got)
			}
		})
	}
}
