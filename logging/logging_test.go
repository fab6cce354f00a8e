package logging

import (
	"bytes"
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// ============================================================================
// LEVELS AND GLOBAL SERVICE
// ============================================================================

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input    string
		expected slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"DEBUG", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"", slog.LevelInfo},
		{"nonsense", slog.LevelInfo},
	}

	for _, tt := range tests {
		if got := ParseLevel(tt.input); got != tt.expected {
			t.Errorf("ParseLevel(%q): expected %v, got %v", tt.input, tt.expected, got)
		}
	}
}

func TestPackageFunctionsBeforeInit(t *testing.T) {
	saved := DefaultLoggingService
	DefaultLoggingService = nil
	defer func() { DefaultLoggingService = saved }()

	// Must not panic without Init
	Info("info before init")
	Warn("warn before init")
	Error("error before init")
	Debug("debug before init")

	if Logger() == nil {
		t.Fatal("Expected fallback logger, got nil")
	}
}

func TestInitConsoleOnly(t *testing.T) {
	saved := DefaultLoggingService
	defer func() { DefaultLoggingService = saved }()

	svc := Init(Options{Level: "debug", ConsoleOnly: true})
	if svc.Logger == nil {
		t.Fatal("Expected logger to be set")
	}
	if svc.rotating != nil {
		t.Error("Expected no rotating file for console-only logging")
	}
	if err := svc.Close(); err != nil {
		t.Errorf("Expected no error closing console logger, got %v", err)
	}
}

func TestInitWithFile(t *testing.T) {
	saved := DefaultLoggingService
	defer func() { DefaultLoggingService = saved }()

	dir := t.TempDir()
	svc := Init(Options{Dir: dir, Level: "info", RetentionWeeks: 2, MaxFileSize: 1 << 20})
	defer svc.Close()

	Info("snapshot refreshed", "patients", 3)

	content, err := os.ReadFile(filepath.Join(dir, logFilePrefix+weekKey(time.Now())+".log"))
	if err != nil {
		t.Fatalf("Expected log file to exist, got %v", err)
	}
	if !strings.Contains(string(content), `"msg":"snapshot refreshed"`) {
		t.Errorf("Expected JSON record in log file, got %s", content)
	}
}

// ============================================================================
// ROTATING WRITER
// ============================================================================

func TestRotatingLoggerWritesWeeklyFile(t *testing.T) {
	dir := t.TempDir()
	rl := NewRotatingLogger(dir, 1, 0)
	defer rl.Close()

	if _, err := rl.Write([]byte("first line\n")); err != nil {
		t.Fatalf("Failed to write: %v", err)
	}

	path := filepath.Join(dir, logFilePrefix+weekKey(time.Now())+".log")
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read log file: %v", err)
	}
	if string(content) != "first line\n" {
		t.Errorf("Expected 'first line', got %q", content)
	}
}

func TestRotatingLoggerRotatesOnNewWeek(t *testing.T) {
	dir := t.TempDir()
	rl := NewRotatingLogger(dir, 4, 0)
	defer rl.Close()

	current := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)
	rl.now = func() time.Time { return current }
	if _, err := rl.Write([]byte("week one\n")); err != nil {
		t.Fatalf("Failed to write: %v", err)
	}

	current = current.AddDate(0, 0, 7)
	if _, err := rl.Write([]byte("week two\n")); err != nil {
		t.Fatalf("Failed to write: %v", err)
	}

	for _, week := range []string{"2026-W10", "2026-W11"} {
		if _, err := os.Stat(filepath.Join(dir, logFilePrefix+week+".log")); err != nil {
			t.Errorf("Expected file for %s, got %v", week, err)
		}
	}
}

func TestRotatingLoggerRotatesOnSize(t *testing.T) {
	dir := t.TempDir()
	rl := NewRotatingLogger(dir, 4, 16)
	defer rl.Close()

	fixed := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)
	rl.now = func() time.Time { return fixed }

	for i := 0; i < 3; i++ {
		if _, err := rl.Write([]byte("0123456789\n")); err != nil {
			t.Fatalf("Failed to write: %v", err)
		}
	}

	expected := []string{
		logFilePrefix + "2026-W10.log",
		logFilePrefix + "2026-W10_01.log",
		logFilePrefix + "2026-W10_02.log",
	}
	for _, name := range expected {
		info, err := os.Stat(filepath.Join(dir, name))
		if err != nil {
			t.Errorf("Expected %s to exist, got %v", name, err)
			continue
		}
		if info.Size() > 16 {
			t.Errorf("Expected %s within size limit, got %d bytes", name, info.Size())
		}
	}
}

func TestRotatingLoggerReusesPartialFile(t *testing.T) {
	dir := t.TempDir()
	fixed := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)
	base := filepath.Join(dir, logFilePrefix+"2026-W10.log")
	if err := os.WriteFile(base, []byte("old\n"), 0640); err != nil {
		t.Fatal(err)
	}

	rl := NewRotatingLogger(dir, 4, 1024)
	rl.now = func() time.Time { return fixed }
	if _, err := rl.Write([]byte("new\n")); err != nil {
		t.Fatalf("Failed to write: %v", err)
	}
	rl.Close()

	content, _ := os.ReadFile(base)
	if string(content) != "old\nnew\n" {
		t.Errorf("Expected append to existing file, got %q", content)
	}
}

func TestCleanupOldLogs(t *testing.T) {
	dir := t.TempDir()
	rl := NewRotatingLogger(dir, 1, 0)
	defer rl.Close()

	stale := filepath.Join(dir, logFilePrefix+"2020-W01.log")
	fresh := filepath.Join(dir, logFilePrefix+"2026-W10.log")
	unrelated := filepath.Join(dir, "notes.txt")
	for _, p := range []string{stale, fresh, unrelated} {
		if err := os.WriteFile(p, []byte("x"), 0640); err != nil {
			t.Fatal(err)
		}
	}
	old := time.Now().Add(-30 * 24 * time.Hour)
	_ = os.Chtimes(stale, old, old)
	_ = os.Chtimes(unrelated, old, old)

	deleted, err := rl.cleanupOldLogs()
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if deleted != 1 {
		t.Errorf("Expected 1 deleted file, got %d", deleted)
	}
	if _, err := os.Stat(stale); !os.IsNotExist(err) {
		t.Error("Expected stale log to be removed")
	}
	if _, err := os.Stat(fresh); err != nil {
		t.Error("Expected fresh log to be kept")
	}
	if _, err := os.Stat(unrelated); err != nil {
		t.Error("Expected unrelated file to be kept")
	}
}

func TestRotatingLoggerConcurrentWrites(t *testing.T) {
	dir := t.TempDir()
	rl := NewRotatingLogger(dir, 1, 0)
	defer rl.Close()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				_, _ = rl.Write([]byte("line\n"))
			}
		}()
	}
	wg.Wait()

	content, err := os.ReadFile(filepath.Join(dir, logFilePrefix+weekKey(time.Now())+".log"))
	if err != nil {
		t.Fatalf("Failed to read log file: %v", err)
	}
	if got := strings.Count(string(content), "line\n"); got != 1000 {
		t.Errorf("Expected 1000 lines, got %d", got)
	}
}

// ============================================================================
// FANOUT HANDLER
// ============================================================================

func TestFanoutHandlerRespectsLevels(t *testing.T) {
	var debugBuf, errorBuf bytes.Buffer
	h := newFanoutHandler(
		slog.NewTextHandler(&debugBuf, &slog.HandlerOptions{Level: slog.LevelDebug}),
		slog.NewTextHandler(&errorBuf, &slog.HandlerOptions{Level: slog.LevelError}),
	)
	logger := slog.New(h).With("component", "test")

	logger.Debug("debug message")
	logger.Error("error message")

	if !strings.Contains(debugBuf.String(), "debug message") || !strings.Contains(debugBuf.String(), "error message") {
		t.Errorf("Expected both messages in debug handler, got %s", debugBuf.String())
	}
	if strings.Contains(errorBuf.String(), "debug message") {
		t.Error("Expected debug message to be filtered from error handler")
	}
	if !strings.Contains(errorBuf.String(), "component=test") {
		t.Errorf("Expected attrs to propagate, got %s", errorBuf.String())
	}
	if h.Enabled(context.Background(), slog.LevelDebug-4) {
		t.Error("Expected level below every handler to be disabled")
	}
}

// ============================================================================
// REQUEST LOGGER
// ============================================================================

func TestRequestLoggerSkipsProbes(t *testing.T) {
	var out strings.Builder
	logger := slog.New(slog.NewTextHandler(&out, nil))
	handler := RequestLogger(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	for _, path := range []string{"/health", "/metrics"} {
		out.Reset()
		handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, path, nil))
		if out.Len() != 0 {
			t.Errorf("Expected no log for %s, got %s", path, out.String())
		}
	}
}

func TestRequestLoggerRecordsRequest(t *testing.T) {
	var out strings.Builder
	logger := slog.New(slog.NewTextHandler(&out, nil))

	r := chi.NewRouter()
	r.Use(RequestLogger(logger))
	r.Get("/patients/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte("missing"))
	})

	req := httptest.NewRequest(http.MethodGet, "/patients/7?verbose=1", nil)
	req = req.WithContext(context.WithValue(req.Context(), middleware.RequestIDKey, "req-42"))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	logs := out.String()
	for _, want := range []string{
		"level=WARN",
		"request_id=req-42",
		"path=/patients/7",
		"route=/patients/{id}",
		`query="verbose=1"`,
		"status_code=404",
		"bytes_written=7",
	} {
		if !strings.Contains(logs, want) {
			t.Errorf("Expected log to contain %q, got %s", want, logs)
		}
	}
}

func TestRequestLoggerUnknownRequestID(t *testing.T) {
	var out strings.Builder
	logger := slog.New(slog.NewTextHandler(&out, nil))
	handler := RequestLogger(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("ok"))
	}))

	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/dashboard", nil))

	if !strings.Contains(out.String(), "request_id=unknown") {
		t.Errorf("Expected unknown request id, got %s", out.String())
	}
	if !strings.Contains(out.String(), "level=INFO") {
		t.Errorf("Expected info level for 200, got %s", out.String())
	}
}
