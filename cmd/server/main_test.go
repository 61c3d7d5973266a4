package main

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/p-n-ai/statsmd/internal/api"
	"github.com/p-n-ai/statsmd/internal/platform/config"
	"github.com/p-n-ai/statsmd/internal/session"
)

func TestHealthEndpoints(t *testing.T) {
	cat, err := loadCatalog("")
	if err != nil {
		t.Fatalf("loadCatalog() error = %v", err)
	}
	store := session.Open(t.Context(), session.NewMemoryStorage())
	handler := api.New(cat, store)
	defer handler.Close()

	tests := []struct {
		name       string
		path       string
		wantStatus int
		wantBody   string
	}{
		{
			name:       "healthz returns 200",
			path:       "/healthz",
			wantStatus: http.StatusOK,
			wantBody:   "{\"status\":\"ok\"}\n",
		},
		{
			name:       "readyz returns 200",
			path:       "/readyz",
			wantStatus: http.StatusOK,
			wantBody:   "{\"status\":\"ready\"}\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			rec := httptest.NewRecorder()

			handler.ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			if rec.Body.String() != tt.wantBody {
				t.Errorf("body = %q, want %q", rec.Body.String(), tt.wantBody)
			}
		})
	}
}

func TestLoadCatalog_MissingDir(t *testing.T) {
	if _, err := loadCatalog(filepath.Join(t.TempDir(), "missing")); err == nil {
		t.Fatal("loadCatalog() should fail for a missing directory")
	}
}

func TestOpenResources(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		name    string
		storage config.StorageConfig
	}{
		{"memory", config.StorageConfig{Driver: config.DriverMemory}},
		{"file", config.StorageConfig{Driver: config.DriverFile, Dir: filepath.Join(dir, "files")}},
		{"sqlite", config.StorageConfig{Driver: config.DriverSQLite, SQLitePath: filepath.Join(dir, "db", "statsmd.db")}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := openResources(t.Context(), &config.Config{Storage: tt.storage})
			if err != nil {
				t.Fatalf("openResources() error = %v", err)
			}
			defer res.Close()

			store := session.Open(t.Context(), res.storage, session.WithEventLogger(res.events))
			store.ToggleDarkMode()

			reopened := session.Open(t.Context(), res.storage)
			if reopened.State().DarkMode {
				t.Error("theme change was not persisted")
			}
		})
	}
}

func TestOpenResources_Errors(t *testing.T) {
	blocker := filepath.Join(t.TempDir(), "blocker")
	if err := os.WriteFile(blocker, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name    string
		storage config.StorageConfig
	}{
		{"unknown driver", config.StorageConfig{Driver: "tape"}},
		{"file dir is a regular file", config.StorageConfig{Driver: config.DriverFile, Dir: filepath.Join(blocker, "files")}},
		{"empty sqlite path", config.StorageConfig{Driver: config.DriverSQLite}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := openResources(t.Context(), &config.Config{Storage: tt.storage})
			if err == nil {
				t.Fatal("openResources() should fail")
			}
			if res != nil {
				t.Errorf("openResources() resources = %v, want nil on error", res)
			}
		})
	}
}

func TestOpenResources_UnreachableRedis(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping unreachable host test in short mode")
	}

	cfg := &config.Config{
		Storage: config.StorageConfig{Driver: config.DriverRedis},
		Cache:   config.CacheConfig{URL: "redis://localhost:59999"},
	}
	if _, err := openResources(t.Context(), cfg); err == nil {
		t.Fatal("openResources() should fail for an unreachable redis")
	}
}
