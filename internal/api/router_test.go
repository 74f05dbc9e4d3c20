// Safehold - Backup Orchestration Configuration Store
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/safehold

package api

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/safehold/internal/config"
	"github.com/tomtom215/safehold/internal/database"
	"github.com/tomtom215/safehold/internal/models"
)

type fakeBackend struct {
	pingErr error
	version int
}

func (f *fakeBackend) Ping(context.Context) error { return f.pingErr }

func (f *fakeBackend) SchemaVersion(context.Context) (int, error) { return f.version, nil }

type fakeStatus struct {
	config, notifications int64
	temp                  int
}

func (f *fakeStatus) ConfigChanges() int64       { return f.config }
func (f *fakeStatus) NotificationChanges() int64 { return f.notifications }
func (f *fakeStatus) GetTemporaryBackups() []*models.Backup {
	return make([]*models.Backup, f.temp)
}

func serve(t *testing.T, h http.Handler, path string) (*httptest.ResponseRecorder, models.APIResponse) {
	t.Helper()

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))

	var resp models.APIResponse
	if strings.HasPrefix(rec.Header().Get("Content-Type"), "application/json") {
		if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
			t.Fatalf("decode %s: %v\n%s", path, err, rec.Body.String())
		}
	}
	return rec, resp
}

func TestRouter_Endpoints(t *testing.T) {
	router := NewRouter(NewHandler(&fakeBackend{version: 1}, "sqlite", &fakeStatus{config: 3, notifications: 2, temp: 1}), RouterConfig{})

	tests := []struct {
		path       string
		wantStatus int
		wantBody   string
	}{
		{"/healthz", http.StatusOK, `"alive"`},
		{"/readyz", http.StatusOK, `"schema_version":1`},
		{"/api/v1/status", http.StatusOK, `"config_changes":3`},
		{"/metrics", http.StatusOK, "safehold_http_requests_total"},
		{"/nope", http.StatusNotFound, `"NOT_FOUND"`},
	}

	// Prime the request counter so /metrics has something to expose.
	serve(t, router, "/healthz")

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			rec, _ := serve(t, router, tt.path)
			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			if !strings.Contains(rec.Body.String(), tt.wantBody) {
				t.Errorf("body lacks %s:\n%s", tt.wantBody, rec.Body.String())
			}
			if rec.Header().Get("X-Request-ID") == "" {
				t.Error("missing X-Request-ID")
			}
		})
	}
}

func TestRouter_ReadyDegraded(t *testing.T) {
	router := NewRouter(NewHandler(&fakeBackend{pingErr: errors.New("connection refused")}, "postgres", &fakeStatus{}), RouterConfig{})

	rec, resp := serve(t, router, "/readyz")
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503", rec.Code)
	}
	if resp.Status != "error" || resp.Error == nil || resp.Error.Code != "DATABASE_UNAVAILABLE" {
		t.Errorf("response = %+v", resp)
	}
}

func TestRouter_RateLimit(t *testing.T) {
	router := NewRouter(NewHandler(&fakeBackend{version: 1}, "sqlite", &fakeStatus{}), RouterConfig{
		RateLimitRequests: 2,
		RateLimitWindow:   time.Minute,
	})

	for i := 0; i < 2; i++ {
		if rec, _ := serve(t, router, "/healthz"); rec.Code != http.StatusOK {
			t.Fatalf("request %d: status = %d", i, rec.Code)
		}
	}

	rec, resp := serve(t, router, "/healthz")
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("status = %d, want 429", rec.Code)
	}
	if resp.Error == nil || resp.Error.Code != "RATE_LIMITED" {
		t.Errorf("response = %+v", resp)
	}

	if rec, _ := serve(t, router, "/metrics"); rec.Code != http.StatusOK {
		t.Errorf("/metrics status = %d, scrapes must not be limited", rec.Code)
	}
}

func TestRouter_CORS(t *testing.T) {
	router := NewRouter(NewHandler(&fakeBackend{version: 1}, "sqlite", &fakeStatus{}), RouterConfig{
		CORSOrigins: []string{"https://dash.example"},
	})

	tests := []struct {
		origin string
		want   string
	}{
		{"https://dash.example", "https://dash.example"},
		{"https://evil.example", ""},
	}
	for _, tt := range tests {
		t.Run(tt.origin, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/v1/status", nil)
			req.Header.Set("Origin", tt.origin)
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)

			if got := rec.Header().Get("Access-Control-Allow-Origin"); got != tt.want {
				t.Errorf("Access-Control-Allow-Origin = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestRouter_WithRealStore(t *testing.T) {
	db, err := database.New(&config.DatabaseConfig{
		Driver: "sqlite",
		Path:   filepath.Join(t.TempDir(), "api.sqlite"),
	})
	if err != nil {
		t.Fatalf("open database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	store := database.NewStore(db, database.StoreConfig{DataDir: t.TempDir()})
	store.RegisterTemporaryBackup(&models.Backup{Name: "restore"})
	checkErr(t, store.SetApplicationSettings(context.Background(), map[string]string{"theme": "dark"}))

	router := NewRouter(NewHandler(db, db.Dialect().Name(), store), RouterConfig{})

	rec, _ := serve(t, router, "/api/v1/status")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var body struct {
		Data models.StoreStatus `json:"data"`
	}
	checkErr(t, json.Unmarshal(rec.Body.Bytes(), &body))
	if body.Data.ConfigChanges != 1 || body.Data.TemporaryBackups != 1 {
		t.Errorf("status = %+v", body.Data)
	}

	rec, _ = serve(t, router, "/readyz")
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"driver":"sqlite"`) {
		t.Errorf("readyz = %d %s", rec.Code, rec.Body.String())
	}
}

func checkErr(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
