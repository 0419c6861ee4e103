package controllers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Teja2142/Hyrind-Backend/pkg/config"
	"github.com/Teja2142/Hyrind-Backend/pkg/logger"
)

type stubPinger struct{ err error }

func (s stubPinger) Ping(context.Context) error { return s.err }

func TestHealthLive(t *testing.T) {
	cfg := &config.Config{App: config.AppConfig{Env: "dev"}}
	resp := httptest.NewRecorder()
	HealthLive(cfg).ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/health/live", nil))
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	if resp.Header().Get(envHeader) != "dev" {
		t.Fatalf("expected env header")
	}
}

func TestHealthReady(t *testing.T) {
	cfg := &config.Config{App: config.AppConfig{Env: "dev"}}

	tests := []struct {
		name   string
		deps   map[string]Pinger
		status int
		check  string
	}{
		{"all up", map[string]Pinger{"db": stubPinger{}, "redis": stubPinger{}}, http.StatusOK, "up"},
		{"redis down", map[string]Pinger{"db": stubPinger{}, "redis": stubPinger{err: errors.New("dial tcp")}}, http.StatusServiceUnavailable, "down"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := httptest.NewRecorder()
			HealthReady(cfg, logger.Nop(), tt.deps).ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/health/ready", nil))
			if resp.Code != tt.status {
				t.Fatalf("expected %d got %d", tt.status, resp.Code)
			}
			var body map[string]any
			if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
				t.Fatalf("decode: %v", err)
			}
			var checks map[string]any
			if data, ok := body["data"].(map[string]any); ok {
				checks, _ = data["checks"].(map[string]any)
			} else if e, ok := body["error"].(map[string]any); ok {
				details, _ := e["details"].(map[string]any)
				checks, _ = details["checks"].(map[string]any)
			}
			if checks["redis"] != tt.check {
				t.Fatalf("expected redis %s got %v", tt.check, checks)
			}
		})
	}
}
