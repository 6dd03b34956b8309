package api

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/Inter-iit-tech/order-allocation-microservice/internal/adapters/distance"
	"github.com/Inter-iit-tech/order-allocation-microservice/internal/config"
	"github.com/Inter-iit-tech/order-allocation-microservice/internal/services"
)

func testRouter() http.Handler {
	planner := &services.Planner{
		Provider: &distance.MockTravelTimeProvider{Matrix: [][]int{{0}}},
		Cfg:      config.Config{},
	}
	return NewRouter(planner)
}

func TestRouterHealth(t *testing.T) {
	rec := httptest.NewRecorder()
	testRouter().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status %d, want 200", rec.Code)
	}
	if body := rec.Body.String(); !strings.Contains(body, "ok") {
		t.Fatalf("body %q, want an ok status", body)
	}
}

func TestRouterAssignsRequestID(t *testing.T) {
	rec := httptest.NewRecorder()
	testRouter().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	if rec.Header().Get("X-Request-ID") == "" {
		t.Fatal("X-Request-ID response header not set")
	}
}

func TestRouterKeepsCallerRequestID(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("X-Request-ID", "req-abc")

	rec := httptest.NewRecorder()
	testRouter().ServeHTTP(rec, req)

	if got := rec.Header().Get("X-Request-ID"); got != "req-abc" {
		t.Fatalf("X-Request-ID=%q, want caller's id echoed", got)
	}
}
