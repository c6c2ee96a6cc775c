package httpserver

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"counsel_locator/internal/adapters/memory"
	"counsel_locator/internal/app"
	"counsel_locator/internal/domain"
)

type stubGeo struct {
	pois    []domain.POI
	lastKm  float64
	blockOn bool
}

func (s *stubGeo) Nearby(ctx context.Context, _, _, radiusKm float64) []domain.POI {
	s.lastKm = radiusKm
	if s.blockOn {
		<-ctx.Done()
		return nil
	}
	return s.pois
}

func newTestServer(t *testing.T, geo domain.GeoClient, timeout time.Duration) http.Handler {
	t.Helper()
	p := app.NewPipeline(geo, app.DefaultPipelineConfig(), app.WithRand(app.NewRand(5)))
	s := New(timeout)
	s.MountHandlers(&Handlers{P: p})
	return s.Mux()
}

func do(t *testing.T, h http.Handler, method, target string, hdr map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, nil)
	for k, v := range hdr {
		req.Header.Set(k, v)
	}
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func TestListAttorneys_MissingCoordinates(t *testing.T) {
	h := newTestServer(t, &stubGeo{}, time.Second)

	for _, target := range []string{"/api/attorneys", "/api/attorneys?lat=24.86", "/api/attorneys?lng=67"} {
		rr := do(t, h, http.MethodGet, target, nil)
		if rr.Code != http.StatusBadRequest {
			t.Fatalf("%s: status %d", target, rr.Code)
		}
		var body errorResponse
		if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
			t.Fatalf("%s: decode: %v", target, err)
		}
		if body.Error != "Latitude and longitude are required" {
			t.Fatalf("%s: error %q", target, body.Error)
		}
		if rr.Header().Get("Access-Control-Allow-Origin") != "*" {
			t.Fatalf("%s: CORS header missing on error", target)
		}
	}
}

func TestListAttorneys_InvalidCoordinates(t *testing.T) {
	h := newTestServer(t, &stubGeo{}, time.Second)
	for _, target := range []string{
		"/api/attorneys?lat=abc&lng=67",
		"/api/attorneys?lat=91&lng=67",
		"/api/attorneys?lat=24&lng=-181",
		"/api/attorneys?lat=NaN&lng=1",
	} {
		rr := do(t, h, http.MethodGet, target, nil)
		if rr.Code != http.StatusBadRequest {
			t.Fatalf("%s: status %d", target, rr.Code)
		}
		var body errorResponse
		_ = json.Unmarshal(rr.Body.Bytes(), &body)
		if body.Error != "Invalid latitude or longitude" {
			t.Fatalf("%s: error %q", target, body.Error)
		}
	}
}

func TestListAttorneys_EmptyUpstreamReturnsMocks(t *testing.T) {
	h := newTestServer(t, &stubGeo{}, time.Second)

	rr := do(t, h, http.MethodGet, "/api/attorneys?lat=24.8607&lng=67.0011", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("status %d: %s", rr.Code, rr.Body.String())
	}
	if rr.Header().Get("Access-Control-Allow-Origin") != "*" {
		t.Fatalf("CORS header missing")
	}
	if rr.Header().Get("ETag") == "" {
		t.Fatalf("ETag missing")
	}
	var body attorneysResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(body.Attorneys) != app.MockCount {
		t.Fatalf("want %d attorneys, got %d", app.MockCount, len(body.Attorneys))
	}
	for _, a := range body.Attorneys {
		if a.Source != domain.SourceMock {
			t.Fatalf("unexpected source %q", a.Source)
		}
	}
}

func TestListAttorneys_ConditionalGet(t *testing.T) {
	geo := &stubGeo{pois: []domain.POI{{ID: 1, Kind: "node", Lat: 24.87, Lng: 67.01, Tags: domain.Tags{"name": "Karachi Legal Aid Centre"}}}}
	cache := memory.New(memory.Options{SweepInterval: -1})
	t.Cleanup(cache.Close)
	p := app.NewPipeline(geo, app.DefaultPipelineConfig(), app.WithRand(app.NewRand(5)), app.WithCache(cache))
	s := New(time.Second)
	s.MountHandlers(&Handlers{P: p})
	h := s.Mux()

	first := do(t, h, http.MethodGet, "/api/attorneys?lat=24.8607&lng=67.0011", nil)
	etag := first.Header().Get("ETag")
	if first.Code != http.StatusOK || etag == "" {
		t.Fatalf("first: %d etag=%q", first.Code, etag)
	}

	second := do(t, h, http.MethodGet, "/api/attorneys?lat=24.8607&lng=67.0011", map[string]string{"If-None-Match": etag})
	if second.Code != http.StatusNotModified {
		t.Fatalf("want 304, got %d", second.Code)
	}
	if second.Body.Len() != 0 {
		t.Fatalf("304 must not carry a body")
	}
}

func TestListAttorneys_RadiusParsing(t *testing.T) {
	geo := &stubGeo{}
	h := newTestServer(t, geo, time.Second)

	cases := map[string]float64{
		"":            defaultRadiusKm,
		"&radius=10":  10,
		"&radius=500": maxRadiusKm,
		"&radius=-3":  defaultRadiusKm,
		"&radius=abc": defaultRadiusKm,
	}
	for q, want := range cases {
		do(t, h, http.MethodGet, "/api/attorneys?lat=1&lng=1"+q, nil)
		if geo.lastKm != want {
			t.Fatalf("radius %q: got %v want %v", q, geo.lastKm, want)
		}
	}
}

func TestListAttorneys_SlowUpstreamDegrades(t *testing.T) {
	h := newTestServer(t, &stubGeo{blockOn: true}, 50*time.Millisecond)

	rr := do(t, h, http.MethodGet, "/api/attorneys?lat=24.8607&lng=67.0011", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("status %d", rr.Code)
	}
	var body attorneysResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(body.Attorneys) != app.MockCount {
		t.Fatalf("want mocks after timeout, got %d", len(body.Attorneys))
	}
}

func TestPreflight(t *testing.T) {
	h := newTestServer(t, &stubGeo{}, time.Second)
	rr := do(t, h, http.MethodOptions, "/api/attorneys", map[string]string{
		"Origin":                        "https://example.org",
		"Access-Control-Request-Method": "GET",
	})
	if rr.Code != http.StatusNoContent {
		t.Fatalf("status %d", rr.Code)
	}
	if rr.Header().Get("Access-Control-Allow-Origin") != "*" {
		t.Fatalf("CORS header missing")
	}
}

func TestPreflight_AllowsIfNoneMatch(t *testing.T) {
	h := newTestServer(t, &stubGeo{}, time.Second)
	rr := do(t, h, http.MethodOptions, "/api/attorneys", map[string]string{
		"Origin":                         "https://example.org",
		"Access-Control-Request-Method":  "GET",
		"Access-Control-Request-Headers": "if-none-match",
	})
	if rr.Code != http.StatusNoContent {
		t.Fatalf("status %d", rr.Code)
	}
	allowed := rr.Header().Get("Access-Control-Allow-Headers")
	if !strings.Contains(strings.ToLower(allowed), "if-none-match") {
		t.Fatalf("If-None-Match not allowed: %q", allowed)
	}
	if got := rr.Header().Get("Access-Control-Allow-Methods"); got != http.MethodGet {
		t.Fatalf("allow-methods rewritten: %q", got)
	}
}

func TestListAttorneys_CrossOriginExposesETag(t *testing.T) {
	h := newTestServer(t, &stubGeo{}, time.Second)

	rr := do(t, h, http.MethodGet, "/api/attorneys?lat=24.8607&lng=67.0011", map[string]string{"Origin": "https://example.org"})
	if rr.Code != http.StatusOK {
		t.Fatalf("status %d", rr.Code)
	}
	if rr.Header().Get("Access-Control-Allow-Origin") != "*" {
		t.Fatalf("allow-origin: %q", rr.Header().Get("Access-Control-Allow-Origin"))
	}
	exposed := rr.Header().Get("Access-Control-Expose-Headers")
	if !strings.Contains(strings.ToLower(exposed), "etag") {
		t.Fatalf("ETag not exposed: %q", exposed)
	}
}

func TestHealthz(t *testing.T) {
	rr := do(t, newTestServer(t, &stubGeo{}, time.Second), http.MethodGet, "/healthz", nil)
	if rr.Code != http.StatusOK || rr.Body.String() != "ok" {
		t.Fatalf("healthz: %d %q", rr.Code, rr.Body.String())
	}
}
