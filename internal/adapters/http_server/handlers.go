// internal/adapters/http_server/handlers.go
package httpserver

import (
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"math"
	"net/http"
	"strconv"

	"github.com/rs/zerolog/log"

	"counsel_locator/internal/app"
	"counsel_locator/internal/domain"
)

const (
	defaultRadiusKm = 50
	maxRadiusKm     = 200
)

type Handlers struct{ P *app.Pipeline }

type attorneysResponse struct {
	Attorneys []domain.Attorney `json:"attorneys"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) MountHandlers(h *Handlers) {
	s.mux.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200); _, _ = w.Write([]byte("ok")) })
	s.mux.Get("/api/attorneys", h.listAttorneys)
	s.mux.Options("/api/attorneys", preflight)
}

// allowAnyOrigin covers callers that send no Origin header, which the cors
// middleware leaves untouched. Headers the middleware wrote are kept.
func allowAnyOrigin(w http.ResponseWriter) {
	if w.Header().Get("Access-Control-Allow-Origin") == "" {
		w.Header().Set("Access-Control-Allow-Origin", "*")
	}
}

// preflight only sets the status; the cors middleware has already answered
// the Access-Control-Request-* headers.
func preflight(w http.ResponseWriter, r *http.Request) {
	allowAnyOrigin(w)
	w.WriteHeader(http.StatusNoContent)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("write JSON response failed")
	}
}

// calcETagAndBody marshals once and hashes once, returning both ETag and body.
func calcETagAndBody(v any) (string, []byte) {
	body, err := json.Marshal(v)
	if err != nil {
		log.Error().Err(err).Msg("failed to marshal object for ETag/body")
		return "", nil
	}
	sum := sha1.Sum(body)
	etag := `W/"` + hex.EncodeToString(sum[:]) + `"`
	return etag, body
}

// parseCoords validates the query. It reports a user-facing message on failure.
func parseCoords(r *http.Request) (lat, lng, radius float64, msg string) {
	q := r.URL.Query()
	latS, lngS := q.Get("lat"), q.Get("lng")
	if latS == "" || lngS == "" {
		return 0, 0, 0, "Latitude and longitude are required"
	}
	lat, errLat := strconv.ParseFloat(latS, 64)
	lng, errLng := strconv.ParseFloat(lngS, 64)
	if errLat != nil || errLng != nil || !domain.ValidCoordinates(lat, lng) {
		return 0, 0, 0, "Invalid latitude or longitude"
	}

	radius = defaultRadiusKm
	if rs := q.Get("radius"); rs != "" {
		if v, err := strconv.ParseFloat(rs, 64); err == nil && v > 0 && !math.IsInf(v, 0) {
			radius = math.Min(v, maxRadiusKm)
		}
	}
	return lat, lng, radius, ""
}

func (h *Handlers) listAttorneys(w http.ResponseWriter, r *http.Request) {
	allowAnyOrigin(w)

	lat, lng, radius, msg := parseCoords(r)
	if msg != "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: msg})
		return
	}

	attorneys := h.process(r, lat, lng, radius)

	etag, body := calcETagAndBody(attorneysResponse{Attorneys: attorneys})
	if body == nil {
		writeJSON(w, http.StatusOK, attorneysResponse{Attorneys: []domain.Attorney{}})
		return
	}
	if inm := r.Header.Get("If-None-Match"); inm != "" && inm == etag {
		w.Header().Set("ETag", etag)
		w.WriteHeader(http.StatusNotModified)
		return
	}

	w.Header().Set("ETag", etag)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(body); err != nil {
		log.Error().Err(err).Msg("failed to write attorneys body")
	}
}

// process shields the response from any failure below the HTTP layer.
func (h *Handlers) process(r *http.Request, lat, lng, radius float64) (out []domain.Attorney) {
	defer func() {
		if rec := recover(); rec != nil {
			log.Error().Interface("panic", rec).Msg("attorney lookup panicked")
			out = []domain.Attorney{}
		}
	}()
	out = h.P.Process(r.Context(), lat, lng, radius)
	if out == nil {
		out = []domain.Attorney{}
	}
	return out
}
