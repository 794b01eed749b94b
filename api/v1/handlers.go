package v1

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/dpup/prefab/logging"

	"github.com/maxsviluppo/Aitraffic/internal/lib/display"
	"github.com/maxsviluppo/Aitraffic/internal/lib/geo"
	"github.com/maxsviluppo/Aitraffic/internal/lib/mapview"
	"github.com/maxsviluppo/Aitraffic/internal/lib/search"
	"github.com/maxsviluppo/Aitraffic/internal/lib/telemetry"
	"github.com/maxsviluppo/Aitraffic/internal/services"
	"github.com/maxsviluppo/Aitraffic/internal/store"
)

// Prefix is where the API is mounted.
const Prefix = "/api/v1/"

// Handler serves the JSON API over a TransitService.
type Handler struct {
	svc *services.TransitService
	geo geo.GeoUtils
}

// NewHandler creates the API handler.
func NewHandler(svc *services.TransitService) *Handler {
	return &Handler{svc: svc, geo: geo.NewGeoUtils()}
}

// Router returns an http.Handler with registered routes.
func (h *Handler) Router() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/v1/search", h.handleSearch)
	mux.HandleFunc("GET /api/v1/results", h.handleListResults)
	mux.HandleFunc("DELETE /api/v1/results", h.handleClearResults)
	mux.HandleFunc("GET /api/v1/results/{i}", h.handleGetResult)
	mux.HandleFunc("GET /api/v1/results/{i}/html", h.handleResultHTML)
	mux.HandleFunc("GET /api/v1/results/{i}/map", h.handleResultMap)
	mux.HandleFunc("GET /api/v1/results/{i}/points", h.handleResultPoints)
	mux.HandleFunc("GET /api/v1/results/{i}/points.kml", h.handleResultKML)
	mux.HandleFunc("GET /api/v1/saved", h.handleListSaved)
	mux.HandleFunc("POST /api/v1/saved", h.handleToggleSaved)
	mux.HandleFunc("DELETE /api/v1/saved/{id}", h.handleDeleteSaved)
	mux.HandleFunc("POST /api/v1/saved/{id}/run", h.handleRunSaved)
	mux.HandleFunc("GET /api/v1/health", h.handleHealth)
	return mux
}

// SearchRequest is the body of POST /api/v1/search and POST /saved/{id}/run.
type SearchRequest struct {
	Query string   `json:"query"`
	Type  string   `json:"type"`
	Lat   *float64 `json:"lat,omitempty"`
	Lng   *float64 `json:"lng,omitempty"`
	City  string   `json:"city,omitempty"`
}

func (r SearchRequest) location() *telemetry.Location {
	if r.Lat == nil || r.Lng == nil {
		return nil
	}
	return &telemetry.Location{Lat: *r.Lat, Lng: *r.Lng, City: r.City}
}

// ToggleRequest is the body of POST /api/v1/saved.
type ToggleRequest struct {
	Query string `json:"query"`
	Type  string `json:"type"`
}

// ToggleResponse reports the saved search and whether it is now saved.
type ToggleResponse struct {
	Saved store.SavedSearch `json:"saved_search"`
	Added bool              `json:"added"`
}

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

func (h *Handler) handleSearch(w http.ResponseWriter, r *http.Request) {
	var req SearchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body", err)
		return
	}

	result, err := h.svc.Search(r.Context(), services.Request{
		Query:    req.Query,
		Type:     telemetry.TransportType(req.Type),
		Location: req.location(),
	})
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *Handler) handleListResults(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.svc.Recent())
}

func (h *Handler) handleClearResults(w http.ResponseWriter, r *http.Request) {
	h.svc.Clear()
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) result(w http.ResponseWriter, r *http.Request) (*services.Result, bool) {
	i, err := strconv.Atoi(r.PathValue("i"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "result index must be an integer", err)
		return nil, false
	}
	result, err := h.svc.Result(i)
	if err != nil {
		h.writeServiceError(w, r, err)
		return nil, false
	}
	return result, true
}

func (h *Handler) handleGetResult(w http.ResponseWriter, r *http.Request) {
	if result, ok := h.result(w, r); ok {
		writeJSON(w, http.StatusOK, result)
	}
}

func (h *Handler) handleResultHTML(w http.ResponseWriter, r *http.Request) {
	result, ok := h.result(w, r)
	if !ok {
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if result.Alert {
		fmt.Fprintf(w, "<div class=\"telemetry-alert\">%s</div>\n", display.AlertBanner)
	}
	if err := display.WriteHTML(w, result.Nodes); err != nil {
		logging.Errorw(r.Context(), "Failed to write result HTML", "error", err)
	}
}

func (h *Handler) handleResultMap(w http.ResponseWriter, r *http.Request) {
	if result, ok := h.result(w, r); ok {
		writeJSON(w, http.StatusOK, mapview.Build(result.Points, result.Location))
	}
}

// handleResultPoints returns the result points, optionally only those within
// ?near= meters of ?lat=&lng= or of the location the search was made from.
func (h *Handler) handleResultPoints(w http.ResponseWriter, r *http.Request) {
	result, ok := h.result(w, r)
	if !ok {
		return
	}

	near := r.URL.Query().Get("near")
	if near == "" {
		writeJSON(w, http.StatusOK, result.Points)
		return
	}

	meters, err := strconv.ParseFloat(near, 64)
	if err != nil || meters < 0 {
		writeError(w, http.StatusBadRequest, "near must be a non-negative number of meters", err)
		return
	}

	center, ok := centerFor(r, result)
	if !ok {
		writeError(w, http.StatusBadRequest, "near requires lat and lng or a search made with a location", nil)
		return
	}

	points, err := h.geo.FilterMapPoints(result.Points, center, meters)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid center", err)
		return
	}
	writeJSON(w, http.StatusOK, points)
}

func centerFor(r *http.Request, result *services.Result) (geo.Point, bool) {
	q := r.URL.Query()
	if q.Get("lat") != "" || q.Get("lng") != "" {
		lat, errLat := strconv.ParseFloat(q.Get("lat"), 64)
		lng, errLng := strconv.ParseFloat(q.Get("lng"), 64)
		if errLat != nil || errLng != nil {
			return geo.Point{}, false
		}
		return geo.Point{Latitude: lat, Longitude: lng}, true
	}
	if result.Location != nil {
		return geo.FromLocation(*result.Location), true
	}
	return geo.Point{}, false
}

func (h *Handler) handleResultKML(w http.ResponseWriter, r *http.Request) {
	result, ok := h.result(w, r)
	if !ok {
		return
	}
	w.Header().Set("Content-Type", "application/vnd.google-earth.kml+xml")
	w.Header().Set("Content-Disposition", `attachment; filename="transito.kml"`)
	if err := mapview.WriteKML(w, result.Query, result.Points); err != nil {
		logging.Errorw(r.Context(), "Failed to write KML", "error", err)
	}
}

func (h *Handler) handleListSaved(w http.ResponseWriter, r *http.Request) {
	saved, err := h.svc.ListSaved(r.Context())
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, saved)
}

func (h *Handler) handleToggleSaved(w http.ResponseWriter, r *http.Request) {
	var req ToggleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body", err)
		return
	}

	saved, added, err := h.svc.ToggleSaved(r.Context(), req.Query, telemetry.TransportType(req.Type))
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, ToggleResponse{Saved: saved, Added: added})
}

func (h *Handler) handleDeleteSaved(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.DeleteSaved(r.Context(), r.PathValue("id")); err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleRunSaved(w http.ResponseWriter, r *http.Request) {
	// The body is optional; an empty one means no location.
	var req SearchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, "invalid JSON body", err)
		return
	}

	result, err := h.svc.RunSaved(r.Context(), r.PathValue("id"), req.location())
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	status := h.svc.Health(r.Context())
	code := http.StatusOK
	if !status.Healthy {
		code = http.StatusServiceUnavailable
	}
	writeJSON(w, code, status)
}

// writeServiceError maps service and upstream errors to a status code and the
// message shown to the user.
func (h *Handler) writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, services.ErrEmptyQuery),
		errors.Is(err, services.ErrInvalidType),
		errors.Is(err, store.ErrEmptyQuery):
		writeError(w, http.StatusBadRequest, err.Error(), nil)
	case errors.Is(err, services.ErrResultNotFound),
		errors.Is(err, store.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error(), nil)
	case errors.Is(err, services.ErrNoStore):
		writeError(w, http.StatusServiceUnavailable, err.Error(), nil)
	default:
		logging.Errorw(r.Context(), "Request failed", "path", r.URL.Path, "error", err)
		writeJSON(w, search.HTTPStatus(err), ErrorResponse{
			Error:   err.Error(),
			Message: search.UserMessage(err),
		})
	}
}

func writeError(w http.ResponseWriter, status int, msg string, err error) {
	resp := ErrorResponse{Error: msg, Message: msg}
	if err != nil {
		resp.Error = fmt.Sprintf("%s: %v", msg, err)
	}
	writeJSON(w, status, resp)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
