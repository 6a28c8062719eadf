package explorer

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"

	"github.com/trailwise-ai/trailwise/internal/api"
	"github.com/trailwise-ai/trailwise/internal/api/constraints"
	"github.com/trailwise-ai/trailwise/internal/api/datastore"
	"github.com/trailwise-ai/trailwise/internal/api/fetcher"
	"github.com/trailwise-ai/trailwise/internal/api/orchestrator"
	"github.com/trailwise-ai/trailwise/internal/types"
)

// Handler exposes the explorer read API and the pipeline ops endpoint.
type Handler struct {
	service *Service
	logger  *slog.Logger
}

func NewHandler(service *Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// parkCode resolves the {code} route param to a canonical park code. A
// false return means the response has already been written.
func (h *Handler) parkCode(w http.ResponseWriter, r *http.Request) (string, bool) {
	raw := chi.URLParam(r, "code")
	code := orchestrator.NormalizeParkCode(raw)
	if code == "" {
		api.ErrorResponse(w, r, http.StatusNotFound, "unknown park: "+raw)
		return "", false
	}
	return code, true
}

func (h *Handler) span(r *http.Request, name, route string) (trace.Span, *http.Request) {
	ctx, span := otel.Tracer("Explorer").Start(r.Context(), name, trace.WithAttributes(
		semconv.HTTPRequestMethodKey.String(r.Method),
		semconv.HTTPRouteKey.String(route),
	))
	return span, r.WithContext(ctx)
}

// ListParks handles GET /parks.
func (h *Handler) ListParks(w http.ResponseWriter, r *http.Request) {
	span, r := h.span(r, "ListParks", "/parks")
	defer span.End()

	api.WriteJSONResponse(w, r, http.StatusOK, h.service.ListParks())
}

// GetPark handles GET /parks/{code}.
func (h *Handler) GetPark(w http.ResponseWriter, r *http.Request) {
	span, r := h.span(r, "GetPark", "/parks/{code}")
	defer span.End()

	code, ok := h.parkCode(w, r)
	if !ok {
		return
	}
	park, err := h.service.GetPark(code)
	if err != nil {
		if errors.Is(err, datastore.ErrMiss) {
			api.ErrorResponse(w, r, http.StatusNotFound, "park data not loaded for "+code)
			return
		}
		h.logger.ErrorContext(r.Context(), "park load failed", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusInternalServerError, "failed to load park")
		return
	}
	api.WriteJSONResponse(w, r, http.StatusOK, park)
}

// GetTrails handles GET /parks/{code}/trails. Query params difficulty,
// min_rating and max_miles narrow the result with the same rules the
// concierge applies.
func (h *Handler) GetTrails(w http.ResponseWriter, r *http.Request) {
	span, r := h.span(r, "GetTrails", "/parks/{code}/trails")
	defer span.End()

	code, ok := h.parkCode(w, r)
	if !ok {
		return
	}
	trails, err := h.service.GetTrails(code)
	if err != nil {
		if errors.Is(err, datastore.ErrMiss) {
			api.ErrorResponse(w, r, http.StatusNotFound, "trail data not loaded for "+code)
			return
		}
		h.logger.ErrorContext(r.Context(), "trail load failed", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusInternalServerError, "failed to load trails")
		return
	}

	if prefs, filtered := trailPrefsFromQuery(r); filtered {
		trails = constraints.FilterTrails(trails, prefs)
	}
	api.WriteJSONResponse(w, r, http.StatusOK, trails)
}

// trailPrefsFromQuery maps the filter query params onto preferences. The
// second return reports whether any filter was requested at all.
func trailPrefsFromQuery(r *http.Request) (types.UserPreference, bool) {
	q := r.URL.Query()
	prefs := types.UserPreference{
		MaxDifficulty:  types.PrefDifficultyHard,
		MaxLengthMiles: 1000,
	}
	filtered := false
	if v := q.Get("difficulty"); v != "" {
		prefs.MaxDifficulty = v
		filtered = true
	}
	if v := q.Get("min_rating"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			prefs.MinRating = f
			filtered = true
		}
	}
	if v := q.Get("max_miles"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			prefs.MaxLengthMiles = f
			filtered = true
		}
	}
	return prefs, filtered
}

// GetWeather handles GET /parks/{code}/weather.
func (h *Handler) GetWeather(w http.ResponseWriter, r *http.Request) {
	span, r := h.span(r, "GetWeather", "/parks/{code}/weather")
	defer span.End()

	code, ok := h.parkCode(w, r)
	if !ok {
		return
	}
	weather, err := h.service.GetWeather(r.Context(), code)
	if err != nil {
		if errors.Is(err, datastore.ErrMiss) {
			api.ErrorResponse(w, r, http.StatusNotFound, "park data not loaded for "+code)
			return
		}
		h.logger.ErrorContext(r.Context(), "weather load failed", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusInternalServerError, "failed to load weather")
		return
	}
	api.WriteJSONResponse(w, r, http.StatusOK, weather)
}

// GetAlerts handles GET /parks/{code}/alerts.
func (h *Handler) GetAlerts(w http.ResponseWriter, r *http.Request) {
	span, r := h.span(r, "GetAlerts", "/parks/{code}/alerts")
	defer span.End()

	code, ok := h.parkCode(w, r)
	if !ok {
		return
	}
	api.WriteJSONResponse(w, r, http.StatusOK, h.service.GetAlerts(r.Context(), code))
}

// GetEvents handles GET /parks/{code}/events.
func (h *Handler) GetEvents(w http.ResponseWriter, r *http.Request) {
	span, r := h.span(r, "GetEvents", "/parks/{code}/events")
	defer span.End()

	code, ok := h.parkCode(w, r)
	if !ok {
		return
	}
	api.WriteJSONResponse(w, r, http.StatusOK, h.service.GetEvents(r.Context(), code))
}

// GetAmenities handles GET /parks/{code}/amenities with an optional
// ?category= filter.
func (h *Handler) GetAmenities(w http.ResponseWriter, r *http.Request) {
	span, r := h.span(r, "GetAmenities", "/parks/{code}/amenities")
	defer span.End()

	code, ok := h.parkCode(w, r)
	if !ok {
		return
	}
	amenities, err := h.service.GetAmenities(code, r.URL.Query().Get("category"))
	if err != nil {
		if errors.Is(err, datastore.ErrMiss) {
			api.ErrorResponse(w, r, http.StatusNotFound, "amenity data not loaded for "+code)
			return
		}
		h.logger.ErrorContext(r.Context(), "amenity load failed", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusInternalServerError, "failed to load amenities")
		return
	}
	api.WriteJSONResponse(w, r, http.StatusOK, amenities)
}

// ensureRequest is the POST /parks/{code}/ensure body. Absent flags default
// to a full run.
type ensureRequest struct {
	Static       *bool `json:"static,omitempty"`
	Trails       *bool `json:"trails,omitempty"`
	Rankings     *bool `json:"rankings,omitempty"`
	PhotoSpots   *bool `json:"photo_spots,omitempty"`
	ScenicDrives *bool `json:"scenic_drives,omitempty"`
	Amenities    *bool `json:"amenities,omitempty"`
}

func (req ensureRequest) flags() fetcher.Flags {
	flags := fetcher.AllFlags()
	set := func(dst *bool, src *bool) {
		if src != nil {
			*dst = *src
		}
	}
	set(&flags.Static, req.Static)
	set(&flags.Trails, req.Trails)
	set(&flags.Rankings, req.Rankings)
	set(&flags.PhotoSpots, req.PhotoSpots)
	set(&flags.ScenicDrives, req.ScenicDrives)
	set(&flags.Amenities, req.Amenities)
	return flags
}

// Ensure handles POST /parks/{code}/ensure: it runs the acquisition
// pipeline synchronously and reports per-stage outcomes.
func (h *Handler) Ensure(w http.ResponseWriter, r *http.Request) {
	span, r := h.span(r, "Ensure", "/parks/{code}/ensure")
	defer span.End()

	code, ok := h.parkCode(w, r)
	if !ok {
		return
	}

	req := ensureRequest{}
	if r.ContentLength > 0 {
		if err := api.DecodeJSONBody(w, r, &req); err != nil {
			api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
			return
		}
	}

	h.logger.InfoContext(r.Context(), "pipeline run requested", slog.String("park", code))
	result := h.service.Ensure(r.Context(), code, req.flags())
	api.WriteJSONResponse(w, r, http.StatusOK, result)
}
