package orchestrator

import (
	"log/slog"
	"net/http"
	"sync"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"

	"github.com/trailwise-ai/trailwise/internal/api"
	"github.com/trailwise-ai/trailwise/internal/types"
)

// Handler exposes the concierge over HTTP.
type Handler struct {
	service  *Service
	logger   *slog.Logger
	sessions *sessionRegistry
}

// NewHandler creates the chat handler with a fresh session registry.
func NewHandler(service *Service, logger *slog.Logger) *Handler {
	return &Handler{
		service:  service,
		logger:   logger,
		sessions: newSessionRegistry(),
	}
}

// chatRequest is the POST /chat body. SessionID empty starts a new session.
type chatRequest struct {
	SessionID string `json:"session_id,omitempty"`
	Query     string `json:"query"`
}

type chatResponse struct {
	SessionID string             `json:"session_id"`
	Response  types.ChatResponse `json:"response"`
	ParkCode  string             `json:"park_code,omitempty"`
}

// Chat handles one concierge turn.
func (h *Handler) Chat(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("Chat").Start(r.Context(), "Chat", trace.WithAttributes(
		semconv.HTTPRequestMethodKey.String(r.Method),
		semconv.HTTPRouteKey.String("/chat"),
	))
	defer span.End()

	l := h.logger.With(slog.String("handler", "Chat"))

	var req chatRequest
	if err := api.DecodeJSONBody(w, r, &req); err != nil {
		l.WarnContext(ctx, "invalid chat request", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Query == "" {
		api.ErrorResponse(w, r, http.StatusBadRequest, "query is required")
		return
	}

	session, sessionID := h.sessions.resolve(req.SessionID)
	span.SetAttributes(semconv.EnduserIDKey.String(sessionID.String()))

	result := h.service.HandleQuery(ctx, types.QueryRequest{
		UserQuery:      req.Query,
		SessionContext: session,
	})
	h.sessions.put(sessionID, result.UpdatedContext)

	api.WriteJSONResponse(w, r, http.StatusOK, chatResponse{
		SessionID: sessionID.String(),
		Response:  result.ChatResponse,
		ParkCode:  result.UpdatedContext.ParkCode,
	})
}

// sessionRegistry keeps per-session context in memory. Turns on the same
// session must not interleave; the registry only guards the map itself.
type sessionRegistry struct {
	mu       sync.Mutex
	sessions map[uuid.UUID]types.SessionContext
}

func newSessionRegistry() *sessionRegistry {
	return &sessionRegistry{sessions: map[uuid.UUID]types.SessionContext{}}
}

// resolve returns the stored context for the id, or a fresh session when the
// id is empty or unknown.
func (r *sessionRegistry) resolve(id string) (types.SessionContext, uuid.UUID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if parsed, err := uuid.Parse(id); err == nil {
		if session, ok := r.sessions[parsed]; ok {
			return session, parsed
		}
	}
	fresh := uuid.New()
	session := types.SessionContext{SessionID: fresh, Preferences: types.DefaultPreferences()}
	r.sessions[fresh] = session
	return session, fresh
}

func (r *sessionRegistry) put(id uuid.UUID, session types.SessionContext) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[id] = session
}
