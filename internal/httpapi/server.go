package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/ent0n29/neuromod/internal/config"
	"github.com/ent0n29/neuromod/internal/lifecycle"
	"github.com/ent0n29/neuromod/internal/observability"
	"github.com/ent0n29/neuromod/internal/protocol"
	"github.com/ent0n29/neuromod/internal/reliability"
	"github.com/ent0n29/neuromod/internal/tools"
)

// OwnerHeader scopes a request to a session owner.
const OwnerHeader = "X-Owner-ID"

const maxArgumentBytes = 1 << 20

type Server struct {
	cfg       config.Config
	catalog   *tools.Catalog
	sessions  *lifecycle.Service
	storeMode string
	metrics   *observability.Metrics
	logger    *zap.Logger
	upgrader  websocket.Upgrader
}

func New(cfg config.Config, catalog *tools.Catalog, sessions *lifecycle.Service, storeMode string, metrics *observability.Metrics, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{
		cfg:       cfg,
		catalog:   catalog,
		sessions:  sessions,
		storeMode: storeMode,
		metrics:   metrics,
		logger:    logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			CheckOrigin: func(r *http.Request) bool {
				// Browsers may only connect from the same origin unless explicitly opened up.
				if cfg.AllowAnyOrigin {
					return true
				}
				origin := strings.TrimSpace(r.Header.Get("Origin"))
				if origin == "" {
					// Non-browser clients often omit Origin.
					return true
				}
				u, err := url.Parse(origin)
				if err != nil {
					return false
				}
				if u.Scheme != "http" && u.Scheme != "https" {
					return false
				}
				return strings.EqualFold(u.Host, r.Host)
			},
		},
	}
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Get("/healthz", s.handleHealth)
	r.Get("/readyz", s.handleReady)
	r.Handle("/metrics", s.metrics.Handler())

	r.Get("/v1/tools", s.handleListTools)
	r.Get("/v1/tools/ws", s.handleToolsWS)
	r.Post("/v1/tools/{name}", s.handleCallTool)
	r.Get("/v1/sessions/{id}", s.handleGetSession)
	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, map[string]any{"status": "ok"})
}

func (s *Server) handleReady(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, map[string]any{
		"status":     "ready",
		"store_mode": s.storeMode,
	})
}

func (s *Server) handleListTools(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, map[string]any{"tools": s.catalog.List()})
}

func (s *Server) handleCallTool(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	raw, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxArgumentBytes))
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid_arguments", err.Error())
		return
	}

	result, err := s.catalog.Invoke(s.ownerContext(r), name, raw)
	if err != nil {
		status, code := classifyToolError(err)
		if status >= http.StatusInternalServerError && reliability.IsRetryable(err) {
			status = http.StatusServiceUnavailable
			w.Header().Set("Retry-After", "1")
		}
		respondError(w, status, code, err.Error())
		return
	}
	respondJSON(w, http.StatusOK, result)
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimSpace(chi.URLParam(r, "id"))
	summary, err := s.sessions.Lookup(r.Context(), id)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "store_failed", err.Error())
		return
	}
	if summary == nil {
		respondError(w, http.StatusNotFound, "session_not_found", "no session with id "+id)
		return
	}
	respondJSON(w, http.StatusOK, summary)
}

func (s *Server) handleToolsWS(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithCancel(s.ownerContext(r))
	defer cancel()

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()
	s.metrics.SessionEvent("ws_connected")

	outbound := make(chan any, 64)
	writerDone := make(chan struct{})
	go func() {
		defer close(writerDone)
		for {
			select {
			case <-ctx.Done():
				return
			case msg := <-outbound:
				_ = conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
				if err := conn.WriteJSON(msg); err != nil {
					s.logger.Debug("websocket write failed", zap.Error(err))
					cancel()
					_ = conn.Close()
					return
				}
			}
		}
	}()

	send := func(msg any) bool {
		select {
		case <-ctx.Done():
			return false
		case outbound <- msg:
			return true
		}
	}
	send(protocol.SystemEvent{Type: protocol.TypeSystemEvent, Code: "ready", Detail: s.storeMode})

	conn.SetReadLimit(maxArgumentBytes)
	_ = conn.SetReadDeadline(time.Now().Add(120 * time.Second))
	conn.SetPongHandler(func(string) error {
		_ = conn.SetReadDeadline(time.Now().Add(120 * time.Second))
		return nil
	})

	for {
		msgType, data, err := conn.ReadMessage()
		if err != nil {
			break
		}
		if msgType != websocket.TextMessage {
			continue
		}
		_ = conn.SetReadDeadline(time.Now().Add(120 * time.Second))

		if !send(s.handleFrame(ctx, data)) {
			break
		}
	}

	cancel()
	<-writerDone
	s.metrics.SessionEvent("ws_disconnected")
}

// handleFrame answers one client frame with the message to send back.
func (s *Server) handleFrame(ctx context.Context, data []byte) any {
	parsed, err := protocol.ParseClientMessage(data)
	if err != nil {
		return protocol.NewErrorEvent("", "invalid_client_message", err.Error(), false)
	}
	switch msg := parsed.(type) {
	case protocol.Ping:
		return protocol.Pong{Type: protocol.TypePong, CallID: msg.CallID}
	case protocol.ToolCall:
		result, err := s.catalog.Invoke(ctx, msg.Name, msg.Arguments)
		if err != nil {
			_, code := classifyToolError(err)
			return protocol.NewErrorEvent(msg.CallID, code, err.Error(), reliability.IsRetryable(err))
		}
		return protocol.NewToolResult(msg.CallID, msg.Name, result)
	default:
		return protocol.NewErrorEvent("", "invalid_client_message", "unhandled message", false)
	}
}

// ownerContext scopes r to the owner named by the header or owner_id query
// parameter, which browsers use for websockets.
func (s *Server) ownerContext(r *http.Request) context.Context {
	owner := r.Header.Get(OwnerHeader)
	if strings.TrimSpace(owner) == "" {
		owner = r.URL.Query().Get("owner_id")
	}
	return lifecycle.WithOwner(r.Context(), owner)
}

func classifyToolError(err error) (int, string) {
	switch {
	case errors.Is(err, tools.ErrUnknownTool):
		return http.StatusNotFound, "unknown_tool"
	case errors.Is(err, tools.ErrInvalidArguments), errors.Is(err, lifecycle.ErrInvalidDose), errors.Is(err, lifecycle.ErrDoseRequired):
		return http.StatusBadRequest, "invalid_arguments"
	default:
		return http.StatusInternalServerError, "tool_failed"
	}
}

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func respondError(w http.ResponseWriter, status int, code, message string) {
	respondJSON(w, status, errorResponse{Error: message, Code: code})
}
