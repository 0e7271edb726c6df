// Package server exposes the feature registry over HTTP. It serves pages with
// the requested features injected, the catalog as JSON, and reload events as
// server-sent events.
package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/zjrosen/mirrorkit/internal/application/features"
	"github.com/zjrosen/mirrorkit/internal/config"
	"github.com/zjrosen/mirrorkit/internal/document/htmldoc"
	"github.com/zjrosen/mirrorkit/internal/domain/feature"
	"github.com/zjrosen/mirrorkit/internal/log"
	"github.com/zjrosen/mirrorkit/internal/presentation"
	"github.com/zjrosen/mirrorkit/internal/pubsub"
	"github.com/zjrosen/mirrorkit/internal/templates"
	"github.com/zjrosen/mirrorkit/internal/tracing"
)

// DocumentHeader carries the id of the page a response rendered.
const DocumentHeader = "X-Mirrorkit-Document"

// Handler provides the HTTP endpoints.
type Handler struct {
	service *features.Service
	editor  config.EditorConfig
	tracer  trace.Tracer
}

// HandlerConfig configures the handler.
type HandlerConfig struct {
	// Service owns the registry (required).
	Service *features.Service
	// Editor lists the features every page gets.
	Editor config.EditorConfig
	// Tracer wraps every route in a server span; nil disables tracing.
	Tracer trace.Tracer
}

// NewHandler creates a handler.
func NewHandler(cfg HandlerConfig) *Handler {
	tracer := cfg.Tracer
	if tracer == nil {
		tracer = noop.NewTracerProvider().Tracer("")
	}
	return &Handler{service: cfg.Service, editor: cfg.Editor, tracer: tracer}
}

// Routes returns an http.Handler with all routes registered.
func (h *Handler) Routes() http.Handler {
	mux := http.NewServeMux()
	route := func(pattern string, fn http.HandlerFunc) {
		mux.Handle(pattern, tracing.Middleware(h.tracer, pattern, fn))
	}

	route("GET /{$}", h.Page)
	route("GET /features", h.ListFeatures)
	route("GET /features/{name}", h.GetFeature)
	route("GET /events", h.StreamEvents)
	route("GET /logs", h.StreamLogs)
	route("GET /health", h.Health)
	return mux
}

// ErrorResponse is the body of every error reply.
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code"`
	Details string `json:"details,omitempty"`
}

// FeatureResponse is a feature with its resolved load order.
type FeatureResponse struct {
	presentation.FeatureDTO
	LoadOrder []string `json:"load_order"`
}

// HealthResponse reports server status.
type HealthResponse struct {
	Status   string `json:"status"`
	Features int    `json:"features"`
}

// Page renders an editor page configured from the editor settings, with the
// editor features and every ?feature= value injected into its head. ?content=
// replaces the sample text.
// GET /
func (h *Handler) Page(w http.ResponseWriter, r *http.Request) {
	names, err := h.service.EditorFeatures(h.editor)
	if err != nil {
		h.writeError(w, http.StatusInternalServerError, "editor_config", "Invalid editor configuration", err.Error())
		return
	}
	names = append(names, r.URL.Query()["feature"]...)

	docID := tracing.RequestIDFromContext(r.Context())
	if docID == "" {
		docID = uuid.NewString()
	}

	trace.SpanFromContext(r.Context()).SetAttributes(attribute.String(tracing.AttrDocumentID, docID))

	doc, err := h.editorPage(r.URL.Query().Get("content"))
	if err != nil {
		h.writeError(w, http.StatusInternalServerError, "render_failed", "Failed to render page", err.Error())
		return
	}
	activation, err := h.service.Activate(r.Context(), h.service.NewInjector(doc), names...)
	if err != nil {
		if errors.Is(err, feature.ErrUnknownFeature) {
			h.writeError(w, http.StatusNotFound, "unknown_feature", "Unknown feature", err.Error())
			return
		}
		h.writeError(w, http.StatusInternalServerError, "injection_failed", "Injection failed", err.Error())
		return
	}

	log.Debug(log.CatHTTP, "Rendered page", "document", docID, "injected", len(activation.Injected))
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set(DocumentHeader, docID)
	w.WriteHeader(http.StatusOK)
	if err := doc.Render(w); err != nil {
		log.ErrorErr(log.CatHTTP, "Failed to render page", err, "document", docID)
	}
}

// editorPage builds the page activation injects into.
func (h *Handler) editorPage(content string) (*htmldoc.Document, error) {
	opts, err := h.editor.Options()
	if err != nil {
		return nil, err
	}
	if content == "" {
		content = templates.DefaultContent
	}

	var buf bytes.Buffer
	if err := templates.RenderEditor(&buf, templates.EditorPage{Content: content, Options: opts.Config()}); err != nil {
		return nil, fmt.Errorf("rendering editor page: %w", err)
	}
	doc, err := htmldoc.Parse(&buf)
	if err != nil {
		return nil, err
	}
	doc.SetTitle("mirrorkit")
	return doc, nil
}

// ListFeatures returns the catalog, optionally filtered by ?category=.
// GET /features
func (h *Handler) ListFeatures(w http.ResponseWriter, r *http.Request) {
	list := h.service.List()
	if c := r.URL.Query().Get("category"); c != "" {
		category, err := feature.ParseCategory(c)
		if err != nil {
			h.writeError(w, http.StatusBadRequest, "invalid_category", "Invalid category", err.Error())
			return
		}
		list = h.service.ByCategory(category)
	}
	h.writeJSON(w, http.StatusOK, presentation.FromFeatures(list))
}

// GetFeature returns one feature and its load order.
// GET /features/{name}
func (h *Handler) GetFeature(w http.ResponseWriter, r *http.Request) {
	f, err := h.service.Lookup(r.PathValue("name"))
	if err != nil {
		h.writeError(w, http.StatusNotFound, "unknown_feature", "Unknown feature", err.Error())
		return
	}
	h.writeJSON(w, http.StatusOK, FeatureResponse{
		FeatureDTO: presentation.FromFeature(f),
		LoadOrder:  feature.Names(f.Resolve()),
	})
}

// StreamEvents streams catalog reloads as server-sent events. A client
// reconnecting with Last-Event-ID first receives the latest reload it missed.
// GET /events
func (h *Handler) StreamEvents(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	last := r.Header.Get("Last-Event-ID")
	if last == "" {
		h.streamEvents(w, r, h.service.Subscribe(ctx))
		return
	}
	seq, err := strconv.ParseUint(last, 10, 64)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid_event_id", "Invalid Last-Event-ID", err.Error())
		return
	}
	h.streamEvents(w, r, h.service.SubscribeSince(ctx, seq))
}

// Health reports the number of registered features.
// GET /health
func (h *Handler) Health(w http.ResponseWriter, _ *http.Request) {
	h.writeJSON(w, http.StatusOK, HealthResponse{Status: "ok", Features: h.service.Registry().Len()})
}

func (h *Handler) streamEvents(w http.ResponseWriter, r *http.Request, events <-chan pubsub.Event[features.ReloadEvent]) {
	err := stream(w, r, events, func(event pubsub.Event[features.ReloadEvent]) ([]byte, error) {
		return json.Marshal(eventToJSON(event))
	})
	if err != nil {
		h.writeError(w, http.StatusInternalServerError, "streaming_unsupported", "Streaming not supported", "")
	}
}

// StreamLogs streams log entries as server-sent events while logging is on.
// GET /logs
func (h *Handler) StreamLogs(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	entries := log.Subscribe(ctx)
	if entries == nil {
		h.writeError(w, http.StatusNotFound, "logging_disabled", "Logging is not enabled", "")
		return
	}
	err := stream(w, r, entries, func(event pubsub.Event[string]) ([]byte, error) {
		return json.Marshal(map[string]any{"entry": strings.TrimSuffix(event.Payload, "\n")})
	})
	if err != nil {
		h.writeError(w, http.StatusInternalServerError, "streaming_unsupported", "Streaming not supported", "")
	}
}

// stream writes events as SSE until the request ends or events closes. It
// fails before writing anything when w cannot flush.
func stream[T any](w http.ResponseWriter, r *http.Request, events <-chan pubsub.Event[T], data func(pubsub.Event[T]) ([]byte, error)) error {
	flusher, ok := w.(http.Flusher)
	if !ok {
		return errors.New("response writer cannot flush")
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")

	_, _ = fmt.Fprintf(w, "event: connected\ndata: {}\n\n")
	flusher.Flush()

	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	ctx := r.Context()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			_, _ = fmt.Fprintf(w, ": heartbeat\n\n")
			flusher.Flush()
		case event, ok := <-events:
			if !ok {
				return nil
			}
			payload, err := data(event)
			if err != nil {
				log.ErrorErr(log.CatHTTP, "Failed to marshal event", err)
				continue
			}
			_, _ = fmt.Fprintf(w, "id: %d\nevent: %s\ndata: %s\n\n", event.Seq, event.Type, payload)
			flusher.Flush()
		}
	}
}

func eventToJSON(event pubsub.Event[features.ReloadEvent]) map[string]any {
	result := map[string]any{
		"type":        string(event.Type),
		"features":    event.Payload.Features,
		"duration_ms": event.Payload.Duration.Milliseconds(),
		"timestamp":   event.Timestamp,
	}
	if event.Payload.Err != nil {
		result["error"] = event.Payload.Err.Error()
	}
	return result
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.ErrorErr(log.CatHTTP, "Failed to encode JSON response", err)
	}
}

func (h *Handler) writeError(w http.ResponseWriter, status int, code, message, details string) {
	h.writeJSON(w, status, ErrorResponse{
		Error:   message,
		Code:    code,
		Details: details,
	})
}

// Server wraps the Handler with an http.Server for lifecycle management.
type Server struct {
	server   *http.Server
	listener net.Listener
	port     int
}

// ServerConfig configures the server.
type ServerConfig struct {
	HandlerConfig
	// Addr is the address to listen on, e.g. "127.0.0.1:8088". Port 0 picks
	// a free port.
	Addr        string
	ReadTimeout time.Duration
}

// NewServer binds the listener so Port is known before Start.
func NewServer(cfg ServerConfig) (*Server, error) {
	readTimeout := cfg.ReadTimeout
	if readTimeout == 0 {
		readTimeout = 30 * time.Second
	}

	listener, err := net.Listen("tcp", cfg.Addr)
	if err != nil {
		return nil, fmt.Errorf("failed to listen on %s: %w", cfg.Addr, err)
	}
	port := 0
	if tcpAddr, ok := listener.Addr().(*net.TCPAddr); ok {
		port = tcpAddr.Port
	}

	return &Server{
		port:     port,
		listener: listener,
		server: &http.Server{
			Handler:           NewHandler(cfg.HandlerConfig).Routes(),
			ReadTimeout:       readTimeout,
			ReadHeaderTimeout: 10 * time.Second,
			// No write timeout: /events streams.
		},
	}, nil
}

// Start serves until Stop. It returns http.ErrServerClosed after Stop.
func (s *Server) Start() error {
	log.Info(log.CatHTTP, "Starting server", "addr", s.listener.Addr().String())
	return s.server.Serve(s.listener)
}

// Stop gracefully shuts down the server.
func (s *Server) Stop(ctx context.Context) error {
	log.Info(log.CatHTTP, "Stopping server")
	return s.server.Shutdown(ctx)
}

// Port returns the bound port.
func (s *Server) Port() int {
	return s.port
}

// Addr returns the bound address.
func (s *Server) Addr() string {
	return s.listener.Addr().String()
}
