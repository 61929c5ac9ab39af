package apihttp

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"vodstream/internal/domain"
	domainports "vodstream/internal/domain/ports"
	"vodstream/internal/usecase"
)

type CreateVideoUseCase interface {
	Execute(ctx context.Context, input usecase.CreateVideoInput) (domain.VideoRecord, error)
}

type UpdateVideoUseCase interface {
	Execute(ctx context.Context, id domain.VideoID, input usecase.UpdateVideoInput) (domain.VideoRecord, error)
}

type DeleteVideoUseCase interface {
	Execute(ctx context.Context, id domain.VideoID) error
}

type ReprocessVideoUseCase interface {
	Execute(ctx context.Context, id domain.VideoID) (bool, error)
}

type Server struct {
	createVideo    CreateVideoUseCase
	updateVideo    UpdateVideoUseCase
	deleteVideo    DeleteVideoUseCase
	reprocess      ReprocessVideoUseCase
	repo           domainports.VideoRepository
	locator        domainports.SourceLocator
	queue          domainports.JobQueue
	allowedOrigins []string
	logger         *slog.Logger
	handler        http.Handler
	wsHub          *wsHub
}

type ServerOption func(*Server)

func WithCreateVideo(uc CreateVideoUseCase) ServerOption {
	return func(s *Server) {
		s.createVideo = uc
	}
}

func WithUpdateVideo(uc UpdateVideoUseCase) ServerOption {
	return func(s *Server) {
		s.updateVideo = uc
	}
}

func WithDeleteVideo(uc DeleteVideoUseCase) ServerOption {
	return func(s *Server) {
		s.deleteVideo = uc
	}
}

func WithReprocessVideo(uc ReprocessVideoUseCase) ServerOption {
	return func(s *Server) {
		s.reprocess = uc
	}
}

func WithQueue(queue domainports.JobQueue) ServerOption {
	return func(s *Server) {
		s.queue = queue
	}
}

// WithAllowedOrigins configures the CORS allowed origins whitelist.
// When empty (default), any origin is permitted (development mode).
func WithAllowedOrigins(origins []string) ServerOption {
	return func(s *Server) {
		s.allowedOrigins = origins
	}
}

func WithLogger(logger *slog.Logger) ServerOption {
	return func(s *Server) {
		s.logger = logger
	}
}

func NewServer(repo domainports.VideoRepository, locator domainports.SourceLocator, opts ...ServerOption) *Server {
	s := &Server{
		repo:    repo,
		locator: locator,
	}
	for _, opt := range opts {
		opt(s)
	}

	if s.logger == nil {
		s.logger = slog.Default()
	}

	s.wsHub = newWSHub(s.logger)
	go s.wsHub.run()

	mux := http.NewServeMux()
	mux.HandleFunc("/videos", s.handleVideos)
	mux.HandleFunc("/videos/", s.handleVideoByID)
	mux.HandleFunc("/video/", s.handleStream)
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/healthz", s.handleHealth)
	mux.HandleFunc("/ws", s.handleWS)

	traced := otelhttp.NewHandler(loggingMiddleware(s.logger, mux), "vodstream",
		otelhttp.WithFilter(func(r *http.Request) bool {
			p := r.URL.Path
			return p != "/metrics" && p != "/healthz"
		}),
	)
	s.handler = recoveryMiddleware(s.logger, rateLimitMiddleware(100, 200, metricsMiddleware(corsMiddleware(s.allowedOrigins, traced))))
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.handler.ServeHTTP(w, r)
}

// Close shuts down the WebSocket hub, disconnecting all clients.
func (s *Server) Close() {
	if s.wsHub != nil {
		s.wsHub.Close()
	}
}

// NotifyVideo pushes a record status change to all connected WebSocket
// clients. The server feeds it from the worker's Redis event stream.
func (s *Server) NotifyVideo(record domain.VideoRecord) {
	if s.wsHub == nil {
		return
	}
	s.wsHub.Broadcast("video", newVideoSummary(record))
}

// BroadcastVideos pushes the current catalog to all connected WebSocket
// clients. The server calls this on a timer so dashboards stay current even
// when the worker publishes status changes from a separate process.
func (s *Server) BroadcastVideos(ctx context.Context) {
	if s.wsHub == nil {
		return
	}
	records, err := s.repo.List(ctx, domain.VideoFilter{})
	if err != nil {
		s.logger.Warn("ws catalog broadcast failed", slog.String("error", err.Error()))
		return
	}
	summaries := make([]videoSummary, 0, len(records))
	for _, record := range records {
		summaries = append(summaries, newVideoSummary(record))
	}
	s.wsHub.Broadcast("videos", summaries)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	status := map[string]string{"status": "ok"}
	if s.queue != nil {
		if _, err := s.queue.Depth(r.Context()); err != nil {
			status["queue"] = "unreachable"
		}
	}
	writeJSON(w, http.StatusOK, status)
}

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := wsUpgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Error("ws upgrade failed", slog.String("error", err.Error()))
		return
	}
	client := &wsClient{
		hub:  s.wsHub,
		conn: conn,
		send: make(chan []byte, 256),
	}
	s.wsHub.register <- client
	go client.writePump()
	go client.readPump()
}

// pathSegments splits a trimmed URL path into its slash-separated parts.
func pathSegments(path, prefix string) []string {
	rest := strings.Trim(strings.TrimPrefix(path, prefix), "/")
	if rest == "" {
		return nil
	}
	return strings.Split(rest, "/")
}
