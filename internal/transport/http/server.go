package http

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	channelDomain "github.com/reshetovitsme/tgweb2rss/internal/modules/channel/domain"
	channelService "github.com/reshetovitsme/tgweb2rss/internal/modules/channel/service"
	feedService "github.com/reshetovitsme/tgweb2rss/internal/modules/feed/service"
	messageDomain "github.com/reshetovitsme/tgweb2rss/internal/modules/message/domain"
	"github.com/reshetovitsme/tgweb2rss/internal/shared/config"
	"github.com/reshetovitsme/tgweb2rss/internal/shared/errors"
	"github.com/samber/lo"
	sloghttp "github.com/samber/slog-http"
)

// Server handles HTTP requests for RSS feeds
type Server struct {
	cfg            *config.Config
	channelService *channelService.Service
	feedService    *feedService.Service
	logger         *slog.Logger
	server         *http.Server
}

// New creates a new HTTP server
func New(cfg *config.Config, channelService *channelService.Service, feedService *feedService.Service) *Server {
	return &Server{
		cfg:            cfg,
		channelService: channelService,
		feedService:    feedService,
		logger:         slog.Default(),
	}
}

// SetLogger sets the logger
func (s *Server) SetLogger(logger *slog.Logger) {
	s.logger = logger
}

// Handler returns the routes wrapped in the logging and recovery middleware
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	// RSS feed endpoint
	mux.HandleFunc("GET /rss/{channelID}", s.handleRSSFeed)

	// Scraped messages as JSON
	mux.HandleFunc("GET /api/channels/{channelID}/messages", s.handleMessages)

	// Health check endpoint
	mux.HandleFunc("GET /health", s.handleHealth)

	// Root endpoint with instructions
	mux.HandleFunc("GET /{$}", s.handleRoot)

	handler := sloghttp.Recovery(mux)
	return sloghttp.New(s.logger)(handler)
}

// Start starts the HTTP server. It returns http.ErrServerClosed after
// Shutdown.
func (s *Server) Start() error {
	addr := fmt.Sprintf(":%s", s.cfg.HTTPPort)
	s.logger.Info("RSS server starting", "addr", addr)

	s.server = &http.Server{
		Addr:         addr,
		Handler:      s.Handler(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: s.cfg.Timeout()*time.Duration(s.cfg.MaxPages) + 15*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return s.server.ListenAndServe()
}

// Shutdown stops the server started by Start
func (s *Server) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

// request holds the parsed parameters shared by the channel endpoints
type request struct {
	session *channelService.Session
	pages   int
}

func (s *Server) parseRequest(r *http.Request) (request, error) {
	session, err := s.channelService.Open(r.PathValue("channelID"))
	if err != nil {
		return request{}, err
	}

	pages := 0
	if raw := r.URL.Query().Get("pages"); raw != "" {
		if pages, err = strconv.Atoi(raw); err != nil {
			return request{}, fmt.Errorf("pages %q: %w", raw, errors.ErrInvalidPages)
		}
	}
	if pages, err = s.channelService.ClampPages(pages); err != nil {
		return request{}, err
	}

	return request{session: session, pages: pages}, nil
}

func (s *Server) handleRSSFeed(w http.ResponseWriter, r *http.Request) {
	req, err := s.parseRequest(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	pretty, _ := strconv.ParseBool(r.URL.Query().Get("pretty"))

	rss, err := s.feedService.FetchFeed(r.Context(), req.session, req.pages, pretty)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "application/rss+xml; charset=utf-8")
	w.Header().Set("Cache-Control", "public, max-age=300") // Cache for 5 minutes
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(rss))
}

type messagesResponse struct {
	Channel  channelDomain.Info      `json:"channel"`
	URL      string                  `json:"url"`
	RSS      string                  `json:"rss"`
	Messages []messageDomain.Message `json:"messages"`
}

func (s *Server) handleMessages(w http.ResponseWriter, r *http.Request) {
	req, err := s.parseRequest(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	messages, err := req.session.FetchPage(r.Context(), req.pages)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.writeJSON(w, http.StatusOK, messagesResponse{
		Channel:  req.session.Info(),
		URL:      req.session.URL(),
		RSS:      FeedURL(s.publicURL(r), req.session.ChannelID()),
		Messages: lo.Ternary(messages == nil, []messageDomain.Message{}, messages),
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ok"}`))
}

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	html := `<!DOCTYPE html>
<html>
<head>
    <title>Telegram to RSS</title>
    <style>
        body { font-family: Arial, sans-serif; max-width: 800px; margin: 50px auto; padding: 20px; }
        h1 { color: #333; }
        .info { background: #f5f5f5; padding: 15px; border-radius: 5px; margin: 20px 0; }
        code { background: #e8e8e8; padding: 2px 6px; border-radius: 3px; }
    </style>
</head>
<body>
    <h1>Telegram to RSS</h1>
    <div class="info">
        <p>This service turns the public web preview of a Telegram channel into an RSS feed.</p>
        <p>To access a feed, use: <code>/rss/{channel}?pages=1&amp;pretty=true</code></p>
        <p>Example: <code>/rss/telegram</code></p>
        <p>Messages as JSON: <code>/api/channels/{channel}/messages?pages=1</code></p>
    </div>
    <p><a href="/health">Health Check</a></p>
</body>
</html>`
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(html))
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusOf(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error("Error generating feed", "path", r.URL.Path, "error", err)
	} else {
		s.logger.Debug("Rejected request", "path", r.URL.Path, "error", err)
	}
	s.writeJSON(w, status, errorResponse{Error: http.StatusText(status) + ": " + rootCause(err).Error()})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		s.logger.Error("Error writing response", "error", err)
	}
}

func statusOf(err error) int {
	switch {
	case stderrors.Is(err, errors.ErrInvalidChannel), stderrors.Is(err, errors.ErrInvalidPages):
		return http.StatusBadRequest
	case stderrors.Is(err, errors.ErrUnexpectedStatus), stderrors.Is(err, errors.ErrMalformedPage):
		return http.StatusBadGateway
	case stderrors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	}
	return http.StatusInternalServerError
}

// rootCause returns the sentinel a client can act upon, or err itself.
func rootCause(err error) error {
	for _, sentinel := range []error{errors.ErrInvalidChannel, errors.ErrInvalidPages, errors.ErrUnexpectedStatus, errors.ErrMalformedPage} {
		if stderrors.Is(err, sentinel) {
			return sentinel
		}
	}
	return stderrors.New("failed to generate feed")
}

func (s *Server) publicURL(r *http.Request) string {
	if s.cfg.PublicURL != "" {
		return s.cfg.PublicURL
	}
	return fmt.Sprintf("%s://%s", getScheme(r), r.Host)
}

// FeedURL returns the address of the RSS feed of channelID served under
// publicURL.
func FeedURL(publicURL, channelID string) string {
	return strings.TrimSuffix(publicURL, "/") + "/rss/" + channelID
}

func getScheme(r *http.Request) string {
	if r.TLS != nil {
		return "https"
	}
	if scheme := r.Header.Get("X-Forwarded-Proto"); scheme != "" {
		return scheme
	}
	return "http"
}
