package gateway

import (
	"context"
	"crypto/subtle"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	gonanoid "github.com/matoous/go-nanoid/v2"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/arnvidr/lined/pkg/adapter"
	"github.com/arnvidr/lined/pkg/session"
)

// Request is one command frame from a client.
type Request struct {
	ID      string `json:"id"`
	Command string `json:"command"`
	// Payload carries streamed replacement lines for commands that would
	// otherwise read them from stdin.
	Payload string `json:"payload,omitempty"`
}

// Response is the outcome frame for a request.
type Response struct {
	ID     string `json:"id"`
	Code   int    `json:"code"`
	Output string `json:"output"`
	Error  string `json:"error,omitempty"`
}

// Config holds server configuration.
type Config struct {
	Host         string
	Port         int
	SharedSecret string
	// Session configures the per-connection editing sessions.
	Session session.Config
	// Adapter configures the per-connection command adapters.
	Adapter adapter.Config
}

// Server serves editing sessions over WebSocket.
type Server struct {
	cfg      Config
	server   *http.Server
	upgrader websocket.Upgrader
	logger   zerolog.Logger

	shutdownMu     sync.RWMutex
	isShuttingDown bool
	conns          sync.WaitGroup
}

// NewServer creates a new gateway server.
func NewServer(cfg Config) (*Server, error) {
	if cfg.Port <= 0 || cfg.Port > 65535 {
		return nil, fmt.Errorf("invalid port: %d", cfg.Port)
	}
	if cfg.SharedSecret == "" {
		return nil, fmt.Errorf("shared secret is required")
	}

	s := &Server{
		cfg: cfg,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
		},
		logger: log.With().Str("component", "gateway").Logger(),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.handleWebSocket)
	mux.HandleFunc("/healthz", s.handleHealth)

	s.server = &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	return s, nil
}

// Handler returns the HTTP handler, for tests that serve it directly.
func (s *Server) Handler() http.Handler {
	return s.server.Handler
}

// ListenAndServe runs the server until Shutdown. It returns nil after a
// clean shutdown.
func (s *Server) ListenAndServe() error {
	s.logger.Info().Str("addr", s.server.Addr).Msg("Gateway listening")
	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("gateway server failed: %w", err)
	}
	return nil
}

// Shutdown stops accepting connections and waits for in-flight ones.
func (s *Server) Shutdown(ctx context.Context) error {
	s.shutdownMu.Lock()
	s.isShuttingDown = true
	s.shutdownMu.Unlock()

	if err := s.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("gateway shutdown failed: %w", err)
	}

	done := make(chan struct{})
	go func() {
		s.conns.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	fmt.Fprintln(w, "ok")
}

// authorized checks the shared secret from the Authorization header or the
// "secret" query parameter, in constant time.
func (s *Server) authorized(r *http.Request) bool {
	secret := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
	if secret == "" || secret == r.Header.Get("Authorization") {
		secret = r.URL.Query().Get("secret")
	}
	return subtle.ConstantTimeCompare([]byte(secret), []byte(s.cfg.SharedSecret)) == 1
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	s.shutdownMu.RLock()
	if s.isShuttingDown {
		s.shutdownMu.RUnlock()
		http.Error(w, "Server is shutting down", http.StatusServiceUnavailable)
		return
	}
	s.shutdownMu.RUnlock()

	if !s.authorized(r) {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to upgrade connection")
		return
	}

	connID, _ := gonanoid.New()
	s.logger.Info().
		Str("conn_id", connID).
		Str("ip", r.RemoteAddr).
		Msg("Client connected")

	s.conns.Add(1)
	go s.handleClient(connID, conn)
}

func (s *Server) handleClient(connID string, conn *websocket.Conn) {
	sess := session.New(s.cfg.Session)
	ad := adapter.New(sess, strings.NewReader(""), s.cfg.Adapter)

	defer func() {
		sess.Close()
		conn.Close()
		s.conns.Done()
		s.logger.Info().Str("conn_id", connID).Msg("Client disconnected")
	}()

	for {
		var req Request
		if err := conn.ReadJSON(&req); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				s.logger.Error().Err(err).Str("conn_id", connID).Msg("WebSocket error")
			}
			return
		}

		resp := s.handleRequest(connID, ad, req)
		if err := conn.WriteJSON(resp); err != nil {
			s.logger.Error().Err(err).Str("conn_id", connID).Msg("Failed to write response")
			return
		}
	}
}

func (s *Server) handleRequest(connID string, ad *adapter.Adapter, req Request) Response {
	if strings.TrimSpace(req.Command) == "" {
		return Response{ID: req.ID, Code: adapter.ExitFailure, Error: "command is required"}
	}

	s.logger.Debug().
		Str("conn_id", connID).
		Str("request_id", req.ID).
		Msg("Command received")

	result := ad.ExecuteDetached(context.Background(), req.Command, req.Payload)
	return Response{ID: req.ID, Code: result.Code, Output: result.Text}
}
