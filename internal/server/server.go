// Package server exposes a table.Session over WebSocket and HTTP.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"
	"golang.org/x/sync/errgroup"

	"github.com/lox/blackjack/internal/game"
	"github.com/lox/blackjack/internal/table"
)

const shutdownTimeout = 5 * time.Second

// Server represents the WebSocket server
type Server struct {
	addr        string
	session     *table.Session
	chips       []int
	upgrader    websocket.Upgrader
	connections map[*Connection]bool
	mu          sync.RWMutex
	formatter   *game.EventFormatter
	logger      *log.Logger
	unsubscribe func()
}

// NewServer creates a server for session and subscribes to its updates
func NewServer(addr string, session *table.Session, chips []int, logger *log.Logger) *Server {
	s := &Server{
		addr:    addr,
		session: session,
		chips:   chips,
		upgrader: websocket.Upgrader{
			// Any origin may connect; the table has no accounts to protect
			CheckOrigin:     func(r *http.Request) bool { return true },
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
		connections: make(map[*Connection]bool),
		formatter:   game.NewEventFormatter(game.FormattingOptions{}),
		logger:      logger.WithPrefix("server"),
	}
	s.unsubscribe = session.Subscribe(s.broadcast)
	return s
}

// Handler returns the HTTP routes
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Get("/ws", s.handleWebSocket)
	r.Get("/health", s.handleHealth)
	r.Get("/api/state", s.handleState)
	return r
}

// Run serves until ctx is cancelled, then closes every connection
func (s *Server) Run(ctx context.Context) error {
	httpServer := &http.Server{
		Addr:              s.addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s.logger.Info("Starting WebSocket server", "addr", s.addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("failed to serve: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		s.logger.Info("Shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		s.Close()
		return httpServer.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

// Close unsubscribes from the session and drops every client
func (s *Server) Close() {
	s.unsubscribe()

	s.mu.Lock()
	defer s.mu.Unlock()
	for conn := range s.connections {
		_ = conn.Close()
	}
	clear(s.connections)
}

// ConnectionCount returns the number of connected clients
func (s *Server) ConnectionCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.connections)
}

// handleWebSocket handles WebSocket upgrade requests
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Error("Failed to upgrade connection", "error", err)
		return
	}

	client := NewConnection(conn, s)
	s.mu.Lock()
	s.connections[client] = true
	total := len(s.connections)
	s.mu.Unlock()
	s.logger.Info("Client connected", "total", total)

	client.Start()
	if msg, err := s.stateMessage(s.session.Snapshot()); err == nil {
		_ = client.SendMessage(msg)
	}

	go func() {
		<-client.Done()
		s.mu.Lock()
		delete(s.connections, client)
		total := len(s.connections)
		s.mu.Unlock()
		s.logger.Info("Client disconnected", "total", total)
	}()
}

// handleHealth handles health check requests
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = fmt.Fprintf(w, "OK")
}

// handleState returns the player-safe snapshot as JSON
func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	data := StateData{Snapshot: s.session.Snapshot().Masked(), Chips: s.chips}
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.logger.Error("Failed to encode state", "error", err)
	}
}

// broadcast fans an Update out to every client: one event message per
// round event, then the new state. It runs under the session lock, so
// sends never block.
func (s *Server) broadcast(u table.Update) {
	var msgs []*Message
	for _, e := range u.Events {
		msg, err := NewMessage(MessageTypeEvent, EventData{
			Type:    e.EventType(),
			Text:    s.formatter.Format(e),
			Payload: publicEvent(e),
		})
		if err != nil {
			s.logger.Error("Failed to encode event", "type", e.EventType(), "error", err)
			continue
		}
		msgs = append(msgs, msg)
	}
	state, err := s.stateMessage(u.Snapshot)
	if err != nil {
		s.logger.Error("Failed to encode state", "error", err)
		return
	}
	msgs = append(msgs, state)

	s.mu.RLock()
	defer s.mu.RUnlock()
	for conn := range s.connections {
		for _, msg := range msgs {
			if err := conn.SendMessage(msg); err != nil {
				break
			}
		}
	}
	s.logger.Debug("Broadcast update", "events", len(u.Events), "clients", len(s.connections))
}

func (s *Server) stateMessage(snap game.Snapshot) (*Message, error) {
	return NewMessage(MessageTypeState, StateData{Snapshot: snap.Masked(), Chips: s.chips})
}
