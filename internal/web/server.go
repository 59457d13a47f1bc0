// Package web exposes the diagnostic tools over an HTTP JSON API.
package web

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/user/netscan/internal/model"
	"github.com/user/netscan/internal/util"
)

// Server is the API server.
type Server struct {
	handlers *Handlers
	port     int
	srv      *http.Server
}

// NewServer creates a server on the given port.
func NewServer(handlers *Handlers, port int) *Server {
	return &Server{handlers: handlers, port: port}
}

// Routes builds the request mux: one GET endpoint per tool plus a
// health check.
func (s *Server) Routes() *http.ServeMux {
	mux := http.NewServeMux()

	for _, tool := range model.AllTools() {
		mux.HandleFunc("/api/"+string(tool), s.handlers.Tool(tool))
	}

	mux.HandleFunc("/api/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
	})

	return mux
}

// Start starts the server and blocks until shutdown.
func (s *Server) Start() error {
	s.srv = &http.Server{
		Addr:         fmt.Sprintf(":%d", s.port),
		Handler:      s.Routes(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second, // traces can take a while
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		s.srv.Shutdown(ctx)
	}()

	util.Info("API server starting on port %d", s.port)

	if err := s.srv.ListenAndServe(); err != http.ErrServerClosed {
		return err
	}

	return nil
}

// Stop stops the server.
func (s *Server) Stop() error {
	if s.srv == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	return s.srv.Shutdown(ctx)
}
