package web

import (
	"context"
	"fmt"
	"net/http"

	"github.com/vitos/trade_strategy_manager/internal/usecase"
	"go.uber.org/zap"
)

type Server struct {
	router *http.ServeMux
	server *http.Server
	repo   *usecase.StrategyRepository
	query  *usecase.QueryEngine
	hub    *Hub
	logger *zap.Logger
}

func NewServer(
	port int,
	repo *usecase.StrategyRepository,
	query *usecase.QueryEngine,
	hub *Hub,
	logger *zap.Logger,
) *Server {
	s := &Server{
		router: http.NewServeMux(),
		repo:   repo,
		query:  query,
		hub:    hub,
		logger: logger,
	}
	s.routes()
	s.server = &http.Server{
		Addr:    fmt.Sprintf(":%d", port),
		Handler: s.router,
	}
	return s
}

func (s *Server) routes() {
	// Page
	s.router.HandleFunc("GET /{$}", s.handleIndex)

	// Strategies (HTML partials)
	s.router.HandleFunc("GET /strategies", s.handleStrategyList)
	s.router.HandleFunc("GET /strategies/new", s.handleNewForm)
	s.router.HandleFunc("POST /strategies", s.handleCreate)
	s.router.HandleFunc("GET /strategies/{id}", s.handleSelect)
	s.router.HandleFunc("GET /strategies/{id}/edit", s.handleEditForm)
	s.router.HandleFunc("GET /strategies/{id}/raw", s.handleRaw)
	s.router.HandleFunc("POST /strategies/{id}", s.handleUpdate)
	s.router.HandleFunc("PUT /strategies/{id}", s.handleUpdate)
	s.router.HandleFunc("DELETE /strategies/{id}", s.handleDelete)
	s.router.HandleFunc("POST /undo", s.handleUndo)

	// JSON API
	s.router.HandleFunc("GET /api/strategies", s.handleListJSON)
	s.router.HandleFunc("POST /api/strategies", s.handleCreateJSON)
	s.router.HandleFunc("GET /api/strategies/{id}", s.handleGetJSON)
	s.router.HandleFunc("PUT /api/strategies/{id}", s.handleUpdateJSON)
	s.router.HandleFunc("DELETE /api/strategies/{id}", s.handleDeleteJSON)
	s.router.HandleFunc("POST /api/undo", s.handleUndoJSON)

	// Live events
	s.router.HandleFunc("GET /ws", s.hub.ServeWS)
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) Start() error {
	s.logger.Info("Starting web server", zap.String("addr", s.server.Addr))
	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	s.hub.Close()
	return s.server.Shutdown(ctx)
}
