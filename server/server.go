// Package server wires the store, the AI services, and the HTTP API together.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"

	"github.com/alterego-app/alterego/internal/profile"
	"github.com/alterego-app/alterego/plugin/ai"
	"github.com/alterego-app/alterego/plugin/ai/assoc"
	aicontext "github.com/alterego-app/alterego/plugin/ai/context"
	"github.com/alterego-app/alterego/plugin/ai/memory"
	"github.com/alterego-app/alterego/plugin/ai/session"
	"github.com/alterego-app/alterego/plugin/ai/timeout"
	"github.com/alterego-app/alterego/server/middleware"
	apiv1 "github.com/alterego-app/alterego/server/router/api/v1"
	"github.com/alterego-app/alterego/server/service/chat"
	"github.com/alterego-app/alterego/store"
)

type Server struct {
	e *echo.Echo

	Profile *profile.Profile
	Store   *store.Store
}

// NewServer assembles the full service graph.
func NewServer(ctx context.Context, p *profile.Profile, st *store.Store) (*Server, error) {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.CORS())
	e.Use(middleware.RequestLogger())

	s := &Server{
		e:       e,
		Profile: p,
		Store:   st,
	}

	if err := st.Migrate(ctx); err != nil {
		return nil, errors.Wrap(err, "failed to migrate schema")
	}

	llm, err := ai.NewProvider(ai.ConfigFromProfile(p))
	if err != nil {
		return nil, errors.Wrap(err, "failed to create completion provider")
	}

	sessionManager := session.NewManager(st)
	memoryService := memory.NewService(st, memory.Config{
		MaxResults:            p.MaxRetrievalResults,
		RecencyWindowDays:     p.RecencyWindowDays,
		NeighborWindowMinutes: p.NeighborWindowMinutes,
	})
	factsService := assoc.NewService(st, assoc.DefaultConfig())
	assembler := aicontext.NewAssembler(aicontext.Config{
		MemoryBufferSize: p.MemoryBufferSize,
	})
	chatService := chat.NewService(p, sessionManager, memoryService, factsService, assembler, llm)

	sessionManager.OnMemoryChange(func(persona string) {
		slog.Debug("memory changed", "persona", persona)
	})

	apiV1 := apiv1.NewAPIV1Service(p, st, chatService, memoryService, sessionManager)
	apiV1.RegisterRoutes(e)

	return s, nil
}

// Start runs the HTTP server until it fails or is shut down.
func (s *Server) Start(_ context.Context) error {
	addr := fmt.Sprintf("%s:%d", s.Profile.Addr, s.Profile.Port)
	slog.Info("server started", "addr", addr, "version", s.Profile.Version)
	if err := s.e.Start(addr); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown drains in-flight requests and closes the store.
func (s *Server) Shutdown(ctx context.Context) {
	shutdownCtx, cancel := context.WithTimeout(ctx, timeout.ShutdownTimeout)
	defer cancel()

	if err := s.e.Shutdown(shutdownCtx); err != nil {
		slog.Error("failed to shut down server gracefully", "error", err)
	}
	if err := s.Store.Close(); err != nil {
		slog.Error("failed to close store", "error", err)
	}
	slog.Info("server shut down")
}

// Echo exposes the router, mainly for tests.
func (s *Server) Echo() *echo.Echo {
	return s.e
}
