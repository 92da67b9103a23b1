// Package v1 exposes the chat and memory REST API.
package v1

import (
	"time"

	"github.com/labstack/echo/v4"

	"github.com/alterego-app/alterego/internal/profile"
	"github.com/alterego-app/alterego/plugin/ai/memory"
	"github.com/alterego-app/alterego/plugin/ai/session"
	"github.com/alterego-app/alterego/plugin/markdown"
	"github.com/alterego-app/alterego/server/middleware"
	"github.com/alterego-app/alterego/server/service/chat"
	"github.com/alterego-app/alterego/store"
)

type APIV1Service struct {
	Profile         *profile.Profile
	Store           *store.Store
	ChatService     *chat.Service
	MemoryService   memory.Service
	SessionManager  session.Manager
	MarkdownService markdown.Service

	rateLimiter *middleware.RateLimiter
}

// NewAPIV1Service creates the API service.
func NewAPIV1Service(p *profile.Profile, st *store.Store, chatService *chat.Service, memoryService memory.Service, sessionManager session.Manager) *APIV1Service {
	return &APIV1Service{
		Profile:         p,
		Store:           st,
		ChatService:     chatService,
		MemoryService:   memoryService,
		SessionManager:  sessionManager,
		MarkdownService: markdown.NewService(),
		rateLimiter:     middleware.NewRateLimiter(time.Second, 3),
	}
}

// RegisterRoutes attaches all v1 routes to the echo instance.
func (s *APIV1Service) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/api/v1")

	g.GET("/ping", s.Ping)

	g.POST("/personas/:persona/messages", s.SendMessage)
	g.GET("/personas/:persona/transcript", s.GetTranscript)
	g.GET("/personas/:persona/messages", s.ListMessages)
	g.GET("/personas/:persona/session", s.GetSession)
	g.GET("/personas/:persona/memories", s.SearchMemories)
	g.GET("/personas/:persona/memory/stats", s.GetMemoryStats)
	g.DELETE("/personas/:persona/memory", s.ClearMemory)

	g.GET("/personas", s.ListPersonas)
	g.POST("/factory-reset", s.FactoryReset)
}
