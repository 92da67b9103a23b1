package v1

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/alterego-app/alterego/plugin/ai/memory"
	apierrors "github.com/alterego-app/alterego/server/internal/errors"
	"github.com/alterego-app/alterego/store"
)

type memoryMessageResponse struct {
	ID        int32  `json:"id"`
	Role      string `json:"role"`
	Content   string `json:"content"`
	CreatedTs int64  `json:"createdTs"`
}

type memoryStatsResponse struct {
	Persona        string `json:"persona"`
	MessageCount   int    `json:"messageCount"`
	UserTurns      int    `json:"userTurns"`
	AssistantTurns int    `json:"assistantTurns"`
	LastAccessedTs int64  `json:"lastAccessedTs,omitempty"`
}

type personaResponse struct {
	Persona        string `json:"persona"`
	LastAccessedTs int64  `json:"lastAccessedTs"`
}

// ListMessages browses the persona's stored message rows with pagination.
func (s *APIV1Service) ListMessages(c echo.Context) error {
	persona, err := personaParam(c)
	if err != nil {
		return err
	}

	find := &store.FindMessage{Persona: &persona}
	if limit := c.QueryParam("limit"); limit != "" {
		n, err := strconv.Atoi(limit)
		if err != nil || n <= 0 {
			return apiError(c, http.StatusBadRequest, apierrors.ErrCodeInvalidArgument, "limit must be a positive integer")
		}
		find.Limit = &n
	}
	if offset := c.QueryParam("offset"); offset != "" {
		n, err := strconv.Atoi(offset)
		if err != nil || n < 0 {
			return apiError(c, http.StatusBadRequest, apierrors.ErrCodeInvalidArgument, "offset must be a non-negative integer")
		}
		find.Offset = &n
	}
	if role := c.QueryParam("role"); role != "" {
		r := store.Role(role)
		if r != store.RoleUser && r != store.RoleAssistant {
			return apiError(c, http.StatusBadRequest, apierrors.ErrCodeInvalidArgument, "role must be USER or ASSISTANT")
		}
		find.Role = &r
	}
	// Newest page first; each page itself reads top-down.
	find.OrderByCreatedTsDesc = true

	messages, err := s.Store.ListMessages(c.Request().Context(), find)
	if err != nil {
		return apiError(c, http.StatusInternalServerError, apierrors.ErrCodeStorageRead, "failed to list messages")
	}

	resp := make([]*memoryMessageResponse, 0, len(messages))
	for _, m := range messages {
		resp = append(resp, &memoryMessageResponse{
			ID:        m.ID,
			Role:      string(m.Role),
			Content:   m.Content,
			CreatedTs: m.CreatedTs,
		})
	}
	return c.JSON(http.StatusOK, resp)
}

// SearchMemories exposes retrieval directly, mainly for inspection and
// debugging of what the assistant would recall for a query.
func (s *APIV1Service) SearchMemories(c echo.Context) error {
	persona, err := personaParam(c)
	if err != nil {
		return err
	}

	query := c.QueryParam("q")
	if query == "" {
		return apiError(c, http.StatusBadRequest, apierrors.ErrCodeInvalidArgument, "q is required")
	}

	opts := &memory.SearchOptions{}
	if limit := c.QueryParam("limit"); limit != "" {
		n, err := strconv.Atoi(limit)
		if err != nil || n <= 0 {
			return apiError(c, http.StatusBadRequest, apierrors.ErrCodeInvalidArgument, "limit must be a positive integer")
		}
		opts.MaxResults = n
	}

	results, err := s.MemoryService.Search(c.Request().Context(), persona, query, opts)
	if err != nil {
		return apiError(c, http.StatusInternalServerError, apierrors.ErrCodeStorageRead, "failed to search memories")
	}

	resp := make([]*memoryMessageResponse, 0, len(results))
	for _, m := range results {
		resp = append(resp, &memoryMessageResponse{
			ID:        m.ID,
			Role:      string(m.Role),
			Content:   m.Content,
			CreatedTs: m.CreatedTs,
		})
	}
	return c.JSON(http.StatusOK, resp)
}

func (s *APIV1Service) GetMemoryStats(c echo.Context) error {
	persona, err := personaParam(c)
	if err != nil {
		return err
	}
	ctx := c.Request().Context()

	total, err := s.Store.CountMessages(ctx, &store.FindMessage{Persona: &persona})
	if err != nil {
		return apiError(c, http.StatusInternalServerError, apierrors.ErrCodeStorageRead, "failed to count messages")
	}
	userRole := store.RoleUser
	userTurns, err := s.Store.CountMessages(ctx, &store.FindMessage{Persona: &persona, Role: &userRole})
	if err != nil {
		return apiError(c, http.StatusInternalServerError, apierrors.ErrCodeStorageRead, "failed to count messages")
	}

	stats := &memoryStatsResponse{
		Persona:        persona,
		MessageCount:   total,
		UserTurns:      userTurns,
		AssistantTurns: total - userTurns,
	}
	if mem, err := s.Store.GetPersonaMemory(ctx, &store.FindPersonaMemory{Persona: &persona}); err == nil && mem != nil {
		stats.LastAccessedTs = mem.LastAccessedTs
	}

	return c.JSON(http.StatusOK, stats)
}

func (s *APIV1Service) ListPersonas(c echo.Context) error {
	memories, err := s.Store.ListPersonaMemories(c.Request().Context(), &store.FindPersonaMemory{})
	if err != nil {
		return apiError(c, http.StatusInternalServerError, apierrors.ErrCodeStorageRead, "failed to list personas")
	}

	resp := make([]*personaResponse, 0, len(memories))
	for _, m := range memories {
		resp = append(resp, &personaResponse{
			Persona:        m.Persona,
			LastAccessedTs: m.LastAccessedTs,
		})
	}
	return c.JSON(http.StatusOK, resp)
}

// FactoryReset erases every persona's memory, messages, and session.
func (s *APIV1Service) FactoryReset(c echo.Context) error {
	ctx := c.Request().Context()

	memories, err := s.Store.ListPersonaMemories(ctx, &store.FindPersonaMemory{})
	if err != nil {
		return apiError(c, http.StatusInternalServerError, apierrors.ErrCodeStorageRead, "failed to list personas")
	}
	sessions, err := s.Store.ListChatSessions(ctx, &store.FindChatSession{})
	if err != nil {
		return apiError(c, http.StatusInternalServerError, apierrors.ErrCodeStorageRead, "failed to list sessions")
	}

	// A persona can hold a session without a memory record yet; the reset
	// covers both.
	personas := []string{}
	seen := map[string]struct{}{}
	for _, m := range memories {
		if _, ok := seen[m.Persona]; !ok {
			seen[m.Persona] = struct{}{}
			personas = append(personas, m.Persona)
		}
	}
	for _, sess := range sessions {
		if _, ok := seen[sess.Persona]; !ok {
			seen[sess.Persona] = struct{}{}
			personas = append(personas, sess.Persona)
		}
	}

	for _, persona := range personas {
		if err := s.Store.DeletePersonaMemory(ctx, &store.DeletePersonaMemory{Persona: persona}); err != nil {
			return apiError(c, http.StatusInternalServerError, apierrors.ErrCodeStorageWrite, "failed to reset persona "+persona)
		}
		if err := s.Store.DeleteMessage(ctx, &store.DeleteMessage{Persona: &persona}); err != nil {
			return apiError(c, http.StatusInternalServerError, apierrors.ErrCodeStorageWrite, "failed to reset persona "+persona)
		}
		if err := s.Store.DeleteAssociation(ctx, &store.DeleteAssociation{Persona: &persona}); err != nil {
			return apiError(c, http.StatusInternalServerError, apierrors.ErrCodeStorageWrite, "failed to reset persona "+persona)
		}
		if err := s.Store.DeleteChatSession(ctx, &store.DeleteChatSession{Persona: persona}); err != nil {
			return apiError(c, http.StatusInternalServerError, apierrors.ErrCodeStorageWrite, "failed to reset persona "+persona)
		}
	}

	return c.JSON(http.StatusOK, map[string]int{"personasReset": len(personas)})
}
