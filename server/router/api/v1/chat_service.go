package v1

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	apierrors "github.com/alterego-app/alterego/server/internal/errors"
	"github.com/alterego-app/alterego/server/service/chat"
	"github.com/alterego-app/alterego/store"
)

type sendMessageRequest struct {
	Content      string `json:"content"`
	SystemPrompt string `json:"systemPrompt,omitempty"`
}

type sendMessageResponse struct {
	Reply        string `json:"reply"`
	SessionUID   string `json:"sessionUid"`
	MemoriesUsed int    `json:"memoriesUsed"`

	// Warning is set when the reply arrived but persisting it failed.
	Warning string `json:"warning,omitempty"`
}

type transcriptEntryResponse struct {
	Role      string `json:"role"`
	Content   string `json:"content"`
	HTML      string `json:"html,omitempty"`
	Timestamp int64  `json:"timestamp"`
}

type sessionResponse struct {
	Persona    string `json:"persona"`
	SessionUID string `json:"sessionUid"`
	CreatedTs  int64  `json:"createdTs"`
	UpdatedTs  int64  `json:"updatedTs"`
}

type errorResponse struct {
	Code    apierrors.ErrorCode `json:"code"`
	Message string              `json:"message"`
}

func (s *APIV1Service) Ping(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

func (s *APIV1Service) SendMessage(c echo.Context) error {
	persona, err := personaParam(c)
	if err != nil {
		return err
	}

	req := &sendMessageRequest{}
	if err := c.Bind(req); err != nil {
		return apiError(c, http.StatusBadRequest, apierrors.ErrCodeInvalidArgument, "malformed request body")
	}
	if strings.TrimSpace(req.Content) == "" {
		return apiError(c, http.StatusBadRequest, apierrors.ErrCodeInvalidArgument, "content must not be empty")
	}

	if !s.rateLimiter.Allow(persona) {
		return apiError(c, http.StatusTooManyRequests, apierrors.ErrCodeRateLimitExceeded, "too many messages, slow down")
	}

	exchange, err := s.ChatService.Send(c.Request().Context(), persona, req.Content, req.SystemPrompt)
	if err != nil {
		if errors.Is(err, chat.ErrCompletionUnavailable) {
			return apiError(c, http.StatusBadGateway, apierrors.ErrCodeCompletionUnavailable, "assistant is unavailable right now")
		}
		return apiError(c, http.StatusInternalServerError, apierrors.ErrCodeStorageRead, "failed to run exchange")
	}

	return c.JSON(http.StatusOK, &sendMessageResponse{
		Reply:        exchange.Reply,
		SessionUID:   exchange.SessionUID,
		MemoriesUsed: exchange.MemoriesUsed,
		Warning:      exchange.Warning,
	})
}

func (s *APIV1Service) GetTranscript(c echo.Context) error {
	persona, err := personaParam(c)
	if err != nil {
		return err
	}

	transcript, err := s.ChatService.Transcript(c.Request().Context(), persona)
	if err != nil {
		return apiError(c, http.StatusInternalServerError, apierrors.ErrCodeStorageRead, "failed to load transcript")
	}

	withHTML := c.QueryParam("format") == "html"
	entries := make([]*transcriptEntryResponse, 0, len(transcript))
	for _, entry := range transcript {
		resp := &transcriptEntryResponse{
			Role:      entry.Role,
			Content:   entry.Content,
			Timestamp: entry.Timestamp,
		}
		if withHTML && entry.Role == "assistant" {
			if html, err := s.MarkdownService.RenderHTML(entry.Content); err == nil {
				resp.HTML = html
			}
		}
		entries = append(entries, resp)
	}

	return c.JSON(http.StatusOK, entries)
}

func (s *APIV1Service) GetSession(c echo.Context) error {
	persona, err := personaParam(c)
	if err != nil {
		return err
	}

	sess, err := s.ChatService.Session(c.Request().Context(), persona)
	if err != nil {
		return apiError(c, http.StatusInternalServerError, apierrors.ErrCodeStorageRead, "failed to load session")
	}
	return c.JSON(http.StatusOK, toSessionResponse(sess))
}

func (s *APIV1Service) ClearMemory(c echo.Context) error {
	persona, err := personaParam(c)
	if err != nil {
		return err
	}

	sess, err := s.ChatService.ClearMemory(c.Request().Context(), persona)
	if err != nil {
		return apiError(c, http.StatusInternalServerError, apierrors.ErrCodeStorageWrite, "failed to clear memory")
	}
	return c.JSON(http.StatusOK, toSessionResponse(sess))
}

func toSessionResponse(sess *store.ChatSession) *sessionResponse {
	return &sessionResponse{
		Persona:    sess.Persona,
		SessionUID: sess.UID,
		CreatedTs:  sess.CreatedTs,
		UpdatedTs:  sess.UpdatedTs,
	}
}

func personaParam(c echo.Context) (string, error) {
	persona := strings.TrimSpace(c.Param("persona"))
	if persona == "" {
		return "", echo.NewHTTPError(http.StatusBadRequest, "persona is required")
	}
	return persona, nil
}

func apiError(c echo.Context, status int, code apierrors.ErrorCode, message string) error {
	return c.JSON(status, &errorResponse{Code: code, Message: message})
}
