package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/leaguedesk/roster-service/internal/api/dto"
	"github.com/leaguedesk/roster-service/internal/service"
	apperrors "github.com/leaguedesk/roster-service/pkg/util/errorutil"
)

// SessionHandler opens dashboard sessions.
type SessionHandler struct {
	sessions *service.SessionService
}

// NewSessionHandler constructs handler.
func NewSessionHandler(sessions *service.SessionService) *SessionHandler {
	return &SessionHandler{sessions: sessions}
}

// Open handles POST /session.
func (h *SessionHandler) Open(c *fiber.Ctx) error {
	var req dto.SessionRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.Role == "" {
		return apperrors.NewValidationError("role required", nil)
	}

	actor, token, exp, err := h.sessions.OpenSession(req.Role, req.Actor)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.SessionResponse{
		Token:     token,
		ExpiresAt: exp,
		Role:      string(actor.Role),
		Actor:     actor.Name,
	}})
}
