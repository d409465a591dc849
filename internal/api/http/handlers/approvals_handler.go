package handlers

import (
	"context"

	"github.com/gofiber/fiber/v2"

	"github.com/leaguedesk/roster-service/internal/api/dto"
	"github.com/leaguedesk/roster-service/internal/auth"
	"github.com/leaguedesk/roster-service/internal/domain"
	"github.com/leaguedesk/roster-service/internal/service"
	apperrors "github.com/leaguedesk/roster-service/pkg/util/errorutil"
)

// ApprovalsHandler exposes the league queue and the club sent ledger.
type ApprovalsHandler struct {
	approvals *service.ApprovalService
}

// NewApprovalsHandler constructs handler.
func NewApprovalsHandler(approvals *service.ApprovalService) *ApprovalsHandler {
	return &ApprovalsHandler{approvals: approvals}
}

// ListPending handles GET /approvals/pending.
func (h *ApprovalsHandler) ListPending(c *fiber.Ctx) error {
	actor, err := auth.ActorFromContext(c)
	if err != nil {
		return err
	}
	pending, err := h.approvals.ListPending(c.UserContext(), actor)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": changeRequestList(pending)})
}

// ListSent handles GET /approvals/sent. Clubs read their own ledger; league
// admins pass ?actor= to read a club's.
func (h *ApprovalsHandler) ListSent(c *fiber.Ctx) error {
	actor, err := auth.ActorFromContext(c)
	if err != nil {
		return err
	}
	requesting := c.Query("actor", actor.Name)
	ledger, err := h.approvals.ListForActor(c.UserContext(), actor, requesting)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": changeRequestList(ledger)})
}

// Approve handles POST /approvals/:id/approve.
func (h *ApprovalsHandler) Approve(c *fiber.Ctx) error {
	return h.resolve(c, h.approvals.Approve)
}

// Reject handles POST /approvals/:id/reject.
func (h *ApprovalsHandler) Reject(c *fiber.Ctx) error {
	return h.resolve(c, h.approvals.Reject)
}

type resolveFunc func(ctx context.Context, actor domain.Actor, requestID, note string) (*domain.TagChangeRequest, error)

func (h *ApprovalsHandler) resolve(c *fiber.Ctx, fn resolveFunc) error {
	actor, err := auth.ActorFromContext(c)
	if err != nil {
		return err
	}
	var req dto.ResolveRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return apperrors.NewValidationError("invalid payload", nil)
		}
	}
	resolved, err := fn(c.UserContext(), actor, c.Params("id"), req.Note)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": changeRequestResponse(resolved)})
}
