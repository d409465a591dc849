package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/leaguedesk/roster-service/internal/api/dto"
	"github.com/leaguedesk/roster-service/internal/auth"
	"github.com/leaguedesk/roster-service/internal/service"
	apperrors "github.com/leaguedesk/roster-service/pkg/util/errorutil"
)

// StaffHandler exposes the roster and tag assignment endpoints.
type StaffHandler struct {
	staff       *service.StaffService
	assignments *service.TagAssignmentService
}

// NewStaffHandler constructs handler.
func NewStaffHandler(staff *service.StaffService, assignments *service.TagAssignmentService) *StaffHandler {
	return &StaffHandler{staff: staff, assignments: assignments}
}

// List handles GET /staff.
func (h *StaffHandler) List(c *fiber.Ctx) error {
	actor, err := auth.ActorFromContext(c)
	if err != nil {
		return err
	}
	records, err := h.staff.ListStaff(c.UserContext(), actor)
	if err != nil {
		return err
	}
	items := make([]dto.StaffResponse, 0, len(records))
	for i := range records {
		items = append(items, staffResponse(&records[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// Get handles GET /staff/:id.
func (h *StaffHandler) Get(c *fiber.Ctx) error {
	actor, err := auth.ActorFromContext(c)
	if err != nil {
		return err
	}
	record, err := h.staff.GetStaff(c.UserContext(), actor, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": staffResponse(record)})
}

// ProposeTags handles PUT /staff/:id/tags. Applied changes answer 200,
// queued ones 202 with the request id.
func (h *StaffHandler) ProposeTags(c *fiber.Ctx) error {
	actor, err := auth.ActorFromContext(c)
	if err != nil {
		return err
	}
	var req dto.ProposeTagsRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	outcome, err := h.assignments.ProposeTagChange(c.UserContext(), actor, c.Params("id"), nonNil(req.Tags))
	if err != nil {
		return err
	}
	status := http.StatusOK
	if outcome.Kind == service.OutcomeQueued {
		status = http.StatusAccepted
	}
	return c.Status(status).JSON(fiber.Map{"data": dto.ProposeTagsResponse{
		Outcome:   string(outcome.Kind),
		StaffID:   outcome.StaffID,
		Tags:      nonNil(outcome.Tags),
		RequestID: outcome.RequestID,
	}})
}

// BulkTags handles POST /staff/tags/bulk.
func (h *StaffHandler) BulkTags(c *fiber.Ctx) error {
	actor, err := auth.ActorFromContext(c)
	if err != nil {
		return err
	}
	var req dto.BulkTagsRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if len(req.StaffIDs) == 0 {
		return apperrors.NewValidationError("staff_ids required", nil)
	}

	result, err := h.assignments.BulkApplyTags(c.UserContext(), actor, service.BulkInput{
		StaffIDs: req.StaffIDs,
		Action:   service.BulkAction(req.Action),
		Tags:     req.Tags,
	})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.BulkTagsResponse{
		AppliedCount:   result.AppliedCount,
		QueuedCount:    result.QueuedCount,
		SkippedCount:   result.SkippedCount,
		SkippedIDs:     nonNil(result.SkippedIDs),
		TruncatedCount: result.TruncatedCount,
		RequestIDs:     nonNil(result.RequestIDs),
	}})
}
