package handlers

import (
	"net/http"
	"net/url"

	"github.com/gofiber/fiber/v2"

	"github.com/leaguedesk/roster-service/internal/api/dto"
	"github.com/leaguedesk/roster-service/internal/auth"
	"github.com/leaguedesk/roster-service/internal/domain"
	"github.com/leaguedesk/roster-service/internal/service"
	apperrors "github.com/leaguedesk/roster-service/pkg/util/errorutil"
)

// TagsHandler exposes the tag registry.
type TagsHandler struct {
	registry *service.TagRegistryService
}

// NewTagsHandler constructs handler.
func NewTagsHandler(registry *service.TagRegistryService) *TagsHandler {
	return &TagsHandler{registry: registry}
}

// List handles GET /tags.
func (h *TagsHandler) List(c *fiber.Ctx) error {
	entries, err := h.registry.ListTags(c.UserContext())
	if err != nil {
		return err
	}
	items := make([]dto.TagEntry, 0, len(entries))
	for _, e := range entries {
		items = append(items, dto.TagEntry{Name: e.Name, UsageCount: e.UsageCount})
	}
	return c.JSON(fiber.Map{"data": items})
}

// Create handles POST /tags.
func (h *TagsHandler) Create(c *fiber.Ctx) error {
	actor, err := auth.ActorFromContext(c)
	if err != nil {
		return err
	}
	var req dto.CreateTagRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if err := h.registry.CreateTag(c.UserContext(), actor, req.Name); err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.TagEntry{Name: domain.NormalizeTagName(req.Name), UsageCount: 0}})
}

// Rename handles PUT /tags/:name.
func (h *TagsHandler) Rename(c *fiber.Ctx) error {
	actor, err := auth.ActorFromContext(c)
	if err != nil {
		return err
	}
	oldName, err := tagParam(c)
	if err != nil {
		return err
	}
	var req dto.RenameTagRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	updated, err := h.registry.RenameTag(c.UserContext(), actor, oldName, req.NewName)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.TagMutationResponse{Name: domain.NormalizeTagName(req.NewName), UpdatedRecords: updated}})
}

// Delete handles DELETE /tags/:name.
func (h *TagsHandler) Delete(c *fiber.Ctx) error {
	actor, err := auth.ActorFromContext(c)
	if err != nil {
		return err
	}
	name, err := tagParam(c)
	if err != nil {
		return err
	}
	updated, err := h.registry.DeleteTag(c.UserContext(), actor, name)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.TagMutationResponse{Name: name, UpdatedRecords: updated}})
}

// tagParam decodes the path segment; tag names may contain spaces.
func tagParam(c *fiber.Ctx) (string, error) {
	name, err := url.PathUnescape(c.Params("name"))
	if err != nil {
		return "", apperrors.NewValidationError("invalid tag name", nil)
	}
	return name, nil
}
