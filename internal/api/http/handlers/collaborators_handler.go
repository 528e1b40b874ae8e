package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/collab-access/internal/api/dto"
	"github.com/spec-kit/collab-access/internal/auth"
	"github.com/spec-kit/collab-access/internal/directory"
	"github.com/spec-kit/collab-access/internal/domain"
	apperrors "github.com/spec-kit/collab-access/pkg/util"
)

// CollaboratorsHandler exposes the directory cache for presence and
// mention resolution.
type CollaboratorsHandler struct {
	cache *directory.Cache
}

// NewCollaboratorsHandler constructs handler.
func NewCollaboratorsHandler(cache *directory.Cache) *CollaboratorsHandler {
	return &CollaboratorsHandler{cache: cache}
}

// List GET /collaborators.
func (h *CollaboratorsHandler) List(c *fiber.Ctx) error {
	id, ok := auth.IdentityFromContext(c)
	if !ok {
		return apperrors.NewUnauthenticated("identity required")
	}

	roster := h.cache.ListCollaborators(c.UserContext(), id)
	items := make([]dto.CollaboratorResponse, 0, len(roster))
	for _, collab := range roster {
		items = append(items, collaboratorResponse(collab))
	}
	return c.JSON(fiber.Map{"data": items})
}

// Resolve POST /collaborators/resolve.
func (h *CollaboratorsHandler) Resolve(c *fiber.Ctx) error {
	id, ok := auth.IdentityFromContext(c)
	if !ok {
		return apperrors.NewUnauthenticated("identity required")
	}
	var req dto.ResolveCollaboratorsRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewInvalid("invalid payload")
	}

	slots := h.cache.ResolveByIDs(c.UserContext(), id, req.IDs)
	items := make([]dto.ResolvedCollaboratorResponse, 0, len(slots))
	for i, slot := range slots {
		item := dto.ResolvedCollaboratorResponse{ID: req.IDs[i]}
		if slot != nil {
			item.Resolved = true
			resolved := collaboratorResponse(*slot)
			item.User = &resolved
		}
		items = append(items, item)
	}
	return c.JSON(fiber.Map{"data": items})
}

// Suggest GET /collaborators/suggest.
func (h *CollaboratorsHandler) Suggest(c *fiber.Ctx) error {
	id, ok := auth.IdentityFromContext(c)
	if !ok {
		return apperrors.NewUnauthenticated("identity required")
	}
	ids := h.cache.Suggest(c.UserContext(), id, c.Query("text"))
	return c.JSON(fiber.Map{"data": ids})
}

// Refresh POST /collaborators/refresh.
func (h *CollaboratorsHandler) Refresh(c *fiber.Ctx) error {
	id, ok := auth.IdentityFromContext(c)
	if !ok {
		return apperrors.NewUnauthenticated("identity required")
	}
	h.cache.ForceRefresh(c.UserContext(), id)
	return c.JSON(fiber.Map{"data": "ok"})
}

func collaboratorResponse(collab domain.Collaborator) dto.CollaboratorResponse {
	return dto.CollaboratorResponse{
		ID:            collab.ID,
		DisplayName:   collab.DisplayName,
		AvatarURL:     collab.AvatarURL,
		PresenceColor: collab.PresenceColor,
	}
}
