package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/collab-access/internal/api/dto"
	"github.com/spec-kit/collab-access/internal/auth"
	"github.com/spec-kit/collab-access/internal/session"
	apperrors "github.com/spec-kit/collab-access/pkg/util"
)

// SessionHandler exposes collaboration session admission to the transport.
type SessionHandler struct {
	gateway *session.Gateway
}

// NewSessionHandler constructs handler.
func NewSessionHandler(gateway *session.Gateway) *SessionHandler {
	return &SessionHandler{gateway: gateway}
}

// Create POST /session.
func (h *SessionHandler) Create(c *fiber.Ctx) error {
	id, ok := auth.IdentityFromContext(c)
	if !ok {
		return apperrors.NewUnauthenticated("identity required")
	}
	var req dto.CreateSessionRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewInvalid("invalid payload")
	}

	cred, err := h.gateway.Admit(c.UserContext(), id, req.DocumentID)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{"data": dto.SessionCredentialResponse{
		Token:      cred.Token,
		DocumentID: cred.DocumentID,
		Capability: string(cred.Capability),
		ExpiresAt:  cred.ExpiresAt,
		UserInfo: dto.CollaboratorResponse{
			ID:            cred.SubjectID,
			DisplayName:   cred.UserInfo.DisplayName,
			AvatarURL:     cred.UserInfo.AvatarURL,
			PresenceColor: cred.UserInfo.PresenceColor,
		},
	}})
}
