package handlers

import (
	"net/http"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/collab-access/internal/api/dto"
	"github.com/spec-kit/collab-access/internal/auth"
	"github.com/spec-kit/collab-access/internal/domain"
	"github.com/spec-kit/collab-access/internal/service"
	apperrors "github.com/spec-kit/collab-access/pkg/util"
)

const maxLookupIDs = 100

// DocumentsHandler manages the document listing and mutation endpoints.
type DocumentsHandler struct {
	service *service.DocumentService
}

// NewDocumentsHandler constructs handler.
func NewDocumentsHandler(documentService *service.DocumentService) *DocumentsHandler {
	return &DocumentsHandler{service: documentService}
}

// List GET /documents.
func (h *DocumentsHandler) List(c *fiber.Ctx) error {
	id, ok := auth.IdentityFromContext(c)
	if !ok {
		return apperrors.NewUnauthenticated("identity required")
	}

	input := service.DocumentListInput{
		Cursor:            c.Query("cursor"),
		PageSize:          parseInt(c.Query("page_size"), 20),
		SearchText:        c.Query("search"),
		ForcePersonalView: c.QueryBool("personal"),
	}
	page, err := h.service.ListDocuments(c.UserContext(), id, input)
	if err != nil {
		return err
	}

	resp := dto.DocumentPageResponse{
		Documents:  make([]dto.DocumentResponse, 0, len(page.Documents)),
		NextCursor: page.NextCursor,
	}
	for i := range page.Documents {
		resp.Documents = append(resp.Documents, documentResponse(&page.Documents[i]))
	}
	return c.JSON(fiber.Map{"data": resp})
}

// Create POST /documents.
func (h *DocumentsHandler) Create(c *fiber.Ctx) error {
	id, ok := auth.IdentityFromContext(c)
	if !ok {
		return apperrors.NewUnauthenticated("identity required")
	}
	var req dto.CreateDocumentRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewInvalid("invalid payload")
	}

	doc, err := h.service.CreateDocument(c.UserContext(), id, service.DocumentCreateInput{
		Title:          req.Title,
		InitialContent: req.InitialContent,
		ForcePersonal:  req.ForcePersonal,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": documentResponse(doc)})
}

// Get GET /documents/:id.
func (h *DocumentsHandler) Get(c *fiber.Ctx) error {
	id, ok := auth.IdentityFromContext(c)
	if !ok {
		return apperrors.NewUnauthenticated("identity required")
	}
	doc, err := h.service.GetDocument(c.UserContext(), id, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": documentResponse(doc)})
}

// Rename PATCH /documents/:id.
func (h *DocumentsHandler) Rename(c *fiber.Ctx) error {
	id, ok := auth.IdentityFromContext(c)
	if !ok {
		return apperrors.NewUnauthenticated("identity required")
	}
	var req dto.RenameDocumentRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewInvalid("invalid payload")
	}

	doc, err := h.service.RenameDocument(c.UserContext(), id, c.Params("id"), req.Title)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": documentResponse(doc)})
}

// Delete DELETE /documents/:id.
func (h *DocumentsHandler) Delete(c *fiber.Ctx) error {
	id, ok := auth.IdentityFromContext(c)
	if !ok {
		return apperrors.NewUnauthenticated("identity required")
	}
	if err := h.service.DeleteDocument(c.UserContext(), id, c.Params("id")); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}

// Lookup POST /documents/lookup.
func (h *DocumentsHandler) Lookup(c *fiber.Ctx) error {
	id, ok := auth.IdentityFromContext(c)
	if !ok {
		return apperrors.NewUnauthenticated("identity required")
	}
	var req dto.LookupDocumentsRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewInvalid("invalid payload")
	}
	if len(req.IDs) > maxLookupIDs {
		return apperrors.NewInvalid("too many ids")
	}

	results, err := h.service.LookupDocuments(c.UserContext(), id, req.IDs)
	if err != nil {
		return err
	}

	items := make([]dto.DocumentLookupResponse, 0, len(results))
	for _, res := range results {
		items = append(items, dto.DocumentLookupResponse{
			ID:       res.ID,
			Title:    res.Title,
			Resolved: res.Resolved,
		})
	}
	return c.JSON(fiber.Map{"data": items})
}

func parseInt(val string, def int) int {
	if val == "" {
		return def
	}
	parsed, err := strconv.Atoi(val)
	if err != nil || parsed <= 0 {
		return def
	}
	return parsed
}

func documentResponse(doc *domain.Document) dto.DocumentResponse {
	return dto.DocumentResponse{
		ID:             doc.ID,
		Title:          doc.Title,
		OwnerID:        doc.OwnerID,
		OrganizationID: doc.OrganizationID,
		InitialContent: doc.InitialContent,
		CreatedAt:      doc.CreatedAt,
		UpdatedAt:      doc.UpdatedAt,
	}
}
