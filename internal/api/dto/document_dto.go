package dto

import "time"

// CreateDocumentRequest payload.
type CreateDocumentRequest struct {
	Title          string `json:"title"`
	InitialContent string `json:"initial_content"`
	ForcePersonal  bool   `json:"force_personal"`
}

// RenameDocumentRequest payload.
type RenameDocumentRequest struct {
	Title string `json:"title"`
}

// LookupDocumentsRequest payload.
type LookupDocumentsRequest struct {
	IDs []string `json:"ids"`
}

// DocumentResponse is the outward document shape.
type DocumentResponse struct {
	ID             string    `json:"id"`
	Title          string    `json:"title"`
	OwnerID        string    `json:"owner_id"`
	OrganizationID *string   `json:"organization_id,omitempty"`
	InitialContent string    `json:"initial_content,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// DocumentPageResponse is one listing page with a continuation cursor.
type DocumentPageResponse struct {
	Documents  []DocumentResponse `json:"documents"`
	NextCursor string             `json:"next_cursor,omitempty"`
}

// DocumentLookupResponse is one slot of a bulk id lookup.
type DocumentLookupResponse struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	Resolved bool   `json:"resolved"`
}
