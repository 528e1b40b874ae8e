package dto

import "time"

// CreateSessionRequest payload.
type CreateSessionRequest struct {
	DocumentID string `json:"document_id"`
}

// SessionCredentialResponse is handed to the collaboration transport.
type SessionCredentialResponse struct {
	Token      string               `json:"token"`
	DocumentID string               `json:"document_id"`
	Capability string               `json:"capability"`
	ExpiresAt  time.Time            `json:"expires_at"`
	UserInfo   CollaboratorResponse `json:"user_info"`
}
