package dto

// CollaboratorResponse is one roster entry.
type CollaboratorResponse struct {
	ID            string `json:"id"`
	DisplayName   string `json:"name"`
	AvatarURL     string `json:"avatar"`
	PresenceColor string `json:"color"`
}

// ResolveCollaboratorsRequest payload.
type ResolveCollaboratorsRequest struct {
	IDs []string `json:"ids"`
}

// ResolvedCollaboratorResponse is one slot of a bulk id resolution. An
// unresolved slot keeps its id but carries no user info.
type ResolvedCollaboratorResponse struct {
	ID       string                `json:"id"`
	Resolved bool                  `json:"resolved"`
	User     *CollaboratorResponse `json:"user,omitempty"`
}
