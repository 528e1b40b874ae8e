package domain

import "time"

// SessionCapability enumerates what a session credential permits.
type SessionCapability string

const (
	CapabilityFullAccess SessionCapability = "FULL_ACCESS"
)

// SessionUserInfo carries the presence metadata embedded in a credential.
type SessionUserInfo struct {
	DisplayName   string `json:"name"`
	AvatarURL     string `json:"avatar"`
	PresenceColor string `json:"color"`
}

// SessionCredential admits one identity into one document's collaboration
// session. Opaque to this subsystem once handed to the transport.
type SessionCredential struct {
	SubjectID  string
	DocumentID string
	UserInfo   SessionUserInfo
	Capability SessionCapability
	Token      string
	ExpiresAt  time.Time
}
