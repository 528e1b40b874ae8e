package domain

// Collaborator is a roster entry used for presence, mention suggestions and
// name/avatar resolution. Held only in the directory cache.
type Collaborator struct {
	ID            string
	DisplayName   string
	AvatarURL     string
	PresenceColor string
}
