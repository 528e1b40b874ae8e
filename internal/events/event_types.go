package events

// EventType identifies document lifecycle events.
type EventType string

const (
	EventDocumentCreated EventType = "document.created"
	EventDocumentRenamed EventType = "document.renamed"
	EventDocumentDeleted EventType = "document.deleted"
)

// Event is the payload published on the dispatcher.
type Event struct {
	Type       EventType
	DocumentID string
	Actor      string
	Payload    any
}

// DocumentCreatedPayload accompanies EventDocumentCreated.
type DocumentCreatedPayload struct {
	Title          string
	OwnerID        string
	OrganizationID *string
}

// DocumentRenamedPayload accompanies EventDocumentRenamed.
type DocumentRenamedPayload struct {
	Title          string
	OwnerID        string
	OrganizationID *string
}
