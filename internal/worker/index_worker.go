package worker

import (
	"context"

	"go.uber.org/zap"

	"github.com/spec-kit/collab-access/internal/events"
	"github.com/spec-kit/collab-access/internal/search"
)

// StartIndexWorker subscribes the search indexer to document lifecycle
// events so the index tracks the store. Index failures are logged and
// absorbed; the store remains the source of truth and title search falls
// back to it when the index is behind.
func StartIndexWorker(dispatcher events.Dispatcher, indexer search.Indexer, logger *zap.Logger) {
	if dispatcher == nil || indexer == nil {
		return
	}

	upsert := func(_ context.Context, event events.Event) error {
		record, ok := recordFromEvent(event)
		if !ok {
			return nil
		}
		if err := indexer.IndexDocument(record); err != nil {
			logger.Warn("index document failed", zap.String("document", event.DocumentID), zap.Error(err))
		}
		return nil
	}

	dispatcher.Subscribe(events.EventDocumentCreated, upsert)
	dispatcher.Subscribe(events.EventDocumentRenamed, upsert)
	dispatcher.Subscribe(events.EventDocumentDeleted, func(_ context.Context, event events.Event) error {
		if err := indexer.DeleteDocument(event.DocumentID); err != nil {
			logger.Warn("unindex document failed", zap.String("document", event.DocumentID), zap.Error(err))
		}
		return nil
	})
}

func recordFromEvent(event events.Event) (search.DocumentRecord, bool) {
	var title, owner string
	var orgID *string

	switch payload := event.Payload.(type) {
	case events.DocumentCreatedPayload:
		title, owner, orgID = payload.Title, payload.OwnerID, payload.OrganizationID
	case events.DocumentRenamedPayload:
		title, owner, orgID = payload.Title, payload.OwnerID, payload.OrganizationID
	default:
		return search.DocumentRecord{}, false
	}

	record := search.DocumentRecord{
		ID:       event.DocumentID,
		Title:    title,
		OwnerID:  owner,
		Personal: orgID == nil,
	}
	if orgID != nil {
		record.OrganizationID = *orgID
	}
	return record, true
}
