package service

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/spec-kit/collab-access/internal/access"
	"github.com/spec-kit/collab-access/internal/domain"
	"github.com/spec-kit/collab-access/internal/events"
	"github.com/spec-kit/collab-access/internal/repository"
	"github.com/spec-kit/collab-access/internal/search"
	apperrors "github.com/spec-kit/collab-access/pkg/util"
)

const defaultTitle = "Untitled Document"

// removedTitle is what a lookup renders for ids the caller cannot see,
// whether the document is gone or simply out of scope.
const removedTitle = "[Removed]"

const searchCursorPrefix = "s:"

// DocumentService coordinates document workflows. Every decision goes
// through the access package; no endpoint re-implements authorization.
type DocumentService struct {
	docs       repository.DocumentRepository
	searcher   search.Searcher
	dispatcher events.Dispatcher
	logger     *zap.Logger
}

// DocumentDependencies bundles collaborators for the document service.
type DocumentDependencies struct {
	DocumentRepo repository.DocumentRepository
	Searcher     search.Searcher
	Dispatcher   events.Dispatcher
	Logger       *zap.Logger
}

// NewDocumentService constructs the service.
func NewDocumentService(deps DocumentDependencies) *DocumentService {
	return &DocumentService{
		docs:       deps.DocumentRepo,
		searcher:   deps.Searcher,
		dispatcher: deps.Dispatcher,
		logger:     deps.Logger,
	}
}

// DocumentCreateInput describes document creation payload.
type DocumentCreateInput struct {
	Title          string
	InitialContent string
	ForcePersonal  bool
}

// DocumentListInput describes a listing or search request.
type DocumentListInput struct {
	Cursor            string
	PageSize          int
	SearchText        string
	ForcePersonalView bool
}

// DocumentLookupResult is one slot of a bulk id lookup.
type DocumentLookupResult struct {
	ID       string
	Title    string
	Resolved bool
}

// CreateDocument creates a document scoped per the caller and the explicit
// forcePersonal flag.
func (s *DocumentService) CreateDocument(ctx context.Context, id domain.Identity, input DocumentCreateInput) (*domain.Document, error) {
	title := strings.TrimSpace(input.Title)
	if title == "" {
		title = defaultTitle
	}

	doc := &domain.Document{
		Title:          title,
		OwnerID:        id.Subject,
		OrganizationID: access.CreationScope(id, input.ForcePersonal),
		InitialContent: input.InitialContent,
	}
	if err := s.docs.Create(ctx, doc); err != nil {
		return nil, apperrors.NewUpstreamUnavailable(err)
	}

	s.publish(ctx, events.Event{
		Type:       events.EventDocumentCreated,
		DocumentID: doc.ID,
		Actor:      id.Subject,
		Payload: events.DocumentCreatedPayload{
			Title:          doc.Title,
			OwnerID:        doc.OwnerID,
			OrganizationID: doc.OrganizationID,
		},
	})
	return doc, nil
}

// GetDocument fetches one document, enforcing the access verdict.
func (s *DocumentService) GetDocument(ctx context.Context, id domain.Identity, documentID string) (*domain.Document, error) {
	doc, err := s.fetch(ctx, documentID)
	if err != nil {
		return nil, err
	}
	if verdict := access.CanAccess(id, doc); !verdict.Allow {
		return nil, apperrors.NewForbidden()
	}
	return doc, nil
}

// ListDocuments returns a page of documents visible under the caller's
// scope filter. With search text it prefers the external index and falls
// back to the store's own title match when the index is unavailable.
func (s *DocumentService) ListDocuments(ctx context.Context, id domain.Identity, input DocumentListInput) (*repository.DocumentPage, error) {
	limit := input.PageSize
	if limit <= 0 {
		limit = 20
	}

	filter := access.BuildListFilter(id, access.ListIntent{
		ForcePersonalView: input.ForcePersonalView,
		SearchText:        input.SearchText,
	})

	if filter.SearchText != "" && s.searcher != nil && s.searcher.Healthy() {
		page, err := s.listViaSearch(ctx, filter, input.Cursor, limit)
		if err == nil {
			return page, nil
		}
		var domainErr *apperrors.DomainError
		if errors.As(err, &domainErr) && !domainErr.Retryable() {
			return nil, err
		}
		s.logger.Warn("search index query failed; falling back to store", zap.Error(err))
	}

	// A search-offset cursor cannot resume a keyset listing.
	if strings.HasPrefix(input.Cursor, searchCursorPrefix) {
		return nil, apperrors.NewInvalid("invalid cursor")
	}

	page, err := s.docs.List(ctx, filter, input.Cursor, limit)
	if err != nil {
		if errors.Is(err, repository.ErrInvalidCursor) {
			return nil, apperrors.NewInvalid("invalid cursor")
		}
		return nil, apperrors.NewUpstreamUnavailable(err)
	}
	return page, nil
}

func (s *DocumentService) listViaSearch(ctx context.Context, filter access.ListFilter, cursor string, limit int) (*repository.DocumentPage, error) {
	offset := 0
	if strings.HasPrefix(cursor, searchCursorPrefix) {
		parsed, err := strconv.Atoi(strings.TrimPrefix(cursor, searchCursorPrefix))
		if err != nil || parsed < 0 {
			return nil, apperrors.NewInvalid("invalid cursor")
		}
		offset = parsed
	}

	ids, total, err := s.searcher.SearchTitles(filter.SearchText, filter, offset, limit)
	if err != nil {
		return nil, err
	}

	byID, err := s.docs.GetByIDs(ctx, ids)
	if err != nil {
		return nil, apperrors.NewUpstreamUnavailable(err)
	}

	page := &repository.DocumentPage{}
	for _, docID := range ids {
		if doc, ok := byID[docID]; ok {
			page.Documents = append(page.Documents, *doc)
		}
	}
	if int64(offset+len(ids)) < total {
		page.NextCursor = searchCursorPrefix + strconv.Itoa(offset+len(ids))
	}
	return page, nil
}

// RenameDocument updates a document title. The document is re-fetched
// immediately before the access check so a concurrent delete cannot slip
// past a stale copy.
func (s *DocumentService) RenameDocument(ctx context.Context, id domain.Identity, documentID, title string) (*domain.Document, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, apperrors.NewInvalid("title required")
	}

	doc, err := s.fetch(ctx, documentID)
	if err != nil {
		return nil, err
	}
	if verdict := access.CanAccess(id, doc); !verdict.Allow {
		return nil, apperrors.NewForbidden()
	}

	if err := s.docs.UpdateTitle(ctx, doc.ID, title); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("document")
		}
		return nil, apperrors.NewUpstreamUnavailable(err)
	}
	doc.Title = title

	s.publish(ctx, events.Event{
		Type:       events.EventDocumentRenamed,
		DocumentID: doc.ID,
		Actor:      id.Subject,
		Payload: events.DocumentRenamedPayload{
			Title:          doc.Title,
			OwnerID:        doc.OwnerID,
			OrganizationID: doc.OrganizationID,
		},
	})
	return doc, nil
}

// DeleteDocument removes a document, with the same re-fetch-then-check
// discipline as rename.
func (s *DocumentService) DeleteDocument(ctx context.Context, id domain.Identity, documentID string) error {
	doc, err := s.fetch(ctx, documentID)
	if err != nil {
		return err
	}
	if verdict := access.CanAccess(id, doc); !verdict.Allow {
		return apperrors.NewForbidden()
	}

	if err := s.docs.Delete(ctx, doc.ID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewNotFound("document")
		}
		return apperrors.NewUpstreamUnavailable(err)
	}

	s.publish(ctx, events.Event{
		Type:       events.EventDocumentDeleted,
		DocumentID: doc.ID,
		Actor:      id.Subject,
	})
	return nil
}

// LookupDocuments resolves document ids to titles for room-info display,
// one slot per input id in input order. Ids the caller cannot access come
// back unresolved with a placeholder title, indistinguishable from ids
// that do not exist.
func (s *DocumentService) LookupDocuments(ctx context.Context, id domain.Identity, ids []string) ([]DocumentLookupResult, error) {
	byID, err := s.docs.GetByIDs(ctx, ids)
	if err != nil {
		return nil, apperrors.NewUpstreamUnavailable(err)
	}

	results := make([]DocumentLookupResult, 0, len(ids))
	for _, docID := range ids {
		doc, ok := byID[docID]
		if !ok || !access.CanAccess(id, doc).Allow {
			results = append(results, DocumentLookupResult{ID: docID, Title: removedTitle})
			continue
		}
		results = append(results, DocumentLookupResult{ID: docID, Title: doc.Title, Resolved: true})
	}
	return results, nil
}

func (s *DocumentService) fetch(ctx context.Context, documentID string) (*domain.Document, error) {
	doc, err := s.docs.GetByID(ctx, documentID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("document")
		}
		return nil, apperrors.NewUpstreamUnavailable(err)
	}
	return doc, nil
}

func (s *DocumentService) publish(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	_ = s.dispatcher.Publish(ctx, event)
}
