// Package search provides the title search index. The index only ever
// narrows a scope filter built by the access package; visibility is
// enforced by filterable attributes inside the engine, never by
// post-filtering hits.
package search

import "github.com/spec-kit/collab-access/internal/access"

// DocumentRecord is the data we index for a document. Personal documents
// carry an empty organizationId and Personal=true so scope filters can be
// expressed as engine-side filter clauses.
type DocumentRecord struct {
	ID             string `json:"id"`
	Title          string `json:"title"`
	OwnerID        string `json:"ownerId"`
	OrganizationID string `json:"organizationId"`
	Personal       bool   `json:"personal"`
}

// Searcher executes a scope-constrained title search and returns matching
// document ids in rank order.
type Searcher interface {
	SearchTitles(text string, filter access.ListFilter, offset, limit int) ([]string, int64, error)
	Healthy() bool
}

// Indexer pushes document mutations into the search index.
type Indexer interface {
	IndexDocument(doc DocumentRecord) error
	DeleteDocument(id string) error
}
