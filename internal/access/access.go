// Package access holds the document authorization primitives. Listing,
// mutation and session admission all funnel through CanAccess and
// BuildListFilter; nothing else in the codebase decides who may see or
// touch a document.
//
// Both functions are pure and safe for concurrent use.
package access

import (
	"strings"

	"github.com/spec-kit/collab-access/internal/domain"
)

// CanAccess decides whether the identity may read, mutate or join the
// document. A personal document admits only its owner. An organizational
// document admits current organization members and its owner; the owner
// keeps access even after leaving the organization.
func CanAccess(identity domain.Identity, doc *domain.Document) domain.AccessVerdict {
	if identity.Subject != "" && identity.Subject == doc.OwnerID {
		return domain.AccessVerdict{Allow: true, Reason: domain.AccessOwnerMatch}
	}
	if !doc.IsPersonal() && identity.InOrganization() && *identity.OrganizationID == *doc.OrganizationID {
		return domain.AccessVerdict{Allow: true, Reason: domain.AccessOrgMatch}
	}
	return domain.AccessVerdict{Reason: domain.AccessDenied}
}

// ListIntent describes what the caller asked the listing API for.
type ListIntent struct {
	ForcePersonalView bool
	SearchText        string
}

// ListFilter is the scope predicate handed to the document store. Exactly
// one of the two scopes is set: personal (OwnerID + PersonalOnly) or
// organizational (OrganizationID). SearchText composes with the scope, it
// never replaces it.
type ListFilter struct {
	OwnerID        string
	OrganizationID string
	PersonalOnly   bool
	SearchText     string
}

// BuildListFilter derives the visibility filter for a listing or search
// request. Precedence is fixed: an explicit personal view wins over the
// caller's current organization, which wins over the personal default.
func BuildListFilter(identity domain.Identity, intent ListIntent) ListFilter {
	filter := ListFilter{SearchText: strings.TrimSpace(intent.SearchText)}

	switch {
	case intent.ForcePersonalView:
		filter.OwnerID = identity.Subject
		filter.PersonalOnly = true
	case identity.InOrganization():
		filter.OrganizationID = *identity.OrganizationID
	default:
		filter.OwnerID = identity.Subject
		filter.PersonalOnly = true
	}
	return filter
}

// CreationScope resolves the organization id a new document is created
// under. Mirrors BuildListFilter's precedence so a user finds documents
// where they expect them: forcePersonal pins the document to the personal
// scope regardless of the caller's current organization.
func CreationScope(identity domain.Identity, forcePersonal bool) *string {
	if forcePersonal || !identity.InOrganization() {
		return nil
	}
	org := *identity.OrganizationID
	return &org
}
