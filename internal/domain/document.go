package domain

import "time"

// Document is the aggregate stored in the document table. A document is
// Personal when OrganizationID is nil and Organizational when it is set;
// the scope is fixed at creation and no operation mutates it.
type Document struct {
	ID             string
	Title          string
	OwnerID        string
	OrganizationID *string
	InitialContent string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// IsPersonal reports whether the document is owner-only scoped.
func (d *Document) IsPersonal() bool {
	return d.OrganizationID == nil || *d.OrganizationID == ""
}
