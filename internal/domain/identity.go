package domain

// Identity is the resolved caller for a single request. It is produced by
// the identity resolver from a verified token and never persisted.
type Identity struct {
	Subject        string
	OrganizationID *string
	DisplayName    string
	AvatarURL      string
}

// InOrganization reports whether the caller is currently scoped to an
// organization.
func (i Identity) InOrganization() bool {
	return i.OrganizationID != nil && *i.OrganizationID != ""
}
