package domain

// AccessReason explains an access verdict.
type AccessReason string

const (
	AccessOwnerMatch AccessReason = "OWNER_MATCH"
	AccessOrgMatch   AccessReason = "ORG_MATCH"
	AccessDenied     AccessReason = "DENIED"
)

// AccessVerdict is the allow/deny outcome of the authorization primitive.
// Computed per call, never stored.
type AccessVerdict struct {
	Allow  bool
	Reason AccessReason
}
