package access

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/spec-kit/collab-access/internal/domain"
)

func strPtr(s string) *string { return &s }

func identity(subject string, org *string) domain.Identity {
	return domain.Identity{Subject: subject, OrganizationID: org}
}

func TestCanAccessPersonalDocument(t *testing.T) {
	doc := &domain.Document{ID: "d1", OwnerID: "u1"}

	cases := []struct {
		name    string
		caller  domain.Identity
		allow   bool
		reason  domain.AccessReason
	}{
		{"owner", identity("u1", nil), true, domain.AccessOwnerMatch},
		{"owner with an organization", identity("u1", strPtr("acme")), true, domain.AccessOwnerMatch},
		{"non-owner", identity("u2", nil), false, domain.AccessDenied},
		{"non-owner with an organization", identity("u2", strPtr("acme")), false, domain.AccessDenied},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			verdict := CanAccess(tc.caller, doc)
			assert.Equal(t, tc.allow, verdict.Allow)
			assert.Equal(t, tc.reason, verdict.Reason)
		})
	}
}

func TestCanAccessOrganizationalDocument(t *testing.T) {
	doc := &domain.Document{ID: "d1", OwnerID: "u1", OrganizationID: strPtr("acme")}

	cases := []struct {
		name   string
		caller domain.Identity
		allow  bool
		reason domain.AccessReason
	}{
		{"org member", identity("u2", strPtr("acme")), true, domain.AccessOrgMatch},
		{"owner still in org", identity("u1", strPtr("acme")), true, domain.AccessOwnerMatch},
		{"owner who left the org", identity("u1", nil), true, domain.AccessOwnerMatch},
		{"owner now in another org", identity("u1", strPtr("globex")), true, domain.AccessOwnerMatch},
		{"member of another org", identity("u2", strPtr("globex")), false, domain.AccessDenied},
		{"stranger without org", identity("u2", nil), false, domain.AccessDenied},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			verdict := CanAccess(tc.caller, doc)
			assert.Equal(t, tc.allow, verdict.Allow)
			assert.Equal(t, tc.reason, verdict.Reason)
		})
	}
}

func TestCanAccessEmptySubjectNeverMatchesEmptyOwner(t *testing.T) {
	doc := &domain.Document{ID: "d1", OwnerID: ""}
	verdict := CanAccess(identity("", nil), doc)
	assert.False(t, verdict.Allow)
}

func TestBuildListFilterPrecedence(t *testing.T) {
	cases := []struct {
		name   string
		caller domain.Identity
		intent ListIntent
		want   ListFilter
	}{
		{
			name:   "force personal wins over current org",
			caller: identity("u1", strPtr("acme")),
			intent: ListIntent{ForcePersonalView: true},
			want:   ListFilter{OwnerID: "u1", PersonalOnly: true},
		},
		{
			name:   "org scope when in an organization",
			caller: identity("u1", strPtr("acme")),
			intent: ListIntent{},
			want:   ListFilter{OrganizationID: "acme"},
		},
		{
			name:   "personal default when no organization",
			caller: identity("u1", nil),
			intent: ListIntent{},
			want:   ListFilter{OwnerID: "u1", PersonalOnly: true},
		},
		{
			name:   "force personal without organization",
			caller: identity("u1", nil),
			intent: ListIntent{ForcePersonalView: true},
			want:   ListFilter{OwnerID: "u1", PersonalOnly: true},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, BuildListFilter(tc.caller, tc.intent))
		})
	}
}

func TestBuildListFilterSearchComposesWithScope(t *testing.T) {
	caller := identity("u1", strPtr("acme"))

	withOrg := BuildListFilter(caller, ListIntent{SearchText: "  roadmap "})
	assert.Equal(t, "acme", withOrg.OrganizationID)
	assert.Equal(t, "roadmap", withOrg.SearchText)

	personal := BuildListFilter(caller, ListIntent{ForcePersonalView: true, SearchText: "roadmap"})
	assert.Equal(t, "u1", personal.OwnerID)
	assert.True(t, personal.PersonalOnly)
	assert.Equal(t, "roadmap", personal.SearchText)
	assert.Empty(t, personal.OrganizationID)
}

func TestCreationScope(t *testing.T) {
	withOrg := identity("u1", strPtr("acme"))

	assert.Nil(t, CreationScope(withOrg, true))
	if org := CreationScope(withOrg, false); assert.NotNil(t, org) {
		assert.Equal(t, "acme", *org)
	}
	assert.Nil(t, CreationScope(identity("u1", nil), false))
}
