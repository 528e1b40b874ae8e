package identity

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeProvider struct {
	membership      *string
	membershipErr   error
	membershipCalls int
	members         map[string][]Member
	membersErr      error
	membersCalls    int
}

func (f *fakeProvider) GetOrganizationMembership(_ context.Context, _ string) (*string, error) {
	f.membershipCalls++
	return f.membership, f.membershipErr
}

func (f *fakeProvider) GetOrganizationMembers(_ context.Context, orgID string) ([]Member, error) {
	f.membersCalls++
	if f.membersErr != nil {
		return nil, f.membersErr
	}
	return f.members[orgID], nil
}

func issueToken(t *testing.T, tm *TokenManager, subject string, claims Claims) string {
	t.Helper()
	token, err := tm.GenerateToken(subject, claims, time.Hour)
	require.NoError(t, err)
	return token
}

func TestResolvePrefersOrgClaimOverLookup(t *testing.T) {
	tm := NewTokenManager("secret")
	claimed := "acme"
	lookedUp := "globex"
	provider := &fakeProvider{membership: &lookedUp}
	resolver := NewResolver(tm, provider, nil, zap.NewNop())

	token := issueToken(t, tm, "u1", Claims{OrganizationID: &claimed, Name: "Ada"})
	id, err := resolver.Resolve(context.Background(), token)
	require.NoError(t, err)

	require.NotNil(t, id.OrganizationID)
	assert.Equal(t, "acme", *id.OrganizationID)
	assert.Equal(t, "Ada", id.DisplayName)
	assert.Zero(t, provider.membershipCalls, "claim present, provider must not be consulted")
}

func TestResolveFallsBackToProviderLookup(t *testing.T) {
	tm := NewTokenManager("secret")
	org := "acme"
	provider := &fakeProvider{membership: &org}
	resolver := NewResolver(tm, provider, nil, zap.NewNop())

	token := issueToken(t, tm, "u1", Claims{})
	id, err := resolver.Resolve(context.Background(), token)
	require.NoError(t, err)

	require.NotNil(t, id.OrganizationID)
	assert.Equal(t, "acme", *id.OrganizationID)
	assert.Equal(t, 1, provider.membershipCalls)
}

func TestResolveLookupFailureIsNotFatal(t *testing.T) {
	tm := NewTokenManager("secret")
	provider := &fakeProvider{membershipErr: errors.New("upstream down")}
	resolver := NewResolver(tm, provider, nil, zap.NewNop())

	token := issueToken(t, tm, "u1", Claims{Name: "Ada"})
	id, err := resolver.Resolve(context.Background(), token)
	require.NoError(t, err)

	assert.Equal(t, "u1", id.Subject)
	assert.Nil(t, id.OrganizationID)
}

func TestResolveRejectsMissingAndInvalidTokens(t *testing.T) {
	resolver := NewResolver(NewTokenManager("secret"), nil, nil, zap.NewNop())

	_, err := resolver.Resolve(context.Background(), "")
	assert.Error(t, err)

	_, err = resolver.Resolve(context.Background(), "not-a-token")
	assert.Error(t, err)

	other := NewTokenManager("other-secret")
	forged := issueToken(t, other, "u1", Claims{})
	_, err = resolver.Resolve(context.Background(), forged)
	assert.Error(t, err)
}

func TestResolveDefaultsDisplayName(t *testing.T) {
	tm := NewTokenManager("secret")
	resolver := NewResolver(tm, nil, nil, zap.NewNop())

	token := issueToken(t, tm, "u1", Claims{})
	id, err := resolver.Resolve(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, "Anonymous", id.DisplayName)
}

func TestResolveUsesMembershipCache(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	cache := NewMembershipCache(client, time.Minute)

	tm := NewTokenManager("secret")
	org := "acme"
	provider := &fakeProvider{membership: &org}
	resolver := NewResolver(tm, provider, cache, zap.NewNop())

	ctx := context.Background()
	token := issueToken(t, tm, "u1", Claims{})

	_, err := resolver.Resolve(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, 1, provider.membershipCalls)

	// Second resolve within the TTL is served from the cache.
	id, err := resolver.Resolve(ctx, token)
	require.NoError(t, err)
	require.NotNil(t, id.OrganizationID)
	assert.Equal(t, "acme", *id.OrganizationID)
	assert.Equal(t, 1, provider.membershipCalls)
}

func TestMembershipCacheStoresAbsence(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	cache := NewMembershipCache(client, time.Minute)
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, "u1", nil))

	org, found, err := cache.Get(ctx, "u1")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Nil(t, org)

	// Expiry turns the entry back into a miss.
	mr.FastForward(2 * time.Minute)
	_, found, err = cache.Get(ctx, "u1")
	require.NoError(t, err)
	assert.False(t, found)
}
