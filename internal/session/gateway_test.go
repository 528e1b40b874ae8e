package session

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/collab-access/internal/access"
	"github.com/spec-kit/collab-access/internal/directory"
	"github.com/spec-kit/collab-access/internal/domain"
	"github.com/spec-kit/collab-access/internal/observability"
	"github.com/spec-kit/collab-access/internal/repository"
	apperrors "github.com/spec-kit/collab-access/pkg/util"
)

type fakeDocRepo struct {
	docs map[string]*domain.Document
	err  error
}

func (f *fakeDocRepo) Create(_ context.Context, _ *domain.Document) error { return errors.New("unused") }

func (f *fakeDocRepo) GetByID(_ context.Context, id string) (*domain.Document, error) {
	if f.err != nil {
		return nil, f.err
	}
	doc, ok := f.docs[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	copied := *doc
	return &copied, nil
}

func (f *fakeDocRepo) GetByIDs(context.Context, []string) (map[string]*domain.Document, error) {
	return nil, errors.New("unused")
}
func (f *fakeDocRepo) UpdateTitle(context.Context, string, string) error { return errors.New("unused") }
func (f *fakeDocRepo) Delete(context.Context, string) error              { return errors.New("unused") }
func (f *fakeDocRepo) List(context.Context, access.ListFilter, string, int) (*repository.DocumentPage, error) {
	return nil, errors.New("unused")
}

func strPtr(s string) *string { return &s }

func newGateway(repo *fakeDocRepo) (*Gateway, *CredentialIssuer) {
	issuer := NewCredentialIssuer("session-secret", time.Hour)
	return NewGateway(repo, issuer, observability.NewMetrics(), zap.NewNop()), issuer
}

func TestAdmitOwnerOfPersonalDocument(t *testing.T) {
	repo := &fakeDocRepo{docs: map[string]*domain.Document{
		"d1": {ID: "d1", OwnerID: "u1"},
	}}
	gateway, issuer := newGateway(repo)

	caller := domain.Identity{Subject: "u1", DisplayName: "Ada", AvatarURL: "https://img/u1"}
	cred, err := gateway.Admit(context.Background(), caller, "d1")
	require.NoError(t, err)

	assert.Equal(t, "u1", cred.SubjectID)
	assert.Equal(t, "d1", cred.DocumentID)
	assert.Equal(t, domain.CapabilityFullAccess, cred.Capability)
	assert.Equal(t, directory.PresenceColor("Ada"), cred.UserInfo.PresenceColor)

	claims, err := issuer.Parse(cred.Token)
	require.NoError(t, err)
	assert.Equal(t, "d1", claims.DocumentID)
	assert.Equal(t, "u1", claims.RegisteredClaims.Subject)
	assert.Equal(t, "Ada", claims.UserInfo.DisplayName)
}

func TestAdmitForbiddenForStranger(t *testing.T) {
	repo := &fakeDocRepo{docs: map[string]*domain.Document{
		"d1": {ID: "d1", OwnerID: "u1"},
	}}
	gateway, _ := newGateway(repo)

	_, err := gateway.Admit(context.Background(), domain.Identity{Subject: "u2"}, "d1")
	domainErr := apperrors.ToDomainError(err)
	assert.Equal(t, "FORBIDDEN", domainErr.Code)
	assert.False(t, domainErr.Retryable())
}

func TestAdmitOrgMemberAndLapsedOwner(t *testing.T) {
	repo := &fakeDocRepo{docs: map[string]*domain.Document{
		"d1": {ID: "d1", OwnerID: "u1", OrganizationID: strPtr("acme")},
	}}
	gateway, _ := newGateway(repo)
	ctx := context.Background()

	_, err := gateway.Admit(ctx, domain.Identity{Subject: "u2", OrganizationID: strPtr("acme")}, "d1")
	assert.NoError(t, err)

	// Owner who has since left the organization is still admitted.
	_, err = gateway.Admit(ctx, domain.Identity{Subject: "u1"}, "d1")
	assert.NoError(t, err)

	_, err = gateway.Admit(ctx, domain.Identity{Subject: "u3", OrganizationID: strPtr("globex")}, "d1")
	assert.Equal(t, "FORBIDDEN", apperrors.ToDomainError(err).Code)
}

func TestAdmitNotFound(t *testing.T) {
	gateway, _ := newGateway(&fakeDocRepo{docs: map[string]*domain.Document{}})

	_, err := gateway.Admit(context.Background(), domain.Identity{Subject: "u1"}, "missing")
	assert.Equal(t, "NOT_FOUND", apperrors.ToDomainError(err).Code)
}

func TestAdmitStoreFailureIsRetryable(t *testing.T) {
	gateway, _ := newGateway(&fakeDocRepo{err: errors.New("connection refused")})

	_, err := gateway.Admit(context.Background(), domain.Identity{Subject: "u1"}, "d1")
	domainErr := apperrors.ToDomainError(err)
	assert.Equal(t, "UPSTREAM_UNAVAILABLE", domainErr.Code)
	assert.True(t, domainErr.Retryable())
}

func TestAdmitTwiceYieldsIndependentCredentials(t *testing.T) {
	repo := &fakeDocRepo{docs: map[string]*domain.Document{
		"d1": {ID: "d1", OwnerID: "u1"},
	}}
	gateway, issuer := newGateway(repo)
	caller := domain.Identity{Subject: "u1", DisplayName: "Ada"}

	first, err := gateway.Admit(context.Background(), caller, "d1")
	require.NoError(t, err)
	second, err := gateway.Admit(context.Background(), caller, "d1")
	require.NoError(t, err)

	_, err = issuer.Parse(first.Token)
	assert.NoError(t, err)
	_, err = issuer.Parse(second.Token)
	assert.NoError(t, err)
}
