package identity

import (
	"context"

	"go.uber.org/zap"

	"github.com/spec-kit/collab-access/internal/domain"
	apperrors "github.com/spec-kit/collab-access/pkg/util"
)

// fallbackDisplayName is used when a token carries no name claim.
const fallbackDisplayName = "Anonymous"

// Resolver normalizes an inbound bearer token into a caller identity.
//
// The organization id is resolved through an ordered strategy: a verified
// token claim wins; otherwise a best-effort lookup against the provider's
// membership records fills it in; otherwise it stays absent. A failed
// lookup never fails the request; personal-document access does not
// depend on it.
type Resolver struct {
	tokens      *TokenManager
	provider    Provider
	memberships *MembershipCache
	logger      *zap.Logger
}

// NewResolver constructs a resolver. Both provider and memberships may be
// nil; each disables the corresponding fallback step.
func NewResolver(tokens *TokenManager, provider Provider, memberships *MembershipCache, logger *zap.Logger) *Resolver {
	return &Resolver{tokens: tokens, provider: provider, memberships: memberships, logger: logger}
}

// Resolve verifies the token and produces the request identity.
func (r *Resolver) Resolve(ctx context.Context, token string) (domain.Identity, error) {
	if token == "" {
		return domain.Identity{}, apperrors.NewUnauthenticated("missing token")
	}

	claims, err := r.tokens.ParseToken(token)
	if err != nil {
		return domain.Identity{}, apperrors.NewUnauthenticated("invalid token")
	}
	subject := claims.RegisteredClaims.Subject
	if subject == "" {
		return domain.Identity{}, apperrors.NewUnauthenticated("invalid token")
	}

	identity := domain.Identity{
		Subject:     subject,
		DisplayName: claims.Name,
		AvatarURL:   claims.AvatarURL,
	}
	if identity.DisplayName == "" {
		identity.DisplayName = fallbackDisplayName
	}

	if claims.OrganizationID != nil && *claims.OrganizationID != "" {
		org := *claims.OrganizationID
		identity.OrganizationID = &org
		return identity, nil
	}

	identity.OrganizationID = r.lookupOrganization(ctx, subject)
	return identity, nil
}

// lookupOrganization consults the membership cache, then the provider.
// Any failure is absorbed: the identity simply has no organization.
func (r *Resolver) lookupOrganization(ctx context.Context, subjectID string) *string {
	if r.memberships != nil {
		org, found, err := r.memberships.Get(ctx, subjectID)
		if err != nil {
			r.logger.Warn("membership cache read failed", zap.String("subject", subjectID), zap.Error(err))
		} else if found {
			return org
		}
	}

	if r.provider == nil {
		return nil
	}

	org, err := r.provider.GetOrganizationMembership(ctx, subjectID)
	if err != nil {
		r.logger.Warn("membership lookup failed", zap.String("subject", subjectID), zap.Error(err))
		return nil
	}

	if r.memberships != nil {
		if err := r.memberships.Set(ctx, subjectID, org); err != nil {
			r.logger.Warn("membership cache write failed", zap.String("subject", subjectID), zap.Error(err))
		}
	}
	return org
}
