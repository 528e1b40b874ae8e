package session

import (
	"errors"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"

	"github.com/spec-kit/collab-access/internal/domain"
)

// CredentialIssuer mints the short-lived signed tokens the collaboration
// transport accepts. The transport re-invokes admission whenever it needs
// a fresh credential; this service does not manage renewal.
type CredentialIssuer struct {
	secret []byte
	ttl    time.Duration
}

// NewCredentialIssuer builds an issuer.
func NewCredentialIssuer(secret string, ttl time.Duration) *CredentialIssuer {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &CredentialIssuer{secret: []byte(secret), ttl: ttl}
}

// CredentialClaims is the signed credential payload.
type CredentialClaims struct {
	DocumentID string                   `json:"doc"`
	Capability domain.SessionCapability `json:"cap"`
	UserInfo   domain.SessionUserInfo   `json:"user_info"`
	jwt.RegisteredClaims
}

// Issue mints a credential admitting the subject into exactly one
// document's session with full access.
func (ci *CredentialIssuer) Issue(subjectID, documentID string, info domain.SessionUserInfo) (*domain.SessionCredential, error) {
	expiresAt := time.Now().Add(ci.ttl)
	claims := &CredentialClaims{
		DocumentID: documentID,
		Capability: domain.CapabilityFullAccess,
		UserInfo:   info,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subjectID,
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(ci.secret)
	if err != nil {
		return nil, err
	}

	return &domain.SessionCredential{
		SubjectID:  subjectID,
		DocumentID: documentID,
		UserInfo:   info,
		Capability: domain.CapabilityFullAccess,
		Token:      token,
		ExpiresAt:  expiresAt,
	}, nil
}

// Parse validates a credential token and returns its claims.
func (ci *CredentialIssuer) Parse(tokenStr string) (*CredentialClaims, error) {
	parsed, err := jwt.ParseWithClaims(tokenStr, &CredentialClaims{}, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, errors.New("unexpected signing method")
		}
		return ci.secret, nil
	})
	if err != nil {
		return nil, err
	}

	claims, ok := parsed.Claims.(*CredentialClaims)
	if !ok || !parsed.Valid {
		return nil, errors.New("invalid credential claims")
	}
	return claims, nil
}
