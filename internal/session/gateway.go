// Package session admits identities into live collaboration sessions.
package session

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/spec-kit/collab-access/internal/access"
	"github.com/spec-kit/collab-access/internal/directory"
	"github.com/spec-kit/collab-access/internal/domain"
	"github.com/spec-kit/collab-access/internal/observability"
	"github.com/spec-kit/collab-access/internal/repository"
	apperrors "github.com/spec-kit/collab-access/pkg/util"
)

// Gateway re-runs the access verdict for a document and, when admitted,
// mints the session credential. It mutates nothing: not the document, not
// the directory cache.
type Gateway struct {
	docs        repository.DocumentRepository
	credentials *CredentialIssuer
	metrics     *observability.Metrics
	logger      *zap.Logger
}

// NewGateway constructs the gateway.
func NewGateway(docs repository.DocumentRepository, credentials *CredentialIssuer, metrics *observability.Metrics, logger *zap.Logger) *Gateway {
	return &Gateway{docs: docs, credentials: credentials, metrics: metrics, logger: logger}
}

// Admit decides session admission for one (identity, document) pair.
// NotFound and Forbidden are terminal for this identity and target; store
// failures are retryable by the caller.
func (g *Gateway) Admit(ctx context.Context, id domain.Identity, documentID string) (*domain.SessionCredential, error) {
	if documentID == "" {
		return nil, apperrors.NewInvalid("document_id required")
	}

	doc, err := g.docs.GetByID(ctx, documentID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("document")
		}
		return nil, apperrors.NewUpstreamUnavailable(err)
	}

	verdict := access.CanAccess(id, doc)
	g.metrics.RecordAdmission(string(verdict.Reason))
	if !verdict.Allow {
		g.logger.Info("session admission denied",
			zap.String("subject", id.Subject),
			zap.String("document", doc.ID),
		)
		return nil, apperrors.NewForbidden()
	}

	info := domain.SessionUserInfo{
		DisplayName:   id.DisplayName,
		AvatarURL:     id.AvatarURL,
		PresenceColor: directory.PresenceColor(id.DisplayName),
	}

	cred, err := g.credentials.Issue(id.Subject, doc.ID, info)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	return cred, nil
}
