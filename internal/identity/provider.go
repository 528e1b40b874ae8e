package identity

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/spec-kit/collab-access/internal/config"
)

// Member is a user record returned by the identity provider.
type Member struct {
	SubjectID   string `json:"subject_id"`
	DisplayName string `json:"display_name"`
	AvatarURL   string `json:"avatar_url"`
}

// Provider exposes the identity provider's membership records.
type Provider interface {
	// GetOrganizationMembership returns the subject's current organization
	// id, or nil when the subject belongs to none.
	GetOrganizationMembership(ctx context.Context, subjectID string) (*string, error)
	// GetOrganizationMembers returns the members of an organization.
	GetOrganizationMembers(ctx context.Context, organizationID string) ([]Member, error)
}

// HTTPProvider talks to the identity provider's REST API. Transient
// failures are retried a few times with exponential backoff before being
// reported to the caller.
type HTTPProvider struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

// NewHTTPProvider builds a client from configuration.
func NewHTTPProvider(cfg config.ProviderConfig) *HTTPProvider {
	timeout := time.Duration(cfg.RequestTimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &HTTPProvider{
		baseURL: cfg.BaseURL,
		apiKey:  cfg.APIKey,
		client:  &http.Client{Timeout: timeout},
	}
}

type membershipResponse struct {
	OrganizationID *string `json:"organization_id"`
}

type membersResponse struct {
	Members []Member `json:"members"`
}

// GetOrganizationMembership implements Provider.
func (p *HTTPProvider) GetOrganizationMembership(ctx context.Context, subjectID string) (*string, error) {
	var resp membershipResponse
	url := fmt.Sprintf("%s/users/%s/organization", p.baseURL, subjectID)
	if err := p.getJSON(ctx, url, &resp); err != nil {
		return nil, err
	}
	return resp.OrganizationID, nil
}

// GetOrganizationMembers implements Provider.
func (p *HTTPProvider) GetOrganizationMembers(ctx context.Context, organizationID string) ([]Member, error) {
	var resp membersResponse
	url := fmt.Sprintf("%s/organizations/%s/members", p.baseURL, organizationID)
	if err := p.getJSON(ctx, url, &resp); err != nil {
		return nil, err
	}
	return resp.Members, nil
}

func (p *HTTPProvider) getJSON(ctx context.Context, url string, out any) error {
	policy := backoff.WithContext(backoff.WithMaxRetries(backoff.NewExponentialBackOff(), 3), ctx)

	return backoff.Retry(func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return backoff.Permanent(err)
		}
		if p.apiKey != "" {
			req.Header.Set("Authorization", "Bearer "+p.apiKey)
		}

		resp, err := p.client.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()

		switch {
		case resp.StatusCode == http.StatusNotFound:
			return backoff.Permanent(fmt.Errorf("identity provider: %s: not found", url))
		case resp.StatusCode >= 500:
			return fmt.Errorf("identity provider: %s: status %d", url, resp.StatusCode)
		case resp.StatusCode != http.StatusOK:
			return backoff.Permanent(fmt.Errorf("identity provider: %s: status %d", url, resp.StatusCode))
		}

		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return backoff.Permanent(fmt.Errorf("identity provider: decode %s: %w", url, err))
		}
		return nil
	}, policy)
}
