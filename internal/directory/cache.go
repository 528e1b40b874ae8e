// Package directory maintains the cached roster of plausible collaborators
// for presence and mention resolution, so lookups do not hammer the
// identity provider on every keystroke.
package directory

import (
	"context"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/collab-access/internal/domain"
	"github.com/spec-kit/collab-access/internal/identity"
)

// Cache holds per-organization member rosters. Rosters refresh on a fixed
// interval while referenced and can be force-refreshed, subject to a
// minimum gap between two effective upstream fetches. Overlapping refresh
// requests for the same organization collapse into the in-flight one, and
// readers always get the last complete snapshot without blocking on a
// refresh in progress.
type Cache struct {
	provider     identity.Provider
	refreshEvery time.Duration
	minGap       time.Duration
	logger       *zap.Logger
	now          func() time.Time

	mu      sync.Mutex
	rosters map[string]*roster
}

type roster struct {
	mu         sync.Mutex
	members    []domain.Collaborator
	loaded     bool
	referenced bool
	lastFetch  time.Time
	inflight   chan struct{}
}

// NewCache constructs the directory cache.
func NewCache(provider identity.Provider, refreshEvery, minGap time.Duration, logger *zap.Logger) *Cache {
	return &Cache{
		provider:     provider,
		refreshEvery: refreshEvery,
		minGap:       minGap,
		logger:       logger,
		now:          time.Now,
		rosters:      make(map[string]*roster),
	}
}

// Start runs the periodic refresh loop until ctx is canceled. No refresh
// fires after cancellation.
func (c *Cache) Start(ctx context.Context) {
	go func() {
		ticker := time.NewTicker(c.refreshEvery)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				c.refreshAll(ctx)
			}
		}
	}()
}

// refreshAll refreshes rosters read since the previous cycle and evicts
// the rest, so an organization with no active readers stops generating
// upstream traffic.
func (c *Cache) refreshAll(ctx context.Context) {
	c.mu.Lock()
	orgIDs := make([]string, 0, len(c.rosters))
	for orgID, r := range c.rosters {
		r.mu.Lock()
		keep := r.referenced || r.inflight != nil
		r.referenced = false
		r.mu.Unlock()
		if !keep {
			delete(c.rosters, orgID)
			continue
		}
		orgIDs = append(orgIDs, orgID)
	}
	c.mu.Unlock()

	for _, orgID := range orgIDs {
		if err := c.refresh(ctx, orgID); err != nil {
			c.logger.Warn("roster refresh failed; keeping previous snapshot",
				zap.String("organization", orgID), zap.Error(err))
		}
	}
}

// ListCollaborators returns the caller first, then the members of the
// caller's current organization de-duplicated by subject id. Without an
// organization, the roster is just the caller.
func (c *Cache) ListCollaborators(ctx context.Context, id domain.Identity) []domain.Collaborator {
	caller := collaboratorFromIdentity(id)
	out := []domain.Collaborator{caller}
	if !id.InOrganization() {
		return out
	}

	members := c.orgMembers(ctx, *id.OrganizationID)
	seen := map[string]struct{}{caller.ID: {}}
	for _, m := range members {
		if _, dup := seen[m.ID]; dup {
			continue
		}
		seen[m.ID] = struct{}{}
		out = append(out, m)
	}
	return out
}

// ResolveByIDs maps subject ids to collaborator records, one slot per
// input id in input order. An id with no match yields a nil slot; callers
// decide how to render an unresolved entry.
func (c *Cache) ResolveByIDs(ctx context.Context, id domain.Identity, ids []string) []*domain.Collaborator {
	known := c.ListCollaborators(ctx, id)
	byID := make(map[string]domain.Collaborator, len(known))
	for _, collab := range known {
		byID[collab.ID] = collab
	}

	out := make([]*domain.Collaborator, len(ids))
	for i, want := range ids {
		if collab, ok := byID[want]; ok {
			resolved := collab
			out[i] = &resolved
		}
	}
	return out
}

// Suggest returns the subject ids of collaborators whose display name
// contains text, case-insensitively. Empty text matches everyone.
func (c *Cache) Suggest(ctx context.Context, id domain.Identity, text string) []string {
	needle := strings.ToLower(strings.TrimSpace(text))
	out := []string{}
	for _, collab := range c.ListCollaborators(ctx, id) {
		if needle == "" || strings.Contains(strings.ToLower(collab.DisplayName), needle) {
			out = append(out, collab.ID)
		}
	}
	return out
}

// ForceRefresh refreshes the caller's organization roster now, subject to
// the rate limit. Failures keep the previous snapshot in place.
func (c *Cache) ForceRefresh(ctx context.Context, id domain.Identity) {
	if !id.InOrganization() {
		return
	}
	orgID := *id.OrganizationID
	r := c.roster(orgID)
	r.mu.Lock()
	r.referenced = true
	r.mu.Unlock()

	if err := c.refresh(ctx, orgID); err != nil {
		c.logger.Warn("forced roster refresh failed; keeping previous snapshot",
			zap.String("organization", orgID), zap.Error(err))
	}
}

// orgMembers returns the current snapshot, fetching it first if the
// organization has never been loaded. A failed first load yields an empty
// roster rather than an error.
func (c *Cache) orgMembers(ctx context.Context, orgID string) []domain.Collaborator {
	r := c.roster(orgID)

	r.mu.Lock()
	r.referenced = true
	loaded := r.loaded
	r.mu.Unlock()

	if !loaded {
		if err := c.refresh(ctx, orgID); err != nil {
			c.logger.Warn("initial roster load failed",
				zap.String("organization", orgID), zap.Error(err))
		}
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	snapshot := make([]domain.Collaborator, len(r.members))
	copy(snapshot, r.members)
	return snapshot
}

func (c *Cache) roster(orgID string) *roster {
	c.mu.Lock()
	defer c.mu.Unlock()
	r, ok := c.rosters[orgID]
	if !ok {
		r = &roster{}
		c.rosters[orgID] = r
	}
	return r
}

// refresh performs one logical roster fetch. Concurrent requests collapse
// into the in-flight fetch, and requests inside the minimum gap are
// suppressed entirely.
func (c *Cache) refresh(ctx context.Context, orgID string) error {
	if c.provider == nil {
		return nil
	}
	r := c.roster(orgID)

	r.mu.Lock()
	if ch := r.inflight; ch != nil {
		r.mu.Unlock()
		select {
		case <-ch:
		case <-ctx.Done():
			return ctx.Err()
		}
		return nil
	}
	if r.loaded && c.now().Sub(r.lastFetch) < c.minGap {
		r.mu.Unlock()
		return nil
	}
	ch := make(chan struct{})
	r.inflight = ch
	r.lastFetch = c.now()
	r.mu.Unlock()

	members, err := c.provider.GetOrganizationMembers(ctx, orgID)

	r.mu.Lock()
	r.inflight = nil
	if err == nil && ctx.Err() == nil {
		converted := make([]domain.Collaborator, 0, len(members))
		for _, m := range members {
			converted = append(converted, domain.Collaborator{
				ID:            m.SubjectID,
				DisplayName:   m.DisplayName,
				AvatarURL:     m.AvatarURL,
				PresenceColor: PresenceColor(m.DisplayName),
			})
		}
		r.members = converted
		r.loaded = true
	}
	r.mu.Unlock()
	close(ch)

	if err != nil {
		return err
	}
	return ctx.Err()
}

func collaboratorFromIdentity(id domain.Identity) domain.Collaborator {
	return domain.Collaborator{
		ID:            id.Subject,
		DisplayName:   id.DisplayName,
		AvatarURL:     id.AvatarURL,
		PresenceColor: PresenceColor(id.DisplayName),
	}
}
