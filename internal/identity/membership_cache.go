package identity

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

const membershipKeyPrefix = "membership:"

// noMembership marks a cached "subject has no organization" answer so a
// negative lookup does not hit the provider again within the TTL.
const noMembership = "\x00none"

// MembershipCache stores organization membership lookups in Redis with a
// short TTL. It is strictly best-effort: cache errors are reported to the
// caller, who treats them the same as a miss.
type MembershipCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewMembershipCache creates a cache from an existing Redis client.
func NewMembershipCache(client *redis.Client, ttl time.Duration) *MembershipCache {
	if ttl <= 0 {
		ttl = time.Minute
	}
	return &MembershipCache{client: client, ttl: ttl}
}

func (c *MembershipCache) key(subjectID string) string {
	return membershipKeyPrefix + subjectID
}

// Get returns the cached organization id for the subject. The second
// return reports whether an entry (including a cached "none") was present.
func (c *MembershipCache) Get(ctx context.Context, subjectID string) (*string, bool, error) {
	val, err := c.client.Get(ctx, c.key(subjectID)).Result()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	if val == noMembership {
		return nil, true, nil
	}
	return &val, true, nil
}

// Set stores the subject's organization id, or the absence of one.
func (c *MembershipCache) Set(ctx context.Context, subjectID string, organizationID *string) error {
	val := noMembership
	if organizationID != nil {
		val = *organizationID
	}
	return c.client.Set(ctx, c.key(subjectID), val, c.ttl).Err()
}
