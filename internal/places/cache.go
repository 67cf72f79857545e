package places

import (
	"context"
	"time"

	"pantryscout-discovery/internal/model"
)

// Cache stores a places search's candidate set under its fingerprint
// for the configured TTL. Implementations must treat a miss and an
// expired entry identically: Get returns ok=false for both.
type Cache interface {
	Get(ctx context.Context, fingerprint string) (model.CandidateSet, bool, error)
	Set(ctx context.Context, set model.CandidateSet, ttl time.Duration) error
}
