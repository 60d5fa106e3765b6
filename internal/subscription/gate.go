// Package subscription decides whether a user may use the bot, based on
// their membership in the required channel.
package subscription

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
)

// DefaultTTL is how long a membership answer is trusted
const DefaultTTL = 15 * time.Minute

// MembershipChecker asks the chat platform whether a user is a channel member
type MembershipChecker interface {
	IsMember(ctx context.Context, userID int64) (bool, error)
}

// Gate answers membership questions from a cache, refreshing stale entries
type Gate struct {
	checker MembershipChecker
	store   Store
	ttl     time.Duration
	now     func() time.Time
	logger  *zap.Logger
}

// GateOption configures a Gate
type GateOption func(*Gate)

// WithTTL overrides DefaultTTL
func WithTTL(ttl time.Duration) GateOption {
	return func(g *Gate) {
		if ttl > 0 {
			g.ttl = ttl
		}
	}
}

// WithClock overrides the time source
func WithClock(now func() time.Time) GateOption {
	return func(g *Gate) {
		g.now = now
	}
}

// NewGate creates a new gate
func NewGate(checker MembershipChecker, store Store, logger *zap.Logger, opts ...GateOption) *Gate {
	g := &Gate{
		checker: checker,
		store:   store,
		ttl:     DefaultTTL,
		now:     time.Now,
		logger:  logger,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// TTL returns the cache lifetime
func (g *Gate) TTL() time.Duration {
	return g.ttl
}

// IsAllowed reports whether the user is subscribed, refreshing the cached
// answer when it is missing or older than the TTL. Failures answer false.
func (g *Gate) IsAllowed(ctx context.Context, userID int64) bool {
	entry, err := g.store.Get(ctx, userID)
	if err == nil && g.now().Sub(entry.CheckedAt) < g.ttl {
		return entry.Subscribed
	}
	if err != nil && !errors.Is(err, ErrCacheMiss) {
		g.logger.Warn("Failed to read subscription cache",
			zap.Int64("user_id", userID),
			zap.Error(err),
		)
	}

	return g.Refresh(ctx, userID)
}

// Refresh queries membership, bypassing the cache, and stores the answer
func (g *Gate) Refresh(ctx context.Context, userID int64) bool {
	subscribed, err := g.checker.IsMember(ctx, userID)
	if err != nil {
		g.logger.Warn("Failed to check channel membership",
			zap.Int64("user_id", userID),
			zap.Error(err),
		)
		subscribed = false
	}

	entry := Entry{UserID: userID, Subscribed: subscribed, CheckedAt: g.now()}
	if err := g.store.Put(ctx, entry); err != nil {
		g.logger.Warn("Failed to write subscription cache",
			zap.Int64("user_id", userID),
			zap.Error(err),
		)
	}

	g.logger.Debug("Subscription refreshed",
		zap.Int64("user_id", userID),
		zap.Bool("subscribed", subscribed),
	)

	return subscribed
}
