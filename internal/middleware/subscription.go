package middleware

import (
	"context"

	"steampool/internal/dispatch"

	"go.uber.org/zap"
)

// Gate decides whether a user may use the bot
type Gate interface {
	IsAllowed(ctx context.Context, userID int64) bool
}

// Subscription creates middleware that lets only channel members through.
// Callbacks with an exempt key skip the check. Everything else, mid-flow
// text included, is handed to blocked when the gate refuses.
func Subscription(gate Gate, blocked dispatch.HandlerFunc, logger *zap.Logger, exempt ...string) dispatch.Middleware {
	skip := make(map[string]bool, len(exempt))
	for _, key := range exempt {
		skip[key] = true
	}

	return func(next dispatch.HandlerFunc) dispatch.HandlerFunc {
		return func(ctx context.Context, u *dispatch.Update) error {
			if u.Kind == dispatch.KindCallback && skip[u.Key] {
				return next(ctx, u)
			}

			if !gate.IsAllowed(ctx, u.UserID) {
				logger.Info("Blocked update from non-subscriber",
					zap.String("request_id", u.ID),
					zap.Int64("user_id", u.UserID),
					zap.Stringer("kind", u.Kind),
				)
				return blocked(ctx, u)
			}

			return next(ctx, u)
		}
	}
}
