package middleware

import (
	"context"
	"fmt"
	"time"

	"steampool/internal/dispatch"

	"go.uber.org/zap"
)

// Logging creates middleware that logs every update with its duration
func Logging(logger *zap.Logger) dispatch.Middleware {
	return func(next dispatch.HandlerFunc) dispatch.HandlerFunc {
		return func(ctx context.Context, u *dispatch.Update) error {
			start := time.Now()
			err := next(ctx, u)

			fields := []zap.Field{
				zap.String("request_id", u.ID),
				zap.Int64("user_id", u.UserID),
				zap.String("username", u.Username),
				zap.Stringer("kind", u.Kind),
				zap.Duration("elapsed", time.Since(start)),
			}
			switch u.Kind {
			case dispatch.KindCommand:
				fields = append(fields, zap.String("command", u.Command))
			case dispatch.KindCallback:
				fields = append(fields, zap.String("key", u.Key), zap.String("payload", u.Payload))
			}

			if err != nil {
				logger.Error("Update failed", append(fields, zap.Error(err))...)
				return err
			}
			logger.Info("Update handled", fields...)
			return nil
		}
	}
}

// Recover creates middleware that turns a handler panic into an error
func Recover(logger *zap.Logger) dispatch.Middleware {
	return func(next dispatch.HandlerFunc) dispatch.HandlerFunc {
		return func(ctx context.Context, u *dispatch.Update) (err error) {
			defer func() {
				if rec := recover(); rec != nil {
					logger.Error("Recovered from panic",
						zap.String("request_id", u.ID),
						zap.Int64("user_id", u.UserID),
						zap.Any("panic", rec),
						zap.Stack("stack"),
					)
					err = fmt.Errorf("panic: %v", rec)
				}
			}()
			return next(ctx, u)
		}
	}
}
