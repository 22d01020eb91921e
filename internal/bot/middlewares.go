package bot

import (
	"context"
	"fmt"
	"log/slog"
	"runtime/debug"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/google/uuid"

	"github.com/aurum-community/aurum-bot/internal/bot/handlers"
	apperrors "github.com/aurum-community/aurum-bot/internal/errors"
	"github.com/aurum-community/aurum-bot/internal/ratelimit"
	"github.com/aurum-community/aurum-bot/pkg/config"
	"github.com/aurum-community/aurum-bot/pkg/logger"
	"github.com/aurum-community/aurum-bot/pkg/metrics"
)

// RecoveryMiddleware catches panics, reports them via the centralized handler, and notifies the user.
func RecoveryMiddleware(log *slog.Logger, errHandler *apperrors.Handler) handlers.Middleware {
	if log == nil {
		log = slog.Default()
	}

	return func(next handlers.Handler) handlers.Handler {
		return func(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate) (err error) {
			defer func() {
				if r := recover(); r != nil {
					log.Error("panic recovered in handler",
						slog.Any("panic", r),
						slog.String("stack", string(debug.Stack())),
					)

					userMsg := "Something went wrong. Please try again later."
					if errHandler != nil {
						panicErr := apperrors.NewStoreUnavailableError(fmt.Errorf("panic recovered: %v", r))
						if msg, _ := errHandler.Handle(ctx, panicErr); msg != "" {
							userMsg = msg
						}
					}

					if sendErr := handlers.Respond(s, i, userMsg, true); sendErr != nil {
						log.Error("failed to notify user about panic", slog.Any("error", sendErr))
					}

					err = nil
				}
			}()

			return next(ctx, s, i)
		}
	}
}

// ErrorHandlingMiddleware centralizes error reporting and user messaging for handler failures.
func ErrorHandlingMiddleware(errHandler *apperrors.Handler) handlers.Middleware {
	return func(next handlers.Handler) handlers.Handler {
		return func(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate) error {
			err := next(ctx, s, i)
			if err == nil {
				return nil
			}

			userMsg := "Something went wrong. Please try again later."
			if errHandler != nil {
				if msg, _ := errHandler.Handle(ctx, err); msg != "" {
					userMsg = msg
				}
			}

			_ = handlers.Respond(s, i, userMsg, true)

			return nil
		}
	}
}

// LoggingMiddleware logs basic telemetry about incoming interactions and
// stamps each one with a correlation ID.
func LoggingMiddleware(log *slog.Logger) handlers.Middleware {
	if log == nil {
		log = slog.Default()
	}

	return func(next handlers.Handler) handlers.Handler {
		return func(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate) error {
			start := time.Now()
			ctx = logger.WithCorrelationID(ctx, uuid.NewString())

			command := i.ApplicationCommandData().Name
			userID := handlers.SenderID(i)

			log.Info("handling command",
				slog.String("command", command),
				slog.String("user_id", userID),
				slog.String("correlation_id", logger.CorrelationIDFromContext(ctx)),
			)

			err := next(ctx, s, i)

			log.Info("handled command",
				slog.String("command", command),
				slog.String("user_id", userID),
				slog.Duration("duration", time.Since(start)),
				slog.Any("error", err),
			)

			return err
		}
	}
}

// MetricsMiddleware measures execution time and status for command handlers.
func MetricsMiddleware(next handlers.Handler) handlers.Handler {
	return func(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate) error {
		start := time.Now()
		err := next(ctx, s, i)

		status := "ok"
		if err != nil {
			status = "error"
		}

		metrics.RecordCommand(i.ApplicationCommandData().Name, status, time.Since(start))

		return err
	}
}

// RateLimitMiddleware enforces per-user limits on slash commands.
func RateLimitMiddleware(limiter ratelimit.Limiter, cfg config.RateLimitConfig, log *slog.Logger) handlers.Middleware {
	if log == nil {
		log = slog.Default()
	}

	return func(next handlers.Handler) handlers.Handler {
		return func(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate) error {
			if limiter == nil {
				return next(ctx, s, i)
			}

			userID := handlers.SenderID(i)
			if userID == "" || cfg.IsWhitelisted(userID) {
				return next(ctx, s, i)
			}

			limit, window, err := cfg.PerUserLimit()
			if err != nil {
				log.Error("failed to load per-user rate limit", slog.Any("error", err))
				return next(ctx, s, i)
			}

			result, err := limiter.Check(ctx, "user:"+userID, limit, window)
			if err != nil && result == nil {
				log.Warn("rate limiter error", slog.String("user_id", userID), slog.Any("error", err))
				return next(ctx, s, i)
			}

			if !result.Allowed {
				retryAfter := int(time.Until(result.ResetAt).Seconds()) + 1
				log.Warn("rate limit exceeded", slog.String("user_id", userID))
				return handlers.Respond(s, i, apperrors.NewRateLimitError(retryAfter).UserMessage, true)
			}

			return next(ctx, s, i)
		}
	}
}
