package http

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"

	"github.com/campuscare/complaint-service/internal/auth"
	"github.com/campuscare/complaint-service/internal/config"
	apperrors "github.com/campuscare/complaint-service/pkg/util"
)

const submissionWindow = 24 * time.Hour

// SubmissionRateLimiter caps complaint submissions per user per day using a
// Redis counter with a TTL set on the first increment. A zero limit disables
// the limiter entirely.
func SubmissionRateLimiter(client *redis.Client, cfg config.RateLimitConfig) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if cfg.DailySubmissions <= 0 || client == nil {
			return c.Next()
		}
		principal, ok := auth.PrincipalFromContext(c)
		if !ok {
			return apperrors.NewUnauthorized("authentication required")
		}

		ctx := c.UserContext()
		key := cfg.KeyPrefix + ":" + principal.ID

		count, err := client.Incr(ctx, key).Result()
		if err != nil {
			// Redis failures never block submissions.
			return c.Next()
		}
		if count == 1 {
			_ = client.Expire(ctx, key, submissionWindow).Err()
		}

		if count > int64(cfg.DailySubmissions) {
			retryAfter, _ := client.TTL(ctx, key).Result()
			return apperrors.NewDomainError(
				"RATE_LIMITED",
				"daily submission limit exceeded",
				fiber.StatusTooManyRequests,
				map[string]any{"retry_after_seconds": int64(retryAfter.Seconds())},
			)
		}

		return c.Next()
	}
}
