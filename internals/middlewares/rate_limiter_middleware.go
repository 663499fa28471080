package middlewares

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"

	helper "admissions_backend/internals/helpers"
)

func newLimiter(max int, window time.Duration, msg string) fiber.Handler {
	return limiter.New(limiter.Config{
		Max:        max,
		Expiration: window,
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return helper.JsonError(c, fiber.StatusTooManyRequests, msg)
		},
	})
}

// Global limiter for every endpoint.
func GlobalRateLimiter() fiber.Handler {
	return newLimiter(300, time.Minute, "Too many requests. Please try again later.")
}

func LoginRateLimiter() fiber.Handler {
	return newLimiter(5, time.Minute, "Too many login attempts. Try again in a minute.")
}

// OTPRateLimiter guards the fee confirmation OTP sender.
func OTPRateLimiter() fiber.Handler {
	return newLimiter(3, 5*time.Minute, "Too many OTP requests. Wait a few minutes.")
}

// PublicFormRateLimiter throttles the website enquiry form.
func PublicFormRateLimiter() fiber.Handler {
	return newLimiter(10, 10*time.Minute, "Too many submissions. Please try again later.")
}
