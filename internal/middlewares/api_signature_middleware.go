package middlewares

import (
	"github.com/qiniu-ai/flowbaker-qiniu/internal/auth"

	"github.com/gofiber/fiber/v3"
	"github.com/rs/zerolog/log"
)

// APISignatureMiddleware rejects requests whose ed25519 signature does not cover the
// method, path, timestamp and body. A nil verifier lets every request through.
func APISignatureMiddleware(verifier *auth.APISignatureVerifier) fiber.Handler {
	return func(c fiber.Ctx) error {
		if verifier == nil {
			return c.Next()
		}

		signatureHeader := c.Get(auth.SignatureHeader)
		timestampHeader := c.Get(auth.TimestampHeader)

		err := verifier.VerifyRequest(
			c.Method(),
			c.Path(),
			signatureHeader,
			timestampHeader,
			c.Body(),
		)
		if err != nil {
			log.Error().
				Err(err).
				Str("path", c.Path()).
				Str("method", c.Method()).
				Str("timestamp", timestampHeader).
				Msg("API signature verification failed")

			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Invalid API signature",
			})
		}

		log.Debug().
			Str("path", c.Path()).
			Str("method", c.Method()).
			Msg("API signature verified successfully")

		return c.Next()
	}
}
