package server

import (
	"time"

	"github.com/qiniu-ai/flowbaker-qiniu/internal/auth"
	"github.com/qiniu-ai/flowbaker-qiniu/internal/controllers"
	"github.com/qiniu-ai/flowbaker-qiniu/internal/middlewares"
	"github.com/qiniu-ai/flowbaker-qiniu/internal/version"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/cors"
	"github.com/gofiber/fiber/v3/middleware/logger"
	"github.com/rs/zerolog/log"
)

const serviceName = "qiniu-node"

type HTTPServerDependencies struct {
	ExecutorController *controllers.ExecutorController
	// SignatureVerifier guards the execution routes. Nil disables the check.
	SignatureVerifier *auth.APISignatureVerifier
	// BodyLimit caps request bodies, which carry base64 attachments.
	BodyLimit int
}

func NewHTTPServer(deps HTTPServerDependencies) *fiber.App {
	bodyLimit := deps.BodyLimit
	if bodyLimit <= 0 {
		bodyLimit = 64 * 1024 * 1024
	}

	router := fiber.New(fiber.Config{
		AppName:   serviceName,
		BodyLimit: bodyLimit,
	})

	router.Use(cors.New())
	router.Use(logger.New())

	router.Get("/health", func(c fiber.Ctx) error {
		return c.Status(fiber.StatusOK).JSON(fiber.Map{
			"status":    "healthy",
			"service":   serviceName,
			"version":   version.GetVersion(),
			"timestamp": time.Now().UTC().Format(time.RFC3339),
		})
	})

	router.Get("/schema", deps.ExecutorController.GetSchema)

	if deps.SignatureVerifier == nil {
		log.Warn().Msg("API_SIGNING_PUBLIC_KEY is not set, execution routes accept unsigned requests")
	}

	signature := middlewares.APISignatureMiddleware(deps.SignatureVerifier)

	router.Post("/executions", signature, deps.ExecutorController.StartExecution)
	router.Post("/connection-test", signature, deps.ExecutorController.TestConnection)

	return router
}
