package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/qiniu-ai/flowbaker-qiniu/internal/initialization"
	"github.com/qiniu-ai/flowbaker-qiniu/internal/server"
	"github.com/qiniu-ai/flowbaker-qiniu/internal/version"

	"github.com/gofiber/fiber/v3"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

func NewServeCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve node executions over HTTP",
		Long: `Start the HTTP service. The host platform posts node calls to /executions and
reads the node description from /schema.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			container, err := loadContainer(cmd, true)
			if err != nil {
				return err
			}

			address, _ := cmd.Flags().GetString("address")
			if address != "" {
				container.GetConfig().HTTPAddress = address
			}

			return runServe(cmd.Context(), container)
		},
	}

	cmd.Flags().String("address", "", "Listen address (overrides HTTP_ADDRESS)")

	return cmd
}

func runServe(ctx context.Context, container *initialization.ExecutorContainer) error {
	if ctx == nil {
		ctx = context.Background()
	}

	ctx, cancel := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	cfg := container.GetConfig()

	deps, err := container.BuildExecutorDependencies(initialization.ExecutorDependencyConfig{})
	if err != nil {
		return err
	}

	app := server.NewHTTPServer(server.HTTPServerDependencies{
		ExecutorController: deps.ExecutorController,
		SignatureVerifier:  deps.SignatureVerifier,
	})

	log.Info().
		Str("address", cfg.HTTPAddress).
		Str("version", version.GetVersion()).
		Str("executor_id", cfg.ExecutorID).
		Msg("Starting qiniu-node service")

	if err := app.Listen(cfg.HTTPAddress, fiber.ListenConfig{
		GracefulContext:       ctx,
		DisableStartupMessage: true,
	}); err != nil {
		log.Error().Err(err).Msg("HTTP server failed")
		return err
	}

	log.Info().Msg("qiniu-node service stopped")

	return nil
}
