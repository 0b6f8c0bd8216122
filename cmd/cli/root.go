package cli

import (
	"fmt"
	"os"

	"github.com/qiniu-ai/flowbaker-qiniu/internal/config"
	"github.com/qiniu-ai/flowbaker-qiniu/internal/initialization"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

func NewRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "qiniu-node",
		Short: "Qiniu AI workflow node",
		Long: `qiniu-node runs Qiniu AI operations (chat, image, video, agent, audio and tools) as a
workflow node, either once from the command line or as an HTTP service.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return setupLogging(cmd)
		},
	}

	rootCmd.PersistentFlags().Bool("debug", false, "Enable debug logging")
	rootCmd.PersistentFlags().String("log-format", "console", "Log format: console or json")
	rootCmd.PersistentFlags().String("config", "", "Path to the config file (default qiniu_node.yaml)")

	rootCmd.AddCommand(NewServeCommand())
	rootCmd.AddCommand(NewRunCommand())
	rootCmd.AddCommand(NewSchemaCommand())
	rootCmd.AddCommand(NewStatusCommand())
	rootCmd.AddCommand(NewKeysCommand())
	rootCmd.AddCommand(NewVersionCommand())

	return rootCmd
}

// Execute runs the root command
func Execute() {
	if err := NewRootCommand().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func setupLogging(cmd *cobra.Command) error {
	debug, _ := cmd.Flags().GetBool("debug")
	format, _ := cmd.Flags().GetString("log-format")

	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	if debug {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}

	switch format {
	case "console":
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	case "json":
		log.Logger = zerolog.New(os.Stderr).With().Timestamp().Logger()
	default:
		return fmt.Errorf("unsupported log format %q", format)
	}

	return nil
}

func loadContainer(cmd *cobra.Command, requireAPIKey bool) (*initialization.ExecutorContainer, error) {
	configFile, _ := cmd.Flags().GetString("config")

	cfg, err := config.Load(config.LoadOpts{
		ConfigFile:    configFile,
		RequireAPIKey: requireAPIKey,
	})
	if err != nil {
		return nil, err
	}

	return initialization.NewExecutorContainer(cfg), nil
}
