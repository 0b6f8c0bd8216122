package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/qiniu-ai/flowbaker-qiniu/internal/initialization"
	nodeexecutor "github.com/qiniu-ai/flowbaker-qiniu/pkg/clients/node-executor"
	"github.com/qiniu-ai/flowbaker-qiniu/pkg/domain"
	"github.com/qiniu-ai/flowbaker-qiniu/pkg/domain/executor"

	"github.com/rs/xid"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

type runOptions struct {
	action         string
	settings       string
	items          string
	credentialID   string
	outDir         string
	remote         string
	signingKey     string
	continueOnFail bool
}

func NewRunCommand() *cobra.Command {
	var opts runOptions

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run one node call and print its results",
		Long: `Run one node call. Settings and items are JSON, given inline or as @path.
Attachments in the results are written to --out when it is set.`,
		Example: `  qiniu-node run --action chat:complete --settings '{"prompt":"Hello"}'
  qiniu-node run --settings @image.json --out ./images
  qiniu-node run --remote http://localhost:8081 --settings @video.json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runNode(cmd, opts)
		},
	}

	cmd.Flags().StringVar(&opts.action, "action", "", "Action as resource:operation, used when settings carry no resource/operation")
	cmd.Flags().StringVar(&opts.settings, "settings", "{}", "Node settings as JSON or @file")
	cmd.Flags().StringVar(&opts.items, "items", "", "Input items as JSON or @file (default: one empty item)")
	cmd.Flags().StringVar(&opts.credentialID, "credential", "", "Credential id (default: QINIU_AI_API_KEY)")
	cmd.Flags().StringVar(&opts.outDir, "out", "", "Directory to write result attachments to")
	cmd.Flags().StringVar(&opts.remote, "remote", "", "Run against a qiniu-node service at this URL")
	cmd.Flags().StringVar(&opts.signingKey, "signing-key", os.Getenv("API_SIGNING_PRIVATE_KEY"), "Ed25519 private key for signing remote requests")
	cmd.Flags().BoolVar(&opts.continueOnFail, "continue-on-fail", false, "Record item failures in the results instead of stopping")

	return cmd
}

func runNode(cmd *cobra.Command, opts runOptions) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	settings := map[string]any{}
	if err := readJSONArg(opts.settings, &settings); err != nil {
		return fmt.Errorf("invalid --settings: %w", err)
	}

	items := []domain.ExecutionItem{{JSON: map[string]any{}}}
	if opts.items != "" {
		if err := readJSONArg(opts.items, &items); err != nil {
			return fmt.Errorf("invalid --items: %w", err)
		}
	}

	var (
		results []domain.NodeResult
		runErr  error
	)

	if opts.remote != "" {
		results, runErr = runRemote(ctx, opts, settings, items)
	} else {
		results, runErr = runLocal(ctx, cmd, opts, settings, items)
	}

	if results != nil {
		if err := writeResults(cmd.OutOrStdout(), results, opts.outDir); err != nil {
			return err
		}
	}

	return runErr
}

func runLocal(ctx context.Context, cmd *cobra.Command, opts runOptions, settings map[string]any, items []domain.ExecutionItem) ([]domain.NodeResult, error) {
	container, err := loadContainer(cmd, false)
	if err != nil {
		return nil, err
	}

	deps, err := container.BuildExecutorDependencies(initialization.ExecutorDependencyConfig{})
	if err != nil {
		return nil, err
	}

	result, err := deps.NodeExecutorService.Execute(ctx, executor.ExecuteParams{
		IntegrationType: domain.IntegrationType_QiniuAI,
		CredentialID:    opts.credentialID,
		ActionType:      domain.IntegrationActionType(opts.action),
		Items:           items,
		Settings:        settings,
		ContinueOnFail:  opts.continueOnFail,
	})

	log.Debug().
		Str("execution_id", result.ExecutionID).
		Dur("duration", result.Duration).
		Int("results", len(result.Results)).
		Msg("Execution finished")

	return result.Results, err
}

func runRemote(ctx context.Context, opts runOptions, settings map[string]any, items []domain.ExecutionItem) ([]domain.NodeResult, error) {
	clientOptions := []nodeexecutor.ClientOption{nodeexecutor.WithBaseURL(opts.remote)}
	if opts.signingKey != "" {
		clientOptions = append(clientOptions, nodeexecutor.WithSigningKey(opts.signingKey))
	}

	client, err := nodeexecutor.NewClient(clientOptions...)
	if err != nil {
		return nil, err
	}

	resp, err := client.Execute(ctx, &nodeexecutor.ExecuteRequest{
		IntegrationType: domain.IntegrationType_QiniuAI,
		CredentialID:    opts.credentialID,
		ActionType:      domain.IntegrationActionType(opts.action),
		Items:           items,
		Settings:        settings,
		ContinueOnFail:  opts.continueOnFail,
	})
	if resp == nil {
		return nil, err
	}

	log.Debug().
		Str("execution_id", resp.ExecutionID).
		Int64("duration_ms", resp.DurationMs).
		Int("results", len(resp.Results)).
		Msg("Remote execution finished")

	return resp.Results, err
}

// writeResults prints results as indented JSON. With outDir set, attachment bytes are
// saved to files named by a fresh id and dropped from the printed output.
func writeResults(w io.Writer, results []domain.NodeResult, outDir string) error {
	if outDir != "" {
		if err := os.MkdirAll(outDir, 0o755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}

		for i := range results {
			for key, binary := range results[i].Binary {
				path, err := saveBinary(outDir, binary)
				if err != nil {
					return err
				}

				log.Info().Int("item", i).Str("property", key).Str("path", path).Msg("Saved attachment")

				binary.Data = nil
				binary.FileName = filepath.Base(path)
				results[i].Binary[key] = binary
			}
		}
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")

	return encoder.Encode(results)
}

func saveBinary(outDir string, binary domain.BinaryData) (string, error) {
	name := xid.New().String()
	if binary.FileExtension != "" {
		name += "." + binary.FileExtension
	}

	path := filepath.Join(outDir, name)

	if err := os.WriteFile(path, binary.Data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write attachment: %w", err)
	}

	return path, nil
}

// readJSONArg decodes value, or the file it names when prefixed with @.
func readJSONArg(value string, target any) error {
	data := []byte(value)

	if path, ok := strings.CutPrefix(value, "@"); ok {
		contents, err := os.ReadFile(path)
		if err != nil {
			return err
		}

		data = contents
	}

	return json.Unmarshal(data, target)
}
