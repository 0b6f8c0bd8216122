package cli

import (
	"fmt"
	"time"

	"github.com/qiniu-ai/flowbaker-qiniu/internal/initialization"

	"github.com/spf13/cobra"
)

func NewKeysCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "keys",
		Short: "Manage request signing and credential encryption keys",
	}

	cmd.AddCommand(newKeysGenerateCommand())
	cmd.AddCommand(newKeysSealCommand())

	return cmd
}

func newKeysGenerateCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate an executor id and its key pairs",
		Long: `Generate an X25519 pair for sealed credentials and an Ed25519 pair for signed requests.
Keep the private halves with this node; the public halves go to the host platform.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			executorID, _ := cmd.Flags().GetString("executor-id")

			keys, err := initialization.GenerateAllKeys(executorID)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()

			fmt.Fprintln(out, "# Node environment")
			fmt.Fprintf(out, "EXECUTOR_ID=%s\n", keys.ExecutorID)
			fmt.Fprintf(out, "EXECUTOR_X25519_PRIVATE_KEY=%s\n", keys.X25519Private)
			fmt.Fprintf(out, "API_SIGNING_PUBLIC_KEY=%s\n", keys.Ed25519Public)
			fmt.Fprintln(out)
			fmt.Fprintln(out, "# Host platform")
			fmt.Fprintf(out, "EXECUTOR_X25519_PUBLIC_KEY=%s\n", keys.X25519Public)
			fmt.Fprintf(out, "API_SIGNING_PRIVATE_KEY=%s\n", keys.Ed25519Private)

			return nil
		},
	}

	cmd.Flags().String("executor-id", "", "Executor id (generated when empty)")

	return cmd
}

func newKeysSealCommand() *cobra.Command {
	var (
		credential string
		publicKey  string
		executorID string
		ttl        time.Duration
	)

	cmd := &cobra.Command{
		Use:   "seal <credential-id>",
		Short: "Encrypt a credential for a node",
		Long: `Encrypt a credential payload for the node holding the matching X25519 private key and
print a config snippet to place under credentials.`,
		Example: `  qiniu-node keys seal prod --credential '{"api_key":"sk-..."}' --public-key $EXECUTOR_X25519_PUBLIC_KEY --executor-id $EXECUTOR_ID`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			payload := map[string]any{}
			if err := readJSONArg(credential, &payload); err != nil {
				return fmt.Errorf("invalid --credential: %w", err)
			}

			sealed, err := initialization.SealCredential(initialization.SealCredentialParams{
				Credential:      payload,
				X25519PublicKey: publicKey,
				ExecutorID:      executorID,
				TTL:             ttl,
			})
			if err != nil {
				return err
			}

			return writeYAML(cmd.OutOrStdout(), map[string]any{
				"credentials": map[string]any{
					args[0]: sealed,
				},
			})
		},
	}

	cmd.Flags().StringVar(&credential, "credential", "", "Credential payload as JSON or @file")
	cmd.Flags().StringVar(&publicKey, "public-key", "", "Node X25519 public key")
	cmd.Flags().StringVar(&executorID, "executor-id", "", "Node executor id")
	cmd.Flags().DurationVar(&ttl, "ttl", 0, "Expire the sealed credential after this long (0 never expires)")

	_ = cmd.MarkFlagRequired("credential")
	_ = cmd.MarkFlagRequired("public-key")
	_ = cmd.MarkFlagRequired("executor-id")

	return cmd
}
