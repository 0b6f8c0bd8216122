package cli

import (
	"context"
	"fmt"
	"time"

	nodeexecutor "github.com/qiniu-ai/flowbaker-qiniu/pkg/clients/node-executor"

	"github.com/spf13/cobra"
)

func NewStatusCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show the status of a running qiniu-node service",
		RunE: func(cmd *cobra.Command, args []string) error {
			url, _ := cmd.Flags().GetString("url")
			credentialID, _ := cmd.Flags().GetString("credential")
			signingKey, _ := cmd.Flags().GetString("signing-key")

			return runStatus(cmd, url, credentialID, signingKey)
		},
	}

	cmd.Flags().String("url", "http://localhost:8081", "Service URL")
	cmd.Flags().String("credential", "", "Also test this credential against Qiniu AI")
	cmd.Flags().String("signing-key", "", "Ed25519 private key for signing the connection test")

	return cmd
}

func runStatus(cmd *cobra.Command, url, credentialID, signingKey string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	options := []nodeexecutor.ClientOption{
		nodeexecutor.WithBaseURL(url),
		nodeexecutor.WithRetry(0, 0),
	}
	if signingKey != "" {
		options = append(options, nodeexecutor.WithSigningKey(signingKey))
	}

	client, err := nodeexecutor.NewClient(options...)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()

	health, err := client.HealthCheck(ctx)
	if err != nil {
		fmt.Fprintf(out, "❌ qiniu-node is not reachable at %s\n", url)
		return err
	}

	fmt.Fprintf(out, "✅ %s is %s\n", health.Service, health.Status)
	fmt.Fprintf(out, "   Version: %s\n", health.Version)
	fmt.Fprintf(out, "   Checked at: %s\n", health.Timestamp)

	if !cmd.Flags().Changed("credential") {
		return nil
	}

	resp, err := client.TestConnection(ctx, &nodeexecutor.ConnectionTestRequest{
		CredentialID: credentialID,
	})
	if err != nil {
		return err
	}

	if !resp.Success {
		fmt.Fprintf(out, "❌ Credential %q failed: %s\n", credentialID, resp.Error)
		return fmt.Errorf("connection test failed")
	}

	fmt.Fprintf(out, "✅ Credential %q works\n", credentialID)

	return nil
}
