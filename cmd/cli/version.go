package cli

import (
	"encoding/json"
	"fmt"

	"github.com/qiniu-ai/flowbaker-qiniu/internal/version"

	"github.com/spf13/cobra"
)

func NewVersionCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		RunE: func(cmd *cobra.Command, args []string) error {
			asJSON, _ := cmd.Flags().GetBool("json")

			info := version.Get()

			if asJSON {
				encoded, err := json.MarshalIndent(info, "", "  ")
				if err != nil {
					return err
				}

				fmt.Fprintln(cmd.OutOrStdout(), string(encoded))
				return nil
			}

			fmt.Fprintln(cmd.OutOrStdout(), info.String())
			return nil
		},
	}

	cmd.Flags().Bool("json", false, "Print as JSON")

	return cmd
}
