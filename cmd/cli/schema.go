package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/qiniu-ai/flowbaker-qiniu/internal/config"
	"github.com/qiniu-ai/flowbaker-qiniu/internal/initialization"
	"github.com/qiniu-ai/flowbaker-qiniu/pkg/domain"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

func NewSchemaCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "schema",
		Short: "Print the node description",
		Long:  `Print the declarative description of the node: its actions, their properties and defaults.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			format, _ := cmd.Flags().GetString("format")

			container := initialization.NewExecutorContainer(&config.Config{})

			deps, err := container.BuildExecutorDependencies(initialization.ExecutorDependencyConfig{})
			if err != nil {
				return err
			}

			schema, err := deps.NodeExecutorService.Schema(context.Background(), domain.IntegrationType_QiniuAI)
			if err != nil {
				return err
			}

			return writeSchema(cmd.OutOrStdout(), schema, format)
		},
	}

	cmd.Flags().String("format", "json", "Output format: json or yaml")

	return cmd
}

func writeSchema(w io.Writer, schema domain.Integration, format string) error {
	switch format {
	case "json":
		encoder := json.NewEncoder(w)
		encoder.SetIndent("", "  ")

		return encoder.Encode(schema)
	case "yaml":
		return writeYAML(w, schema)
	default:
		return fmt.Errorf("unsupported format %q", format)
	}
}

// writeYAML encodes v through its JSON form, so keys match the JSON field names and
// byte slices stay base64 strings.
func writeYAML(w io.Writer, v any) error {
	encoded, err := json.Marshal(v)
	if err != nil {
		return err
	}

	var generic any
	if err := json.Unmarshal(encoded, &generic); err != nil {
		return err
	}

	encoder := yaml.NewEncoder(w)
	encoder.SetIndent(2)
	defer encoder.Close()

	return encoder.Encode(generic)
}
