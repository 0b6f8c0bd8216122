package cli

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/qiniu-ai/flowbaker-qiniu/pkg/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func executeCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()

	var out bytes.Buffer

	cmd := NewRootCommand()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(append(args, "--log-format", "json"))

	err := cmd.Execute()

	return out.String(), err
}

func TestRunCommand_Local(t *testing.T) {
	pngBytes := []byte("\x89PNG\r\n\x1a\n0000")

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/images/generations", r.URL.Path)
		assert.Equal(t, "Bearer cli-key", r.Header.Get("Authorization"))

		w.Header().Set("Content-Type", "application/json")
		require.NoError(t, json.NewEncoder(w).Encode(map[string]any{
			"created": 1,
			"data":    []any{map[string]any{"b64_json": base64.StdEncoding.EncodeToString(pngBytes)}},
		}))
	}))
	t.Cleanup(server.Close)

	t.Chdir(t.TempDir())
	t.Setenv("QINIU_AI_API_KEY", "cli-key")
	t.Setenv("QINIU_AI_BASE_URL", server.URL)

	outDir := filepath.Join(t.TempDir(), "images")

	output, err := executeCommand(t, "run",
		"--action", "image:generate",
		"--settings", `{"prompt":"a cat"}`,
		"--out", outDir,
	)
	require.NoError(t, err)

	var results []domain.NodeResult
	require.NoError(t, json.Unmarshal([]byte(output[strings.Index(output, "["):]), &results))
	require.Len(t, results, 1)

	binary, ok := results[0].Binary[domain.BinaryKey(0)]
	require.True(t, ok)
	assert.Empty(t, binary.Data)
	assert.Equal(t, "image/png", binary.MimeType)

	saved, err := os.ReadFile(filepath.Join(outDir, binary.FileName))
	require.NoError(t, err)
	assert.Equal(t, pngBytes, saved)
}

func TestRunCommand_InvalidArguments(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		wantErr string
	}{
		{
			name:    "settings not json",
			args:    []string{"run", "--settings", "{nope"},
			wantErr: "invalid --settings",
		},
		{
			name:    "items file missing",
			args:    []string{"run", "--items", "@/does/not/exist.json"},
			wantErr: "invalid --items",
		},
		{
			name:    "unknown log format",
			args:    []string{"version", "--log-format", "xml"},
			wantErr: "unsupported log format",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd := NewRootCommand()
			cmd.SetOut(&bytes.Buffer{})
			cmd.SetArgs(tt.args)

			err := cmd.Execute()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestSchemaCommand(t *testing.T) {
	tests := []struct {
		format    string
		unmarshal func([]byte, any) error
	}{
		{format: "json", unmarshal: json.Unmarshal},
		{format: "yaml", unmarshal: yaml.Unmarshal},
	}

	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			output, err := executeCommand(t, "schema", "--format", tt.format)
			require.NoError(t, err)

			var schema map[string]any
			require.NoError(t, tt.unmarshal([]byte(output), &schema))
			assert.Equal(t, string(domain.IntegrationType_QiniuAI), schema["id"])
			assert.NotEmpty(t, schema["actions"])
		})
	}

	_, err := executeCommand(t, "schema", "--format", "toml")
	require.Error(t, err)
}

func TestKeysCommands(t *testing.T) {
	output, err := executeCommand(t, "keys", "generate", "--executor-id", "node-7")
	require.NoError(t, err)

	env := map[string]string{}
	for _, line := range strings.Split(output, "\n") {
		if key, value, ok := strings.Cut(line, "="); ok {
			env[key] = value
		}
	}

	assert.Equal(t, "node-7", env["EXECUTOR_ID"])
	for _, key := range []string{"EXECUTOR_X25519_PRIVATE_KEY", "EXECUTOR_X25519_PUBLIC_KEY", "API_SIGNING_PUBLIC_KEY", "API_SIGNING_PRIVATE_KEY"} {
		assert.NotEmpty(t, env[key], key)
	}

	output, err = executeCommand(t, "keys", "seal", "prod",
		"--credential", `{"api_key":"sk-1"}`,
		"--public-key", env["EXECUTOR_X25519_PUBLIC_KEY"],
		"--executor-id", "node-7",
	)
	require.NoError(t, err)

	var snippet struct {
		Credentials map[string]map[string]any `yaml:"credentials"`
	}
	require.NoError(t, yaml.Unmarshal([]byte(output), &snippet))
	require.Contains(t, snippet.Credentials, "prod")
	assert.Equal(t, "node-7", snippet.Credentials["prod"]["executor_id"])
	assert.IsType(t, "", snippet.Credentials["prod"]["encrypted_payload"])
}

func TestVersionCommand(t *testing.T) {
	output, err := executeCommand(t, "version", "--json")
	require.NoError(t, err)

	var info map[string]any
	require.NoError(t, json.Unmarshal([]byte(output), &info))
	assert.NotEmpty(t, info["version"])
	assert.NotEmpty(t, info["go_version"])
}
