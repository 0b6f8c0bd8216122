package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/qiniu-ai/flowbaker-qiniu/pkg/ai-sdk/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTableName(t *testing.T) {
	tests := []struct {
		table   string
		want    string
		wantErr bool
	}{
		{table: "", want: DefaultTable},
		{table: "threads", want: "threads"},
		{table: "_agent_2", want: "_agent_2"},
		{table: "threads; DROP TABLE users", wantErr: true},
		{table: "public.threads", wantErr: true},
		{table: "2threads", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.table, func(t *testing.T) {
			got, err := tableName(tt.table)
			if tt.wantErr {
				require.Error(t, err)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNew_RejectsBadConfig(t *testing.T) {
	tests := []struct {
		name    string
		opts    Opts
		wantErr string
	}{
		{
			name:    "table name",
			opts:    Opts{DSN: "postgres://localhost:5432/db", Table: "bad-name"},
			wantErr: "invalid table name",
		},
		{
			name:    "malformed dsn",
			opts:    Opts{DSN: "postgres://localhost:notaport/db"},
			wantErr: "failed to connect to PostgreSQL",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store, err := New(context.Background(), tt.opts)
			require.Error(t, err)
			assert.Nil(t, store)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestConversationEncoding(t *testing.T) {
	created := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)

	conversation := types.Conversation{
		ID: "thread-1",
		Messages: []types.Message{
			{Role: types.RoleUser, Content: "hi"},
			{Role: types.RoleAssistant, ToolCalls: []types.ToolCall{{ID: "c1", Name: "web_search", Arguments: map[string]any{"query": "go"}}}},
			{Role: types.RoleTool, ToolResults: []types.ToolResult{{ToolCallID: "c1", Content: "found"}}},
		},
		CreatedAt: created,
		UpdatedAt: created.Add(time.Minute),
		Status:    types.StatusCompleted,
		Metadata:  map[string]any{"source": "agent"},
	}

	payload, err := encodeConversation(conversation)
	require.NoError(t, err)

	decoded, err := decodeConversation(payload)
	require.NoError(t, err)
	assert.Equal(t, conversation, decoded)

	_, err = decodeConversation([]byte(`{"id":`))
	require.Error(t, err)
}
