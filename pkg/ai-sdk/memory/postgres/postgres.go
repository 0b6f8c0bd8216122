package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/qiniu-ai/flowbaker-qiniu/pkg/ai-sdk/types"
)

const DefaultTable = "agent_threads"

var tableNamePattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

type Store struct {
	conn  *pgx.Conn
	table string
}

type Opts struct {
	// DSN is a postgres:// URL or a key=value connection string.
	DSN   string
	Table string
}

func New(ctx context.Context, opts Opts) (*Store, error) {
	table, err := tableName(opts.Table)
	if err != nil {
		return nil, err
	}

	conn, err := pgx.Connect(ctx, opts.DSN)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to PostgreSQL: %w", err)
	}

	store := &Store{
		conn:  conn,
		table: table,
	}

	if err := store.ensureTable(ctx); err != nil {
		conn.Close(ctx)
		return nil, fmt.Errorf("failed to ensure table: %w", err)
	}

	return store, nil
}

// tableName is interpolated into SQL, so only plain identifiers are accepted.
func tableName(table string) (string, error) {
	if table == "" {
		return DefaultTable, nil
	}

	if !tableNamePattern.MatchString(table) {
		return "", fmt.Errorf("invalid table name %q", table)
	}

	return table, nil
}

func (s *Store) ensureTable(ctx context.Context) error {
	createSQL := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			thread_id TEXT PRIMARY KEY,
			conversation JSONB NOT NULL,
			created_at TIMESTAMPTZ NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL
		)`, s.table)

	_, err := s.conn.Exec(ctx, createSQL)
	return err
}

func (s *Store) SaveConversation(ctx context.Context, conversation types.Conversation) error {
	if conversation.ID == "" {
		return types.ErrInvalidMessage
	}

	conversation.Touch(time.Now())

	payload, err := encodeConversation(conversation)
	if err != nil {
		return err
	}

	upsertSQL := fmt.Sprintf(`
		INSERT INTO %s (thread_id, conversation, created_at, updated_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (thread_id) DO UPDATE
		SET conversation = EXCLUDED.conversation, updated_at = EXCLUDED.updated_at`, s.table)

	_, err = s.conn.Exec(ctx, upsertSQL, conversation.ID, payload, conversation.CreatedAt, conversation.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to save conversation: %w", err)
	}

	return nil
}

func (s *Store) GetConversation(ctx context.Context, threadID string) (types.Conversation, error) {
	selectSQL := fmt.Sprintf(`SELECT conversation FROM %s WHERE thread_id = $1`, s.table)

	var payload []byte

	err := s.conn.QueryRow(ctx, selectSQL, threadID).Scan(&payload)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return types.Conversation{ID: threadID}, nil
		}

		return types.Conversation{}, fmt.Errorf("failed to get conversation: %w", err)
	}

	return decodeConversation(payload)
}

// encodeConversation produces the JSONB column value for a row.
func encodeConversation(conversation types.Conversation) ([]byte, error) {
	payload, err := json.Marshal(conversation)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal conversation: %w", err)
	}

	return payload, nil
}

func decodeConversation(payload []byte) (types.Conversation, error) {
	var conversation types.Conversation
	if err := json.Unmarshal(payload, &conversation); err != nil {
		return types.Conversation{}, fmt.Errorf("failed to unmarshal conversation: %w", err)
	}

	return conversation, nil
}

func (s *Store) Close() error {
	return s.conn.Close(context.Background())
}
