package memory

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/qiniu-ai/flowbaker-qiniu/pkg/ai-sdk/memory/inmemory"
	"github.com/qiniu-ai/flowbaker-qiniu/pkg/ai-sdk/memory/kodo"
	"github.com/qiniu-ai/flowbaker-qiniu/pkg/ai-sdk/memory/mongodb"
	"github.com/qiniu-ai/flowbaker-qiniu/pkg/ai-sdk/memory/postgres"
	"github.com/qiniu-ai/flowbaker-qiniu/pkg/ai-sdk/memory/redis"
)

var (
	ErrUnsupportedCheckpointer   = errors.New("unsupported checkpointer type")
	ErrInvalidCheckpointerConfig = errors.New("invalid checkpointer configuration")
)

type CheckpointerType string

const (
	CheckpointerType_None     CheckpointerType = "none"
	CheckpointerType_Memory   CheckpointerType = "memory"
	CheckpointerType_Kodo     CheckpointerType = "kodo"
	CheckpointerType_Redis    CheckpointerType = "redis"
	CheckpointerType_Postgres CheckpointerType = "postgres"
	CheckpointerType_MongoDB  CheckpointerType = "mongodb"
)

// ParseCheckpointerType accepts the declared values, treating an empty value as none.
func ParseCheckpointerType(value string) (CheckpointerType, error) {
	switch t := CheckpointerType(strings.ToLower(strings.TrimSpace(value))); t {
	case "":
		return CheckpointerType_None, nil
	case CheckpointerType_None, CheckpointerType_Memory, CheckpointerType_Kodo,
		CheckpointerType_Redis, CheckpointerType_Postgres, CheckpointerType_MongoDB:
		return t, nil
	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupportedCheckpointer, value)
	}
}

// Persistent reports whether conversations outlive a single agent run.
func (t CheckpointerType) Persistent() bool {
	return t != CheckpointerType_None && t != ""
}

type KodoConfig struct {
	Bucket    string
	AccessKey string
	SecretKey string
	Region    string
	Endpoint  string
	Prefix    string
}

type Config struct {
	Type CheckpointerType
	// Connection is the redis URL, postgres DSN or mongodb URI.
	Connection string
	Kodo       KodoConfig
	// TTL bounds how long redis keeps a thread. Zero keeps it forever.
	TTL time.Duration
}

// Open builds the store for cfg. Missing settings fail before any connection is made.
func Open(ctx context.Context, cfg Config) (Store, error) {
	switch cfg.Type {
	case CheckpointerType_None, "":
		return &NoOpMemoryStore{}, nil
	case CheckpointerType_Memory:
		return inmemory.Shared(), nil
	case CheckpointerType_Kodo:
		if err := requireSettings(cfg.Type, map[string]string{
			"kodoBucket":    cfg.Kodo.Bucket,
			"kodoAccessKey": cfg.Kodo.AccessKey,
			"kodoSecretKey": cfg.Kodo.SecretKey,
		}); err != nil {
			return nil, err
		}

		return nonNil(kodo.New(kodo.Opts{
			Bucket:    cfg.Kodo.Bucket,
			AccessKey: cfg.Kodo.AccessKey,
			SecretKey: cfg.Kodo.SecretKey,
			Region:    cfg.Kodo.Region,
			Endpoint:  cfg.Kodo.Endpoint,
			Prefix:    cfg.Kodo.Prefix,
		}))
	case CheckpointerType_Redis:
		if err := requireConnection(cfg); err != nil {
			return nil, err
		}

		return nonNil(redis.New(ctx, redis.Opts{URL: cfg.Connection, TTL: cfg.TTL}))
	case CheckpointerType_Postgres:
		if err := requireConnection(cfg); err != nil {
			return nil, err
		}

		return nonNil(postgres.New(ctx, postgres.Opts{DSN: cfg.Connection}))
	case CheckpointerType_MongoDB:
		if err := requireConnection(cfg); err != nil {
			return nil, err
		}

		return nonNil(mongodb.New(ctx, cfg.Connection))
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedCheckpointer, cfg.Type)
	}
}

// nonNil keeps a failed constructor's typed nil pointer out of the Store interface.
func nonNil[S Store](store S, err error) (Store, error) {
	if err != nil {
		return nil, err
	}

	return store, nil
}

func requireConnection(cfg Config) error {
	return requireSettings(cfg.Type, map[string]string{"checkpointerConnection": cfg.Connection})
}

func requireSettings(checkpointerType CheckpointerType, settings map[string]string) error {
	missing := []string{}

	for _, name := range []string{"kodoBucket", "kodoAccessKey", "kodoSecretKey", "checkpointerConnection"} {
		value, ok := settings[name]
		if ok && strings.TrimSpace(value) == "" {
			missing = append(missing, name)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("%w: %s checkpointer requires %s", ErrInvalidCheckpointerConfig, checkpointerType, strings.Join(missing, ", "))
	}

	return nil
}
