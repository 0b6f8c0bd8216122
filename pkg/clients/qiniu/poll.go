package qiniu

import (
	"context"
	"errors"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/rs/zerolog/log"
)

const (
	defaultPollDeadline = 10 * time.Minute
)

var errStillRunning = errors.New("task still running")

// PollPolicy bounds how long and how often a long-running job is polled.
type PollPolicy struct {
	InitialInterval time.Duration `json:"initial_interval" mapstructure:"initial_interval"`
	MaxInterval     time.Duration `json:"max_interval" mapstructure:"max_interval"`
	Multiplier      float64       `json:"multiplier" mapstructure:"multiplier"`
	Deadline        time.Duration `json:"deadline" mapstructure:"deadline"`
}

func DefaultPollPolicy(deadline time.Duration) PollPolicy {
	return PollPolicy{
		InitialInterval: 2 * time.Second,
		MaxInterval:     15 * time.Second,
		Multiplier:      1.5,
		Deadline:        deadline,
	}
}

// WithFixedInterval returns a copy that waits interval between every attempt.
func (p PollPolicy) WithFixedInterval(interval time.Duration) PollPolicy {
	if interval <= 0 {
		return p
	}

	p.InitialInterval = interval
	p.MaxInterval = interval
	p.Multiplier = 1

	return p
}

func (p PollPolicy) backOff() *backoff.ExponentialBackOff {
	b := backoff.NewExponentialBackOff()

	if p.InitialInterval > 0 {
		b.InitialInterval = p.InitialInterval
	}

	if p.MaxInterval > 0 {
		b.MaxInterval = p.MaxInterval
	}

	if p.Multiplier >= 1 {
		b.Multiplier = p.Multiplier
	}

	b.Reset()

	return b
}

func (p PollPolicy) deadline() time.Duration {
	if p.Deadline <= 0 {
		return defaultPollDeadline
	}

	return p.Deadline
}

type pollResult[T any] struct {
	Value   T
	Status  string
	Message string
}

type pollFunc[T any] func(ctx context.Context) (pollResult[T], error)

// poll calls fetch until the job reaches a terminal state or the policy deadline passes.
// API errors stop polling immediately.
func poll[T any](ctx context.Context, policy PollPolicy, taskID string, fetch pollFunc[T]) (T, error) {
	startedAt := time.Now()
	lastStatus := ""
	attempt := 0

	operation := func() (T, error) {
		attempt++

		result, err := fetch(ctx)
		if err != nil {
			return result.Value, backoff.Permanent(err)
		}

		lastStatus = result.Status

		switch ParseTaskState(result.Status) {
		case TaskStateSucceeded:
			return result.Value, nil
		case TaskStateFailed:
			return result.Value, backoff.Permanent(&TaskFailedError{
				TaskID:  taskID,
				Status:  result.Status,
				Message: result.Message,
			})
		default:
			return result.Value, errStillRunning
		}
	}

	value, err := backoff.Retry(ctx, operation,
		backoff.WithBackOff(policy.backOff()),
		backoff.WithMaxElapsedTime(policy.deadline()),
		backoff.WithNotify(func(err error, next time.Duration) {
			log.Debug().
				Str("task_id", taskID).
				Str("status", lastStatus).
				Int("attempt", attempt).
				Dur("next_in", next).
				Msg("task not finished yet")
		}),
	)
	if err != nil {
		if errors.Is(err, errStillRunning) {
			return value, &PollTimeoutError{
				TaskID:     taskID,
				LastStatus: lastStatus,
				Elapsed:    time.Since(startedAt),
			}
		}

		return value, err
	}

	return value, nil
}
