package qiniu

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrPollTimeout = errors.New("polling deadline exceeded")
	ErrTaskFailed  = errors.New("task failed")
	ErrMissingID   = errors.New("task id is empty")
)

// APIError is returned for any non-2xx response from the Qiniu AI API.
type APIError struct {
	Status    int    `json:"status"`
	Code      string `json:"code,omitempty"`
	Type      string `json:"type,omitempty"`
	Message   string `json:"message"`
	RequestID string `json:"request_id,omitempty"`
	Body      string `json:"body,omitempty"`
}

func (e *APIError) Error() string {
	if e.RequestID != "" {
		return fmt.Sprintf("qiniu ai error (status %d, request %s): %s", e.Status, e.RequestID, e.Message)
	}

	return fmt.Sprintf("qiniu ai error (status %d): %s", e.Status, e.Message)
}

func (e *APIError) IsClientError() bool {
	return e.Status >= 400 && e.Status < 500
}

func (e *APIError) IsServerError() bool {
	return e.Status >= 500 && e.Status < 600
}

// PollTimeoutError means the job was still running when the polling deadline passed.
type PollTimeoutError struct {
	TaskID     string
	LastStatus string
	Elapsed    time.Duration
}

func (e *PollTimeoutError) Error() string {
	return fmt.Sprintf("task %s still %q after %s: %v", e.TaskID, e.LastStatus, e.Elapsed.Round(time.Millisecond), ErrPollTimeout)
}

func (e *PollTimeoutError) Is(target error) bool {
	return target == ErrPollTimeout
}

// TaskFailedError means the job reached a terminal failure state.
type TaskFailedError struct {
	TaskID  string
	Status  string
	Message string
}

func (e *TaskFailedError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("task %s failed with status %q: %s", e.TaskID, e.Status, e.Message)
	}

	return fmt.Sprintf("task %s failed with status %q", e.TaskID, e.Status)
}

func (e *TaskFailedError) Is(target error) bool {
	return target == ErrTaskFailed
}
