package qiniu

import "strings"

// TaskState is the normalized lifecycle state of an asynchronous job.
type TaskState string

const (
	TaskStatePending    TaskState = "pending"
	TaskStateProcessing TaskState = "processing"
	TaskStateSucceeded  TaskState = "succeeded"
	TaskStateFailed     TaskState = "failed"
)

// ParseTaskState maps the many spellings used by the different Qiniu job APIs.
func ParseTaskState(status string) TaskState {
	switch strings.ToLower(strings.TrimSpace(status)) {
	case "", "pending", "queued", "queuing", "submitted", "created", "waiting":
		return TaskStatePending
	case "succeed", "succeeded", "success", "successful", "completed", "complete", "done", "finished", "finish":
		return TaskStateSucceeded
	case "failed", "fail", "failure", "error", "cancelled", "canceled", "rejected", "expired":
		return TaskStateFailed
	default:
		return TaskStateProcessing
	}
}

func (s TaskState) IsTerminal() bool {
	return s == TaskStateSucceeded || s == TaskStateFailed
}
