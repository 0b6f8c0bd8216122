package executor

import (
	"github.com/qiniu-ai/flowbaker-qiniu/pkg/domain"
)

type HealthCheckResponse struct {
	Status    string `json:"status"`
	Service   string `json:"service"`
	Version   string `json:"version"`
	Timestamp string `json:"timestamp"`
}

// ExecuteRequest runs one node call. ActionType may stand in for the resource and
// operation settings, as in "chat:complete".
type ExecuteRequest struct {
	IntegrationType domain.IntegrationType       `json:"integration_type"`
	CredentialID    string                       `json:"credential_id,omitempty"`
	ActionType      domain.IntegrationActionType `json:"action_type,omitempty"`
	NodeID          string                       `json:"node_id,omitempty"`
	Items           []domain.ExecutionItem       `json:"items"`
	Settings        map[string]any               `json:"settings"`
	ContinueOnFail  bool                         `json:"continue_on_fail,omitempty"`
}

// ExecuteResponse always carries the results produced so far. Error is set when an item
// stopped the run.
type ExecuteResponse struct {
	ExecutionID string              `json:"execution_id"`
	Results     []domain.NodeResult `json:"results"`
	DurationMs  int64               `json:"duration_ms"`
	Error       *ExecutionError     `json:"error,omitempty"`
}

type ExecutionErrorKind string

const (
	ExecutionErrorKind_Configuration ExecutionErrorKind = "configuration"
	ExecutionErrorKind_Operation     ExecutionErrorKind = "operation"
	ExecutionErrorKind_Internal      ExecutionErrorKind = "internal"
)

type ExecutionError struct {
	Kind        ExecutionErrorKind `json:"kind"`
	Message     string             `json:"message"`
	Description string             `json:"description,omitempty"`
	ItemIndex   *int               `json:"item_index,omitempty"`
	Status      int                `json:"status,omitempty"`
	Code        string             `json:"code,omitempty"`
}

func (e *ExecutionError) Error() string {
	return e.Message
}

type ConnectionTestRequest struct {
	IntegrationType domain.IntegrationType `json:"integration_type"`
	CredentialID    string                 `json:"credential_id"`
}

type ConnectionTestResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

type SchemaResponse struct {
	Integrations []domain.Integration `json:"integrations"`
}
