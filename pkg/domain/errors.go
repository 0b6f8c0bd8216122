package domain

import (
	"errors"
	"fmt"
)

var (
	ErrUnsupportedConfiguration = errors.New("unsupported configuration")
)

// ItemError is implemented by errors that are scoped to a single input item.
type ItemError interface {
	error
	Index() int
}

// OperationError is an upstream API failure while processing one item.
type OperationError struct {
	ItemIndex   int    `json:"item_index"`
	Message     string `json:"message"`
	Description string `json:"description,omitempty"`
	Status      int    `json:"status"`
	Code        string `json:"code,omitempty"`

	cause error
}

func NewOperationError(itemIndex int, message string, status int, code string, cause error) *OperationError {
	if code == "" {
		code = "unknown"
	}

	return &OperationError{
		ItemIndex:   itemIndex,
		Message:     message,
		Description: fmt.Sprintf("Status: %d, Code: %s", status, code),
		Status:      status,
		Code:        code,
		cause:       cause,
	}
}

func (e *OperationError) Error() string {
	return fmt.Sprintf("%s (item %d; %s)", e.Message, e.ItemIndex, e.Description)
}

func (e *OperationError) Index() int { return e.ItemIndex }

func (e *OperationError) Unwrap() error { return e.cause }

// ConfigurationError reports parameters that cannot be turned into a valid request.
type ConfigurationError struct {
	ItemIndex int    `json:"item_index"`
	Message   string `json:"message"`

	cause error
}

func NewConfigurationError(itemIndex int, message string) *ConfigurationError {
	return &ConfigurationError{ItemIndex: itemIndex, Message: message}
}

func WrapConfigurationError(itemIndex int, message string, cause error) *ConfigurationError {
	return &ConfigurationError{ItemIndex: itemIndex, Message: message, cause: cause}
}

func (e *ConfigurationError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s (item %d): %v", e.Message, e.ItemIndex, e.cause)
	}

	return fmt.Sprintf("%s (item %d)", e.Message, e.ItemIndex)
}

func (e *ConfigurationError) Index() int { return e.ItemIndex }

func (e *ConfigurationError) Unwrap() error { return e.cause }

// ItemIndexOf reports the item an error is scoped to, if any.
func ItemIndexOf(err error) (int, bool) {
	var itemErr ItemError
	if errors.As(err, &itemErr) {
		return itemErr.Index(), true
	}

	return 0, false
}
