package domain

import (
	"context"
	"errors"
)

var (
	ErrIntegrationNotFound = errors.New("integration not found")
)

type IntegrationType string
type IntegrationActionType string

const (
	IntegrationType_QiniuAI IntegrationType = "qiniu_ai"
)

type Integration struct {
	ID          IntegrationType `json:"id" yaml:"id"`
	Name        string          `json:"name" yaml:"name"`
	Description string          `json:"description" yaml:"description"`

	CredentialProperties []NodeProperty      `json:"credential_props" yaml:"credential_props"`
	Actions              []IntegrationAction `json:"actions" yaml:"actions"`

	CanTestConnection    bool `json:"can_test_connection" yaml:"can_test_connection"`
	IsCredentialOptional bool `json:"is_credential_optional" yaml:"is_credential_optional"`
}

// Action looks up an action by its type.
func (i Integration) Action(actionType IntegrationActionType) (IntegrationAction, bool) {
	for _, action := range i.Actions {
		if action.ActionType == actionType {
			return action, true
		}
	}

	return IntegrationAction{}, false
}

type IntegrationAction struct {
	ID          string                `json:"id" yaml:"id"`
	ActionType  IntegrationActionType `json:"action_type" yaml:"action_type"`
	Name        string                `json:"name" yaml:"name"`
	Description string                `json:"description" yaml:"description"`
	Properties  []NodeProperty        `json:"properties" yaml:"properties"`
}

type IntegrationInput struct {
	NodeID            string
	PayloadByInputID  map[string]Payload
	IntegrationParams IntegrationParams
	ActionType        IntegrationActionType
}

func (i IntegrationInput) GetItemsByInputID() (map[string][]ExecutionItem, error) {
	itemsByInputID := map[string][]ExecutionItem{}

	for inputID, payload := range i.PayloadByInputID {
		items, err := payload.ToExecutionItems()
		if err != nil {
			return nil, err
		}

		itemsByInputID[inputID] = items
	}

	return itemsByInputID, nil
}

// GetAllItems flattens every input into one ordered slice. Input IDs are visited in
// sorted order so that item indices stay stable between runs.
func (i IntegrationInput) GetAllItems() ([]ExecutionItem, error) {
	itemsByInputID, err := i.GetItemsByInputID()
	if err != nil {
		return nil, err
	}

	items := []ExecutionItem{}

	for _, inputID := range sortedKeys(itemsByInputID) {
		items = append(items, itemsByInputID[inputID]...)
	}

	return items, nil
}

type IntegrationParams struct {
	Settings       map[string]any `json:"settings"`
	ContinueOnFail bool           `json:"continue_on_fail"`
}

type IntegrationOutput struct {
	ResultJSONByOutputID []Payload
}

// Results decodes the first output back into node results.
func (o IntegrationOutput) Results() ([]NodeResult, error) {
	if len(o.ResultJSONByOutputID) == 0 {
		return []NodeResult{}, nil
	}

	return o.ResultJSONByOutputID[0].ToNodeResults()
}

type IntegrationDeps struct {
	ParameterBinder IntegrationParameterBinder
	Credentials     CredentialStore
}

type IntegrationParameterBinder interface {
	BindToStruct(ctx context.Context, item any, params any, expressions map[string]any) error
}
