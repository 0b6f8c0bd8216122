package domain

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/rs/zerolog/log"
)

type ActionFuncPerItem func(ctx context.Context, params IntegrationInput, item ExecutionItem, itemIndex int) (NodeResult, error)

// ActionResolver picks the action that handles a given item.
type ActionResolver func(ctx context.Context, item ExecutionItem, itemIndex int) (IntegrationActionType, error)

// ErrorMapper converts handler errors into item-scoped errors. Returning err unchanged
// lets it propagate as-is.
type ErrorMapper func(itemIndex int, err error) error

type IntegrationActionManager struct {
	mtx                sync.RWMutex
	actionFuncsPerItem map[IntegrationActionType]ActionFuncPerItem
	errorMapper        ErrorMapper
}

func NewIntegrationActionManager() *IntegrationActionManager {
	return &IntegrationActionManager{
		actionFuncsPerItem: make(map[IntegrationActionType]ActionFuncPerItem),
		errorMapper: func(itemIndex int, err error) error {
			return err
		},
	}
}

func (m *IntegrationActionManager) AddPerItem(actionType IntegrationActionType, actionFunc ActionFuncPerItem) *IntegrationActionManager {
	m.mtx.Lock()
	defer m.mtx.Unlock()

	m.actionFuncsPerItem[actionType] = actionFunc

	return m
}

func (m *IntegrationActionManager) WithErrorMapper(mapper ErrorMapper) *IntegrationActionManager {
	m.mtx.Lock()
	defer m.mtx.Unlock()

	m.errorMapper = mapper

	return m
}

func (m *IntegrationActionManager) GetPerItem(actionType IntegrationActionType) (ActionFuncPerItem, bool) {
	m.mtx.RLock()
	defer m.mtx.RUnlock()

	actionFunc, ok := m.actionFuncsPerItem[actionType]
	return actionFunc, ok
}

// ActionTypes lists every registered action.
func (m *IntegrationActionManager) ActionTypes() []IntegrationActionType {
	m.mtx.RLock()
	defer m.mtx.RUnlock()

	actionTypes := make([]IntegrationActionType, 0, len(m.actionFuncsPerItem))

	for actionType := range m.actionFuncsPerItem {
		actionTypes = append(actionTypes, actionType)
	}

	return actionTypes
}

// Run executes a single action type for every item.
func (m *IntegrationActionManager) Run(ctx context.Context, actionType IntegrationActionType, params IntegrationInput) (IntegrationOutput, error) {
	return m.RunPerItem(ctx, params, func(ctx context.Context, item ExecutionItem, itemIndex int) (IntegrationActionType, error) {
		return actionType, nil
	})
}

// RunPerItem processes items one at a time in input order. The first failing item stops
// the run unless ContinueOnFail is set; results of earlier items are returned with the
// error.
func (m *IntegrationActionManager) RunPerItem(ctx context.Context, params IntegrationInput, resolve ActionResolver) (IntegrationOutput, error) {
	items, err := params.GetAllItems()
	if err != nil {
		return IntegrationOutput{}, fmt.Errorf("failed to decode input items: %w", err)
	}

	outputs := make([]NodeResult, 0, len(items))

	for itemIndex, item := range items {
		output, err := m.runItem(ctx, params, resolve, item, itemIndex)
		if err != nil {
			if !params.IntegrationParams.ContinueOnFail {
				log.Error().Err(err).Int("item_index", itemIndex).Msg("item failed, aborting remaining items")

				partial, encodeErr := encodeOutputs(outputs)
				if encodeErr != nil {
					return IntegrationOutput{}, encodeErr
				}

				return partial, err
			}

			log.Warn().Err(err).Int("item_index", itemIndex).Msg("item failed, continuing")

			output = NodeResult{
				JSON:  map[string]any{"error": err.Error()},
				Error: err.Error(),
			}
		}

		output.PairedItem = PairedItem{Item: itemIndex}

		outputs = append(outputs, output)
	}

	return encodeOutputs(outputs)
}

func (m *IntegrationActionManager) runItem(ctx context.Context, params IntegrationInput, resolve ActionResolver, item ExecutionItem, itemIndex int) (NodeResult, error) {
	if err := ctx.Err(); err != nil {
		return NodeResult{}, err
	}

	actionType, err := resolve(ctx, item, itemIndex)
	if err != nil {
		return NodeResult{}, err
	}

	actionFunc, ok := m.GetPerItem(actionType)
	if !ok {
		return NodeResult{}, NewConfigurationError(itemIndex, fmt.Sprintf("Unknown action: %s", actionType))
	}

	output, err := actionFunc(ctx, params, item, itemIndex)
	if err != nil {
		m.mtx.RLock()
		mapper := m.errorMapper
		m.mtx.RUnlock()

		return NodeResult{}, mapper(itemIndex, err)
	}

	return output, nil
}

func encodeOutputs(outputs []NodeResult) (IntegrationOutput, error) {
	resultJSON, err := json.Marshal(outputs)
	if err != nil {
		return IntegrationOutput{}, err
	}

	return IntegrationOutput{
		ResultJSONByOutputID: []Payload{
			resultJSON,
		},
	}, nil
}
