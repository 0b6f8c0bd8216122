package executor

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/qiniu-ai/flowbaker-qiniu/pkg/domain"

	"github.com/rs/xid"
	"github.com/rs/zerolog/log"
)

// NodeExecutorService runs single node calls against the registered integrations.
type NodeExecutorService interface {
	Execute(ctx context.Context, params ExecuteParams) (ExecutionResult, error)
	TestConnection(ctx context.Context, params TestConnectionParams) (bool, error)
	Schema(ctx context.Context, integrationType domain.IntegrationType) (domain.Integration, error)
	IntegrationTypes() []domain.IntegrationType
}

type ExecuteParams struct {
	IntegrationType domain.IntegrationType
	CredentialID    string
	ActionType      domain.IntegrationActionType
	NodeID          string
	Items           []domain.ExecutionItem
	Settings        map[string]any
	ContinueOnFail  bool
}

// ExecutionResult carries every result produced before a failure, so callers can
// report partial progress alongside the error.
type ExecutionResult struct {
	ExecutionID string
	Results     []domain.NodeResult
	Duration    time.Duration
}

type TestConnectionParams struct {
	IntegrationType domain.IntegrationType
	CredentialID    string
}

type nodeExecutorService struct {
	integrationSelector domain.IntegrationSelector
}

type NodeExecutorServiceDependencies struct {
	IntegrationSelector domain.IntegrationSelector
}

func NewNodeExecutorService(deps NodeExecutorServiceDependencies) NodeExecutorService {
	return &nodeExecutorService{
		integrationSelector: deps.IntegrationSelector,
	}
}

func (s *nodeExecutorService) Execute(ctx context.Context, params ExecuteParams) (ExecutionResult, error) {
	result := ExecutionResult{
		ExecutionID: xid.New().String(),
		Results:     []domain.NodeResult{},
	}

	startedAt := time.Now()

	logger := log.With().
		Str("execution_id", result.ExecutionID).
		Str("integration_type", string(params.IntegrationType)).
		Logger()

	creator, err := s.integrationSelector.SelectCreator(ctx, domain.SelectIntegrationParams{
		IntegrationType: params.IntegrationType,
	})
	if err != nil {
		return result, err
	}

	integration, err := creator.CreateIntegration(ctx, domain.CreateIntegrationParams{
		CredentialID: params.CredentialID,
	})
	if err != nil {
		return result, fmt.Errorf("failed to create integration %s: %w", params.IntegrationType, err)
	}

	payload, err := domain.NewPayload(params.Items)
	if err != nil {
		return result, fmt.Errorf("failed to encode input items: %w", err)
	}

	nodeID := params.NodeID
	if nodeID == "" {
		nodeID = result.ExecutionID
	}

	logger.Info().Int("items", len(params.Items)).Msg("Starting node execution")

	output, execErr := integration.Execute(ctx, domain.IntegrationInput{
		NodeID:           nodeID,
		PayloadByInputID: map[string]domain.Payload{"main": payload},
		IntegrationParams: domain.IntegrationParams{
			Settings:       params.Settings,
			ContinueOnFail: params.ContinueOnFail,
		},
		ActionType: params.ActionType,
	})

	results, err := output.Results()
	if err != nil {
		return result, errors.Join(execErr, fmt.Errorf("failed to decode node results: %w", err))
	}

	result.Results = results
	result.Duration = time.Since(startedAt)

	if execErr != nil {
		event := logger.Error().Err(execErr).Int("completed_items", len(results))
		if itemIndex, ok := domain.ItemIndexOf(execErr); ok {
			event = event.Int("item_index", itemIndex)
		}

		event.Msg("Node execution failed")

		return result, execErr
	}

	logger.Info().Int("results", len(results)).Dur("duration", result.Duration).Msg("Node execution completed")

	return result, nil
}

func (s *nodeExecutorService) TestConnection(ctx context.Context, params TestConnectionParams) (bool, error) {
	tester, err := s.integrationSelector.SelectConnectionTester(ctx, domain.SelectIntegrationParams{
		IntegrationType: params.IntegrationType,
	})
	if err != nil {
		return false, err
	}

	return tester.TestConnection(ctx, domain.TestConnectionParams{
		CredentialID: params.CredentialID,
	})
}

func (s *nodeExecutorService) Schema(ctx context.Context, integrationType domain.IntegrationType) (domain.Integration, error) {
	return s.integrationSelector.SelectSchema(ctx, domain.SelectIntegrationParams{
		IntegrationType: integrationType,
	})
}

func (s *nodeExecutorService) IntegrationTypes() []domain.IntegrationType {
	return s.integrationSelector.IntegrationTypes()
}
