package executor

import (
	"context"
	"errors"
	"testing"

	"github.com/qiniu-ai/flowbaker-qiniu/pkg/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testIntegrationType domain.IntegrationType = "echo"

type echoCreator struct {
	credentialIDs []string
	failAt        int
}

func (c *echoCreator) CreateIntegration(ctx context.Context, p domain.CreateIntegrationParams) (domain.IntegrationExecutor, error) {
	c.credentialIDs = append(c.credentialIDs, p.CredentialID)

	manager := domain.NewIntegrationActionManager().
		AddPerItem("echo", func(ctx context.Context, params domain.IntegrationInput, item domain.ExecutionItem, itemIndex int) (domain.NodeResult, error) {
			if itemIndex == c.failAt {
				return domain.NodeResult{}, domain.NewConfigurationError(itemIndex, "boom")
			}

			return domain.NodeResult{JSON: map[string]any{"node": params.NodeID, "echo": item.JSON["v"]}}, nil
		})

	return &echoIntegration{manager: manager}, nil
}

func (c *echoCreator) TestConnection(ctx context.Context, params domain.TestConnectionParams) (bool, error) {
	return params.CredentialID == "good", nil
}

func (c *echoCreator) Schema() domain.Integration {
	return domain.Integration{ID: testIntegrationType, Name: "Echo"}
}

type echoIntegration struct {
	manager *domain.IntegrationActionManager
}

func (i *echoIntegration) Execute(ctx context.Context, params domain.IntegrationInput) (domain.IntegrationOutput, error) {
	return i.manager.Run(ctx, "echo", params)
}

func newTestService(creator *echoCreator) NodeExecutorService {
	selector := domain.NewIntegrationSelector()
	selector.RegisterCreator(testIntegrationType, creator)

	return NewNodeExecutorService(NodeExecutorServiceDependencies{IntegrationSelector: selector})
}

func TestNodeExecutorService_Execute(t *testing.T) {
	creator := &echoCreator{failAt: -1}
	service := newTestService(creator)

	result, err := service.Execute(context.Background(), ExecuteParams{
		IntegrationType: testIntegrationType,
		CredentialID:    "cred-1",
		NodeID:          "node-7",
		Items: []domain.ExecutionItem{
			{JSON: map[string]any{"v": "a"}},
			{JSON: map[string]any{"v": "b"}},
		},
	})
	require.NoError(t, err)

	assert.NotEmpty(t, result.ExecutionID)
	assert.Equal(t, []string{"cred-1"}, creator.credentialIDs)
	require.Len(t, result.Results, 2)
	assert.Equal(t, map[string]any{"node": "node-7", "echo": "b"}, result.Results[1].JSON)
	assert.Equal(t, 1, result.Results[1].PairedItem.Item)
}

func TestNodeExecutorService_ExecutePartialResults(t *testing.T) {
	service := newTestService(&echoCreator{failAt: 1})

	result, err := service.Execute(context.Background(), ExecuteParams{
		IntegrationType: testIntegrationType,
		Items: []domain.ExecutionItem{
			{JSON: map[string]any{"v": "a"}},
			{JSON: map[string]any{"v": "b"}},
		},
	})

	var configErr *domain.ConfigurationError
	require.ErrorAs(t, err, &configErr)
	assert.Equal(t, 1, configErr.ItemIndex)

	require.Len(t, result.Results, 1)
	assert.Equal(t, map[string]any{"node": result.ExecutionID, "echo": "a"}, result.Results[0].JSON)
}

func TestNodeExecutorService_UnknownIntegration(t *testing.T) {
	service := newTestService(&echoCreator{failAt: -1})

	_, err := service.Execute(context.Background(), ExecuteParams{IntegrationType: "missing"})
	assert.True(t, errors.Is(err, domain.ErrIntegrationNotFound))

	_, err = service.Schema(context.Background(), "missing")
	assert.ErrorIs(t, err, domain.ErrIntegrationNotFound)
}

func TestNodeExecutorService_TestConnectionAndSchema(t *testing.T) {
	service := newTestService(&echoCreator{failAt: -1})

	ok, err := service.TestConnection(context.Background(), TestConnectionParams{IntegrationType: testIntegrationType, CredentialID: "good"})
	require.NoError(t, err)
	assert.True(t, ok)

	schema, err := service.Schema(context.Background(), testIntegrationType)
	require.NoError(t, err)
	assert.Equal(t, "Echo", schema.Name)

	assert.Equal(t, []domain.IntegrationType{testIntegrationType}, service.IntegrationTypes())
}
