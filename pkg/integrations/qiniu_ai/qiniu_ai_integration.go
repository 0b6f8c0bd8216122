package qiniu_ai

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/qiniu-ai/flowbaker-qiniu/internal/managers"
	"github.com/qiniu-ai/flowbaker-qiniu/pkg/clients/qiniu"
	"github.com/qiniu-ai/flowbaker-qiniu/pkg/domain"

	"github.com/rs/zerolog/log"
)

type Resource string

const (
	Resource_Chat  Resource = "chat"
	Resource_Image Resource = "image"
	Resource_Video Resource = "video"
	Resource_Agent Resource = "agent"
	Resource_Audio Resource = "audio"
	Resource_Tools Resource = "tools"
)

var resources = []Resource{
	Resource_Chat,
	Resource_Image,
	Resource_Video,
	Resource_Agent,
	Resource_Audio,
	Resource_Tools,
}

func ParseResource(value string) (Resource, bool) {
	for _, resource := range resources {
		if string(resource) == value {
			return resource, true
		}
	}

	return "", false
}

// ActionType joins a resource and an operation into the action tag used for dispatch.
func ActionType(resource Resource, operation string) domain.IntegrationActionType {
	return domain.IntegrationActionType(fmt.Sprintf("%s:%s", resource, operation))
}

var (
	IntegrationActionType_ChatComplete = ActionType(Resource_Chat, "complete")

	IntegrationActionType_ImageGenerate = ActionType(Resource_Image, "generate")
	IntegrationActionType_ImageEdit     = ActionType(Resource_Image, "edit")

	IntegrationActionType_VideoGenerate  = ActionType(Resource_Video, "generate")
	IntegrationActionType_VideoRemix     = ActionType(Resource_Video, "remix")
	IntegrationActionType_VideoGetStatus = ActionType(Resource_Video, "getStatus")

	IntegrationActionType_AgentRun = ActionType(Resource_Agent, "run")

	IntegrationActionType_AudioTextToSpeech = ActionType(Resource_Audio, "textToSpeech")
	IntegrationActionType_AudioSpeechToText = ActionType(Resource_Audio, "speechToText")

	IntegrationActionType_ToolsWebSearch   = ActionType(Resource_Tools, "webSearch")
	IntegrationActionType_ToolsOCR         = ActionType(Resource_Tools, "ocr")
	IntegrationActionType_ToolsImageCensor = ActionType(Resource_Tools, "imageCensor")
	IntegrationActionType_ToolsVideoCensor = ActionType(Resource_Tools, "videoCensor")
	IntegrationActionType_ToolsVframe      = ActionType(Resource_Tools, "vframe")
)

type QiniuAICredential struct {
	APIKey  string `json:"api_key"`
	BaseURL string `json:"base_url"`
}

type QiniuAIIntegrationCreator struct {
	credentialGetter domain.CredentialGetter[QiniuAICredential]
	binder           domain.IntegrationParameterBinder
	clientOptions    []qiniu.ClientOption
}

func NewQiniuAIIntegrationCreator(deps domain.IntegrationDeps, clientOptions ...qiniu.ClientOption) *QiniuAIIntegrationCreator {
	return &QiniuAIIntegrationCreator{
		credentialGetter: managers.NewCredentialGetter[QiniuAICredential](deps.Credentials),
		binder:           deps.ParameterBinder,
		clientOptions:    clientOptions,
	}
}

func (c *QiniuAIIntegrationCreator) CreateIntegration(ctx context.Context, p domain.CreateIntegrationParams) (domain.IntegrationExecutor, error) {
	return NewQiniuAIIntegration(ctx, QiniuAIIntegrationDependencies{
		CredentialID:     p.CredentialID,
		CredentialGetter: c.credentialGetter,
		ParameterBinder:  c.binder,
		ClientOptions:    c.clientOptions,
	})
}

// TestConnection runs the smallest possible chat completion with the stored credential.
func (c *QiniuAIIntegrationCreator) TestConnection(ctx context.Context, params domain.TestConnectionParams) (bool, error) {
	integration, err := NewQiniuAIIntegration(ctx, QiniuAIIntegrationDependencies{
		CredentialID:     params.CredentialID,
		CredentialGetter: c.credentialGetter,
		ParameterBinder:  c.binder,
		ClientOptions:    c.clientOptions,
	})
	if err != nil {
		return false, err
	}

	_, err = integration.client.Chat.Create(ctx, qiniu.ChatRequest{
		Model:     DefaultChatModel,
		Messages:  []qiniu.ChatMessage{{Role: "user", Content: "ping"}},
		MaxTokens: 1,
	})
	if err != nil {
		return false, err
	}

	return true, nil
}

func (c *QiniuAIIntegrationCreator) Schema() domain.Integration {
	return Schema
}

type QiniuAIIntegrationDependencies struct {
	CredentialID     string
	CredentialGetter domain.CredentialGetter[QiniuAICredential]
	ParameterBinder  domain.IntegrationParameterBinder
	ClientOptions    []qiniu.ClientOption
}

type QiniuAIIntegration struct {
	binder        domain.IntegrationParameterBinder
	client        *qiniu.Client
	actionManager *domain.IntegrationActionManager
}

func NewQiniuAIIntegration(ctx context.Context, deps QiniuAIIntegrationDependencies) (*QiniuAIIntegration, error) {
	credential, err := deps.CredentialGetter.GetDecryptedCredential(ctx, deps.CredentialID)
	if err != nil {
		return nil, err
	}

	if credential.APIKey == "" {
		return nil, fmt.Errorf("%w: api_key is empty", domain.ErrUnsupportedConfiguration)
	}

	options := append([]qiniu.ClientOption{
		qiniu.WithAPIKey(credential.APIKey),
		qiniu.WithBaseURL(credential.BaseURL),
	}, deps.ClientOptions...)

	integration := &QiniuAIIntegration{
		binder: deps.ParameterBinder,
		client: qiniu.NewClient(options...),
	}

	handlers := map[domain.IntegrationActionType]domain.ActionFuncPerItem{
		IntegrationActionType_ChatComplete:      integration.ChatComplete,
		IntegrationActionType_ImageGenerate:     integration.ImageGenerate,
		IntegrationActionType_ImageEdit:         integration.ImageEdit,
		IntegrationActionType_VideoGenerate:     integration.VideoGenerate,
		IntegrationActionType_VideoRemix:        integration.VideoRemix,
		IntegrationActionType_VideoGetStatus:    integration.VideoGetStatus,
		IntegrationActionType_AgentRun:          integration.AgentRun,
		IntegrationActionType_AudioTextToSpeech: integration.TextToSpeech,
		IntegrationActionType_AudioSpeechToText: integration.SpeechToText,
		IntegrationActionType_ToolsWebSearch:    integration.WebSearch,
		IntegrationActionType_ToolsOCR:          integration.OCR,
		IntegrationActionType_ToolsImageCensor:  integration.ImageCensor,
		IntegrationActionType_ToolsVideoCensor:  integration.VideoCensor,
		IntegrationActionType_ToolsVframe:       integration.Vframe,
	}

	integration.actionManager = domain.NewIntegrationActionManager().WithErrorMapper(mapAPIError)

	for actionType, handler := range handlers {
		integration.actionManager.AddPerItem(actionType, withSchemaDefaults(actionType, handler))
	}

	return integration, nil
}

type routeParams struct {
	Resource  string `json:"resource"`
	Operation string `json:"operation"`
}

// Execute reads the resource once, from the first item, and the operation for every item.
func (i *QiniuAIIntegration) Execute(ctx context.Context, params domain.IntegrationInput) (domain.IntegrationOutput, error) {
	items, err := params.GetAllItems()
	if err != nil {
		return domain.IntegrationOutput{}, fmt.Errorf("failed to decode input items: %w", err)
	}

	if len(items) == 0 {
		return domain.IntegrationOutput{ResultJSONByOutputID: []domain.Payload{domain.Payload("[]")}}, nil
	}

	fallback := routeFromActionType(params.ActionType)

	first := routeParams{}
	if err := i.bind(ctx, items[0], 0, &first, params); err != nil {
		return domain.IntegrationOutput{}, err
	}

	first.Resource = stringOr(first.Resource, fallback.Resource)

	resource, ok := ParseResource(first.Resource)
	if !ok {
		return domain.IntegrationOutput{}, domain.NewConfigurationError(0, fmt.Sprintf("Unknown resource: %s", first.Resource))
	}

	log.Info().Str("node_id", params.NodeID).Str("resource", string(resource)).Int("items", len(items)).Msg("Executing Qiniu AI integration")

	return i.actionManager.RunPerItem(ctx, params, func(ctx context.Context, item domain.ExecutionItem, itemIndex int) (domain.IntegrationActionType, error) {
		route := routeParams{}
		if err := i.bind(ctx, item, itemIndex, &route, params); err != nil {
			return "", err
		}

		route.Operation = stringOr(route.Operation, fallback.Operation)

		actionType := ActionType(resource, route.Operation)
		if _, ok := i.actionManager.GetPerItem(actionType); !ok {
			return "", domain.NewConfigurationError(itemIndex, fmt.Sprintf("Unknown %s operation: %s", resource, route.Operation))
		}

		log.Debug().Str("resource", string(resource)).Str("operation", route.Operation).Int("item_index", itemIndex).Msg("dispatching item")

		return actionType, nil
	})
}

// routeFromActionType is used when the settings do not name the resource or operation,
// as when the host sends a schema action tag such as "chat:complete".
func routeFromActionType(actionType domain.IntegrationActionType) routeParams {
	resource, operation, ok := strings.Cut(string(actionType), ":")
	if !ok {
		return routeParams{}
	}

	return routeParams{Resource: resource, Operation: operation}
}

// bind evaluates the settings against one item and decodes them into target.
func (i *QiniuAIIntegration) bind(ctx context.Context, item domain.ExecutionItem, itemIndex int, target any, params domain.IntegrationInput) error {
	err := i.binder.BindToStruct(ctx, domain.IndexedItem{Item: item, Index: itemIndex}, target, params.IntegrationParams.Settings)
	if err != nil {
		return domain.WrapConfigurationError(itemIndex, "Invalid parameters", err)
	}

	return nil
}

// withSchemaDefaults fills settings the user left out with the defaults declared for the
// action in the schema.
func withSchemaDefaults(actionType domain.IntegrationActionType, handler domain.ActionFuncPerItem) domain.ActionFuncPerItem {
	action, ok := Schema.Action(actionType)
	if !ok {
		return handler
	}

	defaults := domain.Defaults(action.Properties)

	return func(ctx context.Context, params domain.IntegrationInput, item domain.ExecutionItem, itemIndex int) (domain.NodeResult, error) {
		params.IntegrationParams.Settings = domain.WithDefaults(defaults, params.IntegrationParams.Settings)

		return handler(ctx, params, item, itemIndex)
	}
}

func mapAPIError(itemIndex int, err error) error {
	var apiErr *qiniu.APIError
	if errors.As(err, &apiErr) {
		return domain.NewOperationError(itemIndex, fmt.Sprintf("Qiniu AI API Error: %s", apiErr.Message), apiErr.Status, apiErr.Code, err)
	}

	return err
}

func result(normalized any, raw any) domain.NodeResult {
	return domain.NodeResult{
		JSON: normalized,
		Raw:  raw,
	}
}

func stringOr(value, fallback string) string {
	if value == "" {
		return fallback
	}

	return value
}

func boolOr(value *bool, fallback bool) bool {
	if value == nil {
		return fallback
	}

	return *value
}
