package qiniu_ai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/qiniu-ai/flowbaker-qiniu/pkg/ai-sdk/agent"
	"github.com/qiniu-ai/flowbaker-qiniu/pkg/ai-sdk/memory"
	"github.com/qiniu-ai/flowbaker-qiniu/pkg/ai-sdk/provider/openai"
	"github.com/qiniu-ai/flowbaker-qiniu/pkg/ai-sdk/tool"
	"github.com/qiniu-ai/flowbaker-qiniu/pkg/ai-sdk/types"
	"github.com/qiniu-ai/flowbaker-qiniu/pkg/clients/qiniu"
	"github.com/qiniu-ai/flowbaker-qiniu/pkg/domain"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/santhosh-tekuri/jsonschema/v5"
)

const (
	DefaultAgentTemperature = 0.7

	stubToolResult = `{"result":"Tool execution not implemented in this node"}`
)

type AgentParams struct {
	Model            string       `json:"model"`
	Prompt           string       `json:"prompt"`
	SystemMessage    string       `json:"systemMessage"`
	BuiltinTools     []string     `json:"builtinTools"`
	AutoExecuteTools *bool        `json:"autoExecuteTools"`
	Options          AgentOptions `json:"options"`
}

type AgentOptions struct {
	MaxContextTokens int      `json:"maxContextTokens"`
	MaxSteps         int      `json:"maxSteps"`
	ThreadID         string   `json:"threadId"`
	Temperature      *float32 `json:"temperature"`
	// Tools is a JSON array of OpenAI function definitions, either as text or already decoded.
	Tools      any    `json:"tools"`
	ImageModel string `json:"imageModel"`
	VideoModel string `json:"videoModel"`

	CheckpointerType       string `json:"checkpointerType"`
	CheckpointerConnection string `json:"checkpointerConnection"`
	KodoBucket             string `json:"kodoBucket"`
	KodoAccessKey          string `json:"kodoAccessKey"`
	KodoSecretKey          string `json:"kodoSecretKey"`
	KodoRegion             string `json:"kodoRegion"`
	KodoEndpoint           string `json:"kodoEndpoint"`
	KodoPrefix             string `json:"kodoPrefix"`
}

type AgentOutput struct {
	Content       string                  `json:"content"`
	Steps         []agent.Step            `json:"steps"`
	ToolCallCount int                     `json:"toolCallCount"`
	Usage         *ChatUsage              `json:"usage"`
	ThreadID      *string                 `json:"threadId"`
	Checkpointer  memory.CheckpointerType `json:"checkpointer"`
}

type userToolDefinition struct {
	Type     string `json:"type"`
	Function struct {
		Name        string          `json:"name"`
		Description string          `json:"description"`
		Parameters  json.RawMessage `json:"parameters"`
	} `json:"function"`
}

func (o AgentOptions) memoryConfig(checkpointerType memory.CheckpointerType) memory.Config {
	return memory.Config{
		Type:       checkpointerType,
		Connection: o.CheckpointerConnection,
		Kodo: memory.KodoConfig{
			Bucket:    o.KodoBucket,
			AccessKey: o.KodoAccessKey,
			SecretKey: o.KodoSecretKey,
			Region:    o.KodoRegion,
			Endpoint:  o.KodoEndpoint,
			Prefix:    o.KodoPrefix,
		},
	}
}

func (i *QiniuAIIntegration) AgentRun(ctx context.Context, params domain.IntegrationInput, item domain.ExecutionItem, itemIndex int) (domain.NodeResult, error) {
	p := AgentParams{}
	if err := i.bind(ctx, item, itemIndex, &p, params); err != nil {
		return domain.NodeResult{}, err
	}

	autoExecute := boolOr(p.AutoExecuteTools, true)

	userTools, err := parseUserTools(itemIndex, p.Options.Tools)
	if err != nil {
		return domain.NodeResult{}, err
	}

	builtinTools, err := i.builtinTools(itemIndex, p.BuiltinTools, p.Options)
	if err != nil {
		return domain.NodeResult{}, err
	}

	tools := append(builtinTools, userTools...)
	if !autoExecute {
		tools = stubTools(tools)
	}

	checkpointerType, err := memory.ParseCheckpointerType(p.Options.CheckpointerType)
	if err != nil {
		return domain.NodeResult{}, domain.WrapConfigurationError(itemIndex, "Unsupported checkpointer", err)
	}

	store, err := memory.Open(ctx, p.Options.memoryConfig(checkpointerType))
	if err != nil {
		if errors.Is(err, memory.ErrInvalidCheckpointerConfig) {
			return domain.NodeResult{}, domain.WrapConfigurationError(itemIndex, "Invalid checkpointer configuration", err)
		}

		return domain.NodeResult{}, fmt.Errorf("failed to open %s checkpointer: %w", checkpointerType, err)
	}
	defer func() {
		if err := memory.Close(store); err != nil {
			log.Warn().Err(err).Str("checkpointer", string(checkpointerType)).Msg("failed to close checkpointer")
		}
	}()

	threadID := p.Options.ThreadID
	if threadID == "" && checkpointerType.Persistent() {
		threadID = uuid.NewString()
	}

	temperature := float32(DefaultAgentTemperature)
	if p.Options.Temperature != nil {
		temperature = *p.Options.Temperature
	}

	a, err := agent.New(
		agent.WithModel(openai.New(i.client.OpenAI(), stringOr(p.Model, DefaultChatModel))),
		agent.WithMemory(store),
		agent.WithSystemPrompt(p.SystemMessage),
		agent.WithMaxIterations(p.Options.MaxSteps),
		agent.WithMaxContextTokens(p.Options.MaxContextTokens),
		agent.WithTemperature(temperature),
		agent.WithTools(tools...),
		agent.WithHooks(agent.Hooks{
			OnToolExecuted: func(ctx context.Context, toolCall types.ToolCall, toolResult types.ToolResult) {
				log.Debug().Str("tool", toolCall.Name).Bool("is_error", toolResult.IsError).Int("item_index", itemIndex).Msg("agent tool executed")
			},
		}),
	)
	if err != nil {
		return domain.NodeResult{}, err
	}

	chatResult, err := a.Chat(ctx, agent.ChatRequest{
		Prompt:    p.Prompt,
		SessionID: threadID,
	})
	if err != nil {
		return domain.NodeResult{}, qiniu.TranslateOpenAIError(err)
	}

	output := AgentOutput{
		Content:       chatResult.Text,
		Steps:         chatResult.Steps,
		ToolCallCount: chatResult.ToolCallCount,
		Checkpointer:  checkpointerType,
	}

	if !chatResult.Usage.IsZero() {
		output.Usage = &ChatUsage{
			PromptTokens:     chatResult.Usage.PromptTokens,
			CompletionTokens: chatResult.Usage.CompletionTokens,
			TotalTokens:      chatResult.Usage.TotalTokens,
		}
	}

	if threadID != "" {
		output.ThreadID = &threadID
	}

	return result(output, chatResult), nil
}

// parseUserTools reads OpenAI-style function definitions. Their execution is a stub.
func parseUserTools(itemIndex int, value any) ([]tool.Tool, error) {
	var raw []byte

	switch v := value.(type) {
	case nil:
		return nil, nil
	case string:
		if v == "" {
			return nil, nil
		}

		raw = []byte(v)
	default:
		encoded, err := json.Marshal(v)
		if err != nil {
			return nil, domain.WrapConfigurationError(itemIndex, "Invalid tools JSON format", err)
		}

		raw = encoded
	}

	definitions := []userToolDefinition{}
	if err := json.Unmarshal(raw, &definitions); err != nil {
		return nil, domain.WrapConfigurationError(itemIndex, "Invalid tools JSON format", err)
	}

	tools := make([]tool.Tool, 0, len(definitions))

	for _, definition := range definitions {
		name := definition.Function.Name
		if name == "" {
			continue
		}

		parameters, err := toolParameters(name, definition.Function.Parameters)
		if err != nil {
			return nil, domain.WrapConfigurationError(itemIndex, fmt.Sprintf("Invalid parameters schema for tool %s", name), err)
		}

		tools = append(tools, tool.Define(name, definition.Function.Description, parameters, stubExecute))
	}

	return tools, nil
}

// toolParameters compiles the schema so a broken definition is rejected before the model
// ever sees it.
func toolParameters(name string, raw json.RawMessage) (map[string]any, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return nil, nil
	}

	if _, err := jsonschema.CompileString("tool://"+name+"/parameters.json", string(raw)); err != nil {
		return nil, err
	}

	parameters := map[string]any{}
	if err := json.Unmarshal(raw, &parameters); err != nil {
		return nil, err
	}

	return parameters, nil
}

func stubExecute(ctx context.Context, args string) (string, error) {
	return stubToolResult, nil
}

// stubTools keeps the definitions offered to the model but never runs them.
func stubTools(tools []tool.Tool) []tool.Tool {
	stubs := make([]tool.Tool, 0, len(tools))

	for _, t := range tools {
		stubs = append(stubs, tool.Define(t.Name(), t.Description(), t.Parameters(), stubExecute))
	}

	return stubs
}
