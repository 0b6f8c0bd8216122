package agent

import (
	"github.com/qiniu-ai/flowbaker-qiniu/pkg/ai-sdk/memory"
	"github.com/qiniu-ai/flowbaker-qiniu/pkg/ai-sdk/provider"
	"github.com/qiniu-ai/flowbaker-qiniu/pkg/ai-sdk/tool"
)

type Option func(*Agent)

func WithModel(m provider.LanguageModel) Option {
	return func(a *Agent) {
		a.Model = m
	}
}

func WithMemory(m memory.Store) Option {
	return func(a *Agent) {
		a.Memory = m
	}
}

func WithSystemPrompt(prompt string) Option {
	return func(a *Agent) {
		a.SystemPrompt = prompt
	}
}

func WithMaxIterations(iterations int) Option {
	return func(a *Agent) {
		a.MaxIterations = iterations
	}
}

// WithMaxContextTokens bounds the history sent on each step.
func WithMaxContextTokens(tokens int) Option {
	return func(a *Agent) {
		a.MaxContextTokens = tokens
	}
}

func WithTemperature(temperature float32) Option {
	return func(a *Agent) {
		a.Temperature = &temperature
	}
}

func WithTools(tools ...tool.Tool) Option {
	return func(a *Agent) {
		a.Tools = append(a.Tools, tools...)
	}
}

func WithHooks(hooks Hooks) Option {
	return func(a *Agent) {
		a.hooks = hooks
	}
}
