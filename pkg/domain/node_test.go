package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefaults(t *testing.T) {
	properties := []NodeProperty{
		{Key: "model", Default: "qwen3-max"},
		{Key: "prompt"},
		{Key: "options", MapOpts: &MapPropertyOptions{Properties: []NodeProperty{
			{Key: "maxSteps", Default: 10},
			{Key: "threadId"},
		}}},
		{Key: "empty", MapOpts: &MapPropertyOptions{Properties: []NodeProperty{{Key: "x"}}}},
	}

	assert.Equal(t, map[string]any{
		"model":   "qwen3-max",
		"options": map[string]any{"maxSteps": 10},
	}, Defaults(properties))
}

func TestWithDefaults(t *testing.T) {
	defaults := map[string]any{
		"model":   "qwen3-max",
		"options": map[string]any{"maxSteps": 10, "temperature": 0.7},
	}

	tests := []struct {
		name     string
		settings map[string]any
		want     map[string]any
	}{
		{
			name:     "nil settings",
			settings: nil,
			want:     defaults,
		},
		{
			name:     "settings win",
			settings: map[string]any{"model": "deepseek-v3", "prompt": "hi"},
			want: map[string]any{
				"model":   "deepseek-v3",
				"prompt":  "hi",
				"options": map[string]any{"maxSteps": 10, "temperature": 0.7},
			},
		},
		{
			name:     "nested maps merge key by key",
			settings: map[string]any{"options": map[string]any{"maxSteps": 3, "threadId": "t1"}},
			want: map[string]any{
				"model":   "qwen3-max",
				"options": map[string]any{"maxSteps": 3, "temperature": 0.7, "threadId": "t1"},
			},
		},
		{
			name:     "non-map value replaces a map default",
			settings: map[string]any{"options": "{{ $json.options }}"},
			want: map[string]any{
				"model":   "qwen3-max",
				"options": "{{ $json.options }}",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, WithDefaults(defaults, tt.settings))
		})
	}
}

func TestWithDefaults_DoesNotMutateInputs(t *testing.T) {
	defaults := map[string]any{"options": map[string]any{"a": 1}}
	settings := map[string]any{"options": map[string]any{"b": 2}}

	WithDefaults(defaults, settings)

	assert.Equal(t, map[string]any{"options": map[string]any{"a": 1}}, defaults)
	assert.Equal(t, map[string]any{"options": map[string]any{"b": 2}}, settings)
}
