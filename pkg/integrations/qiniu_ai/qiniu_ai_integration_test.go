package qiniu_ai

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/qiniu-ai/flowbaker-qiniu/internal/managers"
	"github.com/qiniu-ai/flowbaker-qiniu/pkg/clients/qiniu"
	"github.com/qiniu-ai/flowbaker-qiniu/pkg/domain"
	"github.com/qiniu-ai/flowbaker-qiniu/pkg/expressions"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fastPoll = qiniu.PollPolicy{
	InitialInterval: time.Millisecond,
	MaxInterval:     5 * time.Millisecond,
	Multiplier:      1.5,
	Deadline:        2 * time.Second,
}

func newTestCreator(t *testing.T, handler http.HandlerFunc) *QiniuAIIntegrationCreator {
	t.Helper()

	if handler == nil {
		handler = func(w http.ResponseWriter, r *http.Request) {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
			w.WriteHeader(http.StatusInternalServerError)
		}
	}

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	credentials, err := managers.NewCredentialManager(managers.CredentialManagerOpts{
		DefaultCredential: QiniuAICredential{APIKey: "test-key", BaseURL: server.URL},
	})
	require.NoError(t, err)

	return NewQiniuAIIntegrationCreator(domain.IntegrationDeps{
		ParameterBinder: expressions.NewBinder(expressions.DefaultBinderOptions()),
		Credentials:     credentials,
	}, qiniu.WithPollPolicy(fastPoll))
}

func execute(t *testing.T, handler http.HandlerFunc, settings map[string]any, items []domain.ExecutionItem) ([]domain.NodeResult, error) {
	t.Helper()

	return executeWithParams(t, handler, domain.IntegrationParams{Settings: settings}, items)
}

func executeWithParams(t *testing.T, handler http.HandlerFunc, params domain.IntegrationParams, items []domain.ExecutionItem) ([]domain.NodeResult, error) {
	t.Helper()

	creator := newTestCreator(t, handler)

	executor, err := creator.CreateIntegration(context.Background(), domain.CreateIntegrationParams{})
	require.NoError(t, err)

	payload, err := domain.NewPayload(items)
	require.NoError(t, err)

	output, execErr := executor.Execute(context.Background(), domain.IntegrationInput{
		NodeID:            "node-1",
		PayloadByInputID:  map[string]domain.Payload{"main": payload},
		IntegrationParams: params,
	})

	results, err := output.Results()
	require.NoError(t, err)

	return results, execErr
}

func writeJSON(t *testing.T, w http.ResponseWriter, status int, body any) {
	t.Helper()

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	require.NoError(t, json.NewEncoder(w).Encode(body))
}

func decodeBody(t *testing.T, r *http.Request) map[string]any {
	t.Helper()

	body, err := io.ReadAll(r.Body)
	require.NoError(t, err)

	decoded := map[string]any{}
	require.NoError(t, json.Unmarshal(body, &decoded))

	return decoded
}

func jsonOf(t *testing.T, result domain.NodeResult) map[string]any {
	t.Helper()

	m, ok := result.JSON.(map[string]any)
	require.True(t, ok, "result json is %T", result.JSON)

	return m
}

func items(n int) []domain.ExecutionItem {
	out := make([]domain.ExecutionItem, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, domain.ExecutionItem{JSON: map[string]any{"n": i}})
	}

	return out
}

func TestExecute_Routing(t *testing.T) {
	vframe := map[string]any{
		"videoUrl":      "https://cdn.example.com/a.mp4",
		"videoDuration": 10,
		"frameCount":    1,
	}

	t.Run("unknown resource fails at item 0", func(t *testing.T) {
		results, err := execute(t, nil, map[string]any{"resource": "music", "operation": "play"}, items(2))

		var configErr *domain.ConfigurationError
		require.ErrorAs(t, err, &configErr)
		assert.Equal(t, 0, configErr.ItemIndex)
		assert.Equal(t, "Unknown resource: music", configErr.Message)
		assert.Empty(t, results)
	})

	t.Run("unknown operation names the failing item and keeps earlier results", func(t *testing.T) {
		settings := map[string]any{"resource": "tools", "operation": "{{ $json.op }}"}
		for k, v := range vframe {
			settings[k] = v
		}

		input := []domain.ExecutionItem{
			{JSON: map[string]any{"op": "vframe"}},
			{JSON: map[string]any{"op": "teleport"}},
			{JSON: map[string]any{"op": "vframe"}},
		}

		results, err := execute(t, nil, settings, input)

		var configErr *domain.ConfigurationError
		require.ErrorAs(t, err, &configErr)
		assert.Equal(t, 1, configErr.ItemIndex)
		assert.Equal(t, "Unknown tools operation: teleport", configErr.Message)

		require.Len(t, results, 1)
		assert.Equal(t, 0, results[0].PairedItem.Item)
	})

	t.Run("action type stands in for missing resource and operation", func(t *testing.T) {
		creator := newTestCreator(t, nil)

		executor, err := creator.CreateIntegration(context.Background(), domain.CreateIntegrationParams{})
		require.NoError(t, err)

		payload, err := domain.NewPayload(items(1))
		require.NoError(t, err)

		output, err := executor.Execute(context.Background(), domain.IntegrationInput{
			PayloadByInputID:  map[string]domain.Payload{"main": payload},
			IntegrationParams: domain.IntegrationParams{Settings: vframe},
			ActionType:        IntegrationActionType_ToolsVframe,
		})
		require.NoError(t, err)

		results, err := output.Results()
		require.NoError(t, err)
		require.Len(t, results, 1)
	})

	t.Run("outputs pair with inputs in order", func(t *testing.T) {
		settings := map[string]any{"resource": "tools", "operation": "vframe"}
		for k, v := range vframe {
			settings[k] = v
		}

		results, err := execute(t, nil, settings, items(3))
		require.NoError(t, err)
		require.Len(t, results, 3)

		for i, result := range results {
			assert.Equal(t, i, result.PairedItem.Item)
		}
	})

	t.Run("no items", func(t *testing.T) {
		results, err := execute(t, nil, map[string]any{"resource": "bogus"}, nil)
		require.NoError(t, err)
		assert.Empty(t, results)
	})
}

func TestExecute_APIErrorBecomesOperationError(t *testing.T) {
	handler := func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, http.StatusTooManyRequests, map[string]any{
			"error": map[string]any{"message": "rate limited", "code": "rate_limit"},
		})
	}

	_, err := execute(t, handler, map[string]any{
		"resource":  "tools",
		"operation": "webSearch",
		"query":     "golang",
	}, items(1))

	var opErr *domain.OperationError
	require.ErrorAs(t, err, &opErr)
	assert.Equal(t, "Qiniu AI API Error: rate limited", opErr.Message)
	assert.Equal(t, "Status: 429, Code: rate_limit", opErr.Description)
	assert.Equal(t, 0, opErr.ItemIndex)

	var apiErr *qiniu.APIError
	assert.ErrorAs(t, err, &apiErr)
}

func TestExecute_ContinueOnFail(t *testing.T) {
	settings := map[string]any{
		"resource":      "tools",
		"operation":     "vframe",
		"videoUrl":      "https://cdn.example.com/a.mp4",
		"videoDuration": "{{ $json.d }}",
		"frameCount":    2,
	}

	input := []domain.ExecutionItem{
		{JSON: map[string]any{"d": 10}},
		{JSON: map[string]any{"d": 0}},
	}

	results, err := executeWithParams(t, nil, domain.IntegrationParams{Settings: settings, ContinueOnFail: true}, input)
	require.NoError(t, err)
	require.Len(t, results, 2)

	assert.Empty(t, results[0].Error)
	assert.Contains(t, results[1].Error, "Video duration must be positive")
	assert.Equal(t, 1, results[1].PairedItem.Item)
}

func TestChatComplete(t *testing.T) {
	tests := []struct {
		name         string
		settings     map[string]any
		wantMessages []any
	}{
		{
			name: "simple with system message",
			settings: map[string]any{
				"prompt":        "Hello {{ $json.name }}",
				"systemMessage": "Be brief",
			},
			wantMessages: []any{
				map[string]any{"role": "system", "content": "Be brief"},
				map[string]any{"role": "user", "content": "Hello Ada"},
			},
		},
		{
			name: "message list kept in order",
			settings: map[string]any{
				"inputType": "messages",
				"messages": map[string]any{
					"messageValues": []any{
						map[string]any{"role": "user", "content": "first"},
						map[string]any{"role": "assistant", "content": "second"},
						map[string]any{"role": "user", "content": "third"},
					},
				},
			},
			wantMessages: []any{
				map[string]any{"role": "user", "content": "first"},
				map[string]any{"role": "assistant", "content": "second"},
				map[string]any{"role": "user", "content": "third"},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, "/chat/completions", r.URL.Path)
				assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

				body := decodeBody(t, r)
				assert.Equal(t, DefaultChatModel, body["model"])
				assert.Equal(t, tt.wantMessages, body["messages"])

				writeJSON(t, w, http.StatusOK, map[string]any{
					"id":      "chatcmpl-1",
					"object":  "chat.completion",
					"created": 1,
					"model":   DefaultChatModel,
					"choices": []any{map[string]any{
						"index":         0,
						"message":       map[string]any{"role": "assistant", "content": "Hi!"},
						"finish_reason": "stop",
					}},
					"usage": map[string]any{"prompt_tokens": 5, "completion_tokens": 2, "total_tokens": 7},
				})
			}

			settings := map[string]any{"resource": "chat", "operation": "complete"}
			for k, v := range tt.settings {
				settings[k] = v
			}

			results, err := execute(t, handler, settings, []domain.ExecutionItem{{JSON: map[string]any{"name": "Ada"}}})
			require.NoError(t, err)
			require.Len(t, results, 1)

			out := jsonOf(t, results[0])
			assert.Equal(t, "Hi!", out["content"])
			assert.Equal(t, "assistant", out["role"])
			assert.Equal(t, "stop", out["finishReason"])
			assert.Equal(t, map[string]any{"promptTokens": 5.0, "completionTokens": 2.0, "totalTokens": 7.0}, out["usage"])
			assert.NotNil(t, results[0].Raw)
		})
	}
}

func TestChatComplete_Temperature(t *testing.T) {
	tests := []struct {
		name        string
		options     map[string]any
		wantPresent bool
		want        float64
	}{
		{name: "unset is left to the model", options: map[string]any{}},
		{name: "explicit zero is sent", options: map[string]any{"temperature": 0}, wantPresent: true},
		{name: "positive value is sent", options: map[string]any{"temperature": 0.5}, wantPresent: true, want: 0.5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := func(w http.ResponseWriter, r *http.Request) {
				body := decodeBody(t, r)

				temperature, ok := body["temperature"]
				require.Equal(t, tt.wantPresent, ok)
				if ok {
					assert.InDelta(t, tt.want, temperature, 1e-6)
				}

				writeJSON(t, w, http.StatusOK, map[string]any{
					"id":      "chatcmpl-1",
					"choices": []any{map[string]any{"index": 0, "message": map[string]any{"role": "assistant", "content": "ok"}}},
				})
			}

			_, err := execute(t, handler, map[string]any{
				"resource":  "chat",
				"operation": "complete",
				"prompt":    "hi",
				"options":   tt.options,
			}, items(1))
			require.NoError(t, err)
		})
	}
}

func TestImageGenerate_InlineImagesBecomeAttachments(t *testing.T) {
	first := []byte("first-image")
	second := []byte("second-image")

	handler := func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/images/generations", r.URL.Path)

		body := decodeBody(t, r)
		assert.Equal(t, DefaultImageModel, body["model"])
		assert.Equal(t, "https://example.com/subject.png", body["subject_reference"])
		assert.Equal(t, map[string]any{"image_size": "2K"}, body["image_config"])

		writeJSON(t, w, http.StatusOK, map[string]any{
			"created": 1,
			"data": []any{
				map[string]any{"b64_json": base64.StdEncoding.EncodeToString(first), "index": 0},
				map[string]any{"b64_json": base64.StdEncoding.EncodeToString(second), "index": 1},
			},
		})
	}

	results, err := execute(t, handler, map[string]any{
		"resource":        "image",
		"operation":       "generate",
		"prompt":          "a cat",
		"subjectImageUrl": "https://example.com/subject.png",
		"options":         map[string]any{"imageSize": "2K"},
	}, items(1))
	require.NoError(t, err)
	require.Len(t, results, 1)

	out := jsonOf(t, results[0])
	assert.Equal(t, true, out["isSync"])
	assert.Equal(t, 2.0, out["imageCount"])
	assert.Equal(t, "succeed", out["status"])

	require.Len(t, results[0].Binary, 2)
	assert.Equal(t, first, results[0].Binary["data"].Data)
	assert.Equal(t, "image_0.png", results[0].Binary["data"].FileName)
	assert.Equal(t, "image/png", results[0].Binary["data"].MimeType)
	assert.Equal(t, second, results[0].Binary["data_1"].Data)
	assert.Equal(t, "image_1.png", results[0].Binary["data_1"].FileName)
}

func TestImageGenerate_InvalidInlineImage(t *testing.T) {
	handler := func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, http.StatusOK, map[string]any{
			"created": 1,
			"data":    []any{map[string]any{"b64_json": "not base64!", "index": 0}},
		})
	}

	_, err := execute(t, handler, map[string]any{"resource": "image", "operation": "generate", "prompt": "a cat"}, items(1))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not valid base64")

	var configErr *domain.ConfigurationError
	assert.False(t, errors.As(err, &configErr))
}

func TestImageEdit_WaitsForTask(t *testing.T) {
	var polls atomic.Int32

	handler := func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodPost && r.URL.Path == "/images/edits":
			body := decodeBody(t, r)
			assert.Equal(t, "https://example.com/in.png", body["image_url"])
			assert.Equal(t, 0.4, body["strength"])

			writeJSON(t, w, http.StatusOK, map[string]any{"task_id": "img-1", "status": "submitted"})
		case r.Method == http.MethodGet && r.URL.Path == "/images/tasks/img-1":
			if polls.Add(1) < 2 {
				writeJSON(t, w, http.StatusOK, map[string]any{"task_id": "img-1", "status": "processing"})
				return
			}

			writeJSON(t, w, http.StatusOK, map[string]any{
				"task_id": "img-1",
				"status":  "succeed",
				"data":    []any{map[string]any{"url": "https://cdn.example.com/out.png", "index": 0}},
			})
		default:
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
	}

	results, err := execute(t, handler, map[string]any{
		"resource":          "image",
		"operation":         "edit",
		"prompt":            "make it blue",
		"referenceImageUrl": "https://example.com/in.png",
		"options":           map[string]any{"strength": 0.4},
	}, items(1))
	require.NoError(t, err)

	out := jsonOf(t, results[0])
	assert.Equal(t, "succeed", out["status"])
	assert.Equal(t, "img-1", out["taskId"])
	assert.Equal(t, []any{map[string]any{"url": "https://cdn.example.com/out.png", "index": 0.0}}, out["images"])
	assert.Empty(t, results[0].Binary)
}

func TestVideoGenerate_Request(t *testing.T) {
	frame := []byte("frame-bytes")

	tests := []struct {
		name       string
		settings   map[string]any
		wantSize   any
		wantFrames any
	}{
		{
			name:     "kling size follows aspect ratio",
			settings: map[string]any{"aspectRatio": "9:16"},
			wantSize: "1080:1920",
		},
		{
			name:     "explicit kling size wins",
			settings: map[string]any{"klingOptions": map[string]any{"size": "1280:720"}},
			wantSize: "1280:720",
		},
		{
			name: "url wins over binary and missing binary is skipped",
			settings: map[string]any{
				"firstFrameUrl":            "https://example.com/first.png",
				"firstFrameBinaryProperty": "frame",
				"lastFrameBinaryProperty":  "absent",
			},
			wantSize:   "1920:1080",
			wantFrames: map[string]any{"first": map[string]any{"url": "https://example.com/first.png"}},
		},
		{
			name:       "binary frame is base64 encoded",
			settings:   map[string]any{"lastFrameBinaryProperty": "frame"},
			wantSize:   "1920:1080",
			wantFrames: map[string]any{"last": map[string]any{"base64": base64.StdEncoding.EncodeToString(frame)}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, "/videos", r.URL.Path)

				body := decodeBody(t, r)
				assert.Equal(t, DefaultVideoModel, body["model"])
				assert.Equal(t, tt.wantSize, body["size"])
				assert.Equal(t, tt.wantFrames, body["frames"])

				writeJSON(t, w, http.StatusOK, map[string]any{"id": "vid-1", "status": "queued"})
			}

			settings := map[string]any{
				"resource":          "video",
				"operation":         "generate",
				"prompt":            "waves",
				"waitForCompletion": false,
			}
			for k, v := range tt.settings {
				settings[k] = v
			}

			input := []domain.ExecutionItem{{
				JSON:   map[string]any{},
				Binary: map[string]domain.BinaryData{"frame": domain.NewBinaryData(frame, "frame.png", "image/png")},
			}}

			results, err := execute(t, handler, settings, input)
			require.NoError(t, err)
			assert.Equal(t, map[string]any{"id": "vid-1", "status": "processing"}, results[0].JSON)
		})
	}
}

func TestVideoGenerate_WaitsForCompletion(t *testing.T) {
	handler := func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodPost && r.URL.Path == "/videos":
			body := decodeBody(t, r)
			assert.Nil(t, body["size"], "veo models take no kling size")
			assert.Equal(t, "1080p", body["resolution"])

			writeJSON(t, w, http.StatusOK, map[string]any{"id": "vid-2", "status": "queued"})
		case r.Method == http.MethodGet && r.URL.Path == "/videos/vid-2":
			writeJSON(t, w, http.StatusOK, map[string]any{
				"id":          "vid-2",
				"status":      "completed",
				"task_result": map[string]any{"videos": []any{map[string]any{"url": "https://cdn.example.com/v.mp4"}}},
			})
		default:
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
	}

	results, err := execute(t, handler, map[string]any{
		"resource":   "video",
		"operation":  "generate",
		"model":      "veo-3.0-generate-preview",
		"prompt":     "waves",
		"veoOptions": map[string]any{"resolution": "1080p"},
	}, items(1))
	require.NoError(t, err)

	out := jsonOf(t, results[0])
	assert.Equal(t, "vid-2", out["id"])
	assert.Equal(t, "completed", out["status"])
	assert.Equal(t, []any{map[string]any{"url": "https://cdn.example.com/v.mp4"}}, out["videos"])
}

func TestVideoRemixAndStatus(t *testing.T) {
	handler := func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodPost && r.URL.Path == "/videos/vid-1/remix":
			body := decodeBody(t, r)
			assert.Equal(t, "slower", body["prompt"])
			assert.Equal(t, "pro", body["mode"])

			writeJSON(t, w, http.StatusOK, map[string]any{"id": "vid-9", "status": "queued"})
		case r.Method == http.MethodGet && r.URL.Path == "/videos/vid-9":
			writeJSON(t, w, http.StatusOK, map[string]any{"id": "vid-9", "status": "processing", "message": "rendering"})
		default:
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
	}

	results, err := execute(t, handler, map[string]any{
		"resource":          "video",
		"operation":         "remix",
		"sourceVideoId":     "vid-1",
		"remixPrompt":       "slower",
		"waitForCompletion": false,
		"remixOptions":      map[string]any{"mode": "pro"},
	}, items(1))
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"id": "vid-9", "status": "processing"}, results[0].JSON)

	results, err = execute(t, handler, map[string]any{
		"resource":  "video",
		"operation": "getStatus",
		"taskId":    "vid-9",
	}, items(1))
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"id": "vid-9", "status": "processing", "videos": []any{}, "message": "rendering"}, results[0].JSON)
}

func TestAudio(t *testing.T) {
	audio := []byte("RIFF....WAVE")

	handler := func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/voice/tts":
			body := decodeBody(t, r)
			assert.Equal(t, map[string]any{"voice_type": DefaultVoice, "encoding": "wav", "speed_ratio": 1.5}, body["audio"])

			writeJSON(t, w, http.StatusOK, map[string]any{"reqid": "r1", "data": "QUJD", "addition": map[string]any{"duration": "1200"}})
		case "/voice/asr":
			body := decodeBody(t, r)
			assert.Equal(t, map[string]any{"format": "wav", "data": base64.StdEncoding.EncodeToString(audio)}, body["audio"])

			writeJSON(t, w, http.StatusOK, map[string]any{
				"reqid": "r2",
				"data": map[string]any{"result": map[string]any{
					"text":       "hello",
					"utterances": []any{map[string]any{"text": "hello", "words": []any{map[string]any{"text": "hello", "start_time": 0, "end_time": 400}}}},
				}},
			})
		default:
			t.Errorf("unexpected request %s", r.URL.Path)
		}
	}

	t.Run("text to speech", func(t *testing.T) {
		results, err := execute(t, handler, map[string]any{
			"resource":  "audio",
			"operation": "textToSpeech",
			"text":      "hi",
			"options":   map[string]any{"encoding": "wav", "speedRatio": 1.5},
		}, items(1))
		require.NoError(t, err)
		assert.Equal(t, map[string]any{"audio": "QUJD", "duration": "1200"}, results[0].JSON)
	})

	t.Run("text to speech rejects out of range speed", func(t *testing.T) {
		_, err := execute(t, handler, map[string]any{
			"resource":  "audio",
			"operation": "textToSpeech",
			"text":      "hi",
			"options":   map[string]any{"speedRatio": 3},
		}, items(1))

		var configErr *domain.ConfigurationError
		require.ErrorAs(t, err, &configErr)
	})

	t.Run("speech to text", func(t *testing.T) {
		input := []domain.ExecutionItem{{
			JSON:   map[string]any{},
			Binary: map[string]domain.BinaryData{"data": domain.NewBinaryData(audio, "a.wav", "audio/wav")},
		}}

		results, err := execute(t, handler, map[string]any{"resource": "audio", "operation": "speechToText"}, input)
		require.NoError(t, err)

		out := jsonOf(t, results[0])
		assert.Equal(t, "hello", out["text"])
		assert.Len(t, out["words"], 1)
	})

	t.Run("speech to text requires the attachment", func(t *testing.T) {
		_, err := execute(t, handler, map[string]any{"resource": "audio", "operation": "speechToText", "binaryPropertyName": "voice"}, items(1))

		var configErr *domain.ConfigurationError
		require.ErrorAs(t, err, &configErr)
		assert.Contains(t, configErr.Message, `"voice"`)
	})
}

func TestAudio_TextToSpeechOptionalValues(t *testing.T) {
	tests := []struct {
		name      string
		options   map[string]any
		wantAudio map[string]any
	}{
		{
			name:      "unset values are omitted",
			options:   map[string]any{},
			wantAudio: map[string]any{"voice_type": DefaultVoice, "encoding": "mp3"},
		},
		{
			name:      "zero volume mutes",
			options:   map[string]any{"volume": 0},
			wantAudio: map[string]any{"voice_type": DefaultVoice, "encoding": "mp3", "volume": 0.0},
		},
		{
			name:      "volume and speed are forwarded",
			options:   map[string]any{"volume": 0.4, "speedRatio": 0.5},
			wantAudio: map[string]any{"voice_type": DefaultVoice, "encoding": "mp3", "volume": 0.4, "speed_ratio": 0.5},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, "/voice/tts", r.URL.Path)

				body := decodeBody(t, r)
				assert.Equal(t, tt.wantAudio, body["audio"])

				writeJSON(t, w, http.StatusOK, map[string]any{"reqid": "r1", "data": "QUJD"})
			}

			_, err := execute(t, handler, map[string]any{
				"resource":  "audio",
				"operation": "textToSpeech",
				"text":      "hi",
				"options":   tt.options,
			}, items(1))
			require.NoError(t, err)
		})
	}
}

func TestTools_WebSearchAndOCR(t *testing.T) {
	png := []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x02\x00\x00\x00")

	handler := func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/search/web":
			body := decodeBody(t, r)
			assert.Equal(t, 5.0, body["max_results"])
			assert.Equal(t, "news", body["search_type"])
			assert.Equal(t, []any{"go.dev", "pkg.go.dev"}, body["site_filter"])

			writeJSON(t, w, http.StatusOK, map[string]any{"results": []any{map[string]any{"title": "Go", "url": "https://go.dev"}}})
		case "/images/ocr":
			body := decodeBody(t, r)
			assert.Equal(t, "data:image/png;base64,"+base64.StdEncoding.EncodeToString(png), body["image"])

			writeJSON(t, w, http.StatusOK, map[string]any{"text": "HELLO", "blocks": []any{map[string]any{"text": "HELLO"}}})
		default:
			t.Errorf("unexpected request %s", r.URL.Path)
		}
	}

	results, err := execute(t, handler, map[string]any{
		"resource":  "tools",
		"operation": "webSearch",
		"query":     "go",
		"options":   map[string]any{"searchType": "news", "siteFilter": "go.dev, pkg.go.dev,"},
	}, items(1))
	require.NoError(t, err)

	out := jsonOf(t, results[0])
	assert.Equal(t, "go", out["query"])
	assert.Len(t, out["results"], 1)

	input := []domain.ExecutionItem{{
		JSON:   map[string]any{},
		Binary: map[string]domain.BinaryData{"data": domain.NewBinaryData(png, "scan", "")},
	}}

	results, err = execute(t, handler, map[string]any{"resource": "tools", "operation": "ocr"}, input)
	require.NoError(t, err)
	assert.Equal(t, "HELLO", jsonOf(t, results[0])["text"])
}

func TestTools_WebSearchValidation(t *testing.T) {
	_, err := execute(t, nil, map[string]any{
		"resource":  "tools",
		"operation": "webSearch",
		"query":     "go",
		"options":   map[string]any{"maxResults": 50},
	}, items(1))

	var configErr *domain.ConfigurationError
	require.ErrorAs(t, err, &configErr)
	assert.Contains(t, configErr.Message, "between 1 and 20")
}

func TestTools_Censor(t *testing.T) {
	handler := func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.URL.Path == "/image/censor":
			body := decodeBody(t, r)
			assert.Equal(t, map[string]any{"uri": "https://example.com/a.jpg"}, body["data"])
			assert.Equal(t, map[string]any{"scenes": []any{"pulp", "terror", "politician"}}, body["params"])

			writeJSON(t, w, http.StatusOK, map[string]any{"code": 200, "result": map[string]any{"suggestion": "pass", "scenes": map[string]any{"pulp": map[string]any{"suggestion": "pass"}}}})
		case r.URL.Path == "/video/censor":
			body := decodeBody(t, r)
			assert.Equal(t, map[string]any{"scenes": []any{"terror"}, "cut_param": map[string]any{"interval_msecs": 1000.0}}, body["params"])

			writeJSON(t, w, http.StatusOK, map[string]any{"job": "job-1"})
		case r.URL.Path == "/jobs/video/job-1":
			writeJSON(t, w, http.StatusOK, map[string]any{"id": "job-1", "status": "FINISHED", "result": map[string]any{"result": map[string]any{"suggestion": "block"}}})
		default:
			t.Errorf("unexpected request %s", r.URL.Path)
		}
	}

	results, err := execute(t, handler, map[string]any{"resource": "tools", "operation": "imageCensor", "uri": "https://example.com/a.jpg"}, items(1))
	require.NoError(t, err)
	assert.Equal(t, "pass", jsonOf(t, results[0])["suggestion"])

	settings := map[string]any{
		"resource":      "tools",
		"operation":     "videoCensor",
		"uri":           "https://example.com/a.mp4",
		"scenes":        []any{"terror"},
		"intervalMsecs": 1000,
	}

	results, err = execute(t, handler, settings, items(1))
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"jobId": "job-1", "status": "submitted", "suggestion": "", "scenes": nil}, results[0].JSON)

	settings["waitForCompletion"] = true

	results, err = execute(t, handler, settings, items(1))
	require.NoError(t, err)

	out := jsonOf(t, results[0])
	assert.Equal(t, "FINISHED", out["status"])
	assert.Equal(t, "block", out["suggestion"])

	_, err = execute(t, handler, map[string]any{"resource": "tools", "operation": "imageCensor", "uri": "x", "scenes": []any{"ads"}}, items(1))

	var configErr *domain.ConfigurationError
	require.ErrorAs(t, err, &configErr)
}
