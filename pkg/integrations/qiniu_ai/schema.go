package qiniu_ai

import (
	"github.com/qiniu-ai/flowbaker-qiniu/pkg/domain"
)

var (
	Schema = schema

	chatModelOptions = []domain.NodePropertyOption{
		{Label: "Qwen3 Max", Value: "qwen3-max"},
		{Label: "Qwen3 235B A22B", Value: "qwen3-235b-a22b"},
		{Label: "DeepSeek V3", Value: "deepseek-v3"},
		{Label: "DeepSeek R1", Value: "deepseek-r1"},
		{Label: "Kimi K2", Value: "kimi-k2"},
		{Label: "GLM 4.5", Value: "glm-4.5"},
	}

	imageModelOptions = []domain.NodePropertyOption{
		{Label: "Kling V2.1", Value: "kling-v2-1"},
		{Label: "Kling V2", Value: "kling-v2"},
		{Label: "Gemini 2.5 Flash Image", Value: "gemini-2.5-flash-image"},
	}

	videoModelOptions = []domain.NodePropertyOption{
		{Label: "Kling Video O1", Value: "kling-video-o1"},
		{Label: "Kling V2.1", Value: "kling-v2-1"},
		{Label: "Veo 3.0", Value: "veo-3.0-generate-preview"},
		{Label: "Veo 2.0", Value: "veo-2.0-generate-001"},
	}

	aspectRatioOptions = []domain.NodePropertyOption{
		{Label: "16:9", Value: "16:9"},
		{Label: "9:16", Value: "9:16"},
		{Label: "1:1", Value: "1:1"},
		{Label: "4:3", Value: "4:3"},
		{Label: "3:4", Value: "3:4"},
	}

	censorSceneOptions = []domain.MultipleNodePropertyOption{
		{Label: "Pornography", Value: "pulp"},
		{Label: "Terrorism", Value: "terror"},
		{Label: "Politically Sensitive", Value: "politician"},
	}

	waitForCompletionProperty = domain.NodeProperty{
		Key:         "waitForCompletion",
		Name:        "Wait For Completion",
		Description: "Poll the task until it finishes instead of returning the task id",
		Type:        domain.NodePropertyType_Boolean,
		Default:     true,
	}

	binaryPropertyNameProperty = domain.NodeProperty{
		Key:         "binaryPropertyName",
		Name:        "Binary Property",
		Description: "Name of the item attachment to read",
		Type:        domain.NodePropertyType_String,
		Default:     domain.DefaultBinaryPropertyName,
	}

	imageOptionProperties = []domain.NodeProperty{
		{Key: "negativePrompt", Name: "Negative Prompt", Type: domain.NodePropertyType_Text},
		{Key: "aspectRatio", Name: "Aspect Ratio", Type: domain.NodePropertyType_String, Options: aspectRatioOptions},
		{Key: "n", Name: "Number Of Images", Type: domain.NodePropertyType_Integer, NumberOpts: &domain.NumberPropertyOptions{Min: 1, Max: 9, Default: 1}},
		{Key: "imageSize", Name: "Image Size", Description: "Sent as image_config.image_size", Type: domain.NodePropertyType_String, Options: []domain.NodePropertyOption{
			{Label: "1K", Value: "1K"},
			{Label: "2K", Value: "2K"},
			{Label: "4K", Value: "4K"},
		}},
		{Key: "outputFormat", Name: "Output Format", Type: domain.NodePropertyType_String, Options: []domain.NodePropertyOption{
			{Label: "PNG", Value: "png"},
			{Label: "JPEG", Value: "jpeg"},
			{Label: "WebP", Value: "webp"},
		}},
	}

	schema domain.Integration = domain.Integration{
		ID:          domain.IntegrationType_QiniuAI,
		Name:        "Qiniu AI",
		Description: "Use Qiniu AI for chat, image and video generation, agents, speech and content tools.",
		CredentialProperties: []domain.NodeProperty{
			{
				Key:         "api_key",
				Name:        "API Key",
				Description: "Your Qiniu AI API key",
				Required:    true,
				Type:        domain.NodePropertyType_String,
				IsSecret:    true,
			},
			{
				Key:         "base_url",
				Name:        "Base URL",
				Description: "Qiniu AI API endpoint",
				Type:        domain.NodePropertyType_String,
				Default:     "https://api.qnaigc.com/v1",
			},
		},
		CanTestConnection: true,
		Actions: []domain.IntegrationAction{
			{
				ID:          "chat_complete",
				Name:        "Chat Completion",
				ActionType:  IntegrationActionType_ChatComplete,
				Description: "Generate a chat completion",
				Properties: []domain.NodeProperty{
					{Key: "model", Name: "Model", Required: true, Type: domain.NodePropertyType_String, Options: chatModelOptions, Default: DefaultChatModel},
					{
						Key:     "inputType",
						Name:    "Input Type",
						Type:    domain.NodePropertyType_String,
						Default: ChatInputType_Simple,
						Options: []domain.NodePropertyOption{
							{Label: "Simple Prompt", Value: ChatInputType_Simple},
							{Label: "Message List", Value: ChatInputType_Messages},
						},
					},
					{Key: "prompt", Name: "Prompt", Type: domain.NodePropertyType_Text, ShowIf: &domain.ShowIf{PropertyKey: "inputType", Values: []any{ChatInputType_Simple}}, ExpressionChoice: true},
					{Key: "systemMessage", Name: "System Message", Type: domain.NodePropertyType_Text, ShowIf: &domain.ShowIf{PropertyKey: "inputType", Values: []any{ChatInputType_Simple}}},
					{
						Key:    "messages",
						Name:   "Messages",
						Type:   domain.NodePropertyType_Map,
						ShowIf: &domain.ShowIf{PropertyKey: "inputType", Values: []any{ChatInputType_Messages}},
						MapOpts: &domain.MapPropertyOptions{Properties: []domain.NodeProperty{
							{
								Key:  "messageValues",
								Name: "Messages",
								Type: domain.NodePropertyType_Array,
								ArrayOpts: &domain.ArrayPropertyOptions{
									ItemType: domain.NodePropertyType_Map,
									ItemProperties: []domain.NodeProperty{
										{Key: "role", Name: "Role", Required: true, Type: domain.NodePropertyType_String, Options: []domain.NodePropertyOption{
											{Label: "System", Value: "system"},
											{Label: "User", Value: "user"},
											{Label: "Assistant", Value: "assistant"},
										}},
										{Key: "content", Name: "Content", Required: true, Type: domain.NodePropertyType_Text},
									},
								},
							},
						}},
					},
					{
						Key:      "options",
						Name:     "Options",
						Type:     domain.NodePropertyType_Map,
						Advanced: true,
						MapOpts: &domain.MapPropertyOptions{Properties: []domain.NodeProperty{
							{Key: "temperature", Name: "Temperature", Type: domain.NodePropertyType_Float, NumberOpts: &domain.NumberPropertyOptions{Min: 0, Max: 2, Step: 0.1}},
							{Key: "maxTokens", Name: "Max Tokens", Type: domain.NodePropertyType_Integer},
							{Key: "topP", Name: "Top P", Type: domain.NodePropertyType_Float, NumberOpts: &domain.NumberPropertyOptions{Min: 0, Max: 1, Step: 0.05}},
							{Key: "jsonMode", Name: "JSON Mode", Description: "Ask the model to answer with a JSON object", Type: domain.NodePropertyType_Boolean},
						}},
					},
				},
			},
			{
				ID:          "image_generate",
				Name:        "Generate Image",
				ActionType:  IntegrationActionType_ImageGenerate,
				Description: "Generate images from a prompt. Inline images become attachments data, data_1, ...",
				Properties: []domain.NodeProperty{
					{Key: "model", Name: "Model", Required: true, Type: domain.NodePropertyType_String, Options: imageModelOptions, Default: DefaultImageModel},
					{Key: "prompt", Name: "Prompt", Required: true, Type: domain.NodePropertyType_Text, ExpressionChoice: true},
					waitForCompletionProperty,
					{Key: "subjectImageUrl", Name: "Subject Reference URL", Type: domain.NodePropertyType_String},
					{Key: "sceneImageUrl", Name: "Scene Reference URL", Type: domain.NodePropertyType_String},
					{Key: "styleImageUrl", Name: "Style Reference URL", Type: domain.NodePropertyType_String},
					{Key: "options", Name: "Options", Type: domain.NodePropertyType_Map, Advanced: true, MapOpts: &domain.MapPropertyOptions{Properties: imageOptionProperties}},
				},
			},
			{
				ID:          "image_edit",
				Name:        "Edit Image",
				ActionType:  IntegrationActionType_ImageEdit,
				Description: "Edit an image from a reference URL",
				Properties: []domain.NodeProperty{
					{Key: "model", Name: "Model", Required: true, Type: domain.NodePropertyType_String, Options: imageModelOptions, Default: DefaultImageModel},
					{Key: "prompt", Name: "Prompt", Required: true, Type: domain.NodePropertyType_Text, ExpressionChoice: true},
					{Key: "referenceImageUrl", Name: "Reference Image URL", Required: true, Type: domain.NodePropertyType_String},
					waitForCompletionProperty,
					{
						Key:      "options",
						Name:     "Options",
						Type:     domain.NodePropertyType_Map,
						Advanced: true,
						MapOpts: &domain.MapPropertyOptions{Properties: append(append([]domain.NodeProperty{}, imageOptionProperties...),
							domain.NodeProperty{Key: "mask", Name: "Mask", Description: "Mask image URL or base64", Type: domain.NodePropertyType_String},
							domain.NodeProperty{Key: "strength", Name: "Strength", Type: domain.NodePropertyType_Float, NumberOpts: &domain.NumberPropertyOptions{Min: 0, Max: 1, Step: 0.05}},
							domain.NodeProperty{Key: "imageReference", Name: "Image Reference", Type: domain.NodePropertyType_String, Options: []domain.NodePropertyOption{
								{Label: "Subject", Value: "subject"},
								{Label: "Face", Value: "face"},
							}},
						)},
					},
				},
			},
			{
				ID:          "video_generate",
				Name:        "Generate Video",
				ActionType:  IntegrationActionType_VideoGenerate,
				Description: "Generate a video from a prompt and optional frames",
				Properties: []domain.NodeProperty{
					{Key: "model", Name: "Model", Required: true, Type: domain.NodePropertyType_String, Options: videoModelOptions, Default: DefaultVideoModel},
					{Key: "prompt", Name: "Prompt", Required: true, Type: domain.NodePropertyType_Text, ExpressionChoice: true},
					{Key: "aspectRatio", Name: "Aspect Ratio", Type: domain.NodePropertyType_String, Options: aspectRatioOptions, Default: DefaultVideoAspectRatio},
					waitForCompletionProperty,
					{Key: "firstFrameUrl", Name: "First Frame URL", Type: domain.NodePropertyType_String},
					{Key: "firstFrameBinaryProperty", Name: "First Frame Binary Property", Description: "Used when no first frame URL is set", Type: domain.NodePropertyType_String},
					{Key: "lastFrameUrl", Name: "Last Frame URL", Type: domain.NodePropertyType_String},
					{Key: "lastFrameBinaryProperty", Name: "Last Frame Binary Property", Description: "Used when no last frame URL is set", Type: domain.NodePropertyType_String},
					{Key: "videoReferenceUrl", Name: "Reference Video URL", Type: domain.NodePropertyType_String},
					{Key: "keepOriginalSound", Name: "Keep Original Sound", Type: domain.NodePropertyType_Boolean},
					{
						Key:      "options",
						Name:     "Options",
						Type:     domain.NodePropertyType_Map,
						Advanced: true,
						MapOpts: &domain.MapPropertyOptions{Properties: []domain.NodeProperty{
							{Key: "negativePrompt", Name: "Negative Prompt", Type: domain.NodePropertyType_Text},
						}},
					},
					{
						Key:         "klingOptions",
						Name:        "Kling Options",
						Description: "Applied when the model name contains kling",
						Type:        domain.NodePropertyType_Map,
						Advanced:    true,
						MapOpts: &domain.MapPropertyOptions{Properties: []domain.NodeProperty{
							{Key: "duration", Name: "Duration", Type: domain.NodePropertyType_String, Options: []domain.NodePropertyOption{
								{Label: "5 seconds", Value: "5"},
								{Label: "10 seconds", Value: "10"},
							}},
							{Key: "mode", Name: "Mode", Type: domain.NodePropertyType_String, Options: []domain.NodePropertyOption{
								{Label: "Standard", Value: "std"},
								{Label: "Professional", Value: "pro"},
							}},
							{Key: "cfgScale", Name: "CFG Scale", Type: domain.NodePropertyType_Float, NumberOpts: &domain.NumberPropertyOptions{Min: 0, Max: 1, Step: 0.1}},
							{Key: "size", Name: "Size", Description: "Derived from the aspect ratio when empty", Type: domain.NodePropertyType_String},
						}},
					},
					{
						Key:         "veoOptions",
						Name:        "Veo Options",
						Description: "Applied when the model name contains veo",
						Type:        domain.NodePropertyType_Map,
						Advanced:    true,
						MapOpts: &domain.MapPropertyOptions{Properties: []domain.NodeProperty{
							{Key: "generateAudio", Name: "Generate Audio", Type: domain.NodePropertyType_Boolean},
							{Key: "resolution", Name: "Resolution", Type: domain.NodePropertyType_String, Options: []domain.NodePropertyOption{
								{Label: "720p", Value: "720p"},
								{Label: "1080p", Value: "1080p"},
							}},
							{Key: "sampleCount", Name: "Sample Count", Type: domain.NodePropertyType_Integer, NumberOpts: &domain.NumberPropertyOptions{Min: 1, Max: 4}},
							{Key: "personGeneration", Name: "Person Generation", Type: domain.NodePropertyType_String, Options: []domain.NodePropertyOption{
								{Label: "Allow Adult", Value: "allow_adult"},
								{Label: "Don't Allow", Value: "dont_allow"},
							}},
							{Key: "seed", Name: "Seed", Type: domain.NodePropertyType_Integer},
						}},
					},
				},
			},
			{
				ID:          "video_remix",
				Name:        "Remix Video",
				ActionType:  IntegrationActionType_VideoRemix,
				Description: "Create a new video from an existing one",
				Properties: []domain.NodeProperty{
					{Key: "sourceVideoId", Name: "Source Video ID", Required: true, Type: domain.NodePropertyType_String},
					{Key: "remixPrompt", Name: "Prompt", Required: true, Type: domain.NodePropertyType_Text},
					waitForCompletionProperty,
					{
						Key:      "remixOptions",
						Name:     "Options",
						Type:     domain.NodePropertyType_Map,
						Advanced: true,
						MapOpts: &domain.MapPropertyOptions{Properties: []domain.NodeProperty{
							{Key: "duration", Name: "Duration", Type: domain.NodePropertyType_String},
							{Key: "mode", Name: "Mode", Type: domain.NodePropertyType_String},
							{Key: "negativePrompt", Name: "Negative Prompt", Type: domain.NodePropertyType_Text},
						}},
					},
				},
			},
			{
				ID:          "video_get_status",
				Name:        "Get Video Status",
				ActionType:  IntegrationActionType_VideoGetStatus,
				Description: "Fetch the state of a video task",
				Properties: []domain.NodeProperty{
					{Key: "taskId", Name: "Task ID", Required: true, Type: domain.NodePropertyType_String},
				},
			},
			{
				ID:          "agent_run",
				Name:        "Run Agent",
				ActionType:  IntegrationActionType_AgentRun,
				Description: "Run a tool-calling agent with optional conversation memory",
				Properties: []domain.NodeProperty{
					{Key: "model", Name: "Model", Required: true, Type: domain.NodePropertyType_String, Options: chatModelOptions, Default: DefaultChatModel},
					{Key: "prompt", Name: "Prompt", Required: true, Type: domain.NodePropertyType_Text, ExpressionChoice: true},
					{Key: "systemMessage", Name: "System Message", Type: domain.NodePropertyType_Text},
					{
						Key:  "builtinTools",
						Name: "Builtin Tools",
						Type: domain.NodePropertyType_ListTagInput,
						MultipleOpts: []domain.MultipleNodePropertyOption{
							{Label: "Web Search", Value: BuiltinTool_WebSearch},
							{Label: "OCR", Value: BuiltinTool_OCR},
							{Label: "Image Generation", Value: BuiltinTool_ImageGenerate},
							{Label: "Video Generation", Value: BuiltinTool_VideoGenerate},
						},
					},
					{Key: "autoExecuteTools", Name: "Execute Tools", Description: "When off, tools are offered to the model but return a placeholder result", Type: domain.NodePropertyType_Boolean, Default: true},
					{
						Key:      "options",
						Name:     "Options",
						Type:     domain.NodePropertyType_Map,
						Advanced: true,
						MapOpts: &domain.MapPropertyOptions{Properties: []domain.NodeProperty{
							{Key: "maxContextTokens", Name: "Max Context Tokens", Type: domain.NodePropertyType_Integer, Default: 32000},
							{Key: "maxSteps", Name: "Max Steps", Type: domain.NodePropertyType_Integer, Default: 10, NumberOpts: &domain.NumberPropertyOptions{Min: 1, Max: 50}},
							{Key: "threadId", Name: "Thread ID", Description: "Generated when a checkpointer is active and this is empty", Type: domain.NodePropertyType_String},
							{Key: "temperature", Name: "Temperature", Type: domain.NodePropertyType_Float, Default: DefaultAgentTemperature},
							{Key: "tools", Name: "Tools", Description: "JSON array of OpenAI function definitions", Type: domain.NodePropertyType_CodeEditor, CodeLanguage: domain.CodeLanguageType_JSON, Placeholder: `[{"type":"function","function":{"name":"lookup","parameters":{"type":"object"}}}]`},
							{Key: "imageModel", Name: "Image Model", Type: domain.NodePropertyType_String, Options: imageModelOptions, Default: DefaultImageModel},
							{Key: "videoModel", Name: "Video Model", Type: domain.NodePropertyType_String, Options: videoModelOptions, Default: DefaultVideoModel},
							{Key: "checkpointerType", Name: "Checkpointer", Type: domain.NodePropertyType_String, Default: "none", Options: []domain.NodePropertyOption{
								{Label: "None", Value: "none"},
								{Label: "In Memory", Value: "memory"},
								{Label: "Qiniu Kodo", Value: "kodo"},
								{Label: "Redis", Value: "redis"},
								{Label: "PostgreSQL", Value: "postgres"},
								{Label: "MongoDB", Value: "mongodb"},
							}},
							{Key: "checkpointerConnection", Name: "Connection String", Description: "redis:// URL, postgres DSN or mongodb URI", Type: domain.NodePropertyType_String, IsSecret: true, ShowIf: &domain.ShowIf{PropertyKey: "checkpointerType", Values: []any{"redis", "postgres", "mongodb"}}},
							{Key: "kodoBucket", Name: "Kodo Bucket", Type: domain.NodePropertyType_String, ShowIf: &domain.ShowIf{PropertyKey: "checkpointerType", Values: []any{"kodo"}}},
							{Key: "kodoAccessKey", Name: "Kodo Access Key", Type: domain.NodePropertyType_String, ShowIf: &domain.ShowIf{PropertyKey: "checkpointerType", Values: []any{"kodo"}}},
							{Key: "kodoSecretKey", Name: "Kodo Secret Key", Type: domain.NodePropertyType_String, IsSecret: true, ShowIf: &domain.ShowIf{PropertyKey: "checkpointerType", Values: []any{"kodo"}}},
							{Key: "kodoRegion", Name: "Kodo Region", Type: domain.NodePropertyType_String, Default: "cn-east-1", ShowIf: &domain.ShowIf{PropertyKey: "checkpointerType", Values: []any{"kodo"}}},
							{Key: "kodoEndpoint", Name: "Kodo Endpoint", Type: domain.NodePropertyType_String, ShowIf: &domain.ShowIf{PropertyKey: "checkpointerType", Values: []any{"kodo"}}},
							{Key: "kodoPrefix", Name: "Kodo Prefix", Type: domain.NodePropertyType_String, Default: "agent-threads/", ShowIf: &domain.ShowIf{PropertyKey: "checkpointerType", Values: []any{"kodo"}}},
						}},
					},
				},
			},
			{
				ID:          "audio_text_to_speech",
				Name:        "Text To Speech",
				ActionType:  IntegrationActionType_AudioTextToSpeech,
				Description: "Synthesize speech. The audio is returned base64 encoded",
				Properties: []domain.NodeProperty{
					{Key: "text", Name: "Text", Required: true, Type: domain.NodePropertyType_Text, ExpressionChoice: true},
					{Key: "voice", Name: "Voice", Type: domain.NodePropertyType_String, Default: DefaultVoice},
					{
						Key:      "options",
						Name:     "Options",
						Type:     domain.NodePropertyType_Map,
						Advanced: true,
						MapOpts: &domain.MapPropertyOptions{Properties: []domain.NodeProperty{
							{Key: "encoding", Name: "Encoding", Type: domain.NodePropertyType_String, Default: "mp3", Options: []domain.NodePropertyOption{
								{Label: "MP3", Value: "mp3"},
								{Label: "WAV", Value: "wav"},
								{Label: "PCM", Value: "pcm"},
							}},
							{Key: "speedRatio", Name: "Speed Ratio", Type: domain.NodePropertyType_Float, NumberOpts: &domain.NumberPropertyOptions{Min: 0.5, Max: 2, Default: 1, Step: 0.1}},
							{Key: "volume", Name: "Volume", Type: domain.NodePropertyType_Float, NumberOpts: &domain.NumberPropertyOptions{Min: 0, Max: 1, Default: 1, Step: 0.1}},
						}},
					},
				},
			},
			{
				ID:          "audio_speech_to_text",
				Name:        "Speech To Text",
				ActionType:  IntegrationActionType_AudioSpeechToText,
				Description: "Transcribe an audio attachment",
				Properties: []domain.NodeProperty{
					binaryPropertyNameProperty,
					{Key: "audioFormat", Name: "Audio Format", Type: domain.NodePropertyType_String, Default: DefaultAudioFormat, Options: []domain.NodePropertyOption{
						{Label: "WAV", Value: "wav"},
						{Label: "MP3", Value: "mp3"},
						{Label: "OGG", Value: "ogg"},
						{Label: "PCM", Value: "pcm"},
					}},
				},
			},
			{
				ID:          "tools_web_search",
				Name:        "Web Search",
				ActionType:  IntegrationActionType_ToolsWebSearch,
				Description: "Search the web",
				Properties: []domain.NodeProperty{
					{Key: "query", Name: "Query", Required: true, Type: domain.NodePropertyType_String, ExpressionChoice: true},
					{
						Key:      "options",
						Name:     "Options",
						Type:     domain.NodePropertyType_Map,
						Advanced: true,
						MapOpts: &domain.MapPropertyOptions{Properties: []domain.NodeProperty{
							{Key: "maxResults", Name: "Max Results", Type: domain.NodePropertyType_Integer, Default: DefaultSearchMaxResults, NumberOpts: &domain.NumberPropertyOptions{Min: 1, Max: maxSearchResults}},
							{Key: "searchType", Name: "Search Type", Type: domain.NodePropertyType_String, Default: "web", Options: []domain.NodePropertyOption{
								{Label: "Web", Value: "web"},
								{Label: "News", Value: "news"},
							}},
							{Key: "timeFilter", Name: "Time Filter", Type: domain.NodePropertyType_String, Options: []domain.NodePropertyOption{
								{Label: "Past Day", Value: "day"},
								{Label: "Past Week", Value: "week"},
								{Label: "Past Month", Value: "month"},
								{Label: "Past Year", Value: "year"},
							}},
							{Key: "siteFilter", Name: "Site Filter", Description: "Comma separated list of sites", Type: domain.NodePropertyType_String},
						}},
					},
				},
			},
			{
				ID:          "tools_ocr",
				Name:        "OCR",
				ActionType:  IntegrationActionType_ToolsOCR,
				Description: "Recognize text in an image URL or attachment",
				Properties: []domain.NodeProperty{
					{Key: "imageUrl", Name: "Image URL", Description: "Takes precedence over the binary property", Type: domain.NodePropertyType_String},
					binaryPropertyNameProperty,
				},
			},
			{
				ID:          "tools_image_censor",
				Name:        "Image Censor",
				ActionType:  IntegrationActionType_ToolsImageCensor,
				Description: "Moderate an image",
				Properties: []domain.NodeProperty{
					{Key: "uri", Name: "Image URI", Required: true, Type: domain.NodePropertyType_String},
					{Key: "scenes", Name: "Scenes", Type: domain.NodePropertyType_ListTagInput, MultipleOpts: censorSceneOptions},
				},
			},
			{
				ID:          "tools_video_censor",
				Name:        "Video Censor",
				ActionType:  IntegrationActionType_ToolsVideoCensor,
				Description: "Moderate a video",
				Properties: []domain.NodeProperty{
					{Key: "uri", Name: "Video URI", Required: true, Type: domain.NodePropertyType_String},
					{Key: "scenes", Name: "Scenes", Type: domain.NodePropertyType_ListTagInput, MultipleOpts: censorSceneOptions},
					{Key: "waitForCompletion", Name: "Wait For Completion", Type: domain.NodePropertyType_Boolean, Default: false},
					{Key: "intervalMsecs", Name: "Frame Interval (ms)", Type: domain.NodePropertyType_Integer, Advanced: true},
				},
			},
			{
				ID:          "tools_vframe",
				Name:        "Extract Video Frames",
				ActionType:  IntegrationActionType_ToolsVframe,
				Description: "Build evenly spaced frame snapshot URLs for a Kodo hosted video",
				Properties: []domain.NodeProperty{
					{Key: "videoUrl", Name: "Video URL", Required: true, Type: domain.NodePropertyType_String},
					{Key: "videoDuration", Name: "Video Duration", Description: "Length of the video in seconds", Required: true, Type: domain.NodePropertyType_Float},
					{Key: "frameCount", Name: "Frame Count", Required: true, Type: domain.NodePropertyType_Integer, Default: 5, NumberOpts: &domain.NumberPropertyOptions{Min: 1, Max: MaxFrameCount}},
					{Key: "width", Name: "Width", Type: domain.NodePropertyType_Integer, Default: DefaultFrameWidth},
					{Key: "format", Name: "Format", Type: domain.NodePropertyType_String, Default: DefaultFrameFormat, Options: []domain.NodePropertyOption{
						{Label: "JPG", Value: "jpg"},
						{Label: "PNG", Value: "png"},
					}},
				},
			},
		},
	}
)
