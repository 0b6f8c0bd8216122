package qiniu_ai

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/qiniu-ai/flowbaker-qiniu/pkg/ai-sdk/tool"
	"github.com/qiniu-ai/flowbaker-qiniu/pkg/clients/qiniu"
	"github.com/qiniu-ai/flowbaker-qiniu/pkg/domain"

	toolschema "github.com/google/jsonschema-go/jsonschema"
)

const (
	BuiltinTool_WebSearch     = "webSearch"
	BuiltinTool_OCR           = "ocr"
	BuiltinTool_ImageGenerate = "imageGenerate"
	BuiltinTool_VideoGenerate = "videoGenerate"
)

var (
	webSearchSchema = &toolschema.Schema{
		Type: "object",
		Properties: map[string]*toolschema.Schema{
			"query":      {Type: "string", Description: "The search query"},
			"maxResults": {Type: "integer", Description: "Number of results to return", Minimum: float64Ptr(1), Maximum: float64Ptr(maxSearchResults)},
			"searchType": {Type: "string", Description: "Search web pages or news", Enum: []any{"web", "news"}},
		},
		Required: []string{"query"},
	}

	ocrSchema = &toolschema.Schema{
		Type: "object",
		Properties: map[string]*toolschema.Schema{
			"imageUrl": {Type: "string", Description: "Public URL of the image to read"},
		},
		Required: []string{"imageUrl"},
	}

	imageGenerateSchema = &toolschema.Schema{
		Type: "object",
		Properties: map[string]*toolschema.Schema{
			"prompt":      {Type: "string", Description: "Description of the image"},
			"aspectRatio": {Type: "string", Description: "Aspect ratio such as 1:1 or 16:9"},
		},
		Required: []string{"prompt"},
	}

	videoGenerateSchema = &toolschema.Schema{
		Type: "object",
		Properties: map[string]*toolschema.Schema{
			"prompt":      {Type: "string", Description: "Description of the video"},
			"aspectRatio": {Type: "string", Description: "Aspect ratio such as 16:9 or 9:16"},
		},
		Required: []string{"prompt"},
	}
)

type builtinToolArgs struct {
	Query       string `json:"query"`
	MaxResults  int    `json:"maxResults"`
	SearchType  string `json:"searchType"`
	ImageURL    string `json:"imageUrl"`
	Prompt      string `json:"prompt"`
	AspectRatio string `json:"aspectRatio"`
}

// builtinTools builds the selected tools as closures over the execution's client.
func (i *QiniuAIIntegration) builtinTools(itemIndex int, names []string, options AgentOptions) ([]tool.Tool, error) {
	tools := make([]tool.Tool, 0, len(names))

	for _, name := range names {
		var (
			t   tool.Tool
			err error
		)

		switch name {
		case BuiltinTool_WebSearch:
			t, err = defineTool("web_search", "Search the web and return the top results", webSearchSchema, i.webSearchTool)
		case BuiltinTool_OCR:
			t, err = defineTool("ocr", "Extract the text from an image", ocrSchema, i.ocrTool)
		case BuiltinTool_ImageGenerate:
			t, err = defineTool("image_generate", "Generate an image and return its URLs", imageGenerateSchema, i.imageGenerateTool(stringOr(options.ImageModel, DefaultImageModel)))
		case BuiltinTool_VideoGenerate:
			t, err = defineTool("video_generate", "Start a video generation task and return its id", videoGenerateSchema, i.videoGenerateTool(stringOr(options.VideoModel, DefaultVideoModel)))
		default:
			return nil, domain.NewConfigurationError(itemIndex, fmt.Sprintf("Unknown builtin tool: %s", name))
		}

		if err != nil {
			return nil, err
		}

		tools = append(tools, t)
	}

	return tools, nil
}

func defineTool(name, description string, schema *toolschema.Schema, fn tool.ExecuteFunc) (tool.Tool, error) {
	encoded, err := json.Marshal(schema)
	if err != nil {
		return nil, fmt.Errorf("failed to encode %s schema: %w", name, err)
	}

	parameters := map[string]any{}
	if err := json.Unmarshal(encoded, &parameters); err != nil {
		return nil, fmt.Errorf("failed to decode %s schema: %w", name, err)
	}

	return tool.Define(name, description, parameters, fn), nil
}

func decodeToolArgs(args string) (builtinToolArgs, error) {
	decoded := builtinToolArgs{}
	if err := json.Unmarshal([]byte(args), &decoded); err != nil {
		return builtinToolArgs{}, fmt.Errorf("invalid tool arguments: %w", err)
	}

	return decoded, nil
}

func encodeToolResult(value any) (string, error) {
	encoded, err := json.Marshal(value)
	if err != nil {
		return "", fmt.Errorf("failed to encode tool result: %w", err)
	}

	return string(encoded), nil
}

func (i *QiniuAIIntegration) webSearchTool(ctx context.Context, args string) (string, error) {
	decoded, err := decodeToolArgs(args)
	if err != nil {
		return "", err
	}

	maxResults := decoded.MaxResults
	if maxResults <= 0 || maxResults > maxSearchResults {
		maxResults = DefaultSearchMaxResults
	}

	resp, err := i.client.Sys.Search(ctx, qiniu.SearchRequest{
		Query:      decoded.Query,
		MaxResults: maxResults,
		SearchType: decoded.SearchType,
	})
	if err != nil {
		return "", err
	}

	return encodeToolResult(resp.Results)
}

func (i *QiniuAIIntegration) ocrTool(ctx context.Context, args string) (string, error) {
	decoded, err := decodeToolArgs(args)
	if err != nil {
		return "", err
	}

	resp, err := i.client.OCR.Detect(ctx, qiniu.OCRRequest{Image: decoded.ImageURL})
	if err != nil {
		return "", err
	}

	return encodeToolResult(OCROutput{Text: resp.Text, Blocks: resp.Blocks})
}

func (i *QiniuAIIntegration) imageGenerateTool(model string) tool.ExecuteFunc {
	return func(ctx context.Context, args string) (string, error) {
		decoded, err := decodeToolArgs(args)
		if err != nil {
			return "", err
		}

		created, err := i.client.Image.Generate(ctx, qiniu.ImageRequest{
			Model:       model,
			Prompt:      decoded.Prompt,
			AspectRatio: decoded.AspectRatio,
		})
		if err != nil {
			return "", err
		}

		final, err := i.client.Image.WaitForResult(ctx, created)
		if err != nil {
			return "", err
		}

		urls := []string{}
		inline := 0

		for _, image := range final.Data {
			if image.URL != "" {
				urls = append(urls, image.URL)
			} else if image.B64JSON != "" {
				inline++
			}
		}

		return encodeToolResult(map[string]any{
			"status":       stringOr(final.Status, "succeed"),
			"urls":         urls,
			"inlineImages": inline,
		})
	}
}

func (i *QiniuAIIntegration) videoGenerateTool(model string) tool.ExecuteFunc {
	return func(ctx context.Context, args string) (string, error) {
		decoded, err := decodeToolArgs(args)
		if err != nil {
			return "", err
		}

		params := VideoGenerateParams{
			Model:       model,
			Prompt:      decoded.Prompt,
			AspectRatio: decoded.AspectRatio,
		}

		task, err := i.client.Video.Create(ctx, params.request(domain.ExecutionItem{}))
		if err != nil {
			return "", err
		}

		return encodeToolResult(map[string]any{
			"taskId": task.ID,
			"status": "processing",
		})
	}
}

func float64Ptr(v float64) *float64 {
	return &v
}
