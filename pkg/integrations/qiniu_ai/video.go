package qiniu_ai

import (
	"context"
	"encoding/base64"
	"strings"

	"github.com/qiniu-ai/flowbaker-qiniu/pkg/clients/qiniu"
	"github.com/qiniu-ai/flowbaker-qiniu/pkg/domain"

	"github.com/rs/zerolog/log"
)

const (
	DefaultVideoModel       = "kling-video-o1"
	DefaultVideoAspectRatio = "16:9"
)

// klingSizes is the size sent to kling models when none is configured.
var klingSizes = map[string]string{
	"16:9": "1920:1080",
	"9:16": "1080:1920",
	"1:1":  "1080:1080",
}

type VideoGenerateParams struct {
	Model                    string `json:"model"`
	Prompt                   string `json:"prompt"`
	AspectRatio              string `json:"aspectRatio"`
	WaitForCompletion        *bool  `json:"waitForCompletion"`
	FirstFrameURL            string `json:"firstFrameUrl"`
	FirstFrameBinaryProperty string `json:"firstFrameBinaryProperty"`
	LastFrameURL             string `json:"lastFrameUrl"`
	LastFrameBinaryProperty  string `json:"lastFrameBinaryProperty"`
	VideoReferenceURL        string `json:"videoReferenceUrl"`
	KeepOriginalSound        *bool  `json:"keepOriginalSound"`
	Options                  struct {
		NegativePrompt string `json:"negativePrompt"`
	} `json:"options"`
	KlingOptions KlingOptions `json:"klingOptions"`
	VeoOptions   VeoOptions   `json:"veoOptions"`
}

type KlingOptions struct {
	Duration string  `json:"duration"`
	Mode     string  `json:"mode"`
	CfgScale float64 `json:"cfgScale"`
	Size     string  `json:"size"`
}

type VeoOptions struct {
	GenerateAudio    *bool  `json:"generateAudio"`
	Resolution       string `json:"resolution"`
	SampleCount      int    `json:"sampleCount"`
	PersonGeneration string `json:"personGeneration"`
	Seed             int64  `json:"seed"`
}

type VideoRemixParams struct {
	SourceVideoID     string `json:"sourceVideoId"`
	RemixPrompt       string `json:"remixPrompt"`
	WaitForCompletion *bool  `json:"waitForCompletion"`
	RemixOptions      struct {
		Duration       string `json:"duration"`
		Mode           string `json:"mode"`
		NegativePrompt string `json:"negativePrompt"`
	} `json:"remixOptions"`
}

type VideoStatusParams struct {
	TaskID string `json:"taskId"`
}

type VideoOutput struct {
	ID      string            `json:"id"`
	Status  string            `json:"status"`
	Videos  []qiniu.VideoFile `json:"videos"`
	Message string            `json:"message,omitempty"`
}

// VideoTaskOutput is returned when the node does not wait for the task.
type VideoTaskOutput struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

func (p VideoGenerateParams) request(item domain.ExecutionItem) qiniu.VideoRequest {
	model := stringOr(p.Model, DefaultVideoModel)
	aspectRatio := stringOr(p.AspectRatio, DefaultVideoAspectRatio)

	req := qiniu.VideoRequest{
		Model:             model,
		Prompt:            p.Prompt,
		NegativePrompt:    p.Options.NegativePrompt,
		AspectRatio:       aspectRatio,
		VideoReferenceURL: p.VideoReferenceURL,
		KeepOriginalSound: p.KeepOriginalSound,
	}

	frames := &qiniu.VideoFrames{
		First: videoFrame(item, p.FirstFrameURL, p.FirstFrameBinaryProperty),
		Last:  videoFrame(item, p.LastFrameURL, p.LastFrameBinaryProperty),
	}

	if !frames.Empty() {
		req.Frames = frames
	}

	if strings.Contains(model, "kling") {
		req.Duration = p.KlingOptions.Duration
		req.Mode = p.KlingOptions.Mode
		req.CfgScale = p.KlingOptions.CfgScale
		req.Size = stringOr(p.KlingOptions.Size, klingSizes[aspectRatio])
	}

	if strings.Contains(model, "veo") {
		req.GenerateAudio = p.VeoOptions.GenerateAudio
		req.Resolution = p.VeoOptions.Resolution
		req.SampleCount = p.VeoOptions.SampleCount
		req.PersonGeneration = p.VeoOptions.PersonGeneration
		req.Seed = p.VeoOptions.Seed
	}

	return req
}

// videoFrame prefers the URL. A binary property that does not resolve is skipped.
func videoFrame(item domain.ExecutionItem, url, binaryProperty string) *qiniu.VideoFrame {
	if url != "" {
		return &qiniu.VideoFrame{URL: url}
	}

	if binaryProperty == "" {
		return nil
	}

	binary, ok := item.Binary[binaryProperty]
	if !ok || len(binary.Data) == 0 {
		log.Debug().Str("property", binaryProperty).Msg("frame binary not found, skipping")
		return nil
	}

	return &qiniu.VideoFrame{Base64: base64.StdEncoding.EncodeToString(binary.Data)}
}

func (i *QiniuAIIntegration) VideoGenerate(ctx context.Context, params domain.IntegrationInput, item domain.ExecutionItem, itemIndex int) (domain.NodeResult, error) {
	p := VideoGenerateParams{}
	if err := i.bind(ctx, item, itemIndex, &p, params); err != nil {
		return domain.NodeResult{}, err
	}

	task, err := i.client.Video.Create(ctx, p.request(item))
	if err != nil {
		return domain.NodeResult{}, err
	}

	return i.videoResult(ctx, task, boolOr(p.WaitForCompletion, true))
}

func (i *QiniuAIIntegration) VideoRemix(ctx context.Context, params domain.IntegrationInput, item domain.ExecutionItem, itemIndex int) (domain.NodeResult, error) {
	p := VideoRemixParams{}
	if err := i.bind(ctx, item, itemIndex, &p, params); err != nil {
		return domain.NodeResult{}, err
	}

	if p.SourceVideoID == "" {
		return domain.NodeResult{}, domain.NewConfigurationError(itemIndex, "Source video ID is required")
	}

	task, err := i.client.Video.Remix(ctx, p.SourceVideoID, qiniu.RemixRequest{
		Prompt:         p.RemixPrompt,
		Duration:       p.RemixOptions.Duration,
		Mode:           p.RemixOptions.Mode,
		NegativePrompt: p.RemixOptions.NegativePrompt,
	})
	if err != nil {
		return domain.NodeResult{}, err
	}

	return i.videoResult(ctx, task, boolOr(p.WaitForCompletion, true))
}

func (i *QiniuAIIntegration) VideoGetStatus(ctx context.Context, params domain.IntegrationInput, item domain.ExecutionItem, itemIndex int) (domain.NodeResult, error) {
	p := VideoStatusParams{}
	if err := i.bind(ctx, item, itemIndex, &p, params); err != nil {
		return domain.NodeResult{}, err
	}

	if p.TaskID == "" {
		return domain.NodeResult{}, domain.NewConfigurationError(itemIndex, "Task ID is required")
	}

	task, err := i.client.Video.Get(ctx, p.TaskID)
	if err != nil {
		return domain.NodeResult{}, err
	}

	return result(VideoOutput{
		ID:      task.ID,
		Status:  task.Status,
		Videos:  task.Videos(),
		Message: task.Message,
	}, task.Raw), nil
}

func (i *QiniuAIIntegration) videoResult(ctx context.Context, task *qiniu.VideoTask, wait bool) (domain.NodeResult, error) {
	if !wait {
		return result(VideoTaskOutput{ID: task.ID, Status: "processing"}, task.Raw), nil
	}

	final, err := i.client.Video.WaitForCompletion(ctx, task.ID)
	if err != nil {
		return domain.NodeResult{}, err
	}

	return result(VideoOutput{
		ID:     final.ID,
		Status: final.Status,
		Videos: final.Videos(),
	}, final.Raw), nil
}
