package qiniu_ai

import (
	"context"
	"encoding/base64"
	"fmt"

	"github.com/qiniu-ai/flowbaker-qiniu/pkg/clients/qiniu"
	"github.com/qiniu-ai/flowbaker-qiniu/pkg/domain"
)

const (
	DefaultImageModel  = "kling-v2-1"
	defaultImageFormat = "png"
)

type ImageParams struct {
	Model             string       `json:"model"`
	Prompt            string       `json:"prompt"`
	WaitForCompletion *bool        `json:"waitForCompletion"`
	ReferenceImageURL string       `json:"referenceImageUrl"`
	SubjectImageURL   string       `json:"subjectImageUrl"`
	SceneImageURL     string       `json:"sceneImageUrl"`
	StyleImageURL     string       `json:"styleImageUrl"`
	Options           ImageOptions `json:"options"`
}

type ImageOptions struct {
	NegativePrompt string  `json:"negativePrompt"`
	AspectRatio    string  `json:"aspectRatio"`
	N              int     `json:"n"`
	ImageSize      string  `json:"imageSize"`
	OutputFormat   string  `json:"outputFormat"`
	Mask           string  `json:"mask"`
	Strength       float64 `json:"strength"`
	ImageReference string  `json:"imageReference"`
}

type ImageOutputItem struct {
	URL   string `json:"url,omitempty"`
	Index int    `json:"index"`
}

type ImageOutput struct {
	Images     []ImageOutputItem `json:"images"`
	Status     string            `json:"status"`
	TaskID     string            `json:"taskId,omitempty"`
	IsSync     bool              `json:"isSync"`
	ImageCount int               `json:"imageCount"`
}

func (p ImageParams) request() qiniu.ImageRequest {
	req := qiniu.ImageRequest{
		Model:          stringOr(p.Model, DefaultImageModel),
		Prompt:         p.Prompt,
		NegativePrompt: p.Options.NegativePrompt,
		AspectRatio:    p.Options.AspectRatio,
		N:              p.Options.N,
		OutputFormat:   p.Options.OutputFormat,
	}

	if p.Options.ImageSize != "" {
		req.ImageConfig = &qiniu.ImageConfig{ImageSize: p.Options.ImageSize}
	}

	return req
}

func (i *QiniuAIIntegration) ImageGenerate(ctx context.Context, params domain.IntegrationInput, item domain.ExecutionItem, itemIndex int) (domain.NodeResult, error) {
	p := ImageParams{}
	if err := i.bind(ctx, item, itemIndex, &p, params); err != nil {
		return domain.NodeResult{}, err
	}

	req := p.request()
	req.SubjectReference = p.SubjectImageURL
	req.SceneReference = p.SceneImageURL
	req.StyleReference = p.StyleImageURL

	resp, err := i.client.Image.Generate(ctx, req)
	if err != nil {
		return domain.NodeResult{}, err
	}

	return i.imageResult(ctx, resp, boolOr(p.WaitForCompletion, true))
}

func (i *QiniuAIIntegration) ImageEdit(ctx context.Context, params domain.IntegrationInput, item domain.ExecutionItem, itemIndex int) (domain.NodeResult, error) {
	p := ImageParams{}
	if err := i.bind(ctx, item, itemIndex, &p, params); err != nil {
		return domain.NodeResult{}, err
	}

	req := p.request()
	req.ImageURL = p.ReferenceImageURL
	req.Mask = p.Options.Mask
	req.Strength = p.Options.Strength
	req.ImageReference = p.Options.ImageReference

	resp, err := i.client.Image.Edit(ctx, req)
	if err != nil {
		return domain.NodeResult{}, err
	}

	return i.imageResult(ctx, resp, boolOr(p.WaitForCompletion, true))
}

func (i *QiniuAIIntegration) imageResult(ctx context.Context, resp *qiniu.ImageResponse, wait bool) (domain.NodeResult, error) {
	if wait && resp.TaskID != "" {
		final, err := i.client.Image.WaitForResult(ctx, resp)
		if err != nil {
			return domain.NodeResult{}, err
		}

		resp = final
	}

	output, binary, err := normalizeImages(resp)
	if err != nil {
		return domain.NodeResult{}, err
	}

	nodeResult := result(output, resp.Raw)
	if len(binary) > 0 {
		nodeResult.Binary = binary
	}

	return nodeResult, nil
}

// normalizeImages turns every inline base64 image into an attachment keyed data, data_1, ...
func normalizeImages(resp *qiniu.ImageResponse) (ImageOutput, map[string]domain.BinaryData, error) {
	format := stringOr(resp.OutputFormat, defaultImageFormat)

	output := ImageOutput{
		Images: make([]ImageOutputItem, 0, len(resp.Data)),
		Status: stringOr(resp.Status, "unknown"),
		TaskID: resp.TaskID,
		IsSync: resp.IsSync,
	}

	binary := map[string]domain.BinaryData{}

	for idx, image := range resp.Data {
		output.Images = append(output.Images, ImageOutputItem{URL: image.URL, Index: image.Index})

		if image.B64JSON == "" {
			continue
		}

		data, err := base64.StdEncoding.DecodeString(image.B64JSON)
		if err != nil {
			return ImageOutput{}, nil, fmt.Errorf("image %d in the response is not valid base64: %w", idx, err)
		}

		binary[domain.BinaryKey(idx)] = domain.NewBinaryData(data, fmt.Sprintf("image_%d.%s", idx, format), "image/"+format)
	}

	output.ImageCount = len(output.Images)

	return output, binary, nil
}
