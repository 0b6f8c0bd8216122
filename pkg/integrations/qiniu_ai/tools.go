package qiniu_ai

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"slices"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/qiniu-ai/flowbaker-qiniu/pkg/clients/qiniu"
	"github.com/qiniu-ai/flowbaker-qiniu/pkg/domain"
)

const (
	DefaultSearchMaxResults = 5
	maxSearchResults        = 20
)

var searchTypes = []string{"web", "news"}

type WebSearchParams struct {
	Query   string `json:"query"`
	Options struct {
		MaxResults int    `json:"maxResults"`
		SearchType string `json:"searchType"`
		TimeFilter string `json:"timeFilter"`
		SiteFilter string `json:"siteFilter"`
	} `json:"options"`
}

type WebSearchOutput struct {
	Results []qiniu.SearchResult `json:"results"`
	Query   string               `json:"query"`
}

type OCRParams struct {
	ImageURL           string `json:"imageUrl"`
	BinaryPropertyName string `json:"binaryPropertyName"`
}

type OCROutput struct {
	Text   string           `json:"text"`
	Blocks []qiniu.OCRBlock `json:"blocks"`
}

type CensorParams struct {
	URI               string   `json:"uri"`
	Scenes            []string `json:"scenes"`
	WaitForCompletion bool     `json:"waitForCompletion"`
	IntervalMsecs     int      `json:"intervalMsecs"`
}

type CensorOutput struct {
	JobID      string                     `json:"jobId,omitempty"`
	Status     string                     `json:"status,omitempty"`
	Suggestion string                     `json:"suggestion"`
	Scenes     map[string]json.RawMessage `json:"scenes"`
}

func (p WebSearchParams) request(itemIndex int) (qiniu.SearchRequest, error) {
	if strings.TrimSpace(p.Query) == "" {
		return qiniu.SearchRequest{}, domain.NewConfigurationError(itemIndex, "Query is required")
	}

	maxResults := p.Options.MaxResults
	if maxResults == 0 {
		maxResults = DefaultSearchMaxResults
	}

	if maxResults < 1 || maxResults > maxSearchResults {
		return qiniu.SearchRequest{}, domain.NewConfigurationError(itemIndex, fmt.Sprintf("Max results must be between 1 and %d, got %d", maxSearchResults, maxResults))
	}

	if p.Options.SearchType != "" && !slices.Contains(searchTypes, p.Options.SearchType) {
		return qiniu.SearchRequest{}, domain.NewConfigurationError(itemIndex, fmt.Sprintf("Unsupported search type: %s", p.Options.SearchType))
	}

	return qiniu.SearchRequest{
		Query:      p.Query,
		MaxResults: maxResults,
		SearchType: p.Options.SearchType,
		TimeFilter: p.Options.TimeFilter,
		SiteFilter: splitList(p.Options.SiteFilter),
	}, nil
}

func splitList(value string) []string {
	values := []string{}

	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			values = append(values, part)
		}
	}

	if len(values) == 0 {
		return nil
	}

	return values
}

func (i *QiniuAIIntegration) WebSearch(ctx context.Context, params domain.IntegrationInput, item domain.ExecutionItem, itemIndex int) (domain.NodeResult, error) {
	p := WebSearchParams{}
	if err := i.bind(ctx, item, itemIndex, &p, params); err != nil {
		return domain.NodeResult{}, err
	}

	req, err := p.request(itemIndex)
	if err != nil {
		return domain.NodeResult{}, err
	}

	resp, err := i.client.Sys.Search(ctx, req)
	if err != nil {
		return domain.NodeResult{}, err
	}

	return result(WebSearchOutput{
		Results: resp.Results,
		Query:   p.Query,
	}, resp.Raw), nil
}

func (i *QiniuAIIntegration) OCR(ctx context.Context, params domain.IntegrationInput, item domain.ExecutionItem, itemIndex int) (domain.NodeResult, error) {
	p := OCRParams{}
	if err := i.bind(ctx, item, itemIndex, &p, params); err != nil {
		return domain.NodeResult{}, err
	}

	image := p.ImageURL

	if image == "" {
		binary, err := item.BinaryBuffer(itemIndex, stringOr(p.BinaryPropertyName, domain.DefaultBinaryPropertyName))
		if err != nil {
			return domain.NodeResult{}, err
		}

		image = dataURL(binary)
	}

	resp, err := i.client.OCR.Detect(ctx, qiniu.OCRRequest{Image: image})
	if err != nil {
		return domain.NodeResult{}, err
	}

	return result(OCROutput{
		Text:   resp.Text,
		Blocks: resp.Blocks,
	}, resp.Raw), nil
}

// dataURL encodes an attachment, sniffing the MIME type when the metadata lacks one.
func dataURL(binary domain.BinaryData) string {
	mimeType := binary.MimeType
	if mimeType == "" || mimeType == "application/octet-stream" {
		mimeType = mimetype.Detect(binary.Data).String()
	}

	return fmt.Sprintf("data:%s;base64,%s", mimeType, base64.StdEncoding.EncodeToString(binary.Data))
}

func (p CensorParams) request(itemIndex int) (qiniu.CensorRequest, error) {
	if p.URI == "" {
		return qiniu.CensorRequest{}, domain.NewConfigurationError(itemIndex, "URI is required")
	}

	scenes := make([]qiniu.CensorScene, 0, len(p.Scenes))

	for _, scene := range p.Scenes {
		censorScene := qiniu.CensorScene(scene)
		if !slices.Contains(qiniu.DefaultCensorScenes, censorScene) {
			return qiniu.CensorRequest{}, domain.NewConfigurationError(itemIndex, fmt.Sprintf("Unsupported censor scene: %s", scene))
		}

		scenes = append(scenes, censorScene)
	}

	return qiniu.CensorRequest{
		URI:           p.URI,
		Scenes:        scenes,
		IntervalMsecs: p.IntervalMsecs,
	}, nil
}

func (i *QiniuAIIntegration) ImageCensor(ctx context.Context, params domain.IntegrationInput, item domain.ExecutionItem, itemIndex int) (domain.NodeResult, error) {
	p := CensorParams{}
	if err := i.bind(ctx, item, itemIndex, &p, params); err != nil {
		return domain.NodeResult{}, err
	}

	req, err := p.request(itemIndex)
	if err != nil {
		return domain.NodeResult{}, err
	}

	resp, err := i.client.Censor.Image(ctx, req)
	if err != nil {
		return domain.NodeResult{}, err
	}

	return result(CensorOutput{
		Suggestion: resp.Result.Suggestion,
		Scenes:     resp.Result.Scenes,
	}, resp.Raw), nil
}

func (i *QiniuAIIntegration) VideoCensor(ctx context.Context, params domain.IntegrationInput, item domain.ExecutionItem, itemIndex int) (domain.NodeResult, error) {
	p := CensorParams{}
	if err := i.bind(ctx, item, itemIndex, &p, params); err != nil {
		return domain.NodeResult{}, err
	}

	req, err := p.request(itemIndex)
	if err != nil {
		return domain.NodeResult{}, err
	}

	job, err := i.client.Censor.Video(ctx, req)
	if err != nil {
		return domain.NodeResult{}, err
	}

	if !p.WaitForCompletion {
		return result(CensorOutput{
			JobID:  job.JobID,
			Status: "submitted",
		}, job.Raw), nil
	}

	status, err := i.client.Censor.WaitForVideo(ctx, job.JobID)
	if err != nil {
		return domain.NodeResult{}, err
	}

	return result(CensorOutput{
		JobID:      job.JobID,
		Status:     status.Status,
		Suggestion: status.Result.Result.Suggestion,
		Scenes:     status.Result.Result.Scenes,
	}, status.Raw), nil
}
