package qiniu

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
)

type ImageService struct {
	client *Client
}

type ImageConfig struct {
	ImageSize string `json:"image_size,omitempty"`
}

type ImageRequest struct {
	Model          string  `json:"model"`
	Prompt         string  `json:"prompt"`
	NegativePrompt string  `json:"negative_prompt,omitempty"`
	AspectRatio    string  `json:"aspect_ratio,omitempty"`
	N              int     `json:"n,omitempty"`
	OutputFormat   string  `json:"output_format,omitempty"`
	ImageURL       string  `json:"image_url,omitempty"`
	Mask           string  `json:"mask,omitempty"`
	Strength       float64 `json:"strength,omitempty"`
	ImageReference string  `json:"image_reference,omitempty"`

	SubjectReference string `json:"subject_reference,omitempty"`
	SceneReference   string `json:"scene_reference,omitempty"`
	StyleReference   string `json:"style_reference,omitempty"`

	ImageConfig *ImageConfig `json:"image_config,omitempty"`
}

type ImageData struct {
	URL     string `json:"url,omitempty"`
	B64JSON string `json:"b64_json,omitempty"`
	Index   int    `json:"index"`
}

type ImageResponse struct {
	Created       int64       `json:"created,omitempty"`
	TaskID        string      `json:"task_id,omitempty"`
	Status        string      `json:"status,omitempty"`
	StatusMessage string      `json:"status_message,omitempty"`
	OutputFormat  string      `json:"output_format,omitempty"`
	Data          []ImageData `json:"data"`

	// IsSync is true when the images came back inline instead of as a task.
	IsSync bool            `json:"-"`
	Raw    json.RawMessage `json:"-"`
}

func (s *ImageService) Generate(ctx context.Context, req ImageRequest) (*ImageResponse, error) {
	return s.create(ctx, "/images/generations", req)
}

func (s *ImageService) Edit(ctx context.Context, req ImageRequest) (*ImageResponse, error) {
	return s.create(ctx, "/images/edits", req)
}

func (s *ImageService) create(ctx context.Context, path string, req ImageRequest) (*ImageResponse, error) {
	var resp ImageResponse

	raw, err := s.client.doJSON(ctx, http.MethodPost, path, req, &resp)
	if err != nil {
		return nil, err
	}

	resp.Raw = raw
	resp.IsSync = resp.TaskID == ""

	if resp.IsSync && resp.Status == "" {
		resp.Status = "succeed"
	}

	return &resp, nil
}

// Get fetches the current state of an asynchronous image task.
func (s *ImageService) Get(ctx context.Context, taskID string) (*ImageResponse, error) {
	if taskID == "" {
		return nil, ErrMissingID
	}

	var resp ImageResponse

	raw, err := s.client.doJSON(ctx, http.MethodGet, "/images/tasks/"+url.PathEscape(taskID), nil, &resp)
	if err != nil {
		return nil, err
	}

	resp.Raw = raw

	if resp.TaskID == "" {
		resp.TaskID = taskID
	}

	return &resp, nil
}

// WaitForResult returns synchronous results as-is and polls task results until they
// are terminal.
func (s *ImageService) WaitForResult(ctx context.Context, created *ImageResponse) (*ImageResponse, error) {
	if created == nil {
		return nil, fmt.Errorf("image response is nil")
	}

	if created.IsSync {
		return created, nil
	}

	return poll(ctx, s.client.config.ImagePoll, created.TaskID, func(ctx context.Context) (pollResult[*ImageResponse], error) {
		resp, err := s.Get(ctx, created.TaskID)
		if err != nil {
			return pollResult[*ImageResponse]{}, err
		}

		return pollResult[*ImageResponse]{Value: resp, Status: resp.Status, Message: resp.StatusMessage}, nil
	})
}
