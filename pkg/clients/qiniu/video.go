package qiniu

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
)

type VideoService struct {
	client *Client
}

type VideoFrame struct {
	URL    string `json:"url,omitempty"`
	Base64 string `json:"base64,omitempty"`
}

type VideoFrames struct {
	First *VideoFrame `json:"first,omitempty"`
	Last  *VideoFrame `json:"last,omitempty"`
}

func (f *VideoFrames) Empty() bool {
	return f == nil || (f.First == nil && f.Last == nil)
}

type VideoRequest struct {
	Model             string       `json:"model"`
	Prompt            string       `json:"prompt"`
	NegativePrompt    string       `json:"negative_prompt,omitempty"`
	AspectRatio       string       `json:"aspect_ratio,omitempty"`
	Frames            *VideoFrames `json:"frames,omitempty"`
	VideoReferenceURL string       `json:"video_reference_url,omitempty"`
	KeepOriginalSound *bool        `json:"keep_original_sound,omitempty"`

	// kling family
	Duration string  `json:"duration,omitempty"`
	Mode     string  `json:"mode,omitempty"`
	CfgScale float64 `json:"cfg_scale,omitempty"`
	Size     string  `json:"size,omitempty"`

	// veo family
	GenerateAudio    *bool  `json:"generate_audio,omitempty"`
	Resolution       string `json:"resolution,omitempty"`
	SampleCount      int    `json:"sample_count,omitempty"`
	PersonGeneration string `json:"person_generation,omitempty"`
	Seed             int64  `json:"seed,omitempty"`
}

type RemixRequest struct {
	Prompt         string `json:"prompt,omitempty"`
	Duration       string `json:"duration,omitempty"`
	Mode           string `json:"mode,omitempty"`
	NegativePrompt string `json:"negative_prompt,omitempty"`
}

type VideoFile struct {
	ID       string `json:"id,omitempty"`
	URL      string `json:"url"`
	Duration any    `json:"duration,omitempty"`
}

type VideoTaskResult struct {
	Videos []VideoFile `json:"videos"`
}

type VideoTask struct {
	ID         string           `json:"id"`
	TaskID     string           `json:"task_id,omitempty"`
	Model      string           `json:"model,omitempty"`
	Status     string           `json:"status"`
	Message    string           `json:"message,omitempty"`
	CreatedAt  int64            `json:"created_at,omitempty"`
	TaskResult *VideoTaskResult `json:"task_result,omitempty"`

	Raw json.RawMessage `json:"-"`
}

// Videos returns the produced videos, never nil.
func (t *VideoTask) Videos() []VideoFile {
	if t.TaskResult == nil || t.TaskResult.Videos == nil {
		return []VideoFile{}
	}

	return t.TaskResult.Videos
}

func (s *VideoService) Create(ctx context.Context, req VideoRequest) (*VideoTask, error) {
	return s.doTask(ctx, http.MethodPost, "/videos", req)
}

func (s *VideoService) Get(ctx context.Context, id string) (*VideoTask, error) {
	if id == "" {
		return nil, ErrMissingID
	}

	task, err := s.doTask(ctx, http.MethodGet, "/videos/"+url.PathEscape(id), nil)
	if err != nil {
		return nil, err
	}

	if task.ID == "" {
		task.ID = id
	}

	return task, nil
}

// Remix creates a new video task derived from an existing one.
func (s *VideoService) Remix(ctx context.Context, id string, req RemixRequest) (*VideoTask, error) {
	if id == "" {
		return nil, ErrMissingID
	}

	return s.doTask(ctx, http.MethodPost, "/videos/"+url.PathEscape(id)+"/remix", req)
}

// WaitForCompletion polls the task until it finishes or the video poll deadline passes.
func (s *VideoService) WaitForCompletion(ctx context.Context, id string) (*VideoTask, error) {
	if id == "" {
		return nil, ErrMissingID
	}

	return poll(ctx, s.client.config.VideoPoll, id, func(ctx context.Context) (pollResult[*VideoTask], error) {
		task, err := s.Get(ctx, id)
		if err != nil {
			return pollResult[*VideoTask]{}, err
		}

		return pollResult[*VideoTask]{Value: task, Status: task.Status, Message: task.Message}, nil
	})
}

func (s *VideoService) doTask(ctx context.Context, method, path string, body any) (*VideoTask, error) {
	var task VideoTask

	raw, err := s.client.doJSON(ctx, method, path, body, &task)
	if err != nil {
		return nil, err
	}

	if task.ID == "" {
		task.ID = task.TaskID
	}

	task.Raw = raw

	return &task, nil
}
