package qiniu

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
)

type CensorScene string

const (
	CensorScenePulp       CensorScene = "pulp"
	CensorSceneTerror     CensorScene = "terror"
	CensorScenePolitician CensorScene = "politician"
)

var DefaultCensorScenes = []CensorScene{CensorScenePulp, CensorSceneTerror, CensorScenePolitician}

type CensorService struct {
	client *Client
}

type CensorRequest struct {
	URI    string
	Scenes []CensorScene
	// IntervalMsecs is the frame sampling interval for video jobs.
	IntervalMsecs int
}

type censorWireRequest struct {
	Data struct {
		URI string `json:"uri"`
	} `json:"data"`
	Params struct {
		Scenes   []CensorScene `json:"scenes"`
		CutParam *struct {
			IntervalMsecs int `json:"interval_msecs"`
		} `json:"cut_param,omitempty"`
	} `json:"params"`
}

func newCensorWireRequest(req CensorRequest) censorWireRequest {
	var wire censorWireRequest

	wire.Data.URI = req.URI
	wire.Params.Scenes = req.Scenes

	if len(wire.Params.Scenes) == 0 {
		wire.Params.Scenes = DefaultCensorScenes
	}

	if req.IntervalMsecs > 0 {
		wire.Params.CutParam = &struct {
			IntervalMsecs int `json:"interval_msecs"`
		}{IntervalMsecs: req.IntervalMsecs}
	}

	return wire
}

type CensorResult struct {
	Suggestion string                     `json:"suggestion"`
	Scenes     map[string]json.RawMessage `json:"scenes"`
}

type CensorImageResponse struct {
	Code    int          `json:"code"`
	Message string       `json:"message"`
	Result  CensorResult `json:"result"`

	Raw json.RawMessage `json:"-"`
}

func (s *CensorService) Image(ctx context.Context, req CensorRequest) (*CensorImageResponse, error) {
	var resp CensorImageResponse

	raw, err := s.client.doJSON(ctx, http.MethodPost, "/image/censor", newCensorWireRequest(req), &resp)
	if err != nil {
		return nil, err
	}

	resp.Raw = raw

	return &resp, nil
}

type CensorVideoJob struct {
	JobID string          `json:"job"`
	Raw   json.RawMessage `json:"-"`
}

// Video submits an asynchronous video moderation job.
func (s *CensorService) Video(ctx context.Context, req CensorRequest) (*CensorVideoJob, error) {
	var resp CensorVideoJob

	raw, err := s.client.doJSON(ctx, http.MethodPost, "/video/censor", newCensorWireRequest(req), &resp)
	if err != nil {
		return nil, err
	}

	resp.Raw = raw

	return &resp, nil
}

type CensorVideoStatus struct {
	ID      string `json:"id"`
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
	Result  struct {
		Code    int          `json:"code"`
		Message string       `json:"message"`
		Result  CensorResult `json:"result"`
	} `json:"result"`

	Raw json.RawMessage `json:"-"`
}

func (s *CensorService) GetVideoStatus(ctx context.Context, jobID string) (*CensorVideoStatus, error) {
	if jobID == "" {
		return nil, ErrMissingID
	}

	var resp CensorVideoStatus

	raw, err := s.client.doJSON(ctx, http.MethodGet, "/jobs/video/"+url.PathEscape(jobID), nil, &resp)
	if err != nil {
		return nil, err
	}

	if resp.ID == "" {
		resp.ID = jobID
	}

	resp.Raw = raw

	return &resp, nil
}

// WaitForVideo polls a moderation job until it is finished or failed.
func (s *CensorService) WaitForVideo(ctx context.Context, jobID string) (*CensorVideoStatus, error) {
	return poll(ctx, s.client.config.CensorPoll, jobID, func(ctx context.Context) (pollResult[*CensorVideoStatus], error) {
		status, err := s.GetVideoStatus(ctx, jobID)
		if err != nil {
			return pollResult[*CensorVideoStatus]{}, err
		}

		return pollResult[*CensorVideoStatus]{Value: status, Status: status.Status, Message: status.Message}, nil
	})
}
