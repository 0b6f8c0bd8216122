package qiniu

import (
	"context"
	"encoding/json"
	"net/http"
)

type TTSService struct {
	client *Client
}

type TTSRequest struct {
	Text       string
	VoiceType  string
	Encoding   string
	SpeedRatio *float64
	Volume     *float64
}

type ttsWireRequest struct {
	Audio struct {
		VoiceType  string   `json:"voice_type"`
		Encoding   string   `json:"encoding,omitempty"`
		SpeedRatio *float64 `json:"speed_ratio,omitempty"`
		Volume     *float64 `json:"volume,omitempty"`
	} `json:"audio"`
	Request struct {
		Text string `json:"text"`
	} `json:"request"`
}

type TTSResponse struct {
	ReqID    string `json:"reqid,omitempty"`
	Audio    string `json:"-"`
	Duration any    `json:"-"`

	Raw json.RawMessage `json:"-"`
}

// Synthesize converts text to speech. Audio is returned base64 encoded, exactly as the
// API sends it.
func (s *TTSService) Synthesize(ctx context.Context, req TTSRequest) (*TTSResponse, error) {
	var wire ttsWireRequest
	wire.Audio.VoiceType = req.VoiceType
	wire.Audio.Encoding = req.Encoding
	wire.Audio.SpeedRatio = req.SpeedRatio
	wire.Audio.Volume = req.Volume
	wire.Request.Text = req.Text

	var resp struct {
		ReqID    string `json:"reqid"`
		Data     string `json:"data"`
		Addition struct {
			Duration any `json:"duration"`
		} `json:"addition"`
	}

	raw, err := s.client.doJSON(ctx, http.MethodPost, "/voice/tts", wire, &resp)
	if err != nil {
		return nil, err
	}

	return &TTSResponse{
		ReqID:    resp.ReqID,
		Audio:    resp.Data,
		Duration: resp.Addition.Duration,
		Raw:      raw,
	}, nil
}

type ASRService struct {
	client *Client
}

type ASRAudio struct {
	Format string `json:"format"`
	URL    string `json:"url,omitempty"`
	Data   string `json:"data,omitempty"`
}

type ASRRequest struct {
	Model string   `json:"model"`
	Audio ASRAudio `json:"audio"`
}

type ASRWord struct {
	Text      string `json:"text"`
	StartTime int64  `json:"start_time"`
	EndTime   int64  `json:"end_time"`
}

type ASRResponse struct {
	ReqID    string    `json:"reqid,omitempty"`
	Text     string    `json:"text"`
	Words    []ASRWord `json:"words"`
	Duration any       `json:"duration,omitempty"`

	Raw json.RawMessage `json:"-"`
}

// Transcribe converts speech to text. Word timings are flattened out of utterances.
func (s *ASRService) Transcribe(ctx context.Context, req ASRRequest) (*ASRResponse, error) {
	if req.Model == "" {
		req.Model = "asr"
	}

	var resp struct {
		ReqID string `json:"reqid"`
		Data  struct {
			AudioInfo struct {
				Duration any `json:"duration"`
			} `json:"audio_info"`
			Result struct {
				Text       string `json:"text"`
				Utterances []struct {
					Text  string    `json:"text"`
					Words []ASRWord `json:"words"`
				} `json:"utterances"`
			} `json:"result"`
		} `json:"data"`
	}

	raw, err := s.client.doJSON(ctx, http.MethodPost, "/voice/asr", req, &resp)
	if err != nil {
		return nil, err
	}

	words := []ASRWord{}
	for _, utterance := range resp.Data.Result.Utterances {
		words = append(words, utterance.Words...)
	}

	return &ASRResponse{
		ReqID:    resp.ReqID,
		Text:     resp.Data.Result.Text,
		Words:    words,
		Duration: resp.Data.AudioInfo.Duration,
		Raw:      raw,
	}, nil
}
