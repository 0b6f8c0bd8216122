package qiniu_ai

import (
	"context"
	"encoding/base64"
	"fmt"
	"slices"

	"github.com/qiniu-ai/flowbaker-qiniu/pkg/clients/qiniu"
	"github.com/qiniu-ai/flowbaker-qiniu/pkg/domain"
)

const (
	DefaultVoice       = "qiniu_zh_female_tmjxxy"
	DefaultAudioFormat = "wav"
)

var ttsEncodings = []string{"mp3", "wav", "pcm"}

type TextToSpeechParams struct {
	Text    string `json:"text"`
	Voice   string `json:"voice"`
	Options struct {
		Encoding   string   `json:"encoding"`
		SpeedRatio *float64 `json:"speedRatio"`
		Volume     *float64 `json:"volume"`
	} `json:"options"`
}

type SpeechToTextParams struct {
	BinaryPropertyName string `json:"binaryPropertyName"`
	AudioFormat        string `json:"audioFormat"`
}

type TextToSpeechOutput struct {
	Audio    string `json:"audio"`
	Duration any    `json:"duration"`
}

type SpeechToTextOutput struct {
	Text  string          `json:"text"`
	Words []qiniu.ASRWord `json:"words"`
}

func (p TextToSpeechParams) validate(itemIndex int) error {
	if p.Text == "" {
		return domain.NewConfigurationError(itemIndex, "Text is required")
	}

	if p.Options.Encoding != "" && !slices.Contains(ttsEncodings, p.Options.Encoding) {
		return domain.NewConfigurationError(itemIndex, fmt.Sprintf("Unsupported audio encoding: %s", p.Options.Encoding))
	}

	if r := p.Options.SpeedRatio; r != nil && (*r < 0.5 || *r > 2) {
		return domain.NewConfigurationError(itemIndex, fmt.Sprintf("Speed ratio must be between 0.5 and 2, got %v", *r))
	}

	if v := p.Options.Volume; v != nil && (*v < 0 || *v > 1) {
		return domain.NewConfigurationError(itemIndex, fmt.Sprintf("Volume must be between 0 and 1, got %v", *v))
	}

	return nil
}

func (i *QiniuAIIntegration) TextToSpeech(ctx context.Context, params domain.IntegrationInput, item domain.ExecutionItem, itemIndex int) (domain.NodeResult, error) {
	p := TextToSpeechParams{}
	if err := i.bind(ctx, item, itemIndex, &p, params); err != nil {
		return domain.NodeResult{}, err
	}

	if err := p.validate(itemIndex); err != nil {
		return domain.NodeResult{}, err
	}

	resp, err := i.client.TTS.Synthesize(ctx, qiniu.TTSRequest{
		Text:       p.Text,
		VoiceType:  stringOr(p.Voice, DefaultVoice),
		Encoding:   p.Options.Encoding,
		SpeedRatio: p.Options.SpeedRatio,
		Volume:     p.Options.Volume,
	})
	if err != nil {
		return domain.NodeResult{}, err
	}

	return result(TextToSpeechOutput{
		Audio:    resp.Audio,
		Duration: resp.Duration,
	}, resp.Raw), nil
}

func (i *QiniuAIIntegration) SpeechToText(ctx context.Context, params domain.IntegrationInput, item domain.ExecutionItem, itemIndex int) (domain.NodeResult, error) {
	p := SpeechToTextParams{}
	if err := i.bind(ctx, item, itemIndex, &p, params); err != nil {
		return domain.NodeResult{}, err
	}

	binary, err := item.BinaryBuffer(itemIndex, stringOr(p.BinaryPropertyName, domain.DefaultBinaryPropertyName))
	if err != nil {
		return domain.NodeResult{}, err
	}

	resp, err := i.client.ASR.Transcribe(ctx, qiniu.ASRRequest{
		Audio: qiniu.ASRAudio{
			Format: stringOr(p.AudioFormat, DefaultAudioFormat),
			Data:   base64.StdEncoding.EncodeToString(binary.Data),
		},
	})
	if err != nil {
		return domain.NodeResult{}, err
	}

	words := resp.Words
	if words == nil {
		words = []qiniu.ASRWord{}
	}

	return result(SpeechToTextOutput{
		Text:  resp.Text,
		Words: words,
	}, resp.Raw), nil
}
