package qiniu_ai

import (
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/qiniu-ai/flowbaker-qiniu/pkg/domain"
)

const (
	DefaultFrameWidth  = 640
	DefaultFrameFormat = "jpg"
	MaxFrameCount      = 100
)

type VframeParams struct {
	VideoURL      string  `json:"videoUrl"`
	VideoDuration float64 `json:"videoDuration"`
	FrameCount    int     `json:"frameCount"`
	Width         int     `json:"width"`
	Format        string  `json:"format"`
}

type Frame struct {
	Index  int    `json:"index"`
	Offset int64  `json:"offset"`
	URL    string `json:"url"`
}

type VframeOutput struct {
	VideoURL   string  `json:"videoUrl"`
	Frames     []Frame `json:"frames"`
	FrameCount int     `json:"frameCount"`
}

// FrameOffsets spreads count frames evenly over duration seconds, leaving out both ends.
func FrameOffsets(duration float64, count int) []int64 {
	offsets := make([]int64, 0, count)
	step := duration / float64(count+1)

	for i := 1; i <= count; i++ {
		offsets = append(offsets, int64(math.Round(step*float64(i))))
	}

	return offsets
}

// FrameURL appends the vframe directive, joining with & when the URL already has a query.
func FrameURL(videoURL, format string, offset int64, width int) string {
	separator := "?"
	if strings.Contains(videoURL, "?") {
		separator = "&"
	}

	return fmt.Sprintf("%s%svframe/%s/offset/%d/w/%d", videoURL, separator, format, offset, width)
}

func (p VframeParams) validate(itemIndex int) error {
	if p.VideoURL == "" {
		return domain.NewConfigurationError(itemIndex, "Video URL is required")
	}

	if p.VideoDuration <= 0 {
		return domain.NewConfigurationError(itemIndex, fmt.Sprintf("Video duration must be positive, got %v", p.VideoDuration))
	}

	if p.FrameCount < 1 || p.FrameCount > MaxFrameCount {
		return domain.NewConfigurationError(itemIndex, fmt.Sprintf("Frame count must be between 1 and %d, got %d", MaxFrameCount, p.FrameCount))
	}

	return nil
}

// Vframe only builds URLs. No API call is made.
func (i *QiniuAIIntegration) Vframe(ctx context.Context, params domain.IntegrationInput, item domain.ExecutionItem, itemIndex int) (domain.NodeResult, error) {
	p := VframeParams{}
	if err := i.bind(ctx, item, itemIndex, &p, params); err != nil {
		return domain.NodeResult{}, err
	}

	if err := p.validate(itemIndex); err != nil {
		return domain.NodeResult{}, err
	}

	width := p.Width
	if width <= 0 {
		width = DefaultFrameWidth
	}

	format := stringOr(p.Format, DefaultFrameFormat)

	frames := []Frame{}
	for idx, offset := range FrameOffsets(p.VideoDuration, p.FrameCount) {
		frames = append(frames, Frame{
			Index:  idx,
			Offset: offset,
			URL:    FrameURL(p.VideoURL, format, offset, width),
		})
	}

	return domain.NodeResult{
		JSON: VframeOutput{
			VideoURL:   p.VideoURL,
			Frames:     frames,
			FrameCount: len(frames),
		},
	}, nil
}
