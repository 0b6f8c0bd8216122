package qiniu

import (
	"context"
	"encoding/json"
	"net/http"
)

type SysService struct {
	client *Client
}

type SearchRequest struct {
	Query      string   `json:"query"`
	MaxResults int      `json:"max_results,omitempty"`
	SearchType string   `json:"search_type,omitempty"`
	TimeFilter string   `json:"time_filter,omitempty"`
	SiteFilter []string `json:"site_filter,omitempty"`
}

type SearchResult struct {
	Title   string `json:"title"`
	URL     string `json:"url"`
	Content string `json:"content,omitempty"`
	Date    string `json:"date,omitempty"`
	Source  string `json:"source,omitempty"`
}

type SearchResponse struct {
	Results []SearchResult  `json:"results"`
	Raw     json.RawMessage `json:"-"`
}

// Search runs a web search. Results may come back at the top level or under data.
func (s *SysService) Search(ctx context.Context, req SearchRequest) (*SearchResponse, error) {
	var resp struct {
		Results []searchWireResult `json:"results"`
		Data    struct {
			Results []searchWireResult `json:"results"`
		} `json:"data"`
	}

	raw, err := s.client.doJSON(ctx, http.MethodPost, "/search/web", req, &resp)
	if err != nil {
		return nil, err
	}

	wireResults := resp.Results
	if len(wireResults) == 0 {
		wireResults = resp.Data.Results
	}

	results := make([]SearchResult, 0, len(wireResults))
	for _, r := range wireResults {
		results = append(results, r.normalize())
	}

	return &SearchResponse{Results: results, Raw: raw}, nil
}

type searchWireResult struct {
	Title   string `json:"title"`
	URL     string `json:"url"`
	Link    string `json:"link"`
	Content string `json:"content"`
	Snippet string `json:"snippet"`
	Date    string `json:"date"`
	Source  string `json:"source"`
}

func (r searchWireResult) normalize() SearchResult {
	result := SearchResult{
		Title:   r.Title,
		URL:     r.URL,
		Content: r.Content,
		Date:    r.Date,
		Source:  r.Source,
	}

	if result.URL == "" {
		result.URL = r.Link
	}

	if result.Content == "" {
		result.Content = r.Snippet
	}

	return result
}

type OCRService struct {
	client *Client
}

type OCRRequest struct {
	Model string `json:"model"`
	// Image is either an http(s) URL or a data URL.
	Image string `json:"image"`
}

type OCRBlock struct {
	Text       string  `json:"text"`
	Box        any     `json:"box,omitempty"`
	Confidence float64 `json:"confidence,omitempty"`
}

type OCRResponse struct {
	ID     string          `json:"id,omitempty"`
	Text   string          `json:"text"`
	Blocks []OCRBlock      `json:"blocks"`
	Raw    json.RawMessage `json:"-"`
}

func (s *OCRService) Detect(ctx context.Context, req OCRRequest) (*OCRResponse, error) {
	if req.Model == "" {
		req.Model = "ocr"
	}

	var resp OCRResponse

	raw, err := s.client.doJSON(ctx, http.MethodPost, "/images/ocr", req, &resp)
	if err != nil {
		return nil, err
	}

	if resp.Blocks == nil {
		resp.Blocks = []OCRBlock{}
	}

	resp.Raw = raw

	return &resp, nil
}
