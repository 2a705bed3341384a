package reranker

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"

	"relseg/internal/models"
)

// HTTPReranker calls a Cohere-compatible /rerank endpoint. Jina and several
// self-hosted cross-encoder servers speak the same shape.
type HTTPReranker struct {
	client *resty.Client
	model  string
}

func NewHTTP(baseURL, apiKey, model string) *HTTPReranker {
	c := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(30 * time.Second).
		SetRetryCount(2).
		SetRetryWaitTime(200 * time.Millisecond).
		AddRetryCondition(func(r *resty.Response, err error) bool {
			return err == nil && (r.StatusCode() == 429 || r.StatusCode() >= 500)
		})
	if apiKey != "" {
		c.SetAuthToken(apiKey)
	}
	return &HTTPReranker{client: c, model: model}
}

type rerankRequest struct {
	Model     string   `json:"model"`
	Query     string   `json:"query"`
	Documents []string `json:"documents"`
}

type rerankResponse struct {
	Results []struct {
		Index          int     `json:"index"`
		RelevanceScore float64 `json:"relevance_score"`
	} `json:"results"`
}

func (r *HTTPReranker) Rerank(ctx context.Context, query string, candidates []models.Candidate, texts []string) ([]models.Candidate, error) {
	if len(candidates) != len(texts) {
		return nil, fmt.Errorf("rerank: %d candidates but %d texts", len(candidates), len(texts))
	}
	if len(candidates) == 0 {
		return nil, nil
	}
	var out rerankResponse
	resp, err := r.client.R().
		SetContext(ctx).
		SetBody(rerankRequest{Model: r.model, Query: query, Documents: texts}).
		SetResult(&out).
		// Some gateways answer without a JSON content type; decode anyway.
		ForceContentType("application/json").
		Post("/rerank")
	if err != nil {
		return nil, err
	}
	if resp.IsError() {
		return nil, fmt.Errorf("rerank http %d: %s", resp.StatusCode(), resp.String())
	}
	reordered := make([]models.Candidate, 0, len(out.Results))
	for _, res := range out.Results {
		if res.Index < 0 || res.Index >= len(candidates) {
			return nil, fmt.Errorf("rerank: result index %d out of range", res.Index)
		}
		c := candidates[res.Index]
		c.Score = res.RelevanceScore
		reordered = append(reordered, c)
	}
	return reordered, nil
}

func (r *HTTPReranker) NeedsCalibration() bool { return true }
