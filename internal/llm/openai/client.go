package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"
)

// Client talks to any OpenAI-compatible embeddings endpoint (OpenAI, LM
// Studio, Ollama's compat layer). Retries and rate pacing live here, at the
// collaborator boundary; the scoring core never touches the network.
type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
	minGap  time.Duration

	mu      sync.Mutex // guards lastReq; one Client may be shared across goroutines
	lastReq time.Time
}

func New(baseURL, apiKey string) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		http:    &http.Client{Timeout: 60 * time.Second},
	}
	// Local gateways (LM Studio, Ollama) often need request pacing.
	if ms := os.Getenv("RELSEG_LLM_MIN_INTERVAL_MS"); ms != "" {
		if v, err := strconv.Atoi(ms); err == nil && v > 0 {
			c.minGap = time.Duration(v) * time.Millisecond
		}
	}
	return c
}

// Embeddings implements llm.Embedder using the /embeddings API.
func (c *Client) Embeddings(ctx context.Context, model string, inputs []string) ([][]float32, error) {
	if len(inputs) == 0 {
		return nil, nil
	}
	body, _ := json.Marshal(map[string]any{
		"model": model,
		"input": inputs,
	})
	resp, err := c.post(ctx, "/embeddings", body)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode/100 != 2 {
		data, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("embeddings http %d: %s", resp.StatusCode, strings.TrimSpace(string(data)))
	}
	var out struct {
		Data []struct {
			Embedding []float32 `json:"embedding"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, err
	}
	if len(out.Data) != len(inputs) {
		return nil, fmt.Errorf("embeddings: got %d vectors for %d inputs", len(out.Data), len(inputs))
	}
	res := make([][]float32, 0, len(out.Data))
	for _, d := range out.Data {
		res = append(res, d.Embedding)
	}
	return res, nil
}

// pace sleeps until minGap has passed since the last request. Safe for
// concurrent callers; each one waits for its own gap from the shared
// timestamp.
func (c *Client) pace() {
	if c.minGap == 0 {
		return
	}
	c.mu.Lock()
	wait := c.minGap - time.Since(c.lastReq)
	c.mu.Unlock()
	if wait > 0 {
		time.Sleep(wait)
	}
}

// post sends the request with pacing and retries on 429/5xx. The request is
// rebuilt per attempt so the body can be re-read.
func (c *Client) post(ctx context.Context, path string, body []byte) (*http.Response, error) {
	c.pace()
	backoff := 200 * time.Millisecond
	var resp *http.Response
	for attempt := 0; attempt < 3; attempt++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "application/json")
		if c.apiKey != "" {
			req.Header.Set("Authorization", "Bearer "+c.apiKey)
		}
		resp, err = c.http.Do(req)
		c.mu.Lock()
		c.lastReq = time.Now()
		c.mu.Unlock()
		if err != nil {
			return nil, err
		}
		if attempt == 2 || (resp.StatusCode != http.StatusTooManyRequests && resp.StatusCode/100 != 5) {
			return resp, nil
		}
		io.Copy(io.Discard, resp.Body)
		resp.Body.Close()
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(backoff + time.Duration(attempt)*100*time.Millisecond):
		}
	}
	return resp, nil
}
