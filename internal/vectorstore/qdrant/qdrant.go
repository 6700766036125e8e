package qdrant

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Client is a minimal REST client to Qdrant. It assumes cosine distance and
// creates the collection on demand.
type Client struct {
	url        string
	apiKey     string
	collection string
	vectorSize int
	httpClient *http.Client
}

type Config struct {
	URL        string
	APIKey     string
	Collection string
	VectorSize int
	Timeout    time.Duration
}

// Point is one chunk vector plus its payload.
type Point struct {
	ID      string         `json:"id"`
	Vector  []float32      `json:"vector"`
	Payload map[string]any `json:"payload"`
}

// ScoredPoint is a search hit.
type ScoredPoint struct {
	Score   float64        `json:"score"`
	Payload map[string]any `json:"payload"`
}

func NewClient(cfg Config) *Client {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 15 * time.Second
	}
	return &Client{
		url:        cfg.URL,
		apiKey:     cfg.APIKey,
		collection: cfg.Collection,
		vectorSize: cfg.VectorSize,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// EnsureCollection creates the collection if missing. Qdrant answers 200 for
// an existing collection with the same schema.
func (c *Client) EnsureCollection(ctx context.Context) error {
	if c.vectorSize <= 0 {
		return errors.New("invalid vector size")
	}
	body := map[string]any{
		"vectors": map[string]any{
			"size":     c.vectorSize,
			"distance": "Cosine",
		},
	}
	return c.doJSON(ctx, http.MethodPut, fmt.Sprintf("%s/collections/%s", c.url, c.collection), body, nil)
}

func (c *Client) Upsert(ctx context.Context, points []Point) error {
	if len(points) == 0 {
		return nil
	}
	body := map[string]any{"points": points}
	url := fmt.Sprintf("%s/collections/%s/points?wait=true", c.url, c.collection)
	return c.doJSON(ctx, http.MethodPut, url, body, nil)
}

func (c *Client) Search(ctx context.Context, vector []float32, topK int, scoreThreshold float64) ([]ScoredPoint, error) {
	if topK <= 0 {
		topK = 5
	}
	req := map[string]any{
		"vector":       vector,
		"limit":        topK,
		"with_payload": true,
	}
	if scoreThreshold > 0 {
		req["score_threshold"] = scoreThreshold
	}
	var resp struct {
		Result []ScoredPoint `json:"result"`
	}
	url := fmt.Sprintf("%s/collections/%s/points/search", c.url, c.collection)
	if err := c.doJSON(ctx, http.MethodPost, url, req, &resp); err != nil {
		return nil, err
	}
	return resp.Result, nil
}

// ScrollAll pages through every point payload in the collection.
func (c *Client) ScrollAll(ctx context.Context) ([]map[string]any, error) {
	return c.scroll(ctx, nil)
}

// ScrollByField returns payloads of points whose payload field matches value.
func (c *Client) ScrollByField(ctx context.Context, field, value string) ([]map[string]any, error) {
	filter := map[string]any{
		"must": []map[string]any{
			{"key": field, "match": map[string]any{"value": value}},
		},
	}
	return c.scroll(ctx, filter)
}

func (c *Client) scroll(ctx context.Context, filter map[string]any) ([]map[string]any, error) {
	const pageSize = 256
	url := fmt.Sprintf("%s/collections/%s/points/scroll", c.url, c.collection)

	var payloads []map[string]any
	var offset any
	for {
		req := map[string]any{
			"limit":        pageSize,
			"with_payload": true,
			"with_vector":  false,
		}
		if filter != nil {
			req["filter"] = filter
		}
		if offset != nil {
			req["offset"] = offset
		}
		var resp struct {
			Result struct {
				Points []struct {
					Payload map[string]any `json:"payload"`
				} `json:"points"`
				NextPageOffset any `json:"next_page_offset"`
			} `json:"result"`
		}
		if err := c.doJSON(ctx, http.MethodPost, url, req, &resp); err != nil {
			return nil, err
		}
		for _, p := range resp.Result.Points {
			payloads = append(payloads, p.Payload)
		}
		if resp.Result.NextPageOffset == nil {
			return payloads, nil
		}
		offset = resp.Result.NextPageOffset
	}
}

// Recreate drops the collection and builds it again empty. Readers see either
// the old collection or an empty one, never a half-cleared state.
func (c *Client) Recreate(ctx context.Context) error {
	url := fmt.Sprintf("%s/collections/%s", c.url, c.collection)
	if err := c.doJSON(ctx, http.MethodDelete, url, nil, nil); err != nil {
		return err
	}
	return c.EnsureCollection(ctx)
}

func (c *Client) doJSON(ctx context.Context, method, url string, body, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal qdrant request failed: %w", err)
		}
		reader = bytes.NewReader(data)
	}
	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return fmt.Errorf("build qdrant request failed: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.apiKey != "" {
		req.Header.Set("api-key", c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("qdrant %s %s failed: %w", method, url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("qdrant %s %s status %d: %s", method, url, resp.StatusCode, string(raw))
	}
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decode qdrant response failed: %w", err)
		}
	}
	return nil
}
