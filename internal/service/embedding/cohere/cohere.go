// Package cohere provides a Cohere v2 embeddings client.
package cohere

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"voice-archive-search/internal/service/embedding"
)

const defaultBaseURL = "https://api.cohere.com"

// Client implements embedding.Embedder against the Cohere /v2/embed API.
type Client struct {
	baseURL    string
	apiKey     string
	model      string
	dimension  int
	client     *http.Client
	maxRetries int
}

// Config configures the Cohere embeddings client.
type Config struct {
	BaseURL   string
	APIKey    string
	Model     string // defaults to embed-v4.0
	Dimension int    // defaults to 1024; must match the index dimension
	Timeout   time.Duration
}

// New creates a Cohere embeddings client.
func New(cfg Config) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("cohere: missing API key")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = "embed-v4.0"
	}
	if cfg.Dimension == 0 {
		cfg.Dimension = 1024
	}
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		baseURL:    cfg.BaseURL,
		apiKey:     cfg.APIKey,
		model:      cfg.Model,
		dimension:  cfg.Dimension,
		client:     &http.Client{Timeout: timeout},
		maxRetries: 5,
	}, nil
}

// Name returns the provider identifier.
func (c *Client) Name() string { return "cohere" }

// Dimension returns the configured output dimension.
func (c *Client) Dimension() int { return c.dimension }

type embedRequest struct {
	Model           string   `json:"model"`
	Texts           []string `json:"texts"`
	InputType       string   `json:"input_type"`
	OutputDimension int      `json:"output_dimension"`
	EmbeddingTypes  []string `json:"embedding_types"`
}

type embedResponse struct {
	Embeddings struct {
		Float [][]float64 `json:"float"`
	} `json:"embeddings"`
}

// Embed returns one vector per input text, order-preserving. Transient
// failures (429, 5xx) are retried with exponential backoff, honoring
// Retry-After when present.
func (c *Client) Embed(ctx context.Context, texts []string, input embedding.InputType) ([][]float64, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	body, err := json.Marshal(embedRequest{
		Model:           c.model,
		Texts:           texts,
		InputType:       string(input),
		OutputDimension: c.dimension,
		EmbeddingTypes:  []string{"float"},
	})
	if err != nil {
		return nil, err
	}

	endpoint := c.baseURL + "/v2/embed"
	for attempt := 0; ; attempt++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Authorization", "Bearer "+c.apiKey)

		resp, err := c.client.Do(req)
		if err != nil {
			if attempt < c.maxRetries {
				if werr := wait(ctx, retryDelay(attempt)); werr != nil {
					return nil, werr
				}
				continue
			}
			return nil, err
		}

		if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
			delay := retryDelay(attempt)
			if ra := resp.Header.Get("Retry-After"); ra != "" {
				if secs, perr := strconv.Atoi(ra); perr == nil {
					delay = time.Duration(secs) * time.Second
				}
			}
			resp.Body.Close()
			if attempt < c.maxRetries {
				if werr := wait(ctx, delay); werr != nil {
					return nil, werr
				}
				continue
			}
			return nil, fmt.Errorf("cohere embed failed: %s", resp.Status)
		}

		if resp.StatusCode >= 300 {
			detail, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
			resp.Body.Close()
			return nil, fmt.Errorf("cohere embed failed: %s: %s", resp.Status, string(detail))
		}

		var out embedResponse
		decodeErr := json.NewDecoder(resp.Body).Decode(&out)
		resp.Body.Close()
		if decodeErr != nil {
			return nil, fmt.Errorf("cohere decode: %w", decodeErr)
		}

		vectors := out.Embeddings.Float
		if len(vectors) != len(texts) {
			return nil, fmt.Errorf("cohere returned %d vectors for %d texts", len(vectors), len(texts))
		}
		return vectors, nil
	}
}

func wait(ctx context.Context, d time.Duration) error {
	select {
	case <-time.After(d):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func retryDelay(attempt int) time.Duration {
	if attempt < 0 {
		attempt = 0
	}
	base := 200 * time.Millisecond
	d := base << attempt
	if d > 5*time.Second {
		d = 5 * time.Second
	}
	return d
}
