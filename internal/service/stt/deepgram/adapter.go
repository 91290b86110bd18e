// Package deepgram provides a Deepgram prerecorded-transcription adapter.
package deepgram

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"voice-archive-search/internal/models"
	"voice-archive-search/internal/observability/logging"
	"voice-archive-search/internal/service/stt"
)

const defaultBaseURL = "https://api.deepgram.com"

// Adapter implements stt.Adapter against the Deepgram /v1/listen API.
type Adapter struct {
	baseURL string
	apiKey  string
	model   string
	client  *http.Client
	log     zerolog.Logger
}

// Config configures the Deepgram adapter.
type Config struct {
	BaseURL string // defaults to the public Deepgram API
	APIKey  string
	Model   string // defaults to nova-3
	Timeout time.Duration
}

// New creates a Deepgram adapter.
func New(cfg Config) (*Adapter, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("deepgram: missing API key")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = "nova-3"
	}
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 5 * time.Minute
	}
	return &Adapter{
		baseURL: cfg.BaseURL,
		apiKey:  cfg.APIKey,
		model:   cfg.Model,
		client:  &http.Client{Timeout: timeout},
		log:     logging.WithComponent("stt.deepgram"),
	}, nil
}

// Name identifies the provider.
func (a *Adapter) Name() string { return "deepgram" }

// listenResponse mirrors the slice of the Deepgram response we consume.
type listenResponse struct {
	Results struct {
		Channels []struct {
			Alternatives []struct {
				Transcript string `json:"transcript"`
				Words      []struct {
					Word           string  `json:"word"`
					PunctuatedWord string  `json:"punctuated_word"`
					Start          float64 `json:"start"`
					End            float64 `json:"end"`
					Speaker        *int    `json:"speaker"`
				} `json:"words"`
			} `json:"alternatives"`
		} `json:"channels"`
	} `json:"results"`
}

// Transcribe sends the audio buffer for prerecorded transcription with
// diarization, punctuation and smart formatting enabled.
func (a *Adapter) Transcribe(ctx context.Context, audio []byte, mimeType string) (*stt.Result, error) {
	q := url.Values{}
	q.Set("model", a.model)
	q.Set("smart_format", "true")
	q.Set("diarize", "true")
	q.Set("diarize_version", "2023-10-09")
	q.Set("punctuate", "true")
	q.Set("utterances", "true")

	endpoint := fmt.Sprintf("%s/v1/listen?%s", a.baseURL, q.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(audio))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Token "+a.apiKey)
	if mimeType == "" {
		mimeType = stt.MimeBinary
	}
	req.Header.Set("Content-Type", mimeType)

	start := time.Now()
	resp, err := a.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("deepgram request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("deepgram http %d: %s", resp.StatusCode, string(body))
	}

	var out listenResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("deepgram decode: %w", err)
	}

	if len(out.Results.Channels) == 0 || len(out.Results.Channels[0].Alternatives) == 0 {
		a.log.Warn().Msg("deepgram returned no alternatives")
		return &stt.Result{}, nil
	}

	alt := out.Results.Channels[0].Alternatives[0]
	result := &stt.Result{Transcript: alt.Transcript}
	for _, w := range alt.Words {
		text := w.PunctuatedWord
		if text == "" {
			text = w.Word
		}
		word := models.Word{Text: text, Start: w.Start, End: w.End}
		if w.Speaker != nil {
			word.Speaker = strconv.Itoa(*w.Speaker)
		}
		result.Words = append(result.Words, word)
	}

	a.log.Info().
		Int("words", len(result.Words)).
		Dur("duration", time.Since(start)).
		Msg("Deepgram transcription completed")

	return result, nil
}
