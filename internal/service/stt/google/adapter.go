// Package google provides a Google Cloud Speech-to-Text batch adapter.
package google

import (
	"context"
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"
	"time"

	speech "cloud.google.com/go/speech/apiv1"
	"github.com/rs/zerolog"
	"google.golang.org/api/option"
	speechpb "google.golang.org/genproto/googleapis/cloud/speech/v1"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/durationpb"

	"voice-archive-search/internal/models"
	"voice-archive-search/internal/observability/logging"
	"voice-archive-search/internal/service/stt"
)

// Adapter implements stt.Adapter using LongRunningRecognize with word
// time offsets and speaker diarization enabled.
type Adapter struct {
	client     *speech.Client
	cfg        Config
	maxRetries int
	log        zerolog.Logger
}

// Config configures recognition.
type Config struct {
	LanguageCode    string // defaults to en-US
	Model           string
	MinSpeakerCount int
	MaxSpeakerCount int
	Timeout         time.Duration // per-request cap, defaults to 3m
}

// New creates a Google STT adapter. Credentials come from
// GOOGLE_APPLICATION_CREDENTIALS or ambient application default credentials.
func New(ctx context.Context, cfg Config) (*Adapter, error) {
	var opts []option.ClientOption
	if creds := strings.TrimSpace(os.Getenv("GOOGLE_APPLICATION_CREDENTIALS")); creds != "" {
		opts = append(opts, option.WithCredentialsFile(creds))
	}
	c, err := speech.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("speech client: %w", err)
	}
	if cfg.LanguageCode == "" {
		cfg.LanguageCode = "en-US"
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 3 * time.Minute
	}
	return &Adapter{
		client:     c,
		cfg:        cfg,
		maxRetries: 4,
		log:        logging.WithComponent("stt.google"),
	}, nil
}

// Name identifies the provider.
func (a *Adapter) Name() string { return "google" }

// Close releases the underlying client.
func (a *Adapter) Close() error {
	if a.client == nil {
		return nil
	}
	return a.client.Close()
}

// Transcribe runs batch recognition over the audio buffer.
func (a *Adapter) Transcribe(ctx context.Context, audio []byte, mimeType string) (*stt.Result, error) {
	if len(audio) == 0 {
		return &stt.Result{}, nil
	}

	ctx, cancel := context.WithTimeout(ctx, a.cfg.Timeout)
	defer cancel()

	req := &speechpb.LongRunningRecognizeRequest{
		Config: a.recognitionConfig(mimeType),
		Audio: &speechpb.RecognitionAudio{
			AudioSource: &speechpb.RecognitionAudio_Content{Content: audio},
		},
	}

	var resp *speechpb.LongRunningRecognizeResponse
	var err error
	for attempt := 0; ; attempt++ {
		resp, err = a.recognize(ctx, req)
		if err == nil || attempt >= a.maxRetries || !retryable(err) {
			break
		}
		delay := backoff(attempt)
		a.log.Warn().Err(err).Int("attempt", attempt+1).Dur("backoff", delay).
			Msg("transient recognize error, retrying")
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if err != nil {
		return nil, fmt.Errorf("longrunningrecognize: %w", err)
	}

	return parseResponse(resp), nil
}

func (a *Adapter) recognize(ctx context.Context, req *speechpb.LongRunningRecognizeRequest) (*speechpb.LongRunningRecognizeResponse, error) {
	op, err := a.client.LongRunningRecognize(ctx, req)
	if err != nil {
		return nil, err
	}
	return op.Wait(ctx)
}

func (a *Adapter) recognitionConfig(mimeType string) *speechpb.RecognitionConfig {
	rc := &speechpb.RecognitionConfig{
		LanguageCode:               a.cfg.LanguageCode,
		Model:                      a.cfg.Model,
		EnableAutomaticPunctuation: true,
		EnableWordTimeOffsets:      true,
		Encoding:                   inferEncoding(mimeType),
		DiarizationConfig: &speechpb.SpeakerDiarizationConfig{
			EnableSpeakerDiarization: true,
			MinSpeakerCount:          int32(max0(a.cfg.MinSpeakerCount)),
			MaxSpeakerCount:          int32(max0(a.cfg.MaxSpeakerCount)),
		},
	}
	return rc
}

func inferEncoding(mimeType string) speechpb.RecognitionConfig_AudioEncoding {
	switch stt.NormalizeMimeType(mimeType) {
	case stt.MimeWAV:
		return speechpb.RecognitionConfig_LINEAR16
	case stt.MimeMPEG:
		// The v1 proto has no MP3 encoding; leaving it unspecified lets
		// LongRunningRecognize detect the container itself.
		return speechpb.RecognitionConfig_ENCODING_UNSPECIFIED
	case "audio/flac":
		return speechpb.RecognitionConfig_FLAC
	case "audio/ogg", "audio/opus":
		return speechpb.RecognitionConfig_OGG_OPUS
	default:
		// API can often auto-detect when unspecified.
		return speechpb.RecognitionConfig_ENCODING_UNSPECIFIED
	}
}

func parseResponse(resp *speechpb.LongRunningRecognizeResponse) *stt.Result {
	out := &stt.Result{}
	if resp == nil {
		return out
	}

	var full strings.Builder
	for _, r := range resp.Results {
		if r == nil || len(r.Alternatives) == 0 || r.Alternatives[0] == nil {
			continue
		}
		alt := r.Alternatives[0]
		if strings.TrimSpace(alt.Transcript) == "" {
			continue
		}
		if full.Len() > 0 {
			full.WriteString(" ")
		}
		full.WriteString(strings.TrimSpace(alt.Transcript))

		for _, w := range alt.Words {
			if w == nil {
				continue
			}
			word := models.Word{
				Text:  w.Word,
				Start: durToSec(w.StartTime),
				End:   durToSec(w.EndTime),
			}
			if w.SpeakerTag != 0 {
				word.Speaker = strconv.Itoa(int(w.SpeakerTag))
			}
			out.Words = append(out.Words, word)
		}
	}

	out.Transcript = full.String()
	return out
}

func durToSec(d *durationpb.Duration) float64 {
	if d == nil {
		return 0
	}
	return float64(d.Seconds) + float64(d.Nanos)/1e9
}

func retryable(err error) bool {
	st, ok := status.FromError(err)
	if !ok {
		return false
	}
	switch st.Code() {
	case codes.Unavailable, codes.DeadlineExceeded, codes.ResourceExhausted, codes.Aborted, codes.Internal:
		return true
	default:
		return false
	}
}

func backoff(attempt int) time.Duration {
	d := time.Duration(math.Pow(2, float64(attempt))) * 500 * time.Millisecond
	if d > 8*time.Second {
		d = 8 * time.Second
	}
	return d
}

func max0(v int) int {
	if v < 0 {
		return 0
	}
	return v
}
