// Package app wires configuration into the concrete providers and
// pipelines that make up the running service.
package app

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"voice-archive-search/internal/config"
	"voice-archive-search/internal/events"
	"voice-archive-search/internal/observability/logging"
	"voice-archive-search/internal/pipeline"
	"voice-archive-search/internal/service/embedding"
	"voice-archive-search/internal/service/embedding/cohere"
	"voice-archive-search/internal/service/embedding/openai"
	"voice-archive-search/internal/service/redact"
	"voice-archive-search/internal/service/retrieval"
	"voice-archive-search/internal/service/segmenter"
	"voice-archive-search/internal/service/stt"
	"voice-archive-search/internal/service/stt/deepgram"
	"voice-archive-search/internal/service/stt/google"
	"voice-archive-search/internal/service/stt/mock"
	"voice-archive-search/internal/service/transcription"
	"voice-archive-search/internal/service/vectorstore"
	"voice-archive-search/internal/service/vectorstore/memory"
	"voice-archive-search/internal/service/vectorstore/pinecone"
	"voice-archive-search/internal/session"
)

// Application holds process-wide state for the service.
type Application struct {
	StartupTime time.Time
	Logger      zerolog.Logger
	Cfg         *config.Config

	Transcriber *transcription.Service
	Indexer     *pipeline.Indexer
	Batch       *pipeline.Batch
	Searcher    *retrieval.Searcher
	Sessions    *session.Store
	Publisher   *events.Publisher

	sttCloser interface{ Close() error }
}

// New constructs the application from configuration, instantiating the
// configured STT, embedding and vector store providers.
func New(ctx context.Context, cfg *config.Config) (*Application, error) {
	a := &Application{
		Cfg:      cfg,
		Logger:   logging.WithComponent("application"),
		Sessions: session.NewStore(),
	}

	adapter, err := a.buildSTT(ctx, cfg)
	if err != nil {
		return nil, err
	}
	embedder, err := buildEmbedder(cfg)
	if err != nil {
		return nil, err
	}
	store, err := buildStore(cfg)
	if err != nil {
		return nil, err
	}

	a.Publisher = events.New(&events.Config{
		Brokers:       cfg.Kafka.Brokers,
		TopicIndexed:  cfg.Kafka.TopicIndexed,
		TopicSearched: cfg.Kafka.TopicSearched,
		Principal:     cfg.Service.Principal,
		Enabled:       cfg.Kafka.Enabled,
	})

	params := segmenter.Params{
		MaxGap:      cfg.Segmenter.MaxGap,
		MaxDuration: cfg.Segmenter.MaxDuration,
	}
	a.Transcriber = transcription.New(adapter, params)
	a.Indexer = pipeline.NewIndexer(
		redact.New(cfg.Redact.Enabled),
		embedder,
		store,
		cfg.VectorStore.Namespace,
		a.Publisher,
	)
	a.Batch = pipeline.NewBatch(a.Transcriber, a.Indexer, cfg.Pipeline.Workers)
	a.Searcher = retrieval.NewSearcher(embedder, store, cfg.VectorStore.Namespace, a.Publisher)

	a.Logger.Info().
		Str("sttProvider", adapter.Name()).
		Str("embeddingProvider", embedder.Name()).
		Str("vectorStore", store.Name()).
		Msg("Application created")
	return a, nil
}

// Start records startup time and logs the effective provider selection.
func (a *Application) Start() {
	a.StartupTime = time.Now().UTC()
	a.Logger.Info().
		Time("startupTime", a.StartupTime).
		Str("sttProvider", a.Transcriber.Provider()).
		Str("namespace", a.Indexer.Namespace()).
		Msg("Voice archive service starting")
}

// Shutdown performs a best-effort cleanup before process exit.
func (a *Application) Shutdown() {
	if a.sttCloser != nil {
		if err := a.sttCloser.Close(); err != nil {
			a.Logger.Error().Err(err).Msg("Error closing STT client")
		}
	}
	if a.Publisher != nil {
		if err := a.Publisher.Close(); err != nil {
			a.Logger.Error().Err(err).Msg("Error closing event publisher")
		}
	}
	a.Logger.Info().Msg("Voice archive service shut down")
}

func (a *Application) buildSTT(ctx context.Context, cfg *config.Config) (stt.Adapter, error) {
	switch cfg.STT.Provider {
	case "mock":
		return mock.New(), nil
	case "deepgram":
		return deepgram.New(deepgram.Config{
			BaseURL: cfg.STT.DeepgramBaseURL,
			APIKey:  cfg.STT.DeepgramAPIKey,
			Model:   cfg.STT.DeepgramModel,
		})
	case "google":
		adapter, err := google.New(ctx, google.Config{
			LanguageCode:    cfg.STT.LanguageCode,
			Model:           cfg.STT.GoogleModel,
			MinSpeakerCount: cfg.STT.MinSpeakerCount,
			MaxSpeakerCount: cfg.STT.MaxSpeakerCount,
		})
		if err != nil {
			return nil, err
		}
		a.sttCloser = adapter
		return adapter, nil
	default:
		return nil, fmt.Errorf("unknown STT provider %q", cfg.STT.Provider)
	}
}

func buildEmbedder(cfg *config.Config) (embedding.Embedder, error) {
	switch cfg.Embedding.Provider {
	case "cohere":
		return cohere.New(cohere.Config{
			BaseURL:   cfg.Embedding.BaseURL,
			APIKey:    cfg.Embedding.APIKey,
			Model:     cfg.Embedding.Model,
			Dimension: cfg.Embedding.Dimension,
		})
	case "openai":
		return openai.New(openai.Config{
			BaseURL: cfg.Embedding.BaseURL,
			APIKey:  cfg.Embedding.APIKey,
			Model:   cfg.Embedding.Model,
		})
	default:
		return nil, fmt.Errorf("unknown embedding provider %q", cfg.Embedding.Provider)
	}
}

func buildStore(cfg *config.Config) (vectorstore.Store, error) {
	switch cfg.VectorStore.Provider {
	case "memory":
		return memory.New(), nil
	case "pinecone":
		return pinecone.New(pinecone.Config{
			Host:   cfg.VectorStore.Host,
			APIKey: cfg.VectorStore.APIKey,
		})
	default:
		return nil, fmt.Errorf("unknown vector store provider %q", cfg.VectorStore.Provider)
	}
}
