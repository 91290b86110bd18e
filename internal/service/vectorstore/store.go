// Package vectorstore defines the contract for namespaced vector storage
// with nearest-neighbor retrieval.
package vectorstore

import (
	"context"

	"voice-archive-search/internal/models"
)

// Filter constrains query candidates by metadata equality. It is applied
// at query time, before ranking, not as a post-hoc cut.
type Filter map[string]string

// Store persists vectors and serves similarity queries. Upserting an
// existing ID overwrites its vector and metadata.
type Store interface {
	Name() string
	Upsert(ctx context.Context, namespace string, records []models.IndexRecord) error
	Query(ctx context.Context, namespace string, vector []float64, topK int, filter Filter) ([]models.Match, error)
}
