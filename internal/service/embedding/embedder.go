// Package embedding defines the contract for text embedding providers.
package embedding

import "context"

// InputType hints the provider how the text will be used. Providers that
// do not distinguish simply ignore it.
type InputType string

const (
	// InputDocument marks texts destined for the index.
	InputDocument InputType = "search_document"
	// InputQuery marks user query text.
	InputQuery InputType = "search_query"
)

// Embedder converts texts into fixed-length vectors, one per input text,
// preserving order and count.
type Embedder interface {
	Name() string
	Embed(ctx context.Context, texts []string, input InputType) ([][]float64, error)
}
