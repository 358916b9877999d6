// Package embedding turns text into normalized vectors for similarity
// search. Providers are interchangeable behind the Provider interface; all
// of them return unit-length vectors so cosine distance stays accurate.
package embedding

import (
	"context"
	"errors"
)

// Dimensions is the vector width the passage index is provisioned for.
// Both nomic-embed-text and text-embedding-3-small (truncated) fit it.
const Dimensions = 768

// ErrEmptyText is returned when there is nothing meaningful to embed.
// Callers treat it as "no results", not as a service failure.
var ErrEmptyText = errors.New("embedding: empty text")

type Provider interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}
