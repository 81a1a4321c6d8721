package domain

import "context"

// StrategyStore persists the whole strategy collection as one opaque blob.
type StrategyStore interface {
	// Load returns the stored blob, or nil with no error when nothing is stored.
	Load(ctx context.Context) ([]byte, error)
	Save(ctx context.Context, data []byte) error
}
