package storage

import (
	"context"

	"purchase-explorer/models"
)

// PurchaseSource is implemented by every backend the dataset can be read from.
// Exactly one source is active per run.
type PurchaseSource interface {
	Load(ctx context.Context) ([]*models.RawPurchase, error)
	Close() error
}

// PurchaseWriter is the interface for persisting cleaned purchases.
type PurchaseWriter interface {
	Write(ctx context.Context, purchases []models.Purchase) error
	Close() error
}
