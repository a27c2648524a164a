package storage

import (
	"context"

	"github.com/ministore/ministore/pkg/types"
)

// StockReader is the narrow read-only view of the stock ledger.
type StockReader interface {
	// Exists reports whether a product record is present for num.
	Exists(ctx context.Context, num int) (bool, error)

	// Details returns a snapshot of the product record. For an unknown
	// product number it returns the zero-valued product and a nil error;
	// callers are expected to call Exists first. See StrictDetails for
	// the variant that fails instead.
	Details(ctx context.Context, num int) (types.Product, error)

	// StrictDetails returns the product record or ErrNotFound.
	StrictDetails(ctx context.Context, num int) (types.Product, error)

	// Search returns all products whose description contains the given
	// substring, ordered by product number.
	Search(ctx context.Context, name string) ([]types.Product, error)
}

// StockStore is the read/write view of the stock ledger. It widens
// StockReader with the mutating operations; implementations must make
// each mutation atomic with respect to concurrent callers.
type StockStore interface {
	StockReader

	// Buy atomically checks quantity >= amount and decrements by amount.
	// Returns false without mutation when the product is unknown or the
	// quantity is insufficient.
	Buy(ctx context.Context, num, amount int) (bool, error)

	// Add increments the quantity on hand by amount. The product must
	// already exist. A negative amount is permitted; a decrement below
	// zero is rejected by the store.
	Add(ctx context.Context, num, amount int) error

	// Modify upserts the product record: insert when the product number
	// is unseen, otherwise overwrite description, price and quantity.
	// The whole operation is transactional; on failure no partial write
	// remains visible.
	Modify(ctx context.Context, p types.Product) error

	Close() error
}
