package stock

import (
	"context"

	"github.com/ministore/ministore/internal/storage"
	"github.com/ministore/ministore/pkg/types"
)

// Service is the transactional operations layer over the stock ledger.
// It validates arguments and delegates the atomic work to the store;
// the store's exclusion domain is what serializes concurrent mutations.
type Service struct {
	store storage.StockStore
}

// NewService wraps a stock store.
func NewService(store storage.StockStore) *Service {
	return &Service{store: store}
}

// Exists reports whether a product record is present.
func (s *Service) Exists(ctx context.Context, num int) (bool, error) {
	if num <= 0 {
		return false, nil
	}
	return s.store.Exists(ctx, num)
}

// Details returns a snapshot of the product record, or the zero-valued
// product for an unknown number. Callers are expected to call Exists
// first; StrictDetails fails instead of returning a zero value.
func (s *Service) Details(ctx context.Context, num int) (types.Product, error) {
	return s.store.Details(ctx, num)
}

// StrictDetails returns the product record or storage.ErrNotFound.
func (s *Service) StrictDetails(ctx context.Context, num int) (types.Product, error) {
	return s.store.StrictDetails(ctx, num)
}

// Search returns products whose description contains name.
func (s *Service) Search(ctx context.Context, name string) ([]types.Product, error) {
	return s.store.Search(ctx, name)
}

// Buy atomically checks availability and decrements the quantity on
// hand. False means unknown product, non-positive amount, or
// insufficient stock; in every false case nothing was mutated.
func (s *Service) Buy(ctx context.Context, num, amount int) (bool, error) {
	if num <= 0 || amount <= 0 {
		return false, nil
	}
	return s.store.Buy(ctx, num, amount)
}

// Add increments the quantity on hand by amount. The amount is not
// validated: a negative add is an allowed restock correction, and the
// store rejects any result below zero.
func (s *Service) Add(ctx context.Context, num, amount int) error {
	return s.store.Add(ctx, num, amount)
}

// Modify upserts the product record: create when the product number is
// unseen, otherwise overwrite description, price and quantity outright.
func (s *Service) Modify(ctx context.Context, p types.Product) error {
	if err := p.Validate(); err != nil {
		return err
	}
	return s.store.Modify(ctx, p)
}
