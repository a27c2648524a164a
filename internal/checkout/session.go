package checkout

import (
	"context"
	"errors"
	"fmt"

	"github.com/ministore/ministore/internal/orders"
	"github.com/ministore/ministore/internal/stock"
	"github.com/ministore/ministore/pkg/types"
)

var (
	// ErrUnknownProduct is returned by Check for an unseen product number.
	ErrUnknownProduct = errors.New("unknown product number")
	// ErrOutOfStock is returned by Check when nothing is on hand.
	ErrOutOfStock = errors.New("out of stock")
	// ErrNotChecked is returned by Buy before a successful Check.
	ErrNotChecked = errors.New("check availability first")
	// ErrNotInStock is returned by Buy when the purchase lost the race
	// for the remaining stock.
	ErrNotInStock = errors.New("not in stock")
	// ErrEmptyBasket is returned by Submit and Cancel with nothing bought.
	ErrEmptyBasket = errors.New("basket is empty")
)

// sessionState tracks whether the last operation was a successful
// availability check.
type sessionState int

const (
	process sessionState = iota // ready for the next check
	checked                     // a product was checked and may be bought
)

// Session drives one cash register through the purchase workflow:
// check a product, buy a quantity of it, repeat, then submit the
// basket for packing. A session is single-caller by contract; only the
// stock service and tracker behind it are shared.
type Session struct {
	stock   *stock.Service
	tracker *orders.Tracker

	state   sessionState
	current types.Product
	basket  *types.Basket
}

// NewSession creates a session against the shared stock service and
// order tracker.
func NewSession(s *stock.Service, t *orders.Tracker) *Session {
	return &Session{stock: s, tracker: t, state: process}
}

// Check verifies the product exists and has stock on hand, and arms
// the session for a Buy of that product. Unknown products and empty
// stock are logical errors, distinguishable from storage faults.
func (s *Session) Check(ctx context.Context, num int) (types.Product, error) {
	s.state = process

	exists, err := s.stock.Exists(ctx, num)
	if err != nil {
		return types.Product{}, fmt.Errorf("check product %d: %w", num, err)
	}
	if !exists {
		return types.Product{}, ErrUnknownProduct
	}

	p, err := s.stock.Details(ctx, num)
	if err != nil {
		return types.Product{}, fmt.Errorf("check product %d: %w", num, err)
	}
	if p.Quantity <= 0 {
		return p, ErrOutOfStock
	}

	s.current = p
	s.state = checked
	return p, nil
}

// Buy purchases the given quantity of the last checked product and adds
// it to the basket, which is kept merged and sorted. Whatever the
// outcome the session needs a fresh Check before the next Buy.
func (s *Session) Buy(ctx context.Context, quantity int) error {
	if s.state != checked {
		return ErrNotChecked
	}
	s.state = process

	bought, err := s.stock.Buy(ctx, s.current.Num, quantity)
	if err != nil {
		return fmt.Errorf("buy product %d: %w", s.current.Num, err)
	}
	if !bought {
		return ErrNotInStock
	}

	if s.basket == nil {
		s.basket = types.NewBasket()
	}
	line := s.current
	line.Quantity = quantity
	s.basket.Add(line)
	s.basket.MergeDuplicates()
	s.basket.SortByProductNum()
	return nil
}

// Basket exposes the in-progress basket's line items.
func (s *Session) Basket() []types.Product {
	if s.basket == nil {
		return nil
	}
	return s.basket.Items()
}

// Submit assigns an order number to the basket and hands it to the
// tracker; ownership of the basket passes with it. Returns the order
// number. The session starts the next basket empty.
func (s *Session) Submit(ctx context.Context) (int, error) {
	if s.basket == nil || s.basket.Size() == 0 {
		return 0, ErrEmptyBasket
	}

	num := s.tracker.UniqueNumber()
	if err := s.basket.SetOrderNum(num); err != nil {
		return 0, fmt.Errorf("submit order: %w", err)
	}
	if err := s.tracker.NewOrder(s.basket); err != nil {
		return 0, fmt.Errorf("submit order %d: %w", num, err)
	}

	s.basket = nil
	s.state = process
	return num, nil
}

// Cancel abandons the in-progress basket, returning every bought item
// to stock. On a storage fault mid-restock the remaining items stay in
// the basket for a retry.
func (s *Session) Cancel(ctx context.Context) error {
	if s.basket == nil || s.basket.Size() == 0 {
		return ErrEmptyBasket
	}

	items := s.basket.Items()
	for i, p := range items {
		if err := s.stock.Add(ctx, p.Num, p.Quantity); err != nil {
			remaining := types.NewBasket()
			for _, rest := range items[i:] {
				remaining.Add(rest)
			}
			s.basket = remaining
			return fmt.Errorf("cancel: restock product %d: %w", p.Num, err)
		}
	}

	s.basket = nil
	s.state = process
	return nil
}
