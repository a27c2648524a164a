package types

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Product describes one stock item: either a record in the ledger or a
// line item inside a basket. Identity is the product number.
type Product struct {
	Num         int             // Product number, positive and unique
	Description string          // Human-readable description
	Price       decimal.Decimal // Unit price, non-negative
	Quantity    int             // Quantity on hand (ledger) or purchased (basket)
}

// NewProduct creates a product record.
func NewProduct(num int, description string, price decimal.Decimal, quantity int) Product {
	return Product{
		Num:         num,
		Description: description,
		Price:       price,
		Quantity:    quantity,
	}
}

// Validate checks the invariants a ledger record must satisfy.
func (p Product) Validate() error {
	if p.Num <= 0 {
		return ErrInvalidProductNum
	}
	if p.Price.IsNegative() {
		return ErrNegativePrice
	}
	if p.Quantity < 0 {
		return ErrNegativeQuantity
	}
	return nil
}

// IsZero reports whether this is the sentinel empty product returned for
// a lookup on an unknown product number.
func (p Product) IsZero() bool {
	return p.Num == 0 && p.Description == "" && p.Price.IsZero() && p.Quantity == 0
}

// SubTotal is the line cost: unit price times quantity.
func (p Product) SubTotal() decimal.Decimal {
	return p.Price.Mul(decimal.NewFromInt(int64(p.Quantity)))
}

func (p Product) String() string {
	return fmt.Sprintf("Product[Num=%d, Desc=%s, Price=%s, Qty=%d]",
		p.Num, p.Description, p.Price.StringFixed(2), p.Quantity)
}
