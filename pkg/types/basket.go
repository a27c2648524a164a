package types

import (
	"fmt"
	"sort"
	"strings"

	"github.com/shopspring/decimal"
)

// Basket collects the line items of one purchase. A basket starts without
// an order number and is owned by the caller building it; once an order
// number is assigned and the basket is submitted for packing it must be
// treated as read-only.
type Basket struct {
	orderNum int
	items    []Product
}

// NewBasket creates an empty basket with no order number assigned.
func NewBasket() *Basket {
	return &Basket{}
}

// OrderNum returns the assigned order number, or 0 if none yet.
func (b *Basket) OrderNum() int {
	return b.orderNum
}

// SetOrderNum assigns the order number. The number is assigned once and
// is immutable afterwards.
func (b *Basket) SetOrderNum(num int) error {
	if num <= 0 {
		return ErrInvalidOrderNum
	}
	if b.orderNum != 0 {
		return ErrOrderNumAssigned
	}
	b.orderNum = num
	return nil
}

// Add appends a line item to the basket.
func (b *Basket) Add(p Product) {
	b.items = append(b.items, p)
}

// Size returns the number of line items.
func (b *Basket) Size() int {
	return len(b.items)
}

// Items returns a copy of the current line items for read-only iteration.
func (b *Basket) Items() []Product {
	out := make([]Product, len(b.items))
	copy(out, b.items)
	return out
}

// MergeDuplicates collapses line items sharing a product number into a
// single entry whose quantity is the sum of the originals. The first
// entry encountered keeps its description and price and its position in
// the basket. Idempotent: merging an already-merged basket is a no-op.
func (b *Basket) MergeDuplicates() {
	if len(b.items) < 2 {
		return
	}

	merged := make([]Product, 0, len(b.items))
	index := make(map[int]int, len(b.items)) // product number -> position in merged
	for _, p := range b.items {
		if at, ok := index[p.Num]; ok {
			merged[at].Quantity += p.Quantity
			continue
		}
		index[p.Num] = len(merged)
		merged = append(merged, p)
	}
	b.items = merged
}

// SortByProductNum orders line items ascending by product number.
func (b *Basket) SortByProductNum() {
	sort.SliceStable(b.items, func(i, j int) bool {
		return b.items[i].Num < b.items[j].Num
	})
}

// TotalCost sums unit price times quantity over all line items.
func (b *Basket) TotalCost() decimal.Decimal {
	total := decimal.Zero
	for _, p := range b.items {
		total = total.Add(p.SubTotal())
	}
	return total
}

func (b *Basket) String() string {
	parts := make([]string, len(b.items))
	for i, p := range b.items {
		parts[i] = p.String()
	}
	return fmt.Sprintf("Basket[Order=%d: %s]", b.orderNum, strings.Join(parts, ", "))
}
