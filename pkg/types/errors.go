package types

import "errors"

// Domain errors for type validation
var (
	// Product errors
	ErrInvalidProductNum = errors.New("product number must be positive")
	ErrNegativePrice     = errors.New("price must be non-negative")
	ErrNegativeQuantity  = errors.New("quantity must be non-negative")

	// Basket errors
	ErrOrderNumAssigned = errors.New("order number already assigned")
	ErrInvalidOrderNum  = errors.New("order number must be positive")
)
