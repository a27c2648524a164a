// Package types defines the domain types shared across the store:
// products, baskets, and their validation errors.
//
// A Product doubles as a ledger record (quantity on hand) and a basket
// line item (quantity purchased). Prices are decimal.Decimal so totals
// are exact at the currency's natural precision.
package types
