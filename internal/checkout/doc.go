// Package checkout implements the cashier workflow: check a product's
// availability, buy it into the basket, and submit the basket as an
// order for packing. One Session per register; the stock service and
// order tracker behind it carry all the shared state.
package checkout
