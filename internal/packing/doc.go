// Package packing runs the warehouse side of an order: workers claim
// waiting orders from the tracker in FIFO order, pack them, and report
// them ready for collection.
package packing
