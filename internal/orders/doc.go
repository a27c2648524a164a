// Package orders tracks open customer orders through their lifecycle:
//
//	Waiting -> BeingPacked -> ToBeCollected -> (removed on collection)
//
// The tracker owns order-number allocation and the table of open
// orders. A single mutex guards the table; because the critical
// sections are in-memory list mutations with no I/O, this is not a
// throughput concern at cash-register scale.
//
// Lifecycle transitions are additionally published on a buffered event
// feed (see Events) so a presentation layer can observe progress
// without the tracker depending on any notification mechanism.
package orders
