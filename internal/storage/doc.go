// Package storage provides the SQLite-backed stock ledger.
//
// The ledger holds one catalogue row and one stock-level row per
// product:
//   - products: product number, description, picture path, unit price
//     (stored as an exact decimal string)
//   - stock_levels: product number, quantity on hand (CHECK >= 0)
//
// Access is split into capabilities rather than a type hierarchy:
// StockReader is the narrow read-only contract, StockStore widens it
// with the mutations. SQLiteStore satisfies both.
//
// # Concurrency
//
// The store runs SQLite in WAL mode with a single open connection, so
// all writes pass through one exclusion domain. Buy embeds its
// quantity guard in the UPDATE statement itself, which makes the
// check-then-decrement indivisible: two buys racing for the last unit
// cannot both succeed. Modify writes the catalogue row and the
// stock-level row inside one transaction and rolls back on any
// failure.
//
// # Errors
//
// Logical absence is reported as ErrNotFound (or a zero value, for the
// compatibility contract of Details); infrastructure failures are
// wrapped with ErrStorage. The two are distinguishable with errors.Is.
//
// # Basic Usage
//
//	store, err := storage.NewSQLiteStore("ministore.db")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer store.Close()
//
//	bought, err := store.Buy(ctx, 42, 2)
package storage
