package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/ministore/ministore/pkg/types"
)

var (
	// ErrNotFound is returned when a requested record doesn't exist
	ErrNotFound = errors.New("not found")
	// ErrStorage marks a failure of the underlying store: unreachable
	// database, rejected write, or malformed data. Callers distinguish it
	// from logical not-found outcomes with errors.Is(err, ErrStorage).
	ErrStorage = errors.New("storage fault")
)

// fault wraps a driver error so it carries the ErrStorage mark and the
// original cause.
func fault(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, ErrStorage, err)
}

// SQLiteStore implements the StockStore interface using SQLite
type SQLiteStore struct {
	db *sql.DB
}

// compile-time interface check
var _ StockStore = (*SQLiteStore)(nil)

// openDatabase opens a SQLite database with appropriate settings
func openDatabase(dbPath string) (*sql.DB, error) {
	db, err := sql.Open(DriverName, dbPath)
	if err != nil {
		return nil, err
	}

	// Enable WAL mode for better concurrency
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}

	// A single connection serializes all writers; this is the exclusion
	// domain that makes check-then-decrement indivisible.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	// Enable foreign keys
	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	return db, nil
}

// NewSQLiteStore creates a new SQLite-backed stock ledger
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := openDatabase(dbPath)
	if err != nil {
		return nil, fault("open database", err)
	}

	// Apply migrations
	if err := ApplyMigrations(context.Background(), db); err != nil {
		_ = db.Close()
		return nil, fault("apply migrations", err)
	}

	return &SQLiteStore{db: db}, nil
}

// Close closes the database connection
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// querier is an interface that both *sql.DB and *sql.Tx implement
type querier interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

// Read operations

// existsWithQuerier is the internal implementation that uses a querier
func (s *SQLiteStore) existsWithQuerier(ctx context.Context, q querier, num int) (bool, error) {
	var one int
	err := q.QueryRowContext(ctx,
		"SELECT 1 FROM products WHERE product_no = ?", num).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fault(fmt.Sprintf("exists product %d", num), err)
	}
	return true, nil
}

func (s *SQLiteStore) Exists(ctx context.Context, num int) (bool, error) {
	return s.existsWithQuerier(ctx, s.db, num)
}

// detailsWithQuerier is the internal implementation that uses a querier
func (s *SQLiteStore) detailsWithQuerier(ctx context.Context, q querier, num int) (types.Product, error) {
	query := `
		SELECT p.product_no, p.description, p.price, s.quantity
		FROM products p
		JOIN stock_levels s ON p.product_no = s.product_no
		WHERE p.product_no = ?
	`
	var (
		product  types.Product
		priceStr string
	)
	err := q.QueryRowContext(ctx, query, num).Scan(
		&product.Num, &product.Description, &priceStr, &product.Quantity)
	if err == sql.ErrNoRows {
		return types.Product{}, ErrNotFound
	}
	if err != nil {
		return types.Product{}, fault(fmt.Sprintf("get details for product %d", num), err)
	}
	product.Price, err = decimal.NewFromString(priceStr)
	if err != nil {
		return types.Product{}, fault(fmt.Sprintf("malformed price for product %d", num), err)
	}
	return product, nil
}

// Details returns a snapshot of the product record. An unknown product
// number yields the zero-valued product and a nil error; this mirrors
// the historical "assumed to exist" contract and is kept for
// compatibility. Callers wanting a hard failure use StrictDetails.
func (s *SQLiteStore) Details(ctx context.Context, num int) (types.Product, error) {
	product, err := s.detailsWithQuerier(ctx, s.db, num)
	if errors.Is(err, ErrNotFound) {
		return types.Product{}, nil
	}
	return product, err
}

// StrictDetails returns the product record, or ErrNotFound for an
// unknown product number.
func (s *SQLiteStore) StrictDetails(ctx context.Context, num int) (types.Product, error) {
	return s.detailsWithQuerier(ctx, s.db, num)
}

// Search returns products whose description contains name, ordered by
// product number.
func (s *SQLiteStore) Search(ctx context.Context, name string) ([]types.Product, error) {
	query := `
		SELECT p.product_no, p.description, p.price, s.quantity
		FROM products p
		JOIN stock_levels s ON p.product_no = s.product_no
		WHERE p.description LIKE ?
		ORDER BY p.product_no
	`
	rows, err := s.db.QueryContext(ctx, query, "%"+name+"%")
	if err != nil {
		return nil, fault(fmt.Sprintf("search %q", name), err)
	}
	defer func() { _ = rows.Close() }()

	products := make([]types.Product, 0)
	for rows.Next() {
		var (
			product  types.Product
			priceStr string
		)
		if err := rows.Scan(&product.Num, &product.Description, &priceStr, &product.Quantity); err != nil {
			return nil, fault(fmt.Sprintf("search %q", name), err)
		}
		product.Price, err = decimal.NewFromString(priceStr)
		if err != nil {
			return nil, fault(fmt.Sprintf("malformed price for product %d", product.Num), err)
		}
		products = append(products, product)
	}
	if err := rows.Err(); err != nil {
		return nil, fault(fmt.Sprintf("search %q", name), err)
	}
	return products, nil
}

// Write operations

// Buy atomically checks the quantity on hand and decrements it. The
// guard lives in the statement itself, so the check and the decrement
// cannot interleave with a concurrent Buy or Add on the same product.
func (s *SQLiteStore) Buy(ctx context.Context, num, amount int) (bool, error) {
	result, err := s.db.ExecContext(ctx, `
		UPDATE stock_levels
		SET quantity = quantity - ?, updated_at = ?
		WHERE product_no = ? AND quantity >= ?
	`, amount, time.Now(), num, amount)
	if err != nil {
		return false, fault(fmt.Sprintf("buy product %d", num), err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return false, fault(fmt.Sprintf("buy product %d", num), err)
	}
	// Zero rows: unknown product or insufficient stock. Either way no
	// mutation happened.
	return rows > 0, nil
}

// Add increments the quantity on hand. The product is assumed to exist;
// an unknown product number is a silent no-op, matching the restock
// contract. A negative amount is allowed but may not take the quantity
// below zero; the schema constraint rejects that as a storage fault.
func (s *SQLiteStore) Add(ctx context.Context, num, amount int) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE stock_levels
		SET quantity = quantity + ?, updated_at = ?
		WHERE product_no = ?
	`, amount, time.Now(), num)
	if err != nil {
		return fault(fmt.Sprintf("add stock for product %d", num), err)
	}
	return nil
}

// Modify upserts the product record: both the catalogue row and the
// stock-level row are written inside one transaction, so a concurrent
// reader never observes a new description paired with an old quantity.
// On any failure all partial writes are rolled back.
func (s *SQLiteStore) Modify(ctx context.Context, p types.Product) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fault(fmt.Sprintf("modify product %d", p.Num), err)
	}
	defer func() { _ = tx.Rollback() }()

	exists, err := s.existsWithQuerier(ctx, tx, p.Num)
	if err != nil {
		return err
	}

	now := time.Now()
	if !exists {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO products (product_no, description, picture, price, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?)
		`, p.Num, p.Description, pictureFile(p.Num), p.Price.String(), now, now)
		if err != nil {
			return fault(fmt.Sprintf("insert product %d", p.Num), err)
		}
		_, err = tx.ExecContext(ctx, `
			INSERT INTO stock_levels (product_no, quantity, updated_at)
			VALUES (?, ?, ?)
		`, p.Num, p.Quantity, now)
		if err != nil {
			return fault(fmt.Sprintf("insert stock level for product %d", p.Num), err)
		}
	} else {
		_, err = tx.ExecContext(ctx, `
			UPDATE products SET description = ?, price = ?, updated_at = ?
			WHERE product_no = ?
		`, p.Description, p.Price.String(), now, p.Num)
		if err != nil {
			return fault(fmt.Sprintf("update product %d", p.Num), err)
		}
		// Replacement, not an increment: modify sets the level outright.
		_, err = tx.ExecContext(ctx, `
			UPDATE stock_levels SET quantity = ?, updated_at = ?
			WHERE product_no = ?
		`, p.Quantity, now, p.Num)
		if err != nil {
			return fault(fmt.Sprintf("update stock level for product %d", p.Num), err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fault(fmt.Sprintf("modify product %d", p.Num), err)
	}
	return nil
}

// pictureFile derives the catalogue image path for a product.
func pictureFile(num int) string {
	return fmt.Sprintf("images/Pic%04d.jpg", num)
}
