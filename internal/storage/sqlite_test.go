package storage

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"github.com/ministore/ministore/pkg/types"
)

func setupTestDB(t *testing.T) *SQLiteStore {
	// Use in-memory database for testing
	store, err := NewSQLiteStore(":memory:")
	require.NoError(t, err)
	require.NotNil(t, store)
	return store
}

func price(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestNewSQLiteStore(t *testing.T) {
	store := setupTestDB(t)
	defer store.Close()

	assert.NotNil(t, store)
	assert.NotNil(t, store.db)
}

func TestClose(t *testing.T) {
	store := setupTestDB(t)
	err := store.Close()
	assert.NoError(t, err)
}

func TestModify_CreatesUnseenProduct(t *testing.T) {
	store := setupTestDB(t)
	defer store.Close()

	ctx := context.Background()
	err := store.Modify(ctx, types.NewProduct(200, "Widget", price("4.50"), 10))
	require.NoError(t, err)

	exists, err := store.Exists(ctx, 200)
	require.NoError(t, err)
	assert.True(t, exists)

	got, err := store.Details(ctx, 200)
	require.NoError(t, err)
	assert.Equal(t, 200, got.Num)
	assert.Equal(t, "Widget", got.Description)
	assert.True(t, got.Price.Equal(price("4.50")))
	assert.Equal(t, 10, got.Quantity)
}

func TestModify_OverwritesExistingProduct(t *testing.T) {
	store := setupTestDB(t)
	defer store.Close()

	ctx := context.Background()
	require.NoError(t, store.Modify(ctx, types.NewProduct(7, "TV", price("269.00"), 5)))

	// Quantity is replaced, not added
	require.NoError(t, store.Modify(ctx, types.NewProduct(7, "Large TV", price("299.00"), 2)))

	got, err := store.Details(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, "Large TV", got.Description)
	assert.True(t, got.Price.Equal(price("299.00")))
	assert.Equal(t, 2, got.Quantity)
}

func TestModify_RollsBackOnConstraintViolation(t *testing.T) {
	store := setupTestDB(t)
	defer store.Close()

	ctx := context.Background()
	require.NoError(t, store.Modify(ctx, types.NewProduct(9, "Lamp", price("5.00"), 5)))

	// The catalogue-row update succeeds before the stock_levels CHECK
	// rejects the negative quantity; the whole transaction must unwind.
	err := store.Modify(ctx, types.NewProduct(9, "Broken Lamp", price("9.00"), -1))
	assert.ErrorIs(t, err, ErrStorage)

	got, err := store.Details(ctx, 9)
	require.NoError(t, err)
	assert.Equal(t, "Lamp", got.Description)
	assert.True(t, got.Price.Equal(price("5.00")))
	assert.Equal(t, 5, got.Quantity)
}

func TestExists_Unknown(t *testing.T) {
	store := setupTestDB(t)
	defer store.Close()

	exists, err := store.Exists(context.Background(), 9999)
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestDetails_UnknownReturnsZeroProduct(t *testing.T) {
	store := setupTestDB(t)
	defer store.Close()

	got, err := store.Details(context.Background(), 9999)
	require.NoError(t, err)
	assert.True(t, got.IsZero())
}

func TestStrictDetails_Unknown(t *testing.T) {
	store := setupTestDB(t)
	defer store.Close()

	_, err := store.StrictDetails(context.Background(), 9999)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestBuy(t *testing.T) {
	store := setupTestDB(t)
	defer store.Close()

	ctx := context.Background()
	require.NoError(t, store.Modify(ctx, types.NewProduct(200, "Widget", price("4.50"), 10)))

	t.Run("sufficient stock", func(t *testing.T) {
		bought, err := store.Buy(ctx, 200, 3)
		require.NoError(t, err)
		assert.True(t, bought)

		got, err := store.Details(ctx, 200)
		require.NoError(t, err)
		assert.Equal(t, 7, got.Quantity)
	})

	t.Run("insufficient stock leaves quantity untouched", func(t *testing.T) {
		bought, err := store.Buy(ctx, 200, 15)
		require.NoError(t, err)
		assert.False(t, bought)

		got, err := store.Details(ctx, 200)
		require.NoError(t, err)
		assert.Equal(t, 7, got.Quantity)
	})

	t.Run("unknown product", func(t *testing.T) {
		bought, err := store.Buy(ctx, 9999, 1)
		require.NoError(t, err)
		assert.False(t, bought)
	})
}

func TestBuy_NoOversell(t *testing.T) {
	store := setupTestDB(t)
	defer store.Close()

	ctx := context.Background()
	const initial = 10
	require.NoError(t, store.Modify(ctx, types.NewProduct(300, "Clock", price("19.99"), initial)))

	// Sum of successful decrements never exceeds the initial quantity.
	sold := 0
	for i := 0; i < 20; i++ {
		bought, err := store.Buy(ctx, 300, 1)
		require.NoError(t, err)
		if bought {
			sold++
		}
	}
	assert.Equal(t, initial, sold)

	got, err := store.Details(ctx, 300)
	require.NoError(t, err)
	assert.Equal(t, 0, got.Quantity)
}

func TestBuy_ConcurrentRaceForLastUnit(t *testing.T) {
	store := setupTestDB(t)
	defer store.Close()

	ctx := context.Background()
	require.NoError(t, store.Modify(ctx, types.NewProduct(400, "Radio", price("29.99"), 1)))

	results := make(chan bool, 2)
	g, gctx := errgroup.WithContext(ctx)
	for i := 0; i < 2; i++ {
		g.Go(func() error {
			bought, err := store.Buy(gctx, 400, 1)
			if err != nil {
				return err
			}
			results <- bought
			return nil
		})
	}
	require.NoError(t, g.Wait())
	close(results)

	successes := 0
	for bought := range results {
		if bought {
			successes++
		}
	}
	assert.Equal(t, 1, successes, "exactly one buyer must win the last unit")

	got, err := store.Details(ctx, 400)
	require.NoError(t, err)
	assert.Equal(t, 0, got.Quantity)
}

func TestAdd(t *testing.T) {
	store := setupTestDB(t)
	defer store.Close()

	ctx := context.Background()
	require.NoError(t, store.Modify(ctx, types.NewProduct(500, "Kettle", price("12.00"), 4)))

	require.NoError(t, store.Add(ctx, 500, 6))

	got, err := store.Details(ctx, 500)
	require.NoError(t, err)
	assert.Equal(t, 10, got.Quantity)
}

func TestAdd_NegativeAmountAllowed(t *testing.T) {
	store := setupTestDB(t)
	defer store.Close()

	ctx := context.Background()
	require.NoError(t, store.Modify(ctx, types.NewProduct(500, "Kettle", price("12.00"), 4)))

	require.NoError(t, store.Add(ctx, 500, -3))

	got, err := store.Details(ctx, 500)
	require.NoError(t, err)
	assert.Equal(t, 1, got.Quantity)
}

func TestAdd_NegativeBelowZeroIsStorageFault(t *testing.T) {
	store := setupTestDB(t)
	defer store.Close()

	ctx := context.Background()
	require.NoError(t, store.Modify(ctx, types.NewProduct(500, "Kettle", price("12.00"), 4)))

	err := store.Add(ctx, 500, -10)
	assert.ErrorIs(t, err, ErrStorage)

	// Constraint rejection leaves the quantity untouched
	got, derr := store.Details(ctx, 500)
	require.NoError(t, derr)
	assert.Equal(t, 4, got.Quantity)
}

func TestAdd_UnknownProductIsNoOp(t *testing.T) {
	store := setupTestDB(t)
	defer store.Close()

	err := store.Add(context.Background(), 9999, 5)
	assert.NoError(t, err)
}

func TestSearch(t *testing.T) {
	store := setupTestDB(t)
	defer store.Close()

	ctx := context.Background()
	require.NoError(t, store.Modify(ctx, types.NewProduct(3, "DAB Radio", price("29.99"), 5)))
	require.NoError(t, store.Modify(ctx, types.NewProduct(1, "40 inch TV", price("269.00"), 2)))
	require.NoError(t, store.Modify(ctx, types.NewProduct(2, "Radio Alarm", price("14.99"), 8)))

	matches, err := store.Search(ctx, "Radio")
	require.NoError(t, err)
	require.Len(t, matches, 2)
	assert.Equal(t, 2, matches[0].Num) // ordered by product number
	assert.Equal(t, 3, matches[1].Num)

	none, err := store.Search(ctx, "Toaster")
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestApplyMigrations_Idempotent(t *testing.T) {
	store := setupTestDB(t)
	defer store.Close()

	// Second run must be a no-op, not an error
	err := ApplyMigrations(context.Background(), store.db)
	assert.NoError(t, err)
}

func TestRollbackMigration_DownThenUp(t *testing.T) {
	store := setupTestDB(t)
	defer store.Close()

	ctx := context.Background()
	require.NoError(t, store.Modify(ctx, types.NewProduct(200, "Widget", price("4.50"), 10)))

	require.NoError(t, RollbackMigration(ctx, store.db))

	// Schema is gone; a read is a storage fault, not a clean miss
	_, err := store.Details(ctx, 200)
	assert.ErrorIs(t, err, ErrStorage)

	// Re-applying restores a working, empty ledger
	require.NoError(t, ApplyMigrations(ctx, store.db))
	exists, err := store.Exists(ctx, 200)
	require.NoError(t, err)
	assert.False(t, exists)
}
