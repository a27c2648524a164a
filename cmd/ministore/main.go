package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/ministore/ministore/internal/checkout"
	"github.com/ministore/ministore/internal/orders"
	"github.com/ministore/ministore/internal/packing"
	"github.com/ministore/ministore/internal/stock"
	"github.com/ministore/ministore/internal/storage"
	"github.com/ministore/ministore/pkg/types"
)

var (
	version   = "dev"
	buildTime = "unknown"
)

// DefaultDBPath is used when MINISTORE_DB_PATH is unset.
const DefaultDBPath = "ministore.db"

func main() {
	// Handle version flag
	if len(os.Args) > 1 && os.Args[1] == "--version" {
		fmt.Printf("MiniStore\n")
		fmt.Printf("Version: %s\n", version)
		fmt.Printf("Build Time: %s\n", buildTime)
		fmt.Printf("Build Mode: %s\n", storage.BuildMode)
		fmt.Printf("SQLite Driver: %s\n", storage.DriverName)
		os.Exit(0)
	}

	log.SetOutput(os.Stderr)
	log.Printf("MiniStore v%s starting...", version)
	log.Printf("Build Mode: %s, Driver: %s", storage.BuildMode, storage.DriverName)

	dbPath := os.Getenv("MINISTORE_DB_PATH")
	if dbPath == "" {
		dbPath = DefaultDBPath
	}

	store, err := storage.NewSQLiteStore(dbPath)
	if err != nil {
		log.Fatalf("Failed to open stock ledger: %v", err)
	}
	defer func() { _ = store.Close() }()

	svc := stock.NewService(store)
	tracker := orders.NewTracker()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle shutdown signals
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		sig := <-sigChan
		log.Printf("Received signal %v, shutting down...", sig)
		cancel()
	}()

	if err := seed(ctx, svc); err != nil {
		log.Fatalf("Failed to seed stock: %v", err)
	}

	if err := runDay(ctx, svc, tracker); err != nil && !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded) {
		log.Fatalf("Simulation error: %v", err)
	}

	log.Println("Order state at close:")
	for state, nums := range tracker.OrderState() {
		log.Printf("  %-14s %v", state, nums)
	}
	log.Println("Store closed")
}

// seed stocks the shelves for the demo.
func seed(ctx context.Context, svc *stock.Service) error {
	catalogue := []types.Product{
		types.NewProduct(1, "40 inch LED HD TV", decimal.RequireFromString("269.00"), 90),
		types.NewProduct(2, "DAB Radio", decimal.RequireFromString("29.99"), 20),
		types.NewProduct(3, "Toaster", decimal.RequireFromString("19.99"), 33),
		types.NewProduct(4, "Watch", decimal.RequireFromString("29.99"), 10),
		types.NewProduct(5, "Digital Camera", decimal.RequireFromString("89.99"), 17),
		types.NewProduct(6, "MP3 player", decimal.RequireFromString("7.99"), 15),
		types.NewProduct(7, "32Gb USB2 drive", decimal.RequireFromString("6.99"), 1),
	}
	for _, p := range catalogue {
		if err := svc.Modify(ctx, p); err != nil {
			return err
		}
	}
	return nil
}

// runDay drives two registers, a restocker and a pair of packers
// concurrently until the context is cancelled or the registers finish.
func runDay(ctx context.Context, svc *stock.Service, tracker *orders.Tracker) error {
	dayCtx, endDay := context.WithTimeout(ctx, 5*time.Second)
	defer endDay()

	g, gctx := errgroup.WithContext(dayCtx)

	// Lifecycle feed to the console, in place of a view layer.
	g.Go(func() error {
		for {
			select {
			case <-gctx.Done():
				return gctx.Err()
			case e := <-tracker.Events():
				if e.Collected {
					log.Printf("order #%d collected", e.OrderNum)
				} else {
					log.Printf("order #%d -> %s", e.OrderNum, e.State)
				}
			}
		}
	})

	// Two cash registers
	for reg := 1; reg <= 2; reg++ {
		reg := reg
		g.Go(func() error {
			session := checkout.NewSession(svc, tracker)
			for _, num := range []int{1, 2, 2, 6} {
				if _, err := session.Check(gctx, num); err != nil {
					if errors.Is(err, checkout.ErrUnknownProduct) || errors.Is(err, checkout.ErrOutOfStock) {
						continue
					}
					return err
				}
				if err := session.Buy(gctx, 1); err != nil && !errors.Is(err, checkout.ErrNotInStock) {
					return err
				}
			}
			total := basketTotal(session)
			orderNum, err := session.Submit(gctx)
			if err != nil {
				return err
			}
			log.Printf("register %d submitted order #%d, total %s", reg, orderNum, total)
			return nil
		})
	}

	// Restocking workflow
	g.Go(func() error {
		return svc.Add(gctx, 7, 25)
	})

	// Packing pool; runs until the day ends.
	g.Go(func() error {
		return packing.RunPool(gctx, tracker, nil, 2)
	})

	// Customers collecting packed orders.
	g.Go(func() error {
		ticker := time.NewTicker(200 * time.Millisecond)
		defer ticker.Stop()
		for {
			select {
			case <-gctx.Done():
				return gctx.Err()
			case <-ticker.C:
				for _, num := range tracker.OrderState()["ToBeCollected"] {
					tracker.InformOrderCollected(num)
				}
			}
		}
	})

	err := g.Wait()
	if errors.Is(err, context.DeadlineExceeded) {
		return nil
	}
	return err
}

func basketTotal(session *checkout.Session) string {
	total := decimal.Zero
	for _, p := range session.Basket() {
		total = total.Add(p.SubTotal())
	}
	return total.StringFixed(2)
}
