// Package main provides a CLI tool for seeding the database with demo data:
// a small catalog, a few sites, and opening stock recorded through the
// movement engine so levels and journal stay consistent.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/shopspring/decimal"

	"stockgrid/internal/core/id"
	"stockgrid/internal/domain/ledger"
	"stockgrid/internal/infrastructure/storage/postgres"
	"stockgrid/pkg/config"
	"stockgrid/pkg/logger"
)

const seedActor = "seed"

type demoItem struct {
	code         string
	name         string
	reorderPoint int64
	opening      int64
	unitCost     string
}

var demoItems = []demoItem{
	{"SKU-0001", "Hex bolt M8x40", 500, 2400, "0.12"},
	{"SKU-0002", "Hex nut M8", 500, 3100, "0.05"},
	{"SKU-0003", "Angle bracket 90mm", 100, 640, "1.85"},
	{"SKU-0004", "Wood screw 4x50", 1000, 8800, "0.03"},
	{"SKU-0005", "Cable tie 200mm", 200, 0, "0.02"},
	{"SKU-0006", "Bearing 6204-2RS", 20, 48, "4.60"},
}

var demoSites = [][2]string{
	{"WH-MAIN", "Main warehouse"},
	{"WH-NORTH", "North distribution center"},
	{"SHOP-01", "Workshop floor"},
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(logger.Config{
		Level:       "info",
		Development: true,
	})
	if err != nil {
		fmt.Printf("failed to create logger: %v\n", err)
		os.Exit(1)
	}

	ctx := context.Background()

	pool, err := postgres.NewPool(ctx, postgres.DefaultPoolConfig(cfg.DB.ConnectionString()))
	if err != nil {
		log.Fatalw("failed to connect to database", "error", err)
	}
	defer pool.Close()

	log.Info("connected to database")

	txm := postgres.NewTxManager(pool)

	var count int
	if err := pool.Pool.QueryRow(ctx, `SELECT count(*) FROM items`).Scan(&count); err != nil {
		log.Fatalw("failed to inspect items table (did migrations run?)", "error", err)
	}
	if count > 0 {
		log.Infow("catalog already populated, nothing to do", "items", count)
		return
	}

	siteIDs, err := seedSites(ctx, txm)
	if err != nil {
		log.Fatalw("failed to seed sites", "error", err)
	}
	log.Infow("seeded sites", "count", len(siteIDs))

	itemIDs, err := seedItems(ctx, txm)
	if err != nil {
		log.Fatalw("failed to seed items", "error", err)
	}
	log.Infow("seeded items", "count", len(itemIDs))

	itemRepo := postgres.NewItemRepo(txm)
	siteRepo := postgres.NewSiteRepo(txm)
	stockRepo := postgres.NewStockRepo(txm)
	journalRepo := postgres.NewJournalRepo(txm)
	engine := ledger.NewEngine(itemRepo, siteRepo, stockRepo, journalRepo, txm, nil)

	mainSite := siteIDs["WH-MAIN"]
	recorded := 0
	for _, d := range demoItems {
		if d.opening == 0 {
			continue
		}
		req, err := ledger.NewReceipt(itemIDs[d.code], mainSite, d.opening, seedActor)
		if err != nil {
			log.Fatalw("failed to build opening receipt", "code", d.code, "error", err)
		}
		cost, err := decimal.NewFromString(d.unitCost)
		if err != nil {
			log.Fatalw("bad demo unit cost", "code", d.code, "error", err)
		}
		req = req.WithReason("opening balance").WithUnitCost(cost)

		if _, err := engine.Record(ctx, req); err != nil {
			log.Fatalw("failed to record opening receipt", "code", d.code, "error", err)
		}
		recorded++
	}
	log.Infow("recorded opening receipts", "count", recorded)

	log.Info("seeding completed successfully")
}

// seedSites bulk-loads the demo sites and returns their IDs by code.
func seedSites(ctx context.Context, txm *postgres.TxManager) (map[string]id.ID, error) {
	inserter := postgres.NewBatchInserter(txm)
	ids := make(map[string]id.ID, len(demoSites))

	err := txm.RunInTransaction(ctx, func(txCtx context.Context) error {
		now := time.Now().UTC()
		rows := make([][]any, 0, len(demoSites))
		for _, s := range demoSites {
			siteID := id.New()
			ids[s[0]] = siteID
			rows = append(rows, []any{siteID, s[0], s[1], true, now, now})
		}
		_, err := inserter.CopyFromSlice(txCtx, "sites",
			[]string{"id", "code", "name", "active", "created_at", "updated_at"},
			rows,
		)
		return err
	})
	if err != nil {
		return nil, err
	}
	return ids, nil
}

// seedItems bulk-loads the demo catalog and returns item IDs by code.
func seedItems(ctx context.Context, txm *postgres.TxManager) (map[string]id.ID, error) {
	inserter := postgres.NewBatchInserter(txm)
	ids := make(map[string]id.ID, len(demoItems))

	err := txm.RunInTransaction(ctx, func(txCtx context.Context) error {
		now := time.Now().UTC()
		rows := make([][]any, 0, len(demoItems))
		for _, d := range demoItems {
			itemID := id.New()
			ids[d.code] = itemID
			rows = append(rows, []any{itemID, d.code, d.name, d.reorderPoint, false, now, now})
		}
		_, err := inserter.CopyFromSlice(txCtx, "items",
			[]string{"id", "code", "name", "reorder_point", "archived", "created_at", "updated_at"},
			rows,
		)
		return err
	})
	if err != nil {
		return nil, err
	}
	return ids, nil
}
