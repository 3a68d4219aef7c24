// Command migrate resets and seeds a development database using the bun
// models directly. Production schema changes go through the SQL files in
// migrations/ instead.
package main

import (
	"context"
	"database/sql"
	"log"

	_ "github.com/lib/pq"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"

	"park-portal/internal/config"
	"park-portal/internal/models"
)

func main() {
	ctx := context.Background()
	cfg := config.Load()

	sqldb, err := sql.Open("postgres", cfg.Database.DSN)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer sqldb.Close()

	if err := sqldb.PingContext(ctx); err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	db := bun.NewDB(sqldb, pgdialect.New())

	log.Println("Dropping tables...")
	dropTables(ctx, db)

	log.Println("Creating tables...")
	createTables(ctx, db)

	log.Println("Seeding ride catalog...")
	seedRides(ctx, db)

	log.Println("Done.")
}

func dropTables(ctx context.Context, db *bun.DB) {
	tables := []interface{}{(*models.Ticket)(nil), (*models.Ride)(nil)}
	for _, m := range tables {
		_, _ = db.NewDropTable().Model(m).IfExists().Cascade().Exec(ctx)
	}
}

func createTables(ctx context.Context, db *bun.DB) {
	tables := []interface{}{(*models.Ride)(nil), (*models.Ticket)(nil)}
	for _, m := range tables {
		if _, err := db.NewCreateTable().Model(m).IfNotExists().Exec(ctx); err != nil {
			log.Fatalf("Failed to create table for %T: %v", m, err)
		}
	}
	if _, err := db.ExecContext(ctx, "CREATE UNIQUE INDEX IF NOT EXISTS idx_tickets_one_draft ON tickets (owner_id) WHERE NOT bought"); err != nil {
		log.Fatalf("Failed to create draft index: %v", err)
	}
}

func seedRides(ctx context.Context, db *bun.DB) {
	rides := []models.Ride{
		{ID: "0b6f3bb2-5c3d-4a4e-9d0a-6e1f2d3c4b5a", Name: "Dragon Coaster", Description: "Inverted coaster with four loops", MinHeightCM: 140, ThrillLevel: 5, FastTrackPrice: 12.50},
		{ID: "1c7e4cc3-6d4e-5b5f-ae1b-7f2a3e4d5c6b", Name: "Log Flume", Description: "Splashdown finale, expect to get wet", MinHeightCM: 110, ThrillLevel: 3, FastTrackPrice: 7.00},
		{ID: "2d8f5dd4-7e5f-6c6a-bf2c-8a3b4f5e6d7c", Name: "Haunted Manor", Description: "Slow dark ride through the old estate", ThrillLevel: 2, FastTrackPrice: 5.00},
		{ID: "3e9a6ee5-8f6a-7d7b-ca3d-9b4c5a6f7e8d", Name: "Sky Drop", Description: "80 metre free-fall tower", MinHeightCM: 130, ThrillLevel: 5, FastTrackPrice: 10.00},
		{ID: "4fab7ff6-9a7b-8e8c-db4e-ac5d6b7a8f9e", Name: "Carousel Royale", Description: "Classic double-decker carousel", ThrillLevel: 1, FastTrackPrice: 3.50},
	}
	if _, err := db.NewInsert().Model(&rides).Exec(ctx); err != nil {
		log.Fatalf("Failed to seed rides: %v", err)
	}
}
