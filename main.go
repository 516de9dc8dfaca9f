package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"theatre-concessions/cache"
	"theatre-concessions/config"
	"theatre-concessions/db"
	"theatre-concessions/notify"
	"theatre-concessions/services"
)

// The order engine itself is a library consumed by the API layer; this binary
// covers the operational side: schema migration and puzzle-pool seeding.
func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(1)
	}

	if err := db.Init(cfg.DB); err != nil {
		fmt.Fprintln(os.Stderr, "db:", err)
		os.Exit(1)
	}
	defer db.Close()

	// Optional auto-migration (useful in production and for fresh DBs).
	// Set AUTO_MIGRATE=1 (or "true") to enable.
	if v := strings.TrimSpace(os.Getenv("AUTO_MIGRATE")); v == "1" || strings.EqualFold(v, "true") {
		if err := applyMigrations(context.Background(), false); err != nil {
			fmt.Fprintln(os.Stderr, "migrate:", err)
			os.Exit(1)
		}
	}

	wire(cfg)

	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, "usage: theatre-concessions <migrate|seed-puzzles>")
		os.Exit(2)
	}
	switch os.Args[1] {
	case "migrate":
		if err := applyMigrations(context.Background(), true); err != nil {
			fmt.Fprintln(os.Stderr, "migrate:", err)
			os.Exit(1)
		}
	case "seed-puzzles":
		n, err := services.SeedPuzzles(context.Background(), cfg.Puzzles.File)
		if err != nil {
			fmt.Fprintln(os.Stderr, "seed puzzles:", err)
			os.Exit(1)
		}
		fmt.Println("Seeded", n, "puzzles.")
	default:
		fmt.Fprintln(os.Stderr, "unknown command:", os.Args[1])
		os.Exit(2)
	}
}

// wire installs the optional product cache and status notifier. The API layer
// embedding the services packages does the same at its startup.
func wire(cfg *config.Config) {
	if cfg.Redis.Addr != "" {
		rdb, err := cache.Connect(cfg.Redis)
		if err != nil {
			fmt.Fprintln(os.Stderr, "redis:", err)
			os.Exit(1)
		}
		services.SetProductCache(cache.NewProducts(rdb))
	}
	if cfg.Notify.Token != "" {
		n, err := notify.New(cfg.Notify.Token, cfg.Notify.ChatID)
		if err != nil {
			fmt.Fprintln(os.Stderr, "notify:", err)
			os.Exit(1)
		}
		services.SetStatusNotifier(n.DeliveryStatusChanged)
	}
}
