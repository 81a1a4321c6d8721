package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/vitos/trade_strategy_manager/internal/config"
	"github.com/vitos/trade_strategy_manager/internal/domain"
	"github.com/vitos/trade_strategy_manager/internal/infrastructure/storage"
)

func main() {
	cfg, err := config.Load("config/config.yaml")
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	store, err := storage.Open(cfg)
	if err != nil {
		fmt.Printf("Failed to open store: %v\n", err)
		os.Exit(1)
	}
	defer store.Close()

	data, err := store.Load(context.Background())
	if err != nil {
		fmt.Printf("Failed to load blob: %v\n", err)
		os.Exit(1)
	}
	if data == nil {
		fmt.Printf("Nothing stored under %q\n", cfg.Storage.Key)
		return
	}

	fmt.Printf("Blob under %q: %d bytes\n", cfg.Storage.Key, len(data))

	var strategies []domain.Strategy
	if err := json.Unmarshal(data, &strategies); err != nil {
		fmt.Printf("  ❌ Malformed blob, the app will start empty: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Found %d strategies:\n", len(strategies))
	for i, s := range strategies {
		fmt.Printf("%d. %s (id %s, v%d, updated %s)\n", i, s.Name, s.ID, s.Meta.Version, s.Meta.UpdatedAt.Format("2006-01-02 15:04:05"))
		if err := domain.Validate(s.Fields()); err != nil {
			fmt.Printf("  ⚠️ Invalid record: %v\n", err)
		}
	}
}
