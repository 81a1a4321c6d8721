package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/vitos/trade_strategy_manager/internal/config"
	"github.com/vitos/trade_strategy_manager/internal/domain"
	"github.com/vitos/trade_strategy_manager/internal/infrastructure/storage"
	"github.com/vitos/trade_strategy_manager/internal/usecase"
	"go.uber.org/zap"
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

	ctx := context.Background()
	undo := usecase.NewUndoBuffer(cfg.UndoWindow(), nil)
	defer undo.Stop()
	repo := usecase.NewStrategyRepository(store, undo, zap.NewNop())
	fmt.Printf("Loaded %d existing strategies\n", repo.Restore(ctx))

	s, err := repo.Create(ctx, domain.Fields{
		Name:        "EMA Trend Pullback",
		Description: "Buy pullbacks to the 20 EMA while the 50 EMA slopes up.",
		Tags:        []string{"trend", "pullback"},
		Timeframes:  []string{"1h", "4h"},
		Indicators:  []string{"EMA 20", "EMA 50", "RSI 14"},
		EntryRules: []string{
			"EMA 50 rising for the last 10 candles",
			"Price touches EMA 20",
			"RSI 14 above 40",
		},
		ExitRules: []string{
			"Close below EMA 50",
			"RSI 14 above 75",
		},
		StopLossRule:     "1.5 ATR below entry",
		TakeProfitRule:   "2R",
		PositionSizeRule: "1% account risk",
		Management: domain.Management{
			TrailingStop: domain.TrailingStop{Enabled: true, Multiplier: "2"},
			ScaleOut:     domain.ScaleOut{Enabled: true, PercentFirst: "50"},
		},
	})
	var storeErr *domain.StoreError
	switch {
	case errors.As(err, &storeErr):
		fmt.Printf("❌ Created %s but failed to save: %v\n", s.ID, err)
		os.Exit(1)
	case err != nil:
		fmt.Printf("❌ Failed to create sample strategy: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("✅ Added %q (id %s)\n", s.Name, s.ID)
}
