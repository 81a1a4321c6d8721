package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/vitos/trade_strategy_manager/internal/config"
	"github.com/vitos/trade_strategy_manager/internal/domain"
	"github.com/vitos/trade_strategy_manager/internal/infrastructure/logger"
	"github.com/vitos/trade_strategy_manager/internal/infrastructure/storage"
	"github.com/vitos/trade_strategy_manager/internal/usecase"
	"github.com/vitos/trade_strategy_manager/internal/web"
	"go.uber.org/zap"
)

func configPath() string {
	if p := os.Getenv("STRATEGY_CONFIG"); p != "" {
		return p
	}
	return "config/config.yaml"
}

func main() {
	// 1. Load Config
	cfg, err := config.Load(configPath())
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// 2. Init Logger
	var log *zap.Logger
	if cfg.Logging.File != "" {
		log, err = logger.NewFileLogger(cfg.Logging.File, cfg.Logging.Level)
	} else {
		log, err = logger.NewLogger(cfg.Logging.Level)
	}
	if err != nil {
		fmt.Printf("Failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	// 3. Init Storage
	store, err := storage.Open(cfg)
	if err != nil {
		log.Fatal("Failed to init storage", zap.String("backend", cfg.Storage.Backend), zap.Error(err))
	}
	defer store.Close()

	// 4. Init Repository
	hub := web.NewHub(log)
	undo := usecase.NewUndoBuffer(cfg.UndoWindow(), func(s domain.Strategy) {
		log.Info("Undo window expired", zap.String("id", s.ID))
		hub.Publish(web.Event{Type: web.EventUndoExpired, ID: s.ID, Name: s.Name})
	})
	defer undo.Stop()

	repo := usecase.NewStrategyRepository(store, undo, log)
	repo.Restore(context.Background())

	loc, err := cfg.Location()
	if err != nil {
		log.Warn("Unknown timezone, using local time", zap.String("timezone", cfg.View.Timezone), zap.Error(err))
		loc = time.Local
	}
	query := usecase.NewQueryEngine(repo, usecase.ViewOptions{
		DateLayout:     cfg.View.DateLayout,
		DateTimeLayout: cfg.View.DateTimeLayout,
		Location:       loc,
	})

	// 5. Init Web Server
	if err := web.InitTemplates(cfg.Server.TemplatesDir); err != nil {
		log.Fatal("Failed to initialize templates", zap.Error(err))
	}
	server := web.NewServer(cfg.Server.Port, repo, query, hub, log)

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	go func() {
		if err := server.Start(); err != nil {
			log.Fatal("Server failed", zap.Error(err))
		}
	}()

	// 6. Wait for Shutdown
	<-stop

	log.Info("Shutting down...")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.Error("Shutdown failed", zap.Error(err))
	}
}
