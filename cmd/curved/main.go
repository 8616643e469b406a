// =============================
// File: cmd/curved/main.go
// =============================
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/opencurve/curved/internal/amm"
	"github.com/opencurve/curved/internal/bank"
	"github.com/opencurve/curved/internal/config"
	"github.com/opencurve/curved/internal/export"
	"github.com/opencurve/curved/internal/logger"
	"github.com/opencurve/curved/internal/market"
	"github.com/opencurve/curved/internal/metrics"
	"github.com/opencurve/curved/internal/server"
	"github.com/opencurve/curved/internal/token"
	"github.com/opencurve/curved/internal/types"
)

func main() {
	configPath := flag.String("config", "configs/curved.yaml", "path to the configuration file")
	flag.Parse()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		// Logger is not up yet.
		zap.NewExample().Fatal("failed to load config", zap.Error(err))
	}

	log, err := logger.New(&logger.Config{
		LogFile:     cfg.LogFile,
		MaxSize:     100,
		MaxAge:      7,
		MaxBackups:  3,
		Compress:    true,
		Development: cfg.DebugLogging,
	})
	if err != nil {
		zap.NewExample().Fatal("failed to build logger", zap.Error(err))
	}
	defer log.Sync()

	log.Info("Starting curved",
		zap.String("config", *configPath),
		zap.String("listen_addr", cfg.ListenAddr))

	if err := run(log, cfg); err != nil {
		log.Error("curved exited with error", zap.Error(err))
		os.Exit(1)
	}
	log.Info("curved stopped")
}

func run(log *logger.Logger, cfg *config.Config) error {
	params, err := cfg.MarketParams()
	if err != nil {
		return err
	}

	// The market holds the entire issued supply at genesis and acts as the
	// token ledger's operator so sells can pull sold-back tokens.
	tok := token.NewMemoryLedger(params.MarketAddress, params.MarketAddress, params.TokenSupply)
	bnk := bank.NewMemoryBank()

	ammLog := log.WithComponent("amm")
	fact := amm.NewFactory(ammLog.Logger)
	router := amm.NewRouter(ammLog.Logger, types.Address(cfg.Market.RouterAddress), params.NativeWrapper, fact, tok, bnk)

	var collector *metrics.Collector
	if cfg.MetricsEnabled {
		collector = metrics.NewCollector()
	}

	deps := market.Deps{Token: tok, Bank: bnk, Router: router, Factory: fact}
	if collector != nil {
		deps.Sink = collector
	}
	mkt, err := market.New(log.WithComponent("market").Logger, params, deps)
	if err != nil {
		return err
	}

	srv := server.New(log, server.Config{
		ListenAddr: cfg.ListenAddr,
		AdminKey:   cfg.AdminKey,
		DevFaucet:  cfg.DevFaucet,
		ExportDir:  cfg.ExportDir,
	}, server.Deps{
		Market:   mkt,
		Token:    tok,
		Bank:     bnk,
		Faucet:   bnk,
		Exporter: export.NewTradeExporter(log.WithComponent("export").Logger),
		Metrics:  collector,
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return srv.Run(ctx) })
	return g.Wait()
}
