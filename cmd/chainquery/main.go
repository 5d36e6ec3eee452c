package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jessevdk/go-flags"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"
	"go.uber.org/zap"

	"github.com/gyoonit/blocksci/internal/chaindb"
	"github.com/gyoonit/blocksci/internal/metrics"
	"github.com/gyoonit/blocksci/internal/transport"
)

var config struct {
	Addr          string `long:"addr" env:"CHAINQUERY_ADDR" description:"http listen address" default:":8000"`
	ConfigPath    string `long:"config" env:"CHAINQUERY_CONFIG" description:"path to a data configuration yaml file"`
	DataDir       string `long:"data-dir" env:"CHAINQUERY_DATA_DIR" description:"dataset directory (ignored when --config is set)"`
	Network       string `long:"network" env:"CHAINQUERY_NETWORK" description:"chain network" default:"mainnet"`
	BlocksIgnored int    `long:"blocks-ignored" env:"CHAINQUERY_BLOCKS_IGNORED" description:"blocks hidden from the tip"`
	ErrorOnReorg  bool   `long:"error-on-reorg" env:"CHAINQUERY_ERROR_ON_REORG" description:"fail when the dataset records a reorg"`
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger, err := zap.NewDevelopment()
	if err != nil {
		panic("can't initialize zap logger: " + err.Error())
	}
	defer func() {
		_ = logger.Sync()
	}()

	if _, err := flags.ParseArgs(&config, os.Args); err != nil {
		var ferr *flags.Error
		if errors.As(err, &ferr) && ferr.Type == flags.ErrHelp {
			return
		}
		logger.Fatal("failed to parse flags", zap.Error(err))
	}

	if err := run(ctx, logger); err != nil {
		logger.Fatal("chainquery failed", zap.Error(err))
	}
}

func run(ctx context.Context, logger *zap.Logger) error {
	cfg, err := loadDataConfiguration()
	if err != nil {
		return err
	}

	params, err := chaindb.ParamsForNetwork(config.Network)
	if err != nil {
		return err
	}

	chain, err := chaindb.Open(cfg, params, logger)
	if err != nil {
		return fmt.Errorf("open blockchain: %w", err)
	}
	defer func() {
		if err := chain.Close(); err != nil {
			logger.Error("failed to close blockchain", zap.Error(err))
		}
	}()

	mux := http.NewServeMux()
	handler := transport.NewQueryHandler(chain, logger, metrics.NewQueryAPI(config.Network))
	handler.Register(mux)
	mux.Handle("/metrics", promhttp.Handler())

	s := &http.Server{
		Addr:              config.Addr,
		Handler:           cors.Default().Handler(mux),
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
		MaxHeaderBytes:    http.DefaultMaxHeaderBytes,
	}
	go func() {
		<-ctx.Done()
		logger.Info("shutting down the http server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.Shutdown(shutdownCtx); err != nil {
			logger.Error("failed to shutdown http server", zap.Error(err))
		}
	}()

	logger.Info("starting http server", zap.String("addr", config.Addr))
	if err := s.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func loadDataConfiguration() (chaindb.DataConfiguration, error) {
	if config.ConfigPath != "" {
		data, err := os.ReadFile(config.ConfigPath)
		if err != nil {
			return chaindb.DataConfiguration{}, fmt.Errorf("read data configuration: %w", err)
		}
		return chaindb.DecodeDataConfiguration(data)
	}
	if config.DataDir == "" {
		return chaindb.DataConfiguration{}, errors.New("either --config or --data-dir is required")
	}
	return chaindb.DataConfiguration{
		DataDirectory: config.DataDir,
		ErrorOnReorg:  config.ErrorOnReorg,
		BlocksIgnored: config.BlocksIgnored,
	}, nil
}
