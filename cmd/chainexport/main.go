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
	"go.uber.org/zap"

	"github.com/gyoonit/blocksci/internal/chaindb"
	"github.com/gyoonit/blocksci/internal/chaindb/model"
	"github.com/gyoonit/blocksci/internal/export/clickhouse"
	"github.com/gyoonit/blocksci/internal/metrics"
	"github.com/gyoonit/blocksci/pkg/batcher"
	"github.com/gyoonit/blocksci/pkg/safe"
	"github.com/gyoonit/blocksci/pkg/workerpool"
)

var config struct {
	ClickhouseDSN string        `long:"clickhouse-dsn" env:"CHAINEXPORT_CLICKHOUSE_DSN" description:"ClickHouse DSN" required:"true"`
	ConfigPath    string        `long:"config" env:"CHAINEXPORT_CONFIG" description:"path to a data configuration yaml file"`
	DataDir       string        `long:"data-dir" env:"CHAINEXPORT_DATA_DIR" description:"dataset directory (ignored when --config is set)"`
	Network       string        `long:"network" env:"CHAINEXPORT_NETWORK" description:"chain network" default:"mainnet"`
	BlocksIgnored int           `long:"blocks-ignored" env:"CHAINEXPORT_BLOCKS_IGNORED" description:"blocks hidden from the tip"`
	ErrorOnReorg  bool          `long:"error-on-reorg" env:"CHAINEXPORT_ERROR_ON_REORG" description:"fail when the dataset records a reorg"`
	Workers       int           `long:"workers" env:"CHAINEXPORT_WORKERS" description:"parallel segment workers" default:"4"`
	FlushSize     int           `long:"flush-size" env:"CHAINEXPORT_FLUSH_SIZE" description:"rows per insert batch" default:"10000"`
	FlushInterval time.Duration `long:"flush-interval" env:"CHAINEXPORT_FLUSH_INTERVAL" description:"max time a partial batch waits" default:"1s"`
	RatePerSec    int           `long:"rate-per-sec" env:"CHAINEXPORT_RATE_PER_SEC" description:"insert batches per second" default:"10"`
	MetricsAddr   string        `long:"metrics-addr" env:"CHAINEXPORT_METRICS_ADDR" description:"address for metrics server" default:":2112"`
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
		logger.Fatal("chainexport failed", zap.Error(err))
	}
}

func run(ctx context.Context, logger *zap.Logger) error {
	startMetricsServer(ctx, config.MetricsAddr, logger)

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

	repo, err := clickhouse.NewRepository(config.ClickhouseDSN, metrics.NewExportRepository(config.Network))
	if err != nil {
		return fmt.Errorf("init repository: %w", err)
	}
	defer func() {
		if err := repo.Close(); err != nil {
			logger.Error("failed to close repository", zap.Error(err))
		}
	}()

	if err := exportUnspentOutputs(ctx, chain, repo, logger); err != nil {
		return err
	}
	if err := exportAddressSummaries(ctx, chain, repo); err != nil {
		return err
	}

	count, err := repo.UnspentOutputCount(ctx, config.Network)
	if err != nil {
		return fmt.Errorf("count exported outputs: %w", err)
	}
	logger.Info("export finished", zap.Uint64("unspent_outputs", count))
	return nil
}

// exportUnspentOutputs walks disjoint chain segments in parallel and funnels
// every unspent output through a shared rate-limited batch writer.
func exportUnspentOutputs(ctx context.Context, chain *chaindb.Blockchain, repo *clickhouse.Repository, logger *zap.Logger) error {
	segments, err := chain.Segment(config.Workers)
	if err != nil {
		return err
	}

	b := batcher.New(logger, batcher.Config{
		FlushSize:     config.FlushSize,
		FlushInterval: config.FlushInterval,
		RatePerSecond: config.RatePerSec,
	}, repo.InsertUnspentOutputs)
	b.Start(ctx)

	walkErr := workerpool.Each(ctx, config.Workers, segments, func(ctx context.Context, seg chaindb.Segment) error {
		return exportSegment(ctx, chain, seg, b)
	})

	if err := b.Stop(); err != nil {
		if walkErr != nil {
			return fmt.Errorf("%v: %w", err, walkErr)
		}
		return err
	}
	return walkErr
}

func exportSegment(ctx context.Context, chain *chaindb.Blockchain, seg chaindb.Segment, b *batcher.Batcher[clickhouse.UnspentOutputRow]) error {
	for blk := range seg.Blocks() {
		for tx, err := range chain.BlockTransactions(blk) {
			if err != nil {
				return err
			}
			height, err := safe.Uint32(tx.Height)
			if err != nil {
				return err
			}
			for i, out := range tx.Outputs {
				if out.Spent() {
					continue
				}
				index, err := safe.Uint32(i)
				if err != nil {
					return err
				}
				row := clickhouse.UnspentOutputRow{
					Network:     config.Network,
					TxIndex:     tx.Index,
					TxHash:      tx.Hash.String(),
					Height:      height,
					OutputIndex: index,
					Value:       out.Value,
					AddressType: out.Address.Type.String(),
					AddressNum:  out.Address.Num,
				}
				if err := b.Add(ctx, row); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

func exportAddressSummaries(ctx context.Context, chain *chaindb.Blockchain, repo *clickhouse.Repository) error {
	exportedAt := time.Now().UTC()
	rows := make([]clickhouse.AddressSummaryRow, 0, len(model.AddressTypes()))
	for _, t := range model.AddressTypes() {
		count, err := chain.AddressCount(t)
		if err != nil {
			return fmt.Errorf("count %s addresses: %w", t, err)
		}
		rows = append(rows, clickhouse.AddressSummaryRow{
			Network:      config.Network,
			AddressType:  t.String(),
			AddressCount: count,
			ExportedAt:   exportedAt,
		})
	}
	return repo.InsertAddressSummaries(ctx, rows)
}

func startMetricsServer(ctx context.Context, addr string, logger *zap.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		logger.Info("starting metrics server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server failed", zap.Error(err))
		}
	}()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("failed to shutdown metrics server", zap.Error(err))
		}
	}()
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
