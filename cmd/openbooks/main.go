package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"openbooks.com/internal/app"
	"openbooks.com/internal/gateway"
	"openbooks.com/pkg/common"
	"openbooks.com/pkg/config"
	"openbooks.com/pkg/logger"
	"openbooks.com/pkg/metrics"
	"openbooks.com/pkg/safe"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "openbooks:", err)
		os.Exit(1)
	}
}

func run() error {
	var (
		cfgFile = flag.String("f", "", "config file, default config/openbooks.yaml")
		input   = flag.String("i", "", "instruction file, - for stdin")
		output  = flag.String("o", "", "match output file, - for stdout")
	)
	flag.Parse()

	// 收到 SIGINT/SIGTERM 时取消，引擎和读输入都挂在这个 ctx 上
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := loadConfig(*cfgFile)
	if err != nil {
		return err
	}
	defer logger.Sync()
	if *input != "" {
		cfg.Input = *input
	}
	if *output != "" {
		cfg.Output = *output
	}

	ctx = logger.WithTrace(ctx, common.NewRunID())
	logger.Info(ctx, "openbooks starting", zap.String("input", cfg.Input), zap.String("output", cfg.Output))

	metrics.MustRegister()
	if cfg.Metrics.Addr != "" {
		srv := serveMetrics(ctx, cfg.Metrics.Addr)
		defer func() {
			c, cancel := context.WithTimeout(context.Background(), 3*time.Second)
			defer cancel()
			_ = srv.Shutdown(c)
		}()
	}

	var broker gateway.Broker
	if cfg.Nats.URL != "" {
		nb, err := gateway.NewNatsBroker(cfg.Nats.URL, nats.Name(cfg.Name))
		if err != nil {
			return fmt.Errorf("connect nats: %w", err)
		}
		defer func() { _ = nb.Close() }()
		broker = nb
	}

	in, closeIn, err := openInput(cfg.Input)
	if err != nil {
		return err
	}
	defer closeIn()
	out, closeOut, err := openOutput(cfg.Output)
	if err != nil {
		return err
	}
	defer closeOut()

	rep, err := app.NewRunner(cfg, broker, logger.Named("engine")).Run(ctx, in, out)
	logger.Info(ctx, "openbooks finished",
		zap.Int("instructions", rep.Instructions),
		zap.Int("skipped", rep.Skipped),
		zap.Int("rejected", rep.Rejected),
		zap.Int("matches", rep.Matches),
		zap.Int("bids", rep.Snapshot.Bids),
		zap.Int("asks", rep.Snapshot.Asks),
		zap.Int("stops", rep.Snapshot.StopBuys+rep.Snapshot.StopSells),
	)
	if errors.Is(err, context.Canceled) {
		logger.Warn(ctx, "interrupted")
		return nil
	}
	return err
}

// loadConfig 先用默认值起日志，读配置时的日志才不会丢；读完按配置重建
func loadConfig(file string) (*app.Cfg, error) {
	def := app.Defaults()
	logger.InitWithFile(def["name"].(string), def["log.level"].(string), "")

	cfg := &app.Cfg{}
	_, err := config.Load(config.Options{
		Service:  "openbooks",
		File:     file,
		Defaults: def,
		Watch:    true,
		// 热更新只动日志级别
		OnChange: func(v *viper.Viper) { logger.SetLevel(v.GetString("log.level")) },
	}, cfg)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	logger.InitWithFile(cfg.Name, cfg.Log.Level, cfg.Log.File)
	return cfg, nil
}

func serveMetrics(ctx context.Context, addr string) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 3 * time.Second}
	safe.GoCtx(ctx, func(ctx context.Context) {
		logger.Info(ctx, "metrics listening", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error(ctx, "metrics server error", zap.Error(err))
		}
	})
	return srv
}

func openInput(path string) (io.Reader, func(), error) {
	if path == "" || path == "-" {
		return os.Stdin, func() {}, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("open input: %w", err)
	}
	return f, func() { _ = f.Close() }, nil
}

func openOutput(path string) (io.Writer, func(), error) {
	if path == "" || path == "-" {
		return os.Stdout, func() {}, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, nil, fmt.Errorf("create output: %w", err)
	}
	return f, func() { _ = f.Close() }, nil
}
