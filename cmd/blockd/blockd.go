package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/foomo/blocks"
	"github.com/foomo/blocks/config"
	"github.com/foomo/blocks/library"
	"github.com/foomo/blocks/media"
	"github.com/foomo/blocks/paste"
	"github.com/foomo/blocks/posts"
	"github.com/foomo/blocks/server"
	"github.com/glebarez/sqlite"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func must(comment string, err error) {
	if err != nil {
		fmt.Println(comment, err)
		os.Exit(1)
	}
}

func openDB(conf config.Database) (*gorm.DB, error) {
	switch conf.Driver {
	case "postgres":
		return gorm.Open(postgres.Open(conf.DSN), &gorm.Config{})
	default:
		return gorm.Open(sqlite.Open(conf.DSN), &gorm.Config{})
	}
}

func openStorage(ctx context.Context, conf config.Media) (media.Storage, error) {
	switch conf.Driver {
	case "minio":
		return media.NewMinioStorage(ctx, conf.Endpoint, conf.AccessKey, conf.SecretKey, conf.UseSSL, conf.Bucket, conf.BaseURL)
	default:
		return media.NewLocalStorage(conf.Dir, conf.BaseURL)
	}
}

func main() {
	flag.Parse()
	if len(flag.Args()) != 1 {
		fmt.Println("usage:", os.Args[0], "path/to/config.yaml")
		os.Exit(1)
	}
	conf, errConf := config.Get(flag.Arg(0))
	must("config error:", errConf)
	level, _ := conf.Level()
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, errDB := openDB(conf.Database)
	must("could not open database:", errDB)
	storage, errStorage := openStorage(ctx, conf.Media)
	must("could not set up media storage:", errStorage)
	mediaLibrary, errLibrary := media.NewLibrary(db, storage, logger)
	must("could not set up media library:", errLibrary)
	postStore, errStore := posts.NewStore(db)
	must("could not set up post store:", errStore)

	registry := blocks.NewRegistry()
	must("could not register core blocks:", library.RegisterCore(registry, library.Deps{
		Ingester: mediaLibrary,
		Posts:    postStore,
	}))
	for _, bt := range registry.Types() {
		logger.Info("registered block type", "name", bt.Name, "dynamic", bt.Dynamic())
	}

	metricsRegistry := prometheus.NewRegistry()
	metricsRegistry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	service := blocks.NewService(
		registry,
		paste.NewNormalizer(conf.Paste.Options()),
		blocks.NewMetrics(metricsRegistry),
		logger,
	)

	s, errServer := server.New(service, server.Options{
		Metrics:     metricsRegistry,
		Attachments: mediaLibrary,
		Logger:      logger,
	})
	must("could not set up server:", errServer)
	if conf.Media.Driver == "local" {
		s.Echo.Static(conf.Media.BaseURL, conf.Media.Dir)
	}

	go func() {
		logger.Info("serving metrics", "addr", conf.MetricsAddr)
		if err := s.MetricsEcho.Start(conf.MetricsAddr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server failed", "err", err)
		}
	}()
	go func() {
		logger.Info("serving api", "addr", conf.Addr)
		if err := s.Echo.Start(conf.Addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server failed", "err", err)
			stop()
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := s.Echo.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown failed", "err", err)
	}
	if err := s.MetricsEcho.Shutdown(shutdownCtx); err != nil {
		logger.Error("metrics shutdown failed", "err", err)
	}
}
