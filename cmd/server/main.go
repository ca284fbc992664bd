// Command stockkeeper-server serves the inventory over gRPC and item images over HTTP.
package main

import (
	"context"
	"errors"
	"flag"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials"

	"github.com/and161185/stockkeeper/internal/blob/gridfs"
	"github.com/and161185/stockkeeper/internal/config"
	"github.com/and161185/stockkeeper/internal/limiter"
	"github.com/and161185/stockkeeper/internal/live"
	"github.com/and161185/stockkeeper/internal/logger"
	"github.com/and161185/stockkeeper/internal/migrate"
	"github.com/and161185/stockkeeper/internal/repository/postgres"
	"github.com/and161185/stockkeeper/internal/scheduler"
	grpcserver "github.com/and161185/stockkeeper/internal/server/grpc"
	httpserver "github.com/and161185/stockkeeper/internal/server/http"
	"github.com/and161185/stockkeeper/internal/service"
)

var (
	version   = "dev"
	buildDate = "unknown"
)

const shutdownTimeout = 5 * time.Second

func main() {
	envFile := flag.String("env", ".env", "optional .env file")
	dev := flag.Bool("dev", false, "enable server reflection (dev only)")
	flag.Parse()

	cfg, err := config.Load(*envFile)
	if err != nil {
		logger.NewConsole(false).Fatal("failed to load config", zap.Error(err))
	}
	if *dev {
		cfg.Dev = true
	}

	log := logger.Must(logger.New(cfg.LogLevel))
	defer func() { _ = log.Sync() }()
	log.Info("starting",
		zap.String("version", version),
		zap.String("buildDate", buildDate),
		zap.String("namespace", cfg.Inventory.Namespace),
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	ver, err := migrate.Up(ctx, cfg.Postgres.DSN)
	if err != nil {
		log.Fatal("migrate up", zap.Error(err))
	}
	log.Info("schema ready", zap.Int64("version", ver))

	db, pool, err := postgres.New(ctx, cfg.Postgres.DSN)
	if err != nil {
		log.Fatal("connect postgres", zap.Error(err))
	}
	defer db.Close()

	blobs, err := gridfs.Connect(ctx, cfg.MongoDB.URI, cfg.MongoDB.DBName, logger.Named(log, "blob"))
	if err != nil {
		log.Fatal("connect mongodb", zap.Error(err))
	}
	defer func() {
		cctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		_ = blobs.Close(cctx)
	}()

	// Live updates
	hub := live.NewHub()
	listener := postgres.NewListener(pool, logger.Named(log, "listener"))
	go func() { _ = listener.Run(ctx, hub) }()

	// Repositories
	ns := cfg.Inventory.Namespace
	userRepo := postgres.NewUserRepo(db)
	itemRepo := postgres.NewItemRepo(db, ns)
	settingsRepo := postgres.NewSettingsRepo(db, ns)

	lim := limiter.NewPG(pool, limiter.Policy{
		Window:   cfg.Auth.LoginWindow,
		MaxFails: cfg.Auth.LoginMaxFails,
		BlockFor: cfg.Auth.LoginBlockFor,
	})

	// Services
	authSvc := service.NewAuthService(userRepo, []byte(cfg.Auth.JWTKey), cfg.Auth.AccessTTL, lim)
	itemSvc := service.NewItemService(service.ItemDeps{
		Repo:      itemRepo,
		Blobs:     blobs,
		Hub:       hub,
		Namespace: ns,
		PublicURL: cfg.Inventory.BlobPublicURL,
		Log:       logger.Named(log, "svc.items"),
	})
	settingsSvc := service.NewSettingsService(settingsRepo, hub, ns, logger.Named(log, "svc.settings"))

	if err := settingsSvc.EnsureDefaults(ctx); err != nil {
		log.Warn("settings defaults not written", zap.Error(err))
	}

	// gRPC
	var opts []grpc.ServerOption
	if cfg.Server.TLSEnabled() {
		creds, err := credentials.NewServerTLSFromFile(cfg.Server.TLSCert, cfg.Server.TLSKey)
		if err != nil {
			log.Fatal("failed to load TLS cert/key", zap.Error(err))
		}
		opts = append(opts, grpc.Creds(creds))
	} else {
		log.Warn("TLS disabled, serving plaintext gRPC")
	}
	app := grpcserver.New(authSvc, itemSvc, settingsSvc, logger.Named(log, "grpc"))
	gs, hs := grpcserver.NewGRPCServer(app, []byte(cfg.Auth.JWTKey), logger.Named(log, "grpc"), cfg.Dev, opts...)

	lis, err := net.Listen("tcp", cfg.Server.GRPCAddr)
	if err != nil {
		log.Fatal("listen", zap.Error(err))
	}

	// HTTP
	hsrv := &http.Server{
		Addr:              cfg.Server.HTTPAddr,
		Handler:           httpserver.New(blobs, logger.Named(log, "http")),
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Reporting
	sched := scheduler.NewScheduler(itemSvc, settingsSvc, ns, logger.Named(log, "scheduler"))
	if err := sched.Start(cfg.Reporting.CronSchedule); err != nil {
		log.Fatal("failed to start scheduler", zap.Error(err))
	}

	errCh := make(chan error, 2)
	go func() {
		log.Info("grpc listening", zap.String("addr", cfg.Server.GRPCAddr), zap.Bool("tls", cfg.Server.TLSEnabled()))
		errCh <- gs.Serve(lis)
	}()
	go func() {
		log.Info("http listening", zap.String("addr", cfg.Server.HTTPAddr))
		if err := hsrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	exitCode := 0
	select {
	case <-ctx.Done():
	case err := <-errCh:
		log.Error("server error", zap.Error(err))
		exitCode = 1
	}

	hs.Shutdown()
	sched.Stop()

	sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := hsrv.Shutdown(sctx); err != nil {
		log.Warn("http shutdown", zap.Error(err))
	}

	done := make(chan struct{})
	go func() {
		gs.GracefulStop()
		close(done)
	}()
	select {
	case <-done:
	case <-sctx.Done():
		gs.Stop()
	}

	log.Info("shutdown complete")
	if exitCode != 0 {
		stop()
		os.Exit(exitCode)
	}
}
