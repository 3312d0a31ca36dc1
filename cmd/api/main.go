package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/zhouzirui/user-lookup/backend/internal/config"
	"github.com/zhouzirui/user-lookup/backend/internal/graph"
	"github.com/zhouzirui/user-lookup/backend/internal/handler"
	"github.com/zhouzirui/user-lookup/backend/internal/logging"
	"github.com/zhouzirui/user-lookup/backend/internal/model/user"
	"github.com/zhouzirui/user-lookup/backend/internal/service/lookup"
	"github.com/zhouzirui/user-lookup/backend/internal/source"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Load .env file
	if err := godotenv.Load(); err != nil {
		logrus.WithError(err).Warn("failed to load .env file, continuing with system environment variables only")
	}

	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("failed to load configuration")
	}

	log, err := logging.New(os.Stderr, cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		logrus.WithError(err).Fatal("failed to configure logging")
	}
	logrus.SetOutput(log.Out)
	logrus.SetLevel(log.GetLevel())
	logrus.SetFormatter(log.Formatter)

	// The store must be fully loaded before anything is served.
	store, err := loadStore(ctx, cfg.Data)
	if err != nil {
		log.WithError(err).Fatal("failed to load user records")
	}
	log.WithFields(logrus.Fields{
		"records":  store.Len(),
		"revision": store.Revision(),
	}).Info("user records loaded")

	if cfg.GraphQL.Debug {
		log.Warn("GRAPHQL_DEBUG enabled: resolver stack traces are returned to clients")
	}

	exec, err := graph.NewExecutor(lookup.NewService(store), graph.Config{
		Debug:  cfg.GraphQL.Debug,
		Logger: log,
	})
	if err != nil {
		log.WithError(err).Fatal("failed to build graphql schema")
	}

	router := handler.NewRouter(store, exec, log)

	startServer(ctx, log, cfg.Server, router)
}

func loadStore(ctx context.Context, cfg config.DataConfig) (*user.MemoryStore, error) {
	if !cfg.UseSQL() {
		return user.LoadFile(cfg.File)
	}

	loadCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	db, err := source.Open(loadCtx, cfg.Driver, cfg.DSN)
	if err != nil {
		return nil, &user.LoadError{Source: cfg.Driver, Index: -1, Err: err}
	}
	defer db.Close()

	return source.LoadSQL(loadCtx, db, cfg.Table)
}

func startServer(ctx context.Context, log *logrus.Logger, serverCfg config.ServerConfig, router http.Handler) {
	addr := serverCfg.Addr
	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	log.WithField("addr", addr).Info("user lookup backend listening")
	if err := runServer(ctx, srv); err != nil {
		log.WithError(err).Fatal("server error")
	}
}

func runServer(ctx context.Context, srv *http.Server) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
		err := <-errCh
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
