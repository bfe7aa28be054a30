package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"log/slog"

	"github.com/notiapp/notiapp/internal/logging"
	"github.com/notiapp/notiapp/internal/metrics"
	"github.com/notiapp/notiapp/internal/server/config"
	"github.com/notiapp/notiapp/internal/server/storage"
	"github.com/notiapp/notiapp/internal/server/webpush"
)

type App struct {
	config *config.Config
	logger logging.Logger
	store  storage.Storage
	router http.Handler
}

func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	logger := logging.NewSlogLogger(slog.New(slog.NewJSONHandler(os.Stdout, nil)))

	store, err := storage.New(ctx, c)
	if err != nil {
		return nil, fmt.Errorf("storage init error: %w", err)
	}

	metrics.Register(nil)

	sender := webpush.NewSender(c.VAPIDPublicKey, c.VAPIDPrivateKey, c.VAPIDSubject)
	router := NewRouter(Deps{
		Store:     store,
		Sender:    sender,
		Logger:    logger,
		StaticDir: c.StaticDir,
	})

	return &App{config: c, logger: logger, store: store, router: router}, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) Run(ctx context.Context) {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.initSignalHandler(cancelFunc)

	srv := &http.Server{
		Addr:    app.config.EndpointAddr,
		Handler: app.router,
	}

	go func() {
		app.logger.Info(ctx, "starting server", "addr", app.config.EndpointAddr, "storage", app.config.StorageBackend)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			app.logger.Error(ctx, "server error", "err", err)
			cancelFunc()
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		app.logger.Error(shutdownCtx, "shutdown error", "err", err)
	}
	if err := app.store.Close(); err != nil {
		app.logger.Error(shutdownCtx, "storage close error", "err", err)
	}
	app.logger.Info(context.Background(), "server stopped")
}
