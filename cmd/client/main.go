package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"os/signal"

	"github.com/notiapp/notiapp/internal/client/cli"
	"github.com/notiapp/notiapp/internal/client/config"
	"github.com/notiapp/notiapp/internal/client/push"
	"github.com/notiapp/notiapp/internal/logging"
)

func main() {

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	cfg := config.LoadConfig()
	logger := logging.NewSlogLogger(slog.New(slog.NewTextHandler(os.Stderr, nil)))
	platform := push.NewLocalPlatform(cfg.ServerBaseURL + "/api/push/relay")

	app, err := cli.NewApp(ctx, cfg, platform, logger)
	if err != nil {
		log.Fatalf("%v", err)
		return
	}

	app.Run(ctx)

}
