// Package server wires storage, push dispatch and the HTTP API together and
// runs the server with graceful shutdown.
package server

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/notiapp/notiapp/internal/logging"
	"github.com/notiapp/notiapp/internal/metrics"
	"github.com/notiapp/notiapp/internal/server/handler"
	"github.com/notiapp/notiapp/internal/server/storage"
	"github.com/notiapp/notiapp/internal/server/webpush"
)

type Deps struct {
	Store     storage.Storage
	Sender    *webpush.Sender
	Logger    logging.Logger
	StaticDir string
}

func NewRouter(deps Deps) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(requestMetrics())

	healthHandler := &handler.HealthHandler{Store: deps.Store}
	r.GET("/api/health", healthHandler.Health)

	dataHandler := &handler.DataHandler{Store: deps.Store, Log: deps.Logger}
	data := r.Group("/api/data")
	data.POST("/save", dataHandler.Save)
	data.POST("/sync", dataHandler.Sync)
	data.GET("/list", dataHandler.List)

	pushHandler := &handler.PushHandler{Store: deps.Store, Sender: deps.Sender, Log: deps.Logger}
	push := r.Group("/api/push")
	push.POST("/subscribe", pushHandler.Subscribe)
	push.POST("/unsubscribe", pushHandler.Unsubscribe)
	push.GET("/subscriptions", pushHandler.Subscriptions)
	push.POST("/send", pushHandler.Send)
	push.GET("/vapid-key", pushHandler.VAPIDKey)

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	if deps.StaticDir != "" {
		r.NoRoute(gin.WrapH(staticHandler(deps.StaticDir)))
	}

	return r
}

func requestMetrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		endpoint := c.FullPath()
		if endpoint == "" {
			endpoint = "static"
		}
		metrics.HTTPRequestsTotal.WithLabelValues(
			endpoint, strconv.Itoa(c.Writer.Status()), c.Request.Method).Inc()
	}
}
