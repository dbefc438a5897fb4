package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/dmehra2102/prod-golang-projects/rxclinic/internal/config"
	"github.com/dmehra2102/prod-golang-projects/rxclinic/internal/handler/middleware"
	v1 "github.com/dmehra2102/prod-golang-projects/rxclinic/internal/handler/v1"
	"github.com/dmehra2102/prod-golang-projects/rxclinic/pkg/metrics"
)

// Pinger reports whether the backing store is reachable.
type Pinger func(ctx context.Context) error

type RouterDeps struct {
	Config        *config.Config
	Log           *zap.Logger
	Metrics       *metrics.Collector
	MetricsHTTP   http.Handler
	Prescriptions v1.PrescriptionService
	Ping          Pinger
}

func NewRouter(d RouterDeps) *gin.Engine {
	if !d.Config.App.IsDevelopment() {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.HandleMethodNotAllowed = true

	r.Use(
		middleware.Recovery(d.Log),
		middleware.RequestID(),
		middleware.Tracing(d.Config.Tracing.ServiceName),
		middleware.Logger(d.Log.Named("http")),
		middleware.Metrics(d.Metrics),
		middleware.CORS(d.Config.CORS),
	)

	r.GET("/health", health(d.Config.App, d.Ping))
	if d.MetricsHTTP != nil {
		r.GET("/metrics", gin.WrapH(d.MetricsHTTP))
	}

	api := r.Group("/api/v1", middleware.RateLimit(d.Config.RateLimit))
	v1.NewPrescriptionHandler(d.Prescriptions, d.Log).Register(api)

	return r
}

func health(app config.AppConfig, ping Pinger) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		body := gin.H{
			"service": app.Name,
			"version": app.Version,
		}

		if ping != nil {
			if err := ping(ctx); err != nil {
				body["status"] = "unavailable"
				body["database"] = "down"
				c.JSON(http.StatusServiceUnavailable, body)
				return
			}
			body["database"] = "up"
		}

		body["status"] = "healthy"
		c.JSON(http.StatusOK, body)
	}
}
