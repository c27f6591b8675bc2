package http

import (
	"log/slog"
	"time"

	"github.com/geocoder89/staffhub/internal/cache"
	"github.com/geocoder89/staffhub/internal/http/handlers"
	"github.com/geocoder89/staffhub/internal/http/middlewares"
	"github.com/geocoder89/staffhub/internal/observability"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
)

type RouterDeps struct {
	Env         string
	ServiceName string
	Log         *slog.Logger

	Registrar handlers.Registrar
	Ping      func() error

	Prom     *observability.Prom
	Gatherer prometheus.Gatherer

	// TrustedProxies may set X-Forwarded-For; nil trusts none, so the
	// client IP is the socket peer.
	TrustedProxies []string

	RateCounter  middlewares.Counter
	RateLimit    int
	RateWindow   time.Duration
	MaxBodyBytes int64

	KnownEmails *cache.Cache[string, bool]
}

func NewRouter(d RouterDeps) *gin.Engine {
	if d.Env != "dev" && d.Env != "test" {
		gin.SetMode(gin.ReleaseMode)
	}
	if d.Log == nil {
		d.Log = slog.Default()
	}
	r := gin.New()

	if err := r.SetTrustedProxies(d.TrustedProxies); err != nil {
		d.Log.Error("invalid trusted proxies, trusting none", "proxies", d.TrustedProxies, "err", err)
		_ = r.SetTrustedProxies(nil)
	}

	// middleware

	r.Use(gin.Recovery())
	r.Use(middlewares.RequestID())
	if d.ServiceName != "" {
		r.Use(otelgin.Middleware(d.ServiceName))
	}
	r.Use(middlewares.RequestLogger(d.Log))
	if d.Prom != nil {
		r.Use(d.Prom.GinHandleMiddleware())
	}
	r.Use(middlewares.SecurityHeaders())
	r.Use(middlewares.MaxBodyBytes(d.MaxBodyBytes))

	// health
	h := handlers.NewHealthHandler(d.Ping)
	r.GET("/healthz", h.Healthz)
	r.GET("/readyz", h.Readyz)

	if d.Gatherer != nil {
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(d.Gatherer, promhttp.HandlerOpts{})))
	}

	counter := d.RateCounter
	if counter == nil {
		counter = middlewares.NewMemoryCounter()
	}
	registerLimit := middlewares.NewRateLimiter(counter, "register", d.RateLimit, d.RateWindow, d.Log)

	auth := handlers.NewAuthHandler(d.Registrar, d.KnownEmails)

	api := r.Group("/api/auth")
	api.POST("/register", registerLimit.Middleware(middlewares.KeyByIP), middlewares.RequireJSON(), auth.Register)
	api.GET("/check-email/:email", auth.CheckEmail)

	return r
}
