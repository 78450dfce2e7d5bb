package httpapi

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/staylink/concierge/internal/config"
	"github.com/staylink/concierge/internal/http/handlers"
	"github.com/staylink/concierge/internal/http/middleware"

	_ "github.com/staylink/concierge/docs"
)

type Deps struct {
	Concierge handlers.Orchestrator
	Matcher   handlers.Matcher
	Inventory handlers.Pinger
}

func Router(cfg config.Config, deps Deps, logger zerolog.Logger) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(logger))

	corsCfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", middleware.APIKeyHeader, middleware.RequestIDHeader},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if cfg.CORSAllowed == "*" || cfg.CORSAllowed == "" {
		corsCfg.AllowAllOrigins = true
		corsCfg.AllowCredentials = false
	} else {
		corsCfg.AllowOrigins = strings.Split(cfg.CORSAllowed, ",")
		for i, o := range corsCfg.AllowOrigins {
			corsCfg.AllowOrigins[i] = strings.TrimSpace(o)
		}
	}
	r.Use(cors.New(corsCfg))

	h := &handlers.Handler{
		Concierge: deps.Concierge,
		Matcher:   deps.Matcher,
		Inventory: deps.Inventory,
		Validator: validator.New(),
		Logger:    logger,
	}

	r.GET("/healthz", h.Healthz)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api")
	api.Use(middleware.APIKey(cfg.APIKey))
	api.Use(middleware.RateLimit(middleware.NewClientLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst)))
	{
		api.POST("/intention-detect", h.IntentionDetect)
		api.POST("/availability", h.Availability)
		api.POST("/query", h.Query)
	}

	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	return r
}

// Traced wraps the engine with OpenTelemetry server spans. Health and metrics
// scrapes are not traced.
func Traced(next http.Handler, serviceName string) http.Handler {
	return otelhttp.NewHandler(next, serviceName,
		otelhttp.WithFilter(func(r *http.Request) bool {
			switch r.URL.Path {
			case "/healthz", "/metrics":
				return false
			}
			return true
		}),
		otelhttp.WithSpanNameFormatter(func(_ string, r *http.Request) string {
			return r.Method + " " + r.URL.Path
		}),
	)
}
