package http

import (
	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/metric"

	accessHTTP "github.com/caretrail/phicore/internal/access/http"
	auditHTTP "github.com/caretrail/phicore/internal/audit/http"
	cryptoHTTP "github.com/caretrail/phicore/internal/crypto/http"
	"github.com/caretrail/phicore/internal/metrics"
)

// RouterConfig carries the middleware settings for the API router.
type RouterConfig struct {
	CORSEnabled      bool
	CORSAllowOrigins string
	RateLimitEnabled bool
	RateLimitRPS     float64
	RateLimitBurst   int
	MetricsNamespace string
}

// SetupRouter builds the Gin router with all middleware and routes and
// attaches it to the server.
func (s *Server) SetupRouter(
	cfg RouterConfig,
	meterProvider metric.MeterProvider,
	fieldHandler *cryptoHTTP.FieldHandler,
	keyHandler *cryptoHTTP.KeyHandler,
	accessHandler *accessHTTP.AccessHandler,
	ledgerHandler *auditHTTP.LedgerHandler,
) {
	router := gin.New()

	router.Use(gin.Recovery())
	router.Use(requestid.New(requestid.WithGenerator(func() string {
		return uuid.Must(uuid.NewV7()).String()
	})))
	router.Use(CustomLoggerMiddleware(s.logger))

	if meterProvider != nil {
		router.Use(metrics.HTTPMetricsMiddleware(meterProvider, cfg.MetricsNamespace))
	}

	if corsMiddleware := createCORSMiddleware(cfg.CORSEnabled, cfg.CORSAllowOrigins, s.logger); corsMiddleware != nil {
		router.Use(corsMiddleware)
	}

	router.GET("/health", s.healthHandler)
	router.GET("/ready", s.readinessHandler)

	v1 := router.Group("/v1")

	if cfg.RateLimitEnabled {
		v1.Use(RateLimitMiddleware(cfg.RateLimitRPS, cfg.RateLimitBurst, s.logger))
	}

	phi := v1.Group("/phi")
	{
		phi.POST("/encrypt", fieldHandler.EncryptFieldHandler)
		phi.POST("/decrypt", fieldHandler.DecryptFieldHandler)
	}

	keys := v1.Group("/keys")
	{
		keys.POST("/:context/rotate", keyHandler.RotateKeyHandler)
	}

	access := v1.Group("/access")
	{
		access.POST("/authorize", accessHandler.AuthorizeHandler)
		access.POST("/result", accessHandler.RecordResultHandler)
	}

	ledger := v1.Group("/ledger")
	{
		ledger.GET("/events", ledgerHandler.ListEventsHandler)
		ledger.GET("/verify", ledgerHandler.VerifyChainHandler)
	}

	s.router = router
}
