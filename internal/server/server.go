package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/smallbiznis/salesdesk/internal/auth"
	authdomain "github.com/smallbiznis/salesdesk/internal/auth/domain"
	"github.com/smallbiznis/salesdesk/internal/authorization"
	"github.com/smallbiznis/salesdesk/internal/config"
	"github.com/smallbiznis/salesdesk/internal/invoice"
	invoicedomain "github.com/smallbiznis/salesdesk/internal/invoice/domain"
	"github.com/smallbiznis/salesdesk/internal/observability"
	obsmiddleware "github.com/smallbiznis/salesdesk/internal/observability/logger"
	obsmetrics "github.com/smallbiznis/salesdesk/internal/observability/metrics"
	obstracing "github.com/smallbiznis/salesdesk/internal/observability/tracing"
	"github.com/smallbiznis/salesdesk/internal/payment"
	"github.com/smallbiznis/salesdesk/internal/product"
	productdomain "github.com/smallbiznis/salesdesk/internal/product/domain"
	"github.com/smallbiznis/salesdesk/internal/providers/pdf"
	"github.com/smallbiznis/salesdesk/internal/ratelimit"
	"github.com/smallbiznis/salesdesk/internal/salesmetrics"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("http.server",
	fx.Provide(registerGin),
	authorization.Module,
	auth.Module,
	product.Module,
	payment.Module,
	invoice.Module,
	salesmetrics.Module,
	pdf.Module,
	ratelimit.Module,
	fx.Invoke(NewServer),
	fx.Invoke(run),
)

const shutdownTimeout = 10 * time.Second

func NewEngine(obsCfg observability.Config, httpMetrics *obsmetrics.HTTPMetrics, cfg config.Config) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(obsmiddleware.GinMiddleware(obsmiddleware.MiddlewareConfig{
		Debug:           obsCfg.Debug(),
		ErrorClassifier: classifyErrorForLog,
	}))
	r.Use(obstracing.GinMiddleware(obsCfg.UntracedPaths...))
	r.Use(obsmetrics.GinMiddleware(httpMetrics))
	r.Use(corsMiddleware(cfg.CORSAllowedOrigins))
	r.Use(ErrorHandlingMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r
}

func registerGin(obsCfg observability.Config, httpMetrics *obsmetrics.HTTPMetrics, cfg config.Config) *gin.Engine {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	return NewEngine(obsCfg, httpMetrics, cfg)
}

func corsMiddleware(origins []string) gin.HandlerFunc {
	corsCfg := cors.Config{
		AllowMethods:  []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowHeaders:  []string{"Origin", "Content-Type", "Authorization", "X-Request-ID"},
		ExposeHeaders: []string{"Content-Length", "Content-Type", "X-Request-ID", "Retry-After"},
		MaxAge:        12 * time.Hour,
	}
	if len(origins) == 0 {
		corsCfg.AllowAllOrigins = true
	} else {
		corsCfg.AllowOrigins = origins
	}
	return cors.New(corsCfg)
}

func run(lc fx.Lifecycle, cfg config.Config, r *gin.Engine, log *zap.Logger) {
	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				log.Info("http server listening", zap.String("addr", srv.Addr))
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					log.Fatal("http server stopped", zap.Error(err))
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			shutdownCtx, cancel := context.WithTimeout(ctx, shutdownTimeout)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	})
}

// invoiceLimiter is satisfied by *ratelimit.InvoiceLimiter.
type invoiceLimiter interface {
	Enabled() bool
	AllowUser(ctx context.Context, userID string) (*ratelimit.Result, error)
}

type Server struct {
	engine     *gin.Engine
	cfg        config.Config
	authsvc    authdomain.Service
	authzSvc   authorization.Service
	invoiceSvc invoicedomain.Service
	productSvc productdomain.Service
	pdf        pdf.Provider
	receipt    *config.ReceiptConfigHolder
	limiter    invoiceLimiter
	obsMetrics *obsmetrics.Metrics
}

type ServerParams struct {
	fx.In

	Gin        *gin.Engine
	Cfg        config.Config
	Authsvc    authdomain.Service
	AuthzSvc   authorization.Service
	InvoiceSvc invoicedomain.Service
	ProductSvc productdomain.Service
	PDF        pdf.Provider

	Receipt    *config.ReceiptConfigHolder `optional:"true"`
	Limiter    *ratelimit.InvoiceLimiter   `optional:"true"`
	ObsMetrics *obsmetrics.Metrics         `optional:"true"`
}

func NewServer(p ServerParams) *Server {
	svc := &Server{
		engine:     p.Gin,
		cfg:        p.Cfg,
		authsvc:    p.Authsvc,
		authzSvc:   p.AuthzSvc,
		invoiceSvc: p.InvoiceSvc,
		productSvc: p.ProductSvc,
		pdf:        p.PDF,
		receipt:    p.Receipt,
		limiter:    p.Limiter,
		obsMetrics: p.ObsMetrics,
	}

	svc.registerAuthRoutes()
	svc.registerAPIRoutes()
	svc.registerFallback()

	return svc
}

func (s *Server) Engine() *gin.Engine {
	return s.engine
}

func (s *Server) registerAuthRoutes() {
	auth := s.engine.Group("/auth")

	auth.POST("/register", s.Register)
	auth.POST("/login", s.Login)
	auth.GET("/me", s.AuthRequired(), s.Me)
}

func (s *Server) registerAPIRoutes() {
	api := s.engine.Group("/api", s.AuthRequired())

	// -------- Invoices --------
	api.POST("/invoices",
		s.RequirePermission(authorization.ObjectInvoice, authorization.ActionCreate),
		s.InvoiceRateLimit(),
		s.CreateInvoice,
	)
	api.GET("/invoices", s.RequirePermission(authorization.ObjectInvoice, authorization.ActionView), s.ListInvoices)
	api.GET("/invoices/:id", s.RequirePermission(authorization.ObjectInvoice, authorization.ActionView), s.GetInvoiceByID)
	api.GET("/invoices/:id/receipt", s.RequirePermission(authorization.ObjectInvoice, authorization.ActionView), s.GetInvoiceReceipt)
	api.GET("/invoices/:id/receipt.pdf", s.RequirePermission(authorization.ObjectInvoice, authorization.ActionView), s.GetInvoiceReceiptPDF)

	// -------- Products --------
	api.GET("/products", s.RequirePermission(authorization.ObjectProduct, authorization.ActionView), s.ListProducts)
	api.GET("/products/:id", s.RequirePermission(authorization.ObjectProduct, authorization.ActionView), s.GetProductByID)
}

func (s *Server) registerFallback() {
	s.engine.NoRoute(func(c *gin.Context) {
		AbortWithError(c, ErrNotFound)
	})
}
