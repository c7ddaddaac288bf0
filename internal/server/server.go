package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	apikeydomain "github.com/smallbiznis/eragon/internal/apikey/domain"
	"github.com/smallbiznis/eragon/internal/config"
	coupondomain "github.com/smallbiznis/eragon/internal/coupon/domain"
	legacycoupondomain "github.com/smallbiznis/eragon/internal/legacycoupon/domain"
	"github.com/smallbiznis/eragon/internal/observability"
	obsmiddleware "github.com/smallbiznis/eragon/internal/observability/logger"
	obsmetrics "github.com/smallbiznis/eragon/internal/observability/metrics"
	obstracing "github.com/smallbiznis/eragon/internal/observability/tracing"
	productdomain "github.com/smallbiznis/eragon/internal/product/domain"
	"github.com/smallbiznis/eragon/internal/ratelimit"
	"github.com/smallbiznis/eragon/internal/sitemap"
	submissiondomain "github.com/smallbiznis/eragon/internal/submission/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

const welcomeMessage = "Welcome to the Eragon Coupon Backend API!"

var Module = fx.Module("http.server",
	fx.Provide(NewEngine),
	fx.Invoke(NewServer),
	fx.Invoke(run),
)

func NewEngine(cfg config.Config, obsCfg observability.Config, httpMetrics *obsmetrics.HTTPMetrics) *gin.Engine {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(cors.New(corsConfig(cfg)))
	r.Use(obsmiddleware.GinMiddleware(obsmiddleware.MiddlewareConfig{
		Debug:           obsCfg.Debug(),
		ErrorClassifier: classifyErrorForLog,
	}))
	r.Use(obstracing.GinMiddleware())
	r.Use(httpMetrics.GinMiddleware())
	r.Use(ErrorHandlingMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r
}

// corsConfig allows every origin unless CORS_ALLOWED_ORIGINS names explicit ones.
func corsConfig(cfg config.Config) cors.Config {
	corsCfg := cors.DefaultConfig()
	corsCfg.AllowMethods = []string{
		http.MethodGet, http.MethodPost, http.MethodPut,
		http.MethodPatch, http.MethodDelete, http.MethodOptions,
	}
	corsCfg.AddAllowHeaders("Authorization", obsmiddleware.RequestIDHeader)
	corsCfg.AddExposeHeaders("Retry-After", obsmiddleware.RequestIDHeader)

	origins := make([]string, 0, len(cfg.CORSAllowedOrigins))
	for _, origin := range cfg.CORSAllowedOrigins {
		if origin == "*" {
			origins = nil
			break
		}
		origins = append(origins, origin)
	}
	if len(origins) == 0 {
		corsCfg.AllowAllOrigins = true
		return corsCfg
	}
	corsCfg.AllowOrigins = origins
	return corsCfg
}

func run(lc fx.Lifecycle, shutdowner fx.Shutdowner, cfg config.Config, r *gin.Engine, log *zap.Logger) {
	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				log.Info("http server listening", zap.String("addr", srv.Addr))
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					log.Error("http server stopped", zap.Error(err))
					_ = shutdowner.Shutdown(fx.ExitCode(1))
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	})
}

type Server struct {
	engine          *gin.Engine
	cfg             config.Config
	productSvc      productdomain.Service
	couponSvc       coupondomain.Service
	legacyCouponSvc legacycoupondomain.Service
	apiKeySvc       apikeydomain.Service
	submissionSvc   submissiondomain.Service
	sitemap         *sitemap.Builder
	counterLimiter  *ratelimit.CounterLimiter
	obsMetrics      *obsmetrics.Metrics
}

type ServerParams struct {
	fx.In

	Gin             *gin.Engine
	Cfg             config.Config
	ProductSvc      productdomain.Service
	CouponSvc       coupondomain.Service
	LegacyCouponSvc legacycoupondomain.Service
	APIKeySvc       apikeydomain.Service
	SubmissionSvc   submissiondomain.Service
	Sitemap         *sitemap.Builder
	CounterLimiter  *ratelimit.CounterLimiter `optional:"true"`
	ObsMetrics      *obsmetrics.Metrics       `optional:"true"`
}

func NewServer(p ServerParams) *Server {
	svc := &Server{
		engine:          p.Gin,
		cfg:             p.Cfg,
		productSvc:      p.ProductSvc,
		couponSvc:       p.CouponSvc,
		legacyCouponSvc: p.LegacyCouponSvc,
		apiKeySvc:       p.APIKeySvc,
		submissionSvc:   p.SubmissionSvc,
		sitemap:         p.Sitemap,
		counterLimiter:  p.CounterLimiter,
		obsMetrics:      p.ObsMetrics,
	}
	svc.registerRoutes()
	return svc
}

func (s *Server) Engine() *gin.Engine {
	return s.engine
}

// registerRoutes mounts the public read and counter endpoints plus the admin-only writes.
// Paths end with a slash; gin redirects the slashless form.
func (s *Server) registerRoutes() {
	s.engine.GET("/", s.Home)
	s.engine.GET("/sitemap.xml", s.Sitemap)
	s.engine.POST("/submitstore/", s.SubmitStore)

	// -------- Products --------
	products := s.engine.Group("/products")
	products.GET("/", s.ListProducts)
	products.GET("/by_slug/:slug/", s.GetProductBySlug)
	products.GET("/:id/", s.GetProductByID)
	products.POST("/", s.AdminRequired(), s.CreateProduct)
	products.PUT("/:id/", s.AdminRequired(), s.ReplaceProduct)
	products.PATCH("/:id/", s.AdminRequired(), s.UpdateProduct)
	products.DELETE("/:id/", s.AdminRequired(), s.DeleteProduct)

	// -------- Coupons --------
	coupons := s.engine.Group("/productcoupon")
	coupons.GET("/", s.ListCoupons)
	coupons.GET("/:id/", s.GetCouponByID)
	coupons.POST("/:id/like/", s.CounterRateLimit(), s.LikeCoupon)
	coupons.POST("/:id/dislike/", s.CounterRateLimit(), s.DislikeCoupon)
	coupons.POST("/:id/use/", s.CounterRateLimit(), s.UseCoupon)
	coupons.POST("/", s.AdminRequired(), s.CreateCoupon)
	coupons.POST("/reset_daily_usage/", s.AdminRequired(), s.ResetDailyUsage)
	coupons.PUT("/:id/", s.AdminRequired(), s.ReplaceCoupon)
	coupons.PATCH("/:id/", s.AdminRequired(), s.UpdateCoupon)
	coupons.DELETE("/:id/", s.AdminRequired(), s.DeleteCoupon)

	// -------- Standalone coupons --------
	legacy := s.engine.Group("/coupons")
	legacy.GET("/", s.ListLegacyCoupons)
	legacy.GET("/:id/", s.GetLegacyCoupon)
	legacy.POST("/", s.AdminRequired(), s.CreateLegacyCoupon)
	legacy.PUT("/:id/", s.AdminRequired(), s.ReplaceLegacyCoupon)
	legacy.PATCH("/:id/", s.AdminRequired(), s.UpdateLegacyCoupon)
	legacy.DELETE("/:id/", s.AdminRequired(), s.DeleteLegacyCoupon)
}

func (s *Server) Home(c *gin.Context) {
	c.String(http.StatusOK, welcomeMessage)
}
