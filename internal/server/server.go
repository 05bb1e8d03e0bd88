package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	billingdomain "github.com/kvartplata/kvartplata/internal/billing/domain"
	"github.com/kvartplata/kvartplata/internal/config"
	"github.com/kvartplata/kvartplata/internal/ratelimit"
	residentdomain "github.com/kvartplata/kvartplata/internal/resident/domain"
	sessiondomain "github.com/kvartplata/kvartplata/internal/session/domain"
	tariffdomain "github.com/kvartplata/kvartplata/internal/tariff/domain"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("http.server",
	fx.Provide(NewEngine),
	fx.Provide(NewCookieManager),
	fx.Provide(NewHTTPMetrics),
	fx.Invoke(NewServer),
	fx.Invoke(run),
)

func NewEngine(log *zap.Logger, metrics *HTTPMetrics) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(RequestLogger(log))
	r.Use(MetricsMiddleware(metrics))
	r.Use(ErrorHandlingMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r
}

func run(lc fx.Lifecycle, r *gin.Engine, cfg config.Config) {
	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: r,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					panic(err)
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
	engine      *gin.Engine
	cfg         config.Config
	log         *zap.Logger
	cookies     *CookieManager
	sessionSvc  sessiondomain.Service
	residentSvc residentdomain.Service
	tariffSvc   tariffdomain.Service
	billingSvc  billingdomain.Service
	loginLimit  *ratelimit.LoginLimiter
}

type ServerParams struct {
	fx.In

	Gin         *gin.Engine
	Cfg         config.Config
	Log         *zap.Logger
	Cookies     *CookieManager
	SessionSvc  sessiondomain.Service
	ResidentSvc residentdomain.Service
	TariffSvc   tariffdomain.Service
	BillingSvc  billingdomain.Service
	LoginLimit  *ratelimit.LoginLimiter
}

func NewServer(p ServerParams) *Server {
	svc := &Server{
		engine:      p.Gin,
		cfg:         p.Cfg,
		log:         p.Log.Named("http.server"),
		cookies:     p.Cookies,
		sessionSvc:  p.SessionSvc,
		residentSvc: p.ResidentSvc,
		tariffSvc:   p.TariffSvc,
		billingSvc:  p.BillingSvc,
		loginLimit:  p.LoginLimit,
	}

	svc.registerRoutes()
	return svc
}

func (s *Server) registerRoutes() {
	s.engine.GET("/login", s.Login)
	s.engine.GET("/logout", s.Logout)

	api := s.engine.Group("/api", s.AuthRequired())
	{
		api.GET("/dashboard", s.Dashboard)
		api.GET("/tariffs", s.ListTariffs)
		api.POST("/tariffs", s.SaveTariff)
		api.GET("/residents", s.ListResidents)
		api.POST("/residents", s.AddResident)
		api.POST("/charges/generate", s.GenerateCharge)
		api.GET("/export/excel", s.ExportExcel)
	}
}
