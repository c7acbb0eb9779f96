package server

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/smallbiznis/wxgate/internal/config"
	"github.com/smallbiznis/wxgate/internal/gateway"
	notifydomain "github.com/smallbiznis/wxgate/internal/notify/domain"
	"github.com/smallbiznis/wxgate/internal/observability/logger"
	"github.com/smallbiznis/wxgate/internal/observability/metrics"
)

type Params struct {
	fx.In

	Cfg           config.Config
	Log           *zap.Logger
	Engine        *gin.Engine
	NotifySvc     notifydomain.Service
	Gateway       *gateway.Client
	NotifyMetrics *metrics.NotifyMetrics `optional:"true"`
}

type Server struct {
	engine        *gin.Engine
	cfg           config.Config
	log           *zap.Logger
	notifySvc     notifydomain.Service
	gateway       *gateway.Client
	notifyMetrics *metrics.NotifyMetrics
}

func NewEngine(cfg config.Config, httpMetrics *metrics.HTTPMetrics) *gin.Engine {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(logger.GinMiddleware(logger.MiddlewareConfig{
		SkipPaths: []string{"/healthz", "/metrics"},
	}))
	engine.Use(metrics.GinMiddleware(httpMetrics))
	return engine
}

func NewServer(p Params) *Server {
	return &Server{
		engine:        p.Engine,
		cfg:           p.Cfg,
		log:           p.Log.Named("server"),
		notifySvc:     p.NotifySvc,
		gateway:       p.Gateway,
		notifyMetrics: p.NotifyMetrics,
	}
}

func (s *Server) RegisterRoutes() {
	s.engine.GET("/healthz", s.Healthz)
	s.engine.GET("/metrics", gin.WrapH(promhttp.Handler()))

	s.engine.POST("/gateway/wxpay/notify", s.HandleGatewayNotification)

	api := s.engine.Group("/api")
	api.GET("/orders/:out_trade_no", s.QueryOrder)
	api.GET("/refunds/:out_refund_no", s.QueryRefund)
	api.POST("/payments/browser-params", s.BrowserPayParams)
}

// RunHTTP starts the HTTP listener under the fx lifecycle.
func RunHTTP(lc fx.Lifecycle, s *Server, log *zap.Logger) {
	srv := &http.Server{
		Addr:    s.cfg.HTTP.Addr,
		Handler: s.engine,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Info("http server starting", zap.String("addr", s.cfg.HTTP.Addr))
			go func() {
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					log.Error("http server stopped", zap.Error(err))
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			log.Info("http server shutting down")
			return srv.Shutdown(ctx)
		},
	})
}

func (s *Server) Healthz(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
