package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/Kiranppatil21/glass/internal/config"
	"github.com/Kiranppatil21/glass/internal/credit"
	"github.com/Kiranppatil21/glass/internal/customer"
	"github.com/Kiranppatil21/glass/internal/gateway/razorpay"
	"github.com/Kiranppatil21/glass/internal/ledger"
	"github.com/Kiranppatil21/glass/internal/metrics"
	"github.com/Kiranppatil21/glass/internal/order"
	orderdomain "github.com/Kiranppatil21/glass/internal/order/domain"
	"github.com/Kiranppatil21/glass/internal/settings"
)

var Module = fx.Module("http.server",
	metrics.Module,
	customer.Module,
	settings.Module,
	credit.Module,
	razorpay.Module,
	ledger.Module,
	order.Module,
	fx.Provide(registerGin),
	fx.Provide(NewServer),
	fx.Invoke(registerRoutes),
	fx.Invoke(run),
)

func NewEngine() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(RequestID())
	r.Use(ErrorHandlingMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r
}

func registerGin() *gin.Engine {
	return NewEngine()
}

func run(lc fx.Lifecycle, r *gin.Engine, cfg config.Config, log *zap.Logger) {
	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: r,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				log.Info("http server listening", zap.String("addr", srv.Addr))
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					log.Fatal("http server failed", zap.Error(err))
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
	engine   *gin.Engine
	cfg      config.Config
	log      *zap.Logger
	orderSvc orderdomain.Service
}

type ServerParams struct {
	fx.In

	Gin      *gin.Engine
	Cfg      config.Config
	Log      *zap.Logger
	OrderSvc orderdomain.Service
}

func NewServer(p ServerParams) *Server {
	return &Server{
		engine:   p.Gin,
		cfg:      p.Cfg,
		log:      p.Log.Named("http"),
		orderSvc: p.OrderSvc,
	}
}

func (s *Server) Engine() *gin.Engine {
	return s.engine
}

func registerRoutes(s *Server) {
	s.RegisterOrderRoutes()
}

func (s *Server) RegisterOrderRoutes() {
	orders := s.engine.Group("/orders")

	// Public tracking goes first so it never requires a token.
	orders.GET("/track/:ref", s.TrackOrder)

	orders.POST("", s.AuthRequired(), s.CreateOrder)
	orders.GET("/my-orders", s.AuthRequired(), s.ListMyOrders)
	orders.POST("/:id/payment", s.AuthRequired(), s.VerifyAdvancePayment)
	orders.POST("/:id/initiate-remaining-payment", s.AuthRequired(), s.InitiateRemainingPayment)
	orders.POST("/:id/verify-remaining-payment", s.AuthRequired(), s.VerifyRemainingPayment)
	orders.POST("/:id/mark-cash-received", s.AuthRequired(), s.MarkCashReceived)
}
