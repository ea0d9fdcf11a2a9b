package server

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	accountdomain "github.com/lexorahq/lexora/internal/account/domain"
	chatdomain "github.com/lexorahq/lexora/internal/chat/domain"
	"github.com/lexorahq/lexora/internal/clock"
	"github.com/lexorahq/lexora/internal/config"
	contentdomain "github.com/lexorahq/lexora/internal/content/domain"
	coupondomain "github.com/lexorahq/lexora/internal/coupon/domain"
	"github.com/lexorahq/lexora/internal/dashboard"
	documentdomain "github.com/lexorahq/lexora/internal/document/domain"
	"github.com/lexorahq/lexora/internal/observability"
	obscontext "github.com/lexorahq/lexora/internal/observability/context"
	obslogger "github.com/lexorahq/lexora/internal/observability/logger"
	obsmetrics "github.com/lexorahq/lexora/internal/observability/metrics"
	obstracing "github.com/lexorahq/lexora/internal/observability/tracing"
	paymentdomain "github.com/lexorahq/lexora/internal/payment/domain"
	"github.com/lexorahq/lexora/internal/ratelimit"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("http.server",
	fx.Provide(NewEngine),
	fx.Invoke(NewServer),
	fx.Invoke(run),
)

func NewEngine(obsCfg observability.Config) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(obslogger.GinMiddleware(obslogger.MiddlewareConfig{
		Debug:           obsCfg.Debug(),
		ErrorClassifier: classifyErrorForLog,
	}))
	r.Use(obstracing.GinMiddleware())
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
	engine        *gin.Engine
	cfg           config.Config
	log           *zap.Logger
	accounts      accountdomain.Service
	chatSvc       chatdomain.Service
	coupons       coupondomain.Service
	webhooks      paymentdomain.Service
	checkoutSvc   paymentdomain.CheckoutService
	documents     documentdomain.Service
	contentSvc    contentdomain.Service
	dashboardSvc  dashboard.Service
	metrics       *obsmetrics.Metrics
	chatLimiter   *ratelimit.Limiter
	couponLimiter *ratelimit.Limiter
}

type ServerParams struct {
	fx.In

	Gin          *gin.Engine
	Cfg          config.Config
	Log          *zap.Logger
	Clock        clock.Clock
	Accounts     accountdomain.Service
	ChatSvc      chatdomain.Service
	Coupons      coupondomain.Service
	Webhooks     paymentdomain.Service
	CheckoutSvc  paymentdomain.CheckoutService
	Documents    documentdomain.Service
	ContentSvc   contentdomain.Service
	DashboardSvc dashboard.Service
	Metrics      *obsmetrics.Metrics `optional:"true"`
}

func NewServer(p ServerParams) *Server {
	svc := &Server{
		engine:        p.Gin,
		cfg:           p.Cfg,
		log:           p.Log.Named("server"),
		accounts:      p.Accounts,
		chatSvc:       p.ChatSvc,
		coupons:       p.Coupons,
		webhooks:      p.Webhooks,
		checkoutSvc:   p.CheckoutSvc,
		documents:     p.Documents,
		contentSvc:    p.ContentSvc,
		dashboardSvc:  p.DashboardSvc,
		metrics:       p.Metrics,
		chatLimiter:   ratelimit.New(p.Cfg.ChatRateLimit, p.Cfg.ChatRateWindow, p.Clock),
		couponLimiter: ratelimit.New(10, time.Minute, p.Clock),
	}

	svc.registerRoutes()

	return svc
}

func (s *Server) registerRoutes() {
	s.engine.GET("/", s.HandleServiceInfo)

	s.engine.POST("/chat", s.HandleChat)
	s.engine.GET("/chat/history", s.HandleChatHistory)

	s.engine.GET("/account/balance", s.HandleAccountBalance)
	s.engine.POST("/account/register", s.HandleAccountRegister)

	s.engine.POST("/coupon/apply", s.HandleCouponApply)

	s.engine.POST("/payment/create-checkout", s.HandleCreateCheckout)
	s.engine.POST("/payment/webhook", s.HandlePaymentWebhook("stripe"))
	s.engine.POST("/payment/webhook/:provider", s.HandlePaymentWebhook(""))

	s.engine.POST("/upload/document", s.HandleDocumentUpload)
	s.engine.GET("/documents", s.HandleDocumentList)

	s.engine.GET("/blog/posts", s.HandleBlogList)
	s.engine.GET("/blog/posts/:slug", s.HandleBlogGet)

	admin := s.engine.Group("/admin", s.requireAdminToken())
	admin.GET("/dashboard", s.HandleAdminDashboard)
	admin.POST("/blog/create", s.HandleBlogCreate)
}

func (s *Server) HandleServiceInfo(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "online",
		"service": s.cfg.AppName,
		"version": s.cfg.AppVersion,
		"features": []string{
			"Multi-AI (OpenAI, Claude, Gemini)",
			"Stripe Payments",
			"Document Processing",
			"Response Caching",
		},
	})
}

// setAccountContext tags the request context with the acting account so
// request logs carry the email alongside the request id.
func setAccountContext(c *gin.Context, email string) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return
	}
	c.Request = c.Request.WithContext(obscontext.WithAccount(c.Request.Context(), email))
}

func (s *Server) requireAdminToken() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := c.GetHeader("X-Admin-Token")
		if s.cfg.AdminToken == "" || token != s.cfg.AdminToken {
			AbortWithError(c, ErrUnauthorized)
			return
		}
		c.Next()
	}
}
