package router

import (
	"net/http"
	"time"

	"budget/api"
	"budget/config"
	_ "budget/docs"
	"budget/identity"
	"budget/ledger"
	"budget/middleware"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"
)

// Deps 路由依赖
type Deps struct {
	Ledger *ledger.Service
	// Gate 多用户模式必填
	Gate *identity.Gate
	// Widgets 为 nil 时不注册 /widgets
	Widgets api.WidgetFetcher
	Logger  *zap.Logger
}

// SetupRouter 设置路由
func SetupRouter(cfg *config.Config, deps Deps) *gin.Engine {
	gin.SetMode(cfg.Server.Mode)

	log := deps.Logger
	if log == nil {
		log = zap.NewNop()
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger(log))
	r.Use(middleware.Metrics())
	r.Use(CORSMiddleware(cfg.Server.AllowedOrigins))

	v1 := r.Group("/api/v1")

	expenseHandler := api.NewExpenseHandler(deps.Ledger)
	incomeHandler := api.NewIncomeHandler(deps.Ledger)
	dashboardHandler := api.NewDashboardHandler(deps.Ledger)

	v1.GET("/categories", dashboardHandler.Categories)

	var authorized *gin.RouterGroup
	if cfg.App.MultiUser {
		authHandler := api.NewAuthHandler(deps.Gate, cfg)
		limit := middleware.LoginRateLimit(cfg.Auth.LoginRateLimit, time.Duration(cfg.Auth.LoginRateWindowSeconds)*time.Second)

		auth := v1.Group("/auth")
		{
			auth.POST("/register", limit, authHandler.Register)
			auth.POST("/login", limit, authHandler.Login)
			auth.POST("/logout", authHandler.Logout)
			auth.POST("/forgot-password", limit, authHandler.ForgotPassword)
		}

		authorized = v1.Group("")
		authorized.Use(middleware.JWTAuth())
		authorized.GET("/auth/profile", authHandler.GetProfile)
		authorized.PUT("/auth/password", authHandler.ChangePassword)
	} else {
		authorized = v1.Group("")
		authorized.Use(middleware.SingleUser(cfg.App.SingleUserID))
	}

	{
		authorized.GET("/dashboard", dashboardHandler.Dashboard)

		expenses := authorized.Group("/expenses")
		{
			expenses.POST("", expenseHandler.Create)
			expenses.GET("", expenseHandler.List)
			expenses.GET("/:id", expenseHandler.Get)
			expenses.PUT("/:id", expenseHandler.Update)
			expenses.DELETE("/:id", expenseHandler.Delete)
		}

		incomes := authorized.Group("/incomes")
		{
			incomes.POST("", incomeHandler.Create)
			incomes.GET("", incomeHandler.List)
			incomes.DELETE("", incomeHandler.Reset)
			incomes.GET("/:id", incomeHandler.Get)
			incomes.DELETE("/:id", incomeHandler.Delete)
		}

		if deps.Widgets != nil {
			authorized.GET("/widgets", api.NewWidgetHandler(deps.Widgets).Get)
		}
	}

	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":     "ok",
			"multi_user": cfg.App.MultiUser,
			"storage":    cfg.Storage.Backend,
		})
	})

	return r
}

// CORSMiddleware 允许跨域访问
// 仅对 allowed 中的来源回显 Origin 并允许携带 Cookie，其余来源按 * 处理
func CORSMiddleware(allowed []string) gin.HandlerFunc {
	origins := make(map[string]struct{}, len(allowed))
	for _, o := range allowed {
		origins[o] = struct{}{}
	}
	return func(c *gin.Context) {
		allowOrigin := "*"
		if origin := c.GetHeader("Origin"); origin != "" {
			c.Writer.Header().Add("Vary", "Origin")
			if _, ok := origins[origin]; ok {
				allowOrigin = origin
				c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
			}
		}
		c.Writer.Header().Set("Access-Control-Allow-Origin", allowOrigin)
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, Authorization, accept, origin, Cache-Control, X-Requested-With, X-Request-ID")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}
