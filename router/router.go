package router

import (
	"time"

	"fintrack/api"
	"fintrack/cache"
	"fintrack/config"
	_ "fintrack/docs"
	"fintrack/events"
	"fintrack/middleware"
	"fintrack/service"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// 登录限流默认值：每 IP 每分钟 10 次
const (
	defaultLoginMaxAttempts = 10
	defaultLoginWindow      = time.Minute
)

// Dependencies 路由依赖的服务，Store 必填
type Dependencies struct {
	Store   cache.Store
	Planner *service.Planner
	Events  events.Publisher
	Email   *service.EmailService
}

// SetupRouter 设置路由
func SetupRouter(cfg *config.Config, deps Dependencies) *gin.Engine {
	gin.SetMode(cfg.Server.Mode)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger())
	r.Use(CORSMiddleware())

	loc := cfg.Location()

	loginMaxAttempts, loginWindow := defaultLoginMaxAttempts, defaultLoginWindow
	if cfg.Server.LoginMaxAttempts > 0 {
		loginMaxAttempts = cfg.Server.LoginMaxAttempts
	}
	if cfg.Server.LoginWindowSeconds > 0 {
		loginWindow = time.Duration(cfg.Server.LoginWindowSeconds) * time.Second
	}

	// Swagger 文档
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	v1 := r.Group("/api/v1")
	{
		// 认证相关路由（无需登录）
		authHandler := api.NewAuthHandler(cfg)
		auth := v1.Group("/auth")
		{
			auth.POST("/register", authHandler.Register)
			auth.POST("/login", middleware.LoginRateLimit(deps.Store, loginMaxAttempts, loginWindow), authHandler.Login)
		}

		// 需要 JWT 认证的路由
		authorized := v1.Group("")
		authorized.Use(middleware.JWTAuth())
		{
			authorized.GET("/auth/profile", authHandler.GetProfile)
			authorized.PUT("/auth/password", authHandler.ChangePassword)

			// 钱包
			walletHandler := api.NewWalletHandler(loc)
			wallets := authorized.Group("/wallets")
			{
				wallets.GET("", walletHandler.List)
				wallets.POST("", walletHandler.Create)
				wallets.GET("/total-balance", walletHandler.TotalBalance)
				wallets.GET("/:id", walletHandler.Get)
				wallets.PUT("/:id", walletHandler.Update)
				wallets.DELETE("/:id", walletHandler.Delete)
				wallets.POST("/:id/archive", walletHandler.Archive)
			}

			// 类别
			categoryHandler := api.NewCategoryHandler()
			categories := authorized.Group("/categories")
			{
				categories.GET("", categoryHandler.List)
				categories.POST("", categoryHandler.Create)
				categories.PUT("/:id", categoryHandler.Update)
				categories.DELETE("/:id", categoryHandler.Delete)
				categories.POST("/:id/archive", categoryHandler.Archive)
			}

			// 交易与统计
			txHandler := api.NewTransactionHandler(loc, deps.Events)
			analyticsHandler := api.NewAnalyticsHandler(loc)
			transactions := authorized.Group("/transactions")
			{
				transactions.GET("", txHandler.List)
				transactions.POST("", txHandler.Create)
				transactions.DELETE("/bulk", txHandler.BulkDelete)
				transactions.GET("/recent", txHandler.Recent)
				transactions.POST("/transfer", txHandler.Transfer)
				transactions.GET("/stats", analyticsHandler.Stats)
				transactions.GET("/monthly", analyticsHandler.Monthly)
				transactions.GET("/balance-series", analyticsHandler.BalanceSeries)
				transactions.GET("/expenses-by-category", analyticsHandler.ExpensesByCategory)
				transactions.GET("/income-by-source", analyticsHandler.IncomeBySource)
				transactions.GET("/:id", txHandler.Get)
				transactions.PUT("/:id", txHandler.Update)
				transactions.DELETE("/:id", txHandler.Delete)
			}

			// 导出
			exportHandler := api.NewExportHandler(loc)
			export := authorized.Group("/export")
			{
				export.GET("/csv", exportHandler.ExportCSV)
				export.GET("/xlsx", exportHandler.ExportXLSX)
			}

			// AI 计划
			if deps.Planner != nil {
				aiHandler := api.NewAIPlanHandler(deps.Planner, deps.Email)
				authorized.POST("/ai/plan", aiHandler.Generate)
				authorized.POST("/ai/classify", aiHandler.Classify)
				plans := authorized.Group("/ai-plans")
				{
					plans.GET("", aiHandler.List)
					plans.POST("", aiHandler.Create)
					plans.GET("/:id", aiHandler.Get)
					plans.PATCH("/:id", aiHandler.Update)
					plans.DELETE("/:id", aiHandler.Delete)
					plans.POST("/:id/email", aiHandler.Email)
				}
			}
		}
	}

	// 健康检查
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status": "ok",
		})
	})

	return r
}

// CORSMiddleware CORS 跨域中间件
func CORSMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, Authorization, accept, origin, Cache-Control, X-Requested-With, X-Request-ID")
		c.Writer.Header().Set("Access-Control-Expose-Headers", "X-Request-ID, Content-Disposition")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE, PATCH")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}
