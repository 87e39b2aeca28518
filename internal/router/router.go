package router

import (
	"time"

	"github.com/artenioreis/loja-caixa/internal/config"
	"github.com/artenioreis/loja-caixa/internal/handler"
	"github.com/artenioreis/loja-caixa/internal/infra"
	"github.com/artenioreis/loja-caixa/internal/middleware"
	"github.com/artenioreis/loja-caixa/internal/model"
	"github.com/artenioreis/loja-caixa/internal/repository"
	"github.com/artenioreis/loja-caixa/internal/service"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

const storeName = "Loja Caixa"

// New wires all dependencies and returns a configured Gin engine.
// Dependency graph: Handler ← Service ← Repository ← DB/Redis
func New(cfg *config.Config, db *gorm.DB, rdb *redis.Client) (*gin.Engine, error) {
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// Global middleware chain (order matters)
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.Recovery())
	r.Use(middleware.CORS())
	r.Use(middleware.ErrorHandler())
	r.Use(middleware.RateLimiter(1000, time.Minute)) // 1000 req/min per IP

	// ── Infrastructure ───────────────────────────────────────────────────────
	images, err := infra.NewImageStore(cfg.UploadPath)
	if err != nil {
		return nil, err
	}

	// ── Repositories ─────────────────────────────────────────────────────────
	userRepo := repository.NewUserRepository(db)
	productRepo := repository.NewProductRepository(db)
	saleRepo := repository.NewSaleRepository(db)
	tillRepo := repository.NewTillRepository(db)

	// ── Services ─────────────────────────────────────────────────────────────
	authSvc := service.NewAuthService(userRepo, cfg.JWTSecret, cfg.JWTExpirationHours, cfg.JWTRefreshHours)
	catalogSvc := service.NewCatalogService(productRepo, rdb)
	tillSvc := service.NewTillService(tillRepo, saleRepo, userRepo, cfg.TillExpectedCashScope)
	checkoutSvc := service.NewCheckoutService(saleRepo, productRepo, tillSvc)
	reportSvc := service.NewReportService(saleRepo, productRepo, tillSvc)

	// ── Handlers ─────────────────────────────────────────────────────────────
	authH := handler.NewAuthHandler(authSvc)
	usersH := handler.NewUsersHandler(authSvc)
	productsH := handler.NewProductsHandler(catalogSvc, images)
	tillH := handler.NewTillHandler(tillSvc)
	salesH := handler.NewSalesHandler(checkoutSvc, storeName)
	reportsH := handler.NewReportsHandler(reportSvc)

	// ── Routes ───────────────────────────────────────────────────────────────

	// Public
	r.GET("/health", handler.Health(db, rdb))

	// Product images are public static content
	r.Static("/images/products", images.BasePath())

	// Auth (public)
	auth := r.Group("/v1/auth")
	{
		auth.POST("/login", middleware.LoginRateLimiter(), authH.Login)
		auth.POST("/refresh", authH.Refresh)
	}

	// Protected routes
	jwtMW := middleware.JWTAuth(cfg.JWTSecret)
	anyOperator := middleware.RequireRole(model.RoleCashier, model.RoleAdmin)
	adminOnly := middleware.RequireRole(model.RoleAdmin)

	v1 := r.Group("/v1", jwtMW)
	{
		// POS surface — cashier and admin
		v1.GET("/products/lookup/:code", anyOperator, productsH.Lookup)
		v1.GET("/products/search", anyOperator, productsH.Search)
		v1.POST("/sales", anyOperator, salesH.Finalize)
		v1.GET("/sales/:id", anyOperator, salesH.Get)
		v1.GET("/sales/:id/receipt", anyOperator, salesH.Receipt)

		till := v1.Group("/till")
		{
			till.POST("/open", anyOperator, tillH.Open)
			till.POST("/close", anyOperator, tillH.Close)
			till.GET("/current", anyOperator, tillH.Current)
			till.GET("/sessions/:id", adminOnly, tillH.Reconciliation)
			till.GET("/status", adminOnly, tillH.StatusBoard)
		}

		// Catalog reads — any operator (the POS needs them)
		v1.GET("/products", anyOperator, productsH.List)
		v1.GET("/products/low-stock", anyOperator, productsH.LowStock)
		v1.GET("/products/:id", anyOperator, productsH.Get)

		// Catalog writes — admin only
		products := v1.Group("/products", adminOnly)
		{
			products.POST("", productsH.Create)
			products.PUT("/:id", productsH.Update)
			products.DELETE("/:id", productsH.Deactivate)
			products.POST("/:id/reactivate", productsH.Reactivate)
			products.POST("/:id/image", productsH.UploadImage)
		}

		// Sale cancellation — admin only
		v1.DELETE("/sales/:id", adminOnly, salesH.Cancel)

		// Back-office — admin only
		reports := v1.Group("/reports", adminOnly)
		{
			reports.GET("/sales", reportsH.Sales)
			reports.GET("/sales/export", reportsH.Export)
			reports.GET("/dashboard", reportsH.Dashboard)
		}

		users := v1.Group("/users", adminOnly)
		{
			users.POST("", usersH.Create)
			users.GET("", usersH.List)
			users.GET("/:id", usersH.Get)
			users.PUT("/:id", usersH.Update)
			users.DELETE("/:id", usersH.Deactivate)
			users.POST("/:id/reactivate", usersH.Reactivate)
		}
	}

	// Swagger UI — only enabled outside production
	if cfg.Env != "production" {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	return r, nil
}
