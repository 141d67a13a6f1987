package router

import (
	"time"

	"pdvcore/internal/audit"
	"pdvcore/internal/config"
	"pdvcore/internal/handler"
	"pdvcore/internal/idgen"
	"pdvcore/internal/middleware"
	"pdvcore/internal/repository"
	"pdvcore/internal/service"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Deps carries the shared singletons the router wires into services.
type Deps struct {
	DB    *gorm.DB
	RDB   *redis.Client
	IDs   idgen.Generator
	Sink  audit.Sink
	Locks *service.ProductLocks
}

// New wires all dependencies and returns the configured Gin engine plus the
// sale service, which main also needs for the startup recovery pass.
// Dependency graph: Handler ← Service ← Repository ← DB/Redis
func New(cfg *config.Config, d Deps) (*gin.Engine, service.SaleService) {
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

	diffThreshold, err := decimal.NewFromString(cfg.CloseDiffThreshold)
	if err != nil {
		diffThreshold = decimal.NewFromInt(10)
	}

	// ── Repositories ─────────────────────────────────────────────────────────
	productRepo := repository.NewProductRepository(d.DB)
	kardexRepo := repository.NewKardexRepository(d.DB)
	registerRepo := repository.NewRegisterRepository(d.DB)
	saleRepo := repository.NewSaleRepository(d.DB)
	financialRepo := repository.NewFinancialRepository(d.DB)
	intentRepo := repository.NewIntentRepository(d.DB)
	auditRepo := repository.NewAuditRepository(d.DB)

	// ── Services ─────────────────────────────────────────────────────────────
	ledgerSvc := service.NewLedgerService(productRepo, kardexRepo, d.Locks, d.IDs)
	registerSvc := service.NewRegisterService(registerRepo, d.IDs, d.Sink, diffThreshold)
	productSvc := service.NewProductService(productRepo, ledgerSvc, d.IDs, d.RDB,
		time.Duration(cfg.ProductCacheTTLSeconds)*time.Second)
	saleSvc := service.NewSaleService(saleRepo, intentRepo, financialRepo, kardexRepo,
		productRepo, ledgerSvc, registerSvc, d.Locks, d.IDs, d.Sink,
		time.Duration(cfg.RecoveryGraceSeconds)*time.Second)

	// ── Handlers ─────────────────────────────────────────────────────────────
	productsH := handler.NewProductHandler(productSvc)
	ledgerH := handler.NewLedgerHandler(ledgerSvc)
	registersH := handler.NewRegisterHandler(registerSvc)
	salesH := handler.NewSaleHandler(saleSvc)
	auditH := handler.NewAuditHandler(auditRepo)

	// ── Routes ───────────────────────────────────────────────────────────────
	r.GET("/health", handler.Health(d.DB, d.RDB))

	v1 := r.Group("/v1")
	{
		products := v1.Group("/products")
		{
			products.POST("", productsH.Create)
			products.GET("", productsH.List)
			products.GET("/alerts", productsH.StockAlerts)
			products.GET("/code/:code", productsH.GetByCode)
			products.GET("/:id", productsH.Get)
			products.POST("/:id/stock", productsH.AdjustStock)
			products.GET("/:id/kardex", ledgerH.History)
			products.GET("/:id/kardex/verify", ledgerH.Verify)
		}

		registers := v1.Group("/registers")
		{
			registers.POST("/open", registersH.Open)
			registers.GET("/current", registersH.Current)
			registers.GET("", registersH.List)
			registers.POST("/:id/movements", registersH.Movement)
			registers.POST("/:id/close", registersH.Close)
			registers.GET("/:id/summary", registersH.Summary)
			registers.GET("/:id/report", registersH.Report)
		}

		sales := v1.Group("/sales")
		{
			sales.POST("", salesH.Finalize)
			sales.GET("", salesH.List)
			sales.GET("/:id", salesH.Get)
			sales.POST("/:id/void", salesH.Void)
		}

		v1.GET("/audit", auditH.List)
	}

	// Swagger UI — only enabled outside production
	if cfg.Env != "production" {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	return r, saleSvc
}
