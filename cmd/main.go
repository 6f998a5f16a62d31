package main

import (
	"context"

	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"github.com/adeiltonpessini/vet-care-infinity-sub000/internal/handler"
	"github.com/adeiltonpessini/vet-care-infinity-sub000/internal/identity"
	"github.com/adeiltonpessini/vet-care-infinity-sub000/internal/middleware"
	"github.com/adeiltonpessini/vet-care-infinity-sub000/internal/model"
	"github.com/adeiltonpessini/vet-care-infinity-sub000/internal/store"
	"github.com/adeiltonpessini/vet-care-infinity-sub000/pkg/config"
	"github.com/adeiltonpessini/vet-care-infinity-sub000/pkg/database"
	"github.com/adeiltonpessini/vet-care-infinity-sub000/pkg/feed"
	"github.com/adeiltonpessini/vet-care-infinity-sub000/pkg/jwtutil"
	"github.com/adeiltonpessini/vet-care-infinity-sub000/pkg/logger"
	"github.com/adeiltonpessini/vet-care-infinity-sub000/prometheus"
)

func main() {
	// Load configuration from .env file and environment variables
	cfg, err := config.Load("vetcare-api")
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger with config
	if err := logger.InitLogger(&logger.LogConfig{
		Level:       cfg.Log.Level,
		Environment: cfg.Server.Env,
		ServiceName: cfg.ServiceName,
	}); err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	log := logger.GetLogger()
	log.Info("Starting vetcare service...", cfg.LogConfig()...)

	// Initialize database
	db, err := database.InitDB(&cfg.DB)
	if err != nil {
		log.Fatal("Failed to initialize database", zap.Error(err))
	}
	log.Info("Database connection established")

	if err := database.MigrateModels(db,
		&model.Organization{},
		&model.User{},
		&model.Animal{},
		&model.Product{},
		&model.InventoryItem{},
		&model.Prescription{},
		&model.Vaccination{},
		&model.Diagnostic{},
		&model.Event{},
		&model.Formula{},
		&model.Integration{},
		&model.UsageMetric{},
	); err != nil {
		log.Fatal("Failed to migrate models", zap.Error(err))
	}

	idp := identity.NewLocalProvider(db, cfg.Auth.BcryptCost)
	if err := idp.Migrate(); err != nil {
		log.Fatal("Failed to migrate credentials", zap.Error(err))
	}

	// Initialize JWT utility
	jwtUtil := jwtutil.NewJWTUtil((*jwtutil.JWTConfig)(&cfg.JWT))
	log.Info("JWT utility initialized")

	// Initialize Prometheus metrics
	prometheus.InitMetrics()
	log.Info("Prometheus metrics initialized")

	// Connect the change feed. The service runs fine without it; stores
	// treat a nil feed as inert.
	var changeFeed *feed.Feed
	if cfg.Feed.Enabled {
		changeFeed, err = feed.Connect(feed.Config{
			URL:           cfg.Feed.URL,
			Embed:         cfg.Feed.Embed,
			SubjectPrefix: cfg.Feed.Subject,
		}, log)
		if err != nil {
			log.Fatal("Failed to connect change feed", zap.Error(err))
		}
		defer changeFeed.Close()
	}

	// Wire stores. The metrics aggregator comes first since counted
	// resources depend on it for plan limit checks.
	timeout := cfg.DB.OpTimeout
	metrics := store.NewMetricsAggregator(db, timeout, changeFeed)
	orgs := store.NewOrganizationRegistry(db, timeout, changeFeed)
	users := store.NewUserDirectory(db, timeout, changeFeed, idp, metrics)
	animals := store.NewAnimalStore(db, timeout, changeFeed, metrics)
	products := store.NewProductStore(db, timeout, changeFeed, metrics)
	clinical := store.NewClinicalStore(db, timeout, changeFeed)
	catalog := store.NewCatalogStore(db, timeout, changeFeed)
	onboarder := store.NewOnboarder(db, timeout, changeFeed, idp, metrics, log)

	if err := users.PromoteSuperadmin(context.Background(), cfg.Auth.SuperadminEmail); err != nil {
		log.Warn("Superadmin promotion failed", zap.Error(err))
	}
	if err := metrics.SubscribeFeed(); err != nil {
		log.Warn("Usage metric feed subscription failed", zap.Error(err))
	}

	authHandler := handler.NewAuthHandler(idp, users, onboarder, jwtUtil)
	orgHandler := handler.NewOrganizationHandler(orgs)
	teamHandler := handler.NewTeamHandler(users)
	animalHandler := handler.NewAnimalHandler(animals)
	productHandler := handler.NewProductHandler(products)
	clinicalHandler := handler.NewClinicalHandler(clinical)
	catalogHandler := handler.NewCatalogHandler(catalog)
	healthHandler := handler.NewHealthHandler(cfg.ServiceName)

	// Initialize Echo framework
	e := echo.New()

	// Apply global middleware - order matters
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.CORS())
	e.Use(middleware.RequestIDMiddleware())
	e.Use(logger.Middleware())
	e.Use(prometheus.MetricsMiddleware())

	// Public routes - no authentication required
	e.GET("/health", healthHandler.HealthCheck)
	e.GET("/metrics", echo.WrapHandler(prometheus.GetPrometheusHandler()))

	// Authentication routes
	auth := e.Group("/auth")
	auth.POST("/login", authHandler.Login)
	auth.POST("/register", authHandler.Register)

	// API routes - all require authentication
	api := e.Group("/api")
	api.Use(middleware.JWTAuthMiddleware(jwtUtil))

	// Profile
	profile := api.Group("/users")
	profile.GET("/profile", authHandler.GetProfile)
	profile.PATCH("/profile", authHandler.UpdateProfile)

	// Organization management - superadmin surface plus member reads
	orgGroup := api.Group("/organizations")
	orgGroup.POST("", orgHandler.Create)
	orgGroup.GET("", orgHandler.List)
	orgGroup.GET("/:id", orgHandler.Get)
	orgGroup.PATCH("/:id", orgHandler.Update)
	orgGroup.DELETE("/:id", orgHandler.Delete)

	// Team management - requires an organization context
	team := api.Group("/team", middleware.RequireOrgContext)
	team.GET("", teamHandler.List)
	team.POST("", teamHandler.Invite)
	team.PATCH("/:id/role", teamHandler.AssignRole)
	team.DELETE("/:id", teamHandler.Remove)

	// Tenant-scoped resources
	resources := api.Group("", middleware.RequireOrgContext)

	animalsGroup := resources.Group("/animals")
	animalsGroup.GET("", animalHandler.List)
	animalsGroup.POST("", animalHandler.Create)
	animalsGroup.GET("/:id", animalHandler.Get)
	animalsGroup.PATCH("/:id", animalHandler.Update)
	animalsGroup.DELETE("/:id", animalHandler.Delete)

	productsGroup := resources.Group("/products")
	productsGroup.GET("", productHandler.List)
	productsGroup.POST("", productHandler.Create)
	productsGroup.GET("/:id", productHandler.Get)
	productsGroup.PATCH("/:id", productHandler.Update)
	productsGroup.DELETE("/:id", productHandler.Delete)

	inventory := resources.Group("/inventory")
	inventory.GET("", productHandler.ListInventory)
	inventory.POST("", productHandler.CreateInventory)
	inventory.PATCH("/:id", productHandler.UpdateInventory)
	inventory.DELETE("/:id", productHandler.DeleteInventory)

	prescriptions := resources.Group("/prescriptions")
	prescriptions.GET("", clinicalHandler.ListPrescriptions)
	prescriptions.POST("", clinicalHandler.CreatePrescription)
	prescriptions.PATCH("/:id", clinicalHandler.UpdatePrescription)
	prescriptions.DELETE("/:id", clinicalHandler.DeletePrescription)

	vaccinations := resources.Group("/vaccinations")
	vaccinations.GET("", clinicalHandler.ListVaccinations)
	vaccinations.POST("", clinicalHandler.CreateVaccination)
	vaccinations.PATCH("/:id", clinicalHandler.UpdateVaccination)
	vaccinations.DELETE("/:id", clinicalHandler.DeleteVaccination)

	diagnostics := resources.Group("/diagnostics")
	diagnostics.GET("", clinicalHandler.ListDiagnostics)
	diagnostics.POST("", clinicalHandler.CreateDiagnostic)
	diagnostics.PATCH("/:id", clinicalHandler.UpdateDiagnostic)
	diagnostics.DELETE("/:id", clinicalHandler.DeleteDiagnostic)

	events := resources.Group("/events")
	events.GET("", clinicalHandler.ListEvents)
	events.POST("", clinicalHandler.CreateEvent)
	events.PATCH("/:id", clinicalHandler.UpdateEvent)
	events.DELETE("/:id", clinicalHandler.DeleteEvent)

	formulas := resources.Group("/formulas")
	formulas.GET("", catalogHandler.ListFormulas)
	formulas.POST("", catalogHandler.CreateFormula)
	formulas.PATCH("/:id", catalogHandler.UpdateFormula)
	formulas.DELETE("/:id", catalogHandler.DeleteFormula)

	integrations := resources.Group("/integrations")
	integrations.GET("", catalogHandler.ListIntegrations)
	integrations.POST("", catalogHandler.CreateIntegration)
	integrations.PATCH("/:id", catalogHandler.UpdateIntegration)
	integrations.DELETE("/:id", catalogHandler.DeleteIntegration)

	// Start server
	port := cfg.Server.Port
	log.Info("Starting server", zap.String("port", port))
	if err := e.Start(":" + port); err != nil {
		log.Fatal("Failed to start server", zap.Error(err))
	}
}
