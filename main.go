// Package main provides the main entry point for the Coverbase administration platform
package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/coverbase/coverbase/app/handlers"
	"github.com/coverbase/coverbase/app/middleware"
	"github.com/coverbase/coverbase/app/router"
	"github.com/coverbase/coverbase/app/services"
	businessflow "github.com/coverbase/coverbase/business_flow"
	"github.com/coverbase/coverbase/config"
	"github.com/coverbase/coverbase/repository"
	"github.com/gofiber/fiber/v3"
	"github.com/redis/go-redis/v9"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/coverbase/coverbase/models"
	"github.com/coverbase/coverbase/utils"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Application represents the main application structure
type Application struct {
	router    *router.FiberRouter
	config    *config.ProductionConfig
	server    *fiber.App
	stopFuncs []func()
}

func main() {
	log.Println("Starting Coverbase application...")

	// Load production configuration
	cfg, err := config.LoadProductionConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	setupLogging(cfg.Logging)

	// Initialize application
	app, err := initializeApplication(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize application: %v", err)
	}

	// Setup routes
	app.router.SetupRoutes()

	// Setup graceful shutdown
	_, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle shutdown signals
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	// Start server in goroutine
	go func() {
		address := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
		log.Printf("Server starting on %s", address)

		if err := app.server.Listen(address); err != nil {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for shutdown signal
	<-sigChan
	log.Println("Shutting down gracefully...")

	// Stop background workers
	for _, fn := range app.stopFuncs {
		fn()
	}

	// Graceful shutdown
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()

	if err := app.server.ShutdownWithContext(shutdownCtx); err != nil {
		log.Printf("Error during shutdown: %v", err)
	}

	log.Println("Server stopped")
}

// setupLogging routes the standard logger to a rotating file, stdout, or both
func setupLogging(cfg config.LoggingConfig) {
	if cfg.Output == "stdout" || cfg.FilePath == "" {
		return
	}

	rotator := &lumberjack.Logger{
		Filename:   cfg.FilePath,
		MaxSize:    cfg.MaxSize,
		MaxBackups: cfg.MaxBackups,
		MaxAge:     cfg.MaxAge,
		Compress:   cfg.Compress,
	}

	switch cfg.Output {
	case "both":
		log.SetOutput(io.MultiWriter(os.Stdout, rotator))
	default:
		log.SetOutput(rotator)
	}
}

// initializeDatabase initializes the database connection with connection pooling
func initializeDatabase(cfg config.DatabaseConfig) (*gorm.DB, error) {
	dsn := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.Name, cfg.SSLMode)

	gormCfg := &gorm.Config{}
	if cfg.SlowQueryLog {
		gormCfg.Logger = gormlogger.New(log.Default(), gormlogger.Config{
			SlowThreshold:             cfg.SlowQueryTime,
			LogLevel:                  gormlogger.Warn,
			IgnoreRecordNotFoundError: true,
		})
	}

	db, err := gorm.Open(postgres.Open(dsn), gormCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Get underlying sql.DB for connection pooling configuration
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	// Configure connection pooling
	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	sqlDB.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	// Test the connection
	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	log.Printf("Database connection established with %d max open connections, %d max idle connections",
		cfg.MaxOpenConns, cfg.MaxIdleConns)

	return db, nil
}

// runMigrations applies the schema for all registered models
func runMigrations(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.Admin{},
		&models.Period{},
		&models.PremiumRate{},
		&models.Company{},
		&models.Benefit{},
		&models.CompanyBenefit{},
		&models.Member{},
		&models.Premium{},
		&models.Institution{},
		&models.Personnel{},
		&models.Procedure{},
		&models.ProviderProcedureRate{},
		&models.Claim{},
		&models.ClaimProcedure{},
		&models.AuditLog{},
	)
}

// initializeCache initializes the Cache client and verifies connectivity
func initializeCache(cfg config.CacheConfig) (*redis.Client, error) {
	if !cfg.Enabled || cfg.Provider != "redis" {
		return nil, nil
	}

	opt, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}
	// Override DB if provided in config
	opt.DB = cfg.RedisDB

	rc := redis.NewClient(opt)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rc.Ping(ctx).Err(); err != nil {
		_ = rc.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	log.Printf("Redis connection established to %s (db=%d)", cfg.RedisURL, cfg.RedisDB)
	return rc, nil
}

// startCacheHealthMonitor starts a background goroutine that periodically pings Redis
// to detect connectivity issues. The returned cancel function stops the monitor.
func startCacheHealthMonitor(parent context.Context, client *redis.Client, interval time.Duration) func() {
	monitorCtx, cancel := context.WithCancel(parent)
	if interval <= 0 {
		interval = 30 * time.Second
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-monitorCtx.Done():
				return
			case <-ticker.C:
				ctx, c := context.WithTimeout(context.Background(), 3*time.Second)
				if err := client.Ping(ctx).Err(); err != nil {
					log.Printf("Redis healthcheck failed: %v", err)
				}
				c()
			}
		}
	}()
	return cancel
}

// initializeNotificationService initializes the notification service
func initializeNotificationService(cfg *config.ProductionConfig) services.NotificationService {
	var emailProvider services.EmailProvider
	if cfg.Email.Host != "" {
		emailProvider = services.NewSMTPEmailProvider(
			cfg.Email.Host,
			cfg.Email.Port,
			cfg.Email.Username,
			cfg.Email.Password,
			cfg.Email.FromEmail,
		)
	} else {
		emailProvider = services.NewMockEmailProvider()
	}

	return services.NewNotificationService(services.NewMockSMSProvider(), emailProvider)
}

// initializeApplication initializes the main application components
func initializeApplication(cfg *config.ProductionConfig) (*Application, error) {
	var stopFuncs []func()

	// Initialize database
	db, err := initializeDatabase(cfg.Database)
	if err != nil {
		return nil, err
	}

	if err := runMigrations(db); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	rc, err := initializeCache(cfg.Cache)
	if err != nil {
		return nil, err
	}

	if rc != nil {
		cancel := startCacheHealthMonitor(context.Background(), rc, 30*time.Second)
		stopFuncs = append(stopFuncs, cancel)
	}

	// Seed the bootstrap admin account from config
	if err := ensureDefaultAdmin(db, cfg); err != nil {
		return nil, err
	}

	// Initialize repositories
	adminRepo := repository.NewAdminRepository(db)
	auditRepo := repository.NewAuditLogRepository(db)
	periodRepo := repository.NewPeriodRepository(db)
	rateRepo := repository.NewPremiumRateRepository(db)
	companyRepo := repository.NewCompanyRepository(db)
	benefitRepo := repository.NewBenefitRepository(db)
	companyBenefitRepo := repository.NewCompanyBenefitRepository(db)
	memberRepo := repository.NewMemberRepository(db)
	premiumRepo := repository.NewPremiumRepository(db)
	institutionRepo := repository.NewInstitutionRepository(db)
	personnelRepo := repository.NewPersonnelRepository(db)
	procedureRepo := repository.NewProcedureRepository(db)
	claimRepo := repository.NewClaimRepository(db)

	// Initialize services
	notificationService := initializeNotificationService(cfg)

	// Captcha service for admin login
	captchaSvc, err := services.NewCaptchaServiceRotate(
		cfg.Security.CaptchaTTL,
		cfg.Security.CaptchaPadding,
		cfg.Security.CaptchaSizePx,
	)
	if err != nil {
		return nil, err
	}

	// Initialize token service
	tokenService, err := services.NewTokenService(
		cfg.JWT.AccessTokenTTL,
		cfg.JWT.RefreshTokenTTL,
		cfg.JWT.Issuer,
		cfg.JWT.Audience,
		cfg.JWT.UseRSAKeys,
		cfg.JWT.PrivateKey,
		cfg.JWT.PublicKey,
		cfg.JWT.SecretKey,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize token service: %w", err)
	}

	log.Printf("Token service initialized with issuer: %s, audience: %s", cfg.JWT.Issuer, cfg.JWT.Audience)

	// Initialize flows
	periodFlow := businessflow.NewPeriodFlow(
		periodRepo,
		rateRepo,
		auditRepo,
		db,
		rc,
		&cfg.Cache,
	)

	companyFlow := businessflow.NewCompanyFlow(
		companyRepo,
		benefitRepo,
		companyBenefitRepo,
		premiumRepo,
		auditRepo,
		periodFlow,
		db,
	)

	premiumFlow := businessflow.NewPremiumFlow(
		companyRepo,
		memberRepo,
		premiumRepo,
		companyBenefitRepo,
		auditRepo,
		periodFlow,
		notificationService,
		db,
	)

	memberFlow := businessflow.NewMemberFlow(
		memberRepo,
		companyRepo,
		claimRepo,
		auditRepo,
		premiumFlow,
		db,
	)

	claimFlow := businessflow.NewClaimFlow(
		memberRepo,
		companyRepo,
		institutionRepo,
		personnelRepo,
		benefitRepo,
		companyBenefitRepo,
		premiumRepo,
		procedureRepo,
		claimRepo,
		auditRepo,
		periodFlow,
		notificationService,
		db,
	)

	adminAuthFlow := businessflow.NewAdminAuthFlow(
		adminRepo,
		auditRepo,
		tokenService,
		captchaSvc,
	)

	// Initialize handlers
	adminHandler := handlers.NewAdminHandler(adminAuthFlow)
	companyHandler := handlers.NewCompanyHandler(companyFlow)
	memberHandler := handlers.NewMemberHandler(memberFlow)
	premiumHandler := handlers.NewPremiumHandler(premiumFlow)
	claimHandler := handlers.NewClaimHandler(claimFlow)
	periodHandler := handlers.NewPeriodHandler(periodFlow)

	// Initialize auth middleware
	authMiddleware := middleware.NewAuthMiddleware(tokenService)

	// Initialize router
	appRouter := router.NewFiberRouter(
		adminHandler,
		companyHandler,
		memberHandler,
		premiumHandler,
		claimHandler,
		periodHandler,
		authMiddleware,
		cfg.Security.AllowedOrigins,
	)

	// Create application struct from FiberRouter
	fiberRouter := appRouter.(*router.FiberRouter)
	application := &Application{
		router:    fiberRouter,
		config:    cfg,
		server:    fiberRouter.GetApp(),
		stopFuncs: stopFuncs,
	}

	return application, nil
}

// ensureDefaultAdmin creates the bootstrap admin account if it does not exist
func ensureDefaultAdmin(db *gorm.DB, cfg *config.ProductionConfig) error {
	adminRepo := repository.NewAdminRepository(db)

	existing, err := adminRepo.ByUsername(context.Background(), cfg.Admin.Username)
	if err != nil {
		return fmt.Errorf("failed to look up admin account: %w", err)
	}
	if existing != nil {
		return nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(cfg.Admin.Password), cfg.Security.BcryptCost)
	if err != nil {
		return fmt.Errorf("failed to hash admin password: %w", err)
	}

	admin := models.Admin{
		UUID:         uuid.New(),
		Username:     cfg.Admin.Username,
		PasswordHash: string(hash),
		IsActive:     utils.ToPtr(true),
		CreatedAt:    utils.UTCNow(),
		UpdatedAt:    utils.UTCNow(),
	}
	if err := adminRepo.Save(context.Background(), &admin); err != nil {
		return fmt.Errorf("failed to seed admin account: %w", err)
	}

	log.Printf("Seeded bootstrap admin account %q", cfg.Admin.Username)
	return nil
}
