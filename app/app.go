package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	_ "merchant-notification-service/ddd/adapter/http"
	"merchant-notification-service/ddd/infrastructure/database/po"
	"merchant-notification-service/internal/resource"
	"merchant-notification-service/pkg/config"
	"merchant-notification-service/pkg/logger"
	"merchant-notification-service/pkg/manager"
	"merchant-notification-service/pkg/middleware"
	"merchant-notification-service/pkg/redisclient"
	"merchant-notification-service/pkg/repository"
)

const serviceName = "merchant-notification-service"

// Run is the entrypoint of merchant-notification-service.
func Run() {
	fmt.Println("[STARTUP] Starting merchant notification service...")

	cfgPath := resolveConfigPath()
	cfg, err := config.Load(cfgPath)
	if err != nil {
		fmt.Printf("[ERROR] Failed to load config (%s): %v\n", cfgPath, err)
		os.Exit(1)
	}
	config.SetGlobalConfig(cfg)
	fmt.Printf("[STARTUP] Config file loaded: %s\n", cfgPath)

	logService := logger.NewLogger(cfg)
	logger.SetGlobalLogger(logService)
	logger.Infof("Merchant notification service starting store=%s", cfg.Store.Driver)

	deps, closeStores, err := openStores(cfg)
	if err != nil {
		logger.Fatal(fmt.Sprintf("Failed to initialize store error=%v", err))
	}
	defer closeStores()
	applyDependencies(deps)

	router := newRouter()

	port := fmt.Sprintf(":%d", cfg.Server.Port)
	server := &http.Server{
		Addr:         port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		logger.Infof("HTTP server starting port=%s service=%s", port, serviceName)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal(fmt.Sprintf("Failed to start HTTP server error=%v", err))
		}
	}()

	logger.Infof("HTTP server started port=%s health_url=%s", port, fmt.Sprintf("http://localhost%s/health", port))

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Infof("Received shutdown signal, shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logger.Errorf("Server forced to close error=%v", err)
	}

	logger.Infof("Server exited safely")
	logService.Close()
}

// openStores connects the configured notification store and, when enabled,
// Redis. A Redis failure only disables the candidate cache.
func openStores(cfg *config.Config) (*manager.Dependencies, func(), error) {
	deps := &manager.Dependencies{Config: cfg}
	var closers []func()
	closeAll := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	switch cfg.Store.Driver {
	case config.StoreDriverMySQL:
		logger.Infof("Initializing database connection...")
		db, err := repository.NewDatabase(&cfg.Database)
		if err != nil {
			return nil, func() {}, err
		}
		closers = append(closers, db.Close)
		if err := db.Migrate(&po.NotificationRow{}); err != nil {
			closeAll()
			return nil, func() {}, err
		}
		deps.DB = db.Self
	default:
		logger.Infof("Initializing mongo connection...")
		store, err := repository.NewMongoStore(&cfg.Mongo)
		if err != nil {
			return nil, func() {}, err
		}
		closers = append(closers, store.Close)
		deps.Collection = store.Collection
	}
	logger.Infof("Notification store connected driver=%s", cfg.Store.Driver)

	if cfg.Redis.Enabled {
		logger.Infof("Initializing Redis client...")
		cli, err := redisclient.New(cfg.Redis)
		if err != nil {
			logger.Errorf("Failed to initialize redis; candidate cache disabled error=%v", err)
		} else {
			closers = append(closers, func() {
				logger.Infof("Closing Redis client...")
				_ = cli.Close()
			})
			deps.Redis = cli.Raw()
		}
	}
	return deps, closeAll, nil
}

// applyDependencies publishes the store handles to the resource package,
// where init-registered controllers pick them up.
func applyDependencies(deps *manager.Dependencies) {
	if deps.DB != nil {
		resource.SetMainDB(deps.DB)
	}
	if deps.Collection != nil {
		resource.SetNotificationCollection(deps.Collection)
	}
	if deps.Redis != nil {
		resource.SetRedisClient(deps.Redis)
	}
}

func newRouter() *gin.Engine {
	router := gin.New()
	router.Use(
		gin.Recovery(),
		middleware.RequestContextMiddleware(),
		middleware.RequestLogMiddleware(),
	)

	router.GET("/health", healthHandler)

	logger.Infof("Registering routes...")
	registerRoutes(router)
	logger.Infof("Routes registered")
	return router
}

func healthHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "ok",
		"service":   serviceName,
		"timestamp": time.Now().Unix(),
	})
}

// resolveConfigPath determines which config file to use.
func resolveConfigPath() string {
	if path := os.Getenv("CONFIG_PATH"); path != "" {
		return path
	}
	if env := os.Getenv("CONFIG_ENV"); env != "" {
		return fmt.Sprintf("configs/config.%s.yaml", env)
	}
	return "configs/config.dev.yaml"
}
