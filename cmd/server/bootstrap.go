package main

import (
	"os"

	"github.com/promptdir/backend/internal/config"
	"github.com/promptdir/backend/internal/handlers"
	"github.com/promptdir/backend/internal/models"
	"github.com/promptdir/backend/internal/services"
	"github.com/promptdir/backend/internal/utils"
	"github.com/promptdir/backend/pkg/logger"
)

// appServices holds all initialized services and handlers needed by the application.
type appServices struct {
	scheduler      *services.Scheduler
	taskQueue      services.TaskQueue
	worker         *services.Worker
	webhookHandler *handlers.WebhookHandler
}

// bootstrap initializes all application dependencies: database, services, schedulers.
func bootstrap(cfg *config.Config) *appServices {
	utils.SetJWTSecret(cfg.JWT.Secret)

	// Initialize database
	if err := models.InitDB(&cfg.Database); err != nil {
		logger.Fatalf("Failed to connect to database: %v", err)
	}

	// Auto migrate database
	if err := models.AutoMigrate(); err != nil {
		logger.Fatalf("Failed to migrate database: %v", err)
	}

	// Seed default data
	if err := models.SeedDefaultData(&cfg.AI); err != nil {
		logger.Warn().Err(err).Msg("Failed to seed default data")
	}

	// Start system log cleanup
	services.StartLogCleanup()

	// Start the category recount scheduler
	scheduler := services.NewScheduler(models.GetDB())
	if err := scheduler.Start(); err != nil {
		logger.Warn().Err(err).Msg("Failed to start scheduler")
	}

	// Initialize task queue (uses Redis if enabled, otherwise sync mode)
	webhookHandler := handlers.NewWebhookHandler(models.GetDB(), &cfg.Identity)
	taskQueue := services.InitTaskQueue(cfg)
	if syncQueue, ok := taskQueue.(*services.SyncQueue); ok {
		syncQueue.SetProcessor(webhookHandler.Service().Process)
	}

	// Start async worker if Redis is enabled
	var worker *services.Worker
	if cfg.Redis.Enabled {
		worker = services.InitWorker(&cfg.Redis)
		if worker != nil {
			worker.SetProcessor(webhookHandler.Service().Process)
			worker.Start()
		}
	}

	// Seed the initial admin account from the environment
	authService := services.NewAuthService(models.GetDB(), cfg.JWT.ExpireHour)
	adminName := os.Getenv("ADMIN_NAME")
	if adminName == "" {
		adminName = "Admin"
	}
	if err := authService.CreateAdminIfNotExists(os.Getenv("ADMIN_EMAIL"), os.Getenv("ADMIN_PASSWORD"), adminName); err != nil {
		logger.Warn().Err(err).Msg("Failed to create admin user")
	}

	return &appServices{
		scheduler:      scheduler,
		taskQueue:      taskQueue,
		worker:         worker,
		webhookHandler: webhookHandler,
	}
}

// shutdown gracefully stops all services.
func (s *appServices) shutdown() {
	s.scheduler.Stop()
	logger.Info().Msg("Scheduler stopped")

	if s.worker != nil {
		s.worker.Stop()
	}
	if s.taskQueue != nil {
		s.taskQueue.Close()
	}
}
