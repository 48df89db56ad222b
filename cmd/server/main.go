package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dealflow/backend/internal/config"
	"github.com/dealflow/backend/internal/database"
	"github.com/dealflow/backend/internal/handlers"
	"github.com/dealflow/backend/internal/middleware"
	"github.com/dealflow/backend/internal/services"
	"github.com/dealflow/backend/internal/storage"
	"github.com/dealflow/backend/pkg/logger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
)

func main() {
	logger.Init()

	cfg := config.Load()

	db, err := database.Connect(cfg.DB)
	if err != nil {
		log.Fatalf("database connection failed: %v", err)
	}

	storageClient, err := storage.NewMinIOClient(cfg.MinIO)
	if err != nil {
		log.Fatalf("minio initialization failed: %v", err)
	}
	if err := storageClient.EnsureBucket(context.Background()); err != nil {
		log.Fatalf("failed ensuring minio bucket: %v", err)
	}

	auditService := services.NewAuditService(db, cfg.Audit.QueueSize)
	documentService := services.NewDocumentService(db, storageClient)

	companiesHandler := handlers.NewCompaniesHandler(db, auditService)
	documentsHandler := handlers.NewDocumentsHandler(db, documentService, auditService)

	app := fiber.New(fiber.Config{BodyLimit: cfg.Server.BodyLimitMB * 1024 * 1024})
	app.Use(recover.New(recover.Config{EnableStackTrace: true}))
	app.Use(middleware.CORS())
	app.Use(middleware.RequestLogger())

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusOK).JSON(fiber.Map{"status": "ok"})
	})

	api := app.Group("/api", middleware.RequireIdentity)

	companyRoutes := api.Group("/companies")
	companyRoutes.Post("/", companiesHandler.Create)
	companyRoutes.Get("/", companiesHandler.List)
	companyRoutes.Get("/:companyId", companiesHandler.Get)

	documentRoutes := companyRoutes.Group("/:companyId/documents")
	documentRoutes.Get("/", documentsHandler.List)
	documentRoutes.Get("/tree", documentsHandler.Tree)
	documentRoutes.Post("/folder", documentsHandler.CreateFolder)
	documentRoutes.Post("/upload", documentsHandler.Upload)
	documentRoutes.Get("/:id/download", documentsHandler.Download)
	documentRoutes.Get("/:id", documentsHandler.Get)
	documentRoutes.Put("/:id", documentsHandler.Update)
	documentRoutes.Delete("/:id", documentsHandler.Delete)

	listenAddr := fmt.Sprintf(":%s", cfg.Server.Port)

	logger.Info("server_starting", map[string]interface{}{
		"port":          cfg.Server.Port,
		"address":       listenAddr,
		"body_limit_mb": cfg.Server.BodyLimitMB,
	})

	errCh := make(chan error, 1)
	go func() {
		errCh <- app.Listen(listenAddr)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-quit:
		log.Printf("shutting down server due to signal: %s", sig)
		shutdownDone := make(chan struct{})
		go func() {
			_ = app.Shutdown()
			close(shutdownDone)
		}()
		select {
		case <-shutdownDone:
		case <-time.After(10 * time.Second):
			log.Print("forced shutdown timeout reached")
		}
	case err := <-errCh:
		if err != nil {
			log.Fatalf("server error: %v", err)
		}
	}
}
