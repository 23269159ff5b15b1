package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gabrielbaute/octopus-photos/config"
	"github.com/gabrielbaute/octopus-photos/database"
	"github.com/gabrielbaute/octopus-photos/handlers"
	"github.com/gabrielbaute/octopus-photos/logger"
	"github.com/gabrielbaute/octopus-photos/middleware"
	"github.com/gabrielbaute/octopus-photos/models"
	"github.com/gabrielbaute/octopus-photos/repositories"
	"github.com/gabrielbaute/octopus-photos/services"

	"github.com/gin-gonic/gin"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to configuration file")
	flag.Parse()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		logger.Errorf("failed to load config: %v", err)
		return
	}
	logger.SetLevel(cfg.LogLevel)

	db, err := database.InitMySQL(cfg.Database)
	if err != nil {
		logger.Errorf("%v", err)
		return
	}
	if err := db.AutoMigrate(&models.User{}, &models.UserStorage{}, &models.Photo{}, &models.Album{}); err != nil {
		logger.Errorf("failed to migrate database: %v", err)
		return
	}

	redisClient, err := database.InitRedis(cfg.Redis)
	if err != nil {
		logger.Errorf("%v", err)
		return
	}

	repoContainer := repositories.NewGormRepositories(db, redisClient).BuildContainer()
	svcContainer := services.BuildContainer(&repoContainer, cfg.Storage.BasePath)
	handlers.SetServices(svcContainer)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	svcContainer.Memories.StartWorker(ctx)

	if !logger.IsDebugEnabled() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := setupRouter()

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	server := &http.Server{Addr: addr, Handler: router}

	go func() {
		logger.Infof("server listening on %s", addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Errorf("server error: %v", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Infof("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Errorf("shutdown error: %v", err)
	}
}

func setupRouter() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), middleware.RequestLogger(), middleware.CORSMiddleware())

	api := router.Group("/api")
	api.GET("/health", handlers.Health)
	api.POST("/auth/register", handlers.Register)
	api.POST("/auth/login", handlers.Login)

	authed := api.Group("", middleware.AuthMiddleware())
	{
		authed.GET("/profile", handlers.GetProfile)
		authed.DELETE("/account", handlers.DeleteAccount)

		authed.GET("/storage", handlers.GetStorageUsage)
		authed.POST("/storage/reconcile", handlers.ReconcileStorage)

		authed.POST("/photos", handlers.UploadPhoto)
		authed.GET("/photos", handlers.ListPhotos)
		authed.GET("/photos/:id", handlers.GetPhoto)
		authed.PATCH("/photos/:id", handlers.UpdatePhoto)
		authed.DELETE("/photos/:id", handlers.TrashPhoto)
		authed.GET("/photos/:id/download", handlers.DownloadPhoto)
		authed.GET("/photos/:id/thumbnail", handlers.GetThumbnail)
		authed.POST("/photos/:id/restore", handlers.RestorePhoto)
		authed.DELETE("/photos/:id/purge", handlers.PurgePhoto)

		authed.POST("/photos/:id/vault/lock", handlers.LockPhoto)
		authed.POST("/photos/:id/vault/unlock", handlers.UnlockPhoto)
		authed.POST("/photos/:id/vault/thumbnail", handlers.UnlockThumbnail)

		authed.GET("/trash", handlers.ListTrash)
		authed.GET("/memories", handlers.ListMemories)

		authed.POST("/albums", handlers.CreateAlbum)
		authed.GET("/albums", handlers.ListAlbums)
		authed.GET("/albums/:id", handlers.GetAlbum)
		authed.PATCH("/albums/:id", handlers.RenameAlbum)
		authed.DELETE("/albums/:id", handlers.DeleteAlbum)
		authed.POST("/albums/:id/photos/:photoId", handlers.AddPhotoToAlbum)
		authed.DELETE("/albums/:id/photos/:photoId", handlers.RemovePhotoFromAlbum)
	}

	return router
}
