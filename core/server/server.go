package server

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	echoSwagger "github.com/swaggo/echo-swagger"

	"resource-scheduler/core/cache"
	"resource-scheduler/core/config"
	"resource-scheduler/core/crypto"
	"resource-scheduler/core/database"
	"resource-scheduler/core/logger"
	"resource-scheduler/core/queue"
	"resource-scheduler/modules/calendar"
)

// corsConfig allows any origin. Auth is carried in the bearer header, not
// cookies, so cross-origin callers cannot ride an existing session.
func corsConfig() echomiddleware.CORSConfig {
	return echomiddleware.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAuthorization},
	}
}

// Run boots the API server and the background worker, then blocks until
// SIGINT/SIGTERM.
func Run() error {
	cfg, err := config.Init()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	db, err := database.InitDB(cfg.Database)
	if err != nil {
		return fmt.Errorf("init database: %w", err)
	}
	defer db.Close()

	redisCache, err := cache.NewCache(cfg.Redis)
	if err != nil {
		return fmt.Errorf("init cache: %w", err)
	}
	defer redisCache.Close()

	cipher, err := crypto.NewCipher(cfg.Crypto.TokenKey)
	if err != nil {
		return fmt.Errorf("init token cipher: %w", err)
	}

	e := echo.New()
	e.HideBanner = true
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.CORSWithConfig(corsConfig()))

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	calendarSvc := calendar.Init(e, db, redisCache, cipher)

	q := queue.New(cfg.Redis)
	if err := q.Start(calendarSvc); err != nil {
		return fmt.Errorf("start worker: %w", err)
	}
	defer q.Shutdown()

	if cfg.App.MigrateLegacyTokens {
		if err := q.EnqueueTokenMigration(); err != nil {
			logger.Error("Server:EnqueueTokenMigration:Error", "error", err)
		}
	}

	go func() {
		addr := fmt.Sprintf(":%d", cfg.App.Port)
		logger.Info("Server:Start", "addr", addr)
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			logger.Error("Server:Start:Error", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Server:Shutdown:Begin")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	logger.Info("Server:Shutdown:Done")
	return nil
}
