// Package main запускает HTTP-сервер сервиса трансферов.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/mmeshcher/transferdesk/internal/config"
	"github.com/mmeshcher/transferdesk/internal/handler"
	"github.com/mmeshcher/transferdesk/internal/middleware"
	"github.com/mmeshcher/transferdesk/internal/model"
	"github.com/mmeshcher/transferdesk/internal/notify"
	"github.com/mmeshcher/transferdesk/internal/repository"
	"github.com/mmeshcher/transferdesk/internal/service"
)

func main() {
	logger, _ := zap.NewProduction()
	defer logger.Sync()

	sugar := logger.Sugar()

	cfg, err := config.Parse()
	if err != nil {
		sugar.Fatalw("configuration error", "error", err.Error())
	}

	repo, err := repository.NewPostgresRepository(cfg.DatabaseURI)
	if err != nil {
		sugar.Fatalw("database initialization error", "error", err.Error())
	}
	defer repo.Close()

	var notifyClient *notify.Client
	if cfg.NotifyAddress != "" {
		notifyClient = notify.NewClient(cfg.NotifyAddress)
	}

	svc := service.NewService(repo, notifyClient)
	defer svc.Close()

	settings := model.DefaultSettings()
	if cfg.Currency != "" {
		settings.Currency = cfg.Currency
	}
	if cfg.DateLayout != "" {
		settings.DateLayout = cfg.DateLayout
	}

	authMiddleware := middleware.NewAuthMiddleware(cfg.AuthSecret)
	h := handler.NewHandler(svc, logger, authMiddleware, settings)

	r := h.SetupRouter()

	server := &http.Server{
		Addr:    cfg.RunAddress,
		Handler: r,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)

	// Запуск фонового процесса продвижения статусов услуг
	g.Go(func() error {
		svc.StartStatusUpdates(ctx, time.Minute)
		return nil
	})

	// Запуск HTTP-сервера
	g.Go(func() error {
		sugar.Infow("starting transferdesk server", "addr", cfg.RunAddress)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	// Graceful shutdown при отмене контекста (сигнал или ошибка в другой горутине)
	g.Go(func() error {
		<-ctx.Done()
		sugar.Info("shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server shutdown error: %w", err)
		}
		sugar.Info("server stopped gracefully")
		return nil
	})

	if err := g.Wait(); err != nil {
		sugar.Fatalw("application terminated with error", "error", err)
	}
}
