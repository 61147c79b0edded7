package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"automarket/internal/config"
	"automarket/internal/handler"
	"automarket/internal/infrastructure/cache"
	"automarket/internal/infrastructure/database"
	"automarket/internal/infrastructure/mq"
	"automarket/internal/job"
	"automarket/pkg/idgen"
)

func main() {
	logrus.SetFormatter(&logrus.JSONFormatter{})

	cfg := config.LoadConfig("config/config.yaml")

	idgen.Init(1)

	db := database.InitMySQL(&cfg.MySQL)
	redisClient := cache.InitRedis(&cfg.Redis)

	mq.InitKafka(&cfg.Kafka)
	defer mq.CloseKafka()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	outboxSender := job.NewOutboxSender(db, cfg)
	go outboxSender.Start(ctx)

	maintenanceJob := job.NewPromotionMaintenanceJob(db, cfg)
	go maintenanceJob.Start(ctx)

	router := handler.SetupRouter(db, redisClient, cfg)

	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: router,
	}

	go func() {
		logrus.Infof("server listening on port %d", cfg.Server.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logrus.Fatalf("server failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logrus.Info("shutting down...")

	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logrus.Errorf("shutdown error: %v", err)
	}

	logrus.Info("server stopped")
}
