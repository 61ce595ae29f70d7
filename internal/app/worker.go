package app

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Team-PayCheck/PayCheck-backend/internal/messaging/kafka/producer"
	"github.com/Team-PayCheck/PayCheck-backend/internal/shared/connection"

	"go.uber.org/zap"
)

// RunWorker starts the background loops: the outbox publisher, the hourly
// auto-completion of past shifts, and the daily payroll sweep that settles
// contracts on their payday.
func RunWorker() error {
	logger := zap.L().Named("app.worker")

	gormDB, err := connection.ConnectGORMWithRetry(
		os.Getenv("DB_HOST"),
		os.Getenv("DB_USER"),
		os.Getenv("DB_PASSWORD"),
		os.Getenv("DB_NAME"),
		os.Getenv("DB_PORT"),
		os.Getenv("DB_SSLMODE"),
		5,
	)
	if err != nil {
		return err
	}

	sqlDB, err := gormDB.DB()
	if err != nil {
		return err
	}
	defer sqlDB.Close()

	redisClient, err := connection.ConnectRedisWithRetry(os.Getenv("REDIS_ADDR"), 5)
	if err != nil {
		logger.Warn("redis unavailable, continuing without cache", zap.Error(err))
		redisClient = nil
	}

	kafkaBroker := os.Getenv("KAFKA_BROKER")
	if kafkaBroker == "" {
		return fmt.Errorf("KAFKA_BROKER is required")
	}

	kafkaWriter, err := connection.ConnectKafkaWithRetry(kafkaBroker, 5)
	if err != nil {
		return err
	}
	defer kafkaWriter.Close()

	svcs, err := buildServices(gormDB, redisClient)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go producer.ProcessOutboxEvents(
		ctx,
		svcs.outbox,
		kafkaWriter,
		logger,
		3*time.Second,
	)
	go runShiftSweep(ctx, svcs, logger)
	go runPayrollSweep(ctx, svcs, logger)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("worker shutting down")
	cancel()

	return nil
}

func runShiftSweep(ctx context.Context, svcs *services, logger *zap.Logger) {
	log := logger.Named("shift.sweep")
	ticker := time.NewTicker(time.Hour)
	defer ticker.Stop()

	log.Info("shift auto-completion sweep started")

	for {
		select {
		case <-ctx.Done():
			log.Info("shift sweep stopped")
			return
		case <-ticker.C:
			if _, err := svcs.shifts.AutoCompletePast(ctx); err != nil {
				log.Error("shift sweep failed", zap.Error(err))
			}
		}
	}
}

func runPayrollSweep(ctx context.Context, svcs *services, logger *zap.Logger) {
	log := logger.Named("payroll.sweep")
	ticker := time.NewTicker(time.Hour)
	defer ticker.Stop()

	log.Info("payroll sweep started")

	// Once per calendar day, on the first tick after midnight.
	var lastRun string
	for {
		select {
		case <-ctx.Done():
			log.Info("payroll sweep stopped")
			return
		case <-ticker.C:
			now := time.Now().UTC()
			day := now.Format("2006-01-02")
			if day == lastRun {
				continue
			}
			if _, err := svcs.payroll.RunMonthlySweep(ctx, now); err != nil {
				log.Error("payroll sweep failed", zap.Error(err))
				continue
			}
			lastRun = day
		}
	}
}
