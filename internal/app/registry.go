package app

import (
	"os"
	"path/filepath"

	"github.com/Team-PayCheck/PayCheck-backend/internal/allowance"
	"github.com/Team-PayCheck/PayCheck-backend/internal/contract"
	"github.com/Team-PayCheck/PayCheck-backend/internal/deduction"
	"github.com/Team-PayCheck/PayCheck-backend/internal/holiday"
	"github.com/Team-PayCheck/PayCheck-backend/internal/messaging/kafka"
	"github.com/Team-PayCheck/PayCheck-backend/internal/middleware"
	"github.com/Team-PayCheck/PayCheck-backend/internal/payroll"
	"github.com/Team-PayCheck/PayCheck-backend/internal/shift"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"golang.org/x/time/rate"
	"gorm.io/gorm"
)

// services bundles the wired domain services so the API and the worker share
// one construction path.
type services struct {
	shifts  shift.Service
	payroll payroll.Service
	outbox  kafka.OutboxRepository
}

func taxTablePath() string {
	if p := os.Getenv("TAX_TABLE_PATH"); p != "" {
		return p
	}
	return filepath.Join("assets", "tax", "income_tax_table_2024.json")
}

func buildServices(gormDB *gorm.DB, rdb *redis.Client) (*services, error) {
	// --- Repositories ---
	contractRepo := contract.NewRepository(gormDB)
	holidayRepo := holiday.NewRepository(gormDB)
	shiftRepo := shift.NewRepository(gormDB)
	allowanceRepo := allowance.NewRepository(gormDB)
	summaryRepo := payroll.NewRepository(gormDB)
	outboxRepo := kafka.NewOutboxRepository(gormDB)

	// --- Deduction engine (fatal when the table is unreadable) ---
	engine, err := deduction.NewEngine(taxTablePath())
	if err != nil {
		return nil, err
	}

	// --- Services ---
	holidayService := holiday.NewService(holidayRepo, rdb)
	allowanceService := allowance.NewService(allowanceRepo, shiftRepo)
	payrollService := payroll.NewService(
		gormDB,
		summaryRepo,
		payroll.NewPersister(gormDB),
		shiftRepo,
		allowanceRepo,
		contractRepo,
		engine,
		outboxRepo,
	)
	shiftService := shift.NewService(
		gormDB,
		shiftRepo,
		contractRepo,
		holidayService,
		allowanceService,
		outboxRepo,
		payrollService,
	)

	return &services{
		shifts:  shiftService,
		payroll: payrollService,
		outbox:  outboxRepo,
	}, nil
}

func registerModules(router *gin.Engine, svcs *services) {
	shiftHandler := shift.NewHandler(svcs.shifts)
	payrollHandler := payroll.NewHandler(svcs.payroll)

	router.Use(middleware.RequestID())

	api := router.Group("/api/v1")
	api.Use(middleware.RateLimitByIP(rate.Limit(20), 40))
	{
		shift.RegisterRoutes(api, shiftHandler)
		payroll.RegisterRoutes(api, payrollHandler)
	}
}
