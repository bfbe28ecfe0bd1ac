package main

import (
	"flag"
	"fmt"

	"github.com/AutoServe360/AutoServe360/internal/billing"
	"github.com/AutoServe360/AutoServe360/internal/common/clock"
	"github.com/AutoServe360/AutoServe360/internal/common/config"
	"github.com/AutoServe360/AutoServe360/internal/common/db"
	"github.com/AutoServe360/AutoServe360/internal/common/logger"
	"github.com/AutoServe360/AutoServe360/internal/common/middleware"
	"github.com/AutoServe360/AutoServe360/internal/common/server"
	"github.com/AutoServe360/AutoServe360/internal/common/tracing"
	"github.com/AutoServe360/AutoServe360/internal/inventory"
	"github.com/AutoServe360/AutoServe360/internal/job"
	"github.com/AutoServe360/AutoServe360/internal/realtime"
	"github.com/AutoServe360/AutoServe360/internal/report"
	"github.com/AutoServe360/AutoServe360/internal/user"
	"github.com/AutoServe360/AutoServe360/internal/vehicle"
	"github.com/gin-gonic/gin"
)

var (
	configPath = flag.String("config", "configs/autoserve-api.json", "配置文件路径")
)

func main() {
	flag.Parse()

	// 加载配置
	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		panic(fmt.Sprintf("failed to load config: %v", err))
	}

	// 初始化日志
	log, err := logger.NewLogger(cfg.Log.Level, cfg.Log.Format, cfg.Log.Output, cfg.Log.Path)
	if err != nil {
		panic(fmt.Sprintf("failed to init logger: %v", err))
	}

	// 初始化链路追踪
	tracer, closer, err := tracing.InitTracer(
		cfg.Server.Name,
		cfg.Jaeger.Endpoint,
		cfg.Jaeger.Sampler,
	)
	if err != nil {
		log.Warnf("failed to init tracer: %v", err)
	} else {
		defer closer.Close()
	}
	_ = tracer

	// 初始化数据库
	gdb, err := db.NewMySQL(
		cfg.Database.Host,
		cfg.Database.Port,
		cfg.Database.User,
		cfg.Database.Password,
		cfg.Database.Database,
		cfg.Database.MaxIdle,
		cfg.Database.MaxOpen,
	)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}
	if err := gdb.AutoMigrate(
		&user.User{},
		&vehicle.Customer{},
		&vehicle.Vehicle{},
		&job.JobCard{},
		&job.ServiceTask{},
		&inventory.Part{},
		&inventory.PartUsage{},
		&billing.Invoice{},
	); err != nil {
		log.Fatalf("failed to migrate schema: %v", err)
	}

	clk := clock.Real()
	hub := realtime.NewHub(log)

	// 领域服务
	userSvc := user.NewService(user.NewRepo(gdb), cfg.Auth)
	jobSvc := job.NewService(gdb, clk, hub)
	ledger := inventory.NewLedger(gdb, clk, hub)
	billingSvc := billing.NewService(gdb, clk, hub, cfg.Billing)
	reportSvc := report.NewService(gdb)

	// HTTP handlers
	userHandler := user.NewHandler(userSvc)
	vehicleHandler := vehicle.NewHandler(vehicle.NewRepo(gdb))
	jobHandler := job.NewHandler(jobSvc, billingSvc)
	inventoryHandler := inventory.NewHandler(ledger)
	billingHandler := billing.NewHandler(billingSvc, jobSvc, ledger)
	reportHandler := report.NewHandler(reportSvc, clk)

	err = server.RunHTTPServer(cfg, log, func(r *gin.Engine) error {
		r.GET("/ws", func(c *gin.Context) {
			hub.HandleWS(c.Writer, c.Request)
		})

		api := r.Group("/api")
		userHandler.RegisterRoutes(api)
		vehicleHandler.RegisterRoutes(api)
		jobHandler.RegisterRoutes(api)
		inventoryHandler.RegisterRoutes(api)
		billingHandler.RegisterRoutes(api)
		reportHandler.RegisterRoutes(api)
		return nil
	}, server.WithRateLimit(middleware.NewTokenBucket(200, 100)))
	if err != nil {
		log.Fatalf("autoserve-api exited with error: %v", err)
	}
}
