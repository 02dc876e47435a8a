package main

import (
	"flag"
	"fmt"

	"github.com/CarTradeLink/CarTradeLink/internal/account"
	"github.com/CarTradeLink/CarTradeLink/internal/admin"
	"github.com/CarTradeLink/CarTradeLink/internal/car"
	"github.com/CarTradeLink/CarTradeLink/internal/common/auth"
	"github.com/CarTradeLink/CarTradeLink/internal/common/config"
	"github.com/CarTradeLink/CarTradeLink/internal/common/db"
	"github.com/CarTradeLink/CarTradeLink/internal/common/logger"
	"github.com/CarTradeLink/CarTradeLink/internal/common/middleware"
	"github.com/CarTradeLink/CarTradeLink/internal/common/server"
	"github.com/CarTradeLink/CarTradeLink/internal/common/tracing"
	"github.com/CarTradeLink/CarTradeLink/internal/deal"
	"github.com/CarTradeLink/CarTradeLink/internal/dealership"
	"github.com/CarTradeLink/CarTradeLink/internal/soldvehicle"
	"github.com/CarTradeLink/CarTradeLink/internal/user"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

var (
	configPath = flag.String("config", "configs/marketplace-service.json", "配置文件路径")
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
	gormDB, err := db.NewMySQL(
		cfg.Database.Host,
		cfg.Database.Port,
		cfg.Database.User,
		cfg.Database.Password,
		cfg.Database.Database,
		cfg.Database.MaxIdle,
		cfg.Database.MaxOpen,
	)
	if err != nil {
		log.Fatalf("failed to init mysql: %v", err)
	}
	if err := gormDB.AutoMigrate(
		&user.User{},
		&dealership.Dealership{},
		&admin.Admin{},
		&car.Car{},
		&deal.Deal{},
		&soldvehicle.SoldVehicle{},
	); err != nil {
		log.Fatalf("failed to migrate mysql schema: %v", err)
	}

	// 初始化 Redis（目录缓存）
	rdb := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Redis.Host, cfg.Redis.Port),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
		PoolSize: cfg.Redis.PoolSize,
	})

	// 数据访问层
	userRepo := user.NewRepo(gormDB)
	dealershipRepo := dealership.NewRepo(gormDB)
	adminRepo := admin.NewRepo(gormDB)
	carRepo := car.NewRepo(gormDB)
	dealRepo := deal.NewRepo(gormDB)
	ledgerRepo := soldvehicle.NewRepo(gormDB)

	// 领域服务
	userSvc := user.NewService(userRepo, carRepo, ledgerRepo)
	dealershipSvc := dealership.NewService(dealershipRepo, carRepo, ledgerRepo, userRepo)
	adminSvc := admin.NewService(adminRepo)
	dealSvc := deal.NewService(dealRepo, carRepo)

	// 交易协调器：唯一的购买写入路径
	coordinator := deal.NewCoordinator(
		deal.NewGormStore(gormDB, cfg.Purchase.CommitTimeout()),
		cfg.Purchase,
		log,
	)

	catalogCache := car.NewCatalogCache(rdb)
	purchaseLimiter := middleware.NewTokenBucket(100, 50)

	// HTTP 接入层
	carHandler := car.NewHTTPHandler(carRepo, catalogCache, log)
	userHandler := user.NewHTTPHandler(userSvc, log)
	dealershipHandler := dealership.NewHTTPHandler(dealershipSvc, carHandler, log)
	adminHandler := admin.NewHTTPHandler(adminSvc, log)
	dealHandler := deal.NewHTTPHandler(dealSvc, coordinator, purchaseLimiter, carHandler, log)
	accountHandler := account.NewHTTPHandler(map[auth.Role]auth.AccountStore{
		auth.RoleBuyer:  userSvc,
		auth.RoleDealer: dealershipSvc,
		auth.RoleAdmin:  adminSvc,
	}, cfg.Auth, log)

	// 启动统一的 HTTP 服务模板
	if err := server.RunHTTPServer(cfg, log, func(r *gin.Engine) error {
		api := r.Group("/api/v1")
		accountHandler.RegisterRoutes(api)
		carHandler.RegisterRoutes(api)
		userHandler.RegisterRoutes(api)
		dealershipHandler.RegisterRoutes(api)
		adminHandler.RegisterRoutes(api)
		dealHandler.RegisterRoutes(api)
		return nil
	}); err != nil {
		log.Fatalf("marketplace-service exited with error: %v", err)
	}
}
