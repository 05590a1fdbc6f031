package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/integration-system/backend/internal/config"
	"github.com/integration-system/backend/internal/employee"
	"github.com/integration-system/backend/internal/handler"
	"github.com/integration-system/backend/internal/identity"
	"github.com/integration-system/backend/internal/mailer"
	"github.com/integration-system/backend/internal/mirror"
	"github.com/integration-system/backend/internal/notification"
	"github.com/integration-system/backend/internal/payroll"
	"github.com/integration-system/backend/internal/repository"
	"github.com/integration-system/backend/internal/utils"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"

	_ "github.com/jackc/pgx/v5/stdlib"
)

func main() {
	/**********************************************
	 * 创建 logger
	 **********************************************/
	logger := utils.NewLogger(nil, os.Stdout)
	slog.SetDefault(logger)

	/**********************************************
	 * 加载配置
	 **********************************************/
	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Error("无法加载配置文件", "error", err)
		return
	}

	/**********************************************
	 * 连接主库
	 **********************************************/
	dbpool, err := sql.Open("pgx", cfg.Database.DSN)
	if err != nil {
		logger.Error("无法创建数据库连接池", "error", err)
		return
	}
	defer dbpool.Close()

	dbpool.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	dbpool.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	dbpool.SetConnMaxIdleTime(time.Duration(cfg.Database.MaxIdleTime) * time.Second)

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.Database.ConnectTimeout)*time.Second)
	defer cancel()

	// sql.Open 只是创建数据库连接池对象，并不会立即连接到数据库，因此需要显式地 ping 一下
	if err := dbpool.PingContext(ctx); err != nil {
		logger.Error("无法连接到数据库", "error", err)
		return
	}

	repo := repository.NewRepository(cfg, dbpool)
	if err := repo.Migrate(ctx); err != nil {
		logger.Error("无法初始化主库表结构", "error", err)
		return
	}

	/**********************************************
	 * 打开副库
	 **********************************************/
	mirrorDB, err := mirror.Open(cfg)
	if err != nil {
		logger.Error("无法打开副库", "error", err)
		return
	}
	if sqlDB, err := mirrorDB.DB(); err == nil {
		defer sqlDB.Close()
	}

	/**********************************************
	 * 身份系统：确保角色存在，必要时创建初始管理员
	 **********************************************/
	bridge := identity.NewBridge(cfg, repo)
	if err := bridge.EnsureRoles(ctx); err != nil {
		logger.Error("无法创建系统角色", "error", err)
		return
	}

	if cfg.InitialAdmin.Password != "" {
		hasAdmin, err := bridge.HasAdmin(ctx)
		if err != nil {
			logger.Error("无法查询管理员", "error", err)
			return
		}
		if !hasAdmin {
			if _, err := bridge.CreateAdmin(ctx, cfg.InitialAdmin.Username, cfg.InitialAdmin.Email, cfg.InitialAdmin.Password); err != nil {
				logger.Error("无法创建初始管理员", "error", err)
				return
			}
			logger.Info("已创建初始管理员", "username", cfg.InitialAdmin.Username)
		}
	}

	/**********************************************
	 * 连接 rabbitmq
	 **********************************************/
	conn, err := amqp.Dial(cfg.RabbitMQ.DSN)
	if err != nil {
		logger.Error("无法连接到 rabbitmq", "error", err)
		return
	}
	defer conn.Close()

	// 建立通道
	ch, err := conn.Channel()
	if err != nil {
		logger.Error("无法建立通道", "error", err)
		return
	}
	defer ch.Close()

	if _, err := mailer.DeclareQueue(ch, cfg.RabbitMQ.Queue); err != nil {
		logger.Error("无法声明队列", "error", err)
		return
	}

	/**********************************************
	 * 连接 redis
	 **********************************************/
	rdb := redis.NewClient(&redis.Options{
		Addr:        fmt.Sprintf("%s:%d", cfg.Redis.Host, cfg.Redis.Port),
		Password:    cfg.Redis.Password,
		DB:          0,
		DialTimeout: time.Duration(cfg.Redis.ConnectTimeout) * time.Second,
	})
	defer rdb.Close()

	if err := rdb.Ping(ctx).Err(); err != nil {
		logger.Error("无法连接到 redis", "error", err)
		return
	}

	/**********************************************
	 * 组装各个组件
	 **********************************************/
	validate, trans, err := handler.NewValidator()
	if err != nil {
		logger.Error("无法创建校验器", "error", err)
		return
	}

	attendances := payroll.NewAttendanceStore(cfg, mirrorDB)
	salaries := payroll.NewSalaryStore(cfg, mirrorDB, attendances)
	employees := employee.NewStore(repo, mirror.NewStore(cfg, mirrorDB), bridge, validate)
	engine := notification.NewEngine(cfg, salaries, attendances, employees, notification.NewRedisLog(cfg, rdb))

	/**********************************************
	 * 创建 handler
	 **********************************************/
	h := handler.NewHandler(cfg, validate, trans, handler.Services{
		Employees:   employees,
		Salaries:    salaries,
		Attendances: attendances,
		Notifier:    engine,
		Auth:        bridge,
		Lookups:     repo,
		Mail:        mailer.NewPublisher(cfg, ch),
	})
	h.RegisterRoutes()

	/**********************************************
	 * 启动 HTTP 服务器
	 **********************************************/
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Server.Port),
		Handler:      h.Mux,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeout) * time.Second,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		ErrorLog:     slog.NewLogLogger(logger.Handler(), slog.LevelError),
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Info("正在启动服务器...", "port", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("无法启动服务器", slog.String("error", err.Error()))
			return
		}
	}()

	<-quit
	logger.Info("正在关闭服务器...")

	ctx, cancel = context.WithTimeout(context.Background(), time.Duration(cfg.Server.ShutdownTimeout)*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("关闭服务器失败", slog.String("error", err.Error()))
	}
	logger.Info("服务器已成功关闭")
}
