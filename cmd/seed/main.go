package main

import (
	"context"
	"database/sql"
	"flag"
	"log/slog"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/integration-system/backend/internal/config"
	"github.com/integration-system/backend/internal/employee"
	"github.com/integration-system/backend/internal/identity"
	"github.com/integration-system/backend/internal/mirror"
	"github.com/integration-system/backend/internal/payroll"
	"github.com/integration-system/backend/internal/repository"
	"github.com/integration-system/backend/internal/seed"
	"github.com/integration-system/backend/internal/utils"

	_ "github.com/jackc/pgx/v5/stdlib"
)

func main() {
	var op int
	var n int
	var month string
	var emailDomain string

	flag.IntVar(&op, "op", 0, "要执行的操作 (1: 写入部门和职位, 2: 插入随机员工, 3: 生成随机考勤)")
	flag.IntVar(&n, "n", 5, "要插入的员工数量")
	flag.StringVar(&month, "month", time.Now().Format("2006-01"), "生成考勤的月份，格式为 2006-01")
	flag.StringVar(&emailDomain, "email-domain", "example.com", "随机员工的邮箱域名")
	flag.Parse()

	logger := utils.NewLogger(nil, os.Stdout)
	slog.SetDefault(logger)

	// 读取配置文件
	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Error("无法读取配置文件", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// 创建数据库连接池
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

	mirrorDB, err := mirror.Open(cfg)
	if err != nil {
		logger.Error("无法打开副库", "error", err)
		return
	}

	bridge := identity.NewBridge(cfg, repo)
	if err := bridge.EnsureRoles(ctx); err != nil {
		logger.Error("无法创建系统角色", "error", err)
		return
	}

	employees := employee.NewStore(repo, mirror.NewStore(cfg, mirrorDB), bridge, validator.New(validator.WithRequiredStructEnabled()))
	seeder := seed.NewSeeder(repo, employees, payroll.NewAttendanceStore(cfg, mirrorDB))

	lookups, err := seed.DefaultLookups()
	if err != nil {
		logger.Error("无法读取部门和职位数据", "error", err)
		return
	}

	// 执行操作，写入操作不受连接超时限制
	runCtx := context.Background()
	switch op {
	case 0:
		slog.Error("未指定操作")
	case 1:
		if err := seeder.SeedLookups(runCtx, lookups); err != nil {
			slog.Error("无法写入部门和职位", slog.String("error", err.Error()))
		}
	case 2:
		if n <= 0 {
			slog.Error("请输入合法的员工数量")
			return
		}
		created := seeder.SeedEmployees(runCtx, lookups, emailDomain, n)
		slog.Info("插入员工完成", slog.Int("count", created))
	case 3:
		m, err := time.Parse("2006-01", month)
		if err != nil {
			slog.Error("月份格式非法", "month", month)
			return
		}
		saved, err := seeder.SeedAttendance(runCtx, m)
		if err != nil {
			slog.Error("无法生成考勤", slog.String("error", err.Error()))
			return
		}
		slog.Info("生成考勤完成", slog.Int("count", saved))
	default:
		slog.Error("指定的操作非法")
	}
}
