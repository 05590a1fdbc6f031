package config

import (
	"errors"
	"io/fs"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type Config struct {
	Environment string `env:"ENVIRONMENT" envDefault:"development"`
	Server      struct {
		Port            string `env:"PORT" envDefault:"3000"`
		ReadTimeout     int    `env:"READ_TIMEOUT" envDefault:"10"`
		WriteTimeout    int    `env:"WRITE_TIMEOUT" envDefault:"15"`
		IdleTimeout     int    `env:"IDLE_TIMEOUT" envDefault:"60"`
		ShutdownTimeout int    `env:"SHUTDOWN_TIMEOUT" envDefault:"10"`
	} `envPrefix:"SERVER_"`
	// 主库：员工权威记录以及身份系统
	Database struct {
		DSN                string `env:"DSN,required"`
		ConnectTimeout     int    `env:"CONNECT_TIMEOUT" envDefault:"10"`
		QueryTimeout       int    `env:"QUERY_TIMEOUT" envDefault:"10"`
		TransactionTimeout int    `env:"TRANSACTION_TIMEOUT" envDefault:"20"`
		MaxOpenConns       int    `env:"MAX_OPEN_CONNS" envDefault:"10"`
		MaxIdleConns       int    `env:"MAX_IDLE_CONNS" envDefault:"10"`
		MaxIdleTime        int    `env:"MAX_IDLE_TIME" envDefault:"60"`
	} `envPrefix:"DATABASE_"`
	// 副库：员工精简副本、工资以及考勤
	Mirror struct {
		DSN          string `env:"DSN" envDefault:"payroll.db"`
		QueryTimeout int    `env:"QUERY_TIMEOUT" envDefault:"10"`
		MaxOpenConns int    `env:"MAX_OPEN_CONNS" envDefault:"1"`
	} `envPrefix:"MIRROR_"`
	// 密码为空时不在启动时创建管理员，此时需要通过 /auth/register/admin 注册
	InitialAdmin struct {
		Username string `env:"USERNAME" envDefault:"admin"`
		Password string `env:"PASSWORD"`
		Email    string `env:"EMAIL"`
	} `envPrefix:"INITIAL_ADMIN_"`
	JWT struct {
		Expiration int    `env:"EXPIRATION" envDefault:"60"` // 分钟
		Secret     string `env:"SECRET,required"`
		Issuer     string `env:"ISSUER" envDefault:"integration-system"`
	} `envPrefix:"JWT_"`
	Identity struct {
		UsernameMaxAttempts int `env:"USERNAME_MAX_ATTEMPTS" envDefault:"10"`
		MinPasswordLength   int `env:"MIN_PASSWORD_LENGTH" envDefault:"6"`
	} `envPrefix:"IDENTITY_"`
	NewUser struct {
		PasswordLength int `env:"PASSWORD_LENGTH" envDefault:"12"`
	} `envPrefix:"NEW_USER_"`
	Salary struct {
		HistoryMatchMonthOnly bool `env:"HISTORY_MATCH_MONTH_ONLY" envDefault:"false"`
	} `envPrefix:"SALARY_"`
	Notification struct {
		Key                      string  `env:"KEY" envDefault:"salary:notifications"`
		TTL                      int     `env:"TTL" envDefault:"86400"` // 秒
		SalaryDeviationThreshold float64 `env:"SALARY_DEVIATION_THRESHOLD" envDefault:"5000"`
		AbsenceThreshold         int     `env:"ABSENCE_THRESHOLD" envDefault:"3"`
		RejectOnDeviation        bool    `env:"REJECT_ON_DEVIATION" envDefault:"false"`
	} `envPrefix:"NOTIFICATION_"`
	Email struct {
		SMTP struct {
			Username    string `env:"USERNAME,required"`
			Password    string `env:"PASSWORD"`
			Host        string `env:"HOST,required"`
			Port        int    `env:"PORT" envDefault:"465"`
			DialTimeout int    `env:"DIAL_TIMEOUT" envDefault:"10"`
			Auth        string `env:"AUTH" envDefault:"plain"` // plain 或 xoauth2
		} `envPrefix:"SMTP_"`
		OAuth struct {
			TokenURL     string `env:"TOKEN_URL" envDefault:"https://oauth2.googleapis.com/token"`
			ClientID     string `env:"CLIENT_ID"`
			ClientSecret string `env:"CLIENT_SECRET"`
			RefreshToken string `env:"REFRESH_TOKEN"`
			RefreshSkew  int    `env:"REFRESH_SKEW" envDefault:"60"`
		} `envPrefix:"OAUTH_"`
	} `envPrefix:"EMAIL_"`
	RabbitMQ struct {
		DSN            string `env:"DSN,required"`
		Queue          string `env:"QUEUE" envDefault:"email_queue"`
		PublishTimeout int    `env:"PUBLISH_TIMEOUT" envDefault:"10"`
	} `envPrefix:"RABBITMQ_"`
	Redis struct {
		Host                string `env:"HOST" envDefault:"localhost"`
		Port                int    `env:"PORT" envDefault:"6379"`
		Password            string `env:"PASSWORD"`
		ConnectTimeout      int    `env:"CONNECT_TIMEOUT" envDefault:"10"`
		OperationExpiration int    `env:"OPERATION_EXPIRATION" envDefault:"10"`
	} `envPrefix:"REDIS_"`
}

func LoadConfig() (*Config, error) {
	// .env 只在本地开发时存在，找不到文件不算错误
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, err
	}

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		aggErr := env.AggregateError{}
		if ok := errors.As(err, &aggErr); ok {
			// 只返回第一个错误使得日志更清晰
			return nil, aggErr.Errors[0]
		}
		return nil, err
	}

	return cfg, nil
}
