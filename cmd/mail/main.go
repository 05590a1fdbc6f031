package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/integration-system/backend/internal/config"
	"github.com/integration-system/backend/internal/mailer"
	"github.com/integration-system/backend/internal/utils"
	amqp "github.com/rabbitmq/amqp091-go"
)

func main() {
	/**********************************************
	 * 创建 logger
	 **********************************************/
	logger := utils.NewLogger(nil, os.Stdout)
	slog.SetDefault(logger)

	/**********************************************
	 * 读取配置文件
	 **********************************************/
	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Error("无法读取配置文件", slog.String("error", err.Error()))
		return
	}

	/**********************************************
	 * 创建邮件客户端
	 **********************************************/
	client, err := mailer.NewSMTPClient(cfg)
	if err != nil {
		logger.Error("无法创建邮件客户端", slog.String("error", err.Error()))
		return
	}
	defer client.Close()

	// xoauth2 模式下凭据会过期，由 TokenCache 负责刷新
	var source mailer.TokenSource = mailer.StaticSource(cfg.Email.SMTP.Password)
	if cfg.Email.SMTP.Auth == "xoauth2" {
		source = mailer.NewOAuthRefreshSource(cfg, nil)
	}
	tokens := mailer.NewTokenCache(source, time.Duration(cfg.Email.OAuth.RefreshSkew)*time.Second)

	// 验证凭据是否可用
	tokenCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.Email.SMTP.DialTimeout)*time.Second)
	defer cancel()
	if _, err := tokens.Token(tokenCtx); err != nil {
		logger.Error("无法获取邮件凭据", slog.String("error", err.Error()))
		return
	}

	worker := mailer.NewWorker(cfg, mailer.NewSMTPSender(client, tokens))

	/**********************************************
	 * 连接 RabbitMQ
	 **********************************************/
	conn, err := amqp.Dial(cfg.RabbitMQ.DSN)
	if err != nil {
		logger.Error("无法连接到 RabbitMQ", slog.String("error", err.Error()))
		return
	}
	defer conn.Close()

	// 创建通道
	ch, err := conn.Channel()
	if err != nil {
		logger.Error("无法创建通道", slog.String("error", err.Error()))
		return
	}
	defer ch.Close()

	q, err := mailer.DeclareQueue(ch, cfg.RabbitMQ.Queue)
	if err != nil {
		logger.Error("无法声明队列", slog.String("error", err.Error()))
		return
	}

	// 监听 CTRL+C
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	// 消费消息
	msgs, err := ch.Consume(
		q.Name, // 队列
		"",     // 消费者标识，设置为空字符串，表示由 RabbitMQ 自动分配
		false,  // 是否自动确认消息
		false,  // 是否独占队列
		false,  // 是否禁止消费者接受自己发送的消息，必须设置为 false，因为 RabbitMQ 不支持这个参数
		false,  // 是否不等待，等待 RabbitMQ 响应
		nil,    // 额外参数
	)
	if err != nil {
		logger.Error("无法消费消息", slog.String("error", err.Error()))
		return
	}

	// 用于关闭 goroutine 的上下文
	ctx, stop := context.WithCancel(context.Background())
	wg := sync.WaitGroup{}

	wg.Add(1)
	go func() {
		defer wg.Done()
		worker.Run(ctx, msgs)
	}()

	logger.Info("邮件服务已启动", "queue", q.Name)

	<-sigChan
	logger.Info("正在关闭邮件服务...")
	stop()
	wg.Wait()
	logger.Info("邮件服务已关闭")
}
