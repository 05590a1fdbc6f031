package mailer

import (
	"context"
	"embed"
	"encoding/json"
	"fmt"
	"html/template"
	"log/slog"

	"github.com/integration-system/backend/internal/config"
	"github.com/integration-system/backend/internal/domain"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/wneessen/go-mail"
)

//go:embed templates/*.html
var templateFS embed.FS

var templates = template.Must(template.ParseFS(templateFS, "templates/*.html"))

type mailKind struct {
	template string
	subject  string
	data     func() any
}

var mailKinds = map[string]mailKind{
	domain.MailTypeNewAccount: {
		template: "new_account.html",
		subject:  "HR 系统 - 账户信息",
		data:     func() any { return &domain.NewAccountMailData{} },
	},
	domain.MailTypePayslip: {
		template: "payslip.html",
		subject:  "HR 系统 - 工资条",
		data:     func() any { return &domain.PayslipMailData{} },
	},
}

// Sender 发送一封已经构建好的邮件
type Sender interface {
	Send(ctx context.Context, msg *mail.Msg) error
}

// SMTPSender 在每次发送前从 TokenCache 取得最新的凭据
type SMTPSender struct {
	client *mail.Client
	tokens *TokenCache
}

func NewSMTPClient(cfg *config.Config) (*mail.Client, error) {
	auth := mail.SMTPAuthPlain
	if cfg.Email.SMTP.Auth == "xoauth2" {
		auth = mail.SMTPAuthXOAUTH2
	}

	return mail.NewClient(cfg.Email.SMTP.Host,
		mail.WithSMTPAuth(auth),
		mail.WithSSL(),
		mail.WithPort(cfg.Email.SMTP.Port),
		mail.WithUsername(cfg.Email.SMTP.Username),
		mail.WithPassword(cfg.Email.SMTP.Password),
	)
}

func NewSMTPSender(client *mail.Client, tokens *TokenCache) *SMTPSender {
	return &SMTPSender{
		client: client,
		tokens: tokens,
	}
}

func (s *SMTPSender) Send(ctx context.Context, msg *mail.Msg) error {
	token, err := s.tokens.Token(ctx)
	if err != nil {
		return err
	}
	s.client.SetPassword(token)

	if err := s.client.DialAndSendWithContext(ctx, msg); err != nil {
		// 认证失败时凭据可能已被吊销，下次重新获取
		s.tokens.Invalidate()
		return err
	}
	return nil
}

type Worker struct {
	cfg    *config.Config
	sender Sender
}

func NewWorker(cfg *config.Config, sender Sender) *Worker {
	return &Worker{
		cfg:    cfg,
		sender: sender,
	}
}

// Build 根据队列中的消息构建邮件
func (w *Worker) Build(message domain.MailMessage) (*mail.Msg, error) {
	kind, ok := mailKinds[message.Type]
	if !ok {
		return nil, fmt.Errorf("unsupported mail type %q", message.Type)
	}

	// Data 反序列化后是 map，需要转换为对应的结构体再交给模板
	raw, err := json.Marshal(message.Data)
	if err != nil {
		return nil, err
	}
	data := kind.data()
	if err := json.Unmarshal(raw, data); err != nil {
		return nil, fmt.Errorf("decode %s mail data: %w", message.Type, err)
	}

	msg := mail.NewMsg()
	if err := msg.From(w.cfg.Email.SMTP.Username); err != nil {
		return nil, err
	}
	if err := msg.To(message.To); err != nil {
		return nil, err
	}
	if err := msg.SetBodyHTMLTemplate(templates.Lookup(kind.template), data); err != nil {
		return nil, err
	}
	msg.Subject(kind.subject)

	return msg, nil
}

// Handle 处理一条消息，返回值表示失败时是否应该重新入队
func (w *Worker) Handle(ctx context.Context, body []byte) (bool, error) {
	message := domain.MailMessage{}
	if err := json.Unmarshal(body, &message); err != nil {
		return false, fmt.Errorf("decode mail message: %w", err)
	}

	msg, err := w.Build(message)
	if err != nil {
		return false, err
	}

	if err := w.sender.Send(ctx, msg); err != nil {
		return true, fmt.Errorf("send mail: %w", err)
	}

	slog.Info("邮件发送成功", "type", message.Type, "to", message.To)
	return false, nil
}

// Run 持续消费消息直到 ctx 被取消或通道关闭
func (w *Worker) Run(ctx context.Context, deliveries <-chan amqp.Delivery) {
	for {
		select {
		case <-ctx.Done():
			return
		case d, ok := <-deliveries:
			if !ok {
				slog.Warn("消息通道已关闭")
				return
			}

			requeue, err := w.Handle(ctx, d.Body)
			if err != nil {
				slog.Error("邮件处理失败", "requeue", requeue, slog.String("error", err.Error()))
				_ = d.Nack(false, requeue)
				continue
			}

			_ = d.Ack(false)
		}
	}
}
