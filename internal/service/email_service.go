package service

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"

	"github.com/aptechmall/ordercore/internal/config"
	"github.com/aptechmall/ordercore/internal/i18n"
	"github.com/aptechmall/ordercore/internal/models"

	gomail "github.com/wneessen/go-mail"
)

// EmailService 邮件发送服务
type EmailService struct {
	cfg  *config.EmailConfig
	send func(ctx context.Context, msg *gomail.Msg) error
}

// NewEmailService 创建邮件服务
func NewEmailService(cfg *config.EmailConfig) *EmailService {
	s := &EmailService{cfg: cfg}
	s.send = s.dialAndSend
	return s
}

// OrderStatusEmailInput 订单状态邮件输入
type OrderStatusEmailInput struct {
	OrderNo string
	Status  string
	Amount  models.Money
}

// SendOrderStatusEmail 发送订单状态通知
func (s *EmailService) SendOrderStatusEmail(ctx context.Context, toEmail string, input OrderStatusEmailInput, locale string) error {
	subject, body := buildOrderStatusContent(input, locale)
	return s.sendTextEmail(ctx, toEmail, subject, body)
}

func (s *EmailService) sendTextEmail(ctx context.Context, toEmail, subject, body string) error {
	if s == nil || s.cfg == nil || !s.cfg.Enabled {
		return ErrEmailServiceDisabled
	}
	if strings.TrimSpace(s.cfg.Host) == "" || s.cfg.Port == 0 || strings.TrimSpace(s.cfg.From) == "" {
		return ErrEmailServiceNotConfigured
	}
	if _, err := mail.ParseAddress(toEmail); err != nil {
		return ErrInvalidEmail
	}

	msg := gomail.NewMsg()
	if err := setFromAddress(msg, s.cfg.From, s.cfg.FromName); err != nil {
		return fmt.Errorf("set from address: %w", err)
	}
	if err := msg.To(toEmail); err != nil {
		return ErrInvalidEmail
	}
	msg.Subject(subject)
	msg.SetBodyString(gomail.TypeTextPlain, body)

	return normalizeEmailSendError(s.send(ctx, msg))
}

func (s *EmailService) dialAndSend(ctx context.Context, msg *gomail.Msg) error {
	client, err := gomail.NewClient(strings.TrimSpace(s.cfg.Host), s.clientOptions()...)
	if err != nil {
		return err
	}
	return client.DialAndSendWithContext(ctx, msg)
}

func (s *EmailService) clientOptions() []gomail.Option {
	opts := []gomail.Option{gomail.WithPort(s.cfg.Port)}
	if s.cfg.Username != "" {
		opts = append(opts,
			gomail.WithSMTPAuth(gomail.SMTPAuthPlain),
			gomail.WithUsername(s.cfg.Username),
			gomail.WithPassword(s.cfg.Password),
		)
	}
	switch {
	case s.cfg.UseSSL:
		opts = append(opts, gomail.WithSSLPort(false))
	case s.cfg.UseTLS:
		opts = append(opts, gomail.WithTLSPolicy(gomail.TLSMandatory))
	default:
		opts = append(opts, gomail.WithTLSPolicy(gomail.NoTLS))
	}
	return opts
}

func setFromAddress(msg *gomail.Msg, from, name string) error {
	if strings.TrimSpace(name) == "" {
		return msg.From(from)
	}
	return msg.FromFormat(name, from)
}

func buildOrderStatusContent(input OrderStatusEmailInput, locale string) (string, string) {
	normalized := i18n.NormalizeLocale(locale)
	statusKey := "order.status." + strings.ToLower(strings.TrimSpace(input.Status))
	statusLabel := i18n.T(normalized, statusKey)
	if statusLabel == statusKey {
		statusLabel = input.Status
	}
	amount := input.Amount.String()
	subject := i18n.Sprintf(normalized, "email.order_status.subject", statusLabel)

	bodyKey := "email.order_status.body"
	switch strings.ToUpper(strings.TrimSpace(input.Status)) {
	case "PENDING":
		bodyKey = "email.order_status.created"
	case "CANCELLED":
		bodyKey = "email.order_status.cancelled"
	}
	return subject, i18n.Sprintf(normalized, bodyKey, input.OrderNo, statusLabel, amount)
}

func normalizeEmailSendError(err error) error {
	if err == nil {
		return nil
	}
	if isEmailRecipientRejected(err) {
		return fmt.Errorf("%w: %w", ErrEmailRecipientRejected, err)
	}
	return err
}

func isEmailRecipientRejected(err error) bool {
	if err == nil {
		return false
	}
	var sendErr *gomail.SendError
	if errors.As(err, &sendErr) && sendErr.Reason == gomail.ErrSMTPRcptTo {
		return true
	}
	message := strings.ToLower(strings.TrimSpace(err.Error()))
	for _, keyword := range []string{
		"no such recipient",
		"no such user",
		"recipient address rejected",
		"user unknown",
		"unknown user",
		"mailbox unavailable",
	} {
		if strings.Contains(message, keyword) {
			return true
		}
	}
	return false
}

// isPermanentEmailError 重试也无法成功的发送错误
func isPermanentEmailError(err error) bool {
	return errors.Is(err, ErrEmailServiceDisabled) ||
		errors.Is(err, ErrEmailServiceNotConfigured) ||
		errors.Is(err, ErrEmailRecipientRejected) ||
		errors.Is(err, ErrInvalidEmail)
}
