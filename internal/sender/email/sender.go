package email_sender

import (
	"context"
	"crypto/tls"
	"fmt"
	"strings"
	"time"

	"MonitorNotify/internal/domain"
	mail "github.com/xhit/go-simple-mail/v2"
)

// Name тип уведомления.
const Name = "smtp"

// deliver подключается к серверу и отправляет письмо, подменяется в тестах.
var deliver = func(server *mail.SMTPServer, msg *mail.Email) error {
	client, err := server.Connect()
	if err != nil {
		return err
	}
	return msg.Send(client)
}

// SMTPSender провайдер для отправки email через SMTP сервер из конфигурации уведомления.
type SMTPSender struct {
	Timeout time.Duration
}

// NewSMTPSender создает новый экземпляр SMTPSender.
func NewSMTPSender(timeout time.Duration) *SMTPSender {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &SMTPSender{Timeout: timeout}
}

func (s *SMTPSender) Name() string { return Name }

// Send отправляет email уведомление.
func (s *SMTPSender) Send(ctx context.Context, cfg domain.NotificationConfig, msg string,
	_ *domain.MonitorInfo, heartbeat *domain.Heartbeat) (string, error) {
	for _, key := range []string{"smtpHost", "smtpFrom", "smtpTo"} {
		if cfg.String(key) == "" {
			return "", &domain.MissingFieldError{Field: key}
		}
	}

	server := s.server(cfg)

	body := msg
	if heartbeat != nil {
		body = fmt.Sprintf("%s\nTime (UTC): %s", msg, heartbeat.Time.UTC().Format("2006-01-02 15:04:05"))
	}

	email := mail.NewMSG()
	email.SetFrom(cfg.String("smtpFrom")).
		AddTo(splitAddresses(cfg.String("smtpTo"))...).
		SetSubject(msg).
		SetBody(mail.TextPlain, body)
	if cc := splitAddresses(cfg.String("smtpCC")); len(cc) > 0 {
		email.AddCc(cc...)
	}
	if bcc := splitAddresses(cfg.String("smtpBCC")); len(bcc) > 0 {
		email.AddBcc(bcc...)
	}
	if email.Error != nil {
		return "", email.Error
	}

	done := make(chan error, 1)
	go func() {
		done <- deliver(server, email)
	}()

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case err := <-done:
		if err != nil {
			return "", &domain.ProviderError{Provider: Name, Err: err}
		}
	}

	return domain.SentSuccessfully, nil
}

// server собирает параметры подключения к SMTP серверу.
func (s *SMTPSender) server(cfg domain.NotificationConfig) *mail.SMTPServer {
	server := mail.NewSMTPClient()
	server.Host = cfg.String("smtpHost")
	server.Port = cfg.Int("smtpPort", 25)
	server.Username = cfg.String("smtpUsername")
	server.Password = cfg.String("smtpPassword")
	server.ConnectTimeout = s.Timeout
	server.SendTimeout = s.Timeout
	server.KeepAlive = false

	if cfg.Bool("smtpSecure") {
		server.Encryption = mail.EncryptionSSLTLS
	} else {
		server.Encryption = mail.EncryptionSTARTTLS
	}
	if cfg.Bool("smtpIgnoreTLSError") {
		server.TLSConfig = &tls.Config{InsecureSkipVerify: true} //nolint:gosec
	}

	return server
}

// splitAddresses разбирает список адресов через запятую.
func splitAddresses(value string) []string {
	if value == "" {
		return nil
	}
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
