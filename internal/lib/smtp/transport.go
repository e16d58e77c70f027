package smtp

import (
	"crypto/tls"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/smtp"
	"time"

	"github.com/magabrotheeeer/online-learning/internal/config"
	"github.com/magabrotheeeer/online-learning/internal/lib/sl"
)

const (
	dialTimeout = 10 * time.Second
	// sessionTimeout ограничивает весь SMTP диалог после подключения.
	sessionTimeout = time.Minute
)

// Transport реализует SMTP транспорт для отправки писем.
type Transport struct {
	cfg     config.SMTP
	log     *slog.Logger
	timeout time.Duration
}

// smtpClientWrapper обертка для *smtp.Client, реализующая интерфейс Client.
type smtpClientWrapper struct {
	client *smtp.Client
}

func (w *smtpClientWrapper) Mail(from string) error {
	return w.client.Mail(from)
}

func (w *smtpClientWrapper) Rcpt(to string) error {
	return w.client.Rcpt(to)
}

func (w *smtpClientWrapper) Data() (io.WriteCloser, error) {
	return w.client.Data()
}

func (w *smtpClientWrapper) Quit() error {
	return w.client.Quit()
}

func (w *smtpClientWrapper) Close() error {
	return w.client.Close()
}

// NewTransport создает новый экземпляр Transport.
func NewTransport(cfg config.SMTP, log *slog.Logger) *Transport {
	return &Transport{cfg: cfg, log: log, timeout: sessionTimeout}
}

// Connect устанавливает соединение с SMTP сервером. При SMTPUseTLS
// выполняется STARTTLS, при заданном SMTPUser выполняется PLAIN аутентификация.
func (t *Transport) Connect() (Client, error) {
	const op = "smtp.Connect"
	addr := net.JoinHostPort(t.cfg.SMTPHost, t.cfg.SMTPPort)

	conn, err := net.DialTimeout("tcp", addr, dialTimeout)
	if err != nil {
		t.log.Error("failed to dial SMTP server", slog.String("addr", addr), sl.Err(err))
		return nil, fmt.Errorf("%s: failed to dial SMTP server: %w", op, err)
	}
	if err = conn.SetDeadline(time.Now().Add(t.timeout)); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("%s: failed to set deadline: %w", op, err)
	}

	client, err := smtp.NewClient(conn, t.cfg.SMTPHost)
	if err != nil {
		t.log.Error("failed to create SMTP client", sl.Err(err))
		if closeErr := conn.Close(); closeErr != nil {
			t.log.Error("failed to close connection", sl.Err(closeErr))
		}
		return nil, fmt.Errorf("%s: failed to create SMTP client: %w", op, err)
	}

	fail := func(msg string, err error) (Client, error) {
		t.log.Error(msg, sl.Err(err))
		if closeErr := client.Close(); closeErr != nil {
			t.log.Error("failed to close client", sl.Err(closeErr))
		}
		return nil, fmt.Errorf("%s: %s: %w", op, msg, err)
	}

	if t.cfg.SMTPUseTLS {
		if ok, _ := client.Extension("STARTTLS"); !ok {
			return fail("smtp server does not support STARTTLS", fmt.Errorf("extension missing"))
		}
		tlsConfig := &tls.Config{
			ServerName: t.cfg.SMTPHost,
			MinVersion: tls.VersionTLS12,
		}
		if err = client.StartTLS(tlsConfig); err != nil {
			return fail("failed to start TLS", err)
		}
	}

	if t.cfg.SMTPUser != "" {
		auth := smtp.PlainAuth("", t.cfg.SMTPUser, t.cfg.SMTPPass, t.cfg.SMTPHost)
		if err = client.Auth(auth); err != nil {
			return fail("smtp auth failed", err)
		}
	}

	return &smtpClientWrapper{client: client}, nil
}

// GetSMTPFrom возвращает адрес отправителя. Если он не задан, используется SMTPUser.
func (t *Transport) GetSMTPFrom() string {
	if t.cfg.SMTPFrom != "" {
		return t.cfg.SMTPFrom
	}
	return t.cfg.SMTPUser
}
