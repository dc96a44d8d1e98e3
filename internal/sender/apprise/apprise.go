package apprise

import (
	"context"
	"errors"
	"os/exec"
	"strings"

	"MonitorNotify/internal/domain"
	"github.com/wb-go/wbf/zlog"
)

// Name тип уведомления.
const Name = "apprise"

// Provider отправляет уведомления через apprise CLI, который поддерживает
// десятки сервисов по URL вида tgram://, mailto://, discord:// ...
type Provider struct {
	Binary string
}

// New создает провайдер, binary по умолчанию "apprise".
func New(binary string) *Provider {
	if binary == "" {
		binary = "apprise"
	}
	return &Provider{Binary: binary}
}

func (p *Provider) Name() string { return Name }

// Send запускает apprise -vv -b <msg> <url> и разбирает вывод.
func (p *Provider) Send(ctx context.Context, cfg domain.NotificationConfig, msg string,
	_ *domain.MonitorInfo, _ *domain.Heartbeat) (string, error) {
	url := cfg.String("appriseURL")
	if url == "" {
		return "", &domain.MissingFieldError{Field: "appriseURL"}
	}

	out, err := exec.CommandContext(ctx, p.Binary, "-vv", "-b", msg, url).Output()
	output := string(out)
	if err != nil {
		var execErr *exec.Error
		if errors.As(err, &execErr) {
			output = "ERROR: maybe apprise not found"
		}
		zlog.Logger.Debug().Err(err).Str("output", output).Msg("apprise exited with error")
	}

	if output == "" {
		if err != nil {
			return "", &domain.ProviderError{Provider: Name, Err: err}
		}
		return "No output from apprise", nil
	}
	if strings.Contains(output, "ERROR") {
		return "", &domain.ProviderError{Provider: Name, Err: errors.New(strings.TrimSpace(output))}
	}

	return domain.SentSuccessfully, nil
}

// Available проверяет, найден ли apprise в PATH.
func (p *Provider) Available() bool {
	_, err := exec.LookPath(p.Binary)
	return err == nil
}
