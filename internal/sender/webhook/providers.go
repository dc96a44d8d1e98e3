package webhook

import (
	"context"
	"fmt"
	"strings"
	"time"

	"MonitorNotify/internal/domain"
)

const appTitle = "MonitorNotify"

// pushoverAPIURL адрес Pushover API, переопределяется в тестах.
var pushoverAPIURL = "https://api.pushover.net/1/messages.json"

func heartbeatTime(hb *domain.Heartbeat) string {
	return hb.Time.UTC().Format("2006-01-02 15:04:05")
}

func required(cfg domain.NotificationConfig, keys ...string) error {
	for _, key := range keys {
		if cfg.String(key) == "" {
			return &domain.MissingFieldError{Field: key}
		}
	}
	return nil
}

// --- Webhook ---

// Webhook отправляет heartbeat, monitor и msg на произвольный URL.
type Webhook struct{ poster }

func NewWebhook(timeout time.Duration) *Webhook { return &Webhook{newPoster(timeout)} }

func (w *Webhook) Name() string { return "webhook" }

func (w *Webhook) Send(ctx context.Context, cfg domain.NotificationConfig, msg string,
	monitor *domain.MonitorInfo, heartbeat *domain.Heartbeat) (string, error) {
	if err := required(cfg, "webhookURL"); err != nil {
		return "", err
	}
	data := map[string]interface{}{
		"heartbeat": heartbeat,
		"monitor":   monitor,
		"msg":       msg,
	}

	var err error
	if cfg.String("webhookContentType") == "form-data" {
		err = w.postForm(ctx, cfg.String("webhookURL"), data)
	} else {
		err = w.postJSON(ctx, cfg.String("webhookURL"), data, nil)
	}
	if err != nil {
		return "", &domain.ProviderError{Provider: w.Name(), Err: err}
	}
	return domain.SentSuccessfully, nil
}

// --- Discord ---

// Discord отправляет сообщение через discord webhook, up/down события оформляются embed'ом.
type Discord struct{ poster }

func NewDiscord(timeout time.Duration) *Discord { return &Discord{newPoster(timeout)} }

func (d *Discord) Name() string { return "discord" }

func (d *Discord) Send(ctx context.Context, cfg domain.NotificationConfig, msg string,
	monitor *domain.MonitorInfo, heartbeat *domain.Heartbeat) (string, error) {
	if err := required(cfg, "discordWebhookUrl"); err != nil {
		return "", err
	}
	username := cfg.String("discordUsername")
	if username == "" {
		username = appTitle
	}

	payload := map[string]interface{}{"username": username}
	if heartbeat == nil || monitor == nil {
		payload["content"] = msg
	} else {
		payload["embeds"] = []map[string]interface{}{discordEmbed(monitor, heartbeat)}
	}

	if err := d.postJSON(ctx, cfg.String("discordWebhookUrl"), payload, nil); err != nil {
		return "", &domain.ProviderError{Provider: d.Name(), Err: err}
	}
	return domain.SentSuccessfully, nil
}

func discordEmbed(monitor *domain.MonitorInfo, heartbeat *domain.Heartbeat) map[string]interface{} {
	url := monitor.URL
	if url == "" {
		url = "-"
	}
	fields := []map[string]string{
		{"name": "Service Name", "value": monitor.Name},
		{"name": "Service URL", "value": url},
		{"name": "Time (UTC)", "value": heartbeatTime(heartbeat)},
	}

	embed := map[string]interface{}{"timestamp": heartbeat.Time.UTC().Format(time.RFC3339)}
	if heartbeat.Status == domain.StatusUp {
		embed["title"] = fmt.Sprintf("✅ Your service %s is up! ✅", monitor.Name)
		embed["color"] = 65280
		ping := "N/A"
		if heartbeat.Ping != nil {
			ping = fmt.Sprintf("%d ms", *heartbeat.Ping)
		}
		fields = append(fields, map[string]string{"name": "Ping", "value": ping})
	} else {
		embed["title"] = "❌ One of your services went down. ❌"
		embed["color"] = 16711680
		fields = append(fields, map[string]string{"name": "Error", "value": heartbeat.Msg})
	}
	embed["fields"] = fields
	return embed
}

// --- Slack ---

// Slack отправляет сообщение через slack incoming webhook.
type Slack struct{ poster }

func NewSlack(timeout time.Duration) *Slack { return &Slack{newPoster(timeout)} }

func (s *Slack) Name() string { return "slack" }

func (s *Slack) Send(ctx context.Context, cfg domain.NotificationConfig, msg string,
	_ *domain.MonitorInfo, heartbeat *domain.Heartbeat) (string, error) {
	if err := required(cfg, "slackwebhookURL"); err != nil {
		return "", err
	}

	payload := map[string]interface{}{"text": msg}
	if heartbeat != nil {
		payload["text"] = appTitle + " Alert"
		payload["blocks"] = []map[string]interface{}{
			{"type": "header", "text": map[string]string{"type": "plain_text", "text": appTitle + " Alert"}},
			{"type": "section", "fields": []map[string]string{
				{"type": "mrkdwn", "text": "*Message*\n" + msg},
				{"type": "mrkdwn", "text": "*Time (UTC)*\n" + heartbeatTime(heartbeat)},
			}},
		}
	}
	if v := cfg.String("slackchannel"); v != "" {
		payload["channel"] = v
	}
	if v := cfg.String("slackusername"); v != "" {
		payload["username"] = v
	}
	if v := cfg.String("slackiconemo"); v != "" {
		payload["icon_emoji"] = v
	}

	if err := s.postJSON(ctx, cfg.String("slackwebhookURL"), payload, nil); err != nil {
		return "", &domain.ProviderError{Provider: s.Name(), Err: err}
	}
	return domain.SentSuccessfully, nil
}

// --- Gotify ---

// Gotify отправляет push на self-hosted gotify сервер.
type Gotify struct{ poster }

func NewGotify(timeout time.Duration) *Gotify { return &Gotify{newPoster(timeout)} }

func (g *Gotify) Name() string { return "gotify" }

func (g *Gotify) Send(ctx context.Context, cfg domain.NotificationConfig, msg string,
	_ *domain.MonitorInfo, _ *domain.Heartbeat) (string, error) {
	if err := required(cfg, "gotifyserverurl", "gotifyapplicationToken"); err != nil {
		return "", err
	}
	url := strings.TrimRight(cfg.String("gotifyserverurl"), "/") + "/message"
	payload := map[string]interface{}{
		"message":  msg,
		"priority": cfg.Int("gotifyPriority", 8),
		"title":    appTitle,
	}
	headers := map[string]string{"X-Gotify-Key": cfg.String("gotifyapplicationToken")}

	if err := g.postJSON(ctx, url, payload, headers); err != nil {
		return "", &domain.ProviderError{Provider: g.Name(), Err: err}
	}
	return domain.SentSuccessfully, nil
}

// --- Pushover ---

// Pushover отправляет push через pushover.net.
type Pushover struct{ poster }

func NewPushover(timeout time.Duration) *Pushover { return &Pushover{newPoster(timeout)} }

func (p *Pushover) Name() string { return "pushover" }

func (p *Pushover) Send(ctx context.Context, cfg domain.NotificationConfig, msg string,
	_ *domain.MonitorInfo, heartbeat *domain.Heartbeat) (string, error) {
	if err := required(cfg, "pushoveruserkey", "pushoverapptoken"); err != nil {
		return "", err
	}
	message := msg
	if heartbeat != nil {
		message = fmt.Sprintf("%s\n<b>Time (UTC)</b>: %s", msg, heartbeatTime(heartbeat))
	}
	payload := map[string]interface{}{
		"message":  message,
		"user":     cfg.String("pushoveruserkey"),
		"token":    cfg.String("pushoverapptoken"),
		"priority": cfg.Int("pushoverpriority", 0),
		"retry":    30,
		"expire":   3600,
		"html":     1,
	}
	if v := cfg.String("pushovertitle"); v != "" {
		payload["title"] = v
	}
	if v := cfg.String("pushoversounds"); v != "" {
		payload["sound"] = v
	}
	if v := cfg.String("pushoverdevice"); v != "" {
		payload["device"] = v
	}

	if err := p.postJSON(ctx, pushoverAPIURL, payload, nil); err != nil {
		return "", &domain.ProviderError{Provider: p.Name(), Err: err}
	}
	return domain.SentSuccessfully, nil
}
