// Package forms описывает формы настройки уведомлений для каждого типа провайдера.
// Клиент строит по ним UI, ключи полей совпадают с ключами NotificationConfig.
package forms

import "sort"

// Input тип поля ввода.
type Input string

const (
	InputText     Input = "text"
	InputPassword Input = "password"
	InputNumber   Input = "number"
	InputURL      Input = "url"
	InputEmail    Input = "email"
	InputCheckbox Input = "checkbox"
	InputSelect   Input = "select"
)

// Field поле формы.
type Field struct {
	Key      string   `json:"key"`
	Label    string   `json:"label"`
	Input    Input    `json:"input"`
	Required bool     `json:"required"`
	Options  []string `json:"options,omitempty"`
}

// Form форма настройки одного типа уведомлений.
type Form struct {
	Type   string  `json:"type"`
	Title  string  `json:"title"`
	Fields []Field `json:"fields"`
}

// Registry реестр форм по типу уведомления.
type Registry map[string]Form

// Get возвращает форму по типу уведомления.
func (r Registry) Get(notificationType string) (Form, bool) {
	f, ok := r[notificationType]
	return f, ok
}

// List возвращает все формы, отсортированные по типу.
func (r Registry) List() []Form {
	out := make([]Form, 0, len(r))
	for _, f := range r {
		out = append(out, f)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Type < out[j].Type })
	return out
}

// Default формы встроенных провайдеров.
var Default = Registry{
	"telegram": {
		Type:  "telegram",
		Title: "Telegram",
		Fields: []Field{
			{Key: "telegramBotToken", Label: "Bot Token", Input: InputPassword, Required: true},
			{Key: "telegramChatID", Label: "Chat ID", Input: InputText, Required: true},
			{Key: "telegramSendSilently", Label: "Send Silently", Input: InputCheckbox},
			{Key: "telegramProtectContent", Label: "Protect Forwarding/Saving", Input: InputCheckbox},
		},
	},
	"smtp": {
		Type:  "smtp",
		Title: "Email (SMTP)",
		Fields: []Field{
			{Key: "smtpHost", Label: "Hostname", Input: InputText, Required: true},
			{Key: "smtpPort", Label: "Port", Input: InputNumber, Required: true},
			{Key: "smtpSecure", Label: "Secure (TLS)", Input: InputCheckbox},
			{Key: "smtpIgnoreTLSError", Label: "Ignore TLS Error", Input: InputCheckbox},
			{Key: "smtpUsername", Label: "Username", Input: InputText},
			{Key: "smtpPassword", Label: "Password", Input: InputPassword},
			{Key: "smtpFrom", Label: "From Email", Input: InputEmail, Required: true},
			{Key: "smtpTo", Label: "To Email", Input: InputText, Required: true},
			{Key: "smtpCC", Label: "CC", Input: InputText},
			{Key: "smtpBCC", Label: "BCC", Input: InputText},
		},
	},
	"webhook": {
		Type:  "webhook",
		Title: "Webhook",
		Fields: []Field{
			{Key: "webhookURL", Label: "Post URL", Input: InputURL, Required: true},
			{Key: "webhookContentType", Label: "Request Body", Input: InputSelect, Options: []string{"json", "form-data"}},
		},
	},
	"discord": {
		Type:  "discord",
		Title: "Discord",
		Fields: []Field{
			{Key: "discordWebhookUrl", Label: "Discord Webhook URL", Input: InputURL, Required: true},
			{Key: "discordUsername", Label: "Bot Display Name", Input: InputText},
		},
	},
	"slack": {
		Type:  "slack",
		Title: "Slack",
		Fields: []Field{
			{Key: "slackwebhookURL", Label: "Webhook URL", Input: InputURL, Required: true},
			{Key: "slackusername", Label: "Username", Input: InputText},
			{Key: "slackiconemo", Label: "Icon Emoji", Input: InputText},
			{Key: "slackchannel", Label: "Channel Name", Input: InputText},
		},
	},
	"gotify": {
		Type:  "gotify",
		Title: "Gotify",
		Fields: []Field{
			{Key: "gotifyserverurl", Label: "Server URL", Input: InputURL, Required: true},
			{Key: "gotifyapplicationToken", Label: "Application Token", Input: InputPassword, Required: true},
			{Key: "gotifyPriority", Label: "Priority", Input: InputNumber},
		},
	},
	"pushover": {
		Type:  "pushover",
		Title: "Pushover",
		Fields: []Field{
			{Key: "pushoveruserkey", Label: "User Key", Input: InputPassword, Required: true},
			{Key: "pushoverapptoken", Label: "Application Token", Input: InputPassword, Required: true},
			{Key: "pushoverdevice", Label: "Device", Input: InputText},
			{Key: "pushovertitle", Label: "Message Title", Input: InputText},
			{Key: "pushoverpriority", Label: "Priority", Input: InputSelect, Options: []string{"-2", "-1", "0", "1", "2"}},
			{Key: "pushoversounds", Label: "Notification Sound", Input: InputText},
		},
	},
	"apprise": {
		Type:  "apprise",
		Title: "Apprise (Support 50+ Notification services)",
		Fields: []Field{
			{Key: "appriseURL", Label: "Apprise URL", Input: InputText, Required: true},
		},
	},
}
