package sender

import (
	"context"
	"fmt"
	"sort"

	"MonitorNotify/internal/domain"
	"github.com/wb-go/wbf/zlog"
)

// Registry реестр провайдеров уведомлений, заполняется один раз при старте.
type Registry struct {
	providers map[string]domain.Provider
}

// NewRegistry создает реестр из списка провайдеров.
func NewRegistry(providers ...domain.Provider) (*Registry, error) {
	zlog.Logger.Info().Msg("Prepare notification providers")

	r := &Registry{providers: make(map[string]domain.Provider, len(providers))}
	for _, p := range providers {
		name := p.Name()
		if name == "" {
			return nil, domain.ErrProviderWithoutName
		}
		if _, ok := r.providers[name]; ok {
			return nil, fmt.Errorf("%w: %s", domain.ErrDuplicateProvider, name)
		}
		r.providers[name] = p
	}

	return r, nil
}

// Send отправляет сообщение провайдером, имя которого указано в cfg.type.
func (r *Registry) Send(ctx context.Context, cfg domain.NotificationConfig, msg string,
	monitor *domain.MonitorInfo, heartbeat *domain.Heartbeat) (string, error) {
	p, ok := r.providers[cfg.Type()]
	if !ok {
		return "", domain.ErrUnsupportedType
	}
	return p.Send(ctx, cfg, msg, monitor, heartbeat)
}

// Get возвращает провайдера по имени.
func (r *Registry) Get(name string) (domain.Provider, bool) {
	p, ok := r.providers[name]
	return p, ok
}

// Names возвращает отсортированный список имен провайдеров.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.providers))
	for name := range r.providers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
