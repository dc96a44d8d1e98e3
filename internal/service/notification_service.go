package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"MonitorNotify/internal/domain"
	"github.com/wb-go/wbf/retry"
	"github.com/wb-go/wbf/zlog"
)

const (
	appriseProvider = "apprise"
	testMessage     = "MonitorNotify Testing"
)

// Dispatcher реестр провайдеров, через который уходят сообщения.
type Dispatcher interface {
	Send(ctx context.Context, cfg domain.NotificationConfig, msg string,
		monitor *domain.MonitorInfo, heartbeat *domain.Heartbeat) (string, error)
	Get(name string) (domain.Provider, bool)
}

type NotificationService struct {
	providers     Dispatcher
	repo          domain.NotificationRepository
	cache         domain.NotificationListCache
	retryStrategy retry.Strategy
}

func NewNotificationService(
	providers Dispatcher,
	repo domain.NotificationRepository,
	cache domain.NotificationListCache,
	strategy retry.Strategy) *NotificationService {
	if strategy.Attempts < 1 {
		strategy.Attempts = 1
	}
	return &NotificationService{providers: providers, repo: repo, cache: cache, retryStrategy: strategy}
}

// Send отправляет сообщение провайдером из cfg.type.
func (s *NotificationService) Send(ctx context.Context, cfg domain.NotificationConfig, msg string,
	monitor *domain.MonitorInfo, heartbeat *domain.Heartbeat) (string, error) {
	res, err := s.providers.Send(ctx, cfg, msg, monitor, heartbeat)
	if err != nil {
		zlog.Logger.Warn().Err(err).Str("type", cfg.Type()).Msg("Send notification failed")
		return "", err
	}
	return res, nil
}

// Save создает новое уведомление (notificationID == 0) или обновляет существующее.
func (s *NotificationService) Save(ctx context.Context, cfg domain.NotificationConfig,
	notificationID, userID int64) (*domain.Notification, error) {
	op := "Save:"
	if cfg.Name() == "" {
		return nil, domain.ErrEmptyName
	}
	if cfg.Type() == "" {
		return nil, domain.ErrEmptyType
	}
	if _, ok := s.providers.Get(cfg.Type()); !ok {
		zlog.Logger.Warn().Msgf("%s notification type %s is not supported", op, cfg.Type())
		return nil, domain.ErrUnsupportedType
	}

	var (
		n   *domain.Notification
		err error
	)
	if notificationID > 0 {
		n, err = s.repo.FindByIDAndUser(ctx, notificationID, userID)
		if err != nil {
			if errors.Is(err, domain.ErrNotificationNotFound) {
				zlog.Logger.Warn().Msgf("%s notification (id = %d) not found", op, notificationID)
			}
			return nil, err
		}
	} else {
		n = &domain.Notification{Active: true}
	}

	data, err := json.Marshal(cfg)
	if err != nil {
		return nil, fmt.Errorf("marshal notification config: %w", err)
	}
	n.Name = cfg.Name()
	n.UserID = userID
	n.Config = string(data)
	n.IsDefault = cfg.IsDefault()

	if n.ID > 0 {
		err = s.repo.Update(ctx, n)
	} else {
		err = s.repo.Create(ctx, n)
	}
	if err != nil {
		zlog.Logger.Error().Msgf("%s failed to store notification: %v", op, err)
		return nil, err
	}
	// строка уже сохранена, кэш сбрасываем до привязки к мониторам
	s.invalidate(ctx, userID)

	if cfg.ApplyExisting() {
		if err := s.applyEveryMonitor(ctx, n.ID, userID); err != nil {
			return nil, err
		}
	}

	return n, nil
}

// Delete удаляет уведомление пользователя.
func (s *NotificationService) Delete(ctx context.Context, notificationID, userID int64) error {
	n, err := s.repo.FindByIDAndUser(ctx, notificationID, userID)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, n); err != nil {
		return err
	}
	s.invalidate(ctx, userID)
	return nil
}

// Get получает уведомление пользователя.
func (s *NotificationService) Get(ctx context.Context, notificationID, userID int64) (*domain.Notification, error) {
	return s.repo.FindByIDAndUser(ctx, notificationID, userID)
}

// List получает уведомления пользователя, сначала из кэша.
func (s *NotificationService) List(ctx context.Context, userID int64) ([]domain.Notification, error) {
	list, ok, err := s.cache.Get(ctx, userID)
	if err != nil {
		zlog.Logger.Warn().Err(err).Int64("user_id", userID).Msg("notification list cache unavailable")
	}
	if ok {
		return list, nil
	}

	list, err = s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if err := s.cache.Set(ctx, userID, list); err != nil {
		zlog.Logger.Warn().Err(err).Int64("user_id", userID).Msg("failed to cache notification list")
	}
	return list, nil
}

// ApplyToEveryMonitor привязывает уведомление ко всем мониторам пользователя.
func (s *NotificationService) ApplyToEveryMonitor(ctx context.Context, notificationID, userID int64) error {
	if _, err := s.repo.FindByIDAndUser(ctx, notificationID, userID); err != nil {
		return err
	}
	return s.applyEveryMonitor(ctx, notificationID, userID)
}

func (s *NotificationService) applyEveryMonitor(ctx context.Context, notificationID, userID int64) error {
	monitorIDs, err := s.repo.ListMonitorIDsByUser(ctx, userID)
	if err != nil {
		return err
	}

	for _, monitorID := range monitorIDs {
		exists, err := s.repo.HasMonitorNotification(ctx, monitorID, notificationID)
		if err != nil {
			return err
		}
		if exists {
			continue
		}
		if err := s.repo.CreateMonitorNotification(ctx, monitorID, notificationID); err != nil {
			// монитор удалили между выборкой и вставкой
			if errors.Is(err, domain.ErrMonitorNotFound) {
				continue
			}
			return err
		}
	}

	zlog.Logger.Debug().Int64("notification_id", notificationID).Int("monitors", len(monitorIDs)).
		Msg("notification applied to every monitor")
	return nil
}

// Test отправляет тестовое сообщение по несохраненной конфигурации.
func (s *NotificationService) Test(ctx context.Context, cfg domain.NotificationConfig) (string, error) {
	return s.Send(ctx, cfg, testMessage, nil, nil)
}

// SendMonitorAlert рассылает событие по всем активным уведомлениям монитора.
// Возвращает число успешных отправок и объединенные ошибки остальных.
func (s *NotificationService) SendMonitorAlert(ctx context.Context, event domain.AlertEvent) (int, error) {
	list, err := s.repo.ListActiveByMonitor(ctx, event.MonitorID)
	if err != nil {
		return 0, err
	}

	sent := 0
	var errs []error
	for _, n := range list {
		var cfg domain.NotificationConfig
		if err := json.Unmarshal([]byte(n.Config), &cfg); err != nil {
			zlog.Logger.Error().Err(err).Int64("notification_id", n.ID).Msg("broken notification config")
			errs = append(errs, fmt.Errorf("notification %d: %w", n.ID, err))
			continue
		}

		if err := s.sendWithRetry(ctx, cfg, event); err != nil {
			zlog.Logger.Error().Err(err).Int64("notification_id", n.ID).Int64("monitor_id", event.MonitorID).
				Msg("failed to send monitor alert")
			errs = append(errs, fmt.Errorf("notification %d: %w", n.ID, err))
			continue
		}
		sent++
	}

	return sent, errors.Join(errs...)
}

// sendWithRetry повторяет отправку только при ошибках внешнего сервиса.
func (s *NotificationService) sendWithRetry(ctx context.Context, cfg domain.NotificationConfig, event domain.AlertEvent) error {
	var permanent error
	err := retry.Do(func() error {
		if err := ctx.Err(); err != nil {
			permanent = err
			return nil
		}
		_, err := s.providers.Send(ctx, cfg, event.Msg, event.Monitor, event.Heartbeat)
		var perr *domain.ProviderError
		if err != nil && !errors.As(err, &perr) {
			permanent = err
			return nil
		}
		return err
	}, s.retryStrategy)
	if err != nil {
		return err
	}
	return permanent
}

// CheckApprise проверяет наличие apprise.
func (s *NotificationService) CheckApprise() bool {
	p, ok := s.providers.Get(appriseProvider)
	if !ok {
		return false
	}
	checker, ok := p.(interface{ Available() bool })
	return ok && checker.Available()
}

func (s *NotificationService) invalidate(ctx context.Context, userID int64) {
	if err := s.cache.Invalidate(ctx, userID); err != nil {
		zlog.Logger.Warn().Err(err).Int64("user_id", userID).Msg("failed to invalidate notification list cache")
	}
}
