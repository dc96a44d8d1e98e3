package service_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"MonitorNotify/internal/domain"
	"MonitorNotify/internal/sender"
	"MonitorNotify/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/wb-go/wbf/retry"
)

// MockRepository мок для NotificationRepository
type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) FindByIDAndUser(ctx context.Context, id, userID int64) (*domain.Notification, error) {
	args := m.Called(ctx, id, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Notification), args.Error(1)
}

func (m *MockRepository) Create(ctx context.Context, n *domain.Notification) error {
	return m.Called(ctx, n).Error(0)
}

func (m *MockRepository) Update(ctx context.Context, n *domain.Notification) error {
	return m.Called(ctx, n).Error(0)
}

func (m *MockRepository) Delete(ctx context.Context, n *domain.Notification) error {
	return m.Called(ctx, n).Error(0)
}

func (m *MockRepository) ListByUser(ctx context.Context, userID int64) ([]domain.Notification, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).([]domain.Notification), args.Error(1)
}

func (m *MockRepository) ListMonitorIDsByUser(ctx context.Context, userID int64) ([]int64, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).([]int64), args.Error(1)
}

func (m *MockRepository) HasMonitorNotification(ctx context.Context, monitorID, notificationID int64) (bool, error) {
	args := m.Called(ctx, monitorID, notificationID)
	return args.Bool(0), args.Error(1)
}

func (m *MockRepository) CreateMonitorNotification(ctx context.Context, monitorID, notificationID int64) error {
	return m.Called(ctx, monitorID, notificationID).Error(0)
}

func (m *MockRepository) ListActiveByMonitor(ctx context.Context, monitorID int64) ([]domain.Notification, error) {
	args := m.Called(ctx, monitorID)
	return args.Get(0).([]domain.Notification), args.Error(1)
}

// MockCache мок для NotificationListCache
type MockCache struct {
	mock.Mock
}

func (m *MockCache) Get(ctx context.Context, userID int64) ([]domain.Notification, bool, error) {
	args := m.Called(ctx, userID)
	list, _ := args.Get(0).([]domain.Notification)
	return list, args.Bool(1), args.Error(2)
}

func (m *MockCache) Set(ctx context.Context, userID int64, list []domain.Notification) error {
	return m.Called(ctx, userID, list).Error(0)
}

func (m *MockCache) Invalidate(ctx context.Context, userID int64) error {
	return m.Called(ctx, userID).Error(0)
}

// MockProvider мок провайдера уведомлений
type MockProvider struct {
	mock.Mock
	name string
}

func (m *MockProvider) Name() string { return m.name }

func (m *MockProvider) Send(ctx context.Context, cfg domain.NotificationConfig, msg string,
	monitor *domain.MonitorInfo, heartbeat *domain.Heartbeat) (string, error) {
	args := m.Called(ctx, cfg, msg, monitor, heartbeat)
	return args.String(0), args.Error(1)
}

// availableProvider провайдер apprise с проверкой наличия
type availableProvider struct {
	MockProvider
	available bool
}

func (a *availableProvider) Available() bool { return a.available }

type fixture struct {
	repo     *MockRepository
	cache    *MockCache
	provider *MockProvider
	svc      *service.NotificationService
}

func newFixture(t *testing.T, extra ...domain.Provider) *fixture {
	t.Helper()
	f := &fixture{
		repo:     new(MockRepository),
		cache:    new(MockCache),
		provider: &MockProvider{name: "webhook"},
	}
	registry, err := sender.NewRegistry(append([]domain.Provider{f.provider}, extra...)...)
	require.NoError(t, err)

	f.svc = service.NewNotificationService(registry, f.repo, f.cache,
		retry.Strategy{Attempts: 3, Delay: time.Millisecond, Backoff: 1})
	return f
}

func webhookConfig() domain.NotificationConfig {
	return domain.NotificationConfig{"name": "hook", "type": "webhook", "webhookURL": "http://hook.test"}
}

// TestSave_Create проверяет создание нового уведомления
func TestSave_Create(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	cfg := webhookConfig()
	cfg["isDefault"] = true

	f.repo.On("Create", ctx, mock.MatchedBy(func(n *domain.Notification) bool {
		return n.Name == "hook" && n.UserID == 2 && n.IsDefault && n.Active
	})).Run(func(args mock.Arguments) {
		args.Get(1).(*domain.Notification).ID = 7
	}).Return(nil)
	f.cache.On("Invalidate", ctx, int64(2)).Return(nil)

	n, err := f.svc.Save(ctx, cfg, 0, 2)

	require.NoError(t, err)
	assert.Equal(t, int64(7), n.ID)
	var stored map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(n.Config), &stored))
	assert.Equal(t, "http://hook.test", stored["webhookURL"])
	f.repo.AssertExpectations(t)
	f.cache.AssertExpectations(t)
}

// TestSave_DefaultFalseWhenAbsent проверяет is_default по умолчанию
func TestSave_DefaultFalseWhenAbsent(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	f.repo.On("Create", ctx, mock.MatchedBy(func(n *domain.Notification) bool {
		return !n.IsDefault
	})).Return(nil)
	f.cache.On("Invalidate", ctx, int64(2)).Return(nil)

	_, err := f.svc.Save(ctx, webhookConfig(), 0, 2)

	assert.NoError(t, err)
	f.repo.AssertExpectations(t)
}

// TestSave_Update проверяет обновление существующего уведомления
func TestSave_Update(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	existing := &domain.Notification{ID: 5, Name: "old", UserID: 2, Active: true}

	f.repo.On("FindByIDAndUser", ctx, int64(5), int64(2)).Return(existing, nil)
	f.repo.On("Update", ctx, existing).Return(nil)
	f.cache.On("Invalidate", ctx, int64(2)).Return(nil)

	n, err := f.svc.Save(ctx, webhookConfig(), 5, 2)

	require.NoError(t, err)
	assert.Equal(t, "hook", n.Name)
	assert.Equal(t, int64(5), n.ID)
	f.repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

// TestSave_NotFound проверяет обновление чужого или отсутствующего уведомления
func TestSave_NotFound(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	f.repo.On("FindByIDAndUser", ctx, int64(5), int64(3)).Return(nil, domain.ErrNotificationNotFound)

	n, err := f.svc.Save(ctx, webhookConfig(), 5, 3)

	assert.Nil(t, n)
	assert.ErrorIs(t, err, domain.ErrNotificationNotFound)
	f.cache.AssertNotCalled(t, "Invalidate", mock.Anything, mock.Anything)
}

// TestSave_Validation проверяет обязательные поля конфигурации
func TestSave_Validation(t *testing.T) {
	f := newFixture(t)

	tests := []struct {
		name string
		cfg  domain.NotificationConfig
		err  error
	}{
		{"empty name", domain.NotificationConfig{"type": "webhook"}, domain.ErrEmptyName},
		{"empty type", domain.NotificationConfig{"name": "n"}, domain.ErrEmptyType},
		{"unsupported type", domain.NotificationConfig{"name": "n", "type": "pager"}, domain.ErrUnsupportedType},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.svc.Save(context.Background(), tt.cfg, 0, 1)
			assert.ErrorIs(t, err, tt.err)
		})
	}
	f.repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

// TestSave_ApplyExisting проверяет привязку ко всем мониторам при сохранении
func TestSave_ApplyExisting(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	cfg := webhookConfig()
	cfg["applyExisting"] = true

	f.repo.On("Create", ctx, mock.Anything).Run(func(args mock.Arguments) {
		args.Get(1).(*domain.Notification).ID = 9
	}).Return(nil)
	f.repo.On("ListMonitorIDsByUser", ctx, int64(2)).Return([]int64{1, 2, 3}, nil)
	f.repo.On("HasMonitorNotification", ctx, int64(1), int64(9)).Return(true, nil)
	f.repo.On("HasMonitorNotification", ctx, int64(2), int64(9)).Return(false, nil)
	f.repo.On("HasMonitorNotification", ctx, int64(3), int64(9)).Return(false, nil)
	f.repo.On("CreateMonitorNotification", ctx, int64(2), int64(9)).Return(nil)
	f.repo.On("CreateMonitorNotification", ctx, int64(3), int64(9)).Return(domain.ErrMonitorNotFound)
	f.cache.On("Invalidate", ctx, int64(2)).Return(nil)

	_, err := f.svc.Save(ctx, cfg, 0, 2)

	require.NoError(t, err)
	f.repo.AssertExpectations(t)
	f.repo.AssertNotCalled(t, "CreateMonitorNotification", ctx, int64(1), int64(9))
}

// TestSave_ApplyFailureInvalidatesCache проверяет сброс кэша, когда строка
// сохранена, а привязка к мониторам упала
func TestSave_ApplyFailureInvalidatesCache(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	cfg := webhookConfig()
	cfg["applyExisting"] = true

	f.repo.On("Create", ctx, mock.Anything).Run(func(args mock.Arguments) {
		args.Get(1).(*domain.Notification).ID = 9
	}).Return(nil)
	f.repo.On("ListMonitorIDsByUser", ctx, int64(2)).Return([]int64(nil), errors.New("db blip"))
	f.cache.On("Invalidate", ctx, int64(2)).Return(nil)

	_, err := f.svc.Save(ctx, cfg, 0, 2)

	assert.EqualError(t, err, "db blip")
	f.repo.AssertCalled(t, "Create", ctx, mock.Anything)
	f.cache.AssertCalled(t, "Invalidate", ctx, int64(2))
}

// TestSave_CacheErrorIgnored проверяет, что ошибка кэша не ломает сохранение
func TestSave_CacheErrorIgnored(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	f.repo.On("Create", ctx, mock.Anything).Return(nil)
	f.cache.On("Invalidate", ctx, int64(2)).Return(errors.New("redis down"))

	_, err := f.svc.Save(ctx, webhookConfig(), 0, 2)

	assert.NoError(t, err)
}

// TestApplyToEveryMonitor_NotFound проверяет владельца уведомления
func TestApplyToEveryMonitor_NotFound(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	f.repo.On("FindByIDAndUser", ctx, int64(9), int64(2)).Return(nil, domain.ErrNotificationNotFound)

	err := f.svc.ApplyToEveryMonitor(ctx, 9, 2)

	assert.ErrorIs(t, err, domain.ErrNotificationNotFound)
	f.repo.AssertNotCalled(t, "ListMonitorIDsByUser", mock.Anything, mock.Anything)
}

// TestDelete_Success проверяет удаление уведомления
func TestDelete_Success(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	n := &domain.Notification{ID: 4, UserID: 2}

	f.repo.On("FindByIDAndUser", ctx, int64(4), int64(2)).Return(n, nil)
	f.repo.On("Delete", ctx, n).Return(nil)
	f.cache.On("Invalidate", ctx, int64(2)).Return(nil)

	err := f.svc.Delete(ctx, 4, 2)

	assert.NoError(t, err)
	f.repo.AssertExpectations(t)
	f.cache.AssertExpectations(t)
}

// TestDelete_NotFound проверяет удаление отсутствующего уведомления
func TestDelete_NotFound(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	f.repo.On("FindByIDAndUser", ctx, int64(4), int64(2)).Return(nil, domain.ErrNotificationNotFound)

	err := f.svc.Delete(ctx, 4, 2)

	assert.ErrorIs(t, err, domain.ErrNotificationNotFound)
	f.repo.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
}

// TestList_CacheHit проверяет чтение списка из кэша
func TestList_CacheHit(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	cached := []domain.Notification{{ID: 1, Name: "a"}}

	f.cache.On("Get", ctx, int64(2)).Return(cached, true, nil)

	list, err := f.svc.List(ctx, 2)

	require.NoError(t, err)
	assert.Equal(t, cached, list)
	f.repo.AssertNotCalled(t, "ListByUser", mock.Anything, mock.Anything)
}

// TestList_CacheMiss проверяет чтение из базы и заполнение кэша
func TestList_CacheMiss(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	stored := []domain.Notification{{ID: 1, Name: "a"}, {ID: 2, Name: "b"}}

	f.cache.On("Get", ctx, int64(2)).Return(nil, false, errors.New("redis down"))
	f.repo.On("ListByUser", ctx, int64(2)).Return(stored, nil)
	f.cache.On("Set", ctx, int64(2), stored).Return(nil)

	list, err := f.svc.List(ctx, 2)

	require.NoError(t, err)
	assert.Len(t, list, 2)
	f.cache.AssertExpectations(t)
}

// TestTest_SendsTestingMessage проверяет тестовую отправку
func TestTest_SendsTestingMessage(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	cfg := webhookConfig()

	f.provider.On("Send", ctx, cfg, "MonitorNotify Testing", (*domain.MonitorInfo)(nil), (*domain.Heartbeat)(nil)).
		Return(domain.SentSuccessfully, nil)

	res, err := f.svc.Test(ctx, cfg)

	require.NoError(t, err)
	assert.Equal(t, domain.SentSuccessfully, res)
}

// TestSend_UnsupportedType проверяет отправку неизвестным провайдером
func TestSend_UnsupportedType(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Send(context.Background(), domain.NotificationConfig{"type": "pager"}, "m", nil, nil)

	assert.ErrorIs(t, err, domain.ErrUnsupportedType)
}

// TestSendMonitorAlert проверяет рассылку события по уведомлениям монитора
func TestSendMonitorAlert(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	event := domain.AlertEvent{MonitorID: 3, Msg: "[api] [down] timeout"}

	f.repo.On("ListActiveByMonitor", ctx, int64(3)).Return([]domain.Notification{
		{ID: 1, Config: `{"type":"webhook","webhookURL":"http://ok"}`},
		{ID: 2, Config: `{"type":"webhook","webhookURL":"http://fail"}`},
		{ID: 3, Config: `not json`},
	}, nil)
	f.provider.On("Send", ctx, mock.MatchedBy(func(cfg domain.NotificationConfig) bool {
		return cfg.String("webhookURL") == "http://ok"
	}), event.Msg, mock.Anything, mock.Anything).Return(domain.SentSuccessfully, nil).Once()
	f.provider.On("Send", ctx, mock.MatchedBy(func(cfg domain.NotificationConfig) bool {
		return cfg.String("webhookURL") == "http://fail"
	}), event.Msg, mock.Anything, mock.Anything).
		Return("", &domain.ProviderError{Provider: "webhook", Err: errors.New("502")})

	sent, err := f.svc.SendMonitorAlert(ctx, event)

	assert.Equal(t, 1, sent)
	require.Error(t, err)
	var perr *domain.ProviderError
	assert.ErrorAs(t, err, &perr)
	assert.Contains(t, err.Error(), "notification 2")
	assert.Contains(t, err.Error(), "notification 3")
	f.provider.AssertExpectations(t)

	// ошибка провайдера повторяется по стратегии, успешная отправка нет
	f.provider.AssertNumberOfCalls(t, "Send", 4)
	failed := 0
	for _, call := range f.provider.Calls {
		if call.Arguments.Get(1).(domain.NotificationConfig).String("webhookURL") == "http://fail" {
			failed++
		}
	}
	assert.Equal(t, 3, failed)
}

// TestSendMonitorAlert_NoRetryOnConfigError проверяет, что ошибки конфигурации не повторяются
func TestSendMonitorAlert_NoRetryOnConfigError(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	f.repo.On("ListActiveByMonitor", ctx, int64(3)).Return([]domain.Notification{
		{ID: 1, Config: `{"type":"webhook"}`},
	}, nil)
	f.provider.On("Send", ctx, mock.Anything, "m", mock.Anything, mock.Anything).
		Return("", &domain.MissingFieldError{Field: "webhookURL"}).Once()

	sent, err := f.svc.SendMonitorAlert(ctx, domain.AlertEvent{MonitorID: 3, Msg: "m"})

	assert.Zero(t, sent)
	var ferr *domain.MissingFieldError
	assert.ErrorAs(t, err, &ferr)
	f.provider.AssertNumberOfCalls(t, "Send", 1)
}

// TestSendMonitorAlert_RepoError проверяет ошибку чтения уведомлений монитора
func TestSendMonitorAlert_RepoError(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	f.repo.On("ListActiveByMonitor", ctx, int64(3)).Return([]domain.Notification(nil), errors.New("db down"))

	sent, err := f.svc.SendMonitorAlert(ctx, domain.AlertEvent{MonitorID: 3})

	assert.Zero(t, sent)
	assert.EqualError(t, err, "db down")
}

// TestCheckApprise проверяет наличие apprise
func TestCheckApprise(t *testing.T) {
	assert.False(t, newFixture(t).svc.CheckApprise())

	withApprise := newFixture(t, &availableProvider{MockProvider: MockProvider{name: "apprise"}, available: true})
	assert.True(t, withApprise.svc.CheckApprise())
}
