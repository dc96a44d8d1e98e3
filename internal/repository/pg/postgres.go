package pg

import (
	"context"
	"database/sql"
	"errors"

	"MonitorNotify/internal/domain"
	"github.com/lib/pq"
	"github.com/uptrace/bun"
	"github.com/wb-go/wbf/zlog"
)

// pqForeignKeyViolation код ошибки PostgreSQL при нарушении внешнего ключа.
const pqForeignKeyViolation = "23503"

// PostgresRepo структура для работы с уведомлениями в PostgreSQL через bun.
type PostgresRepo struct {
	DB *bun.DB
}

// NewPostgresRepo создает новый экземпляр PostgresRepo.
func NewPostgresRepo(db *bun.DB) *PostgresRepo {
	return &PostgresRepo{
		DB: db,
	}
}

// FindByIDAndUser получает уведомление пользователя по ID.
func (p *PostgresRepo) FindByIDAndUser(ctx context.Context, id, userID int64) (*domain.Notification, error) {
	n := new(domain.Notification)
	err := p.DB.NewSelect().
		Model(n).
		Where("n.id = ? AND n.user_id = ?", id, userID).
		Limit(1).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotificationNotFound
		}
		zlog.Logger.Error().Err(err).Int64("id", id).Msg("Error select notification")
		return nil, err
	}
	return n, nil
}

// Create создает новое уведомление в базе данных.
func (p *PostgresRepo) Create(ctx context.Context, n *domain.Notification) error {
	_, err := p.DB.NewInsert().
		Model(n).
		Column("name", "user_id", "config", "is_default", "active").
		Returning("id, created_at").
		Exec(ctx)
	if err != nil {
		zlog.Logger.Error().Err(err).Msg("Error insert notification")
		return err
	}
	zlog.Logger.Debug().Int64("id", n.ID).Int64("user_id", n.UserID).Str("name", n.Name).Msg("Created notification")
	return nil
}

// Update обновляет уведомление в базе данных.
func (p *PostgresRepo) Update(ctx context.Context, n *domain.Notification) error {
	res, err := p.DB.NewUpdate().
		Model(n).
		Column("name", "user_id", "config", "is_default").
		WherePK().
		Exec(ctx)
	if err != nil {
		zlog.Logger.Error().Err(err).Int64("id", n.ID).Msg("Error update notification")
		return err
	}
	if rows, _ := res.RowsAffected(); rows == 0 {
		zlog.Logger.Warn().Int64("id", n.ID).Msg("Update notification: no rows affected")
		return domain.ErrNotificationNotFound
	}
	return nil
}

// Delete удаляет уведомление, связи с мониторами удаляются каскадно.
func (p *PostgresRepo) Delete(ctx context.Context, n *domain.Notification) error {
	res, err := p.DB.NewDelete().
		Model(n).
		WherePK().
		Exec(ctx)
	if err != nil {
		zlog.Logger.Error().Err(err).Int64("id", n.ID).Msg("Error delete notification")
		return err
	}
	if rows, _ := res.RowsAffected(); rows == 0 {
		return domain.ErrNotificationNotFound
	}
	zlog.Logger.Debug().Int64("id", n.ID).Msg("Deleted notification")
	return nil
}

// ListByUser получает все уведомления пользователя.
func (p *PostgresRepo) ListByUser(ctx context.Context, userID int64) ([]domain.Notification, error) {
	list := make([]domain.Notification, 0)
	err := p.DB.NewSelect().
		Model(&list).
		Where("n.user_id = ?", userID).
		Order("n.id ASC").
		Scan(ctx)
	if err != nil {
		zlog.Logger.Error().Err(err).Int64("user_id", userID).Msg("Error list notifications")
		return nil, err
	}
	return list, nil
}

// ListMonitorIDsByUser получает ID всех мониторов пользователя.
func (p *PostgresRepo) ListMonitorIDsByUser(ctx context.Context, userID int64) ([]int64, error) {
	ids := make([]int64, 0)
	err := p.DB.NewSelect().
		Table("monitor").
		Column("id").
		Where("user_id = ?", userID).
		Order("id ASC").
		Scan(ctx, &ids)
	if err != nil {
		zlog.Logger.Error().Err(err).Int64("user_id", userID).Msg("Error list monitors")
		return nil, err
	}
	return ids, nil
}

// HasMonitorNotification проверяет наличие связи монитора и уведомления.
func (p *PostgresRepo) HasMonitorNotification(ctx context.Context, monitorID, notificationID int64) (bool, error) {
	count, err := p.DB.NewSelect().
		Model((*domain.MonitorNotification)(nil)).
		Where("mn.monitor_id = ? AND mn.notification_id = ?", monitorID, notificationID).
		Count(ctx)
	if err != nil {
		zlog.Logger.Error().Err(err).Int64("monitor_id", monitorID).Msg("Error check monitor notification")
		return false, err
	}
	return count > 0, nil
}

// CreateMonitorNotification создает связь монитора и уведомления.
func (p *PostgresRepo) CreateMonitorNotification(ctx context.Context, monitorID, notificationID int64) error {
	rel := &domain.MonitorNotification{MonitorID: monitorID, NotificationID: notificationID}
	_, err := p.DB.NewInsert().
		Model(rel).
		Column("monitor_id", "notification_id").
		Returning("id").
		Exec(ctx)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && string(pqErr.Code) == pqForeignKeyViolation {
			return domain.ErrMonitorNotFound
		}
		zlog.Logger.Error().Err(err).Int64("monitor_id", monitorID).Msg("Error insert monitor notification")
		return err
	}
	return nil
}

// ListActiveByMonitor получает активные уведомления, привязанные к монитору.
func (p *PostgresRepo) ListActiveByMonitor(ctx context.Context, monitorID int64) ([]domain.Notification, error) {
	list := make([]domain.Notification, 0)
	err := p.DB.NewSelect().
		Model(&list).
		Join("JOIN monitor_notification AS mn ON mn.notification_id = n.id").
		Where("mn.monitor_id = ?", monitorID).
		Where("n.active = ?", true).
		Order("n.id ASC").
		Scan(ctx)
	if err != nil {
		zlog.Logger.Error().Err(err).Int64("monitor_id", monitorID).Msg("Error list monitor notifications")
		return nil, err
	}
	return list, nil
}
