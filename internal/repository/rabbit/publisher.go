package rabbit

import (
	"context"
	"encoding/json"
	"time"

	"MonitorNotify/internal/domain"
	"github.com/google/uuid"
	"github.com/rabbitmq/amqp091-go"
	"github.com/wb-go/wbf/zlog"
)

// channelPublisher часть amqp091.Channel, нужная для публикации.
type channelPublisher interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp091.Publishing) error
}

// Publisher структура для публикации событий мониторов в RabbitMQ.
type Publisher struct {
	ch         channelPublisher
	exchange   string
	routingKey string
}

// NewPublisher создает новый экземпляр Publisher.
func NewPublisher(ch channelPublisher, exchange, routingKey string) *Publisher {
	return &Publisher{ch: ch, exchange: exchange, routingKey: routingKey}
}

// PublishAlert публикует событие монитора в очередь рассылки.
func (p *Publisher) PublishAlert(ctx context.Context, event domain.AlertEvent) error {
	body, err := json.Marshal(event)
	if err != nil {
		return err
	}

	msg := amqp091.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp091.Persistent,
		MessageId:    uuid.New().String(),
		Timestamp:    time.Now(),
		Body:         body,
	}
	if err := p.ch.PublishWithContext(ctx, p.exchange, p.routingKey, false, false, msg); err != nil {
		zlog.Logger.Error().Err(err).Int64("monitor_id", event.MonitorID).Msg("failed to publish alert")
		return err
	}

	zlog.Logger.Debug().Str("message_id", msg.MessageId).Int64("monitor_id", event.MonitorID).Msg("alert published")
	return nil
}
