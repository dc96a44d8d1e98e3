package worker

import (
	"context"
	"encoding/json"
	"errors"
	"sync"

	"MonitorNotify/internal/domain"
	"github.com/rabbitmq/amqp091-go"
	"github.com/wb-go/wbf/zlog"
)

// deliveryChannel часть amqp091.Channel, нужная потребителю.
type deliveryChannel interface {
	Qos(prefetchCount, prefetchSize int, global bool) error
	Consume(queue, consumer string, autoAck, exclusive, noLocal, noWait bool,
		args amqp091.Table) (<-chan amqp091.Delivery, error)
}

// ConsumerConfig параметры потребителя событий мониторов.
type ConsumerConfig struct {
	Queue         string
	Tag           string
	Workers       int
	PrefetchCount int
}

type Consumer struct {
	service domain.NotificationService
	ch      deliveryChannel
	cfg     ConsumerConfig
}

func NewConsumer(service domain.NotificationService, ch deliveryChannel, cfg ConsumerConfig) *Consumer {
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	if cfg.PrefetchCount <= 0 {
		cfg.PrefetchCount = 1
	}
	return &Consumer{service: service, ch: ch, cfg: cfg}
}

// Start читает очередь в cfg.Workers горутин до отмены ctx или закрытия канала.
func (c *Consumer) Start(ctx context.Context) error {
	if err := c.ch.Qos(c.cfg.PrefetchCount, 0, false); err != nil {
		return err
	}
	deliveries, err := c.ch.Consume(c.cfg.Queue, c.cfg.Tag, false, false, false, false, nil)
	if err != nil {
		return err
	}

	zlog.Logger.Info().Str("queue", c.cfg.Queue).Int("workers", c.cfg.Workers).Msg("alert consumer started")

	var wg sync.WaitGroup
	for i := 0; i < c.cfg.Workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case <-ctx.Done():
					return
				case msg, ok := <-deliveries:
					if !ok {
						return
					}
					c.Handle(ctx, msg)
				}
			}
		}()
	}
	wg.Wait()

	zlog.Logger.Info().Str("queue", c.cfg.Queue).Msg("alert consumer stopped")
	return nil
}

// Handle обрабатывает одно сообщение: битые сообщения отклоняются,
// неудачная рассылка уходит в dead letter, успешная подтверждается.
func (c *Consumer) Handle(ctx context.Context, msg amqp091.Delivery) {
	zlog.Logger.Debug().Str("message_id", msg.MessageId).Str("body", string(msg.Body)).Msg("start send")

	var event domain.AlertEvent
	if err := json.Unmarshal(msg.Body, &event); err != nil {
		zlog.Logger.Error().Err(err).Str("message_id", msg.MessageId).Msg("failed to unmarshal body")
		c.reject(msg)
		return
	}
	if event.MonitorID <= 0 {
		zlog.Logger.Error().Str("message_id", msg.MessageId).Msg("alert without monitor id")
		c.reject(msg)
		return
	}

	sent, err := c.service.SendMonitorAlert(ctx, event)
	if err != nil && sent == 0 {
		zlog.Logger.Error().Err(err).Int64("monitor_id", event.MonitorID).Msg("failed to send alert with retry")
		if nerr := msg.Nack(false, false); nerr != nil {
			zlog.Logger.Error().Err(nerr).Msg("nack failed")
		}
		return
	}
	if err != nil {
		// часть уведомлений уже ушла, повтор задублирует их
		zlog.Logger.Warn().Err(err).Int64("monitor_id", event.MonitorID).Int("sent", sent).Msg("alert partially sent")
	}

	if err := msg.Ack(false); err != nil && !errors.Is(err, amqp091.ErrClosed) {
		zlog.Logger.Error().Err(err).Msg("ack failed")
		return
	}
	zlog.Logger.Debug().Int64("monitor_id", event.MonitorID).Int("sent", sent).Msg("alert processed")
}

func (c *Consumer) reject(msg amqp091.Delivery) {
	if err := msg.Reject(false); err != nil {
		zlog.Logger.Error().Err(err).Msg("reject failed")
	}
}
