package rabbit

import (
	"fmt"
	"time"

	"github.com/rabbitmq/amqp091-go"
	"github.com/wb-go/wbf/rabbitmq"
	"github.com/wb-go/wbf/zlog"
)

// ClientConfig параметры подключения к RabbitMQ.
type ClientConfig struct {
	URL            string
	ConnectionName string
	ConnectTimeout time.Duration
	Heartbeat      time.Duration
	Exchange       string
}

// Client соединение и канал RabbitMQ.
type Client struct {
	conn     *rabbitmq.Connection
	ch       *rabbitmq.Channel
	queues   *rabbitmq.QueueManager
	exchange string
}

func durableExchange(name, kind string) *rabbitmq.Exchange {
	e := rabbitmq.NewExchange(name, kind)
	e.Durable = true
	return e
}

// NewClient подключается к RabbitMQ и объявляет direct exchange.
func NewClient(cfg ClientConfig) (*Client, error) {
	conn, err := amqp091.DialConfig(cfg.URL, amqp091.Config{
		Heartbeat:  cfg.Heartbeat,
		Properties: amqp091.Table{"connection_name": cfg.ConnectionName},
		Dial:       amqp091.DefaultDial(cfg.ConnectTimeout),
	})
	if err != nil {
		return nil, fmt.Errorf("dial rabbitmq: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}

	if err := durableExchange(cfg.Exchange, amqp091.ExchangeDirect).BindToChannel(ch); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("declare exchange %s: %w", cfg.Exchange, err)
	}

	return &Client{conn: conn, ch: ch, queues: rabbitmq.NewQueueManager(ch), exchange: cfg.Exchange}, nil
}

// DeclareQueue объявляет durable очередь и привязывает ее к exchange клиента.
func (c *Client) DeclareQueue(queue, routingKey string, args amqp091.Table) error {
	if _, err := c.queues.DeclareQueue(queue, rabbitmq.QueueConfig{Durable: true, Args: args}); err != nil {
		return fmt.Errorf("declare queue %s: %w", queue, err)
	}
	if err := c.ch.QueueBind(queue, routingKey, c.exchange, false, nil); err != nil {
		return fmt.Errorf("bind queue %s: %w", queue, err)
	}
	zlog.Logger.Debug().Str("queue", queue).Str("exchange", c.exchange).Msg("queue declared")
	return nil
}

// DeclareDeadLetter объявляет fanout exchange <queue>.dlx и очередь <queue>.dlq для
// отклоненных сообщений. Возвращает аргументы для основной очереди.
func (c *Client) DeclareDeadLetter(queue string) (amqp091.Table, error) {
	dlx := queue + ".dlx"
	dlq := queue + ".dlq"
	if err := durableExchange(dlx, amqp091.ExchangeFanout).BindToChannel(c.ch); err != nil {
		return nil, fmt.Errorf("declare exchange %s: %w", dlx, err)
	}
	if _, err := c.queues.DeclareQueue(dlq, rabbitmq.QueueConfig{Durable: true}); err != nil {
		return nil, fmt.Errorf("declare queue %s: %w", dlq, err)
	}
	if err := c.ch.QueueBind(dlq, "", dlx, false, nil); err != nil {
		return nil, fmt.Errorf("bind queue %s: %w", dlq, err)
	}
	return amqp091.Table{"x-dead-letter-exchange": dlx}, nil
}

// Channel возвращает канал клиента.
func (c *Client) Channel() *amqp091.Channel {
	return c.ch
}

// Exchange возвращает имя exchange клиента.
func (c *Client) Exchange() string {
	return c.exchange
}

// Ping проверяет, что соединение не закрыто.
func (c *Client) Ping() error {
	if c.conn == nil || c.conn.IsClosed() {
		return amqp091.ErrClosed
	}
	return nil
}

// Close закрывает канал и соединение.
func (c *Client) Close() error {
	if c.ch != nil {
		_ = c.ch.Close()
	}
	if c.conn != nil {
		return c.conn.Close()
	}
	return nil
}
