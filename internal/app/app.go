package app

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	cfgman "MonitorNotify/internal/config"
	"MonitorNotify/internal/delivery/handlers"
	"MonitorNotify/internal/delivery/middleware"
	"MonitorNotify/internal/domain"
	"MonitorNotify/internal/forms"
	"MonitorNotify/internal/migrator"
	"MonitorNotify/internal/repository/cache"
	"MonitorNotify/internal/repository/pg"
	"MonitorNotify/internal/repository/rabbit"
	"MonitorNotify/internal/sender"
	"MonitorNotify/internal/sender/apprise"
	"MonitorNotify/internal/service"
	"MonitorNotify/internal/worker"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/extra/bundebug"
	"github.com/wb-go/wbf/dbpg"
	"github.com/wb-go/wbf/ginext"
	"github.com/wb-go/wbf/redis"
	"github.com/wb-go/wbf/retry"
	"github.com/wb-go/wbf/zlog"
)

// Application основная структура приложения.
type Application struct {
	config   *cfgman.Config
	server   *ginext.Engine
	db       *dbpg.DB
	bun      *bun.DB
	redis    *redis.Client
	rabbit   *rabbit.Client
	consumer *worker.Consumer
	service  *service.NotificationService
}

// New создает новое приложение.
func New() (*Application, error) {
	// Загружаем конфигурацию
	cfg, err := cfgman.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	// Инициализируем логгер
	if err := initLogger(cfg.Logging.Level); err != nil {
		return nil, fmt.Errorf("failed to init logger: %w", err)
	}

	app := &Application{
		config: cfg,
	}

	return app, nil
}

// Run запускает приложение в зависимости от команды.
func (a *Application) Run() error {
	if len(os.Args) < 2 {
		a.printUsage()
		return fmt.Errorf("no command specified")
	}

	command := os.Args[1]

	switch command {
	case "runserver":
		return a.runServer()
	case "migrate":
		return a.runMigrate()
	case "health":
		return a.runHealthCheck()
	case "apprise":
		return a.runCheckApprise()
	case "alert":
		return a.runPublishAlert(os.Args[2:])
	default:
		a.printUsage()
		return fmt.Errorf("unknown command: %s", command)
	}
}

// printUsage печатает инструкции по использованию.
func (a *Application) printUsage() {
	fmt.Println("MonitorNotify - рассылка уведомлений мониторинга")
	fmt.Println()
	fmt.Println("Доступные команды:")
	fmt.Println("  runserver                       - запуск HTTP сервера и воркеров")
	fmt.Println("  migrate up                      - накат миграций")
	fmt.Println("  migrate down                    - откат миграций")
	fmt.Println("  health                          - проверка состояния сервисов")
	fmt.Println("  apprise                         - проверка наличия apprise")
	fmt.Println("  alert <monitor_id> <up|down> <msg> - публикация события монитора в очередь")
	fmt.Println()
	fmt.Println("Примеры:")
	fmt.Println("  <appname> runserver")
	fmt.Println("  <appname> migrate up")
	fmt.Println("  <appname> alert 3 down \"[api] timeout\"")
}

// runHealthCheck проверяет состояние всех подключений.
func (a *Application) runHealthCheck() error {
	fmt.Println("Running health check...")

	// Проверяем подключение к базе данных
	if err := a.checkDatabase(); err != nil {
		return fmt.Errorf("database check failed: %w", err)
	}
	fmt.Println("✅ Database connection: OK")

	// Проверяем подключение к Redis
	if err := a.checkRedis(); err != nil {
		return fmt.Errorf("redis check failed: %w", err)
	}
	fmt.Println("✅ Redis connection: OK")

	// Проверяем подключение к RabbitMQ
	if err := a.checkRabbitMQ(); err != nil {
		return fmt.Errorf("rabbitmq check failed: %w", err)
	}
	fmt.Println("✅ RabbitMQ connection: OK")

	fmt.Println("🎉 All health checks passed!")
	return nil
}

// checkDatabase проверяет подключение к базе данных.
func (a *Application) checkDatabase() error {
	db, err := initDatabase(a.config.Database)
	if err != nil {
		return err
	}
	return db.Master.Close()
}

// checkRedis проверяет подключение к Redis.
func (a *Application) checkRedis() error {
	client, err := initRedis(a.config.Redis)
	if err != nil {
		return err
	}
	return client.Close()
}

// checkRabbitMQ проверяет подключение к RabbitMQ.
func (a *Application) checkRabbitMQ() error {
	cfg := a.config.RabbitMQ
	client, err := rabbit.NewClient(rabbit.ClientConfig{
		URL:            cfg.URL,
		ConnectionName: cfg.ConnectionName + "-health",
		ConnectTimeout: 5 * time.Second,
		Heartbeat:      5 * time.Second,
		Exchange:       cfg.ExchangeName,
	})
	if err != nil {
		return err
	}
	defer func() { _ = client.Close() }()

	return client.Ping()
}

// runCheckApprise проверяет наличие apprise.
func (a *Application) runCheckApprise() error {
	p := apprise.New(a.config.Notification.ApprisePath)
	if !p.Available() {
		return fmt.Errorf("apprise not found: %s", p.Binary)
	}
	fmt.Println("✅ Apprise is installed:", p.Binary)
	return nil
}

// runPublishAlert публикует событие монитора в очередь рассылки.
func (a *Application) runPublishAlert(args []string) error {
	event, err := parseAlertArgs(args, time.Now())
	if err != nil {
		return err
	}

	client, err := initRabbitMQ(a.config.RabbitMQ)
	if err != nil {
		return fmt.Errorf("failed to init rabbitmq: %w", err)
	}
	defer func() { _ = client.Close() }()

	publisher := rabbit.NewPublisher(client.Channel(), client.Exchange(), a.config.RabbitMQ.RoutingKey)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := publisher.PublishAlert(ctx, event); err != nil {
		return fmt.Errorf("failed to publish alert: %w", err)
	}
	fmt.Printf("✅ Alert for monitor %d published\n", event.MonitorID)
	return nil
}

// parseAlertArgs разбирает аргументы команды alert: <monitor_id> <up|down> <msg...>.
func parseAlertArgs(args []string, now time.Time) (domain.AlertEvent, error) {
	if len(args) < 3 {
		return domain.AlertEvent{}, fmt.Errorf("alert command requires <monitor_id> <up|down> <msg>")
	}

	monitorID, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil || monitorID <= 0 {
		return domain.AlertEvent{}, fmt.Errorf("invalid monitor id: %s", args[0])
	}

	var status domain.HeartbeatStatus
	switch args[1] {
	case "up":
		status = domain.StatusUp
	case "down":
		status = domain.StatusDown
	default:
		return domain.AlertEvent{}, fmt.Errorf("unknown status: %s (use up/down)", args[1])
	}

	msg := strings.Join(args[2:], " ")
	return domain.AlertEvent{
		MonitorID: monitorID,
		Msg:       msg,
		Heartbeat: &domain.Heartbeat{MonitorID: monitorID, Status: status, Msg: msg, Time: now},
	}, nil
}

// initLogger инициализирует логгер.
func initLogger(level string) error {
	zlog.Init()

	zerologLevel, err := zerolog.ParseLevel(level)
	if err != nil {
		return err
	}
	err = zlog.SetLevel(zerologLevel.String())
	if err != nil {
		return err
	}

	return nil
}

// runServer запускает приложение в режиме сервера.
func (a *Application) runServer() error {
	zlog.Logger.Info().Msg("Starting MonitorNotify server...")

	ctx, cancel := signal.NotifyContext(context.Background(),
		os.Interrupt, syscall.SIGTERM)
	defer cancel()
	if err := a.initConnections(); err != nil {
		return fmt.Errorf("failed to init connections: %w", err)
	}
	defer a.cleanup()
	if err := a.setupHTTPServer(); err != nil {
		return fmt.Errorf("failed to setup HTTP server: %w", err)
	}
	a.startWorkers(ctx)
	zlog.Logger.Info().Str("address", a.config.HTTP.GetConnectionString()).Msg("HTTP server starting")
	serverErr := make(chan error, 1)
	go func() {
		serverErr <- a.server.Run(a.config.HTTP.GetConnectionString())
	}()
	zlog.Logger.Info().Msg("HTTP server started, waiting for shutdown signal...")
	select {
	case err := <-serverErr:
		return fmt.Errorf("HTTP server error: %w", err)
	case <-ctx.Done():
		zlog.Logger.Info().Msg("Received shutdown signal")
		return nil
	}
}

// runMigrate запускает приложение в режиме миграций.
func (a *Application) runMigrate() error {
	if len(os.Args) < 3 {
		return fmt.Errorf("migrate command requires direction (up/down)")
	}

	direction := os.Args[2]
	if direction != "up" && direction != "down" {
		return fmt.Errorf("unknown migrate direction: %s (use up/down)", direction)
	}

	zlog.Logger.Info().Str("direction", direction).Msg("Running migrations...")
	db, err := initDatabase(a.config.Database)
	if err != nil {
		return fmt.Errorf("failed to init database: %w", err)
	}
	defer func(Master *sql.DB) {
		_ = Master.Close()
	}(db.Master)

	m, err := migrator.NewMigrator(db.Master, a.config.Migrations.Path)
	if err != nil {
		return fmt.Errorf("failed to create migrator: %w", err)
	}
	defer func() { _ = m.Close() }()

	if direction == "up" {
		err = m.Up()
	} else {
		err = m.Down()
	}
	if err != nil {
		return fmt.Errorf("migration %s failed: %w", direction, err)
	}

	version, err := m.Version()
	if err != nil {
		return err
	}
	zlog.Logger.Info().Uint("version", version).Msg("Migrations applied successfully")
	return nil
}

// initConnections инициализирует все подключения.
func (a *Application) initConnections() error {
	var err error

	a.db, err = initDatabase(a.config.Database)
	if err != nil {
		return fmt.Errorf("failed to init database: %w", err)
	}
	a.bun = initBun(a.db, a.config.Logging.Level)

	a.redis, err = initRedis(a.config.Redis)
	if err != nil {
		return fmt.Errorf("failed to init redis: %w", err)
	}

	a.rabbit, err = initRabbitMQ(a.config.RabbitMQ)
	if err != nil {
		return fmt.Errorf("failed to init rabbitmq: %w", err)
	}

	if err := a.initServices(); err != nil {
		return fmt.Errorf("failed to init services: %w", err)
	}

	return nil
}

// initDatabase инициализирует подключение к базе данных.
func initDatabase(cfg cfgman.DatabaseConfig) (*dbpg.DB, error) {
	opts := &dbpg.Options{
		MaxOpenConns: cfg.MaxOpenConns,
		MaxIdleConns: cfg.MaxIdleConns,
	}

	db, err := dbpg.New(cfg.DSN, nil, opts)
	if err != nil {
		return nil, err
	}

	if err := db.Master.Ping(); err != nil {
		return nil, err
	}

	zlog.Logger.Info().Msg("Database connection established")
	return db, nil
}

// initBun оборачивает пул dbpg в bun, на уровне debug логирует запросы.
func initBun(db *dbpg.DB, level string) *bun.DB {
	bunDB := bun.NewDB(db.Master, pgdialect.New())
	if level == zerolog.DebugLevel.String() || level == zerolog.TraceLevel.String() {
		bunDB.AddQueryHook(bundebug.NewQueryHook(bundebug.WithVerbose(true)))
	}
	return bunDB
}

// initRedis инициализирует подключение к Redis.
func initRedis(cfg cfgman.RedisConfig) (*redis.Client, error) {
	client := redis.New(cfg.Addr, cfg.Password, cfg.DB)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, err
	}

	zlog.Logger.Info().Msg("Redis connection established")
	return client, nil
}

// initRabbitMQ инициализирует подключение к RabbitMQ и объявляет очередь событий с dead letter.
func initRabbitMQ(cfg cfgman.RabbitMQConfig) (*rabbit.Client, error) {
	client, err := rabbit.NewClient(rabbit.ClientConfig{
		URL:            cfg.URL,
		ConnectionName: cfg.ConnectionName,
		ConnectTimeout: cfg.ConnectTimeout,
		Heartbeat:      cfg.Heartbeat,
		Exchange:       cfg.ExchangeName,
	})
	if err != nil {
		return nil, err
	}

	queueArgs, err := client.DeclareDeadLetter(cfg.QueueName)
	if err != nil {
		_ = client.Close()
		zlog.Logger.Error().Err(err).Msg("Failed to declare dead letter queue")
		return nil, err
	}
	if err := client.DeclareQueue(cfg.QueueName, cfg.RoutingKey, queueArgs); err != nil {
		_ = client.Close()
		zlog.Logger.Error().Err(err).Msg("Failed to declare queue")
		return nil, err
	}
	zlog.Logger.Info().Msg("RabbitMQ connection established")
	return client, nil
}

// initServices инициализирует сервисы приложения.
func (a *Application) initServices() error {
	nc := a.config.Notification
	registry, err := sender.Default(sender.Options{
		Timeout:        nc.Timeout,
		TelegramAPIURL: nc.TelegramAPIURL,
		AppriseBinary:  nc.ApprisePath,
	})
	if err != nil {
		return err
	}

	retryStrategy := retry.Strategy{
		Attempts: nc.Retry.Attempts,
		Delay:    nc.Retry.Delay,
		Backoff:  float64(nc.Retry.Backoff),
	}

	a.service = service.NewNotificationService(
		registry,
		pg.NewPostgresRepo(a.bun),
		cache.NewListCache(a.redis, a.config.Redis.CacheTTL),
		retryStrategy)

	return nil
}

// setupHTTPServer настраивает HTTP сервер.
func (a *Application) setupHTTPServer() error {
	a.server = ginext.New(gin.ReleaseMode)
	a.server.Use(cors.New(cors.Config{
		AllowOrigins: []string{"*"},
		AllowHeaders: []string{"Content-Type", "Authorization", "X-User-ID", "X-Request-ID"},
		AllowMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
	}))

	a.server.Use(middleware.RequestIDMiddleware())
	a.server.Use(middleware.LoggingMiddleware())

	h := handlers.NewHandlersSet(a.service, forms.Default)
	group := a.server.RouterGroup.Group("notifications", middleware.UserIDMiddleware())
	h.Register(group)

	return nil
}

// startWorkers запускает воркеры для обработки событий мониторов.
func (a *Application) startWorkers(ctx context.Context) {
	cfg := a.config.RabbitMQ
	a.consumer = worker.NewConsumer(a.service, a.rabbit.Channel(), worker.ConsumerConfig{
		Queue:         cfg.QueueName,
		Tag:           cfg.ConnectionName,
		Workers:       cfg.Workers,
		PrefetchCount: cfg.PrefetchCount,
	})

	go func() {
		if err := a.consumer.Start(ctx); err != nil {
			zlog.Logger.Error().Err(err).Msg("alert consumer failed")
		}
	}()

	zlog.Logger.Info().Msg("Workers started successfully")
}

// cleanup освобождает ресурсы.
func (a *Application) cleanup() {
	zlog.Logger.Info().Msg("Cleaning up resources...")

	if a.rabbit != nil {
		_ = a.rabbit.Close()
	}

	if a.redis != nil {
		_ = a.redis.Close()
	}

	if a.bun != nil {
		_ = a.bun.Close()
	} else if a.db != nil {
		_ = a.db.Master.Close()
	}

	zlog.Logger.Info().Msg("Cleanup completed")
}
