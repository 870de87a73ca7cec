package app

import (
	"context"
	"fmt"
	"time"

	"github.com/bsm/redislock"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/cofinco/backoffice/internal/api/handlers"
	"github.com/cofinco/backoffice/internal/common/config"
	"github.com/cofinco/backoffice/internal/domain/account"
	"github.com/cofinco/backoffice/internal/domain/audit"
	"github.com/cofinco/backoffice/internal/domain/document"
	"github.com/cofinco/backoffice/internal/domain/ledger"
	"github.com/cofinco/backoffice/internal/domain/otp"
	"github.com/cofinco/backoffice/internal/domain/settings"
	"github.com/cofinco/backoffice/internal/domain/user"
	ddbclient "github.com/cofinco/backoffice/internal/platform/dynamodb/client"
	"github.com/cofinco/backoffice/internal/platform/dynamodb/repository"
	"github.com/cofinco/backoffice/internal/platform/events"
	"github.com/cofinco/backoffice/internal/platform/filestore"
	"github.com/cofinco/backoffice/internal/platform/lock"
	"github.com/cofinco/backoffice/internal/platform/pgstore"
	"github.com/cofinco/backoffice/internal/platform/redisstore"
	"github.com/cofinco/backoffice/internal/platform/sms"
)

// App holds the document session and every service built on it
type App struct {
	Session  *document.Session
	Services handlers.Services

	closers []func() error
	logger  *zap.Logger
}

// New opens the configured backends and wires the services
func New(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*App, error) {
	a := &App{logger: logger}

	var rdb *redis.Client
	if cfg.DocumentStore == config.StoreRedis || cfg.DocumentLock == config.LockRedis {
		var err error
		rdb, err = redisstore.NewClient(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, rdb.Close)
	}

	storage, err := a.openStorage(ctx, cfg, rdb)
	if err != nil {
		a.Close()
		return nil, err
	}

	opts := []document.Option{document.WithLogger(logger)}
	switch cfg.DocumentLock {
	case config.LockLocal:
		opts = append(opts, document.WithLocker(lock.NewMutex()))
	case config.LockRedis:
		ttl := time.Duration(cfg.LockTTLSecs) * time.Second
		opts = append(opts, document.WithLocker(lock.NewRedis(redislock.New(rdb), cfg.DocumentName, ttl)))
	}

	pub, err := a.openPublisher(cfg)
	if err != nil {
		a.Close()
		return nil, err
	}
	if pub != nil {
		opts = append(opts, document.WithCommitHook(audit.PublishHook(pub, logger)))
	}

	a.Session = document.NewSession(document.NewJSONRepository(storage), opts...)
	a.Services = handlers.Services{
		Users:    user.NewService(a.Session),
		Settings: settings.NewService(a.Session),
		Otp:      otp.NewService(a.Session, sms.NewLogSender(logger, cfg.OtpRevealCode), logger, otp.Config{RevealCode: cfg.OtpRevealCode}),
		Accounts: account.NewService(a.Session, logger),
		Ledger:   ledger.NewService(a.Session, logger, ledger.Config{StrictTypes: cfg.LedgerStrictTypes}),
		Audit:    audit.NewService(a.Session),
	}

	logger.Info("backoffice ready",
		zap.String("store", cfg.DocumentStore),
		zap.String("lock", cfg.DocumentLock),
		zap.String("auditSink", cfg.AuditSink))
	return a, nil
}

func (a *App) openStorage(ctx context.Context, cfg *config.Config, rdb *redis.Client) (document.Storage, error) {
	switch cfg.DocumentStore {
	case config.StoreMemory:
		return document.NewMemoryStorage(), nil
	case config.StoreFile:
		return filestore.New(cfg.DataPath), nil
	case config.StoreDynamoDB:
		client, err := ddbclient.NewDynamoDBClient(ctx, cfg.AWSRegion, cfg.DynamoDBEndpoint, a.logger)
		if err != nil {
			return nil, err
		}
		return repository.NewDynamoDBDocumentStorage(client, cfg.DynamoDBTableName, cfg.DocumentName, a.logger), nil
	case config.StoreRedis:
		return redisstore.New(rdb, cfg.DocumentName), nil
	case config.StorePostgres:
		pool, err := pgstore.NewPool(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, func() error { pool.Close(); return nil })
		store := pgstore.New(pool, cfg.DocumentName)
		if err := store.EnsureSchema(ctx); err != nil {
			return nil, err
		}
		return store, nil
	default:
		return nil, fmt.Errorf("unknown document store %q", cfg.DocumentStore)
	}
}

func (a *App) openPublisher(cfg *config.Config) (audit.Publisher, error) {
	switch cfg.AuditSink {
	case config.SinkRabbitMQ:
		pub, err := events.DialRabbit(cfg.RabbitMQURL, cfg.AuditTopic, a.logger)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, pub.Close)
		return pub, nil
	case config.SinkKafka:
		pub := events.NewKafkaPublisher(events.NewKafkaWriter(cfg.Brokers(), cfg.AuditTopic, a.logger), a.logger)
		a.closers = append(a.closers, pub.Close)
		return pub, nil
	default:
		return nil, nil
	}
}

// Close releases backend connections in reverse order of opening
func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			a.logger.Warn("failed to close backend", zap.Error(err))
		}
	}
	a.closers = nil
}
