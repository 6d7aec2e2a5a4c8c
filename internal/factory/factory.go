package factory

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"bragawork/internal/client"
	"bragawork/internal/config"
	"bragawork/internal/events"
	"bragawork/internal/hashing"
	"bragawork/internal/repository/redis"
	"bragawork/internal/repository/sqlstore"
	"bragawork/internal/service"
	"bragawork/internal/session"
	"bragawork/internal/tls"
	"bragawork/internal/util"
)

// Factory manages the lifecycle of all application dependencies
type Factory struct {
	config     *config.Config
	tlsManager *tls.TLSManager

	// Clients
	db            sqlstore.Engine
	redisClient   *client.RedisClient
	kafkaProducer *client.KafkaProducer
	esClient      *client.ESClient

	hasher         *hashing.Hasher
	sessions       session.Registry
	publisher      events.Publisher
	serviceFactory *service.ServiceFactory

	closeOnce sync.Once
}

// NewFactory connects every backing component. The session backend is
// required. An unreachable database leaves the factory degraded, reported
// through HealthCheck. Event sinks are optional outside production.
func NewFactory(cfg *config.Config) (*Factory, error) {
	util.Init(cfg.Environment, cfg.Logging.Level, cfg.Logging.Format)

	f := &Factory{config: cfg}

	if cfg.Server.EnableTLS {
		manager, err := tls.NewTLSManager(cfg.Server)
		if err != nil {
			return nil, fmt.Errorf("failed to configure TLS: %w", err)
		}
		f.tlsManager = manager
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := f.initializeDatabase(ctx); err != nil {
		return nil, err
	}
	if err := f.initializeSessions(); err != nil {
		f.Close()
		return nil, err
	}
	if err := f.initializePublishers(ctx); err != nil {
		f.Close()
		return nil, err
	}

	f.serviceFactory = service.NewServiceFactory(f.db, f.hasher, f.sessions, f.publisher, cfg.Upload)

	util.Info("Factory initialized successfully",
		util.String("environment", cfg.Environment),
		util.String("db_type", f.db.Dialect()),
		util.String("session_backend", cfg.Session.Backend),
		util.Bool("tls_enabled", cfg.Server.EnableTLS),
	)
	return f, nil
}

func (f *Factory) initializeDatabase(ctx context.Context) error {
	db, err := sqlstore.Open(ctx, f.config.Database)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	f.db = db
	f.hasher = hashing.NewHasher(f.config.Hashing)

	// a failed bootstrap leaves the server up so the site keeps serving
	if err := sqlstore.Bootstrap(ctx, db, f.hasher, f.config.Seed); err != nil {
		util.Error("Database bootstrap failed", util.ErrorField(err))
	}
	return nil
}

func (f *Factory) initializeSessions() error {
	switch f.config.Session.Backend {
	case config.SessionBackendRedis:
		rc, err := client.NewRedisClient(f.config.Redis)
		if err != nil {
			return fmt.Errorf("redis: %w", err)
		}
		f.redisClient = rc
		f.sessions = redis.NewSessionCache(rc, f.config.Session.TTL)
	default:
		f.sessions = session.NewMemoryRegistry(f.config.Session.TTL)
	}
	util.Info("Session registry ready", util.String("backend", f.config.Session.Backend))
	return nil
}

func (f *Factory) initializePublishers(ctx context.Context) error {
	var (
		sinks      events.Multi
		initErrors []error
	)

	if len(f.config.Kafka.Brokers) > 0 {
		if producer, err := client.NewKafkaProducer(f.config.Kafka); err != nil {
			util.Warn("Kafka producer initialization failed - proceeding without Kafka", util.ErrorField(err))
		} else {
			f.kafkaProducer = producer
			sinks = append(sinks, producer)
		}
	}

	if f.config.Elasticsearch.URL != "" {
		if es, err := client.NewElasticsearchClient(ctx, f.config.Elasticsearch, f.config.IsDevelopment()); err != nil {
			initErrors = append(initErrors, fmt.Errorf("elasticsearch: %w", err))
		} else {
			f.esClient = es
			sinks = append(sinks, es)
		}
	}

	if len(initErrors) > 0 {
		if f.config.IsProduction() {
			return fmt.Errorf("critical service initialization failed: %w", errors.Join(initErrors...))
		}
		for _, err := range initErrors {
			util.Warn("Service initialization warning", util.ErrorField(err))
		}
	}

	switch len(sinks) {
	case 0:
		f.publisher = events.Nop{}
	case 1:
		f.publisher = sinks[0]
	default:
		f.publisher = sinks
	}
	return nil
}

// ==============================
// Health Checks
// ==============================

// HealthCheck probes every component concurrently. A nil value is healthy.
func (f *Factory) HealthCheck(ctx context.Context) map[string]error {
	var (
		mu     sync.Mutex
		result = map[string]error{}
	)
	record := func(name string, err error) {
		mu.Lock()
		result[name] = err
		mu.Unlock()
	}

	checks := map[string]func(context.Context) error{
		"database": f.db.Ping,
	}
	if f.redisClient != nil {
		checks["redis"] = f.redisClient.HealthCheck
	}
	if f.kafkaProducer != nil {
		checks["kafka"] = f.kafkaProducer.HealthCheck
	}
	if f.esClient != nil {
		checks["elasticsearch"] = f.esClient.HealthCheck
	}

	// every probe runs to completion, so errors are recorded instead of returned
	var g errgroup.Group
	for name, check := range checks {
		g.Go(func() error {
			record(name, check(ctx))
			return nil
		})
	}
	g.Wait()

	return result
}

// IsHealthy ignores the optional event sinks.
func (f *Factory) IsHealthy(ctx context.Context) bool {
	health := f.HealthCheck(ctx)
	delete(health, "kafka")
	delete(health, "elasticsearch")
	for _, err := range health {
		if err != nil {
			return false
		}
	}
	return true
}

func (f *Factory) Close() error {
	f.closeOnce.Do(func() {
		util.Info("Shutting down factory...")

		if f.esClient != nil {
			f.esClient.Close()
		}

		if f.kafkaProducer != nil {
			if err := f.kafkaProducer.Close(); err != nil {
				util.Error("Failed to close Kafka producer", util.ErrorField(err))
			} else {
				util.Info("Kafka producer closed")
			}
		}

		if f.redisClient != nil {
			if err := f.redisClient.Close(); err != nil {
				util.Error("Failed to close Redis client", util.ErrorField(err))
			}
		}

		if f.db != nil {
			if err := f.db.Close(); err != nil {
				util.Error("Failed to close database", util.ErrorField(err))
			} else {
				util.Info("Database closed")
			}
		}

		util.Info("Factory shutdown completed")
		util.Sync()
	})

	return nil
}

func (f *Factory) TLSManager() *tls.TLSManager {
	return f.tlsManager
}

func (f *Factory) ServiceFactory() *service.ServiceFactory {
	return f.serviceFactory
}

func (f *Factory) Sessions() session.Registry {
	return f.sessions
}
