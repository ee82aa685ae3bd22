package attorney

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/angeljunes/vg-ms-attorney/internal/attorney/handler"
	"github.com/angeljunes/vg-ms-attorney/internal/attorney/metrics"
	"github.com/angeljunes/vg-ms-attorney/internal/attorney/secrets"
	"github.com/angeljunes/vg-ms-attorney/internal/attorney/service"
	"github.com/angeljunes/vg-ms-attorney/internal/attorney/store"
	"github.com/angeljunes/vg-ms-attorney/internal/authclient"
	"github.com/angeljunes/vg-ms-attorney/internal/identity"
	"github.com/angeljunes/vg-ms-attorney/internal/platform/config"
	"github.com/angeljunes/vg-ms-attorney/internal/platform/kafka"
	httpmetrics "github.com/angeljunes/vg-ms-attorney/internal/platform/metrics"
	"github.com/angeljunes/vg-ms-attorney/internal/platform/mongo"
	"github.com/angeljunes/vg-ms-attorney/internal/platform/postgres"
	"github.com/angeljunes/vg-ms-attorney/internal/platform/redis"
	"github.com/angeljunes/vg-ms-attorney/pkg/platform/audit"
)

// Service exposes attorney orchestration.
type Service = service.Service

// Handler wires HTTP endpoints to the attorney service.
type Handler = handler.Handler

// Store is a service store that can also report its health.
type Store interface {
	service.AttorneyStore
	Ping(ctx context.Context) error
}

// Module is the fully wired attorney bounded context.
type Module struct {
	Service *Service
	Handler *Handler
	Store   Store
	closers []func(context.Context) error
}

// Build selects the store, identity provider, token validator and audit sinks
// from cfg and wires them into a service and handler.
func Build(ctx context.Context, cfg config.Config, logger *slog.Logger, reg prometheus.Registerer) (*Module, error) {
	m := &Module{}

	st, err := m.openStore(ctx, cfg, reg)
	if err != nil {
		m.Close(ctx)
		return nil, err
	}
	m.Store = st

	var idp service.IdentityProvider
	switch cfg.Identity.Driver {
	case config.IdentityFirebase:
		fb, err := identity.NewFirebase(ctx, cfg.Identity.ProjectID, cfg.Identity.CredentialsFile)
		if err != nil {
			m.Close(ctx)
			return nil, err
		}
		idp = fb
	default:
		logger.Warn("using in-memory identity provider; accounts are not persisted")
		idp = identity.NewInMemory()
	}

	outbound := authclient.NewHTTPClient(cfg.AuthService.ConnectTimeout, cfg.AuthService.ResponseTimeout)
	var validator service.TokenValidator
	switch cfg.AuthService.Driver {
	case config.ValidatorJWT:
		validator = authclient.NewJWT(cfg.AuthService.JWTSecret)
	default:
		validator = authclient.NewHTTP(cfg.AuthService.BaseURL, outbound)
	}

	publishers := audit.Fanout{audit.NewLogPublisher(logger)}
	kc, err := kafka.New(ctx, cfg.Audit.Brokers, cfg.Audit.Topic)
	if err != nil {
		m.Close(ctx)
		return nil, err
	}
	if kc != nil {
		publishers = append(publishers, audit.NewKafkaPublisher(kc, logger))
		m.closers = append(m.closers, func(ctx context.Context) error {
			if err := kc.Flush(ctx); err != nil {
				logger.Error("failed to flush audit events", "error", err)
			}
			kc.Close()
			return nil
		})
	}

	m.Service = service.New(st, idp, validator,
		service.WithLogger(logger),
		service.WithMetrics(metrics.New(reg)),
		service.WithAuditPublisher(publishers),
		service.WithOutbound(outbound, cfg.Outbound.AllowedDomains),
		service.WithPasswordEncoder(secrets.NewEncoder(cfg.Password.Storage)),
	)
	m.Handler = handler.New(m.Service, logger, httpmetrics.New(reg))
	return m, nil
}

func (m *Module) openStore(ctx context.Context, cfg config.Config, reg prometheus.Registerer) (Store, error) {
	switch cfg.Store.Driver {
	case config.StoreMongo:
		client, err := mongo.New(ctx, cfg.Mongo)
		if err != nil {
			return nil, err
		}
		m.closers = append(m.closers, client.Close)
		st := store.NewMongo(client.Database, cfg.Mongo.Collection)
		if err := st.EnsureIndexes(ctx); err != nil {
			return nil, err
		}
		return st, nil
	case config.StorePostgres:
		db, err := postgres.Open(ctx, cfg.Postgres)
		if err != nil {
			return nil, err
		}
		m.closers = append(m.closers, func(context.Context) error { return db.Close() })
		st := store.NewPostgres(db)
		if err := st.EnsureSchema(ctx); err != nil {
			return nil, err
		}
		return st, nil
	case config.StoreRedis:
		client, err := redis.New(ctx, cfg.Redis)
		if err != nil {
			return nil, err
		}
		if client == nil {
			return nil, fmt.Errorf("redis store selected without REDIS_URL")
		}
		m.closers = append(m.closers, func(context.Context) error { return client.Close() })
		return store.NewRedis(client.Client, reg), nil
	default:
		return store.NewInMemory(), nil
	}
}

// Close releases connections in reverse order of acquisition.
func (m *Module) Close(ctx context.Context) {
	for i := len(m.closers) - 1; i >= 0; i-- {
		_ = m.closers[i](ctx)
	}
	m.closers = nil
}
