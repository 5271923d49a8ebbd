package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	attendanceservice "gatehouse/internal/attendance/service"
	attendancestore "gatehouse/internal/attendance/store"
	complaintservice "gatehouse/internal/complaint/service"
	complaintstore "gatehouse/internal/complaint/store"
	directoryservice "gatehouse/internal/directory/service"
	directorystore "gatehouse/internal/directory/store"
	"gatehouse/internal/platform/config"
	packageservice "gatehouse/internal/package/service"
	packagestore "gatehouse/internal/package/store"
	"gatehouse/internal/platform/database"
	platformredis "gatehouse/internal/platform/redis"
	qrscanlock "gatehouse/internal/qrpass/scanlock"
	qrservice "gatehouse/internal/qrpass/service"
	qrstore "gatehouse/internal/qrpass/store"
	visitservice "gatehouse/internal/visit/service"
	visitstore "gatehouse/internal/visit/store"
	"gatehouse/pkg/platform/audit"
	auditkafka "gatehouse/pkg/platform/audit/store/kafka"
	auditmemory "gatehouse/pkg/platform/audit/store/memory"
	auditpostgres "gatehouse/pkg/platform/audit/store/postgres"
)

// infra holds the backing stores chosen from config: Postgres when
// DATABASE_URL is set, otherwise memory.
type infra struct {
	backend     string
	lockBackend string

	visits     visitservice.Store
	passes     qrservice.Store
	attendance attendanceservice.Store
	directory  directoryservice.Store
	packages   packageservice.Store
	complaints complaintservice.Store
	scanLock   qrservice.ScanLock
	auditStore audit.Store

	db    *sql.DB
	redis *platformredis.Client
	kafka *auditkafka.Sink
}

func openInfra(ctx context.Context, cfg config.Server, log *slog.Logger) (*infra, error) {
	i := &infra{}
	var sinks audit.Fanout

	if cfg.Database.URL != "" {
		db, err := database.Open(ctx, cfg.Database)
		if err != nil {
			return nil, err
		}
		if err := database.Migrate(ctx, db); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("migrate: %w", err)
		}
		i.db = db
		i.backend = "postgres"
		i.visits = visitstore.NewPostgres(db)
		i.passes = qrstore.NewPostgres(db)
		i.attendance = attendancestore.NewPostgres(db)
		i.directory = directorystore.NewPostgres(db)
		i.packages = packagestore.NewPostgres(db)
		i.complaints = complaintstore.NewPostgres(db)
		sinks = append(sinks, auditpostgres.New(db))
	} else {
		i.backend = "memory"
		i.visits = visitstore.NewInMemory()
		i.passes = qrstore.NewInMemory()
		i.attendance = attendancestore.NewInMemory()
		i.packages = packagestore.NewInMemory()
		i.complaints = complaintstore.NewInMemory()
		dir := directorystore.NewInMemory()
		if cfg.SeedDemo {
			g, r := directorystore.SeedDemo(ctx, dir, time.Now())
			log.Info("seeded demo directory", "guard_id", g.ID, "resident_flat", r.FlatNo)
		}
		i.directory = dir
		sinks = append(sinks, auditmemory.NewInMemoryStore())
	}

	client, err := platformredis.New(cfg.Redis)
	if err != nil {
		i.Close()
		return nil, err
	}
	if client != nil {
		i.redis = client
		i.scanLock = qrscanlock.NewRedis(client.Client)
		i.lockBackend = "redis"
	} else {
		i.scanLock = qrscanlock.NewMemory()
		i.lockBackend = "memory"
	}

	if len(cfg.Audit.KafkaBrokers) > 0 {
		sink, err := auditkafka.New(cfg.Audit.KafkaBrokers, cfg.Audit.KafkaTopic)
		if err != nil {
			i.Close()
			return nil, err
		}
		i.kafka = sink
		topicCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
		if err := sink.EnsureTopic(topicCtx); err != nil {
			log.Warn("audit topic not created, relying on auto-creation", "topic", cfg.Audit.KafkaTopic, "error", err)
		}
		cancel()
		sinks = append(sinks, sink)
	}
	i.auditStore = sinks
	return i, nil
}

// Health reports the first unreachable backend.
func (i *infra) Health(ctx context.Context) error {
	var errs []error
	if i.db != nil {
		if err := i.db.PingContext(ctx); err != nil {
			errs = append(errs, fmt.Errorf("postgres: %w", err))
		}
	}
	if i.redis != nil {
		if err := i.redis.Health(ctx); err != nil {
			errs = append(errs, fmt.Errorf("redis: %w", err))
		}
	}
	if i.kafka != nil {
		if err := i.kafka.Health(ctx); err != nil {
			errs = append(errs, fmt.Errorf("kafka: %w", err))
		}
	}
	return errors.Join(errs...)
}

func (i *infra) Close() {
	if i.kafka != nil {
		i.kafka.Close()
	}
	if i.redis != nil {
		_ = i.redis.Client.Close()
	}
	if i.db != nil {
		_ = i.db.Close()
	}
}
