package postgres

import (
	"context"
	"database/sql"
	"log/slog"
	"time"

	"sso/config"
	"sso/internal/domain/lifecycle"
	"sso/internal/errors"

	pgLib "github.com/slighter12/go-lib/database/postgres"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

const (
	poolSampleInterval = 5 * time.Second

	// Login and the auth gate sit on every request path; queueing this long for a
	// connection is worth a warning.
	poolWaitWarnThreshold = 50 * time.Millisecond
)

type Params struct {
	fx.In
	fx.Lifecycle

	Config *config.Config
	Logger *slog.Logger
}

// New opens the primary connection (plus any replicas, routed by dbresolver) and ties the
// pool to the fx lifecycle.
func New(params Params) (*gorm.DB, error) {
	db, err := pgLib.New(params.Config.Postgres)
	if err != nil {
		return nil, errors.Wrap(err, "failed to open PostgreSQL connection")
	}
	// Multi-step writes go through TransactionManager.Execute; single statements and the
	// gate's Read path run without an implicit transaction.
	db = db.Session(&gorm.Session{
		SkipDefaultTransaction: true,
		Logger:                 newGormSlogLogger(params.Logger, params.Config),
	})

	sqlDB, err := db.DB()
	if err != nil {
		return nil, errors.Wrap(err, "failed to get PostgreSQL sql.DB")
	}

	monitor := &poolMonitor{logger: params.Logger, db: sqlDB}
	monitorCtx, stopMonitor := context.WithCancel(context.Background())

	params.Append(fx.Hook{
		OnStart: func(startCtx context.Context) error {
			ctx, cancel := context.WithTimeout(startCtx, lifecycle.DefaultTimeout)
			defer cancel()

			if err := sqlDB.PingContext(ctx); err != nil {
				return errors.Wrap(err, "failed to ping PostgreSQL")
			}
			params.Logger.Info("PostgreSQL connected",
				slog.Int("replicas", len(params.Config.Postgres.Replicas)),
				slog.Int("maxOpenConns", sqlDB.Stats().MaxOpenConnections),
			)

			go monitor.run(monitorCtx, poolSampleInterval)

			return nil
		},
		OnStop: func(_ context.Context) error {
			stopMonitor()

			return sqlDB.Close()
		},
	})

	return db, nil
}

// poolMonitor reports when requests queue for a pooled connection between two samples.
type poolMonitor struct {
	logger *slog.Logger
	db     *sql.DB
}

func (m *poolMonitor) run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	prev := m.db.Stats()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			cur := m.db.Stats()
			if level, attrs, ok := poolWaitReport(prev, cur); ok {
				m.logger.LogAttrs(ctx, level, "Database pool contention", attrs...)
			}
			prev = cur
		}
	}
}

// poolWaitReport compares two samples. ok is false when nothing waited in between.
func poolWaitReport(prev, cur sql.DBStats) (slog.Level, []slog.Attr, bool) {
	waits := cur.WaitCount - prev.WaitCount
	if waits <= 0 {
		return 0, nil, false
	}

	waited := cur.WaitDuration - prev.WaitDuration
	attrs := []slog.Attr{
		slog.Int64("waits", waits),
		slog.Duration("waited", waited),
		slog.Duration("avgWait", waited/time.Duration(waits)),
		slog.Int("inUseConns", cur.InUse),
		slog.Int("idleConns", cur.Idle),
		slog.Int("maxOpenConns", cur.MaxOpenConnections),
	}

	level := slog.LevelDebug
	if waited >= poolWaitWarnThreshold {
		level = slog.LevelWarn
	}

	return level, attrs, true
}
