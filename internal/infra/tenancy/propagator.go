// Package tenancy binds requests to a tenant and scopes store access to it.
package tenancy

import (
	"context"
	"log/slog"

	"sso/config"
	deliverycontext "sso/internal/delivery/context"
	domainerrors "sso/internal/domain/errors"
	"sso/internal/domain/repository"
	"sso/internal/domain/service"
	"sso/internal/errors"

	"github.com/google/uuid"
)

type propagator struct {
	txManager  repository.TransactionManager
	failClosed bool
	logger     *slog.Logger
}

// NewPropagator creates a TenantContextPropagator whose failure policy comes from config.
func NewPropagator(txManager repository.TransactionManager, cfg *config.Config, logger *slog.Logger) service.TenantContextPropagator {
	return &propagator{
		txManager:  txManager,
		failClosed: cfg.TenantContext.FailClosed(),
		logger:     logger,
	}
}

func (p *propagator) log(ctx context.Context) *slog.Logger {
	return deliverycontext.GetLoggerOrDefault(ctx, p.logger)
}

// tolerate applies the failure policy: nil under fail-open, a forbidden error under fail-closed.
func (p *propagator) tolerate(ctx context.Context, cause error) error {
	if p.failClosed {
		p.log(ctx).Warn("Tenant context unavailable, rejecting request", slog.Any("error", cause))

		return errors.Wrap(domainerrors.ErrTenantContextUnavailable, cause.Error())
	}

	p.log(ctx).Warn("Tenant context unavailable, continuing without row-level isolation", slog.Any("error", cause))

	return nil
}

func (p *propagator) Propagate(ctx context.Context, tenantID *uuid.UUID) (context.Context, error) {
	if tenantID == nil || *tenantID == uuid.Nil {
		return ctx, p.tolerate(ctx, errors.New("user has no current tenant"))
	}

	return deliverycontext.WithTenantID(ctx, *tenantID), nil
}

func (p *propagator) Execute(ctx context.Context, fn func(repository.RepositoryFactory) error) error {
	tenantID, ok := deliverycontext.GetTenantID(ctx)
	if !ok {
		if err := p.tolerate(ctx, errors.New("no tenant bound to request")); err != nil {
			return err
		}

		return p.txManager.Execute(ctx, fn)
	}

	return p.WithTenant(ctx, tenantID, fn)
}

func (p *propagator) WithTenant(ctx context.Context, tenantID uuid.UUID, fn func(repository.RepositoryFactory) error) error {
	return p.txManager.Execute(ctx, func(factory repository.RepositoryFactory) error {
		tenantCtx := factory.NewTenantContextRepository()

		previous, err := tenantCtx.Current(ctx)
		if err != nil {
			p.log(ctx).Debug("Could not read previous tenant context", slog.Any("error", err))
		}

		if err := tenantCtx.Set(ctx, tenantID); err != nil {
			if terr := p.tolerate(ctx, errors.Wrap(err, "failed to set tenant context")); terr != nil {
				return terr
			}
		}

		fnErr := fn(factory)
		p.restore(ctx, tenantCtx, previous, fnErr)

		return fnErr
	})
}

func (p *propagator) WithoutTenant(ctx context.Context, fn func(repository.RepositoryFactory) error) error {
	return p.txManager.Execute(ctx, func(factory repository.RepositoryFactory) error {
		if err := factory.NewTenantContextRepository().Clear(ctx); err != nil {
			return errors.Wrap(err, "failed to clear tenant context")
		}

		return fn(factory)
	})
}

// restore puts back the marker seen before WithTenant. After a failed fn the transaction is
// rolled back anyway, so a restore failure there is expected and only logged at debug.
func (p *propagator) restore(ctx context.Context, tenantCtx repository.TenantContextRepository, previous *uuid.UUID, fnErr error) {
	var err error
	if previous != nil {
		err = tenantCtx.Set(ctx, *previous)
	} else {
		err = tenantCtx.Clear(ctx)
	}

	if err == nil {
		return
	}

	level := slog.LevelWarn
	if fnErr != nil {
		level = slog.LevelDebug
	}
	p.log(ctx).Log(ctx, level, "Failed to restore tenant context", slog.Any("error", err))
}

func (p *propagator) VerifyIsolation(ctx context.Context, tenantID uuid.UUID) (*service.IsolationReport, error) {
	report := &service.IsolationReport{TenantID: tenantID}

	err := p.WithTenant(ctx, tenantID, func(factory repository.RepositoryFactory) error {
		current, err := factory.NewTenantContextRepository().Current(ctx)
		if err != nil {
			return errors.Wrap(err, "failed to read tenant context")
		}
		report.ContextInside = current

		entries, err := factory.NewConfigRepository().ListTenantConfig(ctx, tenantID)
		if err != nil {
			return errors.Wrap(err, "failed to list scoped tenant config")
		}
		report.VisibleConfigRows = len(entries)

		return nil
	})
	if err != nil {
		return nil, err
	}

	err = p.WithoutTenant(ctx, func(factory repository.RepositoryFactory) error {
		current, err := factory.NewTenantContextRepository().Current(ctx)
		if err != nil {
			return errors.Wrap(err, "failed to read tenant context")
		}
		report.ContextOutside = current

		entries, err := factory.NewConfigRepository().ListTenantConfig(ctx, tenantID)
		if err != nil {
			return errors.Wrap(err, "failed to list unscoped tenant config")
		}
		report.UnscopedConfigRows = len(entries)

		return nil
	})
	if err != nil {
		return nil, err
	}

	report.ContextRestoredToNull = report.ContextOutside == nil
	report.IsolationEnforced = report.ContextInside != nil &&
		*report.ContextInside == tenantID &&
		report.UnscopedConfigRows == 0

	p.log(ctx).Info("Tenant isolation verified",
		slog.String("tenant_id", tenantID.String()),
		slog.Bool("isolation_enforced", report.IsolationEnforced),
		slog.Int("visible_rows", report.VisibleConfigRows),
		slog.Int("unscoped_rows", report.UnscopedConfigRows),
	)

	return report, nil
}
