package impl

import (
	"context"
	"log/slog"
	"maps"
	"slices"

	deliverycontext "sso/internal/delivery/context"
	"sso/internal/domain/entity"
	domainerrors "sso/internal/domain/errors"
	"sso/internal/domain/repository"
	"sso/internal/domain/service"
	"sso/internal/errors"
	"sso/internal/usecase"

	"github.com/google/uuid"
	"go.uber.org/fx"
)

// ConfigParams are the dependencies of the configuration service.
type ConfigParams struct {
	fx.In

	TxManager  repository.TransactionManager
	Propagator service.TenantContextPropagator
	Audit      service.AuditLogger
	Logger     *slog.Logger
}

type configService struct {
	txManager  repository.TransactionManager
	propagator service.TenantContextPropagator
	audit      service.AuditLogger
	logger     *slog.Logger
}

// NewConfigService is the constructor for configService.
func NewConfigService(params ConfigParams) usecase.ConfigUsecase {
	return &configService{
		txManager:  params.TxManager,
		propagator: params.Propagator,
		audit:      params.Audit,
		logger:     params.Logger,
	}
}

func (srv *configService) GetUserConfig(ctx context.Context, userID uuid.UUID) (map[string]string, error) {
	var merged map[string]string

	err := srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		entries, err := repoFactory.NewConfigRepository().ListUserConfig(ctx, userID)
		if err != nil {
			return errors.Wrap(err, "failed to list user config")
		}
		merged = entity.MergeConfig(entity.DefaultUserConfig, entries)

		return nil
	})
	if err != nil {
		return nil, err
	}

	return merged, nil
}

func (srv *configService) UpdateUserConfig(ctx context.Context, userID uuid.UUID, values map[string]*string) (map[string]string, error) {
	var merged map[string]string

	err := srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		configRepo := repoFactory.NewConfigRepository()

		for _, key := range slices.Sorted(maps.Keys(values)) {
			if err := configRepo.UpsertUserConfig(ctx, userID, key, values[key]); err != nil {
				return errors.Wrapf(err, "failed to upsert user config %q", key)
			}
		}

		entries, err := configRepo.ListUserConfig(ctx, userID)
		if err != nil {
			return errors.Wrap(err, "failed to list user config")
		}
		merged = entity.MergeConfig(entity.DefaultUserConfig, entries)

		return nil
	})
	if err != nil {
		return nil, err
	}

	srv.audit.Log(ctx, auditUserConfigUpdated, auditEntryFor(&userID, map[string]any{
		"keys": slices.Sorted(maps.Keys(values)),
	}, "config"))

	return merged, nil
}

// requireTenantMember resolves the caller's current tenant and checks the membership is usable.
func requireTenantMember(ctx context.Context, repoFactory repository.RepositoryFactory, identity *entity.Identity) (uuid.UUID, error) {
	if identity == nil || identity.TenantID == nil {
		return uuid.Nil, domainerrors.ErrTenantAccessDenied
	}

	membership, err := repoFactory.NewTenantRepository().FindMembership(ctx, identity.UserID, *identity.TenantID)
	if err != nil {
		if errors.Is(err, repository.ErrMembershipNotFound) {
			return uuid.Nil, domainerrors.ErrTenantAccessDenied
		}

		return uuid.Nil, errors.Wrap(err, "failed to find membership")
	}
	if !membership.IsValid() {
		return uuid.Nil, domainerrors.ErrTenantAccessDenied
	}

	return membership.TenantID, nil
}

func (srv *configService) GetTenantConfig(ctx context.Context, identity *entity.Identity) (map[string]string, error) {
	if identity == nil || identity.TenantID == nil {
		return nil, domainerrors.ErrTenantAccessDenied
	}

	var merged map[string]string

	err := srv.propagator.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		tenantID, err := requireTenantMember(ctx, repoFactory, identity)
		if err != nil {
			return err
		}

		entries, err := repoFactory.NewConfigRepository().ListTenantConfig(ctx, tenantID)
		if err != nil {
			return errors.Wrap(err, "failed to list tenant config")
		}
		merged = entity.MergeConfig(entity.DefaultTenantConfig, entries)

		return nil
	})
	if err != nil {
		return nil, err
	}

	return merged, nil
}

func (srv *configService) UpdateTenantConfig(ctx context.Context, identity *entity.Identity, values map[string]*string) (map[string]string, error) {
	if identity == nil || identity.TenantID == nil {
		return nil, domainerrors.ErrTenantAccessDenied
	}

	keys := slices.Sorted(maps.Keys(values))
	var invalid []string
	for _, key := range keys {
		if !entity.IsAllowedTenantConfigKey(key) {
			invalid = append(invalid, key)
		}
	}
	if len(invalid) > 0 {
		return nil, domainerrors.ErrInvalidConfigKey.WithDetails(map[string]any{
			"invalidKeys": invalid,
			"allowedKeys": entity.SortedConfigKeys(entity.DefaultTenantConfig),
		})
	}

	var merged map[string]string

	err := srv.propagator.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		tenantID, err := requireTenantMember(ctx, repoFactory, identity)
		if err != nil {
			return err
		}

		configRepo := repoFactory.NewConfigRepository()
		for _, key := range keys {
			if err := configRepo.UpsertTenantConfig(ctx, tenantID, key, values[key]); err != nil {
				return errors.Wrapf(err, "failed to upsert tenant config %q", key)
			}
		}

		entries, err := configRepo.ListTenantConfig(ctx, tenantID)
		if err != nil {
			return errors.Wrap(err, "failed to list tenant config")
		}
		merged = entity.MergeConfig(entity.DefaultTenantConfig, entries)

		return nil
	})
	if err != nil {
		return nil, err
	}

	srv.audit.Log(ctx, auditTenantConfigUpdate, auditEntryFor(&identity.UserID, map[string]any{
		"tenant_id": identity.TenantID.String(),
		"keys":      keys,
	}, "config", "tenant"))

	return merged, nil
}

func (srv *configService) VerifyTenantIsolation(ctx context.Context, identity *entity.Identity) (*service.IsolationReport, error) {
	if identity == nil || identity.TenantID == nil {
		return nil, domainerrors.ErrTenantAccessDenied
	}

	report, err := srv.propagator.VerifyIsolation(ctx, *identity.TenantID)
	if err != nil {
		deliverycontext.GetLoggerOrDefault(ctx, srv.logger).Error("Tenant isolation check failed",
			slog.String("tenant_id", identity.TenantID.String()),
			slog.Any("error", err),
		)

		return nil, errors.Wrap(err, "failed to verify tenant isolation")
	}

	return report, nil
}
