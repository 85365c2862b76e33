package main

import (
	"context"
	"log/slog"
	"os"

	"sso/config"
	"sso/internal/delivery"
	"sso/internal/delivery/api"
	"sso/internal/delivery/api/middleware"
	"sso/internal/delivery/api/router/handler"
	"sso/internal/domain/service"
	"sso/internal/infra/audit"
	"sso/internal/infra/auth"
	"sso/internal/infra/cache"
	logs "sso/internal/infra/log"
	"sso/internal/infra/mail"
	"sso/internal/infra/persistence/postgres"
	"sso/internal/infra/pubsub"
	"sso/internal/infra/tenancy"
	"sso/internal/usecase/impl"

	"go.uber.org/fx"
)

type startServerParams struct {
	fx.In
	fx.Lifecycle

	Deliveries []delivery.Delivery `group:"deliveries"`
}

func main() {
	fx.New(
		injectInfra(),
		injectRepo(),
		injectService(),
		injectUsecase(),
		injectDelivery(),
		injectMiddleware(),
		injectHandler(),
		fx.Invoke(
			startServer,
		),
	).Run()
}

func injectInfra() fx.Option {
	return fx.Options(
		fx.Provide(
			config.New,
			logs.New,
			context.Background,
			postgres.New,
			fx.Annotate(
				cache.NewRevocationCache,
				fx.As(new(service.SessionRevocationCache)),
			),
		),
		pubsub.Module,
	)
}

func injectRepo() fx.Option {
	return fx.Options(
		fx.Provide(
			postgres.NewTransactionManager,
		),
	)
}

func injectService() fx.Option {
	return fx.Options(
		fx.Provide(
			auth.NewBcryptHasher,
			auth.NewJWTService,
			auth.NewOpaqueTokenService,
			tenancy.NewPropagator,
			audit.NewSlogAuditLogger,
			mail.NewLogMailer,
		),
	)
}

func injectUsecase() fx.Option {
	return fx.Options(
		fx.Provide(
			impl.NewAuthService,
			impl.NewSessionService,
			impl.NewAccountService,
			impl.NewConfigService,
		),
	)
}

func injectMiddleware() fx.Option {
	return fx.Options(
		fx.Provide(
			middleware.NewAuthMiddleware,
		),
	)
}

func injectHandler() fx.Option {
	return fx.Options(
		fx.Provide(
			handler.NewAuthHandler,
			handler.NewSessionHandler,
			handler.NewConfigHandler,
		),
	)
}

func injectDelivery() fx.Option {
	return fx.Options(
		fx.Provide(
			fx.Annotate(
				api.NewServer,
				fx.ResultTags(`group:"deliveries"`),
			),
		),
	)
}

func startServer(ctx context.Context, params startServerParams) {
	for _, delivery := range params.Deliveries {
		go func() {
			if err := delivery.Serve(ctx); err != nil {
				slog.Error("Failed to start server", slog.Any("error", err))
				os.Exit(1)
			}
		}()
	}
}
