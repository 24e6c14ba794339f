package main

import (
	"context"
	"log/slog"
	"strings"

	"warbler/config"
	"warbler/internal/infra/auth"
	logs "warbler/internal/infra/log"
	"warbler/internal/infra/persistence/rdb"
	"warbler/internal/usecase"
	"warbler/internal/usecase/impl"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"gorm.io/gorm"
)

// services is everything a subcommand may need, populated from the fx graph.
type services struct {
	config   *config.Config
	logger   *slog.Logger
	db       *gorm.DB
	accounts usecase.AccountUsecase
	graph    usecase.SocialGraphUsecase
	messages usecase.MessageUsecase
}

func newApp(svc *services) *fx.App {
	return fx.New(
		injectInfra(),
		injectRepo(),
		injectService(),
		injectUsecase(),
		fx.WithLogger(func(logger *slog.Logger) fxevent.Logger {
			return &fxevent.SlogLogger{Logger: logger}
		}),
		fx.Populate(
			&svc.config,
			&svc.logger,
			&svc.db,
			&svc.accounts,
			&svc.graph,
			&svc.messages,
		),
	)
}

func injectInfra() fx.Option {
	return fx.Provide(
		config.New,
		logs.New,
		newRegisterer,
		rdb.New,
	)
}

func newRegisterer() prometheus.Registerer {
	return prometheus.DefaultRegisterer
}

func injectRepo() fx.Option {
	return fx.Options(
		fx.Provide(
			rdb.NewUserRepository,
			rdb.NewMessageRepository,
			rdb.NewFollowRepository,
			rdb.NewLikeRepository,
			rdb.NewTransactionManager,
		),
	)
}

func injectService() fx.Option {
	return fx.Options(
		fx.Provide(
			auth.NewBcryptHasher,
		),
	)
}

func injectUsecase() fx.Option {
	return fx.Options(
		fx.Provide(
			impl.NewAccountService,
			impl.NewSocialGraphService,
			impl.NewMessageService,
		),
	)
}

// runWithApp starts the fx graph, runs fn against it and stops the graph again.
func runWithApp(ctx context.Context, fn func(ctx context.Context, svc *services) error) (err error) {
	svc := &services{}
	app := newApp(svc)

	if err := app.Start(ctx); err != nil {
		return errors.Wrap(err, "failed to start application")
	}
	defer func() {
		if stopErr := app.Stop(context.WithoutCancel(ctx)); stopErr != nil && err == nil {
			err = errors.Wrap(stopErr, "failed to stop application")
		}
	}()

	ctx = logs.WithLogger(ctx, svc.logger)
	err = fn(ctx, svc)

	if svc.config.Env.Debug {
		logStoreMetrics(ctx, svc.logger, prometheus.DefaultGatherer)
	}

	return err
}

// logStoreMetrics writes the store statement counters at debug level.
func logStoreMetrics(ctx context.Context, logger *slog.Logger, gatherer prometheus.Gatherer) {
	families, err := gatherer.Gather()
	if err != nil {
		logger.WarnContext(ctx, "Failed to gather metrics", slog.Any("error", err))

		return
	}

	for _, family := range families {
		if !strings.HasPrefix(family.GetName(), "warbler_db_") {
			continue
		}
		for _, metric := range family.GetMetric() {
			attrs := []slog.Attr{
				slog.String("metric", family.GetName()),
				slog.Float64("value", metric.GetCounter().GetValue()),
			}
			for _, label := range metric.GetLabel() {
				attrs = append(attrs, slog.String(label.GetName(), label.GetValue()))
			}
			logger.LogAttrs(ctx, slog.LevelDebug, "Store metric", attrs...)
		}
	}
}
