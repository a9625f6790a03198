package app

import (
	"context"
	"io"
	"os"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/app"
	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"

	"github.com/lymq17/Antipatrones/internal/domain/pricing"
	"github.com/lymq17/Antipatrones/internal/domain/report"
	"github.com/lymq17/Antipatrones/internal/render"
	"github.com/lymq17/Antipatrones/internal/storage/jsonfile"
)

// Run creates all dependencies and renders one pricing report to stdout.
// It is the single wiring point for the application.
func Run(ctx context.Context, lg *zap.Logger, m *app.Telemetry, cfg *Config) error {
	ctx = zctx.Base(ctx, lg)
	return run(ctx, cfg, os.Stdout,
		report.WithTracerProvider(m.TracerProvider()),
		report.WithMeterProvider(m.MeterProvider()),
	)
}

func run(ctx context.Context, cfg *Config, out io.Writer, opts ...report.Option) error {
	lg := zctx.From(ctx)
	lg.Info("Initializing",
		zap.String("users_file", cfg.UsersFile),
		zap.String("format", cfg.Format),
		zap.Int("workers", cfg.Workers),
	)

	engine, err := pricing.NewEngine(cfg.Pricing())
	if err != nil {
		return errors.Wrap(err, "create pricing engine")
	}

	classes, err := cfg.ShippingClasses()
	if err != nil {
		return errors.Wrap(err, "parse shipping classes")
	}

	presenter, err := render.New(render.Format(cfg.Format), out)
	if err != nil {
		return errors.Wrap(err, "create presenter")
	}

	users := jsonfile.NewUserRepository(cfg.UsersFile)

	svc, err := report.NewService(users, engine, presenter,
		append([]report.Option{report.WithWorkers(cfg.Workers)}, opts...)...,
	)
	if err != nil {
		return errors.Wrap(err, "create report service")
	}

	summary, err := svc.Run(ctx, cfg.SampleOrder(), classes)
	if err != nil {
		return errors.Wrap(err, "run report")
	}

	if summary.Users == 0 {
		lg.Warn("No users found", zap.String("users_file", cfg.UsersFile))
	}

	return nil
}
