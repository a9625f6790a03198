package report

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	metricnoop "go.opentelemetry.io/otel/metric/noop"
	"go.opentelemetry.io/otel/trace"
	tracenoop "go.opentelemetry.io/otel/trace/noop"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/lymq17/Antipatrones/internal/domain/pricing"
	"github.com/lymq17/Antipatrones/internal/domain/user"
)

const instrumentationName = "github.com/lymq17/Antipatrones/internal/domain/report"

// Pricer prices an order for a single user.
type Pricer interface {
	Quote(u user.User, order pricing.Order, classes []pricing.Class) (*pricing.Quote, error)
}

// Presenter renders the quotes of a run, in user order.
type Presenter interface {
	Present(ctx context.Context, quotes []pricing.Quote) error
}

// Summary describes a finished run.
type Summary struct {
	RunID         string
	Users         int
	DiscountTotal decimal.Decimal
}

// Service loads users, prices the sample order for each of them and hands
// the quotes to a presenter.
type Service struct {
	users     user.Repository
	pricer    Pricer
	presenter Presenter

	workers int
	tracer  trace.Tracer
	quotes  metric.Int64Counter
}

// Option configures a Service.
type Option func(*options)

type options struct {
	workers        int
	tracerProvider trace.TracerProvider
	meterProvider  metric.MeterProvider
}

// WithWorkers bounds the number of users quoted concurrently. Values below 1
// mean sequential processing.
func WithWorkers(n int) Option {
	return func(o *options) { o.workers = n }
}

// WithTracerProvider sets the tracer provider used for run spans.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(o *options) {
		if tp != nil {
			o.tracerProvider = tp
		}
	}
}

// WithMeterProvider sets the meter provider used for quote counters.
func WithMeterProvider(mp metric.MeterProvider) Option {
	return func(o *options) {
		if mp != nil {
			o.meterProvider = mp
		}
	}
}

// NewService creates a report Service.
func NewService(users user.Repository, pricer Pricer, presenter Presenter, opts ...Option) (*Service, error) {
	o := options{
		workers:        1,
		tracerProvider: tracenoop.NewTracerProvider(),
		meterProvider:  metricnoop.NewMeterProvider(),
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.workers < 1 {
		o.workers = 1
	}

	quotes, err := o.meterProvider.Meter(instrumentationName).Int64Counter("pricing.quotes",
		metric.WithDescription("Number of user quotes computed"),
	)
	if err != nil {
		return nil, errors.Wrap(err, "create quotes counter")
	}

	return &Service{
		users:     users,
		pricer:    pricer,
		presenter: presenter,
		workers:   o.workers,
		tracer:    o.tracerProvider.Tracer(instrumentationName),
		quotes:    quotes,
	}, nil
}

// Run prices order for every user and presents the quotes in source order.
// An empty user source produces an empty report.
func (s *Service) Run(ctx context.Context, order pricing.Order, classes []pricing.Class) (_ *Summary, rerr error) {
	runID := uuid.New().String()
	ctx = zctx.With(ctx, zap.String("run_id", runID))
	lg := zctx.From(ctx)

	ctx, span := s.tracer.Start(ctx, "report.Run", trace.WithAttributes(attribute.String("run_id", runID)))
	defer func() {
		if rerr != nil {
			span.RecordError(rerr)
			span.SetStatus(codes.Error, rerr.Error())
		}
		span.End()
	}()

	users, err := s.users.List(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "list users")
	}
	span.SetAttributes(attribute.Int("users", len(users)))
	lg.Debug("Users loaded", zap.Int("users", len(users)))

	quotes, err := s.quoteAll(ctx, users, order, classes)
	if err != nil {
		return nil, err
	}

	if err := s.presenter.Present(ctx, quotes); err != nil {
		return nil, errors.Wrap(err, "present")
	}

	total := decimal.Zero
	for _, q := range quotes {
		total = total.Add(q.Discount)
	}

	lg.Info("Report complete",
		zap.Int("users", len(quotes)),
		zap.Stringer("discount_total", total),
	)

	return &Summary{
		RunID:         runID,
		Users:         len(quotes),
		DiscountTotal: total,
	}, nil
}

// quoteAll prices users concurrently, keeping results at their source index.
func (s *Service) quoteAll(ctx context.Context, users []user.User, order pricing.Order, classes []pricing.Class) ([]pricing.Quote, error) {
	quotes := make([]pricing.Quote, len(users))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)
	for i, u := range users {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			q, err := s.pricer.Quote(u, order, classes)
			if err != nil {
				return errors.Wrapf(err, "quote user %d", u.ID)
			}
			quotes[i] = *q
			s.quotes.Add(ctx, 1, metric.WithAttributes(attribute.String("tier", string(u.Tier))))
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return quotes, nil
}
