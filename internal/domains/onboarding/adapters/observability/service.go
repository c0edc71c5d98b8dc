package observability

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	nooptrace "go.opentelemetry.io/otel/trace/noop"

	"github.com/Apurer/pet-community/internal/domains/onboarding/domain"
	"github.com/Apurer/pet-community/internal/domains/onboarding/ports"
	pettypes "github.com/Apurer/pet-community/internal/domains/pets/application/types"
	userdomain "github.com/Apurer/pet-community/internal/domains/users/domain"
	sharederrors "github.com/Apurer/pet-community/internal/shared/errors"
	"github.com/Apurer/pet-community/internal/shared/upload"
)

const tracerName = "github.com/Apurer/pet-community/internal/domains/onboarding/adapters/observability/service"

// Service decorates the wizard with tracing, logging, and metrics. Form
// rejections are recorded on the span but not logged as errors.
type Service struct {
	inner   ports.Service
	tracer  trace.Tracer
	logger  *slog.Logger
	metrics serviceMetrics
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

func WithTracer(tr trace.Tracer) Option {
	return func(s *Service) { s.tracer = tr }
}

func WithMeter(m metric.Meter) Option {
	return func(s *Service) { s.metrics = newServiceMetrics(m) }
}

// New wraps the core wizard service.
func New(inner ports.Service, opts ...Option) ports.Service {
	s := &Service{
		inner:   inner,
		tracer:  nooptrace.NewTracerProvider().Tracer(tracerName),
		logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
		metrics: newServiceMetrics(nil),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	if s.tracer == nil {
		s.tracer = nooptrace.NewTracerProvider().Tracer(tracerName)
	}
	if s.logger == nil {
		s.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return s
}

func (s *Service) Draft(ctx context.Context, key string) (*domain.Draft, error) {
	return s.inner.Draft(ctx, key)
}

func (s *Service) Gate(ctx context.Context, key string, step int) (int, error) {
	return s.inner.Gate(ctx, key, step)
}

func (s *Service) SubmitCredentials(ctx context.Context, key string, in ports.Credentials) error {
	ctx, span := s.start(ctx, "OnboardingService.SubmitCredentials", 1, attribute.String("user.username", in.Username))
	defer span.End()
	return s.finish(ctx, span, 1, s.inner.SubmitCredentials(ctx, key, in))
}

func (s *Service) SubmitPersonal(ctx context.Context, key string, profile userdomain.Profile) error {
	ctx, span := s.start(ctx, "OnboardingService.SubmitPersonal", 2)
	defer span.End()
	return s.finish(ctx, span, 2, s.inner.SubmitPersonal(ctx, key, profile))
}

func (s *Service) SubmitProfilePhoto(ctx context.Context, key string, file upload.File) error {
	ctx, span := s.start(ctx, "OnboardingService.SubmitProfilePhoto", 3, attribute.String("upload.status", file.Status.String()))
	defer span.End()
	return s.finish(ctx, span, 3, s.inner.SubmitProfilePhoto(ctx, key, file))
}

func (s *Service) SubmitPets(ctx context.Context, key string, rows []pettypes.RowInput) (pettypes.ReconcileResult, error) {
	ctx, span := s.start(ctx, "OnboardingService.SubmitPets", 4, attribute.Int("pets.rows.submitted", len(rows)))
	defer span.End()
	result, err := s.inner.SubmitPets(ctx, key, rows)
	span.SetAttributes(attribute.Int("pets.rows.accepted", len(result.Accepted)), attribute.Int("pets.rows.errors", len(result.Errors)))
	if err == nil && !result.OK() {
		s.metrics.recordRejected(ctx, 4)
		return result, nil
	}
	return result, s.finish(ctx, span, 4, err)
}

func (s *Service) Complete(ctx context.Context, key string) (*userdomain.User, error) {
	ctx, span := s.start(ctx, "OnboardingService.Complete", domain.FinalStep)
	defer span.End()
	user, err := s.inner.Complete(ctx, key)
	if err != nil {
		return nil, s.finish(ctx, span, domain.FinalStep, err)
	}
	s.metrics.recordCompleted(ctx)
	s.logger.LogAttrs(ctx, slog.LevelInfo, "onboarding completed", slog.Int64("userId", user.ID), slog.String("username", user.Username))
	return user, nil
}

func (s *Service) Discard(ctx context.Context, key string) error {
	return s.inner.Discard(ctx, key)
}

func (s *Service) PurgeStale(ctx context.Context, olderThan time.Duration) (int64, error) {
	ctx, span := s.tracer.Start(ctx, "OnboardingService.PurgeStale")
	defer span.End()
	purged, err := s.inner.PurgeStale(ctx, olderThan)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		s.logger.LogAttrs(ctx, slog.LevelError, "failed to purge onboarding drafts", slog.String("error", err.Error()))
		return 0, err
	}
	s.logger.LogAttrs(ctx, slog.LevelInfo, "stale onboarding drafts purged", slog.Int64("count", purged))
	return purged, nil
}

func (s *Service) start(ctx context.Context, name string, step int, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	attrs = append(attrs, attribute.Int("onboarding.step", step))
	return s.tracer.Start(ctx, name, trace.WithAttributes(attrs...))
}

func (s *Service) finish(ctx context.Context, span trace.Span, step int, err error) error {
	if err == nil {
		return nil
	}
	span.RecordError(err)
	if errors.Is(err, sharederrors.ErrInvalidForm) || errors.Is(err, domain.ErrIncomplete) {
		s.metrics.recordRejected(ctx, step)
		return err
	}
	span.SetStatus(codes.Error, err.Error())
	s.logger.LogAttrs(ctx, slog.LevelError, "onboarding step failed", slog.Int("step", step), slog.String("error", err.Error()))
	return err
}

type serviceMetrics struct {
	rejected  metric.Int64Counter
	completed metric.Int64Counter
}

func newServiceMetrics(m metric.Meter) serviceMetrics {
	if m == nil {
		return serviceMetrics{}
	}
	rejected, _ := m.Int64Counter("onboarding.steps.rejected", metric.WithDescription("Number of rejected wizard submissions"))
	completed, _ := m.Int64Counter("onboarding.completed", metric.WithDescription("Number of completed sign-ups"))
	return serviceMetrics{rejected: rejected, completed: completed}
}

func (m serviceMetrics) recordRejected(ctx context.Context, step int) {
	if m.rejected != nil {
		m.rejected.Add(ctx, 1, metric.WithAttributes(attribute.Int("onboarding.step", step)))
	}
}

func (m serviceMetrics) recordCompleted(ctx context.Context) {
	if m.completed != nil {
		m.completed.Add(ctx, 1)
	}
}

var _ ports.Service = (*Service)(nil)
