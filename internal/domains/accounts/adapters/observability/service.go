package observability

import (
	"context"
	"errors"
	"io"
	"log/slog"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	nooptrace "go.opentelemetry.io/otel/trace/noop"

	accounttypes "github.com/Apurer/pet-community/internal/domains/accounts/application/types"
	"github.com/Apurer/pet-community/internal/domains/accounts/domain"
	"github.com/Apurer/pet-community/internal/domains/accounts/ports"
	sharederrors "github.com/Apurer/pet-community/internal/shared/errors"
)

const tracerName = "github.com/Apurer/pet-community/internal/domains/accounts/adapters/observability/service"

// Service decorates the account use cases with tracing, logging, and metrics.
type Service struct {
	inner   ports.Service
	tracer  trace.Tracer
	logger  *slog.Logger
	metrics serviceMetrics
}

type Option func(*Service)

// WithLogger injects a slog logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

// WithTracer injects a tracer implementation.
func WithTracer(tr trace.Tracer) Option {
	return func(s *Service) { s.tracer = tr }
}

// WithMeter injects the meter used to create service metrics instruments.
func WithMeter(m metric.Meter) Option {
	return func(s *Service) { s.metrics = newServiceMetrics(m) }
}

// New wires a decorator around the core service.
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

func (s *Service) EditForm(ctx context.Context, userID int64) (*accounttypes.EditForm, error) {
	ctx, span := s.tracer.Start(ctx, "AccountService.EditForm", trace.WithAttributes(attribute.Int64("user.id", userID)))
	defer span.End()
	form, err := s.inner.EditForm(ctx, userID)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to load profile form", slog.Int64("userId", userID))
	}
	return form, nil
}

func (s *Service) EditProfile(ctx context.Context, userID int64, input accounttypes.EditInput) (*accounttypes.EditForm, error) {
	ctx, span := s.tracer.Start(ctx, "AccountService.EditProfile", trace.WithAttributes(
		attribute.Int64("user.id", userID),
		attribute.Int("pets.rows.submitted", len(input.Rows)),
		attribute.Bool("profile.photo.attached", input.ProfilePhoto.Attached()),
		attribute.Bool("profile.password.changed", input.NewPassword != ""),
	))
	defer span.End()
	form, err := s.inner.EditProfile(ctx, userID, input)
	switch {
	case err == nil:
		s.metrics.add(ctx, s.metrics.updated, 1)
		s.logger.LogAttrs(ctx, slog.LevelInfo, "profile updated", slog.Int64("userId", userID))
		return form, nil
	case errors.Is(err, sharederrors.ErrInvalidForm) && !errors.Is(err, domain.ErrUpdateFailed):
		span.SetAttributes(attribute.Int("form.problems", len(sharederrors.Messages(err))))
		s.metrics.add(ctx, s.metrics.rejected, 1)
		s.logger.LogAttrs(ctx, slog.LevelInfo, "profile edit rejected",
			slog.Int64("userId", userID),
			slog.Any("problems", sharederrors.Messages(err)),
		)
		return form, err
	default:
		return form, s.handleError(ctx, span, err, "failed to update profile", slog.Int64("userId", userID))
	}
}

func (s *Service) DeleteAccount(ctx context.Context, userID int64) (*accounttypes.DeletionSummary, error) {
	ctx, span := s.tracer.Start(ctx, "AccountService.DeleteAccount", trace.WithAttributes(attribute.Int64("user.id", userID)))
	defer span.End()
	summary, err := s.inner.DeleteAccount(ctx, userID)
	if err != nil {
		return summary, s.handleError(ctx, span, err, "failed to delete account", slog.Int64("userId", userID))
	}
	span.SetAttributes(
		attribute.Int("pets.deleted", summary.Pets.Count),
		attribute.Int("photos.removed", summary.PhotosRemoved),
	)
	s.metrics.add(ctx, s.metrics.deleted, 1)
	s.logger.LogAttrs(ctx, slog.LevelInfo, "account deleted",
		slog.Int64("userId", userID),
		slog.String("username", summary.User.Username),
		slog.Int("pets", summary.Pets.Count),
		slog.Int("photos", summary.PhotosRemoved),
	)
	return summary, nil
}

func (s *Service) handleError(ctx context.Context, span trace.Span, err error, msg string, attrs ...slog.Attr) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	attrs = append(attrs, slog.String("error", err.Error()))
	s.logger.LogAttrs(ctx, slog.LevelError, msg, attrs...)
	return err
}

type serviceMetrics struct {
	updated  metric.Int64Counter
	rejected metric.Int64Counter
	deleted  metric.Int64Counter
}

func newServiceMetrics(m metric.Meter) serviceMetrics {
	if m == nil {
		return serviceMetrics{}
	}
	updated, _ := m.Int64Counter("accounts.profile.updated", metric.WithDescription("Number of accepted profile edits"))
	rejected, _ := m.Int64Counter("accounts.profile.rejected", metric.WithDescription("Number of profile edits rejected by validation"))
	deleted, _ := m.Int64Counter("accounts.deleted", metric.WithDescription("Number of accounts deleted"))
	return serviceMetrics{updated: updated, rejected: rejected, deleted: deleted}
}

func (serviceMetrics) add(ctx context.Context, counter metric.Int64Counter, value int64) {
	if counter == nil || value == 0 {
		return
	}
	counter.Add(ctx, value)
}

var _ ports.Service = (*Service)(nil)
