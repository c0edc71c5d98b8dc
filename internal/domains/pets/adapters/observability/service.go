package observability

import (
	"context"
	"io"
	"log/slog"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	nooptrace "go.opentelemetry.io/otel/trace/noop"

	pettypes "github.com/Apurer/pet-community/internal/domains/pets/application/types"
	"github.com/Apurer/pet-community/internal/domains/pets/domain"
	"github.com/Apurer/pet-community/internal/domains/pets/ports"
)

const tracerName = "github.com/Apurer/pet-community/internal/domains/pets/adapters/observability/service"

// Service decorates a pets application port with tracing, logging, and metrics.
type Service struct {
	inner   ports.Service
	tracer  trace.Tracer
	logger  *slog.Logger
	metrics serviceMetrics
}

type Option func(*Service)

// WithLogger injects a slog logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

// WithTracer injects a tracer implementation.
func WithTracer(tr trace.Tracer) Option {
	return func(s *Service) {
		s.tracer = tr
	}
}

// WithMeter injects the meter used to create service metrics instruments.
func WithMeter(m metric.Meter) Option {
	return func(s *Service) {
		s.metrics = newServiceMetrics(m)
	}
}

// New wires a decorator around the core service.
func New(inner ports.Service, opts ...Option) ports.Service {
	s := &Service{
		inner:   inner,
		tracer:  nooptrace.NewTracerProvider().Tracer(tracerName),
		logger:  defaultLogger(),
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
		s.logger = defaultLogger()
	}
	return s
}

func (s *Service) Reconcile(ctx context.Context, rows []pettypes.RowInput, photoNamePrefix string) pettypes.ReconcileResult {
	ctx, span := s.startSpan(ctx, "PetService.Reconcile", attribute.Int("pets.rows.submitted", len(rows)))
	defer span.End()
	result := s.inner.Reconcile(ctx, rows, photoNamePrefix)
	span.SetAttributes(
		attribute.Int("pets.rows.drafted", len(result.Drafts)),
		attribute.Int("pets.rows.accepted", len(result.Accepted)),
		attribute.Int("pets.rows.errors", len(result.Errors)),
	)
	s.metrics.recordReconciled(ctx, len(result.Accepted), len(result.Drafts)-len(result.Accepted))
	if !result.OK() {
		s.logInfo(ctx, "pet rows rejected",
			slog.Int("accepted", len(result.Accepted)),
			slog.Int("drafted", len(result.Drafts)),
			slog.Any("errors", result.Errors),
		)
	}
	return result
}

func (s *Service) List(ctx context.Context) ([]*domain.Pet, error) {
	ctx, span := s.startSpan(ctx, "PetService.List")
	defer span.End()
	result, err := s.inner.List(ctx)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to list pets")
	}
	span.SetAttributes(attribute.Int("pets.count", len(result)))
	return result, nil
}

func (s *Service) ListByOwner(ctx context.Context, ownerID int64) ([]*domain.Pet, error) {
	ctx, span := s.startSpan(ctx, "PetService.ListByOwner", attribute.Int64("pet.owner_id", ownerID))
	defer span.End()
	result, err := s.inner.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to list pets for owner", slog.Int64("ownerId", ownerID))
	}
	return result, nil
}

func (s *Service) CreateForOwner(ctx context.Context, ownerID int64, accepted []pettypes.AcceptedPet) ([]*domain.Pet, error) {
	ctx, span := s.startSpan(ctx, "PetService.CreateForOwner", attribute.Int64("pet.owner_id", ownerID), attribute.Int("pets.count", len(accepted)))
	defer span.End()
	result, err := s.inner.CreateForOwner(ctx, ownerID, accepted)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to create pets", slog.Int64("ownerId", ownerID))
	}
	s.metrics.recordCreated(ctx, len(result))
	s.logInfo(ctx, "pets created", slog.Int64("ownerId", ownerID), slog.Int("count", len(result)))
	return result, nil
}

func (s *Service) ReplaceForOwner(ctx context.Context, ownerID int64, accepted []pettypes.AcceptedPet) ([]*domain.Pet, error) {
	ctx, span := s.startSpan(ctx, "PetService.ReplaceForOwner", attribute.Int64("pet.owner_id", ownerID), attribute.Int("pets.count", len(accepted)))
	defer span.End()
	result, err := s.inner.ReplaceForOwner(ctx, ownerID, accepted)
	if err != nil {
		return result, s.handleError(ctx, span, err, "failed to replace pets", slog.Int64("ownerId", ownerID))
	}
	s.metrics.recordReplaced(ctx, len(result))
	s.logInfo(ctx, "pets replaced", slog.Int64("ownerId", ownerID), slog.Int("count", len(result)))
	return result, nil
}

func (s *Service) DeleteByOwner(ctx context.Context, ownerID int64) ([]*domain.Pet, error) {
	ctx, span := s.startSpan(ctx, "PetService.DeleteByOwner", attribute.Int64("pet.owner_id", ownerID))
	defer span.End()
	result, err := s.inner.DeleteByOwner(ctx, ownerID)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to delete pets", slog.Int64("ownerId", ownerID))
	}
	s.metrics.recordDeleted(ctx, len(result))
	return result, nil
}

func (s *Service) RemovePhotos(ctx context.Context, refs []string) error {
	ctx, span := s.startSpan(ctx, "PetService.RemovePhotos", attribute.Int("photos.count", len(refs)))
	defer span.End()
	if err := s.inner.RemovePhotos(ctx, refs); err != nil {
		return s.handleError(ctx, span, err, "failed to remove pet photos")
	}
	return nil
}

func (s *Service) startSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	tracer := s.tracer
	if tracer == nil {
		tracer = nooptrace.NewTracerProvider().Tracer(tracerName)
	}
	return tracer.Start(ctx, name, trace.WithAttributes(attrs...))
}

func (s *Service) logInfo(ctx context.Context, msg string, attrs ...slog.Attr) {
	if s.logger == nil {
		return
	}
	s.logger.LogAttrs(ctx, slog.LevelInfo, msg, attrs...)
}

func (s *Service) logError(ctx context.Context, msg string, err error, attrs ...slog.Attr) {
	if s.logger == nil {
		return
	}
	if err != nil {
		attrs = append(attrs, slog.String("error", err.Error()))
	}
	s.logger.LogAttrs(ctx, slog.LevelError, msg, attrs...)
}

func (s *Service) handleError(ctx context.Context, span trace.Span, err error, msg string, attrs ...slog.Attr) error {
	if err == nil {
		return nil
	}
	if span != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	s.logError(ctx, msg, err, attrs...)
	return err
}

func defaultLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type serviceMetrics struct {
	rowsAccepted metric.Int64Counter
	rowsRejected metric.Int64Counter
	petsCreated  metric.Int64Counter
	petsReplaced metric.Int64Counter
	petsDeleted  metric.Int64Counter
}

func newServiceMetrics(m metric.Meter) serviceMetrics {
	if m == nil {
		return serviceMetrics{}
	}
	rowsAccepted, _ := m.Int64Counter("pets.rows.accepted", metric.WithDescription("Number of submitted pet rows accepted"))
	rowsRejected, _ := m.Int64Counter("pets.rows.rejected", metric.WithDescription("Number of submitted pet rows rejected"))
	petsCreated, _ := m.Int64Counter("pets.service.created", metric.WithDescription("Number of pets created"))
	petsReplaced, _ := m.Int64Counter("pets.service.replaced", metric.WithDescription("Number of pets written by replace"))
	petsDeleted, _ := m.Int64Counter("pets.service.deleted", metric.WithDescription("Number of pets deleted"))
	return serviceMetrics{
		rowsAccepted: rowsAccepted,
		rowsRejected: rowsRejected,
		petsCreated:  petsCreated,
		petsReplaced: petsReplaced,
		petsDeleted:  petsDeleted,
	}
}

func (m serviceMetrics) recordReconciled(ctx context.Context, accepted, rejected int) {
	addCounter(ctx, m.rowsAccepted, int64(accepted))
	addCounter(ctx, m.rowsRejected, int64(rejected))
}

func (m serviceMetrics) recordCreated(ctx context.Context, count int) {
	addCounter(ctx, m.petsCreated, int64(count))
}

func (m serviceMetrics) recordReplaced(ctx context.Context, count int) {
	addCounter(ctx, m.petsReplaced, int64(count))
}

func (m serviceMetrics) recordDeleted(ctx context.Context, count int) {
	addCounter(ctx, m.petsDeleted, int64(count))
}

func addCounter(ctx context.Context, counter metric.Int64Counter, value int64, attrs ...attribute.KeyValue) {
	if counter == nil || value == 0 {
		return
	}
	counter.Add(ctx, value, metric.WithAttributes(attrs...))
}

var _ ports.Service = (*Service)(nil)
