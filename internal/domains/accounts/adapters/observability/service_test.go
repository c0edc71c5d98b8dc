package observability

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	accounttypes "github.com/Apurer/pet-community/internal/domains/accounts/application/types"
	"github.com/Apurer/pet-community/internal/domains/accounts/domain"
	sharederrors "github.com/Apurer/pet-community/internal/shared/errors"
)

type stubService struct {
	editErr   error
	deleteErr error
}

func (s stubService) EditForm(context.Context, int64) (*accounttypes.EditForm, error) {
	return &accounttypes.EditForm{Username: "alice"}, nil
}

func (s stubService) EditProfile(context.Context, int64, accounttypes.EditInput) (*accounttypes.EditForm, error) {
	return &accounttypes.EditForm{Username: "alice"}, s.editErr
}

func (s stubService) DeleteAccount(context.Context, int64) (*accounttypes.DeletionSummary, error) {
	if s.deleteErr != nil {
		return nil, s.deleteErr
	}
	return &accounttypes.DeletionSummary{User: accounttypes.DeletedUser{ID: 1, Username: "alice"}, Pets: accounttypes.DeletedPets{Count: 2}}, nil
}

type recorder struct {
	spans  *tracetest.SpanRecorder
	reader *sdkmetric.ManualReader
	logs   *bytes.Buffer
}

func newDecorated(inner stubService) (*recorder, *Service) {
	rec := &recorder{spans: tracetest.NewSpanRecorder(), reader: sdkmetric.NewManualReader(), logs: &bytes.Buffer{}}
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(rec.spans))
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(rec.reader))
	svc := New(inner,
		WithTracer(tp.Tracer("test")),
		WithMeter(mp.Meter("test")),
		WithLogger(slog.New(slog.NewJSONHandler(rec.logs, nil))),
	).(*Service)
	return rec, svc
}

func (r *recorder) counter(t *testing.T, name string) int64 {
	t.Helper()
	var rm metricdata.ResourceMetrics
	require.NoError(t, r.reader.Collect(context.Background(), &rm))
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if m.Name != name {
				continue
			}
			sum, ok := m.Data.(metricdata.Sum[int64])
			require.True(t, ok)
			var total int64
			for _, dp := range sum.DataPoints {
				total += dp.Value
			}
			return total
		}
	}
	return 0
}

func TestEditProfile_RejectionIsNotAnError(t *testing.T) {
	rec, svc := newDecorated(stubService{editErr: sharederrors.NewValidationError("Name is required.")})

	form, err := svc.EditProfile(context.Background(), 1, accounttypes.EditInput{})
	require.ErrorIs(t, err, sharederrors.ErrInvalidForm)
	assert.Equal(t, "alice", form.Username)
	assert.Equal(t, int64(1), rec.counter(t, "accounts.profile.rejected"))
	assert.Contains(t, rec.logs.String(), `"level":"INFO"`)
	assert.Contains(t, rec.logs.String(), "Name is required.")

	spans := rec.spans.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, "AccountService.EditProfile", spans[0].Name())
	assert.Empty(t, spans[0].Events())
}

func TestEditProfile_WriteFailureIsLogged(t *testing.T) {
	failure := errors.Join(sharederrors.ValidationFrom(domain.ErrUpdateFailed), domain.ErrUpdateFailed, errors.New("disk full"))
	rec, svc := newDecorated(stubService{editErr: failure})

	_, err := svc.EditProfile(context.Background(), 1, accounttypes.EditInput{})
	require.ErrorIs(t, err, domain.ErrUpdateFailed)
	assert.Zero(t, rec.counter(t, "accounts.profile.rejected"))
	assert.Contains(t, rec.logs.String(), `"level":"ERROR"`)
	assert.Contains(t, rec.logs.String(), "disk full")
}

func TestEditProfile_SuccessCounts(t *testing.T) {
	rec, svc := newDecorated(stubService{})
	_, err := svc.EditProfile(context.Background(), 1, accounttypes.EditInput{})
	require.NoError(t, err)
	assert.Equal(t, int64(1), rec.counter(t, "accounts.profile.updated"))
}

func TestDeleteAccount(t *testing.T) {
	rec, svc := newDecorated(stubService{})
	summary, err := svc.DeleteAccount(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, "alice", summary.User.Username)
	assert.Equal(t, int64(1), rec.counter(t, "accounts.deleted"))

	rec, svc = newDecorated(stubService{deleteErr: errors.New("temporal unavailable")})
	_, err = svc.DeleteAccount(context.Background(), 1)
	require.Error(t, err)
	assert.Zero(t, rec.counter(t, "accounts.deleted"))
	assert.Contains(t, rec.logs.String(), "temporal unavailable")
}
