package services

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/shopuz/payments-service/internal/gateway"
	"github.com/shopuz/payments-service/pkg"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type recordingReconciler struct {
	successKeys []gateway.CorrelationKey
	failureKeys []gateway.CorrelationKey
	err         error
}

func (r *recordingReconciler) CommitSuccess(ctx context.Context, traceID string, key gateway.CorrelationKey) error {
	r.successKeys = append(r.successKeys, key)
	return r.err
}

func (r *recordingReconciler) CommitFailure(ctx context.Context, traceID string, key gateway.CorrelationKey) error {
	r.failureKeys = append(r.failureKeys, key)
	return r.err
}

func terminalEvent(eventType string, key gateway.CorrelationKey) gateway.Event {
	return gateway.Event{
		Type:            eventType,
		PaymentIntentID: "pi_test",
		Metadata:        key.Metadata(),
	}
}

func TestDispatch_RejectsInvalidSignature(t *testing.T) {
	gw := &fakeGateway{
		verifyAndParse: func(payload []byte, sigHeader string) (gateway.Event, error) {
			return gateway.Event{}, gateway.ErrSignatureInvalid
		},
	}
	rec := &recordingReconciler{}
	d := NewWebhookDispatcher(zap.NewNop(), gw, rec)

	err := d.Dispatch(context.Background(), "trace-1", []byte(`{}`), "bad-sig")
	require.Error(t, err)

	var appErr pkg.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, pkg.ErrSignatureInvalidCode, appErr.Code)
	assert.Empty(t, rec.successKeys)
	assert.Empty(t, rec.failureKeys)
}

func TestDispatch_IgnoresNonTerminalEvents(t *testing.T) {
	gw := &fakeGateway{
		verifyAndParse: func(payload []byte, sigHeader string) (gateway.Event, error) {
			return gateway.Event{Type: "payment_intent.created"}, nil
		},
	}
	rec := &recordingReconciler{}
	d := NewWebhookDispatcher(zap.NewNop(), gw, rec)

	err := d.Dispatch(context.Background(), "trace-1", []byte(`{}`), "sig")
	require.NoError(t, err, "unhandled event types are acknowledged")
	assert.Empty(t, rec.successKeys)
	assert.Empty(t, rec.failureKeys)
}

func TestDispatch_RoutesSuccessToCommitSuccess(t *testing.T) {
	key := gateway.CorrelationKey{UserID: uuid.New(), ProductID: uuid.New()}
	gw := &fakeGateway{
		verifyAndParse: func(payload []byte, sigHeader string) (gateway.Event, error) {
			return terminalEvent(gateway.EventPaymentSucceeded, key), nil
		},
	}
	rec := &recordingReconciler{}
	d := NewWebhookDispatcher(zap.NewNop(), gw, rec)

	require.NoError(t, d.Dispatch(context.Background(), "trace-1", []byte(`{}`), "sig"))
	require.Len(t, rec.successKeys, 1)
	assert.Equal(t, key, rec.successKeys[0])
	assert.Empty(t, rec.failureKeys)
}

func TestDispatch_RoutesFailureToCommitFailure(t *testing.T) {
	key := gateway.CorrelationKey{UserID: uuid.New(), ProductID: uuid.New()}
	gw := &fakeGateway{
		verifyAndParse: func(payload []byte, sigHeader string) (gateway.Event, error) {
			return terminalEvent(gateway.EventPaymentFailed, key), nil
		},
	}
	rec := &recordingReconciler{}
	d := NewWebhookDispatcher(zap.NewNop(), gw, rec)

	require.NoError(t, d.Dispatch(context.Background(), "trace-1", []byte(`{}`), "sig"))
	require.Len(t, rec.failureKeys, 1)
	assert.Equal(t, key, rec.failureKeys[0])
	assert.Empty(t, rec.successKeys)
}

func TestDispatch_MalformedMetadata(t *testing.T) {
	gw := &fakeGateway{
		verifyAndParse: func(payload []byte, sigHeader string) (gateway.Event, error) {
			return gateway.Event{
				Type:     gateway.EventPaymentSucceeded,
				Metadata: map[string]string{"userId": "not-a-uuid"},
			}, nil
		},
	}
	rec := &recordingReconciler{}
	d := NewWebhookDispatcher(zap.NewNop(), gw, rec)

	err := d.Dispatch(context.Background(), "trace-1", []byte(`{}`), "sig")
	require.Error(t, err)

	var appErr pkg.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, pkg.ErrCorrelationNotFoundCode, appErr.Code)
	assert.Empty(t, rec.successKeys)
}

func TestDispatch_PropagatesReconcilerError(t *testing.T) {
	key := gateway.CorrelationKey{UserID: uuid.New(), ProductID: uuid.New()}
	gw := &fakeGateway{
		verifyAndParse: func(payload []byte, sigHeader string) (gateway.Event, error) {
			return terminalEvent(gateway.EventPaymentSucceeded, key), nil
		},
	}
	wantErr := pkg.NewAppError(pkg.ErrSQLUnknownCode, "sql error", errors.New("connection reset"))
	rec := &recordingReconciler{err: wantErr}
	d := NewWebhookDispatcher(zap.NewNop(), gw, rec)

	err := d.Dispatch(context.Background(), "trace-1", []byte(`{}`), "sig")
	require.Error(t, err)
	assert.Equal(t, wantErr, err, "storage errors surface so the provider redelivers")
}
