package pkg

import (
	"errors"
	"net/http"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func asAppError(t *testing.T, err error) AppError {
	t.Helper()
	var appErr AppError
	require.True(t, errors.As(err, &appErr))
	return appErr
}

func TestHandleSQLError_NoRows(t *testing.T) {
	err := HandleSQLError("trace-1", zap.NewNop(), pgx.ErrNoRows)
	assert.Equal(t, ErrRecordNotFoundCode, asAppError(t, err).Code)
}

func TestHandleSQLError_PgCodes(t *testing.T) {
	tests := []struct {
		pgCode string
		want   ErrorCode
	}{
		{"23505", ErrSQLDuplicateCode},
		{"23503", ErrSQLConflictCode},
		{"22P02", ErrSQLInvalidInput},
		{"22001", ErrSQLInvalidInput},
		{"40001", ErrSQLUnknownCode},
	}
	for _, tt := range tests {
		t.Run(tt.pgCode, func(t *testing.T) {
			err := HandleSQLError("trace-1", zap.NewNop(), &pgconn.PgError{Code: tt.pgCode})
			assert.Equal(t, tt.want, asAppError(t, err).Code)
		})
	}
}

func TestHandleSQLError_UnknownError(t *testing.T) {
	err := HandleSQLError("trace-1", zap.NewNop(), errors.New("dial tcp: timeout"))
	assert.Equal(t, ErrSQLUnknownCode, asAppError(t, err).Code)
}

func TestToErrorResponse_AppError(t *testing.T) {
	err := NewAppError(ErrCorrelationNotFoundCode, "event references unknown user", pgx.ErrNoRows)
	resp := ToErrorResponse(zap.NewNop(), "trace-1", err)
	assert.Equal(t, http.StatusUnprocessableEntity, resp.Status)
	assert.Equal(t, ErrCorrelationNotFoundCode.Code, resp.Code)
	assert.Equal(t, "event references unknown user", resp.Message)
}

func TestToErrorResponse_UnknownErrorBecomes500(t *testing.T) {
	resp := ToErrorResponse(zap.NewNop(), "trace-1", errors.New("boom"))
	assert.Equal(t, http.StatusInternalServerError, resp.Status)
	assert.Equal(t, ErrServerCode.Code, resp.Code)
}

func TestAppErrorUnwrap(t *testing.T) {
	cause := errors.New("root cause")
	err := NewAppError(ErrServerCode, "wrapped", cause)
	assert.ErrorIs(t, err, cause)
}

func TestOrderStatusValid(t *testing.T) {
	for _, s := range []OrderStatus{OrderStatusCreated, OrderStatusProcessing, OrderStatusShipped, OrderStatusDelivered, OrderStatusCanceled} {
		assert.True(t, s.Valid(), string(s))
	}
	assert.False(t, OrderStatus("paid").Valid())
	assert.False(t, OrderStatus("").Valid())
}
