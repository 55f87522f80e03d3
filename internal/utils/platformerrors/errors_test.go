package platformerrors

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errSentinel = errors.New("sentinel")

func TestNewErrorCarriesRequestID(t *testing.T) {
	ctx := WithRequestID(context.Background(), "req-1")
	err := NewError(ctx, LayerDomain, ErrorTypeValidation, "bad input", errSentinel, "code-1")

	assert.Equal(t, "req-1", err.RequestID)
	assert.True(t, errors.Is(err, errSentinel))
	assert.True(t, IsErrorType(err, ErrorTypeValidation))
	assert.Contains(t, err.Error(), "code-1")
}

func TestAsErrorKeepsType(t *testing.T) {
	ctx := context.Background()
	inner := NewError(ctx, LayerRepository, ErrorTypeNotFound, "dialog not found", errSentinel, "nf")

	wrapped := AsError(ctx, LayerHandler, inner, "load dialog")
	assert.Equal(t, ErrorTypeNotFound, wrapped.Type)
	assert.Equal(t, "nf", wrapped.UUID)
	assert.True(t, errors.Is(wrapped, errSentinel))

	plain := AsError(ctx, LayerHandler, errors.New("boom"), "load dialog")
	assert.Equal(t, ErrorTypeInternal, plain.Type)

	timeout := AsError(ctx, LayerHandler, context.DeadlineExceeded, "load dialog")
	assert.Equal(t, ErrorTypeTimeout, timeout.Type)

	assert.Nil(t, AsError(ctx, LayerHandler, nil, "noop"))
}

func TestErrorTypeToHTTPStatus(t *testing.T) {
	tests := []struct {
		errorType ErrorType
		want      int
	}{
		{ErrorTypeNotFound, http.StatusNotFound},
		{ErrorTypeValidation, http.StatusBadRequest},
		{ErrorTypeConflict, http.StatusConflict},
		{ErrorTypeUnauthorized, http.StatusUnauthorized},
		{ErrorTypeForbidden, http.StatusForbidden},
		{ErrorTypeTimeout, http.StatusGatewayTimeout},
		{ErrorTypeDatabaseError, http.StatusInternalServerError},
		{ErrorType("unknown"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(string(tt.errorType), func(t *testing.T) {
			assert.Equal(t, tt.want, ErrorTypeToHTTPStatus(tt.errorType))
		})
	}
}

func TestWriteError(t *testing.T) {
	gin.SetMode(gin.TestMode)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	err := NewError(context.Background(), LayerDomain, ErrorTypeForbidden, "not a participant", errSentinel, "forbidden-1")
	WriteError(c, err, zerolog.Nop())

	require.Equal(t, http.StatusForbidden, w.Code)
	var body HTTPErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "forbidden_error", body.Error.Type)
	assert.Equal(t, "not a participant", body.Error.Message)
	assert.Equal(t, "forbidden-1", body.Error.Code)

	w = httptest.NewRecorder()
	c, _ = gin.CreateTestContext(w)
	WriteError(c, errors.New("raw"), zerolog.Nop())
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}
