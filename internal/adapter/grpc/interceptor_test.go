package grpc

import (
	"bytes"
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func TestLoggingInterceptor(t *testing.T) {
	info := &grpc.UnaryServerInfo{FullMethod: "/pemetrics.v1.MetricsService/ComputeMetrics"}

	tests := []struct {
		name          string
		handlerErr    error
		expectedCode  codes.Code
		expectedLevel string
	}{
		{
			name:          "Success",
			expectedCode:  codes.OK,
			expectedLevel: `"level":"info"`,
		},
		{
			name:          "Client Error",
			handlerErr:    status.Error(codes.InvalidArgument, "bad filter"),
			expectedCode:  codes.InvalidArgument,
			expectedLevel: `"level":"warn"`,
		},
		{
			name:          "Server Error",
			handlerErr:    status.Error(codes.Internal, "boom"),
			expectedCode:  codes.Internal,
			expectedLevel: `"level":"error"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			interceptor := LoggingInterceptor(zerolog.New(&buf))

			handlerCalled := false
			handler := func(ctx context.Context, req interface{}) (interface{}, error) {
				handlerCalled = true
				return "ok", tt.handlerErr
			}

			_, err := interceptor(context.Background(), nil, info, handler)

			assert.True(t, handlerCalled)
			assert.Equal(t, tt.expectedCode, status.Code(err))
			assert.Contains(t, buf.String(), tt.expectedLevel)
			assert.Contains(t, buf.String(), `"method":"/pemetrics.v1.MetricsService/ComputeMetrics"`)
			assert.Contains(t, buf.String(), `"code":"`+tt.expectedCode.String()+`"`)
		})
	}
}

func TestRecoveryInterceptor(t *testing.T) {
	var buf bytes.Buffer
	interceptor := RecoveryInterceptor(zerolog.New(&buf))
	info := &grpc.UnaryServerInfo{FullMethod: "/pemetrics.v1.MetricsService/ListFunds"}

	resp, err := interceptor(context.Background(), nil, info, func(ctx context.Context, req interface{}) (interface{}, error) {
		panic("nil map")
	})

	assert.Nil(t, resp)
	require.Error(t, err)
	assert.Equal(t, codes.Internal, status.Code(err))
	assert.Contains(t, buf.String(), "grpc handler panicked")
	assert.Contains(t, buf.String(), "nil map")

	resp, err = interceptor(context.Background(), nil, info, func(ctx context.Context, req interface{}) (interface{}, error) {
		return "fine", nil
	})
	assert.NoError(t, err)
	assert.Equal(t, "fine", resp)
}
