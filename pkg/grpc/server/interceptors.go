package server

import (
	"context"
	"runtime/debug"
	"time"

	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/peer"
	"google.golang.org/grpc/status"
)

func clientAddr(ctx context.Context) string {
	if p, ok := peer.FromContext(ctx); ok && p.Addr != nil {
		return p.Addr.String()
	}
	return "unknown"
}

// LoggingInterceptor creates a gRPC unary interceptor for request/response logging.
// Client-side failures (bad arguments, missing data) are logged at warn level.
func LoggingInterceptor(logger *zap.Logger) grpc.UnaryServerInterceptor {
	logger = logger.Named("grpc-access")
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		start := time.Now()

		resp, err := handler(ctx, req)

		fields := []zap.Field{
			zap.String("method", info.FullMethod),
			zap.String("client_addr", clientAddr(ctx)),
			zap.Duration("duration", time.Since(start)),
		}
		if err == nil {
			logger.Info("gRPC request completed", append(fields, zap.String("status_code", codes.OK.String()))...)
			return resp, nil
		}

		st, _ := status.FromError(err)
		fields = append(fields,
			zap.String("status_code", st.Code().String()),
			zap.String("status_message", st.Message()))
		switch st.Code() {
		case codes.InvalidArgument, codes.FailedPrecondition, codes.Canceled:
			logger.Warn("gRPC request rejected", fields...)
		default:
			logger.Error("gRPC request failed", append(fields, zap.Error(err))...)
		}
		return resp, err
	}
}

// RecoveryInterceptor turns a panicking handler into an Internal error.
func RecoveryInterceptor(logger *zap.Logger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (resp any, err error) {
		defer func() {
			if r := recover(); r != nil {
				logger.Error("gRPC handler panic",
					zap.String("method", info.FullMethod),
					zap.Any("panic", r),
					zap.ByteString("stack", debug.Stack()))
				resp, err = nil, status.Error(codes.Internal, "internal error")
			}
		}()
		return handler(ctx, req)
	}
}
