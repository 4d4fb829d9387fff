package grpc

import (
	"context"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"

	"github.com/simaogato/assetflow-backend/internal/auth"
	"github.com/simaogato/assetflow-backend/internal/logger"
)

// RequestIDHeader carries the per-call request id back to the client
const RequestIDHeader = "x-request-id"

// publicMethod reports whether a method is served without a token
func publicMethod(fullMethod string) bool {
	return strings.HasPrefix(fullMethod, "/grpc.health.v1.Health/") ||
		strings.HasPrefix(fullMethod, "/grpc.reflection.")
}

// AuthInterceptor returns a gRPC unary server interceptor that validates
// the bearer token from request metadata.
// If the token is missing or invalid, it returns status.Unauthenticated.
// If valid, it calls the handler with the owner stored in the context.
func AuthInterceptor(verifier *auth.Verifier) grpc.UnaryServerInterceptor {
	return func(
		ctx context.Context,
		req interface{},
		info *grpc.UnaryServerInfo,
		handler grpc.UnaryHandler,
	) (interface{}, error) {
		if publicMethod(info.FullMethod) {
			return handler(ctx, req)
		}

		md, ok := metadata.FromIncomingContext(ctx)
		if !ok {
			return nil, status.Error(codes.Unauthenticated, "missing metadata")
		}

		authHeaders := md.Get("authorization")
		if len(authHeaders) == 0 {
			return nil, status.Error(codes.Unauthenticated, "missing authorization header")
		}

		ownerID, err := verifier.Verify(authHeaders[0])
		if err != nil {
			return nil, status.Error(codes.Unauthenticated, "invalid token")
		}

		return handler(auth.WithOwner(ctx, ownerID), req)
	}
}

// LoggingInterceptor attaches a request-scoped logger tagged with a ULID request id
// and logs every call with its status code and latency.
func LoggingInterceptor(log *zap.SugaredLogger) grpc.UnaryServerInterceptor {
	return func(
		ctx context.Context,
		req interface{},
		info *grpc.UnaryServerInfo,
		handler grpc.UnaryHandler,
	) (interface{}, error) {
		requestID := ulid.Make().String()
		reqLog := log.With("request_id", requestID, "method", info.FullMethod)
		ctx = logger.WithContext(ctx, reqLog)

		_ = grpc.SetHeader(ctx, metadata.Pairs(RequestIDHeader, requestID))

		start := time.Now()
		resp, err := handler(ctx, req)
		code := status.Code(err)

		fields := []interface{}{"code", code.String(), "latency", time.Since(start)}
		switch code {
		case codes.OK:
			reqLog.Infow("rpc completed", fields...)
		case codes.Internal, codes.Unavailable, codes.Unknown:
			reqLog.Errorw("rpc failed", append(fields, "error", err)...)
		default:
			reqLog.Warnw("rpc rejected", append(fields, "error", err)...)
		}

		return resp, err
	}
}
