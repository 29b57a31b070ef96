package security

import (
	"context"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"

	"github.com/oshokin/catpoint/internal/logger"
)

// ActorMetadataKey carries the caller identity, e.g. "o.shokin@office-pc".
const ActorMetadataKey = "catpoint-actor"

// unknownActor is logged when the caller sent no identity.
const unknownActor = "<unknown>"

// ActorFromContext returns the caller identity sent in the request metadata.
func ActorFromContext(ctx context.Context) string {
	values := metadata.ValueFromIncomingContext(ctx, ActorMetadataKey)
	if len(values) == 0 || values[0] == "" {
		return unknownActor
	}

	return values[0]
}

// AuditUnaryInterceptor tags the request logger with the method and actor and
// logs the outcome of every call.
func AuditUnaryInterceptor(
	ctx context.Context,
	req any,
	info *grpc.UnaryServerInfo,
	handler grpc.UnaryHandler,
) (any, error) {
	ctx = logger.WithKV(ctx, "method", info.FullMethod, "actor", ActorFromContext(ctx))
	started := time.Now()

	response, err := handler(ctx, req)

	logger.InfoKV(ctx, "RPC handled", "code", status.Code(err), "duration", time.Since(started))

	return response, err
}

// AuditStreamInterceptor logs the start and end of every stream.
func AuditStreamInterceptor(
	srv any,
	stream grpc.ServerStream,
	info *grpc.StreamServerInfo,
	handler grpc.StreamHandler,
) error {
	ctx := logger.WithKV(stream.Context(), "method", info.FullMethod, "actor", ActorFromContext(stream.Context()))

	logger.Info(ctx, "Stream opened")

	err := handler(srv, &auditStream{ServerStream: stream, ctx: ctx})

	logger.InfoKV(ctx, "Stream closed", "code", status.Code(err))

	return err
}

// auditStream replaces the stream context with the tagged one.
type auditStream struct {
	grpc.ServerStream

	ctx context.Context //nolint:containedctx // Mirrors grpc.ServerStream.Context.
}

// Context returns the tagged context.
func (s *auditStream) Context() context.Context {
	return s.ctx
}
