package auth

import (
	"context"

	"google.golang.org/grpc"
)

// ActorInterceptor lifts the x-user-id metadata into the request context so
// downstream code reads the actor the same way for gRPC and HTTP.
func ActorInterceptor() grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		return handler(WithActor(ctx, GetActor(ctx)), req)
	}
}
