package auth

import (
	"context"

	"google.golang.org/grpc/metadata"
)

type actorKey struct{}

const ActorMetadataKey = "x-user-id"

// WithActor records who issued the current request.
func WithActor(ctx context.Context, actor string) context.Context {
	if actor == "" {
		return ctx
	}
	return context.WithValue(ctx, actorKey{}, actor)
}

// GetActor returns the actor placed by WithActor, falling back to incoming gRPC metadata.
func GetActor(ctx context.Context) string {
	if val, ok := ctx.Value(actorKey{}).(string); ok {
		return val
	}

	md, ok := metadata.FromIncomingContext(ctx)
	if ok {
		if val := md.Get(ActorMetadataKey); len(val) > 0 {
			return val[0]
		}
	}
	return ""
}
