package grpc

import (
	"context"
	"strings"

	"google.golang.org/grpc/metadata"
)

// ActorMetadataKey is the metadata header naming the caller.
const ActorMetadataKey = "x-actor"

// ActorFromContext extracts the caller from the gRPC metadata. It returns "" when the
// header is absent; the services record such calls as the system actor.
func ActorFromContext(ctx context.Context) string {
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		return ""
	}
	actors := md.Get(ActorMetadataKey)
	if len(actors) == 0 {
		return ""
	}
	return strings.TrimSpace(actors[0])
}
