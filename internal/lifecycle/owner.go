package lifecycle

import (
	"context"
	"strings"
)

// AnonymousOwner is used when neither the request nor the context names one.
const AnonymousOwner = "anonymous"

type ownerKey struct{}

// WithOwner scopes ctx to owner. A blank owner leaves ctx unchanged.
func WithOwner(ctx context.Context, owner string) context.Context {
	owner = strings.TrimSpace(owner)
	if owner == "" {
		return ctx
	}
	return context.WithValue(ctx, ownerKey{}, owner)
}

func OwnerFrom(ctx context.Context) (string, bool) {
	owner, ok := ctx.Value(ownerKey{}).(string)
	return owner, ok && owner != ""
}
