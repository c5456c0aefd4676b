package domain

import "context"

type CtxKey string

const (
	KeyUserID    CtxKey = "UserID"
	KeyUserEmail CtxKey = "Email"
	KeyIdentity  CtxKey = "Identity"
	KeyRequestID CtxKey = "RequestID"
)

// WithIdentity attaches the authenticated identity to ctx
func WithIdentity(ctx context.Context, identity *Identity) context.Context {
	return context.WithValue(ctx, KeyIdentity, identity)
}

// IdentityFromContext returns the authenticated identity, or nil
func IdentityFromContext(ctx context.Context) *Identity {
	identity, _ := ctx.Value(KeyIdentity).(*Identity)
	return identity
}
