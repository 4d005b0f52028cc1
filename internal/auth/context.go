package auth

import "context"

type contextKey struct{}

// Context is the resolved identity attached to every authenticated
// request. Handlers read it instead of touching session tokens.
type Context struct {
	UserID string
	Email  string
}

func WithUser(ctx context.Context, ac Context) context.Context {
	return context.WithValue(ctx, contextKey{}, ac)
}

func FromContext(ctx context.Context) (Context, bool) {
	ac, ok := ctx.Value(contextKey{}).(Context)
	return ac, ok
}

// UserID returns the authenticated user's ID, or "" when the request
// is unauthenticated.
func UserID(ctx context.Context) string {
	ac, ok := FromContext(ctx)
	if !ok {
		return ""
	}
	return ac.UserID
}
