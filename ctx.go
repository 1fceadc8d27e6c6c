package credential

import "context"

var authCtxKey = &contextKey{"auth"}

type contextKey struct {
	name string
}

// WithAuthContext sets the AuthContext in the given context.
func WithAuthContext(ctx context.Context, auth *AuthContext) context.Context {
	return context.WithValue(ctx, authCtxKey, auth)
}

// AuthFromContext finds the AuthContext from the context.
func AuthFromContext(ctx context.Context) (*AuthContext, bool) {
	raw, ok := ctx.Value(authCtxKey).(*AuthContext)
	return raw, ok
}
