package auth

import "context"

type userContextKey struct{}

// ContextWithUserID stores the authenticated user id in the context.
func ContextWithUserID(ctx context.Context, userID int64) context.Context {
	return context.WithValue(ctx, userContextKey{}, userID)
}

// UserIDFromContext extracts the authenticated user id from the context.
func UserIDFromContext(ctx context.Context) (int64, bool) {
	if ctx == nil {
		return 0, false
	}
	v, ok := ctx.Value(userContextKey{}).(int64)
	if !ok || v <= 0 {
		return 0, false
	}
	return v, true
}
