// Package authcontext carries the authenticated subject through request
// contexts.
package authcontext

import "context"

// Anonymous is the subject of unauthenticated requests.
const Anonymous = "system:anonymous"

type contextKeySubject struct{}

func GetSubject(ctx context.Context) string {
	userID, ok := ctx.Value(contextKeySubject{}).(string)
	if !ok {
		return Anonymous
	}

	return userID
}

func WithSubject(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, contextKeySubject{}, userID)
}

type contextKeySessionID struct{}

func SessionIDFromContext(ctx context.Context) (string, bool) {
	sessionID, ok := ctx.Value(contextKeySessionID{}).(string)

	return sessionID, ok
}

func WithSessionID(ctx context.Context, sessionID string) context.Context {
	return context.WithValue(ctx, contextKeySessionID{}, sessionID)
}

type contextKeyAdmin struct{}

func IsAdmin(ctx context.Context) bool {
	isAdmin, ok := ctx.Value(contextKeyAdmin{}).(bool)

	return ok && isAdmin
}

func WithAdmin(ctx context.Context, isAdmin bool) context.Context {
	return context.WithValue(ctx, contextKeyAdmin{}, isAdmin)
}
