package auth

import (
	"context"
)

type contextKey string

const (
	claimsKey  contextKey = "auth:claims"
	subjectKey contextKey = "auth:subject"
)

// ContextWithClaims returns a new context carrying claims and their subject.
func ContextWithClaims(ctx context.Context, claims *Claims) context.Context {
	ctx = context.WithValue(ctx, claimsKey, claims)
	if claims != nil {
		ctx = context.WithValue(ctx, subjectKey, claims.Subject)
	}
	return ctx
}

// ClaimsFromContext returns the claims from the context, or nil.
func ClaimsFromContext(ctx context.Context) *Claims {
	if claims, ok := ctx.Value(claimsKey).(*Claims); ok {
		return claims
	}
	return nil
}

// SubjectFromContext returns the authenticated subject (teacher id), or "".
func SubjectFromContext(ctx context.Context) string {
	if subject, ok := ctx.Value(subjectKey).(string); ok {
		return subject
	}
	return ""
}
