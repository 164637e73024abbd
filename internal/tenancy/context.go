package tenancy

import "context"

type contextKey string

const scopeKey contextKey = "tenant_scope"

func WithScope(ctx context.Context, s Scope) context.Context {
	return context.WithValue(ctx, scopeKey, s)
}

// FromContext returns the request scope; an empty Scope when none was resolved.
func FromContext(ctx context.Context) Scope {
	s, _ := ctx.Value(scopeKey).(Scope)
	return s
}
