package fetcher

import "context"

type sessionKey struct{}

// WithSession attaches the lookup's fetch session to ctx so components that
// are built once per process, such as search providers, fetch through it.
func WithSession(ctx context.Context, f Fetcher) context.Context {
	return context.WithValue(ctx, sessionKey{}, f)
}

// SessionFrom returns the Fetcher attached to ctx, or nil.
func SessionFrom(ctx context.Context) Fetcher {
	f, _ := ctx.Value(sessionKey{}).(Fetcher)
	return f
}
