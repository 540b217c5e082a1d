package goAuthClient

import "context"

type viewerContextKey struct{}

// WithViewer attaches a session snapshot to ctx, typically by an HTTP middleware after the
// guard allowed the request.
func WithViewer(ctx context.Context, s Session) context.Context {
	return context.WithValue(ctx, viewerContextKey{}, s)
}

// ViewerFromContext returns the snapshot attached by [WithViewer].
func ViewerFromContext(ctx context.Context) (Session, bool) {
	if ctx == nil {
		return Session{}, false
	}
	s, ok := ctx.Value(viewerContextKey{}).(Session)
	return s, ok
}
