// SPDX-License-Identifier: MPL-2.0

package loader

import "context"

type (
	callerKey  struct{}
	sessionKey struct{}
)

// WithCaller returns a context identifying signature as the module currently
// executing. The session sets it for every collaborator call; hosts set it
// when they start executing a module on their own.
func WithCaller(ctx context.Context, signature string) context.Context {
	return context.WithValue(ctx, callerKey{}, signature)
}

// CallerFromContext returns the signature of the executing module.
func CallerFromContext(ctx context.Context) (string, bool) {
	sig, ok := ctx.Value(callerKey{}).(string)
	return sig, ok && sig != ""
}

// WithSession returns a context carrying s.
func WithSession(ctx context.Context, s *Session) context.Context {
	return context.WithValue(ctx, sessionKey{}, s)
}

// SessionFromContext returns the session that invoked the current collaborator.
func SessionFromContext(ctx context.Context) (*Session, bool) {
	s, ok := ctx.Value(sessionKey{}).(*Session)
	return s, ok && s != nil
}
