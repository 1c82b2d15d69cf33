package license

import "context"

type ctxKey struct{}

// WithCredential attaches a bearer credential to ctx. Transports that carry
// the credential out of band (the Authorization header) use this so tool
// handlers see one credential source.
func WithCredential(ctx context.Context, credential string) context.Context {
	return context.WithValue(ctx, ctxKey{}, credential)
}

// CredentialFromContext reads a bearer credential from ctx.
func CredentialFromContext(ctx context.Context) (string, bool) {
	v := ctx.Value(ctxKey{})
	s, ok := v.(string)
	return s, ok && s != ""
}
