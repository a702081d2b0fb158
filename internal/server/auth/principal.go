package auth

import (
	"context"
	"slices"
)

// Principal is the authenticated identity attached to a request.
type Principal struct {
	Subject     string
	Username    string
	Authorities []string
}

// HasAuthority reports whether p holds authority a.
func (p *Principal) HasAuthority(a string) bool {
	return p != nil && slices.Contains(p.Authorities, a)
}

// PrincipalFromClaims builds the principal a verified token describes.
func PrincipalFromClaims(c *Claims) *Principal {
	return &Principal{
		Subject:     c.Subject,
		Username:    c.Username,
		Authorities: slices.Clone(c.Authorities),
	}
}

type principalKey struct{}

// ContextWithPrincipal returns a copy of ctx carrying p.
func ContextWithPrincipal(ctx context.Context, p *Principal) context.Context {
	return context.WithValue(ctx, principalKey{}, p)
}

// PrincipalFromContext returns the principal stored by ContextWithPrincipal.
func PrincipalFromContext(ctx context.Context) (*Principal, bool) {
	p, ok := ctx.Value(principalKey{}).(*Principal)
	return p, ok && p != nil
}
