// Package auth defines authenticated identities and their context helpers.
package auth

import "context"

// Claims is the verified content of a bearer token.
type Claims struct {
	// Subject is the owner id used to scope every resource.
	Subject   string         `json:"sub"`
	Issuer    string         `json:"iss,omitempty"`
	Audience  []string       `json:"aud,omitempty"`
	ExpiresAt int64          `json:"exp,omitempty"`
	IssuedAt  int64          `json:"iat,omitempty"`
	Email     string         `json:"email,omitempty"`
	Role      string         `json:"role,omitempty"`
	Extra     map[string]any `json:"-"`
}

// Verifier validates a raw token and returns its claims.
type Verifier interface {
	Verify(ctx context.Context, token string) (*Claims, error)
}
