// Package jwt verifies HS256 bearer tokens issued by the identity provider.
//
// When the service runs in development mode without a secret, tokens are
// decoded without signature verification so a local frontend can be used
// against it.
package jwt

import (
	"context"
	stderrors "errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/kart-io/logger"

	jwtopts "github.com/kart-io/edurag/pkg/options/jwt"
	"github.com/kart-io/edurag/pkg/security/auth"
	"github.com/kart-io/edurag/pkg/utils/errors"
)

// JWT implements auth.Verifier.
type JWT struct {
	opts   *jwtopts.Options
	method jwt.SigningMethod
	parser *jwt.Parser
}

var _ auth.Verifier = (*JWT)(nil)

// New creates a verifier from options.
func New(opts *jwtopts.Options) (*JWT, error) {
	if opts == nil {
		opts = jwtopts.NewOptions()
	}
	if errs := opts.Validate(); len(errs) > 0 {
		return nil, fmt.Errorf("validate jwt options: %v", errs)
	}

	j := &JWT{
		opts:   opts,
		method: jwt.SigningMethodHS256,
		parser: jwt.NewParser(jwt.WithValidMethods([]string{jwtopts.DefaultSigningMethod}), jwt.WithoutClaimsValidation()),
	}

	if opts.Unverified() {
		logger.Warnw("JWT signature verification is disabled; do not use in production",
			"dev_mode", opts.DevMode)
	}
	return j, nil
}

// Verify validates the token and returns the claims.
func (j *JWT) Verify(_ context.Context, tokenString string) (*auth.Claims, error) {
	if tokenString == "" {
		return nil, errors.ErrUnauthorized.WithMessage("missing bearer token")
	}

	claims := &customClaims{}
	if j.opts.Unverified() {
		if _, _, err := j.parser.ParseUnverified(tokenString, claims); err != nil {
			return nil, errors.ErrInvalidToken.WithCause(err)
		}
	} else {
		token, err := j.parser.ParseWithClaims(tokenString, claims, func(*jwt.Token) (interface{}, error) {
			return []byte(j.opts.Secret), nil
		})
		if err != nil {
			return nil, mapParseError(err)
		}
		if !token.Valid {
			return nil, errors.ErrInvalidToken
		}
	}

	if err := j.validate(claims, time.Now()); err != nil {
		return nil, err
	}

	out := &auth.Claims{
		Subject:  claims.Subject,
		Issuer:   claims.Issuer,
		Audience: claims.Audience,
		Email:    claims.Email,
		Role:     claims.Role,
	}
	if claims.ExpiresAt != nil {
		out.ExpiresAt = claims.ExpiresAt.Unix()
	}
	if claims.IssuedAt != nil {
		out.IssuedAt = claims.IssuedAt.Unix()
	}
	return out, nil
}

// validate checks time-based and identity claims with the configured leeway.
func (j *JWT) validate(claims *customClaims, now time.Time) error {
	if claims.Subject == "" {
		return errors.ErrInvalidToken.WithMessage("token has no subject")
	}
	if claims.ExpiresAt != nil && now.After(claims.ExpiresAt.Add(j.opts.Leeway)) {
		return errors.ErrTokenExpired
	}
	if claims.NotBefore != nil && now.Add(j.opts.Leeway).Before(claims.NotBefore.Time) {
		return errors.ErrInvalidToken.WithMessage("token not valid yet")
	}
	if j.opts.Audience != "" && !claims.VerifyAudience(j.opts.Audience, true) {
		return errors.ErrInvalidToken.WithMessage("invalid audience")
	}
	if j.opts.Issuer != "" && !claims.VerifyIssuer(j.opts.Issuer, true) {
		return errors.ErrInvalidToken.WithMessage("invalid issuer")
	}
	return nil
}

// Sign issues an HS256 token for subject. It is used by tooling and tests.
func (j *JWT) Sign(subject string, ttl time.Duration) (string, error) {
	if j.opts.Secret == "" {
		return "", errors.ErrInternal.WithMessage("cannot sign without a secret")
	}
	now := time.Now()
	claims := &customClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			Issuer:    j.opts.Issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	if j.opts.Audience != "" {
		claims.Audience = jwt.ClaimStrings{j.opts.Audience}
	}
	s, err := jwt.NewWithClaims(j.method, claims).SignedString([]byte(j.opts.Secret))
	if err != nil {
		return "", errors.ErrInternal.WithCause(err).WithMessage("failed to sign token")
	}
	return s, nil
}

func mapParseError(err error) *errors.Errno {
	var ve *jwt.ValidationError
	if stderrors.As(err, &ve) {
		switch {
		case ve.Errors&jwt.ValidationErrorSignatureInvalid != 0:
			return errors.ErrInvalidToken.WithMessage("invalid signature")
		case ve.Errors&jwt.ValidationErrorMalformed != 0:
			return errors.ErrInvalidToken.WithMessage("malformed token")
		case ve.Errors&jwt.ValidationErrorUnverifiable != 0:
			return errors.ErrInvalidToken.WithMessage("unexpected signing method")
		}
	}
	return errors.ErrInvalidToken.WithCause(err)
}

type customClaims struct {
	jwt.RegisteredClaims
	Email string `json:"email,omitempty"`
	Role  string `json:"role,omitempty"`
}
