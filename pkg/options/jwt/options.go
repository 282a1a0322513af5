// Package jwt provides bearer token verification options.
//
// Configuration Example (YAML):
//
//	jwt:
//	  secret: "${JWT_SECRET}"
//	  audience: "authenticated"
//	  dev-mode: false
package jwt

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/pflag"

	"github.com/kart-io/edurag/pkg/options"
)

const (
	// DefaultAudience is the aud claim issued by the identity provider.
	DefaultAudience = "authenticated"

	// DefaultSigningMethod is the only accepted algorithm.
	DefaultSigningMethod = "HS256"

	// MinKeyLength is the minimum required secret length.
	MinKeyLength = 32
)

var _ options.IOptions = (*Options)(nil)

// Options contains JWT verification configuration.
type Options struct {
	// Secret is the HMAC secret shared with the identity provider.
	Secret string `json:"-" mapstructure:"secret"`

	// Audience is the required aud claim. Empty disables the check.
	Audience string `json:"audience" mapstructure:"audience"`

	// Issuer is the required iss claim. Empty disables the check.
	Issuer string `json:"issuer" mapstructure:"issuer"`

	// Leeway tolerates clock skew when checking exp and nbf.
	Leeway time.Duration `json:"leeway" mapstructure:"leeway"`

	// DevMode decodes tokens without verifying the signature when no secret is set.
	// Local development only.
	DevMode bool `json:"dev-mode" mapstructure:"dev-mode"`
}

// NewOptions creates a new Options with default values.
func NewOptions() *Options {
	return &Options{
		Audience: DefaultAudience,
		Leeway:   30 * time.Second,
	}
}

// AddFlags adds flags for JWT options to the specified FlagSet.
func (o *Options) AddFlags(fs *pflag.FlagSet, prefixes ...string) {
	p := options.Join(prefixes...)
	fs.StringVar(&o.Secret, p+"jwt.secret", o.Secret, "HS256 secret used to verify bearer tokens (or JWT_SECRET).")
	fs.StringVar(&o.Audience, p+"jwt.audience", o.Audience, "Required aud claim.")
	fs.StringVar(&o.Issuer, p+"jwt.issuer", o.Issuer, "Required iss claim (optional).")
	fs.DurationVar(&o.Leeway, p+"jwt.leeway", o.Leeway, "Allowed clock skew.")
	fs.BoolVar(&o.DevMode, p+"jwt.dev-mode", o.DevMode, "Accept unverified tokens when no secret is configured.")
}

// Validate validates the JWT options.
func (o *Options) Validate() []error {
	if o == nil {
		return nil
	}
	var errs []error
	if o.Secret == "" && !o.DevMode {
		errs = append(errs, fmt.Errorf("jwt.secret is required unless jwt.dev-mode is set"))
	}
	if o.Secret != "" && len(o.Secret) < MinKeyLength {
		errs = append(errs, fmt.Errorf("jwt.secret must be at least %d characters, got: %d", MinKeyLength, len(o.Secret)))
	}
	if o.Leeway < 0 {
		errs = append(errs, fmt.Errorf("jwt.leeway must not be negative"))
	}
	return errs
}

// Complete reads the secret from JWT_SECRET when no flag value is given.
func (o *Options) Complete() error {
	if o.Secret == "" {
		o.Secret = os.Getenv("JWT_SECRET")
	}
	return nil
}

// Unverified reports whether tokens will be accepted without signature checks.
func (o *Options) Unverified() bool {
	return o.Secret == "" && o.DevMode
}
