// Package cors provides CORS configuration options.
package cors

import (
	"fmt"
	"time"

	"github.com/spf13/pflag"

	"github.com/kart-io/edurag/pkg/options"
)

var _ options.IOptions = (*Options)(nil)

// Options contains CORS configuration.
type Options struct {
	AllowOrigins     []string      `json:"allow-origins" mapstructure:"allow-origins"`
	AllowMethods     []string      `json:"allow-methods" mapstructure:"allow-methods"`
	AllowHeaders     []string      `json:"allow-headers" mapstructure:"allow-headers"`
	AllowCredentials bool          `json:"allow-credentials" mapstructure:"allow-credentials"`
	MaxAge           time.Duration `json:"max-age" mapstructure:"max-age"`
}

// NewOptions creates CORS options suited to a local frontend.
func NewOptions() *Options {
	return &Options{
		AllowOrigins:     []string{"http://localhost:3000"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
}

// AddFlags adds flags for CORS options to the specified FlagSet.
func (o *Options) AddFlags(fs *pflag.FlagSet, prefixes ...string) {
	p := options.Join(prefixes...)
	fs.StringSliceVar(&o.AllowOrigins, p+"cors.allow-origins", o.AllowOrigins, "Origins allowed to call the API (* for any).")
	fs.StringSliceVar(&o.AllowMethods, p+"cors.allow-methods", o.AllowMethods, "Allowed HTTP methods.")
	fs.StringSliceVar(&o.AllowHeaders, p+"cors.allow-headers", o.AllowHeaders, "Allowed request headers.")
	fs.BoolVar(&o.AllowCredentials, p+"cors.allow-credentials", o.AllowCredentials, "Allow credentials.")
	fs.DurationVar(&o.MaxAge, p+"cors.max-age", o.MaxAge, "Preflight cache duration.")
}

// Validate validates the CORS options.
func (o *Options) Validate() []error {
	if o == nil {
		return nil
	}
	var errs []error
	for _, origin := range o.AllowOrigins {
		if origin == "*" && o.AllowCredentials {
			errs = append(errs, fmt.Errorf("cors.allow-origins cannot contain * when cors.allow-credentials is set"))
		}
	}
	return errs
}

// Complete completes the CORS options.
func (o *Options) Complete() error {
	return nil
}
