package tracing

import (
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOptions_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(o *Options)
		wantErr bool
	}{
		{name: "disabled", mutate: func(o *Options) {}},
		{name: "enabled defaults", mutate: func(o *Options) { o.Enabled = true }},
		{
			name:    "missing endpoint",
			mutate:  func(o *Options) { o.Enabled = true; o.Endpoint = "" },
			wantErr: true,
		},
		{
			name:   "stdout needs no endpoint",
			mutate: func(o *Options) { o.Enabled = true; o.ExporterType = ExporterStdout; o.Endpoint = "" },
		},
		{
			name:    "bad ratio",
			mutate:  func(o *Options) { o.Enabled = true; o.SamplerRatio = 1.5 },
			wantErr: true,
		},
		{
			name:    "unknown sampler",
			mutate:  func(o *Options) { o.Enabled = true; o.SamplerType = "sometimes" },
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o := NewOptions()
			tt.mutate(o)
			errs := o.Validate()
			if tt.wantErr {
				assert.NotEmpty(t, errs)
			} else {
				assert.Empty(t, errs)
			}
		})
	}
}

func TestOptions_AddFlags(t *testing.T) {
	o := NewOptions()
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	o.AddFlags(fs)

	require.NoError(t, fs.Parse([]string{
		"--tracing.enabled",
		"--tracing.exporter-type=otlp_http",
		"--tracing.endpoint=collector:4318",
		"--tracing.headers=x-api-key=secret",
	}))
	assert.True(t, o.Enabled)
	assert.Equal(t, ExporterOTLPHTTP, o.ExporterType)
	assert.Equal(t, "collector:4318", o.Endpoint)
	assert.Equal(t, "secret", o.Headers["x-api-key"])
}
