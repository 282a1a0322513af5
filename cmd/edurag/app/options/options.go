// Package options contains flags and options for initializing the EduRAG server.
package options

import (
	"fmt"

	utilerrors "k8s.io/apimachinery/pkg/util/errors"

	edurag "github.com/kart-io/edurag/internal/edurag"
	"github.com/kart-io/edurag/pkg/app/cliflag"
	cacheopts "github.com/kart-io/edurag/pkg/options/cache"
	corsopts "github.com/kart-io/edurag/pkg/options/cors"
	dbopts "github.com/kart-io/edurag/pkg/options/database"
	jwtopts "github.com/kart-io/edurag/pkg/options/jwt"
	llmopts "github.com/kart-io/edurag/pkg/options/llm"
	logopts "github.com/kart-io/edurag/pkg/options/logger"
	milvusopts "github.com/kart-io/edurag/pkg/options/milvus"
	ragopts "github.com/kart-io/edurag/pkg/options/rag"
	httpopts "github.com/kart-io/edurag/pkg/options/server/http"
	tracingopts "github.com/kart-io/edurag/pkg/options/tracing"
)

// ServerOptions contains the configuration options for the server.
type ServerOptions struct {
	// HTTPOptions contains HTTP server configuration.
	HTTPOptions *httpopts.Options `json:"http" mapstructure:"http"`

	// LogOptions contains logger configuration.
	LogOptions *logopts.Options `json:"log" mapstructure:"log"`

	// DatabaseOptions contains the relational store configuration.
	DatabaseOptions *dbopts.Options `json:"database" mapstructure:"database"`

	// MilvusOptions contains Milvus configuration, used when rag.vector-backend is milvus.
	MilvusOptions *milvusopts.Options `json:"milvus" mapstructure:"milvus"`

	// LLMOptions contains the embedding and chat provider configuration.
	LLMOptions *llmopts.Options `json:"llm" mapstructure:"llm"`

	// RAGOptions contains chunking, retrieval and timeout configuration.
	RAGOptions *ragopts.Options `json:"rag" mapstructure:"rag"`

	// CacheOptions contains cache configuration.
	CacheOptions *cacheopts.Options `json:"cache" mapstructure:"cache"`

	// JWTOptions contains bearer token verification configuration.
	JWTOptions *jwtopts.Options `json:"jwt" mapstructure:"jwt"`

	// CORSOptions contains CORS configuration.
	CORSOptions *corsopts.Options `json:"cors" mapstructure:"cors"`

	// TracingOptions contains OpenTelemetry tracing configuration.
	TracingOptions *tracingopts.Options `json:"tracing" mapstructure:"tracing"`
}

// NewServerOptions creates a ServerOptions instance with default values.
func NewServerOptions() *ServerOptions {
	return &ServerOptions{
		HTTPOptions:     httpopts.NewOptions(),
		LogOptions:      logopts.NewOptions(),
		DatabaseOptions: dbopts.NewOptions(),
		MilvusOptions:   milvusopts.NewOptions(),
		LLMOptions:      llmopts.NewOptions(),
		RAGOptions:      ragopts.NewOptions(),
		CacheOptions:    cacheopts.NewOptions(),
		JWTOptions:      jwtopts.NewOptions(),
		CORSOptions:     corsopts.NewOptions(),
		TracingOptions:  tracingopts.NewOptions(),
	}
}

// Flags returns flags for a specific server by section name.
func (o *ServerOptions) Flags() (fss cliflag.NamedFlagSets) {
	o.HTTPOptions.AddFlags(fss.FlagSet("http"))
	o.LogOptions.AddFlags(fss.FlagSet("log"))
	o.DatabaseOptions.AddFlags(fss.FlagSet("database"))
	o.MilvusOptions.AddFlags(fss.FlagSet("milvus"))
	o.LLMOptions.AddFlags(fss.FlagSet("llm"))
	o.RAGOptions.AddFlags(fss.FlagSet("rag"))
	o.CacheOptions.AddFlags(fss.FlagSet("cache"))
	o.JWTOptions.AddFlags(fss.FlagSet("jwt"))
	o.CORSOptions.AddFlags(fss.FlagSet("cors"))
	o.TracingOptions.AddFlags(fss.FlagSet("tracing"))
	return fss
}

// Complete completes all the required options.
func (o *ServerOptions) Complete() error {
	if err := o.HTTPOptions.Complete(); err != nil {
		return fmt.Errorf("http: %w", err)
	}
	if err := o.LogOptions.Complete(); err != nil {
		return fmt.Errorf("log: %w", err)
	}
	if err := o.DatabaseOptions.Complete(); err != nil {
		return fmt.Errorf("database: %w", err)
	}
	if err := o.MilvusOptions.Complete(); err != nil {
		return fmt.Errorf("milvus: %w", err)
	}
	if err := o.LLMOptions.Complete(); err != nil {
		return fmt.Errorf("llm: %w", err)
	}
	if err := o.RAGOptions.Complete(); err != nil {
		return fmt.Errorf("rag: %w", err)
	}
	if err := o.CacheOptions.Complete(); err != nil {
		return fmt.Errorf("cache: %w", err)
	}
	if err := o.JWTOptions.Complete(); err != nil {
		return fmt.Errorf("jwt: %w", err)
	}
	if err := o.CORSOptions.Complete(); err != nil {
		return fmt.Errorf("cors: %w", err)
	}
	if err := o.TracingOptions.Complete(); err != nil {
		return fmt.Errorf("tracing: %w", err)
	}
	return nil
}

// Validate checks whether the options in ServerOptions are valid.
func (o *ServerOptions) Validate() error {
	errs := []error{}

	errs = append(errs, o.HTTPOptions.Validate()...)
	errs = append(errs, o.LogOptions.Validate()...)
	errs = append(errs, o.DatabaseOptions.Validate()...)
	if o.RAGOptions.VectorBackend == ragopts.VectorBackendMilvus {
		errs = append(errs, o.MilvusOptions.Validate()...)
	}
	errs = append(errs, o.LLMOptions.Validate()...)
	errs = append(errs, o.RAGOptions.Validate()...)
	errs = append(errs, o.CacheOptions.Validate()...)
	errs = append(errs, o.JWTOptions.Validate()...)
	errs = append(errs, o.CORSOptions.Validate()...)
	errs = append(errs, o.TracingOptions.Validate()...)

	return utilerrors.NewAggregate(errs)
}

// Config builds an edurag.Config based on ServerOptions.
func (o *ServerOptions) Config() (*edurag.Config, error) {
	return &edurag.Config{
		HTTPOptions:     o.HTTPOptions,
		LogOptions:      o.LogOptions,
		DatabaseOptions: o.DatabaseOptions,
		MilvusOptions:   o.MilvusOptions,
		LLMOptions:      o.LLMOptions,
		RAGOptions:      o.RAGOptions,
		CacheOptions:    o.CacheOptions,
		JWTOptions:      o.JWTOptions,
		CORSOptions:     o.CORSOptions,
		TracingOptions:  o.TracingOptions,
	}, nil
}
