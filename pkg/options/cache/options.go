// Package cache provides answer cache configuration options.
package cache

import (
	"fmt"
	"time"

	"github.com/spf13/pflag"

	"github.com/kart-io/edurag/pkg/options"
	redisopts "github.com/kart-io/edurag/pkg/options/redis"
)

var _ options.IOptions = (*Options)(nil)

// Options 问答缓存与查询向量缓存配置。
type Options struct {
	// Enabled 是否启用缓存；关闭时不会连接 Redis。
	Enabled bool `json:"enabled" mapstructure:"enabled"`

	// TTL 答案缓存过期时间。
	TTL time.Duration `json:"ttl" mapstructure:"ttl"`

	// EmbeddingTTL 查询向量缓存过期时间。
	EmbeddingTTL time.Duration `json:"embedding-ttl" mapstructure:"embedding-ttl"`

	// KeyPrefix 缓存键前缀。
	KeyPrefix string `json:"key-prefix" mapstructure:"key-prefix"`

	// Redis 连接配置。
	Redis *redisopts.Options `json:"redis" mapstructure:"redis"`
}

// NewOptions 创建默认缓存配置。
func NewOptions() *Options {
	return &Options{
		Enabled:      false,
		TTL:          time.Hour,
		EmbeddingTTL: 24 * time.Hour,
		KeyPrefix:    "edurag:",
		Redis:        redisopts.NewOptions(),
	}
}

// AddFlags adds flags for cache options to the specified FlagSet.
func (o *Options) AddFlags(fs *pflag.FlagSet, prefixes ...string) {
	p := options.Join(prefixes...)
	fs.BoolVar(&o.Enabled, p+"cache.enabled", o.Enabled, "Enable the redis answer and embedding cache.")
	fs.DurationVar(&o.TTL, p+"cache.ttl", o.TTL, "Answer cache TTL.")
	fs.DurationVar(&o.EmbeddingTTL, p+"cache.embedding-ttl", o.EmbeddingTTL, "Query embedding cache TTL.")
	fs.StringVar(&o.KeyPrefix, p+"cache.key-prefix", o.KeyPrefix, "Cache key prefix.")

	if o.Redis == nil {
		o.Redis = redisopts.NewOptions()
	}
	o.Redis.AddFlags(fs, append(prefixes, "cache")...)
}

// Validate validates the cache options.
func (o *Options) Validate() []error {
	if o == nil || !o.Enabled {
		return nil
	}

	var errs []error
	if o.TTL <= 0 {
		errs = append(errs, fmt.Errorf("cache.ttl must be positive"))
	}
	if o.Redis != nil {
		errs = append(errs, o.Redis.Validate()...)
	}
	return errs
}

// Complete completes the cache options with defaults.
func (o *Options) Complete() error {
	if o.Redis == nil {
		o.Redis = redisopts.NewOptions()
	}
	if o.EmbeddingTTL <= 0 {
		o.EmbeddingTTL = 24 * time.Hour
	}
	return o.Redis.Complete()
}
