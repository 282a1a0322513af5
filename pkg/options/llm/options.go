// Package llm provides LLM provider configuration options.
package llm

import (
	"fmt"
	"time"

	"github.com/spf13/pflag"

	"github.com/kart-io/edurag/pkg/options"
)

var _ options.IOptions = (*ProviderOptions)(nil)

// ProviderOptions 定义单个 LLM 供应商配置。
type ProviderOptions struct {
	// Provider 供应商名称（ollama, openai）。
	Provider string `json:"provider" mapstructure:"provider"`

	// BaseURL API 基础地址。
	BaseURL string `json:"base-url" mapstructure:"base-url"`

	// APIKey API 密钥（OpenAI 兼容接口需要）。
	APIKey string `json:"-" mapstructure:"api-key"`

	// Model 使用的模型名称。
	Model string `json:"model" mapstructure:"model"`

	// Timeout HTTP 请求超时时间。
	Timeout time.Duration `json:"timeout" mapstructure:"timeout"`

	// Organization 组织 ID（OpenAI 可选）。
	Organization string `json:"organization" mapstructure:"organization"`

	// Temperature 生成温度，仅对 chat 生效。
	Temperature float64 `json:"temperature" mapstructure:"temperature"`

	// MaxTokens 最大生成 token 数，仅对 chat 生效。
	MaxTokens int `json:"max-tokens" mapstructure:"max-tokens"`

	section string
}

// NewEmbeddingOptions 创建默认 Embedding 供应商配置。
func NewEmbeddingOptions() *ProviderOptions {
	return &ProviderOptions{
		Provider: "ollama",
		BaseURL:  "http://localhost:11434",
		Model:    "nomic-embed-text",
		Timeout:  60 * time.Second,
		section:  "embedding",
	}
}

// NewChatOptions 创建默认 Chat 供应商配置。
func NewChatOptions() *ProviderOptions {
	return &ProviderOptions{
		Provider:    "ollama",
		BaseURL:     "http://localhost:11434",
		Model:       "llama3",
		Timeout:     120 * time.Second,
		Temperature: 0.3,
		MaxTokens:   4096,
		section:     "chat",
	}
}

// ToConfigMap 转换为供应商工厂使用的配置 map。
func (o *ProviderOptions) ToConfigMap() map[string]any {
	return map[string]any{
		"base_url":     o.BaseURL,
		"api_key":      o.APIKey,
		"embed_model":  o.Model,
		"chat_model":   o.Model,
		"timeout":      o.Timeout,
		"organization": o.Organization,
		"temperature":  o.Temperature,
		"max_tokens":   o.MaxTokens,
	}
}

// AddFlags adds flags for LLM provider options to the specified FlagSet.
func (o *ProviderOptions) AddFlags(fs *pflag.FlagSet, prefixes ...string) {
	p := options.Join(prefixes...) + "llm." + o.section + "."
	fs.StringVar(&o.Provider, p+"provider", o.Provider, "LLM provider (ollama, openai).")
	fs.StringVar(&o.BaseURL, p+"base-url", o.BaseURL, "LLM API base URL.")
	fs.StringVar(&o.APIKey, p+"api-key", o.APIKey, "LLM API key.")
	fs.StringVar(&o.Model, p+"model", o.Model, "LLM model name.")
	fs.DurationVar(&o.Timeout, p+"timeout", o.Timeout, "LLM HTTP request timeout.")
	fs.StringVar(&o.Organization, p+"organization", o.Organization, "LLM organization ID (optional).")
	if o.section == "chat" {
		fs.Float64Var(&o.Temperature, p+"temperature", o.Temperature, "Sampling temperature.")
		fs.IntVar(&o.MaxTokens, p+"max-tokens", o.MaxTokens, "Maximum tokens generated per request.")
	}
}

// Validate validates the LLM provider options.
func (o *ProviderOptions) Validate() []error {
	if o == nil {
		return nil
	}

	var errs []error
	if o.Provider == "" {
		errs = append(errs, fmt.Errorf("llm.%s.provider is required", o.section))
	}
	if o.BaseURL == "" {
		errs = append(errs, fmt.Errorf("llm.%s.base-url is required", o.section))
	}
	if o.Model == "" {
		errs = append(errs, fmt.Errorf("llm.%s.model is required", o.section))
	}
	// OpenAI 供应商需要 API key
	if o.Provider == "openai" && o.APIKey == "" {
		errs = append(errs, fmt.Errorf("llm.%s.api-key is required for openai provider", o.section))
	}
	if o.Timeout <= 0 {
		errs = append(errs, fmt.Errorf("llm.%s.timeout must be positive", o.section))
	}
	if o.Temperature < 0 || o.Temperature > 2 {
		errs = append(errs, fmt.Errorf("llm.%s.temperature must be within [0, 2]", o.section))
	}
	return errs
}

// Complete completes the LLM provider options with defaults.
func (o *ProviderOptions) Complete() error {
	return nil
}

// Options groups the embedding and chat providers.
type Options struct {
	Embedding *ProviderOptions `json:"embedding" mapstructure:"embedding"`
	Chat      *ProviderOptions `json:"chat" mapstructure:"chat"`
}

var _ options.IOptions = (*Options)(nil)

// NewOptions 创建默认 LLM 配置。
func NewOptions() *Options {
	return &Options{
		Embedding: NewEmbeddingOptions(),
		Chat:      NewChatOptions(),
	}
}

// AddFlags registers both provider sections.
func (o *Options) AddFlags(fs *pflag.FlagSet, prefixes ...string) {
	o.Embedding.AddFlags(fs, prefixes...)
	o.Chat.AddFlags(fs, prefixes...)
}

// Validate validates both provider sections.
func (o *Options) Validate() []error {
	if o == nil {
		return nil
	}
	var errs []error
	errs = append(errs, o.Embedding.Validate()...)
	errs = append(errs, o.Chat.Validate()...)
	return errs
}

// Complete restores section names lost by config decoding.
func (o *Options) Complete() error {
	if o.Embedding == nil {
		o.Embedding = NewEmbeddingOptions()
	}
	if o.Chat == nil {
		o.Chat = NewChatOptions()
	}
	o.Embedding.section = "embedding"
	o.Chat.section = "chat"
	return nil
}
