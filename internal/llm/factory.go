package llm

import (
	"fmt"
	"net/http"
	"strings"

	"seniorsync/internal/config"
)

const (
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
)

// Factory creates LLM clients with consistent logic
type Factory struct {
	cfg        config.LLMConfig
	httpClient *http.Client
}

func NewFactory(cfg config.LLMConfig) *Factory {
	return &Factory{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
	}
}

// CreateClient 按 provider 创建客户端（provider 为空时使用配置中的默认值）
func (f *Factory) CreateClient(provider string) (Client, error) {
	if provider == "" {
		provider = f.cfg.Provider
	}
	switch strings.ToLower(provider) {
	case ProviderOpenAI:
		if f.cfg.OpenAIAPIKey == "" {
			return nil, fmt.Errorf("llm provider %s: OPENAI_API_KEY is not set", provider)
		}
		return NewOpenAI(f.cfg.OpenAIAPIKey, f.cfg.OpenAIBaseURL, f.cfg.OpenAIModel, f.cfg.MaxTokens, f.httpClient), nil
	case ProviderAnthropic:
		if f.cfg.AnthropicAPIKey == "" {
			return nil, fmt.Errorf("llm provider %s: ANTHROPIC_API_KEY is not set", provider)
		}
		return NewAnthropic(f.cfg.AnthropicAPIKey, "", f.cfg.AnthropicModel, f.cfg.MaxTokens, f.httpClient), nil
	default:
		return nil, fmt.Errorf("unknown llm provider: %s", provider)
	}
}
