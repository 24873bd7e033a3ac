// Package offline registers a provider that never reaches a model, so every
// service answers from its deterministic fallback.
package offline

import (
	"context"

	"interviewassist/core/internal/llm"
)

const Name = "offline"

type Provider struct{}

func New() *Provider {
	return &Provider{}
}

func (*Provider) GenerateText(ctx context.Context, prompt string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return "", &llm.ProviderError{
		Provider: Name,
		Code:     llm.ErrCodeOffline,
		Message:  "offline mode: no text-generation provider configured",
	}
}

func (*Provider) GetProviderName() string {
	return Name
}

func init() {
	llm.RegisterProvider(Name, func() (llm.Provider, error) {
		return New(), nil
	})
}
