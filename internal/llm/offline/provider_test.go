package offline

import (
	"context"
	"errors"
	"testing"

	"interviewassist/core/internal/llm"
)

func TestOfflineProviderAlwaysFails(t *testing.T) {
	provider, err := llm.NewProvider(Name)
	if err != nil {
		t.Fatalf("expected offline provider to be registered: %v", err)
	}
	if provider.GetProviderName() != Name {
		t.Fatalf("unexpected provider name %s", provider.GetProviderName())
	}

	_, err = provider.GenerateText(context.Background(), llm.ProbePrompt)
	var provErr *llm.ProviderError
	if !errors.As(err, &provErr) || provErr.Code != llm.ErrCodeOffline {
		t.Fatalf("expected offline provider error, got %v", err)
	}
}

func TestOfflineProviderHonoursCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := New().GenerateText(ctx, "prompt"); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}
