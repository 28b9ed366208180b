package resolve

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"

	"github.com/finsight/newsrag/internal/llm"
)

func TestLLMResolver_ResolveAndCache(t *testing.T) {
	calls := 0
	completer := llm.CompleterFunc(func(ctx context.Context, system, user string) (string, error) {
		calls++
		if user != "TSLA" {
			t.Errorf("user prompt = %q", user)
		}
		return " Tesla \n", nil
	})
	r := NewLLMResolver(completer, zap.NewNop())
	ctx := context.Background()

	name, err := r.ResolveCompanyName(ctx, " tsla ")
	if err != nil {
		t.Fatal(err)
	}
	if name != "Tesla" {
		t.Errorf("name = %q", name)
	}

	// Second call for the same symbol hits the cache.
	if _, err := r.ResolveCompanyName(ctx, "TSLA"); err != nil {
		t.Fatal(err)
	}
	if calls != 1 {
		t.Errorf("completer called %d times, want 1", calls)
	}
}

func TestLLMResolver_UnusableOutput(t *testing.T) {
	completer := llm.CompleterFunc(func(ctx context.Context, system, user string) (string, error) {
		return "Tesla\nis a car company", nil
	})
	r := NewLLMResolver(completer, zap.NewNop())

	name, err := r.ResolveCompanyName(context.Background(), "TSLA")
	if err != nil {
		t.Fatal(err)
	}
	if name != "" {
		t.Errorf("expected empty name for multi-line output, got %q", name)
	}
}

func TestLLMResolver_TransportError(t *testing.T) {
	completer := llm.CompleterFunc(func(ctx context.Context, system, user string) (string, error) {
		return "", errors.New("connection refused")
	})
	r := NewLLMResolver(completer, zap.NewNop())

	if _, err := r.ResolveCompanyName(context.Background(), "AAPL"); err == nil {
		t.Error("expected transport error to propagate")
	}
}

func TestLLMResolver_EmptyInput(t *testing.T) {
	r := NewLLMResolver(llm.CompleterFunc(func(ctx context.Context, system, user string) (string, error) {
		t.Fatal("completer must not be called for empty input")
		return "", nil
	}), zap.NewNop())

	name, err := r.ResolveCompanyName(context.Background(), "  ")
	if err != nil || name != "" {
		t.Errorf("got %q, %v", name, err)
	}
}
