package merge

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dshills/sem-merge/internal/providers"
)

// ErrEmptyResponse is returned when the model replies with no usable text.
var ErrEmptyResponse = errors.New("empty merge response")

// Completer sends one chat completion. *providers.Client satisfies it.
type Completer interface {
	Complete(ctx context.Context, req providers.Request) (providers.Response, error)
}

// Service asks a model to merge two versions of a document.
type Service struct {
	client      Completer
	maxTokens   int
	temperature float64
}

// NewService returns a Service using client with the given limits.
func NewService(client Completer, maxTokens int, temperature float64) *Service {
	return &Service{client: client, maxTokens: maxTokens, temperature: temperature}
}

// Merge returns the merged document for path.
func (s *Service) Merge(ctx context.Context, local, remote, path string) (string, error) {
	resp, err := s.client.Complete(ctx, providers.Request{
		SystemPrompt: SystemPrompt(),
		UserPrompt:   BuildUserPrompt(path, local, remote),
		MaxTokens:    s.maxTokens,
		Temperature:  s.temperature,
	})
	if err != nil {
		return "", fmt.Errorf("merging %s: %w", path, err)
	}

	merged := normalize(resp.Content)
	if merged == "" {
		return "", fmt.Errorf("merging %s: %w", path, ErrEmptyResponse)
	}
	return merged, nil
}

// normalize unwraps a reply that is entirely inside a code fence and trims
// surrounding whitespace.
func normalize(content string) string {
	content = strings.TrimSpace(content)
	if !strings.HasPrefix(content, "```") {
		return content
	}
	lines := strings.Split(content, "\n")
	if len(lines) < 2 || strings.TrimSpace(lines[len(lines)-1]) != "```" {
		return content
	}
	return strings.TrimSpace(strings.Join(lines[1:len(lines)-1], "\n"))
}
