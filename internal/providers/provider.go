package providers

import (
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/samber/lo"
)

// Provider names one of the supported OpenAI-compatible backends.
type Provider string

const (
	OpenAI   Provider = "openai"
	DeepSeek Provider = "deepseek"
)

// ErrUnknownProvider is returned for a provider name outside the catalogue.
var ErrUnknownProvider = errors.New("unknown provider")

// Spec describes how to reach a backend. Backends differ only in these
// values; they all speak the chat-completions protocol.
type Spec struct {
	Name         Provider
	BaseURL      string
	DefaultModel string
	KeyEnv       string
	// CompletionTokens selects max_completion_tokens over max_tokens.
	CompletionTokens bool
}

var catalogue = map[Provider]Spec{
	OpenAI: {
		Name:             OpenAI,
		BaseURL:          "https://api.openai.com/v1",
		DefaultModel:     "o3",
		KeyEnv:           "OPENAI_API_KEY",
		CompletionTokens: true,
	},
	DeepSeek: {
		Name:         DeepSeek,
		BaseURL:      "https://api.deepseek.com",
		DefaultModel: "deepseek-chat",
		KeyEnv:       "DEEPSEEK_API_KEY",
	},
}

// Lookup returns the spec for a provider name.
func Lookup(name string) (Spec, error) {
	spec, ok := catalogue[Provider(strings.ToLower(strings.TrimSpace(name)))]
	if !ok {
		return Spec{}, fmt.Errorf("%w: %s (supported: %s)", ErrUnknownProvider, name, strings.Join(Names(), ", "))
	}
	return spec, nil
}

// Specs returns every catalogue entry ordered by name.
func Specs() []Spec {
	specs := lo.Values(catalogue)
	sort.Slice(specs, func(i, j int) bool { return specs[i].Name < specs[j].Name })
	return specs
}

// Names returns the supported provider names in order.
func Names() []string {
	return lo.Map(Specs(), func(s Spec, _ int) string { return string(s.Name) })
}

// Settings is the resolved provider configuration for one process.
type Settings struct {
	Provider Provider
	APIKey   string
	Model    string
	BaseURL  string
}

// New creates a client for the resolved settings, filling in the catalogue
// base URL and default model where the settings leave them empty.
func New(s Settings) (*Client, error) {
	spec, err := Lookup(string(s.Provider))
	if err != nil {
		return nil, err
	}
	if s.APIKey == "" {
		return nil, fmt.Errorf("%s is not set", spec.KeyEnv)
	}
	model := s.Model
	if model == "" {
		model = spec.DefaultModel
	}
	baseURL := s.BaseURL
	if baseURL == "" {
		baseURL = spec.BaseURL
	}
	return &Client{
		spec:     spec,
		apiKey:   s.APIKey,
		model:    model,
		endpoint: strings.TrimRight(baseURL, "/") + "/chat/completions",
		client:   &http.Client{Timeout: 300 * time.Second},
	}, nil
}
