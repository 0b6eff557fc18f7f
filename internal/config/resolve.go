package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/samber/lo"

	"github.com/dshills/sem-merge/internal/providers"
)

var (
	// ErrNoCredentials means no provider API key is set.
	ErrNoCredentials = errors.New("no API key found")
	// ErrAmbiguousProvider means several keys are set and no provider was chosen.
	ErrAmbiguousProvider = errors.New("must specify --ai-provider")
	// ErrMissingKey means the chosen provider has no API key.
	ErrMissingKey = errors.New("provider API key not found")
)

// Key returns the credential for provider p.
func (c Credentials) Key(p providers.Provider) string {
	switch p {
	case providers.OpenAI:
		return c.OpenAI
	case providers.DeepSeek:
		return c.DeepSeek
	default:
		return ""
	}
}

// Resolve selects the provider for this process. An explicit provider must
// have its key set. Without one, the only provider with a key wins, and
// having keys for several providers is an error.
func Resolve(cfg Config) (providers.Settings, error) {
	var spec providers.Spec

	if name := strings.TrimSpace(cfg.Provider); name != "" {
		s, err := providers.Lookup(name)
		if err != nil {
			return providers.Settings{}, err
		}
		if cfg.Credentials.Key(s.Name) == "" {
			return providers.Settings{}, fmt.Errorf("%w: %s not set", ErrMissingKey, s.KeyEnv)
		}
		spec = s
	} else {
		available := lo.Filter(providers.Specs(), func(s providers.Spec, _ int) bool {
			return cfg.Credentials.Key(s.Name) != ""
		})
		envs := lo.Map(providers.Specs(), func(s providers.Spec, _ int) string { return s.KeyEnv })
		switch len(available) {
		case 0:
			return providers.Settings{}, fmt.Errorf("%w: set %s", ErrNoCredentials, strings.Join(envs, " or "))
		case 1:
			spec = available[0]
		default:
			return providers.Settings{}, fmt.Errorf("%w when %s are all set (one of: %s)",
				ErrAmbiguousProvider, strings.Join(envs, ", "), strings.Join(providers.Names(), ", "))
		}
	}

	model := cfg.Model
	if model == "" {
		model = spec.DefaultModel
	}
	return providers.Settings{
		Provider: spec.Name,
		APIKey:   cfg.Credentials.Key(spec.Name),
		Model:    model,
		BaseURL:  cfg.BaseURL,
	}, nil
}
