package providers

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLookup(t *testing.T) {
	tests := []struct {
		name      string
		wantURL   string
		wantModel string
		wantKey   string
	}{
		{"openai", "https://api.openai.com/v1", "o3", "OPENAI_API_KEY"},
		{"deepseek", "https://api.deepseek.com", "deepseek-chat", "DEEPSEEK_API_KEY"},
		{" DeepSeek ", "https://api.deepseek.com", "deepseek-chat", "DEEPSEEK_API_KEY"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			spec, err := Lookup(tt.name)
			require.NoError(t, err)
			assert.Equal(t, tt.wantURL, spec.BaseURL)
			assert.Equal(t, tt.wantModel, spec.DefaultModel)
			assert.Equal(t, tt.wantKey, spec.KeyEnv)
		})
	}
}

func TestLookup_Unknown(t *testing.T) {
	_, err := Lookup("invalid")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnknownProvider))
	assert.Contains(t, err.Error(), "invalid")
}

func TestNames(t *testing.T) {
	assert.Equal(t, []string{"deepseek", "openai"}, Names())
}

func TestNew_Defaults(t *testing.T) {
	c, err := New(Settings{Provider: OpenAI, APIKey: "k"})
	require.NoError(t, err)
	assert.Equal(t, OpenAI, c.Name())
	assert.Equal(t, "o3", c.Model())
	assert.Equal(t, "https://api.openai.com/v1/chat/completions", c.endpoint)

	c, err = New(Settings{Provider: DeepSeek, APIKey: "k"})
	require.NoError(t, err)
	assert.Equal(t, "deepseek-chat", c.Model())
	assert.Equal(t, "https://api.deepseek.com/chat/completions", c.endpoint)
}

func TestNew_Overrides(t *testing.T) {
	c, err := New(Settings{Provider: OpenAI, APIKey: "k", Model: "custom-model", BaseURL: "http://proxy.local/v1/"})
	require.NoError(t, err)
	assert.Equal(t, "custom-model", c.Model())
	assert.Equal(t, "http://proxy.local/v1/chat/completions", c.endpoint)
}

func TestNew_MissingKey(t *testing.T) {
	_, err := New(Settings{Provider: DeepSeek})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DEEPSEEK_API_KEY")
}

func TestNew_UnknownProvider(t *testing.T) {
	_, err := New(Settings{Provider: "invalid", APIKey: "k"})
	assert.True(t, errors.Is(err, ErrUnknownProvider))
}

func TestIsAuthError(t *testing.T) {
	assert.True(t, IsAuthError(&authError{message: "test"}))
	assert.False(t, IsAuthError(&rateLimitError{}))
	assert.False(t, IsAuthError(nil))
}

func TestIsRetryable(t *testing.T) {
	assert.False(t, isRetryable(&authError{message: "test"}))
	assert.True(t, isRetryable(&rateLimitError{}))
	assert.True(t, isRetryable(&serverError{statusCode: 500}))
	assert.False(t, isRetryable(context.Canceled))
}

func TestErrorMessages(t *testing.T) {
	assert.Equal(t, "rate limited", (&rateLimitError{}).Error())
	assert.Equal(t, "server error (status 500): oops", (&serverError{statusCode: 500, body: "oops"}).Error())
	assert.Equal(t, "authentication error: bad key", (&authError{message: "bad key"}).Error())
}

func TestRetryWithBackoff_ContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := retryWithBackoff(ctx, 3, func() error {
		return &rateLimitError{}
	})
	assert.Equal(t, context.Canceled, err)
}

func TestRetryWithBackoff_NonRetryable(t *testing.T) {
	attempts := 0
	err := retryWithBackoff(context.Background(), 3, func() error {
		attempts++
		return &authError{message: "bad"}
	})
	assert.Equal(t, 1, attempts)
	assert.True(t, IsAuthError(err))
}

func TestRetryWithBackoff_GivesUp(t *testing.T) {
	attempts := 0
	err := retryWithBackoff(context.Background(), 2, func() error {
		attempts++
		return &serverError{statusCode: 502}
	})
	assert.Equal(t, 3, attempts)
	assert.Error(t, err)
}
