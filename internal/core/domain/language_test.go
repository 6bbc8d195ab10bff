package domain_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/ilview/internal/core/domain"
)

func TestParseLanguage(t *testing.T) {
	tests := []struct {
		in   string
		want domain.Language
	}{
		{"", domain.LanguageCSharp},
		{"csharp", domain.LanguageCSharp},
		{"C#", domain.LanguageCSharp},
		{" cs ", domain.LanguageCSharp},
		{"il", domain.LanguageIL},
		{"IL", domain.LanguageIL},
		{"cil", domain.LanguageIL},
		{"msil", domain.LanguageIL},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := domain.ParseLanguage(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseLanguage_Unknown(t *testing.T) {
	_, err := domain.ParseLanguage("vb")
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrInvalidLanguage))
}

func TestDefaultConfig(t *testing.T) {
	cfg := domain.DefaultConfig()

	assert.Equal(t, domain.DefaultLanguage, cfg.Language)
	assert.Equal(t, domain.DefaultEngineExecutable, cfg.Engine.Path)
	assert.Equal(t, domain.DefaultStartupTimeout, cfg.Engine.StartupTimeout)
	assert.Equal(t, domain.DefaultRequestTimeout, cfg.Engine.RequestTimeout)
	assert.Equal(t, domain.DefaultStopGracePeriod, cfg.Engine.StopGracePeriod)
	assert.False(t, cfg.Watch)
	assert.Empty(t, cfg.Source)
}
