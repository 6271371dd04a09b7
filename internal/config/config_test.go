package config

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"skumatch/internal/match/model"
)

func TestLoad_Defaults(t *testing.T) {
	for _, k := range []string{"PORT", "MATCH_TOP_K", "MATCH_TRUE_THRESHOLD", "ALLOW_ORIGINS"} {
		t.Setenv(k, "")
	}
	cfg := Load()
	assert.Equal(t, 8082, cfg.Port)
	assert.Equal(t, []string{"*"}, cfg.AllowOrigins)
	assert.Equal(t, model.DefaultOptions(), cfg.MatchOptions())
	require.NoError(t, cfg.MatchOptions().Validate())
}

func TestLoad_MatchOverrides(t *testing.T) {
	t.Setenv("MATCH_TOP_K", "25")
	t.Setenv("MATCH_TOP_BRANDS", "3")
	t.Setenv("MATCH_TRUE_THRESHOLD", "0.95")
	t.Setenv("MATCH_VARIANT_MARGIN", "0.05")
	t.Setenv("MATCH_STOP_WORDS", "english")
	t.Setenv("MATCH_ANALYZER", "char_wb")
	t.Setenv("ALLOW_ORIGINS", "http://a.test, http://b.test")

	cfg := Load()
	opt := cfg.MatchOptions()
	assert.Equal(t, 25, opt.TopK)
	assert.Equal(t, 3, opt.TopBrands)
	assert.Equal(t, 0.95, opt.TrueThreshold)
	assert.Equal(t, 0.05, opt.VariantMargin)
	assert.Equal(t, model.StopWordsEnglish, opt.StopWords)
	assert.Equal(t, model.AnalyzerCharWB, opt.Analyzer)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.AllowOrigins)
	assert.Equal(t, "127.0.0.1:8082", cfg.Addr())
	require.NoError(t, opt.Validate())
}

func TestLoad_MalformedMatchNumberFailsValidate(t *testing.T) {
	cases := []struct {
		key, val, field string
	}{
		{"MATCH_TRUE_THRESHOLD", "0,9", "true_threshold"},
		{"MATCH_VARIANT_MARGIN", "not-a-number", "variant_margin"},
		{"MATCH_TOP_K", "abc", "top_k"},
		{"MATCH_WORKERS", "four", "workers"},
	}
	for _, c := range cases {
		t.Run(c.key, func(t *testing.T) {
			t.Setenv(c.key, c.val)
			err := Load().MatchOptions().Validate()
			require.ErrorIs(t, err, model.ErrInvalidOptions)
			var oe *model.OptionError
			require.ErrorAs(t, err, &oe)
			assert.Equal(t, c.field, oe.Field)
		})
	}

	t.Setenv("MATCH_TOP_K", " ")
	assert.Equal(t, model.DefaultOptions().TopK, Load().Match.TopK)
}

func TestSetupLogger_NoFile(t *testing.T) {
	prev := zerolog.GlobalLevel()
	defer zerolog.SetGlobalLevel(prev)

	logger := SetupLogger(Config{LogLevel: "debug"})
	logger.Debug().Msg("ready")
	assert.Equal(t, zerolog.DebugLevel, zerolog.GlobalLevel())

	SetupLogger(Config{LogLevel: "loud"})
	assert.Equal(t, zerolog.InfoLevel, zerolog.GlobalLevel())
}
