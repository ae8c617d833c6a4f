package config

import (
	"encoding/base64"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/amaumene/gostremiomux/internal/constants"
	apperrors "github.com/amaumene/gostremiomux/internal/errors"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("CONFIG_FILE", filepath.Join(t.TempDir(), "missing.json"))

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, constants.DefaultPort, cfg.Port)
	assert.Equal(t, "memory", cfg.CacheBackend)
	assert.Equal(t, constants.DefaultAdapterTimeout, cfg.DefaultAdapterTimeout.Std())
	assert.Equal(t, constants.DefaultStreamTTL, cfg.StreamTTL.Std())
	assert.False(t, cfg.IsPresetDisabled("torrentio"))
}

func TestLoadEnvAndFile(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "config.json")
	require.NoError(t, os.WriteFile(file, []byte(`{"CACHE_SIZE": 42, "STREAM_TTL": "30m", "DISABLED_PRESETS": ["EZTV"]}`), 0o600))

	t.Setenv("CONFIG_FILE", file)
	t.Setenv("PORT", "8080")
	t.Setenv("DEFAULT_ADAPTER_TIMEOUT", "3s")
	t.Setenv("DISABLED_PRESETS", "apibay")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, 42, cfg.CacheSize)
	assert.Equal(t, 30*time.Minute, cfg.StreamTTL.Std())
	assert.Equal(t, 3*time.Second, cfg.DefaultAdapterTimeout.Std())
	assert.True(t, cfg.IsPresetDisabled("eztv"))
	assert.False(t, cfg.IsPresetDisabled("apibay"))
	assert.Equal(t, 5*time.Second, cfg.OuterDeadline(3*time.Second))
}

func TestLoadRejectsRedisWithoutURL(t *testing.T) {
	t.Setenv("CONFIG_FILE", filepath.Join(t.TempDir(), "missing.json"))
	t.Setenv("CACHE_BACKEND", "redis")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "REDIS_URL is required")
}

func validUser() *UserConfig {
	return &UserConfig{
		Adapters: []AdapterConfig{
			{ID: "tio", Preset: "torrentio"},
			{ID: "bay", Preset: "apibay", Timeout: Duration(2 * time.Second)},
		},
	}
}

func knownPresets(p string) bool {
	return p == "torrentio" || p == "apibay"
}

func TestUserConfigDefaults(t *testing.T) {
	u := validUser()
	u.ApplyDefaults(5 * time.Second)

	assert.Equal(t, 2, u.Adapters[0].Priority)
	assert.Equal(t, 1, u.Adapters[1].Priority)
	assert.Equal(t, 5*time.Second, u.Adapters[0].Timeout.Std())
	assert.Equal(t, 2*time.Second, u.Adapters[1].Timeout.Std())
	assert.Equal(t, constants.DefaultMaxResults, u.MaxResults)
	assert.Equal(t, DefaultSort(), u.SortCriteria())
	require.NoError(t, u.Validate(Checks{KnownPreset: knownPresets}))
}

func TestUserConfigValidation(t *testing.T) {
	disabled := false
	tests := []struct {
		name   string
		mutate func(u *UserConfig)
		want   string
	}{
		{"no adapters", func(u *UserConfig) { u.Adapters = nil }, "adapters is required"},
		{"duplicate id", func(u *UserConfig) { u.Adapters[1].ID = "tio" }, "duplicated"},
		{"bad id", func(u *UserConfig) { u.Adapters[0].ID = "a/b" }, "invalid characters"},
		{"unknown preset", func(u *UserConfig) { u.Adapters[0].Preset = "nope" }, "unknown or disabled"},
		{"timeout too long", func(u *UserConfig) { u.Adapters[0].Timeout = Duration(2 * time.Minute) }, "timeout must not exceed"},
		{"all disabled", func(u *UserConfig) {
			u.Adapters[0].Enabled = &disabled
			u.Adapters[1].Enabled = &disabled
		}, "no adapter is enabled"},
		{"size bounds", func(u *UserConfig) { u.Filters.MinSize, u.Filters.MaxSize = 10, 5 }, "minSize"},
		{"bad sort key", func(u *UserConfig) { u.Sort = []SortCriterion{{Key: "color", Weight: 1}} }, "sort[0].key must be one of"},
		{"bad store", func(u *UserConfig) { u.Store = &StoreConfig{Provider: "premiumize", Token: "abcdefghij"} }, "store.provider must be one of"},
		{"bad template", func(u *UserConfig) { u.Format.NameTemplate = "{{.Broken" }, "format.name is not a valid template"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			u := validUser()
			tt.mutate(u)
			err := u.Validate(Checks{
				KnownPreset: knownPresets,
				CheckTemplate: func(text string) error {
					if text == "{{.Broken" {
						return errors.New("unclosed action")
					}
					return nil
				},
			})
			require.Error(t, err)
			assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeConfigurationInvalid))
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestDecodeUserConfig(t *testing.T) {
	u := validUser()
	u.Store = &StoreConfig{Provider: "alldebrid", Token: "secret-token-123"}

	encoded, err := EncodeUserConfig(u)
	require.NoError(t, err)

	decoded, err := DecodeUserConfig(encoded)
	require.NoError(t, err)
	assert.Equal(t, u, decoded)

	std := base64.StdEncoding.EncodeToString([]byte(`{"adapters":[{"id":"a","preset":"apibay","timeout":1500}]}`))
	decoded, err = DecodeUserConfig(std)
	require.NoError(t, err)
	assert.Equal(t, 1500*time.Millisecond, decoded.Adapters[0].Timeout.Std())
}

func TestDecodeUserConfigErrors(t *testing.T) {
	for _, raw := range []string{"", "!!!", base64.RawURLEncoding.EncodeToString([]byte("{not json"))} {
		_, err := DecodeUserConfig(raw)
		require.Error(t, err)
		assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeConfigurationInvalid))
	}
}
