package config_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/moneyflow/moneyflow/pkg/config"
)

type testConfig struct {
	Name    string `env:"CONFIG_TEST_NAME" envDefault:"moneyflow"`
	Port    int    `env:"CONFIG_TEST_PORT" envDefault:"8080"`
	Enabled bool   `env:"CONFIG_TEST_ENABLED" envDefault:"false"`
}

func TestLoad(t *testing.T) {
	t.Run("applies defaults when env is unset", func(t *testing.T) {
		config.Reset()

		var cfg testConfig
		require.NoError(t, config.Load(&cfg))

		assert.Equal(t, "moneyflow", cfg.Name)
		assert.Equal(t, 8080, cfg.Port)
		assert.False(t, cfg.Enabled)
	})

	t.Run("reads environment values", func(t *testing.T) {
		config.Reset()
		t.Setenv("CONFIG_TEST_NAME", "budget")
		t.Setenv("CONFIG_TEST_PORT", "9090")
		t.Setenv("CONFIG_TEST_ENABLED", "true")

		var cfg testConfig
		require.NoError(t, config.Load(&cfg))

		assert.Equal(t, "budget", cfg.Name)
		assert.Equal(t, 9090, cfg.Port)
		assert.True(t, cfg.Enabled)
	})

	t.Run("caches per type", func(t *testing.T) {
		config.Reset()
		t.Setenv("CONFIG_TEST_NAME", "first")

		var first testConfig
		require.NoError(t, config.Load(&first))

		// Later env changes must not alter the already-loaded config.
		t.Setenv("CONFIG_TEST_NAME", "second")

		var again testConfig
		require.NoError(t, config.Load(&again))
		assert.Equal(t, "first", again.Name)
	})

	t.Run("rejects nil pointer", func(t *testing.T) {
		err := config.Load[testConfig](nil)
		assert.ErrorIs(t, err, config.ErrNilPointer)
	})
}
