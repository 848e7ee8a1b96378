package options

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

type tableConfig struct {
	width  int
	logged bool
	order  []string
}

func withWidth(w int) Option[*tableConfig] {
	return New(func(c *tableConfig) error {
		if w != 32 && w != 64 {
			return errors.New("width must be 32 or 64")
		}
		c.width = w
		c.order = append(c.order, "width")

		return nil
	})
}

func withLogging() Option[*tableConfig] {
	return NoError(func(c *tableConfig) {
		c.logged = true
		c.order = append(c.order, "logging")
	})
}

func TestApply(t *testing.T) {
	t.Run("Applies options in order", func(t *testing.T) {
		cfg := &tableConfig{}
		require.NoError(t, Apply(cfg, withLogging(), withWidth(64)))
		require.Equal(t, 64, cfg.width)
		require.True(t, cfg.logged)
		require.Equal(t, []string{"logging", "width"}, cfg.order)
	})

	t.Run("Stops at the first error", func(t *testing.T) {
		cfg := &tableConfig{}
		err := Apply(cfg, withWidth(12), withLogging())
		require.ErrorContains(t, err, "width must be 32 or 64")
		require.False(t, cfg.logged)
	})

	t.Run("Skips nil options", func(t *testing.T) {
		cfg := &tableConfig{}
		require.NoError(t, Apply(cfg, nil, withLogging()))
		require.True(t, cfg.logged)
	})

	t.Run("No options", func(t *testing.T) {
		cfg := &tableConfig{}
		require.NoError(t, Apply(cfg))
		require.Zero(t, cfg.width)
	})
}
