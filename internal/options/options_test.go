package options

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

// fakeConfig mimics the shape of the writer config that consumes this
// package.
type fakeConfig struct {
	maxBytes   int
	codecName  string
	strictMode bool
}

func (c *fakeConfig) setMaxBytes(n int) error {
	if n <= 0 {
		return errors.New("max bytes must be positive")
	}
	c.maxBytes = n

	return nil
}

func TestNew(t *testing.T) {
	t.Run("applies function and reports success", func(t *testing.T) {
		cfg := &fakeConfig{}
		opt := New(func(c *fakeConfig) error {
			return c.setMaxBytes(4096)
		})

		err := opt.apply(cfg)
		require.NoError(t, err)
		require.Equal(t, 4096, cfg.maxBytes)
	})

	t.Run("propagates validation errors", func(t *testing.T) {
		cfg := &fakeConfig{}
		opt := New(func(c *fakeConfig) error {
			return c.setMaxBytes(-1)
		})

		err := opt.apply(cfg)
		require.Error(t, err)
		require.Contains(t, err.Error(), "must be positive")
	})
}

func TestNoError(t *testing.T) {
	cfg := &fakeConfig{}
	opt := NoError(func(c *fakeConfig) {
		c.codecName = "deflate"
	})

	err := opt.apply(cfg)
	require.NoError(t, err)
	require.Equal(t, "deflate", cfg.codecName)
}

func TestApply(t *testing.T) {
	t.Run("applies options in order", func(t *testing.T) {
		cfg := &fakeConfig{}
		err := Apply(cfg,
			New(func(c *fakeConfig) error { return c.setMaxBytes(1024) }),
			NoError(func(c *fakeConfig) { c.codecName = "snappy" }),
			NoError(func(c *fakeConfig) { c.strictMode = true }),
		)

		require.NoError(t, err)
		require.Equal(t, 1024, cfg.maxBytes)
		require.Equal(t, "snappy", cfg.codecName)
		require.True(t, cfg.strictMode)
	})

	t.Run("stops at first error", func(t *testing.T) {
		cfg := &fakeConfig{}
		err := Apply(cfg,
			New(func(c *fakeConfig) error { return c.setMaxBytes(512) }),
			New(func(c *fakeConfig) error { return c.setMaxBytes(0) }),
			NoError(func(c *fakeConfig) { c.codecName = "never set" }),
		)

		require.Error(t, err)
		require.Equal(t, 512, cfg.maxBytes)
		require.Equal(t, "", cfg.codecName, "options after the failing one must not run")
	})

	t.Run("no options is a no-op", func(t *testing.T) {
		cfg := &fakeConfig{}
		require.NoError(t, Apply(cfg))
		require.Equal(t, fakeConfig{}, *cfg)
	})
}

func TestGenericTargets(t *testing.T) {
	var n int
	opt := NoError(func(p *int) { *p = 42 })

	require.NoError(t, opt.apply(&n))
	require.Equal(t, 42, n)
}
