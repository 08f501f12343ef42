package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rustyeddy/riskgate/store"
)

func TestDefaultIsValid(t *testing.T) {
	t.Parallel()

	cfg := Default()
	assert.NoError(t, cfg.Validate())
	assert.Equal(t, "default", cfg.Account.ID)
	assert.Equal(t, "sqlite", cfg.Store.Type)
	assert.NotEmpty(t, cfg.Throttle.Tiers)
}

func TestSaveLoadRoundTripYAML(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "riskgate.yaml")

	want := Default()
	want.Account.ID = "acct-42"
	want.Throttle.InitialCapital = 25000
	want.Store.Type = "file"
	want.Store.Path = "/tmp/state.json"
	require.NoError(t, want.SaveToFile(path))

	got, err := LoadFromFile(path)
	require.NoError(t, err)

	assert.Equal(t, "acct-42", got.Account.ID)
	assert.InDelta(t, 25000, got.Throttle.InitialCapital, 1e-9)
	assert.Equal(t, "file", got.Store.Type)
	assert.Len(t, got.Throttle.Tiers, len(want.Throttle.Tiers))
}

func TestSaveLoadRoundTripJSON(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "riskgate.json")

	want := Default()
	want.Account.ID = "json-acct"
	require.NoError(t, want.SaveToFile(path))

	got, err := LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, "json-acct", got.Account.ID)
}

func TestLoadFromFileErrors(t *testing.T) {
	t.Parallel()

	t.Run("missing file", func(t *testing.T) {
		t.Parallel()
		_, err := LoadFromFile(filepath.Join(t.TempDir(), "nope.yaml"))
		assert.Error(t, err)
	})

	t.Run("unparseable content", func(t *testing.T) {
		t.Parallel()
		path := filepath.Join(t.TempDir(), "bad.yaml")
		require.NoError(t, os.WriteFile(path, []byte(":{::not config"), 0o644))
		_, err := LoadFromFile(path)
		assert.Error(t, err)
	})

	t.Run("invalid values", func(t *testing.T) {
		t.Parallel()
		path := filepath.Join(t.TempDir(), "invalid.yaml")
		require.NoError(t, os.WriteFile(path, []byte("account:\n  id: \"\"\n"), 0o644))
		_, err := LoadFromFile(path)
		assert.Error(t, err)
	})
}

func TestValidateStoreSection(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"file without path", func(c *Config) { c.Store.Type = "file"; c.Store.Path = "" }, true},
		{"sqlite without path", func(c *Config) { c.Store.Type = "sqlite"; c.Store.Path = "" }, true},
		{"redis without addr", func(c *Config) { c.Store.Type = "redis" }, true},
		{"unknown type", func(c *Config) { c.Store.Type = "postgres" }, true},
		{"none is fine", func(c *Config) { c.Store.Type = "none"; c.Store.Path = "" }, false},
		{"redis with addr", func(c *Config) {
			c.Store.Type = "redis"
			c.Store.Redis.Addr = "localhost:6379"
		}, false},
		{"bad log level", func(c *Config) { c.Logging.Level = "loud" }, true},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestOpenStoreSelectsBackend(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("none returns nil store", func(t *testing.T) {
		t.Parallel()
		cfg := Default()
		cfg.Store.Type = "none"
		st, err := cfg.OpenStore(ctx)
		require.NoError(t, err)
		assert.Nil(t, st)
	})

	t.Run("file", func(t *testing.T) {
		t.Parallel()
		cfg := Default()
		cfg.Store.Type = "file"
		cfg.Store.Path = filepath.Join(t.TempDir(), "state.json")
		st, err := cfg.OpenStore(ctx)
		require.NoError(t, err)
		require.NotNil(t, st)
		t.Cleanup(func() { _ = st.Close() })
		assert.IsType(t, &store.File{}, st)
	})

	t.Run("sqlite", func(t *testing.T) {
		t.Parallel()
		cfg := Default()
		cfg.Store.Path = filepath.Join(t.TempDir(), "state.db")
		st, err := cfg.OpenStore(ctx)
		require.NoError(t, err)
		require.NotNil(t, st)
		t.Cleanup(func() { _ = st.Close() })
		assert.IsType(t, &store.SQLite{}, st)
	})

	t.Run("unknown type errors", func(t *testing.T) {
		t.Parallel()
		cfg := Default()
		cfg.Store.Type = "postgres"
		_, err := cfg.OpenStore(ctx)
		assert.Error(t, err)
	})
}

func TestNewLoggerRespectsLevel(t *testing.T) {
	t.Parallel()

	cfg := Default()
	cfg.Logging.Level = "debug"
	cfg.Logging.Pretty = false

	log := cfg.NewLogger()
	assert.Equal(t, "debug", log.GetLevel().String())
}
