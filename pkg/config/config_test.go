package config

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// chdir mirrors testing.T.Chdir (Go 1.24+) for older toolchains.
func chdir(t *testing.T, dir string) {
	t.Helper()
	old, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(old) })
}

func TestLoad_Defaults(t *testing.T) {
	chdir(t, t.TempDir())

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8000, cfg.Server.Port)
	assert.Equal(t, 10, cfg.Ranking.DefaultK)
	assert.Equal(t, 1000, cfg.Ranking.MaxFeatures)
	assert.Equal(t, 2, cfg.Ranking.MaxNGram)
	assert.False(t, cfg.Redis.Enabled)
	assert.Equal(t, "info", cfg.Logging.Level)
}

func TestLoad_EnvOverride(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("CODESELLERS_SERVER_PORT", "9090")
	t.Setenv("CODESELLERS_DATASET_PATH", "/tmp/vendas.csv")
	t.Setenv("CODESELLERS_RANKING_DEFAULTK", "5")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "/tmp/vendas.csv", cfg.Dataset.Path)
	assert.Equal(t, 5, cfg.Ranking.DefaultK)
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			Dataset: DatasetConfig{Path: "vendas.csv"},
			Ranking: RankingConfig{DefaultK: 10, MaxK: 100, MaxFeatures: 1000, MaxNGram: 2},
		}
	}

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
	}{
		{name: "valid", mutate: func(c *Config) {}},
		{name: "missing dataset path", mutate: func(c *Config) { c.Dataset.Path = "" }, wantErr: true},
		{name: "zero default k", mutate: func(c *Config) { c.Ranking.DefaultK = 0 }, wantErr: true},
		{name: "max k below default", mutate: func(c *Config) { c.Ranking.MaxK = 5 }, wantErr: true},
		{name: "no features", mutate: func(c *Config) { c.Ranking.MaxFeatures = 0 }, wantErr: true},
		{name: "no ngrams", mutate: func(c *Config) { c.Ranking.MaxNGram = 0 }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := valid()
			tt.mutate(c)
			err := c.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestRedisAddr(t *testing.T) {
	assert.Equal(t, "localhost:6379", RedisConfig{Host: "localhost", Port: 6379}.Addr())
}
