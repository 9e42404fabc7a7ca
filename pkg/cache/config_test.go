package cache

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, time.Hour, cfg.DefaultTTL)
	assert.Equal(t, 1000, cfg.MaxSize)
	assert.Equal(t, 5*time.Minute, cfg.CleanupInterval)
	assert.NoError(t, cfg.Validate())
}

func TestConfig_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		name    string
		json    string
		want    Config
		wantErr bool
	}{
		{
			name: "duration strings",
			json: `{"default_ttl":"30m","max_size":50,"cleanup_interval":"1m"}`,
			want: Config{DefaultTTL: 30 * time.Minute, MaxSize: 50, CleanupInterval: time.Minute},
		},
		{
			name: "integer nanoseconds",
			json: `{"default_ttl":1000000000,"cleanup_interval":60000000000}`,
			want: Config{DefaultTTL: time.Second, CleanupInterval: time.Minute},
		},
		{
			name: "named caches",
			json: `{"cleanup_interval":"5m","caches":{"indicators":{"ttl":"24h","max_size":300}}}`,
			want: Config{
				CleanupInterval: 5 * time.Minute,
				Caches:          map[string]NamedConfig{"indicators": {TTL: 24 * time.Hour, MaxSize: 300}},
			},
		},
		{
			name:    "invalid duration",
			json:    `{"default_ttl":"soon"}`,
			wantErr: true,
		},
		{
			name:    "wrong type",
			json:    `{"cleanup_interval":true}`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var cfg Config
			err := json.Unmarshal([]byte(tt.json), &cfg)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, cfg)
		})
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		ok     bool
	}{
		{"defaults", func(*Config) {}, true},
		{"never expire", func(c *Config) { c.DefaultTTL = 0 }, true},
		{"unbounded", func(c *Config) { c.MaxSize = 0 }, true},
		{"negative ttl", func(c *Config) { c.DefaultTTL = -time.Second }, false},
		{"no sweep interval", func(c *Config) { c.CleanupInterval = 0 }, false},
		{"reserved name", func(c *Config) { c.Caches = map[string]NamedConfig{"default": {}} }, false},
		{"negative named ttl", func(c *Config) {
			c.Caches = map[string]NamedConfig{"x": {TTL: -1}}
		}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			if tt.ok {
				assert.NoError(t, cfg.Validate())
			} else {
				assert.Error(t, cfg.Validate())
			}
		})
	}
}
