package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckConfigPath(t *testing.T) {
	tests := []struct {
		path    string
		wantErr string
	}{
		{"configs/countrycompare.yaml", ""},
		{"/etc/countrycompare/config.json", ""},
		{"/etc/../etc/countrycompare.yml", ""},
		{"", "empty"},
		{"../secrets.json", "traversal"},
		{"configs/../../secrets.json", "traversal"},
		{"config.toml", "only JSON or YAML"},
		{strings.Repeat("a", maxPathLen+1) + ".json", "too long"},
	}
	for _, tt := range tests {
		err := checkConfigPath(tt.path)
		if tt.wantErr == "" {
			assert.NoError(t, err, tt.path)
			continue
		}
		require.Error(t, err, tt.path)
		assert.Contains(t, err.Error(), tt.wantErr)
	}
}

func TestSafeReadFile(t *testing.T) {
	dir := t.TempDir()

	big := filepath.Join(dir, "big.json")
	require.NoError(t, os.WriteFile(big, make([]byte, maxConfigSize+1), 0o600))
	_, err := safeReadFile(big)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "too large")

	sub := filepath.Join(dir, "dir.json")
	require.NoError(t, os.Mkdir(sub, 0o700))
	_, err = safeReadFile(sub)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not a regular file")

	ok := writeFile(t, "ok.json", `{"locale": "fr"}`)
	data, err := safeReadFile(ok)
	require.NoError(t, err)
	assert.JSONEq(t, `{"locale": "fr"}`, string(data))
}

func TestValidateJSONDepth(t *testing.T) {
	deep := strings.Repeat("[", maxJSONDepth+1) + strings.Repeat("]", maxJSONDepth+1)
	assert.Error(t, validateJSONDepth([]byte(deep)))

	limit := strings.Repeat("[", maxJSONDepth) + strings.Repeat("]", maxJSONDepth)
	assert.NoError(t, validateJSONDepth([]byte(limit)))

	assert.NoError(t, validateJSONDepth([]byte(`{"a": "[[[[[[[[[[[[[[[[[[[[[[[[[[[[[[[[[["}`)))
	assert.NoError(t, validateJSONDepth([]byte(`{"broken": `)), "syntax errors are reported by the decoder")
}

func TestValidateEnvVar(t *testing.T) {
	assert.NoError(t, validateEnvVar("K", ""))
	assert.NoError(t, validateEnvVar("K", "nats://localhost:4222"))
	assert.Error(t, validateEnvVar("K", strings.Repeat("x", maxEnvVarLen+1)))
	assert.Error(t, validateEnvVar("K", "a\x00b"))
}
