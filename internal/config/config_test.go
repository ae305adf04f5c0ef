package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func lookupFrom(m map[string]string) func(string) (string, bool) {
	return func(k string) (string, bool) {
		v, ok := m[k]
		return v, ok
	}
}

func TestValidateEnvDefaults(t *testing.T) {
	cfg, err := ValidateEnv(lookupFrom(nil))
	require.NoError(t, err)
	assert.Equal(t, "3001", cfg.Port)
	assert.Equal(t, "http://localhost:3000", cfg.ClientOrigin)
	assert.Equal(t, "./uploads", cfg.UploadDir)
	assert.EqualValues(t, 25*1024*1024, cfg.MaxUploadBytes)
	assert.Equal(t, "production", cfg.GoEnv)
	assert.Equal(t, "info", cfg.LogLevel)
}

func TestValidateEnvRejectsBadPort(t *testing.T) {
	_, err := ValidateEnv(lookupFrom(map[string]string{"PORT": "not-a-port"}))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "PORT")
}

func TestValidateEnvRejectsBadOrigin(t *testing.T) {
	_, err := ValidateEnv(lookupFrom(map[string]string{"CLIENT_ORIGIN": "not a url"}))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "CLIENT_ORIGIN")
}

func TestValidateEnvAggregatesMultipleProblems(t *testing.T) {
	_, err := ValidateEnv(lookupFrom(map[string]string{
		"PORT":             "99999",
		"CLIENT_ORIGIN":    "ftp://example.com",
		"MAX_UPLOAD_BYTES": "-1",
	}))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "PORT")
	assert.Contains(t, err.Error(), "CLIENT_ORIGIN")
	assert.Contains(t, err.Error(), "MAX_UPLOAD_BYTES")
}

func TestValidateEnvAcceptsOverrides(t *testing.T) {
	cfg, err := ValidateEnv(lookupFrom(map[string]string{
		"PORT":             "8080",
		"CLIENT_ORIGIN":    "https://meet.example.com",
		"MAX_UPLOAD_BYTES": "1048576",
	}))
	require.NoError(t, err)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "https://meet.example.com", cfg.ClientOrigin)
	assert.EqualValues(t, 1048576, cfg.MaxUploadBytes)
}
