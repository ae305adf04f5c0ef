// Package config validates process environment variables into a typed
// Config at startup, aggregating every violation into a single error
// instead of failing piecemeal deep inside request handlers.
package config

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

// Config holds validated environment configuration for the server.
type Config struct {
	Port           string
	ClientOrigin   string
	UploadDir      string
	MaxUploadBytes int64

	GoEnv    string
	LogLevel string

	RateLimitAPI  string
	RateLimitJoin string
}

const defaultMaxUploadBytes int64 = 25 * 1024 * 1024 // 25 MiB, spec.md §3 FileMeta invariant

// ValidateEnv validates environment variables (via the provided lookup
// function, typically os.LookupEnv) and returns a Config or an aggregated
// error describing every violation found.
func ValidateEnv(lookup func(string) (string, bool)) (*Config, error) {
	cfg := &Config{}
	var problems []string

	cfg.Port = getOrDefault(lookup, "PORT", "3001")
	if port, err := strconv.Atoi(cfg.Port); err != nil || port < 1 || port > 65535 {
		problems = append(problems, fmt.Sprintf("PORT must be a valid port number between 1 and 65535 (got %q)", cfg.Port))
	}

	cfg.ClientOrigin = getOrDefault(lookup, "CLIENT_ORIGIN", "http://localhost:3000")
	if !isValidOrigin(cfg.ClientOrigin) {
		problems = append(problems, fmt.Sprintf("CLIENT_ORIGIN must be a valid http(s) origin (got %q)", cfg.ClientOrigin))
	}

	cfg.UploadDir = getOrDefault(lookup, "UPLOAD_DIR", "./uploads")

	cfg.MaxUploadBytes = defaultMaxUploadBytes
	if raw, ok := lookup("MAX_UPLOAD_BYTES"); ok && raw != "" {
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || n <= 0 {
			problems = append(problems, fmt.Sprintf("MAX_UPLOAD_BYTES must be a positive integer (got %q)", raw))
		} else {
			cfg.MaxUploadBytes = n
		}
	}

	cfg.GoEnv = getOrDefault(lookup, "GO_ENV", "production")
	cfg.LogLevel = getOrDefault(lookup, "LOG_LEVEL", "info")

	cfg.RateLimitAPI = getOrDefault(lookup, "RATE_LIMIT_API", "100-M")
	cfg.RateLimitJoin = getOrDefault(lookup, "RATE_LIMIT_JOIN", "20-M")

	if len(problems) > 0 {
		return nil, fmt.Errorf("environment validation failed:\n  - %s", strings.Join(problems, "\n  - "))
	}
	return cfg, nil
}

func isValidOrigin(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

func getOrDefault(lookup func(string) (string, bool), key, def string) string {
	if v, ok := lookup(key); ok && v != "" {
		return v
	}
	return def
}
