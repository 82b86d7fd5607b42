// Package config loads runtime settings from the environment and an optional
// .env file. Real environment variables win over the file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/baxromumarov/recipe-hunter/internal/httpx"
)

type Config struct {
	Port              string
	DatabaseURL       string
	LogLevel          string
	LogFormat         string
	FetchTimeout      time.Duration
	FetchUserAgent    string
	FetchHostInterval time.Duration
	RespectRobots     bool
	FetchProxyURL     string
	CORSOrigins       []string
	YouTubeBaseURL    string
	ImportWorkers     int

	// RefreshInterval schedules re-imports of stale recipes. Zero disables it.
	RefreshInterval time.Duration
	RefreshMaxAge   time.Duration
}

func Default() Config {
	return Config{
		Port:           "8080",
		DatabaseURL:    "sqlite:recipes.db",
		LogLevel:       "info",
		LogFormat:      "text",
		FetchTimeout:   httpx.DefaultTimeout,
		FetchUserAgent: httpx.DefaultUserAgent,
		CORSOrigins:    []string{"*"},
		YouTubeBaseURL: "https://www.youtube.com",
		ImportWorkers:  4,
		RefreshMaxAge:  7 * 24 * time.Hour,
	}
}

// Load reads the given .env files (".env" when none are named) and the
// process environment. Missing files are skipped.
func Load(envFiles ...string) (Config, error) {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	fileVars := map[string]string{}
	for _, f := range envFiles {
		vars, err := godotenv.Read(f)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return Config{}, fmt.Errorf("config: read %s: %w", f, err)
		}
		for k, v := range vars {
			if _, ok := fileVars[k]; !ok {
				fileVars[k] = v
			}
		}
	}

	return FromLookup(func(key string) (string, bool) {
		if v, ok := os.LookupEnv(key); ok {
			return v, true
		}
		v, ok := fileVars[key]
		return v, ok
	})
}

// FromLookup builds a Config from lookup, applying defaults for unset keys.
func FromLookup(lookup func(string) (string, bool)) (Config, error) {
	cfg := Default()
	get := func(key string) (string, bool) {
		v, ok := lookup(key)
		v = strings.TrimSpace(v)
		return v, ok && v != ""
	}

	if v, ok := get("PORT"); ok {
		cfg.Port = v
	}
	if v, ok := get("DATABASE_URL"); ok {
		cfg.DatabaseURL = v
	}
	if v, ok := get("LOG_LEVEL"); ok {
		cfg.LogLevel = strings.ToLower(v)
	}
	if v, ok := get("LOG_FORMAT"); ok {
		cfg.LogFormat = strings.ToLower(v)
	}
	if v, ok := get("FETCH_USER_AGENT"); ok {
		cfg.FetchUserAgent = v
	}
	if v, ok := get("YOUTUBE_BASE_URL"); ok {
		cfg.YouTubeBaseURL = v
	}

	var err error
	if v, ok := get("FETCH_TIMEOUT"); ok {
		if cfg.FetchTimeout, err = time.ParseDuration(v); err != nil || cfg.FetchTimeout <= 0 {
			return Config{}, fmt.Errorf("config: FETCH_TIMEOUT %q: must be a positive duration", v)
		}
	}
	if v, ok := get("FETCH_HOST_INTERVAL"); ok {
		if cfg.FetchHostInterval, err = time.ParseDuration(v); err != nil || cfg.FetchHostInterval < 0 {
			return Config{}, fmt.Errorf("config: FETCH_HOST_INTERVAL %q: must be a duration >= 0", v)
		}
	}
	if v, ok := get("FETCH_RESPECT_ROBOTS"); ok {
		if cfg.RespectRobots, err = strconv.ParseBool(v); err != nil {
			return Config{}, fmt.Errorf("config: FETCH_RESPECT_ROBOTS %q: %w", v, err)
		}
	}
	if v, ok := get("IMPORT_WORKERS"); ok {
		if cfg.ImportWorkers, err = strconv.Atoi(v); err != nil || cfg.ImportWorkers <= 0 {
			return Config{}, fmt.Errorf("config: IMPORT_WORKERS %q: must be a positive integer", v)
		}
	}
	if v, ok := get("REFRESH_INTERVAL"); ok {
		if cfg.RefreshInterval, err = time.ParseDuration(v); err != nil || cfg.RefreshInterval < 0 {
			return Config{}, fmt.Errorf("config: REFRESH_INTERVAL %q: must be a duration >= 0", v)
		}
	}
	if v, ok := get("REFRESH_MAX_AGE"); ok {
		if cfg.RefreshMaxAge, err = time.ParseDuration(v); err != nil || cfg.RefreshMaxAge <= 0 {
			return Config{}, fmt.Errorf("config: REFRESH_MAX_AGE %q: must be a positive duration", v)
		}
	}
	if v, ok := get("FETCH_PROXY_URL"); ok {
		u, perr := url.Parse(v)
		if perr != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https" && u.Scheme != "socks5") {
			return Config{}, fmt.Errorf("config: FETCH_PROXY_URL %q: must be an http, https or socks5 URL", v)
		}
		cfg.FetchProxyURL = v
	}
	if v, ok := get("CORS_ORIGINS"); ok {
		var origins []string
		for _, o := range strings.Split(v, ",") {
			if o = strings.TrimSpace(o); o != "" {
				origins = append(origins, o)
			}
		}
		if len(origins) > 0 {
			cfg.CORSOrigins = origins
		}
	}
	return cfg, nil
}

// FetcherOptions maps the fetch settings onto the transport.
func (c Config) FetcherOptions() httpx.Options {
	return httpx.Options{
		UserAgent:     c.FetchUserAgent,
		Timeout:       c.FetchTimeout,
		HostInterval:  c.FetchHostInterval,
		RespectRobots: c.RespectRobots,
		ProxyURL:      c.FetchProxyURL,
	}
}
