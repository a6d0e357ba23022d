package main

import (
	"fmt"
	"log/slog"
	"net/url"
	"path/filepath"
	"strings"
)

const (
	defaultBaseURL  = "http://localhost:8000"
	defaultLogLevel = "warn"
	configDirName   = ".tutor"
)

// environment holds the values main reads from the process environment.
type environment struct {
	BaseURL   string
	TokenFile string
	LogLevel  string
	Home      string
}

// globalFlags holds the root command's persistent flag values.
type globalFlags struct {
	BaseURL   string
	TokenFile string
	LogLevel  string
	LogFile   string
}

// config is the resolved configuration shared by all subcommands.
type config struct {
	BaseURL   string
	TokenFile string
	LogLevel  slog.Level
	LogFile   string
	// SessionDir is where chat transcripts are saved by default.
	SessionDir string
}

// resolveConfig merges flags over environment over defaults. All env var
// values are passed in as parameters; env is only read in main().
func resolveConfig(flags globalFlags, env environment) (config, error) {
	dir := filepath.Join(env.Home, configDirName)

	baseURL := firstNonEmpty(flags.BaseURL, env.BaseURL, defaultBaseURL)
	u, err := url.Parse(baseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return config{}, fmt.Errorf("invalid base URL %q: must be absolute, e.g. %s", baseURL, defaultBaseURL)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return config{}, fmt.Errorf("invalid base URL %q: scheme must be http or https", baseURL)
	}

	level, err := parseLevel(firstNonEmpty(flags.LogLevel, env.LogLevel, defaultLogLevel))
	if err != nil {
		return config{}, err
	}

	return config{
		BaseURL:    strings.TrimRight(baseURL, "/"),
		TokenFile:  firstNonEmpty(flags.TokenFile, env.TokenFile, filepath.Join(dir, "token.json")),
		LogLevel:   level,
		LogFile:    flags.LogFile,
		SessionDir: filepath.Join(dir, "sessions"),
	}, nil
}

func parseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return 0, fmt.Errorf("invalid log level %q: must be debug, info, warn or error", s)
	}
	return level, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
