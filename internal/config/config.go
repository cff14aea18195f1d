package config

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
)

// GuideSource names a reference-content document and where to fetch it from.
type GuideSource struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}

// Config holds application configuration.
type Config struct {
	// HistoryLimit is the conversation retention window: only the newest
	// N messages are kept persisted.
	HistoryLimit int `json:"history_limit"`

	// EventLimit bounds the usage-analytics event log.
	EventLimit int `json:"event_limit"`

	// CaptureListLimit is the default and maximum page size for capture
	// listings.
	CaptureListLimit int `json:"capture_list_limit"`

	// CacheValidityHours is how long an offline snapshot counts as fresh.
	CacheValidityHours int `json:"cache_validity_hours"`

	// FetchTimeoutSecs bounds each reference-content fetch. Failures are
	// non-fatal; the previous snapshot stays in place.
	FetchTimeoutSecs int `json:"fetch_timeout_secs"`

	// GuideSources lists the reference documents the offline cache mirrors.
	// Empty means use the built-in defaults.
	GuideSources []GuideSource `json:"guide_sources,omitempty"`

	// DBMaxOpenConns limits the maximum number of open database connections.
	// If set to 1, all database access is serialized (reduces "database is
	// locked" errors). 0 means use sql.DB default.
	DBMaxOpenConns int `json:"db_max_open_conns,omitempty"`

	// DBMaxIdleConns limits the maximum number of idle database connections.
	// 0 means use sql.DB default.
	DBMaxIdleConns int `json:"db_max_idle_conns,omitempty"`

	// DisabledTools is a list of MCP tool names to exclude from registration.
	// Unknown tool names are logged as warnings.
	DisabledTools []string `json:"disabled_tools,omitempty"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		HistoryLimit:       50,
		EventLimit:         100,
		CaptureListLimit:   50,
		CacheValidityHours: 24,
		FetchTimeoutSecs:   10,
		GuideSources: []GuideSource{
			{Name: "registration", URL: "https://guides.formpilot.dev/anmeldung.md"},
			{Name: "visa", URL: "https://guides.formpilot.dev/visa.md"},
			{Name: "banking", URL: "https://guides.formpilot.dev/banking.md"},
			{Name: "insurance", URL: "https://guides.formpilot.dev/insurance.md"},
		},
	}
}

// BaseDir resolves the data directory: FORMPILOT_BASE_DIR if set, otherwise
// ~/.formpilot.
func BaseDir() (string, error) {
	if dir := strings.TrimSpace(os.Getenv("FORMPILOT_BASE_DIR")); dir != "" {
		return dir, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".formpilot"), nil
}

// Load loads configuration from baseDir/config.json.
// Returns default config if the file doesn't exist.
// The baseDir parameter allows tests to use t.TempDir() instead of ~/.formpilot.
func Load(baseDir string) (*Config, error) {
	overlay, err := loadFileRaw(filepath.Join(baseDir, "config.json"))
	if err != nil {
		return nil, err
	}
	return Merge(DefaultConfig(), overlay), nil
}

// loadFileRaw loads configuration from a specific file path.
// Returns zero-valued config if the file doesn't exist (not defaults).
func loadFileRaw(configPath string) (*Config, error) {
	data, err := os.ReadFile(configPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &Config{}, nil
		}
		return nil, err
	}

	cfg := &Config{}
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Merge combines base and overlay configs.
// Overlay values take precedence for scalars; string lists are merged and
// deduplicated, except GuideSources where a non-empty overlay replaces the
// base outright (partial mirror lists make no sense).
func Merge(base, overlay *Config) *Config {
	result := &Config{}

	result.HistoryLimit = scalar(base.HistoryLimit, overlay.HistoryLimit)
	result.EventLimit = scalar(base.EventLimit, overlay.EventLimit)
	result.CaptureListLimit = scalar(base.CaptureListLimit, overlay.CaptureListLimit)
	result.CacheValidityHours = scalar(base.CacheValidityHours, overlay.CacheValidityHours)
	result.FetchTimeoutSecs = scalar(base.FetchTimeoutSecs, overlay.FetchTimeoutSecs)
	result.DBMaxOpenConns = scalar(base.DBMaxOpenConns, overlay.DBMaxOpenConns)
	result.DBMaxIdleConns = scalar(base.DBMaxIdleConns, overlay.DBMaxIdleConns)

	result.GuideSources = base.GuideSources
	if len(overlay.GuideSources) > 0 {
		result.GuideSources = overlay.GuideSources
	}

	result.DisabledTools = mergeStringSlice(base.DisabledTools, overlay.DisabledTools)

	return result
}

func scalar(base, overlay int) int {
	if overlay != 0 {
		return overlay
	}
	return base
}

// mergeStringSlice combines two slices, trims whitespace, and removes duplicates.
func mergeStringSlice(a, b []string) []string {
	seen := make(map[string]bool)
	result := make([]string, 0, len(a)+len(b))

	for _, s := range append(append([]string{}, a...), b...) {
		s = strings.TrimSpace(s)
		if s != "" && !seen[s] {
			seen[s] = true
			result = append(result, s)
		}
	}

	if len(result) == 0 {
		return nil
	}
	return result
}
