package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	toml "github.com/pelletier/go-toml/v2"
)

// Config captures gemnote's runtime settings.
type Config struct {
	APIPort         int
	ScanConcurrency int
	ProbeTimeout    time.Duration
	RequestTimeout  time.Duration
	Subnet          string
	Interface       string
	DataDir         string
	MaxEntries      int
	PreviewLength   int
	PollInterval    time.Duration
	LogLevel        string

	// Populated from the environment only; never read from the file.
	APIKey  string
	BaseURL string
}

// Environment variables consulted by Load.
const (
	EnvConfig  = "GEMNOTE_CONFIG"
	EnvAPIKey  = "GEMNOTE_API_KEY"
	EnvBaseURL = "GEMNOTE_BASE_URL"
	EnvSubnet  = "GEMNOTE_SUBNET"
)

const (
	defaultConfigPath      = "~/.config/gemnote/config.toml"
	defaultDataDir         = "~/.local/share/gemnote"
	defaultAPIPort         = 31010
	defaultScanConcurrency = 50
	defaultProbeTimeout    = 2 * time.Second
	defaultRequestTimeout  = 10 * time.Second
	defaultPollInterval    = 2 * time.Second
	defaultPreviewLength   = 100
	defaultLogLevel        = "info"

	// MaxEntriesLimit is the hard cap on stored entries.
	MaxEntriesLimit = 50
)

// Default returns the configuration used when no file exists.
func Default() Config {
	return Config{
		APIPort:         defaultAPIPort,
		ScanConcurrency: defaultScanConcurrency,
		ProbeTimeout:    defaultProbeTimeout,
		RequestTimeout:  defaultRequestTimeout,
		DataDir:         mustExpand(defaultDataDir),
		MaxEntries:      MaxEntriesLimit,
		PreviewLength:   defaultPreviewLength,
		PollInterval:    defaultPollInterval,
		LogLevel:        defaultLogLevel,
	}
}

// Load locates and parses the gemnote config, falling back to defaults when
// missing. Environment overrides are applied last.
func Load(path string) (Config, error) {
	if strings.TrimSpace(path) == "" {
		path = os.Getenv(EnvConfig)
	}
	resolved, err := resolvePath(path)
	if err != nil {
		return Config{}, err
	}

	cfg := Default()

	file, err := os.Open(resolved)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			cfg.applyEnv()
			return cfg, nil
		}
		return Config{}, fmt.Errorf("open config: %w", err)
	}
	defer file.Close()

	bytes, err := io.ReadAll(file)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}

	var raw struct {
		APIPort         int    `toml:"api_port"`
		ScanConcurrency int    `toml:"scan_concurrency"`
		ProbeTimeout    string `toml:"probe_timeout"`
		RequestTimeout  string `toml:"request_timeout"`
		Subnet          string `toml:"subnet"`
		Interface       string `toml:"interface"`
		DataDir         string `toml:"data_dir"`
		MaxEntries      int    `toml:"max_entries"`
		PreviewLength   int    `toml:"preview_length"`
		PollInterval    string `toml:"poll_interval"`
		LogLevel        string `toml:"log_level"`
	}
	if err := toml.Unmarshal(bytes, &raw); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}

	if raw.APIPort > 0 && raw.APIPort < 65536 {
		cfg.APIPort = raw.APIPort
	}
	if raw.ScanConcurrency > 0 {
		cfg.ScanConcurrency = raw.ScanConcurrency
	}
	if raw.MaxEntries > 0 {
		cfg.MaxEntries = min(raw.MaxEntries, MaxEntriesLimit)
	}
	if raw.PreviewLength > 0 {
		cfg.PreviewLength = raw.PreviewLength
	}

	if cfg.ProbeTimeout, err = parseDuration("probe_timeout", raw.ProbeTimeout, cfg.ProbeTimeout); err != nil {
		return Config{}, err
	}
	if cfg.RequestTimeout, err = parseDuration("request_timeout", raw.RequestTimeout, cfg.RequestTimeout); err != nil {
		return Config{}, err
	}
	if cfg.PollInterval, err = parseDuration("poll_interval", raw.PollInterval, cfg.PollInterval); err != nil {
		return Config{}, err
	}

	cfg.Subnet = strings.TrimSpace(raw.Subnet)
	cfg.Interface = strings.TrimSpace(raw.Interface)

	if dir := strings.TrimSpace(raw.DataDir); dir != "" {
		cfg.DataDir = mustExpand(dir)
	}
	if level := strings.TrimSpace(raw.LogLevel); level != "" {
		cfg.LogLevel = strings.ToLower(level)
	}

	cfg.applyEnv()
	return cfg, nil
}

// EntriesPath returns the JSON file holding captured entries.
func (c Config) EntriesPath() string {
	return filepath.Join(c.dataDir(), "entries.json")
}

// LogPath returns the gemnote log file.
func (c Config) LogPath() string {
	return filepath.Join(c.dataDir(), "gemnote.log")
}

func (c Config) dataDir() string {
	if strings.TrimSpace(c.DataDir) == "" {
		return mustExpand(defaultDataDir)
	}
	return c.DataDir
}

func (c *Config) applyEnv() {
	if v := strings.TrimSpace(os.Getenv(EnvAPIKey)); v != "" {
		c.APIKey = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvBaseURL)); v != "" {
		c.BaseURL = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvSubnet)); v != "" {
		c.Subnet = v
	}
}

func parseDuration(field, value string, fallback time.Duration) (time.Duration, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(trimmed)
	if err != nil {
		return 0, fmt.Errorf("parse %s: %w", field, err)
	}
	if d <= 0 {
		return fallback, nil
	}
	return d, nil
}

func resolvePath(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return ExpandPath(defaultConfigPath)
	}
	return ExpandPath(path)
}

func mustExpand(path string) string {
	expanded, err := ExpandPath(path)
	if err != nil {
		return path
	}
	return expanded
}

// ExpandPath resolves a leading tilde and returns an absolute path.
func ExpandPath(path string) (string, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return "", fmt.Errorf("path is empty")
	}
	if strings.HasPrefix(trimmed, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		trimmed = filepath.Join(home, strings.TrimPrefix(trimmed, "~"))
	}
	return filepath.Abs(trimmed)
}
