package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{EnvConfig, EnvAPIKey, EnvBaseURL, EnvSubnet} {
		t.Setenv(key, "")
	}
}

func TestLoad_MissingConfigFallsBackToDefaults(t *testing.T) {
	clearEnv(t)
	home := t.TempDir()
	t.Setenv("HOME", home)

	cfg, err := Load(filepath.Join(home, "does-not-exist.toml"))
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.APIPort != defaultAPIPort {
		t.Fatalf("APIPort = %d, want %d", cfg.APIPort, defaultAPIPort)
	}
	if cfg.ScanConcurrency != defaultScanConcurrency {
		t.Fatalf("ScanConcurrency = %d, want %d", cfg.ScanConcurrency, defaultScanConcurrency)
	}
	if cfg.ProbeTimeout != defaultProbeTimeout {
		t.Fatalf("ProbeTimeout = %v, want %v", cfg.ProbeTimeout, defaultProbeTimeout)
	}
	if cfg.MaxEntries != MaxEntriesLimit {
		t.Fatalf("MaxEntries = %d, want %d", cfg.MaxEntries, MaxEntriesLimit)
	}

	wantDataDir, err := ExpandPath(defaultDataDir)
	if err != nil {
		t.Fatalf("ExpandPath(defaultDataDir) returned error: %v", err)
	}
	if cfg.DataDir != wantDataDir {
		t.Fatalf("DataDir = %q, want %q", cfg.DataDir, wantDataDir)
	}
	if cfg.EntriesPath() != filepath.Join(wantDataDir, "entries.json") {
		t.Fatalf("EntriesPath = %q, want under %q", cfg.EntriesPath(), wantDataDir)
	}
}

func TestLoad_ParsesAndTrimsConfig(t *testing.T) {
	clearEnv(t)
	home := t.TempDir()
	t.Setenv("HOME", home)

	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(`
api_port = 31009
scan_concurrency = 16
probe_timeout = "750ms"
subnet = "  10.0.0  "
data_dir = "  ~/.gemnote  "
preview_length = 40
log_level = "DEBUG"
`), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.APIPort != 31009 {
		t.Fatalf("APIPort = %d, want 31009", cfg.APIPort)
	}
	if cfg.ScanConcurrency != 16 {
		t.Fatalf("ScanConcurrency = %d, want 16", cfg.ScanConcurrency)
	}
	if cfg.ProbeTimeout != 750*time.Millisecond {
		t.Fatalf("ProbeTimeout = %v, want 750ms", cfg.ProbeTimeout)
	}
	if cfg.Subnet != "10.0.0" {
		t.Fatalf("Subnet = %q, want %q", cfg.Subnet, "10.0.0")
	}
	if !strings.HasPrefix(cfg.DataDir, home) {
		t.Fatalf("DataDir = %q, want it under HOME %q", cfg.DataDir, home)
	}
	if cfg.PreviewLength != 40 {
		t.Fatalf("PreviewLength = %d, want 40", cfg.PreviewLength)
	}
	if cfg.LogLevel != "debug" {
		t.Fatalf("LogLevel = %q, want debug", cfg.LogLevel)
	}
	if cfg.LogPath() != filepath.Join(cfg.DataDir, "gemnote.log") {
		t.Fatalf("LogPath = %q, want under %q", cfg.LogPath(), cfg.DataDir)
	}
}

func TestLoad_ClampsMaxEntries(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("max_entries = 500\n"), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.MaxEntries != MaxEntriesLimit {
		t.Fatalf("MaxEntries = %d, want %d", cfg.MaxEntries, MaxEntriesLimit)
	}
}

func TestLoad_EmptyValuesUseDefaults(t *testing.T) {
	clearEnv(t)
	t.Setenv("HOME", t.TempDir())

	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(`
api_port = 0
probe_timeout = "   "
data_dir = ""
`), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.APIPort != defaultAPIPort {
		t.Fatalf("APIPort = %d, want %d", cfg.APIPort, defaultAPIPort)
	}
	if cfg.ProbeTimeout != defaultProbeTimeout {
		t.Fatalf("ProbeTimeout = %v, want %v", cfg.ProbeTimeout, defaultProbeTimeout)
	}
	wantDataDir, err := ExpandPath(defaultDataDir)
	if err != nil {
		t.Fatalf("ExpandPath(defaultDataDir) returned error: %v", err)
	}
	if cfg.DataDir != wantDataDir {
		t.Fatalf("DataDir = %q, want %q", cfg.DataDir, wantDataDir)
	}
}

func TestLoad_InvalidTOMLFails(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(`api_port = [`), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	_, err := Load(path)
	if err == nil {
		t.Fatalf("Load returned nil error, want parse error")
	}
	if !strings.Contains(err.Error(), "parse config") {
		t.Fatalf("Load error = %q, want it to mention parse config", err.Error())
	}
}

func TestLoad_InvalidDurationFails(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(`probe_timeout = "soon"`), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	_, err := Load(path)
	if err == nil || !strings.Contains(err.Error(), "probe_timeout") {
		t.Fatalf("Load error = %v, want probe_timeout parse error", err)
	}
}

func TestLoad_EnvironmentOverrides(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(`subnet = "10.0.0"`), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	t.Setenv(EnvAPIKey, " secret ")
	t.Setenv(EnvBaseURL, "http://192.168.1.20:31010")
	t.Setenv(EnvSubnet, "192.168.1")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.APIKey != "secret" {
		t.Fatalf("APIKey = %q, want secret", cfg.APIKey)
	}
	if cfg.BaseURL != "http://192.168.1.20:31010" {
		t.Fatalf("BaseURL = %q, want env value", cfg.BaseURL)
	}
	if cfg.Subnet != "192.168.1" {
		t.Fatalf("Subnet = %q, want env override", cfg.Subnet)
	}
}

func TestLoad_ConfigPathFromEnv(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "custom.toml")
	if err := os.WriteFile(path, []byte("api_port = 4000\n"), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	t.Setenv(EnvConfig, path)

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.APIPort != 4000 {
		t.Fatalf("APIPort = %d, want 4000", cfg.APIPort)
	}
}

func TestExpandPath_ExpandsTildeAndReturnsAbs(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	got, err := ExpandPath("~/a/b")
	if err != nil {
		t.Fatalf("ExpandPath returned error: %v", err)
	}
	want := filepath.Join(home, "a/b")
	if got != want {
		t.Fatalf("ExpandPath = %q, want %q", got, want)
	}
}

func TestExpandPath_EmptyErrors(t *testing.T) {
	if _, err := ExpandPath("   "); err == nil {
		t.Fatalf("ExpandPath returned nil error, want error")
	}
}

func TestEntriesPath_DefaultsWhenDataDirEmpty(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	var cfg Config
	got := cfg.EntriesPath()
	if !strings.HasPrefix(got, home) {
		t.Fatalf("EntriesPath = %q, want it under HOME %q", got, home)
	}
	if !strings.HasSuffix(got, filepath.FromSlash("/entries.json")) {
		t.Fatalf("EntriesPath = %q, want it to end with /entries.json", got)
	}
}
