// Package prefs handles gemnote user preferences persistence.
// Preferences are stored in ~/.config/gemnote/prefs.toml.
package prefs

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
)

// Prefs holds values gemnote writes at runtime: the API key entered by the
// user, the endpoint found by the last successful connect, and selections.
type Prefs struct {
	APIKey    string `toml:"api_key"`
	BaseURL   string `toml:"base_url"`
	SpaceID   string `toml:"space_id"`
	SpaceName string `toml:"space_name"`
	TypeKey   string `toml:"type_key"`
	Theme     string `toml:"theme"`
}

const (
	defaultPrefsPath = "~/.config/gemnote/prefs.toml"
	defaultTheme     = "Nightfox"

	// DefaultTypeKey is the object type used for new notes.
	DefaultTypeKey = "note"
)

// DefaultPath returns the default preferences file path.
func DefaultPath() string {
	return defaultPrefsPath
}

func defaults() Prefs {
	return Prefs{Theme: defaultTheme, TypeKey: DefaultTypeKey}
}

// Load reads preferences from the given path, falling back to defaults if missing.
func Load(path string) (Prefs, error) {
	resolved, err := resolvePath(path)
	if err != nil {
		return defaults(), nil
	}

	prefs := defaults()

	file, err := os.Open(resolved)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return prefs, nil
		}
		return prefs, nil // Graceful degradation
	}
	defer func() { _ = file.Close() }()

	bytes, err := io.ReadAll(file)
	if err != nil {
		return prefs, nil // Graceful degradation
	}

	if err := toml.Unmarshal(bytes, &prefs); err != nil {
		return defaults(), nil // Graceful degradation
	}

	prefs.normalize()
	return prefs, nil
}

// Save writes preferences to the given path, creating directories as needed.
// The file holds the API key, so it is only readable by the owner.
func Save(path string, p Prefs) error {
	resolved, err := resolvePath(path)
	if err != nil {
		return fmt.Errorf("resolve path: %w", err)
	}

	dir := filepath.Dir(resolved)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("create prefs dir: %w", err)
	}

	p.normalize()
	bytes, err := toml.Marshal(p)
	if err != nil {
		return fmt.Errorf("marshal prefs: %w", err)
	}

	if err := os.WriteFile(resolved, bytes, 0o600); err != nil {
		return fmt.Errorf("write prefs: %w", err)
	}

	return nil
}

// Update loads the preferences at path, applies fn and saves the result.
func Update(path string, fn func(*Prefs)) (Prefs, error) {
	p, _ := Load(path)
	fn(&p)
	p.normalize()
	if err := Save(path, p); err != nil {
		return p, err
	}
	return p, nil
}

func (p *Prefs) normalize() {
	p.APIKey = strings.TrimSpace(p.APIKey)
	p.BaseURL = strings.TrimSpace(p.BaseURL)
	p.SpaceID = strings.TrimSpace(p.SpaceID)
	if p.SpaceID == "" {
		p.SpaceName = ""
	}
	if strings.TrimSpace(p.TypeKey) == "" {
		p.TypeKey = DefaultTypeKey
	}
	if strings.TrimSpace(p.Theme) == "" {
		p.Theme = defaultTheme
	}
}

func resolvePath(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return expandPath(defaultPrefsPath)
	}
	return expandPath(path)
}

func expandPath(path string) (string, error) {
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
