package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"gopkg.in/ini.v1"

	"github.com/kyaoi/arcview/internal/tree"
)

const (
	defaultPanelWidth = 48
	minPanelWidth     = 20
)

// DefaultExtensions are the file suffixes opened as archives.
var DefaultExtensions = []string{".zip", ".jar", ".war", ".apk", ".epub"}

// Config holds the user settings read from config.ini.
type Config struct {
	ShowHidden bool
	SkipDirs   []string
	PanelWidth int

	Extensions []string
	Strict     bool

	LogLevel slog.Level
	LogFile  string
}

// Default returns the settings used when no file exists.
func Default() Config {
	return Config{
		SkipDirs:   slices.Clone(tree.DefaultSkipDirs),
		PanelWidth: defaultPanelWidth,
		Extensions: slices.Clone(DefaultExtensions),
		Strict:     true,
		LogLevel:   slog.LevelInfo,
	}
}

// DefaultPath returns $XDG_CONFIG_HOME/arcview/config.ini or its platform
// equivalent.
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "arcview", "config.ini"), nil
}

// Load reads the config file at path. A missing file yields Default.
func Load(path string) (Config, error) {
	cfg := Default()
	file, err := ini.Load(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("load config %s: %w", path, err)
	}
	if err := cfg.apply(file); err != nil {
		return cfg, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Parse reads settings from raw ini data.
func Parse(data []byte) (Config, error) {
	cfg := Default()
	file, err := ini.Load(data)
	if err != nil {
		return cfg, err
	}
	return cfg, cfg.apply(file)
}

func (c *Config) apply(file *ini.File) error {
	browser := file.Section("browser")
	if key := browser.Key("show_hidden"); key.String() != "" {
		v, err := key.Bool()
		if err != nil {
			return fmt.Errorf("browser.show_hidden: %w", err)
		}
		c.ShowHidden = v
	}
	if browser.HasKey("skip_dirs") {
		c.SkipDirs = list(browser.Key("skip_dirs").Strings(","))
	}
	if key := browser.Key("panel_width"); key.String() != "" {
		v, err := key.Int()
		if err != nil {
			return fmt.Errorf("browser.panel_width: %w", err)
		}
		c.PanelWidth = max(v, minPanelWidth)
	}

	archive := file.Section("archive")
	if archive.HasKey("extensions") {
		c.Extensions = nil
		for _, ext := range list(archive.Key("extensions").Strings(",")) {
			ext = strings.ToLower(ext)
			if !strings.HasPrefix(ext, ".") {
				ext = "." + ext
			}
			c.Extensions = append(c.Extensions, ext)
		}
	}
	if key := archive.Key("strict"); key.String() != "" {
		v, err := key.Bool()
		if err != nil {
			return fmt.Errorf("archive.strict: %w", err)
		}
		c.Strict = v
	}

	log := file.Section("log")
	if key := log.Key("level"); key.String() != "" {
		level, err := ParseLevel(key.String())
		if err != nil {
			return fmt.Errorf("log.level: %w", err)
		}
		c.LogLevel = level
	}
	c.LogFile = log.Key("file").String()
	return nil
}

// ParseLevel converts debug, info, warn or error into a slog level.
func ParseLevel(s string) (slog.Level, error) {
	var level slog.Level
	err := level.UnmarshalText([]byte(strings.TrimSpace(s)))
	return level, err
}

// IsArchive reports whether name carries one of the archive extensions.
func (c Config) IsArchive(name string) bool {
	return slices.Contains(c.Extensions, strings.ToLower(filepath.Ext(name)))
}

// RealOptions returns the listing options for real directories.
func (c Config) RealOptions() []tree.RealOption {
	return []tree.RealOption{
		tree.WithShowHidden(c.ShowHidden),
		tree.WithSkipDirs(c.SkipDirs...),
	}
}

// Save writes the settings to path, creating parent directories.
func (c Config) Save(path string) error {
	file := ini.Empty()
	browser := file.Section("browser")
	browser.Key("show_hidden").SetValue(fmt.Sprint(c.ShowHidden))
	browser.Key("skip_dirs").SetValue(strings.Join(c.SkipDirs, ", "))
	browser.Key("panel_width").SetValue(fmt.Sprint(c.PanelWidth))

	archive := file.Section("archive")
	archive.Key("extensions").SetValue(strings.Join(c.Extensions, ", "))
	archive.Key("strict").SetValue(fmt.Sprint(c.Strict))

	log := file.Section("log")
	log.Key("level").SetValue(strings.ToLower(c.LogLevel.String()))
	log.Key("file").SetValue(c.LogFile)

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return file.SaveTo(path)
}

func list(values []string) []string {
	out := values[:0]
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}
