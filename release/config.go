package release

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config describes the firmware project the release helper operates on.
// Paths are relative to the project root.
type Config struct {
	VersionHeader string   `yaml:"version_header"`
	VersionFile   string   `yaml:"version_file"`
	BuildDir      string   `yaml:"build_dir"`
	FirmwareName  string   `yaml:"firmware_name"`
	ReleaseDir    string   `yaml:"release_dir"`
	BuildCommand  []string `yaml:"build_command"`
	RepositoryURL string   `yaml:"repository_url"`
	DefaultNotes  string   `yaml:"default_notes"`
}

// DefaultConfig returns the layout of the ESP32 music player project.
func DefaultConfig() Config {
	return Config{
		VersionHeader: filepath.Join("main", "ota_update.h"),
		VersionFile:   "version.json",
		BuildDir:      "build",
		FirmwareName:  "ESP32-8048S050C.bin",
		ReleaseDir:    "release",
		BuildCommand:  []string{"idf.py", "build"},
		RepositoryURL: "https://github.com/mmame/esp32-music-player",
		DefaultNotes:  "Bug fixes and improvements",
	}
}

// FirmwarePath is the build artifact that gets published.
func (c Config) FirmwarePath() string {
	return filepath.Join(c.BuildDir, c.FirmwareName)
}

// Load reads configuration from a yaml file. A missing file falls back to
// defaults; fields left empty in the file keep their default.
func Load(path string) (Config, error) {
	if path == "" {
		return DefaultConfig(), nil
	}

	content, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return DefaultConfig(), nil
	}
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(content, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}

	defaults := DefaultConfig()
	if cfg.VersionHeader == "" {
		cfg.VersionHeader = defaults.VersionHeader
	}
	if cfg.VersionFile == "" {
		cfg.VersionFile = defaults.VersionFile
	}
	if cfg.BuildDir == "" {
		cfg.BuildDir = defaults.BuildDir
	}
	if cfg.FirmwareName == "" {
		cfg.FirmwareName = defaults.FirmwareName
	}
	if cfg.ReleaseDir == "" {
		cfg.ReleaseDir = defaults.ReleaseDir
	}
	if cfg.RepositoryURL == "" {
		cfg.RepositoryURL = defaults.RepositoryURL
	}
	if cfg.DefaultNotes == "" {
		cfg.DefaultNotes = defaults.DefaultNotes
	}
	if len(cfg.BuildCommand) == 0 || cfg.BuildCommand[0] == "" {
		return Config{}, errors.New("build_command must name a program")
	}
	return cfg, nil
}
