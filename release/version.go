package release

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"time"

	"github.com/valyala/fastjson"
)

var (
	firmwareVersionRe = regexp.MustCompile(`#define\s+FIRMWARE_VERSION\s+"([^"]+)"`)
	semverRe          = regexp.MustCompile(`^\d+\.\d+\.\d+$`)
)

// ErrNoVersionDefine is returned when a header has no FIRMWARE_VERSION define.
var ErrNoVersionDefine = errors.New("no FIRMWARE_VERSION define found")

// Metadata is the content of version.json as published next to the firmware.
type Metadata struct {
	Version      string `json:"version"`
	ReleaseDate  string `json:"release_date"`
	ReleaseNotes string `json:"release_notes"`
}

// ValidVersion reports whether v is a plain X.Y.Z semantic version.
func ValidVersion(v string) bool {
	return semverRe.MatchString(v)
}

// ReadHeaderVersion returns the FIRMWARE_VERSION defined in the header at path.
func ReadHeaderVersion(path string) (string, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read version header: %w", err)
	}
	m := firmwareVersionRe.FindSubmatch(content)
	if m == nil {
		return "", fmt.Errorf("%s: %w", path, ErrNoVersionDefine)
	}
	return string(m[1]), nil
}

// WriteHeaderVersion rewrites every FIRMWARE_VERSION define in the header.
func WriteHeaderVersion(path, version string) error {
	content, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read version header: %w", err)
	}
	if !firmwareVersionRe.Match(content) {
		return fmt.Errorf("%s: %w", path, ErrNoVersionDefine)
	}
	updated := firmwareVersionRe.ReplaceAllLiteral(content, []byte(fmt.Sprintf(`#define FIRMWARE_VERSION "%s"`, version)))
	return writeFileAtomic(path, updated)
}

// NewMetadata stamps a release with today's date.
func NewMetadata(version, notes string, now time.Time) Metadata {
	return Metadata{
		Version:      version,
		ReleaseDate:  now.Format("2006-01-02"),
		ReleaseNotes: notes,
	}
}

// WriteVersionFile writes m as indented JSON followed by a newline.
func WriteVersionFile(path string, m Metadata) error {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(m); err != nil {
		return fmt.Errorf("encode version metadata: %w", err)
	}
	return writeFileAtomic(path, buf.Bytes())
}

// ReadVersionFile reads a previously written version.json. Missing keys are
// left empty.
func ReadVersionFile(path string) (Metadata, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return Metadata{}, fmt.Errorf("read version file: %w", err)
	}
	v, err := fastjson.ParseBytes(content)
	if err != nil {
		return Metadata{}, fmt.Errorf("parse version file: %w", err)
	}
	return Metadata{
		Version:      string(v.GetStringBytes("version")),
		ReleaseDate:  string(v.GetStringBytes("release_date")),
		ReleaseNotes: string(v.GetStringBytes("release_notes")),
	}, nil
}

func writeFileAtomic(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("ensure directory: %w", err)
	}
	tmpPath := fmt.Sprintf("%s.%d.tmp", path, time.Now().UnixNano())
	if err := os.WriteFile(tmpPath, data, 0o644); err != nil {
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("replace %s: %w", path, err)
	}
	return nil
}
