package release

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// Published names inside the release directory.
const (
	ReleaseFirmwareName = "firmware.bin"
	ReleaseVersionName  = "version.json"
)

// ErrSameFile is returned by CopyFile when source and destination are the
// same file.
var ErrSameFile = errors.New("source and destination are the same file")

// Staged lists the files copied into a release directory.
type Staged struct {
	Dir      string
	Firmware string
	Version  string
}

// StageRelease copies the firmware binary and version file into dir under
// their published names, creating dir if needed.
func StageRelease(firmwarePath, versionPath, dir string) (Staged, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return Staged{}, fmt.Errorf("create release directory: %w", err)
	}
	staged := Staged{
		Dir:      dir,
		Firmware: filepath.Join(dir, ReleaseFirmwareName),
		Version:  filepath.Join(dir, ReleaseVersionName),
	}
	if err := CopyFile(firmwarePath, staged.Firmware); err != nil {
		return Staged{}, err
	}
	if err := CopyFile(versionPath, staged.Version); err != nil {
		return Staged{}, err
	}
	return staged, nil
}

// CopyFile copies src to dst, keeping the permission bits and modification
// time of src.
func CopyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("open %s: %w", src, err)
	}
	defer in.Close()

	info, err := in.Stat()
	if err != nil {
		return fmt.Errorf("stat %s: %w", src, err)
	}
	if dstInfo, err := os.Stat(dst); err == nil && os.SameFile(info, dstInfo) {
		return fmt.Errorf("copy %s to %s: %w", src, dst, ErrSameFile)
	}

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, info.Mode().Perm())
	if err != nil {
		return fmt.Errorf("create %s: %w", dst, err)
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return fmt.Errorf("copy %s to %s: %w", src, dst, err)
	}
	if err := out.Close(); err != nil {
		return fmt.Errorf("close %s: %w", dst, err)
	}
	return os.Chtimes(dst, info.ModTime(), info.ModTime())
}

// FormatSize renders a byte count as "12.3 KB" style text.
func FormatSize(n int64) string {
	size := float64(n)
	for _, unit := range []string{"B", "KB", "MB"} {
		if size < 1024 {
			return fmt.Sprintf("%.1f %s", size, unit)
		}
		size /= 1024
	}
	return fmt.Sprintf("%.1f GB", size)
}

// FileSize returns the human-readable size of the file at path.
func FileSize(path string) (string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return "", err
	}
	return FormatSize(info.Size()), nil
}
