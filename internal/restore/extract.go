package restore

import (
	"archive/tar"
	"compress/gzip"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
)

// archiveSuffix is the only archive format restores accept.
const archiveSuffix = ".tar.gz"

// maxEntrySize caps a single extracted file at 10 GiB.
const maxEntrySize = 10 << 30

// Extractor unpacks site archives next to the archive file.
type Extractor struct {
	Logger *zap.Logger
}

// Extract unpacks archivePath into a sibling directory named after the
// archive without its suffix and returns that directory. An existing
// target directory fails the extraction unless overwrite is set, in
// which case it is replaced. A failed extraction removes whatever was
// partially unpacked.
func (e *Extractor) Extract(archivePath string, overwrite bool) (string, error) {
	fi, err := os.Stat(archivePath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", fmt.Errorf("archive %s: %w", archivePath, ErrNotFound)
		}
		return "", fmt.Errorf("failed to inspect archive %s: %w", archivePath, err)
	}
	if !fi.Mode().IsRegular() {
		return "", fmt.Errorf("archive %s is not a regular file: %w", archivePath, ErrNotFound)
	}

	base := filepath.Base(archivePath)
	if !strings.HasSuffix(base, archiveSuffix) || base == archiveSuffix {
		return "", fmt.Errorf("archive %s: %w: expected a %s file", archivePath, ErrUnsupportedFormat, archiveSuffix)
	}

	dest := strings.TrimSuffix(archivePath, archiveSuffix)
	if _, err := os.Stat(dest); err == nil {
		if !overwrite {
			return "", fmt.Errorf("directory %s: %w: pass --overwrite to replace it", dest, ErrAlreadyExists)
		}
		if err := os.RemoveAll(dest); err != nil {
			return "", fmt.Errorf("failed to replace %s: %w", dest, err)
		}
	}

	if err := e.unpack(archivePath, dest); err != nil {
		os.RemoveAll(dest)
		return "", fmt.Errorf("archive %s: %w: %v", archivePath, ErrExtractionFailed, err)
	}
	return dest, nil
}

func (e *Extractor) unpack(archivePath, dest string) error {
	f, err := os.Open(archivePath)
	if err != nil {
		return err
	}
	defer f.Close()

	gz, err := gzip.NewReader(f)
	if err != nil {
		return err
	}
	defer gz.Close()

	// The target directory only exists once the archive is readable.
	if err := os.MkdirAll(dest, 0755); err != nil {
		return err
	}

	tr := tar.NewReader(gz)
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}

		target, err := entryTarget(dest, hdr.Name)
		if err != nil {
			return err
		}

		switch hdr.Typeflag {
		case tar.TypeDir:
			if err := os.MkdirAll(target, os.FileMode(hdr.Mode)&0o777); err != nil {
				return err
			}

		case tar.TypeReg:
			if err := extractFile(tr, target, hdr); err != nil {
				return err
			}

		case tar.TypeSymlink:
			if filepath.IsAbs(hdr.Linkname) {
				return fmt.Errorf("symlink %s points outside the archive: %s", hdr.Name, hdr.Linkname)
			}
			if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
				return err
			}
			if err := os.Symlink(hdr.Linkname, target); err != nil {
				return err
			}

		default:
			if e.Logger != nil {
				e.Logger.Debug("skipping archive entry",
					zap.String("name", hdr.Name),
					zap.Uint8("type", hdr.Typeflag))
			}
		}
	}
}

// entryTarget validates an entry name and resolves it under dest.
func entryTarget(dest, name string) (string, error) {
	if filepath.IsAbs(name) {
		return "", fmt.Errorf("archive entry has an absolute path: %s", name)
	}
	cleaned := filepath.Clean(name)
	if cleaned == ".." || strings.HasPrefix(cleaned, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("archive entry escapes the target directory: %s", name)
	}
	return filepath.Join(dest, cleaned), nil
}

func extractFile(r io.Reader, target string, hdr *tar.Header) error {
	if hdr.Size > maxEntrySize {
		return fmt.Errorf("archive entry %s exceeds %d bytes", hdr.Name, int64(maxEntrySize))
	}
	if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
		return err
	}

	out, err := os.OpenFile(target, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, os.FileMode(hdr.Mode)&0o777)
	if err != nil {
		return err
	}
	defer out.Close()

	if _, err := io.Copy(out, io.LimitReader(r, maxEntrySize)); err != nil {
		return err
	}
	return nil
}
