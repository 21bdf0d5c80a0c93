// Package archive verifies and extracts downloaded ZIP archives.
package archive

import (
	"archive/zip"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// Entry describes one file inside an archive.
type Entry struct {
	Name string
	Size uint64
}

// InvalidArchiveError reports an unreadable or corrupted ZIP. Header
// holds a hex dump of the file's first bytes, which usually makes an
// HTML error page downloaded in place of a ZIP obvious at a glance.
type InvalidArchiveError struct {
	Path   string
	Header string
	Cause  error
}

func (e *InvalidArchiveError) Error() string {
	return fmt.Sprintf("archive: %s is not a valid ZIP (header: %s): %v", e.Path, e.Header, e.Cause)
}

func (e *InvalidArchiveError) Unwrap() error {
	return e.Cause
}

// Inspect opens the archive, reads every entry to verify it
// decompresses cleanly, and returns the entry listing.
func Inspect(path string) ([]Entry, error) {
	r, err := zip.OpenReader(path)
	if err != nil {
		return nil, invalidArchive(path, err)
	}
	defer r.Close()

	entries := make([]Entry, 0, len(r.File))
	for _, f := range r.File {
		rc, err := f.Open()
		if err != nil {
			return nil, invalidArchive(path, fmt.Errorf("entry %s: %w", f.Name, err))
		}
		if _, err := io.Copy(io.Discard, rc); err != nil {
			rc.Close()
			return nil, invalidArchive(path, fmt.Errorf("entry %s: %w", f.Name, err))
		}
		rc.Close()
		entries = append(entries, Entry{Name: f.Name, Size: f.UncompressedSize64})
	}
	return entries, nil
}

// Extract unpacks the archive into dest, creating it if needed.
// Entries whose paths would escape dest are rejected.
func Extract(path, dest string) error {
	r, err := zip.OpenReader(path)
	if err != nil {
		return invalidArchive(path, err)
	}
	defer r.Close()

	if err := os.MkdirAll(dest, 0o755); err != nil {
		return fmt.Errorf("archive: create target dir %s: %w", dest, err)
	}

	for _, f := range r.File {
		target, err := safeJoin(dest, f.Name)
		if err != nil {
			return err
		}
		if f.FileInfo().IsDir() {
			if err := os.MkdirAll(target, 0o755); err != nil {
				return fmt.Errorf("archive: create dir %s: %w", target, err)
			}
			continue
		}
		if err := extractFile(f, target); err != nil {
			return err
		}
	}
	return nil
}

func extractFile(f *zip.File, target string) error {
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return fmt.Errorf("archive: create dir for %s: %w", target, err)
	}
	rc, err := f.Open()
	if err != nil {
		return fmt.Errorf("archive: open entry %s: %w", f.Name, err)
	}
	defer rc.Close()

	out, err := os.OpenFile(target, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, f.Mode().Perm()|0o600)
	if err != nil {
		return fmt.Errorf("archive: create %s: %w", target, err)
	}
	defer out.Close()

	if _, err := io.Copy(out, rc); err != nil {
		return fmt.Errorf("archive: extract %s: %w", f.Name, err)
	}
	return nil
}

// safeJoin joins name under dest and rejects traversal outside it.
func safeJoin(dest, name string) (string, error) {
	target := filepath.Join(dest, filepath.FromSlash(name))
	rel, err := filepath.Rel(dest, target)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("archive: entry %q escapes the target directory", name)
	}
	return target, nil
}

// invalidArchive builds an InvalidArchiveError with a header dump.
func invalidArchive(path string, cause error) error {
	header := ""
	if f, err := os.Open(path); err == nil {
		buf := make([]byte, 32)
		n, _ := io.ReadFull(f, buf)
		f.Close()
		header = hex.EncodeToString(buf[:n])
	}
	return &InvalidArchiveError{Path: path, Header: header, Cause: cause}
}
