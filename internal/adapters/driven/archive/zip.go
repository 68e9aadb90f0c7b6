// Package archive provides an Extractor for zip driver archives.
package archive

import (
	"archive/zip"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/Byrix/bom-scrapper/internal/core/domain"
	"github.com/Byrix/bom-scrapper/internal/core/ports/driven"
)

// Ensure ZipExtractor implements the interface.
var _ driven.Extractor = (*ZipExtractor)(nil)

// ZipExtractor unpacks zip archives.
type ZipExtractor struct{}

// NewZipExtractor creates a new zip extractor.
func NewZipExtractor() *ZipExtractor {
	return &ZipExtractor{}
}

// Extract unpacks archivePath into destDir.
func (e *ZipExtractor) Extract(ctx context.Context, archivePath, destDir string, strip int) (int, error) {
	r, err := zip.OpenReader(archivePath)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", domain.ErrArchiveInvalid, err)
	}
	defer r.Close()

	dest, err := filepath.Abs(destDir)
	if err != nil {
		return 0, err
	}
	if err := os.MkdirAll(dest, 0o755); err != nil {
		return 0, err
	}

	files := 0
	for _, f := range r.File {
		if err := ctx.Err(); err != nil {
			return files, err
		}

		if unsafeName(f.Name) {
			return files, fmt.Errorf("%w: entry %q escapes %s", domain.ErrArchiveInvalid, f.Name, destDir)
		}

		rel, ok := stripComponents(f.Name, strip)
		if !ok {
			continue
		}

		target := filepath.Join(dest, filepath.FromSlash(rel))
		if !within(dest, target) {
			return files, fmt.Errorf("%w: entry %q escapes %s", domain.ErrArchiveInvalid, f.Name, destDir)
		}

		isLink := f.Mode()&os.ModeSymlink != 0
		linked, err := viaSymlink(dest, target, !isLink)
		if err != nil {
			return files, err
		}
		if linked {
			return files, fmt.Errorf("%w: entry %q goes through an extracted link", domain.ErrArchiveInvalid, f.Name)
		}

		if f.FileInfo().IsDir() {
			if err := os.MkdirAll(target, 0o755); err != nil {
				return files, err
			}
			continue
		}

		if isLink {
			if err := writeSymlink(f, dest, target); err != nil {
				return files, err
			}
			files++
			continue
		}

		if err := writeFile(f, target); err != nil {
			return files, err
		}
		files++
	}

	return files, nil
}

// unsafeName reports whether an entry name is absolute or climbs with "..".
func unsafeName(name string) bool {
	name = strings.ReplaceAll(name, `\`, "/")
	if strings.HasPrefix(name, "/") || filepath.VolumeName(name) != "" {
		return true
	}
	for _, part := range strings.Split(name, "/") {
		if part == ".." {
			return true
		}
	}
	return false
}

// stripComponents drops the first n slash-separated components of name.
// ok is false when nothing is left.
func stripComponents(name string, n int) (string, bool) {
	name = strings.TrimPrefix(path.Clean("/"+strings.ReplaceAll(name, `\`, "/")), "/")
	if name == "" || name == "." {
		return "", false
	}
	parts := strings.Split(name, "/")
	if n >= len(parts) {
		return "", false
	}
	return strings.Join(parts[n:], "/"), true
}

// within reports whether target is dest or lies below it.
func within(dest, target string) bool {
	rel, err := filepath.Rel(dest, target)
	if err != nil {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)) && !filepath.IsAbs(rel)
}

// viaSymlink reports whether an existing element of target's path below
// dest is a symlink. The last element is checked only when self is set.
// Links are checked lexically when written, so nothing may be created
// through one.
func viaSymlink(dest, target string, self bool) (bool, error) {
	rel, err := filepath.Rel(dest, target)
	if err != nil || rel == "." {
		return false, err
	}

	parts := strings.Split(rel, string(filepath.Separator))
	if !self {
		parts = parts[:len(parts)-1]
	}

	cur := dest
	for _, part := range parts {
		cur = filepath.Join(cur, part)
		fi, err := os.Lstat(cur)
		if errors.Is(err, fs.ErrNotExist) {
			return false, nil
		}
		if err != nil {
			return false, err
		}
		if fi.Mode()&os.ModeSymlink != 0 {
			return true, nil
		}
	}
	return false, nil
}

func writeFile(f *zip.File, target string) error {
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return err
	}

	src, err := f.Open()
	if err != nil {
		return fmt.Errorf("%w: %s: %v", domain.ErrArchiveInvalid, f.Name, err)
	}
	defer src.Close()

	mode := f.Mode().Perm()
	if mode == 0 {
		mode = 0o644
	}

	dst, err := os.OpenFile(target, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, mode)
	if err != nil {
		return err
	}

	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		return fmt.Errorf("%w: %s: %v", domain.ErrArchiveInvalid, f.Name, err)
	}
	return dst.Close()
}

// writeSymlink recreates a link whose target stays inside dest. macOS
// browser bundles rely on framework symlinks.
func writeSymlink(f *zip.File, dest, target string) error {
	src, err := f.Open()
	if err != nil {
		return fmt.Errorf("%w: %s: %v", domain.ErrArchiveInvalid, f.Name, err)
	}
	defer src.Close()

	raw, err := io.ReadAll(src)
	if err != nil {
		return fmt.Errorf("%w: %s: %v", domain.ErrArchiveInvalid, f.Name, err)
	}
	link := filepath.FromSlash(string(raw))

	resolved := link
	if !filepath.IsAbs(resolved) {
		resolved = filepath.Join(filepath.Dir(target), link)
	}
	if !within(dest, resolved) {
		return fmt.Errorf("%w: link %q escapes %s", domain.ErrArchiveInvalid, f.Name, dest)
	}

	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return err
	}
	_ = os.Remove(target)
	return os.Symlink(link, target)
}
