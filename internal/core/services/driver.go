package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/Byrix/bom-scrapper/internal/core/domain"
	"github.com/Byrix/bom-scrapper/internal/core/ports/driven"
	"github.com/Byrix/bom-scrapper/internal/core/ports/driving"
	"github.com/Byrix/bom-scrapper/internal/logger"
)

// archiveStrip drops the single top-level folder Chrome for Testing
// archives carry, e.g. chromedriver-win64/.
const archiveStrip = 1

// DriverInstaller downloads and unpacks the fixed-version driver archives.
type DriverInstaller struct {
	downloader driven.Downloader
	extractor  driven.Extractor
	artifacts  []domain.DriverArtifact
}

// NewDriverInstaller creates a driver installer for the given artifacts.
func NewDriverInstaller(
	downloader driven.Downloader,
	extractor driven.Extractor,
	artifacts []domain.DriverArtifact,
) *DriverInstaller {
	return &DriverInstaller{
		downloader: downloader,
		extractor:  extractor,
		artifacts:  artifacts,
	}
}

// Artifacts returns the configured artifacts.
func (i *DriverInstaller) Artifacts() []domain.DriverArtifact {
	return i.artifacts
}

// Inspect reports which components are present without downloading.
func (i *DriverInstaller) Inspect() []domain.DriverInstall {
	out := make([]domain.DriverInstall, 0, len(i.artifacts))
	for _, a := range i.artifacts {
		ok, _ := populated(a.TargetDir())
		out = append(out, domain.DriverInstall{
			Component: a.Component,
			Version:   a.Version,
			Path:      a.TargetDir(),
			Binary:    a.BinaryPath(),
			Installed: ok,
		})
	}
	return out
}

// Ensure installs every component whose target directory is empty or
// missing. With force, present components are replaced.
func (i *DriverInstaller) Ensure(
	ctx context.Context,
	force bool,
	progress driving.ProgressFunc,
) ([]domain.DriverInstall, error) {
	if i.downloader == nil || i.extractor == nil {
		return nil, errors.New("driver installer not configured")
	}

	out := make([]domain.DriverInstall, 0, len(i.artifacts))
	for _, a := range i.artifacts {
		if err := ctx.Err(); err != nil {
			return out, err
		}

		ok, err := populated(a.TargetDir())
		if err != nil {
			return out, fmt.Errorf("inspect %s: %w", a.TargetDir(), err)
		}
		if ok && !force {
			logger.Debug("%s already present in %s", a.Component, a.TargetDir())
			out = append(out, domain.DriverInstall{
				Component: a.Component,
				Version:   a.Version,
				Path:      a.TargetDir(),
				Binary:    a.BinaryPath(),
				Installed: true,
				Skipped:   true,
			})
			continue
		}

		inst, err := i.install(ctx, a, progress)
		if err != nil {
			return out, fmt.Errorf("install %s: %w", a.Component, err)
		}
		out = append(out, inst)
	}
	return out, nil
}

// Remove deletes every component directory, and the shared root once empty.
func (i *DriverInstaller) Remove() error {
	roots := make(map[string]struct{})
	for _, a := range i.artifacts {
		if err := os.RemoveAll(a.TargetDir()); err != nil {
			return fmt.Errorf("remove %s: %w", a.TargetDir(), err)
		}
		roots[a.Root] = struct{}{}
	}
	for root := range roots {
		// Leave the root alone if the user keeps other files there.
		ok, err := populated(root)
		if err != nil || ok {
			continue
		}
		if err := os.Remove(root); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("remove %s: %w", root, err)
		}
	}
	return nil
}

func (i *DriverInstaller) install(
	ctx context.Context,
	a domain.DriverArtifact,
	progress driving.ProgressFunc,
) (domain.DriverInstall, error) {
	if err := os.MkdirAll(a.Root, 0o755); err != nil {
		return domain.DriverInstall{}, err
	}

	tmp, err := os.CreateTemp(a.Root, a.ArchiveName()+".*.part")
	if err != nil {
		return domain.DriverInstall{}, err
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	logger.Info("Downloading %s", a.URL())

	var report driven.ProgressFunc
	if progress != nil {
		report = func(written, total int64) { progress(a.Component, written, total) }
	}

	n, err := i.downloader.Download(ctx, a.URL(), tmp, report)
	if cerr := tmp.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return domain.DriverInstall{}, err
	}

	target := a.TargetDir()
	if err := os.RemoveAll(target); err != nil {
		return domain.DriverInstall{}, err
	}

	files, err := i.extractor.Extract(ctx, tmpPath, target, archiveStrip)
	if err != nil {
		_ = os.RemoveAll(target)
		return domain.DriverInstall{}, err
	}

	if !strings.HasPrefix(a.Platform, "win") {
		if err := os.Chmod(a.BinaryPath(), 0o755); err != nil && !os.IsNotExist(err) {
			return domain.DriverInstall{}, err
		}
	}

	logger.Info("Unpacked %d files from %s into %s", files, a.ArchiveName(), target)

	return domain.DriverInstall{
		Component: a.Component,
		Version:   a.Version,
		Path:      target,
		Binary:    a.BinaryPath(),
		Installed: true,
		Bytes:     n,
		Files:     files,
	}, nil
}

// populated reports whether dir exists and holds at least one entry.
func populated(dir string) (bool, error) {
	f, err := os.Open(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return false, err
	}
	if !info.IsDir() {
		return false, fmt.Errorf("%w: %s is not a directory", domain.ErrInvalidInput, dir)
	}

	names, err := f.Readdirnames(1)
	if err != nil && !errors.Is(err, io.EOF) {
		return false, err
	}
	return len(names) > 0, nil
}
