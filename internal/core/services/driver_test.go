package services

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Byrix/bom-scrapper/internal/adapters/driven/archive"
	"github.com/Byrix/bom-scrapper/internal/core/domain"
	"github.com/Byrix/bom-scrapper/internal/core/ports/driven"
)

// fakeDownloader serves prepared archive bodies keyed by URL.
type fakeDownloader struct {
	mu     sync.Mutex
	bodies map[string][]byte
	err    error
	calls  []string
}

func (d *fakeDownloader) Download(_ context.Context, url string, w io.Writer, progress driven.ProgressFunc) (int64, error) {
	d.mu.Lock()
	d.calls = append(d.calls, url)
	d.mu.Unlock()

	if d.err != nil {
		return 0, d.err
	}
	body, ok := d.bodies[url]
	if !ok {
		return 0, errors.Join(domain.ErrDownloadFailed, errors.New("404 Not Found"))
	}
	if progress != nil {
		progress(0, int64(len(body)))
	}
	n, err := w.Write(body)
	if progress != nil {
		progress(int64(n), int64(len(body)))
	}
	return int64(n), err
}

func (d *fakeDownloader) callCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.calls)
}

// buildZip returns a Chrome for Testing style archive with one top folder.
func buildZip(t *testing.T, top string, files map[string]string) []byte {
	t.Helper()

	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	for name, body := range files {
		fw, err := w.Create(top + "/" + name)
		require.NoError(t, err)
		_, err = fw.Write([]byte(body))
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
	return buf.Bytes()
}

// driverFixture serves both default components for settings.
func driverFixture(t *testing.T, settings domain.Settings) *fakeDownloader {
	t.Helper()

	bodies := make(map[string][]byte)
	for _, a := range settings.Artifacts() {
		top := string(a.Component) + "-" + a.Platform
		bin := filepath.Base(a.BinaryPath())
		bodies[a.URL()] = buildZip(t, top, map[string]string{
			bin:       "binary",
			"LICENSE": "license",
		})
	}
	return &fakeDownloader{bodies: bodies}
}

func testSettings(t *testing.T) domain.Settings {
	t.Helper()
	s := domain.DefaultSettings()
	s.ProjectDir = t.TempDir()
	return s
}

func TestDriverInstaller_Ensure_InstallsEveryComponent(t *testing.T) {
	settings := testSettings(t)
	dl := driverFixture(t, settings)
	inst := NewDriverInstaller(dl, archive.NewZipExtractor(), settings.Artifacts())

	var progressed []domain.DriverComponent
	installs, err := inst.Ensure(context.Background(), false, func(c domain.DriverComponent, written, total int64) {
		if written == total {
			progressed = append(progressed, c)
		}
	})
	require.NoError(t, err)
	require.Len(t, installs, 2)

	for _, in := range installs {
		assert.True(t, in.Installed)
		assert.False(t, in.Skipped)
		assert.Equal(t, 2, in.Files)
		assert.Positive(t, in.Bytes)
		assert.FileExists(t, in.Binary)
		assert.Equal(t, domain.DefaultDriverVersion, in.Version)
	}
	assert.FileExists(t, filepath.Join(settings.ProjectDir, "selenium", "chromedriver", "chromedriver.exe"))
	assert.FileExists(t, filepath.Join(settings.ProjectDir, "selenium", "chrome", "chrome.exe"))
	assert.Equal(t, []domain.DriverComponent{domain.ComponentChromeDriver, domain.ComponentChrome}, progressed)

	// Temp archives are cleaned up.
	entries, err := os.ReadDir(filepath.Join(settings.ProjectDir, "selenium"))
	require.NoError(t, err)
	assert.Len(t, entries, 2)
}

func TestDriverInstaller_Ensure_SkipsPopulated(t *testing.T) {
	settings := testSettings(t)
	dl := driverFixture(t, settings)
	inst := NewDriverInstaller(dl, archive.NewZipExtractor(), settings.Artifacts())

	_, err := inst.Ensure(context.Background(), false, nil)
	require.NoError(t, err)
	require.Equal(t, 2, dl.callCount())

	installs, err := inst.Ensure(context.Background(), false, nil)
	require.NoError(t, err)
	assert.Equal(t, 2, dl.callCount(), "no download when already populated")
	for _, in := range installs {
		assert.True(t, in.Skipped)
		assert.True(t, in.Installed)
	}
}

func TestDriverInstaller_Ensure_Force(t *testing.T) {
	settings := testSettings(t)
	dl := driverFixture(t, settings)
	inst := NewDriverInstaller(dl, archive.NewZipExtractor(), settings.Artifacts())

	_, err := inst.Ensure(context.Background(), false, nil)
	require.NoError(t, err)

	stale := filepath.Join(settings.ProjectDir, "selenium", "chromedriver", "stale.txt")
	require.NoError(t, os.WriteFile(stale, []byte("old"), 0o644))

	installs, err := inst.Ensure(context.Background(), true, nil)
	require.NoError(t, err)
	assert.Equal(t, 4, dl.callCount())
	assert.False(t, installs[0].Skipped)
	assert.NoFileExists(t, stale, "forced install replaces the directory")
}

func TestDriverInstaller_Ensure_DownloadFailure(t *testing.T) {
	settings := testSettings(t)
	dl := &fakeDownloader{err: domain.ErrDownloadFailed}
	inst := NewDriverInstaller(dl, archive.NewZipExtractor(), settings.Artifacts())

	_, err := inst.Ensure(context.Background(), false, nil)

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrDownloadFailed)
	assert.Equal(t, 1, dl.callCount(), "first failure aborts")
	assert.NoDirExists(t, filepath.Join(settings.ProjectDir, "selenium", "chromedriver"))
}

func TestDriverInstaller_Ensure_CorruptArchive(t *testing.T) {
	settings := testSettings(t)
	a := settings.Artifacts()[0]
	dl := &fakeDownloader{bodies: map[string][]byte{a.URL(): []byte("<Error>NoSuchKey</Error>")}}
	inst := NewDriverInstaller(dl, archive.NewZipExtractor(), settings.Artifacts()[:1])

	_, err := inst.Ensure(context.Background(), false, nil)

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrArchiveInvalid)
	assert.NoDirExists(t, a.TargetDir(), "partial target is removed")

	entries, err := os.ReadDir(a.Root)
	require.NoError(t, err)
	assert.Empty(t, entries, "temp archive is removed")
}

func TestDriverInstaller_Ensure_Cancelled(t *testing.T) {
	settings := testSettings(t)
	dl := driverFixture(t, settings)
	inst := NewDriverInstaller(dl, archive.NewZipExtractor(), settings.Artifacts())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := inst.Ensure(ctx, false, nil)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, dl.callCount())
}

func TestDriverInstaller_Ensure_NotConfigured(t *testing.T) {
	inst := NewDriverInstaller(nil, nil, nil)
	_, err := inst.Ensure(context.Background(), false, nil)
	assert.Error(t, err)
}

func TestDriverInstaller_Ensure_UnixExecutable(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("no executable bit on windows")
	}

	settings := testSettings(t)
	settings.Driver.Platform = domain.PlatformLinux64
	settings.Driver.Components = []domain.DriverComponent{domain.ComponentChromeDriver}
	dl := driverFixture(t, settings)
	inst := NewDriverInstaller(dl, archive.NewZipExtractor(), settings.Artifacts())

	installs, err := inst.Ensure(context.Background(), false, nil)
	require.NoError(t, err)

	info, err := os.Stat(installs[0].Binary)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o755), info.Mode().Perm())
}

func TestDriverInstaller_Inspect(t *testing.T) {
	settings := testSettings(t)
	dl := driverFixture(t, settings)
	inst := NewDriverInstaller(dl, archive.NewZipExtractor(), settings.Artifacts())

	for _, in := range inst.Inspect() {
		assert.False(t, in.Installed)
	}

	_, err := inst.Ensure(context.Background(), false, nil)
	require.NoError(t, err)

	for _, in := range inst.Inspect() {
		assert.True(t, in.Installed)
		assert.NotEmpty(t, in.Binary)
	}
	assert.Equal(t, 2, dl.callCount(), "inspect never downloads")
}

func TestDriverInstaller_Remove(t *testing.T) {
	settings := testSettings(t)
	dl := driverFixture(t, settings)
	inst := NewDriverInstaller(dl, archive.NewZipExtractor(), settings.Artifacts())
	root := filepath.Join(settings.ProjectDir, "selenium")

	_, err := inst.Ensure(context.Background(), false, nil)
	require.NoError(t, err)

	require.NoError(t, inst.Remove())
	assert.NoDirExists(t, root)

	// A root holding unrelated files is kept.
	_, err = inst.Ensure(context.Background(), false, nil)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(root, "notes.txt"), nil, 0o644))

	require.NoError(t, inst.Remove())
	assert.DirExists(t, root)
	assert.NoDirExists(t, filepath.Join(root, "chromedriver"))
}

func TestPopulated(t *testing.T) {
	dir := t.TempDir()

	ok, err := populated(filepath.Join(dir, "missing"))
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = populated(dir)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "f"), nil, 0o644))
	ok, err = populated(dir)
	require.NoError(t, err)
	assert.True(t, ok)

	_, err = populated(filepath.Join(dir, "f"))
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}
