package domain

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Chrome for Testing defaults. The version is pinned so the driver always
// matches the bundled browser.
const (
	DefaultDriverVersion  = "131.0.6778.85"
	DefaultDriverBaseURL  = "https://storage.googleapis.com/chrome-for-testing-public"
	DefaultDriverPlatform = PlatformWin64
	DefaultDriverDir      = "selenium"
)

// Chrome for Testing platform identifiers.
const (
	PlatformAuto     = "auto"
	PlatformWin64    = "win64"
	PlatformWin32    = "win32"
	PlatformLinux64  = "linux64"
	PlatformMacX64   = "mac-x64"
	PlatformMacArm64 = "mac-arm64"
)

// DriverComponent is one downloadable Chrome for Testing archive.
type DriverComponent string

// Known components.
const (
	// ComponentChromeDriver is the WebDriver server.
	ComponentChromeDriver DriverComponent = "chromedriver"

	// ComponentChrome is the matching browser build.
	ComponentChrome DriverComponent = "chrome"
)

// IsValid returns true if the component is recognised.
func (c DriverComponent) IsValid() bool {
	return c == ComponentChromeDriver || c == ComponentChrome
}

// String returns the string representation.
func (c DriverComponent) String() string {
	return string(c)
}

// PlatformFor maps a GOOS/GOARCH pair to a Chrome for Testing platform.
func PlatformFor(goos, goarch string) (string, error) {
	switch goos {
	case "windows":
		if goarch == "386" {
			return PlatformWin32, nil
		}
		return PlatformWin64, nil
	case "linux":
		if goarch == "amd64" {
			return PlatformLinux64, nil
		}
	case "darwin":
		if goarch == "arm64" {
			return PlatformMacArm64, nil
		}
		return PlatformMacX64, nil
	}
	return "", fmt.Errorf("%w: no chrome for testing build for %s/%s", ErrUnsupportedType, goos, goarch)
}

// IsValidPlatform returns true for a concrete Chrome for Testing platform.
func IsValidPlatform(p string) bool {
	switch p {
	case PlatformWin64, PlatformWin32, PlatformLinux64, PlatformMacX64, PlatformMacArm64:
		return true
	default:
		return false
	}
}

// DriverArtifact identifies one archive and where it is unpacked.
type DriverArtifact struct {
	Component DriverComponent
	Version   string
	Platform  string
	BaseURL   string

	// Root is the directory holding every component, e.g. ./selenium.
	Root string
}

// ArchiveName returns the archive file name, e.g. chromedriver-win64.zip.
func (a DriverArtifact) ArchiveName() string {
	return fmt.Sprintf("%s-%s.zip", a.Component, a.Platform)
}

// URL returns the fixed download location of the archive.
func (a DriverArtifact) URL() string {
	base := strings.TrimRight(a.BaseURL, "/")
	return fmt.Sprintf("%s/%s/%s/%s", base, a.Version, a.Platform, a.ArchiveName())
}

// TargetDir returns the directory the archive is unpacked into.
func (a DriverArtifact) TargetDir() string {
	return filepath.Join(a.Root, string(a.Component))
}

// BinaryPath returns the executable inside TargetDir.
func (a DriverArtifact) BinaryPath() string {
	windows := strings.HasPrefix(a.Platform, "win")
	mac := strings.HasPrefix(a.Platform, "mac")

	switch a.Component {
	case ComponentChrome:
		switch {
		case windows:
			return filepath.Join(a.TargetDir(), "chrome.exe")
		case mac:
			return filepath.Join(a.TargetDir(), "Google Chrome for Testing.app",
				"Contents", "MacOS", "Google Chrome for Testing")
		default:
			return filepath.Join(a.TargetDir(), "chrome")
		}
	default:
		if windows {
			return filepath.Join(a.TargetDir(), "chromedriver.exe")
		}
		return filepath.Join(a.TargetDir(), "chromedriver")
	}
}

// DriverInstall reports the state of one component after the driver step.
type DriverInstall struct {
	Component DriverComponent `json:"component"`
	Version   string          `json:"version"`
	Path      string          `json:"path"`
	Binary    string          `json:"binary"`
	Installed bool            `json:"installed"`
	Skipped   bool            `json:"skipped"`
	Bytes     int64           `json:"bytes"`
	Files     int             `json:"files"`
}
