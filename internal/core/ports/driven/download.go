package driven

import (
	"context"
	"io"
)

// ProgressFunc receives download progress. total is -1 when unknown.
type ProgressFunc func(written, total int64)

// Downloader fetches remote archives.
type Downloader interface {
	// Download streams url into w and returns the number of bytes written.
	// Any status other than 200 is an error wrapping domain.ErrDownloadFailed.
	// progress may be nil.
	Download(ctx context.Context, url string, w io.Writer, progress ProgressFunc) (int64, error)
}

// Extractor unpacks archives.
type Extractor interface {
	// Extract unpacks archivePath into destDir, dropping the first strip
	// path components of every entry, and returns the number of files written.
	// Entries that would land outside destDir are rejected with
	// domain.ErrArchiveInvalid.
	Extract(ctx context.Context, archivePath, destDir string, strip int) (int, error)
}
