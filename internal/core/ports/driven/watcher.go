package driven

import "context"

// FileWatcher reports changes to files.
type FileWatcher interface {
	// Watch emits the path of a file each time it is written, created or
	// replaced. Both channels close when ctx is cancelled.
	Watch(ctx context.Context, paths ...string) (<-chan string, <-chan error, error)
}
