package watch

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHandleEvent(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "requirements.txt")
	wanted := map[string]struct{}{target: {}}

	tests := []struct {
		name    string
		event   fsnotify.Event
		changed bool
	}{
		{"write", fsnotify.Event{Name: target, Op: fsnotify.Write}, true},
		{"create", fsnotify.Event{Name: target, Op: fsnotify.Create}, true},
		{"write and chmod", fsnotify.Event{Name: target, Op: fsnotify.Write | fsnotify.Chmod}, true},
		{"chmod only", fsnotify.Event{Name: target, Op: fsnotify.Chmod}, false},
		{"remove", fsnotify.Event{Name: target, Op: fsnotify.Remove}, false},
		{"rename away", fsnotify.Event{Name: target, Op: fsnotify.Rename}, false},
		{"other file", fsnotify.Event{Name: filepath.Join(dir, "notes.txt"), Op: fsnotify.Write}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path, changed := handleEvent(tt.event, wanted)
			assert.Equal(t, tt.changed, changed)
			if tt.changed {
				assert.Equal(t, target, path)
			}
		})
	}
}

func TestWatcher_Watch(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "requirements.txt")
	require.NoError(t, os.WriteFile(target, []byte("selenium\n"), 0o644))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	events, errs, err := NewWatcher().Watch(ctx, target)
	require.NoError(t, err)

	// Unrelated files in the same directory are filtered out.
	require.NoError(t, os.WriteFile(filepath.Join(dir, "other.txt"), []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(target, []byte("selenium\nrequests\n"), 0o644))

	want, err := filepath.Abs(target)
	require.NoError(t, err)

	select {
	case got := <-events:
		assert.Equal(t, want, got)
	case err := <-errs:
		t.Fatalf("unexpected watcher error: %v", err)
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for change event")
	}

	cancel()

	// Both channels close after cancellation.
	deadline := time.After(5 * time.Second)
	for events != nil || errs != nil {
		select {
		case _, ok := <-events:
			if !ok {
				events = nil
			}
		case _, ok := <-errs:
			if !ok {
				errs = nil
			}
		case <-deadline:
			t.Fatal("channels not closed after cancel")
		}
	}
}

func TestWatcher_Watch_NoPaths(t *testing.T) {
	_, _, err := NewWatcher().Watch(context.Background())
	assert.Error(t, err)
}

func TestWatcher_Watch_MissingDirectory(t *testing.T) {
	_, _, err := NewWatcher().Watch(context.Background(), filepath.Join(t.TempDir(), "gone", "requirements.txt"))
	assert.Error(t, err)
}
