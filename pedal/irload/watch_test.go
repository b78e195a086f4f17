package irload

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestWatchReportsWrites(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "cab.wav")
	require.NoError(t, os.WriteFile(path, []byte("v1"), 0o600))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	changed := make(chan struct{}, 8)
	done := make(chan error, 1)

	go func() {
		done <- Watch(ctx, path, func() { changed <- struct{}{} }, WithDebounce(20*time.Millisecond))
	}()

	// The watcher needs a moment to register before the write lands.
	deadline := time.After(5 * time.Second)

	for {
		require.NoError(t, os.WriteFile(path, []byte("v2"), 0o600))

		select {
		case <-changed:
			cancel()
			require.NoError(t, <-done)

			return
		case <-time.After(100 * time.Millisecond):
		case <-deadline:
			t.Fatal("no change notification")
		}
	}
}

func TestWatchIgnoresOtherFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "cab.wav")
	require.NoError(t, os.WriteFile(path, []byte("v1"), 0o600))

	ctx, cancel := context.WithTimeout(context.Background(), 400*time.Millisecond)
	defer cancel()

	changed := make(chan struct{}, 8)
	done := make(chan error, 1)

	go func() {
		done <- Watch(ctx, path, func() { changed <- struct{}{} }, WithDebounce(0))
	}()

	time.Sleep(100 * time.Millisecond)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "other.wav"), []byte("x"), 0o600))

	require.NoError(t, <-done)
	require.Empty(t, changed)
}

func TestWatchMissingDirectory(t *testing.T) {
	err := Watch(context.Background(), "/nonexistent/dir/cab.wav", func() {})
	require.Error(t, err)
}
