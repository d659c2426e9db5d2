package watcher

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWatch_DebouncesWrites(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "topology.json")
	require.NoError(t, os.WriteFile(path, []byte("{}"), 0o644))

	changed := make(chan string, 10)
	w := New(path, func(p string) { changed <- p }, nil).WithDebounce(50 * time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Watch(ctx) }()

	// Give the watcher time to register the directory.
	time.Sleep(100 * time.Millisecond)

	for i := 0; i < 3; i++ {
		require.NoError(t, os.WriteFile(path, []byte(`{"version":1}`), 0o644))
	}
	require.NoError(t, os.WriteFile(filepath.Join(dir, "other.json"), []byte("{}"), 0o644))

	select {
	case p := <-changed:
		assert.Equal(t, path, p)
	case <-time.After(3 * time.Second):
		t.Fatal("expected a change notification")
	}

	select {
	case <-changed:
		t.Fatal("burst of writes should produce one notification")
	case <-time.After(200 * time.Millisecond):
	}

	cancel()
	assert.ErrorIs(t, <-done, context.Canceled)
}

func TestWatch_MissingDirectory(t *testing.T) {
	w := New(filepath.Join(t.TempDir(), "missing", "topology.json"), func(string) {}, nil)
	assert.Error(t, w.Watch(context.Background()))
}
