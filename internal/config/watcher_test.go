package config

import (
	"context"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestWatcherFiresOnContentChange(t *testing.T) {
	orig := debounceInterval
	debounceInterval = 10 * time.Millisecond
	t.Cleanup(func() { debounceInterval = orig })

	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("version: 1\n"), 0o644))

	w, err := NewWatcher()
	require.NoError(t, err)
	var fired atomic.Int32
	require.NoError(t, w.Watch(path, func() { fired.Add(1) }))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	w.Start(ctx)
	defer w.Stop()

	require.NoError(t, os.WriteFile(path, []byte("version: 2\n"), 0o644))

	require.Eventually(t, func() bool { return fired.Load() == 1 }, 2*time.Second, 20*time.Millisecond)
}

func TestWatcherSkipsReloadWhenContentUnchanged(t *testing.T) {
	orig := debounceInterval
	debounceInterval = 10 * time.Millisecond
	t.Cleanup(func() { debounceInterval = orig })

	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("version: 1\n"), 0o644))

	w, err := NewWatcher()
	require.NoError(t, err)
	var fired atomic.Int32
	require.NoError(t, w.Watch(path, func() { fired.Add(1) }))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	w.Start(ctx)
	defer w.Stop()

	// Rewrite identical content: touches mtime, but the hash doesn't change.
	require.NoError(t, os.WriteFile(path, []byte("version: 1\n"), 0o644))
	time.Sleep(200 * time.Millisecond)

	require.Equal(t, int32(0), fired.Load())
}
