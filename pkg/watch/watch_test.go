// Test Type: Integration Test
// Description: Tests that file changes are reported through the watcher

package watch_test

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/arthur-debert/spanruler/pkg/errors"
	"github.com/arthur-debert/spanruler/pkg/watch"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFiles_ReportsWrites(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "patterns.yaml")
	other := filepath.Join(dir, "other.txt")
	require.NoError(t, os.WriteFile(target, []byte("a"), 0o644))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var mu sync.Mutex
	var got [][]string
	done := make(chan error, 1)
	go func() {
		done <- watch.Files(ctx, []string{target}, watch.Options{Debounce: 20 * time.Millisecond}, func(changed []string) error {
			mu.Lock()
			got = append(got, changed)
			mu.Unlock()
			cancel()
			return nil
		})
	}()

	// Give the watcher time to register before writing.
	time.Sleep(100 * time.Millisecond)
	require.NoError(t, os.WriteFile(other, []byte("ignored"), 0o644))
	require.NoError(t, os.WriteFile(target, []byte("b"), 0o644))

	require.NoError(t, <-done)
	mu.Lock()
	defer mu.Unlock()
	require.NotEmpty(t, got)
	abs, _ := filepath.Abs(target)
	assert.Equal(t, []string{abs}, got[0])
}

func TestFiles_CallbackErrorStops(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "input.txt")
	require.NoError(t, os.WriteFile(target, []byte("a"), 0o644))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	done := make(chan error, 1)
	go func() {
		done <- watch.Files(ctx, []string{target}, watch.Options{Debounce: 10 * time.Millisecond}, func([]string) error {
			return errors.New(errors.ErrInternal, "stop")
		})
	}()

	time.Sleep(100 * time.Millisecond)
	require.NoError(t, os.WriteFile(target, []byte("b"), 0o644))

	err := <-done
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrInternal))
}

func TestFiles_NoPaths(t *testing.T) {
	err := watch.Files(context.Background(), nil, watch.Options{}, func([]string) error { return nil })
	assert.True(t, errors.IsErrorCode(err, errors.ErrInvalidInput))
}

func TestFiles_SkipsUnchangedContent(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "patterns.yaml")
	require.NoError(t, os.WriteFile(target, []byte("same"), 0o644))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var seen []string
	done := make(chan error, 1)
	go func() {
		done <- watch.Files(ctx, []string{target}, watch.Options{Debounce: 20 * time.Millisecond}, func(changed []string) error {
			data, err := os.ReadFile(changed[0])
			if err != nil {
				return err
			}
			seen = append(seen, string(data))
			cancel()
			return nil
		})
	}()

	time.Sleep(100 * time.Millisecond)
	require.NoError(t, os.WriteFile(target, []byte("same"), 0o644))
	time.Sleep(150 * time.Millisecond)
	require.NoError(t, os.WriteFile(target, []byte("changed"), 0o644))

	require.NoError(t, <-done)
	assert.Equal(t, []string{"changed"}, seen)
}
