// Package watch reports changes to a set of files.
package watch

import (
	"context"
	"path/filepath"
	"sort"
	"time"

	"github.com/arthur-debert/spanruler/pkg/errors"
	"github.com/arthur-debert/spanruler/pkg/logging"
	"github.com/arthur-debert/spanruler/pkg/utils"
	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce groups bursts of events, such as an editor's write and
// rename, into one change.
const DefaultDebounce = 100 * time.Millisecond

// Options configure Files.
type Options struct {
	Debounce time.Duration
}

// Files calls onChange with the changed paths each time the content of
// one of paths changes. It blocks until ctx is done or onChange returns an
// error.
//
// Parent directories are watched instead of the files themselves so a
// file replaced by rename keeps being tracked. Events that leave the
// content unchanged, or the file missing, are not reported.
func Files(ctx context.Context, paths []string, opts Options, onChange func(changed []string) error) error {
	logger := logging.GetLogger("watch")
	if len(paths) == 0 {
		return errors.New(errors.ErrInvalidInput, "no files to watch")
	}
	debounce := opts.Debounce
	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return errors.Wrap(err, errors.ErrInternal, "failed to create file watcher")
	}
	defer func() { _ = watcher.Close() }()

	// tracked maps each file to its last seen checksum.
	tracked := make(map[string]string, len(paths))
	dirs := make(map[string]bool)
	for _, p := range paths {
		abs, err := filepath.Abs(p)
		if err != nil {
			return errors.Wrapf(err, errors.ErrInvalidInput, "invalid path %s", p)
		}
		tracked[abs], _ = utils.FileChecksum(abs)
		dir := filepath.Dir(abs)
		if dirs[dir] {
			continue
		}
		if err := watcher.Add(dir); err != nil {
			return errors.Wrapf(err, errors.ErrInternal, "failed to watch %s", dir).WithDetail("path", dir)
		}
		dirs[dir] = true
	}
	logger.Debug().Int("files", len(tracked)).Int("dirs", len(dirs)).Msg("Watching files")

	pending := make(map[string]bool)
	timer := time.NewTimer(debounce)
	if !timer.Stop() {
		<-timer.C
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			name, err := filepath.Abs(event.Name)
			if err != nil {
				continue
			}
			if _, ok := tracked[name]; !ok {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			logger.Trace().Str("path", name).Str("op", event.Op.String()).Msg("File event")
			pending[name] = true
			timer.Reset(debounce)
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn().Err(err).Msg("File watcher error")
		case <-timer.C:
			var changed []string
			for p := range pending {
				sum, err := utils.FileChecksum(p)
				if err != nil || sum == tracked[p] {
					continue
				}
				tracked[p] = sum
				changed = append(changed, p)
			}
			clear(pending)
			if len(changed) == 0 {
				continue
			}
			sort.Strings(changed)
			if err := onChange(changed); err != nil {
				return err
			}
		}
	}
}
