package persona

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

const watchDebounce = 200 * time.Millisecond

// Watch monitors the loader's directories (recursively) and reloads the store
// when .md files are created, modified, renamed or removed. Reload errors are
// logged and the previous registry stays published. Watch blocks until ctx is
// cancelled and then returns ctx.Err().
func (s *Store) Watch(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	var dirs []string
	if s.opts.Loader != nil {
		dirs = s.opts.Loader.Dirs()
	}
	watched := 0
	for _, dir := range dirs {
		watched += addTree(watcher, dir, s.log)
	}

	if watched == 0 {
		s.log.Debug("no persona directories to watch")
		<-ctx.Done()
		return ctx.Err()
	}

	var (
		debounceTimer *time.Timer
		mu            sync.Mutex
		pending       bool
		wg            sync.WaitGroup
	)
	defer func() {
		mu.Lock()
		if debounceTimer != nil && debounceTimer.Stop() {
			wg.Done()
		}
		mu.Unlock()
		wg.Wait()
	}()

	doReload := func() {
		defer wg.Done()
		mu.Lock()
		pending = false
		mu.Unlock()
		if ctx.Err() != nil {
			return
		}
		if err := s.Reload(); err != nil {
			s.log.Warn("persona reload failed", zap.Error(err))
		}
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Has(fsnotify.Create) {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					addTree(watcher, event.Name, s.log)
					continue
				}
			}
			if !strings.HasSuffix(event.Name, ".md") {
				continue
			}
			if event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}

			// A timer that already fired has a reload queued behind mu, which
			// will observe this change too.
			mu.Lock()
			if !pending {
				pending = true
				wg.Add(1)
				debounceTimer = time.AfterFunc(watchDebounce, doReload)
			} else if debounceTimer.Stop() {
				debounceTimer.Reset(watchDebounce)
			}
			mu.Unlock()

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			s.log.Warn("persona watcher error", zap.Error(err))
		}
	}
}

// addTree adds dir and every subdirectory to the watcher and returns how
// many directories were added. Missing directories are ignored.
func addTree(w *fsnotify.Watcher, dir string, log *zap.Logger) int {
	added := 0
	_ = filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil || !d.IsDir() {
			return nil
		}
		if err := w.Add(path); err != nil {
			log.Debug("cannot watch directory", zap.String("dir", path), zap.Error(err))
			return nil
		}
		added++
		return nil
	})
	return added
}
