package driver

import (
	"context"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

// Watch compiles a file again whenever it is written or recreated, and hands
// every outcome to report. It returns when ctx is done or the watcher fails.
func (c *Compiler) Watch(ctx context.Context, paths []string, report func(*Result, error)) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	// Editors often replace files, so watch the directories and filter.
	watched := make(map[string]string)
	dirs := make(map[string]bool)
	for _, path := range paths {
		abs, err := filepath.Abs(path)
		if err != nil {
			return err
		}
		watched[abs] = path
		dir := filepath.Dir(abs)
		if !dirs[dir] {
			if err := w.Add(dir); err != nil {
				return err
			}
			dirs[dir] = true
		}
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			abs, err := filepath.Abs(ev.Name)
			if err != nil {
				continue
			}
			path, ok := watched[abs]
			if !ok {
				continue
			}
			report(c.CompileFile(ctx, path))
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			return err
		}
	}
}
