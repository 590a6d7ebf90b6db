// SPDX-License-Identifier: Unlicense OR MIT

// Package watch rebuilds shaders when their source files change.
package watch

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"sort"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDelay is how long a Watcher waits for a burst of file events
// to settle before rebuilding.
const DefaultDelay = 100 * time.Millisecond

// BuildFunc rebuilds a single shader.
type BuildFunc func(ctx context.Context, shader string) error

// Watcher watches a fixed set of shader sources.
type Watcher struct {
	// Delay overrides DefaultDelay.
	Delay time.Duration

	build   BuildFunc
	log     *slog.Logger
	fsw     *fsnotify.Watcher
	shaders map[string]string // absolute path to path as given
}

// New starts watching the directories of shaders. Changes are not
// acted upon until Run is called.
func New(shaders []string, build BuildFunc, log *slog.Logger) (*Watcher, error) {
	if log == nil {
		log = slog.Default()
	}
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	w := &Watcher{
		Delay:   DefaultDelay,
		build:   build,
		log:     log,
		fsw:     fsw,
		shaders: make(map[string]string),
	}
	dirs := make(map[string]bool)
	for _, sh := range shaders {
		abs, err := filepath.Abs(sh)
		if err != nil {
			fsw.Close()
			return nil, err
		}
		w.shaders[abs] = sh
		dir := filepath.Dir(abs)
		if dirs[dir] {
			continue
		}
		// Watch the directory rather than the file, to survive editors
		// that save by renaming a new file over the old one.
		if err := fsw.Add(dir); err != nil {
			fsw.Close()
			return nil, fmt.Errorf("watch %s: %w", dir, err)
		}
		dirs[dir] = true
	}
	return w, nil
}

// Run rebuilds changed shaders until ctx is done. Build errors are
// logged and do not stop the watcher.
func (w *Watcher) Run(ctx context.Context) error {
	defer w.fsw.Close()
	pending := make(map[string]bool)
	var settle <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.fsw.Events:
			if !ok {
				return nil
			}
			if !ev.Has(fsnotify.Write | fsnotify.Create) {
				continue
			}
			sh, ok := w.shaders[filepath.Clean(ev.Name)]
			if !ok {
				continue
			}
			w.log.Debug("shader changed", "shader", sh, "op", ev.Op.String())
			pending[sh] = true
			settle = time.After(w.Delay)
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return nil
			}
			w.log.Error("watch", "err", err)
		case <-settle:
			settle = nil
			w.rebuild(ctx, pending)
			clear(pending)
		}
	}
}

func (w *Watcher) rebuild(ctx context.Context, pending map[string]bool) {
	shaders := make([]string, 0, len(pending))
	for sh := range pending {
		shaders = append(shaders, sh)
	}
	sort.Strings(shaders)
	for _, sh := range shaders {
		if err := w.build(ctx, sh); err != nil {
			w.log.Error("rebuild failed", "shader", sh, "err", err)
		}
	}
}
