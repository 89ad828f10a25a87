// Copyright 2025 declmod Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     https://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package watcher re-applies a schematic rule whenever its target file
// changes on disk. The rule's idempotence makes re-application safe.
package watcher

import (
	"context"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/pkg/errors"

	"github.com/declmod/declmod/log"
	"github.com/declmod/declmod/schematic"
)

// debounceWindow coalesces the event bursts editors emit on save.
const debounceWindow = 200 * time.Millisecond

// Watcher re-runs a rule when the watched file is written or created.
type Watcher struct {
	tree schematic.Tree
	rule schematic.Rule
	// path of the watched file, relative to the tree root.
	path string
	// absPath is what fsnotify reports events for.
	absPath string
}

// New builds a watcher for path (relative to root) running rule against tree.
func New(tree schematic.Tree, rule schematic.Rule, root, path string) *Watcher {
	abs := path
	if !filepath.IsAbs(abs) {
		abs = filepath.Join(root, path)
	}
	return &Watcher{tree: tree, rule: rule, path: path, absPath: abs}
}

// Run blocks until ctx is canceled, re-applying the rule on every relevant
// change of the watched file. Rule failures are logged, not fatal: the file
// may be mid-edit and will settle.
func (w *Watcher) Run(ctx context.Context) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return errors.Wrap(err, "create fs watcher")
	}
	defer fw.Close()

	// Watch the directory, not the file: editors replace files on save and
	// a file-level watch goes stale after the first rename.
	if err := fw.Add(filepath.Dir(w.absPath)); err != nil {
		return errors.Wrapf(err, "watch %s", filepath.Dir(w.absPath))
	}

	log.Info("watching %s", w.path)
	var last time.Time
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != filepath.Clean(w.absPath) {
				continue
			}
			if event.Op&fsnotify.Write == 0 && event.Op&fsnotify.Create == 0 {
				continue
			}
			if time.Since(last) < debounceWindow {
				continue
			}
			last = time.Now()
			if _, err := schematic.Run(ctx, w.tree, w.rule); err != nil {
				log.Error("re-apply %s: %v", w.rule.Name(), err)
			}
		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			log.Error("watch error: %v", err)
		}
	}
}
