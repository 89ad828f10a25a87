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

// Package schematic provides the buffered source-tree abstraction and the
// rule pipeline that code transformations run against. Rules never touch the
// filesystem directly; every mutation is recorded against a Tree and applied
// as one atomic update per file on commit.
package schematic

import (
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/pkg/errors"
)

// ErrFileNotFound is returned when a rule targets a path the tree cannot read.
var ErrFileNotFound = errors.New("target file does not exist")

// Tree mediates all reads and writes against a set of source files.
// Edits are buffered in an UpdateRecorder and become visible only after
// CommitUpdate.
type Tree interface {
	// Read returns the current content of path. A missing file yields an
	// error satisfying errors.Is(err, ErrFileNotFound).
	Read(path string) ([]byte, error)
	// Exists reports whether path can be read from the tree.
	Exists(path string) bool
	// BeginUpdate opens a recorder for positional insertions against the
	// content of path as it is at this moment.
	BeginUpdate(path string) (*UpdateRecorder, error)
	// CommitUpdate applies all insertions recorded so far as one atomic
	// update of the recorder's file.
	CommitUpdate(rec *UpdateRecorder) error
}

// HostTree is a Tree rooted at a directory on the real filesystem.
type HostTree struct {
	root string
}

func NewHostTree(root string) *HostTree {
	return &HostTree{root: root}
}

func (t *HostTree) abs(path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(t.root, path)
}

func (t *HostTree) Read(path string) ([]byte, error) {
	data, err := os.ReadFile(t.abs(path))
	if os.IsNotExist(err) {
		return nil, errors.Wrap(ErrFileNotFound, path)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "read %s", path)
	}
	return data, nil
}

func (t *HostTree) Exists(path string) bool {
	_, err := os.Stat(t.abs(path))
	return err == nil
}

func (t *HostTree) BeginUpdate(path string) (*UpdateRecorder, error) {
	content, err := t.Read(path)
	if err != nil {
		return nil, err
	}
	return newRecorder(path, content), nil
}

func (t *HostTree) CommitUpdate(rec *UpdateRecorder) error {
	target := t.abs(rec.path)
	perm := os.FileMode(0644)
	if fi, err := os.Stat(target); err == nil {
		perm = fi.Mode().Perm()
	}
	if err := os.WriteFile(target, rec.apply(), perm); err != nil {
		return errors.Wrapf(err, "commit %s", rec.path)
	}
	return nil
}

// MemTree is an in-memory Tree for tests and dry runs.
type MemTree struct {
	mu    sync.RWMutex
	files map[string][]byte
}

func NewMemTree() *MemTree {
	return &MemTree{files: make(map[string][]byte)}
}

// Put seeds or replaces a file.
func (t *MemTree) Put(path string, content []byte) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.files[path] = content
}

// Bytes returns the current content of path, or nil if absent.
func (t *MemTree) Bytes(path string) []byte {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.files[path]
}

func (t *MemTree) Read(path string) ([]byte, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	content, ok := t.files[path]
	if !ok {
		return nil, errors.Wrap(ErrFileNotFound, path)
	}
	out := make([]byte, len(content))
	copy(out, content)
	return out, nil
}

func (t *MemTree) Exists(path string) bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	_, ok := t.files[path]
	return ok
}

func (t *MemTree) BeginUpdate(path string) (*UpdateRecorder, error) {
	content, err := t.Read(path)
	if err != nil {
		return nil, err
	}
	return newRecorder(path, content), nil
}

func (t *MemTree) CommitUpdate(rec *UpdateRecorder) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.files[rec.path] = rec.apply()
	return nil
}

// insertion is one pending positional edit. Offsets always address the
// original content, so the order of recording does not matter.
type insertion struct {
	pos   int
	text  string
	right bool
	seq   int
}

// UpdateRecorder buffers positional insertions against a single file.
type UpdateRecorder struct {
	path    string
	content []byte
	inserts []insertion
}

func newRecorder(path string, content []byte) *UpdateRecorder {
	return &UpdateRecorder{path: path, content: content}
}

// Path returns the file this recorder edits.
func (r *UpdateRecorder) Path() string { return r.path }

// InsertLeft places text at pos so that it ends up to the left of anything
// anchored at the same offset.
func (r *UpdateRecorder) InsertLeft(pos int, text string) {
	r.inserts = append(r.inserts, insertion{pos: pos, text: text, seq: len(r.inserts)})
}

// InsertRight places text at pos so that it ends up to the right of anything
// anchored at the same offset.
func (r *UpdateRecorder) InsertRight(pos int, text string) {
	r.inserts = append(r.inserts, insertion{pos: pos, text: text, right: true, seq: len(r.inserts)})
}

// apply materializes all recorded insertions in one pass over the original
// content. At equal offsets left insertions come first, then right ones,
// each group in recording order.
func (r *UpdateRecorder) apply() []byte {
	if len(r.inserts) == 0 {
		return r.content
	}
	ordered := make([]insertion, len(r.inserts))
	copy(ordered, r.inserts)
	sort.Slice(ordered, func(i, j int) bool {
		if ordered[i].pos != ordered[j].pos {
			return ordered[i].pos < ordered[j].pos
		}
		if ordered[i].right != ordered[j].right {
			return !ordered[i].right
		}
		return ordered[i].seq < ordered[j].seq
	})

	var out []byte
	prev := 0
	for _, ins := range ordered {
		pos := ins.pos
		if pos < 0 {
			pos = 0
		}
		if pos > len(r.content) {
			pos = len(r.content)
		}
		out = append(out, r.content[prev:pos]...)
		out = append(out, ins.text...)
		prev = pos
	}
	out = append(out, r.content[prev:]...)
	return out
}
