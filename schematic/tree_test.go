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

package schematic

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/pkg/errors"
)

func TestRecorderInsertOrdering(t *testing.T) {
	rec := newRecorder("f.ts", []byte("abcdef"))
	rec.InsertRight(3, "X")
	rec.InsertLeft(3, "Y")

	got := string(rec.apply())
	want := "abcYXdef"
	if got != want {
		t.Errorf("apply() = %q, want %q", got, want)
	}
}

func TestRecorderDisjointPositions(t *testing.T) {
	// Offsets address the original content, so recording order and position
	// order are both irrelevant.
	rec := newRecorder("f.ts", []byte("hello world"))
	rec.InsertRight(11, "!")
	rec.InsertLeft(0, ">> ")
	rec.InsertLeft(5, ",")

	got := string(rec.apply())
	want := ">> hello, world!"
	if got != want {
		t.Errorf("apply() = %q, want %q", got, want)
	}
}

func TestRecorderNoInserts(t *testing.T) {
	rec := newRecorder("f.ts", []byte("unchanged"))
	if got := string(rec.apply()); got != "unchanged" {
		t.Errorf("apply() = %q, want original content", got)
	}
}

func TestRecorderClampsOutOfRange(t *testing.T) {
	rec := newRecorder("f.ts", []byte("ab"))
	rec.InsertLeft(99, "Z")
	if got := string(rec.apply()); got != "abZ" {
		t.Errorf("apply() = %q, want %q", got, "abZ")
	}
}

func TestMemTreeMissingFile(t *testing.T) {
	tree := NewMemTree()
	_, err := tree.Read("nope.ts")
	if !errors.Is(err, ErrFileNotFound) {
		t.Fatalf("Read() error = %v, want ErrFileNotFound", err)
	}
	if _, err := tree.BeginUpdate("nope.ts"); !errors.Is(err, ErrFileNotFound) {
		t.Fatalf("BeginUpdate() error = %v, want ErrFileNotFound", err)
	}
}

func TestMemTreeCommit(t *testing.T) {
	tree := NewMemTree()
	tree.Put("f.ts", []byte("abc"))

	rec, err := tree.BeginUpdate("f.ts")
	if err != nil {
		t.Fatal(err)
	}
	rec.InsertRight(3, "d")
	if err := tree.CommitUpdate(rec); err != nil {
		t.Fatal(err)
	}
	if got := string(tree.Bytes("f.ts")); got != "abcd" {
		t.Errorf("content = %q, want %q", got, "abcd")
	}
}

func TestMemTreeReadReturnsCopy(t *testing.T) {
	tree := NewMemTree()
	tree.Put("f.ts", []byte("abc"))

	data, err := tree.Read("f.ts")
	if err != nil {
		t.Fatal(err)
	}
	data[0] = 'X'
	if got := string(tree.Bytes("f.ts")); got != "abc" {
		t.Errorf("mutating Read result leaked into tree: %q", got)
	}
}

func TestHostTreeRoundTrip(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "f.ts"), []byte("abc"), 0644); err != nil {
		t.Fatal(err)
	}

	tree := NewHostTree(dir)
	if !tree.Exists("f.ts") {
		t.Fatal("Exists() = false for present file")
	}
	rec, err := tree.BeginUpdate("f.ts")
	if err != nil {
		t.Fatal(err)
	}
	rec.InsertLeft(0, "// header\n")
	if err := tree.CommitUpdate(rec); err != nil {
		t.Fatal(err)
	}

	data, err := os.ReadFile(filepath.Join(dir, "f.ts"))
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "// header\nabc" {
		t.Errorf("content = %q", string(data))
	}
}

func TestHostTreeMissingFile(t *testing.T) {
	tree := NewHostTree(t.TempDir())
	_, err := tree.Read("missing.ts")
	if !errors.Is(err, ErrFileNotFound) {
		t.Fatalf("Read() error = %v, want ErrFileNotFound", err)
	}
	if tree.Exists("missing.ts") {
		t.Error("Exists() = true for missing file")
	}
}
