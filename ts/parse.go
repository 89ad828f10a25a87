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

// Package ts parses TypeScript sources with tree-sitter and locates the
// syntactic shapes declmod edits: named imports, decorator calls and the
// array literals inside their metadata objects.
package ts

import (
	"context"

	"github.com/pkg/errors"
	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/typescript/typescript"
)

// SourceFile is an ephemeral view of one parsed file. It is built fresh per
// invocation and must be Closed when done; it is not safe for concurrent use.
type SourceFile struct {
	src  []byte
	tree *sitter.Tree
}

// Parse builds a SourceFile from raw TypeScript source.
func Parse(ctx context.Context, src []byte) (*SourceFile, error) {
	parser := sitter.NewParser()
	parser.SetLanguage(typescript.GetLanguage())
	tree, err := parser.ParseCtx(ctx, nil, src)
	if err != nil {
		return nil, errors.Wrap(err, "parse typescript source")
	}
	return &SourceFile{src: src, tree: tree}, nil
}

// Close releases the underlying tree-sitter tree.
func (f *SourceFile) Close() {
	if f.tree != nil {
		f.tree.Close()
		f.tree = nil
	}
}

// Root returns the root node of the parse tree.
func (f *SourceFile) Root() *sitter.Node {
	return f.tree.RootNode()
}

// Text returns the exact source text spanned by n.
func (f *SourceFile) Text(n *sitter.Node) string {
	return n.Content(f.src)
}

// FindFirst walks the whole tree in pre-order and returns the first node for
// which pred is true, or nil. Both decorator and property searches reuse this
// traversal.
func (f *SourceFile) FindFirst(pred func(*sitter.Node) bool) *sitter.Node {
	return findFirst(f.Root(), pred)
}

func findFirst(n *sitter.Node, pred func(*sitter.Node) bool) *sitter.Node {
	if n == nil {
		return nil
	}
	if pred(n) {
		return n
	}
	for i := 0; i < int(n.ChildCount()); i++ {
		if found := findFirst(n.Child(i), pred); found != nil {
			return found
		}
	}
	return nil
}
