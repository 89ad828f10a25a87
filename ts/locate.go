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

package ts

import (
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
)

// HasNamedImport reports whether the file already contains a top-level import
// of exactly `import { <symbol> } from '<source>'`. The comparison is textual
// exact match: the clause text must be the single-name brace form and the
// specifier must equal source after stripping quotes. Aliased, multi-name or
// differently spaced clauses do not match; callers then insert a duplicate
// but non-conflicting import line. That policy is deliberate, see DESIGN.md.
func (f *SourceFile) HasNamedImport(symbol, source string) bool {
	wantClause := "{ " + symbol + " }"
	root := f.Root()
	for i := 0; i < int(root.NamedChildCount()); i++ {
		stmt := root.NamedChild(i)
		if stmt.Type() != "import_statement" {
			continue
		}
		spec := stmt.ChildByFieldName("source")
		if spec == nil || normalizeSpecifier(f.Text(spec)) != source {
			continue
		}
		clause := importClause(stmt)
		if clause != nil && f.Text(clause) == wantClause {
			return true
		}
	}
	return false
}

// LastTopLevelImportEnd returns the end offset of the last top-level import
// statement, and false when the file has none.
func (f *SourceFile) LastTopLevelImportEnd() (int, bool) {
	root := f.Root()
	end := -1
	for i := 0; i < int(root.NamedChildCount()); i++ {
		stmt := root.NamedChild(i)
		if stmt.Type() == "import_statement" {
			end = int(stmt.EndByte())
		}
	}
	if end < 0 {
		return 0, false
	}
	return end, true
}

// FindDecorator returns the first decorator anywhere in the file whose
// expression is a call to the bare identifier name. Traversal is exhaustive
// pre-order, so decorators nested inside other declarations are found too.
func (f *SourceFile) FindDecorator(name string) *sitter.Node {
	return f.FindFirst(func(n *sitter.Node) bool {
		if n.Type() != "decorator" {
			return false
		}
		call := n.NamedChild(0)
		if call == nil || call.Type() != "call_expression" {
			return false
		}
		fn := call.ChildByFieldName("function")
		return fn != nil && fn.Type() == "identifier" && f.Text(fn) == name
	})
}

// DecoratorMetadataArray locates the array literal bound to key inside the
// decorator call's first argument. It returns nil unless the first argument
// is exactly an object literal holding a direct property with a simple
// identifier key whose value is an array literal. Spreads, computed keys and
// non-literal values all yield nil.
func (f *SourceFile) DecoratorMetadataArray(dec *sitter.Node, key string) *sitter.Node {
	if dec == nil {
		return nil
	}
	call := dec.NamedChild(0)
	if call == nil || call.Type() != "call_expression" {
		return nil
	}
	args := call.ChildByFieldName("arguments")
	if args == nil || args.NamedChildCount() == 0 {
		return nil
	}
	obj := args.NamedChild(0)
	if obj.Type() != "object" {
		return nil
	}
	for i := 0; i < int(obj.NamedChildCount()); i++ {
		pair := obj.NamedChild(i)
		if pair.Type() != "pair" {
			continue
		}
		k := pair.ChildByFieldName("key")
		if k == nil || k.Type() != "property_identifier" || f.Text(k) != key {
			continue
		}
		v := pair.ChildByFieldName("value")
		if v != nil && v.Type() == "array" {
			return v
		}
		return nil
	}
	return nil
}

// ArrayElements returns the element expressions of an array literal,
// skipping comments.
func (f *SourceFile) ArrayElements(arr *sitter.Node) []*sitter.Node {
	if arr == nil {
		return nil
	}
	var elems []*sitter.Node
	for i := 0; i < int(arr.NamedChildCount()); i++ {
		el := arr.NamedChild(i)
		if el.Type() == "comment" {
			continue
		}
		elems = append(elems, el)
	}
	return elems
}

func importClause(stmt *sitter.Node) *sitter.Node {
	for i := 0; i < int(stmt.NamedChildCount()); i++ {
		if c := stmt.NamedChild(i); c.Type() == "import_clause" {
			return c
		}
	}
	return nil
}

func normalizeSpecifier(text string) string {
	return strings.Trim(text, "'\"")
}
