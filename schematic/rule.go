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
	"context"
	"fmt"
)

// Rule is one unit of work in a schematic run. Each rule takes the current
// tree and returns it (possibly with committed edits) or an error. The runner
// only sequences rules; it never edits files itself.
type Rule interface {
	Name() string
	Apply(ctx context.Context, tree Tree) (Tree, error)
}

// RuleFunc adapts a plain function to a Rule.
type RuleFunc struct {
	RuleName string
	Fn       func(ctx context.Context, tree Tree) (Tree, error)
}

func (r RuleFunc) Name() string { return r.RuleName }

func (r RuleFunc) Apply(ctx context.Context, tree Tree) (Tree, error) {
	return r.Fn(ctx, tree)
}

// Run applies rules in sequence. Each rule receives the tree produced by the
// previous one. Returns the final tree and the first error encountered, if any.
func Run(ctx context.Context, tree Tree, rules ...Rule) (Tree, error) {
	if tree == nil {
		return nil, fmt.Errorf("schematic: tree is nil")
	}
	current := tree
	for i, rule := range rules {
		if rule == nil {
			return current, fmt.Errorf("schematic: rule %d is nil", i)
		}
		next, err := rule.Apply(ctx, current)
		if err != nil {
			return next, fmt.Errorf("schematic rule %q: %w", rule.Name(), err)
		}
		current = next
	}
	return current, nil
}

// Chain composes rules into a single named rule. Applying the chain runs the
// rules in order against the same tree; the first error aborts the rest.
func Chain(name string, rules ...Rule) Rule {
	return RuleFunc{
		RuleName: name,
		Fn: func(ctx context.Context, tree Tree) (Tree, error) {
			return Run(ctx, tree, rules...)
		},
	}
}
