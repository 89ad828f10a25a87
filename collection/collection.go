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

// Package collection loads YAML files describing a batch of schematic runs.
package collection

import (
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/declmod/declmod/rules"
	"github.com/declmod/declmod/schematic"
)

// Entry is one add-declaration invocation in a collection file.
type Entry struct {
	Module string `yaml:"module"`
	Symbol string `yaml:"symbol"`
	From   string `yaml:"from"`
}

// Collection is the parsed form of a collection file.
type Collection struct {
	Schematics []Entry `yaml:"schematics"`
}

// Load reads and validates a collection file. Every entry must carry all
// three fields; the core rule does not validate them, so the loader does.
func Load(path string) (*Collection, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "read collection %s", path)
	}
	return Parse(data)
}

// Parse decodes and validates collection YAML.
func Parse(data []byte) (*Collection, error) {
	var c Collection
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, errors.Wrap(err, "decode collection yaml")
	}
	for i, e := range c.Schematics {
		if e.Module == "" || e.Symbol == "" || e.From == "" {
			return nil, errors.Errorf("collection entry %d: module, symbol and from are all required", i)
		}
	}
	return &c, nil
}

// Rules converts the collection into one rule per entry, in file order.
func (c *Collection) Rules() []schematic.Rule {
	out := make([]schematic.Rule, 0, len(c.Schematics))
	for _, e := range c.Schematics {
		out = append(out, rules.AddDeclaration(rules.AddDeclarationOptions{
			ModulePath: e.Module,
			Symbol:     e.Symbol,
			Source:     e.From,
		}))
	}
	return out
}
