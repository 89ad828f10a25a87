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

package watcher

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/declmod/declmod/rules"
	"github.com/declmod/declmod/schematic"
)

func TestWatcherReappliesOnWrite(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "app.module.ts")
	initial := "import { A } from 'a';\n\n@Module({ imports: [A] })\nclass M {}\n"
	require.NoError(t, os.WriteFile(target, []byte(initial), 0644))

	tree := schematic.NewHostTree(dir)
	rule := rules.AddDeclaration(rules.AddDeclarationOptions{
		ModulePath: "app.module.ts",
		Symbol:     "B",
		Source:     "b",
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan error, 1)
	w := New(tree, rule, dir, "app.module.ts")
	go func() {
		done <- w.Run(ctx)
	}()

	// Give the watcher time to register, then trigger a write event.
	time.Sleep(300 * time.Millisecond)
	require.NoError(t, os.WriteFile(target, []byte(initial), 0644))

	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		data, err := os.ReadFile(target)
		require.NoError(t, err)
		if strings.Contains(string(data), "import { B } from 'b';") {
			cancel()
			<-done
			return
		}
		time.Sleep(50 * time.Millisecond)
	}
	t.Fatal("watcher never re-applied the rule")
}

func TestWatcherIgnoresOtherFiles(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "app.module.ts")
	initial := "import { A } from 'a';\n\n@Module({ imports: [A] })\nclass M {}\n"
	require.NoError(t, os.WriteFile(target, []byte(initial), 0644))

	tree := schematic.NewHostTree(dir)
	rule := rules.AddDeclaration(rules.AddDeclarationOptions{
		ModulePath: "app.module.ts",
		Symbol:     "B",
		Source:     "b",
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan error, 1)
	w := New(tree, rule, dir, "app.module.ts")
	go func() {
		done <- w.Run(ctx)
	}()

	time.Sleep(300 * time.Millisecond)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "other.ts"), []byte("const x = 1;\n"), 0644))
	time.Sleep(500 * time.Millisecond)

	data, err := os.ReadFile(target)
	require.NoError(t, err)
	require.Equal(t, initial, string(data))

	cancel()
	<-done
}
