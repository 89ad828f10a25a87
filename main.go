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

package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/declmod/declmod/collection"
	"github.com/declmod/declmod/log"
	"github.com/declmod/declmod/mcp"
	"github.com/declmod/declmod/rules"
	"github.com/declmod/declmod/schematic"
	"github.com/declmod/declmod/version"
	"github.com/declmod/declmod/watcher"
)

const Usage = `declmod <Action> [Path] [Flags]
Action:
   add          ensure the module file imports -symbol from -from and registers it in @Module imports
   apply        run every schematic listed in a collection YAML file
   watch        like add, but re-applied whenever the module file changes
   mcp          run as a MCP server exposing the add_declaration tool over stdio
   version      print the version of declmod
Path:
   add/watch    the module-declaration file, relative to -root
   apply        the collection YAML file
`

func main() {
	flags := flag.NewFlagSet("declmod", flag.ExitOnError)

	flagHelp := flags.Bool("h", false, "Show help message.")
	flagVerbose := flags.Bool("verbose", false, "Verbose mode.")
	flagRoot := flags.String("root", ".", "Workspace root the module path is relative to.")
	flagSymbol := flags.String("symbol", "", "Identifier to import and register.")
	flagFrom := flags.String("from", "", "Module specifier to import the symbol from.")

	flags.Usage = func() {
		fmt.Fprint(os.Stderr, Usage)
		fmt.Fprintf(os.Stderr, "Flags:\n")
		flags.PrintDefaults()
	}

	if len(os.Args) < 2 {
		flags.Usage()
		os.Exit(1)
	}
	action := strings.ToLower(os.Args[1])

	switch action {
	case "version":
		fmt.Fprintf(os.Stdout, "%s\n", version.Version)

	case "add":
		uri := parseArgsAndFlags(flags, flagHelp, flagVerbose)
		rule := rules.AddDeclaration(rules.AddDeclarationOptions{
			ModulePath: uri,
			Symbol:     *flagSymbol,
			Source:     *flagFrom,
		})
		tree := schematic.NewHostTree(*flagRoot)
		if _, err := schematic.Run(context.Background(), tree, rule); err != nil {
			log.Error("Failed to apply schematic: %v\n", err)
			os.Exit(1)
		}

	case "apply":
		uri := parseArgsAndFlags(flags, flagHelp, flagVerbose)
		col, err := collection.Load(uri)
		if err != nil {
			log.Error("Failed to load collection: %v\n", err)
			os.Exit(1)
		}
		tree := schematic.NewHostTree(*flagRoot)
		chained := schematic.Chain("apply-collection", col.Rules()...)
		if _, err := schematic.Run(context.Background(), tree, chained); err != nil {
			log.Error("Failed to apply collection: %v\n", err)
			os.Exit(1)
		}

	case "watch":
		uri := parseArgsAndFlags(flags, flagHelp, flagVerbose)
		rule := rules.AddDeclaration(rules.AddDeclarationOptions{
			ModulePath: uri,
			Symbol:     *flagSymbol,
			Source:     *flagFrom,
		})
		tree := schematic.NewHostTree(*flagRoot)
		w := watcher.New(tree, rule, *flagRoot, uri)
		if err := w.Run(context.Background()); err != nil && err != context.Canceled {
			log.Error("Watch failed: %v\n", err)
			os.Exit(1)
		}

	case "mcp":
		if len(os.Args) > 2 {
			flags.Parse(os.Args[2:])
		}
		svr := mcp.NewServer(mcp.ServerOptions{
			ServerName:    "declmod",
			ServerVersion: version.Version,
			Verbose:       *flagVerbose,
		})
		if err := svr.ServeStdio(); err != nil {
			log.Error("Failed to run MCP server: %v\n", err)
			os.Exit(1)
		}

	default:
		flags.Usage()
		os.Exit(1)
	}
}

func parseArgsAndFlags(flags *flag.FlagSet, flagHelp *bool, flagVerbose *bool) (uri string) {
	if len(os.Args) < 3 {
		flags.Usage()
		os.Exit(1)
	}
	uri = os.Args[2]
	if len(os.Args) > 3 {
		flags.Parse(os.Args[3:])
	}

	if flagHelp != nil && *flagHelp {
		flags.Usage()
		os.Exit(0)
	}
	if flagVerbose != nil && *flagVerbose {
		log.SetLogLevel(log.DebugLevel)
	}
	return uri
}
