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

// Package mcp exposes declmod's schematics as tools over the Model Context
// Protocol so agents can drive code generation without shelling out.
package mcp

import (
	"context"
	"encoding/json"

	"github.com/invopop/jsonschema"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/declmod/declmod/internal/utils"
	"github.com/declmod/declmod/rules"
	"github.com/declmod/declmod/schematic"
)

const (
	ToolAddDeclaration = "add_declaration"
	DescAddDeclaration = "Ensure a TypeScript module file imports a symbol and registers it in the imports array of its @Module decorator. Idempotent."
)

var SchemaAddDeclaration = GetJSONSchema(AddDeclarationReq{})

// AddDeclarationReq is the tool input. Field schemas are reflected from the
// jsonschema tags.
type AddDeclarationReq struct {
	Root   string `json:"root" jsonschema:"description=workspace root directory the module path is relative to"`
	Module string `json:"module" jsonschema:"description=path of the module-declaration file, relative to root"`
	Symbol string `json:"symbol" jsonschema:"description=identifier to import and register"`
	From   string `json:"from" jsonschema:"description=module specifier to import the symbol from"`
}

// AddDeclarationResp reports what the run touched. A no-op and an edit look
// the same apart from Changed.
type AddDeclarationResp struct {
	Module  string `json:"module" jsonschema:"description=the file that was updated"`
	Changed bool   `json:"changed" jsonschema:"description=whether the file content changed"`
}

// Tool pairs an MCP tool descriptor with its handler.
type Tool struct {
	mcp.Tool
	Handler server.ToolHandlerFunc
}

// NewTool wraps a typed handler into an MCP tool: bind arguments, call,
// marshal the response (or the error) as text content.
func NewTool[R any, T any](name string, desc string, schema json.RawMessage, handler func(ctx context.Context, req R) (*T, error)) Tool {
	return Tool{
		Tool: mcp.NewToolWithRawSchema(name, desc, schema),
		Handler: func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			var req R
			if err := request.BindArguments(&req); err != nil {
				return nil, err
			}
			var final string
			var isError bool
			if resp, err := handler(ctx, req); err != nil {
				isError = true
				final = err.Error()
			} else if js, err := utils.MarshalJSONBytes(resp); err != nil {
				isError = true
				final = err.Error()
			} else {
				final = string(js)
			}
			return &mcp.CallToolResult{
				Content: []mcp.Content{
					mcp.NewTextContent(final),
				},
				IsError: isError,
			}, nil
		},
	}
}

// GetJSONSchema reflects a request struct into a raw JSON schema.
func GetJSONSchema(v interface{}) json.RawMessage {
	r := jsonschema.Reflector{
		DoNotReference: true,
		ExpandedStruct: true,
	}
	s := r.Reflect(v)
	data, err := json.Marshal(s)
	if err != nil {
		panic("reflect tool schema: " + err.Error())
	}
	return data
}

// handleAddDeclaration runs the rule against a host tree rooted at req.Root.
func handleAddDeclaration(ctx context.Context, req AddDeclarationReq) (*AddDeclarationResp, error) {
	tree := schematic.NewHostTree(req.Root)
	before, err := tree.Read(req.Module)
	if err != nil {
		return nil, err
	}
	rule := rules.AddDeclaration(rules.AddDeclarationOptions{
		ModulePath: req.Module,
		Symbol:     req.Symbol,
		Source:     req.From,
	})
	if _, err := schematic.Run(ctx, tree, rule); err != nil {
		return nil, err
	}
	after, err := tree.Read(req.Module)
	if err != nil {
		return nil, err
	}
	return &AddDeclarationResp{
		Module:  req.Module,
		Changed: string(before) != string(after),
	}, nil
}
