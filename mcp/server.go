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

package mcp

import (
	"github.com/mark3labs/mcp-go/server"

	"github.com/declmod/declmod/log"
)

type ServerOptions struct {
	ServerName    string
	ServerVersion string
	Verbose       bool
}

type Server struct {
	Server *server.MCPServer
}

// NewServer builds an MCP server with the schematic tools registered.
func NewServer(opts ServerOptions) *Server {
	if opts.Verbose {
		log.SetLogLevel(log.DebugLevel)
	}
	svr := server.NewMCPServer(opts.ServerName, opts.ServerVersion)
	for _, t := range schematicTools() {
		svr.AddTool(t.Tool, t.Handler)
	}
	return &Server{Server: svr}
}

func schematicTools() []Tool {
	return []Tool{
		NewTool(ToolAddDeclaration, DescAddDeclaration, SchemaAddDeclaration, handleAddDeclaration),
	}
}

// ServeStdio serves the MCP protocol over stdin/stdout until EOF.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.Server)
}
