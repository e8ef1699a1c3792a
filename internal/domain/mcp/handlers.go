package mcp

import (
	"context"
	"encoding/json"
	"sort"
)

// ToolHandler is an operation exposed through tools/call
type ToolHandler interface {
	GetName() string
	GetDescription() string
	GetInputSchema() JSONSchema
	Execute(ctx context.Context, arguments json.RawMessage) (*CallToolResult, error)
}

// ResourceHandler renders a read-only view exposed through resources/read
type ResourceHandler interface {
	GetURI() string
	GetName() string
	GetDescription() string
	GetMimeType() string
	Read(ctx context.Context) (*ReadResourceResult, error)
}

// Registry indexes tools by name and resources by URI. Registering a second
// handler under the same key replaces the first.
type Registry struct {
	tools     map[string]ToolHandler
	resources map[string]ResourceHandler
}

func NewRegistry() *Registry {
	return &Registry{
		tools:     make(map[string]ToolHandler),
		resources: make(map[string]ResourceHandler),
	}
}

func (r *Registry) RegisterTool(handler ToolHandler) {
	r.tools[handler.GetName()] = handler
}

func (r *Registry) RegisterResource(handler ResourceHandler) {
	r.resources[handler.GetURI()] = handler
}

func (r *Registry) Tool(name string) (ToolHandler, bool) {
	handler, ok := r.tools[name]
	return handler, ok
}

func (r *Registry) Resource(uri string) (ResourceHandler, bool) {
	handler, ok := r.resources[uri]
	return handler, ok
}

// ListTools describes every tool, ordered by name
func (r *Registry) ListTools() []Tool {
	tools := make([]Tool, 0, len(r.tools))
	for _, h := range r.tools {
		tools = append(tools, Tool{Name: h.GetName(), Description: h.GetDescription(), InputSchema: h.GetInputSchema()})
	}
	sort.Slice(tools, func(i, j int) bool { return tools[i].Name < tools[j].Name })
	return tools
}

// ListResources describes every resource, ordered by URI
func (r *Registry) ListResources() []Resource {
	resources := make([]Resource, 0, len(r.resources))
	for _, h := range r.resources {
		resources = append(resources, Resource{URI: h.GetURI(), Name: h.GetName(), Description: h.GetDescription(), MimeType: h.GetMimeType()})
	}
	sort.Slice(resources, func(i, j int) bool { return resources[i].URI < resources[j].URI })
	return resources
}
