package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
)

const jsonRPCVersion = "2.0"

const instructions = "Use this MCP server to record income and expenses against your accounts. " +
	"Balances are updated with every transaction write; audit-balances recomputes them from the transaction history."

// HTTPResponse pairs a JSON-RPC envelope with the HTTP status to send it with
type HTTPResponse struct {
	JSONRPCResponse JSONRPCResponse
	StatusCode      int
}

// NewSuccessHTTPResponse wraps result for the request identified by id
func NewSuccessHTTPResponse(id json.RawMessage, result interface{}, statusCode int) HTTPResponse {
	return HTTPResponse{
		JSONRPCResponse: JSONRPCResponse{JSONRPC: jsonRPCVersion, ID: id, Result: result},
		StatusCode:      statusCode,
	}
}

// NewErrorHTTPResponse wraps a JSON-RPC error for the request identified by id
func NewErrorHTTPResponse(id json.RawMessage, code int, message string, data interface{}, statusCode int) HTTPResponse {
	return HTTPResponse{
		JSONRPCResponse: JSONRPCResponse{
			JSONRPC: jsonRPCVersion,
			ID:      id,
			Error:   &JSONRPCError{Code: code, Message: message, Data: data},
		},
		StatusCode: statusCode,
	}
}

// JSON-RPC errors travel with HTTP 200; the status only reflects transport problems
func rpcError(id json.RawMessage, code int, message string, data interface{}) HTTPResponse {
	return NewErrorHTTPResponse(id, code, message, data, http.StatusOK)
}

type methodFunc func(ctx context.Context, request JSONRPCRequest) HTTPResponse

// Service answers MCP requests for one ledger owner
type Service struct {
	logger     *slog.Logger
	serverInfo ServerInfo
	registry   *Registry
	methods    map[string]methodFunc
}

// NewService creates a service backed by the tools and resources in registry
func NewService(logger *slog.Logger, registry *Registry) *Service {
	s := &Service{
		logger: logger,
		serverInfo: ServerInfo{
			Name:    "finance-ledger-mcp-server",
			Title:   "Personal finance ledger with consistent account balances.",
			Version: "1.0.0",
		},
		registry: registry,
	}
	s.methods = map[string]methodFunc{
		"initialize":                s.initialize,
		"initialized":               s.acknowledge(http.StatusOK),
		"notifications/initialized": s.acknowledge(http.StatusAccepted),
		"ping":                      s.acknowledge(http.StatusOK),
		"resources/list":            s.listResources,
		"resources/read":            s.readResource,
		"tools/list":                s.listTools,
		"tools/call":                s.callTool,
	}
	return s
}

// HandleRequest dispatches a JSON-RPC request by method name
func (s *Service) HandleRequest(ctx context.Context, request JSONRPCRequest) HTTPResponse {
	if request.Method == "" {
		return rpcError(request.ID, InvalidRequest, "Missing method", nil)
	}
	s.logger.Info("MCP request received", "method", request.Method)

	method, ok := s.methods[request.Method]
	if !ok {
		return rpcError(request.ID, MethodNotFound, fmt.Sprintf("Method not found: %s", request.Method), nil)
	}
	return method(ctx, request)
}

func (s *Service) initialize(ctx context.Context, request JSONRPCRequest) HTTPResponse {
	var params InitializeParams
	if err := json.Unmarshal(request.Params, &params); err != nil {
		return rpcError(request.ID, InvalidParams, "Invalid initialize params", err.Error())
	}
	s.logger.Info("MCP client connected", "client", params.ClientInfo.Name, "protocol", params.ProtocolVersion)

	return NewSuccessHTTPResponse(request.ID, InitializeResult{
		ProtocolVersion: ProtocolVersion,
		Capabilities: ServerCapability{
			Resources: ListCapability{ListChanged: true},
			Tools:     ListCapability{ListChanged: true},
		},
		ServerInfo:   s.serverInfo,
		Instructions: instructions,
	}, http.StatusOK)
}

// acknowledge answers methods that carry no payload
func (s *Service) acknowledge(status int) methodFunc {
	return func(ctx context.Context, request JSONRPCRequest) HTTPResponse {
		return NewSuccessHTTPResponse(request.ID, map[string]any{}, status)
	}
}

func (s *Service) listResources(ctx context.Context, request JSONRPCRequest) HTTPResponse {
	return NewSuccessHTTPResponse(request.ID, ListResourcesResult{Resources: s.registry.ListResources()}, http.StatusOK)
}

func (s *Service) readResource(ctx context.Context, request JSONRPCRequest) HTTPResponse {
	var params ReadResourceParams
	if err := json.Unmarshal(request.Params, &params); err != nil {
		return rpcError(request.ID, InvalidParams, "Invalid read resource params", err.Error())
	}

	resource, ok := s.registry.Resource(params.URI)
	if !ok {
		return rpcError(request.ID, InvalidParams, fmt.Sprintf("Resource not found: %s", params.URI), nil)
	}

	result, err := resource.Read(ctx)
	if err != nil {
		s.logger.Error("Failed to read resource", "uri", params.URI, "error", err)
		return rpcError(request.ID, InternalError, "Failed to read resource", err.Error())
	}
	return NewSuccessHTTPResponse(request.ID, result, http.StatusOK)
}

func (s *Service) listTools(ctx context.Context, request JSONRPCRequest) HTTPResponse {
	return NewSuccessHTTPResponse(request.ID, ListToolsResult{Tools: s.registry.ListTools()}, http.StatusOK)
}

// callTool runs a tool. An execution error is reported inside the tool
// result so the client sees it as a failed operation, not a protocol fault.
func (s *Service) callTool(ctx context.Context, request JSONRPCRequest) HTTPResponse {
	var params CallToolParams
	if err := json.Unmarshal(request.Params, &params); err != nil {
		return rpcError(request.ID, InvalidParams, "Invalid call tool params", err.Error())
	}

	tool, ok := s.registry.Tool(params.Name)
	if !ok {
		return rpcError(request.ID, InvalidParams, fmt.Sprintf("Tool not found: %s", params.Name), nil)
	}

	result, err := tool.Execute(ctx, params.Arguments)
	if err != nil {
		s.logger.Error("Failed to execute tool", "tool", params.Name, "error", err)
		result = &CallToolResult{
			Content: []ToolResultContent{{Type: "text", Text: err.Error()}},
			IsError: true,
		}
	}
	return NewSuccessHTTPResponse(request.ID, result, http.StatusOK)
}
