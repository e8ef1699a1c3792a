package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubTool struct {
	name   string
	result *CallToolResult
	err    error
	args   json.RawMessage
}

func (s *stubTool) GetName() string            { return s.name }
func (s *stubTool) GetDescription() string     { return "stub " + s.name }
func (s *stubTool) GetInputSchema() JSONSchema { return JSONSchema{Type: "object"} }
func (s *stubTool) Execute(ctx context.Context, arguments json.RawMessage) (*CallToolResult, error) {
	s.args = arguments
	return s.result, s.err
}

type stubResource struct {
	uri  string
	text string
	err  error
}

func (s *stubResource) GetURI() string         { return s.uri }
func (s *stubResource) GetName() string        { return s.uri }
func (s *stubResource) GetDescription() string { return "" }
func (s *stubResource) GetMimeType() string    { return "application/json" }
func (s *stubResource) Read(ctx context.Context) (*ReadResourceResult, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &ReadResourceResult{Contents: []ResourceContent{{URI: s.uri, Text: s.text}}}, nil
}

func rpc(t *testing.T, s *Service, method string, params interface{}) HTTPResponse {
	t.Helper()
	req := JSONRPCRequest{JSONRPC: "2.0", ID: json.RawMessage(`7`), Method: method}
	if params != nil {
		raw, err := json.Marshal(params)
		require.NoError(t, err)
		req.Params = raw
	}
	return s.HandleRequest(context.Background(), req)
}

func decodeResult(t *testing.T, resp HTTPResponse, v interface{}) {
	t.Helper()
	require.Nil(t, resp.JSONRPCResponse.Error)
	raw, err := json.Marshal(resp.JSONRPCResponse.Result)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(raw, v))
}

func TestInitialize(t *testing.T) {
	s := NewService(slog.Default(), NewRegistry())

	resp := rpc(t, s, "initialize", InitializeParams{ProtocolVersion: "2024-11-05", ClientInfo: ClientInfo{Name: "client", Version: "0.1"}})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, json.RawMessage(`7`), resp.JSONRPCResponse.ID)

	var result InitializeResult
	decodeResult(t, resp, &result)
	assert.Equal(t, "finance-ledger-mcp-server", result.ServerInfo.Name)
	assert.Contains(t, result.Instructions, "audit-balances")
	assert.Equal(t, ProtocolVersion, result.ProtocolVersion)
	assert.True(t, result.Capabilities.Tools.ListChanged)
	assert.False(t, result.Capabilities.Resources.Subscribe)

	withCapabilities := s.HandleRequest(context.Background(), JSONRPCRequest{
		Method: "initialize",
		Params: json.RawMessage(`{"protocolVersion":"2025-03-26","capabilities":{"roots":{"listChanged":true},"sampling":{}},"clientInfo":{"name":"inspector"}}`),
	})
	assert.Nil(t, withCapabilities.JSONRPCResponse.Error)

	bad := s.HandleRequest(context.Background(), JSONRPCRequest{Method: "initialize", Params: json.RawMessage(`[`)})
	require.NotNil(t, bad.JSONRPCResponse.Error)
	assert.Equal(t, InvalidParams, bad.JSONRPCResponse.Error.Code)
}

func TestListingsAreSorted(t *testing.T) {
	registry := NewRegistry()
	registry.RegisterTool(&stubTool{name: "update-transaction"})
	registry.RegisterTool(&stubTool{name: "audit-balances"})
	registry.RegisterTool(&stubTool{name: "create-account"})
	registry.RegisterResource(&stubResource{uri: "finance://dashboard"})
	registry.RegisterResource(&stubResource{uri: "finance://accounts"})
	s := NewService(slog.Default(), registry)

	var tools ListToolsResult
	decodeResult(t, rpc(t, s, "tools/list", nil), &tools)
	names := make([]string, 0, len(tools.Tools))
	for _, tool := range tools.Tools {
		names = append(names, tool.Name)
	}
	assert.Equal(t, []string{"audit-balances", "create-account", "update-transaction"}, names)

	var resources ListResourcesResult
	decodeResult(t, rpc(t, s, "resources/list", nil), &resources)
	require.Len(t, resources.Resources, 2)
	assert.Equal(t, "finance://accounts", resources.Resources[0].URI)
}

func TestCallTool(t *testing.T) {
	ok := &stubTool{name: "create-account", result: &CallToolResult{Content: []ToolResultContent{{Type: "text", Text: "done"}}}}
	failing := &stubTool{name: "delete-transaction", err: errors.New("storage unavailable")}
	registry := NewRegistry()
	registry.RegisterTool(ok)
	registry.RegisterTool(failing)
	s := NewService(slog.Default(), registry)

	t.Run("passes arguments through", func(t *testing.T) {
		var result CallToolResult
		decodeResult(t, rpc(t, s, "tools/call", CallToolParams{Name: "create-account", Arguments: json.RawMessage(`{"name":"Wallet"}`)}), &result)
		assert.False(t, result.IsError)
		assert.Equal(t, "done", result.Content[0].Text)
		assert.JSONEq(t, `{"name":"Wallet"}`, string(ok.args))
	})

	t.Run("execution error becomes tool error", func(t *testing.T) {
		var result CallToolResult
		decodeResult(t, rpc(t, s, "tools/call", CallToolParams{Name: "delete-transaction"}), &result)
		assert.True(t, result.IsError)
		assert.Equal(t, "storage unavailable", result.Content[0].Text)
	})

	t.Run("unknown tool", func(t *testing.T) {
		resp := rpc(t, s, "tools/call", CallToolParams{Name: "transfer"})
		require.NotNil(t, resp.JSONRPCResponse.Error)
		assert.Equal(t, InvalidParams, resp.JSONRPCResponse.Error.Code)
	})
}

func TestReadResource(t *testing.T) {
	registry := NewRegistry()
	registry.RegisterResource(&stubResource{uri: "finance://accounts", text: `{"accounts":[]}`})
	registry.RegisterResource(&stubResource{uri: "finance://dashboard", err: errors.New("boom")})
	s := NewService(slog.Default(), registry)

	var result ReadResourceResult
	decodeResult(t, rpc(t, s, "resources/read", ReadResourceParams{URI: "finance://accounts"}), &result)
	assert.Equal(t, `{"accounts":[]}`, result.Contents[0].Text)

	resp := rpc(t, s, "resources/read", ReadResourceParams{URI: "finance://dashboard"})
	require.NotNil(t, resp.JSONRPCResponse.Error)
	assert.Equal(t, InternalError, resp.JSONRPCResponse.Error.Code)

	resp = rpc(t, s, "resources/read", ReadResourceParams{URI: "finance://missing"})
	require.NotNil(t, resp.JSONRPCResponse.Error)
	assert.Equal(t, InvalidParams, resp.JSONRPCResponse.Error.Code)
}

func TestNotificationsAndUnknownMethods(t *testing.T) {
	s := NewService(slog.Default(), NewRegistry())

	assert.Equal(t, http.StatusAccepted, rpc(t, s, "notifications/initialized", nil).StatusCode)
	assert.Nil(t, rpc(t, s, "ping", nil).JSONRPCResponse.Error)

	resp := rpc(t, s, "prompts/list", nil)
	require.NotNil(t, resp.JSONRPCResponse.Error)
	assert.Equal(t, MethodNotFound, resp.JSONRPCResponse.Error.Code)

	resp = s.HandleRequest(context.Background(), JSONRPCRequest{JSONRPC: "2.0", ID: json.RawMessage(`1`)})
	require.NotNil(t, resp.JSONRPCResponse.Error)
	assert.Equal(t, InvalidRequest, resp.JSONRPCResponse.Error.Code)
}
