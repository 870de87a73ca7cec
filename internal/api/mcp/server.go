package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sort"

	"go.uber.org/zap"

	"github.com/cofinco/backoffice/internal/domain/errors"
)

// Tool is a callable operation. Run returns any JSON-serialisable value.
type Tool struct {
	Name        string
	Description string
	InputSchema JSONSchema
	Run         func(ctx context.Context, arguments json.RawMessage) (interface{}, error)
}

// Resource is a read-only JSON view
type Resource struct {
	URI         string
	Name        string
	Description string
	Read        func(ctx context.Context) (interface{}, error)
}

// Reply is a JSON-RPC response with the HTTP status to send it with
type Reply struct {
	Response   JSONRPCResponse
	StatusCode int
}

func result(id json.RawMessage, v interface{}, status int) Reply {
	return Reply{
		Response:   JSONRPCResponse{JSONRPC: jsonRPCVersion, ID: id, Result: v},
		StatusCode: status,
	}
}

func failure(id json.RawMessage, code int, message string, data interface{}) Reply {
	return Reply{
		Response: JSONRPCResponse{
			JSONRPC: jsonRPCVersion,
			ID:      id,
			Error:   &JSONRPCError{Code: code, Message: message, Data: data},
		},
		StatusCode: http.StatusOK,
	}
}

// Server answers MCP requests from a fixed set of tools and resources
type Server struct {
	logger    *zap.Logger
	info      ServerInfo
	tools     map[string]Tool
	resources map[string]Resource
}

func NewServer(logger *zap.Logger) *Server {
	return &Server{
		logger: logger,
		info: ServerInfo{
			Name:    "backoffice-mcp-server",
			Title:   "Microfinance back-office",
			Version: "1.0.0",
		},
		tools:     make(map[string]Tool),
		resources: make(map[string]Resource),
	}
}

func (s *Server) AddTool(t Tool) {
	s.tools[t.Name] = t
}

func (s *Server) AddResource(r Resource) {
	s.resources[r.URI] = r
}

// Handle processes a JSON-RPC request
func (s *Server) Handle(ctx context.Context, req JSONRPCRequest) Reply {
	s.logger.Info("mcp request received", zap.String("method", req.Method))

	switch req.Method {
	case "initialize":
		return result(req.ID, InitializeResult{
			ProtocolVersion: protocolVersion,
			Capabilities: ServerCapability{
				Resources: ListChangedCapability{ListChanged: true},
				Tools:     ListChangedCapability{ListChanged: true},
			},
			ServerInfo:   s.info,
			Instructions: "Use this server to record counter operations and inspect accounts, the journal and the audit log.",
		}, http.StatusOK)
	case "notifications/initialized":
		return result(req.ID, map[string]any{}, http.StatusAccepted)
	case "initialized", "ping":
		return result(req.ID, map[string]any{}, http.StatusOK)
	case "resources/list":
		return result(req.ID, map[string]any{"resources": s.listResources()}, http.StatusOK)
	case "resources/read":
		return s.readResource(ctx, req)
	case "tools/list":
		return result(req.ID, map[string]any{"tools": s.listTools()}, http.StatusOK)
	case "tools/call":
		return s.callTool(ctx, req)
	default:
		return failure(req.ID, MethodNotFound, fmt.Sprintf("Method not found: %s", req.Method), nil)
	}
}

func (s *Server) listTools() []ToolInfo {
	out := make([]ToolInfo, 0, len(s.tools))
	for _, t := range s.tools {
		out = append(out, ToolInfo{Name: t.Name, Description: t.Description, InputSchema: t.InputSchema})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func (s *Server) listResources() []ResourceInfo {
	out := make([]ResourceInfo, 0, len(s.resources))
	for _, r := range s.resources {
		out = append(out, ResourceInfo{URI: r.URI, Name: r.Name, Description: r.Description, MimeType: "application/json"})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].URI < out[j].URI })
	return out
}

func (s *Server) readResource(ctx context.Context, req JSONRPCRequest) Reply {
	var params struct {
		URI string `json:"uri"`
	}
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return failure(req.ID, InvalidParams, "Invalid read resource params", err.Error())
	}

	res, ok := s.resources[params.URI]
	if !ok {
		return failure(req.ID, InvalidParams, fmt.Sprintf("Resource not found: %s", params.URI), nil)
	}

	v, err := res.Read(ctx)
	if err != nil {
		s.logger.Error("failed to read resource", zap.String("uri", params.URI), zap.Error(err))
		return failure(req.ID, InternalError, "Failed to read resource", err.Error())
	}
	body, err := json.Marshal(v)
	if err != nil {
		return failure(req.ID, InternalError, "Failed to encode resource", err.Error())
	}

	return result(req.ID, ReadResourceResult{
		Contents: []ResourceContent{{URI: res.URI, MimeType: "application/json", Text: string(body)}},
	}, http.StatusOK)
}

// callTool reports domain errors inside the tool result so the client can show them
func (s *Server) callTool(ctx context.Context, req JSONRPCRequest) Reply {
	var params struct {
		Name      string          `json:"name"`
		Arguments json.RawMessage `json:"arguments,omitempty"`
	}
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return failure(req.ID, InvalidParams, "Invalid call tool params", err.Error())
	}

	tool, ok := s.tools[params.Name]
	if !ok {
		return failure(req.ID, InvalidParams, fmt.Sprintf("Tool not found: %s", params.Name), nil)
	}
	if len(params.Arguments) == 0 {
		params.Arguments = json.RawMessage("{}")
	}

	v, err := tool.Run(ctx, params.Arguments)
	if err != nil {
		appErr := errors.AsAppError(err)
		s.logger.Warn("tool failed", zap.String("tool", params.Name), zap.String("code", appErr.Code), zap.Error(err))
		return result(req.ID, CallToolResult{
			Content: []ToolResultContent{{Type: "text", Text: appErr.Code + ": " + appErr.Message}},
			IsError: true,
		}, http.StatusOK)
	}

	body, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return failure(req.ID, InternalError, "Failed to encode tool result", err.Error())
	}
	return result(req.ID, CallToolResult{
		Content: []ToolResultContent{{Type: "text", Text: string(body)}},
	}, http.StatusOK)
}
