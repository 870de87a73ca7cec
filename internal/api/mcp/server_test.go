package mcp

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/aws/aws-lambda-go/events"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/cofinco/backoffice/internal/api/handlers"
	"github.com/cofinco/backoffice/internal/domain/account"
	"github.com/cofinco/backoffice/internal/domain/audit"
	"github.com/cofinco/backoffice/internal/domain/document"
	"github.com/cofinco/backoffice/internal/domain/ledger"
)

func newTestServer() *Server {
	session := document.NewSession(document.NewJSONRepository(document.NewMemoryStorage()))
	logger := zap.NewNop()
	s := NewServer(logger)
	RegisterBackoffice(s, handlers.Services{
		Accounts: account.NewService(session, logger),
		Ledger:   ledger.NewService(session, logger, ledger.Config{}),
		Audit:    audit.NewService(session),
	})
	return s
}

func rpc(method string, params interface{}) JSONRPCRequest {
	req := JSONRPCRequest{JSONRPC: "2.0", ID: json.RawMessage(`1`), Method: method}
	if params != nil {
		raw, _ := json.Marshal(params)
		req.Params = raw
	}
	return req
}

func TestServerProtocol(t *testing.T) {
	s := newTestServer()
	ctx := context.Background()

	t.Run("initialize", func(t *testing.T) {
		reply := s.Handle(ctx, rpc("initialize", map[string]any{"protocolVersion": "2024-11-05"}))
		require.Nil(t, reply.Response.Error)
		res, ok := reply.Response.Result.(InitializeResult)
		require.True(t, ok)
		assert.Equal(t, "backoffice-mcp-server", res.ServerInfo.Name)
	})

	t.Run("initialized notification is accepted", func(t *testing.T) {
		assert.Equal(t, http.StatusAccepted, s.Handle(ctx, rpc("notifications/initialized", nil)).StatusCode)
	})

	t.Run("unknown method", func(t *testing.T) {
		reply := s.Handle(ctx, rpc("prompts/list", nil))
		require.NotNil(t, reply.Response.Error)
		assert.Equal(t, MethodNotFound, reply.Response.Error.Code)
	})

	t.Run("lists are sorted", func(t *testing.T) {
		tools := s.listTools()
		require.Len(t, tools, 2)
		assert.Equal(t, "list_accounts", tools[0].Name)
		assert.Equal(t, "record_operation", tools[1].Name)

		resources := s.listResources()
		require.Len(t, resources, 3)
		assert.Equal(t, "backoffice://accounting/balance", resources[0].URI)
	})

	t.Run("unknown tool and resource", func(t *testing.T) {
		reply := s.Handle(ctx, rpc("tools/call", map[string]any{"name": "delete_everything"}))
		require.NotNil(t, reply.Response.Error)
		assert.Equal(t, InvalidParams, reply.Response.Error.Code)

		reply = s.Handle(ctx, rpc("resources/read", map[string]any{"uri": "backoffice://nope"}))
		require.NotNil(t, reply.Response.Error)
	})
}

func TestRecordOperationTool(t *testing.T) {
	s := newTestServer()
	ctx := context.Background()

	reply := s.Handle(ctx, rpc("tools/call", map[string]any{
		"name": "record_operation",
		"arguments": map[string]any{
			"agence": "AG01", "type": "Contribution tontine", "produit": "Tontine hebdo",
			"montant": "2500", "acteur": "terrain1", "client": "061234567",
		},
	}))
	require.Nil(t, reply.Response.Error)
	res := reply.Response.Result.(CallToolResult)
	assert.False(t, res.IsError)
	assert.Contains(t, res.Content[0].Text, "Tontine")

	reply = s.Handle(ctx, rpc("resources/read", map[string]any{"uri": "backoffice://accounting/balance"}))
	require.Nil(t, reply.Response.Error)
	content := reply.Response.Result.(ReadResourceResult).Contents[0]

	var tb struct {
		Rows   []ledger.BalanceRow `json:"rows"`
		Closes bool                `json:"closes"`
	}
	require.NoError(t, json.Unmarshal([]byte(content.Text), &tb))
	assert.True(t, tb.Closes)
	assert.Len(t, tb.Rows, 2)

	t.Run("domain errors are tool errors", func(t *testing.T) {
		reply := s.Handle(ctx, rpc("tools/call", map[string]any{
			"name":      "record_operation",
			"arguments": map[string]any{"agence": "AG01"},
		}))
		require.Nil(t, reply.Response.Error)
		res := reply.Response.Result.(CallToolResult)
		assert.True(t, res.IsError)
		assert.Contains(t, res.Content[0].Text, "MISSING_FIELD")
	})
}

func TestListAccountsTool(t *testing.T) {
	s := newTestServer()

	reply := s.Handle(context.Background(), rpc("tools/call", map[string]any{
		"name":      "list_accounts",
		"arguments": map[string]any{"status": "closed"},
	}))
	res := reply.Response.Result.(CallToolResult)
	assert.True(t, res.IsError)
	assert.Contains(t, res.Content[0].Text, "VALIDATION_ERROR")

	reply = s.Handle(context.Background(), rpc("tools/call", map[string]any{"name": "list_accounts"}))
	assert.False(t, reply.Response.Result.(CallToolResult).IsError)
}

func TestHandleGateway(t *testing.T) {
	s := newTestServer()
	ctx := context.Background()

	resp, err := s.HandleGateway(ctx, zap.NewNop(), events.APIGatewayProxyRequest{
		HTTPMethod: http.MethodPost,
		Path:       "/",
		Body:       `{"jsonrpc":"2.0","id":7,"method":"ping"}`,
	})
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"jsonrpc":"2.0","id":7,"result":{}}`, resp.Body)

	resp, err = s.HandleGateway(ctx, zap.NewNop(), events.APIGatewayProxyRequest{HTTPMethod: http.MethodGet, Path: "/"})
	require.NoError(t, err)
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
	assert.Equal(t, "POST", resp.Headers["Allow"])

	resp, err = s.HandleGateway(ctx, zap.NewNop(), events.APIGatewayProxyRequest{HTTPMethod: http.MethodPost, Path: "/", Body: "{"})
	require.NoError(t, err)
	assert.Contains(t, resp.Body, `"code":-32700`)
}
