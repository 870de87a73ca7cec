package mcp

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/aws/aws-lambda-go/events"
	"go.uber.org/zap"

	"github.com/cofinco/backoffice/internal/api/response"
)

// HandleGateway serves JSON-RPC over API Gateway. Only POST / is accepted.
func (s *Server) HandleGateway(ctx context.Context, logger *zap.Logger, request events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	if request.HTTPMethod == http.MethodOptions {
		return response.Preflight(), nil
	}
	if request.Path != "/" && request.Path != "" {
		return response.NotFound("Endpoint not found", request.RequestContext.RequestID), nil
	}
	if request.HTTPMethod != http.MethodPost {
		resp := response.JSON(http.StatusMethodNotAllowed, failure(nil, InvalidRequest, "Method Not Allowed", nil).Response)
		resp.Headers["Allow"] = http.MethodPost
		return resp, nil
	}

	var req JSONRPCRequest
	if err := json.Unmarshal([]byte(request.Body), &req); err != nil {
		logger.Warn("failed to parse JSON-RPC request", zap.Error(err))
		return response.JSON(http.StatusOK, failure(nil, ParseError, "Parse error", err.Error()).Response), nil
	}

	reply := s.Handle(ctx, req)
	return response.JSON(reply.StatusCode, reply.Response), nil
}
