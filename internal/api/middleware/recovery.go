package middleware

import (
	"context"
	"fmt"
	"runtime/debug"

	"github.com/aws/aws-lambda-go/events"
	"go.uber.org/zap"

	"github.com/cofinco/backoffice/internal/api/response"
	"github.com/cofinco/backoffice/internal/domain/errors"
)

// RecoveryMiddleware turns panics and returned errors into error responses
type RecoveryMiddleware struct{}

// NewRecoveryMiddleware creates a new recovery middleware
func NewRecoveryMiddleware() RecoveryMiddleware {
	return RecoveryMiddleware{}
}

// Handle handles the recovery middleware
func (m RecoveryMiddleware) Handle(next APIGatewayHandler) APIGatewayHandler {
	return func(ctx context.Context, logger *zap.Logger, request events.APIGatewayProxyRequest) (resp events.APIGatewayProxyResponse, err error) {
		requestID := request.RequestContext.RequestID

		defer func() {
			if r := recover(); r != nil {
				logger.Error("panic while handling request",
					zap.Any("panic", r),
					zap.ByteString("stack", debug.Stack()))
				resp = response.Error(errors.NewInternalError("an unexpected error occurred", fmt.Errorf("panic: %v", r)), requestID)
				err = nil
			}
		}()

		resp, err = next(ctx, logger, request)
		if err != nil {
			appErr := errors.AsAppError(err)
			if appErr.StatusCode >= 500 {
				logger.Error("request failed", zap.String("code", appErr.Code), zap.Error(err))
			} else {
				logger.Info("request rejected", zap.String("code", appErr.Code), zap.String("message", appErr.Message))
			}
			return response.FromError(err, requestID), nil
		}
		return resp, nil
	}
}
