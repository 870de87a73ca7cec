package middleware

import (
	"context"
	"strings"
	"time"

	"github.com/aws/aws-lambda-go/events"
	"go.uber.org/zap"
)

// LoggingMiddleware is a middleware for logging requests and responses
type LoggingMiddleware struct {
	// LogBodies adds request and response bodies to the log. Development only.
	LogBodies bool
}

// NewLoggingMiddleware creates a new logging middleware
func NewLoggingMiddleware(logBodies bool) LoggingMiddleware {
	return LoggingMiddleware{LogBodies: logBodies}
}

// Handle handles the logging middleware
func (m LoggingMiddleware) Handle(next APIGatewayHandler) APIGatewayHandler {
	return func(ctx context.Context, logger *zap.Logger, request events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
		startTime := time.Now()
		reqLogger := logger.With(
			zap.String("requestId", request.RequestContext.RequestID),
			zap.String("method", request.HTTPMethod),
			zap.String("path", request.Path))

		fields := []zap.Field{
			zap.Any("queryParameters", request.QueryStringParameters),
			zap.Any("headers", maskSensitiveHeaders(request.Headers)),
		}
		if m.LogBodies && request.Body != "" {
			fields = append(fields, zap.String("body", request.Body))
		}
		reqLogger.Info("request", fields...)

		response, err := next(ctx, reqLogger, request)

		fields = []zap.Field{
			zap.Int("status", response.StatusCode),
			zap.Duration("duration", time.Since(startTime)),
		}
		if err != nil {
			fields = append(fields, zap.Error(err))
		}
		if m.LogBodies && response.Body != "" {
			fields = append(fields, zap.String("body", response.Body))
		}
		reqLogger.Info("response", fields...)

		return response, err
	}
}

var sensitiveHeaders = []string{
	"authorization",
	"x-api-key",
	"cookie",
}

// maskSensitiveHeaders returns a copy of headers with credentials masked
func maskSensitiveHeaders(headers map[string]string) map[string]string {
	masked := make(map[string]string, len(headers))
	for k, v := range headers {
		masked[k] = v
		for _, s := range sensitiveHeaders {
			if strings.EqualFold(k, s) {
				masked[k] = "***"
				break
			}
		}
	}
	return masked
}
