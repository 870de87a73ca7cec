package main

import (
	"context"
	"log"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/cofinco/backoffice/internal/api/mcp"
	"github.com/cofinco/backoffice/internal/api/middleware"
	"github.com/cofinco/backoffice/internal/app"
	envconfig "github.com/cofinco/backoffice/internal/common/config"
	"github.com/cofinco/backoffice/internal/common/logging"
)

func main() {
	_ = godotenv.Load()

	config, err := envconfig.LoadFromEnv()
	if err != nil {
		log.Fatalf("Failed to load Env config: %v", err)
	}
	logger := logging.Must(config.Environment)
	defer logger.Sync()

	a, err := app.New(context.Background(), config, logger)
	if err != nil {
		logger.Fatal("failed to initialise backoffice", zap.Error(err))
	}
	defer a.Close()

	server := mcp.NewServer(logger)
	mcp.RegisterBackoffice(server, a.Services)

	handle := middleware.Chain(server.HandleGateway,
		middleware.NewLoggingMiddleware(config.Environment == "dev"),
		middleware.NewRecoveryMiddleware(),
	)

	lambda.Start(func(ctx context.Context, request events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
		return handle(ctx, logger, request)
	})
}
