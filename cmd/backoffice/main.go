package main

import (
	"context"
	"log"
	"runtime"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/cofinco/backoffice/internal/api/handlers"
	"github.com/cofinco/backoffice/internal/api/middleware"
	"github.com/cofinco/backoffice/internal/app"
	envconfig "github.com/cofinco/backoffice/internal/common/config"
	"github.com/cofinco/backoffice/internal/common/logging"
)

var (
	handle middleware.APIGatewayHandler
	logger *zap.Logger
	config *envconfig.Config
)

func init() {
	// .env is optional; Lambda gets its environment from the function config
	_ = godotenv.Load()

	var err error
	config, err = envconfig.LoadFromEnv()
	if err != nil {
		log.Fatalf("Failed to load Env config: %v", err)
	}
	logger = logging.Must(config.Environment)

	a, err := app.New(context.Background(), config, logger)
	if err != nil {
		logger.Fatal("failed to initialise backoffice", zap.Error(err))
	}

	handle = middleware.Chain(
		handlers.NewBackofficeHandler(a.Services).Handle,
		middleware.NewLoggingMiddleware(config.Environment == "dev"),
		middleware.NewRecoveryMiddleware(),
	)
}

func handler(ctx context.Context, request events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	if config.Environment == "dev" {
		var m runtime.MemStats
		runtime.ReadMemStats(&m)
		logger.Debug("backoffice - Memory Status", zap.Uint64("MB", m.Alloc/1024/1024))
	}
	return handle(ctx, logger, request)
}

func main() {
	defer logger.Sync()
	lambda.Start(handler)
}
