package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	"go.uber.org/zap"

	"github.com/hirosato/finance-ledger/backend/internal/api/handlers"
	"github.com/hirosato/finance-ledger/backend/internal/api/middleware"
	"github.com/hirosato/finance-ledger/backend/internal/api/response"
	"github.com/hirosato/finance-ledger/backend/internal/app"
	envconfig "github.com/hirosato/finance-ledger/backend/internal/common/config"
)

// APIRequestHandler adapts the middleware chain to the Lambda proxy signature
type APIRequestHandler struct {
	handler middleware.APIGatewayHandler
	logger  *slog.Logger
}

func (h *APIRequestHandler) HandleRequest(ctx context.Context, request events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	// Handle CORS preflight
	if request.HTTPMethod == http.MethodOptions {
		return events.APIGatewayProxyResponse{
			StatusCode: http.StatusOK,
			Headers:    response.DefaultHeaders(),
		}, nil
	}
	return h.handler(ctx, h.logger, request)
}

func newZapLogger(config *envconfig.Config) (*zap.Logger, error) {
	if config.IsProd() {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	// Load configuration
	config, err := envconfig.LoadFromEnv()
	if err != nil {
		logger.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	zapLogger, err := newZapLogger(config)
	if err != nil {
		logger.Error("Failed to initialize zap logger", "error", err)
		os.Exit(1)
	}
	defer func() { _ = zapLogger.Sync() }()

	application, err := app.New(context.Background(), config, logger)
	if err != nil {
		logger.Error("Failed to initialize storage", "driver", config.StorageDriver, "error", err)
		os.Exit(1)
	}
	defer application.Close()

	router := handlers.NewHandler(application)
	handler := &APIRequestHandler{
		handler: middleware.Chain(router.Route,
			middleware.NewRecoveryMiddleware(),
			middleware.NewLoggingMiddleware(),
			middleware.NewOwnerMiddleware(config, zapLogger),
		),
		logger: logger,
	}

	logger.Info("API handler ready", "driver", config.StorageDriver, "environment", config.Environment)
	lambda.Start(handler.HandleRequest)
}
