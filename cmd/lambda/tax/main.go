package main

import (
	"context"
	"net/http"

	"lanka-invoice-api/internal/config"
	"lanka-invoice-api/internal/handlers"
	"lanka-invoice-api/pkg/lambda"

	"github.com/aws/aws-lambda-go/events"
	awslambda "github.com/aws/aws-lambda-go/lambda"
	"github.com/sirupsen/logrus"
)

// The tax endpoints are stateless, so this function needs no database.
// Bearer tokens are checked by the API Gateway authorizer.
var taxHandler *handlers.TaxHandler

func init() {
	cfg, err := config.GetOptimizedConfig()
	if err != nil {
		logrus.WithError(err).Fatal("Failed to load configuration")
	}

	logger := cfg.Logging.NewLogger()

	taxService, err := cfg.Tax.CreateTaxService(logger)
	if err != nil {
		logger.WithError(err).Fatal("Failed to create tax service")
	}

	taxHandler = handlers.NewTaxHandler(taxService, logger)
}

func handler(ctx context.Context, event events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	req, err := lambda.FromAPIGateway(event)
	if err != nil {
		return lambda.InternalError(), nil
	}

	var resp *lambda.Response

	switch {
	case req.Method == http.MethodPost && req.Path == "/api/v1/tax/calculate":
		resp, err = taxHandler.HandleCalculate(ctx, req)
	case req.Method == http.MethodPost && req.Path == "/api/v1/tax/validate":
		resp, err = taxHandler.HandleValidate(ctx, req)
	case req.Method == http.MethodGet && req.Path == "/api/v1/tax/info":
		resp, err = taxHandler.HandleInfo(ctx, req)
	default:
		resp = lambda.NotFound()
	}

	if err != nil {
		return lambda.InternalError(), nil
	}

	return resp.ToAPIGateway(), nil
}

func main() {
	awslambda.Start(handler)
}
