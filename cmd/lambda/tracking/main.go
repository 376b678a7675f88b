package main

import (
	"context"
	"net/http"
	"strings"

	"lanka-invoice-api/internal/handlers"
	"lanka-invoice-api/pkg/lambda"

	"github.com/aws/aws-lambda-go/events"
	awslambda "github.com/aws/aws-lambda-go/lambda"
	"github.com/sirupsen/logrus"
)

// Serves the public open pixel and click-through routes. The database
// lives on EFS and the container is reused across warm invocations.
func handler(ctx context.Context, event events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	req, err := lambda.FromAPIGateway(event)
	if err != nil {
		return lambda.InternalError(), nil
	}

	container, err := lambda.GetConnectionManager().GetContainer(ctx)
	if err != nil {
		logrus.WithError(err).Error("Failed to get container")
		return lambda.InternalError(), nil
	}

	tracking := handlers.NewTrackingHandler(container.Services.TrackingService, container.Logger)

	if req.PathParams["token"] == "" {
		if i := strings.LastIndex(req.Path, "/"); i >= 0 {
			req.PathParams = map[string]string{"token": req.Path[i+1:]}
		}
	}

	var resp *lambda.Response

	switch {
	case req.Method == http.MethodGet && strings.HasPrefix(req.Path, "/t/o/"):
		resp, err = tracking.HandleOpen(ctx, req)
	case req.Method == http.MethodGet && strings.HasPrefix(req.Path, "/t/c/"):
		resp, err = tracking.HandleClick(ctx, req)
	default:
		resp = lambda.NotFound()
	}

	if err != nil {
		container.Logger.WithError(err).Error("Tracking handler failed")
		return lambda.InternalError(), nil
	}

	return resp.ToAPIGateway(), nil
}

func main() {
	awslambda.Start(handler)
}
