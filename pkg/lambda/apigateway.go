package lambda

import (
	"encoding/base64"
	"fmt"
	"net/http"
	"strings"

	"github.com/aws/aws-lambda-go/events"
)

// FromAPIGateway converts an API Gateway proxy event. Header names are
// canonicalized so handlers can look them up as e.g. "User-Agent".
func FromAPIGateway(event events.APIGatewayProxyRequest) (*Request, error) {
	body := []byte(event.Body)
	if event.IsBase64Encoded {
		decoded, err := base64.StdEncoding.DecodeString(event.Body)
		if err != nil {
			return nil, fmt.Errorf("failed to decode request body: %w", err)
		}
		body = decoded
	}

	headers := make(map[string]string, len(event.Headers))
	for key, value := range event.Headers {
		headers[http.CanonicalHeaderKey(key)] = value
	}
	if headers["X-Forwarded-For"] == "" && event.RequestContext.Identity.SourceIP != "" {
		headers["X-Forwarded-For"] = event.RequestContext.Identity.SourceIP
	}

	return &Request{
		Method:      event.HTTPMethod,
		Path:        event.Path,
		Headers:     headers,
		QueryParams: event.QueryStringParameters,
		Body:        body,
		PathParams:  event.PathParameters,
	}, nil
}

// ToAPIGateway converts a response for API Gateway. Non-text bodies are
// base64 encoded.
func (r *Response) ToAPIGateway() events.APIGatewayProxyResponse {
	resp := events.APIGatewayProxyResponse{
		StatusCode: r.StatusCode,
		Headers:    r.Headers,
	}

	if isText(r.Headers["Content-Type"]) {
		resp.Body = string(r.Body)
	} else {
		resp.Body = base64.StdEncoding.EncodeToString(r.Body)
		resp.IsBase64Encoded = true
	}

	return resp
}

// NotFound is returned for routes a function does not serve
func NotFound() *Response {
	return &Response{
		StatusCode: http.StatusNotFound,
		Headers:    map[string]string{"Content-Type": "application/json"},
		Body:       []byte(`{"error":"Not found"}`),
	}
}

// InternalError is returned when a handler fails without a response
func InternalError() events.APIGatewayProxyResponse {
	return events.APIGatewayProxyResponse{
		StatusCode: http.StatusInternalServerError,
		Headers:    map[string]string{"Content-Type": "application/json"},
		Body:       `{"error":"Internal server error"}`,
	}
}

func isText(contentType string) bool {
	if contentType == "" {
		return true
	}
	return strings.HasPrefix(contentType, "text/") || strings.Contains(contentType, "json")
}
