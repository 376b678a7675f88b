package lambda

import (
	"encoding/base64"
	"net/http"
	"testing"

	"github.com/aws/aws-lambda-go/events"
)

func TestFromAPIGateway(t *testing.T) {
	event := events.APIGatewayProxyRequest{
		HTTPMethod:            http.MethodGet,
		Path:                  "/t/o/abc",
		Headers:               map[string]string{"user-agent": "Mail/1.0"},
		QueryStringParameters: map[string]string{"ch": "email"},
		PathParameters:        map[string]string{"token": "abc"},
	}
	event.RequestContext.Identity.SourceIP = "203.0.113.7"

	req, err := FromAPIGateway(event)
	if err != nil {
		t.Fatalf("FromAPIGateway() failed: %v", err)
	}

	if req.Headers["User-Agent"] != "Mail/1.0" {
		t.Errorf("Expected canonical User-Agent header, got %v", req.Headers)
	}
	if req.Headers["X-Forwarded-For"] != "203.0.113.7" {
		t.Errorf("Expected source IP fallback, got %s", req.Headers["X-Forwarded-For"])
	}
	if req.PathParams["token"] != "abc" || req.QueryParams["ch"] != "email" {
		t.Errorf("Unexpected params: %v %v", req.PathParams, req.QueryParams)
	}
}

func TestFromAPIGateway_Base64Body(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantErr bool
	}{
		{"valid", base64.StdEncoding.EncodeToString([]byte(`{"a":1}`)), false},
		{"invalid", "%%%", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, err := FromAPIGateway(events.APIGatewayProxyRequest{Body: tt.body, IsBase64Encoded: true})
			if tt.wantErr {
				if err == nil {
					t.Error("Expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("FromAPIGateway() failed: %v", err)
			}
			if string(req.Body) != `{"a":1}` {
				t.Errorf("Expected decoded body, got %s", req.Body)
			}
		})
	}
}

func TestResponse_ToAPIGateway(t *testing.T) {
	tests := []struct {
		name        string
		contentType string
		wantBase64  bool
	}{
		{"json", "application/json", false},
		{"no content type", "", false},
		{"gif", "image/gif", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := &Response{
				StatusCode: http.StatusOK,
				Headers:    map[string]string{"Content-Type": tt.contentType},
				Body:       []byte("GIF89a"),
			}

			got := resp.ToAPIGateway()
			if got.IsBase64Encoded != tt.wantBase64 {
				t.Errorf("Expected IsBase64Encoded %v, got %v", tt.wantBase64, got.IsBase64Encoded)
			}
			if tt.wantBase64 && got.Body != base64.StdEncoding.EncodeToString([]byte("GIF89a")) {
				t.Errorf("Unexpected encoded body %s", got.Body)
			}
			if !tt.wantBase64 && got.Body != "GIF89a" {
				t.Errorf("Expected plain body, got %s", got.Body)
			}
		})
	}
}
