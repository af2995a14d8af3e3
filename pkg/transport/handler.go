package transport

import (
	"context"
	"time"

	"github.com/aws/aws-lambda-go/events"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/raywall/serverless-todo-api/pkg/metrics"
	"github.com/raywall/serverless-todo-api/pkg/todos"
)

// HeaderCorrelationID propagates a request id across the client, the
// functions and the logs.
const HeaderCorrelationID = "X-Correlation-Id"

// UploadURLIssuer is the slice of the attachments issuer the handlers use.
type UploadURLIssuer interface {
	IssueUploadURL(ctx context.Context, todoID string) (uploadURL, publicURL string, err error)
}

// Handler is the full set of HTTP operations over the store and the
// upload URL issuer. One instance is shared by every invocation of a
// function process.
type Handler struct {
	store   todos.Store
	issuer  UploadURLIssuer
	origin  string
	metrics metrics.Provider
}

// New builds the handler set. origin is the exact CORS origin allowed on
// every response.
func New(store todos.Store, issuer UploadURLIssuer, origin string, provider metrics.Provider) *Handler {
	if provider == nil {
		provider = &metrics.NoopProvider{}
	}
	return &Handler{
		store:   store,
		issuer:  issuer,
		origin:  origin,
		metrics: provider,
	}
}

// APIGatewayHandler is the signature lambda.Start expects for proxy
// integrations.
type APIGatewayHandler func(ctx context.Context, req events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error)

// operation is one authenticated route body: it receives the resolved
// principal and produces a complete response.
type operation func(ctx context.Context, principal string, req events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error)

// wrap applies the shared request plumbing around an operation: the
// correlation-id logger, the OPTIONS short-circuit, principal resolution,
// CORS headers on every response, and the completion log and metric.
func (h *Handler) wrap(route, allowMethods string, op operation) APIGatewayHandler {
	return func(ctx context.Context, req events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
		start := time.Now()

		corrID := req.Headers[HeaderCorrelationID]
		if corrID == "" {
			// API Gateway may normalize header names to lowercase.
			corrID = req.Headers["x-correlation-id"]
		}
		if corrID == "" {
			corrID = uuid.NewString()
		}

		logger := log.With().Str("correlation_id", corrID).Str("route", route).Logger()
		ctx = logger.WithContext(ctx)

		var response events.APIGatewayProxyResponse
		if req.HTTPMethod == "OPTIONS" {
			response = events.APIGatewayProxyResponse{StatusCode: 204}
		} else if principal := principalID(req); principal == "" {
			response = h.respondError(401, "Unauthorized")
		} else {
			var err error
			response, err = op(ctx, principal, req)
			if err != nil {
				logger.Error().Err(err).Msg("unhandled handler error")
				response = h.respondError(500, "internal server error")
			}
		}

		if response.Headers == nil {
			response.Headers = make(map[string]string)
		}
		for k, v := range h.corsHeaders(allowMethods) {
			response.Headers[k] = v
		}
		response.Headers[HeaderCorrelationID] = corrID

		logger.Info().
			Str("method", req.HTTPMethod).
			Str("path", req.Path).
			Int("status", response.StatusCode).
			Int64("latency_ms", time.Since(start).Milliseconds()).
			Msg("request completed")

		_ = h.metrics.Count("request", 1, []string{
			"route:" + route,
			"status:" + statusClass(response.StatusCode),
		})

		return response, nil
	}
}

// principalID resolves the caller's identity from the enforcement layer's
// output, covering both REST custom authorizers (principalId) and HTTP
// API JWT authorizers (claims.sub).
func principalID(req events.APIGatewayProxyRequest) string {
	authorizer := req.RequestContext.Authorizer
	if authorizer == nil {
		return ""
	}

	if principal, ok := authorizer["principalId"].(string); ok && principal != "" {
		return principal
	}

	if claims, ok := authorizer["claims"].(map[string]any); ok {
		if sub, ok := claims["sub"].(string); ok {
			return sub
		}
	}
	if jwtAuth, ok := authorizer["jwt"].(map[string]any); ok {
		if claims, ok := jwtAuth["claims"].(map[string]any); ok {
			if sub, ok := claims["sub"].(string); ok {
				return sub
			}
		}
	}
	return ""
}

func statusClass(code int) string {
	switch {
	case code >= 500:
		return "5xx"
	case code >= 400:
		return "4xx"
	default:
		return "2xx"
	}
}
