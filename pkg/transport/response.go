package transport

import (
	"encoding/json"
	"errors"
	"strings"

	"github.com/aws/aws-lambda-go/events"
	"github.com/rs/zerolog/log"

	"github.com/raywall/serverless-todo-api/pkg/todos"
)

// corsHeaders builds the CORS header set attached to every response. The
// origin is an exact match against the configured web origin, never a
// wildcard.
func (h *Handler) corsHeaders(allowMethods string) map[string]string {
	return map[string]string{
		"Access-Control-Allow-Origin":      h.origin,
		"Access-Control-Allow-Credentials": "false",
		"Access-Control-Allow-Headers":     "Content-Type,Authorization,X-Amz-Date,X-Api-Key,X-Amz-Security-Token",
		"Access-Control-Allow-Methods":     allowMethods,
	}
}

// respondJSON marshals the payload into a proxy response. A nil payload
// produces an empty body for 204-style responses.
func (h *Handler) respondJSON(status int, payload any) events.APIGatewayProxyResponse {
	response := events.APIGatewayProxyResponse{
		StatusCode: status,
		Headers:    map[string]string{"Content-Type": "application/json"},
	}
	if payload == nil {
		return response
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return h.respondError(500, "internal server error")
	}
	response.Body = string(body)
	return response
}

type errorBody struct {
	Error string `json:"error"`
}

// respondError emits the uniform {"error": message} body. The message is
// the only detail a client ever sees.
func (h *Handler) respondError(status int, message string) events.APIGatewayProxyResponse {
	body, _ := json.Marshal(errorBody{Error: message})
	return events.APIGatewayProxyResponse{
		StatusCode: status,
		Headers:    map[string]string{"Content-Type": "application/json"},
		Body:       string(body),
	}
}

// domainError maps store and issuer failures onto status codes. Anything
// outside the domain taxonomy is an internal error and its detail stays
// in the logs.
func (h *Handler) domainError(err error) events.APIGatewayProxyResponse {
	switch {
	case errors.Is(err, todos.ErrNotFound):
		return h.respondError(404, "item not found")
	case errors.Is(err, todos.ErrValidation), errors.Is(err, todos.ErrBadCursor):
		return h.respondError(400, clientMessage(err))
	default:
		log.Error().Err(err).Msg("storage operation failed")
		return h.respondError(500, "internal server error")
	}
}

// clientMessage strips the package prefix from a domain error so the
// response body reads as plain English.
func clientMessage(err error) string {
	return strings.TrimPrefix(err.Error(), "todos: ")
}
