package transport

import (
	"context"
	"encoding/json"
	"strconv"

	"github.com/aws/aws-lambda-go/events"

	"github.com/raywall/serverless-todo-api/pkg/todos"
)

type createTodoRequest struct {
	Name    string `json:"name"`
	DueDate string `json:"dueDate"`
}

type itemResponse struct {
	Item *todos.Item `json:"item"`
}

type listResponse struct {
	Items   []todos.Item `json:"items"`
	NextKey string       `json:"nextKey,omitempty"`
}

type uploadURLResponse struct {
	UploadURL string `json:"uploadUrl"`
}

// CreateTodo handles POST /todos.
func (h *Handler) CreateTodo() APIGatewayHandler {
	return h.wrap("create_todo", "OPTIONS,POST", func(ctx context.Context, principal string, req events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
		var body createTodoRequest
		if err := json.Unmarshal([]byte(req.Body), &body); err != nil {
			return h.respondError(400, "invalid JSON body"), nil
		}
		if body.Name == "" || body.DueDate == "" {
			return h.respondError(400, "name and dueDate are required"), nil
		}

		item, err := h.store.Create(ctx, principal, body.Name, body.DueDate)
		if err != nil {
			return h.domainError(err), nil
		}
		return h.respondJSON(201, itemResponse{Item: item}), nil
	})
}

// GetTodos handles GET /todos with limit and nextKey query parameters.
func (h *Handler) GetTodos() APIGatewayHandler {
	return h.wrap("get_todos", "OPTIONS,GET", func(ctx context.Context, principal string, req events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
		// An unparsable limit falls back to the default, like every other
		// out-of-range value: the clamp is silent.
		limit, _ := strconv.ParseInt(req.QueryStringParameters["limit"], 10, 32)

		items, nextKey, err := h.store.List(ctx, principal, int32(limit), req.QueryStringParameters["nextKey"])
		if err != nil {
			return h.domainError(err), nil
		}
		return h.respondJSON(200, listResponse{Items: items, NextKey: nextKey}), nil
	})
}

// UpdateTodo handles PATCH /todos/{todoId}.
func (h *Handler) UpdateTodo() APIGatewayHandler {
	return h.wrap("update_todo", "OPTIONS,PATCH", func(ctx context.Context, principal string, req events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
		todoID := req.PathParameters["todoId"]
		if todoID == "" {
			return h.respondError(400, "missing todoId"), nil
		}

		var patch todos.Patch
		if err := json.Unmarshal([]byte(req.Body), &patch); err != nil {
			return h.respondError(400, "invalid JSON body"), nil
		}

		item, err := h.store.Update(ctx, principal, todoID, patch)
		if err != nil {
			return h.domainError(err), nil
		}
		return h.respondJSON(200, itemResponse{Item: item}), nil
	})
}

// DeleteTodo handles DELETE /todos/{todoId}. Deletion is idempotent, so
// the response is 204 whether or not the item existed.
func (h *Handler) DeleteTodo() APIGatewayHandler {
	return h.wrap("delete_todo", "OPTIONS,DELETE", func(ctx context.Context, principal string, req events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
		todoID := req.PathParameters["todoId"]
		if todoID == "" {
			return h.respondError(400, "missing todoId"), nil
		}

		if err := h.store.Delete(ctx, principal, todoID); err != nil {
			return h.domainError(err), nil
		}
		return h.respondJSON(204, nil), nil
	})
}

// GenerateUploadURL handles POST /todos/{todoId}/attachment. The expected
// public URL is persisted before any upload happens; if the client
// abandons the upload, attachmentUrl points at an object that was never
// written.
func (h *Handler) GenerateUploadURL() APIGatewayHandler {
	return h.wrap("generate_upload_url", "OPTIONS,POST", func(ctx context.Context, principal string, req events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
		todoID := req.PathParameters["todoId"]
		if todoID == "" {
			return h.respondError(400, "missing todoId"), nil
		}

		// Presigning is local; the conditional write below is both the
		// existence check and the persistence step, keeping the handler at
		// a single storage round-trip.
		uploadURL, publicURL, err := h.issuer.IssueUploadURL(ctx, todoID)
		if err != nil {
			return h.domainError(err), nil
		}

		if err := h.store.SetAttachmentURL(ctx, principal, todoID, publicURL); err != nil {
			return h.domainError(err), nil
		}
		return h.respondJSON(200, uploadURLResponse{UploadURL: uploadURL}), nil
	})
}
