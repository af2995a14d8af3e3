package transport

import (
	"io"
	"net/http"

	"github.com/aws/aws-lambda-go/events"
	"github.com/gorilla/mux"
	"github.com/rs/zerolog/log"

	"github.com/raywall/serverless-todo-api/pkg/auth"
)

// DevServer exposes the lambda handlers over plain HTTP for local client
// development. It plays the role of both the gateway and the platform's
// enforcement layer: the token verifier runs inline and its principal is
// injected into the authorizer context, exactly as the deployed gateway
// would do.
type DevServer struct {
	handler  *Handler
	verifier *auth.Verifier
	addr     string
}

// NewDevServer wires the dev server. verifier may be nil, in which case
// every request is anonymous and the handlers respond 401.
func NewDevServer(handler *Handler, verifier *auth.Verifier, addr string) *DevServer {
	return &DevServer{
		handler:  handler,
		verifier: verifier,
		addr:     addr,
	}
}

// Router builds the route table mirroring the deployed API.
func (s *DevServer) Router() *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/todos", s.adapt(s.handler.CreateTodo())).Methods("POST", "OPTIONS")
	r.HandleFunc("/todos", s.adapt(s.handler.GetTodos())).Methods("GET")
	r.HandleFunc("/todos/{todoId}", s.adapt(s.handler.UpdateTodo())).Methods("PATCH", "OPTIONS")
	r.HandleFunc("/todos/{todoId}", s.adapt(s.handler.DeleteTodo())).Methods("DELETE")
	r.HandleFunc("/todos/{todoId}/attachment", s.adapt(s.handler.GenerateUploadURL())).Methods("POST", "OPTIONS")
	return r
}

// ListenAndServe runs the server until the listener fails or the process
// exits.
func (s *DevServer) ListenAndServe() error {
	log.Info().Str("addr", s.addr).Msg("dev server listening")
	return http.ListenAndServe(s.addr, s.Router())
}

// adapt translates an http.Request into the API Gateway event shape the
// handlers consume, and writes the proxy response back.
func (s *DevServer) adapt(fn APIGatewayHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(r.Body)
		if err != nil {
			http.Error(w, `{"error":"unreadable body"}`, http.StatusBadRequest)
			return
		}

		headers := make(map[string]string, len(r.Header))
		for name := range r.Header {
			headers[name] = r.Header.Get(name)
		}

		query := make(map[string]string)
		for name, values := range r.URL.Query() {
			if len(values) > 0 {
				query[name] = values[0]
			}
		}

		event := events.APIGatewayProxyRequest{
			HTTPMethod:            r.Method,
			Path:                  r.URL.Path,
			Headers:               headers,
			QueryStringParameters: query,
			PathParameters:        mux.Vars(r),
			Body:                  string(body),
			RequestContext: events.APIGatewayProxyRequestContext{
				Authorizer: s.authorize(r),
			},
		}

		response, err := fn(r.Context(), event)
		if err != nil {
			http.Error(w, `{"error":"internal server error"}`, http.StatusInternalServerError)
			return
		}

		for k, v := range response.Headers {
			w.Header().Set(k, v)
		}
		w.WriteHeader(response.StatusCode)
		_, _ = io.WriteString(w, response.Body)
	}
}

// authorize replicates the gateway's authorization step: a verified token
// yields the principalId the handlers expect, anything else yields no
// authorizer output at all.
func (s *DevServer) authorize(r *http.Request) map[string]any {
	if s.verifier == nil || r.Method == "OPTIONS" {
		return nil
	}

	principal, err := s.verifier.VerifyHeader(r.Context(), r.Header.Get("Authorization"))
	if err != nil {
		return nil
	}
	return map[string]any{"principalId": principal}
}
