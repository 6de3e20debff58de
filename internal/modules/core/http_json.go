package core

import (
	"context"
	"encoding/json"
	"net/http"

	"go.uber.org/zap"
)

func RequestBody[TRequest any](r *http.Request) (TRequest, error) {
	var request TRequest
	err := json.NewDecoder(r.Body).Decode(&request)
	return request, err
}

func WriteOK(w http.ResponseWriter, r *http.Request, body interface{}) {
	WriteResponse(w, r, 200, body)
}

func WriteBadRequest(w http.ResponseWriter, r *http.Request, body interface{}) {
	WriteResponse(w, r, 400, body)
}

// WriteCommandError maps a CommandError onto its transport status code.
// Anything that is not a CommandError is treated as an internal failure.
func WriteCommandError(w http.ResponseWriter, r *http.Request, err error) {
	statusCode := 500
	body := interface{}(err)

	if commandErr, ok := err.(CommandError); ok {
		statusCode = commandErr.StatusCode
		body = errorBody(commandErr)
	}

	WriteResponse(w, r, statusCode, body)
}

type errorResponse struct {
	Detail string `json:"detail"`
}

func errorBody(err CommandError) errorResponse {
	if err.Reason != nil {
		return errorResponse{Detail: *err.Reason}
	}

	if payload, ok := err.Payload.(error); ok {
		return errorResponse{Detail: payload.Error()}
	}

	return errorResponse{Detail: "request failed"}
}

func WriteResponse(w http.ResponseWriter, r *http.Request, statusCode int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	writeBodyIfPresent(r.Context(), w, body)
}

func writeBodyIfPresent(ctx context.Context, w http.ResponseWriter, body interface{}) {
	if body == nil {
		return
	}

	// Errors marshal into empty objects, so unwrap them into a
	// detail message first.
	if err, ok := body.(error); ok {
		body = errorResponse{Detail: err.Error()}
	}

	responseBytes, err := json.Marshal(body)
	if err != nil {
		LogError(ctx, "failed to serialize response body", zap.Error(err))
		return
	}

	if _, err := w.Write(responseBytes); err != nil {
		LogError(ctx, "failed to write response", zap.Error(err))
	}
}
