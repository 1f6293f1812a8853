package response_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"profitly/shared/failure"
	"profitly/transport/http/response"
)

func TestResponses(t *testing.T) {
	tests := []struct {
		name  string
		write func(w http.ResponseWriter)
		code  int
		body  string
	}{
		{
			name:  "message",
			write: func(w http.ResponseWriter) { response.WithMessage(w, http.StatusCreated, "done") },
			code:  http.StatusCreated,
			body:  `{"message":"done"}`,
		},
		{
			name:  "json",
			write: func(w http.ResponseWriter) { response.WithJSON(w, http.StatusOK, map[string]string{"status": "UP"}) },
			code:  http.StatusOK,
			body:  `{"data":{"status":"UP"}}`,
		},
		{
			name:  "failure error",
			write: func(w http.ResponseWriter) { response.WithError(w, failure.RouteNotFound) },
			code:  http.StatusNotFound,
			body:  `{"error":"resource not found"}`,
		},
		{
			name:  "rate limited",
			write: response.WithRequestLimitExceeded,
			code:  http.StatusTooManyRequests,
			body:  `{"message":"REQUEST LIMIT EXCEEDED"}`,
		},
		{
			name:  "shutting down",
			write: response.WithPreparingShutdown,
			code:  http.StatusServiceUnavailable,
			body:  `{"message":"SERVER PREPARING TO SHUT DOWN"}`,
		},
		{
			name:  "not ready",
			write: response.WithNotReady,
			code:  http.StatusServiceUnavailable,
			body:  `{"message":"SERVER NOT READY"}`,
		},
		{
			name:  "unhealthy",
			write: response.WithUnhealthy,
			code:  http.StatusServiceUnavailable,
			body:  `{"message":"SERVER UNHEALTHY"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			recorder := httptest.NewRecorder()

			tt.write(recorder)

			assert.Equal(t, tt.code, recorder.Code)
			assert.Equal(t, "application/json", recorder.Header().Get("Content-Type"))
			assert.JSONEq(t, tt.body, recorder.Body.String())
		})
	}
}
