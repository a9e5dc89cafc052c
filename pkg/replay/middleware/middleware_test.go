package middleware

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/cbodonnell/broadside/pkg/log"
	"github.com/stretchr/testify/assert"
)

func TestTokenMiddleware(t *testing.T) {
	logger := log.New(io.Discard, "", 0, log.LogLevelTrace)
	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	tests := []struct {
		name   string
		token  string
		header string
		want   int
	}{
		{name: "no token configured", token: "", header: "", want: http.StatusNoContent},
		{name: "missing header", token: "secret", header: "", want: http.StatusUnauthorized},
		{name: "wrong scheme", token: "secret", header: "Basic secret", want: http.StatusUnauthorized},
		{name: "wrong token", token: "secret", header: "Bearer nope", want: http.StatusUnauthorized},
		{name: "valid token", token: "secret", header: "Bearer secret", want: http.StatusNoContent},
		{name: "scheme is case insensitive", token: "secret", header: "bearer secret", want: http.StatusNoContent},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/sessions", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			NewTokenMiddleware(tt.token, logger)(ok).ServeHTTP(rec, req)
			assert.Equal(t, tt.want, rec.Code)
		})
	}
}

func TestLoggingMiddlewarePassesStatus(t *testing.T) {
	logger := log.New(io.Discard, "", 0, log.LogLevelTrace)
	h := NewLoggingMiddleware(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusTeapot)
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusTeapot, rec.Code)
}
