package httputil

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "idflow/pkg/domain-errors"
)

type plainRequest struct {
	InterviewID string `json:"interviewId"`
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func decodeErrorBody(t *testing.T, w *httptest.ResponseRecorder) ErrorResponse {
	t.Helper()
	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func TestDecodeJSON(t *testing.T) {
	t.Run("decodes valid body", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodPost, "/", bytes.NewBufferString(`{"interviewId":"abc"}`))
		w := httptest.NewRecorder()

		req, ok := DecodeJSON[plainRequest](w, r, discardLogger(), context.Background(), "req-1")

		require.True(t, ok)
		assert.Equal(t, "abc", req.InterviewID)
	})

	t.Run("rejects malformed body with 400 envelope", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodPost, "/", bytes.NewBufferString(`{not json`))
		w := httptest.NewRecorder()

		req, ok := DecodeJSON[plainRequest](w, r, discardLogger(), context.Background(), "req-1")

		assert.False(t, ok)
		assert.Nil(t, req)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		resp := decodeErrorBody(t, w)
		assert.False(t, resp.Success)
		assert.Equal(t, "invalid request body", resp.Error)
	})
}

func TestWriteError(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
	}{
		{"validation", dErrors.New(dErrors.CodeValidation, "Missing required header X-Token"), http.StatusBadRequest},
		{"not found", dErrors.New(dErrors.CodeNotFound, "Invalid uniqueId"), http.StatusBadRequest},
		{"corrupt", dErrors.New(dErrors.CodeCorrupt, "Session data corrupted"), http.StatusBadRequest},
		{"malformed upstream", dErrors.New(dErrors.CodeMalformedUpstream, "contractId missing"), http.StatusInternalServerError},
		{"plain error", errors.New("HTTP Post Error: Request failed with code 502"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			WriteError(w, tt.err)

			assert.Equal(t, tt.status, w.Code)
			assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
			resp := decodeErrorBody(t, w)
			assert.False(t, resp.Success)
			assert.Equal(t, tt.err.Error(), resp.Error)
		})
	}
}
