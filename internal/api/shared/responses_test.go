package shared

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/phrazzld/catalog-api/internal/platform/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRespondWithJSON(t *testing.T) {
	t.Parallel()

	req := httptest.NewRequest(http.MethodGet, "/store", nil)
	w := httptest.NewRecorder()

	RespondWithJSON(w, req, http.StatusCreated, map[string]interface{}{"id": 1, "name": "Shop"})

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"id":1,"name":"Shop"}`, w.Body.String())
}

type unencodable struct {
	Ch chan int
}

func TestRespondWithJSON_EncodingError(t *testing.T) {
	t.Parallel()

	log, buf := logger.NewTestLogger()
	req := httptest.NewRequest(http.MethodGet, "/store", nil)
	req = req.WithContext(logger.WithLogger(req.Context(), log))
	w := httptest.NewRecorder()

	RespondWithJSON(w, req, http.StatusOK, unencodable{Ch: make(chan int)})

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, buf.String(), "failed to encode JSON response")
}

func TestRespondWithMessage(t *testing.T) {
	t.Parallel()

	req := httptest.NewRequest(http.MethodDelete, "/tag/1", nil)
	w := httptest.NewRecorder()

	RespondWithMessage(w, req, http.StatusAccepted, "Tag deleted.")

	assert.Equal(t, http.StatusAccepted, w.Code)
	assert.JSONEq(t, `{"message":"Tag deleted."}`, w.Body.String())
}

func TestRespondWithError_NoTraceID(t *testing.T) {
	t.Parallel()

	req := httptest.NewRequest(http.MethodGet, "/item", nil)
	w := httptest.NewRecorder()

	RespondWithError(w, req, http.StatusUnauthorized, "Unauthorized")

	assert.JSONEq(t, `{"error":"Unauthorized"}`, w.Body.String())
}

func TestRespondWithErrorAndLog(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		status    int
		elevate   bool
		wantLevel string
	}{
		{name: "server error", status: http.StatusInternalServerError, wantLevel: "ERROR"},
		{name: "client error", status: http.StatusBadRequest, wantLevel: "DEBUG"},
		{name: "elevated client error", status: http.StatusUnauthorized, elevate: true, wantLevel: "WARN"},
		{name: "rate limited", status: http.StatusTooManyRequests, wantLevel: "WARN"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			log, buf := logger.NewTestLogger()
			ctx := context.WithValue(context.Background(), TraceIDKey, "test-trace-id")
			ctx = logger.WithLogger(ctx, log)
			req := httptest.NewRequest(http.MethodGet, "/store/1", nil).WithContext(ctx)
			w := httptest.NewRecorder()

			cause := errors.New("dial postgres://catalog:hunter2@db:5432/catalog failed")
			if tt.elevate {
				RespondWithErrorAndLog(w, req, tt.status, "safe message", cause, WithElevatedLogLevel())
			} else {
				RespondWithErrorAndLog(w, req, tt.status, "safe message", cause)
			}

			assert.Equal(t, tt.status, w.Code)
			var body ErrorResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			assert.Equal(t, "safe message", body.Error)
			assert.Equal(t, "test-trace-id", body.TraceID)
			assert.NotContains(t, w.Body.String(), "hunter2")

			entries, err := buf.GetLogEntries()
			require.NoError(t, err)
			require.Len(t, entries, 1)
			assert.Equal(t, tt.wantLevel, entries[0]["level"])
			assert.Equal(t, "test-trace-id", entries[0]["trace_id"])
			assert.NotContains(t, entries[0]["error"], "hunter2")
		})
	}
}
