package middleware

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/timmy/uthos/internal/logger"
)

func TestLoggerMiddleware_TagsRequestContext(t *testing.T) {
	gin.SetMode(gin.TestMode)
	var buf bytes.Buffer
	log := logger.New(logger.Options{Level: "info", Output: &buf})

	r := gin.New()
	r.Use(LoggerMiddleware(log))
	r.GET("/things/:id", func(c *gin.Context) {
		logger.CtxInfo(c.Request.Context(), "handling")
		AbortError(c, http.StatusNotFound, "not_found", "no such thing")
	})

	req := httptest.NewRequest(http.MethodGet, "/things/7", nil)
	req.Header.Set(HeaderRequestID, "req-42")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "req-42", w.Header().Get(HeaderRequestID))
	var body map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "req-42", body["request_id"])

	var handled map[string]interface{}
	for _, raw := range bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n")) {
		var m map[string]interface{}
		require.NoError(t, json.Unmarshal(raw, &m))
		if m["message"] == "handling" {
			handled = m
		}
	}
	require.NotNil(t, handled, buf.String())
	assert.Equal(t, "devserver", handled[logger.FieldComponent])
	assert.Equal(t, "req-42", handled[logger.FieldRequestID])
	assert.Equal(t, "GET /things/:id", handled[logger.FieldOperation])
}
