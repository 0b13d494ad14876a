package response

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func serve(t *testing.T, h gin.HandlerFunc) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	router := gin.New()
	router.GET("/", h, func(c *gin.Context) {
		c.String(http.StatusTeapot, "handler chain continued")
	})
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return rec, body
}

func TestFailureEnvelopes(t *testing.T) {
	tests := []struct {
		name    string
		handler gin.HandlerFunc
		status  int
		code    string
	}{
		{"not found", func(c *gin.Context) { NotFound(c, "Project not found") }, http.StatusNotFound, CodeNotFound},
		{"invalid", func(c *gin.Context) { Invalid(c, "email: must be a valid email address") }, http.StatusUnprocessableEntity, CodeValidation},
		{"unauthorized", func(c *gin.Context) { Unauthorized(c, "Invalid token") }, http.StatusUnauthorized, CodeUnauthorized},
		{"internal", func(c *gin.Context) { Internal(c) }, http.StatusInternalServerError, CodeInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, body := serve(t, tt.handler)
			assert.Equal(t, tt.status, rec.Code)
			assert.Equal(t, false, body["success"])
			assert.Equal(t, tt.code, body["error_code"])
		})
	}
}

func TestInternalCarriesErrorID(t *testing.T) {
	var issued string
	_, body := serve(t, func(c *gin.Context) { issued = Internal(c) })

	assert.Len(t, issued, 8)
	assert.Equal(t, issued, body["error_id"])
}

func TestInvalidListsFieldErrors(t *testing.T) {
	_, body := serve(t, func(c *gin.Context) { Invalid(c, "name: is required", "email: is required") })
	assert.Equal(t, []any{"name: is required", "email: is required"}, body["errors"])
}

func TestOK(t *testing.T) {
	rec, body := serve(t, func(c *gin.Context) {
		OK(c, "saved", gin.H{"id": "msg_1"})
		c.Abort()
	})
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, map[string]any{"id": "msg_1"}, body["data"])
}
