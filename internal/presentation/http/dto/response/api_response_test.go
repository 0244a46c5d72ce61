package response

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sangkips/investify-pos/pkg/apperror"
)

type weightBody struct {
	Weight float64 `json:"weight" binding:"required,gt=0"`
	Unit   string  `json:"unit" binding:"oneof=kg lb"`
}

func serve(t *testing.T, handler gin.HandlerFunc, body string) (*httptest.ResponseRecorder, APIResponse) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.POST("/", func(c *gin.Context) {
		c.Header("X-Request-ID", "req-1")
		handler(c)
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	var env APIResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	return w, env
}

func TestValidationError_ListsFields(t *testing.T) {
	w, env := serve(t, func(c *gin.Context) {
		var body weightBody
		err := c.ShouldBindJSON(&body)
		require.Error(t, err)
		ValidationError(c, err)
	}, `{"unit":"oz"}`)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Validation failed", env.Message)
	assert.Equal(t, []interface{}{
		map[string]interface{}{"field": "Weight", "message": "is required"},
		map[string]interface{}{"field": "Unit", "message": "must be one of kg lb"},
	}, env.Errors)
	assert.Equal(t, "req-1", env.Meta.RequestID)
}

func TestValidationError_MalformedBody(t *testing.T) {
	w, env := serve(t, func(c *gin.Context) {
		var body weightBody
		ValidationError(c, c.ShouldBindJSON(&body))
	}, `{"weight":`)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, env.Message, "Invalid request body")
	assert.Nil(t, env.Errors)
}

func TestError_UsesAppErrorStatus(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		code    int
		message string
	}{
		{"not found", apperror.NewNotFoundError("Ticket"), http.StatusNotFound, "Ticket not found"},
		{"unprocessable", apperror.NewUnprocessableError("insufficient stock"), http.StatusUnprocessableEntity, "insufficient stock"},
		{"plain error", errors.New("boom"), http.StatusInternalServerError, "Internal server error"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, env := serve(t, func(c *gin.Context) { Error(c, tt.err) }, `{}`)
			assert.Equal(t, tt.code, w.Code)
			assert.False(t, env.Success)
			assert.Equal(t, tt.message, env.Message)
		})
	}
}

func TestAccepted(t *testing.T) {
	w, env := serve(t, func(c *gin.Context) {
		Accepted(c, "Waiting for weight", map[string]string{"status": "needs_weight"})
	}, `{}`)

	assert.Equal(t, http.StatusAccepted, w.Code)
	assert.True(t, env.Success)
	assert.Equal(t, map[string]interface{}{"status": "needs_weight"}, env.Data)
}
