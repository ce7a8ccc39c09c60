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

func decode(t *testing.T, w *httptest.ResponseRecorder) Response {
	t.Helper()
	var resp Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func TestError_UsesCodeFromDetails(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	Error(c, http.StatusNotFound, "Order not found", map[string]string{"code": "ORD001"})

	assert.Equal(t, http.StatusNotFound, w.Code)
	resp := decode(t, w)
	assert.False(t, resp.Success)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "ORD001", resp.Error.Code)
	assert.Equal(t, "Order not found", resp.Error.Message)
	assert.Nil(t, resp.Error.Details)
}

func TestError_DefaultCode(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	Error(c, http.StatusBadRequest, "Invalid request body", map[string]string{"error": "eof"})

	resp := decode(t, w)
	assert.Equal(t, "Bad Request", resp.Error.Code)
	assert.NotNil(t, resp.Error.Details)
}

func TestSuccess(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	Success(c, http.StatusCreated, "Order created", map[string]string{"id": "1"})

	assert.Equal(t, http.StatusCreated, w.Code)
	resp := decode(t, w)
	assert.True(t, resp.Success)
	assert.Equal(t, "Order created", resp.Message)
}
