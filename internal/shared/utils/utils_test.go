package utils

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testContext(remoteAddr string, headers map[string]string) *gin.Context {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = remoteAddr
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	c.Request = req
	return c
}

func TestExtractClientIP(t *testing.T) {
	tests := []struct {
		name       string
		remoteAddr string
		headers    map[string]string
		want       string
	}{
		{"forwarded for", "10.0.0.2:1234", map[string]string{"X-Forwarded-For": "203.0.113.7, 10.0.0.1"}, "203.0.113.7"},
		{"real ip", "10.0.0.2:1234", map[string]string{"X-Real-IP": "198.51.100.4"}, "198.51.100.4"},
		{"garbage header falls through", "192.0.2.1:80", map[string]string{"X-Forwarded-For": "nope"}, "192.0.2.1"},
		{"ipv6 remote", "[::1]:443", nil, "::1"},
		{"unparseable remote", "???", nil, "127.0.0.1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExtractClientIP(testContext(tt.remoteAddr, tt.headers)))
		})
	}
}

func TestUnmarshalTask(t *testing.T) {
	var payload struct {
		Limit int `json:"limit"`
	}
	require.NoError(t, UnmarshalTask(asynq.NewTask("x", []byte(`{"limit":5}`)), &payload))
	assert.Equal(t, 5, payload.Limit)

	assert.NoError(t, UnmarshalTask(asynq.NewTask("x", nil), &payload))
	assert.Error(t, UnmarshalTask(asynq.NewTask("x", []byte(`{`)), &payload))
}

func TestEnvHelpers(t *testing.T) {
	t.Setenv("UTILS_TEST_INT", "7")
	t.Setenv("UTILS_TEST_DUR", "90s")

	assert.Equal(t, "fallback", GetEnvVariable("UTILS_TEST_MISSING", "fallback"))
	assert.Equal(t, 7, GetEnvInt("UTILS_TEST_INT", 1))
	assert.Equal(t, 1, GetEnvInt("UTILS_TEST_MISSING", 1))
	assert.Equal(t, 90*time.Second, GetEnvDuration("UTILS_TEST_DUR", time.Minute))
}

func TestParseStringToUUID(t *testing.T) {
	id := uuid.New()
	assert.Equal(t, id, ParseStringToUUID(id.String()))
	assert.Equal(t, uuid.Nil, ParseStringToUUID("bad"))
}
