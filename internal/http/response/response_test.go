package response

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ignatzorin/eventmarket-backend/internal/pkg/apperror"
)

func perform(t *testing.T, handler gin.HandlerFunc) (*httptest.ResponseRecorder, Response) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/", handler)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/", nil)
	r.ServeHTTP(w, req)

	var body Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return w, body
}

func TestError_AppErrorWithDetails(t *testing.T) {
	w, body := perform(t, func(c *gin.Context) {
		Error(c, apperror.Suspended("спам", "support@example.com"))
	})

	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.False(t, body.Success)
	require.NotNil(t, body.Error)
	assert.Equal(t, "ACCOUNT_SUSPENDED", body.Error.Code)
	assert.Equal(t, "спам", body.Error.Details["reason"])
	assert.Equal(t, "support@example.com", body.Error.Details["contact"])
}

func TestError_UnknownErrorIsMasked(t *testing.T) {
	w, body := perform(t, func(c *gin.Context) {
		Error(c, errors.New("pq: connection refused"))
	})

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "INTERNAL_ERROR", body.Error.Code)
	assert.NotContains(t, body.Error.Message, "pq")
}

func TestError_DatabaseErrorIsMasked(t *testing.T) {
	w, body := perform(t, func(c *gin.Context) {
		Error(c, apperror.Wrap(errors.New("sql: no rows"), apperror.ErrCodeDatabaseError, "select failed"))
	})

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "DATABASE_ERROR", body.Error.Code)
	assert.Equal(t, "внутренняя ошибка сервера", body.Error.Message)
}

func TestSuccess_Envelope(t *testing.T) {
	w, body := perform(t, func(c *gin.Context) {
		Success(c, gin.H{"id": "1"})
	})

	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, body.Success)
	assert.Nil(t, body.Error)
}
