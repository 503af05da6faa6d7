package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/ignatzorin/eventmarket-backend/internal/http/response"
	"github.com/ignatzorin/eventmarket-backend/internal/logger"
	"github.com/ignatzorin/eventmarket-backend/internal/pkg/apperror"
)

// ErrorHandler логирует ошибки запроса и отвечает конвертом, если хэндлер не успел.
// Внутренние подробности клиенту не передаются.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 {
			return
		}

		err := c.Errors.Last()
		logger.WithFields(logrus.Fields{
			"error":  err.Error(),
			"code":   apperror.CodeOf(err.Err),
			"path":   c.Request.URL.Path,
			"method": c.Request.Method,
			"status": c.Writer.Status(),
		}).Error("http: ошибка обработки запроса")

		if c.Writer.Written() {
			return
		}
		c.JSON(http.StatusInternalServerError, response.Response{
			Success: false,
			Error: &response.ErrorInfo{
				Code:    string(apperror.ErrCodeInternal),
				Message: "внутренняя ошибка сервера",
			},
		})
	}
}
