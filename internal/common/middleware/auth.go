package middleware

import (
	"crypto/subtle"

	"github.com/gin-gonic/gin"

	"github.com/Avalanche-Team1-Africa/ChainRivals/internal/common/errors"
)

const adminKeyHeader = "X-Admin-Key"

// RequireAdmin защищает маршруты управления челленджами. Пустой ключ
// отключает проверку (локальная разработка).
func RequireAdmin(adminKey string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if adminKey == "" {
			c.Next()
			return
		}

		provided := c.GetHeader(adminKeyHeader)
		if subtle.ConstantTimeCompare([]byte(provided), []byte(adminKey)) != 1 {
			sendErrorResponse(c, errors.New(errors.ErrCodeUnauthorized, "Admin key required"))
			return
		}

		c.Next()
	}
}
