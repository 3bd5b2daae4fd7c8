package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/chrissi82/Dashboard-IU/backend/internal/api/handler"
	"github.com/chrissi82/Dashboard-IU/backend/pkg/response"
)

// BodyLimit 请求体大小限制
// 超限在 Content-Length 已知时直接拒绝；否则由 MaxBytesReader 在绑定时报错，
// Handler 已写入 400 时不再覆盖
func BodyLimit(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.ContentLength > maxBytes {
			response.Error(c, http.StatusRequestEntityTooLarge, handler.CodeBodyTooLarge, "请求体过大")
			c.Abort()
			return
		}
		if c.Request.Body != nil {
			c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		}

		c.Next()

		if c.Writer.Written() {
			return
		}
		var tooLarge *http.MaxBytesError
		for _, e := range c.Errors {
			if errors.As(e.Err, &tooLarge) {
				response.Error(c, http.StatusRequestEntityTooLarge, handler.CodeBodyTooLarge, "请求体过大")
				return
			}
		}
	}
}
