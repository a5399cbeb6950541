package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	resp "cinedeck/internal/transport/http/response"
)

// MaxBodyBytes 限制请求体大小；n<=0 不限制
func MaxBodyBytes(n int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if n <= 0 {
			c.Next()
			return
		}
		if c.Request.ContentLength > n {
			c.AbortWithStatusJSON(http.StatusOK, resp.Error(resp.CodeBadRequest, "request body too large"))
			return
		}
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, n)
		c.Next()
	}
}
