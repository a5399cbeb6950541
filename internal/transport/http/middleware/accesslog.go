package middleware

import (
	"net/url"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var sensitiveKeys = []string{
	"password", "pwd", "token", "authorization",
	"secret", "api_key", "apikey", "access_token",
}

// maskedQuery 以对象形式输出 query，敏感值替换为 ****
type maskedQuery url.Values

func (q maskedQuery) MarshalLogObject(enc zapcore.ObjectEncoder) error {
	for k, v := range q {
		lk := strings.ToLower(k)
		masked := false
		for _, s := range sensitiveKeys {
			if lk == s {
				masked = true
				break
			}
		}
		switch {
		case masked:
			enc.AddString(k, "****")
		case len(v) == 1:
			enc.AddString(k, v[0])
		default:
			_ = enc.AddArray(k, zapcore.ArrayMarshalerFunc(func(a zapcore.ArrayEncoder) error {
				for _, s := range v {
					a.AppendString(s)
				}
				return nil
			}))
		}
	}
	return nil
}

// AccessLog 每个请求一行摘要；5xx 记 Error，带 c.Errors 的记 Warn
func AccessLog(l *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = c.Request.URL.Path
		}
		status := c.Writer.Status()
		fields := make([]zap.Field, 0, 11)
		fields = append(fields,
			zap.String("rid", c.GetString(KeyRequestID)),
			zap.String("method", c.Request.Method),
			zap.String("path", path),
			zap.Int("status", status),
			zap.Duration("latency", time.Since(start)),
			zap.String("ip", c.ClientIP()),
			zap.String("ua", c.Request.UserAgent()),
			zap.Int("size", max(c.Writer.Size(), 0)),
		)
		if q := c.Request.URL.Query(); len(q) > 0 {
			fields = append(fields, zap.Object("query", maskedQuery(q)))
		}
		if uid := c.GetInt64(keyUID); uid != 0 {
			fields = append(fields, zap.Int64("uid", uid))
		}

		lvl := zapcore.InfoLevel
		if errs := c.Errors.ByType(gin.ErrorTypeAny); len(errs) > 0 {
			fields = append(fields, zap.String("errors", errs.String()))
			lvl = zapcore.WarnLevel
		}
		if status >= 500 {
			lvl = zapcore.ErrorLevel
		}
		if ce := l.Check(lvl, "http"); ce != nil {
			ce.Write(fields...)
		}
	}
}
