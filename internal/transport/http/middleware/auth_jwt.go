package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"cinedeck/internal/core/auth"
	"cinedeck/internal/transport/http/ez"
	resp "cinedeck/internal/transport/http/response"
)

const keyUID = ez.KeyUID

// SessionFunc 返回 store 当前会话的账号；未登录时 ok=false
type SessionFunc func() (uid int64, role string, ok bool)

// AuthJWT binds the caller to the store session. A token is accepted only while
// the account it names is still the one logged in. With optional set, requests
// without a token pass through anonymously.
func AuthJWT(j *auth.JWTer, session SessionFunc, requireRole string, optional bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw, found := bearer(c.GetHeader("Authorization"))
		if !found {
			if optional {
				c.Next()
				return
			}
			c.AbortWithStatusJSON(http.StatusOK, resp.Error(resp.CodeUnauthorized, "missing token"))
			return
		}
		claims, err := j.Parse(raw)
		if err != nil {
			msg := "invalid token"
			if errors.Is(err, auth.ErrExpired) {
				msg = "token expired"
			}
			c.AbortWithStatusJSON(http.StatusOK, resp.Error(resp.CodeUnauthorized, msg))
			return
		}
		uid, role, ok := session()
		if !ok || uid != claims.UID {
			c.AbortWithStatusJSON(http.StatusOK, resp.Error(resp.CodeUnauthorized, "session ended"))
			return
		}
		// 角色以会话为准，token 里的角色可能已过期
		if requireRole != "" && role != requireRole {
			c.AbortWithStatusJSON(http.StatusOK, resp.Error(resp.CodeForbidden, "forbidden"))
			return
		}
		c.Set("claims", claims)
		c.Set(ez.KeyUID, uid)
		c.Set(ez.KeyRole, role)
		c.Next()
	}
}

// bearer 取出 "Bearer <token>"，scheme 不区分大小写
func bearer(h string) (string, bool) {
	scheme, tok, ok := strings.Cut(strings.TrimSpace(h), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	tok = strings.TrimSpace(tok)
	return tok, tok != ""
}
