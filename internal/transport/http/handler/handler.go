// Package handler binds the store facade and the catalog client to HTTP routes.
package handler

import (
	"go.uber.org/zap"

	"cinedeck/internal/core/auth"
	"cinedeck/internal/service"
	"cinedeck/internal/tmdb"
)

type Deps struct {
	Store *service.Store
	JWT   *auth.JWTer
	TMDB  *tmdb.Client
	Guard *tmdb.Guard
	Log   *zap.Logger
}

// Session 供鉴权中间件判断 token 是否仍对应当前会话
func (d Deps) Session() (uid int64, role string, ok bool) {
	r := d.Store.CurrentUser()
	if !r.Success {
		return 0, "", false
	}
	return r.Data.ID, string(r.Data.Role), true
}

// Modules 返回全部路由模块，交给 router.Registry 挂载
func Modules(d Deps) []any {
	return []any{
		Auth{d}, Watchlist{d}, Ratings{d}, Comments{d},
		Lists{d}, Featured{d}, Official{d}, Media{d},
		Users{d}, Moderation{d},
	}
}
