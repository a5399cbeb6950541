package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"cinedeck/internal/domain"
	"cinedeck/internal/tmdb"
	"cinedeck/internal/transport/http/ez"
	resp "cinedeck/internal/transport/http/response"
)

// Media 目录浏览，只读转发 TMDB
type Media struct{ Deps }

// catalogErr 把上游错误映射成响应码；被新请求取代的返回 409
func catalogErr(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, tmdb.ErrSuperseded):
		return &ez.AErr{Code: resp.CodeConflict, Msg: "superseded by a newer request", Err: err}
	case errors.Is(err, context.DeadlineExceeded):
		return &ez.AErr{Code: resp.CodeTimeout, Msg: "catalog timeout", Err: err}
	case errors.Is(err, tmdb.ErrStatus), errors.Is(err, tmdb.ErrNetwork):
		return &ez.AErr{Code: resp.CodeBadGateway, Msg: "catalog unavailable", Err: err}
	}
	return err
}

// guarded 同一客户端同一视图只交付最新一次请求的结果
func guarded[T any](m Media, c *gin.Context, view string, fetch func(ctx context.Context) (T, error)) (T, error) {
	v, err := tmdb.Deliver(m.Guard, c.Request.Context(), view+"|"+c.ClientIP(), fetch)
	return v, catalogErr(err)
}

func (m Media) MountAPI(g *gin.RouterGroup) {
	e := ez.New(g)

	type searchQ struct {
		Query string `form:"q"    binding:"required"`
		Kind  string `form:"kind"`
		Page  int    `form:"page"`
	}
	ez.RegisterAction(e, ez.Action[searchQ, tmdb.Page]{
		Method: http.MethodGet,
		Path:   "/search",
		Binder: ez.BindQuery,
		Handler: func(c *gin.Context, in *searchQ) (tmdb.Page, error) {
			return guarded(m, c, "search", func(ctx context.Context) (tmdb.Page, error) {
				return m.TMDB.Search(ctx, tmdb.SearchKind(in.Kind), in.Query, in.Page)
			})
		},
	})

	type pageQ struct {
		Page int `form:"page"`
	}
	ez.RegisterAction(e, ez.Action[pageQ, tmdb.Page]{
		Method: http.MethodGet,
		Path:   "/feeds/:type/:feed",
		Binder: ez.BindQuery,
		Handler: func(c *gin.Context, in *pageQ) (tmdb.Page, error) {
			t, err := ez.ParamMediaType(c)
			if err != nil {
				return tmdb.Page{}, err
			}
			feed := c.Param("feed")
			return guarded(m, c, "feed:"+string(t)+":"+feed, func(ctx context.Context) (tmdb.Page, error) {
				return m.TMDB.Feed(ctx, t, feed, in.Page)
			})
		},
	})

	ez.RegisterAction(e, ez.Action[tmdb.Filter, tmdb.Page]{
		Method: http.MethodGet,
		Path:   "/discover/:type",
		Binder: ez.BindQuery,
		Handler: func(c *gin.Context, in *tmdb.Filter) (tmdb.Page, error) {
			t, err := ez.ParamMediaType(c)
			if err != nil {
				return tmdb.Page{}, err
			}
			return guarded(m, c, "discover:"+string(t), func(ctx context.Context) (tmdb.Page, error) {
				return m.TMDB.Discover(ctx, t, *in)
			})
		},
	})

	ez.RegisterAction(e, ez.Action[struct{}, tmdb.Details]{
		Method: http.MethodGet,
		Path:   "/media/:type/:id",
		Handler: func(c *gin.Context, _ *struct{}) (tmdb.Details, error) {
			t, err := ez.ParamMediaType(c)
			if err != nil {
				return tmdb.Details{}, err
			}
			id, err := ez.ParamID(c, "id")
			if err != nil {
				return tmdb.Details{}, err
			}
			return guarded(m, c, "details", func(ctx context.Context) (tmdb.Details, error) {
				return m.TMDB.Details(ctx, t, id)
			})
		},
	})

	ez.RegisterAction(e, ez.Action[pageQ, tmdb.Page]{
		Method: http.MethodGet,
		Path:   "/media/:type/:id/recommendations",
		Binder: ez.BindQuery,
		Handler: func(c *gin.Context, in *pageQ) (tmdb.Page, error) {
			t, err := ez.ParamMediaType(c)
			if err != nil {
				return tmdb.Page{}, err
			}
			id, err := ez.ParamID(c, "id")
			if err != nil {
				return tmdb.Page{}, err
			}
			return guarded(m, c, "recommendations", func(ctx context.Context) (tmdb.Page, error) {
				return m.TMDB.Recommendations(ctx, t, id, in.Page)
			})
		},
	})

	ez.RegisterAction(e, ez.Action[struct{}, tmdb.Season]{
		Method: http.MethodGet,
		Path:   "/media/:type/:id/season/:n",
		Handler: func(c *gin.Context, _ *struct{}) (tmdb.Season, error) {
			if t, err := ez.ParamMediaType(c); err != nil || t != domain.MediaTV {
				return tmdb.Season{}, ez.BadRequest("seasons exist only for tv")
			}
			id, err := ez.ParamID(c, "id")
			if err != nil {
				return tmdb.Season{}, err
			}
			n, err := strconv.Atoi(c.Param("n"))
			if err != nil || n < 0 {
				return tmdb.Season{}, ez.BadRequest("invalid season number")
			}
			return guarded(m, c, "season", func(ctx context.Context) (tmdb.Season, error) {
				return m.TMDB.Season(ctx, id, n)
			})
		},
	})
}
