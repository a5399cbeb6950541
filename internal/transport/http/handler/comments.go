package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"cinedeck/internal/domain"
	"cinedeck/internal/service"
	"cinedeck/internal/transport/http/ez"
)

type Comments struct{ Deps }

type commentIn struct {
	Text string `json:"text" binding:"required"`
}

func (m Comments) MountAPI(g *gin.RouterGroup) {
	e := ez.New(g)

	// 电影与剧集的 TMDB id 会重叠，这里按类型过滤
	ez.RegisterAction(e, ez.Action[struct{}, []domain.Comment]{
		Method: http.MethodGet,
		Path:   "/media/:type/:id/comments",
		Handler: func(c *gin.Context, _ *struct{}) ([]domain.Comment, error) {
			t, err := ez.ParamMediaType(c)
			if err != nil {
				return nil, err
			}
			id, err := ez.ParamID(c, "id")
			if err != nil {
				return nil, err
			}
			all, err := ez.Unwrap(m.Store.MediaComments(id))
			if err != nil {
				return nil, err
			}
			out := make([]domain.Comment, 0, len(all))
			for _, cm := range all {
				if cm.MediaType == t {
					out = append(out, cm)
				}
			}
			return out, nil
		},
	})

	ez.RegisterAction(e, ez.Action[commentIn, domain.Comment]{
		Method: http.MethodPost,
		Path:   "/media/:type/:id/comments",
		Binder: ez.BindJSON,
		Auth:   true,
		Handler: func(c *gin.Context, in *commentIn) (domain.Comment, error) {
			t, err := ez.ParamMediaType(c)
			if err != nil {
				return domain.Comment{}, err
			}
			id, err := ez.ParamID(c, "id")
			if err != nil {
				return domain.Comment{}, err
			}
			return ez.Unwrap(m.Store.AddComment(c.Request.Context(), id, t, in.Text))
		},
	})

	ez.RegisterAction(e, ez.Action[commentIn, domain.Comment]{
		Method: http.MethodPatch,
		Path:   "/comments/:id",
		Binder: ez.BindJSON,
		Auth:   true,
		Handler: func(c *gin.Context, in *commentIn) (domain.Comment, error) {
			id, err := ez.ParamID(c, "id")
			if err != nil {
				return domain.Comment{}, err
			}
			return ez.Unwrap(m.Store.EditComment(c.Request.Context(), id, in.Text))
		},
	})

	ez.RegisterAction(e, ez.Action[struct{}, service.None]{
		Method:  http.MethodDelete,
		Path:    "/comments/:id",
		Auth:    true,
		Handler: removeComment(m.Store),
	})
}

func removeComment(s *service.Store) func(c *gin.Context, _ *struct{}) (service.None, error) {
	return func(c *gin.Context, _ *struct{}) (service.None, error) {
		id, err := ez.ParamID(c, "id")
		if err != nil {
			return service.None{}, err
		}
		return ez.Unwrap(s.RemoveComment(c.Request.Context(), id))
	}
}
