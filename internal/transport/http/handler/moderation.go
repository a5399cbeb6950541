package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"cinedeck/internal/domain"
	"cinedeck/internal/service"
	"cinedeck/internal/transport/http/ez"
)

// Moderation 评论审核与全量列表浏览
type Moderation struct{ Deps }

func (m Moderation) MountAdmin(g *gin.RouterGroup) {
	e := ez.New(g)

	type commentsQ struct {
		MediaID int64 `form:"mediaId"`
		UserID  int64 `form:"userId"`
	}
	ez.RegisterAction(e, ez.Action[commentsQ, []domain.Comment]{
		Method: http.MethodGet,
		Path:   "/comments",
		Binder: ez.BindQuery,
		Handler: func(c *gin.Context, in *commentsQ) ([]domain.Comment, error) {
			all, err := ez.Unwrap(m.Store.AllComments())
			if err != nil {
				return nil, err
			}
			out := make([]domain.Comment, 0, len(all))
			for _, cm := range all {
				if (in.MediaID == 0 || cm.MediaID == in.MediaID) && (in.UserID == 0 || cm.UserID == in.UserID) {
					out = append(out, cm)
				}
			}
			return out, nil
		},
	})

	ez.RegisterAction(e, ez.Action[struct{}, service.None]{
		Method:  http.MethodDelete,
		Path:    "/comments/:id",
		Handler: removeComment(m.Store),
	})

	ez.RegisterAction(e, ez.Action[struct{}, []domain.ListView]{
		Method: http.MethodGet,
		Path:   "/lists",
		Handler: func(c *gin.Context, _ *struct{}) ([]domain.ListView, error) {
			return ez.Unwrap(m.Store.AllLists())
		},
	})
}
