package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"cinedeck/internal/domain"
	"cinedeck/internal/service"
	"cinedeck/internal/transport/http/ez"
)

type Featured struct{ Deps }

func (m Featured) MountAPI(g *gin.RouterGroup) {
	e := ez.New(g)

	ez.RegisterAction(e, ez.Action[struct{}, []domain.ListView]{
		Method: http.MethodGet,
		Path:   "/featured",
		Handler: func(c *gin.Context, _ *struct{}) ([]domain.ListView, error) {
			return ez.Unwrap(m.Store.FeaturedLists())
		},
	})

	ez.RegisterAction(e, ez.Action[struct{}, bool]{
		Method: http.MethodGet,
		Path:   "/lists/:id/featured",
		Handler: func(c *gin.Context, _ *struct{}) (bool, error) {
			id, err := ez.ParamID(c, "id")
			if err != nil {
				return false, err
			}
			return ez.Unwrap(m.Store.IsFeatured(id))
		},
	})
}

func (m Featured) MountAdmin(g *gin.RouterGroup) {
	e := ez.New(g)

	ez.RegisterAction(e, ez.Action[struct{}, []domain.ListView]{
		Method: http.MethodGet,
		Path:   "/featured",
		Handler: func(c *gin.Context, _ *struct{}) ([]domain.ListView, error) {
			return ez.Unwrap(m.Store.FeaturedLists())
		},
	})

	// 可被推荐的列表：所有公开的用户列表
	ez.RegisterAction(e, ez.Action[struct{}, []domain.ListView]{
		Method: http.MethodGet,
		Path:   "/featured/candidates",
		Handler: func(c *gin.Context, _ *struct{}) ([]domain.ListView, error) {
			return ez.Unwrap(m.Store.ListsForFeaturing())
		},
	})

	ez.RegisterAction(e, ez.Action[struct{}, service.None]{
		Method: http.MethodPost,
		Path:   "/featured/:id",
		Handler: func(c *gin.Context, _ *struct{}) (service.None, error) {
			id, err := ez.ParamID(c, "id")
			if err != nil {
				return service.None{}, err
			}
			return ez.Unwrap(m.Store.AddToFeatured(c.Request.Context(), id))
		},
	})

	ez.RegisterAction(e, ez.Action[struct{}, service.None]{
		Method: http.MethodDelete,
		Path:   "/featured/:id",
		Handler: func(c *gin.Context, _ *struct{}) (service.None, error) {
			id, err := ez.ParamID(c, "id")
			if err != nil {
				return service.None{}, err
			}
			return ez.Unwrap(m.Store.RemoveFromFeatured(c.Request.Context(), id))
		},
	})
}
