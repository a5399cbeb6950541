package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"cinedeck/internal/domain"
	"cinedeck/internal/service"
	"cinedeck/internal/transport/http/ez"
)

type Official struct{ Deps }

func (m Official) MountAPI(g *gin.RouterGroup) {
	ez.RegisterAction(ez.New(g), ez.Action[struct{}, []domain.ListView]{
		Method: http.MethodGet,
		Path:   "/official",
		Handler: func(c *gin.Context, _ *struct{}) ([]domain.ListView, error) {
			return ez.Unwrap(m.Store.OfficialLists())
		},
	})
}

func (m Official) MountAdmin(g *gin.RouterGroup) {
	e := ez.New(g)

	ez.RegisterAction(e, ez.Action[struct{}, []domain.ListView]{
		Method: http.MethodGet,
		Path:   "/official",
		Handler: func(c *gin.Context, _ *struct{}) ([]domain.ListView, error) {
			return ez.Unwrap(m.Store.OfficialLists())
		},
	})

	ez.RegisterAction(e, ez.Action[domain.ListInput, domain.ListView]{
		Method: http.MethodPost,
		Path:   "/official",
		Binder: ez.BindJSON,
		Handler: func(c *gin.Context, in *domain.ListInput) (domain.ListView, error) {
			return ez.Unwrap(m.Store.CreateOfficialList(c.Request.Context(), *in))
		},
	})

	ez.RegisterAction(e, ez.Action[domain.ListPatch, domain.ListView]{
		Method: http.MethodPatch,
		Path:   "/official/:id",
		Binder: ez.BindJSON,
		Handler: func(c *gin.Context, in *domain.ListPatch) (domain.ListView, error) {
			id, err := ez.ParamID(c, "id")
			if err != nil {
				return domain.ListView{}, err
			}
			return ez.Unwrap(m.Store.UpdateOfficialList(c.Request.Context(), id, *in))
		},
	})

	ez.RegisterAction(e, ez.Action[struct{}, service.None]{
		Method: http.MethodDelete,
		Path:   "/official/:id",
		Handler: func(c *gin.Context, _ *struct{}) (service.None, error) {
			id, err := ez.ParamID(c, "id")
			if err != nil {
				return service.None{}, err
			}
			return ez.Unwrap(m.Store.DeleteOfficialList(c.Request.Context(), id))
		},
	})

	ez.RegisterAction(e, ez.Action[domain.MediaRef, domain.ListView]{
		Method: http.MethodPost,
		Path:   "/official/:id/items",
		Binder: ez.BindJSON,
		Handler: func(c *gin.Context, in *domain.MediaRef) (domain.ListView, error) {
			id, err := ez.ParamID(c, "id")
			if err != nil {
				return domain.ListView{}, err
			}
			return ez.Unwrap(m.Store.AddToOfficialList(c.Request.Context(), id, *in))
		},
	})

	ez.RegisterAction(e, ez.Action[struct{}, domain.ListView]{
		Method: http.MethodDelete,
		Path:   "/official/:id/items/:type/:mediaId",
		Handler: func(c *gin.Context, _ *struct{}) (domain.ListView, error) {
			id, mediaID, t, err := itemParams(c)
			if err != nil {
				return domain.ListView{}, err
			}
			return ez.Unwrap(m.Store.RemoveFromOfficialList(c.Request.Context(), id, mediaID, t))
		},
	})
}
