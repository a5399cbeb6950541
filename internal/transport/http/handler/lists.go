package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"cinedeck/internal/domain"
	"cinedeck/internal/service"
	"cinedeck/internal/transport/http/ez"
)

type Lists struct{ Deps }

func (m Lists) MountAPI(g *gin.RouterGroup) {
	e := ez.New(g)

	ez.RegisterAction(e, ez.Action[struct{}, []domain.ListView]{
		Method: http.MethodGet,
		Path:   "/lists/mine",
		Auth:   true,
		Handler: func(c *gin.Context, _ *struct{}) ([]domain.ListView, error) {
			return ez.Unwrap(m.Store.UserLists(c.GetInt64(ez.KeyUID)))
		},
	})

	ez.RegisterAction(e, ez.Action[struct{}, []domain.ListView]{
		Method: http.MethodGet,
		Path:   "/lists/public",
		Handler: func(c *gin.Context, _ *struct{}) ([]domain.ListView, error) {
			return ez.Unwrap(m.Store.PublicLists())
		},
	})

	ez.RegisterAction(e, ez.Action[struct{}, domain.ListView]{
		Method: http.MethodGet,
		Path:   "/lists/:id",
		Handler: func(c *gin.Context, _ *struct{}) (domain.ListView, error) {
			id, err := ez.ParamID(c, "id")
			if err != nil {
				return domain.ListView{}, err
			}
			if c.GetInt64(ez.KeyUID) == 0 {
				return ez.Unwrap(m.Store.Guest().GetList(id))
			}
			return ez.Unwrap(m.Store.GetList(id))
		},
	})

	ez.RegisterAction(e, ez.Action[struct{}, []domain.ListView]{
		Method: http.MethodGet,
		Path:   "/users/:id/lists",
		Handler: func(c *gin.Context, _ *struct{}) ([]domain.ListView, error) {
			id, err := ez.ParamID(c, "id")
			if err != nil {
				return nil, err
			}
			if c.GetInt64(ez.KeyUID) == 0 {
				return ez.Unwrap(m.Store.Guest().UserLists(id))
			}
			return ez.Unwrap(m.Store.UserLists(id))
		},
	})

	ez.RegisterAction(e, ez.Action[domain.ListInput, domain.ListView]{
		Method: http.MethodPost,
		Path:   "/lists",
		Binder: ez.BindJSON,
		Auth:   true,
		Handler: func(c *gin.Context, in *domain.ListInput) (domain.ListView, error) {
			return ez.Unwrap(m.Store.CreateList(c.Request.Context(), *in))
		},
	})

	ez.RegisterAction(e, ez.Action[domain.ListPatch, domain.ListView]{
		Method: http.MethodPatch,
		Path:   "/lists/:id",
		Binder: ez.BindJSON,
		Auth:   true,
		Handler: func(c *gin.Context, in *domain.ListPatch) (domain.ListView, error) {
			id, err := ez.ParamID(c, "id")
			if err != nil {
				return domain.ListView{}, err
			}
			return ez.Unwrap(m.Store.UpdateList(c.Request.Context(), id, *in))
		},
	})

	ez.RegisterAction(e, ez.Action[struct{}, service.None]{
		Method: http.MethodDelete,
		Path:   "/lists/:id",
		Auth:   true,
		Handler: func(c *gin.Context, _ *struct{}) (service.None, error) {
			id, err := ez.ParamID(c, "id")
			if err != nil {
				return service.None{}, err
			}
			return ez.Unwrap(m.Store.DeleteList(c.Request.Context(), id))
		},
	})

	ez.RegisterAction(e, ez.Action[domain.MediaRef, domain.ListView]{
		Method: http.MethodPost,
		Path:   "/lists/:id/items",
		Binder: ez.BindJSON,
		Auth:   true,
		Handler: func(c *gin.Context, in *domain.MediaRef) (domain.ListView, error) {
			id, err := ez.ParamID(c, "id")
			if err != nil {
				return domain.ListView{}, err
			}
			return ez.Unwrap(m.Store.AddToList(c.Request.Context(), id, *in))
		},
	})

	ez.RegisterAction(e, ez.Action[struct{}, domain.ListView]{
		Method: http.MethodDelete,
		Path:   "/lists/:id/items/:type/:mediaId",
		Auth:   true,
		Handler: func(c *gin.Context, _ *struct{}) (domain.ListView, error) {
			id, mediaID, t, err := itemParams(c)
			if err != nil {
				return domain.ListView{}, err
			}
			return ez.Unwrap(m.Store.RemoveFromList(c.Request.Context(), id, mediaID, t))
		},
	})

	type shareIn struct {
		Username string `json:"username" binding:"required"`
	}
	ez.RegisterAction(e, ez.Action[shareIn, domain.ListView]{
		Method: http.MethodPost,
		Path:   "/lists/:id/share",
		Binder: ez.BindJSON,
		Auth:   true,
		Handler: func(c *gin.Context, in *shareIn) (domain.ListView, error) {
			id, err := ez.ParamID(c, "id")
			if err != nil {
				return domain.ListView{}, err
			}
			return ez.Unwrap(m.Store.ShareList(c.Request.Context(), id, in.Username))
		},
	})
}

// itemParams 解析 /:id/items/:type/:mediaId
func itemParams(c *gin.Context) (listID, mediaID int64, t domain.MediaType, err error) {
	if listID, err = ez.ParamID(c, "id"); err != nil {
		return
	}
	if mediaID, err = ez.ParamID(c, "mediaId"); err != nil {
		return
	}
	t, err = ez.ParamMediaType(c)
	return
}
