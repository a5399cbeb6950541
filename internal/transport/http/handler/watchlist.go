package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"cinedeck/internal/domain"
	"cinedeck/internal/transport/http/ez"
)

type Watchlist struct{ Deps }

func (m Watchlist) MountAPI(g *gin.RouterGroup) {
	e := ez.New(g)

	ez.RegisterAction(e, ez.Action[struct{}, []domain.MediaRef]{
		Method: http.MethodGet,
		Path:   "/watchlist",
		Auth:   true,
		Handler: func(c *gin.Context, _ *struct{}) ([]domain.MediaRef, error) {
			acc, err := ez.Unwrap(m.Store.CurrentUser())
			return acc.Watchlist, err
		},
	})

	ez.RegisterAction(e, ez.Action[domain.MediaRef, []domain.MediaRef]{
		Method: http.MethodPost,
		Path:   "/watchlist",
		Binder: ez.BindJSON,
		Auth:   true,
		Handler: func(c *gin.Context, in *domain.MediaRef) ([]domain.MediaRef, error) {
			return ez.Unwrap(m.Store.AddToWatchlist(c.Request.Context(), *in))
		},
	})

	ez.RegisterAction(e, ez.Action[struct{}, []domain.MediaRef]{
		Method: http.MethodDelete,
		Path:   "/watchlist/:mediaId",
		Auth:   true,
		Handler: func(c *gin.Context, _ *struct{}) ([]domain.MediaRef, error) {
			id, err := ez.ParamID(c, "mediaId")
			if err != nil {
				return nil, err
			}
			return ez.Unwrap(m.Store.RemoveFromWatchlist(c.Request.Context(), id))
		},
	})
}
