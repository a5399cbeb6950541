package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"cinedeck/internal/domain"
	"cinedeck/internal/feature/directory"
	"cinedeck/internal/service"
	"cinedeck/internal/transport/http/ez"
)

type Ratings struct{ Deps }

func (m Ratings) MountAPI(g *gin.RouterGroup) {
	e := ez.New(g)

	ez.RegisterAction(e, ez.Action[struct{}, []domain.Rating]{
		Method: http.MethodGet,
		Path:   "/ratings",
		Auth:   true,
		Handler: func(c *gin.Context, _ *struct{}) ([]domain.Rating, error) {
			acc, err := ez.Unwrap(m.Store.CurrentUser())
			return acc.Ratings, err
		},
	})

	// 同一条目重复评分会覆盖旧值
	ez.RegisterAction(e, ez.Action[directory.RatingInput, domain.Rating]{
		Method: http.MethodPut,
		Path:   "/ratings",
		Binder: ez.BindJSON,
		Auth:   true,
		Handler: func(c *gin.Context, in *directory.RatingInput) (domain.Rating, error) {
			return ez.Unwrap(m.Store.RateMedia(c.Request.Context(), *in))
		},
	})

	ez.RegisterAction(e, ez.Action[struct{}, service.None]{
		Method: http.MethodDelete,
		Path:   "/ratings/:type/:mediaId",
		Auth:   true,
		Handler: func(c *gin.Context, _ *struct{}) (service.None, error) {
			t, err := ez.ParamMediaType(c)
			if err != nil {
				return service.None{}, err
			}
			id, err := ez.ParamID(c, "mediaId")
			if err != nil {
				return service.None{}, err
			}
			return ez.Unwrap(m.Store.RemoveRating(c.Request.Context(), id, t))
		},
	})

	ez.RegisterAction(e, ez.Action[struct{}, domain.RatingSummary]{
		Method: http.MethodGet,
		Path:   "/media/:type/:id/rating",
		Handler: func(c *gin.Context, _ *struct{}) (domain.RatingSummary, error) {
			t, err := ez.ParamMediaType(c)
			if err != nil {
				return domain.RatingSummary{}, err
			}
			id, err := ez.ParamID(c, "id")
			if err != nil {
				return domain.RatingSummary{}, err
			}
			return ez.Unwrap(m.Store.AverageRating(id, t))
		},
	})
}
