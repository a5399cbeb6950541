package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"cinedeck/internal/domain"
	"cinedeck/internal/feature/directory"
	"cinedeck/internal/service"
	"cinedeck/internal/transport/http/ez"
)

type Auth struct{ Deps }

func (Auth) Priority() int { return 10 }

func (m Auth) MountAPI(g *gin.RouterGroup) {
	e := ez.New(g)

	type loginIn struct {
		Username string `json:"username" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	type loginOut struct {
		Token string         `json:"token"`
		User  domain.Account `json:"user"`
	}
	ez.RegisterAction(e, ez.Action[loginIn, loginOut]{
		Method: http.MethodPost,
		Path:   "/auth/login",
		Binder: ez.BindJSON,
		Handler: func(c *gin.Context, in *loginIn) (loginOut, error) {
			acc, err := ez.Unwrap(m.Store.Login(c.Request.Context(), in.Username, in.Password))
			if err != nil {
				return loginOut{}, err
			}
			tok, err := m.JWT.Issue(acc.ID, string(acc.Role))
			if err != nil {
				return loginOut{}, ez.Internal("issue token failed", err)
			}
			return loginOut{Token: tok, User: acc}, nil
		},
	})

	ez.RegisterAction(e, ez.Action[struct{}, service.None]{
		Method: http.MethodPost,
		Path:   "/auth/logout",
		Auth:   true,
		Handler: func(c *gin.Context, _ *struct{}) (service.None, error) {
			return ez.Unwrap(m.Store.Logout(c.Request.Context()))
		},
	})

	type registerIn struct {
		Username string `json:"username" binding:"required,max=64"`
		Password string `json:"password" binding:"required"`
		Name     string `json:"name"     binding:"omitempty,max=64"`
	}
	ez.RegisterAction(e, ez.Action[registerIn, domain.Account]{
		Method: http.MethodPost,
		Path:   "/auth/register",
		Binder: ez.BindJSON,
		Handler: func(c *gin.Context, in *registerIn) (domain.Account, error) {
			return ez.Unwrap(m.Store.Register(c.Request.Context(), directory.NewUser{
				Username: in.Username, Password: in.Password, Name: in.Name,
			}))
		},
	})

	ez.RegisterAction(e, ez.Action[struct{}, domain.Account]{
		Method: http.MethodGet,
		Path:   "/me",
		Auth:   true,
		Handler: func(c *gin.Context, _ *struct{}) (domain.Account, error) {
			return ez.Unwrap(m.Store.CurrentUser())
		},
	})
}
