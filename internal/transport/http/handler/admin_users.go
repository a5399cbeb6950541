package handler

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"cinedeck/internal/domain"
	"cinedeck/internal/feature/directory"
	"cinedeck/internal/service"
	"cinedeck/internal/transport/http/ez"
)

// Users 管理端账号管理
type Users struct{ Deps }

func (m Users) MountAdmin(g *gin.RouterGroup) {
	e := ez.New(g)

	// --- GET /admin/v1/users  用户列表 ---
	type listQ struct {
		Offset int    `form:"offset,default=0"`
		Limit  int    `form:"limit,default=20"`
		Q      string `form:"q"` // 按 username/name 模糊搜
		Active *bool  `form:"active"`
	}
	type listOut struct {
		Total int              `json:"total"`
		Items []domain.Account `json:"items"`
	}
	ez.RegisterAction(e, ez.Action[listQ, listOut]{
		Method: http.MethodGet,
		Path:   "/users",
		Binder: ez.BindQuery,
		Handler: func(c *gin.Context, in *listQ) (listOut, error) {
			if in.Limit <= 0 || in.Limit > 100 {
				in.Limit = 20
			}
			in.Offset = max(in.Offset, 0)
			all, err := ez.Unwrap(m.Store.GetAllUsers())
			if err != nil {
				return listOut{}, err
			}
			q := strings.ToLower(strings.TrimSpace(in.Q))
			matched := make([]domain.Account, 0, len(all))
			for _, a := range all {
				if in.Active != nil && a.Active != *in.Active {
					continue
				}
				if q != "" && !strings.Contains(strings.ToLower(a.Username), q) && !strings.Contains(strings.ToLower(a.Name), q) {
					continue
				}
				matched = append(matched, a)
			}
			out := listOut{Total: len(matched), Items: []domain.Account{}}
			if in.Offset < len(matched) {
				out.Items = matched[in.Offset:min(in.Offset+in.Limit, len(matched))]
			}
			return out, nil
		},
	})

	ez.RegisterAction(e, ez.Action[struct{}, domain.Account]{
		Method: http.MethodGet,
		Path:   "/users/:id",
		Handler: func(c *gin.Context, _ *struct{}) (domain.Account, error) {
			id, err := ez.ParamID(c, "id")
			if err != nil {
				return domain.Account{}, err
			}
			return ez.Unwrap(m.Store.GetUser(id))
		},
	})

	ez.RegisterAction(e, ez.Action[directory.NewUser, domain.Account]{
		Method: http.MethodPost,
		Path:   "/users",
		Binder: ez.BindJSON,
		Handler: func(c *gin.Context, in *directory.NewUser) (domain.Account, error) {
			return ez.Unwrap(m.Store.CreateUser(c.Request.Context(), *in))
		},
	})

	ez.RegisterAction(e, ez.Action[directory.UserPatch, domain.Account]{
		Method: http.MethodPatch,
		Path:   "/users/:id",
		Binder: ez.BindJSON,
		Handler: func(c *gin.Context, in *directory.UserPatch) (domain.Account, error) {
			id, err := ez.ParamID(c, "id")
			if err != nil {
				return domain.Account{}, err
			}
			return ez.Unwrap(m.Store.UpdateUser(c.Request.Context(), id, *in))
		},
	})

	// --- 启用 / 停用 ---
	for path, active := range map[string]bool{"/users/:id/activate": true, "/users/:id/deactivate": false} {
		ez.RegisterAction(e, ez.Action[struct{}, domain.Account]{
			Method: http.MethodPost,
			Path:   path,
			Handler: func(c *gin.Context, _ *struct{}) (domain.Account, error) {
				id, err := ez.ParamID(c, "id")
				if err != nil {
					return domain.Account{}, err
				}
				if active {
					return ez.Unwrap(m.Store.ActivateUser(c.Request.Context(), id))
				}
				return ez.Unwrap(m.Store.DeactivateUser(c.Request.Context(), id))
			},
		})
	}

	ez.RegisterAction(e, ez.Action[struct{}, service.None]{
		Method: http.MethodDelete,
		Path:   "/users/:id",
		Handler: func(c *gin.Context, _ *struct{}) (service.None, error) {
			id, err := ez.ParamID(c, "id")
			if err != nil {
				return service.None{}, err
			}
			return ez.Unwrap(m.Store.DeleteUser(c.Request.Context(), id))
		},
	})
}
