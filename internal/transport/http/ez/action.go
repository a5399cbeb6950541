// Package ez registers typed actions on gin groups and renders the {code,msg,data} envelope.
package ez

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"cinedeck/internal/domain"
	"cinedeck/internal/service"
	resp "cinedeck/internal/transport/http/response"
)

// gin.Context 中由鉴权中间件写入的 key
const (
	KeyUID  = "userId"
	KeyRole = "role"
)

type EZ struct{ g *gin.RouterGroup }

func New(g *gin.RouterGroup) EZ { return EZ{g: g} }

// 绑定方式
type Binder string

const (
	BindJSON  Binder = "json"  // 从 JSON 绑定
	BindQuery Binder = "query" // 从 URL ?a=b 绑定
	BindNone  Binder = "none"  // 不绑定，自己从 c.Param 取
)

// AErr 统一错误对象（配合 resp.Error(int, msg)）
type AErr struct {
	Code int
	Kind domain.Kind
	Msg  string
	Err  error
}

func (e *AErr) Error() string {
	if e.Msg != "" {
		return e.Msg
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return "action error"
}

func (e *AErr) Unwrap() error { return e.Err }

func BadRequest(msg string) error   { return &AErr{Code: resp.CodeBadRequest, Msg: msg} }
func Unauthorized(msg string) error { return &AErr{Code: resp.CodeUnauthorized, Msg: msg} }
func Forbidden(msg string) error    { return &AErr{Code: resp.CodeForbidden, Msg: msg} }
func NotFound(msg string) error     { return &AErr{Code: resp.CodeNotFound, Msg: msg} }
func Conflict(msg string) error     { return &AErr{Code: resp.CodeConflict, Msg: msg} }
func Internal(msg string, err error) error {
	return &AErr{Code: resp.CodeServerError, Msg: msg, Err: err}
}

// CodeOf 把 store 的错误类别映射成响应码
func CodeOf(k domain.Kind) int {
	switch k {
	case domain.KindNotAuthenticated, domain.KindInvalidCredentials:
		return resp.CodeUnauthorized
	case domain.KindPermissionDenied, domain.KindProtectedAccount:
		return resp.CodeForbidden
	case domain.KindNotFound:
		return resp.CodeNotFound
	case domain.KindDuplicateUsername, domain.KindDuplicateItem, domain.KindAlreadyInWatchlist, domain.KindSelfShare:
		return resp.CodeConflict
	case domain.KindValidation:
		return resp.CodeBadRequest
	default:
		return resp.CodeServerError
	}
}

// Unwrap turns a facade result into the handler's (value, error) pair.
func Unwrap[T any](r service.Result[T]) (T, error) {
	if r.Success {
		return r.Data, nil
	}
	var zero T
	msg := r.Message
	if r.Code == domain.KindInternal {
		msg = "internal error"
		var de *domain.Error
		if errors.As(r.Err(), &de) && de.Msg != "" {
			msg = de.Msg
		}
	}
	return zero, &AErr{Code: CodeOf(r.Code), Kind: r.Code, Msg: msg, Err: r.Err()}
}

// Fail 渲染错误；非 AErr 一律 500
func Fail(c *gin.Context, err error) {
	var ae *AErr
	if !errors.As(err, &ae) {
		var de *domain.Error
		if errors.As(err, &de) {
			ae = &AErr{Code: CodeOf(de.Kind), Kind: de.Kind, Msg: de.Error(), Err: err}
		} else {
			ae = &AErr{Code: resp.CodeServerError, Msg: "internal error", Err: err}
		}
	}
	if ae.Err != nil && ae.Code >= resp.CodeServerError {
		_ = c.Error(ae.Err)
	}
	c.JSON(http.StatusOK, resp.Error(ae.Code, ae.Error()).WithKind(string(ae.Kind)))
}

// 动作定义：I 入参，O 出参
type Action[I any, O any] struct {
	Method  string // "GET" | "POST" | "PUT" | "PATCH" | "DELETE"
	Path    string // 例："/auth/login"、"/lists/:id/items"
	Binder  Binder
	Auth    bool     // 是否要求登录（检查 userId）
	Roles   []string // 限定角色（可选）
	Handler func(c *gin.Context, in *I) (O, error)
}

// RegisterAction 在当前 EZ 下注册动作接口
func RegisterAction[I any, O any](e EZ, a Action[I, O]) {
	h := func(c *gin.Context) {
		// 1) 鉴权/角色
		if a.Auth {
			if c.GetInt64(KeyUID) == 0 {
				Fail(c, Unauthorized("unauthorized"))
				return
			}
			if len(a.Roles) > 0 {
				role := c.GetString(KeyRole)
				ok := false
				for _, r := range a.Roles {
					if role == r {
						ok = true
						break
					}
				}
				if !ok {
					Fail(c, Forbidden("forbidden"))
					return
				}
			}
		}

		// 2) 绑定入参
		var in I
		var bindErr error
		switch a.Binder {
		case BindJSON:
			bindErr = c.ShouldBindJSON(&in)
		case BindQuery:
			bindErr = c.ShouldBindQuery(&in)
		}
		if bindErr != nil {
			Fail(c, BadRequest(bindErr.Error()))
			return
		}

		// 3) 执行 + 统一错误映射
		out, err := a.Handler(c, &in)
		if err != nil {
			Fail(c, err)
			return
		}
		c.JSON(http.StatusOK, resp.OK(out))
	}

	switch strings.ToUpper(a.Method) {
	case http.MethodGet:
		e.g.GET(a.Path, h)
	case http.MethodPut:
		e.g.PUT(a.Path, h)
	case http.MethodPatch:
		e.g.PATCH(a.Path, h)
	case http.MethodDelete:
		e.g.DELETE(a.Path, h)
	default: // 默认 POST
		e.g.POST(a.Path, h)
	}
}

// ParamID 读取正整数路径参数
func ParamID(c *gin.Context, name string) (int64, error) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, BadRequest("invalid " + name)
	}
	return id, nil
}

// ParamMediaType 读取 :type 路径参数（movie|tv）
func ParamMediaType(c *gin.Context) (domain.MediaType, error) {
	t, err := domain.ParseMediaType(c.Param("type"))
	if err != nil {
		return "", BadRequest(err.Error())
	}
	return t, nil
}
