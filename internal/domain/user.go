package domain

import (
	"encoding/json"
	"slices"
	"strings"
	"time"
)

type Role string

const (
	RoleRegular Role = "regular"
	RoleAdmin   Role = "admin"
)

// NormalizeRole 只认 admin，其余（包括历史数据里的 "cinefilo"）都按普通用户处理
func NormalizeRole(r Role) Role {
	if Role(strings.ToLower(string(r))) == RoleAdmin {
		return RoleAdmin
	}
	return RoleRegular
}

// User 是目录内部的完整记录（含凭据），只在目录与持久化层之间流动
type User struct {
	ID          int64      `json:"id"`
	Username    string     `json:"username"`
	Password    string     `json:"password"`
	Name        string     `json:"name"`
	Role        Role       `json:"role"`
	Active      bool       `json:"active"`
	CreatedAt   time.Time  `json:"createdAt,omitzero"`
	Watchlist   []MediaRef `json:"watchlist"`
	Ratings     []Rating   `json:"ratings"`
	Comments    []Comment  `json:"comments"`
	CustomLists []List     `json:"customLists"`
}

// UnmarshalJSON treats a missing "active" field as an active account.
func (u *User) UnmarshalJSON(b []byte) error {
	type plain User
	aux := struct {
		*plain
		Active *bool `json:"active"`
	}{plain: (*plain)(u)}
	if err := json.Unmarshal(b, &aux); err != nil {
		return err
	}
	u.Active = aux.Active == nil || *aux.Active
	return nil
}

func (u *User) IsAdmin() bool { return u.Role == RoleAdmin }

// Account is the credential-free view of a User handed to callers.
type Account struct {
	ID          int64      `json:"id"`
	Username    string     `json:"username"`
	Name        string     `json:"name"`
	Role        Role       `json:"role"`
	Active      bool       `json:"active"`
	CreatedAt   time.Time  `json:"createdAt,omitzero"`
	Watchlist   []MediaRef `json:"watchlist"`
	Ratings     []Rating   `json:"ratings"`
	Comments    []Comment  `json:"comments"`
	CustomLists []List     `json:"customLists"`
}

func (a Account) IsAdmin() bool { return a.Role == RoleAdmin }

// Account 深拷贝，调用方拿到的切片与目录内部互不影响
func (u *User) Account() Account {
	lists := make([]List, 0, len(u.CustomLists))
	for _, l := range u.CustomLists {
		lists = append(lists, l.Clone())
	}
	return Account{
		ID:          u.ID,
		Username:    u.Username,
		Name:        u.Name,
		Role:        u.Role,
		Active:      u.Active,
		CreatedAt:   u.CreatedAt,
		Watchlist:   cloneSlice(u.Watchlist),
		Ratings:     cloneSlice(u.Ratings),
		Comments:    cloneSlice(u.Comments),
		CustomLists: lists,
	}
}

// cloneSlice 保证返回非 nil，JSON 输出 [] 而不是 null
func cloneSlice[T any](in []T) []T {
	if in == nil {
		return []T{}
	}
	return slices.Clone(in)
}

// SameUsername 用户名比较忽略大小写和首尾空白
func SameUsername(a, b string) bool {
	return strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b))
}

// Clone 深拷贝完整记录（含凭据），供持久化导出
func (u *User) Clone() User {
	a := u.Account()
	return User{
		ID:          a.ID,
		Username:    a.Username,
		Password:    u.Password,
		Name:        a.Name,
		Role:        a.Role,
		Active:      a.Active,
		CreatedAt:   a.CreatedAt,
		Watchlist:   a.Watchlist,
		Ratings:     a.Ratings,
		Comments:    a.Comments,
		CustomLists: a.CustomLists,
	}
}
