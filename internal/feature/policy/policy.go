// Package policy centralizes every authorization decision of the store.
package policy

import "cinedeck/internal/domain"

// Actor 当前操作者；零值即匿名
type Actor struct {
	ID   int64
	Role domain.Role
}

var Anonymous = Actor{}

func ActorOf(a domain.Account) Actor { return Actor{ID: a.ID, Role: a.Role} }

func (a Actor) Authenticated() bool { return a.ID != 0 }
func (a Actor) IsAdmin() bool       { return a.Authenticated() && a.Role == domain.RoleAdmin }

type Action string

const (
	Read        Action = "read"
	Create      Action = "create"
	Edit        Action = "edit"
	Delete      Action = "delete"
	Share       Action = "share"
	Feature     Action = "feature"
	ManageUsers Action = "manage_users"
	Moderate    Action = "moderate"
)

type Kind string

const (
	KindUser      Kind = "user"
	KindComment   Kind = "comment"
	KindRating    Kind = "rating"
	KindWatchlist Kind = "watchlist"
	KindList      Kind = "list"
	KindMedia     Kind = "media"
)

// Resource 被操作对象；OwnerID 为 0 表示无个人归属（如官方列表）
type Resource struct {
	Kind     Kind
	OwnerID  int64
	Public   bool
	Official bool
}

func List(l domain.List) Resource {
	return Resource{Kind: KindList, OwnerID: l.UserID, Public: l.IsPublic || l.IsOfficial, Official: l.IsOfficial}
}

func Comment(c domain.Comment) Resource { return Resource{Kind: KindComment, OwnerID: c.UserID} }

func Own(k Kind, owner int64) Resource { return Resource{Kind: k, OwnerID: owner} }

func Users() Resource { return Resource{Kind: KindUser} }

// CanPerform 纯函数，不访问任何状态
func CanPerform(a Actor, act Action, r Resource) bool {
	switch act {
	case ManageUsers, Feature, Moderate:
		return a.IsAdmin()
	case Read:
		if r.Kind == KindMedia || r.Public || r.Official {
			return true
		}
		if r.Kind == KindUser {
			return a.IsAdmin()
		}
		return a.IsAdmin() || (a.Authenticated() && a.ID == r.OwnerID)
	case Create:
		if r.Official {
			return a.IsAdmin()
		}
		return a.Authenticated()
	case Edit, Delete, Share:
		if r.Official {
			return a.IsAdmin()
		}
		return a.IsAdmin() || (a.Authenticated() && r.OwnerID != 0 && a.ID == r.OwnerID)
	}
	return false
}

// Check is CanPerform returning the error a caller should see.
func Check(a Actor, act Action, r Resource) error {
	if CanPerform(a, act, r) {
		return nil
	}
	if !a.Authenticated() {
		return domain.NotAuthenticated()
	}
	return domain.PermissionDenied("you do not have permission to %s this %s", verb(act), r.Kind)
}

func verb(a Action) string {
	switch a {
	case ManageUsers:
		return "manage"
	case Feature:
		return "feature"
	}
	return string(a)
}
