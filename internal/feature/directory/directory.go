// Package directory owns every user record and the collections nested in it.
//
// A Directory is not safe for concurrent use; the service layer serializes access.
package directory

import (
	"strings"
	"time"

	"go.uber.org/zap"

	"cinedeck/internal/domain"
	"cinedeck/internal/feature/policy"
	"cinedeck/pkg/utils"
)

// 两个预置账号，永远不能被硬删除
const (
	SeedRegularID int64 = 1
	SeedAdminID   int64 = 2
)

func IsProtected(id int64) bool { return id == SeedRegularID || id == SeedAdminID }

type Options struct {
	HashCost int              // bcrypt cost，<=0 用默认值
	IDs      *utils.IDGen     // 与 overlay 共用，保证全局唯一
	Now      func() time.Time // 测试注入
	Log      *zap.Logger
}

type Directory struct {
	users []*domain.User
	ids   *utils.IDGen
	now   func() time.Time
	cost  int
	log   *zap.Logger
}

// SeedUsers returns the predefined accounts with hashed passwords.
func SeedUsers(cost int, now time.Time) ([]domain.User, error) {
	seeds := []struct {
		id           int64
		username, pw string
		name         string
		role         domain.Role
	}{
		{SeedRegularID, "manuel", "senha123", "Manuel", domain.RoleRegular},
		{SeedAdminID, "jose", "admin123", "José", domain.RoleAdmin},
	}
	out := make([]domain.User, 0, len(seeds))
	for _, s := range seeds {
		hash, err := utils.HashPassword(s.pw, cost)
		if err != nil {
			return nil, err
		}
		out = append(out, domain.User{
			ID: s.id, Username: s.username, Password: hash, Name: s.name,
			Role: s.role, Active: true, CreatedAt: now,
		})
	}
	return out, nil
}

// New builds a directory from persisted records, normalizing them once so every
// uniqueness invariant holds before the first read.
func New(users []domain.User, opt Options) *Directory {
	if opt.IDs == nil {
		opt.IDs = utils.NewIDGen(opt.Now)
	}
	if opt.Now == nil {
		opt.Now = time.Now
	}
	if opt.Log == nil {
		opt.Log = zap.NewNop()
	}
	d := &Directory{ids: opt.IDs, now: opt.Now, cost: opt.HashCost, log: opt.Log}
	d.load(users)
	return d
}

func (d *Directory) load(users []domain.User) {
	seenUser := map[int64]struct{}{}
	seenComment := map[int64]struct{}{}
	seenList := map[int64]struct{}{}
	dropped := 0

	for i := range users {
		u := users[i].Clone()
		if _, dup := seenUser[u.ID]; dup || u.ID == 0 || d.byUsername(u.Username) != nil {
			dropped++
			continue
		}
		seenUser[u.ID] = struct{}{}
		d.ids.Observe(u.ID)
		u.Role = domain.NormalizeRole(u.Role)

		u.Watchlist = dedupBy(u.Watchlist, func(m domain.MediaRef) int64 { return m.ID })
		u.Ratings = dedupBy(u.Ratings, func(r domain.Rating) ratingKey { return ratingKey{r.MediaID, r.MediaType} })

		comments := u.Comments[:0:0]
		for _, c := range u.Comments {
			if _, dup := seenComment[c.ID]; dup {
				dropped++
				continue
			}
			seenComment[c.ID] = struct{}{}
			d.ids.Observe(c.ID)
			c.UserID = u.ID
			comments = append(comments, c)
		}
		u.Comments = comments

		lists := u.CustomLists[:0:0]
		for _, l := range u.CustomLists {
			if _, dup := seenList[l.ID]; dup || l.ID == 0 {
				dropped++
				continue
			}
			seenList[l.ID] = struct{}{}
			d.ids.Observe(l.ID)
			l.UserID, l.IsOfficial = u.ID, false
			l.Normalize()
			lists = append(lists, l)
		}
		u.CustomLists = lists
		for _, r := range u.Ratings {
			d.ids.Observe(r.ID)
		}

		d.users = append(d.users, &u)
	}
	if dropped > 0 {
		d.log.Warn("directory: dropped duplicate records on load", zap.Int("dropped", dropped))
	}
}

type ratingKey struct {
	id int64
	t  domain.MediaType
}

func dedupBy[T any, K comparable](in []T, key func(T) K) []T {
	out := make([]T, 0, len(in))
	seen := make(map[K]struct{}, len(in))
	for _, v := range in {
		k := key(v)
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, v)
	}
	return out
}

// Export returns deep copies of every record, credentials included, for persistence.
func (d *Directory) Export() []domain.User {
	out := make([]domain.User, 0, len(d.users))
	for _, u := range d.users {
		out = append(out, u.Clone())
	}
	return out
}

// Get 按 ID 查账号（不含凭据）
func (d *Directory) Get(id int64) (domain.Account, bool) {
	u := d.byID(id)
	if u == nil {
		return domain.Account{}, false
	}
	return u.Account(), true
}

func (d *Directory) byID(id int64) *domain.User {
	for _, u := range d.users {
		if u.ID == id {
			return u
		}
	}
	return nil
}

func (d *Directory) byUsername(name string) *domain.User {
	if strings.TrimSpace(name) == "" {
		return nil
	}
	for _, u := range d.users {
		if domain.SameUsername(u.Username, name) {
			return u
		}
	}
	return nil
}

// actorUser 解析当前操作者对应的记录
func (d *Directory) actorUser(a policy.Actor) (*domain.User, error) {
	if !a.Authenticated() {
		return nil, domain.NotAuthenticated()
	}
	u := d.byID(a.ID)
	if u == nil {
		return nil, domain.NotFound("user %d not found", a.ID)
	}
	return u, nil
}
