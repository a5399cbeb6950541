package directory

import (
	"crypto/subtle"
	"strings"

	"go.uber.org/zap"

	"cinedeck/internal/domain"
	"cinedeck/internal/feature/policy"
	"cinedeck/pkg/utils"
)

type NewUser struct {
	Username string      `json:"username"`
	Password string      `json:"password"`
	Name     string      `json:"name"`
	Role     domain.Role `json:"role"`
}

// UserPatch nil 字段不修改
type UserPatch struct {
	Username *string      `json:"username"`
	Name     *string      `json:"name"`
	Role     *domain.Role `json:"role"`
	Password *string      `json:"password"`
	Active   *bool        `json:"active"`
}

func (d *Directory) CreateUser(a policy.Actor, in NewUser) (domain.Account, error) {
	if err := policy.Check(a, policy.ManageUsers, policy.Users()); err != nil {
		return domain.Account{}, err
	}
	return d.insert(in, domain.NormalizeRole(in.Role))
}

// Register 自助注册，角色固定为普通用户
func (d *Directory) Register(in NewUser) (domain.Account, error) {
	return d.insert(in, domain.RoleRegular)
}

func (d *Directory) insert(in NewUser, role domain.Role) (domain.Account, error) {
	username := strings.TrimSpace(in.Username)
	if username == "" {
		return domain.Account{}, domain.Validation("username is required")
	}
	if in.Password == "" {
		return domain.Account{}, domain.Validation("password is required")
	}
	if d.byUsername(username) != nil {
		return domain.Account{}, domain.DuplicateUsername(username)
	}
	hash, err := utils.HashPassword(in.Password, d.cost)
	if err != nil {
		return domain.Account{}, domain.Internal("hash password failed", err)
	}
	name := strings.TrimSpace(in.Name)
	if name == "" {
		name = username
	}
	u := &domain.User{
		ID:          d.ids.Next(),
		Username:    username,
		Password:    hash,
		Name:        name,
		Role:        role,
		Active:      true,
		CreatedAt:   d.now(),
		Watchlist:   []domain.MediaRef{},
		Ratings:     []domain.Rating{},
		Comments:    []domain.Comment{},
		CustomLists: []domain.List{},
	}
	d.users = append(d.users, u)
	d.log.Info("directory: user created", zap.Int64("id", u.ID), zap.String("username", u.Username), zap.String("role", string(role)))
	return u.Account(), nil
}

func (d *Directory) UpdateUser(a policy.Actor, id int64, p UserPatch) (domain.Account, error) {
	if err := policy.Check(a, policy.ManageUsers, policy.Users()); err != nil {
		return domain.Account{}, err
	}
	u := d.byID(id)
	if u == nil {
		return domain.Account{}, domain.NotFound("user %d not found", id)
	}

	// 先全部校验，再统一写入
	var username string
	if p.Username != nil {
		username = strings.TrimSpace(*p.Username)
		if username == "" {
			return domain.Account{}, domain.Validation("username is required")
		}
		if other := d.byUsername(username); other != nil && other.ID != id {
			return domain.Account{}, domain.DuplicateUsername(username)
		}
	}
	var hash string
	if p.Password != nil {
		if *p.Password == "" {
			return domain.Account{}, domain.Validation("password is required")
		}
		h, err := utils.HashPassword(*p.Password, d.cost)
		if err != nil {
			return domain.Account{}, domain.Internal("hash password failed", err)
		}
		hash = h
	}

	if p.Username != nil && username != u.Username {
		u.Username = username
		for i := range u.Comments {
			u.Comments[i].Username = username
		}
	}
	if p.Name != nil {
		u.Name = strings.TrimSpace(*p.Name)
	}
	if p.Role != nil {
		u.Role = domain.NormalizeRole(*p.Role)
	}
	if hash != "" {
		u.Password = hash
	}
	if p.Active != nil {
		u.Active = *p.Active
	}
	return u.Account(), nil
}

func (d *Directory) SetActive(a policy.Actor, id int64, active bool) (domain.Account, error) {
	if err := policy.Check(a, policy.ManageUsers, policy.Users()); err != nil {
		return domain.Account{}, err
	}
	u := d.byID(id)
	if u == nil {
		return domain.Account{}, domain.NotFound("user %d not found", id)
	}
	u.Active = active
	d.log.Info("directory: user activation changed", zap.Int64("id", id), zap.Bool("active", active))
	return u.Account(), nil
}

// DeleteUser removes the record with everything nested in it and returns the ids
// of the lists that went with it.
func (d *Directory) DeleteUser(a policy.Actor, id int64) ([]int64, error) {
	if err := policy.Check(a, policy.ManageUsers, policy.Users()); err != nil {
		return nil, err
	}
	if IsProtected(id) {
		return nil, domain.ProtectedAccount()
	}
	for i, u := range d.users {
		if u.ID != id {
			continue
		}
		listIDs := make([]int64, 0, len(u.CustomLists))
		for _, l := range u.CustomLists {
			listIDs = append(listIDs, l.ID)
		}
		d.users = append(d.users[:i], d.users[i+1:]...)
		d.log.Info("directory: user deleted", zap.Int64("id", id), zap.Int("lists", len(listIDs)))
		return listIDs, nil
	}
	return nil, domain.NotFound("user %d not found", id)
}

// Authenticate checks credentials. Legacy plaintext secrets are accepted once and
// replaced by a bcrypt hash, so callers must persist after a successful login.
func (d *Directory) Authenticate(username, password string) (domain.Account, error) {
	u := d.byUsername(username)
	if u == nil || u.Password == "" || password == "" {
		return domain.Account{}, domain.InvalidCredentials("")
	}
	if utils.IsHashed(u.Password) {
		if !utils.CheckPassword(password, u.Password) {
			return domain.Account{}, domain.InvalidCredentials("")
		}
	} else {
		if subtle.ConstantTimeCompare([]byte(u.Password), []byte(password)) != 1 {
			return domain.Account{}, domain.InvalidCredentials("")
		}
	}
	// 被拒绝的登录不改动任何状态
	if !u.Active {
		return domain.Account{}, domain.InvalidCredentials("account is deactivated")
	}
	if !utils.IsHashed(u.Password) {
		if hash, err := utils.HashPassword(password, d.cost); err == nil {
			u.Password = hash
			d.log.Info("directory: upgraded legacy password", zap.Int64("id", u.ID))
		}
	}
	return u.Account(), nil
}

func (d *Directory) Users(a policy.Actor) ([]domain.Account, error) {
	if err := policy.Check(a, policy.ManageUsers, policy.Users()); err != nil {
		return nil, err
	}
	out := make([]domain.Account, 0, len(d.users))
	for _, u := range d.users {
		out = append(out, u.Account())
	}
	return out, nil
}
