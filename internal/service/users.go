package service

import (
	"context"

	"cinedeck/internal/domain"
	"cinedeck/internal/feature/directory"
	"cinedeck/internal/feature/policy"
)

// Login 成功后会话切换为该账号；旧的明文密码在此时升级为哈希
func (s *Store) Login(ctx context.Context, username, password string) Result[domain.Account] {
	return mutate(ctx, s, "login", func(policy.Actor) (domain.Account, error) {
		acc, err := s.dir.Authenticate(username, password)
		if err != nil {
			return domain.Account{}, err
		}
		s.sess.Login(acc)
		return acc, nil
	})
}

func (s *Store) Logout(ctx context.Context) Result[None] {
	return mutate(ctx, s, "logout", func(policy.Actor) (None, error) {
		s.sess.Logout()
		return None{}, nil
	})
}

// Register creates a regular account without logging it in.
func (s *Store) Register(ctx context.Context, in directory.NewUser) Result[domain.Account] {
	return mutate(ctx, s, "register", func(policy.Actor) (domain.Account, error) {
		return s.dir.Register(in)
	})
}

func (s *Store) CurrentUser() Result[domain.Account] {
	return read(s, "current_user", func(policy.Actor) (domain.Account, error) {
		acc, ok := s.sess.Current()
		if !ok {
			return domain.Account{}, domain.NotAuthenticated()
		}
		return acc, nil
	})
}

// --- user administration ---

func (s *Store) CreateUser(ctx context.Context, in directory.NewUser) Result[domain.Account] {
	return mutate(ctx, s, "create_user", func(a policy.Actor) (domain.Account, error) {
		return s.dir.CreateUser(a, in)
	})
}

func (s *Store) UpdateUser(ctx context.Context, id int64, p directory.UserPatch) Result[domain.Account] {
	return mutate(ctx, s, "update_user", func(a policy.Actor) (domain.Account, error) {
		return s.dir.UpdateUser(a, id, p)
	})
}

func (s *Store) DeactivateUser(ctx context.Context, id int64) Result[domain.Account] {
	return mutate(ctx, s, "deactivate_user", func(a policy.Actor) (domain.Account, error) {
		return s.dir.SetActive(a, id, false)
	})
}

func (s *Store) ActivateUser(ctx context.Context, id int64) Result[domain.Account] {
	return mutate(ctx, s, "activate_user", func(a policy.Actor) (domain.Account, error) {
		return s.dir.SetActive(a, id, true)
	})
}

// DeleteUser removes the account with its collections and unfeatures its lists.
func (s *Store) DeleteUser(ctx context.Context, id int64) Result[None] {
	return mutate(ctx, s, "delete_user", func(a policy.Actor) (None, error) {
		lists, err := s.dir.DeleteUser(a, id)
		if err != nil {
			return None{}, err
		}
		for _, l := range lists {
			s.overlay.Forget(l)
		}
		return None{}, nil
	})
}

func (s *Store) GetAllUsers() Result[[]domain.Account] {
	return read(s, "get_all_users", func(a policy.Actor) ([]domain.Account, error) {
		return s.dir.Users(a)
	})
}

// GetUser 管理员按 ID 查看账号
func (s *Store) GetUser(id int64) Result[domain.Account] {
	return read(s, "get_user", func(a policy.Actor) (domain.Account, error) {
		if err := policy.Check(a, policy.ManageUsers, policy.Users()); err != nil {
			return domain.Account{}, err
		}
		acc, ok := s.dir.Get(id)
		if !ok {
			return domain.Account{}, domain.NotFound("user %d not found", id)
		}
		return acc, nil
	})
}
