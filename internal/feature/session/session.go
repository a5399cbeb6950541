// Package session tracks the single logged-in account of a store.
package session

import (
	"encoding/json"

	"go.uber.org/zap"

	"cinedeck/internal/domain"
	"cinedeck/internal/feature/policy"
)

// Accounts 按 ID 取最新账号，由 directory 实现
type Accounts interface {
	Get(id int64) (domain.Account, bool)
}

type Manager struct {
	current *domain.Account
	log     *zap.Logger
}

func New(log *zap.Logger) *Manager {
	if log == nil {
		log = zap.NewNop()
	}
	return &Manager{log: log}
}

// Restore rebuilds the session from a persisted snapshot. Anything unusable (bad JSON,
// unknown user, deactivated user) leaves the session anonymous.
func Restore(raw []byte, accounts Accounts, log *zap.Logger) *Manager {
	m := New(log)
	if len(raw) == 0 || string(raw) == "null" {
		return m
	}
	var snap struct {
		ID int64 `json:"id"`
	}
	if err := json.Unmarshal(raw, &snap); err != nil {
		m.log.Warn("session: discarding unreadable snapshot", zap.Error(err))
		return m
	}
	acc, ok := accounts.Get(snap.ID)
	switch {
	case !ok:
		m.log.Warn("session: snapshot user no longer exists", zap.Int64("id", snap.ID))
	case !acc.Active:
		m.log.Info("session: snapshot user is deactivated", zap.Int64("id", snap.ID))
	default:
		m.current = &acc
	}
	return m
}

func (m *Manager) Login(acc domain.Account) {
	m.current = &acc
	m.log.Info("session: login", zap.Int64("id", acc.ID), zap.String("username", acc.Username))
}

func (m *Manager) Logout() {
	if m.current != nil {
		m.log.Info("session: logout", zap.Int64("id", m.current.ID))
	}
	m.current = nil
}

// Current 返回当前账号快照
func (m *Manager) Current() (domain.Account, bool) {
	if m.current == nil {
		return domain.Account{}, false
	}
	return *m.current, true
}

func (m *Manager) Actor() policy.Actor {
	if m.current == nil {
		return policy.Anonymous
	}
	return policy.ActorOf(*m.current)
}

// Refresh re-derives the snapshot after a mutation. It reports false when the session
// had to end because the user is gone or deactivated.
func (m *Manager) Refresh(accounts Accounts) bool {
	if m.current == nil {
		return true
	}
	acc, ok := accounts.Get(m.current.ID)
	if !ok || !acc.Active {
		m.log.Info("session: ended by account change", zap.Int64("id", m.current.ID))
		m.current = nil
		return false
	}
	m.current = &acc
	return true
}

// Snapshot returns the value persisted under currentUser, or nil when anonymous.
func (m *Manager) Snapshot() ([]byte, error) {
	if m.current == nil {
		return nil, nil
	}
	return json.Marshal(m.current)
}
