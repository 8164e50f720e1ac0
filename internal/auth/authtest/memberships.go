// Package authtest provides an in-memory membership table for service tests.
package authtest

import (
	"context"
	"sync"

	"github.com/frahmantamala/expense-reimbursement/internal/auth"
	"github.com/frahmantamala/expense-reimbursement/pkg/logger"
)

type key struct{ org, user int64 }

type Memberships struct {
	mu    sync.RWMutex
	roles map[key]auth.Role
	Err   error
}

func NewMemberships() *Memberships {
	return &Memberships{roles: make(map[key]auth.Role)}
}

func (m *Memberships) Set(orgID, userID int64, role auth.Role) *Memberships {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.roles[key{orgID, userID}] = role
	return m
}

func (m *Memberships) Remove(orgID, userID int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.roles, key{orgID, userID})
}

func (m *Memberships) GetRole(ctx context.Context, orgID, userID int64) (auth.Role, error) {
	if m.Err != nil {
		return "", m.Err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.roles[key{orgID, userID}], nil
}

// Guard wraps m in a real auth.Guard with a silent logger.
func (m *Memberships) Guard() *auth.Guard {
	return auth.NewGuard(m, logger.Discard())
}
