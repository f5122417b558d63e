package session

import (
	"context"
	"strings"
	"sync"

	"github.com/pkg/errors"

	"github.com/trezcool/akademik/core"
)

const path = "/user"

// Identity is the signed in user as reported by the backend.
type Identity struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Picture string `json:"picture"`
	IsAdmin bool   `json:"isAdmin"`
	Roles   string `json:"roles"` // comma separated, eg: "ROLE_ADMIN,ROLE_USER"
}

// RoleList splits Roles.
func (id Identity) RoleList() []string {
	roles := make([]string, 0)
	for _, role := range strings.Split(id.Roles, ",") {
		if role = core.CleanString(role); role != "" {
			roles = append(roles, role)
		}
	}
	return roles
}

func (id Identity) HasRole(role string) bool {
	for _, r := range id.RoleList() {
		if r == role {
			return true
		}
	}
	return false
}

type Session struct {
	api    core.APIClient
	logger core.Logger

	mu       sync.RWMutex
	identity Identity
	loaded   bool
}

func New(api core.APIClient, logger core.Logger) *Session {
	return &Session{api: api, logger: logger}
}

// Load fetches the identity. Failures are logged only; the previous identity is kept.
func (s *Session) Load(ctx context.Context) error {
	var id Identity
	if err := s.api.Get(ctx, path, &id); err != nil {
		err = errors.Wrap(err, "fetching user")
		s.logger.Error(err.Error(), err)
		return err
	}
	s.mu.Lock()
	s.identity = id
	s.loaded = true
	s.mu.Unlock()
	s.logger.Info("signed in as "+id.Name, id)
	return nil
}

func (s *Session) Identity() Identity {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.identity
}

func (s *Session) Loaded() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loaded
}
