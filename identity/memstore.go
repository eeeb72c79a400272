package identity

import (
	"context"
	"sync"
	"time"

	"budget/apperr"
	"budget/models"

	"github.com/pkg/errors"
)

// MemoryUserStore 进程内用户存储，用于 storage.backend=memory
type MemoryUserStore struct {
	mu     sync.Mutex
	nextID uint
	users  map[uint]models.User
}

var _ UserStore = (*MemoryUserStore)(nil)

// NewMemoryUserStore 创建内存用户存储
func NewMemoryUserStore() *MemoryUserStore {
	return &MemoryUserStore{users: make(map[uint]models.User)}
}

func (s *MemoryUserStore) CreateUser(_ context.Context, u *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.users {
		if existing.Username == u.Username {
			return errors.Wrapf(apperr.ErrConflict, "username %q", u.Username)
		}
	}
	s.nextID++
	now := time.Now()
	u.ID = s.nextID
	u.CreatedAt, u.UpdatedAt = now, now
	s.users[u.ID] = *u
	return nil
}

func (s *MemoryUserStore) FindByUsername(_ context.Context, username string) (models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, u := range s.users {
		if u.Username == username {
			return u, nil
		}
	}
	return models.User{}, apperr.NotFoundf("user %q", username)
}

func (s *MemoryUserStore) FindByID(_ context.Context, id uint) (models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[id]
	if !ok {
		return models.User{}, apperr.NotFoundf("user %d", id)
	}
	return u, nil
}

func (s *MemoryUserStore) UpdatePassword(_ context.Context, id uint, digest string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[id]
	if !ok {
		return apperr.NotFoundf("user %d", id)
	}
	u.Password = digest
	u.UpdatedAt = time.Now()
	s.users[id] = u
	return nil
}
