package identity

import (
	"context"
	"strings"
	"sync"

	"github.com/integration-system/backend/internal/domain"
)

type fakeStore struct {
	mu         sync.Mutex
	principals map[string]*domain.Principal
	roles      map[domain.Role]bool

	failCreate error
	failRoles  error
}

func newFakeStore() *fakeStore {
	roles := map[domain.Role]bool{}
	for _, r := range domain.AllRoles {
		roles[r] = true
	}
	return &fakeStore{
		principals: map[string]*domain.Principal{},
		roles:      roles,
	}
}

func (f *fakeStore) add(p *domain.Principal) {
	f.mu.Lock()
	defer f.mu.Unlock()
	copied := *p
	f.principals[p.ID] = &copied
}

func (f *fakeStore) CreatePrincipal(_ context.Context, p *domain.Principal) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failCreate != nil {
		return f.failCreate
	}
	for _, existing := range f.principals {
		if strings.EqualFold(existing.Email, p.Email) {
			return domain.NewIdentityError("create", domain.IdentityCodeDuplicateEmail, p.Email)
		}
		if existing.Username == p.Username {
			return domain.NewIdentityError("create", domain.IdentityCodeDuplicateUserName, p.Username)
		}
	}
	copied := *p
	f.principals[p.ID] = &copied
	return nil
}

func (f *fakeStore) find(match func(p *domain.Principal) bool) (*domain.Principal, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, p := range f.principals {
		if match(p) {
			copied := *p
			return &copied, nil
		}
	}
	return nil, domain.ErrPrincipalNotFound
}

func (f *fakeStore) FindByID(_ context.Context, id string) (*domain.Principal, error) {
	return f.find(func(p *domain.Principal) bool { return p.ID == id })
}

func (f *fakeStore) FindByEmail(_ context.Context, email string) (*domain.Principal, error) {
	return f.find(func(p *domain.Principal) bool { return strings.EqualFold(p.Email, email) })
}

func (f *fakeStore) FindByUsername(_ context.Context, username string) (*domain.Principal, error) {
	return f.find(func(p *domain.Principal) bool { return p.Username == username })
}

func (f *fakeStore) UpdatePrincipal(_ context.Context, p *domain.Principal) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.principals[p.ID]; !ok {
		return domain.NewIdentityError("update", domain.IdentityCodeUserNotFound, p.ID)
	}
	copied := *p
	f.principals[p.ID] = &copied
	return nil
}

func (f *fakeStore) DeletePrincipal(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.principals[id]; !ok {
		return domain.NewIdentityError("delete", domain.IdentityCodeUserNotFound, id)
	}
	delete(f.principals, id)
	return nil
}

func (f *fakeStore) RoleExists(_ context.Context, role domain.Role) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.roles[role], nil
}

func (f *fakeStore) CreateRole(_ context.Context, role domain.Role) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.roles[role] = true
	return nil
}

func (f *fakeStore) SetRoles(_ context.Context, id string, roles []domain.Role) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failRoles != nil {
		return f.failRoles
	}
	p, ok := f.principals[id]
	if !ok {
		return domain.NewIdentityError("set roles", domain.IdentityCodeUserNotFound, id)
	}
	p.Roles = append([]domain.Role(nil), roles...)
	return nil
}

func (f *fakeStore) HasAnyWithRole(_ context.Context, role domain.Role) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, p := range f.principals {
		for _, r := range p.Roles {
			if r == role {
				return true, nil
			}
		}
	}
	return false, nil
}
