package application

import (
	"context"
	"sync"

	"github.com/easypayhq/easypay/internal/domain/entity"
	repo "github.com/easypayhq/easypay/internal/domain/repository"
)

// fakeAccountRepo is an in-memory AccountRepository keyed by username.
type fakeAccountRepo struct {
	mu       sync.Mutex
	accounts map[string]*entity.Account
	catalog  *fakeCatalogRepo
}

func newFakeAccountRepo() *fakeAccountRepo {
	return &fakeAccountRepo{accounts: make(map[string]*entity.Account)}
}

func (f *fakeAccountRepo) Create(_ context.Context, a *entity.Account) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *a
	f.accounts[a.Username] = &cp
	return nil
}

func (f *fakeAccountRepo) GetByUsername(_ context.Context, username string) (*entity.Account, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	a, ok := f.accounts[username]
	if !ok {
		return nil, repo.ErrNotFound
	}
	cp := *a
	return &cp, nil
}

func (f *fakeAccountRepo) Exists(_ context.Context, username string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.accounts[username]
	return ok, nil
}

func (f *fakeAccountRepo) UpdateEmail(_ context.Context, username, newEmail string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	a, ok := f.accounts[username]
	if !ok {
		return repo.ErrNotFound
	}
	a.Email = newEmail
	return nil
}

func (f *fakeAccountRepo) UpdatePassword(_ context.Context, username, ciphertext string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	a, ok := f.accounts[username]
	if !ok {
		return repo.ErrNotFound
	}
	a.Password = ciphertext
	return nil
}

func (f *fakeAccountRepo) UpdateProviderKey(_ context.Context, username, ciphertext string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	a, ok := f.accounts[username]
	if !ok {
		return repo.ErrNotFound
	}
	a.ProviderKey = ciphertext
	return nil
}

func (f *fakeAccountRepo) Rename(_ context.Context, currentUsername, newUsername string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	a, ok := f.accounts[currentUsername]
	if !ok {
		return repo.ErrNotFound
	}
	delete(f.accounts, currentUsername)
	a.Username = newUsername
	f.accounts[newUsername] = a
	if f.catalog != nil {
		f.catalog.rename(currentUsername, newUsername)
	}
	return nil
}

var _ repo.AccountRepository = (*fakeAccountRepo)(nil)

// brokenAccountRepo simulates a storage outage: every lookup fails with err.
type brokenAccountRepo struct {
	repo.AccountRepository
	err error
}

func (b *brokenAccountRepo) GetByUsername(context.Context, string) (*entity.Account, error) {
	return nil, b.err
}

// fakeCatalogRepo is an in-memory CatalogRepository with auto-increment ids.
type fakeCatalogRepo struct {
	mu     sync.Mutex
	nextID int64
	items  []entity.CatalogItem
}

func newFakeCatalogRepo() *fakeCatalogRepo {
	return &fakeCatalogRepo{nextID: 1}
}

func (f *fakeCatalogRepo) Insert(_ context.Context, item *entity.CatalogItem) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	item.ID = f.nextID
	f.nextID++
	f.items = append(f.items, *item)
	return nil
}

func (f *fakeCatalogRepo) ListByOwner(_ context.Context, username string) ([]entity.CatalogItem, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]entity.CatalogItem, 0)
	// newest first, matching the SQL ordering
	for i := len(f.items) - 1; i >= 0; i-- {
		if f.items[i].OwnerUsername == username {
			out = append(out, f.items[i])
		}
	}
	return out, nil
}

func (f *fakeCatalogRepo) Delete(_ context.Context, id int64, ownerUsername string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.items {
		if f.items[i].ID == id && f.items[i].OwnerUsername == ownerUsername {
			f.items = append(f.items[:i], f.items[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeCatalogRepo) rename(oldOwner, newOwner string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.items {
		if f.items[i].OwnerUsername == oldOwner {
			f.items[i].OwnerUsername = newOwner
		}
	}
}

var _ repo.CatalogRepository = (*fakeCatalogRepo)(nil)
