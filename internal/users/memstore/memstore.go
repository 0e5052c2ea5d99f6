// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package memstore is an in-process implementation of the account, session and
permission repositories.

Every operation holds a single mutex, so each call is atomic the way a
transaction is. The same unique constraints as the relational schema are
enforced (username, email, session token, catalog names). It backs unit
tests and local runs without PostgreSQL.
*/
package memstore

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/HacMan137/BackSite/internal/users/account"
	"github.com/HacMan137/BackSite/internal/users/permission"
	"github.com/HacMan137/BackSite/internal/users/session"
)

// ErrDuplicateToken mirrors the unique constraint on session tokens.
var ErrDuplicateToken = errors.New("memstore: duplicate session token")

// Store holds all identity tables in memory.
type Store struct {
	mu sync.Mutex

	users      map[string]account.User        // by id
	sessions   map[string]session.Session     // by token
	catalog    map[string]struct{}            // permission names
	groups     map[string]map[string]struct{} // group → permissions
	userGrants map[string]map[string]struct{} // user → permissions
	userGroups map[string]map[string]struct{} // user → groups
}

// New returns an empty store.
func New() *Store {
	return &Store{
		users:      make(map[string]account.User),
		sessions:   make(map[string]session.Session),
		catalog:    make(map[string]struct{}),
		groups:     make(map[string]map[string]struct{}),
		userGrants: make(map[string]map[string]struct{}),
		userGroups: make(map[string]map[string]struct{}),
	}
}

// Accounts returns the [account.Repository] view of the store.
func (store *Store) Accounts() *Accounts { return &Accounts{store: store} }

// Sessions returns the [session.Repository] view of the store.
func (store *Store) Sessions() *Sessions { return &Sessions{store: store} }

// Permissions returns the [permission.Repository] view of the store.
func (store *Store) Permissions() *Permissions { return &Permissions{store: store} }

// # Accounts

// Accounts implements [account.Repository].
type Accounts struct{ store *Store }

var _ account.Repository = (*Accounts)(nil)

func (repository *Accounts) Create(_ context.Context, user *account.User) error {
	store := repository.store
	store.mu.Lock()
	defer store.mu.Unlock()

	for _, existing := range store.users {
		if existing.Email == user.Email {
			return account.ErrEmailInUse
		}
		if existing.Username == user.Username {
			return account.ErrUsernameInUse
		}
	}

	now := time.Now().UTC()
	if user.CreatedAt.IsZero() {
		user.CreatedAt = now
	}
	user.UpdatedAt = now
	store.users[user.ID] = *user
	return nil
}

func (repository *Accounts) FindByID(_ context.Context, id string) (*account.User, error) {
	return repository.find(func(user account.User) bool { return user.ID == id })
}

func (repository *Accounts) FindByUsername(_ context.Context, username string) (*account.User, error) {
	return repository.find(func(user account.User) bool { return user.Username == username })
}

func (repository *Accounts) FindByEmail(_ context.Context, email string) (*account.User, error) {
	return repository.find(func(user account.User) bool { return user.Email == email })
}

func (repository *Accounts) EmailExists(context context.Context, email string) (bool, error) {
	return repository.exists(repository.FindByEmail(context, email))
}

func (repository *Accounts) UsernameExists(context context.Context, username string) (bool, error) {
	return repository.exists(repository.FindByUsername(context, username))
}

func (repository *Accounts) UpdatePassword(_ context.Context, userID, expectedHash, newHash string) (bool, error) {
	store := repository.store
	store.mu.Lock()
	defer store.mu.Unlock()

	user, ok := store.users[userID]
	if !ok || user.PasswordHash != expectedHash {
		return false, nil
	}
	user.PasswordHash = newHash
	user.UpdatedAt = time.Now().UTC()
	store.users[userID] = user
	return true, nil
}

func (repository *Accounts) UpdateSecret(_ context.Context, userID, secret string) error {
	store := repository.store
	store.mu.Lock()
	defer store.mu.Unlock()

	user, ok := store.users[userID]
	if !ok {
		return account.ErrNotFound
	}
	user.Secret = secret
	store.users[userID] = user
	return nil
}

func (repository *Accounts) MarkVerified(_ context.Context, userID, presentedSecret, newSecret string) (bool, error) {
	store := repository.store
	store.mu.Lock()
	defer store.mu.Unlock()

	user, ok := store.users[userID]
	if !ok || user.Secret != presentedSecret {
		return false, nil
	}
	user.Verified = true
	user.Secret = newSecret
	store.users[userID] = user
	return true, nil
}

func (repository *Accounts) find(match func(account.User) bool) (*account.User, error) {
	store := repository.store
	store.mu.Lock()
	defer store.mu.Unlock()

	for _, user := range store.users {
		if match(user) {
			found := user
			return &found, nil
		}
	}
	return nil, account.ErrNotFound
}

func (repository *Accounts) exists(_ *account.User, err error) (bool, error) {
	if errors.Is(err, account.ErrNotFound) {
		return false, nil
	}
	return err == nil, err
}

// # Sessions

// Sessions implements [session.Repository].
type Sessions struct{ store *Store }

var _ session.Repository = (*Sessions)(nil)

func (repository *Sessions) Create(_ context.Context, created *session.Session) error {
	store := repository.store
	store.mu.Lock()
	defer store.mu.Unlock()

	if _, taken := store.sessions[created.Token]; taken {
		return ErrDuplicateToken
	}
	if _, ok := store.users[created.UserID]; !ok {
		return account.ErrNotFound
	}
	store.sessions[created.Token] = *created
	return nil
}

func (repository *Sessions) FindByToken(_ context.Context, token string) (*session.Session, error) {
	store := repository.store
	store.mu.Lock()
	defer store.mu.Unlock()

	found, ok := store.sessions[token]
	if !ok {
		return nil, session.ErrNotFound
	}
	return &found, nil
}

func (repository *Sessions) Delete(_ context.Context, userID, token string) (bool, error) {
	store := repository.store
	store.mu.Lock()
	defer store.mu.Unlock()

	found, ok := store.sessions[token]
	if !ok || found.UserID != userID {
		return false, nil
	}
	delete(store.sessions, token)
	return true, nil
}

func (repository *Sessions) DeleteByUser(_ context.Context, userID string) (int64, error) {
	return repository.deleteWhere(func(candidate session.Session) bool { return candidate.UserID == userID }), nil
}

func (repository *Sessions) DeleteExpired(_ context.Context, now time.Time) (int64, error) {
	return repository.deleteWhere(func(candidate session.Session) bool { return candidate.Expired(now) }), nil
}

// Count returns the number of stored sessions, expired or not.
func (repository *Sessions) Count() int {
	store := repository.store
	store.mu.Lock()
	defer store.mu.Unlock()
	return len(store.sessions)
}

// Put stores a session verbatim, bypassing the manager. Tests use it to plant backdated rows.
func (repository *Sessions) Put(planted session.Session) {
	store := repository.store
	store.mu.Lock()
	defer store.mu.Unlock()
	store.sessions[planted.Token] = planted
}

func (repository *Sessions) deleteWhere(match func(session.Session) bool) int64 {
	store := repository.store
	store.mu.Lock()
	defer store.mu.Unlock()

	var removed int64
	for token, candidate := range store.sessions {
		if match(candidate) {
			delete(store.sessions, token)
			removed++
		}
	}
	return removed
}

// # Permissions

// Permissions implements [permission.Repository].
type Permissions struct{ store *Store }

var _ permission.Repository = (*Permissions)(nil)

func (repository *Permissions) DirectPermissions(_ context.Context, userID string) ([]string, error) {
	store := repository.store
	store.mu.Lock()
	defer store.mu.Unlock()
	return keys(store.userGrants[userID]), nil
}

func (repository *Permissions) GroupPermissions(_ context.Context, userID string) ([]string, error) {
	store := repository.store
	store.mu.Lock()
	defer store.mu.Unlock()

	var names []string
	for group := range store.userGroups[userID] {
		names = append(names, keys(store.groups[group])...)
	}
	return names, nil
}

func (repository *Permissions) UserGroups(_ context.Context, userID string) ([]string, error) {
	store := repository.store
	store.mu.Lock()
	defer store.mu.Unlock()
	return keys(store.userGroups[userID]), nil
}

func (repository *Permissions) EnsurePermissions(_ context.Context, names ...string) (int64, error) {
	store := repository.store
	store.mu.Lock()
	defer store.mu.Unlock()

	var created int64
	for _, name := range names {
		if _, ok := store.catalog[name]; !ok {
			store.catalog[name] = struct{}{}
			created++
		}
	}
	return created, nil
}

func (repository *Permissions) EnsureGroup(_ context.Context, name string, permissions []string) error {
	store := repository.store
	store.mu.Lock()
	defer store.mu.Unlock()

	members, ok := store.groups[name]
	if !ok {
		members = make(map[string]struct{})
		store.groups[name] = members
	}
	for _, granted := range permissions {
		if _, known := store.catalog[granted]; known {
			members[granted] = struct{}{}
		}
	}
	return nil
}

func (repository *Permissions) GrantToUser(_ context.Context, userID, granted string) error {
	store := repository.store
	store.mu.Lock()
	defer store.mu.Unlock()

	if _, known := store.catalog[granted]; !known {
		return permission.ErrUnknownPermission
	}
	link(store.userGrants, userID, granted)
	return nil
}

func (repository *Permissions) AddUserToGroup(_ context.Context, userID, group string) error {
	store := repository.store
	store.mu.Lock()
	defer store.mu.Unlock()

	if _, known := store.groups[group]; !known {
		return permission.ErrUnknownGroup
	}
	link(store.userGroups, userID, group)
	return nil
}

// # Helpers

func link(relation map[string]map[string]struct{}, userID, name string) {
	names, ok := relation[userID]
	if !ok {
		names = make(map[string]struct{})
		relation[userID] = names
	}
	names[name] = struct{}{}
}

func keys(set map[string]struct{}) []string {
	names := make([]string, 0, len(set))
	for name := range set {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
