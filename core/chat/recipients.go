package chat

import (
	"context"
	"sync"

	"github.com/pkg/errors"

	"github.com/classio/classio/core"
	"github.com/classio/classio/core/user"
)

// RecipientDirectory lists the users the current user may start a
// conversation with: the backend's base set, narrowed client-side by the
// role hierarchy (an initiator may only contact equal-or-lower authority).
type RecipientDirectory struct {
	notifier

	backend Backend
	current user.Provider
	log     core.Logger

	mu      sync.RWMutex
	users   []user.User
	loading bool
	err     error
}

func NewRecipientDirectory(backend Backend, current user.Provider, log core.Logger) *RecipientDirectory {
	if log == nil {
		log = core.NopLogger{}
	}
	return &RecipientDirectory{backend: backend, current: current, log: log}
}

// Load fetches the base recipient set from the backend.
func (r *RecipientDirectory) Load(ctx context.Context) error {
	r.mu.Lock()
	r.loading = true
	r.mu.Unlock()
	r.notify()

	users, err := r.backend.AvailableRecipients(ctx)

	r.mu.Lock()
	r.loading = false
	if err != nil {
		err = errors.Wrap(err, "fetching recipients")
		r.err = err
	} else {
		r.users = users
		r.err = nil
	}
	r.mu.Unlock()
	r.notify()
	return err
}

// Recipients returns the cached users the current user's role may initiate
// contact with. An unauthenticated caller ranks as an unknown role and so
// only sees other unknowns.
func (r *RecipientDirectory) Recipients() []user.User {
	var role string
	if cur, ok := r.current.CurrentUser(); ok {
		role = cur.Role
	}

	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]user.User, 0, len(r.users))
	for _, u := range r.users {
		if user.CanInitiate(role, u.Role) {
			out = append(out, u)
		}
	}
	return out
}

func (r *RecipientDirectory) Loading() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.loading
}

func (r *RecipientDirectory) Err() error {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.err
}

// Search delegates to the backend for a non-empty query and falls back to
// the cached recipient list otherwise. Search failures degrade to an empty
// result; retyping retries.
func (r *RecipientDirectory) Search(ctx context.Context, query string) []user.User {
	query = core.CleanString(query)
	if query == "" {
		return r.Recipients()
	}
	users, err := r.backend.SearchUsers(ctx, query)
	if err != nil {
		r.log.Debug("chat: user search failed", err)
		return []user.User{}
	}
	return users
}
