package chat_test

import (
	"context"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"

	"github.com/classio/classio/core/chat"
	"github.com/classio/classio/core/user"
	dummychat "github.com/classio/classio/storage/dummy"
	testutil "github.com/classio/classio/tests"
)

// anonProvider has no authenticated user.
type anonProvider struct{}

func (anonProvider) CurrentUser() (user.User, bool) { return user.User{}, false }

func seedUsers(backend *dummychat.Backend) {
	backend.SetUsers([]user.User{
		testutil.NewUser("u1", "Head Office", user.RoleSuperAdmin),
		testutil.NewUser("u2", "Principal Amy", user.RoleAdmin),
		testutil.NewUser("u3", "Mr. Devi", user.RoleTeacher),
		testutil.NewUser("u4", "Parent Joe", user.RoleParent),
		testutil.NewUser("u5", "Student Sam", user.RoleStudent),
		testutil.NewUser("u6", "Mystery Guest", "visitor"),
	})
}

func TestRecipientsFilteredByRoleHierarchy(t *testing.T) {
	backend := dummychat.Open()
	seedUsers(backend)

	me := user.StaticProvider{User: testutil.NewUser("me", "Ms. Okafor", user.RoleTeacher)}
	r := chat.NewRecipientDirectory(backend, me, nil)
	assert.NoError(t, r.Load(context.Background()))

	got := r.Recipients()
	ids := make([]string, 0, len(got))
	for _, u := range got {
		ids = append(ids, u.ID)
	}
	// a teacher may contact teachers and below, plus unknown roles
	assert.Equal(t, []string{"u3", "u4", "u5", "u6"}, ids)
}

func TestRecipientsUnauthenticated(t *testing.T) {
	backend := dummychat.Open()
	seedUsers(backend)

	r := chat.NewRecipientDirectory(backend, anonProvider{}, nil)
	assert.NoError(t, r.Load(context.Background()))

	got := r.Recipients()
	// no role ranks as unknown: only other unknowns remain reachable
	if assert.Len(t, got, 1) {
		assert.Equal(t, "u6", got[0].ID)
	}
}

func TestRecipientsSearch(t *testing.T) {
	backend := dummychat.Open()
	seedUsers(backend)

	me := user.StaticProvider{User: testutil.NewUser("me", "Principal Amy", user.RoleAdmin)}
	r := chat.NewRecipientDirectory(backend, me, nil)
	assert.NoError(t, r.Load(context.Background()))

	t.Run("empty query returns the filtered cache", func(t *testing.T) {
		got := r.Search(context.Background(), "   ")
		assert.Len(t, got, 5) // admin reaches everyone but the superadmin
		assert.Zero(t, backend.Calls(dummychat.OpSearch))
	})

	t.Run("non-empty query delegates to the backend", func(t *testing.T) {
		got := r.Search(context.Background(), "devi")
		if assert.Len(t, got, 1) {
			assert.Equal(t, "u3", got[0].ID)
		}
	})

	t.Run("search failure degrades to an empty list", func(t *testing.T) {
		backend.Fail(dummychat.OpSearch, errors.New("boom"))
		got := r.Search(context.Background(), "devi")
		assert.NotNil(t, got)
		assert.Empty(t, got)
	})
}

func TestRecipientsLoadError(t *testing.T) {
	backend := dummychat.Open()
	backend.Fail(dummychat.OpRecipients, errors.New("offline"))

	me := user.StaticProvider{User: testutil.NewUser("me", "Ms. Okafor", user.RoleTeacher)}
	r := chat.NewRecipientDirectory(backend, me, nil)

	assert.Error(t, r.Load(context.Background()))
	assert.Error(t, r.Err())
	assert.Empty(t, r.Recipients())
}
