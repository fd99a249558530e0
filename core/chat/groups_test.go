package chat_test

import (
	"context"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"

	"github.com/classio/classio/core"
	"github.com/classio/classio/core/chat"
	dummychat "github.com/classio/classio/storage/dummy"
)

func TestGroupCreate(t *testing.T) {
	backend := dummychat.Open()
	directory := chat.OpenDirectory(context.Background(), backend, nil)
	defer directory.Close()

	svc := chat.NewGroupService(backend, directory, nil)
	grp, err := svc.Create(context.Background(), chat.NewGroup{
		Name:      "  Grade 5 Parents ",
		MemberIDs: []string{"u2", "u4"},
	})

	assert.NoError(t, err)
	if assert.NotNil(t, grp) {
		assert.NotEmpty(t, grp.ID)
		assert.Equal(t, "Grade 5 Parents", grp.Name)
		assert.Equal(t, []string{"u2", "u4"}, grp.MemberIDs)
	}
	assert.False(t, svc.Creating())
	assert.Empty(t, svc.Err())
	assert.Equal(t, grp, svc.Created())

	// folded into the conversation directory
	groups := directory.Filtered(chat.FilterGroups)
	if assert.Len(t, groups, 1) {
		assert.Equal(t, grp.ID, groups[0].ID)
	}
}

func TestGroupCreateValidation(t *testing.T) {
	backend := dummychat.Open()
	svc := chat.NewGroupService(backend, nil, nil)

	tests := []struct {
		name  string
		input chat.NewGroup
	}{
		{name: "missing name", input: chat.NewGroup{MemberIDs: []string{"u1"}}},
		{name: "blank name", input: chat.NewGroup{Name: "   ", MemberIDs: []string{"u1"}}},
		{name: "no members", input: chat.NewGroup{Name: "Chess Club"}},
		{name: "blank member id", input: chat.NewGroup{Name: "Chess Club", MemberIDs: []string{""}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			grp, err := svc.Create(context.Background(), tt.input)
			assert.Nil(t, grp)
			var vErr *core.ValidationError
			assert.ErrorAs(t, err, &vErr)
			assert.NotEmpty(t, svc.Err())
			assert.Zero(t, backend.Calls(dummychat.OpCreateGroup))
		})
	}
}

func TestGroupCreateBackendFailure(t *testing.T) {
	backend := dummychat.Open()
	backend.Fail(dummychat.OpCreateGroup, errors.New("quota exceeded"))
	svc := chat.NewGroupService(backend, nil, nil)

	grp, err := svc.Create(context.Background(), chat.NewGroup{Name: "Chess Club", MemberIDs: []string{"u1"}})
	assert.Error(t, err)
	assert.Nil(t, grp)
	assert.Contains(t, svc.Err(), "quota exceeded")
	assert.False(t, svc.Creating())
}

func TestGroupLookups(t *testing.T) {
	backend := dummychat.Open()
	grp := chat.Group{ID: "g1", Name: "Chess Club", MemberIDs: []string{"u1"}, CreatedAt: time.Now().UTC()}
	backend.AddGroup(grp)

	svc := chat.NewGroupService(backend, nil, nil)

	groups, err := svc.UserGroups(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, []chat.Group{grp}, groups)

	got, err := svc.Group(context.Background(), "g1")
	assert.NoError(t, err)
	assert.Equal(t, &grp, got)

	missing, err := svc.Group(context.Background(), "nope")
	assert.NoError(t, err)
	assert.Nil(t, missing)
}
