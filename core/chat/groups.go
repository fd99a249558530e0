package chat

import (
	"context"
	"sync"

	"github.com/pkg/errors"

	"github.com/classio/classio/core"
)

// NewGroup contains the information needed to create a group conversation.
type NewGroup struct {
	Name      string   `json:"name" validate:"required"`
	MemberIDs []string `json:"member_ids" validate:"required,min=1,dive,required"`
}

func (ng *NewGroup) Validate() error {
	ng.Name = core.CleanString(ng.Name)
	if err := core.Validate.Struct(ng); err != nil {
		return core.TranslateValidationErrors(err)
	}
	return nil
}

// GroupService creates group conversations and looks up group details.
type GroupService struct {
	notifier

	backend   Backend
	directory *Directory
	log       core.Logger

	mu       sync.Mutex
	creating bool
	created  *Group
	errMsg   string
}

// NewGroupService builds a GroupService. directory may be nil; when set it
// is refreshed after each successful creation so the new group shows up in
// the conversation list without waiting for a push round trip.
func NewGroupService(backend Backend, directory *Directory, log core.Logger) *GroupService {
	if log == nil {
		log = core.NopLogger{}
	}
	return &GroupService{backend: backend, directory: directory, log: log}
}

// Create validates the input, creates the group on the backend and folds it
// into the conversation directory. On failure it returns nil and retains the
// error message for the UI.
func (svc *GroupService) Create(ctx context.Context, ng NewGroup) (*Group, error) {
	if err := ng.Validate(); err != nil {
		svc.setResult(nil, err)
		return nil, err
	}

	svc.mu.Lock()
	svc.creating = true
	svc.errMsg = ""
	svc.mu.Unlock()
	svc.notify()

	grp, err := svc.backend.CreateGroup(ctx, ng.Name, ng.MemberIDs)
	if err != nil {
		err = errors.Wrap(err, "creating group")
		svc.setResult(nil, err)
		return nil, err
	}
	svc.setResult(&grp, nil)

	if svc.directory != nil {
		if rErr := svc.directory.Refresh(ctx); rErr != nil {
			svc.log.Warn("chat: conversation refresh after group creation failed", rErr)
		}
	}
	return &grp, nil
}

// UserGroups returns all groups the current user belongs to.
func (svc *GroupService) UserGroups(ctx context.Context) ([]Group, error) {
	groups, err := svc.backend.UserGroups(ctx)
	return groups, errors.Wrap(err, "fetching groups")
}

// Group looks up one group's details; nil when it does not exist.
func (svc *GroupService) Group(ctx context.Context, groupID string) (*Group, error) {
	grp, err := svc.backend.Group(ctx, groupID)
	return grp, errors.Wrap(err, "fetching group")
}

func (svc *GroupService) Creating() bool {
	svc.mu.Lock()
	defer svc.mu.Unlock()
	return svc.creating
}

// Created returns the most recently created group, if any.
func (svc *GroupService) Created() *Group {
	svc.mu.Lock()
	defer svc.mu.Unlock()
	return svc.created
}

// Err returns the last creation failure message, or "".
func (svc *GroupService) Err() string {
	svc.mu.Lock()
	defer svc.mu.Unlock()
	return svc.errMsg
}

func (svc *GroupService) setResult(grp *Group, err error) {
	svc.mu.Lock()
	svc.creating = false
	svc.created = grp
	if err != nil {
		svc.errMsg = err.Error()
	}
	svc.mu.Unlock()
	svc.notify()
}
