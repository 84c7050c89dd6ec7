package registereduser

import (
	"context"
	"errors"

	"github.com/coursebox/backend/core"
	"github.com/coursebox/backend/core/store"
)

const (
	DocumentName = "registeredUsers"
	RootKey      = "registeredUsers"
)

var (
	// errors
	ErrDuplicateEmail    = errors.New("a registration for this email already exists")
	ErrInvalidTransition = errors.New("only pending requests can be approved or rejected")
)

type Service struct {
	*store.Collection[RegisteredUser, *RegisteredUser]
}

func NewService(db *store.DB) *Service {
	return &Service{
		Collection: store.NewCollection[RegisteredUser](db, store.Schema[RegisteredUser]{
			Name:         DocumentName,
			RootKey:      RootKey,
			Defaults:     defaults,
			Normalize:    normalize,
			Validate:     validateUser,
			BeforeCreate: checkDuplicate,
		}),
	}
}

// checkDuplicate allows a new record only when the email has none yet, or its latest was rejected.
func checkDuplicate(existing []RegisteredUser, u *RegisteredUser) error {
	if latest, ok := LatestOf(existing, u.Email); ok && latest.Status != StatusRejected {
		return ErrDuplicateEmail
	}
	return nil
}

// LatestOf returns the authoritative record of email among users: the one created last. Equal
// created dates favor the record found later.
func LatestOf(users []RegisteredUser, email string) (RegisteredUser, bool) {
	email = core.CleanString(email, true /* lower */)
	idx := latestIndex(users, email)
	if idx < 0 {
		return RegisteredUser{}, false
	}
	return users[idx], true
}

func latestIndex(users []RegisteredUser, email string) int {
	idx := -1
	for i, u := range users {
		if u.Email != email {
			continue
		}
		if idx < 0 || !u.CreatedDate.Before(users[idx].CreatedDate) {
			idx = i
		}
	}
	return idx
}

// Reconcile reduces users to the authoritative record of each email, in order of first appearance.
func Reconcile(users []RegisteredUser) []RegisteredUser {
	latest := make([]RegisteredUser, 0, len(users))
	pos := make(map[string]int, len(users))
	for _, u := range users {
		i, ok := pos[u.Email]
		if !ok {
			pos[u.Email] = len(latest)
			latest = append(latest, u)
			continue
		}
		if !u.CreatedDate.Before(latest[i].CreatedDate) {
			latest[i] = u
		}
	}
	return latest
}

// Filter matches records on exact field values; an email criterion is compared case-insensitively.
func (svc *Service) Filter(ctx context.Context, criteria store.Fields, ords ...store.Ordering) ([]RegisteredUser, error) {
	if email, ok := criteria["email"].(string); ok {
		flds := make(store.Fields, len(criteria))
		for k, v := range criteria {
			flds[k] = v
		}
		flds["email"] = core.CleanString(email, true /* lower */)
		criteria = flds
	}
	return svc.Collection.Filter(ctx, criteria, ords...)
}

// Latest returns the authoritative record of email.
func (svc *Service) Latest(ctx context.Context, email string) (RegisteredUser, error) {
	users, err := svc.List(ctx)
	if err != nil {
		return RegisteredUser{}, err
	}
	if u, ok := LatestOf(users, email); ok {
		return u, nil
	}
	return RegisteredUser{}, store.ErrNotFound
}

// SetStatus approves or rejects the pending request of email.
func (svc *Service) SetStatus(ctx context.Context, email, status, notes string) (RegisteredUser, error) {
	status = core.CleanString(status, true /* lower */)
	if status != StatusApproved && status != StatusRejected {
		return RegisteredUser{}, core.NewValidationError(nil, core.FieldError{Field: "status", Error: "status must be one of [approved rejected]"})
	}
	email = core.CleanString(email, true /* lower */)

	var usr RegisteredUser
	err := svc.Mutate(ctx, func(users []RegisteredUser) ([]RegisteredUser, error) {
		i := latestIndex(users, email)
		if i < 0 {
			return nil, store.ErrNotFound
		}
		if users[i].Status != StatusPending {
			return nil, ErrInvalidTransition
		}

		usr = users[i]
		usr.Status = status
		if status == StatusApproved {
			now := core.NowFunc()
			usr.ApprovalDate = &now
		}
		if notes != "" {
			usr.Notes = notes
		}
		if err := svc.Touch(&usr); err != nil {
			return nil, err
		}
		users[i] = usr
		return users, nil
	})
	if err != nil {
		return RegisteredUser{}, err
	}
	return usr, nil
}

// Invite registers email as already approved, on behalf of actor.
func (svc *Service) Invite(ctx context.Context, email, fullName, notes, actor string) (RegisteredUser, error) {
	now := core.NowFunc()
	usr := RegisteredUser{
		Email:        email,
		FullName:     fullName,
		Status:       StatusApproved,
		RequestDate:  now,
		ApprovalDate: &now,
		Notes:        notes,
	}
	usr.CreatedBy = core.CleanString(actor, true /* lower */)
	return svc.Create(ctx, usr)
}

// UniqueApproved returns one record per email whose authoritative status is approved.
func (svc *Service) UniqueApproved(ctx context.Context) ([]RegisteredUser, error) {
	users, err := svc.List(ctx)
	if err != nil {
		return nil, err
	}
	approved := make([]RegisteredUser, 0)
	for _, u := range Reconcile(users) {
		if u.Status == StatusApproved {
			approved = append(approved, u)
		}
	}
	return approved, nil
}
