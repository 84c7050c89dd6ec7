package access

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coursebox/backend/core"
	"github.com/coursebox/backend/core/registereduser"
	"github.com/coursebox/backend/services/email"
	"github.com/coursebox/backend/tests"
)

const superAdmin = "owner@example.com"

func setup(t *testing.T) (*Controller, *registereduser.Service, *emailsvc.ConsoleServiceMock) {
	db, _ := testutil.PrepareDB(t)
	testutil.Clock(t, time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC))
	conf := &core.Config{AppName: "Coursebox", DefaultFromEmail: "noreply@example.com", FrontendBaseURL: "http://localhost:3000"}
	mailSvc := emailsvc.NewConsoleServiceMock(conf)
	users := registereduser.NewService(db)
	return NewController(users, mailSvc, nil, " Owner@Example.com "), users, mailSvc
}

func templatesOf(msgs []core.EmailMessage) []string {
	names := make([]string, 0, len(msgs))
	for _, m := range msgs {
		names = append(names, m.TemplateName)
	}
	return names
}

func TestController_Resolve(t *testing.T) {
	ctx := context.Background()
	ctl, users, _ := setup(t)

	_, err := users.Create(ctx, registereduser.RegisteredUser{Email: "pending@example.com"})
	require.NoError(t, err)
	_, err = users.Invite(ctx, "learner@example.com", "Learner", "", superAdmin)
	require.NoError(t, err)

	tests := []struct {
		email      string
		status     string
		superAdmin bool
	}{
		{email: "OWNER@example.com", status: registereduser.StatusApproved, superAdmin: true},
		{email: "pending@example.com", status: registereduser.StatusPending},
		{email: "Learner@Example.com", status: registereduser.StatusApproved},
		{email: "stranger@example.com", status: StatusUnregistered},
	}
	for _, tt := range tests {
		t.Run(tt.email, func(t *testing.T) {
			dec, err := ctl.Resolve(ctx, tt.email)
			require.NoError(t, err)
			assert.Equal(t, core.CleanString(tt.email, true), dec.Email)
			assert.Equal(t, tt.status, dec.Status)
			assert.Equal(t, tt.superAdmin, dec.SuperAdmin)
			assert.Equal(t, tt.status == registereduser.StatusApproved, dec.Approved())
		})
	}

	t.Run("no super-admin configured", func(t *testing.T) {
		ctl := NewController(users, nil, nil, "")
		assert.False(t, ctl.IsSuperAdmin(""))
		dec, err := ctl.Resolve(ctx, superAdmin)
		require.NoError(t, err)
		assert.Equal(t, StatusUnregistered, dec.Status)
	})
}

func TestController_Login(t *testing.T) {
	ctx := context.Background()
	ctl, users, mailSvc := setup(t)

	dec, err := ctl.Login(ctx, "new@example.com", "New Learner")
	require.NoError(t, err)
	assert.Equal(t, registereduser.StatusPending, dec.Status)
	assert.Equal(t, []string{"access_requested"}, templatesOf(mailSvc.SentMessages()))

	// signing in again does not create a second request
	dec, err = ctl.Login(ctx, "NEW@example.com", "")
	require.NoError(t, err)
	assert.Equal(t, registereduser.StatusPending, dec.Status)
	all, err := users.List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)
	assert.Len(t, mailSvc.SentMessages(), 1)

	t.Run("super-admin is never registered", func(t *testing.T) {
		dec, err := ctl.Login(ctx, superAdmin, "Owner")
		require.NoError(t, err)
		assert.True(t, dec.SuperAdmin)
		all, err := users.List(ctx)
		require.NoError(t, err)
		assert.Len(t, all, 1)
	})
}

func TestController_RequestAccess(t *testing.T) {
	ctx := context.Background()
	ctl, _, mailSvc := setup(t)

	usr, err := ctl.RequestAccess(ctx, "ada@example.com", "Ada", "math instructor at Riverside")
	require.NoError(t, err)
	assert.Equal(t, registereduser.StatusPending, usr.Status)
	assert.Equal(t, "math instructor at Riverside", usr.Notes)

	msgs := mailSvc.SentMessages()
	require.Len(t, msgs, 1)
	assert.Equal(t, superAdmin, msgs[0].To[0].Address)
	assert.Contains(t, msgs[0].TextContent, "math instructor at Riverside")

	tests := []struct {
		name    string
		email   string
		wantErr error
	}{
		{name: "already pending", email: "ADA@example.com", wantErr: ErrRequestPending},
		{name: "super-admin", email: superAdmin, wantErr: registereduser.ErrDuplicateEmail},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ctl.RequestAccess(ctx, tt.email, "", "")
			assert.Equal(t, tt.wantErr, err)
		})
	}

	t.Run("already approved", func(t *testing.T) {
		_, err := ctl.Approve(ctx, superAdmin, "ada@example.com", "")
		require.NoError(t, err)
		_, err = ctl.RequestAccess(ctx, "ada@example.com", "", "")
		assert.Equal(t, registereduser.ErrDuplicateEmail, err)
	})

	t.Run("invalid email", func(t *testing.T) {
		_, err := ctl.RequestAccess(ctx, "nope", "", "")
		assert.True(t, core.IsValidation(err))
	})
}

func TestController_Decisions(t *testing.T) {
	ctx := context.Background()
	ctl, users, mailSvc := setup(t)

	_, err := ctl.RequestAccess(ctx, "ada@example.com", "Ada", "")
	require.NoError(t, err)
	_, err = ctl.RequestAccess(ctx, "bob@example.com", "Bob", "")
	require.NoError(t, err)
	mailSvc.Reset()

	t.Run("only the super-admin decides", func(t *testing.T) {
		_, err := ctl.Approve(ctx, "ada@example.com", "bob@example.com", "")
		assert.Equal(t, ErrForbidden, err)
		_, err = ctl.Reject(ctx, "", "bob@example.com", "")
		assert.Equal(t, ErrForbidden, err)
		_, err = ctl.Invite(ctx, "bob@example.com", "eve@example.com", "", "")
		assert.Equal(t, ErrForbidden, err)
		assert.Empty(t, mailSvc.SentMessages())
	})

	t.Run("approve", func(t *testing.T) {
		usr, err := ctl.Approve(ctx, "OWNER@example.com", "ada@example.com", "welcome")
		require.NoError(t, err)
		assert.Equal(t, registereduser.StatusApproved, usr.Status)
		assert.NotNil(t, usr.ApprovalDate)

		dec, err := ctl.Resolve(ctx, "ada@example.com")
		require.NoError(t, err)
		assert.True(t, dec.Approved())
	})

	t.Run("reject keeps the record", func(t *testing.T) {
		usr, err := ctl.Reject(ctx, superAdmin, "bob@example.com", "not enrolled")
		require.NoError(t, err)
		assert.Equal(t, registereduser.StatusRejected, usr.Status)

		dec, err := ctl.Resolve(ctx, "bob@example.com")
		require.NoError(t, err)
		assert.Equal(t, registereduser.StatusRejected, dec.Status)

		// a rejected email may ask again
		again, err := ctl.RequestAccess(ctx, "bob@example.com", "Bob", "please")
		require.NoError(t, err)
		assert.NotEqual(t, usr.ID, again.ID)
		all, err := users.Filter(ctx, map[string]interface{}{"email": "bob@example.com"})
		require.NoError(t, err)
		assert.Len(t, all, 2)
	})

	t.Run("decided requests cannot be decided again", func(t *testing.T) {
		_, err := ctl.Reject(ctx, superAdmin, "ada@example.com", "")
		assert.Equal(t, registereduser.ErrInvalidTransition, err)
	})

	t.Run("invite", func(t *testing.T) {
		usr, err := ctl.Invite(ctx, superAdmin, "Eve@Example.com", "Eve", "guest lecturer")
		require.NoError(t, err)
		assert.Equal(t, "eve@example.com", usr.Email)
		assert.Equal(t, registereduser.StatusApproved, usr.Status)
		assert.Equal(t, superAdmin, usr.CreatedBy)

		_, err = ctl.Invite(ctx, superAdmin, "eve@example.com", "Eve", "")
		assert.Equal(t, registereduser.ErrDuplicateEmail, err)
	})

	assert.Equal(t,
		[]string{"access_approved", "access_rejected", "access_requested", "access_approved"},
		templatesOf(mailSvc.SentMessages()),
	)
}
