// Package access decides who may use the course: registration requests go through an approval
// workflow run by the super-admin, who is always approved.
package access

import (
	"context"
	"errors"
	"net/mail"

	pkgerrors "github.com/pkg/errors"

	"github.com/coursebox/backend/core"
	"github.com/coursebox/backend/core/registereduser"
	"github.com/coursebox/backend/core/store"
)

// StatusUnregistered is the status of an email without any registration record.
const StatusUnregistered = "unregistered"

var (
	// errors
	ErrRequestPending = errors.New("an access request for this email is already pending")
	ErrForbidden      = errors.New("only the super-admin can do this")
)

type (
	// Decision is the access status of an email.
	Decision struct {
		Email      string `json:"email"`
		Status     string `json:"status"`
		SuperAdmin bool   `json:"super_admin"`
	}

	Controller struct {
		users      *registereduser.Service
		mailSvc    core.EmailService
		logger     core.Logger
		superAdmin string
	}
)

func (d Decision) Approved() bool { return d.Status == registereduser.StatusApproved }

func NewController(users *registereduser.Service, mailSvc core.EmailService, logger core.Logger, superAdminEmail string) *Controller {
	if logger == nil {
		logger = core.NopLogger()
	}
	return &Controller{
		users:      users,
		mailSvc:    mailSvc,
		logger:     logger,
		superAdmin: core.CleanString(superAdminEmail, true /* lower */),
	}
}

func (ctl *Controller) IsSuperAdmin(email string) bool {
	return ctl.superAdmin != "" && core.SameEmail(email, ctl.superAdmin)
}

// Resolve returns the access status of email from its latest registration record.
func (ctl *Controller) Resolve(ctx context.Context, email string) (Decision, error) {
	email = core.CleanString(email, true /* lower */)
	if ctl.IsSuperAdmin(email) {
		return Decision{Email: email, Status: registereduser.StatusApproved, SuperAdmin: true}, nil
	}
	latest, err := ctl.users.Latest(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return Decision{Email: email, Status: StatusUnregistered}, nil
		}
		return Decision{}, pkgerrors.Wrap(err, "resolving access")
	}
	return Decision{Email: email, Status: latest.Status}, nil
}

// Login resolves email on sign-in, registering a pending request for unknown emails.
func (ctl *Controller) Login(ctx context.Context, email, fullName string) (Decision, error) {
	dec, err := ctl.Resolve(ctx, email)
	if err != nil || dec.Status != StatusUnregistered {
		return dec, err
	}

	usr, err := ctl.users.Create(ctx, registereduser.RegisteredUser{Email: email, FullName: fullName})
	switch {
	case err == nil:
		ctl.notifyRequested(usr)
		dec.Status = usr.Status
		return dec, nil
	case errors.Is(err, registereduser.ErrDuplicateEmail): // registered concurrently
		return ctl.Resolve(ctx, email)
	default:
		return Decision{}, err
	}
}

// RequestAccess files a new access request. It is allowed when email has no record yet or its
// latest one was rejected; the rejected record is kept and a new pending one is created.
func (ctl *Controller) RequestAccess(ctx context.Context, email, fullName, notes string) (registereduser.RegisteredUser, error) {
	if ctl.IsSuperAdmin(email) {
		return registereduser.RegisteredUser{}, registereduser.ErrDuplicateEmail
	}
	usr, err := ctl.users.Create(ctx, registereduser.RegisteredUser{Email: email, FullName: fullName, Notes: notes})
	if err != nil {
		if errors.Is(err, registereduser.ErrDuplicateEmail) {
			if latest, lErr := ctl.users.Latest(ctx, email); lErr == nil && latest.Status == registereduser.StatusPending {
				return registereduser.RegisteredUser{}, ErrRequestPending
			}
		}
		return registereduser.RegisteredUser{}, err
	}
	ctl.notifyRequested(usr)
	return usr, nil
}

func (ctl *Controller) Approve(ctx context.Context, actor, email, notes string) (registereduser.RegisteredUser, error) {
	return ctl.decide(ctx, actor, email, registereduser.StatusApproved, notes)
}

func (ctl *Controller) Reject(ctx context.Context, actor, email, notes string) (registereduser.RegisteredUser, error) {
	return ctl.decide(ctx, actor, email, registereduser.StatusRejected, notes)
}

func (ctl *Controller) decide(ctx context.Context, actor, email, status, notes string) (registereduser.RegisteredUser, error) {
	if !ctl.IsSuperAdmin(actor) {
		return registereduser.RegisteredUser{}, ErrForbidden
	}
	usr, err := ctl.users.SetStatus(ctx, email, status, notes)
	if err != nil {
		return registereduser.RegisteredUser{}, err
	}
	ctl.logger.Info("access "+status, "email", usr.Email, "actor", core.CleanString(actor, true))
	ctl.notifyDecision(usr)
	return usr, nil
}

// Invite approves email up front, without a request.
func (ctl *Controller) Invite(ctx context.Context, actor, email, fullName, notes string) (registereduser.RegisteredUser, error) {
	if !ctl.IsSuperAdmin(actor) {
		return registereduser.RegisteredUser{}, ErrForbidden
	}
	usr, err := ctl.users.Invite(ctx, email, fullName, notes, actor)
	if err != nil {
		return registereduser.RegisteredUser{}, err
	}
	ctl.notifyDecision(usr)
	return usr, nil
}

func (ctl *Controller) notifyRequested(usr registereduser.RegisteredUser) {
	if ctl.superAdmin == "" {
		return
	}
	ctl.send(&core.EmailMessage{
		To:           []mail.Address{{Address: ctl.superAdmin}},
		Subject:      "New access request",
		TemplateName: "access_requested",
		TemplateData: usr,
	})
}

func (ctl *Controller) notifyDecision(usr registereduser.RegisteredUser) {
	msg := &core.EmailMessage{
		To:           []mail.Address{{Name: usr.FullName, Address: usr.Email}},
		TemplateData: usr,
	}
	if usr.Status == registereduser.StatusApproved {
		msg.Subject = "Your access was approved"
		msg.TemplateName = "access_approved"
	} else {
		msg.Subject = "Your access request"
		msg.TemplateName = "access_rejected"
	}
	ctl.send(msg)
}

func (ctl *Controller) send(msg *core.EmailMessage) {
	if ctl.mailSvc == nil {
		return
	}
	ctl.mailSvc.SendMessages(msg)
}
