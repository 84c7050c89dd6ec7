package registereduser

import (
	"github.com/coursebox/backend/core"
)

var validate, translator = core.NewValidator()

func defaults(u *RegisteredUser) {
	if u.Status == "" {
		u.Status = StatusPending
	}
	if u.RequestDate.IsZero() {
		u.RequestDate = core.NowFunc()
	}
	if u.CreatedBy == "" {
		u.CreatedBy = SystemActor
	}
}

func normalize(u *RegisteredUser) {
	u.Email = core.CleanString(u.Email, true /* lower */)
	u.FullName = core.CleanString(u.FullName)
	u.Status = core.CleanString(u.Status, true /* lower */)
	u.Notes = core.CleanString(u.Notes)
	u.RequestDate = u.RequestDate.UTC()
	if u.ApprovalDate != nil {
		t := u.ApprovalDate.UTC()
		u.ApprovalDate = &t
	}
}

func validateUser(u *RegisteredUser) error {
	return core.ValidateStruct(validate, translator, u)
}
