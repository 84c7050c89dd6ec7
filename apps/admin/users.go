package main

import (
	"context"
	"fmt"
	"text/tabwriter"

	"github.com/coursebox/backend/apps"
	"github.com/coursebox/backend/core"
	"github.com/coursebox/backend/core/registereduser"
)

var errNoSuperAdmin = apps.NewArgumentError("superAdminEmail", "not configured, set <ENV>_SUPERADMINEMAIL")

// decide approves or rejects the pending request of email on behalf of the super-admin.
func (cli *commandLine) decide(ctx context.Context, cmd, email, notes string) error {
	if cli.conf.SuperAdminEmail == "" {
		return errNoSuperAdmin
	}
	decide := cli.svcs.Access.Approve
	if cmd == "reject" {
		decide = cli.svcs.Access.Reject
	}
	usr, err := decide(ctx, cli.conf.SuperAdminEmail, email, notes)
	if err != nil {
		return err
	}
	fmt.Fprintf(cli.out, "%s: %s\n", usr.Email, usr.Status)
	return nil
}

func (cli *commandLine) invite(ctx context.Context, email, fullName, notes string) error {
	if cli.conf.SuperAdminEmail == "" {
		return errNoSuperAdmin
	}
	usr, err := cli.svcs.Access.Invite(ctx, cli.conf.SuperAdminEmail, email, fullName, notes)
	if err != nil {
		return err
	}
	fmt.Fprintf(cli.out, "%s: %s\n", usr.Email, usr.Status)
	return nil
}

// listUsers prints the authoritative registration of every email.
func (cli *commandLine) listUsers(ctx context.Context, status string) error {
	status = core.CleanString(status, true /* lower */)
	switch status {
	case "", registereduser.StatusPending, registereduser.StatusApproved, registereduser.StatusRejected:
	default:
		return apps.NewArgumentError("status", fmt.Sprintf("unknown status %q", status))
	}

	users, err := cli.svcs.Users.List(ctx)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(cli.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "EMAIL\tSTATUS\tNAME\tREQUESTED\tAPPROVED\tNOTES")
	for _, u := range registereduser.Reconcile(users) {
		if status != "" && u.Status != status {
			continue
		}
		approved := "-"
		if u.ApprovalDate != nil {
			approved = u.ApprovalDate.Format("2006-01-02")
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
			u.Email, u.Status, u.FullName, u.RequestDate.Format("2006-01-02"), approved, u.Notes)
	}
	return w.Flush()
}
