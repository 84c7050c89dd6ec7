package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"

	"github.com/coursebox/backend/apps"
	"github.com/coursebox/backend/core"
	"github.com/coursebox/backend/core/store"
)

var errHelp = errors.New("help provided")

type commandLine struct {
	conf   *core.Config
	docs   store.DocumentStore
	svcs   *apps.Services
	logger core.Logger
	out    io.Writer
}

func newCommandLine(conf *core.Config, docs store.DocumentStore, mailSvc core.EmailService, logger core.Logger, out io.Writer) *commandLine {
	return &commandLine{
		conf:   conf,
		docs:   docs,
		svcs:   apps.NewServices(conf, docs, mailSvc, logger),
		logger: logger,
		out:    out,
	}
}

func (cli *commandLine) printUsage() {
	fmt.Fprintln(cli.out, "Usage:")
	fmt.Fprintln(cli.out, "  approve -email EMAIL [-notes NOTES]                  - approve a pending access request")
	fmt.Fprintln(cli.out, "  reject -email EMAIL [-notes NOTES]                   - reject a pending access request")
	fmt.Fprintln(cli.out, "  invite -email EMAIL [-name NAME] [-notes NOTES]      - grant access without a request")
	fmt.Fprintln(cli.out, "  users [-status pending|approved|rejected]            - list registrations (latest per email)")
	fmt.Fprintln(cli.out, "  token -email EMAIL [-name NAME]                      - mint a bearer token for the API")
	fmt.Fprintln(cli.out, "  check                                                - load every document and report corrupt ones")
}

func (cli *commandLine) newFlagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(cli.out)
	return fs
}

// parse parses args into fs; a missing required flag prints the usage of fs.
func parse(fs *flag.FlagSet, args []string, required ...*string) error {
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return errHelp
		}
		return err
	}
	for _, val := range required {
		if core.CleanString(*val) == "" {
			fs.Usage()
			return errHelp
		}
	}
	return nil
}

func (cli *commandLine) run(args []string) error {
	if len(args) < 2 {
		cli.printUsage()
		return errHelp
	}
	ctx := context.Background()

	switch cmd, cmdArgs := args[1], args[2:]; cmd {
	case "approve", "reject":
		fs := cli.newFlagSet(cmd)
		email := fs.String("email", "", "Email of the pending request.")
		notes := fs.String("notes", "", "Notes stored on the registration.")
		if err := parse(fs, cmdArgs, email); err != nil {
			return err
		}
		return cli.decide(ctx, cmd, *email, *notes)

	case "invite":
		fs := cli.newFlagSet(cmd)
		email := fs.String("email", "", "Email to grant access to.")
		name := fs.String("name", "", "Full name of the learner.")
		notes := fs.String("notes", "", "Notes stored on the registration.")
		if err := parse(fs, cmdArgs, email); err != nil {
			return err
		}
		return cli.invite(ctx, *email, *name, *notes)

	case "users":
		fs := cli.newFlagSet(cmd)
		status := fs.String("status", "", "Only list registrations with this status.")
		if err := parse(fs, cmdArgs); err != nil {
			return err
		}
		return cli.listUsers(ctx, *status)

	case "token":
		fs := cli.newFlagSet(cmd)
		email := fs.String("email", "", "Identity carried by the token.")
		name := fs.String("name", "", "Display name carried by the token.")
		if err := parse(fs, cmdArgs, email); err != nil {
			return err
		}
		return cli.token(*email, *name)

	case "check":
		if err := parse(cli.newFlagSet(cmd), cmdArgs); err != nil {
			return err
		}
		return cli.check(ctx)

	default:
		cli.printUsage()
		return errHelp
	}
}
