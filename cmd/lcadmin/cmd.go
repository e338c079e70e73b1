package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"syscall"

	"golang.org/x/term"

	"github.com/aslbekqoziboyev536-star/LC-Studio/internal/core/ports"
)

var (
	readPasswordFunc = term.ReadPassword // mockable

	errHelp = errors.New("help provided")
)

type commandLine struct {
	users ports.UserService
	out   io.Writer
}

func (cli *commandLine) printUsage() {
	fmt.Fprintln(cli.out, "Usage:")
	fmt.Fprintln(cli.out, "  setup                          - report whether the installation has no users yet")
	fmt.Fprintln(cli.out, "  resetpassword -username NAME   - reset a user's password (prompted)")
}

func (cli *commandLine) run(ctx context.Context, args []string) error {
	if len(args) < 2 {
		cli.printUsage()
		return errHelp
	}

	resetPasswordCmd := flag.NewFlagSet("resetpassword", flag.ContinueOnError)
	resetPasswordCmd.SetOutput(cli.out)
	resetPasswordUname := resetPasswordCmd.String("username", "", "The user's username. The password will be prompted next.")

	switch args[1] {
	case "setup":
		return cli.setup(ctx)
	case "resetpassword":
		if err := resetPasswordCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *resetPasswordUname == "" {
			resetPasswordCmd.Usage()
			return errHelp
		}
		fmt.Fprint(cli.out, "Enter password:")
		pwd, err := readPasswordFunc(int(syscall.Stdin))
		fmt.Fprintln(cli.out)
		if err != nil {
			return err
		}
		if len(pwd) == 0 {
			resetPasswordCmd.Usage()
			return errHelp
		}
		return cli.resetPassword(ctx, *resetPasswordUname, string(pwd))
	default:
		cli.printUsage()
		return errHelp
	}
}

func (cli *commandLine) setup(ctx context.Context) error {
	needs, err := cli.users.NeedsSetup(ctx)
	if err != nil {
		return err
	}
	if needs {
		fmt.Fprintln(cli.out, "No users yet: register the first center through POST /api/users.")
		return nil
	}
	fmt.Fprintln(cli.out, "Installation already has users.")
	return nil
}

func (cli *commandLine) resetPassword(ctx context.Context, username, pwd string) error {
	if err := cli.users.ResetPassword(ctx, username, pwd); err != nil {
		return fmt.Errorf("reset password for %q: %w", username, err)
	}
	fmt.Fprintf(cli.out, "Password for %q updated.\n", username)
	return nil
}
