package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"syscall"

	"golang.org/x/term"

	"github.com/noah-isme/sma-records/internal/models"
)

var (
	readPasswordFunc = term.ReadPassword // mockable

	errHelp     = errors.New("help provided")
	errRejected = errors.New("login rejected")
)

type recordStore interface {
	Provision(ctx context.Context) error
	Seed(ctx context.Context) bool
}

type authenticator interface {
	Login(ctx context.Context, username, password string) bool
	Current() (*models.Account, bool)
	Logout()
}

type passwordResetter interface {
	ResetPassword(ctx context.Context, username, newPassword string) error
}

type commandLine struct {
	store recordStore
	auth  authenticator
	users passwordResetter
	out   io.Writer
}

func (cli *commandLine) printUsage() {
	fmt.Fprintln(cli.out, "Usage:")
	fmt.Fprintln(cli.out, "  migrate                      - apply pending schema migrations")
	fmt.Fprintln(cli.out, "  seed                         - create the bootstrap admin on an empty store")
	fmt.Fprintln(cli.out, "  login -username USERNAME     - check credentials, offline accounts included")
	fmt.Fprintln(cli.out, "  resetpassword -username USERNAME - set a new password")
}

func (cli *commandLine) run(args []string) error {
	if len(args) < 2 {
		cli.printUsage()
		return errHelp
	}
	ctx := context.Background()

	loginCmd := flag.NewFlagSet("login", flag.ContinueOnError)
	loginUname := loginCmd.String("username", "", "The account's username. The password will be prompted next.")
	resetPasswordCmd := flag.NewFlagSet("resetpassword", flag.ContinueOnError)
	resetPasswordUname := resetPasswordCmd.String("username", "", "The account's username. The password will be prompted next.")
	loginCmd.SetOutput(cli.out)
	resetPasswordCmd.SetOutput(cli.out)

	switch args[1] {
	case "migrate":
		if err := cli.store.Provision(ctx); err != nil {
			return err
		}
		fmt.Fprintln(cli.out, "schema is up to date")
		return nil
	case "seed":
		if cli.store.Seed(ctx) {
			fmt.Fprintln(cli.out, "bootstrap admin created")
		} else {
			fmt.Fprintln(cli.out, "store already populated, nothing seeded")
		}
		return nil
	case "login":
		pwd, err := cli.prompt(loginCmd, loginUname, args[2:])
		if err != nil {
			return err
		}
		return cli.login(ctx, *loginUname, pwd)
	case "resetpassword":
		pwd, err := cli.prompt(resetPasswordCmd, resetPasswordUname, args[2:])
		if err != nil {
			return err
		}
		if err := cli.users.ResetPassword(ctx, *resetPasswordUname, pwd); err != nil {
			return err
		}
		fmt.Fprintf(cli.out, "password updated for %s\n", *resetPasswordUname)
		return nil
	default:
		cli.printUsage()
		return errHelp
	}
}

func (cli *commandLine) prompt(fs *flag.FlagSet, username *string, args []string) (string, error) {
	if err := fs.Parse(args); err != nil {
		return "", errHelp
	}
	if *username == "" {
		fs.Usage()
		return "", errHelp
	}
	fmt.Fprint(cli.out, "Enter password:")
	pwd, err := readPasswordFunc(int(syscall.Stdin))
	fmt.Fprintln(cli.out)
	if err != nil {
		return "", err
	}
	if len(pwd) == 0 {
		fs.Usage()
		return "", errHelp
	}
	return string(pwd), nil
}

func (cli *commandLine) login(ctx context.Context, username, password string) error {
	if !cli.auth.Login(ctx, username, password) {
		return errRejected
	}
	defer cli.auth.Logout()

	account, _ := cli.auth.Current()
	source := "record store"
	if account.Offline {
		source = "offline table"
	}
	fmt.Fprintf(cli.out, "logged in as %s (%s) via %s\n", account.Username, account.Role, source)
	return nil
}
