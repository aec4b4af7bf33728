package main

import (
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"syscall"

	"golang.org/x/term"

	"github.com/facexem/backend/core/admin"
	"github.com/facexem/backend/core/user"
)

var (
	readPasswordFunc = term.ReadPassword // mockable

	errHelp = errors.New("help provided")
)

type commandLine struct {
	db       *sql.DB
	adminSvc *admin.Service
	usrSvc   *user.Service
}

func (cli *commandLine) printUsage() {
	fmt.Println("Usage:")
	fmt.Println("  addadmin -email EMAIL - create an admin account; the password will be prompted")
	fmt.Println("  adduser -name NAME [-email EMAIL] [-role ROLE] - create a user account; the password will be prompted")
	fmt.Println("  enroll -key PUBLIC_KEY -subject CODENAME - enroll a user into a subject")
	fmt.Println("  migrate COMMAND [ARGS...] - run a goose migration command (up, down, status, ...)")
}

func (cli *commandLine) run(args []string) error {
	if len(args) < 2 {
		cli.printUsage()
		return errHelp
	}

	addAdminCmd := flag.NewFlagSet("addadmin", flag.ExitOnError)
	addAdminEmail := addAdminCmd.String("email", "", "The admin's email. The password will be prompted next.")

	addUserCmd := flag.NewFlagSet("adduser", flag.ExitOnError)
	addUserName := addUserCmd.String("name", "", "The user's display name.")
	addUserEmail := addUserCmd.String("email", "", "The user's email; a token account is derived from it. Omit to be prompted for a password instead.")
	addUserRole := addUserCmd.Int("role", user.RoleUser, "The user's role (1 user, 2 author, 3 admin).")

	enrollCmd := flag.NewFlagSet("enroll", flag.ExitOnError)
	enrollKey := enrollCmd.String("key", "", "The user's public key.")
	enrollSubject := enrollCmd.String("subject", "", "The subject codename.")

	switch args[1] {
	case "addadmin":
		if err := addAdminCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *addAdminEmail == "" {
			addAdminCmd.Usage()
			return errHelp
		}
		pwd, err := cli.promptPassword()
		if err != nil {
			return err
		}
		if pwd == "" {
			addAdminCmd.Usage()
			return errHelp
		}
		return cli.addAdmin(*addAdminEmail, pwd)
	case "adduser":
		if err := addUserCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *addUserName == "" {
			addUserCmd.Usage()
			return errHelp
		}
		// email accounts authenticate by derived token; password accounts
		// get their password prompted.
		var pwd string
		if *addUserEmail == "" {
			var err error
			if pwd, err = cli.promptPassword(); err != nil {
				return err
			}
			if pwd == "" {
				addUserCmd.Usage()
				return errHelp
			}
		}
		return cli.addUser(*addUserName, *addUserEmail, pwd, *addUserRole)
	case "enroll":
		if err := enrollCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *enrollKey == "" || *enrollSubject == "" {
			enrollCmd.Usage()
			return errHelp
		}
		return cli.enroll(*enrollKey, *enrollSubject)
	case "migrate":
		if len(args) < 3 {
			cli.printUsage()
			return errHelp
		}
		return cli.migrate(args[2:])
	default:
		cli.printUsage()
		return errHelp
	}
}

func (cli *commandLine) promptPassword() (string, error) {
	fmt.Print("Enter password:")
	pwd, err := readPasswordFunc(syscall.Stdin)
	fmt.Println()
	if err != nil {
		return "", err
	}
	return string(pwd), nil
}
