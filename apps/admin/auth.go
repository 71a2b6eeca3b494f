package main

import (
	"fmt"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"golang.org/x/crypto/bcrypt"

	"github.com/trezcool/micportal/core"
	"github.com/trezcool/micportal/core/auth"
)

const passwordHashCost = 10

func (cli *commandLine) loginCmd() *cobra.Command {
	var email string
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in as an admin or a faculty member. The password is prompted next.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if email == "" {
				_ = cmd.Usage()
				return errHelp
			}
			pwd, err := cli.readPassword("Enter password:")
			if err != nil {
				return err
			}
			return cli.login(cmd, email, pwd)
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "The account's email.")
	return cmd
}

func (cli *commandLine) login(cmd *cobra.Command, email, pwd string) error {
	req := auth.LoginRequest{Email: core.CleanString(email, true /* lower */), Password: pwd}
	if err := cli.validate.Struct(req); err != nil {
		return err
	}

	resp, err := cli.portal().Login(cmd.Context(), req)
	if err != nil {
		if errors.Cause(err) == core.ErrUnauthenticated {
			return errors.New("authentication failed")
		}
		return err
	}
	if !(resp.Role.IsAdmin() || resp.Role.IsFaculty()) {
		return errors.Wrap(core.ErrForbidden, "the console is for admins and faculty")
	}
	if err = cli.state.SetToken(resp.Token); err != nil {
		return err
	}
	cli.logger.Info(fmt.Sprintf("logged in as %s (%s)", resp.Email, resp.Role))
	fmt.Fprintf(cli.out, "Logged in as %s <%s> (%s)\n", resp.Name, resp.Email, resp.Role)
	return nil
}

func (cli *commandLine) logoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the saved session",
		Args:  cobra.NoArgs,
		RunE: func(*cobra.Command, []string) error {
			if err := cli.state.Clear(); err != nil {
				return err
			}
			fmt.Fprintln(cli.out, "Logged out")
			return nil
		},
	}
}

func (cli *commandLine) hashPasswordCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "hashpassword",
		Short: "Print the bcrypt hash of a password, for seeding portal accounts",
		Args:  cobra.NoArgs,
		RunE: func(*cobra.Command, []string) error {
			pwd, err := cli.readPassword("Enter password:")
			if err != nil {
				return err
			}
			hash, err := bcrypt.GenerateFromPassword([]byte(pwd), passwordHashCost)
			if err != nil {
				return errors.Wrap(err, "hashing password")
			}
			fmt.Fprintln(cli.out, string(hash))
			return nil
		},
	}
}
