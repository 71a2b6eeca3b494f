package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"syscall"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/trezcool/micportal/core"
	"github.com/trezcool/micportal/core/auth"
	"github.com/trezcool/micportal/core/store"
	"github.com/trezcool/micportal/core/submission"
	"github.com/trezcool/micportal/services/portal"
	"github.com/trezcool/micportal/storage/state"
)

var (
	readPasswordFunc = term.ReadPassword // mockable

	errHelp     = errors.New("help provided")
	errNotLogin = errors.Wrap(core.ErrUnauthenticated, "run `console login` first")
)

type commandLine struct {
	conf       *core.Config
	logger     core.Logger
	validate   *validator.Validate
	translator ut.Translator
	state      *state.File
	mailer     core.EmailService
	guard      *store.Guard
	portalOpts []portal.Option

	out    io.Writer
	format string
}

func (cli *commandLine) rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "console",
		Short:         "Review console of the " + cli.conf.AppName,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			_ = cmd.Usage()
			return errHelp
		},
		PersistentPreRunE: func(*cobra.Command, []string) error {
			switch cli.format {
			case formatTable, formatJSON, formatYAML:
				return nil
			}
			return errors.Errorf("unknown output format %q", cli.format)
		},
	}
	root.PersistentFlags().StringVarP(&cli.format, "output", "o", formatTable, "Output format: table, json or yaml.")

	root.AddCommand(
		cli.loginCmd(),
		cli.logoutCmd(),
		cli.hashPasswordCmd(),
		cli.submissionsCmd(),
		cli.decideCmd(),
		cli.tagsCmd(),
		cli.assignCmd(),
		cli.incubationCmd(),
		cli.progressCmd(),
		cli.digestCmd(),
		cli.invitationsCmd(),
		cli.rsvpCmd(),
		cli.facultyCmd(),
		cli.companiesCmd(),
		cli.chatCmd(),
		cli.siteCmd(),
	)
	return root
}

func (cli *commandLine) run(args []string) error {
	if len(args) < 2 {
		_ = cli.rootCmd().Usage()
		return errHelp
	}

	root := cli.rootCmd()
	root.SetArgs(args[1:])
	root.SetOut(cli.out)
	root.SetErr(cli.out)
	if err := root.ExecuteContext(context.Background()); err != nil {
		return cli.explain(err)
	}
	return nil
}

// explain turns the validation errors into readable ones, keeping the other errors as is.
func (cli *commandLine) explain(err error) error {
	var vErrs validator.ValidationErrors
	if errors.As(err, &vErrs) {
		flds := core.TranslateErrors(vErrs, cli.translator)
		return core.NewValidationError(nil, flds...)
	}
	return err
}

// readPassword prompts for a password without echoing it.
func (cli *commandLine) readPassword(prompt string) (string, error) {
	fmt.Fprint(cli.out, prompt)
	pwd, err := readPasswordFunc(int(syscall.Stdin))
	fmt.Fprintln(cli.out)
	if err != nil {
		return "", errors.Wrap(err, "reading password")
	}
	if len(pwd) == 0 {
		return "", errHelp
	}
	return string(pwd), nil
}

// portal returns a portal client authenticated with the saved token.
func (cli *commandLine) portal() *portal.Client {
	return portal.New(cli.conf, cli.state, cli.portalOpts...)
}

func (cli *commandLine) session() (auth.Session, error) {
	token := cli.state.Token()
	if token == "" {
		return auth.Session{}, errNotLogin
	}
	sess, err := auth.NewSession(token)
	if err != nil {
		return auth.Session{}, errors.Wrap(err, "run `console login` again")
	}
	return sess, nil
}

func (cli *commandLine) reviews(roles ...auth.Role) (*submission.Service, error) {
	sess, err := cli.session()
	if err != nil {
		return nil, err
	}
	if len(roles) > 0 && !hasRole(sess.Role(), roles) {
		return nil, errors.Wrapf(core.ErrForbidden, "not available to %s users", sess.Role())
	}
	return submission.NewService(cli.portal(), sess.Role(), cli.validate, cli.guard, cli.logger), nil
}

func (cli *commandLine) admin() (*submission.AdminService, error) {
	sess, err := cli.session()
	if err != nil {
		return nil, err
	}
	if !sess.Role().IsAdmin() {
		return nil, errors.Wrap(core.ErrForbidden, "admin only")
	}
	return submission.NewAdminService(cli.portal(), cli.validate, cli.guard), nil
}

func hasRole(role auth.Role, roles []auth.Role) bool {
	for _, r := range roles {
		if r == role {
			return true
		}
	}
	return false
}

func isTerminal() bool {
	return term.IsTerminal(int(os.Stdout.Fd()))
}
