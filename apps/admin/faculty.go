package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/trezcool/micportal/core"
	"github.com/trezcool/micportal/core/store"
	"github.com/trezcool/micportal/core/submission"
)

func (cli *commandLine) facultyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "faculty",
		Short: "List and manage the faculty accounts (admin)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			svc, err := cli.admin()
			if err != nil {
				return err
			}
			snap, err := svc.Faculty(cmd.Context())
			if err != nil {
				return err
			}
			return cli.printFaculty(snap)
		},
	}
	cmd.AddCommand(cli.facultyAddCmd(), cli.facultyPasswdCmd())
	return cmd
}

func (cli *commandLine) facultyAddCmd() *cobra.Command {
	var nf submission.NewFaculty
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Create a faculty account. The password is prompted next.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if nf.Name == "" || nf.Email == "" {
				_ = cmd.Usage()
				return errHelp
			}
			svc, err := cli.admin()
			if err != nil {
				return err
			}
			if nf.Password, err = cli.readPassword("Enter password:"); err != nil {
				return err
			}
			snap, err := svc.CreateFaculty(cmd.Context(), nf)
			if err != nil {
				return err
			}
			cli.logger.Info(fmt.Sprintf("faculty account created: %s", nf.Email))
			return cli.printFaculty(snap)
		},
	}
	cmd.Flags().StringVar(&nf.Name, "name", "", "The faculty member's full name.")
	cmd.Flags().StringVar(&nf.Email, "email", "", "The faculty member's email, used to log in.")
	return cmd
}

func (cli *commandLine) facultyPasswdCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "passwd ID|EMAIL",
		Short: "Reset the password of a faculty account. The password is prompted next.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			svc, err := cli.admin()
			if err != nil {
				return err
			}
			member, err := svc.FindFaculty(ctx, args[0])
			if err != nil {
				return err
			}
			pwd, err := cli.readPassword("Enter new password:")
			if err != nil {
				return err
			}
			upd := submission.UpdateFaculty{Name: member.Name, Email: member.Email, Password: pwd}
			if _, err = svc.UpdateFaculty(ctx, member.ID, upd); err != nil {
				return err
			}
			cli.logger.Info(fmt.Sprintf("faculty password reset: %s", member.Email))
			fmt.Fprintf(cli.out, "Password of %s <%s> updated\n", member.Name, member.Email)
			return nil
		},
	}
}

func (cli *commandLine) printFaculty(snap store.Snapshot[submission.Faculty]) error {
	return cli.print(snap.Items, func(w io.Writer) {
		t := newTable("Faculty", "ID", "NAME", "EMAIL", "DEPARTMENT")
		for _, f := range snap.Items {
			t.add(f.ID, f.Name, f.Email, f.Department)
		}
		t.render(w)
	})
}

func (cli *commandLine) companiesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "companies",
		Short: "List and manage the companies founded by incubated projects (admin)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			svc, err := cli.admin()
			if err != nil {
				return err
			}
			snap, err := svc.Companies(cmd.Context())
			if err != nil {
				return err
			}
			return cli.printCompanies(snap)
		},
	}

	var nc submission.NewCompany
	add := &cobra.Command{
		Use:   "add NAME",
		Short: "Add a company",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := cli.admin()
			if err != nil {
				return err
			}
			nc.Name = args[0]
			snap, err := svc.AddCompany(cmd.Context(), nc)
			if err != nil {
				return err
			}
			return cli.printCompanies(snap)
		},
	}
	add.Flags().StringVar(&nc.LogoURL, "logo", "", "URL of the company's logo.")

	rm := &cobra.Command{
		Use:   "rm ID",
		Short: "Remove a company; its work items are unlinked",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := cli.admin()
			if err != nil {
				return err
			}
			snap, err := svc.DeleteCompany(cmd.Context(), core.CleanString(args[0]))
			if err != nil {
				return err
			}
			return cli.printCompanies(snap)
		},
	}

	cmd.AddCommand(add, rm)
	return cmd
}

func (cli *commandLine) printCompanies(snap store.Snapshot[submission.Company]) error {
	return cli.print(snap.Items, func(w io.Writer) {
		t := newTable("Companies", "ID", "NAME", "LOGO")
		for _, c := range snap.Items {
			t.add(c.ID, c.Name, c.LogoURL)
		}
		t.render(w)
	})
}
