package main

import (
	"fmt"
	"io"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/trezcool/micportal/core"
	"github.com/trezcool/micportal/core/invitation"
)

func (cli *commandLine) invitations() (*invitation.Service, error) {
	sess, err := cli.session()
	if err != nil {
		return nil, err
	}
	if !sess.Role().IsFaculty() {
		return nil, errors.Wrap(core.ErrForbidden, "invitations are sent to faculty members")
	}
	return invitation.NewService(cli.portal(), cli.validate, cli.guard, cli.logger), nil
}

func (cli *commandLine) invitationsCmd() *cobra.Command {
	var filter string
	cmd := &cobra.Command{
		Use:   "invitations",
		Short: "List the event invitations of the logged in faculty member",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			key, err := invitation.ParseFilterKey(filter)
			if err != nil {
				return err
			}
			svc, err := cli.invitations()
			if err != nil {
				return err
			}
			listing, err := svc.List(cmd.Context(), key, invitation.NowFunc())
			if err != nil {
				return err
			}

			return cli.print(listing, func(w io.Writer) {
				c := listing.Counts
				title := fmt.Sprintf("Invitations (%s): %d upcoming, %d past, %d awaiting your RSVP", listing.Filter, c.Upcoming, c.Past, c.Pending)
				t := newTable(title, "ID", "EVENT", "DATE", "LOCATION", "RSVP", "WHEN")
				for _, it := range listing.Items {
					inv := it.Invitation
					t.add(inv.ID, inv.Title, inv.Date, inv.Location, badge(it.View.Label, it.View.Color), it.View.When)
				}
				t.render(w)
			})
		},
	}
	cmd.Flags().StringVar(&filter, "filter", string(invitation.FilterAll), "One of: all, upcoming, past, pending.")
	return cmd
}

func (cli *commandLine) rsvpCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rsvp ID accepted|declined",
		Short: "Answer a pending invitation. Answers are final.",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			action, err := invitation.ParseAction(args[1])
			if err != nil {
				return err
			}
			svc, err := cli.invitations()
			if err != nil {
				return err
			}
			item, err := svc.Respond(cmd.Context(), args[0], action)
			if err != nil {
				return err
			}
			return cli.print(item, func(w io.Writer) {
				fmt.Fprintf(w, "%s (%s): %s\n", item.Invitation.Title, item.Invitation.Date, badge(item.View.Label, item.View.Color))
			})
		},
	}
}
