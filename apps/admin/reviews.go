package main

import (
	"fmt"
	"io"
	"net/mail"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/trezcool/micportal/core"
	"github.com/trezcool/micportal/core/auth"
	"github.com/trezcool/micportal/core/submission"
)

func (cli *commandLine) submissionsCmd() *cobra.Command {
	var filter string
	cmd := &cobra.Command{
		Use:   "submissions [ID]",
		Short: "List the review queue, or show one submission",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := cli.reviews()
			if err != nil {
				return err
			}
			if len(args) == 1 {
				item, err := svc.Get(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				return cli.print(item, func(w io.Writer) { renderItem(w, item) })
			}

			key, err := submission.ParseFilterKey(filter)
			if err != nil {
				return err
			}
			listing, err := svc.List(cmd.Context(), key)
			if err != nil {
				return err
			}
			return cli.print(listing, func(w io.Writer) { renderListing(w, listing) })
		},
	}
	cmd.Flags().StringVar(&filter, "filter", string(submission.FilterAll), "One of: all, pending, approved, rejected.")
	return cmd
}

func renderListing(w io.Writer, listing submission.Listing) {
	c := listing.Counts
	title := fmt.Sprintf("Submissions (%s): %d total, %d pending, %d approved, %d rejected",
		listing.Filter, c.All, c.Pending, c.Approved, c.Rejected)
	t := newTable(title, "ID", "TITLE", "STUDENT", "STATUS", "SUBMITTED", "ACTIONS")
	for _, it := range listing.Items {
		s := it.Submission
		t.add(s.ID, s.Title, s.Student, badge(it.View.Label, it.View.Color), s.SubmittedOn.Format("Jan 2, 2006"), actionList(it.View.Actions))
	}
	t.render(w)
}

func renderItem(w io.Writer, it submission.Item) {
	s := it.Submission
	t := newTable(s.Title, "FIELD", "VALUE")
	t.add("ID", s.ID)
	t.add("Status", badge(it.View.Label, it.View.Color))
	if s.Student != "" {
		t.add("Student", s.Student)
	}
	if s.Domain != "" {
		t.add("Domain", s.Domain)
	}
	if len(s.Tags) > 0 {
		t.add("Tags", strings.Join(s.Tags, ", "))
	}
	if it.View.StageLabel != "" {
		t.add("Stage", it.View.StageLabel)
		t.add("Progress", strconv.Itoa(it.View.Progress)+"%")
	}
	if s.CompanyName != "" {
		t.add("Company", s.CompanyName)
	}
	t.add("Actions", actionList(it.View.Actions))
	t.render(w)
	if s.Description != "" {
		fmt.Fprintln(w)
		fmt.Fprintln(w, s.Description)
	}
}

func actionList(actions []submission.Action) string {
	names := make([]string, len(actions))
	for i, a := range actions {
		names[i] = string(a)
	}
	return strings.Join(names, ", ")
}

func (cli *commandLine) decideCmd() *cobra.Command {
	var reason string
	cmd := &cobra.Command{
		Use:   "decide ID approved|rejected|needs_improvement",
		Short: "Record a review decision",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := cli.reviews()
			if err != nil {
				return err
			}
			req := submission.DecisionRequest{
				Decision: submission.Decision(core.CleanString(args[1], true /* lower */)),
				Reason:   core.CleanString(reason),
			}
			item, err := svc.Decide(cmd.Context(), args[0], req)
			if err != nil {
				return err
			}
			return cli.print(item, func(w io.Writer) { renderItem(w, item) })
		},
	}
	cmd.Flags().StringVar(&reason, "reason", "", "Why the decision was taken.")
	return cmd
}

func (cli *commandLine) tagsCmd() *cobra.Command {
	var upd submission.TagsUpdate
	cmd := &cobra.Command{
		Use:   "tags ID",
		Short: "Set the domain and the tags of a submission (admin)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := cli.reviews(auth.RoleAdmin)
			if err != nil {
				return err
			}
			item, err := svc.UpdateTags(cmd.Context(), args[0], upd)
			if err != nil {
				return err
			}
			return cli.print(item, func(w io.Writer) { renderItem(w, item) })
		},
	}
	cmd.Flags().StringVar(&upd.Domain, "domain", "", "The submission's domain.")
	cmd.Flags().StringSliceVar(&upd.Tags, "tag", nil, "A tag; repeat or separate with commas.")
	return cmd
}

func (cli *commandLine) assignCmd() *cobra.Command {
	var remove bool
	cmd := &cobra.Command{
		Use:   "assign ID [FACULTY]",
		Short: "List, assign or remove the faculty reviewing a submission (admin). FACULTY is an id or an email.",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			svc, err := cli.reviews(auth.RoleAdmin)
			if err != nil {
				return err
			}

			var assignments []submission.Assignment
			switch {
			case len(args) == 1 && remove:
				_ = cmd.Usage()
				return errHelp
			case len(args) == 1:
				assignments, err = svc.AssignedFaculty(ctx, args[0])
			default:
				admin, aErr := cli.admin()
				if aErr != nil {
					return aErr
				}
				member, fErr := admin.FindFaculty(ctx, args[1])
				if fErr != nil {
					return fErr
				}
				if remove {
					assignments, err = svc.RemoveFaculty(ctx, args[0], member.ID)
				} else {
					assignments, err = svc.AssignFaculty(ctx, args[0], member.ID)
				}
			}
			if err != nil {
				return err
			}

			return cli.print(assignments, func(w io.Writer) {
				t := newTable("Faculty assigned to "+args[0], "ID", "NAME", "ASSIGNED")
				for _, a := range assignments {
					t.add(a.FacultyID, a.FacultyName, a.AssignedAt.Format("Jan 2, 2006"))
				}
				t.render(w)
			})
		},
	}
	cmd.Flags().BoolVar(&remove, "remove", false, "Remove the faculty member instead.")
	return cmd
}

func (cli *commandLine) incubationCmd() *cobra.Command {
	var (
		stage string
		upd   submission.IncubationUpdate
	)
	cmd := &cobra.Command{
		Use:   "incubation ID",
		Short: "Update the incubation stage and progress of an approved submission (faculty)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := cli.reviews(auth.RoleFaculty)
			if err != nil {
				return err
			}
			upd.Stage = submission.ParseStage(stage)
			report, err := svc.UpdateIncubation(cmd.Context(), args[0], upd)
			if err != nil {
				return err
			}
			return cli.print(report, func(w io.Writer) { renderReport(w, report) })
		},
	}
	cmd.Flags().StringVar(&stage, "stage", string(submission.StageUnderIncubation), "One of: under_incubation, looking_for_funding, found_company.")
	cmd.Flags().IntVar(&upd.ProgressPercent, "progress", 0, "Progress, in percent.")
	cmd.Flags().StringVar(&upd.CompanyID, "company", "", "The company founded, when the stage is found_company.")
	return cmd
}

func (cli *commandLine) progressCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "progress",
		Short: "List the submissions accepted by the logged in faculty member",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			svc, err := cli.reviews(auth.RoleFaculty)
			if err != nil {
				return err
			}
			report, err := svc.Progress(cmd.Context())
			if err != nil {
				return err
			}
			return cli.print(report, func(w io.Writer) { renderReport(w, report) })
		},
	}
}

func renderReport(w io.Writer, report submission.ProgressReport) {
	t := newTable(fmt.Sprintf("Incubation progress: %d%% on average", report.Average), "ID", "TITLE", "STUDENT", "STAGE", "PROGRESS")
	for _, row := range report.Items {
		t.add(row.SubmissionID, row.Title, row.Student, row.StageLabel, strconv.Itoa(row.ProgressPercent)+"%")
	}
	t.render(w)
}

func (cli *commandLine) digestCmd() *cobra.Command {
	var (
		to    []string
		limit int
	)
	cmd := &cobra.Command{
		Use:   "digest",
		Short: "Summarize the review queue, and email the summary",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			addrs := make([]mail.Address, 0, len(to))
			for _, s := range to {
				addr, err := mail.ParseAddress(s)
				if err != nil {
					return core.NewValidationError(errors.Wrapf(err, "invalid recipient %q", s))
				}
				addrs = append(addrs, *addr)
			}

			svc, err := cli.reviews()
			if err != nil {
				return err
			}
			digest, err := svc.Digest(cmd.Context(), limit)
			if err != nil {
				return err
			}
			if len(addrs) > 0 {
				msg, err := digest.Message(addrs...)
				if err != nil {
					return err
				}
				if err = cli.mailer.SendMessages(cmd.Context(), msg); err != nil {
					return errors.Wrap(err, "sending digest")
				}
				cli.logger.Info(fmt.Sprintf("review digest sent to %d recipient(s)", len(addrs)))
			}

			return cli.print(digest, func(w io.Writer) {
				t := newTable(fmt.Sprintf("%d submission(s) waiting for a decision", digest.Pending()), "ID", "TITLE", "STUDENT", "STATUS", "SUBMITTED")
				for _, e := range digest.Oldest {
					t.add(e.ID, e.Title, e.Student, e.Label, e.SubmittedOn)
				}
				t.render(w)
			})
		},
	}
	cmd.Flags().StringSliceVar(&to, "to", nil, "Email the digest to these addresses.")
	cmd.Flags().IntVar(&limit, "limit", 10, "How many of the oldest waiting submissions to list.")
	return cmd
}
