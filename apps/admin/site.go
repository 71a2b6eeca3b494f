package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/trezcool/micportal/core/content"
)

func (cli *commandLine) siteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "site [SECTION]",
		Short: "Show a listing of the public site, as visitors see it",
		Long: "Show a listing of the public site, as visitors see it. SECTION is one of:\n" +
			"resources, resources/top, events/upcoming, events/all, about/cards, about/features,\n" +
			"about/team, about/testimonials, about/stats (default: resources).",
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sec := content.SectionResources
			if len(args) == 1 {
				var err error
				if sec, err = content.ParseSection(args[0]); err != nil {
					return err
				}
			}
			listing, err := content.NewSite(cli.portal()).Section(cmd.Context(), sec)
			if err != nil {
				return err
			}

			return cli.print(listing, func(w io.Writer) {
				title := fmt.Sprintf("Site: %s", listing.Section)
				if sec.Type() == content.TypeEvent {
					t := newTable(title, "ID", "EVENT", "DATE", "VENUE", "PRICE")
					for _, b := range listing.Items {
						t.add(b.ID, b.Title, b.EventDate, b.Venue, b.Price)
					}
					t.render(w)
					return
				}
				t := newTable(title, "ID", "TITLE", "DESCRIPTION")
				for _, b := range listing.Items {
					t.add(b.ID, b.Title, b.Description)
				}
				t.render(w)
			})
		},
	}
}
