package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/trezcool/micportal/core/chat"
)

func (cli *commandLine) chatCmd() *cobra.Command {
	var reset bool
	cmd := &cobra.Command{
		Use:   "chat MESSAGE...",
		Short: "Talk to the portal's assistant. The conversation carries over between runs.",
		Args:  cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if reset {
				if err := cli.state.SetChatSessionID(""); err != nil {
					return err
				}
			}
			if len(args) == 0 {
				if reset {
					fmt.Fprintln(cli.out, "Conversation reset")
					return nil
				}
				_ = cmd.Usage()
				return errHelp
			}

			svc := chat.NewService(cli.portal(), cli.state, cli.validate, cli.logger)
			reply, err := svc.Send(cmd.Context(), strings.Join(args, " "))
			if err != nil {
				var vErrs validator.ValidationErrors
				if errors.As(err, &vErrs) {
					return err
				}
				reply = chat.Reply{Response: chat.UnavailableMsg, SessionID: cli.state.ChatSessionID()}
			}
			return cli.print(reply, func(w io.Writer) { renderMarkdown(w, reply.Response) })
		},
	}
	cmd.Flags().BoolVar(&reset, "reset", false, "Start a new conversation.")
	return cmd
}

// renderMarkdown prints the assistant's markdown answer, styled when writing to a terminal.
func renderMarkdown(w io.Writer, md string) {
	style := glamour.WithStylePath("notty")
	if isTerminal() {
		style = glamour.WithAutoStyle()
	}
	renderer, err := glamour.NewTermRenderer(style, glamour.WithWordWrap(80))
	if err == nil {
		var out string
		if out, err = renderer.Render(md); err == nil {
			fmt.Fprint(w, out)
			return
		}
	}
	fmt.Fprintln(w, md)
}
