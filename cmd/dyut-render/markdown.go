package main

import (
	"github.com/anatolykoptev/go_dyut/internal/render"
	"github.com/spf13/cobra"
)

func newMarkdownCmd() *cobra.Command {
	var safe bool
	cmd := &cobra.Command{
		Use:     "markdown [file]",
		Aliases: []string{"md"},
		Short:   "Render a markdown report",
		Args:    cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			text, err := readInput(cmd, args)
			if err != nil {
				return err
			}
			kind := render.KindMarkdown
			if safe {
				kind = render.KindMarkdownSafe
			}
			return emit(cmd, kind, text)
		},
	}
	cmd.Flags().BoolVar(&safe, "safe", false, "Escape raw HTML and sanitize the output")
	return cmd
}
