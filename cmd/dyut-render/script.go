package main

import (
	"github.com/anatolykoptev/go_dyut/internal/render"
	"github.com/spf13/cobra"
)

func newScriptCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "script [file]",
		Short: "Render a script with section labels and production cues",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			text, err := readInput(cmd, args)
			if err != nil {
				return err
			}
			return emit(cmd, render.KindScript, text)
		},
	}
}
