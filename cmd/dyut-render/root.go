package main

import (
	"fmt"
	"io"
	"os"

	"github.com/anatolykoptev/go_dyut/internal/render"
	"github.com/spf13/cobra"
)

var version = "dev"

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "dyut-render",
		Short:         "Render dyut reports and scripts to HTML or the terminal",
		Long:          `dyut-render converts the markdown reports and bracket-cued scripts produced by go_dyut into HTML fragments, or into ANSI text with --ansi.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().Bool("ansi", false, "Render for the terminal instead of HTML")
	root.PersistentFlags().String("style", render.DefaultTerminalStyle, "Terminal style for --ansi (dark, light, notty, ascii or a JSON style file)")
	root.AddCommand(newMarkdownCmd(), newScriptCmd())
	return root
}

// Execute runs the root command.
func Execute() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// readInput reads the named file, or stdin when no file or "-" is given.
func readInput(cmd *cobra.Command, args []string) (string, error) {
	if len(args) == 0 || args[0] == "-" {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return "", fmt.Errorf("read stdin: %w", err)
		}
		return string(data), nil
	}
	data, err := os.ReadFile(args[0])
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// emit writes text through the requested renderer.
func emit(cmd *cobra.Command, kind render.Kind, text string) error {
	ansi, _ := cmd.Flags().GetBool("ansi")
	out := cmd.OutOrStdout()
	if ansi {
		style, _ := cmd.Flags().GetString("style")
		s, err := render.Terminal(text, style)
		if err != nil {
			return err
		}
		_, err = io.WriteString(out, s)
		return err
	}
	_, err := fmt.Fprintln(out, render.Render(kind, text))
	return err
}
