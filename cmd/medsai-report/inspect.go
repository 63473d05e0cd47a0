package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/medsai/report-engine/internal/pdfcheck"
)

func newInspectCmd() *cobra.Command {
	var showText bool
	cmd := &cobra.Command{
		Use:   "inspect <file.pdf>",
		Short: "Validate a rendered report and print its page count",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("read %s: %w", args[0], err)
			}

			rep, err := pdfcheck.Inspect(data)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s: %d pages\n", args[0], rep.Pages)
			if err := pdfcheck.CheckFooters(rep.Text); err != nil {
				fmt.Fprintf(out, "footer check: %v\n", err)
			} else {
				fmt.Fprintln(out, "footer check: ok")
			}
			if showText {
				for i, text := range rep.Text {
					fmt.Fprintf(out, "\n--- page %d ---\n%s\n", i+1, text)
				}
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&showText, "text", false, "print the extracted text of every page")
	return cmd
}
