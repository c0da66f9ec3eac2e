package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aby0/customer-intelligence/internal/domain/signals"
)

func summarizeCmd(verbose *bool) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "summarize <transcript.json>",
		Short: "Produce a human-readable call summary",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svcs, err := buildServices(*verbose, false)
			if err != nil {
				return err
			}

			var transcript signals.Transcript
			if err := loadJSON(args[0], &transcript); err != nil {
				return err
			}

			summary, err := svcs.extractor.ExtractSummary(cmd.Context(), &transcript)
			if err != nil {
				return err
			}
			if asJSON {
				return printJSON(cmd, summary)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, summary.ExecutiveSummary)
			if len(summary.KeyMoments) > 0 {
				fmt.Fprintln(out, "\nKey moments:")
				for i := range summary.KeyMoments {
					m := &summary.KeyMoments[i]
					fmt.Fprintf(out, "  [%s] %s\n", m.MomentType, m.Description)
				}
			}
			if len(summary.ActionItems) > 0 {
				fmt.Fprintln(out, "\nAction items:")
				for i := range summary.ActionItems {
					a := &summary.ActionItems[i]
					fmt.Fprintf(out, "  - %s (%s, %s)\n", a.Action, a.Owner, a.Criticality)
				}
			}
			if len(summary.ProspectPriorities) > 0 {
				fmt.Fprintf(out, "\nProspect priorities: %v\n", summary.ProspectPriorities)
			}
			if len(summary.ConcernsToAddress) > 0 {
				fmt.Fprintf(out, "Concerns to address: %v\n", summary.ConcernsToAddress)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the structured summary")
	return cmd
}
