package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aby0/customer-intelligence/internal/domain/signals"
)

func extractCmd(verbose *bool) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "extract <transcript.json> [more transcripts...]",
		Short: "Run layered signal extraction on transcripts",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svcs, err := buildServices(*verbose, false)
			if err != nil {
				return err
			}

			transcripts := make([]*signals.Transcript, 0, len(args))
			for _, path := range args {
				var t signals.Transcript
				if err := loadJSON(path, &t); err != nil {
					return err
				}
				transcripts = append(transcripts, &t)
			}

			if len(transcripts) == 1 {
				result, err := svcs.extractor.Extract(cmd.Context(), transcripts[0])
				if err != nil {
					return err
				}
				return printJSON(cmd, result)
			}

			// Multiple transcripts run through the bounded worker pool; one
			// bad transcript does not sink the batch.
			results := svcs.extractor.ExtractBatch(cmd.Context(), transcripts)
			failed := 0
			for _, r := range results {
				if r.Err != nil {
					failed++
					fmt.Fprintf(cmd.ErrOrStderr(), "extract %s: %v\n", r.TranscriptID, r.Err)
					continue
				}
				if err := printJSON(cmd, r.Result); err != nil {
					return err
				}
			}
			if failed > 0 {
				return fmt.Errorf("%d of %d transcripts failed", failed, len(results))
			}
			return nil
		},
	}
	return cmd
}
