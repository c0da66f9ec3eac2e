package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/aby0/customer-intelligence/internal/domain/signals"
	"github.com/aby0/customer-intelligence/internal/usecase/evaluation"
)

const (
	extractionSuffix  = ".extraction.json"
	groundTruthSuffix = ".groundtruth.json"
	transcriptSuffix  = ".transcript.json"
)

func evaluateCmd(verbose *bool) *cobra.Command {
	var (
		asJSON    bool
		judge     bool
		baselines bool
		corpus    string
	)
	cmd := &cobra.Command{
		Use:   "evaluate <extraction.json> <groundtruth.json> <transcript.json>",
		Short: "Score an extraction result against its reference annotation",
		Args: func(cmd *cobra.Command, args []string) error {
			if corpus != "" {
				return cobra.NoArgs(cmd, args)
			}
			return cobra.ExactArgs(3)(cmd, args)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			svcs, err := buildServices(*verbose, judge)
			if err != nil {
				return err
			}
			opts := evaluation.Options{Judge: judge, Baselines: baselines}

			if corpus != "" {
				cases, err := loadCorpus(corpus)
				if err != nil {
					return err
				}
				report, err := svcs.evaluator.EvaluateCorpus(cmd.Context(), cases, opts)
				if err != nil {
					return err
				}
				if asJSON {
					if err := printJSON(cmd, report); err != nil {
						return err
					}
				} else {
					fmt.Fprintln(cmd.OutOrStdout(), report.Summary())
				}
				if n := len(report.Failures); n > 0 {
					return fmt.Errorf("%d of %d cases failed evaluation", n, len(cases))
				}
				return nil
			}

			var (
				extracted   signals.ExtractionResult
				groundTruth signals.GroundTruth
				transcript  signals.Transcript
			)
			if err := loadJSON(args[0], &extracted); err != nil {
				return err
			}
			if err := loadJSON(args[1], &groundTruth); err != nil {
				return err
			}
			if err := loadJSON(args[2], &transcript); err != nil {
				return err
			}

			report, err := svcs.evaluator.Evaluate(cmd.Context(), &extracted, &groundTruth, &transcript, opts)
			if err != nil {
				return err
			}
			if asJSON {
				return printJSON(cmd, report)
			}
			fmt.Fprintln(cmd.OutOrStdout(), report.Summary())
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the structured report instead of the text summary")
	cmd.Flags().BoolVar(&judge, "judge", false, "Score matched signals with the quality judge")
	cmd.Flags().BoolVar(&baselines, "baselines", false, "Cross-check surface signals against dependency-free baselines")
	cmd.Flags().StringVar(&corpus, "corpus", "", "Evaluate every *.extraction.json triple in a directory")
	return cmd
}

// loadCorpus collects evaluation cases from a directory of file triples:
// <id>.extraction.json, <id>.groundtruth.json, <id>.transcript.json
func loadCorpus(dir string) ([]evaluation.Case, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	var bases []string
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), extractionSuffix) {
			continue
		}
		bases = append(bases, strings.TrimSuffix(entry.Name(), extractionSuffix))
	}
	sort.Strings(bases)

	if len(bases) == 0 {
		return nil, fmt.Errorf("no %s files in %s", extractionSuffix, dir)
	}

	cases := make([]evaluation.Case, 0, len(bases))
	for _, base := range bases {
		var c evaluation.Case
		c.Extracted = &signals.ExtractionResult{}
		c.GroundTruth = &signals.GroundTruth{}
		c.Transcript = &signals.Transcript{}
		if err := loadJSON(filepath.Join(dir, base+extractionSuffix), c.Extracted); err != nil {
			return nil, err
		}
		if err := loadJSON(filepath.Join(dir, base+groundTruthSuffix), c.GroundTruth); err != nil {
			return nil, err
		}
		if err := loadJSON(filepath.Join(dir, base+transcriptSuffix), c.Transcript); err != nil {
			return nil, err
		}
		cases = append(cases, c)
	}
	return cases, nil
}
