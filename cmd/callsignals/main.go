package main

import (
	"encoding/json"
	"fmt"
	"log"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/aby0/customer-intelligence/internal/usecase/evaluation"
	"github.com/aby0/customer-intelligence/internal/usecase/extraction"
	"github.com/aby0/customer-intelligence/pkg/config"
	"github.com/aby0/customer-intelligence/pkg/llm"
)

func main() {
	if err := newRoot().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRoot() *cobra.Command {
	var verbose bool
	root := &cobra.Command{
		Use:          "callsignals",
		Short:        "Extract and evaluate sales-call signals",
		SilenceUsage: true,
	}
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable structured logging")
	root.AddCommand(
		extractCmd(&verbose),
		evaluateCmd(&verbose),
		summarizeCmd(&verbose),
	)
	return root
}

// services wires the shared dependency graph for one CLI invocation
type services struct {
	cfg       *config.Config
	extractor extraction.Service
	evaluator evaluation.Service
}

func buildServices(verbose, judge bool) (*services, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	logger := zap.NewNop()
	if verbose {
		if logger, err = zap.NewDevelopment(); err != nil {
			return nil, err
		}
	}

	client := llm.NewAnthropicClient(&cfg.Anthropic)

	var judgeClient *llm.AnthropicClient
	if judge {
		judgeClient = client
	}

	return &services{
		cfg:       cfg,
		extractor: extraction.NewService(client, cfg, logger),
		evaluator: evaluation.NewService(judgeClient, cfg, nil, logger),
	}, nil
}

func loadJSON(path string, v interface{}) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}
	return nil
}

func printJSON(cmd *cobra.Command, v interface{}) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func init() {
	log.SetFlags(0)
}
