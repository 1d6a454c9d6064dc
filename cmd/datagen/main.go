package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/vanshika/txinsights/internal/generator"
)

func main() {
	cfg := generator.DefaultConfig()
	var (
		clients      = flag.Int("clients", cfg.NumClients, "number of distinct clients")
		transactions = flag.Int("transactions", cfg.NumTransactions, "number of transactions to generate")
		issueChance  = flag.Float64("issue-chance", cfg.IssueChance, "probability that a transaction carries a compliance issue")
		solvedChance = flag.Float64("solved-chance", cfg.SolvedChance, "probability that an attached issue is solved")
		maxAmount    = flag.Float64("max-amount", cfg.MaxAmount, "upper bound for generated amounts")
		seed         = flag.Int64("seed", cfg.Seed, "random seed for deterministic generation")
		output       = flag.String("output", generator.DefaultFileName, "file to write the transactions to")
		writeStdout  = flag.Bool("stdout", false, "write the dataset to stdout instead of a file")
	)
	flag.Parse()

	genCfg := generator.Config{
		NumClients:      *clients,
		NumTransactions: *transactions,
		IssueChance:     clampProbability(*issueChance),
		SolvedChance:    clampProbability(*solvedChance),
		MaxAmount:       *maxAmount,
		Seed:            *seed,
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	gen := generator.New(genCfg)
	txs, err := gen.Generate(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "generation failed: %v\n", err)
		os.Exit(1)
	}

	if *writeStdout {
		encoder := json.NewEncoder(os.Stdout)
		encoder.SetIndent("", "  ")
		if err := encoder.Encode(txs); err != nil {
			fmt.Fprintf(os.Stderr, "failed to write dataset to stdout: %v\n", err)
			os.Exit(1)
		}
		return
	}

	if err := generator.WriteDataset(txs, *output); err != nil {
		fmt.Fprintf(os.Stderr, "failed to write dataset: %v\n", err)
		os.Exit(1)
	}

	fmt.Fprintf(os.Stdout, "Generated %d transactions across %d clients into %s\n", len(txs), gen.Config().NumClients, *output)
}

func clampProbability(value float64) float64 {
	if value < 0 {
		return 0
	}
	if value > 1 {
		return 1
	}
	return value
}
