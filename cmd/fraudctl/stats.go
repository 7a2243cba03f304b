package main

import (
	"context"
	"flag"
	"fmt"

	"fraudlens/internal/dashboard/stats"
	"fraudlens/internal/models"
)

func runStats(ctx context.Context, e *env, args []string) error {
	fs := flag.NewFlagSet("stats", flag.ContinueOnError)
	if err := fs.Parse(args); err != nil {
		return err
	}

	agg := stats.NewAggregator(e.api, e.logger)
	agg.Refresh(ctx)
	if !agg.Loaded() {
		fmt.Fprintln(e.out, "Backend not reachable, showing defaults")
	}
	printStats(e, agg.Current())
	return nil
}

func printStats(e *env, s models.AggregateStats) {
	fmt.Fprintf(e.out, "Total %d  Fraud %d  Safe %d  Fraud rate %.2f%%\n",
		s.TotalPredictions, s.FraudCount, s.SafeCount, s.FraudPercentage)
}
