package main

import (
	"context"
	"flag"
	"fmt"
	"text/tabwriter"

	"fraudlens/internal/dashboard/history"
	"fraudlens/internal/dashboard/presenter"
)

func runHistory(ctx context.Context, e *env, args []string) error {
	fs := flag.NewFlagSet("history", flag.ContinueOnError)
	filter := fs.String("filter", "all", "all, fraud or safe")
	search := fs.String("search", "", "case-insensitive transaction id substring")
	page := fs.Int("page", 1, "page number")
	watch := fs.Bool("watch", false, "keep polling and redraw on every refresh")
	if err := fs.Parse(args); err != nil {
		return err
	}

	status, err := history.ParseStatusFilter(*filter)
	if err != nil {
		return err
	}

	viewer := history.NewViewer(e.api, history.Config{
		Limit:    e.cfg.HistoryLimit,
		Interval: e.cfg.HistoryPollInterval,
	}, e.logger)
	viewer.SetFilter(status)
	viewer.SetSearch(*search)
	viewer.SetPage(*page)

	if !*watch {
		viewer.Refresh(ctx)
		printHistory(e, viewer.View())
		return nil
	}

	viewer.OnUpdate(func(history.Snapshot) {
		fmt.Fprint(e.out, "\033[H\033[2J")
		printHistory(e, viewer.View())
	})
	return viewer.Run(ctx)
}

func printHistory(e *env, v history.View) {
	if v.Source == history.SourceFallback {
		fmt.Fprintln(e.out, "DEMO DATA: backend not reachable, records below are synthetic")
	}

	tw := tabwriter.NewWriter(e.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "TRANSACTION\tRESULT\tCONFIDENCE\tAMOUNT\tTIMESTAMP")
	for _, r := range v.Items {
		result := "safe"
		if r.Prediction {
			result = "FRAUD"
		}
		amount := "-"
		if r.InputFeatures != nil {
			amount = fmt.Sprintf("%.2f", r.InputFeatures.Amount)
		}
		fmt.Fprintf(tw, "%s\t%s\t%.1f%%\t%s\t%s\n",
			presenter.DisplayID(r.TransactionID), result, r.Confidence*100, amount, r.Timestamp)
	}
	_ = tw.Flush()

	fmt.Fprintf(e.out, "Page %d of %d (%d matching, filter=%s", v.CurrentPage, v.TotalPages, v.TotalItems, v.Filter)
	if v.Search != "" {
		fmt.Fprintf(e.out, ", search=%q", v.Search)
	}
	fmt.Fprintln(e.out, ")")
}
