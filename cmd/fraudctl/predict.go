package main

import (
	"context"
	"flag"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"fraudlens/internal/dashboard/form"
	"fraudlens/internal/dashboard/prediction"
	"fraudlens/internal/dashboard/presenter"
	"fraudlens/internal/dashboard/stats"
)

func runPredict(ctx context.Context, e *env, args []string) error {
	fs := flag.NewFlagSet("predict", flag.ContinueOnError)
	profileName := fs.String("profile", "", "randomize all fields with a safe or fraud profile")
	amount := fs.Float64("amount", 0, "transaction amount, applied after -profile")
	seed := fs.Int64("seed", 0, "random seed for -profile (0 uses the clock)")
	set := fs.String("set", "", "comma-separated field=value overrides, e.g. v14=-3.2,amount=120")
	if err := fs.Parse(args); err != nil {
		return err
	}

	draft := form.NewCollector()
	if *profileName != "" {
		profile, err := form.ParseProfile(*profileName)
		if err != nil {
			return err
		}
		if *seed == 0 {
			*seed = time.Now().UnixNano()
		}
		draft.Randomize(profile, rand.New(rand.NewSource(*seed)))
	}
	if *amount != 0 {
		if err := draft.SetValue("amount", *amount); err != nil {
			return err
		}
	}
	if err := applyOverrides(draft, *set); err != nil {
		return err
	}
	fmt.Fprintf(e.out, "Form %.0f%% complete (%.0f%% of fields edited)\n", draft.Completion(), draft.TouchedCompletion())

	agg := stats.NewAggregator(e.api, e.logger)
	refreshed := make(chan struct{})
	var failure *prediction.Notification
	panel := prediction.NewPanel(e.api, refreshFunc(func(ctx context.Context) {
		defer close(refreshed)
		agg.Refresh(ctx)
	}), prediction.NotifierFunc(func(n prediction.Notification) {
		failure = &n
	}), e.logger)

	if err := draft.Submit(ctx, panel); err != nil {
		panel.Close()
		if failure != nil {
			return fmt.Errorf("%s: %s", failure.Title, failure.Message)
		}
		return err
	}

	select {
	case <-refreshed:
	case <-ctx.Done():
	}
	panel.Close()

	view := presenter.Present(*panel.State().Latest, e.theme.Mode())
	fmt.Fprint(e.out, view.Text(e.color))
	if view.CopyID != "" {
		fmt.Fprintf(e.out, "Full id     %s\n", view.CopyID)
	}
	if agg.Loaded() {
		printStats(e, agg.Current())
	}
	return nil
}

// refreshFunc adapts a function to prediction.StatsRefresher.
type refreshFunc func(ctx context.Context)

func (f refreshFunc) Refresh(ctx context.Context) { f(ctx) }

func applyOverrides(draft *form.Collector, spec string) error {
	if strings.TrimSpace(spec) == "" {
		return nil
	}
	for _, pair := range strings.Split(spec, ",") {
		name, value, ok := strings.Cut(pair, "=")
		if !ok {
			return fmt.Errorf("invalid override %q, want field=value", pair)
		}
		if err := draft.Set(name, value); err != nil {
			return fmt.Errorf("%s: %w", strings.TrimSpace(name), err)
		}
	}
	return nil
}
