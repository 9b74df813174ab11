// Command report runs the full source load once and prints a plain-text
// summary of the dataset: nationwide rollup, top languages by speakers,
// share breakdown, and the per-state diversity quartiles. It exercises
// the same fetch and join path the service uses, so a clean report means
// the service would start against the same URLs.
//
// Usage:
//
//	go run ./cmd/report \
//	  -geometry http://localhost:9090/states-topo.json \
//	  -language http://localhost:9090/languages.csv \
//	  -population http://localhost:9090/population.csv
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"sort"
	"text/tabwriter"
	"time"

	"github.com/mapfolk/language-atlas/internal/adapter/fetch"
	"github.com/mapfolk/language-atlas/internal/dataset"
	"github.com/mapfolk/language-atlas/internal/domain"
	"github.com/mapfolk/language-atlas/internal/observability"
)

func main() {
	geometryURL := flag.String("geometry", "", "URL of the TopoJSON geometry source")
	languageURL := flag.String("language", "", "URL of the language CSV source")
	populationURL := flag.String("population", "", "URL of the population CSV source")
	timeout := flag.Duration("timeout", 30*time.Second, "per-request fetch timeout")
	top := flag.Int("top", 15, "number of top languages to list")
	state := flag.String("state", "", "limit the detail sections to one state")
	flag.Parse()

	if *geometryURL == "" || *languageURL == "" || *populationURL == "" {
		flag.Usage()
		os.Exit(1)
	}

	if err := run(*geometryURL, *languageURL, *populationURL, *timeout, *top, *state); err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: %v\n", err)
		os.Exit(1)
	}
}

func run(geometryURL, languageURL, populationURL string, timeout time.Duration, top int, state string) error {
	logger := observability.NewLogger("warn", "text")
	metrics := observability.NewMetricsForTesting()

	client := fetch.NewClient(geometryURL, languageURL, populationURL, timeout, metrics, logger)
	loader := dataset.New(client, logger, metrics)

	snap, err := loader.Load(context.Background())
	if err != nil {
		return err
	}

	var scope *string
	scopeName := "United States"
	if state != "" {
		canonical := domain.Canonicalize(state)
		if !domain.IsKnownState(canonical) {
			return fmt.Errorf("unknown state %q", state)
		}
		scope = &canonical
		scopeName = canonical
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	defer w.Flush()

	printOverview(w, snap, scopeName, scope)
	printTopLanguages(w, snap, scope, top)
	printShares(w, snap, scope)
	if scope == nil {
		printQuartiles(w, snap)
	}
	return nil
}

func printOverview(w *tabwriter.Writer, snap *domain.Snapshot, scopeName string, scope *string) {
	var agg domain.StateAggregate
	if scope == nil {
		agg = domain.NationwideSummary(snap)
	} else {
		agg = domain.StateSummary(snap, *scope)
	}

	fmt.Fprintf(w, "=== %s ===\n", scopeName)
	fmt.Fprintf(w, "snapshot\t%s\t(loaded %s)\n", snap.Fingerprint(), snap.LoadedAt.Format(time.RFC3339))
	fmt.Fprintf(w, "records\t%d\n", len(recordsInScope(snap, scope)))
	fmt.Fprintf(w, "states with records\t%d\n", len(snap.LanguageByState))
	fmt.Fprintf(w, "distinct languages\t%d\n", agg.DistinctLanguages)
	if agg.Population != nil {
		fmt.Fprintf(w, "population\t%d\n", *agg.Population)
	} else {
		fmt.Fprintf(w, "population\tunresolved\n")
	}
	fmt.Fprintf(w, "speak English less than very well\t%.3f\n", domain.EnglishProficiencyProportion(snap, scope))
	fmt.Fprintf(w, "margin of error (RMS)\t%.0f\n", agg.MarginOfErrorRMS)
	fmt.Fprintln(w)
}

func printTopLanguages(w *tabwriter.Writer, snap *domain.Snapshot, scope *string, top int) {
	var agg domain.StateAggregate
	if scope == nil {
		agg = domain.NationwideSummary(snap)
	} else {
		agg = domain.StateSummary(snap, *scope)
	}

	fmt.Fprintf(w, "--- top %d languages by speakers ---\n", top)
	for i, lc := range agg.Languages {
		if i >= top {
			break
		}
		fmt.Fprintf(w, "%d.\t%s\t%.0f\n", i+1, lc.Language, lc.Speakers)
	}
	fmt.Fprintln(w)
}

func printShares(w *tabwriter.Writer, snap *domain.Snapshot, scope *string) {
	totals := domain.LanguageTotals(snap, scope)
	var denominator float64
	for _, v := range totals {
		denominator += v
	}
	shares := domain.SharesWithOtherBucket(totals, denominator, nil)

	fmt.Fprintln(w, "--- language shares ---")
	for _, s := range shares {
		fmt.Fprintf(w, "%s\t%.0f\t%.2f%%\n", s.Label, s.Value, s.Share*100)
	}
	fmt.Fprintln(w)
}

func printQuartiles(w *tabwriter.Writer, snap *domain.Snapshot) {
	counts := make([]float64, 0, len(snap.LanguageByState))
	for state := range snap.LanguageByState {
		counts = append(counts, float64(domain.LanguageDiversityCount(snap, state)))
	}
	sort.Float64s(counts)

	summary, ok := domain.Quartiles(counts)
	if !ok {
		return
	}
	fmt.Fprintln(w, "--- per-state language diversity quartiles ---")
	fmt.Fprintf(w, "min\t%.0f\n", summary.Min)
	fmt.Fprintf(w, "q1\t%.0f\n", summary.Q1)
	fmt.Fprintf(w, "median\t%.0f\n", summary.Median)
	fmt.Fprintf(w, "q3\t%.0f\n", summary.Q3)
	fmt.Fprintf(w, "max\t%.0f\n", summary.Max)
	fmt.Fprintf(w, "iqr\t%.0f\n", summary.IQR)
}

func recordsInScope(snap *domain.Snapshot, scope *string) []domain.LanguageRecord {
	if scope == nil {
		return snap.Records
	}
	return snap.LanguageByState[*scope]
}
