package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/gimiv/stayfull-research/internal/model"
	"github.com/gimiv/stayfull-research/internal/research"
	"github.com/gimiv/stayfull-research/internal/store"
)

var (
	researchName     string
	researchCity     string
	researchState    string
	researchCountry  string
	researchWebsite  string
	researchProgress bool
	researchSave     bool
)

var researchCmd = &cobra.Command{
	Use:   "research",
	Short: "Research a single hotel and print its profile",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		if err := cfg.Validate("research"); err != nil {
			return err
		}

		q := buildQuery(researchName, researchCity, researchState, researchCountry, researchWebsite)
		if err := q.Validate(); err != nil {
			return err
		}

		env, err := initResearch(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		var sinks []research.ProgressSink
		if researchProgress {
			sinks = append(sinks, progressPrinter(os.Stderr))
		}

		var (
			st    store.Store
			sink  *store.ProgressSink
			runID string
		)
		if researchSave {
			st, err = initStore(ctx)
			if err != nil {
				return err
			}
			defer st.Close() //nolint:errcheck

			run, err := st.CreateRun(ctx, q)
			if err != nil {
				return eris.Wrap(err, "create run")
			}
			runID = run.ID
			if err := st.UpdateRunStatus(ctx, runID, model.RunStatusResearch); err != nil {
				return eris.Wrap(err, "update run status")
			}
			sink = store.NewProgressSink(ctx, st, runID)
			sinks = append(sinks, sink)
		}

		outcome, err := env.Researcher.Research(ctx, q, research.NewTracker(sinks...))
		if sink != nil {
			sink.Close()
		}
		if err != nil {
			if st != nil {
				_ = st.FailRun(ctx, runID, err.Error())
			}
			return err
		}

		if st != nil {
			raw, err := json.Marshal(outcome.Profile)
			if err != nil {
				return eris.Wrap(err, "encode profile")
			}
			if err := st.CompleteRun(ctx, runID, outcome.Score.Total, raw); err != nil {
				return eris.Wrap(err, "complete run")
			}
			zap.L().Info("run saved", zap.String("run_id", runID))
		}

		formatOutcome(os.Stderr, outcome)

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(outcome.Profile)
	},
}

func init() {
	researchCmd.Flags().StringVar(&researchName, "name", "", "hotel name (required)")
	researchCmd.Flags().StringVar(&researchCity, "city", "", "hotel city (required)")
	researchCmd.Flags().StringVar(&researchState, "state", "", "state or region code")
	researchCmd.Flags().StringVar(&researchCountry, "country", "", "ISO country code (default from config)")
	researchCmd.Flags().StringVar(&researchWebsite, "website", "", "known hotel website; skips discovery")
	researchCmd.Flags().BoolVar(&researchProgress, "progress", false, "print per-source progress to stderr")
	researchCmd.Flags().BoolVar(&researchSave, "save", false, "record the run in the configured store")
	_ = researchCmd.MarkFlagRequired("name")
	_ = researchCmd.MarkFlagRequired("city")
	rootCmd.AddCommand(researchCmd)
}

// buildQuery normalizes CLI or API input into a query, falling back to the
// configured default country.
func buildQuery(name, city, state, country, website string) model.Query {
	q := model.NewQuery(name, city, state)
	switch {
	case strings.TrimSpace(country) != "":
		q.Country = strings.ToUpper(strings.TrimSpace(country))
	case cfg != nil && cfg.Research.DefaultCountry != "":
		q.Country = strings.ToUpper(cfg.Research.DefaultCountry)
	}
	if w := strings.TrimSpace(website); w != "" {
		q = q.WithWebsite(w)
	}
	return q
}

// progressPrinter writes one line per progress event.
func progressPrinter(out io.Writer) research.ProgressSink {
	return research.SinkFunc(func(p model.SourceProgress) {
		line := fmt.Sprintf("%-16s %s", p.Name, p.Status)
		if len(p.DataFound) > 0 {
			line += " (" + strings.Join(p.DataFound, ", ") + ")"
		}
		if p.ErrorMessage != "" {
			line += ": " + p.ErrorMessage
		}
		_, _ = fmt.Fprintln(out, line)
	})
}

// formatOutcome writes a per-source summary and the score breakdown to w.
func formatOutcome(out io.Writer, o *research.Outcome) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "SOURCE\tRESULT\tDATA\tDURATION")
	_, _ = fmt.Fprintln(w, "------\t------\t------\t--------")

	for _, r := range o.Results {
		result := "ok"
		if r.Failed() {
			result = "error"
		}
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
			model.SourceDisplayName(r.Source),
			result,
			strings.Join(r.Fields.Categories(), ","),
			r.Duration.Round(time.Millisecond),
		)
	}
	_, _ = fmt.Fprintln(w)
	_, _ = fmt.Fprintf(w, "Yield:\t%.2f\n", o.Score.Yield)
	_, _ = fmt.Fprintf(w, "Completeness:\t%.2f\n", o.Score.Completeness)
	_, _ = fmt.Fprintf(w, "Self-reported:\t%.2f\n", o.Score.SelfReported)
	_, _ = fmt.Fprintf(w, "Confidence:\t%.2f\n", o.Score.Total)
	_ = w.Flush()
}
