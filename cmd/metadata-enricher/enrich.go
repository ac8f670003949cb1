package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"metadata-enricher/internal/enrich"
	"metadata-enricher/internal/errors"
)

func newEnrichCmd(g *globalFlags) *cobra.Command {
	var (
		opts   enrich.Options
		jobs   int
		asJSON bool
	)

	cmd := &cobra.Command{
		Use:   "enrich <file>...",
		Short: "Enrich the given files once",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer cancel()

			a, err := newApp(ctx, g, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer a.Close()

			opts.Debug = g.Debug

			return runEnrich(ctx, a, args, opts, jobs, asJSON, cmd.OutOrStdout())
		},
	}

	cmd.Flags().BoolVarP(&opts.Overwrite, "overwrite", "o", false, "Replace existing attributes with fetched values")
	cmd.Flags().BoolVarP(&opts.DryRun, "dry-run", "n", false, "Look up and merge, but write nothing")
	cmd.Flags().IntVarP(&jobs, "jobs", "j", getEnvInt("ENRICHER_JOBS", enrich.DefaultConcurrency),
		"Files enriched at once (env: ENRICHER_JOBS)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print machine-readable results")

	return cmd
}

func runEnrich(
	ctx context.Context,
	a *app,
	paths []string,
	opts enrich.Options,
	jobs int,
	asJSON bool,
	out io.Writer,
) error {
	var (
		refs     []string
		outcomes []enrich.Outcome
	)

	for _, p := range paths {
		ref, err := a.register(ctx, p)
		if err != nil {
			outcomes = append(outcomes, enrich.Outcome{Ref: p, Err: err})
			continue
		}

		refs = append(refs, ref)
	}

	outcomes = append(outcomes, enrich.NewRunner(a.orchestrator, jobs).EnrichAll(ctx, refs, opts)...)

	if err := printOutcomes(out, outcomes, asJSON); err != nil {
		return err
	}

	if failed := enrich.Failed(outcomes); len(failed) > 0 {
		return fmt.Errorf("%d of %d files failed", len(failed), len(outcomes))
	}

	return nil
}

// outcomeSummary is the JSON form of one outcome.
type outcomeSummary struct {
	Ref        string         `json:"ref"`
	RequestID  string         `json:"request_id,omitempty"`
	Candidates int            `json:"candidates"`
	Selected   int            `json:"selected"`
	Conflicts  []string       `json:"conflicts,omitempty"`
	Renamed    string         `json:"renamed,omitempty"`
	Record     map[string]any `json:"record,omitempty"`
	Completed  string         `json:"completed,omitempty"`
	Error      string         `json:"error,omitempty"`
	ErrorKind  string         `json:"error_kind,omitempty"`
	Warnings   []string       `json:"warnings,omitempty"`
}

func summarize(o enrich.Outcome) outcomeSummary {
	s := outcomeSummary{Ref: o.Ref, Selected: -1}

	if r := o.Result; r != nil {
		s.RequestID = r.RequestID
		s.Candidates = r.Candidates
		s.Selected = r.SelectedIndex
		s.Renamed = r.Renamed
		s.Completed = r.Completed.String()

		for _, c := range r.Conflicts {
			s.Conflicts = append(s.Conflicts, c.Field)
		}

		for _, w := range r.Diagnostics.Warnings {
			s.Warnings = append(s.Warnings, w.String())
		}

		if r.Record != nil {
			s.Record = r.Record.ToAny()
		}
	}

	if o.Err != nil {
		s.Error = o.Err.Error()
		s.ErrorKind = errors.KindOf(o.Err).String()
	}

	return s
}

func printOutcomes(w io.Writer, outcomes []enrich.Outcome, asJSON bool) error {
	if asJSON {
		summaries := make([]outcomeSummary, len(outcomes))
		for i, o := range outcomes {
			summaries[i] = summarize(o)
		}

		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")

		return enc.Encode(summaries)
	}

	for _, o := range outcomes {
		printOutcome(w, o)
	}

	return nil
}

func printOutcome(w io.Writer, o enrich.Outcome) {
	if o.Err != nil {
		_, _ = fmt.Fprintf(w, "FAIL %s: %v\n", o.Ref, o.Err)
		return
	}

	r := o.Result
	_, _ = fmt.Fprintf(w, "ok   %s (%d candidate(s)", o.Ref, r.Candidates)

	if r.MultipleCandidates {
		_, _ = fmt.Fprintf(w, ", %s chose #%d", r.Selector, r.SelectedIndex)
	}

	if len(r.Conflicts) > 0 {
		_, _ = fmt.Fprintf(w, ", %d kept local", len(r.Conflicts))
	}

	if r.Renamed != "" {
		_, _ = fmt.Fprintf(w, ", renamed to %q", r.Renamed)
	}

	_, _ = fmt.Fprintln(w, ")")

	for _, d := range r.Diagnostics.Warnings {
		_, _ = fmt.Fprintf(w, "     warning: %s\n", d.String())
	}
}
