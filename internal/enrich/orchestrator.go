package enrich

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/davecgh/go-spew/spew"
	"github.com/google/uuid"

	"metadata-enricher/internal/collection"
	"metadata-enricher/internal/common"
	"metadata-enricher/internal/convert"
	"metadata-enricher/internal/diagnostic"
	"metadata-enricher/internal/errors"
	"metadata-enricher/internal/mapper"
	"metadata-enricher/internal/metrics"
	"metadata-enricher/internal/record"
	"metadata-enricher/internal/service"
)

const component = "Orchestrator"

// Orchestrator runs enrichment requests against one lookup configuration.
type Orchestrator struct {
	cfg      Config
	mapper   *mapper.Mapper
	store    MetadataStore
	fetcher  RemoteFetcher
	selector CandidateSelector
	logger   *slog.Logger
	metrics  *metrics.Metrics
	newID    func() string
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithSelector replaces the default FirstCandidate selector.
func WithSelector(s CandidateSelector) Option {
	return func(o *Orchestrator) {
		if s != nil {
			o.selector = s
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(o *Orchestrator) { o.logger = l }
}

// WithMetrics enables enrichment instrumentation.
func WithMetrics(m *metrics.Metrics) Option {
	return func(o *Orchestrator) { o.metrics = m }
}

// WithRequestIDs replaces the request id generator.
func WithRequestIDs(fn func() string) Option {
	return func(o *Orchestrator) { o.newID = fn }
}

// New validates the configuration and seals the mapper's alias table.
func New(cfg Config, m *mapper.Mapper, st MetadataStore, f RemoteFetcher, opts ...Option) (*Orchestrator, error) {
	if m == nil || m.Aliases() == nil || m.Aliases().IsEmpty() {
		return nil, errors.WrapConfiguration(errors.ErrNotConfigured, component, "New", "check alias table")
	}

	if st == nil || f == nil {
		return nil, errors.WrapConfiguration(
			fmt.Errorf("%w: store and fetcher are required", errors.ErrInvalidConfig),
			component, "New", "check collaborators")
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	m.Aliases().Seal()

	o := &Orchestrator{
		cfg:      cfg,
		mapper:   m,
		store:    st,
		fetcher:  f,
		selector: FirstCandidate{},
		logger:   slog.Default(),
		newID:    uuid.NewString,
	}

	for _, opt := range opts {
		opt(o)
	}

	return o, nil
}

// SecondaryResult is the outcome of one secondary lookup.
type SecondaryResult struct {
	Name    string
	Key     string
	URL     string
	Fields  []string
	Skipped bool
	Err     error
}

// Result describes a finished (or aborted) enrichment request.
type Result struct {
	RequestID string
	Ref       string
	// Record is the merged record, name pseudo-field included.
	Record *record.Record
	// Candidates is the number of results the primary lookup returned.
	Candidates int
	// MultipleCandidates is set when the selector had to choose.
	MultipleCandidates bool
	SelectedIndex      int
	Selector           string
	Conflicts          []Conflict
	Secondary          []SecondaryResult
	// Renamed holds the new entity name when Emit renamed it.
	Renamed     string
	Completed   Stage
	Diagnostics diagnostic.Diagnostics
}

// request holds the state of one enrichment cycle.
type request struct {
	o      *Orchestrator
	ref    string
	opts   Options
	logger *slog.Logger
	res    *Result

	local    *record.Record
	registry convert.Registry
	params   *record.Record
	response *record.Record
	// raw candidates as decoded, normalized ones, and mapped ones
	raw        []*record.Record
	normalized []*record.Record
	mapped     []*record.Record
	mapDiags   []diagnostic.Diagnostics
	merged     *record.Record
}

// Enrich runs one request for the entity ref. The returned Result is never
// nil; on abort the error is a *StageError.
func (o *Orchestrator) Enrich(ctx context.Context, ref string, opts Options) (*Result, error) {
	start := time.Now()
	id := o.newID()

	r := &request{
		o:      o,
		ref:    ref,
		opts:   opts,
		logger: o.logger.With("request_id", id, "entity", ref),
		res: &Result{
			RequestID:     id,
			Ref:           ref,
			SelectedIndex: -1,
			Selector:      o.selector.Name(),
		},
	}

	steps := []struct {
		stage Stage
		run   func(context.Context) error
	}{
		{StageReadLocal, r.readLocal},
		{StageMapOut, r.mapOut},
		{StageFetch, r.fetch},
		{StageParseResponse, r.parseResponse},
		{StageNormalize, r.normalize},
		{StageMapIn, r.mapIn},
		{StageSelectCandidate, r.selectCandidate},
		{StageMerge, r.merge},
		{StageSecondary, r.secondary},
		{StageEmit, r.emit},
	}

	r.logger.InfoContext(ctx, "enrichment started", "overwrite", opts.Overwrite, "dry_run", opts.DryRun)

	for _, step := range steps {
		if err := step.run(ctx); err != nil {
			serr := &StageError{Stage: step.stage, Completed: r.res.Completed, Err: err}

			r.logger.ErrorContext(ctx, "enrichment failed",
				"stage", step.stage.String(),
				"completed", r.res.Completed.String(),
				"kind", serr.Kind().String(),
				"error", err)
			r.finish(ctx, false, start)
			o.metrics.RecordStageFailure(step.stage.String(), serr.Kind().String())

			return r.res, serr
		}

		r.res.Completed = step.stage
		r.logger.DebugContext(ctx, "stage completed", "stage", step.stage.String())
	}

	r.finish(ctx, true, start)
	r.logger.InfoContext(ctx, "enrichment finished",
		"candidates", r.res.Candidates,
		"selected", r.res.SelectedIndex,
		"conflicts", len(r.res.Conflicts),
		"duration", time.Since(start))

	return r.res, nil
}

func (r *request) finish(ctx context.Context, success bool, start time.Time) {
	r.res.Diagnostics.Log(ctx, r.logger)

	for _, d := range r.res.Diagnostics.All() {
		r.o.metrics.RecordDiagnostic(d.Code)
	}

	r.o.metrics.RecordMerge(len(r.res.Conflicts), r.res.MultipleCandidates)
	r.o.metrics.RecordEnrichment(success, time.Since(start))
}

func (r *request) dump(label string, rec *record.Record) {
	if !r.opts.Debug {
		return
	}

	r.logger.Debug("record dump", "record", label, "dump", spew.Sdump(rec.ToAny()))
}

// classify gives unclassified collaborator errors the kind of the stage.
func classify(err error, wrap func(error, string, string, string) error, method, action string) error {
	if errors.KindOf(err) != errors.KindUnknown {
		return err
	}

	return wrap(err, component, method, action)
}

func (r *request) readLocal(ctx context.Context) error {
	local, err := r.o.store.ReadRecord(ctx, r.ref)
	if err != nil {
		return classify(err, errors.WrapPersist, "ReadLocal", "read record")
	}

	registry, err := r.o.store.TypeRegistryFor(ctx, r.ref)
	if err != nil {
		return classify(err, errors.WrapPersist, "ReadLocal", "read type registry")
	}

	r.local = local
	r.registry = registry
	r.dump("local", local)

	return nil
}

func (r *request) mapOut(context.Context) error {
	params, diags, err := r.o.mapper.ToServiceParameters(r.local)
	r.res.Diagnostics.Merge(diags)

	if err != nil {
		return err
	}

	if params.IsEmpty() {
		return errors.WrapMapping(errors.ErrNoParameters, component, "MapOut", "map local record")
	}

	r.params = params
	r.dump("parameters", params)

	return nil
}

func (r *request) fetch(ctx context.Context) error {
	call, err := service.NewCallSpec(r.o.cfg.SearchURL, r.o.cfg.Bindings)
	if err != nil {
		return err
	}

	query, diags := service.EncodeQuery(r.params, r.o.mapper.Delimiter())
	r.res.Diagnostics.Merge(diags)

	url := service.WithQuery(call.URL(), query)

	response, err := r.o.fetcher.FetchJSON(ctx, url)
	if err != nil {
		return classify(err, errors.WrapFetch, "Fetch", "GET "+url)
	}

	r.response = response
	r.dump("response", response)

	return nil
}

func (r *request) parseResponse(context.Context) error {
	field := r.o.cfg.CandidatesField
	if field == "" {
		r.raw = []*record.Record{r.response}
		r.res.Candidates = 1

		return nil
	}

	values := r.response.Values(field)
	if len(values) == 0 {
		return errors.WrapFetch(fmt.Errorf("%w: field %q absent or empty", errors.ErrNoCandidates, field),
			component, "ParseResponse", "extract candidates")
	}

	for _, v := range values {
		nested, ok := v.(record.Nested)
		if !ok || nested.Record == nil {
			return errors.WrapParse(
				fmt.Errorf("%w: candidate field %q holds %s values", errors.ErrMalformedBody, field, v.Kind()),
				component, "ParseResponse", "extract candidates")
		}

		if !collection.IsIndexed(nested.Record) {
			r.raw = append(r.raw, nested.Record)
			continue
		}

		elems, err := collection.Flatten(nested.Record)
		if err != nil {
			return errors.WrapParse(fmt.Errorf("%w: %w", errors.ErrMalformedBody, err),
				component, "ParseResponse", "flatten candidates")
		}

		for _, e := range elems {
			if n, ok := e.(record.Nested); ok && n.Record != nil {
				r.raw = append(r.raw, n.Record)
			}
		}
	}

	if len(r.raw) == 0 {
		return errors.WrapFetch(fmt.Errorf("%w: field %q holds no records", errors.ErrNoCandidates, field),
			component, "ParseResponse", "extract candidates")
	}

	r.res.Candidates = len(r.raw)

	return nil
}

func (r *request) normalize(context.Context) error {
	r.normalized = make([]*record.Record, len(r.raw))

	for i, raw := range r.raw {
		norm, err := collection.Normalize(raw)
		for _, fe := range collection.FieldErrors(err) {
			r.res.Diagnostics.AddWarning(diagnostic.CodeFlattenFailed, fe.Err.Error(), "normalize", fe.Field)
		}

		if err != nil && len(collection.FieldErrors(err)) == 0 {
			return err
		}

		r.normalized[i] = norm
	}

	return nil
}

func (r *request) mapIn(context.Context) error {
	r.mapped = make([]*record.Record, len(r.normalized))
	r.mapDiags = make([]diagnostic.Diagnostics, len(r.normalized))

	for i, cand := range r.normalized {
		mapped, diags, err := r.o.mapper.FromServiceParameters(cand, r.registry)
		if err != nil {
			return err
		}

		r.mapped[i] = mapped
		r.mapDiags[i] = diags
	}

	return nil
}

func (r *request) selectCandidate(context.Context) error {
	idx := 0

	if len(r.mapped) > 1 {
		idx = r.o.selector.Select(r.local, r.mapped)
		if idx < 0 || idx >= len(r.mapped) {
			return errors.WrapMapping(
				fmt.Errorf("%w: selector %s returned index %d of %d", errors.ErrBadValue,
					r.o.selector.Name(), idx, len(r.mapped)),
				component, "SelectCandidate", "select candidate")
		}

		r.res.MultipleCandidates = true
		r.res.Diagnostics.AddWarning(diagnostic.CodeMultipleCandidates,
			fmt.Sprintf("%d candidates, %s selector chose #%d", len(r.mapped), r.o.selector.Name(), idx),
			"select", "")
	}

	r.res.SelectedIndex = idx
	r.res.Diagnostics.Merge(r.mapDiags[idx])
	r.dump("selected", r.mapped[idx])

	return nil
}

func (r *request) merge(context.Context) error {
	merged, conflicts := Merge(r.local, r.mapped[r.res.SelectedIndex], r.opts.Overwrite)
	r.addConflicts(conflicts)
	r.merged = merged
	r.substituteTitle()
	r.dump("merged", merged)

	return nil
}

func (r *request) addConflicts(conflicts []Conflict) {
	for _, c := range conflicts {
		r.res.Diagnostics.AddInfo(diagnostic.CodeMergeConflict,
			fmt.Sprintf("kept local value, remote has %s", formatValues(c.Remote)), "merge", c.Field)
	}

	r.res.Conflicts = append(r.res.Conflicts, conflicts...)
}

// substituteTitle fills a blank or placeholder name from the title field.
func (r *request) substituteTitle() {
	nameField, titleField := r.o.cfg.NameField, r.o.cfg.TitleField
	if titleField == "" {
		return
	}

	name := firstString(r.merged, nameField)
	stem := strings.TrimSuffix(name, filepath.Ext(name))

	if !common.IsBlank(name) &&
		!common.ContainsFold(r.o.cfg.PlaceholderTitles, name) &&
		!common.ContainsFold(r.o.cfg.PlaceholderTitles, stem) {
		return
	}

	title := firstString(r.merged, titleField)
	if title == "" {
		return
	}

	r.merged.Set(nameField, record.String(title))
	r.res.Diagnostics.AddInfo(diagnostic.CodeTitleSubstituted,
		fmt.Sprintf("name %q replaced by title %q", name, title), "merge", nameField)
}

func (r *request) emit(ctx context.Context) error {
	r.res.Record = r.merged

	if r.opts.DryRun {
		r.logger.InfoContext(ctx, "dry run, nothing written")
		return nil
	}

	nameField := r.o.cfg.NameField

	out := r.merged.Clone()
	out.Delete(nameField)

	if err := r.o.store.WriteRecord(ctx, r.ref, out, r.opts.Overwrite); err != nil {
		return classify(err, errors.WrapPersist, "Emit", "write record")
	}

	// rename only once the attributes are stored
	newName := firstString(r.merged, nameField)
	if newName == "" || newName == firstString(r.local, nameField) {
		return nil
	}

	if err := r.o.store.Rename(ctx, r.ref, newName); err != nil {
		r.logger.WarnContext(ctx, "rename failed, keeping current name", "name", newName, "error", err)
		r.res.Diagnostics.AddWarning(diagnostic.CodeRenameFailed, err.Error(), "emit", nameField)

		return nil
	}

	r.res.Renamed = newName

	return nil
}

func formatValues(values []record.Value) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = record.Format(v)
	}

	return strings.Join(parts, ", ")
}
