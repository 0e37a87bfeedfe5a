// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package annotate aggregates gene annotations from several providers into
// one record per identifier. Provider failures degrade individual fields;
// they never abort the aggregation.
package annotate

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/pdiddy/gene-annotator/internal/fallback"
	"github.com/pdiddy/gene-annotator/internal/metrics"
	"github.com/pdiddy/gene-annotator/internal/normalize"
	"github.com/pdiddy/gene-annotator/internal/provider"
	"github.com/pdiddy/gene-annotator/pkg/types"
)

const defaultConcurrency = 8

// Configuration errors. They are returned before any network activity.
var (
	ErrNoProviders       = errors.New("no providers configured")
	ErrUnknownProvider   = errors.New("unknown provider")
	ErrDuplicateProvider = errors.New("duplicate provider")
	ErrInvalidMode       = errors.New("invalid mode")
)

// Config configures an Annotator.
type Config struct {
	Providers []provider.Provider

	// Fallback is the static table; nil means no fallback data.
	Fallback *fallback.Table

	// Priority orders providers for merge precedence. Unlisted providers
	// follow in the order given in Providers.
	Priority []string

	// Concurrency bounds in-flight provider calls (default 8).
	Concurrency int

	// Logger receives diagnostics; nil discards them.
	Logger *slog.Logger

	// Metrics may be nil.
	Metrics *metrics.Metrics
}

// Options tune one Annotate call.
type Options struct {
	// Providers restricts the call to these provider names. Empty means all.
	Providers []string

	// Mode selects batch or per-identifier requests (default batch).
	Mode types.Mode

	// Deadline bounds the whole call. Zero means only ctx applies.
	Deadline time.Duration

	// Concurrency overrides the annotator default when positive.
	Concurrency int
}

// Annotator runs aggregation calls. It is safe for concurrent use.
type Annotator struct {
	providers   []provider.Provider
	fallback    *fallback.Table
	concurrency int
	logger      *slog.Logger
	metrics     *metrics.Metrics
}

// New validates cfg and returns an Annotator with providers sorted by
// merge priority.
func New(cfg Config) (*Annotator, error) {
	if len(cfg.Providers) == 0 {
		return nil, ErrNoProviders
	}
	seen := make(map[string]bool, len(cfg.Providers))
	for _, p := range cfg.Providers {
		if seen[p.Name()] {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateProvider, p.Name())
		}
		seen[p.Name()] = true
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	concurrency := cfg.Concurrency
	if concurrency <= 0 {
		concurrency = defaultConcurrency
	}

	return &Annotator{
		providers:   byPriority(cfg.Providers, cfg.Priority),
		fallback:    cfg.Fallback,
		concurrency: concurrency,
		logger:      logger,
		metrics:     cfg.Metrics,
	}, nil
}

// byPriority returns providers ordered by the priority list, unlisted ones
// last in their original order.
func byPriority(ps []provider.Provider, priority []string) []provider.Provider {
	out := make([]provider.Provider, 0, len(ps))
	used := make(map[string]bool, len(ps))
	for _, name := range priority {
		for _, p := range ps {
			if p.Name() == name && !used[name] {
				out = append(out, p)
				used[name] = true
			}
		}
	}
	for _, p := range ps {
		if !used[p.Name()] {
			out = append(out, p)
		}
	}
	return out
}

// Providers returns the provider names in merge priority order.
func (a *Annotator) Providers() []string {
	names := make([]string, len(a.providers))
	for i, p := range a.providers {
		names[i] = p.Name()
	}
	return names
}

// Annotate normalizes identifiers, queries the selected providers
// concurrently and merges one record per unique identifier, in input
// order. Provider failures and deadline expiry yield partial records; the
// only errors returned are configuration errors, detected before any
// provider is called.
func (a *Annotator) Annotate(ctx context.Context, identifiers []string, opts Options) (types.ResultSet, error) {
	start := time.Now()

	selected, err := a.selectProviders(opts.Providers)
	if err != nil {
		return types.ResultSet{}, err
	}
	mode := opts.Mode
	if mode == "" {
		mode = types.ModeBatch
	}
	if mode != types.ModeBatch && mode != types.ModeSingle {
		return types.ResultSet{}, fmt.Errorf("%w: %q (want %q or %q)", ErrInvalidMode, mode, types.ModeBatch, types.ModeSingle)
	}
	concurrency := a.concurrency
	if opts.Concurrency > 0 {
		concurrency = opts.Concurrency
	}

	ids := normalize.Normalize(identifiers)
	names := make([]string, len(selected))
	for i, p := range selected {
		names[i] = p.Name()
	}

	if opts.Deadline > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.Deadline)
		defer cancel()
	}

	a.logger.DebugContext(ctx, "annotating",
		"identifiers", len(ids),
		"providers", names,
		"mode", string(mode),
		"concurrency", concurrency,
	)

	grid := a.fetchAll(ctx, ids, selected, mode, concurrency)

	merger := Merger{Fallback: a.fallback, Owners: owners(selected)}
	records := make([]types.AnnotationRecord, len(ids))
	for i, id := range ids {
		records[i] = merger.Merge(id, grid[i])
	}

	a.metrics.ObserveAnnotate(time.Since(start), len(records))
	return types.ResultSet{Providers: names, Records: records}, nil
}

func (a *Annotator) selectProviders(names []string) ([]provider.Provider, error) {
	if len(names) == 0 {
		return a.providers, nil
	}
	want := make(map[string]bool, len(names))
	for _, n := range names {
		want[n] = true
	}
	var out []provider.Provider
	for _, p := range a.providers {
		if want[p.Name()] {
			out = append(out, p)
			delete(want, p.Name())
		}
	}
	for _, n := range names {
		if want[n] {
			return nil, fmt.Errorf("%w: %q", ErrUnknownProvider, n)
		}
	}
	return out, nil
}

func owners(ps []provider.Provider) map[string][]string {
	out := make(map[string][]string)
	for _, p := range ps {
		for _, f := range p.Fields() {
			out[f] = append(out[f], p.Name())
		}
	}
	return out
}

// task is one Fetch call: a provider and the identifier indexes it covers.
type task struct {
	prov int
	idx  []int
}

type taskResult struct {
	task    task
	results []types.ProviderResult
}

// plan splits identifier indexes into Fetch calls for p.
func plan(n int, prov int, p provider.Provider, mode types.Mode) []task {
	if n == 0 {
		return nil
	}
	size := p.BatchSize()
	if mode == types.ModeSingle && size != 0 {
		size = 1
	}
	if size <= 0 || size > n {
		size = n
	}
	var tasks []task
	for startIdx := 0; startIdx < n; startIdx += size {
		end := min(startIdx+size, n)
		idx := make([]int, 0, end-startIdx)
		for i := startIdx; i < end; i++ {
			idx = append(idx, i)
		}
		tasks = append(tasks, task{prov: prov, idx: idx})
	}
	return tasks
}

// fetchAll runs every task under the concurrency limit and returns
// grid[identifier][provider]. Cells still empty when ctx ends are filled
// with timeout errors, so late providers never block the result.
func (a *Annotator) fetchAll(ctx context.Context, ids []types.Identifier, ps []provider.Provider, mode types.Mode, concurrency int) [][]types.ProviderResult {
	var tasks []task
	for pi, p := range ps {
		tasks = append(tasks, plan(len(ids), pi, p, mode)...)
	}

	grid := make([][]types.ProviderResult, len(ids))
	for i := range grid {
		grid[i] = make([]types.ProviderResult, len(ps))
	}

	done := make(chan taskResult, len(tasks))
	go func() {
		var g errgroup.Group
		g.SetLimit(concurrency)
		for _, t := range tasks {
			if ctx.Err() != nil {
				break
			}
			g.Go(func() error {
				p := ps[t.prov]
				batch := make([]types.Identifier, len(t.idx))
				for i, ix := range t.idx {
					batch[i] = ids[ix]
				}
				began := time.Now()
				res := p.Fetch(ctx, batch)
				a.metrics.ObserveFetch(p.Name(), time.Since(began))
				done <- taskResult{task: t, results: res}
				return nil
			})
		}
		g.Wait()
		close(done)
	}()

collect:
	for {
		select {
		case tr, ok := <-done:
			if !ok {
				break collect
			}
			a.place(ctx, grid, ids, ps[tr.task.prov], tr)
		case <-ctx.Done():
			drain(done, func(tr taskResult) { a.place(ctx, grid, ids, ps[tr.task.prov], tr) })
			break collect
		}
	}

	for i := range grid {
		for pi, p := range ps {
			if grid[i][pi].Provider != "" {
				continue
			}
			grid[i][pi] = abandoned(p.Name(), ids[i].Symbol, ctx.Err())
			a.metrics.IncrementResult(p.Name(), string(types.StatusError))
		}
	}
	return grid
}

// place stores a task's results, matching them to requested identifiers by
// normalized symbol. Results for symbols that were not requested are dropped.
func (a *Annotator) place(ctx context.Context, grid [][]types.ProviderResult, ids []types.Identifier, p provider.Provider, tr taskResult) {
	bySymbol := make(map[string]types.ProviderResult, len(tr.results))
	for _, r := range tr.results {
		key := normalize.Key(r.Identifier)
		if _, dup := bySymbol[key]; dup {
			continue
		}
		bySymbol[key] = r
	}

	var failures int
	for _, ix := range tr.task.idx {
		sym := ids[ix].Symbol
		r, ok := bySymbol[sym]
		if !ok {
			r = provider.Failed(p.Name(), sym, fmt.Errorf("%s returned no result for %s: %w", p.Name(), sym,
				&provider.Error{Category: provider.CategoryMalformed, Provider: p.Name(), Message: "missing result"}))
		}
		delete(bySymbol, sym)
		r.Provider = p.Name()
		r.Identifier = sym
		if r.Status.Code == types.StatusError {
			failures++
		}
		grid[ix][tr.task.prov] = r
		a.metrics.IncrementResult(p.Name(), string(r.Status.Code))
	}

	if len(bySymbol) > 0 {
		a.logger.WarnContext(ctx, "provider returned unrequested identifiers",
			"provider", p.Name(), "count", len(bySymbol))
	}
	if failures > 0 {
		a.logger.WarnContext(ctx, "provider fetch failed",
			"provider", p.Name(), "identifiers", failures, "of", len(tr.task.idx))
	}
}

// drain consumes results that are already buffered without waiting for more.
func drain(done <-chan taskResult, fn func(taskResult)) {
	for {
		select {
		case tr, ok := <-done:
			if !ok {
				return
			}
			fn(tr)
		default:
			return
		}
	}
}

func abandoned(name, symbol string, ctxErr error) types.ProviderResult {
	reason := "provider did not respond before the deadline"
	if ctxErr != nil {
		reason = fmt.Sprintf("%s: %v", reason, ctxErr)
	}
	return types.ProviderResult{
		Identifier: symbol,
		Provider:   name,
		FetchedAt:  time.Now(),
		Status: types.Status{
			Code:     types.StatusError,
			Category: string(provider.CategoryTimeout),
			Reason:   reason,
		},
	}
}
