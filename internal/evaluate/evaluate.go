package evaluate

import (
	"context"
	"fmt"
	"math/rand/v2"
	"sync/atomic"

	"github.com/AmitMY/chimera/internal/util"
	"github.com/AmitMY/chimera/pkg/ai"
	"github.com/AmitMY/chimera/pkg/chimera"
	"github.com/AmitMY/chimera/pkg/common"
	"github.com/AmitMY/chimera/pkg/highlight"
	"github.com/AmitMY/chimera/pkg/logger"
	"github.com/AmitMY/chimera/pkg/plan"

	"golang.org/x/sync/errgroup"
)

// Options controls one batch evaluation.
//
// Count is the display budget used when Sample is set. Retries is the number
// of attempts per remote call. Seed makes the shuffled baselines repeatable;
// 0 picks a random seed.
type Options struct {
	Mode          common.PlanMode
	Sample        bool
	Count         int
	Translate     ai.TranslateOptions
	Parallel      int
	Retries       int
	ShuffleRounds int
	Seed          uint64
}

// GraphReport is the outcome for one graph. Error is set instead of the
// scores when any step failed.
type GraphReport struct {
	Index        int       `json:"index" yaml:"index"`
	Size         int       `json:"size" yaml:"size"`
	Plans        int       `json:"plans" yaml:"plans"`
	Displayed    int       `json:"displayed" yaml:"displayed"`
	PlanCoverage float64   `json:"plan_coverage" yaml:"plan_coverage"`
	Relevance    []bool    `json:"relevance,omitempty" yaml:"relevance,omitempty"`
	Precision    float64   `json:"precision" yaml:"precision"`
	Shuffled     []float64 `json:"shuffled,omitempty" yaml:"shuffled,omitempty"`
	Error        string    `json:"error,omitempty" yaml:"error,omitempty"`
}

// Report aggregates the graph reports. Means are taken over the graphs that
// were evaluated without error.
type Report struct {
	Mode          common.PlanMode `json:"mode" yaml:"mode"`
	Graphs        []GraphReport   `json:"graphs" yaml:"graphs"`
	Evaluated     int             `json:"evaluated" yaml:"evaluated"`
	Failed        int             `json:"failed" yaml:"failed"`
	MeanPrecision float64         `json:"mean_precision" yaml:"mean_precision"`
	MeanShuffled  float64         `json:"mean_shuffled" yaml:"mean_shuffled"`
}

type Evaluator struct {
	planner    chimera.Planner
	translator ai.Translator
	opts       Options
}

func NewEvaluator(planner chimera.Planner, translator ai.Translator, opts Options) *Evaluator {
	if opts.Mode == "" {
		opts.Mode = common.PlanModeFull
	}
	if opts.Parallel <= 0 {
		opts.Parallel = 4
	}
	if opts.Seed == 0 {
		opts.Seed = rand.Uint64()
	}
	return &Evaluator{planner: planner, translator: translator, opts: opts}
}

// Run evaluates graphs[i] for every i in indices, in parallel. It fails only
// when the options are unusable or ctx ends; per-graph failures are part of
// the report.
func (e *Evaluator) Run(ctx context.Context, graphs []common.Graph, indices []int) (Report, error) {
	if e.opts.Sample && e.opts.Count < 1 {
		return Report{}, fmt.Errorf("%w: count %d", plan.ErrInvalidTarget, e.opts.Count)
	}
	for _, i := range indices {
		if i < 0 || i >= len(graphs) {
			return Report{}, fmt.Errorf("graph index %d out of range [0, %d)", i, len(graphs))
		}
	}

	reports := make([]GraphReport, len(indices))
	var done atomic.Int32

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(e.opts.Parallel)
	for slot, index := range indices {
		g.Go(func() error {
			reports[slot] = e.evaluateGraph(ctx, index, graphs[index])
			n := done.Add(1)
			logger.Debug("Evaluated graph", "index", index, "done", n, "of", len(indices), "err", reports[slot].Error)
			return ctx.Err()
		})
	}
	if err := g.Wait(); err != nil {
		return Report{}, err
	}

	return summarize(e.opts.Mode, reports), nil
}

func (e *Evaluator) evaluateGraph(ctx context.Context, index int, g common.Graph) GraphReport {
	report := GraphReport{Index: index, Size: len(g)}
	fail := func(step string, err error) GraphReport {
		logger.Warn("Graph evaluation failed", "index", index, "step", step, "err", err)
		report.Error = fmt.Sprintf("%s: %v", step, err)
		return report
	}

	colors := highlight.ColorsForGraph(g)

	concat, plans, err := util.Retry2WithContext(ctx, e.opts.Retries, func(ctx context.Context) (common.ConcatMap, common.LinearizationSet, error) {
		return e.planner.Plans(ctx, g, e.opts.Mode)
	})
	if err != nil {
		return fail("plans", err)
	}
	report.Plans = len(plans)

	ranked := plan.AttachRanks(plans)
	if e.opts.Sample {
		if ranked, err = plan.Sample(ranked, e.opts.Count); err != nil {
			return fail("sample", err)
		}
	}
	report.Displayed = len(ranked)

	coverage, err := highlight.Coverage(ranked.Texts(), colors.Entities(), concat)
	if err != nil {
		return fail("coverage", err)
	}
	report.PlanCoverage = fraction(coverage)

	if len(ranked) == 0 {
		return report
	}

	texts, err := util.RetryWithContext(ctx, e.opts.Retries, func(ctx context.Context) ([]string, error) {
		return e.translator.Translate(ctx, ranked.Texts(), e.opts.Translate)
	})
	if err != nil {
		return fail("translate", err)
	}

	markup, err := highlight.Render(texts, colors, concat, highlight.StyleBorder)
	if err != nil {
		return fail("render", err)
	}

	r := rand.New(rand.NewPCG(e.opts.Seed, uint64(index)))
	report.Relevance = highlight.Relevance(markup)
	report.Precision = highlight.AveragePrecision(report.Relevance)
	report.Shuffled = highlight.ShufflePrecision(report.Relevance, e.opts.ShuffleRounds, r)
	return report
}

func summarize(mode common.PlanMode, reports []GraphReport) Report {
	out := Report{Mode: mode, Graphs: reports}
	var precision, shuffled float64
	shuffledCount := 0
	for _, r := range reports {
		if r.Error != "" {
			out.Failed++
			continue
		}
		out.Evaluated++
		precision += r.Precision
		for _, s := range r.Shuffled {
			shuffled += s
			shuffledCount++
		}
	}
	if out.Evaluated > 0 {
		out.MeanPrecision = precision / float64(out.Evaluated)
	}
	if shuffledCount > 0 {
		out.MeanShuffled = shuffled / float64(shuffledCount)
	}
	return out
}

func fraction(flags []bool) float64 {
	if len(flags) == 0 {
		return 0
	}
	n := 0
	for _, f := range flags {
		if f {
			n++
		}
	}
	return float64(n) / float64(len(flags))
}
