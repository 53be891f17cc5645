// Package pipeline composes collation, analysis, persistence, propagation
// and density estimation into the post-processing of one campaign.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/vecma/uqpost/internal/analysis"
	"github.com/vecma/uqpost/internal/campaign"
	"github.com/vecma/uqpost/internal/collate"
	"github.com/vecma/uqpost/internal/fetch"
	"github.com/vecma/uqpost/internal/models"
	"github.com/vecma/uqpost/internal/propagation"
	"github.com/vecma/uqpost/internal/resultstore"
	"github.com/vecma/uqpost/internal/statistics"
	"github.com/vecma/uqpost/internal/surrogate"
)

// Runner runs the post-processing stages for campaigns.
type Runner struct {
	fetcher fetch.Fetcher
	machine string
	store   *resultstore.Store

	densityOpts   statistics.DensityOptions
	densityPoints int

	progressMu sync.Mutex
	listeners  []ProgressListener
}

// ProgressListener receives progress updates
type ProgressListener func(event ProgressEvent)

// EventType represents the type of progress event
type EventType string

// EventType constants
const (
	EventStageStart    EventType = "stage_start"
	EventStageComplete EventType = "stage_complete"
	EventStageSkipped  EventType = "stage_skipped"
)

// ProgressEvent represents a progress update
type ProgressEvent struct {
	EventType  EventType
	Stage      Stage
	CampaignID string
	DurationMs int64
	Details    map[string]any
}

// RunnerOption configures a Runner.
type RunnerOption func(*Runner)

// WithFetcher fetches run outputs from machine before collation.
func WithFetcher(f fetch.Fetcher, machine string) RunnerOption {
	return func(r *Runner) {
		r.fetcher = f
		r.machine = machine
	}
}

// WithStore persists every analysis result to s.
func WithStore(s *resultstore.Store) RunnerOption {
	return func(r *Runner) {
		r.store = s
	}
}

// WithDensity sets the kernel density estimate settings.
func WithDensity(opts statistics.DensityOptions, points int) RunnerOption {
	return func(r *Runner) {
		r.densityOpts = opts
		r.densityPoints = points
	}
}

// NewRunner creates a new pipeline runner
func NewRunner(opts ...RunnerOption) *Runner {
	r := &Runner{
		densityPoints: statistics.DefaultDensityPoints,
		listeners:     []ProgressListener{},
	}
	for _, o := range opts {
		o(r)
	}
	return r
}

// OnProgress registers a progress listener
func (r *Runner) OnProgress(listener ProgressListener) {
	r.progressMu.Lock()
	defer r.progressMu.Unlock()
	r.listeners = append(r.listeners, listener)
}

func (r *Runner) notifyProgress(event ProgressEvent) {
	r.progressMu.Lock()
	listeners := make([]ProgressListener, len(r.listeners))
	copy(listeners, r.listeners)
	r.progressMu.Unlock()

	for _, listener := range listeners {
		listener(event)
	}
}

// run executes fn as stage, reporting progress and wrapping its error.
func (r *Runner) run(stage Stage, campaignID string, fn func() (map[string]any, error)) error {
	r.notifyProgress(ProgressEvent{EventType: EventStageStart, Stage: stage, CampaignID: campaignID})
	start := time.Now()

	details, err := fn()
	if err != nil {
		slog.Debug("stage failed", "stage", stage, "campaign", campaignID, "error", err)
		return stageErr(stage, err)
	}

	elapsed := time.Since(start)
	slog.Info("stage complete", "stage", stage, "campaign", campaignID, "duration", elapsed)
	r.notifyProgress(ProgressEvent{
		EventType:  EventStageComplete,
		Stage:      stage,
		CampaignID: campaignID,
		DurationMs: elapsed.Milliseconds(),
		Details:    details,
	})
	return nil
}

// LoadCampaign reads a campaign descriptor (file or directory).
func (r *Runner) LoadCampaign(path string) (*models.Campaign, error) {
	var c *models.Campaign
	err := r.run(StageLoad, "", func() (map[string]any, error) {
		var err error
		c, err = campaign.Load(path)
		if err != nil {
			return nil, err
		}
		return map[string]any{"runs": len(c.Scheme.Nodes), "parameters": c.Scheme.Dim()}, nil
	})
	if err != nil {
		return nil, err
	}
	return c, nil
}

// AnalysisOutcome holds everything Analyze produced.
type AnalysisOutcome struct {
	Campaign *models.Campaign
	Table    *models.CollatedTable
	Result   *models.AnalysisResult
	Model    *surrogate.Model
}

// Fetch retrieves the campaign's run outputs when a fetcher is configured.
func (r *Runner) Fetch(ctx context.Context, c *models.Campaign) error {
	if r.fetcher == nil || r.machine == "" || r.machine == fetch.LocalMachine {
		r.notifyProgress(ProgressEvent{EventType: EventStageSkipped, Stage: StageFetch, CampaignID: c.ID})
		return nil
	}
	return r.run(StageFetch, c.ID, func() (map[string]any, error) {
		return map[string]any{"machine": r.machine}, r.fetcher.Fetch(ctx, c.ID, r.machine, c.RunsDir)
	})
}

// Analyze fetches, collates and analyzes every output column of c, then
// saves the result when a store is configured.
func (r *Runner) Analyze(ctx context.Context, c *models.Campaign) (*AnalysisOutcome, error) {
	if err := r.Fetch(ctx, c); err != nil {
		return nil, err
	}

	out := &AnalysisOutcome{Campaign: c}

	err := r.run(StageCollation, c.ID, func() (map[string]any, error) {
		var err error
		out.Table, err = collate.Collate(c)
		if err != nil {
			return nil, err
		}
		return map[string]any{"runs": out.Table.Len()}, nil
	})
	if err != nil {
		return nil, err
	}

	err = r.run(StageAnalysis, c.ID, func() (map[string]any, error) {
		var err error
		out.Result, out.Model, err = analysis.Analyze(out.Table, c.Scheme, c.OutputColumns)
		if err != nil {
			return nil, err
		}
		out.Result.CampaignID = c.ID
		return map[string]any{"qois": len(out.Result.QoIs), "samples": out.Result.NumSamples}, nil
	})
	if err != nil {
		return nil, err
	}

	if r.store != nil {
		err = r.run(StagePersistence, c.ID, func() (map[string]any, error) {
			return map[string]any{"dir": r.store.Dir()}, r.store.Save(c.ID, out.Result)
		})
		if err != nil {
			return nil, err
		}
	}
	return out, nil
}

// PropagationOutcome holds the Monte Carlo distribution of one QoI and its
// density estimate.
type PropagationOutcome struct {
	Analysis     *AnalysisOutcome
	Distribution *models.EmpiricalDistribution
	Density      *statistics.Density
}

// Propagate analyzes c and pushes n samples of its input marginals through
// the surrogate of qoi. The arguments are checked before anything is fetched
// or stored.
func (r *Runner) Propagate(ctx context.Context, c *models.Campaign, qoi string, n int, opts propagation.Options) (*PropagationOutcome, error) {
	if !c.HasColumn(qoi) {
		return nil, stageErr(StageEvaluation, fmt.Errorf("%w: %q", models.ErrUnknownQoI, qoi))
	}
	if n <= 0 {
		return nil, stageErr(StagePropagation, fmt.Errorf("%w: %d", models.ErrInvalidSampleCount, n))
	}
	if err := r.densityOpts.Validate(r.densityPoints); err != nil {
		return nil, stageErr(StageDensity, err)
	}

	a, err := r.Analyze(ctx, c)
	if err != nil {
		return nil, err
	}
	return r.PropagateModel(ctx, a, qoi, n, opts)
}

// PropagateModel runs propagation and density estimation on an existing analysis.
func (r *Runner) PropagateModel(ctx context.Context, a *AnalysisOutcome, qoi string, n int, opts propagation.Options) (*PropagationOutcome, error) {
	c := a.Campaign
	out := &PropagationOutcome{Analysis: a}

	var codeSamples []float64
	err := r.run(StageEvaluation, c.ID, func() (map[string]any, error) {
		var err error
		codeSamples, err = a.Model.NodeValues(qoi)
		if err != nil {
			return nil, err
		}
		return map[string]any{"qoi": qoi, "nodes": len(codeSamples)}, nil
	})
	if err != nil {
		return nil, err
	}

	marginals := make([]models.Marginal, c.Scheme.Dim())
	for i, p := range c.Scheme.Parameters {
		marginals[i] = p.Marginal
	}

	err = r.run(StagePropagation, c.ID, func() (map[string]any, error) {
		var err error
		out.Distribution, err = propagation.Propagate(ctx, a.Model, marginals, qoi, n, opts)
		if err != nil {
			return nil, err
		}
		out.Distribution.CodeSamples = codeSamples
		return map[string]any{"samples": out.Distribution.Len(), "seed": opts.Seed}, nil
	})
	if err != nil {
		return nil, err
	}

	err = r.run(StageDensity, c.ID, func() (map[string]any, error) {
		var err error
		out.Density, err = statistics.EstimateDensity(out.Distribution.Values, r.densityPoints, r.densityOpts)
		if err != nil {
			return nil, err
		}
		return map[string]any{"points": len(out.Density.Domain), "bandwidth": out.Density.Bandwidth}, nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// LoadResult reads a stored analysis result.
func (r *Runner) LoadResult(campaignID string) (*models.AnalysisResult, error) {
	if r.store == nil {
		return nil, stageErr(StagePersistence, models.ErrResultNotFound)
	}
	var result *models.AnalysisResult
	err := r.run(StagePersistence, campaignID, func() (map[string]any, error) {
		var err error
		result, err = r.store.Load(campaignID)
		return nil, err
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}
