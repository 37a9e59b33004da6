package engine

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/idamadam/promovideo/internal/config"
	"github.com/idamadam/promovideo/internal/director"
	"github.com/idamadam/promovideo/internal/system"
)

// Sink receives rendered frames in frame order
type Sink interface {
	WriteFrame(RenderState) error
}

// Options selects the frames to render and how many workers evaluate them
type Options struct {
	Workers int
	Batch   int // frames evaluated before they are flushed to the sink
	From    int
	To      int // exclusive; 0 means the end of the timeline
}

// Stats summarizes one RenderAll call
type Stats struct {
	Frames   int
	Evaluate time.Duration
	Write    time.Duration
}

func (o Options) normalize(total int) (Options, error) {
	if o.Workers <= 0 {
		o.Workers = system.DefaultWorkers()
	}
	if o.Batch <= 0 {
		o.Batch = 64
	}
	if o.To == 0 {
		o.To = total
	}
	if o.From < 0 || o.To > total || o.From >= o.To {
		return o, fmt.Errorf("%w: range [%d, %d) outside [0, %d)", ErrFrameOutOfRange, o.From, o.To, total)
	}
	return o, nil
}

// RenderAll evaluates frames [From, To) on a bounded worker pool and writes
// them to sink in order. Frames are independent, so workers share nothing
// but the immutable composition.
func RenderAll(ctx context.Context, comp *Composition, opts Options, sink Sink) (Stats, error) {
	var stats Stats

	opts, err := opts.normalize(comp.TotalFrames())
	if err != nil {
		return stats, err
	}

	results := make([]RenderState, opts.Batch)
	for lo := opts.From; lo < opts.To; lo += opts.Batch {
		hi := min(lo+opts.Batch, opts.To)

		evalStart := time.Now()
		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(opts.Workers)
		for f := lo; f < hi; f++ {
			g.Go(func() error {
				if err := gctx.Err(); err != nil {
					return err
				}
				rs, err := comp.Evaluate(f)
				if err != nil {
					return err
				}
				results[f-lo] = rs
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return stats, err
		}
		stats.Evaluate += time.Since(evalStart)

		writeStart := time.Now()
		for i := range hi - lo {
			if err := sink.WriteFrame(results[i]); err != nil {
				return stats, fmt.Errorf("write frame %d: %w", lo+i, err)
			}
			results[i] = RenderState{}
			stats.Frames++
		}
		stats.Write += time.Since(writeStart)
	}
	return stats, nil
}

// Project ties a scenario, a sink and the render settings together
type Project struct {
	Config   *config.Config
	Scenario *director.Scenario
	Sink     Sink
	Log      *zap.Logger
}

func NewProject(cfg *config.Config, sc *director.Scenario, sink Sink, log *zap.Logger) *Project {
	if log == nil {
		log = zap.NewNop()
	}
	return &Project{
		Config:   cfg,
		Scenario: sc,
		Sink:     sink,
		Log:      log.Named("engine"),
	}
}

// Report is what Run measured
type Report struct {
	RunID   string
	Stats   Stats
	Total   time.Duration
	Compile time.Duration
	FPS     float64
}

func (p *Project) Run(ctx context.Context) (Report, error) {
	report := Report{RunID: uuid.NewString()}
	log := p.Log.With(zap.String("run", report.RunID))
	startTime := time.Now()

	comp, err := NewComposition(p.Scenario)
	if err != nil {
		return report, err
	}
	report.Compile = time.Since(startTime)

	workers := p.Config.Workers
	if workers <= 0 {
		workers = system.DefaultWorkers()
	}
	log.Info("Rendering",
		zap.Int("frames", comp.TotalFrames()),
		zap.Int("fps", comp.FPS()),
		zap.Int("scenes", len(p.Scenario.Scenes)),
		zap.Int("workers", workers))

	report.Stats, err = RenderAll(ctx, comp, Options{
		Workers: workers,
		Batch:   p.Config.Batch,
		From:    p.Config.From,
		To:      p.Config.To,
	}, p.Sink)
	if err != nil {
		return report, err
	}

	report.Total = time.Since(startTime)
	if s := report.Total.Seconds(); s > 0 {
		report.FPS = float64(report.Stats.Frames) / s
	}
	log.Info("Done", zap.Int("frames", report.Stats.Frames), zap.Duration("elapsed", report.Total))

	if p.Config.ShowStats {
		p.printReport(report, log)
	}
	return report, nil
}

func (p *Project) printReport(r Report, log *zap.Logger) {
	host, err := system.Inspect()
	if err != nil {
		log.Warn("Unable to inspect host", zap.Error(err))
	}

	fmt.Printf(
		"--- [PERFORMANCE REPORT] ---\n"+
			"Run: %s\n"+
			"Build: %s\n"+
			"Host: %s\n"+
			"Total Time: %.3fs\n"+
			"Compile: %.3fs\n"+
			"Evaluate: %.3fs\n"+
			"Write: %.3fs\n"+
			"Effective FPS: %.1f\n"+
			"----------------------------\n",
		r.RunID, p.Config.BuildVersion, host, r.Total.Seconds(), r.Compile.Seconds(),
		r.Stats.Evaluate.Seconds(), r.Stats.Write.Seconds(), r.FPS,
	)

	if p.Config.BenchmarkLog == "" {
		return
	}
	entry := fmt.Sprintf("[%s] Run: %s | Build: %s | Scenario: %s | Frames: %d | Total: %.3fs | Evaluate: %.3fs | FPS: %.1f\n",
		time.Now().Format("2006-01-02 15:04:05"),
		r.RunID,
		p.Config.BuildVersion,
		filepath.Base(p.Config.ScenarioPath),
		r.Stats.Frames,
		r.Total.Seconds(),
		r.Stats.Evaluate.Seconds(),
		r.FPS,
	)
	f, err := os.OpenFile(p.Config.BenchmarkLog, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		log.Warn("Unable to write benchmark log", zap.String("path", p.Config.BenchmarkLog), zap.Error(err))
		return
	}
	defer f.Close()
	if _, err := f.WriteString(entry); err != nil {
		log.Warn("Unable to write benchmark log", zap.Error(err))
	}
}
