package analysis

import (
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/stemsi/boletim/internal/errlog"
	"github.com/stemsi/boletim/internal/logger"
	"github.com/stemsi/boletim/internal/model"
)

// Stage is a state of a pipeline run.
type Stage string

const (
	StageLoading    Stage = "loading"
	StageValidating Stage = "validating"
	StageScoring    Stage = "scoring"
	StageRendering  Stage = "rendering"
	StageComposing  Stage = "composing"
	StageDone       Stage = "done"
	StageFailed     Stage = "failed"
)

// ChartRenderer draws the charts of a scored table.
type ChartRenderer interface {
	Render(rows []model.ScoredRow) (model.Charts, error)
}

// ReportComposer lays out the PDF report.
type ReportComposer interface {
	Compose(rows []model.ScoredRow, charts model.Charts) (*model.ReportDocument, error)
}

// Input is one uploaded sheet.
type Input struct {
	Data   []byte
	Format Format
}

// Result holds every output of a successful run.
type Result struct {
	Table   *model.StudentTable
	Rows    []model.ScoredRow
	Summary model.Summary
	Charts  model.Charts
	Report  *model.ReportDocument
}

// Failure is returned by Run when a stage fails. Err is one of *LoadError,
// *ValidationError, *NonNumericColumnError or *UnexpectedError.
type Failure struct {
	Stage Stage
	Err   error
}

func (f *Failure) Error() string { return f.Err.Error() }

func (f *Failure) Unwrap() error { return f.Err }

// Message is the text shown to the user.
func (f *Failure) Message() string { return f.Err.Error() }

// Observer is notified of every state transition.
type Observer func(from, to Stage)

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithClock overrides the time source used for error log timestamps.
func WithClock(now func() time.Time) Option {
	return func(p *Pipeline) { p.now = now }
}

// WithObserver registers a transition observer.
func WithObserver(o Observer) Option {
	return func(p *Pipeline) { p.observer = o }
}

// Pipeline runs Load → Validate → Score → Render → Compose. It holds no
// per-run state and may be shared between goroutines.
type Pipeline struct {
	charts   ChartRenderer
	composer ReportComposer
	errLog   errlog.Appender
	log      zerolog.Logger
	now      func() time.Time
	observer Observer
}

// NewPipeline creates a Pipeline.
func NewPipeline(charts ChartRenderer, composer ReportComposer, errLog errlog.Appender, log zerolog.Logger, opts ...Option) *Pipeline {
	p := &Pipeline{
		charts:   charts,
		composer: composer,
		errLog:   errLog,
		log:      logger.Component(log, "pipeline"),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Run executes every stage in order and stops at the first failure, which is
// recorded in the error log and returned as a *Failure.
func (p *Pipeline) Run(in Input) (*Result, error) {
	res := &Result{}
	stage := StageLoading
	p.notify("", stage)

	steps := []struct {
		stage Stage
		run   func() error
	}{
		{StageLoading, func() (err error) {
			res.Table, err = Load(in.Data, in.Format)
			return err
		}},
		{StageValidating, func() error {
			return Validate(res.Table)
		}},
		{StageScoring, func() (err error) {
			res.Rows, err = Score(res.Table)
			res.Summary = model.Summarize(res.Rows)
			return err
		}},
		{StageRendering, func() (err error) {
			res.Charts, err = p.charts.Render(res.Rows)
			return err
		}},
		{StageComposing, func() (err error) {
			res.Report, err = p.composer.Compose(res.Rows, res.Charts)
			return err
		}},
	}

	for i, step := range steps {
		if err := guard(step.run); err != nil {
			return nil, p.fail(step.stage, err)
		}
		next := StageDone
		if i+1 < len(steps) {
			next = steps[i+1].stage
		}
		p.notify(step.stage, next)
		stage = next
	}

	p.log.Debug().
		Str("stage", string(stage)).
		Int("rows", len(res.Rows)).
		Int("pages", res.Report.Pages).
		Msg("Analysis completed")
	return res, nil
}

func (p *Pipeline) fail(stage Stage, err error) *Failure {
	err = classify(err)
	f := &Failure{Stage: stage, Err: err}
	p.notify(stage, StageFailed)

	if logErr := p.errLog.Append(f.Message(), p.now()); logErr != nil {
		p.log.Error().Err(logErr).Msg("Failed to append to error log")
	}

	var unexpected *UnexpectedError
	ev := p.log.Warn()
	if errors.As(err, &unexpected) {
		ev = p.log.Error()
	}
	ev.Str("stage", string(stage)).Err(err).Msg("Analysis failed")
	return f
}

func (p *Pipeline) notify(from, to Stage) {
	p.log.Debug().Str("from", string(from)).Str("to", string(to)).Msg("Pipeline transition")
	if p.observer != nil {
		p.observer(from, to)
	}
}

// guard turns a panic inside a stage into an UnexpectedError.
func guard(fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &UnexpectedError{Err: fmt.Errorf("%v", r)}
		}
	}()
	return fn()
}
