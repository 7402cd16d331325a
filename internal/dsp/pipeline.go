package dsp

import (
	"errors"
	"fmt"

	"github.com/clearcast-audio/clearcast/internal/audio"
	"github.com/clearcast-audio/clearcast/internal/config"
)

// Report carries the measurements surfaced to the caller after a pipeline
// run, for verification and logging.
type Report struct {
	// IntegratedLUFS is the measured loudness of the output. Valid only
	// when LoudnessMeasured is true; very short buffers cannot be gated.
	IntegratedLUFS   float64
	LoudnessMeasured bool

	// TruePeakDB is the oversampled peak of the output in dBTP.
	TruePeakDB float64

	// Input-side measurements, taken before any stage runs.
	InputLUFS             float64
	InputLoudnessMeasured bool
	InputTruePeakDB       float64

	// NoiseFloorDB estimates the input noise floor from the quietest
	// analysis frames. Valid only when NoiseFloorMeasured is true, which
	// requires the noise reduction stage to have run.
	NoiseFloorDB       float64
	NoiseFloorMeasured bool

	// GainDB is the uniform gain the normalization stage applied toward
	// its target, before any limiting. Limited reports whether the true
	// peak ceiling forced the limiter to engage. Both are zero when the
	// stage did not run.
	GainDB  float64
	Limited bool

	// Applied lists the stages that actually ran, in order.
	Applied []string

	// Warnings holds non-fatal stage skips, one message per skip.
	Warnings []string
}

// stageReporter is implemented by stages that contribute their own
// measurements to the run report.
type stageReporter interface {
	reportInto(r *Report)
}

// Pipeline is the composed stage chain for one file. Construct a fresh one
// per file: stages carry per-run state and are not safe to share.
type Pipeline struct {
	stages []Stage
}

// NewPipeline resolves and validates the effective configuration into a
// runnable chain. Configuration problems surface here, before any audio is
// touched.
func NewPipeline(eff *config.Effective) (*Pipeline, error) {
	stages, err := Build(eff)
	if err != nil {
		return nil, err
	}
	return &Pipeline{stages: stages}, nil
}

// Run applies the chain to the buffer sequentially, each stage consuming
// the previous stage's output. A stage that fails with an AnalysisError is
// skipped with a warning and the chain continues on that stage's input; any
// other stage error aborts the file. With every stage disabled the chain is
// empty and Run is the identity transform.
func (p *Pipeline) Run(buf *audio.Buffer) (*audio.Buffer, *Report, error) {
	report := &Report{InputTruePeakDB: TruePeak(buf)}
	if lufs, err := IntegratedLoudness(buf); err == nil {
		report.InputLUFS = lufs
		report.InputLoudnessMeasured = true
	}

	for _, stage := range p.stages {
		out, err := stage.Process(buf)
		if err != nil {
			var ae *AnalysisError
			if errors.As(err, &ae) {
				report.Warnings = append(report.Warnings,
					fmt.Sprintf("skipped %s: %s", stage.Name(), ae.Msg))
				continue
			}
			return nil, nil, err
		}
		buf = out
		report.Applied = append(report.Applied, stage.Name())
		if sr, ok := stage.(stageReporter); ok {
			sr.reportInto(report)
		}
	}

	report.TruePeakDB = TruePeak(buf)
	if lufs, err := IntegratedLoudness(buf); err == nil {
		report.IntegratedLUFS = lufs
		report.LoudnessMeasured = true
	}

	return buf, report, nil
}

// Process is the single-call invocation surface: resolve the preset overlay,
// build the chain, and run it. presetName may be empty for no overlay.
func Process(buf *audio.Buffer, cfg *config.Config, presetName string) (*audio.Buffer, *Report, error) {
	eff, err := config.Resolve(cfg, presetName)
	if err != nil {
		return nil, nil, err
	}
	pipe, err := NewPipeline(eff)
	if err != nil {
		return nil, nil, err
	}
	return pipe.Run(buf)
}
