// Package dsp implements the native signal processing stages: spectral
// noise reduction, dynamics compression, loudness normalisation, and
// biquad equalisation.
package dsp

import "fmt"

// AnalysisError reports a measurement that could not be performed, typically
// because the buffer is too short for the analysis window. Callers treat it
// as a skip-with-warning for the affected stage, not a file failure.
type AnalysisError struct {
	Op  string // measurement that failed, e.g. "integrated loudness"
	Msg string
}

func (e *AnalysisError) Error() string {
	return fmt.Sprintf("analysis: %s: %s", e.Op, e.Msg)
}

func analysisErrorf(op, format string, args ...any) *AnalysisError {
	return &AnalysisError{Op: op, Msg: fmt.Sprintf(format, args...)}
}

// StageError reports a failure inside a processing stage, such as a filter
// whose coefficients would be unstable. A StageError fails the whole file.
type StageError struct {
	Stage string
	Msg   string
}

func (e *StageError) Error() string {
	return fmt.Sprintf("stage %s: %s", e.Stage, e.Msg)
}

func stageErrorf(stage, format string, args ...any) *StageError {
	return &StageError{Stage: stage, Msg: fmt.Sprintf(format, args...)}
}
