package enrich

import (
	"fmt"

	"metadata-enricher/internal/errors"
)

//go:generate go tool stringer -type=Stage -trimprefix=Stage -output=stage_string.go

// Stage is one step of an enrichment request. Stages run strictly in order.
type Stage int

const (
	StageNone Stage = iota
	StageReadLocal
	StageMapOut
	StageFetch
	StageParseResponse
	StageNormalize
	StageMapIn
	StageSelectCandidate
	StageMerge
	StageSecondary
	StageEmit
)

// StageError reports an aborted enrichment: the failing stage, the last
// stage that completed and the underlying error.
type StageError struct {
	Stage     Stage
	Completed Stage
	Err       error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("enrichment failed during %s after %s: %s: %v",
		e.Stage, e.Completed, e.Kind(), e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}

// Kind returns the error kind of the underlying error.
func (e *StageError) Kind() errors.Kind {
	return errors.KindOf(e.Err)
}
