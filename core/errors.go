package core

import (
	"errors"
	"fmt"
)

// FailureReason categorizes why an artifact failed certification.
type FailureReason string

const (
	// ReasonMalformedStructure covers unbalanced or duplicated markup the
	// repair pass could not fix.
	ReasonMalformedStructure FailureReason = "malformed_structure"
	// ReasonUnresolvedReference covers references to external network
	// resources or file paths in a document that must be self-contained.
	ReasonUnresolvedReference FailureReason = "unresolved_reference"
	// ReasonPolicyViolation covers missing required interactive elements.
	ReasonPolicyViolation FailureReason = "policy_violation"
)

// AnalysisError reports unusable input or an unparsable analysis response.
// It is fatal: the run aborts immediately.
type AnalysisError struct {
	Msg   string
	Cause error
}

func (e *AnalysisError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("analysis: %s: %v", e.Msg, e.Cause)
	}
	return fmt.Sprintf("analysis: %s", e.Msg)
}

func (e *AnalysisError) Unwrap() error { return e.Cause }

// PlanningError reports a violated planner invariant. It indicates a defect
// rather than an environmental failure and is never retried.
type PlanningError struct {
	Msg string
}

func (e *PlanningError) Error() string { return fmt.Sprintf("planning: %s", e.Msg) }

// SynthesisError reports that generation for one spec produced no usable
// content after retry exhaustion. It is recorded as a per-spec gap, not a
// run failure.
type SynthesisError struct {
	SpecIndex int
	Attempts  int
	Cause     error
}

func (e *SynthesisError) Error() string {
	return fmt.Sprintf("synthesis of spec %d failed after %d attempts: %v", e.SpecIndex, e.Attempts, e.Cause)
}

func (e *SynthesisError) Unwrap() error { return e.Cause }

// ValidationFailure reports a structural or policy defect that survived the
// single repair attempt. It doubles as the record carried into the manifest
// gap list and as an error value.
type ValidationFailure struct {
	SpecIndex int           `json:"spec_index"`
	Reason    FailureReason `json:"reason"`
	Detail    string        `json:"detail"`
}

func (e *ValidationFailure) Error() string {
	return fmt.Sprintf("validation of spec %d failed (%s): %s", e.SpecIndex, e.Reason, e.Detail)
}

// AssemblyError reports that zero artifacts certified, so no portal can be
// published. Fatal.
type AssemblyError struct {
	Planned int
}

func (e *AssemblyError) Error() string {
	return fmt.Sprintf("assembly: zero of %d planned lessons certified, cannot publish empty portal", e.Planned)
}

// IsFatal reports whether err aborts the whole run (analysis, planning and
// assembly errors) as opposed to being collected as a per-spec gap.
func IsFatal(err error) bool {
	var ae *AnalysisError
	var pe *PlanningError
	var asm *AssemblyError
	return errors.As(err, &ae) || errors.As(err, &pe) || errors.As(err, &asm)
}
