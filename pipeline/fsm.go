// Package pipeline ties the components into an end-to-end workflow: indexing
// documents into the backends and answering queries through an explicit
// phased state machine with bounded retry.
package pipeline

import (
	"github.com/smallnest/ragfusion"
)

// Phase identifies where a query is in its lifecycle.
type Phase int

const (
	// PhasePlan prepares (or rewrites) the retrieval query.
	PhasePlan Phase = iota
	// PhaseRetrieve fans the query out to the adapters and fuses the results.
	PhaseRetrieve
	// PhaseEvaluate decides whether the fused results are good enough.
	PhaseEvaluate
	// PhaseSummarize assembles the context and generates the answer.
	PhaseSummarize
	// PhaseDone is the terminal success phase.
	PhaseDone
	// PhaseFailed is the terminal failure phase after the retry budget runs out.
	PhaseFailed
)

// String returns the phase name.
func (p Phase) String() string {
	switch p {
	case PhasePlan:
		return "Plan"
	case PhaseRetrieve:
		return "Retrieve"
	case PhaseEvaluate:
		return "Evaluate"
	case PhaseSummarize:
		return "Summarize"
	case PhaseDone:
		return "Done"
	case PhaseFailed:
		return "Failed"
	default:
		return "Unknown"
	}
}

// Terminal reports whether the phase ends the workflow.
func (p Phase) Terminal() bool {
	return p == PhaseDone || p == PhaseFailed
}

// State is the typed record flowing through the workflow. Phases read the
// fields they need and a transition produces a new State; nothing mutates a
// State in place.
type State struct {
	Phase Phase

	// OriginalQuery is the caller's query, never modified.
	OriginalQuery ragfusion.Query
	// CurrentQuery is what the retrieve phase actually runs. The plan phase
	// rewrites it on retries.
	CurrentQuery ragfusion.Query

	// Attempt counts completed retrieve rounds, starting at 0.
	Attempt int

	Fused           ragfusion.FusedContext
	Context         string
	ContextSegments int
	Answer          string

	// FailureReason is set when the workflow ends in PhaseFailed.
	FailureReason string
}

// NewState builds the initial state for a query.
func NewState(q ragfusion.Query) State {
	return State{
		Phase:         PhasePlan,
		OriginalQuery: q,
		CurrentQuery:  q,
	}
}

// Transition is the pure phase-advance function. Given the state left behind
// by a completed phase and the retry budget, it returns the follow-up state.
// Terminal states return unchanged.
//
// The evaluate phase is the only branch point: results advance the workflow
// to Summarize, an empty fusion loops back to Plan while attempts remain,
// and an exhausted budget ends in Failed.
func Transition(s State, maxRetries int) State {
	switch s.Phase {
	case PhasePlan:
		s.Phase = PhaseRetrieve
	case PhaseRetrieve:
		s.Phase = PhaseEvaluate
	case PhaseEvaluate:
		if len(s.Fused.Results) > 0 {
			s.Phase = PhaseSummarize
			return s
		}
		if s.Attempt < maxRetries {
			s.Phase = PhasePlan
			s.Attempt++
			return s
		}
		s.Phase = PhaseFailed
		s.FailureReason = "no results after retry budget exhausted"
	case PhaseSummarize:
		s.Phase = PhaseDone
	}
	return s
}
