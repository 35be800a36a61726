package workflow

import "fmt"

// Ticket identifies one in-flight request. Only the most recent ticket of a
// workflow may complete it; completions carrying an older ticket are dropped.
type Ticket uint64

// SubmissionPhase is the state of the submission workflow
type SubmissionPhase int

const (
	SubmissionIdle SubmissionPhase = iota
	SubmissionSubmitting
	SubmissionSucceeded
	SubmissionFailed
)

func (p SubmissionPhase) String() string {
	switch p {
	case SubmissionIdle:
		return "idle"
	case SubmissionSubmitting:
		return "submitting"
	case SubmissionSucceeded:
		return "succeeded"
	case SubmissionFailed:
		return "failed"
	default:
		return fmt.Sprintf("SubmissionPhase(%d)", int(p))
	}
}

// SubmissionState is a snapshot of the submission workflow
type SubmissionState struct {
	Phase       SubmissionPhase
	SubmittedID string   // set only when Phase is SubmissionSucceeded
	Failure     *Failure // set only when Phase is SubmissionFailed
}

// Loading reports whether a submission is in flight
func (s SubmissionState) Loading() bool {
	return s.Phase == SubmissionSubmitting
}

// Submission drives Idle -> Submitting -> Succeeded|Failed. A new Begin is
// accepted from any phase and supersedes whatever was in flight.
//
// Submission is not safe for concurrent use.
type Submission struct {
	phase       SubmissionPhase
	submittedID string
	failure     *Failure
	latest      Ticket
}

// Begin clears the previous result and enters Submitting
func (s *Submission) Begin() Ticket {
	s.latest++
	s.phase = SubmissionSubmitting
	s.submittedID = ""
	s.failure = nil
	return s.latest
}

// Current reports whether t is the ticket of the submission in flight
func (s *Submission) Current(t Ticket) bool {
	return t == s.latest && s.phase == SubmissionSubmitting
}

// Succeed completes the submission with the id returned by the service.
// It returns false and changes nothing if t is stale.
func (s *Submission) Succeed(t Ticket, id string) bool {
	if !s.Current(t) {
		return false
	}
	s.phase = SubmissionSucceeded
	s.submittedID = id
	return true
}

// Fail completes the submission with f.
// It returns false and changes nothing if t is stale.
func (s *Submission) Fail(t Ticket, f *Failure) bool {
	if !s.Current(t) {
		return false
	}
	s.phase = SubmissionFailed
	s.failure = f
	return true
}

// State returns a snapshot
func (s *Submission) State() SubmissionState {
	switch s.phase {
	case SubmissionSucceeded:
		return SubmissionState{Phase: s.phase, SubmittedID: s.submittedID}
	case SubmissionFailed:
		f := *s.failure
		return SubmissionState{Phase: s.phase, Failure: &f}
	default:
		return SubmissionState{Phase: s.phase}
	}
}

// InvalidPrices is the failure recorded when item prices do not parse
func InvalidPrices() *Failure {
	return &Failure{Kind: KindClientValidation, Message: MsgInvalidPrices}
}

// ReceiptRejected is the failure recorded when the service rejects a receipt.
// An empty message falls back to MsgInvalidReceipt.
func ReceiptRejected(message string) *Failure {
	return newFailure(KindServerValidation, message, MsgInvalidReceipt)
}

// NetworkFailure is the failure recorded when no usable response was obtained
func NetworkFailure() *Failure {
	return &Failure{Kind: KindNetwork, Message: MsgNetwork}
}
