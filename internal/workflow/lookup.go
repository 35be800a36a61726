package workflow

import "fmt"

// LookupPhase is the state of the points lookup workflow
type LookupPhase int

const (
	LookupIdle LookupPhase = iota
	LookupChecking
	LookupFound
	LookupFailed
)

func (p LookupPhase) String() string {
	switch p {
	case LookupIdle:
		return "idle"
	case LookupChecking:
		return "checking"
	case LookupFound:
		return "found"
	case LookupFailed:
		return "failed"
	default:
		return fmt.Sprintf("LookupPhase(%d)", int(p))
	}
}

// LookupState is a snapshot of the lookup workflow
type LookupState struct {
	Phase     LookupPhase
	ReceiptID string   // id of the last lookup attempt
	Points    *int64   // set only when Phase is LookupFound
	Failure   *Failure // set only when Phase is LookupFailed
}

// Loading reports whether a lookup is in flight
func (s LookupState) Loading() bool {
	return s.Phase == LookupChecking
}

// Lookup drives Idle -> Checking -> Found|Failed, once per requested id.
// Like Submission, a new Begin supersedes the lookup in flight.
type Lookup struct {
	phase     LookupPhase
	receiptID string
	points    int64
	failure   *Failure
	latest    Ticket
}

// Begin clears the previous result and enters Checking for id
func (l *Lookup) Begin(id string) Ticket {
	l.latest++
	l.phase = LookupChecking
	l.receiptID = id
	l.points = 0
	l.failure = nil
	return l.latest
}

// Current reports whether t is the ticket of the lookup in flight
func (l *Lookup) Current(t Ticket) bool {
	return t == l.latest && l.phase == LookupChecking
}

// Found completes the lookup with the points returned by the service
func (l *Lookup) Found(t Ticket, points int64) bool {
	if !l.Current(t) {
		return false
	}
	l.phase = LookupFound
	l.points = points
	return true
}

// Fail completes the lookup with f
func (l *Lookup) Fail(t Ticket, f *Failure) bool {
	if !l.Current(t) {
		return false
	}
	l.phase = LookupFailed
	l.failure = f
	return true
}

// State returns a snapshot
func (l *Lookup) State() LookupState {
	st := LookupState{Phase: l.phase, ReceiptID: l.receiptID}
	switch l.phase {
	case LookupFound:
		p := l.points
		st.Points = &p
	case LookupFailed:
		f := *l.failure
		st.Failure = &f
	}
	return st
}

// ReceiptNotFound is the failure recorded when the service has no points for an id.
// An empty message falls back to MsgReceiptNotFound.
func ReceiptNotFound(message string) *Failure {
	return newFailure(KindNotFound, message, MsgReceiptNotFound)
}

// MissingReceiptID is the failure recorded when a lookup is requested without an id
func MissingReceiptID() *Failure {
	return &Failure{Kind: KindClientValidation, Message: MsgMissingID}
}
