package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/zombor/receipt-points/internal/points"
	"github.com/zombor/receipt-points/internal/receipt"
	"github.com/zombor/receipt-points/internal/scanning"
	"github.com/zombor/receipt-points/internal/workflow"
)

var (
	// ErrSuperseded is returned when a newer request of the same workflow
	// started before this one completed. Its result was discarded.
	ErrSuperseded = errors.New("request superseded by a newer one")
	// ErrNoScanner is returned by Prefill when no scanner is configured
	ErrNoScanner = errors.New("no receipt scanner configured")
)

// Processor is the scoring service as seen by a session
type Processor interface {
	ProcessReceipt(ctx context.Context, r receipt.Receipt) (string, error)
	GetPoints(ctx context.Context, id string) (int64, error)
}

// Session owns the receipt draft and both request workflows of one user session.
//
// Methods are safe for concurrent use. The lock is held only while state
// changes, never while waiting on the network, so a submission and a lookup
// can be in flight at the same time.
type Session struct {
	processor Processor
	scanner   scanning.Scanner
	logger    *slog.Logger

	mu         sync.Mutex
	form       *receipt.Form
	submission workflow.Submission
	lookup     workflow.Lookup
	lookupID   string
}

// Option configures a Session
type Option func(*Session)

// WithScanner enables Prefill
func WithScanner(scanner scanning.Scanner) Option {
	return func(s *Session) {
		s.scanner = scanner
	}
}

// WithLogger sets the logger, slog.Default() otherwise
func WithLogger(logger *slog.Logger) Option {
	return func(s *Session) {
		s.logger = logger
	}
}

// New creates a session with an empty draft and idle workflows
func New(processor Processor, opts ...Option) *Session {
	s := &Session{
		processor: processor,
		logger:    slog.Default(),
		form:      receipt.NewForm(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Draft returns a copy of the receipt draft
func (s *Session) Draft() receipt.Receipt {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.form.Snapshot()
}

// UpdateField sets a scalar field of the draft
func (s *Session) UpdateField(name receipt.Field, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.form.UpdateField(name, value)
}

// UpdateItem sets a field of the item at index
func (s *Session) UpdateItem(index int, field receipt.ItemField, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.form.UpdateItem(index, field, value)
}

// AddItem appends an empty item to the draft
func (s *Session) AddItem() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.form.AddItem()
}

// DeleteItem removes the item at index unless it is the last one
func (s *Session) DeleteItem(index int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.form.DeleteItem(index)
}

// Submission returns the state of the submission workflow
func (s *Session) Submission() workflow.SubmissionState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.submission.State()
}

// Lookup returns the state of the lookup workflow
func (s *Session) Lookup() workflow.LookupState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lookup.State()
}

// LookupID returns the receipt id the user intends to look up
func (s *Session) LookupID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lookupID
}

// SetLookupID sets the receipt id the user intends to look up
func (s *Session) SetLookupID(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lookupID = id
}

// Submit validates the draft and sends it to the scoring service.
//
// Invalid prices are blanked in the draft and the submission fails without a
// request. On success the draft takes the normalized items that were sent and
// the returned id becomes the lookup id. The returned error is the recorded
// *workflow.Failure, or ErrSuperseded if a newer Submit started meanwhile.
func (s *Session) Submit(ctx context.Context) (workflow.SubmissionState, error) {
	s.mu.Lock()
	ticket := s.submission.Begin()
	draft := s.form.Snapshot()
	validation := receipt.ValidateAndFormat(draft.Items)
	if !validation.Valid {
		s.form.Commit(validation.Items)
		failure := workflow.InvalidPrices()
		s.submission.Fail(ticket, failure)
		state := s.submission.State()
		s.mu.Unlock()
		s.logger.Info("Receipt has invalid prices", "items", validation.Invalid)
		return state, failure
	}
	draft.Items = validation.Items
	draft.Total = receipt.Total(validation.Items)
	s.mu.Unlock()

	s.logger.Debug("Submitting receipt", "retailer", draft.Retailer, "items", len(draft.Items), "total", draft.Total)
	id, err := s.processor.ProcessReceipt(ctx, draft)

	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		failure := submissionFailure(err)
		if !s.submission.Fail(ticket, failure) {
			return s.submission.State(), ErrSuperseded
		}
		s.logger.Warn("Receipt submission failed", "kind", failure.Kind, "error", err)
		return s.submission.State(), failure
	}
	if !s.submission.Succeed(ticket, id) {
		return s.submission.State(), ErrSuperseded
	}
	s.form.Commit(draft.Items)
	s.lookupID = id
	s.logger.Info("Receipt submitted", "id", id, "total", draft.Total)
	return s.submission.State(), nil
}

// FetchPoints asks the scoring service for the points of receipt id.
// The returned error is the recorded *workflow.Failure, or ErrSuperseded if a
// newer FetchPoints started meanwhile.
func (s *Session) FetchPoints(ctx context.Context, id string) (workflow.LookupState, error) {
	id = strings.TrimSpace(id)

	s.mu.Lock()
	ticket := s.lookup.Begin(id)
	if id == "" {
		failure := workflow.MissingReceiptID()
		s.lookup.Fail(ticket, failure)
		state := s.lookup.State()
		s.mu.Unlock()
		return state, failure
	}
	s.mu.Unlock()

	pts, err := s.processor.GetPoints(ctx, id)

	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		failure := lookupFailure(err)
		if !s.lookup.Fail(ticket, failure) {
			return s.lookup.State(), ErrSuperseded
		}
		s.logger.Warn("Points lookup failed", "id", id, "kind", failure.Kind, "error", err)
		return s.lookup.State(), failure
	}
	if !s.lookup.Found(ticket, pts) {
		return s.lookup.State(), ErrSuperseded
	}
	s.logger.Info("Points found", "id", id, "points", pts)
	return s.lookup.State(), nil
}

// Prefill scans a receipt image or PDF and replaces the draft with what was read.
// Prices are formatted to two decimals; the user reviews the draft before submitting.
func (s *Session) Prefill(ctx context.Context, data []byte, contentType string) error {
	if s.scanner == nil {
		return ErrNoScanner
	}
	scanned, err := s.scanner.ScanReceipt(ctx, data, contentType)
	if err != nil {
		return fmt.Errorf("scanning receipt: %w", err)
	}

	r := receipt.Receipt{
		Retailer:     scanned.Retailer,
		PurchaseDate: scanned.PurchaseDate,
		PurchaseTime: scanned.PurchaseTime,
		Items:        make([]receipt.Item, 0, len(scanned.Items)),
	}
	for _, item := range scanned.Items {
		r.Items = append(r.Items, receipt.Item{
			ShortDescription: item.ShortDescription,
			Price:            receipt.FormatAmount(item.Price),
		})
	}

	s.mu.Lock()
	s.form.Prefill(r)
	s.mu.Unlock()

	s.logger.Info("Draft prefilled from scan", "retailer", r.Retailer, "items", len(r.Items))
	return nil
}

func submissionFailure(err error) *workflow.Failure {
	var serverErr *points.ServerError
	if errors.As(err, &serverErr) {
		return workflow.ReceiptRejected(serverErr.Message)
	}
	return workflow.NetworkFailure()
}

func lookupFailure(err error) *workflow.Failure {
	var serverErr *points.ServerError
	if errors.As(err, &serverErr) {
		return workflow.ReceiptNotFound(serverErr.Message)
	}
	return workflow.NetworkFailure()
}
