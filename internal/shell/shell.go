package shell

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/zombor/receipt-points/internal/receipt"
	"github.com/zombor/receipt-points/internal/session"
	"github.com/zombor/receipt-points/internal/workflow"
)

// ErrQuit is returned by Exec when the user asks to leave
var ErrQuit = errors.New("quit")

const helpText = `Commands:
  show                          print the receipt draft and workflow state
  set retailer|date|time VALUE  set a receipt field (date YYYY-MM-DD, time HH:MM)
  item add                      append an empty item
  item set N desc|price VALUE   edit item N (1-based)
  item del N                    delete item N (the last item cannot be deleted)
  submit                        validate and submit the receipt
  id [VALUE]                    show or set the receipt id to look up
  points [ID]                   look up points for ID, or for the current id
  scan FILE                     prefill the draft from a receipt photo or PDF
  help                          show this help
  quit                          exit
`

var fieldNames = map[string]receipt.Field{
	"retailer": receipt.FieldRetailer,
	"date":     receipt.FieldPurchaseDate,
	"time":     receipt.FieldPurchaseTime,
}

var itemFieldNames = map[string]receipt.ItemField{
	"desc":        receipt.ItemFieldShortDescription,
	"description": receipt.ItemFieldShortDescription,
	"price":       receipt.ItemFieldPrice,
}

// Shell runs line commands against one session
type Shell struct {
	session  *session.Session
	out      io.Writer
	readFile func(string) ([]byte, error)
}

// New creates a Shell that prints to out
func New(sess *session.Session, out io.Writer) *Shell {
	return &Shell{
		session:  sess,
		out:      out,
		readFile: os.ReadFile,
	}
}

// Run reads commands from in until EOF, quit, or ctx is done
func (s *Shell) Run(ctx context.Context, in io.Reader) error {
	scanner := bufio.NewScanner(in)
	s.prompt()
	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return err
		}
		err := s.Exec(ctx, scanner.Text())
		if errors.Is(err, ErrQuit) {
			return nil
		}
		if err != nil {
			fmt.Fprintf(s.out, "error: %v\n", err)
		}
		s.prompt()
	}
	return scanner.Err()
}

func (s *Shell) prompt() {
	fmt.Fprint(s.out, "> ")
}

// Exec runs a single command line. Usage mistakes are returned as errors;
// workflow failures are printed as part of the workflow state.
func (s *Shell) Exec(ctx context.Context, line string) error {
	args := strings.Fields(line)
	if len(args) == 0 {
		return nil
	}

	switch strings.ToLower(args[0]) {
	case "help", "?":
		fmt.Fprint(s.out, helpText)
		return nil
	case "quit", "exit":
		return ErrQuit
	case "show":
		s.printDraft()
		s.printSubmission(s.session.Submission())
		s.printLookup(s.session.Lookup())
		return nil
	case "set":
		return s.set(args[1:], line)
	case "item":
		return s.item(args[1:], line)
	case "submit":
		state, err := s.session.Submit(ctx)
		if errors.Is(err, session.ErrSuperseded) {
			return err
		}
		s.printSubmission(state)
		if state.Phase == workflow.SubmissionFailed && state.Failure.Kind == workflow.KindClientValidation {
			s.printDraft()
		}
		return nil
	case "id":
		if len(args) > 1 {
			s.session.SetLookupID(restOf(line, 1))
		}
		fmt.Fprintf(s.out, "Receipt ID: %s\n", s.session.LookupID())
		return nil
	case "points":
		id := s.session.LookupID()
		if len(args) > 1 {
			id = restOf(line, 1)
			s.session.SetLookupID(id)
		}
		state, err := s.session.FetchPoints(ctx, id)
		if errors.Is(err, session.ErrSuperseded) {
			return err
		}
		s.printLookup(state)
		return nil
	case "scan":
		if len(args) < 2 {
			return fmt.Errorf("usage: scan FILE")
		}
		return s.scan(ctx, restOf(line, 1))
	default:
		return fmt.Errorf("unknown command %q, type help for a list", args[0])
	}
}

func (s *Shell) set(args []string, line string) error {
	if len(args) < 1 {
		return fmt.Errorf("usage: set retailer|date|time VALUE")
	}
	field, ok := fieldNames[strings.ToLower(args[0])]
	if !ok {
		return fmt.Errorf("unknown field %q", args[0])
	}
	return s.session.UpdateField(field, restOf(line, 2))
}

func (s *Shell) item(args []string, line string) error {
	if len(args) < 1 {
		return fmt.Errorf("usage: item add|set|del")
	}
	switch strings.ToLower(args[0]) {
	case "add":
		s.session.AddItem()
		s.printDraft()
		return nil
	case "set":
		if len(args) < 3 {
			return fmt.Errorf("usage: item set N desc|price VALUE")
		}
		index, err := itemIndex(args[1])
		if err != nil {
			return err
		}
		field, ok := itemFieldNames[strings.ToLower(args[2])]
		if !ok {
			return fmt.Errorf("unknown item field %q", args[2])
		}
		if err := s.session.UpdateItem(index, field, restOf(line, 4)); err != nil {
			return err
		}
		fmt.Fprintf(s.out, "Total: %s\n", s.session.Draft().Total)
		return nil
	case "del", "delete", "rm":
		if len(args) < 2 {
			return fmt.Errorf("usage: item del N")
		}
		index, err := itemIndex(args[1])
		if err != nil {
			return err
		}
		before := len(s.session.Draft().Items)
		if err := s.session.DeleteItem(index); err != nil {
			return err
		}
		if len(s.session.Draft().Items) == before {
			fmt.Fprintln(s.out, "At least one item is required.")
		}
		s.printDraft()
		return nil
	default:
		return fmt.Errorf("unknown item command %q", args[0])
	}
}

func (s *Shell) scan(ctx context.Context, path string) error {
	data, err := s.readFile(path)
	if err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}
	contentType := mime.TypeByExtension(strings.ToLower(filepath.Ext(path)))
	if contentType == "" {
		contentType = http.DetectContentType(data)
	}
	slog.Debug("Scanning receipt", "path", path, "content_type", contentType, "size", len(data))
	if err := s.session.Prefill(ctx, data, contentType); err != nil {
		return err
	}
	s.printDraft()
	return nil
}

func (s *Shell) printDraft() {
	draft := s.session.Draft()
	fmt.Fprintf(s.out, "Retailer: %s\n", draft.Retailer)
	fmt.Fprintf(s.out, "Date:     %s\n", draft.PurchaseDate)
	fmt.Fprintf(s.out, "Time:     %s\n", draft.PurchaseTime)
	fmt.Fprintln(s.out, "Items:")
	for i, item := range draft.Items {
		fmt.Fprintf(s.out, "  %d. %-30s %s\n", i+1, item.ShortDescription, item.Price)
	}
	fmt.Fprintf(s.out, "Total:    %s\n", draft.Total)
}

func (s *Shell) printSubmission(state workflow.SubmissionState) {
	switch state.Phase {
	case workflow.SubmissionSubmitting:
		fmt.Fprintln(s.out, "Submitting...")
	case workflow.SubmissionSucceeded:
		fmt.Fprintf(s.out, "Receipt submitted! ID: %s\n", state.SubmittedID)
	case workflow.SubmissionFailed:
		fmt.Fprintf(s.out, "Submit failed: %s\n", state.Failure.Message)
	}
}

func (s *Shell) printLookup(state workflow.LookupState) {
	switch state.Phase {
	case workflow.LookupChecking:
		fmt.Fprintln(s.out, "Checking...")
	case workflow.LookupFound:
		fmt.Fprintf(s.out, "Points for receipt %s: %d\n", state.ReceiptID, *state.Points)
	case workflow.LookupFailed:
		fmt.Fprintf(s.out, "Lookup failed: %s\n", state.Failure.Message)
	}
}

// itemIndex converts a 1-based item number to a list index
func itemIndex(arg string) (int, error) {
	n, err := strconv.Atoi(arg)
	if err != nil || n < 1 {
		return 0, fmt.Errorf("invalid item number %q", arg)
	}
	return n - 1, nil
}

// restOf returns line after its first n whitespace-separated words, with inner
// spacing preserved so values like "Emils Cheese Pizza" survive
func restOf(line string, n int) string {
	rest := strings.TrimSpace(line)
	for i := 0; i < n; i++ {
		idx := strings.IndexFunc(rest, isSpace)
		if idx == -1 {
			return ""
		}
		rest = strings.TrimLeftFunc(rest[idx:], isSpace)
	}
	return strings.TrimSpace(rest)
}

func isSpace(r rune) bool {
	return r == ' ' || r == '\t'
}
