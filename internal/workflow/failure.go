package workflow

// Kind classifies why a workflow attempt failed
type Kind int

const (
	// KindClientValidation means item prices were rejected before any request was made
	KindClientValidation Kind = iota + 1
	// KindServerValidation means the scoring service rejected the receipt
	KindServerValidation
	// KindNotFound means the scoring service has no points for the requested id
	KindNotFound
	// KindNetwork means no usable response was obtained
	KindNetwork
)

func (k Kind) String() string {
	switch k {
	case KindClientValidation:
		return "client_validation"
	case KindServerValidation:
		return "server_validation"
	case KindNotFound:
		return "not_found"
	case KindNetwork:
		return "network"
	default:
		return "unknown"
	}
}

// User-facing messages
const (
	MsgInvalidPrices   = "Please enter valid numeric prices for all items."
	MsgInvalidReceipt  = "Invalid receipt data."
	MsgReceiptNotFound = "Receipt not found."
	MsgNetwork         = "Network error."
	MsgMissingID       = "Please enter a receipt ID."
)

// Failure is the error slot of a workflow. Message is always non-empty.
type Failure struct {
	Kind    Kind
	Message string
}

func (f *Failure) Error() string {
	return f.Message
}

// newFailure builds a Failure, falling back to a fixed message when the
// server did not provide one
func newFailure(kind Kind, message, fallback string) *Failure {
	if message == "" {
		message = fallback
	}
	return &Failure{Kind: kind, Message: message}
}
