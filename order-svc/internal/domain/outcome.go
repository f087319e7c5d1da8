package domain

type Phase string

const (
	PhaseIdle       Phase = "idle"
	PhaseSubmitting Phase = "submitting"
	PhaseSucceeded  Phase = "succeeded"
	PhaseFailed     Phase = "failed"
)

var validNext = map[Phase]map[Phase]bool{
	PhaseIdle:       {PhaseSubmitting: true, PhaseFailed: true},
	PhaseSubmitting: {PhaseSucceeded: true, PhaseFailed: true, PhaseIdle: true},
	PhaseSucceeded:  {PhaseIdle: true, PhaseSubmitting: true, PhaseFailed: true},
	PhaseFailed:     {PhaseIdle: true, PhaseSubmitting: true, PhaseFailed: true},
}

func CanTransition(from, to Phase) bool {
	return validNext[from][to]
}

type ErrorKind string

const (
	KindValidation ErrorKind = "validation"
	KindTransport  ErrorKind = "transport"
	KindBusiness   ErrorKind = "business"
	KindUnknown    ErrorKind = "unknown"
)

// Outcome is the published state of one checkout.
type Outcome struct {
	Phase     Phase     `json:"phase"`
	Reference string    `json:"reference,omitempty"`
	Message   string    `json:"message,omitempty"`
	Kind      ErrorKind `json:"error_kind,omitempty"`
	Reason    string    `json:"reason,omitempty"`
}
