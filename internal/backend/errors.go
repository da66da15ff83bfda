package backend

import "fmt"

// Kind classifies a fetch failure. Every failure leaving this package is one
// of these; nothing propagates as an unclassified fault.
type Kind string

const (
	// KindTimeout means the backend did not respond within the budget.
	KindTimeout Kind = "timeout"
	// KindProtocolMismatch means the response body was not the structured
	// payload the contract promises (e.g. an HTML error page from an
	// intermediary), or could not be decoded.
	KindProtocolMismatch Kind = "upstream_protocol_mismatch"
	// KindUpstreamReported means the backend itself returned a structured
	// failure (ok:false) whose message is surfaced verbatim.
	KindUpstreamReported Kind = "upstream_reported_error"
	// KindNetwork means the connection could not be established at all.
	KindNetwork Kind = "network_failure"
)

// Error is the typed failure surfaced to callers.
type Error struct {
	Kind          Kind
	Message       string
	BackendTarget string
}

func (e *Error) Error() string {
	if e.BackendTarget == "" {
		return fmt.Sprintf("%s: %s", e.Kind, e.Message)
	}
	return fmt.Sprintf("%s: %s (%s)", e.Kind, e.Message, e.BackendTarget)
}
