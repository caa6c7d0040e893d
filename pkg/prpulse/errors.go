package prpulse

import "errors"

// Every failure in a run maps to one of these three classes. All of them are
// fatal: a run either publishes one document reflecting the complete PR set,
// or publishes nothing.
var (
	// ErrSourceUnavailable signals a transport, authentication, or API failure
	// while reading pull request data.
	ErrSourceUnavailable = errors.New("source unavailable")
	// ErrMalformedRecord signals a required field missing from an
	// otherwise-successful source response. A silently skipped record would
	// corrupt every summary counter, so the run aborts instead.
	ErrMalformedRecord = errors.New("malformed record")
	// ErrPublishRejected signals that the sink refused the document write.
	ErrPublishRejected = errors.New("publish rejected")
)
