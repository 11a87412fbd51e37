package fetch

import "fmt"

// Failure kinds. Callers rarely branch on these; the split exists for
// metrics and log fields.
const (
	KindTransport = "transport"
	KindParse     = "parse"
)

// FetchError is the single error shape every fetcher failure collapses to:
// network failure, non-2xx status and malformed JSON all end up here, so the
// caller never branches on transport vs parse.
type FetchError struct {
	Resource string
	Kind     string
	Cause    error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch %s: %s failure: %v", e.Resource, e.Kind, e.Cause)
}

func (e *FetchError) Unwrap() error {
	return e.Cause
}

func transportErr(resource string, cause error) *FetchError {
	return &FetchError{Resource: resource, Kind: KindTransport, Cause: cause}
}

func parseErr(resource string, cause error) *FetchError {
	return &FetchError{Resource: resource, Kind: KindParse, Cause: cause}
}
