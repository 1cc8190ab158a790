package ragfusion

import "fmt"

// ConfigurationError reports invalid chunking or index parameters. It is
// fatal, raised immediately and never retried.
type ConfigurationError struct {
	Field  string
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("invalid configuration: %s: %s", e.Field, e.Reason)
}

// DimensionMismatchError reports a vector whose length disagrees with the
// index's configured dimension. Fatal at build time.
type DimensionMismatchError struct {
	Want int
	Got  int
}

func (e *DimensionMismatchError) Error() string {
	return fmt.Sprintf("dimension mismatch: index expects %d, got %d", e.Want, e.Got)
}

// InvalidArgumentError reports a bad per-call argument such as a
// non-positive k or max_results.
type InvalidArgumentError struct {
	Argument string
	Reason   string
}

func (e *InvalidArgumentError) Error() string {
	return fmt.Sprintf("invalid argument %s: %s", e.Argument, e.Reason)
}

// BackendUnavailableError reports an unreachable or failing retrieval
// backend. It is caught inside the adapter boundary and converted into an
// empty result list; it never aborts a query.
type BackendUnavailableError struct {
	Backend string
	Err     error
}

func (e *BackendUnavailableError) Error() string {
	return fmt.Sprintf("backend %s unavailable: %v", e.Backend, e.Err)
}

func (e *BackendUnavailableError) Unwrap() error { return e.Err }

// CorruptIndexError reports a persisted index whose artifacts cannot be
// decoded or whose vector and chunk counts disagree. Fatal on restore.
type CorruptIndexError struct {
	Location string
	Reason   string
}

func (e *CorruptIndexError) Error() string {
	return fmt.Sprintf("corrupt index at %s: %s", e.Location, e.Reason)
}
