package telemetry

import (
	"fmt"
	"os"
	"time"

	"github.com/pkg/errors"
)

// FailureKind is the closed set of failure categories the sampling loop
// can report. Each kind maps to exactly one status indicator pattern.
type FailureKind int

const (
	// FailureLink: association could not be established or verified
	FailureLink FailureKind = iota
	// FailureBus: the transport rejected a write or read
	FailureBus
	// FailureSensor: the sensor is absent, won't start, or returns
	// corrupt data
	FailureSensor
	// FailureUnexpected: anything else caught at the outermost level
	FailureUnexpected
)

func (k FailureKind) String() string {
	switch k {
	case FailureLink:
		return "link"
	case FailureBus:
		return "bus"
	case FailureSensor:
		return "sensor"
	default:
		return "unexpected"
	}
}

// Failure tags an error with the loop phase it came from.
type Failure struct {
	Kind FailureKind
	Err  error
}

func (f *Failure) Error() string {
	return fmt.Sprintf("%s failure: %v", f.Kind, f.Err)
}

func (f *Failure) Unwrap() error {
	return f.Err
}

func fail(kind FailureKind, err error) *Failure {
	return &Failure{Kind: kind, Err: err}
}

// KindOf extracts the failure kind from an error chain, defaulting to
// FailureUnexpected.
func KindOf(err error) FailureKind {
	var failure *Failure
	if errors.As(err, &failure) {
		return failure.Kind
	}
	return FailureUnexpected
}

// errorLog appends loop failures to a local file for a device with no
// other operator access. Append failures are swallowed; the log is
// best-effort observability, never control flow.
type errorLog struct {
	path string
}

func (l errorLog) append(err error) {
	if l.path == "" {
		return
	}

	f, ferr := os.OpenFile(l.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if ferr != nil {
		return
	}
	defer f.Close()

	fmt.Fprintf(f, "%s %v\n", time.Now().Format(time.RFC3339), err)
}
