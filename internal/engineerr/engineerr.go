// Package engineerr is the error taxonomy described by spec.md §7: not three
// custom exception types, but a small set of sentinel values plus two
// helpers, matching the teacher's habit of plain error values (errors.New,
// wrapped with fmt.Errorf("%s: %w", ...)) instead of a type hierarchy.
package engineerr

import "errors"

// Sentinel kinds. Use errors.Is against these after wrapping with fmt.Errorf.
var (
	// InvariantViolation marks an internal bug (e.g. a cycle in the include
	// map, or a cast-kind switch hitting an unhandled variant). The process
	// must abort after logging it.
	InvariantViolation = errors.New("invariant violation")

	// UnsupportedInput marks a source-language feature the core does not
	// model. Analysis continues; the use is recorded conservatively as full.
	UnsupportedInput = errors.New("unsupported input")

	// MissingSymbol marks a referenced declaration with no known location.
	MissingSymbol = errors.New("missing symbol location")

	// PickerAlreadyFinalized is returned by IncludePicker mutators once
	// finalize() has run (spec.md §5: "a mutation attempt ... fails").
	PickerAlreadyFinalized = errors.New("include picker already finalized")

	// CycleInMapping is returned when transitive closure of the include map
	// detects a cycle on private keys (spec.md §4.2).
	CycleInMapping = errors.New("cycle in include mapping")
)

// IsUnsupported reports whether err (or anything it wraps) is an
// UnsupportedInput condition.
func IsUnsupported(err error) bool {
	return errors.Is(err, UnsupportedInput)
}

// IsInvariantViolation reports whether err (or anything it wraps) is an
// InvariantViolation condition.
func IsInvariantViolation(err error) bool {
	return errors.Is(err, InvariantViolation)
}

// AsFatal panics with err if it is an InvariantViolation. No caller
// recovers the panic, so the Go runtime prints err with a stack trace and
// exits the process with status 2.
func AsFatal(err error) {
	if err == nil {
		return
	}
	if IsInvariantViolation(err) {
		panic(err)
	}
}
