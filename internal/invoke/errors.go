package invoke

import "fmt"

// InvocationError is returned only after every model/retry combination for
// a stage has been exhausted. The last underlying error is preserved and
// never replaced with a synthetic one.
type InvocationError struct {
	// Stage is the pipeline stage that was being invoked.
	Stage Stage
	// Models lists the candidate models that were attempted, in order.
	Models []string
	// Err is the last error observed across all attempts.
	Err error
}

func (e *InvocationError) Error() string {
	return fmt.Sprintf("stage %s exhausted models %v: %v", e.Stage, e.Models, e.Err)
}

func (e *InvocationError) Unwrap() error {
	return e.Err
}

// fragmentLen bounds how much offending text a ParseError carries.
const fragmentLen = 200

// ParseError indicates model output that was not valid JSON or failed
// schema validation. Fragment preserves the start of the offending text
// for diagnostics.
type ParseError struct {
	// Fragment is the first 200 characters of the offending text.
	Fragment string
	// Err is the underlying JSON or validation error.
	Err error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse model output: %v (text: %q)", e.Err, e.Fragment)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// newParseError builds a ParseError with the text truncated to fragmentLen.
func newParseError(text string, err error) *ParseError {
	fragment := text
	if len(fragment) > fragmentLen {
		fragment = fragment[:fragmentLen]
	}
	return &ParseError{Fragment: fragment, Err: err}
}
