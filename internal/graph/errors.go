package graph

import "fmt"

// TypeCheckError reports a violated operator input contract. It is
// raised at apply time, before any computation runs, and names the
// exact failed expectation (e.g. "input[0].ndim >= 2").
type TypeCheckError struct {
	Op         string // operator name
	Index      int    // offending input index, -1 when not input-specific
	Constraint string // human-readable violated constraint
}

// NewTypeCheckError builds a TypeCheckError for one input position.
func NewTypeCheckError(op string, index int, format string, args ...any) *TypeCheckError {
	return &TypeCheckError{Op: op, Index: index, Constraint: fmt.Sprintf(format, args...)}
}

func (e *TypeCheckError) Error() string {
	if e.Index >= 0 {
		return fmt.Sprintf("%s: type check failed for input[%d]: %s", e.Op, e.Index, e.Constraint)
	}
	return fmt.Sprintf("%s: type check failed: %s", e.Op, e.Constraint)
}

// GradientContractError reports a backward-gradient function that broke
// its contract: wrong gradient count, mismatched shape/dtype, or (in
// debug mode) a NaN gradient.
type GradientContractError struct {
	Op     string
	Reason string
}

func (e *GradientContractError) Error() string {
	return fmt.Sprintf("%s: gradient contract violation: %s", e.Op, e.Reason)
}

func gradContractf(op string, format string, args ...any) *GradientContractError {
	return &GradientContractError{Op: op, Reason: fmt.Sprintf(format, args...)}
}
