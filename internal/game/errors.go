package game

import "fmt"

// ParseError is a malformed chart. Line is 1-based, 0 when the problem is
// not tied to a single line.
type ParseError struct {
	Line   int
	Reason string
}

func (e *ParseError) Error() string {
	if e.Line <= 0 {
		return "chart: " + e.Reason
	}
	return fmt.Sprintf("line %d: %s", e.Line, e.Reason)
}

// StructuralError is a broken note chain: a dangling or cyclic NextID.
type StructuralError struct {
	NoteID int
	Reason string
}

func (e *StructuralError) Error() string {
	return fmt.Sprintf("note %d: %s", e.NoteID, e.Reason)
}

// InputOutOfRange is a pointer event for a finger that is not tracked.
// The router logs it and carries on.
type InputOutOfRange struct {
	Finger int
	Phase  Phase
}

func (e *InputOutOfRange) Error() string {
	return fmt.Sprintf("%v event for untracked finger %d", e.Phase, e.Finger)
}

// InvariantViolation is a programming error and is only ever panicked.
type InvariantViolation struct {
	Reason string
}

func (e *InvariantViolation) Error() string {
	return "invariant violated: " + e.Reason
}
