package arenatree

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFreeNode is returned when a node that must be a free root has a
	// parent or siblings.
	ErrNotFreeNode = errors.New("node is not a free root")
	// ErrRootSibling is returned when a sibling is inserted next to a root.
	ErrRootSibling = errors.New("root node cannot have siblings")
	// ErrCycle is returned when attaching a node would make it its own ancestor.
	ErrCycle = errors.New("attachment would create a cycle")
)

// NodeError describes a rejected tree operation.
//
// The sentinel cause can be matched with errors.Is.
type NodeError struct {
	Op    string
	Token Token
	Other Token
	cause error
}

func (e *NodeError) Error() string {
	if e.Other.IsZero() {
		return fmt.Sprintf("%s %s: %v", e.Op, e.Token, e.cause)
	}

	return fmt.Sprintf("%s %s with %s: %v", e.Op, e.Token, e.Other, e.cause)
}

func (e *NodeError) Unwrap() error { return e.cause }

func nodeError(op string, t, other Token, cause error) *NodeError {
	return &NodeError{Op: op, Token: t, Other: other, cause: cause}
}

// InvariantError reports a broken structural invariant or a stale token.
//
// Tree operations panic with an *InvariantError; Validate returns one.
type InvariantError struct {
	Op     string
	Token  Token
	Reason string
}

func (e *InvariantError) Error() string {
	return fmt.Sprintf("arenatree: %s %s: %s", e.Op, e.Token, e.Reason)
}

func invariant(op string, t Token, format string, args ...any) *InvariantError {
	return &InvariantError{Op: op, Token: t, Reason: fmt.Sprintf(format, args...)}
}
