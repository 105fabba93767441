package domain

import (
	"errors"
	"fmt"
)

// ErrKeyNotFound is returned by a KVStore when a key has never been set.
var ErrKeyNotFound = errors.New("key not found")

// ForbiddenKeywordError is raised when an expression source contains a
// denylisted identifier. The expression is never executed.
type ForbiddenKeywordError struct {
	Keyword string // The substring that matched
	Source  string // The offending expression source
}

func (e *ForbiddenKeywordError) Error() string {
	return fmt.Sprintf("forbidden keyword %q in expression %q", e.Keyword, e.Source)
}

// EvaluationError wraps any compile or runtime failure inside the sandbox.
type EvaluationError struct {
	Source string
	Err    error
}

func (e *EvaluationError) Error() string {
	return fmt.Sprintf("evaluation of %q failed: %s", e.Source, e.Err.Error())
}

func (e *EvaluationError) Unwrap() error {
	return e.Err
}

// ErrEmptyActionID is returned when registering a definition without an id.
var ErrEmptyActionID = errors.New("action id must not be empty")

// UnknownActionTypeError is returned when registering a definition whose
// variant is outside the closed set.
type UnknownActionTypeError struct {
	ID   string
	Type ActionType
}

func (e *UnknownActionTypeError) Error() string {
	return fmt.Sprintf("action %q has unknown type %q", e.ID, e.Type)
}
