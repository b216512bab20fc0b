package ast

import (
	"errors"
	"fmt"
)

// Operation names the step that failed for a file.
type Operation string

const (
	OpRead    Operation = "read"
	OpDecode  Operation = "decode"
	OpParse   Operation = "parse"
	OpSyntax  Operation = "syntax"
	OpTimeout Operation = "timeout"
	OpPanic   Operation = "panic"
)

// QueryOp is the operation recorded when the query for kind k fails.
func QueryOp(k Kind) Operation {
	return Operation("query:" + string(k))
}

// ErrSyntax marks a file whose parse tree contains errors. Extraction still
// proceeds on the partial tree.
var ErrSyntax = errors.New("syntax error")

// ErrNotUTF8 marks a file whose bytes are not valid UTF-8.
var ErrNotUTF8 = errors.New("content is not valid UTF-8")

// FileError is a failure attributed to one file.
type FileError struct {
	File      string
	Operation Operation
	Cause     error
}

func (e FileError) Error() string {
	return fmt.Sprintf("%s: %s: %v", e.File, e.Operation, e.Cause)
}

func (e FileError) Unwrap() error {
	return e.Cause
}
