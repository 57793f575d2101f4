package csvparser

import (
	"errors"
	"fmt"

	"github.com/dmitrijs2005/aitooling/internal/common"
)

// ParseError describes why an upload was rejected. Kind is either
// common.ErrSchemaInvalid or common.ErrMalformedInput; both also match
// common.ErrInvalidFormat under errors.Is.
type ParseError struct {
	Kind error
	Line int
	Err  error
}

func (e *ParseError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("%v: line %d: %v", e.Kind, e.Line, e.Err)
	}
	return fmt.Sprintf("%v: %v", e.Kind, e.Err)
}

func (e *ParseError) Unwrap() []error {
	return []error{e.Kind, e.Err}
}

func (e *ParseError) Is(target error) bool {
	return target == common.ErrInvalidFormat
}

func schemaErr(line int, err error) *ParseError {
	return &ParseError{Kind: common.ErrSchemaInvalid, Line: line, Err: err}
}

func malformedErr(line int, err error) *ParseError {
	return &ParseError{Kind: common.ErrMalformedInput, Line: line, Err: err}
}

var (
	errEmptyField = errors.New("empty field")
	errNULByte    = errors.New("field contains NUL byte")
)
