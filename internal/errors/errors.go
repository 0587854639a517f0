// gamestats: release tallies and award prediction over game release exports
// SPDX-License-Identifier: MIT
//
// Typed errors and error codes shared by every pipeline stage.

package errors

import (
	stderrors "errors"
	"fmt"
	"sort"
	"strings"
)

type ErrorCode string

const (
	CodeIO               ErrorCode = "IO_ERROR"
	CodeSchema           ErrorCode = "SCHEMA_ERROR"
	CodeEncodingMismatch ErrorCode = "ENCODING_MISMATCH"
	CodeEmptyAggregate   ErrorCode = "EMPTY_AGGREGATE"
	CodeInvalidInput     ErrorCode = "INVALID_INPUT"
	CodeInternalError    ErrorCode = "INTERNAL_ERROR"
)

type Error struct {
	Code    ErrorCode      `json:"code"`
	Message string         `json:"message"`
	Hint    string         `json:"hint,omitempty"`
	Details map[string]any `json:"details,omitempty"`
	cause   error
}

func (e *Error) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s: %s", e.Code, e.Message)
	if len(e.Details) > 0 {
		keys := make([]string, 0, len(e.Details))
		for k := range e.Details {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			fmt.Fprintf(&b, " %s=%v", k, e.Details[k])
		}
	}
	return b.String()
}

func (e *Error) Unwrap() error { return e.cause }

func New(code ErrorCode, msg, hint string, details map[string]any) *Error {
	return &Error{Code: code, Message: msg, Hint: hint, Details: sanitize(details)}
}

// Wrap is New with an underlying cause kept for errors.Is/As.
func Wrap(code ErrorCode, cause error, msg string, details map[string]any) *Error {
	e := New(code, msg, "", details)
	e.cause = cause
	if cause != nil {
		if e.Details == nil {
			e.Details = map[string]any{}
		}
		e.Details["cause"] = cause.Error()
	}
	return e
}

func NewIO(path string, cause error) *Error {
	e := Wrap(CodeIO, cause, "read input failed", map[string]any{"path": path})
	e.Hint = "check that the data directory layout is present"
	return e
}

func NewNoInputFiles(dir, pattern string) *Error {
	return New(CodeIO, "no input files matched", "check data_dir and the file pattern", map[string]any{"dir": dir, "pattern": pattern})
}

func NewMissingColumn(path, column string) *Error {
	return New(CodeSchema, "missing expected column", "check the CSV header", map[string]any{"path": path, "column": column})
}

func NewShortRow(path, column string, row int) *Error {
	return New(CodeSchema, "row lacks expected column", "", map[string]any{"path": path, "column": column, "row": row})
}

func NewBadValue(column string, row int, value string) *Error {
	return New(CodeSchema, "non-numeric feature value", "list the column under categorical_columns or drop_columns", map[string]any{"column": column, "row": row, "value": value})
}

func NewEmptyAggregate(what string) *Error {
	return New(CodeEmptyAggregate, "nothing to aggregate", "input contained no rows", map[string]any{"what": what})
}

func NewEncodingMismatch(columns []string) *Error {
	return New(CodeEncodingMismatch, "literal values not seen during training", "set unknown_categories=ignore to predict anyway", map[string]any{"columns": strings.Join(columns, ", ")})
}

func NewInvalidInput(msg, hint string, details map[string]any) *Error {
	return New(CodeInvalidInput, msg, hint, details)
}

func NewInternal(err error) *Error {
	if err == nil {
		return New(CodeInternalError, "internal error", "see logs", nil)
	}
	return Wrap(CodeInternalError, err, "internal error", nil)
}

// From converts any error to an *Error; unknown errors are wrapped as internal.
func From(err error) *Error {
	if err == nil {
		return nil
	}
	var e *Error
	if stderrors.As(err, &e) {
		return e
	}
	return NewInternal(err)
}

// CodeOf returns the code of err, or "" for nil.
func CodeOf(err error) ErrorCode {
	if err == nil {
		return ""
	}
	return From(err).Code
}

func sanitize(details map[string]any) map[string]any {
	if details == nil {
		return nil
	}
	out := make(map[string]any, len(details))
	for k, v := range details {
		out[k] = fmt.Sprint(v)
	}
	return out
}
