package report

import (
	"errors"
	"fmt"
)

// ErrorKind различает причины неудачи генерации отчета.
// ErrorKind discriminates why report generation failed.
type ErrorKind int

const (
	KindInternal ErrorKind = iota
	KindInvalidParams
	KindNotFound
	KindMissingResource
	KindInvalidRecord
)

func (k ErrorKind) String() string {
	switch k {
	case KindInvalidParams:
		return "invalid_params"
	case KindNotFound:
		return "not_found"
	case KindMissingResource:
		return "missing_resource"
	case KindInvalidRecord:
		return "invalid_record"
	default:
		return "internal"
	}
}

// Error - результат-ошибка на границе компонента.
// Op - имя операции, Msg - сообщение для клиента, Err - исходная причина.
type Error struct {
	Kind ErrorKind
	Op   string
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	msg := e.Msg
	if msg == "" {
		msg = e.Kind.String()
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Op, msg, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Op, msg)
}

func (e *Error) Unwrap() error { return e.Err }

// Is allows errors.Is(err, ErrInvalidParams) style checks by kind.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Op == "" && t.Msg == "" && t.Err == nil && t.Kind == e.Kind
}

// Sentinels for errors.Is.
var (
	ErrInvalidParams   = &Error{Kind: KindInvalidParams}
	ErrNotFound        = &Error{Kind: KindNotFound}
	ErrMissingResource = &Error{Kind: KindMissingResource}
	ErrInvalidRecord   = &Error{Kind: KindInvalidRecord}
)

func invalidParams(op, format string, args ...interface{}) error {
	return &Error{Kind: KindInvalidParams, Op: op, Msg: fmt.Sprintf(format, args...)}
}

// KindOf returns the kind of a report error, KindInternal for anything else.
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// Message returns the client-facing message of a report error.
func Message(err error) string {
	var e *Error
	if errors.As(err, &e) && e.Msg != "" {
		return e.Msg
	}
	return "internal error"
}
