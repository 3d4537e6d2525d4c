// Package errs defines the error kinds surfaced by the analytics pipeline.
package errs

import (
	"errors"
	"fmt"
)

type Kind int

const (
	KindUnknown Kind = iota
	// KindConfig: category map or other configuration missing or malformed.
	KindConfig
	// KindFetch: upstream source unreachable or returned an error payload.
	KindFetch
	// KindAnalysis: categorization, keyword extraction or sentiment failure.
	KindAnalysis
	// KindIO: report artifact write/read failure.
	KindIO
)

func (k Kind) String() string {
	switch k {
	case KindConfig:
		return "config"
	case KindFetch:
		return "fetch"
	case KindAnalysis:
		return "analysis"
	case KindIO:
		return "io"
	default:
		return "unknown"
	}
}

// Error carries the kind of failure and the operation that produced it.
type Error struct {
	Kind Kind
	Op   string
	Err  error
}

func (e *Error) Error() string {
	if e.Op == "" {
		return fmt.Sprintf("%s error: %v", e.Kind, e.Err)
	}
	return fmt.Sprintf("%s error: %s: %v", e.Kind, e.Op, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

func newError(kind Kind, op string, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Kind: kind, Op: op, Err: err}
}

func Config(op string, err error) error   { return newError(KindConfig, op, err) }
func Fetch(op string, err error) error    { return newError(KindFetch, op, err) }
func Analysis(op string, err error) error { return newError(KindAnalysis, op, err) }
func IO(op string, err error) error       { return newError(KindIO, op, err) }

// KindOf returns the kind of the first *Error in err's chain.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}
