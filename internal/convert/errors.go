package convert

import (
	"errors"
	"fmt"
)

// Kind classifies a failed conversion.
type Kind int

const (
	// KindNotFound means the source image path does not resolve.
	KindNotFound Kind = iota + 1
	// KindProcessing covers everything else: bad parameters, undecodable
	// images, a mesh that fails verification, write errors, cancellation.
	KindProcessing
)

func (k Kind) String() string {
	switch k {
	case KindNotFound:
		return "not found"
	case KindProcessing:
		return "processing failure"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Error is returned by Run for every failure.
type Error struct {
	Kind Kind
	Op   string // pipeline stage: validate, load, build, verify, save, preview
	Path string
	Err  error
}

func (e *Error) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("convert: %s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("convert: %s %s: %v", e.Op, e.Path, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// IsNotFound reports whether err is a conversion whose input was missing.
func IsNotFound(err error) bool {
	return kindOf(err) == KindNotFound
}

// IsProcessing reports whether err is any other conversion failure.
func IsProcessing(err error) bool {
	return kindOf(err) == KindProcessing
}

func kindOf(err error) Kind {
	var ce *Error
	if errors.As(err, &ce) {
		return ce.Kind
	}
	return 0
}

func processing(op, path string, err error) *Error {
	return &Error{Kind: KindProcessing, Op: op, Path: path, Err: err}
}
