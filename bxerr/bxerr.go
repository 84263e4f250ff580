// Package bxerr carries the error taxonomy spec.md §7 defines for the
// updater: fatal programmer errors, and the two unimplemented tree-accessor
// stubs. Grounded on conc_tree.cpp's ASSERT_MSG call sites (bucket overflow,
// remove-of-absent, immediate-into-frontier) and its two
// `throw "not implemented!"` sites in serialize_tree/construct_tree.
package bxerr

import "github.com/pkg/errors"

// FaultError marks a broken invariant — bucket capacity exceeded, an
// immediate operand reaching the frontier, or a remove of an operand that
// isn't present. spec.md §7 calls these "assertions that abort": callers
// must not attempt to recover from a FaultError, only surface it.
type FaultError struct {
	err error
}

func (f *FaultError) Error() string { return f.err.Error() }

func (f *FaultError) Unwrap() error { return f.err }

// Fault wraps msg with a captured stack and returns it as an error suitable
// for panic(). Named Fault (not "New") because every call site is a panic
// argument, never a returned, inspected error.
func Fault(msg string) error {
	return &FaultError{err: errors.New(msg)}
}

// ErrUnimplemented is returned by SerializeTree and ConstructTree (spec.md
// §4.7/§7): the core's tree-serialisation surface is declared but
// intentionally unimplemented, so the updater can stay pure with respect to
// I/O. Callers must not depend on it in the core's test suite (spec.md §7).
var ErrUnimplemented = errors.New("buildex: not implemented")
