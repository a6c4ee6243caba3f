// SPDX-License-Identifier: MPL-2.0

package runtime

import (
	"errors"
	"fmt"
)

var (
	// ErrCompile is the sentinel error wrapped by CompileError.
	ErrCompile = errors.New("compile error")
	// ErrScriptFailed is the sentinel error wrapped by ScriptError.
	ErrScriptFailed = errors.New("script failed")
	// ErrBytecodeFormat is the sentinel error wrapped by BytecodeFormatError.
	ErrBytecodeFormat = errors.New("bytecode format error")
	// ErrLink is the sentinel error wrapped by LinkError.
	ErrLink = errors.New("native link error")
	// ErrNoSession is returned by the loader builtins when the running module
	// was not started by a loader session.
	ErrNoSession = errors.New("no loader session in context")
)

type (
	// CompileError is returned when a module does not parse.
	// It wraps ErrCompile for errors.Is() compatibility.
	CompileError struct {
		Signature string
		Err       error
	}

	// ScriptError is returned when a module exits with a non-zero status.
	ScriptError struct {
		Signature string
		Status    int
	}

	// BytecodeFormatError is returned when a bytecode header is rejected.
	BytecodeFormatError struct {
		Signature string
		Reason    string
	}

	// LinkError is returned when a native extension cannot be linked or its
	// entry point fails.
	LinkError struct {
		Signature string
		Reason    string
		Err       error
	}
)

// Error implements the error interface.
func (e *CompileError) Error() string {
	return fmt.Sprintf("%s: %v", e.Signature, e.Err)
}

// Unwrap returns ErrCompile and the parser error.
func (e *CompileError) Unwrap() []error { return []error{ErrCompile, e.Err} }

// Error implements the error interface.
func (e *ScriptError) Error() string {
	return fmt.Sprintf("%s: exit status %d", e.Signature, e.Status)
}

// Unwrap returns ErrScriptFailed for errors.Is() compatibility.
func (e *ScriptError) Unwrap() error { return ErrScriptFailed }

// Error implements the error interface.
func (e *BytecodeFormatError) Error() string {
	return fmt.Sprintf("%s - %s", e.Reason, e.Signature)
}

// Unwrap returns ErrBytecodeFormat for errors.Is() compatibility.
func (e *BytecodeFormatError) Unwrap() error { return ErrBytecodeFormat }

// Error implements the error interface.
func (e *LinkError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Signature, e.Reason, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Signature, e.Reason)
}

// Unwrap returns ErrLink and the underlying cause.
func (e *LinkError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrLink}
	}
	return []error{ErrLink, e.Err}
}
