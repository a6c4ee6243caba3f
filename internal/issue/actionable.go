// SPDX-License-Identifier: MPL-2.0

package issue

import (
	"errors"
	"fmt"
	"strings"
)

type (
	// ActionableError is a user-facing failure: the operation that failed, the
	// module, file or bundle it was working on, and what the user can do
	// about it. IssueId optionally links a catalog entry rendered below the
	// message.
	//
	//	return issue.NewErrorContext().
	//		WithOperation("open bundle").
	//		WithResource("vendor/shlib.zip").
	//		WithSuggestion("Check that the file is a zip archive").
	//		WithIssue(issue.InvalidBundleId).
	//		Wrap(err).
	//		BuildError()
	ActionableError struct {
		Operation   string
		Resource    string
		Suggestions []string
		Cause       error
		IssueId     Id
	}

	// ErrorContext accumulates the fields of an ActionableError. A context
	// can be prepared before the failing call and finished with Wrap.
	ErrorContext struct {
		err ActionableError
	}
)

// NewErrorContext returns an empty builder.
func NewErrorContext() *ErrorContext {
	return &ErrorContext{}
}

// WrapWithContext attaches operation and resource to err. It returns nil for
// a nil err. The loader sentinels stay reachable through errors.Is.
func WrapWithContext(err error, operation, resource string) error {
	if err == nil {
		return nil
	}
	return &ActionableError{Operation: operation, Resource: resource, Cause: err}
}

// Error renders "failed to <operation>[: <resource>][: <cause>]".
func (e *ActionableError) Error() string {
	parts := []string{"failed to " + e.Operation}
	if e.Resource != "" {
		parts = append(parts, e.Resource)
	}
	if e.Cause != nil {
		parts = append(parts, e.Cause.Error())
	}
	return strings.Join(parts, ": ")
}

func (e *ActionableError) Unwrap() error {
	return e.Cause
}

// Format returns Error followed by one bullet per suggestion. With verbose
// set, the numbered chain of wrapped causes is appended.
func (e *ActionableError) Format(verbose bool) string {
	var b strings.Builder
	b.WriteString(e.Error())

	if len(e.Suggestions) > 0 {
		b.WriteString("\n")
		for _, s := range e.Suggestions {
			b.WriteString("\n  • " + s)
		}
	}

	if verbose && e.Cause != nil {
		b.WriteString("\n\nError chain:")
		for i, err := 1, e.Cause; err != nil; i, err = i+1, errors.Unwrap(err) {
			fmt.Fprintf(&b, "\n  %d. %s", i, err)
		}
	}
	return b.String()
}

func (c *ErrorContext) WithOperation(op string) *ErrorContext {
	c.err.Operation = op
	return c
}

func (c *ErrorContext) WithResource(res string) *ErrorContext {
	c.err.Resource = res
	return c
}

// WithSuggestion appends one suggestion; suggestions print in call order.
func (c *ErrorContext) WithSuggestion(s string) *ErrorContext {
	c.err.Suggestions = append(c.err.Suggestions, s)
	return c
}

func (c *ErrorContext) WithIssue(id Id) *ErrorContext {
	c.err.IssueId = id
	return c
}

func (c *ErrorContext) Wrap(err error) *ErrorContext {
	c.err.Cause = err
	return c
}

// Build returns a copy of the accumulated error, or nil when no operation
// was set. Later changes to the builder do not affect built errors.
func (c *ErrorContext) Build() *ActionableError {
	if c.err.Operation == "" {
		return nil
	}
	e := c.err
	e.Suggestions = append([]string(nil), c.err.Suggestions...)
	return &e
}

// BuildError is Build returning a plain error, so that a missing operation
// yields an untyped nil.
func (c *ErrorContext) BuildError() error {
	if e := c.Build(); e != nil {
		return e
	}
	return nil
}
