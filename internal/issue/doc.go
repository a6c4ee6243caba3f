// SPDX-License-Identifier: MPL-2.0

// Package issue provides actionable error handling with user-friendly messages.
//
// ActionableError carries the failed operation, the resource involved and
// suggestions for fixing it. Errors can be linked to a catalogued Issue whose
// Markdown guidance is rendered with glamour by the CLI.
package issue
