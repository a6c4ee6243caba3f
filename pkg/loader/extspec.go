// SPDX-License-Identifier: MPL-2.0

package loader

import "strings"

// ExtSpec is an extension or an ordered group of extension specs. Groups may
// nest; Flatten yields the extensions depth-first in declaration order.
// The zero value is an empty group.
type ExtSpec struct {
	ext   string
	group []ExtSpec
}

// Ext returns a spec holding a single extension such as ".sh".
func Ext(ext string) ExtSpec {
	return ExtSpec{ext: ext}
}

// Group returns a spec that tries each member in order.
func Group(specs ...ExtSpec) ExtSpec {
	return ExtSpec{group: specs}
}

// Exts is shorthand for a flat group of single extensions.
func Exts(exts ...string) ExtSpec {
	specs := make([]ExtSpec, 0, len(exts))
	for _, e := range exts {
		specs = append(specs, Ext(e))
	}
	return Group(specs...)
}

// IsGroup reports whether s is a group rather than a single extension.
func (s ExtSpec) IsGroup() bool { return s.ext == "" }

// Flatten returns the extensions of s depth-first, preserving order.
// Empty extensions are dropped.
func (s ExtSpec) Flatten() []string {
	return s.appendTo(nil)
}

func (s ExtSpec) appendTo(out []string) []string {
	if !s.IsGroup() {
		return append(out, s.ext)
	}
	for _, member := range s.group {
		out = member.appendTo(out)
	}
	return out
}

// Contains reports whether ext is one of the flattened extensions.
func (s ExtSpec) Contains(ext string) bool {
	for _, e := range s.Flatten() {
		if e == ext {
			return true
		}
	}
	return false
}

// String renders the spec with nesting, e.g. "[.sh [.bash .ksh]]".
func (s ExtSpec) String() string {
	if !s.IsGroup() {
		return s.ext
	}
	parts := make([]string, 0, len(s.group))
	for _, member := range s.group {
		parts = append(parts, member.String())
	}
	return "[" + strings.Join(parts, " ") + "]"
}
