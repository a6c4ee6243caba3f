// SPDX-License-Identifier: MPL-2.0

package runtime

import (
	"context"
	"fmt"
	"path/filepath"

	"mvdan.cc/sh/v3/interp"

	"github.com/invowk/requireplus/pkg/loader"
)

const (
	// BuiltinRequire loads features along the search path.
	BuiltinRequire = "require"
	// BuiltinRequireRelative loads features next to the running module.
	BuiltinRequireRelative = "require_relative"
	// BuiltinLoad runs source files unconditionally.
	BuiltinLoad = "load"
)

type builtinFunc func(ctx context.Context, hc interp.HandlerContext, args []string) error

var builtins = map[string]builtinFunc{
	BuiltinRequire:         builtinRequire,
	BuiltinRequireRelative: builtinRequireRelative,
	BuiltinLoad:            builtinLoad,
}

// Builtins returns the names of the loader builtins.
func Builtins() []string {
	return []string{BuiltinRequire, BuiltinRequireRelative, BuiltinLoad}
}

func builtinRequire(ctx context.Context, hc interp.HandlerContext, args []string) error {
	return eachArg(ctx, hc, BuiltinRequire, "FEATURE", args, func(s *loader.Session, arg string) error {
		_, err := s.Require(ctx, arg)
		return err
	})
}

func builtinRequireRelative(ctx context.Context, hc interp.HandlerContext, args []string) error {
	return eachArg(ctx, hc, BuiltinRequireRelative, "FEATURE", args, func(s *loader.Session, arg string) error {
		_, err := s.RequireRelative(ctx, arg)
		return err
	})
}

func builtinLoad(ctx context.Context, hc interp.HandlerContext, args []string) error {
	return eachArg(ctx, hc, BuiltinLoad, "FILE", args, func(s *loader.Session, arg string) error {
		if !filepath.IsAbs(arg) && hc.Dir != "" {
			arg = filepath.Join(hc.Dir, arg)
		}
		_, err := s.Load(ctx, arg)
		return err
	})
}

func eachArg(ctx context.Context, hc interp.HandlerContext, name, metavar string, args []string, fn func(*loader.Session, string) error) error {
	if len(args) == 0 {
		fmt.Fprintf(hc.Stderr, "usage: %s %s...\n", name, metavar)
		return interp.ExitStatus(2)
	}
	s, ok := loader.SessionFromContext(ctx)
	if !ok {
		return fmt.Errorf("%s: %w", name, ErrNoSession)
	}
	for _, arg := range args {
		if err := fn(s, arg); err != nil {
			return err
		}
	}
	return nil
}
