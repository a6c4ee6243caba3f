// SPDX-License-Identifier: MPL-2.0

package loader

import (
	"context"

	"github.com/invowk/requireplus/pkg/vfs"
)

const (
	// FormSource is a script compiled and run from text.
	FormSource Form = iota
	// FormBytecode is a precompiled program.
	FormBytecode
	// FormNative is a native extension linked into the host.
	FormNative
)

type (
	// Form is one of the module forms probed for each provider.
	Form int

	// Artifact is a module file handed to a collaborator.
	Artifact struct {
		VFS       vfs.VFS
		Path      string
		Signature string
		Data      []byte
	}

	// SourceExecutor compiles and runs source modules. Errors are returned to
	// the requiring code unchanged.
	SourceExecutor interface {
		CompileAndRun(ctx context.Context, a Artifact) error
	}

	// BytecodeLoader validates and runs bytecode modules.
	BytecodeLoader interface {
		LoadAndRun(ctx context.Context, a Artifact) error
	}

	// NativeLinker links native extensions and runs their entry points.
	NativeLinker interface {
		LinkAndInit(ctx context.Context, a Artifact) error
	}

	// SourceFunc adapts a function to SourceExecutor.
	SourceFunc func(ctx context.Context, a Artifact) error
	// BytecodeFunc adapts a function to BytecodeLoader.
	BytecodeFunc func(ctx context.Context, a Artifact) error
	// NativeFunc adapts a function to NativeLinker.
	NativeFunc func(ctx context.Context, a Artifact) error
)

// Forms lists the module forms in probe order.
var Forms = []Form{FormSource, FormBytecode, FormNative}

// String returns the form name.
func (f Form) String() string {
	switch f {
	case FormSource:
		return "source"
	case FormBytecode:
		return "bytecode"
	case FormNative:
		return "native"
	default:
		return "unknown"
	}
}

// CompileAndRun calls f.
func (f SourceFunc) CompileAndRun(ctx context.Context, a Artifact) error { return f(ctx, a) }

// LoadAndRun calls f.
func (f BytecodeFunc) LoadAndRun(ctx context.Context, a Artifact) error { return f(ctx, a) }

// LinkAndInit calls f.
func (f NativeFunc) LinkAndInit(ctx context.Context, a Artifact) error { return f(ctx, a) }
