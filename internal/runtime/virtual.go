// SPDX-License-Identifier: MPL-2.0

package runtime

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"

	"mvdan.cc/sh/v3/expand"
	"mvdan.cc/sh/v3/interp"
	"mvdan.cc/sh/v3/syntax"

	"github.com/invowk/requireplus/pkg/loader"
)

type (
	// VirtualRuntime runs shell modules with the embedded mvdan/sh interpreter.
	VirtualRuntime struct {
		dir    string
		env    []string
		args   []string
		stdin  io.Reader
		stdout io.Writer
		stderr io.Writer
		// external allows commands that are neither builtins nor functions
		// to run host binaries.
		external bool
	}

	// VirtualOption configures a VirtualRuntime.
	VirtualOption func(*VirtualRuntime)

	stdioKey struct{}

	stdio struct {
		in       io.Reader
		out, err io.Writer
	}
)

// NewVirtualRuntime creates a virtual runtime. By default it runs in the
// process working directory with the host environment, discards output and
// may execute host binaries.
func NewVirtualRuntime(opts ...VirtualOption) *VirtualRuntime {
	r := &VirtualRuntime{
		stdout:   io.Discard,
		stderr:   io.Discard,
		external: true,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// WithDir sets the interpreter working directory.
func WithDir(dir string) VirtualOption {
	return func(r *VirtualRuntime) { r.dir = dir }
}

// WithEnv replaces the host environment.
func WithEnv(env map[string]string) VirtualOption {
	return func(r *VirtualRuntime) { r.env = EnvToSlice(env) }
}

// WithArgs sets the positional parameters seen by every module.
func WithArgs(args ...string) VirtualOption {
	return func(r *VirtualRuntime) { r.args = args }
}

// WithStdIO sets the standard streams.
func WithStdIO(in io.Reader, out, err io.Writer) VirtualOption {
	return func(r *VirtualRuntime) {
		r.stdin, r.stdout, r.stderr = in, out, err
	}
}

// WithExternalCommands controls whether modules may run host binaries.
func WithExternalCommands(enabled bool) VirtualOption {
	return func(r *VirtualRuntime) { r.external = enabled }
}

// Name returns the runtime name
func (r *VirtualRuntime) Name() string {
	return "virtual"
}

// CompileAndRun implements loader.SourceExecutor.
func (r *VirtualRuntime) CompileAndRun(ctx context.Context, a loader.Artifact) error {
	prog, err := Parse(a.Data, a.Signature)
	if err != nil {
		return err
	}
	return r.Run(ctx, prog, a.Signature)
}

// LoadAndRun implements loader.BytecodeLoader.
func (r *VirtualRuntime) LoadAndRun(ctx context.Context, a loader.Artifact) error {
	payload, err := DecodeBytecode(a.Data, a.Signature)
	if err != nil {
		return err
	}
	prog, err := Parse(payload, a.Signature)
	if err != nil {
		return err
	}
	return r.Run(ctx, prog, a.Signature)
}

// Parse parses a shell program. Failures are returned as *CompileError.
func Parse(src []byte, name string) (*syntax.File, error) {
	prog, err := syntax.NewParser().Parse(bytes.NewReader(src), name)
	if err != nil {
		return nil, &CompileError{Signature: name, Err: err}
	}
	return prog, nil
}

// Run executes prog as the module identified by signature. A non-zero exit is
// returned as *ScriptError; errors raised by the loader builtins are returned
// unchanged.
func (r *VirtualRuntime) Run(ctx context.Context, prog *syntax.File, signature string) error {
	streams := r.streams(ctx)
	opts := []interp.RunnerOption{
		interp.Dir(r.dir),
		interp.Env(expand.ListEnviron(moduleEnv(r.env, signature)...)),
		interp.StdIO(streams.in, streams.out, streams.err),
		interp.ExecHandlers(r.execHandler),
	}

	// Prepend "--" so args like "-v" are not taken as shell options
	if len(r.args) > 0 {
		params := append([]string{"--"}, r.args...)
		opts = append(opts, interp.Params(params...))
	}

	runner, err := interp.New(opts...)
	if err != nil {
		return fmt.Errorf("failed to create interpreter: %w", err)
	}

	if err := runner.Run(ctx, prog); err != nil {
		var exitStatus interp.ExitStatus
		if errors.As(err, &exitStatus) {
			return &ScriptError{Signature: signature, Status: int(exitStatus)}
		}
		return err
	}
	return nil
}

// streams returns the streams of the requiring script when running nested in
// a builtin, so redirections on a require line apply to the loaded module.
func (r *VirtualRuntime) streams(ctx context.Context) stdio {
	if s, ok := ctx.Value(stdioKey{}).(stdio); ok {
		return s
	}
	return stdio{in: r.stdin, out: r.stdout, err: r.stderr}
}

// execHandler handles external command execution
func (r *VirtualRuntime) execHandler(next interp.ExecHandlerFunc) interp.ExecHandlerFunc {
	return func(ctx context.Context, args []string) error {
		if len(args) == 0 {
			return next(ctx, args)
		}
		if b, ok := builtins[args[0]]; ok {
			hc := interp.HandlerCtx(ctx)
			ctx = context.WithValue(ctx, stdioKey{}, stdio{in: hc.Stdin, out: hc.Stdout, err: hc.Stderr})
			return b(ctx, hc, args[1:])
		}
		if !r.external {
			hc := interp.HandlerCtx(ctx)
			fmt.Fprintf(hc.Stderr, "%s: command not found\n", args[0])
			return interp.ExitStatus(127)
		}
		return next(ctx, args)
	}
}
