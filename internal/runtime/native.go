// SPDX-License-Identifier: MPL-2.0

package runtime

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"
	"github.com/tetratelabs/wazero/imports/wasi_snapshot_preview1"
	"go.uber.org/zap"

	"github.com/invowk/requireplus/pkg/loader"
)

const (
	// EntryPrefix starts the exported names of native entry points.
	EntryPrefix = "rp_"
	// InitSuffix ends the name of the init entry point, rp_<base>_init.
	InitSuffix = "_init"
	// FinalSuffix ends the name of the finalizer, rp_<base>_final.
	FinalSuffix = "_final"
	// reactorInit is the WASI reactor initializer run on instantiation.
	reactorInit = "_initialize"
)

type (
	// HostModuleFunc registers host functions that native extensions import.
	HostModuleFunc func(ctx context.Context, r wazero.Runtime) error

	// NativeLinker links WebAssembly extensions with wazero. Each extension is
	// instantiated under its signature, so it is linked once per runtime.
	NativeLinker struct {
		runtime     wazero.Runtime
		exts        []string
		hostModules []HostModuleFunc
		memoryPages uint32
		stdout      io.Writer
		stderr      io.Writer
		linked      []linkedModule
		logger      *zap.Logger
	}

	// NativeOption configures a NativeLinker.
	NativeOption func(*NativeLinker)

	linkedModule struct {
		signature string
		base      string
		module    api.Module
	}
)

// NewNativeLinker creates a wazero runtime with WASI preview1 and the
// registered host modules.
func NewNativeLinker(ctx context.Context, opts ...NativeOption) (*NativeLinker, error) {
	l := &NativeLinker{
		exts:   []string{".wasm"},
		stdout: io.Discard,
		stderr: io.Discard,
		logger: NativeLogger(),
	}
	for _, opt := range opts {
		opt(l)
	}

	cfg := wazero.NewRuntimeConfig()
	if l.memoryPages > 0 {
		cfg = cfg.WithMemoryLimitPages(l.memoryPages)
	}
	l.runtime = wazero.NewRuntimeWithConfig(ctx, cfg)

	if _, err := wasi_snapshot_preview1.Instantiate(ctx, l.runtime); err != nil {
		_ = l.runtime.Close(ctx)
		return nil, fmt.Errorf("instantiate wasi: %w", err)
	}
	for _, fn := range l.hostModules {
		if err := fn(ctx, l.runtime); err != nil {
			_ = l.runtime.Close(ctx)
			return nil, fmt.Errorf("instantiate host module: %w", err)
		}
	}
	return l, nil
}

// WithHostModule registers host functions before any extension is linked.
func WithHostModule(fn HostModuleFunc) NativeOption {
	return func(l *NativeLinker) { l.hostModules = append(l.hostModules, fn) }
}

// WithMemoryLimitPages caps the memory of each extension in 64 KiB pages.
func WithMemoryLimitPages(pages uint32) NativeOption {
	return func(l *NativeLinker) { l.memoryPages = pages }
}

// WithNativeExtensions sets the extensions stripped when deriving entry point names.
func WithNativeExtensions(exts ...string) NativeOption {
	return func(l *NativeLinker) { l.exts = exts }
}

// WithNativeStdio sets the WASI stdout and stderr of extensions.
func WithNativeStdio(stdout, stderr io.Writer) NativeOption {
	return func(l *NativeLinker) { l.stdout, l.stderr = stdout, stderr }
}

// WithNativeLogger replaces the package logger for this linker.
func WithNativeLogger(logger *zap.Logger) NativeOption {
	return func(l *NativeLinker) {
		if logger != nil {
			l.logger = logger
		}
	}
}

// Runtime returns the underlying wazero runtime.
func (l *NativeLinker) Runtime() wazero.Runtime { return l.runtime }

// LinkAndInit implements loader.NativeLinker.
//
// The module is compiled and instantiated, which runs _initialize when it is
// exported; then rp_<base>_init is called when exported. A module exporting
// neither is rejected.
func (l *NativeLinker) LinkAndInit(ctx context.Context, a loader.Artifact) error {
	base := EntryBase(a.Path, l.exts)
	initName := EntryPrefix + base + InitSuffix
	log := l.logger.With(zap.String("signature", a.Signature), zap.String("entry", initName))

	compiled, err := l.runtime.CompileModule(ctx, a.Data)
	if err != nil {
		return &LinkError{Signature: a.Signature, Reason: "compile", Err: err}
	}
	exports := compiled.ExportedFunctions()
	_, hasInit := exports[initName]
	_, hasReactor := exports[reactorInit]
	if !hasInit && !hasReactor {
		_ = compiled.Close(ctx)
		return &LinkError{Signature: a.Signature, Reason: fmt.Sprintf("no entry point: expected %s or %s", initName, reactorInit)}
	}

	cfg := wazero.NewModuleConfig().
		WithName(a.Signature).
		WithStartFunctions(reactorInit).
		WithStdout(l.stdout).
		WithStderr(l.stderr)
	mod, err := l.runtime.InstantiateModule(ctx, compiled, cfg)
	if err != nil {
		_ = compiled.Close(ctx)
		return &LinkError{Signature: a.Signature, Reason: "instantiate", Err: err}
	}

	if hasInit {
		if _, err := mod.ExportedFunction(initName).Call(ctx); err != nil {
			_ = mod.Close(ctx)
			return &LinkError{Signature: a.Signature, Reason: initName, Err: err}
		}
	}

	l.linked = append(l.linked, linkedModule{signature: a.Signature, base: base, module: mod})
	log.Debug("native extension linked", zap.Bool("reactor", hasReactor))
	return nil
}

// Linked returns the signatures of the linked extensions in link order.
func (l *NativeLinker) Linked() []string {
	sigs := make([]string, 0, len(l.linked))
	for _, m := range l.linked {
		sigs = append(sigs, m.signature)
	}
	return sigs
}

// Close calls rp_<base>_final of every linked extension in reverse link
// order, then closes the runtime. Finalizer errors are joined.
func (l *NativeLinker) Close(ctx context.Context) error {
	var errs []error
	for i := len(l.linked) - 1; i >= 0; i-- {
		m := l.linked[i]
		fn := m.module.ExportedFunction(EntryPrefix + m.base + FinalSuffix)
		if fn == nil {
			continue
		}
		if _, err := fn.Call(ctx); err != nil {
			l.logger.Warn("native finalizer failed", zap.String("signature", m.signature), zap.Error(err))
			errs = append(errs, &LinkError{Signature: m.signature, Reason: EntryPrefix + m.base + FinalSuffix, Err: err})
		}
	}
	l.linked = nil
	if err := l.runtime.Close(ctx); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// EntryBase derives the entry point infix from a module path: the base name
// without its native extension, with every byte other than an ASCII letter or
// digit replaced by an underscore.
func EntryBase(p string, exts []string) string {
	name := path.Base(p)
	stripped := false
	for _, ext := range exts {
		if ext != "" && strings.HasSuffix(name, ext) && len(name) > len(ext) {
			name = strings.TrimSuffix(name, ext)
			stripped = true
			break
		}
	}
	if !stripped {
		if ext := loader.Extname(name); ext != "" {
			name = strings.TrimSuffix(name, ext)
		}
	}

	var b strings.Builder
	b.Grow(len(name))
	for i := 0; i < len(name); i++ {
		c := name[i]
		if (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9') {
			b.WriteByte(c)
		} else {
			b.WriteByte('_')
		}
	}
	return b.String()
}
