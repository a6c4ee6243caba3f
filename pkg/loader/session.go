// SPDX-License-Identifier: MPL-2.0

package loader

import (
	"io"
	"os"

	"github.com/charmbracelet/log"
	"golang.org/x/exp/slices"

	"github.com/invowk/requireplus/pkg/vfs"
)

const (
	// DefaultLoadSizeMax is the initial load-size limit (4 MiB).
	DefaultLoadSizeMax int64 = 4 << 20
	// MinLoadSizeMax is the smallest limit SetLoadSizeMax accepts (16 KiB).
	MinLoadSizeMax int64 = 16 << 10
	// MaxLoadSizeMax is the largest limit SetLoadSizeMax accepts (64 MiB).
	MaxLoadSizeMax int64 = 64 << 20
	// DefaultMaxDepth bounds nested module loads.
	DefaultMaxDepth = 64
)

var (
	// DefaultSourceExts is the core source extension spec.
	DefaultSourceExts = Ext(".rb")
	// DefaultBytecodeExts is the core bytecode extension spec.
	DefaultBytecodeExts = Ext(".mrb")
	// DefaultNativeExts is the core native extension list.
	DefaultNativeExts = Exts(".so")
)

type (
	// Session owns the search path, the loaded set and the collaborators of
	// one runtime instance. A Session is not safe for concurrent use; hosts
	// running several script threads against one session must serialize calls.
	Session struct {
		searchPath  []vfs.VFS
		providers   map[string]vfs.VFS
		loaded      map[string]struct{}
		order       []string
		loadSizeMax int64

		sourceExts   ExtSpec
		bytecodeExts ExtSpec
		nativeExts   ExtSpec

		source   SourceExecutor
		bytecode BytecodeLoader
		native   NativeLinker

		logger   *log.Logger
		maxDepth int
		depth    int
		getwd    func() (string, error)
	}

	// Option configures a Session.
	Option func(*Session)
)

// New creates a session. Without options it has an empty search path, the
// core extension defaults and no collaborators, so every form is disabled.
func New(opts ...Option) *Session {
	s := &Session{
		providers:    make(map[string]vfs.VFS),
		loaded:       make(map[string]struct{}),
		loadSizeMax:  DefaultLoadSizeMax,
		sourceExts:   DefaultSourceExts,
		bytecodeExts: DefaultBytecodeExts,
		nativeExts:   DefaultNativeExts,
		logger:       log.New(io.Discard),
		maxDepth:     DefaultMaxDepth,
		getwd:        os.Getwd,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// WithSearchPath sets the initial search path. The first provider with a
// given prefix owns it; loading from a later provider with the same prefix
// fails with a PrefixCollisionError.
func WithSearchPath(path ...vfs.VFS) Option {
	return func(s *Session) {
		s.searchPath = slices.Clone(path)
		for _, v := range path {
			if _, ok := s.providers[v.Prefix()]; !ok {
				s.providers[v.Prefix()] = v
			}
		}
	}
}

// WithSourceExecutor enables the source form.
func WithSourceExecutor(x SourceExecutor) Option {
	return func(s *Session) {
		s.source = x
	}
}

// WithBytecodeLoader enables the bytecode form.
func WithBytecodeLoader(l BytecodeLoader) Option {
	return func(s *Session) {
		s.bytecode = l
	}
}

// WithNativeLinker enables the native form.
func WithNativeLinker(l NativeLinker) Option {
	return func(s *Session) {
		s.native = l
	}
}

// WithExtensions replaces the extension specs of the three forms.
func WithExtensions(source, bytecode, native ExtSpec) Option {
	return func(s *Session) {
		s.sourceExts = source
		s.bytecodeExts = bytecode
		s.nativeExts = native
	}
}

// WithLoadSizeMax sets the load-size limit, clamped like SetLoadSizeMax.
func WithLoadSizeMax(n int64) Option {
	return func(s *Session) {
		s.SetLoadSizeMax(n)
	}
}

// WithLogger sets the debug logger.
func WithLogger(l *log.Logger) Option {
	return func(s *Session) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithMaxDepth sets the nesting bound of module loads. Values below one
// disable the bound.
func WithMaxDepth(n int) Option {
	return func(s *Session) {
		s.maxDepth = n
	}
}

// WithGetwd overrides how direct loads find the working directory.
func WithGetwd(fn func() (string, error)) Option {
	return func(s *Session) {
		if fn != nil {
			s.getwd = fn
		}
	}
}

// SearchPath returns a copy of the search path.
func (s *Session) SearchPath() []vfs.VFS {
	return slices.Clone(s.searchPath)
}

// SetSearchPath replaces the search path. It fails without changing anything
// if two different providers share a prefix, or if a provider reuses the
// prefix of a different one the session has already seen.
func (s *Session) SetSearchPath(path []vfs.VFS) error {
	seen := make(map[string]vfs.VFS, len(path))
	for _, v := range path {
		if prev, ok := seen[v.Prefix()]; ok && !sameProvider(prev, v) {
			return &PrefixCollisionError{Prefix: v.Prefix()}
		}
		if err := s.checkPrefix(v); err != nil {
			return err
		}
		seen[v.Prefix()] = v
	}
	for prefix, v := range seen {
		s.providers[prefix] = v
	}
	s.searchPath = slices.Clone(path)
	return nil
}

// AddPath inserts v into the search path. A whence of -1 appends; any other
// value is an insertion index clamped into range. Re-adding a provider that
// is already present is allowed; adding a different provider with the same
// prefix fails with a PrefixCollisionError. Prefixes stay claimed after
// RemovePath, since loaded signatures still refer to them.
func (s *Session) AddPath(v vfs.VFS, whence int) error {
	if err := s.claimPrefix(v); err != nil {
		return err
	}
	switch {
	case whence == -1 || whence > len(s.searchPath):
		whence = len(s.searchPath)
	case whence < 0:
		whence = 0
	}
	s.searchPath = slices.Insert(s.searchPath, whence, v)
	s.logger.Debug("search path updated", "vfs", vfs.Describe(v), "index", whence)
	return nil
}

// checkPrefix fails if a different provider already owns the prefix of v.
func (s *Session) checkPrefix(v vfs.VFS) error {
	if prev, ok := s.providers[v.Prefix()]; ok && !sameProvider(prev, v) {
		return &PrefixCollisionError{Prefix: v.Prefix()}
	}
	return nil
}

// claimPrefix makes v the owner of its prefix unless another provider
// already owns it.
func (s *Session) claimPrefix(v vfs.VFS) error {
	if err := s.checkPrefix(v); err != nil {
		return err
	}
	if _, ok := s.providers[v.Prefix()]; !ok {
		s.providers[v.Prefix()] = v
	}
	return nil
}

// sameProvider reports whether a and b yield the same files. Directories
// with equal prefixes share a base directory.
func sameProvider(a, b vfs.VFS) bool {
	if a == b {
		return true
	}
	_, da := a.(*vfs.Directory)
	_, db := b.(*vfs.Directory)
	return da && db
}

// RemovePath removes the first occurrence of v and reports whether it was present.
func (s *Session) RemovePath(v vfs.VFS) bool {
	i := slices.Index(s.searchPath, v)
	if i < 0 {
		return false
	}
	s.searchPath = slices.Delete(s.searchPath, i, i+1)
	return true
}

// LoadSizeMax returns the load-size limit in bytes.
func (s *Session) LoadSizeMax() int64 { return s.loadSizeMax }

// SetLoadSizeMax sets the load-size limit, clamped into
// [MinLoadSizeMax, MaxLoadSizeMax], and returns the value in effect.
func (s *Session) SetLoadSizeMax(n int64) int64 {
	s.loadSizeMax = min(max(n, MinLoadSizeMax), MaxLoadSizeMax)
	return s.loadSizeMax
}

// Extensions returns the extension spec of form.
func (s *Session) Extensions(f Form) ExtSpec {
	switch f {
	case FormSource:
		return s.sourceExts
	case FormBytecode:
		return s.bytecodeExts
	case FormNative:
		return s.nativeExts
	default:
		return ExtSpec{}
	}
}

// Enabled reports whether form has a collaborator.
func (s *Session) Enabled(f Form) bool {
	switch f {
	case FormSource:
		return s.source != nil
	case FormBytecode:
		return s.bytecode != nil
	case FormNative:
		return s.native != nil
	default:
		return false
	}
}

// Loaded returns the loaded signatures in load order.
func (s *Session) Loaded() []string {
	return slices.Clone(s.order)
}

// IsLoaded reports whether signature has been loaded.
func (s *Session) IsLoaded(signature string) bool {
	_, ok := s.loaded[signature]
	return ok
}

// Depth returns the current nesting of module loads.
func (s *Session) Depth() int { return s.depth }

// Logger returns the session logger.
func (s *Session) Logger() *log.Logger { return s.logger }
