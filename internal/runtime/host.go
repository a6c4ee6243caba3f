// SPDX-License-Identifier: MPL-2.0

package runtime

import "github.com/invowk/requireplus/pkg/loader"

const (
	// SourceExt is the extension of shell source modules.
	SourceExt = ".sh"
	// BytecodeExt is the extension of compiled shell modules.
	BytecodeExt = ".shc"
	// NativeExt is the extension of WebAssembly extensions.
	NativeExt = ".wasm"
)

// DefaultExtensions returns the extension specs of the shell host in form
// order: source, bytecode, native.
func DefaultExtensions() (source, bytecode, native loader.ExtSpec) {
	return loader.Ext(SourceExt), loader.Ext(BytecodeExt), loader.Exts(NativeExt)
}

// SessionOptions wires the collaborators into loader options. A nil
// collaborator or a false switch leaves its form disabled.
func SessionOptions(v *VirtualRuntime, source, bytecode bool, n *NativeLinker) []loader.Option {
	var opts []loader.Option
	if v != nil {
		if source {
			opts = append(opts, loader.WithSourceExecutor(v))
		}
		if bytecode {
			opts = append(opts, loader.WithBytecodeLoader(v))
		}
	}
	if n != nil {
		opts = append(opts, loader.WithNativeLinker(n))
	}
	return opts
}
