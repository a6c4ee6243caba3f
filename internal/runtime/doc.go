// SPDX-License-Identifier: MPL-2.0

// Package runtime provides the module collaborators of the shell host.
//
// Three module forms are supported:
//   - source (".sh"): parsed and run by the embedded mvdan/sh interpreter
//   - bytecode (".shc"): a minified program behind a versioned binary header,
//     produced by Compile
//   - native (".wasm"): WebAssembly extensions linked by wazero
//
// VirtualRuntime implements loader.SourceExecutor and loader.BytecodeLoader;
// NativeLinker implements loader.NativeLinker. Scripts reach the loader
// through the require, require_relative and load builtins, which find the
// session and the caller identity in the context of the running module.
package runtime
