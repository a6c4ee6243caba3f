// SPDX-License-Identifier: MPL-2.0

// Package loader resolves modules by feature name across an ordered list of
// virtual file systems and runs each concrete module at most once.
//
// A Session owns all resolution state: the search path, the set of loaded
// signatures, the load-size limit and the collaborators that execute each
// module form. For every provider on the search path, in order, Require tries
// the source form, then bytecode, then native; the first file found ends the
// search whether or not it had already been loaded.
//
// A module is identified by its signature, the provider prefix joined with the
// cleaned path inside that provider. Signatures are recorded only after the
// collaborator returns without error, so a module that requires itself during
// its own top-level execution runs again. Session.MaxDepth bounds that nesting.
//
// The signature of the module being executed travels in the context handed to
// collaborators (see CallerFromContext); RequireRelative uses it to find the
// provider owning the caller and resolves siblings from there.
package loader
