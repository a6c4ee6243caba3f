// SPDX-License-Identifier: MPL-2.0

// Package vfs defines the virtual file system providers searched by the loader.
//
// A provider answers three questions about a slash-separated path: whether a
// regular file exists there, how large it is, and what bytes it holds. Each
// provider also carries a prefix, the identity tag the loader puts in front of
// every resolved path to build a module signature. Two providers on the same
// search path must never share a prefix.
//
// Two providers are built in:
//   - Directory: rooted at a real directory; the prefix is the directory itself.
//   - FS: an adapter over any io/fs.FS (embed.FS, fstest.MapFS, ...); the prefix
//     is the opaque tag "VFS:#<name>".
//
// Hosts may supply further providers by implementing VFS. The bundle package
// implements one over zip archives.
package vfs
