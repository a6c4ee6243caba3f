// SPDX-License-Identifier: MPL-2.0

// Package testutil holds the fixture helpers shared by the loader, runtime,
// config and CLI tests: module trees on disk and an isolated user
// environment. Every helper fails the test on error.
package testutil
