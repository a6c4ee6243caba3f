// SPDX-License-Identifier: MPL-2.0

// Package cueutil provides shared CUE parsing utilities.
//
// Every CUE document read by requireplus goes through the same flow:
//
//  1. Compile the embedded schema
//  2. Compile user data and unify with schema
//  3. Validate and decode to a Go value
//
// ParseAndDecode decodes into a struct; DecodeMap decodes into a generic map
// for callers that merge the result into another configuration source.
//
//	//go:embed config_schema.cue
//	var schema []byte
//
//	result, err := cueutil.ParseAndDecode[Config](
//	    schema,
//	    data,
//	    "#Config",
//	    cueutil.WithFilename("config.cue"),
//	    cueutil.WithConcrete(false),
//	)
package cueutil
