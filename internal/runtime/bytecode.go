// SPDX-License-Identifier: MPL-2.0

package runtime

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"mvdan.cc/sh/v3/syntax"
)

const (
	// BytecodeMagic opens every bytecode file.
	BytecodeMagic = "RPSH"
	// BytecodeVersion is the only format version LoadAndRun accepts.
	BytecodeVersion = "0001"
	// BytecodeHeaderSize is magic, version and the big-endian total size.
	BytecodeHeaderSize = len(BytecodeMagic) + len(BytecodeVersion) + 4
)

// Compile parses a shell module and encodes it as bytecode: the header
// followed by the minified program. Parse failures are *CompileError.
func Compile(src []byte, name string) ([]byte, error) {
	prog, err := Parse(src, name)
	if err != nil {
		return nil, err
	}

	var body bytes.Buffer
	if err := syntax.NewPrinter(syntax.Minify(true)).Print(&body, prog); err != nil {
		return nil, fmt.Errorf("failed to print %s: %w", name, err)
	}

	out := make([]byte, 0, BytecodeHeaderSize+body.Len())
	out = append(out, BytecodeMagic...)
	out = append(out, BytecodeVersion...)
	out = binary.BigEndian.AppendUint32(out, uint32(BytecodeHeaderSize+body.Len()))
	return append(out, body.Bytes()...), nil
}

// DecodeBytecode validates the header of data and returns the program text.
// The data must be at least as long as the size recorded in the header and
// carry BytecodeVersion.
func DecodeBytecode(data []byte, signature string) ([]byte, error) {
	if len(data) < BytecodeHeaderSize {
		return nil, &BytecodeFormatError{Signature: signature, Reason: "wrong binary size"}
	}
	if string(data[:len(BytecodeMagic)]) != BytecodeMagic {
		return nil, &BytecodeFormatError{Signature: signature, Reason: "wrong binary identifier"}
	}
	size := binary.BigEndian.Uint32(data[len(BytecodeMagic)+len(BytecodeVersion):])
	if uint64(len(data)) < uint64(size) || size < uint32(BytecodeHeaderSize) {
		return nil, &BytecodeFormatError{Signature: signature, Reason: "wrong binary size"}
	}
	version := string(data[len(BytecodeMagic) : len(BytecodeMagic)+len(BytecodeVersion)])
	if version != BytecodeVersion {
		return nil, &BytecodeFormatError{
			Signature: signature,
			Reason:    fmt.Sprintf("wrong binary version (expected %q, but given %q)", BytecodeVersion, version),
		}
	}
	return data[BytecodeHeaderSize:size], nil
}
