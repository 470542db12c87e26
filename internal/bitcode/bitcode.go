// Package bitcode defines the serialized fragment container: a magic header
// followed by a schema-versioned msgpack payload holding the textual IR.
// Both .bc files and embedded .bpfbc object sections use this format.
package bitcode

import (
	"bytes"
	"fmt"

	"github.com/vmihailenco/msgpack/v5"
)

// Magic prefixes every bitcode buffer produced by this toolchain.
var Magic = []byte("BPFBC\x00")

// Current schema version - increment when payload format changes.
const schemaVersion uint16 = 1

type payload struct {
	Schema uint16
	IR     []byte
}

// Is reports whether data looks like a bitcode buffer.
func Is(data []byte) bool {
	return bytes.HasPrefix(data, Magic)
}

// Encode wraps textual IR into a bitcode buffer.
func Encode(ir []byte) ([]byte, error) {
	body, err := msgpack.Marshal(&payload{Schema: schemaVersion, IR: ir})
	if err != nil {
		return nil, fmt.Errorf("failed to encode bitcode payload: %w", err)
	}
	buf := make([]byte, 0, len(Magic)+len(body))
	buf = append(buf, Magic...)
	buf = append(buf, body...)
	return buf, nil
}

// Decode unwraps a bitcode buffer back into textual IR.
func Decode(data []byte) ([]byte, error) {
	if !Is(data) {
		return nil, fmt.Errorf("not a bitcode buffer: bad magic")
	}
	var p payload
	if err := msgpack.Unmarshal(data[len(Magic):], &p); err != nil {
		return nil, fmt.Errorf("failed to decode bitcode payload: %w", err)
	}
	if p.Schema != schemaVersion {
		return nil, fmt.Errorf("unsupported bitcode schema %d (want %d)", p.Schema, schemaVersion)
	}
	return p.IR, nil
}
