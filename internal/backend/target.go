package backend

import (
	"encoding/binary"
	"fmt"
)

// Target identifies a code-generation target known to the backend.
type Target struct {
	triple      string
	description string
	byteOrder   binary.ByteOrder
}

// Triple returns the canonical triple of the target.
func (t *Target) Triple() string { return t.triple }

// Description returns the human-readable target description.
func (t *Target) Description() string { return t.description }

var targetRegistry map[string]*Target

func registerTargets() {
	targetRegistry = map[string]*Target{
		"bpf":   {triple: "bpf", description: "eBPF (little endian)", byteOrder: binary.LittleEndian},
		"bpfel": {triple: "bpfel", description: "eBPF (little endian)", byteOrder: binary.LittleEndian},
		"bpfeb": {triple: "bpfeb", description: "eBPF (big endian)", byteOrder: binary.BigEndian},
	}
}

// TargetFromTriple resolves a triple to a registered target.
func TargetFromTriple(triple string) (*Target, error) {
	t, ok := targetRegistry[triple]
	if !ok {
		return nil, fmt.Errorf("unknown target triple %q", triple)
	}
	return t, nil
}

// Known BPF processor generations.
var knownCPUs = map[string]bool{
	"":        true,
	"generic": true,
	"probe":   true,
	"v1":      true,
	"v2":      true,
	"v3":      true,
	"v4":      true,
}

// TargetMachine is the code-generation configuration shared, read-only, by
// the optimization driver and the emitter.
type TargetMachine struct {
	target   *Target
	triple   string
	cpu      string
	features string
	released bool
}

// NewTargetMachine builds a machine configuration for target. Returns nil on
// failure (unknown cpu); there is no richer error channel for this
// operation.
func (c *Context) NewTargetMachine(target *Target, triple, cpu, features string) *TargetMachine {
	c.ensureOpen()
	if target == nil || !knownCPUs[cpu] {
		return nil
	}
	if triple == "" {
		triple = target.triple
	}
	tm := &TargetMachine{target: target, triple: triple, cpu: cpu, features: features}
	c.machines = append(c.machines, tm)
	return tm
}

func (tm *TargetMachine) release() {
	tm.released = true
}

func (tm *TargetMachine) ensureLive() {
	if tm == nil || tm.released {
		panic("use of released target machine")
	}
}

// Triple returns the machine's triple.
func (tm *TargetMachine) Triple() string {
	tm.ensureLive()
	return tm.triple
}

// CPU returns the machine's processor generation.
func (tm *TargetMachine) CPU() string {
	tm.ensureLive()
	return tm.cpu
}

// Features returns the machine's feature string.
func (tm *TargetMachine) Features() string {
	tm.ensureLive()
	return tm.features
}

// ByteOrder returns the byte order code is emitted in.
func (tm *TargetMachine) ByteOrder() binary.ByteOrder {
	tm.ensureLive()
	return tm.target.byteOrder
}
