package linker

import "fmt"

// AcquireError reports an input that could not be turned into a fragment.
type AcquireError struct {
	Path string
	Err  error
}

func (e *AcquireError) Error() string {
	return fmt.Sprintf("failed to acquire %s: %v", e.Path, e.Err)
}

func (e *AcquireError) Unwrap() error { return e.Err }

// LinkError reports a failed merge. The merged image may be left in an
// undefined partial state, so a link failure is fatal to the run.
type LinkError struct {
	Path string
}

func (e *LinkError) Error() string {
	return fmt.Sprintf("failed to link %s into the program image", e.Path)
}

// OptimizeError carries the backend's pass-pipeline message verbatim.
type OptimizeError struct {
	Msg string
}

func (e *OptimizeError) Error() string {
	return fmt.Sprintf("optimization failed: %s", e.Msg)
}

// EmitError reports a failed write of the final artifact.
type EmitError struct {
	Path string
	Err  error
}

func (e *EmitError) Error() string {
	return fmt.Sprintf("failed to emit %s: %v", e.Path, e.Err)
}

func (e *EmitError) Unwrap() error { return e.Err }
