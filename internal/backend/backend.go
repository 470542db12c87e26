package backend

import (
	"fmt"
	"os"
	"sync"
)

var (
	initOnce    sync.Once
	initialized bool
	backendArgs []string
)

// Init performs process-wide backend initialization: target registration and
// backend option intake. It must run before any context is created and is
// idempotent; there is no corresponding teardown.
func Init(args []string) {
	initOnce.Do(func() {
		registerTargets()
		backendArgs = append([]string(nil), args...)
		initialized = true
	})
}

// Args returns the options handed to Init, for operations that consult them.
func Args() []string {
	return backendArgs
}

// FatalHandler receives unrecoverable backend faults. After the handler
// returns the process terminates: backend state is untrustworthy past a
// fatal report.
type FatalHandler func(reason string)

var (
	fatalMu      sync.Mutex
	fatalHandler FatalHandler
)

// SetFatalHandler installs h as the fatal-error callback. Passing nil
// restores the default (write to stderr).
func SetFatalHandler(h FatalHandler) {
	fatalMu.Lock()
	defer fatalMu.Unlock()
	fatalHandler = h
}

func reportFatal(reason string) {
	fatalMu.Lock()
	h := fatalHandler
	fatalMu.Unlock()
	if h != nil {
		h(reason)
	} else {
		fmt.Fprintf(os.Stderr, "fatal backend error: %s\n", reason)
	}
	os.Exit(70)
}

// guardFatal converts a panic escaping a backend entry point into a fatal
// report. Deferred at every mutating entry point.
func guardFatal() {
	if r := recover(); r != nil {
		reportFatal(fmt.Sprintf("%v", r))
	}
}
