package jitspeak

import "unsafe"

// runnerInterfaceSlots is the number of pointer-sized entries in the
// YYRunnerInterface of the runner this extension is built against. Any change
// in the runner's table is an ABI break and needs a rebuild.
const runnerInterfaceSlots = 132

// RunnerInterface mirrors the runner's YYRunnerInterface. Only the entries
// this package calls are named. Any changes here must match the runner's
// YYRunnerInterface.h.
type RunnerInterface struct {
	DebugConsoleOutput   uintptr // void (*)(const char* fmt, ...)
	ReleaseConsoleOutput uintptr // void (*)(const char* fmt, ...)
	ShowMessage          uintptr // void (*)(const char* msg)
	YYError              uintptr // void (*)(const char* fmt, ...)

	// Struct continues, omitting unused entries.
	_ [runnerInterfaceSlots - 4]uintptr
}

// RunnerInterfaceSize is the table size the runner must declare at
// initialization.
const RunnerInterfaceSize = unsafe.Sizeof(RunnerInterface{})
