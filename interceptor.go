package jitspeak

import (
	"sync"
	"sync/atomic"
)

const (
	// semNoGPFaultErrorBox stops Windows from showing its own crash dialog.
	semNoGPFaultErrorBox = 0x0002

	exceptionContinueSearch = 0
	exceptionExecuteHandler = 1
)

// FaultHandler is called by the OS on an unhandled fault. It returns the
// value an unhandled exception filter returns.
type FaultHandler func(ep *ExceptionPointers) int32

// FaultOS is the process-wide fault handling state of the OS.
type FaultOS interface {
	// ErrorMode returns the process error mode.
	ErrorMode() uint32
	// SetErrorMode sets the process error mode and returns the previous one.
	SetErrorMode(mode uint32) uint32
	// SetUnhandledFilter installs filter as the top-level unhandled
	// exception filter and returns the previous one. Zero means none.
	SetUnhandledFilter(filter uintptr) uintptr
	// CallFilter calls a native exception filter.
	CallFilter(filter uintptr, ep *ExceptionPointers) int32
	// FilterEntry returns a native filter that calls h.
	FilterEntry(h FaultHandler) uintptr
	// ReadCode returns up to n bytes at addr, or nil if addr is not
	// readable.
	ReadCode(addr uintptr, n int) []byte
}

// Reporter receives descriptions of intercepted faults.
type Reporter interface {
	ReportError(msg string)
}

// State is the state of an Interceptor.
type State int32

const (
	Disarmed State = iota
	Armed
)

func (s State) String() string {
	if s == Armed {
		return "armed"
	}
	return "disarmed"
}

// Toggle reports whether a call to Interceptor.Set changed anything.
type Toggle int

const (
	NoChange Toggle = 0
	Changed  Toggle = 1
)

// Interceptor installs a process-wide unhandled fault filter that reports
// faults before handing them to whichever filter was there before it.
type Interceptor struct {
	os       FaultOS
	reporter Reporter

	mu        sync.Mutex
	state     State
	savedMode uint32

	// Read by the filter, which can run on any thread.
	savedFilter atomic.Uintptr
}

// NewInterceptor returns a disarmed Interceptor.
func NewInterceptor(fos FaultOS, reporter Reporter) *Interceptor {
	return &Interceptor{
		os:       fos,
		reporter: reporter,
	}
}

// State returns the current state.
func (i *Interceptor) State() State {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.state
}

// Set arms the interceptor when enabled is true and disarms it otherwise.
//
// Arming saves the error mode and filter it replaces. Disarming puts back
// exactly what the most recent arm saved, including no filter at all.
func (i *Interceptor) Set(enabled bool) Toggle {
	i.mu.Lock()
	defer i.mu.Unlock()

	if enabled == (i.state == Armed) {
		return NoChange
	}

	if enabled {
		i.savedMode = i.os.ErrorMode()
		i.os.SetErrorMode(i.savedMode | semNoGPFaultErrorBox)
		i.savedFilter.Store(i.os.SetUnhandledFilter(i.os.FilterEntry(i.HandleFault)))
		i.state = Armed
	} else {
		i.os.SetErrorMode(i.savedMode)
		i.os.SetUnhandledFilter(i.savedFilter.Load())
		i.savedFilter.Store(0)
		i.state = Disarmed
	}

	return Changed
}

// HandleFault reports the fault in ep and passes it on to the previous
// filter. Without a previous filter the OS default behavior runs.
func (i *Interceptor) HandleFault(ep *ExceptionPointers) int32 {
	var code []byte
	if ep != nil && ep.ExceptionRecord != nil {
		code = i.os.ReadCode(ep.ExceptionRecord.ExceptionAddress, maxInstructionLen)
	}
	i.reporter.ReportError(describeFault(ep, code))

	if prev := i.savedFilter.Load(); prev != 0 {
		return i.os.CallFilter(prev, ep)
	}
	return exceptionExecuteHandler
}
