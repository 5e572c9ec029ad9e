package jitspeak

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"sync/atomic"
	"unsafe"

	"github.com/pboyd/jitspeak/internal/diag"
)

var (
	// ErrABIMismatch is returned when the runner's table does not match the
	// one this extension was built against.
	ErrABIMismatch = errors.New("runner interface ABI mismatch")
	// ErrAllocation is returned when the private table copy could not be
	// allocated.
	ErrAllocation = errors.New("unable to allocate runner interface")
	// ErrNotReady is returned by operations that need a runner interface
	// before one has been accepted.
	ErrNotReady = errors.New("extension not ready")
	// ErrProtect is returned when the private table copy was accepted but
	// could not be made read-only again.
	ErrProtect = errors.New("unable to protect runner interface")
)

// ABIMismatchError describes a rejected runner table.
type ABIMismatchError struct {
	Got  uintptr
	Want uintptr
}

func (e *ABIMismatchError) Error() string {
	return fmt.Sprintf("provided YYRunnerInterface size != sizeof(YYRunnerInterface) (%d != %d)", e.Got, e.Want)
}

func (e *ABIMismatchError) Is(target error) bool {
	return target == ErrABIMismatch
}

// Extension is the process-wide state of the extension: the private copy of
// the runner's table and the fault interceptor.
//
// The runner calls into extensions from its main thread only. Extension
// still serializes handshakes and interceptor toggles so that it stays
// consistent under a host that does not.
type Extension struct {
	log         *slog.Logger
	alloc       Allocator
	reporter    Reporter
	faultOS     FaultOS
	interceptor *Interceptor

	mu     sync.Mutex
	table  []byte
	runner atomic.Pointer[RunnerInterface]
}

// Option configures an Extension.
type Option func(*Extension)

// WithLogger sets the logger used for diagnostics.
func WithLogger(log *slog.Logger) Option {
	return func(e *Extension) {
		e.log = log
	}
}

// WithAllocator sets where private table copies are allocated.
func WithAllocator(a Allocator) Option {
	return func(e *Extension) {
		e.alloc = a
	}
}

// WithFaultOS sets the OS layer the interceptor installs its filter through.
func WithFaultOS(fos FaultOS) Option {
	return func(e *Extension) {
		e.faultOS = fos
	}
}

// WithReporter sets where intercepted faults are reported. By default they
// go to the runner's YYError.
func WithReporter(r Reporter) Option {
	return func(e *Extension) {
		e.reporter = r
	}
}

// New returns an Extension that is not ready until Initialize succeeds.
func New(opts ...Option) *Extension {
	e := &Extension{}
	for _, opt := range opts {
		opt(e)
	}

	if e.log == nil {
		e.log = diag.New(os.Stdout, os.Stderr)
	}
	if e.alloc == nil {
		e.alloc = &arenaAllocator{}
	}
	if e.reporter == nil {
		e.reporter = e
	}
	if e.faultOS == nil {
		fos, err := defaultFaultOS()
		if err != nil {
			e.log.Debug("fault interception unavailable", "err", err)
		}
		e.faultOS = fos
	}
	if e.faultOS != nil {
		e.interceptor = NewInterceptor(e.faultOS, e.reporter)
	}

	return e
}

// Initialize accepts the runner's table. table must point to size bytes.
//
// On success the table is copied and the extension is ready. A successful
// call on a ready extension replaces the copy without the extension ever
// becoming not ready. On failure the extension is left not ready, except
// for ErrProtect, which is returned with the new copy in use.
func (e *Extension) Initialize(table unsafe.Pointer, size uintptr) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if size != RunnerInterfaceSize || table == nil {
		err := &ABIMismatchError{Got: size, Want: RunnerInterfaceSize}
		e.log.Error(err.Error(), "table", table)
		e.release()
		return err
	}

	e.log.Info("YYRunnerInterface provided", "table", table, "size", size)

	err := e.alloc.BeginMutate()
	if err != nil {
		e.log.Error("Failed to allocate YYRunnerInterface", "err", err)
		e.release()
		return fmt.Errorf("%w: %w", ErrAllocation, err)
	}

	buf, err := e.alloc.Allocate(int(size))
	if err != nil || len(buf) < int(size) {
		e.log.Error("Failed to allocate YYRunnerInterface", "err", err)
		e.releaseLocked()
		e.endMutate()
		if err == nil {
			return ErrAllocation
		}
		return fmt.Errorf("%w: %w", ErrAllocation, err)
	}

	copy(buf, unsafe.Slice((*byte)(table), size))

	old := e.table
	e.table = buf
	e.runner.Store((*RunnerInterface)(unsafe.Pointer(unsafe.SliceData(buf))))

	if old != nil {
		e.free(old)
	}

	// The new copy is already in use, so a failure here leaves the
	// extension ready with a writable table.
	if err := e.alloc.EndMutate(); err != nil {
		e.log.Warn("unable to write-protect YYRunnerInterface", "err", err)
		return fmt.Errorf("%w: %w", ErrProtect, err)
	}

	return nil
}

func (e *Extension) endMutate() {
	if err := e.alloc.EndMutate(); err != nil {
		e.log.Warn("unable to write-protect YYRunnerInterface", "err", err)
	}
}

func (e *Extension) free(buf []byte) {
	if err := e.alloc.Free(buf); err != nil {
		e.log.Warn("unable to release YYRunnerInterface", "err", err)
	}
}

// release drops the private copy. Must be called with e.mu held.
func (e *Extension) release() {
	if e.table == nil {
		e.runner.Store(nil)
		return
	}

	err := e.alloc.BeginMutate()
	if err != nil {
		// The copy stays allocated but is no longer reachable.
		e.log.Warn("unable to release YYRunnerInterface", "err", err)
		e.runner.Store(nil)
		e.table = nil
		return
	}

	e.releaseLocked()
	e.endMutate()
}

// releaseLocked drops the private copy while the allocator is mutable.
func (e *Extension) releaseLocked() {
	e.runner.Store(nil)
	if e.table != nil {
		e.free(e.table)
		e.table = nil
	}
}

// Close releases the private table copy. The extension is not ready
// afterwards.
func (e *Extension) Close() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.release()
}

// Ready reports whether a runner table has been accepted.
func (e *Extension) Ready() bool {
	return e.runner.Load() != nil
}

// Runner returns the private copy of the runner's table, or nil if the
// extension is not ready.
func (e *Extension) Runner() *RunnerInterface {
	return e.runner.Load()
}

// Interceptor returns the fault interceptor, or nil if faults cannot be
// intercepted on this platform.
func (e *Extension) Interceptor() *Interceptor {
	return e.interceptor
}

// SetInterception arms or disarms the fault interceptor. It reports NoChange
// without touching OS state when the extension is not ready.
func (e *Extension) SetInterception(enabled bool) Toggle {
	if !e.Ready() {
		return NoChange
	}
	if e.interceptor == nil {
		e.log.Error("native exception handling is not supported on this platform")
		return NoChange
	}
	return e.interceptor.Set(enabled)
}

// Inject overwrites the variable id of dest with an object reference to
// replacement. See the package level Inject.
func (e *Extension) Inject(dest *ObjectBase, id int32, replacement unsafe.Pointer) Status {
	if !e.Ready() {
		return StatusNotReady
	}
	return Inject(dest, id, replacement)
}

// ReportError sends msg to the runner's YYError. It falls back to the log
// when the runner's error reporting is unavailable.
func (e *Extension) ReportError(msg string) {
	runner := e.runner.Load()
	if runner != nil && runner.YYError != 0 && callYYError(runner.YYError, msg) {
		return
	}
	e.log.Error(msg)
}
