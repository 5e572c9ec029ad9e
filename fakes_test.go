package jitspeak

import (
	"bytes"
	"errors"
	"log/slog"

	"github.com/pboyd/jitspeak/internal/diag"
)

type fakeOS struct {
	mode   uint32
	filter uintptr
	calls  int

	entry   uintptr
	handler FaultHandler

	called       []uintptr
	filterResult int32

	code []byte
}

func (f *fakeOS) ErrorMode() uint32 {
	f.calls++
	return f.mode
}

func (f *fakeOS) SetErrorMode(mode uint32) uint32 {
	f.calls++
	prev := f.mode
	f.mode = mode
	return prev
}

func (f *fakeOS) SetUnhandledFilter(filter uintptr) uintptr {
	f.calls++
	prev := f.filter
	f.filter = filter
	return prev
}

func (f *fakeOS) CallFilter(filter uintptr, ep *ExceptionPointers) int32 {
	f.called = append(f.called, filter)
	return f.filterResult
}

func (f *fakeOS) FilterEntry(h FaultHandler) uintptr {
	f.handler = h
	if f.entry == 0 {
		f.entry = 0xf117e5
	}
	return f.entry
}

func (f *fakeOS) ReadCode(addr uintptr, n int) []byte {
	if len(f.code) > n {
		return f.code[:n]
	}
	return f.code
}

type fakeReporter struct {
	messages []string
}

func (r *fakeReporter) ReportError(msg string) {
	r.messages = append(r.messages, msg)
}

type fakeAllocator struct {
	err        error
	endErr     error
	mutable    bool
	allocated  [][]byte
	freed      [][]byte
	onAllocate func()
}

func (a *fakeAllocator) BeginMutate() error {
	a.mutable = true
	return nil
}

func (a *fakeAllocator) EndMutate() error {
	if a.endErr != nil {
		return a.endErr
	}
	a.mutable = false
	return nil
}

func (a *fakeAllocator) Allocate(size int) ([]byte, error) {
	if !a.mutable {
		return nil, errors.New("allocate while immutable")
	}
	if a.onAllocate != nil {
		a.onAllocate()
	}
	if a.err != nil {
		return nil, a.err
	}
	buf := make([]byte, size)
	a.allocated = append(a.allocated, buf)
	return buf, nil
}

func (a *fakeAllocator) Free(buf []byte) error {
	if !a.mutable {
		return errors.New("free while immutable")
	}
	a.freed = append(a.freed, buf)
	return nil
}

// newTestExtension returns an Extension wired to fakes, with its log in the
// returned buffer.
func newTestExtension(opts ...Option) (*Extension, *bytes.Buffer) {
	var log bytes.Buffer
	defaults := []Option{
		WithLogger(diag.New(&log, &log, diag.WithLevel(slog.LevelDebug))),
		WithFaultOS(&fakeOS{}),
		WithReporter(&fakeReporter{}),
		WithAllocator(&fakeAllocator{}),
	}
	return New(append(defaults, opts...)...), &log
}
