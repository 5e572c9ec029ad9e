//go:build windows

package jitspeak

import (
	"sync"
	"sync/atomic"
	"syscall"
	"unsafe"

	"golang.org/x/sys/windows"
)

var (
	kernel32 = windows.NewLazySystemDLL("kernel32.dll")

	procGetErrorMode                = kernel32.NewProc("GetErrorMode")
	procSetErrorMode                = kernel32.NewProc("SetErrorMode")
	procSetUnhandledExceptionFilter = kernel32.NewProc("SetUnhandledExceptionFilter")
)

const readableProtect = windows.PAGE_READONLY | windows.PAGE_READWRITE | windows.PAGE_WRITECOPY |
	windows.PAGE_EXECUTE_READ | windows.PAGE_EXECUTE_READWRITE | windows.PAGE_EXECUTE_WRITECOPY

var (
	// Callbacks are never released, so there is only ever one.
	filterOnce    sync.Once
	filterEntry   uintptr
	filterHandler atomic.Pointer[FaultHandler]
)

type windowsFaultOS struct{}

func defaultFaultOS() (FaultOS, error) {
	for _, proc := range []*windows.LazyProc{procGetErrorMode, procSetErrorMode, procSetUnhandledExceptionFilter} {
		if err := proc.Find(); err != nil {
			return nil, err
		}
	}
	return windowsFaultOS{}, nil
}

func (windowsFaultOS) ErrorMode() uint32 {
	r, _, _ := procGetErrorMode.Call()
	return uint32(r)
}

func (windowsFaultOS) SetErrorMode(mode uint32) uint32 {
	r, _, _ := procSetErrorMode.Call(uintptr(mode))
	return uint32(r)
}

func (windowsFaultOS) SetUnhandledFilter(filter uintptr) uintptr {
	r, _, _ := procSetUnhandledExceptionFilter.Call(filter)
	return r
}

func (windowsFaultOS) CallFilter(filter uintptr, ep *ExceptionPointers) int32 {
	r, _, _ := syscall.SyscallN(filter, uintptr(unsafe.Pointer(ep)))
	return int32(r)
}

func (windowsFaultOS) FilterEntry(h FaultHandler) uintptr {
	filterHandler.Store(&h)
	filterOnce.Do(func() {
		filterEntry = windows.NewCallback(unhandledExceptionFilter)
	})
	return filterEntry
}

func unhandledExceptionFilter(ep *ExceptionPointers) uintptr {
	h := filterHandler.Load()
	if h == nil {
		return exceptionContinueSearch
	}
	return uintptr((*h)(ep))
}

func (windowsFaultOS) ReadCode(addr uintptr, n int) []byte {
	if addr == 0 || n <= 0 {
		return nil
	}

	var mbi windows.MemoryBasicInformation
	err := windows.VirtualQuery(addr, &mbi, unsafe.Sizeof(mbi))
	if err != nil {
		return nil
	}
	if mbi.State != windows.MEM_COMMIT || mbi.Protect&readableProtect == 0 ||
		mbi.Protect&(windows.PAGE_GUARD|windows.PAGE_NOACCESS) != 0 {
		return nil
	}

	// Don't read past the end of the region.
	if avail := mbi.BaseAddress + mbi.RegionSize - addr; uintptr(n) > avail {
		n = int(avail)
	}

	// Read through the OS rather than dereferencing, the page can change
	// between VirtualQuery and the read.
	code := make([]byte, n)
	var read uintptr
	err = windows.ReadProcessMemory(windows.CurrentProcess(), addr, &code[0], uintptr(n), &read)
	if err != nil {
		return nil
	}
	return code[:read]
}
