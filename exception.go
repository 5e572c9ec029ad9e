package jitspeak

import (
	"fmt"
	"strings"
	"unsafe"
)

const exceptionAccessViolation = 0xc0000005

// ExceptionRecord mirrors the Windows EXCEPTION_RECORD.
type ExceptionRecord struct {
	ExceptionCode        uint32
	ExceptionFlags       uint32
	ExceptionRecord      *ExceptionRecord
	ExceptionAddress     uintptr
	NumberParameters     uint32
	ExceptionInformation [15]uintptr
}

// ExceptionPointers mirrors the Windows EXCEPTION_POINTERS.
type ExceptionPointers struct {
	ExceptionRecord *ExceptionRecord
	ContextRecord   unsafe.Pointer
}

// describeFault formats the message reported for an intercepted fault. code
// holds the bytes at the faulting address, if they could be read.
func describeFault(ep *ExceptionPointers, code []byte) string {
	if ep == nil || ep.ExceptionRecord == nil {
		return "Internal error occurred: no exception record"
	}
	rec := ep.ExceptionRecord

	var b strings.Builder
	fmt.Fprintf(&b, "Internal error occurred: %08x at %016X", rec.ExceptionCode, rec.ExceptionAddress)

	if rec.ExceptionCode == exceptionAccessViolation && rec.NumberParameters >= 2 {
		op := "reading"
		switch rec.ExceptionInformation[0] {
		case 1:
			op = "writing"
		case 8:
			op = "executing"
		}
		fmt.Fprintf(&b, " %s %016X", op, rec.ExceptionInformation[1])
	}

	if inst := disassemble(code, rec.ExceptionAddress); inst != "" {
		fmt.Fprintf(&b, " (%s)", inst)
	}

	return b.String()
}
