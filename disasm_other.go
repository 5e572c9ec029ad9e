//go:build !amd64 && !arm64

package jitspeak

// No decoder for this architecture, faults are reported without the
// instruction.
const maxInstructionLen = 0

func disassemble(code []byte, pc uintptr) string {
	return ""
}
