package jitspeak

import "golang.org/x/arch/x86/x86asm"

const maxInstructionLen = 15

// disassemble returns the first instruction in code in Intel syntax, or an
// empty string if it does not decode.
func disassemble(code []byte, pc uintptr) string {
	if len(code) == 0 {
		return ""
	}

	instruction, err := x86asm.Decode(code, 64)
	if err != nil || instruction.Op == 0 {
		// Op is zero when only prefixes were decoded.
		return ""
	}
	return x86asm.IntelSyntax(instruction, uint64(pc), nil)
}
