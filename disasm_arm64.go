package jitspeak

import "golang.org/x/arch/arm64/arm64asm"

const maxInstructionLen = 4

func disassemble(code []byte, pc uintptr) string {
	if len(code) < maxInstructionLen {
		return ""
	}

	instruction, err := arm64asm.Decode(code)
	if err != nil {
		return ""
	}
	return instruction.String()
}
