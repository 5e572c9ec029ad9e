//go:build unix

package jitspeak

import "syscall"

const (
	protRO = syscall.PROT_READ
	protRW = syscall.PROT_READ | syscall.PROT_WRITE
)
