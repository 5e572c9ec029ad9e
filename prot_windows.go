//go:build windows

package jitspeak

import "golang.org/x/sys/windows"

const (
	protRO = windows.PAGE_READONLY
	protRW = windows.PAGE_READWRITE
)
