//go:build cgo

package jitspeak

/*
#include <stdint.h>
#include <stdlib.h>

typedef void (*yy_error_fn)(const char* fmt, ...);

// YYError is printf-style, so the message always goes through "%s".
static void jitspeak_yyerror(uintptr_t fn, const char* msg) {
	((yy_error_fn)fn)("%s", msg);
}
*/
import "C"
import "unsafe"

func callYYError(fn uintptr, msg string) bool {
	cmsg := C.CString(msg)
	defer C.free(unsafe.Pointer(cmsg))

	C.jitspeak_yyerror(C.uintptr_t(fn), cmsg)
	return true
}
