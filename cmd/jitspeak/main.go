// Command jitspeak is the native half of the JITSpeak GameMaker extension.
//
// Build it as a DLL and list it in the extension:
//
//	go build -buildmode=c-shared -o jitspeak.dll ./cmd/jitspeak
//
// The runner calls YYExtensionInitialise once when the DLL is loaded. The
// other exports are GML functions and take and return doubles.
package main

/*
#include <stddef.h>
*/
import "C"

import (
	"unsafe"

	"github.com/pboyd/jitspeak"
)

var ext = jitspeak.New(jitspeak.WithLogger(newLogger()))

//export YYExtensionInitialise
func YYExtensionInitialise(runnerInterface unsafe.Pointer, functionsSize C.size_t) {
	// The runner ignores the result. Failures are logged and leave the
	// extension not ready.
	_ = ext.Initialize(runnerInterface, uintptr(functionsSize))
}

//export jitspeak_init_extension
func jitspeak_init_extension() C.double {
	return C.double(boolToDouble(ext.Ready()))
}

//export jitspeak_catch_native_exceptions
func jitspeak_catch_native_exceptions(toggle C.double) C.double {
	return C.double(ext.SetInterception(doubleToBool(float64(toggle))))
}

//export jitspeak_inject_native
func jitspeak_inject_native(destObj unsafe.Pointer, varHash C.double, fakeObj unsafe.Pointer) C.double {
	return C.double(ext.Inject((*jitspeak.ObjectBase)(destObj), varHashToID(float64(varHash)), fakeObj))
}

func main() {}
