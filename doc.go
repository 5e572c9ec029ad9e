// Native extension for the GameMaker runner.
//
// The runner hands native extensions a table of its own functions at load
// time. Once that table has been accepted, this package can route native
// faults into the runner's error reporting and overwrite variables on runner
// objects by walking their variable maps in place.
//
// Limitations:
//   - Fault interception is only implemented on Windows
//   - Object layouts are those of the 64-bit runner and break when it changes
//   - Inject trusts whatever object pointer it is given
package jitspeak
