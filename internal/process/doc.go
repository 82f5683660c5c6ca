// Package process launches the program that uses an unlocked profile and
// makes sure it can be stopped.
//
// On Unix the program gets its own process group so Terminate reaches any
// children it spawned. On Windows Terminate kills the process.
package process
