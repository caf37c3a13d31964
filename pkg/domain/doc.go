// Package domain holds the core data model of the session shell: slope
// geometry, material layers, loads, analysis requests/results and the
// session state machine. It is dependency-free on purpose; adapters and
// the shell bind it to storage, transport and the external engine.
package domain
