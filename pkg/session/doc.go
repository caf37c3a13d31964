// Package session implements the Session Shell: the single owner of all
// mutable input state (slope config, material layers, loads, project
// metadata) and the driver of one-shot runs against the external
// analysis engine.
//
// A Shell is one interactive session. A Manager adds named, persisted
// sessions on top of a ports.StateStore, serializing access per session.
package session
