// Package ports declares the driven-side interfaces of the shell:
// the external analysis engine, state persistence and distributed
// locking. Adapters live under internal/adapters and pkg/adapters.
package ports
