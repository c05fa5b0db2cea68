// Package main hosts the idmend CLI.
//
// Commands load the TOML configuration once, open the configured workspace,
// and hand off to internal/dedupe. `fix` takes a per-feature-class run lock
// before editing; `scan` and `layers` only read.
package main
