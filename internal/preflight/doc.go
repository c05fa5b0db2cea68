// Package preflight provides readiness checks for the paths and workspace
// idmend depends on.
//
// The CLI "idmend check" command runs RunAll and prints one line per result.
// Checks never write to the workspace.
package preflight
