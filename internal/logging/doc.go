// Package logging assembles the structured slog loggers idmend uses as its
// message channel.
//
// It owns the console and JSON handlers, centralizes level and output
// plumbing, and exposes context helpers so every line written during one
// repair run carries the same run_id. Informational progress goes out at INFO
// and the terminal failure of a run at ERROR; nothing consumes these lines
// programmatically.
package logging
