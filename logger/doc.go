// Package logger provides a zerolog-backed implementation of the core
// genstage.Logger interface, configured from a small Config or from the
// environment.
package logger
