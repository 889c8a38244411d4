// Package logger configures the shell's structured event log and reads it
// back for reporting.
package logger
