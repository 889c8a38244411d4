// Package vos holds the operating-system collaborators the shell engine talks
// to: the environment and working directory store, and the standard streams
// of a process.
package vos

// VOS is the slice of the operating system visible to a shell: its
// environment, working directory and standard streams.
type VOS interface {
	VEnv
	VIO
}

// Proc bundles an environment with a set of standard streams.
type Proc struct {
	VEnv
	VIO
}

var _ VOS = (*Proc)(nil)
