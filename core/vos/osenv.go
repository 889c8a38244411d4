package vos

import "os"

// OSEnv binds VEnv to the environment and working directory of the running
// process, so changes are inherited by every process it starts afterwards.
type OSEnv struct{}

var _ VEnv = OSEnv{}

// UserHomeDir implements VEnv.UserHomeDir.
func (OSEnv) UserHomeDir() (string, error) { return os.UserHomeDir() }

// Unsetenv implements VEnv.Unsetenv.
func (OSEnv) Unsetenv(key string) error { return os.Unsetenv(key) }

// Setenv implements VEnv.Setenv.
func (OSEnv) Setenv(key, value string) error { return os.Setenv(key, value) }

// LookupEnv implements VEnv.LookupEnv.
func (OSEnv) LookupEnv(key string) (string, bool) { return os.LookupEnv(key) }

// Getenv implements VEnv.Getenv.
func (OSEnv) Getenv(key string) string { return os.Getenv(key) }

// ExpandEnv implements VEnv.ExpandEnv.
func (OSEnv) ExpandEnv(s string) string { return os.ExpandEnv(s) }

// Environ implements VEnv.Environ.
func (OSEnv) Environ() []string { return os.Environ() }

// Getwd implements VEnv.Getwd.
func (OSEnv) Getwd() (string, error) { return os.Getwd() }

// Chdir implements VEnv.Chdir.
func (OSEnv) Chdir(dir string) error { return os.Chdir(dir) }
