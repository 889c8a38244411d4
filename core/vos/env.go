package vos

import (
	"fmt"
	"os"
	"path"
	"sort"
	"strings"
	"sync"
)

// VEnv represents a process environment and working directory.
type VEnv interface {
	// UserHomeDir returns the current user's home directory.
	UserHomeDir() (string, error)

	// Unsetenv unsets a single environment variable.
	Unsetenv(key string) error

	// Setenv sets the value of the environment variable named by the key.
	// It returns an error, if any.
	Setenv(key, value string) error

	// LookupEnv retrieves the value of the environment variable named by the key.
	// If the variable is present in the environment the value (which may be
	// empty) is returned and the boolean is true. Otherwise the returned value
	// will be empty and the boolean will be false.
	LookupEnv(key string) (string, bool)

	// Getenv retrieves the value of the environment variable named by the key.
	// It returns the value, which will be empty if the variable is not present.
	// To distinguish between an empty value and an unset value, use LookupEnv.
	Getenv(key string) string

	// ExpandEnv replaces ${var} or $var in the string according to the values of
	// the current environment variables. References to undefined variables are
	// replaced by the empty string.
	ExpandEnv(s string) string

	// Environ returns a copy of strings representing the environment, in the
	// form "key=value".
	Environ() []string

	// Getwd returns the absolute path of the working directory.
	Getwd() (string, error)

	// Chdir changes the working directory.
	Chdir(dir string) error
}

// CopyEnv copies all the "key=value" pairs in environ to dst.
func CopyEnv(dst VEnv, environ []string) error {
	for _, e := range environ {
		key, value := splitEnv(e)
		if err := dst.Setenv(key, value); err != nil {
			return err
		}
	}

	return nil
}

func splitEnv(e string) (key, value string) {
	split := strings.SplitN(e, "=", 2)
	key = split[0]
	if len(split) > 1 {
		value = split[1]
	}
	return
}

// NewMapEnv creates a new environment backed by a map rooted at "/".
func NewMapEnv() *MapEnv {
	return &MapEnv{dir: "/"}
}

// NewMapEnvFromEnvList creates a new environment holding a copy of environ.
func NewMapEnvFromEnvList(environ []string) *MapEnv {
	out := NewMapEnv()
	// Ignore error, it will never be set for MapEnv.
	_ = CopyEnv(out, environ)
	return out
}

// MapEnv implements an in-memory VEnv. Chdir only tracks the path, it is up to
// the caller to supply a Stat function if directories must exist.
type MapEnv struct {
	rw  sync.RWMutex
	env map[string]string
	dir string

	// Stat, if set, is consulted by Chdir to validate the target.
	Stat func(name string) (os.FileInfo, error)
}

var _ VEnv = (*MapEnv)(nil)

// UserHomeDir implements VEnv.UserHomeDir.
func (m *MapEnv) UserHomeDir() (string, error) {
	return m.Getenv("HOME"), nil
}

// Unsetenv implements VEnv.Unsetenv.
func (m *MapEnv) Unsetenv(key string) error {
	m.rw.Lock()
	defer m.rw.Unlock()
	if m.env != nil {
		delete(m.env, key)
	}
	return nil
}

// Setenv implements VEnv.Setenv.
func (m *MapEnv) Setenv(key, value string) error {
	m.rw.Lock()
	defer m.rw.Unlock()

	if m.env == nil {
		m.env = make(map[string]string)
	}
	m.env[key] = value
	return nil
}

// LookupEnv implements VEnv.LookupEnv.
func (m *MapEnv) LookupEnv(key string) (string, bool) {
	m.rw.RLock()
	defer m.rw.RUnlock()

	val, ok := m.env[key]
	return val, ok
}

// Getenv implements VEnv.Getenv.
func (m *MapEnv) Getenv(key string) string {
	val, _ := m.LookupEnv(key)
	return val
}

// ExpandEnv implements VEnv.ExpandEnv.
func (m *MapEnv) ExpandEnv(s string) string {
	return os.Expand(s, m.Getenv)
}

// Environ implements VEnv.Environ. Entries are sorted by key.
func (m *MapEnv) Environ() []string {
	m.rw.RLock()
	defer m.rw.RUnlock()

	var env []string
	for k, v := range m.env {
		env = append(env, fmt.Sprintf("%s=%s", k, v))
	}
	sort.Strings(env)

	return env
}

// Getwd implements VEnv.Getwd.
func (m *MapEnv) Getwd() (string, error) {
	m.rw.RLock()
	defer m.rw.RUnlock()
	return m.dir, nil
}

// Chdir implements VEnv.Chdir.
func (m *MapEnv) Chdir(dir string) error {
	m.rw.Lock()
	defer m.rw.Unlock()

	if !path.IsAbs(dir) {
		dir = path.Join(m.dir, dir)
	}
	dir = path.Clean(dir)

	if m.Stat != nil {
		stat, err := m.Stat(dir)
		switch {
		case err != nil:
			return err
		case !stat.IsDir():
			return fmt.Errorf("%s: Not a directory", dir)
		}
	}

	m.dir = dir
	return nil
}
