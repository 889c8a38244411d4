package vos

import (
	"fmt"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
)

func ExampleCopyEnv() {
	env := NewMapEnv()
	CopyEnv(env, []string{"A=B", "C=D", "E", "F=G=H"})

	fmt.Printf("Environ(): %q\n", env.Environ())
	fmt.Printf("Getenv(\"F\"): %q\n", env.Getenv("F"))

	// Output: Environ(): ["A=B" "C=D" "E=" "F=G=H"]
	// Getenv("F"): "G=H"
}

func ExampleNewMapEnvFromEnvList() {
	env := NewMapEnvFromEnvList([]string{"A=B", "C=D", "E", "F=G=H"})

	fmt.Printf("Environ(): %q\n", env.Environ())
	fmt.Printf("Getenv(\"F\"): %q\n", env.Getenv("F"))

	// Output: Environ(): ["A=B" "C=D" "E=" "F=G=H"]
	// Getenv("F"): "G=H"
}

func ExampleMapEnv_Unsetenv() {
	env := NewMapEnv()
	env.Setenv("A", "B")
	env.Setenv("C", "D")

	fmt.Println("Before:", env.Environ())
	env.Unsetenv("A")
	fmt.Println("After:", env.Environ())

	// Output: Before: [A=B C=D]
	// After: [C=D]
}

func ExampleMapEnv_LookupEnv() {
	env := NewMapEnv()
	env.Setenv("A", "B")

	val, ok := env.LookupEnv("A")
	fmt.Println("Existing", "val:", val, "ok:", ok)
	val, ok = env.LookupEnv("B")
	fmt.Println("Missing", "val:", val, "ok:", ok)

	// Output: Existing val: B ok: true
	// Missing val:  ok: false
}

func TestMapEnv_Chdir(t *testing.T) {
	env := NewMapEnv()

	assert.Nil(t, env.Chdir("/tmp"))
	assert.Nil(t, env.Chdir("sub/../other"))

	wd, err := env.Getwd()
	assert.Nil(t, err)
	assert.Equal(t, "/tmp/other", wd)
}

func TestMapEnv_ChdirStat(t *testing.T) {
	dir := t.TempDir()
	file := dir + "/file"
	assert.Nil(t, os.WriteFile(file, nil, 0600))

	env := NewMapEnv()
	env.Stat = os.Stat

	assert.Nil(t, env.Chdir(dir))
	assert.Error(t, env.Chdir(file))
	assert.Error(t, env.Chdir(dir+"/missing"))

	wd, _ := env.Getwd()
	assert.Equal(t, dir, wd)
}

func TestMapEnv_ExpandEnv(t *testing.T) {
	env := NewMapEnvFromEnvList([]string{"A=alpha"})

	assert.Equal(t, "alpha-", env.ExpandEnv("$A-$B"))
	assert.Equal(t, "alphabet", env.ExpandEnv("${A}bet"))
}
