package jobs

import (
	"bytes"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/sebdah/goldie/v2"
)

func ExampleFormatLine() {
	fmt.Print(FormatLine(1, 4242, "sleep 10 &"))
	// Output: [1]	    4242	sleep 10 &
}

func TestPrinter(t *testing.T) {
	g := goldie.New(t, goldie.WithFixtureDir(filepath.Join("testdata", "golden")))

	buf := &bytes.Buffer{}
	p := &Printer{W: buf}
	p.Started(1, 4507, "sleep 10 &")
	p.Started(12, 123456789, "find / | wc -l &")
	p.Completed(Completion{JobID: 1, FirstPID: 4507, Cmd: "sleep 10 &"})

	g.Assert(t, "printer", buf.Bytes())
}

func TestListing(t *testing.T) {
	g := goldie.New(t, goldie.WithFixtureDir(filepath.Join("testdata", "golden")))

	lines := Listing([]Snapshot{
		{JobID: 1, FirstPID: 100, Cmd: "sleep 5 &"},
		{JobID: 3, FirstPID: 2001, Cmd: "yes | head &"},
	})

	buf := &bytes.Buffer{}
	for _, l := range lines {
		buf.WriteString(l)
	}
	g.Assert(t, "listing", buf.Bytes())
}
