package commands

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/josephlewis42/quash/core/vos"
)

var (
	unescapeOctal   = regexp.MustCompile(`\\0[0-7][0-7]?[0-7]?`)
	unescapeHex     = regexp.MustCompile(`\\x[0-9a-fA-F][0-9a-fA-F]?`)
	unescapeReplace = strings.NewReplacer(
		`\n`, "\n", // newline
		`\r`, "\r", // carriage return
		`\t`, "\t", // horizontal tab
		`\\`, `\`, // backslash literal
		`\b`, "\b", // backspace
		`\a`, "\a", // alert
		`\f`, "\f", // form feed
		`\v`, "\v", // vertical tab
	)
)

func unescape(s string) string {
	s = unescapeReplace.Replace(s)
	s = unescapeOctal.ReplaceAllStringFunc(s, func(arg string) string {
		out, err := strconv.ParseInt(arg[2:], 8, 16)
		if err != nil || out > 0xff {
			return arg
		}
		return string(rune(out))
	})
	s = unescapeHex.ReplaceAllStringFunc(s, func(arg string) string {
		out, err := strconv.ParseInt(arg[2:], 16, 16)
		if err != nil {
			return arg
		}
		return string(rune(out))
	})
	return s
}

// echoOptions reports whether word is a cluster of echo options such as
// "-n" or "-neE". Anything else, "-" and "--" included, is printed.
func echoOptions(word string) bool {
	if len(word) < 2 || word[0] != '-' {
		return false
	}
	return strings.Trim(word[1:], "neE") == ""
}

// Echo writes its arguments separated by spaces. Like bash, only leading
// words made of n, e and E letters are options.
func Echo(proc vos.VOS, args []string) int {
	var escaped, noNewline bool

	words := args
	if len(words) > 0 {
		words = words[1:]
	}
	for len(words) > 0 && echoOptions(words[0]) {
		for _, c := range words[0][1:] {
			switch c {
			case 'n':
				noNewline = true
			case 'e':
				escaped = true
			case 'E':
				escaped = false
			}
		}
		words = words[1:]
	}

	w := proc.Stdout()
	for i, arg := range words {
		if i > 0 {
			fmt.Fprint(w, " ")
		}

		if escaped {
			arg = unescape(arg)
		}

		fmt.Fprint(w, arg)
	}

	if !noNewline {
		fmt.Fprintln(w)
	}

	return 0
}

var _ ChildFunc = Echo
