// Package harness assembles the program sent to the execution service from
// a challenge's execution template, the user's code and a test input.
package harness

import (
	"regexp"
	"strconv"
	"strings"
)

const (
	CodePlaceholder     = "{{USER_CODE}}"
	InputPlaceholder    = "{{INPUT}}"
	RawInputPlaceholder = "{{INPUT_RAW}}"
)

var placeholderRe = regexp.MustCompile(`\{\{\s*(USER_CODE|INPUT_RAW|INPUT(?:_(\d+))?)\s*\}\}`)

// HasPlaceholders reports whether the template uses named placeholders
// rather than an embedded copy of the starter code.
func HasPlaceholders(execTmpl string) bool {
	return placeholderRe.MatchString(execTmpl)
}

// Render substitutes every placeholder in a single pass, so text coming
// from the user is never expanded again.
//
//	{{USER_CODE}}  the editor contents
//	{{INPUT}}      the whole input as a string literal of the language
//	{{INPUT_RAW}}  the whole input as is
//	{{INPUT_n}}    line n of the input (1-based), as is
func Render(execTmpl, code, input string) (string, error) {
	if !hasCodeToken(execTmpl) {
		return "", newErrNoCodePlaceholder()
	}
	lines := inputLines(input)

	var err error
	out := placeholderRe.ReplaceAllStringFunc(execTmpl, func(tok string) string {
		m := placeholderRe.FindStringSubmatch(tok)
		switch {
		case m[1] == "USER_CODE":
			return code
		case m[1] == "INPUT_RAW":
			return input
		case m[1] == "INPUT":
			return Quote(input)
		}
		idx, _ := strconv.Atoi(m[2])
		if idx < 1 || idx > len(lines) {
			if err == nil {
				err = newErrInputIndex(idx, len(lines))
			}
			return tok
		}
		return lines[idx-1]
	})
	if err != nil {
		return "", err
	}
	return out, nil
}

// UsesInput reports whether the template embeds the test input itself.
func UsesInput(execTmpl string) bool {
	for _, m := range placeholderRe.FindAllStringSubmatch(execTmpl, -1) {
		if m[1] != "USER_CODE" {
			return true
		}
	}
	return false
}

// Validate accepts templates that either carry a code placeholder or
// still embed their starter code for legacy splicing.
func Validate(execTmpl, starter string) error {
	if hasCodeToken(execTmpl) {
		return nil
	}
	if s := strings.TrimSpace(starter); s != "" && strings.Contains(execTmpl, s) {
		return nil
	}
	return newErrNoCodePlaceholder()
}

func hasCodeToken(execTmpl string) bool {
	for _, m := range placeholderRe.FindAllStringSubmatch(execTmpl, -1) {
		if m[1] == "USER_CODE" {
			return true
		}
	}
	return false
}

func inputLines(input string) []string {
	trimmed := strings.TrimRight(strings.ReplaceAll(input, "\r\n", "\n"), "\n")
	if trimmed == "" {
		return nil
	}
	return strings.Split(trimmed, "\n")
}

// Quote renders s as a double-quoted string literal. The escapes used are
// shared by JavaScript, Python, Java and C++.
func Quote(s string) string {
	var b strings.Builder
	b.Grow(len(s) + 2)
	b.WriteByte('"')
	for _, r := range s {
		switch r {
		case '\\':
			b.WriteString(`\\`)
		case '"':
			b.WriteString(`\"`)
		case '\n':
			b.WriteString(`\n`)
		case '\r':
			b.WriteString(`\r`)
		case '\t':
			b.WriteString(`\t`)
		default:
			b.WriteRune(r)
		}
	}
	b.WriteByte('"')
	return b.String()
}
