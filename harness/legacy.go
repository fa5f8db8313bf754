package harness

import (
	"regexp"
	"strings"
)

var (
	pyDefRe    = regexp.MustCompile(`(?m)^def\s+(\w+)\s*\(`)
	pyStdinRe  = regexp.MustCompile(`sys\.stdin\.read\(\)|\binput\(\)`)
	inputLitRe = regexp.MustCompile(`(\binput\s*=\s*)"(?:[^"\\\n]|\\.)*"`)
)

// Splice replaces the copy of the starter code embedded in an older
// execution template with the user's code. It tries an exact match, then
// for Python the starter's def block, then a match that ignores
// differences in whitespace.
func Splice(starter, execTmpl, lang, code string) (string, bool) {
	for _, s := range []string{starter, strings.TrimSpace(starter)} {
		if s != "" && strings.Contains(execTmpl, s) {
			return strings.Replace(execTmpl, s, code, 1), true
		}
	}

	if lang == "python" {
		if out, ok := splicePythonDef(starter, execTmpl, code); ok {
			return out, true
		}
	}

	fields := strings.Fields(starter)
	if len(fields) == 0 {
		return execTmpl, false
	}
	quoted := make([]string, len(fields))
	for i, f := range fields {
		quoted[i] = regexp.QuoteMeta(f)
	}
	re, err := regexp.Compile(strings.Join(quoted, `\s+`))
	if err != nil {
		return execTmpl, false
	}
	loc := re.FindStringIndex(execTmpl)
	if loc == nil {
		return execTmpl, false
	}
	return execTmpl[:loc[0]] + code + execTmpl[loc[1]:], true
}

// splicePythonDef swaps the whole def block named like the starter's
// function, body included.
func splicePythonDef(starter, execTmpl, code string) (string, bool) {
	m := pyDefRe.FindStringSubmatch(starter)
	if m == nil {
		return execTmpl, false
	}
	block := regexp.MustCompile(`(?m)^def\s+` + regexp.QuoteMeta(m[1]) +
		`\s*\([^)]*\)[^:\n]*:[^\n]*\n(?:(?:[ \t]+[^\n]*|[ \t]*)(?:\n|$))*`)
	loc := block.FindStringIndex(execTmpl)
	if loc == nil {
		return execTmpl, false
	}
	// keep the blank lines that separate the block from what follows
	end := loc[0] + len(strings.TrimRight(execTmpl[loc[0]:loc[1]], " \t\n"))
	return execTmpl[:loc[0]] + strings.TrimRight(code, "\n") + execTmpl[end:], true
}

// InjectInput writes the test input into a harness. Python harnesses have
// their stdin read replaced; the others get their first hard-coded
// `input = "..."` literal replaced.
func InjectInput(harness, lang, input string) (string, bool) {
	if lang == "python" {
		loc := pyStdinRe.FindStringIndex(harness)
		if loc == nil {
			return harness, false
		}
		return harness[:loc[0]] + Quote(input) + harness[loc[1]:], true
	}

	loc := inputLitRe.FindStringSubmatchIndex(harness)
	if loc == nil {
		return harness, false
	}
	// loc[2:4] is the `input =` prefix
	return harness[:loc[3]] + Quote(input) + harness[loc[1]:], true
}
