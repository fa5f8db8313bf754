// Package planglist is the catalogue of languages the editor supports.
package planglist

import (
	"fmt"
	"path/filepath"
	"strings"
)

type ProgrammingLang struct {
	ID             string
	FullName       string
	CodeFilename   string
	HelloWorldCode string
	// LineComment starts a single-line comment in the language.
	LineComment string
	Enabled     bool
}

// Extension of source files, without the dot.
func (l ProgrammingLang) Extension() string {
	i := strings.LastIndex(l.CodeFilename, ".")
	if i < 0 {
		return ""
	}
	return l.CodeFilename[i+1:]
}

var langs = []ProgrammingLang{
	{
		ID:           "javascript",
		FullName:     "JavaScript (Node.js)",
		CodeFilename: "main.js",
		HelloWorldCode: `function main() {
  console.log("Hello, World!");
}
`,
		LineComment: "//",
		Enabled:     true,
	},
	{
		ID:           "python",
		FullName:     "Python 3",
		CodeFilename: "main.py",
		HelloWorldCode: `def main():
    print("Hello, World!")
`,
		LineComment: "#",
		Enabled:     true,
	},
	{
		ID:           "java",
		FullName:     "Java",
		CodeFilename: "Main.java",
		HelloWorldCode: `public class Main {
    public static void main(String[] args) {
        System.out.println("Hello, World!");
    }
}
`,
		LineComment: "//",
		Enabled:     true,
	},
	{
		ID:           "cpp",
		FullName:     "C++17",
		CodeFilename: "main.cpp",
		HelloWorldCode: `#include <iostream>

int main() {
    std::cout << "Hello, World!" << std::endl;
    return 0;
}
`,
		LineComment: "//",
		Enabled:     true,
	},
}

// ListProgrammingLanguages returns the enabled languages in display order.
func ListProgrammingLanguages() ([]ProgrammingLang, error) {
	res := make([]ProgrammingLang, 0, len(langs))
	for _, l := range langs {
		if l.Enabled {
			res = append(res, l)
		}
	}
	return res, nil
}

func GetProgrammingLanguageById(id string) (*ProgrammingLang, error) {
	for _, l := range langs {
		if l.ID == id && l.Enabled {
			lang := l
			return &lang, nil
		}
	}
	return nil, ErrInvalidProgLang().SetDebug(fmt.Errorf("language %q", id))
}

// IDs lists the enabled language ids.
func IDs() []string {
	res := make([]string, 0, len(langs))
	for _, l := range langs {
		if l.Enabled {
			res = append(res, l.ID)
		}
	}
	return res
}

// Next cycles to the language after id, wrapping around.
func Next(id string) string {
	ids := IDs()
	for i, v := range ids {
		if v == id {
			return ids[(i+1)%len(ids)]
		}
	}
	return ids[0]
}

// FromFilename picks the language by the file's extension, e.g. "two_sum.py".
func FromFilename(name string) (*ProgrammingLang, error) {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(name), "."))
	for _, l := range langs {
		if l.Enabled && ext != "" && l.Extension() == ext {
			lang := l
			return &lang, nil
		}
	}
	return nil, newErrUnknownExtension(filepath.Base(name))
}
