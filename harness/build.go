package harness

import (
	"github.com/programme-lv/arena/apiclient"
)

type Mode int

const (
	// ModeRaw sends the editor contents unmodified.
	ModeRaw Mode = iota
	ModePlaceholder
	ModeLegacy
)

func (m Mode) String() string {
	switch m {
	case ModePlaceholder:
		return "placeholder"
	case ModeLegacy:
		return "legacy"
	default:
		return "raw"
	}
}

// Assembly is the program ready for the execution service.
type Assembly struct {
	Source string
	Mode   Mode
	// Fallback is set when a template existed but could not be applied,
	// or when no template exists for the language.
	Fallback bool
	// InputInjected is set when the input is part of Source. Otherwise the
	// input has to go to the program's stdin.
	InputInjected bool
	// Err is set when a placeholder template could not be rendered.
	Err error
}

// FindTemplate returns the template for lang, or nil.
func FindTemplate(templates []apiclient.FunctionTemplate, lang string) *apiclient.FunctionTemplate {
	for i := range templates {
		if templates[i].Language == lang {
			return &templates[i]
		}
	}
	return nil
}

// Build assembles the program for one test input. Placeholder templates
// are rendered strictly; legacy templates degrade to the raw code.
func Build(tmpl *apiclient.FunctionTemplate, lang, code, input string) Assembly {
	if tmpl == nil || tmpl.ExecutionTemplate == "" {
		return Assembly{Source: code, Mode: ModeRaw, Fallback: true}
	}

	if HasPlaceholders(tmpl.ExecutionTemplate) {
		src, err := Render(tmpl.ExecutionTemplate, code, input)
		if err != nil {
			return Assembly{Source: code, Mode: ModePlaceholder, Fallback: true, Err: err}
		}
		return Assembly{
			Source:        src,
			Mode:          ModePlaceholder,
			InputInjected: UsesInput(tmpl.ExecutionTemplate),
		}
	}

	spliced, ok := Splice(tmpl.StarterCode, tmpl.ExecutionTemplate, lang, code)
	if !ok {
		return Assembly{Source: code, Mode: ModeLegacy, Fallback: true}
	}
	src, injected := InjectInput(spliced, lang, input)
	return Assembly{Source: src, Mode: ModeLegacy, InputInjected: injected}
}
