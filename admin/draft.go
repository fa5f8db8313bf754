package admin

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
	"github.com/programme-lv/arena/apiclient"
)

type TestCaseDraft struct {
	Input        string `toml:"input"`
	InputFile    string `toml:"input_file"`
	Expected     string `toml:"expected"`
	ExpectedFile string `toml:"expected_file"`
	Hidden       bool   `toml:"hidden"`
	Points       int    `toml:"points" validate:"min=0"`
}

type TemplateDraft struct {
	Language          string `toml:"language" validate:"notblank"`
	FunctionName      string `toml:"function_name"`
	Signature         string `toml:"signature"`
	StarterCode       string `toml:"starter_code"`
	StarterFile       string `toml:"starter_file"`
	ExecutionTemplate string `toml:"execution_template"`
	ExecutionFile     string `toml:"execution_file"`
}

// ChallengeDraft is what an admin fills in to create or edit a challenge.
type ChallengeDraft struct {
	Title         string               `toml:"title" validate:"notblank"`
	Slug          string               `toml:"slug"`
	Description   string               `toml:"description" validate:"notblank"`
	Difficulty    apiclient.Difficulty `toml:"difficulty" validate:"oneof=easy medium hard"`
	Tags          []string             `toml:"tags"`
	TimeLimitMs   int                  `toml:"time_limit_ms" validate:"min=1"`
	MemoryLimitMB int                  `toml:"memory_limit_mb" validate:"min=1"`
	Points        int                  `toml:"points" validate:"min=0"`
	Author        string               `toml:"author"`
	// TestsDir holds NAME.in / NAME.ans pairs. Tests whose name starts
	// with "sample" are visible, the rest hidden.
	TestsDir  string          `toml:"tests_dir"`
	TestCases []TestCaseDraft `toml:"test_cases" validate:"dive"`
	Templates []TemplateDraft `toml:"templates" validate:"dive"`
}

type ContestChallengeDraft struct {
	ID     string `toml:"id" validate:"notblank"`
	Points int    `toml:"points" validate:"min=0"`
}

type ContestDraft struct {
	Title                string                  `toml:"title" validate:"notblank"`
	Description          string                  `toml:"description"`
	StartTime            time.Time               `toml:"start_time" validate:"required"`
	EndTime              time.Time               `toml:"end_time" validate:"required"`
	RegistrationDeadline time.Time               `toml:"registration_deadline"`
	MaxParticipants      int                     `toml:"max_participants" validate:"min=0"`
	Prizes               []string                `toml:"prizes"`
	Rules                string                  `toml:"rules"`
	Challenges           []ContestChallengeDraft `toml:"challenges" validate:"dive"`
}

func decodeStrict(path string, v any) error {
	content, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read draft: %w", err)
	}
	dec := toml.NewDecoder(bytes.NewReader(content))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("failed to decode %s: %w", filepath.Base(path), err)
	}
	return nil
}

// LoadChallengeDraft reads a challenge TOML file. File references inside
// it are resolved relative to the file's directory.
func LoadChallengeDraft(path string) (ChallengeDraft, error) {
	var d ChallengeDraft
	if err := decodeStrict(path, &d); err != nil {
		return d, err
	}
	dir := filepath.Dir(path)

	for i := range d.TestCases {
		tc := &d.TestCases[i]
		if err := readInto(dir, tc.InputFile, &tc.Input); err != nil {
			return d, err
		}
		if err := readInto(dir, tc.ExpectedFile, &tc.Expected); err != nil {
			return d, err
		}
	}
	for i := range d.Templates {
		t := &d.Templates[i]
		if err := readInto(dir, t.StarterFile, &t.StarterCode); err != nil {
			return d, err
		}
		if err := readInto(dir, t.ExecutionFile, &t.ExecutionTemplate); err != nil {
			return d, err
		}
	}
	if d.TestsDir != "" {
		tests, err := readTestsDir(filepath.Join(dir, d.TestsDir))
		if err != nil {
			return d, err
		}
		d.TestCases = append(d.TestCases, tests...)
	}
	return d, nil
}

func LoadContestDraft(path string) (ContestDraft, error) {
	var d ContestDraft
	err := decodeStrict(path, &d)
	return d, err
}

func readInto(dir, name string, dst *string) error {
	if name == "" {
		return nil
	}
	content, err := os.ReadFile(filepath.Join(dir, name))
	if err != nil {
		return fmt.Errorf("error reading %s: %w", name, err)
	}
	*dst = string(content)
	return nil
}

func readTestsDir(path string) ([]TestCaseDraft, error) {
	entries, err := os.ReadDir(path)
	if err != nil {
		return nil, fmt.Errorf("error reading tests directory: %w", err)
	}

	inputs := map[string]string{}
	answers := map[string]string{}
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		ext := filepath.Ext(name)
		base := strings.TrimSuffix(name, ext)
		switch ext {
		case ".in":
			inputs[base] = name
		case ".ans", ".out":
			answers[base] = name
		}
	}

	bases := make([]string, 0, len(inputs))
	for base := range inputs {
		if _, ok := answers[base]; !ok {
			return nil, fmt.Errorf("test %s has no answer file", base)
		}
		bases = append(bases, base)
	}
	if len(bases) != len(answers) {
		return nil, fmt.Errorf("tests directory has answers without inputs")
	}
	sort.Strings(bases)

	tests := make([]TestCaseDraft, 0, len(bases))
	for _, base := range bases {
		tc := TestCaseDraft{Hidden: !strings.HasPrefix(base, "sample")}
		if err := readInto(path, inputs[base], &tc.Input); err != nil {
			return nil, err
		}
		if err := readInto(path, answers[base], &tc.Expected); err != nil {
			return nil, err
		}
		tests = append(tests, tc)
	}
	return tests, nil
}

// EncodeChallengeDraft renders a draft back to TOML, e.g. to scaffold an
// edit of an existing challenge.
func EncodeChallengeDraft(d ChallengeDraft) ([]byte, error) {
	buf := bytes.NewBuffer(make([]byte, 0))
	err := toml.NewEncoder(buf).
		SetTablesInline(false).
		SetIndentTables(true).Encode(d)
	if err != nil {
		return nil, fmt.Errorf("failed to encode the draft: %w", err)
	}
	return buf.Bytes(), nil
}

// DraftFromChallenge builds an editable draft from remote entities.
func DraftFromChallenge(ch apiclient.Challenge, tcs []apiclient.TestCase, tmpls []apiclient.FunctionTemplate) ChallengeDraft {
	d := ChallengeDraft{
		Title:         ch.Title,
		Slug:          ch.Slug,
		Description:   ch.Description,
		Difficulty:    ch.Difficulty,
		Tags:          ch.Tags,
		TimeLimitMs:   ch.TimeLimitMs,
		MemoryLimitMB: ch.MemoryLimitMB,
		Points:        ch.Points,
		Author:        ch.Author,
	}
	for _, tc := range tcs {
		d.TestCases = append(d.TestCases, TestCaseDraft{
			Input:    tc.Input,
			Expected: tc.ExpectedOutput,
			Hidden:   tc.IsHidden,
			Points:   tc.Points,
		})
	}
	for _, t := range tmpls {
		d.Templates = append(d.Templates, TemplateDraft{
			Language:          t.Language,
			FunctionName:      t.FunctionName,
			Signature:         t.Signature,
			StarterCode:       t.StarterCode,
			ExecutionTemplate: t.ExecutionTemplate,
		})
	}
	return d
}
