package agents

import (
	"context"
	"fmt"
	"strings"

	"github.com/sanjoy16/C-Autograder-Pro/internal/llm"
	"github.com/tidwall/gjson"
)

const unknownExpected = "Unknown"

type TestCase struct {
	Input    string `json:"input"`
	Expected string `json:"expected"`
}

// FallbackTestCases is the fixed set used whenever generation fails. It
// suits programs that echo an integer read from stdin.
func FallbackTestCases() []TestCase {
	return []TestCase{
		{Input: "1\n", Expected: "1"},
		{Input: "0\n", Expected: "0"},
		{Input: "5\n", Expected: "5"},
		{Input: "-1\n", Expected: "-1"},
		{Input: "10\n", Expected: "10"},
	}
}

// GenerateTestCases asks gen for test cases for a program with the given
// title. At most llm.TestCount cases are returned.
func GenerateTestCases(ctx context.Context, gen llm.Generator, title string) ([]TestCase, error) {
	text, err := gen.Generate(ctx, llm.TestCasesPrompt(title))
	if err != nil {
		return nil, fmt.Errorf("generating test cases: %w", err)
	}
	return ParseTestCases(text)
}

// ParseTestCases extracts the JSON array between the first '[' and the last
// ']' of text. Anything other than a non-empty array of objects is
// ErrMalformedTestCases.
func ParseTestCases(text string) ([]TestCase, error) {
	start := strings.Index(text, "[")
	end := strings.LastIndex(text, "]")
	if start < 0 || end < start {
		return nil, fmt.Errorf("no JSON array in response: %w", ErrMalformedTestCases)
	}
	raw := text[start : end+1]
	if !gjson.Valid(raw) {
		return nil, fmt.Errorf("invalid JSON array: %w", ErrMalformedTestCases)
	}
	parsed := gjson.Parse(raw)
	if !parsed.IsArray() {
		return nil, fmt.Errorf("response is not an array: %w", ErrMalformedTestCases)
	}

	elems := parsed.Array()
	if len(elems) == 0 {
		return nil, fmt.Errorf("empty array: %w", ErrMalformedTestCases)
	}
	if len(elems) > llm.TestCount {
		elems = elems[:llm.TestCount]
	}
	cases := make([]TestCase, 0, len(elems))
	for i, elem := range elems {
		if !elem.IsObject() {
			return nil, fmt.Errorf("element %d is not an object: %w", i, ErrMalformedTestCases)
		}
		cases = append(cases, TestCase{
			Input:    fieldString(elem.Get("input"), ""),
			Expected: fieldString(elem.Get("expected"), unknownExpected),
		})
	}
	return cases, nil
}

// fieldString stringifies a scalar field; missing and null yield def.
// Numbers keep their JSON spelling so 5.0 is not collapsed to 5.
func fieldString(r gjson.Result, def string) string {
	if !r.Exists() || r.Type == gjson.Null {
		return def
	}
	if r.Type == gjson.Number {
		return r.Raw
	}
	return r.String()
}

// Passes reports whether actual matches expected, ignoring case. A match is
// equality or expected occurring anywhere inside actual.
func Passes(expected, actual string) bool {
	e := strings.ToLower(expected)
	a := strings.ToLower(actual)
	return e == a || strings.Contains(a, e)
}
