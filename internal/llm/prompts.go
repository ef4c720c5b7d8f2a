package llm

import "fmt"

// TestCount is how many cases the test generator is asked for.
const TestCount = 5

func TestCasesPrompt(title string) string {
	return fmt.Sprintf(`
Generate EXACTLY %d test cases.
Return ONLY valid JSON.
Ensure inputs are simple values suitable for standard input (stdin).

Program Title:
%s

Format:
[
  {"input":"value","expected":"value"}
]
`, TestCount, title)
}

func NarrativePrompt(reportJSON string) string {
	return fmt.Sprintf(`
Generate a professional university-grade evaluation report using this data.
No JSON. Human readable format.

DATA:
%s
`, reportJSON)
}

func CompileErrorPrompt(errorLog string) string {
	return fmt.Sprintf(`
You are a C programming instructor.

Rules:
- Do NOT rewrite the student's code.
- Do NOT generate a full solution.
- ONLY explain the errors and give hints.

GCC Error Log:
%s
`, errorLog)
}
