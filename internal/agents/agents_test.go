package agents_test

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/sanjoy16/C-Autograder-Pro/internal/agents"
	"github.com/sanjoy16/C-Autograder-Pro/internal/execution"
	"github.com/sanjoy16/C-Autograder-Pro/internal/llm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeExecutor answers every run with fn.
type fakeExecutor struct {
	fn    func(stdin []byte) (*execution.Output, error)
	calls int
}

func (f *fakeExecutor) Run(_ context.Context, _ string, stdin []byte, _ time.Duration) (*execution.Output, error) {
	f.calls++
	return f.fn(stdin)
}

func echoExecutor() *fakeExecutor {
	return &fakeExecutor{fn: func(stdin []byte) (*execution.Output, error) {
		return &execution.Output{Stdout: stdin, Elapsed: 10 * time.Millisecond}, nil
	}}
}

func failingExecutor(err error) *fakeExecutor {
	return &fakeExecutor{fn: func([]byte) (*execution.Output, error) {
		return nil, fmt.Errorf("prog: %w", err)
	}}
}

type fakeGenerator struct {
	text string
	err  error
}

func (g fakeGenerator) Generate(context.Context, string) (string, error) {
	return g.text, g.err
}

const sampleSource = `#include <stdio.h>

// read one number
int read_value(void) {
    int x;
    scanf("%d", &x);
    return x;
}

/* entry point */
int main(void) {
    int x = read_value();
    if (x > 0) {
        printf("%d\n", x);
    }
    return 0;
}
`

var garbageSources = map[string]string{
	"empty":        "",
	"invalid utf8": "\xff\xfe\x00int main(){\xc3\x28",
	"unbalanced":   "int f( {{{ /* for ( while (",
	"binary":       string([]byte{0, 1, 2, 0x80, 0x81, '{', '}', '\r'}),
}

func TestDesign(t *testing.T) {
	d := agents.Design{Max: 15}

	r := d.Evaluate(sampleSource)
	assert.Equal(t, 13.0, r.Score)
	assert.Equal(t, "Lines: 17, Functions: 2, Comments: 2", r.Report)

	r = d.Evaluate("int main(void) { return 0; }")
	assert.Equal(t, 10.0, r.Score)
	assert.Equal(t, "Lines: 1, Functions: 1, Comments: 0", r.Report)

	long := strings.Repeat("// filler\n", 201)
	r = d.Evaluate(long)
	assert.Equal(t, 10.0, r.Score)
}

func TestDesignClampsAtZero(t *testing.T) {
	r := agents.Design{Max: 4}.Evaluate("")
	assert.Equal(t, 0.0, r.Score)
}

func TestOptimization(t *testing.T) {
	o := agents.Optimization{Max: 20}
	tests := []struct {
		name   string
		src    string
		score  float64
		report string
	}{
		{"clean", sampleSource, 20, agents.NoteNoOptimization},
		{"leak", "int *p = malloc(4);", 16, agents.NoteMemoryLeak},
		{"freed", "int *p = malloc(4); free(p);", 20, agents.NoteNoOptimization},
		{"printf in loop", "for (i = 0; i < n; i++)\n printf(\"x\");", 17, agents.NotePrintfInLoop},
		{"both", "p = malloc(1);\nfor(;;) printf(\"\");", 13, agents.NoteMemoryLeak + "\n" + agents.NotePrintfInLoop},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := o.Evaluate(tt.src)
			assert.Equal(t, tt.score, r.Score)
			assert.Equal(t, tt.report, r.Report)
		})
	}
}

func TestPerformanceFastRun(t *testing.T) {
	p := agents.Performance{Executor: echoExecutor(), Timeout: 2 * time.Second, Max: 15}
	r := p.Evaluate(context.Background(), sampleSource, "prog")
	assert.Equal(t, 15.0, r.Score)
	assert.Equal(t, "Runtime: 0.010s | Loops: 0 | Branches: 1", r.Report)
}

func TestPerformanceTimeout(t *testing.T) {
	p := agents.Performance{Executor: failingExecutor(execution.ErrTimeout), Timeout: 2 * time.Second, Max: 15}

	r := p.Evaluate(context.Background(), "", "prog")
	assert.Equal(t, 9.0, r.Score)
	assert.Equal(t, "Runtime: 2.500s | Loops: 0 | Branches: 0", r.Report)

	busy := strings.Repeat("for (;;) {} if (x) {}\n", 13)
	r = p.Evaluate(context.Background(), busy, "prog")
	assert.Equal(t, 5.0, r.Score)
	assert.Equal(t, "Runtime: 2.500s | Loops: 13 | Branches: 13", r.Report)
}

func TestPerformanceSlowRun(t *testing.T) {
	exec := &fakeExecutor{fn: func([]byte) (*execution.Output, error) {
		return &execution.Output{Elapsed: 800 * time.Millisecond}, nil
	}}
	p := agents.Performance{Executor: exec, Timeout: 2 * time.Second, Max: 15}
	assert.Equal(t, 12.0, p.Evaluate(context.Background(), "", "prog").Score)
}

func TestPerformanceRuntimeErrorRecordsZero(t *testing.T) {
	p := agents.Performance{Executor: failingExecutor(execution.ErrRuntime), Timeout: 2 * time.Second, Max: 15}
	r := p.Evaluate(context.Background(), "", "prog")
	assert.Equal(t, 15.0, r.Score)
	assert.Equal(t, "Runtime: 0.000s | Loops: 0 | Branches: 0", r.Report)
}

func TestFunctionalEchoWithFallback(t *testing.T) {
	exec := echoExecutor()
	f := agents.Functional{
		Generator: llm.Disabled{Name: "test generator"},
		Executor:  exec,
		Timeout:   2 * time.Second,
		Max:       30,
	}
	r := f.Evaluate(context.Background(), "Echo", "prog")
	assert.Equal(t, 30.0, r.Score)
	assert.Equal(t, "5/5 test cases passed.", r.Report)
	require.Len(t, r.Cases, 5)
	assert.Equal(t, 5, exec.calls)
	assert.Equal(t, "1", r.Cases[0].Input)
	assert.Equal(t, "1", r.Cases[0].Actual)
	assert.Equal(t, "-1", r.Cases[3].Expected)
}

func TestFunctionalInvalidJSONMatchesUnavailable(t *testing.T) {
	run := func(gen llm.Generator) []string {
		f := agents.Functional{Generator: gen, Executor: echoExecutor(), Timeout: time.Second, Max: 30}
		r := f.Evaluate(context.Background(), "Echo", "prog")
		var inputs []string
		for _, c := range r.Cases {
			inputs = append(inputs, c.Input)
		}
		return inputs
	}
	unavailable := run(llm.Disabled{Name: "gen"})
	assert.Equal(t, unavailable, run(fakeGenerator{text: "Sure! [ {input: 1} ]"}))
	assert.Equal(t, unavailable, run(fakeGenerator{text: "no array here"}))
	assert.Equal(t, unavailable, run(fakeGenerator{text: "[1, 2, 3]"}))
}

func TestFunctionalTruncatesToFive(t *testing.T) {
	var items []string
	for i := 0; i < 8; i++ {
		items = append(items, fmt.Sprintf(`{"input":"%d","expected":"%d"}`, i, i))
	}
	gen := fakeGenerator{text: "Here you go:\n[" + strings.Join(items, ",") + "]\nDone."}
	exec := echoExecutor()
	f := agents.Functional{Generator: gen, Executor: exec, Timeout: time.Second, Max: 30}

	r := f.Evaluate(context.Background(), "Echo", "prog")
	require.Len(t, r.Cases, 5)
	assert.Equal(t, 5, exec.calls)
	assert.Equal(t, "4", r.Cases[4].Input)
	assert.Equal(t, 30.0, r.Score)
}

func TestFunctionalShortListKeepsDenominator(t *testing.T) {
	gen := fakeGenerator{text: `[{"input":"2","expected":"2"},{"input":"3","expected":"4"},{"input":"7","expected":"7"}]`}
	f := agents.Functional{Generator: gen, Executor: echoExecutor(), Timeout: time.Second, Max: 30}

	r := f.Evaluate(context.Background(), "Echo", "prog")
	require.Len(t, r.Cases, 3)
	assert.Equal(t, "2/5 test cases passed.", r.Report)
	assert.Equal(t, 12.0, r.Score)
	assert.False(t, r.Cases[1].Pass)
}

func TestFunctionalFailuresDoNotAbort(t *testing.T) {
	n := 0
	exec := &fakeExecutor{fn: func(stdin []byte) (*execution.Output, error) {
		n++
		switch n {
		case 1:
			return nil, execution.ErrTimeout
		case 2:
			return nil, execution.ErrRuntime
		}
		return &execution.Output{Stdout: stdin}, nil
	}}
	f := agents.Functional{Generator: llm.Disabled{Name: "gen"}, Executor: exec, Timeout: time.Second, Max: 30}

	r := f.Evaluate(context.Background(), "Echo", "prog")
	require.Len(t, r.Cases, 5)
	assert.Equal(t, agents.ActualTimeout, r.Cases[0].Actual)
	assert.Equal(t, agents.ActualRuntimeError, r.Cases[1].Actual)
	assert.False(t, r.Cases[0].Pass)
	assert.False(t, r.Cases[1].Pass)
	assert.Equal(t, "3/5 test cases passed.", r.Report)
	assert.Equal(t, 18.0, r.Score)
}

func TestFunctionalAppendsNewlineAndDecodesOutput(t *testing.T) {
	var seen []string
	exec := &fakeExecutor{fn: func(stdin []byte) (*execution.Output, error) {
		seen = append(seen, string(stdin))
		return &execution.Output{Stdout: []byte("Result: \xffHELLO\n")}, nil
	}}
	gen := fakeGenerator{text: `[{"input":"a b","expected":" hello "}]`}
	f := agents.Functional{Generator: gen, Executor: exec, Timeout: time.Second, Max: 30}

	r := f.Evaluate(context.Background(), "Greeter", "prog")
	assert.Equal(t, []string{"a b\n"}, seen)
	require.Len(t, r.Cases, 1)
	assert.Equal(t, "hello", r.Cases[0].Expected)
	assert.Equal(t, "Result: \uFFFDHELLO", r.Cases[0].Actual)
	assert.True(t, r.Cases[0].Pass)
}

func TestAgentsTolerateGarbage(t *testing.T) {
	for name, src := range garbageSources {
		t.Run(name, func(t *testing.T) {
			d := agents.Design{Max: 15}.Evaluate(src)
			assert.GreaterOrEqual(t, d.Score, 0.0)
			assert.LessOrEqual(t, d.Score, 15.0)

			o := agents.Optimization{Max: 20}.Evaluate(src)
			assert.GreaterOrEqual(t, o.Score, 0.0)

			p := agents.Performance{Executor: echoExecutor(), Timeout: time.Second, Max: 15}.
				Evaluate(context.Background(), src, "prog")
			assert.GreaterOrEqual(t, p.Score, 0.0)
		})
	}
}

func TestParseTestCases(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []agents.TestCase
	}{
		{
			name: "plain",
			text: `[{"input":"1 2","expected":"3"}]`,
			want: []agents.TestCase{{Input: "1 2", Expected: "3"}},
		},
		{
			name: "wrapped in prose and fences",
			text: "```json\n[{\"input\":\"x\",\"expected\":\"y\"}]\n```",
			want: []agents.TestCase{{Input: "x", Expected: "y"}},
		},
		{
			name: "scalars stringified",
			text: `[{"input":5,"expected":true}]`,
			want: []agents.TestCase{{Input: "5", Expected: "true"}},
		},
		{
			name: "number spelling preserved",
			text: `[{"input":"2.5 2.5","expected":5.0},{"input":-0.50,"expected":1e3}]`,
			want: []agents.TestCase{{Input: "2.5 2.5", Expected: "5.0"}, {Input: "-0.50", Expected: "1e3"}},
		},
		{
			name: "missing and null fields",
			text: `[{"input":null},{"expected":"4"}]`,
			want: []agents.TestCase{{Input: "", Expected: "Unknown"}, {Input: "", Expected: "4"}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := agents.ParseTestCases(tt.text)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseTestCasesMalformed(t *testing.T) {
	for _, text := range []string{
		"",
		"no brackets",
		"] backwards [",
		"[not json]",
		"[]",
		`[{"input":"1"}, 2]`,
		`[{"input":"1",}]`,
	} {
		_, err := agents.ParseTestCases(text)
		assert.ErrorIs(t, err, agents.ErrMalformedTestCases, "text %q", text)
	}
}

func TestGenerateTestCasesWrapsCollaboratorError(t *testing.T) {
	_, err := agents.GenerateTestCases(context.Background(), llm.Disabled{Name: "gen"}, "t")
	assert.ErrorIs(t, err, llm.ErrNotConfigured)
}

func TestPasses(t *testing.T) {
	tests := []struct {
		expected, actual string
		want             bool
	}{
		{"hello", "HELLO", true},
		{"Sum", "the sum is 5", true},
		{"5", "Enter a number: 5", true},
		{"6", "5", false},
		{"longer", "long", false},
		{"", "anything", true},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, agents.Passes(tt.expected, tt.actual), "%q vs %q", tt.expected, tt.actual)
	}
}

func TestFallbackTestCases(t *testing.T) {
	cases := agents.FallbackTestCases()
	require.Len(t, cases, llm.TestCount)
	for _, c := range cases {
		assert.Equal(t, c.Expected+"\n", c.Input)
	}
}

func TestLoadSource(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "prog.c")
	require.NoError(t, os.WriteFile(path, []byte("int\xff main\xfe;"), 0o644))

	src, err := agents.LoadSource(path)
	require.NoError(t, err)
	assert.Equal(t, "int main;", src)

	_, err = agents.LoadSource(filepath.Join(dir, "missing.c"))
	assert.ErrorIs(t, err, agents.ErrSourceUnreadable)
}
