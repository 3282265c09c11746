package output

import (
	"strings"
	"testing"

	"callsight/internal/parser"
	"callsight/internal/resolver"
	"callsight/internal/scoring"
)

func analyze(t *testing.T, path, source string) *resolver.FileResolution {
	t.Helper()
	p := parser.NewParser(parser.NewGrammarLoader())
	p.RegisterExtractor("python", &parser.PythonExtractor{})
	file, err := p.ParseFile(path, []byte(source))
	if err != nil {
		t.Fatalf("ParseFile failed: %v", err)
	}
	return resolver.ResolveFile(file)
}

const sampleSource = `class Calculator:
    def add(self, a, b):
        return a + b

calc = Calculator()
calc.add(1, 2)
mystery()
`

func TestGenerateCallsTSV(t *testing.T) {
	res := analyze(t, "sample.py", sampleSource)

	tsv, err := NewTSVGenerator().GenerateCalls([]*resolver.FileResolution{res})
	if err != nil {
		t.Fatal(err)
	}

	lines := strings.Split(strings.TrimSpace(tsv), "\n")
	if lines[0] != "File\tLine\tCallee\tStatus\tTarget\tReason" {
		t.Errorf("unexpected header: %q", lines[0])
	}
	if !strings.Contains(tsv, "calc.add\tresolved\tCalculator.add\t") {
		t.Errorf("missing resolved calc.add row:\n%s", tsv)
	}
	if !strings.Contains(tsv, "mystery\tunresolved\t\tunknown-binding") {
		t.Errorf("missing unresolved mystery row:\n%s", tsv)
	}
}

func TestGeneratePrioritiesTSV(t *testing.T) {
	res := analyze(t, "sample.py", sampleSource)
	scores := scoring.Rank([]*resolver.FileResolution{res})

	tsv, err := NewTSVGenerator().GeneratePriorities(scores)
	if err != nil {
		t.Fatal(err)
	}

	if !strings.HasPrefix(tsv, "Function\tFile\tLine\t") {
		t.Errorf("unexpected header:\n%s", tsv)
	}
	if !strings.Contains(tsv, "Calculator.add\tsample.py") {
		t.Errorf("missing Calculator.add row:\n%s", tsv)
	}
}

func TestConsoleReport(t *testing.T) {
	res := analyze(t, "sample.py", sampleSource)
	scores := scoring.Rank([]*resolver.FileResolution{res})

	report := NewConsoleReport(10).Render([]*resolver.FileResolution{res}, scores)

	for _, want := range []string{"callsight report", "files analyzed: 1", "unknown-binding", "Calculator.add"} {
		if !strings.Contains(report, want) {
			t.Errorf("report missing %q:\n%s", want, report)
		}
	}
}
