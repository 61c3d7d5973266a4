package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv("STATSMD_CATALOG_PATH", "")

	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestRecommendCmd(t *testing.T) {
	out, err := execute(t, "recommend", "--outcome", "continuous", "--design", "rct", "--comparison", "two-groups")
	if err != nil {
		t.Fatalf("recommend error = %v", err)
	}
	if !strings.Contains(out, "independent-t-test") || !strings.Contains(out, "welch-t-test") {
		t.Errorf("output = %q", out)
	}
	if strings.Contains(out, "cox-regression") {
		t.Errorf("output should not list cox-regression: %q", out)
	}
}

func TestRecommendCmd_Errors(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"missing design", []string{"recommend", "--outcome", "continuous"}},
		{"bad outcome", []string{"recommend", "--outcome", "banana", "--design", "rct"}},
		{"bad comparison", []string{"recommend", "--outcome", "binary", "--design", "rct", "--comparison", "x"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := execute(t, tt.args...); err == nil {
				t.Error("expected an error")
			}
		})
	}
}

func TestRecommendCmd_NoMatch(t *testing.T) {
	out, err := execute(t, "recommend", "--outcome", "time-to-event", "--design", "diagnostic-accuracy")
	if err != nil {
		t.Fatalf("recommend error = %v", err)
	}
	if !strings.Contains(out, "No tests match") {
		t.Errorf("output = %q", out)
	}
}

func TestAlternativesCmd(t *testing.T) {
	out, err := execute(t, "alternatives", "independent-t-test", "--violated", "homoscedasticity")
	if err != nil {
		t.Fatalf("alternatives error = %v", err)
	}
	if !strings.HasPrefix(out, "welch-t-test") {
		t.Errorf("output = %q", out)
	}

	out, err = execute(t, "alternatives", "independent-t-test")
	if err != nil {
		t.Fatalf("alternatives error = %v", err)
	}
	if !strings.Contains(out, "No alternatives needed") {
		t.Errorf("output = %q", out)
	}

	if _, err := execute(t, "alternatives", "nope"); err == nil {
		t.Error("unknown test should fail")
	}
	if _, err := execute(t, "alternatives", "independent-t-test", "--violated", "sphericity"); err == nil {
		t.Error("unknown assumption should fail")
	}
}

func TestGlossaryCmd(t *testing.T) {
	out, err := execute(t, "glossary", "hazard", "--category", "measure")
	if err != nil {
		t.Fatalf("glossary error = %v", err)
	}
	if !strings.Contains(out, "Hazard Ratio (HR)") {
		t.Errorf("output = %q", out)
	}

	if _, err := execute(t, "glossary", "--category", "banana"); err == nil {
		t.Error("unknown category should fail")
	}
}

func TestValidateCmd(t *testing.T) {
	out, err := execute(t, "validate")
	if err != nil {
		t.Fatalf("validate error = %v", err)
	}
	for _, want := range []string{"tests: 23", "dangling references:", "fingerprint: "} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q: %q", want, out)
		}
	}
}

func TestValidateCmd_SchemaError(t *testing.T) {
	dir := t.TempDir()
	doc := "kind: tests\nitems:\n  - id: broken\n"
	if err := os.WriteFile(filepath.Join(dir, "tests.yaml"), []byte(doc), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := execute(t, "--catalog", dir, "validate"); err == nil {
		t.Error("validate should fail on a schema error")
	}
}

func TestExportCmd(t *testing.T) {
	path := filepath.Join(t.TempDir(), "guide.md")
	out, err := execute(t, "export", "--out", path)
	if err != nil {
		t.Fatalf("export error = %v", err)
	}
	if !strings.Contains(out, "wrote") {
		t.Errorf("output = %q", out)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(string(data), "# StatsMD Study Guide") {
		t.Errorf("guide starts with %q", string(data[:min(40, len(data))]))
	}

	if _, err := execute(t, "export", "--out", filepath.Join(t.TempDir(), "guide.pdf")); err == nil {
		t.Error("unsupported format should fail")
	}
}
