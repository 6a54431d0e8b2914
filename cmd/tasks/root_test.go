package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func execute(t *testing.T, input string, args ...string) (string, error) {
	t.Helper()
	dir := t.TempDir()
	root := newRootCmd()
	var out bytes.Buffer
	root.SetIn(strings.NewReader(input))
	root.SetOut(&out)
	root.SetErr(&out)
	base := []string{"--config", filepath.Join(dir, "tasks.yaml"), "--tasks-dir", filepath.Join(dir, "tasks")}
	root.SetArgs(append(args[:1:1], append(base, args[1:]...)...))
	err := root.Execute()
	return out.String(), err
}

func TestListShowsBuiltins(t *testing.T) {
	out, err := execute(t, "", "list")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	for _, want := range []string{"Send Message", "send_message", "Square Root", "Sum", "Move Point", "Echo"} {
		if !strings.Contains(out, want) {
			t.Fatalf("list output missing %q:\n%s", want, out)
		}
	}
}

func TestRunByKeyForm(t *testing.T) {
	out, err := execute(t, "hello\n", "run", "send_message")
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if !strings.Contains(out, "Result - sent: hello") {
		t.Fatalf("unexpected output:\n%s", out)
	}
}

func TestRunRetriesNegativeRoot(t *testing.T) {
	out, err := execute(t, "-4\n16\n2\n", "run", "Square Root")
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if !strings.Contains(out, "value must not be negative") {
		t.Fatalf("expected input error message:\n%s", out)
	}
	if !strings.Contains(out, "Result - 4") {
		t.Fatalf("expected result:\n%s", out)
	}
}

func TestRunUnknownTask(t *testing.T) {
	_, err := execute(t, "", "run", "Nope")
	if err == nil || !strings.Contains(err.Error(), "Nope") {
		t.Fatalf("expected not found error, got %v", err)
	}
}

func TestInitWritesConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "tasks.yaml")
	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetArgs([]string{"init", "--config", path})
	if err := root.Execute(); err != nil {
		t.Fatalf("init: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("config not written: %v", err)
	}
	if !strings.Contains(out.String(), "wrote") {
		t.Fatalf("unexpected output %q", out.String())
	}
}

func TestManifestBindsBuiltinCatalog(t *testing.T) {
	dir := t.TempDir()
	tasksDir := filepath.Join(dir, "tasks")
	if err := os.MkdirAll(tasksDir, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	manifest := "tasks:\n  - name: Shout\n    func: upper\n    repeat: false\n    args:\n      - [word, str, word]\n"
	if err := os.WriteFile(filepath.Join(tasksDir, "extra.yaml"), []byte(manifest), 0o644); err != nil {
		t.Fatalf("write manifest: %v", err)
	}
	root := newRootCmd()
	var out bytes.Buffer
	root.SetIn(strings.NewReader("quiet\n"))
	root.SetOut(&out)
	root.SetArgs([]string{"run", "Shout", "--config", filepath.Join(dir, "tasks.yaml"), "--tasks-dir", tasksDir})
	if err := root.Execute(); err != nil {
		t.Fatalf("run: %v", err)
	}
	if !strings.Contains(out.String(), "Result - QUIET") {
		t.Fatalf("unexpected output:\n%s", out.String())
	}
}

func TestBuiltinsUseConfiguredPresentation(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "tasks.yaml")
	body := "separator: \"=====\"\nargs_prompt: \"Give me input\"\n"
	if err := os.WriteFile(cfgPath, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	root := newRootCmd()
	var out bytes.Buffer
	root.SetIn(strings.NewReader("hey\n"))
	root.SetOut(&out)
	root.SetArgs([]string{"run", "Echo", "--config", cfgPath, "--tasks-dir", filepath.Join(dir, "tasks")})
	if err := root.Execute(); err != nil {
		t.Fatalf("run: %v", err)
	}
	got := out.String()
	for _, want := range []string{"=====\nEcho\n", "Give me input", "Result - hey"} {
		if !strings.Contains(got, want) {
			t.Fatalf("output missing %q:\n%s", want, got)
		}
	}
}
