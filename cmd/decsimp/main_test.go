package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestRun(t *testing.T) {
	const src = `(pdstore y p=5 (zd2pd p=5 (pd2zd p=5 (pdload x p=5))))
(pdstore z p=7 (pdshl p=7 (pdshr p=5 (pdload x p=7) 2 0) 2))
`
	for i, test := range []struct {
		Args   []string
		Stdout string
		Code   int
	}{
		{
			Args: []string{"-"},
			Stdout: `(pdstore y p=5 (pdload x p=5))
(pdstore z p=7 (pdshl p=7 (pdshr p=5 (pdload x p=7) 2 0) 2))
`,
		},
		{
			Args: []string{"-last-run", "-verify", "-eval", "-set", "x=-1234567", "-"},
			Stdout: `(pdstore y p=5 (pdload x p=5))
(pdstore z p=7 (pdclear p=7 (pdload x p=7) 2 2))
`,
		},
		{
			Args:   []string{"-bisect", "1", "-"},
			Stdout: src,
		},
		{Args: []string{"-set", "x", "-"}, Code: 2},
		{Args: []string{}, Code: 2},
	} {
		var stdout, stderr bytes.Buffer
		code := run(test.Args, strings.NewReader(src), &stdout, &stderr)
		if code != test.Code {
			t.Errorf("test %d: got exit code %d, want %d\n%s", i, code, test.Code, stderr.String())
			continue
		}
		if stdout.String() != test.Stdout {
			t.Errorf("test %d: got:\n%s\nwant:\n%s", i, stdout.String(), test.Stdout)
		}
	}
}

func TestRunConfigFile(t *testing.T) {
	dir := t.TempDir()
	config := filepath.Join(dir, "decsimp.toml")
	if err := os.WriteFile(config, []byte("last_run = true\nlog_level = \"error\"\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	input := filepath.Join(dir, "block.tree")
	if err := os.WriteFile(input, []byte(`(pdstore z p=7 (pdshl p=7 (pdshr p=5 (pdload x p=7) 2 0) 2))`), 0o644); err != nil {
		t.Fatal(err)
	}
	var stdout, stderr bytes.Buffer
	if code := run([]string{"-config", config, input}, nil, &stdout, &stderr); code != 0 {
		t.Fatalf("got exit code %d\n%s", code, stderr.String())
	}
	want := "(pdstore z p=7 (pdclear p=7 (pdload x p=7) 2 2))\n"
	if stdout.String() != want {
		t.Errorf("got:\n%s\nwant:\n%s", stdout.String(), want)
	}
}

func TestRunEvalError(t *testing.T) {
	// A load of a symbol that is never bound fails evaluation.
	var stdout, stderr bytes.Buffer
	code := run([]string{"-eval", "-"}, strings.NewReader(`(pdstore y p=3 (pdload x p=3))`), &stdout, &stderr)
	if code != 1 {
		t.Errorf("got exit code %d, want 1", code)
	}
}
