package prompt

import (
	"bytes"
	"strings"
	"testing"
)

func TestAskNonInteractive(t *testing.T) {
	c := Confirmer{
		In:            bytes.NewBufferString("y\n"),
		IsInteractive: func() bool { return false },
	}
	ok, err := c.Ask("Proceed?")
	if err == nil {
		t.Fatalf("expected error for non-interactive prompt, got ok=%v", ok)
	}
}

func TestAskAnswers(t *testing.T) {
	cases := []struct {
		input string
		want  bool
	}{
		{"y\n", true},
		{"Y\n", true},
		{"yes\n", true},
		{"  YES  \n", true},
		{"n\n", false},
		{"no\n", false},
		{"\n", false},
		{"maybe\n", false},
	}
	for _, tc := range cases {
		var out bytes.Buffer
		c := Confirmer{
			In:            bytes.NewBufferString(tc.input),
			Out:           &out,
			IsInteractive: func() bool { return true },
		}
		ok, err := c.Ask("Proceed?")
		if err != nil {
			t.Fatalf("input %q: unexpected error: %v", tc.input, err)
		}
		if ok != tc.want {
			t.Errorf("input %q: got %v, want %v", tc.input, ok, tc.want)
		}
		if !strings.Contains(out.String(), "Proceed?") {
			t.Errorf("input %q: prompt not written: %q", tc.input, out.String())
		}
	}
}

func TestConfirmOverwriteForce(t *testing.T) {
	c := Confirmer{
		In:            bytes.NewBufferString("n\n"),
		IsInteractive: func() bool { return false },
	}
	ok, err := c.ConfirmOverwrite("out.txt", true)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !ok {
		t.Fatalf("force should skip the question")
	}
}

func TestConfirmOverwriteMentionsPath(t *testing.T) {
	var out bytes.Buffer
	c := Confirmer{
		In:            bytes.NewBufferString("y\n"),
		Out:           &out,
		IsInteractive: func() bool { return true },
	}
	ok, err := c.ConfirmOverwrite("result.txt", false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !ok {
		t.Fatalf("expected confirmation")
	}
	if !strings.Contains(out.String(), "result.txt") {
		t.Errorf("prompt should name the file: %q", out.String())
	}
}
