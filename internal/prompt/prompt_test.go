package prompt

import (
	"bytes"
	"strings"
	"testing"
)

func TestConfirm(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"y\n", true},
		{"Y\n", true},
		{"yes\n", true},
		{"YES\n", true},
		{" y \n", true},
		{"y", true}, // EOF without newline still counts
		{"\n", false},
		{"n\n", false},
		{"no\n", false},
		{"nah\n", false},
		{"yep\n", false},
	}

	for _, tt := range tests {
		var out bytes.Buffer
		c := New(strings.NewReader(tt.input), &out)

		got, err := c.Confirm("Import code to \"production\"?")
		if err != nil {
			t.Errorf("Confirm(%q) error = %v", tt.input, err)
			continue
		}
		if got != tt.want {
			t.Errorf("Confirm(%q) = %v, want %v", tt.input, got, tt.want)
		}
		if !strings.Contains(out.String(), "[y/N]") {
			t.Errorf("prompt output %q should show the default", out.String())
		}
	}
}

func TestConfirmEOF(t *testing.T) {
	c := New(strings.NewReader(""), &bytes.Buffer{})

	if _, err := c.Confirm("Continue?"); err == nil {
		t.Fatal("Confirm() expected error on closed input")
	}
}

func TestConfirmSequentialPrompts(t *testing.T) {
	c := New(strings.NewReader("y\nn\nyes\n"), &bytes.Buffer{})

	want := []bool{true, false, true}
	for i, w := range want {
		got, err := c.Confirm("step?")
		if err != nil {
			t.Fatalf("Confirm() #%d error = %v", i, err)
		}
		if got != w {
			t.Errorf("Confirm() #%d = %v, want %v", i, got, w)
		}
	}
}

func TestAutoApprove(t *testing.T) {
	got, err := AutoApprove{}.Confirm("anything?")
	if err != nil {
		t.Fatalf("Confirm() error = %v", err)
	}
	if !got {
		t.Error("AutoApprove.Confirm() = false, want true")
	}
}
