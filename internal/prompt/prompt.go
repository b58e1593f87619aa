// Package prompt gates destructive restore steps behind user consent.
package prompt

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
)

// Confirmer asks for approval before a destructive step runs.
type Confirmer interface {
	Confirm(question string) (bool, error)
}

// Terminal prompts on Out and reads the answer from In. Only an explicit
// "y" or "yes" approves; everything else, including an empty answer,
// declines.
type Terminal struct {
	reader *bufio.Reader
	out    io.Writer
}

var _ Confirmer = (*Terminal)(nil)

// NewTerminal builds a confirmer bound to the process's stdin and stdout.
func NewTerminal() *Terminal {
	return New(os.Stdin, os.Stdout)
}

// New builds a confirmer over arbitrary streams.
func New(in io.Reader, out io.Writer) *Terminal {
	return &Terminal{reader: bufio.NewReader(in), out: out}
}

// Confirm prints the question and reads one line.
func (t *Terminal) Confirm(question string) (bool, error) {
	fmt.Fprintf(t.out, "%s [y/N]: ", question)

	line, err := t.reader.ReadString('\n')
	if err != nil && line == "" {
		return false, fmt.Errorf("failed to read confirmation: %w", err)
	}

	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true, nil
	default:
		return false, nil
	}
}

// AutoApprove answers yes to every prompt. It backs the --yes flag for
// unattended runs.
type AutoApprove struct{}

var _ Confirmer = AutoApprove{}

func (AutoApprove) Confirm(string) (bool, error) {
	return true, nil
}
